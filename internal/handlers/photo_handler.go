package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"auxchat_backend/internal/dto"
	"auxchat_backend/internal/services"
)

type PhotoHandler struct {
	*BaseHandler
	photoService services.PhotoService
}

func NewPhotoHandler(base *BaseHandler, photoService services.PhotoService) *PhotoHandler {
	return &PhotoHandler{BaseHandler: base, photoService: photoService}
}

// RegisterRoutes - галерея текущего пользователя; чужая доступна через /users/:id/photos
func (h *PhotoHandler) RegisterRoutes(rg *gin.RouterGroup, guards Guards) {
	photos := rg.Group("/photos")
	photos.Use(guards.Auth)
	{
		photos.GET("", h.ListMine)
		photos.POST("", h.AddPhoto)
		photos.PUT("/:id/main", h.SetMain)
		photos.DELETE("/:id", h.DeletePhoto)
	}
}

func (h *PhotoHandler) ListMine(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	response, err := h.photoService.ListPhotos(h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

func (h *PhotoHandler) AddPhoto(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.AddPhotoRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	response, err := h.photoService.AddPhoto(h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response)
}

func (h *PhotoHandler) SetMain(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	photoID, ok := h.ParseParamUUID(c, "id")
	if !ok {
		return
	}

	response, err := h.photoService.SetMainPhoto(h.GetDB(c), userID, photoID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

func (h *PhotoHandler) DeletePhoto(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	photoID, ok := h.ParseParamUUID(c, "id")
	if !ok {
		return
	}

	if err := h.photoService.DeletePhoto(h.GetDB(c), userID, photoID); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
