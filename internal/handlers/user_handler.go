package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"auxchat_backend/internal/dto"
	"auxchat_backend/internal/services"
)

type UserHandler struct {
	*BaseHandler
	userService  services.UserService
	photoService services.PhotoService
}

func NewUserHandler(base *BaseHandler, userService services.UserService, photoService services.PhotoService) *UserHandler {
	return &UserHandler{
		BaseHandler:  base,
		userService:  userService,
		photoService: photoService,
	}
}

func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup, guards Guards) {
	me := rg.Group("/users/me")
	me.Use(guards.Auth)
	{
		me.GET("", h.Me)
		me.PUT("", h.UpdateProfile)
		me.POST("/activity", h.UpdateActivity)
		me.POST("/location", h.UpdateLocation)
	}

	users := rg.Group("/users")
	users.Use(guards.OptionalAuth)
	{
		users.GET("/:id", h.GetUser)
		users.GET("/:id/photos", h.ListPhotos)
	}
}

func (h *UserHandler) Me(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	response, err := h.userService.Me(h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetUser - публичный профиль; is_subscribed/is_blocked заполняются для аутентифицированного зрителя
func (h *UserHandler) GetUser(c *gin.Context) {
	targetID, ok := h.ParseParamUUID(c, "id")
	if !ok {
		return
	}

	response, err := h.userService.GetUser(h.GetDB(c), h.OptionalUserID(c), targetID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	response, err := h.userService.UpdateProfile(h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *UserHandler) UpdateActivity(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	response, err := h.userService.UpdateActivity(h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *UserHandler) UpdateLocation(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateLocationRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	response, err := h.userService.UpdateLocation(c.Request.Context(), h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *UserHandler) ListPhotos(c *gin.Context) {
	userID, ok := h.ParseParamUUID(c, "id")
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
