package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"auxchat_backend/internal/dto"
	"auxchat_backend/internal/logger"
	"auxchat_backend/internal/services"
	"auxchat_backend/pkg/apperrors"
)

// запас на multipart заголовки и base64
const multipartOverhead = 1 << 20

// ============================================
// UPLOAD HANDLER
// ============================================

type UploadHandler struct {
	*BaseHandler
	uploadService services.UploadService
}

func NewUploadHandler(base *BaseHandler, uploadService services.UploadService) *UploadHandler {
	return &UploadHandler{
		BaseHandler:   base,
		uploadService: uploadService,
	}
}

func (h *UploadHandler) RegisterRoutes(r *gin.RouterGroup, guards Guards) {
	uploads := r.Group("/uploads")
	uploads.Use(guards.Auth)
	{
		uploads.POST("/photo", h.UploadPhoto)
		uploads.POST("/voice", h.UploadVoice)
		uploads.POST("/profile-photo", h.UploadProfilePhoto)
		uploads.POST("/presign", h.Presign)
	}
}

// UploadPhoto принимает multipart "file" или JSON {image: base64}
func (h *UploadHandler) UploadPhoto(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	if isJSON(c) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.uploadService.MaxImageSize()*4/3+multipartOverhead)
		var req dto.Base64UploadRequest
		if !h.BindAndValidate_JSON(c, &req) {
			return
		}
		response, err := h.uploadService.UploadBase64Photo(c.Request.Context(), h.GetDB(c), userID, &req)
		if err != nil {
			h.HandleServiceError(c, err)
			return
		}
		c.JSON(http.StatusCreated, response)
		return
	}

	data, contentType, ok := h.readFile(c, h.uploadService.MaxImageSize())
	if !ok {
		return
	}
	response, err := h.uploadService.UploadPhoto(c.Request.Context(), h.GetDB(c), userID, data, contentType)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response)
}

func (h *UploadHandler) UploadVoice(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	data, contentType, ok := h.readFile(c, h.uploadService.MaxVoiceSize())
	if !ok {
		return
	}
	response, err := h.uploadService.UploadVoice(c.Request.Context(), h.GetDB(c), userID, data, contentType)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response)
}

func (h *UploadHandler) UploadProfilePhoto(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	data, contentType, ok := h.readFile(c, h.uploadService.MaxImageSize())
	if !ok {
		return
	}
	response, err := h.uploadService.UploadProfilePhoto(c.Request.Context(), h.GetDB(c), userID, data, contentType)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response)
}

func (h *UploadHandler) Presign(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.PresignRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	response, err := h.uploadService.Presign(c.Request.Context(), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

// readFile читает поле "file" multipart формы не больше maxSize байт
func (h *UploadHandler) readFile(c *gin.Context, maxSize int64) ([]byte, string, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize+multipartOverhead)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			apperrors.HandleError(c, apperrors.ErrFileTooLarge)
			return nil, "", false
		}
		apperrors.HandleError(c, apperrors.ValidationError(map[string]string{"file": "This field is required"}))
		return nil, "", false
	}
	if fileHeader.Size > maxSize {
		apperrors.HandleError(c, apperrors.ErrFileTooLarge)
		return nil, "", false
	}

	file, err := fileHeader.Open()
	if err != nil {
		logger.CtxWithError(c.Request.Context(), "Failed to open uploaded file", err)
		apperrors.HandleError(c, apperrors.NewBadRequestError("Failed to read file"))
		return nil, "", false
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxSize+1))
	if err != nil {
		apperrors.HandleError(c, apperrors.NewBadRequestError("Failed to read file"))
		return nil, "", false
	}
	if int64(len(data)) > maxSize {
		apperrors.HandleError(c, apperrors.ErrFileTooLarge)
		return nil, "", false
	}

	return data, fileHeader.Header.Get("Content-Type"), true
}

func isJSON(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "application/json")
}
