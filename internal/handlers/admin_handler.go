package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"auxchat_backend/internal/dto"
	"auxchat_backend/internal/logger"
	"auxchat_backend/internal/services"
)

type AdminHandler struct {
	*BaseHandler
	adminService services.AdminService
}

func NewAdminHandler(base *BaseHandler, adminService services.AdminService) *AdminHandler {
	return &AdminHandler{BaseHandler: base, adminService: adminService}
}

func (h *AdminHandler) RegisterRoutes(rg *gin.RouterGroup, guards Guards) {
	admin := rg.Group("/admin")
	admin.Use(guards.Admin)
	{
		admin.GET("/users", h.ListUsers)
		admin.POST("/users/action", h.Action)
	}
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	response, err := h.adminService.ListUsers(h.GetDB(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

func (h *AdminHandler) Action(c *gin.Context) {
	var req dto.AdminActionRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	logger.CtxInfo(c.Request.Context(), "Admin action requested", "action", req.Action, "target_user_id", req.TargetUserID)

	response, err := h.adminService.Action(c.Request.Context(), h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}
