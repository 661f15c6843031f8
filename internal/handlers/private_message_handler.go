package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"auxchat_backend/internal/dto"
	"auxchat_backend/internal/services"
)

type PrivateMessageHandler struct {
	*BaseHandler
	privateService services.PrivateMessageService
}

func NewPrivateMessageHandler(base *BaseHandler, privateService services.PrivateMessageService) *PrivateMessageHandler {
	return &PrivateMessageHandler{BaseHandler: base, privateService: privateService}
}

func (h *PrivateMessageHandler) RegisterRoutes(rg *gin.RouterGroup, guards Guards) {
	private := rg.Group("/private-messages")
	private.Use(guards.Auth)
	{
		private.POST("", h.Send)
		private.GET("/unread-count", h.UnreadCount)
		private.GET("/:user_id", h.Conversation)
	}

	rg.GET("/conversations", guards.Auth, h.Conversations)
}

func (h *PrivateMessageHandler) Send(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.SendPrivateMessageRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	response, err := h.privateService.Send(h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

func (h *PrivateMessageHandler) Conversation(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	peerID, ok := h.ParseParamUUID(c, "user_id")
	if !ok {
		return
	}

	var query dto.ConversationQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	response, err := h.privateService.Conversation(h.GetDB(c), userID, peerID, &query)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *PrivateMessageHandler) Conversations(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	response, err := h.privateService.Conversations(h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *PrivateMessageHandler) UnreadCount(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	response, err := h.privateService.UnreadCount(h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}
