package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"auxchat_backend/internal/dto"
	"auxchat_backend/internal/services"
)

type MessageHandler struct {
	*BaseHandler
	messageService services.MessageService
}

func NewMessageHandler(base *BaseHandler, messageService services.MessageService) *MessageHandler {
	return &MessageHandler{BaseHandler: base, messageService: messageService}
}

func (h *MessageHandler) RegisterRoutes(rg *gin.RouterGroup, guards Guards) {
	public := rg.Group("/messages")
	public.Use(guards.OptionalAuth)
	{
		public.GET("", h.ListMessages)
		public.GET("/:id/reactions", h.ListReactions)
	}

	protected := rg.Group("/messages")
	protected.Use(guards.Auth)
	{
		protected.POST("", h.SendMessage)
		protected.POST("/:id/reactions", h.ToggleReaction)
	}
}

func (h *MessageHandler) SendMessage(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.SendMessageRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	response, err := h.messageService.SendMessage(h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

// ListMessages - лента; режим радиуса требует аутентификации
func (h *MessageHandler) ListMessages(c *gin.Context) {
	var query dto.ListMessagesQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	response, err := h.messageService.ListMessages(h.GetDB(c), h.OptionalUserID(c), &query)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *MessageHandler) ToggleReaction(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	messageID, ok := h.ParseParamUUID(c, "id")
	if !ok {
		return
	}

	var req dto.ToggleReactionRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	response, err := h.messageService.ToggleReaction(h.GetDB(c), userID, messageID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *MessageHandler) ListReactions(c *gin.Context) {
	messageID, ok := h.ParseParamUUID(c, "id")
	if !ok {
		return
	}

	reactions, err := h.messageService.ListReactions(h.GetDB(c), messageID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reactions": reactions})
}
