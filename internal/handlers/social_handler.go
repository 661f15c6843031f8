package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"auxchat_backend/internal/dto"
	"auxchat_backend/internal/services"
)

// SocialHandler - подписки и черный список
type SocialHandler struct {
	*BaseHandler
	socialService services.SocialService
}

func NewSocialHandler(base *BaseHandler, socialService services.SocialService) *SocialHandler {
	return &SocialHandler{BaseHandler: base, socialService: socialService}
}

func (h *SocialHandler) RegisterRoutes(rg *gin.RouterGroup, guards Guards) {
	subs := rg.Group("/subscriptions")
	subs.Use(guards.Auth)
	{
		subs.GET("", h.ListSubscriptions)
		subs.POST("", h.Subscribe)
		subs.DELETE("/:target_user_id", h.Unsubscribe)
	}
	rg.GET("/subscribers", guards.Auth, h.ListSubscribers)

	blacklist := rg.Group("/blacklist")
	blacklist.Use(guards.Auth)
	{
		blacklist.GET("", h.ListBlocked)
		blacklist.POST("", h.Block)
		blacklist.DELETE("/:blocked_user_id", h.Unblock)
	}
}

func (h *SocialHandler) Subscribe(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.SubscribeRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	response, err := h.socialService.Subscribe(h.GetDB(c), userID, req.TargetUserID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *SocialHandler) Unsubscribe(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	targetID, ok := h.ParseParamUUID(c, "target_user_id")
	if !ok {
		return
	}

	response, err := h.socialService.Unsubscribe(h.GetDB(c), userID, targetID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *SocialHandler) ListSubscriptions(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	response, err := h.socialService.ListSubscriptions(h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *SocialHandler) ListSubscribers(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	response, err := h.socialService.ListSubscribers(h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *SocialHandler) Block(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.BlockRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	response, err := h.socialService.Block(h.GetDB(c), userID, req.BlockedUserID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *SocialHandler) Unblock(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	blockedID, ok := h.ParseParamUUID(c, "blocked_user_id")
	if !ok {
		return
	}

	response, err := h.socialService.Unblock(h.GetDB(c), userID, blockedID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *SocialHandler) ListBlocked(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	response, err := h.socialService.ListBlocked(h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}
