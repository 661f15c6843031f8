package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"auxchat_backend/internal/dto"
	"auxchat_backend/internal/logger"
	"auxchat_backend/internal/payment"
	"auxchat_backend/internal/services"
	"auxchat_backend/pkg/apperrors"
)

const maxWebhookBody = 1 << 20

type PaymentHandler struct {
	*BaseHandler
	paymentService services.PaymentService
}

func NewPaymentHandler(base *BaseHandler, paymentService services.PaymentService) *PaymentHandler {
	return &PaymentHandler{BaseHandler: base, paymentService: paymentService}
}

func (h *PaymentHandler) RegisterRoutes(rg *gin.RouterGroup, guards Guards) {
	// уведомления провайдера приходят без токена
	rg.POST("/payments/webhook", h.Webhook)
	rg.GET("/payments/quote", h.Quote)

	payments := rg.Group("/payments")
	payments.Use(guards.Auth)
	{
		payments.GET("", h.ListPayments)
		payments.POST("", h.CreatePayment)
	}
}

func (h *PaymentHandler) Quote(c *gin.Context) {
	var query dto.PaymentQuoteQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	amount, err := decimal.NewFromString(query.Amount)
	if err != nil {
		apperrors.HandleError(c, apperrors.ValidationError(map[string]string{"amount": "Must be a number"}))
		return
	}

	response, err := h.paymentService.Quote(amount)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CreatePaymentRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	response, err := h.paymentService.CreatePayment(c.Request.Context(), h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

// Webhook - уведомление провайдера; сырое тело сохраняется вместе с платежом
func (h *PaymentHandler) Webhook(c *gin.Context) {
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		apperrors.HandleError(c, apperrors.NewBadRequestError("Invalid request body"))
		return
	}

	var notification payment.WebhookNotification
	if err := json.Unmarshal(raw, &notification); err != nil {
		logger.CtxWarn(c.Request.Context(), "Malformed payment notification", "error", err.Error())
		apperrors.HandleError(c, apperrors.NewBadRequestError("Invalid request body"))
		return
	}

	response, err := h.paymentService.HandleWebhook(c.Request.Context(), h.GetDB(c), &notification, raw)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

func (h *PaymentHandler) ListPayments(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	response, err := h.paymentService.ListPayments(h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}
