package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreatePaymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type PaymentQuoteQuery struct {
	Amount string `form:"amount" validate:"required,numeric"`
}

type PaymentQuoteResponse struct {
	Amount       decimal.Decimal `json:"amount"`
	BonusPercent decimal.Decimal `json:"bonus_percent"`
	EnergyAmount int             `json:"energy_amount"`
}

type CreatePaymentResponse struct {
	PaymentID    string          `json:"payment_id"`
	PaymentURL   string          `json:"payment_url"`
	Amount       decimal.Decimal `json:"amount"`
	BonusPercent decimal.Decimal `json:"bonus_percent"`
	EnergyAmount int             `json:"energy_amount"`
}

type PaymentResponse struct {
	ID           string          `json:"id"`
	Amount       decimal.Decimal `json:"amount"`
	BonusPercent decimal.Decimal `json:"bonus_percent"`
	EnergyAmount int             `json:"energy_amount"`
	Status       string          `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
}

type PaymentListResponse struct {
	Payments []PaymentResponse `json:"payments"`
}

type WebhookResponse struct {
	Status string `json:"status"`
}

const (
	WebhookStatusOK        = "ok"
	WebhookStatusIgnored   = "ignored"
	WebhookStatusDuplicate = "already_processed"
)
