package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrGatewayNotConfigured = errors.New("payment gateway is not configured")
	ErrGatewayFailed        = errors.New("payment gateway request failed")
)

// CreateRequest - данные для создания платежа у провайдера
type CreateRequest struct {
	Amount      decimal.Decimal
	Currency    string
	Description string
	ReturnURL   string
	Metadata    map[string]string
}

// CreatedPayment - ответ провайдера
type CreatedPayment struct {
	ID              string
	Status          string
	ConfirmationURL string
	Raw             json.RawMessage
}

// PaymentInfo - состояние платежа, как его видит провайдер
type PaymentInfo struct {
	ID       string
	Status   string
	Paid     bool
	Amount   decimal.Decimal
	Metadata map[string]string
	Raw      json.RawMessage
}

// Succeeded - платеж оплачен и списан
func (p *PaymentInfo) Succeeded() bool {
	return p.Status == StatusSucceeded && p.Paid
}

type Gateway interface {
	CreatePayment(ctx context.Context, req CreateRequest) (*CreatedPayment, error)
	GetPayment(ctx context.Context, id string) (*PaymentInfo, error)
}

// YooKassaGateway - клиент API v3 (Basic auth shop_id:secret_key, Idempotence-Key)
type YooKassaGateway struct {
	ShopID     string
	SecretKey  string
	APIURL     string
	httpClient *http.Client
}

func NewYooKassaGateway(shopID, secretKey, apiURL string) *YooKassaGateway {
	return &YooKassaGateway{
		ShopID:     shopID,
		SecretKey:  secretKey,
		APIURL:     apiURL,
		httpClient: &http.Client{Timeout: 20 * time.Second},
	}
}

type yooAmount struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

type yooConfirmation struct {
	Type            string `json:"type"`
	ReturnURL       string `json:"return_url,omitempty"`
	ConfirmationURL string `json:"confirmation_url,omitempty"`
}

type yooCreatePayload struct {
	Amount       yooAmount         `json:"amount"`
	Confirmation yooConfirmation   `json:"confirmation"`
	Capture      bool              `json:"capture"`
	Description  string            `json:"description"`
	Metadata     map[string]string `json:"metadata"`
}

type yooPaymentResponse struct {
	ID           string            `json:"id"`
	Status       string            `json:"status"`
	Paid         bool              `json:"paid"`
	Amount       yooAmount         `json:"amount"`
	Confirmation yooConfirmation   `json:"confirmation"`
	Metadata     map[string]string `json:"metadata"`
}

func (g *YooKassaGateway) CreatePayment(ctx context.Context, req CreateRequest) (*CreatedPayment, error) {
	if g.ShopID == "" || g.SecretKey == "" {
		return nil, ErrGatewayNotConfigured
	}

	payload := yooCreatePayload{
		Amount: yooAmount{
			Value:    req.Amount.StringFixed(2),
			Currency: req.Currency,
		},
		Confirmation: yooConfirmation{
			Type:      "redirect",
			ReturnURL: req.ReturnURL,
		},
		Capture:     true,
		Description: req.Description,
		Metadata:    req.Metadata,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	parsed, raw, err := g.do(ctx, http.MethodPost, g.APIURL, body)
	if err != nil {
		return nil, err
	}

	return &CreatedPayment{
		ID:              parsed.ID,
		Status:          parsed.Status,
		ConfirmationURL: parsed.Confirmation.ConfirmationURL,
		Raw:             raw,
	}, nil
}

// GetPayment перечитывает платеж у провайдера (GET /v3/payments/{id})
func (g *YooKassaGateway) GetPayment(ctx context.Context, id string) (*PaymentInfo, error) {
	if g.ShopID == "" || g.SecretKey == "" {
		return nil, ErrGatewayNotConfigured
	}
	if id == "" {
		return nil, fmt.Errorf("%w: empty payment id", ErrGatewayFailed)
	}

	endpoint := strings.TrimRight(g.APIURL, "/") + "/" + url.PathEscape(id)
	parsed, raw, err := g.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	amount := decimal.Zero
	if parsed.Amount.Value != "" {
		amount, err = decimal.NewFromString(parsed.Amount.Value)
		if err != nil {
			return nil, fmt.Errorf("%w: amount %q: %v", ErrGatewayFailed, parsed.Amount.Value, err)
		}
	}

	return &PaymentInfo{
		ID:       parsed.ID,
		Status:   parsed.Status,
		Paid:     parsed.Paid,
		Amount:   amount,
		Metadata: parsed.Metadata,
		Raw:      raw,
	}, nil
}

func (g *YooKassaGateway) do(ctx context.Context, method, endpoint string, body []byte) (*yooPaymentResponse, []byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, nil, err
	}
	httpReq.SetBasicAuth(g.ShopID, g.SecretKey)
	if method == http.MethodPost {
		httpReq.Header.Set("Idempotence-Key", uuid.NewString())
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrGatewayFailed, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: read body: %v", ErrGatewayFailed, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, nil, fmt.Errorf("%w: status %d", ErrGatewayFailed, resp.StatusCode)
	}

	var parsed yooPaymentResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, nil, fmt.Errorf("%w: decode: %v", ErrGatewayFailed, err)
	}
	if parsed.ID == "" {
		return nil, nil, fmt.Errorf("%w: empty payment id", ErrGatewayFailed)
	}
	return &parsed, raw, nil
}

// WebhookNotification - уведомление провайдера
type WebhookNotification struct {
	Type   string        `json:"type"`
	Event  string        `json:"event"`
	Object WebhookObject `json:"object"`
}

type WebhookObject struct {
	ID       string         `json:"id"`
	Status   string         `json:"status"`
	Paid     bool           `json:"paid"`
	Amount   yooAmount      `json:"amount"`
	Metadata map[string]any `json:"metadata"`
}

// MetaString читает значение метаданных; числа приводятся к строке
func (o WebhookObject) MetaString(key string) string {
	v, ok := o.Metadata[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return decimal.NewFromFloat(t).String()
	default:
		return fmt.Sprint(t)
	}
}

const (
	EventPaymentSucceeded = "payment.succeeded"
	StatusSucceeded       = "succeeded"
)
