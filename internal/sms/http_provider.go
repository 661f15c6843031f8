package sms

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// HTTPProvider - шлюз в стиле sms.ru: GET с api_id, to, msg, json=1
type HTTPProvider struct {
	config     Config
	httpClient *http.Client
}

func NewHTTPProvider(cfg Config) *HTTPProvider {
	return &HTTPProvider{
		config:     cfg,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type gatewayResponse struct {
	Status     string `json:"status"`
	StatusCode int    `json:"status_code"`
	StatusText string `json:"status_text"`
}

func (p *HTTPProvider) Send(ctx context.Context, phone, text string) error {
	q := url.Values{}
	q.Set("api_id", p.config.APIKey)
	q.Set("to", phone)
	q.Set("msg", text)
	q.Set("json", "1")
	if p.config.Sender != "" {
		q.Set("from", p.config.Sender)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.config.APIURL+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to build sms request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send sms: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sms gateway returned status %d", resp.StatusCode)
	}

	var body gatewayResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("failed to decode sms gateway response: %w", err)
	}
	if body.Status != "OK" {
		return fmt.Errorf("sms gateway error %d: %s", body.StatusCode, body.StatusText)
	}
	return nil
}

func (p *HTTPProvider) Validate() error {
	if p.config.APIURL == "" {
		return fmt.Errorf("sms api_url is required")
	}
	if p.config.APIKey == "" {
		return fmt.Errorf("sms api_key is required")
	}
	return nil
}
