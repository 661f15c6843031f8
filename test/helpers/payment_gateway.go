package helpers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
)

const (
	YooKassaShopID    = "test-shop"
	YooKassaSecretKey = "test-secret-key"
)

// FakeYooKassa - заглушка API платежей: создает платежи и отдает их состояние
type FakeYooKassa struct {
	Server *httptest.Server

	mu       sync.Mutex
	payments map[string]map[string]any
}

func NewFakeYooKassa(t *testing.T) *FakeYooKassa {
	t.Helper()
	f := &FakeYooKassa{payments: map[string]map[string]any{}}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Server.Close)
	return f
}

// URL - базовый адрес для cfg.Payment.APIURL
func (f *FakeYooKassa) URL() string {
	return f.Server.URL + "/v3/payments"
}

// Put кладет платеж в состояние провайдера
func (f *FakeYooKassa) Put(id, status, amount string, metadata map[string]string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payments[id] = map[string]any{
		"id":       id,
		"status":   status,
		"paid":     status == "succeeded",
		"amount":   map[string]any{"value": amount, "currency": "RUB"},
		"metadata": metadata,
	}
}

// Pay отмечает созданный платеж оплаченным
func (f *FakeYooKassa) Pay(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.payments[id]; ok {
		p["status"] = "succeeded"
		p["paid"] = true
	}
}

func (f *FakeYooKassa) serve(w http.ResponseWriter, r *http.Request) {
	if user, pass, ok := r.BasicAuth(); !ok || user != YooKassaShopID || pass != YooKassaSecretKey {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	f.mu.Lock()
	defer f.mu.Unlock()

	switch r.Method {
	case http.MethodPost:
		var body struct {
			Amount   map[string]any    `json:"amount"`
			Metadata map[string]string `json:"metadata"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		id := "yk-" + uuid.NewString()
		payment := map[string]any{
			"id":       id,
			"status":   "pending",
			"paid":     false,
			"amount":   body.Amount,
			"metadata": body.Metadata,
		}
		f.payments[id] = payment
		out := map[string]any{"confirmation": map[string]any{"type": "redirect", "confirmation_url": "https://pay.example/" + id}}
		for k, v := range payment {
			out[k] = v
		}
		_ = json.NewEncoder(w).Encode(out)
	case http.MethodGet:
		id := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
		payment, ok := f.payments[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(payment)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
