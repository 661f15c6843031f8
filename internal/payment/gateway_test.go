package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestYooKassaGateway_CreatePayment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "shop", user)
		assert.Equal(t, "secret", pass)
		assert.NotEmpty(t, r.Header.Get("Idempotence-Key"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		amount := body["amount"].(map[string]any)
		assert.Equal(t, "1500.00", amount["value"])
		assert.Equal(t, "RUB", amount["currency"])
		assert.Equal(t, true, body["capture"])
		assert.Equal(t, "user-1", body["metadata"].(map[string]any)["user_id"])

		_, _ = w.Write([]byte(`{"id":"2c5f-ext","status":"pending","confirmation":{"type":"redirect","confirmation_url":"https://pay.example/confirm"}}`))
	}))
	defer srv.Close()

	g := NewYooKassaGateway("shop", "secret", srv.URL)
	created, err := g.CreatePayment(context.Background(), CreateRequest{
		Amount:   decimal.NewFromInt(1500),
		Currency: "RUB",
		Metadata: map[string]string{"user_id": "user-1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "2c5f-ext", created.ID)
	assert.Equal(t, "https://pay.example/confirm", created.ConfirmationURL)
}

func TestYooKassaGateway_NotConfigured(t *testing.T) {
	_, err := NewYooKassaGateway("", "", "http://unused").CreatePayment(context.Background(), CreateRequest{})
	assert.ErrorIs(t, err, ErrGatewayNotConfigured)
}

func TestYooKassaGateway_Failure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := NewYooKassaGateway("shop", "bad", srv.URL).CreatePayment(context.Background(), CreateRequest{Amount: decimal.NewFromInt(500)})
	assert.ErrorIs(t, err, ErrGatewayFailed)
}

func TestYooKassaGateway_GetPayment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v3/payments/2c5f-ext", r.URL.Path)
		assert.Empty(t, r.Header.Get("Idempotence-Key"))
		user, _, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "shop", user)

		_, _ = w.Write([]byte(`{"id":"2c5f-ext","status":"succeeded","paid":true,"amount":{"value":"1500.00","currency":"RUB"},"metadata":{"payment_id":"p-1"}}`))
	}))
	defer srv.Close()

	info, err := NewYooKassaGateway("shop", "secret", srv.URL+"/v3/payments/").GetPayment(context.Background(), "2c5f-ext")
	require.NoError(t, err)
	assert.True(t, info.Succeeded())
	assert.True(t, info.Amount.Equal(decimal.NewFromInt(1500)))
	assert.Equal(t, "p-1", info.Metadata["payment_id"])
}

func TestYooKassaGateway_GetPaymentPending(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"x","status":"pending","paid":false,"amount":{"value":"500.00","currency":"RUB"}}`))
	}))
	defer srv.Close()

	info, err := NewYooKassaGateway("shop", "secret", srv.URL).GetPayment(context.Background(), "x")
	require.NoError(t, err)
	assert.False(t, info.Succeeded())

	_, err = NewYooKassaGateway("", "", srv.URL).GetPayment(context.Background(), "x")
	assert.ErrorIs(t, err, ErrGatewayNotConfigured)
}

func TestYooKassaGateway_GetPaymentNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewYooKassaGateway("shop", "secret", srv.URL).GetPayment(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrGatewayFailed)
}
