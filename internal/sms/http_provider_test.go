package sms

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPProvider_Send(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key", r.URL.Query().Get("api_id"))
		assert.Equal(t, "79001234567", r.URL.Query().Get("to"))
		assert.Contains(t, r.URL.Query().Get("msg"), "1234")
		_, _ = w.Write([]byte(`{"status":"OK","status_code":100}`))
	}))
	defer srv.Close()

	p := NewHTTPProvider(Config{APIURL: srv.URL, APIKey: "key"})
	require.NoError(t, p.Send(context.Background(), "79001234567", CodeText("1234")))
}

func TestHTTPProvider_GatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ERROR","status_code":200,"status_text":"Неправильный api_id"}`))
	}))
	defer srv.Close()

	err := NewHTTPProvider(Config{APIURL: srv.URL, APIKey: "bad"}).Send(context.Background(), "79001234567", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Неправильный api_id")
}

func TestNewProvider(t *testing.T) {
	p, err := NewProvider(Config{Provider: "log"})
	require.NoError(t, err)
	assert.IsType(t, &LogProvider{}, p)

	_, err = NewProvider(Config{Provider: "http"})
	assert.Error(t, err, "без api_url и api_key конфигурация невалидна")

	_, err = NewProvider(Config{Provider: "pigeon"})
	assert.Error(t, err)
}
