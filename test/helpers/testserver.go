package helpers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"auxchat_backend/database"
	"auxchat_backend/internal/app"
	"auxchat_backend/internal/config"
	"auxchat_backend/internal/logger"
)

const (
	DefaultPassword = "secret123"
	AdminSecret     = "test-admin-secret"
)

type TestServer struct {
	Server  *httptest.Server
	DB      *gorm.DB
	Config  *config.Config
	App     *app.App
	Gateway *FakeYooKassa
}

// NewTestServer поднимает приложение на отдельной sqlite базе в памяти.
// Геокодер смотрит на заглушку, которая всегда отвечает "Москва",
// платежи идут в FakeYooKassa.
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()
	logger.InitWithWriter("test", io.Discard)

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name()) + "_" + uuid.NewString()[:8]
	db, err := database.OpenInMemory(name)
	require.NoError(t, err, "Не удалось создать тестовую БД")

	geocoder := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"display_name":"Москва, Россия","address":{"city":"Москва"}}`))
	}))
	t.Cleanup(geocoder.Close)

	gateway := NewFakeYooKassa(t)

	cfg := &config.Config{}
	cfg.Server.Env = "test"
	cfg.Database.Driver = "sqlite"
	cfg.Database.DSN = name
	cfg.Auth.JWTSecret = "test-jwt-secret"
	cfg.Auth.AllowUserIDHeader = true
	cfg.Admin.Secret = AdminSecret
	cfg.Geo.GeocoderURL = geocoder.URL
	cfg.Storage.Type = "local"
	cfg.Storage.BasePath = t.TempDir()
	cfg.Storage.BaseURL = "/files"
	cfg.Payment.ShopID = YooKassaShopID
	cfg.Payment.SecretKey = YooKassaSecretKey
	cfg.Payment.APIURL = gateway.URL()
	config.ApplyDefaults(cfg)

	application, err := app.New(cfg, db)
	require.NoError(t, err, "Не удалось собрать приложение")

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	application.Start(ctx)

	server := httptest.NewServer(application.Router)
	ts := &TestServer{Server: server, DB: db, Config: cfg, App: application, Gateway: gateway}
	t.Cleanup(ts.Close)
	return ts
}

func (ts *TestServer) Close() {
	ts.Server.Close()
	if sqlDB, err := ts.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// SendRequest отправляет JSON запрос с Bearer токеном (если он задан)
func (ts *TestServer) SendRequest(t *testing.T, method, path, token string, body interface{}) (*http.Response, string) {
	t.Helper()
	headers := map[string]string{}
	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}
	return ts.SendRequestWithHeaders(t, method, path, headers, body)
}

func (ts *TestServer) SendRequestWithHeaders(t *testing.T, method, path string, headers map[string]string, body interface{}) (*http.Response, string) {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err, "Ошибка кодирования JSON для запроса")
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, ts.Server.URL+path, reqBody)
	require.NoError(t, err, "Ошибка создания HTTP-запроса")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	res, err := ts.Server.Client().Do(req)
	require.NoError(t, err, "Ошибка отправки HTTP-запроса")
	defer res.Body.Close()

	resBodyBytes, err := io.ReadAll(res.Body)
	require.NoError(t, err, "Ошибка чтения тела ответа")

	return res, string(resBodyBytes)
}

// DecodeJSON разбирает тело ответа
func DecodeJSON(t *testing.T, body string, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal([]byte(body), v), "Некорректный JSON: "+body)
}
