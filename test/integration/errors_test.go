package integration_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auxchat_backend/internal/models"
	"auxchat_backend/test/helpers"
)

func TestRouting_NotFoundAndMethodNotAllowed(t *testing.T) {
	t.Parallel()
	ts := helpers.NewTestServer(t)

	res, body := ts.SendRequest(t, http.MethodGet, "/api/v1/nothing-here", "", nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Contains(t, body, `"code":"NOT_FOUND"`)

	res, body = ts.SendRequest(t, http.MethodDelete, "/api/v1/auth/login", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, res.StatusCode)
	assert.Contains(t, body, `"code":"METHOD_NOT_ALLOWED"`)
}

func TestInvalidJSON(t *testing.T) {
	t.Parallel()
	ts := helpers.NewTestServer(t)

	res, body := ts.SendRequestWithHeaders(t, http.MethodPost, "/api/v1/auth/login", nil, []int{1, 2, 3})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode, body)
}

func TestInternalError_HidesDetails(t *testing.T) {
	t.Parallel()
	ts := helpers.NewTestServer(t)
	require.NoError(t, ts.DB.Migrator().DropTable(&models.Message{}))

	res, body := ts.SendRequest(t, http.MethodGet, "/api/v1/messages", "", nil)
	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
	assert.Contains(t, body, "Internal server error")
	assert.NotContains(t, body, "no such table")
}

func TestHealthAndMetrics(t *testing.T) {
	t.Parallel()
	ts := helpers.NewTestServer(t)

	res, body := ts.SendRequest(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, body)

	res, body = ts.SendRequest(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, "auxchat_http_requests_total")
}

func TestRequestIDEchoed(t *testing.T) {
	t.Parallel()
	ts := helpers.NewTestServer(t)

	res, _ := ts.SendRequestWithHeaders(t, http.MethodGet, "/health", map[string]string{"X-Request-ID": "req-123"}, nil)
	assert.Equal(t, "req-123", res.Header.Get("X-Request-ID"))

	res, _ = ts.SendRequest(t, http.MethodGet, "/health", "", nil)
	assert.NotEmpty(t, res.Header.Get("X-Request-ID"))
}
