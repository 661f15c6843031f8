package integration_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auxchat_backend/internal/models"
	"auxchat_backend/test/helpers"
)

func adminHeaders() map[string]string {
	return map[string]string{"X-Admin-Secret": helpers.AdminSecret}
}

func TestAdmin_SecretRequired(t *testing.T) {
	t.Parallel()
	ts := helpers.NewTestServer(t)

	res, _ := ts.SendRequest(t, http.MethodGet, "/api/v1/admin/users", "", nil)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	res, _ = ts.SendRequestWithHeaders(t, http.MethodGet, "/api/v1/admin/users",
		map[string]string{"X-Admin-Secret": "wrong"}, nil)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	ts.CreateUser(t, "listed", 10)
	res, body := ts.SendRequestWithHeaders(t, http.MethodGet, "/api/v1/admin/users", adminHeaders(), nil)
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	assert.Contains(t, body, `"username":"listed"`)
}

func TestAdmin_ActionsWithSecretInBody(t *testing.T) {
	t.Parallel()
	ts := helpers.NewTestServer(t)
	user := ts.CreateUser(t, "target", 10)

	res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/admin/users/action", "", map[string]any{
		"admin_secret":   helpers.AdminSecret,
		"action":         "add_energy",
		"target_user_id": user.ID,
		"amount":         40,
	})
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	assert.Contains(t, body, `"energy":50`)

	res, body = ts.SendRequestWithHeaders(t, http.MethodPost, "/api/v1/admin/users/action", adminHeaders(), map[string]any{
		"action":         "ban",
		"target_user_id": user.ID,
	})
	require.Equal(t, http.StatusOK, res.StatusCode, body)

	// забаненный не может войти
	res, _ = ts.SendRequest(t, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"phone":    user.PhoneValue(),
		"password": helpers.DefaultPassword,
	})
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	res, _ = ts.SendRequestWithHeaders(t, http.MethodPost, "/api/v1/admin/users/action", adminHeaders(), map[string]any{
		"action":         "teleport",
		"target_user_id": user.ID,
	})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res, body = ts.SendRequestWithHeaders(t, http.MethodPost, "/api/v1/admin/users/action", adminHeaders(), map[string]any{
		"action":         "delete",
		"target_user_id": user.ID,
	})
	require.Equal(t, http.StatusOK, res.StatusCode, body)

	var count int64
	require.NoError(t, ts.DB.Model(&models.User{}).Where("id = ?", user.ID).Count(&count).Error)
	assert.Zero(t, count)
}
