package integration_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auxchat_backend/internal/models"
	"auxchat_backend/test/helpers"
)

type authBody struct {
	Token string `json:"token"`
	User  struct {
		ID       string `json:"id"`
		Username string `json:"username"`
		Energy   int    `json:"energy"`
		Avatar   string `json:"avatar"`
	} `json:"user"`
}

func TestRegisterAndLogin(t *testing.T) {
	t.Parallel()
	ts := helpers.NewTestServer(t)
	phone := helpers.NextPhone()

	res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"phone":    phone,
		"username": "alice",
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, res.StatusCode, body)

	var reg authBody
	helpers.DecodeJSON(t, body, &reg)
	assert.NotEmpty(t, reg.Token)
	assert.Equal(t, "alice", reg.User.Username)
	assert.Equal(t, ts.Config.Energy.Initial, reg.User.Energy)
	assert.NotEmpty(t, reg.User.Avatar)

	// повторная регистрация
	res, body = ts.SendRequest(t, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"phone":    phone,
		"username": "alice2",
		"password": "secret123",
	})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode, body)

	res, body = ts.SendRequest(t, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"phone":    phone,
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, res.StatusCode, body)

	var login authBody
	helpers.DecodeJSON(t, body, &login)
	assert.Equal(t, reg.User.ID, login.User.ID)

	res, body = ts.SendRequest(t, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"phone":    phone,
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode, body)

	res, body = ts.SendRequest(t, http.MethodGet, "/api/v1/users/me", login.Token, nil)
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	assert.Contains(t, body, `"username":"alice"`)
}

func TestSmsSignupFlow(t *testing.T) {
	t.Parallel()
	ts := helpers.NewTestServer(t)
	phone := helpers.NextPhone()

	res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/sms/send", "", map[string]any{"phone": phone})
	require.Equal(t, http.StatusOK, res.StatusCode, body)

	// второй запрос раньше интервала
	res, _ = ts.SendRequest(t, http.MethodPost, "/api/v1/auth/sms/send", "", map[string]any{"phone": phone})
	assert.Equal(t, http.StatusTooManyRequests, res.StatusCode)

	var code models.SmsCode
	require.NoError(t, ts.DB.Where("phone = ?", phone).Order("created_at DESC").First(&code).Error)

	res, body = ts.SendRequest(t, http.MethodPost, "/api/v1/auth/sms/verify", "", map[string]any{
		"phone": phone,
		"code":  code.Code,
	})
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	assert.Contains(t, body, `"is_new":true`)

	res, body = ts.SendRequest(t, http.MethodPost, "/api/v1/auth/sms/complete", "", map[string]any{
		"phone":    phone,
		"code":     code.Code,
		"username": "bob_sms",
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, res.StatusCode, body)

	var signup authBody
	helpers.DecodeJSON(t, body, &signup)
	assert.NotEmpty(t, signup.Token)
	assert.Equal(t, "bob_sms", signup.User.Username)
}

func TestIdentity(t *testing.T) {
	t.Parallel()
	ts := helpers.NewTestServer(t)
	user := ts.CreateUser(t, "header_user", 50)

	t.Run("missing identity", func(t *testing.T) {
		res, _ := ts.SendRequest(t, http.MethodGet, "/api/v1/users/me", "", nil)
		assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	})

	t.Run("invalid token", func(t *testing.T) {
		res, _ := ts.SendRequest(t, http.MethodGet, "/api/v1/users/me", "not-a-jwt", nil)
		assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	})

	t.Run("user id header", func(t *testing.T) {
		res, body := ts.SendRequestWithHeaders(t, http.MethodGet, "/api/v1/users/me",
			map[string]string{"X-User-Id": user.ID}, nil)
		require.Equal(t, http.StatusOK, res.StatusCode, body)
		assert.Contains(t, body, user.ID)
	})

	t.Run("user id header must be uuid", func(t *testing.T) {
		res, _ := ts.SendRequestWithHeaders(t, http.MethodGet, "/api/v1/users/me",
			map[string]string{"X-User-Id": "42"}, nil)
		assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	})
}

func TestUpdateLocation_ResolvesCity(t *testing.T) {
	t.Parallel()
	ts := helpers.NewTestServer(t)
	token, _ := ts.CreateAndLoginUser(t, "walker", 10)

	res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/users/me/location", token, map[string]any{
		"latitude":  55.7558,
		"longitude": 37.6173,
	})
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	assert.Contains(t, body, "Москва")

	res, body = ts.SendRequest(t, http.MethodPost, "/api/v1/users/me/location", token, map[string]any{
		"latitude":  123.0,
		"longitude": 37.6173,
	})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode, body)
}
