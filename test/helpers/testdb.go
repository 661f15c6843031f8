package helpers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"auxchat_backend/internal/auth"
	"auxchat_backend/internal/models"
)

var phoneSeq atomic.Int64

// NextPhone - уникальный номер для теста
func NextPhone() string {
	return fmt.Sprintf("+7901%07d", phoneSeq.Add(1))
}

// CreateUser создает пользователя напрямую в БД с паролем "secret123"
func (ts *TestServer) CreateUser(t *testing.T, username string, energy int) *models.User {
	t.Helper()

	hash, err := auth.HashPassword(DefaultPassword)
	require.NoError(t, err)

	phone := NextPhone()
	user := &models.User{
		Phone:        &phone,
		Username:     username,
		PasswordHash: hash,
		Energy:       energy,
	}
	require.NoError(t, ts.DB.Create(user).Error, "Не удалось создать пользователя %s", username)
	return user
}

// CreateAndLoginUser создает пользователя и логинит его через API
func (ts *TestServer) CreateAndLoginUser(t *testing.T, username string, energy int) (string, *models.User) {
	t.Helper()
	user := ts.CreateUser(t, username, energy)

	res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"phone":    user.PhoneValue(),
		"password": DefaultPassword,
	})
	require.Equal(t, http.StatusOK, res.StatusCode, "Логин должен быть успешным. Ответ: "+body)

	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &login))
	require.NotEmpty(t, login.Token)
	return login.Token, user
}

// SetLocation задает координаты пользователя без геокодера
func (ts *TestServer) SetLocation(t *testing.T, userID string, lat, lon float64) {
	t.Helper()
	require.NoError(t, ts.DB.Model(&models.User{}).Where("id = ?", userID).
		Updates(map[string]any{"latitude": lat, "longitude": lon}).Error)
}
