package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"auxchat_backend/internal/auth"
	"auxchat_backend/internal/logger"
	"auxchat_backend/pkg/apperrors"
)

const maxAdminBody = 1 << 20

// AdminSecretMiddleware пускает запрос только с общим секретом:
// заголовок X-Admin-Secret или поле admin_secret в JSON теле.
// Тело после чтения восстанавливается для хэндлера.
func AdminSecretMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		given := c.GetHeader("X-Admin-Secret")
		if given == "" && c.Request.Body != nil && c.Request.Method != http.MethodGet {
			given = secretFromBody(c)
		}

		if !auth.SecretsEqual(secret, given) {
			logger.CtxWarn(c.Request.Context(), "Admin secret rejected", "path", c.Request.URL.Path, "ip", c.ClientIP())
			apperrors.HandleError(c, apperrors.ErrInvalidAdminSecret)
			return
		}
		c.Next()
	}
}

func secretFromBody(c *gin.Context) string {
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxAdminBody))
	if err != nil {
		return ""
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(raw))

	var body struct {
		AdminSecret string `json:"admin_secret"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	return body.AdminSecret
}
