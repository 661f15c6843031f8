package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"auxchat_backend/internal/auth"
	"auxchat_backend/internal/logger"
	"auxchat_backend/pkg/apperrors"
	"auxchat_backend/pkg/contextkeys"
)

const (
	authMethodToken  = "token"
	authMethodHeader = "header"
)

// Authenticator определяет пользователя запроса
type Authenticator struct {
	tokens      *auth.TokenIssuer
	allowHeader bool
}

func NewAuthenticator(tokens *auth.TokenIssuer, allowUserIDHeader bool) *Authenticator {
	return &Authenticator{tokens: tokens, allowHeader: allowUserIDHeader}
}

// AuthMiddleware - обязательная идентификация: Bearer токен, ?token= для ws,
// либо X-User-Id, если он разрешен конфигом
func (a *Authenticator) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, method, err := a.identify(c)
		if err != nil {
			apperrors.HandleError(c, err)
			return
		}
		if userID == "" {
			apperrors.HandleError(c, apperrors.ErrMissingIdentity)
			return
		}
		setIdentity(c, userID, method)
		c.Next()
	}
}

// OptionalAuthMiddleware - как AuthMiddleware, но анонимный запрос пропускается.
// Невалидный токен все равно отклоняется.
func (a *Authenticator) OptionalAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, method, err := a.identify(c)
		if err != nil {
			apperrors.HandleError(c, err)
			return
		}
		if userID != "" {
			setIdentity(c, userID, method)
		}
		c.Next()
	}
}

func (a *Authenticator) identify(c *gin.Context) (string, string, error) {
	token := ""
	if header := c.GetHeader("Authorization"); header != "" {
		if !strings.HasPrefix(header, "Bearer ") {
			return "", "", apperrors.ErrInvalidToken
		}
		token = strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	} else if q := c.Query("token"); q != "" {
		token = q
	}

	if token != "" {
		claims, err := a.tokens.ParseToken(token)
		if err != nil {
			logger.CtxDebug(c.Request.Context(), "Token rejected", "error", err.Error())
			return "", "", apperrors.ErrInvalidToken
		}
		return claims.UserID, authMethodToken, nil
	}

	if a.allowHeader {
		if headerID := strings.TrimSpace(c.GetHeader("X-User-Id")); headerID != "" {
			if _, err := uuid.Parse(headerID); err != nil {
				return "", "", apperrors.ErrInvalidToken
			}
			return headerID, authMethodHeader, nil
		}
	}

	return "", "", nil
}

func setIdentity(c *gin.Context, userID, method string) {
	c.Set(contextkeys.UserIDKey, userID)
	c.Set(contextkeys.AuthMethodKey, method)
	c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), userID))
}

// GetUserID извлекает ID пользователя из контекста
func GetUserID(c *gin.Context) string {
	return c.GetString(contextkeys.UserIDKey)
}
