package ws

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"auxchat_backend/internal/logger"
	"auxchat_backend/pkg/apperrors"
	"auxchat_backend/pkg/contextkeys"
)

// HandlerConfig - параметры соединений
type HandlerConfig struct {
	AllowedOrigins []string
	PingInterval   time.Duration
	MaxMessageSize int64
	// OnActivity вызывается при ping от клиента, обновляет last_activity
	OnActivity func(userID string)
}

type WebSocketHandler struct {
	Manager  *WebSocketManager
	cfg      HandlerConfig
	upgrader websocket.Upgrader
}

func NewWebSocketHandler(manager *WebSocketManager, cfg HandlerConfig) *WebSocketHandler {
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 30 * time.Second
	}
	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = 4096
	}
	h := &WebSocketHandler{Manager: manager, cfg: cfg}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range h.cfg.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

// ServeWS апгрейдит соединение. Пользователь уже установлен AuthMiddleware.
func (h *WebSocketHandler) ServeWS(c *gin.Context) {
	userID := c.GetString(contextkeys.UserIDKey)
	if userID == "" {
		apperrors.HandleError(c, apperrors.ErrMissingIdentity)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.CtxWarn(c.Request.Context(), "WebSocket upgrade error", "error", err)
		return
	}

	client := &Client{
		UserID:         userID,
		Conn:           conn,
		Send:           make(chan []byte, h.Manager.sendBuffer),
		Manager:        h.Manager,
		pingPeriod:     h.cfg.PingInterval,
		maxMessageSize: h.cfg.MaxMessageSize,
		onActivity:     h.cfg.OnActivity,
	}

	if !h.Manager.Register(client) {
		_ = conn.Close()
		return
	}
	logger.CtxInfo(c.Request.Context(), "WebSocket client connected", "user_id", userID)

	go client.writePump()
	go client.readPump()
}
