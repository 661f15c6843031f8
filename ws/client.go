package ws

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"auxchat_backend/internal/logger"
)

const (
	writeWait = 10 * time.Second
)

// IncomingWSMessage - сообщение от клиента. Поддерживается только ping.
type IncomingWSMessage struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data,omitempty"`
}

type Client struct {
	UserID string
	Conn   *websocket.Conn
	Send   chan []byte

	Manager        *WebSocketManager
	pingPeriod     time.Duration
	maxMessageSize int64
	onActivity     func(userID string)
}

func (c *Client) pongWait() time.Duration {
	return c.pingPeriod * 10 / 9
}

func (c *Client) readPump() {
	defer func() {
		c.Manager.Unregister(c)
		_ = c.Conn.Close()
	}()

	c.Conn.SetReadLimit(c.maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(c.pongWait()))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(c.pongWait()))
	})

	for {
		_, msgBytes, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("WebSocket read error", "user_id", c.UserID, "error", err)
			}
			return
		}

		var msg IncomingWSMessage
		if err := json.Unmarshal(msgBytes, &msg); err != nil {
			logger.Debug("Failed to parse ws message", "user_id", c.UserID, "error", err)
			continue
		}
		c.handleMessage(msg)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(c.pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Хаб закрыл канал
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logger.Debug("WebSocket write error", "user_id", c.UserID, "error", err)
				return
			}
		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(msg IncomingWSMessage) {
	switch msg.Action {
	case "ping":
		if c.onActivity != nil {
			c.onActivity(c.UserID)
		}
		c.Manager.enqueueTo(outgoing{client: c}, "pong", map[string]int64{"ts": time.Now().Unix()})
	default:
		logger.Debug("Unhandled ws action", "action", msg.Action, "user_id", c.UserID)
	}
}
