package integration_test

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auxchat_backend/internal/models"
	"auxchat_backend/test/helpers"
)

type wsEvent struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

func dialWS(t *testing.T, ts *helpers.TestServer, token string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.Server.URL, "http") + "/api/v1/ws?token=" + token
	conn, res, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusSwitchingProtocols, res.StatusCode)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// readUntil читает события, пока не встретит нужный тип
func readUntil(t *testing.T, conn *websocket.Conn, eventType string) wsEvent {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	for {
		var ev wsEvent
		require.NoError(t, conn.ReadJSON(&ev))
		if ev.Type == eventType {
			return ev
		}
	}
}

func TestWebSocket_ReceivesNewMessages(t *testing.T) {
	t.Parallel()
	ts := helpers.NewTestServer(t)
	listenerToken, _ := ts.CreateAndLoginUser(t, "listener", 0)
	senderToken, _ := ts.CreateAndLoginUser(t, "sender", 100)

	conn := dialWS(t, ts, listenerToken)
	require.Eventually(t, func() bool { return ts.App.WSManager.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/messages", senderToken, map[string]any{"text": "всем привет"})
	require.Equal(t, http.StatusCreated, res.StatusCode, body)

	ev := readUntil(t, conn, "message.new")
	assert.Equal(t, "всем привет", ev.Payload["text"])
}

func TestWebSocket_PingUpdatesActivity(t *testing.T) {
	t.Parallel()
	ts := helpers.NewTestServer(t)
	token, user := ts.CreateAndLoginUser(t, "pinger", 0)

	conn := dialWS(t, ts, token)
	require.NoError(t, conn.WriteJSON(map[string]string{"action": "ping"}))
	readUntil(t, conn, "pong")

	var fresh models.User
	require.NoError(t, ts.DB.First(&fresh, "id = ?", user.ID).Error)
	assert.NotNil(t, fresh.LastActivity)
}

func TestWebSocket_RequiresAuth(t *testing.T) {
	t.Parallel()
	ts := helpers.NewTestServer(t)

	url := "ws" + strings.TrimPrefix(ts.Server.URL, "http") + "/api/v1/ws"
	_, res, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, res)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}
