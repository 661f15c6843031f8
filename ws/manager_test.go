package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(m *WebSocketManager, userID string, buffer int) *Client {
	return &Client{UserID: userID, Send: make(chan []byte, buffer), Manager: m}
}

func receive(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case data, ok := <-c.Send:
		require.True(t, ok, "send channel closed")
		var ev Event
		require.NoError(t, json.Unmarshal(data, &ev))
		return ev
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}
	return Event{}
}

func assertNothing(t *testing.T, c *Client) {
	t.Helper()
	select {
	case data := <-c.Send:
		t.Fatalf("unexpected event: %s", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestManager_BroadcastAndSendToUser(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := NewWebSocketManager(8)
	go m.Run(ctx)

	alice := newTestClient(m, "alice", 8)
	bob := newTestClient(m, "bob", 8)
	require.True(t, m.Register(alice))
	require.True(t, m.Register(bob))

	assert.Eventually(t, func() bool { return m.ClientCount() == 2 }, time.Second, 5*time.Millisecond)
	assert.True(t, m.IsUserConnected("alice"))

	m.Broadcast(EventMessageNew, map[string]string{"text": "hi"})
	assert.Equal(t, EventMessageNew, receive(t, alice).Type)
	assert.Equal(t, EventMessageNew, receive(t, bob).Type)

	m.SendToUser("bob", EventPrivateNew, map[string]string{"text": "psst"})
	assert.Equal(t, EventPrivateNew, receive(t, bob).Type)
	assertNothing(t, alice)
}

func TestManager_DropsSlowClient(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := NewWebSocketManager(1)
	go m.Run(ctx)

	slow := newTestClient(m, "slow", 1)
	require.True(t, m.Register(slow))

	m.Broadcast(EventMessageNew, 1)
	m.Broadcast(EventMessageNew, 2)

	assert.Eventually(t, func() bool { return !m.IsUserConnected("slow") }, time.Second, 5*time.Millisecond)
}

func TestManager_StopClosesClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	m := NewWebSocketManager(4)
	go m.Run(ctx)

	c := newTestClient(m, "u1", 4)
	require.True(t, m.Register(c))
	cancel()

	assert.Eventually(t, func() bool {
		select {
		case _, ok := <-c.Send:
			return !ok
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)

	assert.False(t, m.Register(newTestClient(m, "late", 1)))
}
