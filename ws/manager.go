package ws

import (
	"context"
	"encoding/json"
	"sync"

	"auxchat_backend/internal/logger"
	"auxchat_backend/internal/metrics"
)

const (
	EventMessageNew    = "message.new"
	EventPrivateNew    = "private.new"
	EventEnergyUpdated = "energy.updated"
)

// Event - конверт, который уходит клиенту
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// outgoing - userID пустой и client nil означают "всем"
type outgoing struct {
	userID string
	client *Client
	data   []byte
}

// WebSocketManager владеет реестром клиентов. Реестр меняет только горутина Run.
type WebSocketManager struct {
	clients    map[string]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan outgoing
	done       chan struct{}
	sendBuffer int

	mu    sync.RWMutex
	count int
}

func NewWebSocketManager(sendBuffer int) *WebSocketManager {
	if sendBuffer <= 0 {
		sendBuffer = 256
	}
	return &WebSocketManager{
		clients:    make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan outgoing, 1024),
		done:       make(chan struct{}),
		sendBuffer: sendBuffer,
	}
}

func (manager *WebSocketManager) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(manager.done)
			manager.closeAll()
			logger.Info("WebSocket manager stopped")
			return

		case client := <-manager.register:
			manager.add(client)
			logger.Debug("Client registered", "user_id", client.UserID, "total", manager.ClientCount())

		case client := <-manager.unregister:
			if manager.remove(client) {
				logger.Debug("Client unregistered", "user_id", client.UserID, "total", manager.ClientCount())
			}

		case msg := <-manager.broadcast:
			manager.deliver(msg)
		}
	}
}

// Broadcast отправляет событие всем подключенным
func (manager *WebSocketManager) Broadcast(eventType string, payload any) {
	manager.enqueue("", eventType, payload)
}

// SendToUser отправляет событие всем сокетам пользователя
func (manager *WebSocketManager) SendToUser(userID, eventType string, payload any) {
	if userID == "" {
		return
	}
	manager.enqueue(userID, eventType, payload)
}

// Register добавляет клиента; false, если хаб уже остановлен
func (manager *WebSocketManager) Register(client *Client) bool {
	select {
	case manager.register <- client:
		return true
	case <-manager.done:
		return false
	}
}

func (manager *WebSocketManager) Unregister(client *Client) {
	select {
	case manager.unregister <- client:
	case <-manager.done:
	}
}

func (manager *WebSocketManager) ClientCount() int {
	manager.mu.RLock()
	defer manager.mu.RUnlock()
	return manager.count
}

func (manager *WebSocketManager) IsUserConnected(userID string) bool {
	manager.mu.RLock()
	defer manager.mu.RUnlock()
	return len(manager.clients[userID]) > 0
}

func (manager *WebSocketManager) enqueue(userID, eventType string, payload any) {
	manager.enqueueTo(outgoing{userID: userID}, eventType, payload)
}

func (manager *WebSocketManager) enqueueTo(msg outgoing, eventType string, payload any) {
	data, err := json.Marshal(Event{Type: eventType, Payload: payload})
	if err != nil {
		logger.WithError(err).Error("Failed to encode ws event", "type", eventType)
		return
	}
	msg.data = data
	// Отправитель HTTP-запроса не должен ждать хаб
	select {
	case manager.broadcast <- msg:
	default:
		logger.Warn("WebSocket broadcast queue is full, event dropped", "type", eventType)
	}
}

func (manager *WebSocketManager) add(client *Client) {
	manager.mu.Lock()
	defer manager.mu.Unlock()
	set, ok := manager.clients[client.UserID]
	if !ok {
		set = make(map[*Client]struct{})
		manager.clients[client.UserID] = set
	}
	set[client] = struct{}{}
	manager.count++
	metrics.WSConnections.Inc()
}

func (manager *WebSocketManager) remove(client *Client) bool {
	manager.mu.Lock()
	defer manager.mu.Unlock()
	set, ok := manager.clients[client.UserID]
	if !ok {
		return false
	}
	if _, ok := set[client]; !ok {
		return false
	}
	delete(set, client)
	if len(set) == 0 {
		delete(manager.clients, client.UserID)
	}
	close(client.Send)
	manager.count--
	metrics.WSConnections.Dec()
	return true
}

func (manager *WebSocketManager) deliver(msg outgoing) {
	var slow []*Client

	manager.mu.RLock()
	if msg.client != nil {
		if _, ok := manager.clients[msg.client.UserID][msg.client]; ok && !trySend(msg.client, msg.data) {
			slow = append(slow, msg.client)
		}
	} else if msg.userID != "" {
		for client := range manager.clients[msg.userID] {
			if !trySend(client, msg.data) {
				slow = append(slow, client)
			}
		}
	} else {
		for _, set := range manager.clients {
			for client := range set {
				if !trySend(client, msg.data) {
					slow = append(slow, client)
				}
			}
		}
	}
	manager.mu.RUnlock()

	// Медленные клиенты отключаются, буфер переполнен
	for _, client := range slow {
		logger.Warn("Client disconnected due to full send channel", "user_id", client.UserID)
		manager.remove(client)
	}
}

func (manager *WebSocketManager) closeAll() {
	manager.mu.Lock()
	defer manager.mu.Unlock()
	for userID, set := range manager.clients {
		for client := range set {
			close(client.Send)
			metrics.WSConnections.Dec()
		}
		delete(manager.clients, userID)
	}
	manager.count = 0
}

func trySend(client *Client, data []byte) bool {
	select {
	case client.Send <- data:
		return true
	default:
		return false
	}
}
