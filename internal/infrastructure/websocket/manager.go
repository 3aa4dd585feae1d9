package websocket

import (
	"sync"

	"github.com/gorilla/websocket"

	"unimarket/pkg/logger"
)

// Client is one authenticated WebSocket connection.
type Client struct {
	UserID string
	Conn   *websocket.Conn
	Send   chan []byte

	mu     sync.Mutex
	closed bool
}

// trySend queues a message unless the client is closed or its buffer is
// full. The mutex pairs every send with the closed check so a concurrent
// close can never turn a queued delivery into a send on a closed channel.
func (c *Client) trySend(message []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	select {
	case c.Send <- message:
		return true
	default:
		return false
	}
}

// closeSend closes the send channel exactly once, under the same mutex that
// guards trySend.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.Send)
	}
}

// Manager tracks connected clients and which conversation rooms they have
// joined. One connection per user; a new connection replaces the old one.
type Manager struct {
	clients map[string]*Client
	rooms   map[string]map[string]bool // conversationID -> set of userIDs
	mutex   sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		clients: make(map[string]*Client),
		rooms:   make(map[string]map[string]bool),
	}
}

func (m *Manager) Register(client *Client) {
	m.mutex.Lock()
	if old, ok := m.clients[client.UserID]; ok {
		old.closeSend()
	}
	m.clients[client.UserID] = client
	m.mutex.Unlock()
	logger.Info("Client registered: %s", client.UserID)
}

// Unregister drops the client if it is still the user's current connection.
// A stale unregister from a replaced connection leaves the live connection
// and its room memberships untouched.
func (m *Manager) Unregister(client *Client) {
	m.mutex.Lock()
	if current, ok := m.clients[client.UserID]; ok && current == client {
		delete(m.clients, client.UserID)
		client.closeSend()
		for _, members := range m.rooms {
			delete(members, client.UserID)
		}
	}
	m.mutex.Unlock()
	logger.Info("Client unregistered: %s", client.UserID)
}

// SendToUser delivers a message to a user's connection if one exists;
// disconnected users are silently skipped.
func (m *Manager) SendToUser(userID string, message []byte) {
	m.mutex.RLock()
	client, ok := m.clients[userID]
	m.mutex.RUnlock()

	if !ok {
		return
	}

	if !client.trySend(message) {
		logger.Warn("Dropping message for slow or closing client %s", userID)
	}
}

func (m *Manager) JoinConversation(conversationID, userID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.rooms[conversationID] == nil {
		m.rooms[conversationID] = make(map[string]bool)
	}
	m.rooms[conversationID][userID] = true
}

func (m *Manager) LeaveConversation(conversationID, userID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	delete(m.rooms[conversationID], userID)
	if len(m.rooms[conversationID]) == 0 {
		delete(m.rooms, conversationID)
	}
}

// SendToConversation delivers a message to every joined member of the
// conversation room except excludeUserID.
func (m *Manager) SendToConversation(conversationID string, message []byte, excludeUserID string) {
	m.mutex.RLock()
	members := make([]string, 0, len(m.rooms[conversationID]))
	for userID := range m.rooms[conversationID] {
		if userID != excludeUserID {
			members = append(members, userID)
		}
	}
	m.mutex.RUnlock()

	for _, userID := range members {
		m.SendToUser(userID, message)
	}
}

// WritePump drains the send channel onto the connection. It exits when the
// channel is closed by Unregister.
func (c *Client) WritePump() {
	defer c.Conn.Close()

	for message := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			logger.Error("Write to client %s failed: %v", c.UserID, err)
			return
		}
	}
	c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}
