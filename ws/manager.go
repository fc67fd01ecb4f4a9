package ws

import (
	"sync"

	"schoolpay_backend/internal/logger"
	"schoolpay_backend/internal/models"
)

// PreferenceChecker reports whether a user accepts alerts of a category.
type PreferenceChecker func(userID string, category models.AlertCategory) bool

// Manager is the in-process hub fanning server events out to connected UI
// clients. Clients are keyed by user ID; a user reconnecting replaces their
// previous connection.
type Manager struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex

	allowCategory PreferenceChecker
}

func NewManager(allowCategory PreferenceChecker) *Manager {
	if allowCategory == nil {
		allowCategory = func(string, models.AlertCategory) bool { return true }
	}
	return &Manager{
		clients:       make(map[string]*Client),
		register:      make(chan *Client),
		unregister:    make(chan *Client),
		allowCategory: allowCategory,
	}
}

func (m *Manager) Run() {
	for {
		select {
		case client := <-m.register:
			m.mu.Lock()
			if old, ok := m.clients[client.UserID]; ok {
				close(old.Send)
			}
			m.clients[client.UserID] = client
			m.mu.Unlock()
			logger.Debug("ws client registered", "user_id", client.UserID)

		case client := <-m.unregister:
			m.mu.Lock()
			if current, ok := m.clients[client.UserID]; ok && current == client {
				close(client.Send)
				delete(m.clients, client.UserID)
			}
			m.mu.Unlock()
			logger.Debug("ws client unregistered", "user_id", client.UserID)
		}
	}
}

// BroadcastToUsers pushes a payload to each of the given users that is
// currently connected. A full send buffer drops the client rather than
// blocking the hub.
func (m *Manager) BroadcastToUsers(userIDs []string, payload any) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, userID := range userIDs {
		client, ok := m.clients[userID]
		if !ok {
			continue
		}
		select {
		case client.Send <- payload:
		default:
			go func(c *Client) { m.unregister <- c }(client)
		}
	}
}

// BroadcastAlert pushes an alert to every connected user whose notification
// preferences allow its category.
func (m *Manager) BroadcastAlert(alert *models.DeviceAlert) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	payload := map[string]any{"type": "device_alert", "alert": alert}
	for userID, client := range m.clients {
		if !m.allowCategory(userID, alert.Category) {
			continue
		}
		select {
		case client.Send <- payload:
		default:
			go func(c *Client) { m.unregister <- c }(client)
		}
	}
}

func (m *Manager) ClientCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}
