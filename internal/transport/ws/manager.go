package ws

import "log/slog"

// Manager tracks all live chat connections and owns their lifecycle.
type Manager struct {
	// clients maps connection id → client.
	clients map[string]*Client

	register   chan *Client
	unregister chan *Client

	logger *slog.Logger
}

func NewManager(logger *slog.Logger) *Manager {
	return &Manager{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger,
	}
}

// Run starts the Manager's main event loop. Call this in a goroutine.
func (m *Manager) Run() {
	for {
		select {
		case client := <-m.register:
			m.clients[client.id] = client
			m.logger.Info("chat session connected", "user", client.user, "sessions", len(m.clients))

		case client := <-m.unregister:
			if _, ok := m.clients[client.id]; ok {
				delete(m.clients, client.id)
				close(client.send)
				close(client.done)
				m.logger.Info("chat session disconnected", "user", client.user, "sessions", len(m.clients))
			}
		}
	}
}
