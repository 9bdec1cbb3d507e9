package websocket

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Client is one authenticated WebSocket connection.
type Client struct {
	UserID string
	Conn   *websocket.Conn
	Send   chan []byte
}

// InboundHandler receives frames a connected client sends upstream, e.g.
// open/close-conversation commands. Set before Start.
type InboundHandler func(userID string, data []byte)

// Manager owns all active WebSocket connections, one per user.
type Manager struct {
	clients      map[string]*Client
	Register     chan *Client
	Unregister   chan *Client
	mutex        sync.RWMutex
	writeTimeout time.Duration

	OnInbound      InboundHandler
	OnConnected    func(userID string)
	OnDisconnected func(userID string)
}

func NewManager(writeTimeout time.Duration) *Manager {
	return &Manager{
		clients:      make(map[string]*Client),
		Register:     make(chan *Client),
		Unregister:   make(chan *Client),
		writeTimeout: writeTimeout,
	}
}

// Start runs the manager's registration loop in a goroutine.
func (m *Manager) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case client := <-m.Register:
				m.mutex.Lock()
				if old, ok := m.clients[client.UserID]; ok {
					// A reconnect replaces the previous connection.
					close(old.Send)
				}
				m.clients[client.UserID] = client
				m.mutex.Unlock()
				log.Printf("Client registered: %s", client.UserID)
				if m.OnConnected != nil {
					m.OnConnected(client.UserID)
				}

			case client := <-m.Unregister:
				m.mutex.Lock()
				cur, ok := m.clients[client.UserID]
				current := ok && cur == client
				if current {
					delete(m.clients, client.UserID)
					close(client.Send)
				}
				m.mutex.Unlock()

				// A connection replaced by a reconnect unregisters too;
				// only the current connection's departure ends the session.
				if current {
					log.Printf("Client unregistered: %s", client.UserID)
					if m.OnDisconnected != nil {
						m.OnDisconnected(client.UserID)
					}
				}

			case <-ctx.Done():
				return
			}
		}
	}()
}

// SendToUser queues a payload for the user's connection. Drops the payload
// when the user is offline or the connection's send buffer is full; a slow
// consumer is disconnected rather than allowed to stall the caller.
func (m *Manager) SendToUser(userID string, payload []byte) {
	m.mutex.RLock()
	client, ok := m.clients[userID]
	m.mutex.RUnlock()

	if !ok {
		return
	}

	select {
	case client.Send <- payload:
	default:
		log.Printf("Send buffer full for %s, dropping connection", userID)
		m.Unregister <- client
	}
}

// IsOnline reports whether the user has an active connection.
func (m *Manager) IsOnline(userID string) bool {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	_, ok := m.clients[userID]
	return ok
}

// ReadPump reads frames from the connection until it closes.
func (c *Client) ReadPump(m *Manager) {
	defer func() {
		m.Unregister <- c
		c.Conn.Close()
	}()

	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("error: %v", err)
			}
			break
		}

		if m.OnInbound != nil {
			m.OnInbound(c.UserID, data)
		}
	}
}

// WritePump drains the send channel onto the wire.
func (c *Client) WritePump(m *Manager) {
	defer c.Conn.Close()

	for {
		message, ok := <-c.Send
		if !ok {
			c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}

		c.Conn.SetWriteDeadline(time.Now().Add(m.writeTimeout))
		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			log.Printf("error: %v", err)
			return
		}
	}
}
