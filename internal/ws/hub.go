package ws

import (
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// envelope is the wire frame of the messaging channel.
type envelope struct {
	Event string `json:"event"`
	AckID string `json:"ackId,omitempty"`
	Data  any    `json:"data,omitempty"`
}

// Client is one websocket connection with serialized writes; gorilla allows a
// single concurrent writer.
type Client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// NewClient wraps an upgraded connection.
func NewClient(conn *websocket.Conn) *Client {
	return &Client{conn: conn}
}

func (c *Client) send(env envelope) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(env)
}

// Hub tracks the live connections of each user. A user may hold several
// connections (multiple tabs); pushes go to all of them.
type Hub struct {
	mu    sync.RWMutex
	users map[int]map[*Client]ConnInfo
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{users: make(map[int]map[*Client]ConnInfo)}
}

// AddClient registers a connection under its user.
func (h *Hub) AddClient(userID int, cl *Client, info ConnInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.users[userID]; !ok {
		h.users[userID] = make(map[*Client]ConnInfo)
	}
	h.users[userID][cl] = info
}

// RemoveClient drops a connection.
func (h *Hub) RemoveClient(userID int, cl *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.users[userID]; ok {
		delete(conns, cl)
		if len(conns) == 0 {
			delete(h.users, userID)
		}
	}
}

// Connections reports how many connections a user currently holds.
func (h *Hub) Connections(userID int) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID])
}

// SendToUser pushes env to every connection of userID except the one the
// event originated on, which already got its acknowledgement.
func (h *Hub) SendToUser(userID int, env envelope, except *Client) {
	h.mu.RLock()
	conns := make([]*Client, 0, len(h.users[userID]))
	for cl := range h.users[userID] {
		if cl != except {
			conns = append(conns, cl)
		}
	}
	h.mu.RUnlock()

	for _, cl := range conns {
		if err := cl.send(env); err != nil {
			log.Printf("websocket write error: %v", err)
			cl.conn.Close()
			h.RemoveClient(userID, cl)
		}
	}
}
