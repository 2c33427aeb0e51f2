package websocket

import (
	"log"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
)

type Client struct {
	UserID uuid.UUID
	Conn   *websocket.Conn
}

// Envelope is the frame pushed to connected clients: an event tag plus the
// enriched entity that triggered it.
type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Hub keeps one connection per user and fans booking/rating events out to
// the participants' channels.
type Hub struct {
	mu         sync.RWMutex
	clients    map[uuid.UUID]*websocket.Conn
	Register   chan *Client
	Unregister chan *Client
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]*websocket.Conn),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			log.Printf("Client registered: %s", client.UserID)
			h.mu.Lock()
			h.clients[client.UserID] = client.Conn
			h.mu.Unlock()
		case client := <-h.Unregister:
			log.Printf("Client unregistered: %s", client.UserID)
			h.mu.Lock()
			if conn, ok := h.clients[client.UserID]; ok && conn == client.Conn {
				delete(h.clients, client.UserID)
			}
			h.mu.Unlock()
		}
	}
}

// Emit pushes the event to every connected target. Targets without a live
// connection are skipped; write failures drop the connection.
func (h *Hub) Emit(event string, payload any, targets ...uuid.UUID) {
	envelope := Envelope{Event: event, Data: payload}

	for _, target := range targets {
		h.mu.RLock()
		conn, ok := h.clients[target]
		h.mu.RUnlock()
		if !ok {
			continue
		}
		if err := conn.WriteJSON(envelope); err != nil {
			log.Printf("Error sending %s to client %s: %v", event, target, err)
			conn.Close()
			h.mu.Lock()
			if current, ok := h.clients[target]; ok && current == conn {
				delete(h.clients, target)
			}
			h.mu.Unlock()
		}
	}
}
