// Package realtime is the push boundary: a websocket hub fanning out
// notification payloads and order change events to every connected client.
// The engine itself never touches a connection.
package realtime

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Message is the wire envelope broadcast to clients.
type Message struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload"`
}

// Hub tracks connected websocket clients and broadcasts messages to all of
// them. Clients that fail a write are dropped.
type Hub struct {
	mu      sync.Mutex
	clients map[string]*websocket.Conn
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]*websocket.Conn)}
}

// Handle upgrades the request and keeps the connection registered until the
// client goes away. Inbound frames are drained and ignored; the channel is
// push-only.
func (h *Hub) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Println("[WS] [ERROR] upgrade failed:", err)
			return
		}
		defer conn.Close()

		id := uuid.NewString()
		h.mu.Lock()
		h.clients[id] = conn
		h.mu.Unlock()
		log.Println("[WS] [INFO] client connected:", id)

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.mu.Lock()
				delete(h.clients, id)
				h.mu.Unlock()
				log.Println("[WS] [INFO] client disconnected:", id)
				return
			}
		}
	}
}

// Broadcast sends one message to every connected client.
func (h *Hub) Broadcast(event string, payload interface{}) {
	body, err := json.Marshal(Message{Event: event, Payload: payload})
	if err != nil {
		log.Println("[WS] [ERROR] marshal failed:", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for id, conn := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, body); err != nil {
			log.Println("[WS] [ERROR] write failed, dropping client:", id)
			conn.Close()
			delete(h.clients, id)
		}
	}
}
