package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Client is one live connection. A recipient may hold several, one per
// device or tab.
type Client struct {
	Hub  *Hub
	Key  string
	Conn *websocket.Conn
	Send chan []byte
}

// Event is the envelope written to clients.
type Event struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// MessageHandler handles an inbound client frame.
type MessageHandler func(*Client, *Event) error

// Hub tracks live connections by recipient key ("user:5", "employee:3").
type Hub struct {
	clients map[string]map[*Client]bool

	Register   chan *Client
	Unregister chan *Client

	handlers map[string]MessageHandler

	stop chan struct{}
	done chan struct{}
	mu   sync.RWMutex
}

func NewHub() *Hub {
	hub := &Hub{
		clients:    make(map[string]map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		handlers:   make(map[string]MessageHandler),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	hub.handlers["ping"] = handlePing
	return hub
}

// Run owns registration until Stop is called.
func (h *Hub) Run() {
	defer close(h.done)
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if h.clients[client.Key] == nil {
				h.clients[client.Key] = make(map[*Client]bool)
			}
			h.clients[client.Key][client] = true
			h.mu.Unlock()
			log.Printf("🔌 Client registered: %s", client.Key)

		case client := <-h.Unregister:
			h.remove(client)
			log.Printf("🔌 Client unregistered: %s", client.Key)

		case <-h.stop:
			h.mu.Lock()
			for key, set := range h.clients {
				for client := range set {
					close(client.Send)
				}
				delete(h.clients, key)
			}
			h.mu.Unlock()
			return
		}
	}
}

// Stop closes every connection and ends Run.
func (h *Hub) Stop() {
	select {
	case <-h.stop:
		return
	default:
		close(h.stop)
	}
	<-h.done
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[client.Key]
	if !ok || !set[client] {
		return
	}
	delete(set, client)
	close(client.Send)
	if len(set) == 0 {
		delete(h.clients, client.Key)
	}
}

// Push sends an event to every connection of key. It reports whether at
// least one connection accepted it.
func (h *Hub) Push(key, event string, data interface{}) bool {
	payload, err := json.Marshal(&Event{Type: event, Data: data, Timestamp: time.Now()})
	if err != nil {
		log.Printf("❌ Error marshaling %s event: %v", event, err)
		return false
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := false
	for client := range h.clients[key] {
		select {
		case client.Send <- payload:
			delivered = true
		default:
			log.Printf("⚠️ %s send buffer is full, dropping %s event", key, event)
		}
	}
	return delivered
}

// IsOnline reports whether key has a live connection.
func (h *Hub) IsOnline(key string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[key]) > 0
}

// ConnectionCount returns the number of live connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	return n
}

func (h *Hub) handle(client *Client, event *Event) {
	handler, ok := h.handlers[event.Type]
	if !ok {
		log.Printf("⚠️ Unknown message type: %s", event.Type)
		client.SendEvent("error", map[string]string{"message": "unknown message type " + event.Type})
		return
	}
	if err := handler(client, event); err != nil {
		log.Printf("❌ Error handling %s message from %s: %v", event.Type, client.Key, err)
	}
}

func handlePing(client *Client, _ *Event) error {
	return client.SendEvent("pong", nil)
}
