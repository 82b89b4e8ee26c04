package web

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/dbehnke/pocsag-nexus/pkg/logger"
	"github.com/gorilla/websocket"
)

// Event represents a WebSocket event to be broadcast to clients
type Event struct {
	Type      string                 `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
}

// Marshal converts the event to JSON
func (e *Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// Client represents a connected WebSocket client
type Client struct {
	ID       string
	conn     *websocket.Conn
	messages chan []byte
}

// WebSocketHub manages WebSocket client connections and event broadcasting
type WebSocketHub struct {
	clients    map[*Client]bool
	broadcast  chan Event
	register   chan *Client
	unregister chan *Client
	logger     *logger.Logger
	mu         sync.RWMutex
}

// NewWebSocketHub creates a new WebSocket hub
func NewWebSocketHub(log *logger.Logger) *WebSocketHub {
	return &WebSocketHub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan Event, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     log,
	}
}

// Run starts the hub's main loop
func (h *WebSocketHub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.logger.Debug("WebSocket client connected",
				logger.String("client_id", client.ID))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.messages)
			}
			h.mu.Unlock()
			h.logger.Debug("WebSocket client disconnected",
				logger.String("client_id", client.ID))

		case event := <-h.broadcast:
			data, err := event.Marshal()
			if err != nil {
				h.logger.Error("Failed to marshal event",
					logger.Error(err))
				continue
			}

			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.messages <- data:
				default:
					// Client's message buffer is full, skip
					h.logger.Warn("Client message buffer full",
						logger.String("client_id", client.ID))
				}
			}
			h.mu.RUnlock()

		case <-ctx.Done():
			// Close all client connections
			h.mu.Lock()
			for client := range h.clients {
				close(client.messages)
				client.conn.Close()
			}
			h.clients = make(map[*Client]bool)
			h.mu.Unlock()
			return
		}
	}
}

// Broadcast sends an event to all connected clients
func (h *WebSocketHub) Broadcast(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	select {
	case h.broadcast <- event:
	default:
		h.logger.Warn("Broadcast channel full, dropping event",
			logger.String("event_type", event.Type))
	}
}

// Handler returns an HTTP handler for WebSocket connections
func (h *WebSocketHub) Handler() http.Handler {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			// Allow all origins for now
			return true
		},
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.logger.Error("Failed to upgrade WebSocket connection",
				logger.Error(err))
			return
		}

		client := &Client{
			ID:       r.RemoteAddr,
			conn:     conn,
			messages: make(chan []byte, 256),
		}

		h.register <- client

		// Start goroutine to handle client messages
		go func() {
			defer func() {
				h.unregister <- client
				conn.Close()
			}()

			// Keep connection alive and detect disconnects
			conn.SetReadLimit(1024)
			for {
				_, _, err := conn.ReadMessage()
				if err != nil {
					break
				}
			}
		}()

		// Start goroutine to send messages to client
		go func() {
			for message := range client.messages {
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					break
				}
			}
		}()
	})
}

// GetClientCount returns the number of connected clients
func (h *WebSocketHub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// BroadcastPageQueued sends a page queued event
func (h *WebSocketHub) BroadcastPageQueued(address uint32, function int, source string) {
	h.Broadcast(Event{
		Type: "page_queued",
		Data: map[string]interface{}{
			"address":  address,
			"function": function,
			"source":   source,
		},
	})
}

// BroadcastPageSent sends a page transmitted event
func (h *WebSocketHub) BroadcastPageSent(address uint32, function int, words int, duration time.Duration, source string) {
	h.Broadcast(Event{
		Type: "page_sent",
		Data: map[string]interface{}{
			"address":     address,
			"function":    function,
			"words":       words,
			"duration_ms": duration.Milliseconds(),
			"source":      source,
		},
	})
}

// BroadcastStatusUpdate sends a status update event
func (h *WebSocketHub) BroadcastStatusUpdate(status string, version string) {
	h.Broadcast(Event{
		Type: "status_update",
		Data: map[string]interface{}{
			"status":  status,
			"version": version,
		},
	})
}
