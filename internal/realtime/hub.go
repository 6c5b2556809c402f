// Package realtime streams drift alerts to connected dashboard clients
// over WebSocket.
package realtime

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/pulseguard-risk-server/internal/domain"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	clientBuffer   = 16
	broadcastDepth = 256
)

// Event is the envelope sent to every connected client.
type Event struct {
	Event     string    `json:"event"`
	Payload   any       `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

// Hub fans drift alerts out to connected WebSocket clients.
type Hub struct {
	log        *logrus.Logger
	upgrader   websocket.Upgrader
	clients    map[chan []byte]bool
	register   chan chan []byte
	unregister chan chan []byte
	broadcast  chan []byte
	done       chan struct{}
	closeOnce  sync.Once
}

// NewHub creates a hub. Run must be started before clients connect.
func NewHub(logger *logrus.Logger) *Hub {
	return &Hub{
		log: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browser dashboards connect cross-origin in development
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients:    make(map[chan []byte]bool),
		register:   make(chan chan []byte),
		unregister: make(chan chan []byte),
		broadcast:  make(chan []byte, broadcastDepth),
		done:       make(chan struct{}),
	}
}

// Run starts the hub loop. It returns when Close is called.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			h.log.WithField("clients", len(h.clients)).Debug("WebSocket client connected")

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client)
				h.log.WithField("clients", len(h.clients)).Debug("WebSocket client disconnected")
			}

		case msg := <-h.broadcast:
			for client := range h.clients {
				select {
				case client <- msg:
				default:
					// Skip if client buffer is full to prevent blocking
				}
			}

		case <-h.done:
			for client := range h.clients {
				delete(h.clients, client)
				close(client)
			}
			return
		}
	}
}

// Close stops the hub loop and disconnects all clients.
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// BroadcastAlert pushes one drift alert to every connected client.
func (h *Hub) BroadcastAlert(alert *domain.Alert) {
	h.publish("drift_alert", alert)
}

func (h *Hub) publish(event string, payload any) {
	msg, err := json.Marshal(Event{
		Event:     event,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		h.log.WithError(err).Error("Failed to marshal broadcast event")
		return
	}

	select {
	case h.broadcast <- msg:
	default:
		h.log.Warn("Broadcast buffer full, dropping event")
	}
}

// ServeHTTP upgrades the request and streams events until the client
// disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	client := make(chan []byte, clientBuffer)
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go h.writeLoop(conn, client)
	h.readLoop(conn, client)
}

// readLoop discards client messages and detects disconnects.
func (h *Hub) readLoop(conn *websocket.Conn, client chan []byte) {
	defer func() {
		select {
		case h.unregister <- client:
		case <-h.done:
		}
		conn.Close()
	}()

	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writeLoop(conn *websocket.Conn, client chan []byte) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case msg, ok := <-client:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
