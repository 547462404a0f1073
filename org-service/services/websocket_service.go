package services

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"eduadmin-backend/shared/database/models/notification"
)

// ChangeHub fans directory change messages out to every connected directory view.
type ChangeHub struct {
	clients    map[string]*websocket.Conn // connection id -> connection
	mutex      sync.RWMutex
	upgrader   websocket.Upgrader
	register   chan *ClientConnection
	unregister chan *ClientConnection
	broadcast  chan *notification.WebSocketMessage
	done       chan struct{}
	log        *zap.Logger
}

// ClientConnection represents a client WebSocket connection
type ClientConnection struct {
	ID         string
	Connection *websocket.Conn
}

// NewChangeHub creates a hub accepting websocket upgrades from allowedOrigins.
// An empty list accepts any origin. Call Run to start delivering messages.
func NewChangeHub(allowedOrigins []string, log *zap.Logger) *ChangeHub {
	if log == nil {
		log = zap.NewNop()
	}
	h := &ChangeHub{
		clients:    make(map[string]*websocket.Conn),
		register:   make(chan *ClientConnection, 100),
		unregister: make(chan *ClientConnection, 100),
		broadcast:  make(chan *notification.WebSocketMessage, 1000),
		done:       make(chan struct{}),
		log:        log,
	}
	h.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if origin == allowed {
					return true
				}
			}
			log.Warn("🚫 WebSocket connection rejected", zap.String("origin", origin))
			return false
		},
	}
	return h
}

// Run handles the hub event loop until ctx is done
func (h *ChangeHub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.closeAll()
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)
		}
	}
}

// Clients returns the number of connected views
func (h *ChangeHub) Clients() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

func (h *ChangeHub) registerClient(client *ClientConnection) {
	h.mutex.Lock()
	h.clients[client.ID] = client.Connection
	total := len(h.clients)
	h.mutex.Unlock()

	h.log.Info("🔌 WebSocket client connected", zap.String("client", client.ID), zap.Int("total", total))

	welcome := &notification.WebSocketMessage{
		Type:      "connection",
		Level:     notification.NotificationLevelInfo,
		Message:   "WebSocket connection established",
		Timestamp: time.Now().UTC(),
	}
	if err := client.Connection.WriteJSON(welcome); err != nil {
		h.dropLater(client.ID, client.Connection)
	}
}

func (h *ChangeHub) unregisterClient(client *ClientConnection) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if conn, exists := h.clients[client.ID]; exists && conn == client.Connection {
		delete(h.clients, client.ID)
		client.Connection.Close()
		h.log.Info("🔌 WebSocket client disconnected", zap.String("client", client.ID), zap.Int("total", len(h.clients)))
	}
}

func (h *ChangeHub) broadcastMessage(message *notification.WebSocketMessage) {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	successCount := 0
	failCount := 0
	for id, conn := range h.clients {
		if err := conn.WriteJSON(message); err != nil {
			h.log.Warn("❌ Failed to send message", zap.String("client", id), zap.Error(err))
			h.dropLater(id, conn)
			failCount++
		} else {
			successCount++
		}
	}

	h.log.Debug("📡 Broadcast sent",
		zap.Int("success", successCount),
		zap.Int("failed", failCount),
		zap.String("action", message.Action))
}

func (h *ChangeHub) dropLater(id string, conn *websocket.Conn) {
	go h.leave(&ClientConnection{ID: id, Connection: conn})
}

// leave queues client for removal. Once Run has returned the hub has already
// closed every connection, so the request is discarded.
func (h *ChangeHub) leave(client *ClientConnection) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *ChangeHub) closeAll() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for id, conn := range h.clients {
		conn.Close()
		delete(h.clients, id)
	}
}

// Publish queues message for every connected client
func (h *ChangeHub) Publish(message *notification.WebSocketMessage) {
	select {
	case h.broadcast <- message:
	default:
		h.log.Warn("⚠️ Broadcast queue full, dropping message", zap.String("action", message.Action))
	}
}

// HandleWebSocketConnection upgrades HTTP connection to WebSocket
func (h *ChangeHub) HandleWebSocketConnection(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("❌ WebSocket upgrade failed", zap.Error(err))
		return
	}

	client := &ClientConnection{ID: uuid.New().String(), Connection: conn}
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	// Views only listen; reading drives close detection.
	go func() {
		defer h.leave(client)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
