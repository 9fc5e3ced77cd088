package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/valeo/internal/common"
	"github.com/ternarybob/valeo/internal/interfaces"
)

const (
	// wsWriteWait bounds a single frame write to a client
	wsWriteWait = 10 * time.Second
	// wsPongWait is how long a connection may stay silent before it is
	// considered dead
	wsPongWait = 60 * time.Second
	// wsPingPeriod must be shorter than wsPongWait
	wsPingPeriod = (wsPongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS is allow-all; the token check gates access
	},
}

// wireEventTypes maps internal event types to the names sent to clients
var wireEventTypes = map[interfaces.EventType]string{
	interfaces.EventAssessmentCreated:  "assessment.created",
	interfaces.EventAssessmentUpdated:  "assessment.updated",
	interfaces.EventAssessmentDeleted:  "assessment.deleted",
	interfaces.EventRetentionPurgeDone: "retention.purge_done",
}

// WebSocketHandler streams assessment events to connected clients.
// Each connection has its own write mutex so broadcasts never interleave
// frames; a client that cannot keep up is dropped.
type WebSocketHandler struct {
	logger        arbor.ILogger
	authService   interfaces.AuthService
	eventService  interfaces.EventService
	clients       map[*websocket.Conn]bool
	clientMutex   map[*websocket.Conn]*sync.Mutex
	mu            sync.RWMutex
	allowedEvents map[string]bool // Whitelist of events to broadcast (empty = allow all)
}

func NewWebSocketHandler(eventService interfaces.EventService, authService interfaces.AuthService, config *common.WebSocketConfig, logger arbor.ILogger) *WebSocketHandler {
	h := &WebSocketHandler{
		logger:        logger,
		authService:   authService,
		eventService:  eventService,
		clients:       make(map[*websocket.Conn]bool),
		clientMutex:   make(map[*websocket.Conn]*sync.Mutex),
		allowedEvents: make(map[string]bool),
	}

	if config != nil {
		for _, name := range config.AllowedEvents {
			h.allowedEvents[name] = true
		}
	}

	return h
}

// SubscribeToEvents registers the handler on the event bus. Call once
// during startup, after the event service exists.
func (h *WebSocketHandler) SubscribeToEvents() error {
	for eventType := range wireEventTypes {
		if err := h.eventService.Subscribe(eventType, h.handleEvent); err != nil {
			return err
		}
	}
	return nil
}

// HandleWebSocket upgrades GET /ws. The bearer token arrives in the
// Authorization header or, for browser clients, the token query parameter.
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	user, ok := RequireUser(w, r, h.authService)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}

	h.mu.Lock()
	h.clients[conn] = true
	h.clientMutex[conn] = &sync.Mutex{}
	clientCount := len(h.clients)
	h.mu.Unlock()

	h.logger.Debug().Str("user_id", user.ID).Msgf("WebSocket client connected (total: %d)", clientCount)

	done := make(chan struct{})
	defer func() {
		close(done)
		h.removeClient(conn)
	}()

	common.SafeGo(h.logger, "websocketPing", func() {
		h.pingLoop(conn, done)
	})

	conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	// Read loop keeps the connection alive and notices disconnects
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				h.logger.Warn().Err(err).Msg("WebSocket read error")
			}
			return
		}
	}
}

// handleEvent receives a bus event and broadcasts it to all clients
func (h *WebSocketHandler) handleEvent(ctx context.Context, event interfaces.Event) error {
	wireType, ok := wireEventTypes[event.Type]
	if !ok {
		return nil
	}
	if len(h.allowedEvents) > 0 && !h.allowedEvents[wireType] {
		return nil
	}

	msg := map[string]any{"type": wireType}
	if payload, ok := event.Payload.(map[string]any); ok {
		for key, value := range payload {
			switch key {
			case "user_id":
				// Events fan out to every client; owner IDs stay internal
			case "assessment_id":
				msg["id"] = value
			case "overall_score":
				msg["score"] = value
			default:
				msg[key] = value
			}
		}
	}

	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to marshal WebSocket event")
		return nil
	}

	h.broadcast(data)
	return nil
}

// broadcast writes one frame to every client, dropping clients whose
// writes fail or time out
func (h *WebSocketHandler) broadcast(data []byte) {
	h.mu.RLock()
	clients := make([]*websocket.Conn, 0, len(h.clients))
	mutexes := make([]*sync.Mutex, 0, len(h.clients))
	for conn := range h.clients {
		clients = append(clients, conn)
		mutexes = append(mutexes, h.clientMutex[conn])
	}
	h.mu.RUnlock()

	for i, conn := range clients {
		mutex := mutexes[i]
		mutex.Lock()
		conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		err := conn.WriteMessage(websocket.TextMessage, data)
		mutex.Unlock()

		if err != nil {
			h.logger.Warn().Err(err).Msg("Dropping slow WebSocket client")
			h.removeClient(conn)
		}
	}
}

// pingLoop keeps the connection fresh until the read loop exits
func (h *WebSocketHandler) pingLoop(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			h.mu.RLock()
			mutex, ok := h.clientMutex[conn]
			h.mu.RUnlock()
			if !ok {
				return
			}

			mutex.Lock()
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			err := conn.WriteMessage(websocket.PingMessage, nil)
			mutex.Unlock()

			if err != nil {
				return
			}
		}
	}
}

// removeClient unregisters and closes a connection. Safe to call more
// than once per connection.
func (h *WebSocketHandler) removeClient(conn *websocket.Conn) {
	h.mu.Lock()
	_, known := h.clients[conn]
	delete(h.clients, conn)
	delete(h.clientMutex, conn)
	clientCount := len(h.clients)
	h.mu.Unlock()

	if known {
		conn.Close()
		h.logger.Debug().Msgf("WebSocket client disconnected (remaining: %d)", clientCount)
	}
}

// ClientCount returns the number of connected clients
func (h *WebSocketHandler) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
