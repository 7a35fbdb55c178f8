package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// Message types sent to comparison subscribers. Per-URL progress reuses the
// analyzer event names (url_started, url_completed, url_failed).
const (
	TypeConnected           = "connected"
	TypeComparisonStarted   = "comparison_started"
	TypeComparisonCompleted = "comparison_completed"
	TypeComparisonError     = "comparison_error"
)

const sendBuffer = 256

// Client represents a connected WebSocket client
type Client struct {
	conn         *websocket.Conn
	comparisonID uuid.UUID
	send         chan []byte
	ready        chan struct{}
}

// Message represents a WebSocket message
type Message struct {
	Type         string    `json:"type"`
	ComparisonID string    `json:"comparison_id"`
	Timestamp    time.Time `json:"timestamp"`
	Data         any       `json:"data,omitempty"`
}

// Hub fans comparison progress out to every client watching a comparison.
type Hub struct {
	// Registered clients by comparison ID
	clients map[uuid.UUID]map[*Client]bool

	// Comparisons that are still running
	active map[uuid.UUID]bool

	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	// Guard clients and active maps
	mu     sync.RWMutex
	logger *slog.Logger
}

// NewHub creates a new websocket hub
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]bool),
		active:     make(map[uuid.UUID]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run starts the hub's message handling loop and returns when ctx ends.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			if h.active[client.comparisonID] {
				if _, ok := h.clients[client.comparisonID]; !ok {
					h.clients[client.comparisonID] = make(map[*Client]bool)
				}
				h.clients[client.comparisonID][client] = true
			} else {
				// Nothing left to stream.
				close(client.send)
			}
			h.mu.Unlock()
			close(client.ready)

		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()
		}
	}
}

// remove must be called with mu held.
func (h *Hub) remove(client *Client) {
	clients, ok := h.clients[client.comparisonID]
	if !ok || !clients[client] {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.clients, client.comparisonID)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, clients := range h.clients {
		for client := range clients {
			close(client.send)
		}
		delete(h.clients, id)
	}
	clear(h.active)
}

// Open marks a comparison as running so clients can subscribe to it.
func (h *Hub) Open(id uuid.UUID) {
	h.mu.Lock()
	h.active[id] = true
	h.mu.Unlock()
}

// IsActive reports whether a comparison is still running.
func (h *Hub) IsActive(id uuid.UUID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.active[id]
}

// Finish ends a comparison: queued messages are still delivered, then every
// subscriber connection is closed.
func (h *Hub) Finish(id uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.active, id)
	for client := range h.clients[id] {
		close(client.send)
	}
	delete(h.clients, id)
}

// Subscribers returns the number of clients watching a comparison.
func (h *Hub) Subscribers(id uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[id])
}

// Broadcast sends a message to all clients subscribed to a comparison
func (h *Hub) Broadcast(id uuid.UUID, msgType string, data any) {
	messageJSON, err := json.Marshal(Message{
		Type:         msgType,
		ComparisonID: id.String(),
		Timestamp:    time.Now().UTC(),
		Data:         data,
	})
	if err != nil {
		h.logger.Error("marshal websocket message", slog.String("type", msgType), slog.Any("error", err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[id] {
		select {
		case client.send <- messageJSON:
		default:
			// Client's send buffer is full, drop it
			go h.Unregister(client)
		}
	}
}

// Attach registers conn as a subscriber of a comparison. Broadcasts made after
// Attach returns reach the client.
func (h *Hub) Attach(conn *websocket.Conn, id uuid.UUID) *Client {
	client := &Client{
		conn:         conn,
		comparisonID: id,
		send:         make(chan []byte, sendBuffer),
		ready:        make(chan struct{}),
	}
	select {
	case h.register <- client:
		<-client.ready
	case <-h.done:
		close(client.send)
	}
	return client
}

// Unregister removes a client connection
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Serve pumps hub messages to the client until the comparison finishes or
// the peer disconnects. It blocks for the lifetime of the connection.
func (h *Hub) Serve(client *Client) {
	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		client.readPump(h)
	}()

	client.writePump()
	h.Unregister(client)
	client.conn.Close()
	<-readDone
}

// writePump pumps messages from the hub to the websocket connection
func (c *Client) writePump() {
	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			// Drain so the hub never blocks on a dead client.
			for range c.send {
			}
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// readPump discards incoming frames and unregisters the client once the
// connection is gone.
func (c *Client) readPump(h *Hub) {
	defer h.Unregister(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Debug("websocket read error", slog.String("comparison_id", c.comparisonID.String()), slog.Any("error", err))
			}
			return
		}
	}
}
