package handlers

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	ws "github.com/chynybekuuludastan/cro_optimizer/internal/api/websocket"
	"github.com/chynybekuuludastan/cro_optimizer/internal/service/analyzer"
)

// DefaultStreamTimeout bounds a streamed comparison.
const DefaultStreamTimeout = 5 * time.Minute

// WebSocketHandler streams comparison progress over WebSocket
type WebSocketHandler struct {
	Hub      *ws.Hub
	Analyzer CROService
	Logger   *slog.Logger

	baseCtx context.Context
	timeout time.Duration
}

// NewWebSocketHandler creates a new WebSocket handler. Comparisons run under
// baseCtx so they survive the client that started them.
func NewWebSocketHandler(baseCtx context.Context, hub *ws.Hub, a CROService, logger *slog.Logger) *WebSocketHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebSocketHandler{
		Hub:      hub,
		Analyzer: a,
		Logger:   logger,
		baseCtx:  baseCtx,
		timeout:  DefaultStreamTimeout,
	}
}

// HandleCompare reads a CompareRequest from the socket, starts the comparison
// and streams its progress back until it finishes.
func (h *WebSocketHandler) HandleCompare(conn *websocket.Conn) {
	var req CompareRequest
	if err := conn.ReadJSON(&req); err != nil {
		h.reject(conn, uuid.Nil, "Invalid request: "+err.Error())
		return
	}
	if n := len(req.URLs); n < analyzer.MinCompareURLs || n > analyzer.MaxCompareURLs {
		err := &analyzer.ValidationError{Count: n, Min: analyzer.MinCompareURLs, Max: analyzer.MaxCompareURLs}
		h.reject(conn, uuid.Nil, err.Error())
		return
	}

	id := uuid.New()
	h.Hub.Open(id)
	client := h.Hub.Attach(conn, id)
	h.Hub.Broadcast(id, ws.TypeComparisonStarted, fiber.Map{
		"urls":  req.URLs,
		"total": len(req.URLs),
	})

	go h.runComparison(id, req.URLs)

	h.Hub.Serve(client)
}

// HandleWatch attaches to a comparison that another client started.
func (h *WebSocketHandler) HandleWatch(conn *websocket.Conn) {
	id, err := uuid.Parse(conn.Params("id"))
	if err != nil {
		h.reject(conn, uuid.Nil, "Invalid comparison ID format")
		return
	}
	if !h.Hub.IsActive(id) {
		h.reject(conn, id, "Comparison not found or already finished")
		return
	}

	client := h.Hub.Attach(conn, id)
	h.Hub.Broadcast(id, ws.TypeConnected, fiber.Map{"subscribers": h.Hub.Subscribers(id)})
	h.Hub.Serve(client)
}

func (h *WebSocketHandler) runComparison(id uuid.UUID, urls []string) {
	defer h.Hub.Finish(id)

	ctx, cancel := context.WithTimeout(h.baseCtx, h.timeout)
	defer cancel()

	result, err := h.Analyzer.CompareWithProgress(ctx, urls, func(ev analyzer.ProgressEvent) {
		h.Hub.Broadcast(id, ev.Type, ev)
	})
	if err != nil {
		_, message, details := analysisStatus(err)
		h.Logger.Error("Streamed comparison failed", slog.String("comparison_id", id.String()), slog.Any("error", err))
		h.Hub.Broadcast(id, ws.TypeComparisonError, fiber.Map{
			"error":   message,
			"details": details,
		})
		return
	}

	h.Hub.Broadcast(id, ws.TypeComparisonCompleted, result)
}

func (h *WebSocketHandler) reject(conn *websocket.Conn, id uuid.UUID, message string) {
	msg := ws.Message{
		Type:      ws.TypeComparisonError,
		Timestamp: time.Now().UTC(),
		Data:      fiber.Map{"error": message},
	}
	if id != uuid.Nil {
		msg.ComparisonID = id.String()
	}
	if err := conn.WriteJSON(msg); err != nil {
		h.Logger.Debug("websocket write failed", slog.Any("error", err))
	}
	conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, message))
}
