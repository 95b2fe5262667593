package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	pb "github.com/msto63/pascal/api/pascal"
	"github.com/msto63/pascal/internal/pascal/service"
	"github.com/msto63/pascal/pkg/core/logging"
)

const (
	wsReadTimeout  = 120 * time.Second
	wsWriteTimeout = 10 * time.Second

	// DefaultMaxMessageBytes matches the default HTTP body limit
	DefaultMaxMessageBytes int64 = 1 << 20
)

// WebSocketHandler evaluates programs over a WebSocket connection.
// Messages are answered in the order they arrive.
type WebSocketHandler struct {
	svc      Service
	upgrader websocket.Upgrader
	logger   *logging.Logger
	maxBytes int64
}

// NewWebSocketHandler creates a new WebSocket handler. An empty origin
// list allows all origins.
func NewWebSocketHandler(svc Service, allowedOrigins []string) *WebSocketHandler {
	return &WebSocketHandler{
		svc: svc,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		logger:   logging.New("pascal-websocket"),
		maxBytes: DefaultMaxMessageBytes,
	}
}

// WithReadLimit sets the largest message a client may send. Larger
// messages close the connection. Zero or less keeps the default.
func (h *WebSocketHandler) WithReadLimit(maxBytes int64) *WebSocketHandler {
	if maxBytes > 0 {
		h.maxBytes = maxBytes
	}
	return h
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowed) == 0 {
			return true
		}
		for _, a := range allowed {
			if a == "*" || a == origin {
				return true
			}
		}
		return false
	}
}

// WSMessage represents a client message
type WSMessage struct {
	Type    string          `json:"type"` // "eval", "tokens", "ping"
	ID      string          `json:"id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// WSResponse represents a server message
type WSResponse struct {
	Type    string      `json:"type"` // "result", "tokens", "pong", "error"
	ID      string      `json:"id,omitempty"`
	Payload interface{} `json:"payload,omitempty"`
}

// WSErrorPayload represents an error payload
type WSErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ServeHTTP handles the WebSocket upgrade and the connection
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", "error", err.Error())
		return
	}
	h.handleConnection(r.Context(), conn)
}

func (h *WebSocketHandler) handleConnection(ctx context.Context, conn *websocket.Conn) {
	defer conn.Close()

	logger := h.logger.With("remote", conn.RemoteAddr().String())
	logger.Info("WebSocket connection established")

	conn.SetReadLimit(h.maxBytes)
	conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	})

	for {
		var msg WSMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("WebSocket read error", "error", err.Error())
			} else {
				logger.Info("WebSocket connection closed")
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(wsReadTimeout))

		resp := h.dispatch(ctx, msg)
		conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := conn.WriteJSON(resp); err != nil {
			logger.Warn("WebSocket write error", "error", err.Error())
			return
		}
	}
}

func (h *WebSocketHandler) dispatch(ctx context.Context, msg WSMessage) WSResponse {
	switch msg.Type {
	case "ping":
		return WSResponse{Type: "pong", ID: msg.ID}

	case "eval":
		var req SourceRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			return errorResponse(msg.ID, "INVALID_FORMAT", "Invalid eval payload")
		}
		eval, err := h.svc.Evaluate(ctx, req.Source)
		if err != nil && !service.IsEvaluationFailure(err) {
			return errorResponse(msg.ID, errorCode(err), err.Error())
		}
		return WSResponse{Type: "result", ID: msg.ID, Payload: eval.Response()}

	case "tokens":
		var req SourceRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			return errorResponse(msg.ID, "INVALID_FORMAT", "Invalid tokens payload")
		}
		tokens, err := h.svc.Tokenize(req.Source)
		if err != nil {
			return errorResponse(msg.ID, errorCode(err), err.Error())
		}
		return WSResponse{Type: "tokens", ID: msg.ID, Payload: pb.TokenizeResponse{Tokens: service.TokenInfos(tokens)}}

	default:
		return errorResponse(msg.ID, "UNKNOWN_TYPE", "Unknown message type: "+msg.Type)
	}
}

func errorResponse(id, code, message string) WSResponse {
	return WSResponse{
		Type:    "error",
		ID:      id,
		Payload: WSErrorPayload{Code: code, Message: message},
	}
}
