package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/msto63/euklid/internal/euklid/service"
	"github.com/msto63/euklid/pkg/core/logging"
)

const (
	wsReadTimeout  = 120 * time.Second
	wsWriteTimeout = 10 * time.Second
	wsMaxMessage   = 64 * 1024
)

// WebSocketHandler serves the calculator over one WebSocket connection per
// client. Each request message is answered by exactly one response carrying
// the same id.
type WebSocketHandler struct {
	service  *service.Service
	metrics  *Metrics
	upgrader websocket.Upgrader
	logger   *logging.Logger
}

// NewWebSocketHandler creates a new WebSocket handler. checkOrigin may be
// nil to accept every origin.
func NewWebSocketHandler(svc *service.Service, metrics *Metrics, checkOrigin func(r *http.Request) bool) *WebSocketHandler {
	if checkOrigin == nil {
		checkOrigin = func(r *http.Request) bool { return true }
	}
	return &WebSocketHandler{
		service: svc,
		metrics: metrics,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
		logger: logging.New("euklid-websocket"),
	}
}

// WSMessage is a request sent by the client
type WSMessage struct {
	Type    string          `json:"type"` // "ping", "parse", "calculate", "evaluate", "lcd", "compare", "decimal", "todecimal"
	ID      string          `json:"id,omitempty"`
	Locale  string          `json:"locale,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// WSResponse is sent for every WSMessage
type WSResponse struct {
	Type    string      `json:"type"` // "result", "error", "pong"
	ID      string      `json:"id,omitempty"`
	Payload interface{} `json:"payload,omitempty"`
}

// ServeHTTP handles WebSocket upgrade and connections
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("WebSocket upgrade failed", "error", err.Error())
		return
	}
	locale := r.Header.Get("Accept-Language")
	h.handleConnection(r.Context(), conn, locale)
}

// handleConnection handles a single WebSocket connection
func (h *WebSocketHandler) handleConnection(ctx context.Context, conn *websocket.Conn, locale string) {
	defer conn.Close()

	if h.metrics != nil {
		h.metrics.ActiveWebSockets.Inc()
		defer h.metrics.ActiveWebSockets.Dec()
	}
	h.logger.Info("WebSocket connection established", "remote", conn.RemoteAddr().String())

	conn.SetReadLimit(wsMaxMessage)
	conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	})

	for {
		var msg WSMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("WebSocket read error", "error", err.Error())
			} else {
				h.logger.Info("WebSocket connection closed")
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(wsReadTimeout))

		if msg.Locale == "" {
			msg.Locale = locale
		}
		if !h.send(conn, h.dispatch(ctx, msg)) {
			return
		}
	}
}

// dispatch runs one request and builds its response
func (h *WebSocketHandler) dispatch(ctx context.Context, msg WSMessage) WSResponse {
	if msg.Type == "ping" {
		return WSResponse{Type: "pong", ID: msg.ID}
	}

	requestID := msg.ID
	if requestID == "" {
		requestID = uuid.NewString()
	}
	ctx = service.WithRequestID(ctx, requestID)

	start := time.Now()
	res, err := h.call(ctx, msg)
	if err == errUnknownType {
		return WSResponse{Type: "error", ID: msg.ID, Payload: &service.Problem{
			Kind:      "invalid_input",
			Code:      "INVALID_INPUT",
			Message:   "unknown message type " + msg.Type,
			RequestID: requestID,
		}}
	}
	h.metrics.Observe("websocket", msg.Type, statusLabel(err), time.Since(start))
	if err != nil {
		return WSResponse{Type: "error", ID: msg.ID, Payload: h.service.Explain(msg.Locale, err)}
	}
	return WSResponse{Type: "result", ID: msg.ID, Payload: res}
}

type wsError string

func (e wsError) Error() string { return string(e) }

const errUnknownType = wsError("unknown message type")

func (h *WebSocketHandler) call(ctx context.Context, msg WSMessage) (interface{}, error) {
	switch msg.Type {
	case "parse", "decimal":
		var p ParseRequest
		if err := unmarshalPayload(msg.Payload, &p); err != nil {
			return nil, err
		}
		if msg.Type == "parse" {
			return h.service.Parse(ctx, p.Input)
		}
		return h.service.FromDecimal(ctx, p.Input)
	case "calculate":
		var p CalculateRequest
		if err := unmarshalPayload(msg.Payload, &p); err != nil {
			return nil, err
		}
		return h.service.Calculate(ctx, p.Expression)
	case "evaluate":
		var p EvaluateRequest
		if err := unmarshalPayload(msg.Payload, &p); err != nil {
			return nil, err
		}
		return h.service.Evaluate(ctx, p.Operands, p.Operators)
	case "lcd", "compare":
		var p LCDRequest
		if err := unmarshalPayload(msg.Payload, &p); err != nil {
			return nil, err
		}
		if msg.Type == "compare" {
			return h.service.Compare(ctx, p.Inputs)
		}
		return h.service.LCD(ctx, p.Inputs)
	case "todecimal":
		var p ToDecimalRequest
		if err := unmarshalPayload(msg.Payload, &p); err != nil {
			return nil, err
		}
		return h.service.ToDecimal(ctx, p.Input, p.Approximate)
	}
	return nil, errUnknownType
}

func unmarshalPayload(data json.RawMessage, v interface{}) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return invalidBody("invalid payload", err)
	}
	if err := requestValidate.Struct(v); err != nil {
		return validationFailed(err)
	}
	return nil
}

// send writes resp and reports whether the connection is still usable
func (h *WebSocketHandler) send(conn *websocket.Conn, resp WSResponse) bool {
	conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	if err := conn.WriteJSON(resp); err != nil {
		h.logger.Warn("WebSocket send error", "error", err.Error())
		return false
	}
	return true
}
