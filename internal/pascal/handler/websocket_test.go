package handler

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	pb "github.com/msto63/pascal/api/pascal"
)

func dialWS(t *testing.T) *websocket.Conn {
	t.Helper()
	return dialWSWithLimit(t, 0)
}

func dialWSWithLimit(t *testing.T, maxBytes int64) *websocket.Conn {
	t.Helper()

	h, svc := newTestHandler(t, Options{})
	ws := NewWebSocketHandler(svc, nil).WithReadLimit(maxBytes)
	server := httptest.NewServer(LoggingMiddleware(h.logger, ws))
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

type wsReply struct {
	Type    string          `json:"type"`
	ID      string          `json:"id"`
	Payload json.RawMessage `json:"payload"`
}

func roundTrip(t *testing.T, conn *websocket.Conn, msg map[string]interface{}) wsReply {
	t.Helper()
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
	var reply wsReply
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	return reply
}

func TestWebSocket_Messages(t *testing.T) {
	conn := dialWS(t)

	reply := roundTrip(t, conn, map[string]interface{}{"type": "ping", "id": "1"})
	if reply.Type != "pong" || reply.ID != "1" {
		t.Errorf("ping reply = %+v", reply)
	}

	reply = roundTrip(t, conn, map[string]interface{}{"type": "eval", "id": "2", "payload": map[string]string{"source": "x=-5;y=-x;"}})
	var result pb.EvaluateResponse
	json.Unmarshal(reply.Payload, &result)
	if reply.Type != "result" || !result.Success || result.Bindings["y"] != 5 {
		t.Errorf("eval reply = %s %+v", reply.Type, result)
	}

	reply = roundTrip(t, conn, map[string]interface{}{"type": "eval", "payload": map[string]string{"source": "x=y;"}})
	json.Unmarshal(reply.Payload, &result)
	if reply.Type != "result" || result.Success || result.Error == nil || result.Error.Name != "y" {
		t.Errorf("failed eval reply = %s %+v", reply.Type, result)
	}

	reply = roundTrip(t, conn, map[string]interface{}{"type": "tokens", "payload": map[string]string{"source": "a*b"}})
	var tokens pb.TokenizeResponse
	json.Unmarshal(reply.Payload, &tokens)
	if reply.Type != "tokens" || len(tokens.Tokens) != 4 {
		t.Errorf("tokens reply = %s %+v", reply.Type, tokens)
	}

	reply = roundTrip(t, conn, map[string]interface{}{"type": "compile"})
	var errPayload WSErrorPayload
	json.Unmarshal(reply.Payload, &errPayload)
	if reply.Type != "error" || errPayload.Code != "UNKNOWN_TYPE" {
		t.Errorf("unknown type reply = %s %+v", reply.Type, errPayload)
	}
}

func TestWebSocket_ReadLimit(t *testing.T) {
	conn := dialWSWithLimit(t, 256)

	reply := roundTrip(t, conn, map[string]interface{}{"type": "eval", "payload": map[string]string{"source": "x=1;"}})
	if reply.Type != "result" {
		t.Fatalf("small message reply = %+v", reply)
	}

	source := strings.Repeat("x = 1; ", 100)
	if err := conn.WriteJSON(map[string]interface{}{"type": "eval", "payload": map[string]string{"source": source}}); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
	var oversized wsReply
	if err := conn.ReadJSON(&oversized); err == nil {
		t.Errorf("oversized message answered with %+v, want closed connection", oversized)
	}
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"http://localhost:3000"})

	req := httptest.NewRequest("GET", "/api/v1/ws", nil)
	if !check(req) {
		t.Error("requests without Origin should be allowed")
	}

	req.Header.Set("Origin", "http://localhost:3000")
	if !check(req) {
		t.Error("listed origin rejected")
	}

	req.Header.Set("Origin", "http://evil.example")
	if check(req) {
		t.Error("foreign origin accepted")
	}
}
