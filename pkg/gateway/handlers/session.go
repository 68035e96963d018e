// Package handlers holds the HTTP entry points of the gateway.
package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/prepwise/interview-gateway/pkg/agent"
	"github.com/prepwise/interview-gateway/pkg/gateway/mw"
	"github.com/prepwise/interview-gateway/pkg/gateway/protocol"
	"github.com/prepwise/interview-gateway/pkg/gateway/session"
	"github.com/prepwise/interview-gateway/pkg/gateway/sessions"
	"github.com/prepwise/interview-gateway/pkg/metrics"
)

// SessionHandler upgrades /v1/session to a WebSocket, performs the hello
// handshake, and hands the connection to a session loop.
type SessionHandler struct {
	Logger     *slog.Logger
	Store      agent.Store
	Generator  agent.Generator
	Metrics    *metrics.Sink
	Tracker    *sessions.Tracker
	IsDraining func() bool

	HandshakeTimeout time.Duration
	SessionConfig    session.Config

	upgrader websocket.Upgrader
}

func NewSessionHandler(h SessionHandler) *SessionHandler {
	if h.Logger == nil {
		h.Logger = slog.Default()
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		// The driver is a trusted backend process, not a browser.
		CheckOrigin: func(*http.Request) bool { return true },
	}
	return &h
}

func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.IsDraining != nil && h.IsDraining() {
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
		return
	}

	requestID, _ := mw.RequestIDFrom(r.Context())
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		h.Logger.Warn("websocket upgrade failed", "request_id", requestID, "error", err)
		return
	}
	defer conn.Close()

	hello, ok := h.handshake(conn, requestID)
	if !ok {
		return
	}

	sessionID := "sess_" + uuid.NewString()
	sess, err := session.New(session.Dependencies{
		Conn:      conn,
		Logger:    h.Logger,
		Store:     h.Store,
		Generator: h.Generator,
		Metrics:   h.Metrics,
		Hello:     hello,
		SessionID: sessionID,
		RequestID: requestID,
		Config:    h.SessionConfig,
	})
	if err != nil {
		h.Logger.Error("session init failed", "request_id", requestID, "error", err)
		_ = conn.WriteJSON(protocol.ServerError{Type: "error", Code: "internal", Message: "session unavailable", Close: true})
		return
	}

	if h.Tracker != nil {
		detach := h.Tracker.Add(sessionID, sessions.Handle{Cancel: sess.Cancel, Warn: sess.Warn})
		defer detach()
	}

	if err := sess.Run(); err != nil {
		h.Logger.Error("session failed", "session_id", sessionID, "request_id", requestID, "error", err)
	}
}

// handshake reads the single hello frame that must open every connection.
func (h *SessionHandler) handshake(conn *websocket.Conn, requestID string) (protocol.ClientHello, bool) {
	if h.SessionConfig.MaxJSONMessageBytes > 0 {
		conn.SetReadLimit(h.SessionConfig.MaxJSONMessageBytes)
	}
	if h.HandshakeTimeout > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(h.HandshakeTimeout))
	}

	_, data, err := conn.ReadMessage()
	if err != nil {
		h.Logger.Warn("handshake read failed", "request_id", requestID, "error", err)
		return protocol.ClientHello{}, false
	}
	msg, err := protocol.DecodeClientMessage(data)
	if err != nil {
		code := "bad_request"
		if de, ok := err.(*protocol.DecodeError); ok {
			code = de.Code
		}
		_ = conn.WriteJSON(protocol.ServerError{Type: "error", Code: code, Message: err.Error(), Close: true})
		return protocol.ClientHello{}, false
	}
	hello, ok := msg.(protocol.ClientHello)
	if !ok {
		_ = conn.WriteJSON(protocol.ServerError{Type: "error", Code: "bad_request", Message: "first frame must be hello", Close: true})
		return protocol.ClientHello{}, false
	}
	// Lift the handshake deadline; the session applies its own.
	_ = conn.SetReadDeadline(time.Time{})
	return hello, true
}
