// Package session runs one driver connection: it resolves session metadata,
// initializes the interview state machine, and dispatches tool calls
// strictly one at a time until the session ends.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/prepwise/interview-gateway/pkg/agent"
	"github.com/prepwise/interview-gateway/pkg/agent/tools"
	"github.com/prepwise/interview-gateway/pkg/gateway/protocol"
	"github.com/prepwise/interview-gateway/pkg/metrics"
)

type Config struct {
	MaxSessionDuration  time.Duration
	WriteTimeout        time.Duration
	ReadTimeout         time.Duration
	MaxJSONMessageBytes int64
}

type Dependencies struct {
	Conn      *websocket.Conn
	Logger    *slog.Logger
	Store     agent.Store
	Generator agent.Generator
	Metrics   *metrics.Sink
	Hello     protocol.ClientHello
	SessionID string
	RequestID string
	Config    Config
	Now       func() time.Time
}

type Session struct {
	conn      *websocket.Conn
	logger    *slog.Logger
	store     agent.Store
	generator agent.Generator
	metrics   *metrics.Sink
	hello     protocol.ClientHello
	sessionID string
	requestID string
	cfg       Config
	now       func() time.Time

	ctx    context.Context
	cancel context.CancelFunc

	// writeMu serializes frame writes: Warn may be called from the session
	// tracker while Run is writing.
	writeMu sync.Mutex

	// announcement is set by the agent's closing callback and delivered in
	// the session_end frame.
	announcement string
}

type inboundFrame struct {
	messageType int
	data        []byte
	err         error
}

func New(deps Dependencies) (*Session, error) {
	if deps.Conn == nil {
		return nil, fmt.Errorf("connection is required")
	}
	if deps.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if deps.Generator == nil {
		return nil, fmt.Errorf("generator is required")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		conn:      deps.Conn,
		logger:    deps.Logger,
		store:     deps.Store,
		generator: deps.Generator,
		metrics:   deps.Metrics,
		hello:     deps.Hello,
		sessionID: deps.SessionID,
		requestID: deps.RequestID,
		cfg:       deps.Config,
		now:       deps.Now,
		ctx:       ctx,
		cancel:    cancel,
	}, nil
}

// Cancel aborts the session from outside (shutdown). One-way.
func (s *Session) Cancel() { s.cancel() }

// Warn pushes an advisory frame to the driver. Safe to call from the
// tracker's goroutine.
func (s *Session) Warn(code, message string) error {
	return s.sendJSON(protocol.ServerWarning{Type: "warning", Code: code, Message: message})
}

func (s *Session) Run() error {
	defer s.cancel()
	start := s.now()

	if s.cfg.MaxJSONMessageBytes > 0 {
		s.conn.SetReadLimit(s.cfg.MaxJSONMessageBytes)
	}
	if s.cfg.ReadTimeout > 0 {
		_ = s.conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
		s.conn.SetPongHandler(func(string) error {
			return s.conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
		})
	}

	md := agent.ResolveMetadata(s.hello.MetadataSources)
	state, err := agent.NewSessionState(md)
	if err != nil {
		// A conduct session without an interview id cannot proceed; no tool
		// may become callable.
		s.logger.Error("session setup failed", "session_id", s.sessionID, "error", err)
		_ = s.sendJSON(protocol.ServerError{Type: "error", Code: "invalid_session_metadata", Message: err.Error(), Close: true})
		return nil
	}
	if state.Mode == agent.ModeConduct && len(s.hello.Questions) > 0 {
		state.QuestionList = append([]string(nil), s.hello.Questions...)
	}

	s.metrics.RecordSessionStart(s.ctx, string(state.Mode))
	defer func() {
		s.metrics.RecordSessionEnd(context.Background(), string(state.Mode), s.now().Sub(start))
	}()

	interviewAgent, err := agent.New(agent.Dependencies{
		State:     state,
		Store:     s.store,
		Generator: s.generator,
		Logger:    s.logger.With("session_id", s.sessionID),
		Announce:  func(text string) { s.announcement = text },
		Terminate: s.cancel,
	})
	if err != nil {
		return fmt.Errorf("build agent: %w", err)
	}
	registry := tools.ForAgent(interviewAgent)

	if err := s.sendJSON(protocol.ServerHelloAck{
		Type:            "hello_ack",
		ProtocolVersion: protocol.ProtocolVersion1,
		SessionID:       s.sessionID,
		Mode:            string(state.Mode),
		InterviewID:     state.InterviewID,
		Tools:           registry.Definitions(),
	}); err != nil {
		return err
	}

	s.logger.Info("session started",
		"session_id", s.sessionID,
		"request_id", s.requestID,
		"room", s.hello.Room,
		"mode", state.Mode,
		"user_id", state.UserID,
	)

	readCh := make(chan inboundFrame, 8)
	go s.readLoop(readCh)

	var sessionTimer *time.Timer
	if s.cfg.MaxSessionDuration > 0 {
		sessionTimer = time.NewTimer(s.cfg.MaxSessionDuration)
		defer sessionTimer.Stop()
	}
	sessionTimerCh := func() <-chan time.Time {
		if sessionTimer == nil {
			return nil
		}
		return sessionTimer.C
	}

	for {
		select {
		case <-s.ctx.Done():
			if interviewAgent.Terminated() {
				// Termination raced the read loop; the closing frames were
				// already sent from the dispatch path.
				return nil
			}
			_ = s.sendJSON(protocol.ServerSessionEnd{Type: "session_end", Reason: "server_shutdown"})
			return nil
		case frame, ok := <-readCh:
			if !ok || frame.err != nil {
				return nil
			}
			if frame.messageType != websocket.TextMessage {
				_ = s.sendJSON(protocol.ServerError{Type: "error", Code: "bad_request", Message: "only text frames are supported", Close: true})
				return nil
			}
			msg, decErr := protocol.DecodeClientMessage(frame.data)
			if decErr != nil {
				code := "bad_request"
				if de, ok := decErr.(*protocol.DecodeError); ok {
					code = de.Code
				}
				_ = s.sendJSON(protocol.ServerError{Type: "error", Code: code, Message: decErr.Error(), Close: true})
				return nil
			}
			switch m := msg.(type) {
			case protocol.ClientHello:
				_ = s.sendJSON(protocol.ServerError{Type: "error", Code: "bad_request", Message: "hello may only open the session", Close: true})
				return nil
			case protocol.ClientToolCall:
				done, err := s.dispatch(registry, interviewAgent, m)
				if err != nil {
					return err
				}
				if done {
					return nil
				}
			case protocol.ClientControl:
				// Only end_session decodes.
				_ = s.sendJSON(protocol.ServerSessionEnd{Type: "session_end", Reason: "client_request"})
				s.logger.Info("session ended by driver", "session_id", s.sessionID)
				return nil
			default:
				_ = m
			}
		case <-sessionTimerCh():
			_ = s.Warn("session_timeout", "maximum session duration reached")
			_ = s.sendJSON(protocol.ServerSessionEnd{Type: "session_end", Reason: "timeout"})
			return nil
		}
	}
}

// dispatch runs one tool call to completion. Tool calls never interleave:
// the read loop only buffers frames while this executes, and the next call
// is not dispatched until the result frame is written.
func (s *Session) dispatch(registry *tools.Registry, interviewAgent *agent.InterviewAgent, call protocol.ClientToolCall) (done bool, err error) {
	result, toolErr := registry.Execute(s.ctx, call.Name, call.Input)

	outcome := "ok"
	if toolErr != nil {
		outcome = string(toolErr.Kind)
	}
	s.metrics.RecordToolCall(s.ctx, call.Name, outcome)

	frame := protocol.ServerToolResult{Type: "tool_result", ID: call.ID, Name: call.Name, Result: result}
	if toolErr != nil {
		s.logger.Warn("tool call failed",
			"session_id", s.sessionID, "tool", call.Name, "kind", toolErr.Kind, "error", toolErr.Message)
		frame.Error = &protocol.ToolError{Kind: string(toolErr.Kind), Message: toolErr.Message, Detail: toolErr.Detail}
	}
	if err := s.sendJSON(frame); err != nil {
		return false, err
	}

	if interviewAgent.Terminated() {
		// Generation was accepted: the announcement goes out with the close
		// and the session never accepts another tool call.
		_ = s.sendJSON(protocol.ServerSessionEnd{Type: "session_end", Reason: "completed", Announcement: s.announcement})
		s.logger.Info("session completed", "session_id", s.sessionID)
		return true, nil
	}
	return false, nil
}

func (s *Session) readLoop(out chan<- inboundFrame) {
	defer close(out)
	for {
		messageType, data, err := s.conn.ReadMessage()
		if err != nil {
			select {
			case out <- inboundFrame{err: err}:
			case <-s.ctx.Done():
			}
			return
		}
		if s.cfg.ReadTimeout > 0 {
			_ = s.conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
		}
		select {
		case out <- inboundFrame{messageType: messageType, data: data}:
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Session) sendJSON(v any) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if s.cfg.WriteTimeout > 0 {
		_ = s.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
	}
	return s.conn.WriteJSON(v)
}
