// Package metrics collects usage telemetry for interview sessions: tool
// invocation counts by outcome and session durations. Metrics export through
// OpenTelemetry with a periodic stdout-format exporter; a local snapshot
// backs the usage summary logged at shutdown.
package metrics

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

type Sink struct {
	provider *sdkmetric.MeterProvider

	toolCalls       metric.Int64Counter
	sessionsStarted metric.Int64Counter
	sessionSeconds  metric.Float64Histogram

	mu       sync.Mutex
	summary  map[string]int64
	sessions int64
}

// New builds a sink exporting to w every interval. Pass io.Discard to keep
// the counters without emitting export payloads.
func New(ctx context.Context, w io.Writer, interval time.Duration) (*Sink, error) {
	if interval <= 0 {
		interval = 10 * time.Second
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName("interview-gateway"),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}

	exporter, err := stdoutmetric.New(stdoutmetric.WithWriter(w))
	if err != nil {
		return nil, fmt.Errorf("create metric exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))),
		sdkmetric.WithResource(res),
	)
	meter := provider.Meter("interview-gateway")

	toolCalls, err := meter.Int64Counter("interview.tool_calls",
		metric.WithDescription("Tool invocations by tool name and outcome"))
	if err != nil {
		return nil, fmt.Errorf("create tool counter: %w", err)
	}
	sessionsStarted, err := meter.Int64Counter("interview.sessions",
		metric.WithDescription("Driver sessions started by mode"))
	if err != nil {
		return nil, fmt.Errorf("create session counter: %w", err)
	}
	sessionSeconds, err := meter.Float64Histogram("interview.session_duration_seconds",
		metric.WithDescription("Session duration from handshake to close"))
	if err != nil {
		return nil, fmt.Errorf("create duration histogram: %w", err)
	}

	return &Sink{
		provider:        provider,
		toolCalls:       toolCalls,
		sessionsStarted: sessionsStarted,
		sessionSeconds:  sessionSeconds,
		summary:         make(map[string]int64),
	}, nil
}

// RecordToolCall notes one tool invocation. outcome is "ok" or the error
// kind. Safe on a nil sink.
func (s *Sink) RecordToolCall(ctx context.Context, tool, outcome string) {
	if s == nil {
		return
	}
	s.toolCalls.Add(ctx, 1, metric.WithAttributes(
		attribute.String("tool", tool),
		attribute.String("outcome", outcome),
	))
	s.mu.Lock()
	s.summary[tool+":"+outcome]++
	s.mu.Unlock()
}

func (s *Sink) RecordSessionStart(ctx context.Context, mode string) {
	if s == nil {
		return
	}
	s.sessionsStarted.Add(ctx, 1, metric.WithAttributes(attribute.String("mode", mode)))
	s.mu.Lock()
	s.sessions++
	s.mu.Unlock()
}

func (s *Sink) RecordSessionEnd(ctx context.Context, mode string, d time.Duration) {
	if s == nil {
		return
	}
	s.sessionSeconds.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.String("mode", mode)))
}

// Summary returns a copy of the per-tool outcome counts plus the session
// total, for the shutdown usage log.
func (s *Sink) Summary() map[string]int64 {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int64, len(s.summary)+1)
	for k, v := range s.summary {
		out[k] = v
	}
	out["sessions"] = s.sessions
	return out
}

func (s *Sink) Shutdown(ctx context.Context) error {
	if s == nil {
		return nil
	}
	return s.provider.Shutdown(ctx)
}
