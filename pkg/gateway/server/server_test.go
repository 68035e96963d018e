package server

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prepwise/interview-gateway/pkg/gateway/config"
	"github.com/prepwise/interview-gateway/pkg/generation"
	"github.com/prepwise/interview-gateway/pkg/store"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return New(config.Config{
		Addr:                ":0",
		GenerateBaseURL:     "http://localhost:3000",
		GenerateTimeout:     time.Second,
		HandshakeTimeout:    time.Second,
		SessionMaxDuration:  time.Minute,
		WSWriteTimeout:      time.Second,
		MaxJSONMessageBytes: 64 * 1024,
		ReadHeaderTimeout:   time.Second,
		ShutdownGracePeriod: time.Second,
	}, Dependencies{
		Logger:    slog.New(slog.DiscardHandler),
		Store:     store.NewMemory(),
		Generator: generation.NewClient("http://localhost:3000", time.Second),
	})
}

func TestHandler_Routes(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(newTestServer(t).Handler())
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz status=%d", resp.StatusCode)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Fatal("want request id header from middleware")
	}

	resp, err = http.Get(srv.URL + "/readyz")
	if err != nil {
		t.Fatalf("GET /readyz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("readyz status=%d", resp.StatusCode)
	}

	// A plain GET without an upgrade must not hang the session route.
	resp, err = http.Get(srv.URL + "/v1/session")
	if err != nil {
		t.Fatalf("GET /v1/session: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode == http.StatusOK {
		t.Fatalf("session status=%d, want an upgrade failure", resp.StatusCode)
	}
}

func TestDraining_FlipsReadyAndSessionRoutes(t *testing.T) {
	t.Parallel()

	gw := newTestServer(t)
	srv := httptest.NewServer(gw.Handler())
	t.Cleanup(srv.Close)

	gw.SetDraining(true)
	if !gw.IsDraining() {
		t.Fatal("IsDraining=false after SetDraining(true)")
	}

	resp, err := http.Get(srv.URL + "/readyz")
	if err != nil {
		t.Fatalf("GET /readyz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("readyz status=%d, want 503", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/v1/session")
	if err != nil {
		t.Fatalf("GET /v1/session: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("session status=%d, want 503", resp.StatusCode)
	}
}

func TestSessionLifecycleHelpers(t *testing.T) {
	t.Parallel()

	gw := newTestServer(t)
	if gw.LiveSessions() != 0 {
		t.Fatalf("LiveSessions=%d, want 0", gw.LiveSessions())
	}
	if gw.WarnSessionsDraining() != 0 {
		t.Fatal("no sessions to warn")
	}
	if gw.CancelSessions() != 0 {
		t.Fatal("no sessions to cancel")
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if !gw.WaitSessions(ctx) {
		t.Fatal("empty tracker must drain immediately")
	}
}
