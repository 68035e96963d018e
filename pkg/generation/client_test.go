package generation

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestGenerate_PostsSetupAndDecodesJSON(t *testing.T) {
	t.Parallel()

	var gotPath, gotContentType string
	var gotBody Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"questionCount":5}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL+"/", time.Second)
	result, err := client.Generate(context.Background(), Request{
		Type: "technical", Role: "Backend", Level: "Senior", TechStack: "Go,Postgres", Amount: 5, UserID: "u-1",
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if gotPath != "/api/agent/generate" {
		t.Fatalf("path=%q, want /api/agent/generate", gotPath)
	}
	if gotContentType != "application/json" {
		t.Fatalf("content type=%q", gotContentType)
	}
	if gotBody.TechStack != "Go,Postgres" || gotBody.UserID != "u-1" || gotBody.Amount != 5 {
		t.Fatalf("request body=%+v", gotBody)
	}
	if result.Payload["success"] != true {
		t.Fatalf("payload=%v", result.Payload)
	}
}

func TestGenerate_NonSuccessStatusReturnsStatusError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"model overloaded"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).Generate(context.Background(), Request{Type: "technical"})
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("got %v, want *StatusError", err)
	}
	if statusErr.Status != http.StatusInternalServerError {
		t.Fatalf("Status=%d, want 500", statusErr.Status)
	}
	if statusErr.Body != `{"error":"model overloaded"}` {
		t.Fatalf("Body=%q, want the response body preserved", statusErr.Body)
	}
}

func TestGenerate_EmptyBodyCountsAsSuccess(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	result, err := NewClient(srv.URL, time.Second).Generate(context.Background(), Request{Type: "technical"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if result.Payload["success"] != true {
		t.Fatalf("payload=%v, want implied success", result.Payload)
	}
}

func TestGenerate_NonJSONBodyKeptRaw(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("queued"))
	}))
	defer srv.Close()

	result, err := NewClient(srv.URL, time.Second).Generate(context.Background(), Request{Type: "technical"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if result.Payload != nil {
		t.Fatalf("payload=%v, want nil for non-json body", result.Payload)
	}
	if result.Raw != "queued" {
		t.Fatalf("raw=%q", result.Raw)
	}
}

func TestGenerate_UnreachableEndpoint(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	_, err := NewClient(srv.URL, time.Second).Generate(context.Background(), Request{Type: "technical"})
	if err == nil {
		t.Fatal("want transport error")
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		t.Fatalf("transport failure must not be a StatusError: %v", err)
	}
}

func TestGenerate_Timeout(t *testing.T) {
	t.Parallel()

	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	_, err := NewClient(srv.URL, 50*time.Millisecond).Generate(context.Background(), Request{Type: "technical"})
	if err == nil {
		t.Fatal("want timeout error")
	}
}
