// Package generation performs the single outbound call that hands interview
// setup off to the external question-generation service. It keeps transport
// concerns (timeouts, connection failures, non-2xx handling, malformed
// response bodies) out of the orchestration core.
package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	generatePath = "/api/agent/generate"

	// Response bodies are read fully before deciding success, but never
	// beyond this cap.
	maxResponseBytes = 1 << 20
)

// Request is the setup payload forwarded to the generation endpoint.
type Request struct {
	Type      string `json:"type"`
	Role      string `json:"role"`
	Level     string `json:"level"`
	TechStack string `json:"techstack"`
	Amount    int    `json:"amount"`
	UserID    string `json:"userid"`
}

// Result carries the accepted response. Payload holds the decoded JSON body
// when the endpoint returned one; otherwise Raw holds the body verbatim. An
// empty body decodes to {"success": true}.
type Result struct {
	Payload map[string]any
	Raw     string
}

// StatusError is a non-success response from the generation endpoint. Body
// carries the endpoint's diagnostic detail.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("generation endpoint returned %d: %s", e.Status, strings.TrimSpace(e.Body))
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Generate issues one POST to the generation endpoint. Transport failures
// (including timeouts) return a wrapped error; any status >= 400 returns a
// *StatusError. The caller decides what either means for session state.
func (c *Client) Generate(ctx context.Context, genReq Request) (*Result, error) {
	body, err := json.Marshal(genReq)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+generatePath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call generation endpoint: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read generation response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, &StatusError{Status: resp.StatusCode, Body: string(raw)}
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return &Result{Payload: map[string]any{"success": true}}, nil
	}
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return &Result{Raw: string(raw)}, nil
	}
	return &Result{Payload: payload}, nil
}
