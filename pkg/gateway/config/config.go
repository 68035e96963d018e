package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr string

	// Generation endpoint.
	GenerateBaseURL string
	GenerateTimeout time.Duration

	// Driver WebSocket session limits.
	HandshakeTimeout    time.Duration
	SessionMaxDuration  time.Duration
	WSWriteTimeout      time.Duration
	WSReadTimeout       time.Duration
	MaxJSONMessageBytes int64

	// Operational defaults.
	ReadHeaderTimeout   time.Duration
	ShutdownGracePeriod time.Duration

	// Telemetry export.
	MetricsInterval time.Duration
}

func LoadFromEnv() (Config, error) {
	cfg := Config{
		Addr:                envOr("PREPWISE_ADDR", ":8080"),
		GenerateBaseURL:     generateBaseURL(),
		GenerateTimeout:     envDurationOr("PREPWISE_GENERATE_TIMEOUT", 30*time.Second),
		HandshakeTimeout:    envDurationOr("PREPWISE_HANDSHAKE_TIMEOUT", 5*time.Second),
		SessionMaxDuration:  envDurationOr("PREPWISE_SESSION_MAX_DURATION", 30*time.Minute),
		WSWriteTimeout:      envDurationOr("PREPWISE_WS_WRITE_TIMEOUT", 5*time.Second),
		WSReadTimeout:       envDurationOr("PREPWISE_WS_READ_TIMEOUT", 0),
		MaxJSONMessageBytes: envInt64Or("PREPWISE_MAX_JSON_MESSAGE_BYTES", 256*1024),
		ReadHeaderTimeout:   envDurationOr("PREPWISE_READ_HEADER_TIMEOUT", 10*time.Second),
		ShutdownGracePeriod: envDurationOr("PREPWISE_SHUTDOWN_GRACE_PERIOD", 30*time.Second),
		MetricsInterval:     envDurationOr("PREPWISE_METRICS_INTERVAL", 10*time.Second),
	}

	if _, err := url.ParseRequestURI(cfg.GenerateBaseURL); err != nil {
		return Config{}, fmt.Errorf("PREPWISE_GENERATE_BASE_URL is not a valid URL: %w", err)
	}
	if cfg.GenerateTimeout <= 0 {
		return Config{}, fmt.Errorf("PREPWISE_GENERATE_TIMEOUT must be > 0")
	}
	if cfg.HandshakeTimeout <= 0 {
		return Config{}, fmt.Errorf("PREPWISE_HANDSHAKE_TIMEOUT must be > 0")
	}
	if cfg.SessionMaxDuration <= 0 {
		return Config{}, fmt.Errorf("PREPWISE_SESSION_MAX_DURATION must be > 0")
	}
	if cfg.WSWriteTimeout <= 0 {
		return Config{}, fmt.Errorf("PREPWISE_WS_WRITE_TIMEOUT must be > 0")
	}
	if cfg.WSReadTimeout < 0 {
		return Config{}, fmt.Errorf("PREPWISE_WS_READ_TIMEOUT must be >= 0")
	}
	if cfg.MaxJSONMessageBytes <= 0 {
		return Config{}, fmt.Errorf("PREPWISE_MAX_JSON_MESSAGE_BYTES must be > 0")
	}
	if cfg.ReadHeaderTimeout <= 0 {
		return Config{}, fmt.Errorf("PREPWISE_READ_HEADER_TIMEOUT must be > 0")
	}
	if cfg.ShutdownGracePeriod <= 0 {
		return Config{}, fmt.Errorf("PREPWISE_SHUTDOWN_GRACE_PERIOD must be > 0")
	}
	if cfg.MetricsInterval <= 0 {
		return Config{}, fmt.Errorf("PREPWISE_METRICS_INTERVAL must be > 0")
	}

	return cfg, nil
}

// generateBaseURL resolves the generation endpoint. The fallback chain
// matches the web app's conventions so a shared .env works unchanged.
func generateBaseURL() string {
	for _, key := range []string{"PREPWISE_GENERATE_BASE_URL", "NEXT_PUBLIC_BASE_URL", "APP_BASE_URL", "BASE_URL"} {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return strings.TrimRight(v, "/")
		}
	}
	return "http://localhost:3000"
}

func envOr(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func envInt64Or(key string, def int64) int64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return def
	}
	return n
}

func envDurationOr(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return def
	}
	return d
}
