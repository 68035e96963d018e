package config

import (
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PREPWISE_ADDR",
		"PREPWISE_GENERATE_BASE_URL",
		"PREPWISE_GENERATE_TIMEOUT",
		"PREPWISE_HANDSHAKE_TIMEOUT",
		"PREPWISE_SESSION_MAX_DURATION",
		"PREPWISE_WS_WRITE_TIMEOUT",
		"PREPWISE_WS_READ_TIMEOUT",
		"PREPWISE_MAX_JSON_MESSAGE_BYTES",
		"PREPWISE_READ_HEADER_TIMEOUT",
		"PREPWISE_SHUTDOWN_GRACE_PERIOD",
		"PREPWISE_METRICS_INTERVAL",
		"NEXT_PUBLIC_BASE_URL",
		"APP_BASE_URL",
		"BASE_URL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Fatalf("Addr=%q", cfg.Addr)
	}
	if cfg.GenerateBaseURL != "http://localhost:3000" {
		t.Fatalf("GenerateBaseURL=%q", cfg.GenerateBaseURL)
	}
	if cfg.GenerateTimeout != 30*time.Second {
		t.Fatalf("GenerateTimeout=%v", cfg.GenerateTimeout)
	}
	if cfg.SessionMaxDuration != 30*time.Minute {
		t.Fatalf("SessionMaxDuration=%v", cfg.SessionMaxDuration)
	}
	if cfg.MaxJSONMessageBytes != 256*1024 {
		t.Fatalf("MaxJSONMessageBytes=%d", cfg.MaxJSONMessageBytes)
	}
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PREPWISE_ADDR", ":9999")
	t.Setenv("PREPWISE_GENERATE_BASE_URL", "https://app.example.com/")
	t.Setenv("PREPWISE_SESSION_MAX_DURATION", "45m")
	t.Setenv("PREPWISE_MAX_JSON_MESSAGE_BYTES", "1024")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}
	if cfg.Addr != ":9999" {
		t.Fatalf("Addr=%q", cfg.Addr)
	}
	if cfg.GenerateBaseURL != "https://app.example.com" {
		t.Fatalf("GenerateBaseURL=%q, want trailing slash trimmed", cfg.GenerateBaseURL)
	}
	if cfg.SessionMaxDuration != 45*time.Minute {
		t.Fatalf("SessionMaxDuration=%v", cfg.SessionMaxDuration)
	}
	if cfg.MaxJSONMessageBytes != 1024 {
		t.Fatalf("MaxJSONMessageBytes=%d", cfg.MaxJSONMessageBytes)
	}
}

func TestLoadFromEnv_BaseURLFallbackChain(t *testing.T) {
	clearEnv(t)
	t.Setenv("BASE_URL", "https://last.example.com")
	t.Setenv("NEXT_PUBLIC_BASE_URL", "https://next.example.com")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}
	if cfg.GenerateBaseURL != "https://next.example.com" {
		t.Fatalf("GenerateBaseURL=%q, want NEXT_PUBLIC_BASE_URL to win over BASE_URL", cfg.GenerateBaseURL)
	}
}

func TestLoadFromEnv_InvalidValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("PREPWISE_GENERATE_BASE_URL", "not a url")
	if _, err := LoadFromEnv(); err == nil {
		t.Fatal("want error for invalid base url")
	}

	clearEnv(t)
	t.Setenv("PREPWISE_SESSION_MAX_DURATION", "-5m")
	if _, err := LoadFromEnv(); err == nil {
		t.Fatal("want error for non-positive session duration")
	}

	clearEnv(t)
	t.Setenv("PREPWISE_MAX_JSON_MESSAGE_BYTES", "-1")
	if _, err := LoadFromEnv(); err == nil {
		t.Fatal("want error for non-positive message limit")
	}
}

func TestEnvHelpers_IgnoreMalformedValues(t *testing.T) {
	t.Setenv("SOME_DURATION", "soon")
	if got := envDurationOr("SOME_DURATION", time.Minute); got != time.Minute {
		t.Fatalf("got %v, want the default", got)
	}
	t.Setenv("SOME_INT", "many")
	if got := envInt64Or("SOME_INT", 7); got != 7 {
		t.Fatalf("got %d, want the default", got)
	}
}
