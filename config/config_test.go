package config

import (
	"os"
	"testing"
	"time"
)

// clearEnv removes every RANKCHAT_ variable for the duration of the
// test. Setenv registers the restore; the vars must be absent, not
// blank, for envDefault to apply.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"RANKCHAT_SERVER_URL",
		"RANKCHAT_SESSION_ID",
		"RANKCHAT_RECONNECT_MAX",
		"RANKCHAT_RECONNECT_DELAY",
		"RANKCHAT_LOG_FILE",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if cfg.ServerURL != "http://localhost:8000" {
		t.Fatalf("unexpected server url: %s", cfg.ServerURL)
	}
	if cfg.ReconnectMax != 5 {
		t.Fatalf("unexpected reconnect max: %d", cfg.ReconnectMax)
	}
	if cfg.ReconnectDelay != 500*time.Millisecond {
		t.Fatalf("unexpected reconnect delay: %v", cfg.ReconnectDelay)
	}
	if cfg.LogFile != "rankchat.log" {
		t.Fatalf("unexpected log file: %s", cfg.LogFile)
	}
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("RANKCHAT_SERVER_URL", "https://predictor.example.com")
	t.Setenv("RANKCHAT_SESSION_ID", "abc-123")
	t.Setenv("RANKCHAT_RECONNECT_DELAY", "2s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if cfg.ServerURL != "https://predictor.example.com" {
		t.Fatalf("unexpected server url: %s", cfg.ServerURL)
	}
	if cfg.SessionID != "abc-123" {
		t.Fatalf("unexpected session id: %s", cfg.SessionID)
	}
	if cfg.ReconnectDelay != 2*time.Second {
		t.Fatalf("unexpected reconnect delay: %v", cfg.ReconnectDelay)
	}
}

func TestLoad_RejectsZeroRetries(t *testing.T) {
	clearEnv(t)
	t.Setenv("RANKCHAT_RECONNECT_MAX", "0")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for zero reconnect ceiling")
	}
}
