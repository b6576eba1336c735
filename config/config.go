package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the client configuration, loaded from the environment.
type Config struct {
	// Backend base URL, shared by the REST and WebSocket endpoints.
	ServerURL string `env:"RANKCHAT_SERVER_URL" envDefault:"http://localhost:8000"`

	// Resume an existing session instead of creating one.
	SessionID string `env:"RANKCHAT_SESSION_ID"`

	// Reconnect behavior after a dropped socket.
	ReconnectMax   int           `env:"RANKCHAT_RECONNECT_MAX" envDefault:"5"`
	ReconnectDelay time.Duration `env:"RANKCHAT_RECONNECT_DELAY" envDefault:"500ms"`

	// Log destination; the TUI owns the terminal, so logs go to a file.
	LogFile string `env:"RANKCHAT_LOG_FILE" envDefault:"rankchat.log"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.ReconnectMax < 1 {
		return nil, fmt.Errorf("RANKCHAT_RECONNECT_MAX must be at least 1")
	}
	return cfg, nil
}
