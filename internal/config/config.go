package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all service configuration, loaded from environment
// variables.
type Config struct {
	HTTPAddr    string `env:"AUCTION_HTTP_ADDR" envDefault:":8080"`
	GRPCAddr    string `env:"AUCTION_GRPC_ADDR" envDefault:":9090"`
	MetricsAddr string `env:"AUCTION_METRICS_ADDR" envDefault:":9091"`

	NATSURL string `env:"AUCTION_NATS_URL" envDefault:"nats://localhost:4222"`

	// TimerPolicy is "quiet" (each accepted bid restarts the countdown)
	// or "fixed" (one window armed at start).
	TimerPolicy string        `env:"AUCTION_TIMER_POLICY" envDefault:"quiet"`
	Countdown   time.Duration `env:"AUCTION_COUNTDOWN" envDefault:"15s"`

	EventBuffer   int `env:"AUCTION_EVENT_BUFFER" envDefault:"256"`
	CommandBuffer int `env:"AUCTION_CMD_BUFFER" envDefault:"256"`

	LogLevel string `env:"AUCTION_LOG_LEVEL" envDefault:"info"`
}

// Load parses configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Countdown <= 0 {
		return Config{}, fmt.Errorf("AUCTION_COUNTDOWN must be positive, got %s", cfg.Countdown)
	}
	return cfg, nil
}
