package config_test

import (
	"testing"
	"time"

	"github.com/jerom68/Auction/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPAddr != ":8080" || cfg.GRPCAddr != ":9090" || cfg.MetricsAddr != ":9091" {
		t.Fatalf("addrs = %s %s %s", cfg.HTTPAddr, cfg.GRPCAddr, cfg.MetricsAddr)
	}
	if cfg.TimerPolicy != "quiet" || cfg.Countdown != 15*time.Second {
		t.Fatalf("timer = %s %s", cfg.TimerPolicy, cfg.Countdown)
	}
	if cfg.EventBuffer != 256 || cfg.CommandBuffer != 256 {
		t.Fatalf("buffers = %d %d", cfg.EventBuffer, cfg.CommandBuffer)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("AUCTION_TIMER_POLICY", "fixed")
	t.Setenv("AUCTION_COUNTDOWN", "90s")
	t.Setenv("AUCTION_HTTP_ADDR", ":8888")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.TimerPolicy != "fixed" || cfg.Countdown != 90*time.Second || cfg.HTTPAddr != ":8888" {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestLoadRejectsNonPositiveCountdown(t *testing.T) {
	t.Setenv("AUCTION_COUNTDOWN", "0s")
	if _, err := config.Load(); err == nil {
		t.Fatal("expected error for zero countdown")
	}
}
