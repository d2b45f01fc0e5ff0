package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/wekolo/justified-grid/internal/grid"
	"github.com/wekolo/justified-grid/internal/storage"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"PORT",
		"AVAILABLE_WIDTH",
		"MIN_LINE_HEIGHT",
		"MAX_LINE_HEIGHT",
		"MIN_ITEM_WIDTH",
		"GAP",
		"RATE_LIMIT_RPS",
		"RATE_LIMIT_BURST",
	} {
		t.Setenv(name, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Port != defaultPort {
		t.Fatalf("expected default port %s, got %s", defaultPort, cfg.Port)
	}
	if want := storage.DefaultConstraints(); cfg.DefaultConstraints != want {
		t.Fatalf("expected default constraints %+v, got %+v", want, cfg.DefaultConstraints)
	}
	if cfg.ShutdownGracePeriod != 10*time.Second {
		t.Fatalf("unexpected shutdown grace period: %s", cfg.ShutdownGracePeriod)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("AVAILABLE_WIDTH", "1200")
	t.Setenv("MIN_ITEM_WIDTH", "150")
	t.Setenv("GAP", "0")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Port != "9000" {
		t.Fatalf("expected overridden port, got %s", cfg.Port)
	}
	if cfg.DefaultConstraints.AvailableWidth != 1200 {
		t.Fatalf("unexpected available width: %v", cfg.DefaultConstraints.AvailableWidth)
	}
	if cfg.DefaultConstraints.MinItemWidth != 150 {
		t.Fatalf("unexpected min item width: %v", cfg.DefaultConstraints.MinItemWidth)
	}
	if cfg.DefaultConstraints.Gap != 0 {
		t.Fatalf("expected gap override to zero, got %v", cfg.DefaultConstraints.Gap)
	}
	// Untouched fields keep their defaults.
	if want := storage.DefaultConstraints().MinLineHeight; cfg.DefaultConstraints.MinLineHeight != want {
		t.Fatalf("unexpected min line height: %v", cfg.DefaultConstraints.MinLineHeight)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`port: "9100"
layout:
  available_width: 1024
  gap: 0
enable_request_logging: true
shutdown_grace_period: 3s
rate_limit:
  rps: 10
  burst: 20
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	cfg, err := Load(&CLIOverrides{ConfigFile: path})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Port != "9100" {
		t.Fatalf("unexpected port: %s", cfg.Port)
	}
	if cfg.DefaultConstraints.AvailableWidth != 1024 {
		t.Fatalf("unexpected available width: %v", cfg.DefaultConstraints.AvailableWidth)
	}
	if cfg.DefaultConstraints.Gap != 0 {
		t.Fatalf("expected explicit zero gap, got %v", cfg.DefaultConstraints.Gap)
	}
	// Keys absent from the layout section keep their defaults.
	if want := storage.DefaultConstraints().MaxLineHeight; cfg.DefaultConstraints.MaxLineHeight != want {
		t.Fatalf("unexpected max line height: %v", cfg.DefaultConstraints.MaxLineHeight)
	}
	if cfg.ShutdownGracePeriod != 3*time.Second {
		t.Fatalf("unexpected shutdown grace period: %s", cfg.ShutdownGracePeriod)
	}
	if cfg.RateLimitRPS != 10 || cfg.RateLimitBurst != 20 {
		t.Fatalf("unexpected rate limit: %v/%d", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
}

func TestLoadCLIOverridesWinOverEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("MAX_LINE_HEIGHT", "400")

	maxLineHeight := 700.0
	ignored := -1.0
	cfg, err := Load(&CLIOverrides{
		MaxLineHeight:  &maxLineHeight,
		AvailableWidth: &ignored,
	})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.DefaultConstraints.MaxLineHeight != 700 {
		t.Fatalf("expected CLI override to win, got %v", cfg.DefaultConstraints.MaxLineHeight)
	}
	if want := storage.DefaultConstraints().AvailableWidth; cfg.DefaultConstraints.AvailableWidth != want {
		t.Fatalf("expected negative override to be ignored, got %v", cfg.DefaultConstraints.AvailableWidth)
	}
}

func TestLoadRejectsInvalidConstraints(t *testing.T) {
	clearEnv(t)
	t.Setenv("MIN_LINE_HEIGHT", "600")
	t.Setenv("MAX_LINE_HEIGHT", "300")

	if _, err := Load(nil); !errors.Is(err, grid.ErrMinHeightAboveMax) {
		t.Fatalf("expected ErrMinHeightAboveMax, got %v", err)
	}
}

func TestEnvFloat(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		t.Setenv("GRID_TEST_FLOAT", " 42.5 ")
		got, ok := envFloat("GRID_TEST_FLOAT")
		if !ok || got != 42.5 {
			t.Fatalf("expected 42.5, got %v (ok=%v)", got, ok)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		t.Setenv("GRID_TEST_FLOAT", "wide")
		if _, ok := envFloat("GRID_TEST_FLOAT"); ok {
			t.Fatalf("expected ok=false for non-numeric value")
		}
	})

	t.Run("unset", func(t *testing.T) {
		t.Setenv("GRID_TEST_FLOAT", "")
		if _, ok := envFloat("GRID_TEST_FLOAT"); ok {
			t.Fatalf("expected ok=false for blank value")
		}
	})
}
