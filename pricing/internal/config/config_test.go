package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pricing.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func TestLoadWithDefaults(t *testing.T) {
	path := writeTempFile(t, `
database_url: postgres://localhost/op_trader
rates:
  feed_url: https://rates.example.com/latest.json
repricer:
  enabled: true
`)
	cfg, err := Load("", path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.GRPCAddr != DefaultGRPCAddr {
		t.Errorf("GRPCAddr = %q, want %q", cfg.GRPCAddr, DefaultGRPCAddr)
	}
	if cfg.Rates.PollInterval != DefaultRatesInterval {
		t.Errorf("Rates.PollInterval = %v, want %v", cfg.Rates.PollInterval, DefaultRatesInterval)
	}
	if cfg.Events.Port != DefaultEventsPort {
		t.Errorf("Events.Port = %q, want %q", cfg.Events.Port, DefaultEventsPort)
	}
	if !cfg.Repricer.Enabled {
		t.Error("Repricer.Enabled = false, want true")
	}
}

func TestLoadDurationsAndEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://env/op_trader")
	t.Setenv("OPT_REDIS_PASSWORD", "hunter2")
	path := writeTempFile(t, `
redis:
  password: ${OPT_REDIS_PASSWORD}
rates:
  feed_url: https://rates.example.com/latest.json
  poll_interval: 30m
`)
	cfg, err := Load("", path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DatabaseURL != "postgres://env/op_trader" {
		t.Errorf("DatabaseURL = %q", cfg.DatabaseURL)
	}
	if cfg.Redis.Password != "hunter2" {
		t.Errorf("Redis.Password = %q, want %q", cfg.Redis.Password, "hunter2")
	}
	if cfg.Rates.PollInterval != 30*time.Minute {
		t.Errorf("Rates.PollInterval = %v, want 30m", cfg.Rates.PollInterval)
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()
	cfg.Rates.PollInterval = time.Second

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() error = nil, want error")
	}
	for _, want := range []string{"database_url", "rates.feed_url", "rates.poll_interval"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Validate() error %q does not mention %s", err, want)
		}
	}
}
