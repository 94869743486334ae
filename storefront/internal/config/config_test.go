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
	path := filepath.Join(t.TempDir(), "storefront.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func TestLoadWithDefaults(t *testing.T) {
	t.Setenv("RABBITMQ_URL", "")
	path := writeTempFile(t, `
database_url: postgres://localhost/op_trader
`)
	cfg, err := Load("", path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.HTTPAddr != DefaultHTTPAddr {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, DefaultHTTPAddr)
	}
	if cfg.PricingAddr != DefaultPricingAddr {
		t.Errorf("PricingAddr = %q, want %q", cfg.PricingAddr, DefaultPricingAddr)
	}
	if cfg.RabbitMQURL != DefaultRabbitMQURL {
		t.Errorf("RabbitMQURL = %q, want %q", cfg.RabbitMQURL, DefaultRabbitMQURL)
	}
	if cfg.Jobs.Queue != DefaultJobsQueue || cfg.Jobs.Prefetch != DefaultJobsPrefetch {
		t.Errorf("Jobs = %+v", cfg.Jobs)
	}
	if cfg.Labels.RendererURL != "" {
		t.Errorf("Labels.RendererURL = %q, want empty", cfg.Labels.RendererURL)
	}
	if cfg.Jobs.ImportDir != "" {
		t.Errorf("Jobs.ImportDir = %q, want empty", cfg.Jobs.ImportDir)
	}
}

func TestLoadEnvFallbacks(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://env/op_trader")
	t.Setenv("RABBITMQ_URL", "amqp://mq:5672/")
	t.Setenv("OPT_LABELS_URL", "http://labelary.local/v1/printers/8dpmm/labels/2x1/")
	path := writeTempFile(t, `
labels:
  renderer_url: ${OPT_LABELS_URL}
  timeout: 5s
jobs:
  prefetch: 8
  import_dir: /srv/imports
`)
	cfg, err := Load("", path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DatabaseURL != "postgres://env/op_trader" {
		t.Errorf("DatabaseURL = %q", cfg.DatabaseURL)
	}
	if cfg.RabbitMQURL != "amqp://mq:5672/" {
		t.Errorf("RabbitMQURL = %q", cfg.RabbitMQURL)
	}
	if !strings.HasPrefix(cfg.Labels.RendererURL, "http://labelary.local/") {
		t.Errorf("Labels.RendererURL = %q", cfg.Labels.RendererURL)
	}
	if cfg.Labels.Timeout != 5*time.Second {
		t.Errorf("Labels.Timeout = %v, want 5s", cfg.Labels.Timeout)
	}
	if cfg.Jobs.Prefetch != 8 {
		t.Errorf("Jobs.Prefetch = %d, want 8", cfg.Jobs.Prefetch)
	}
	if cfg.Jobs.ImportDir != "/srv/imports" {
		t.Errorf("Jobs.ImportDir = %q, want /srv/imports", cfg.Jobs.ImportDir)
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()
	cfg.Jobs.Prefetch = -1

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() error = nil, want error")
	}
	for _, want := range []string{"database_url", "jobs.prefetch"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Validate() error %q does not mention %s", err, want)
		}
	}
}
