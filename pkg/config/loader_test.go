package config

import (
	"os"
	"path/filepath"
	"testing"
)

type sample struct {
	Name     string `yaml:"name"`
	Database struct {
		URL string `yaml:"url"`
	} `yaml:"database"`
	Port int `yaml:"port"`
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeTempFile(t, "config.yaml", `
name: pricing
port: 50052
database:
  url: postgres://localhost/op_trader
`)

	var cfg sample
	if err := Load("", path, &cfg); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Name != "pricing" {
		t.Errorf("Name = %q, want %q", cfg.Name, "pricing")
	}
	if cfg.Port != 50052 {
		t.Errorf("Port = %d, want %d", cfg.Port, 50052)
	}
	if cfg.Database.URL != "postgres://localhost/op_trader" {
		t.Errorf("Database.URL = %q", cfg.Database.URL)
	}
}

func TestLoadExpandsEnvFile(t *testing.T) {
	const key = "OPT_TEST_DATABASE_URL"
	os.Unsetenv(key)
	t.Cleanup(func() { os.Unsetenv(key) })

	envPath := writeTempFile(t, ".env", key+"=postgres://db/from_env\n")
	yamlPath := writeTempFile(t, "config.yaml", "database:\n  url: ${"+key+"}\n")

	var cfg sample
	if err := Load(envPath, yamlPath, &cfg); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Database.URL != "postgres://db/from_env" {
		t.Errorf("Database.URL = %q, want %q", cfg.Database.URL, "postgres://db/from_env")
	}
}

func TestLoadMissingEnvFileIgnored(t *testing.T) {
	yamlPath := writeTempFile(t, "config.yaml", "name: storefront\n")

	var cfg sample
	if err := Load(filepath.Join(t.TempDir(), "missing.env"), yamlPath, &cfg); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Name != "storefront" {
		t.Errorf("Name = %q, want %q", cfg.Name, "storefront")
	}
}

func TestLoadMissingYAML(t *testing.T) {
	var cfg sample
	if err := Load("", filepath.Join(t.TempDir(), "nope.yaml"), &cfg); err == nil {
		t.Error("Load() error = nil, want error for missing file")
	}
}

func TestDecodeInvalidYAML(t *testing.T) {
	var cfg sample
	if err := Decode([]byte("name: [unterminated"), &cfg); err == nil {
		t.Error("Decode() error = nil, want parse error")
	}
}

func TestGetenv(t *testing.T) {
	t.Setenv("OPT_TEST_SET", "value")
	if got := Getenv("OPT_TEST_SET", "fallback"); got != "value" {
		t.Errorf("Getenv() = %q, want %q", got, "value")
	}
	if got := Getenv("OPT_TEST_UNSET_KEY", "fallback"); got != "fallback" {
		t.Errorf("Getenv() = %q, want %q", got, "fallback")
	}
}
