// Package logging builds the slog loggers shared by every service: a console
// handler (tint or JSON) optionally fanned out to Fluent Bit.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/fluent/fluent-logger-golang/fluent"
	"github.com/lmittmann/tint"
)

// Config is the logging section of a service config file.
type Config struct {
	Level     string       `yaml:"level"`
	JSON      bool         `yaml:"json"`
	AddSource bool         `yaml:"add_source"`
	Fluent    FluentConfig `yaml:"fluent"`
}

// FluentConfig enables shipping records to a Fluent Bit forward input.
type FluentConfig struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	Level   string `yaml:"level"`
}

const (
	DefaultFluentHost = "127.0.0.1"
	DefaultFluentPort = 24224
)

// New returns a logger tagged with service. The returned close func flushes
// and closes the fluent client when one was opened.
func New(service string, cfg Config) (*slog.Logger, func() error, error) {
	return newLogger(os.Stdout, service, cfg)
}

func newLogger(w io.Writer, service string, cfg Config) (*slog.Logger, func() error, error) {
	console := ConsoleHandler(w, cfg)
	closer := func() error { return nil }

	handler := console
	if cfg.Fluent.Enabled {
		host := cfg.Fluent.Host
		if host == "" {
			host = DefaultFluentHost
		}
		port := cfg.Fluent.Port
		if port == 0 {
			port = DefaultFluentPort
		}
		client, err := fluent.New(fluent.Config{
			FluentHost: host,
			FluentPort: port,
			TagPrefix:  service,
			Async:      true,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create fluent logger: %w", err)
		}
		level := ParseLevel(cfg.Fluent.Level)
		if cfg.Fluent.Level == "" {
			level = ParseLevel(cfg.Level)
		}
		handler = NewMultiHandler(console, NewFluentHandler(client, level))
		closer = client.Close
	}

	return slog.New(handler).With("service", service), closer, nil
}

// ConsoleHandler writes human-readable colored lines, or JSON when cfg.JSON.
func ConsoleHandler(w io.Writer, cfg Config) slog.Handler {
	level := ParseLevel(cfg.Level)
	if cfg.JSON {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level, AddSource: cfg.AddSource})
	}
	return tint.NewHandler(w, &tint.Options{
		Level:      level,
		AddSource:  cfg.AddSource,
		TimeFormat: "2006-01-02 15:04:05",
	})
}

// ParseLevel maps debug/info/warn/error to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
