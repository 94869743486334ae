// Package config holds the pricing service configuration.
package config

import (
	"errors"
	"fmt"
	"time"

	pkgconfig "op_trader/pkg/config"
	"op_trader/pkg/logging"
)

const (
	DefaultGRPCAddr        = ":50052"
	DefaultRedisAddr       = "localhost:6379"
	DefaultRatesTTL        = 24 * time.Hour
	DefaultRatesInterval   = time.Hour
	DefaultRepriceInterval = time.Hour
	DefaultEventsPort      = "5557"
)

type Config struct {
	GRPCAddr    string         `yaml:"grpc_addr"`
	DatabaseURL string         `yaml:"database_url"`
	Redis       RedisConfig    `yaml:"redis"`
	Rates       RatesConfig    `yaml:"rates"`
	Repricer    RepricerConfig `yaml:"repricer"`
	Events      EventsConfig   `yaml:"events"`
	Logging     logging.Config `yaml:"logging"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type RatesConfig struct {
	FeedURL      string        `yaml:"feed_url"`
	PollInterval time.Duration `yaml:"poll_interval"`
	CacheTTL     time.Duration `yaml:"cache_ttl"`
}

type RepricerConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
}

type EventsConfig struct {
	Port string `yaml:"port"`
}

// Load reads envPath and yamlPath, falling back to DATABASE_URL and
// RATES_FEED_URL from the environment, then applies defaults and validates.
func Load(envPath, yamlPath string) (*Config, error) {
	var cfg Config
	if err := pkgconfig.Load(envPath, yamlPath, &cfg); err != nil {
		return nil, err
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = pkgconfig.Getenv("DATABASE_URL", "")
	}
	if cfg.Rates.FeedURL == "" {
		cfg.Rates.FeedURL = pkgconfig.Getenv("RATES_FEED_URL", "")
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.GRPCAddr == "" {
		c.GRPCAddr = DefaultGRPCAddr
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = DefaultRedisAddr
	}
	if c.Rates.PollInterval == 0 {
		c.Rates.PollInterval = DefaultRatesInterval
	}
	if c.Rates.CacheTTL == 0 {
		c.Rates.CacheTTL = DefaultRatesTTL
	}
	if c.Repricer.Interval == 0 {
		c.Repricer.Interval = DefaultRepriceInterval
	}
	if c.Events.Port == "" {
		c.Events.Port = DefaultEventsPort
	}
}

// Validate reports every missing required field at once.
func (c *Config) Validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("database_url is required"))
	}
	if c.Rates.FeedURL == "" {
		errs = append(errs, errors.New("rates.feed_url is required"))
	}
	if c.Rates.PollInterval < time.Minute {
		errs = append(errs, fmt.Errorf("rates.poll_interval %s is below one minute", c.Rates.PollInterval))
	}
	if c.Repricer.Interval < time.Minute {
		errs = append(errs, fmt.Errorf("repricer.interval %s is below one minute", c.Repricer.Interval))
	}
	return errors.Join(errs...)
}
