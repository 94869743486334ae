// Package config loads service configuration from an optional .env file and a
// YAML file whose ${VAR} references are expanded from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Load reads envPath into the process environment (a missing file is
// ignored), then decodes yamlPath into dst after expanding ${VAR} references.
// An empty yamlPath leaves dst untouched so services can run on defaults.
func Load(envPath, yamlPath string, dst any) error {
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load env file: %w", err)
		}
	}
	if yamlPath == "" {
		return nil
	}

	data, err := os.ReadFile(yamlPath)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	return Decode(data, dst)
}

// Decode expands environment variables in data and unmarshals it into dst.
func Decode(data []byte, dst any) error {
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), dst); err != nil {
		return fmt.Errorf("parse config yaml: %w", err)
	}
	return nil
}

// Getenv returns the value of key, or fallback when it is unset or empty.
func Getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
