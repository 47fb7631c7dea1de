// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package config loads the CLI configuration: a YAML file, overridden by
// UARRAY_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config selects the backends to activate and how to report.
type Config struct {
	// Backends are installed in order; later backends take precedence.
	Backends []string `yaml:"backends" env:"UARRAY_BACKENDS" envSeparator:","`
	LogLevel string   `yaml:"log_level" env:"UARRAY_LOG_LEVEL"`
	Trace    bool     `yaml:"trace" env:"UARRAY_TRACE"`
	// Workers bounds concurrent evaluations.
	Workers int `yaml:"workers" env:"UARRAY_WORKERS"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Backends: []string{"float"},
		LogLevel: "info",
		Workers:  4,
	}
}

// Load reads path over the defaults and applies environment overrides.
// An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for consistency.
func (c Config) Validate() error {
	if len(c.Backends) == 0 {
		return errors.New("config: at least one backend required")
	}
	for _, b := range c.Backends {
		if b == "" {
			return errors.New("config: empty backend name")
		}
	}
	if c.Workers < 1 {
		return fmt.Errorf("config: workers must be positive, got %d", c.Workers)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel.
func (c Config) Level() (zapcore.Level, error) {
	lvl, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return lvl, fmt.Errorf("config: log_level: %w", err)
	}
	return lvl, nil
}
