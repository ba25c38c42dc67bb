// SPDX-License-Identifier: Apache-2.0
// Copyright 2022 Jussi Maki

// Package config loads the configuration of the timer example.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultFile is the configuration file looked up when no path is given.
const DefaultFile = "timer.yaml"

// Config represents the optional timer.yaml configuration.
type Config struct {
	Timer  TimerConfig  `yaml:"timer"`
	Render RenderConfig `yaml:"render"`
	Log    LogConfig    `yaml:"log"`
}

// TimerConfig configures the ticking observable.
type TimerConfig struct {
	// Interval between ticks, e.g. "1500ms".
	Interval time.Duration `yaml:"interval,omitempty"`

	// MaxRate throttles ticks to at most this many per second. Zero
	// disables throttling.
	MaxRate float64 `yaml:"max_rate,omitempty"`

	// Duration stops the program after the given time. Zero runs until
	// interrupted.
	Duration time.Duration `yaml:"duration,omitempty"`
}

// RenderConfig configures the render loop.
type RenderConfig struct {
	// MaxPerSecond limits renders per second. Zero is unlimited.
	MaxPerSecond float64 `yaml:"max_per_second,omitempty"`
	Burst        int     `yaml:"burst,omitempty"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `yaml:"level,omitempty"`
}

// Default returns the configuration used when nothing is configured.
func Default() *Config {
	return &Config{
		Timer: TimerConfig{Interval: 1500 * time.Millisecond},
		Log:   LogConfig{Level: "info"},
	}
}

// Load reads the configuration from 'path'. An empty path means DefaultFile,
// which may be missing, in which case the defaults are returned. Unset
// fields are filled from Default(). The result is not validated, so that
// overrides can be applied before calling Validate.
func Load(path string) (*Config, error) {
	optional := path == ""
	if optional {
		path = DefaultFile
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	cfg.merge(&file)
	return cfg, nil
}

func (c *Config) merge(o *Config) {
	if o.Timer.Interval != 0 {
		c.Timer.Interval = o.Timer.Interval
	}
	if o.Timer.MaxRate != 0 {
		c.Timer.MaxRate = o.Timer.MaxRate
	}
	if o.Timer.Duration != 0 {
		c.Timer.Duration = o.Timer.Duration
	}
	if o.Render.MaxPerSecond != 0 {
		c.Render.MaxPerSecond = o.Render.MaxPerSecond
	}
	if o.Render.Burst != 0 {
		c.Render.Burst = o.Render.Burst
	}
	if level := strings.TrimSpace(o.Log.Level); level != "" {
		c.Log.Level = level
	}
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	if c.Timer.Interval <= 0 {
		return fmt.Errorf("timer.interval must be positive, got %s", c.Timer.Interval)
	}
	if c.Timer.MaxRate < 0 {
		return fmt.Errorf("timer.max_rate must not be negative, got %v", c.Timer.MaxRate)
	}
	if c.Timer.Duration < 0 {
		return fmt.Errorf("timer.duration must not be negative, got %s", c.Timer.Duration)
	}
	if c.Render.MaxPerSecond < 0 {
		return fmt.Errorf("render.max_per_second must not be negative, got %v", c.Render.MaxPerSecond)
	}
	if c.Render.Burst < 0 {
		return fmt.Errorf("render.burst must not be negative, got %d", c.Render.Burst)
	}
	return nil
}
