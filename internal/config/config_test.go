// SPDX-License-Identifier: Apache-2.0
// Copyright 2022 Jussi Maki

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "timer.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("file values override defaults", func(t *testing.T) {
		path := writeFile(t, `
timer:
  interval: 250ms
  max_rate: 2
render:
  max_per_second: 30
  burst: 2
log:
  level: debug
`)
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 250*time.Millisecond, cfg.Timer.Interval)
		assert.Equal(t, 2.0, cfg.Timer.MaxRate)
		assert.Equal(t, time.Duration(0), cfg.Timer.Duration)
		assert.Equal(t, 30.0, cfg.Render.MaxPerSecond)
		assert.Equal(t, 2, cfg.Render.Burst)
		assert.Equal(t, "debug", cfg.Log.Level)
	})

	t.Run("partial file keeps defaults", func(t *testing.T) {
		cfg, err := Load(writeFile(t, "timer:\n  duration: 3s\n"))
		require.NoError(t, err)
		assert.Equal(t, 1500*time.Millisecond, cfg.Timer.Interval)
		assert.Equal(t, 3*time.Second, cfg.Timer.Duration)
		assert.Equal(t, "info", cfg.Log.Level)
	})

	t.Run("missing explicit file is an error", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("missing default file yields defaults", func(t *testing.T) {
		wd, err := os.Getwd()
		require.NoError(t, err)
		require.NoError(t, os.Chdir(t.TempDir()))
		t.Cleanup(func() { _ = os.Chdir(wd) })
		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("invalid values are rejected by Validate", func(t *testing.T) {
		cfg, err := Load(writeFile(t, "timer:\n  interval: -1s\n"))
		require.NoError(t, err)
		assert.ErrorContains(t, cfg.Validate(), "timer.interval")
	})

	t.Run("overrides can fix invalid file values", func(t *testing.T) {
		cfg, err := Load(writeFile(t, "timer:\n  interval: -1s\nrender:\n  burst: -2\n"))
		require.NoError(t, err)
		cfg.Timer.Interval = time.Second
		cfg.Render.Burst = 0
		assert.NoError(t, cfg.Validate())
	})

	t.Run("malformed yaml is rejected", func(t *testing.T) {
		_, err := Load(writeFile(t, "timer: [\n"))
		assert.ErrorContains(t, err, "failed to parse")
	})
}
