package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 1000.0, cfg.Planner.EmergencyLiquidityMin)
	assert.False(t, cfg.Scheduler.Enabled)
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "advisor.yaml")
	content := `server:
  port: 9090
scheduler:
  enabled: true
  spec: "0 7 * * *"
planner:
  emergency_liquidity_min: 2000
  min_reallocation: 50
  tie_window: 0.05
  surplus_share: 0.5
  gap_share: 0.1
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.True(t, cfg.Scheduler.Enabled)
	assert.Equal(t, "0 7 * * *", cfg.Scheduler.Spec)
	assert.Equal(t, 2000.0, cfg.Planner.EmergencyLiquidityMin)
	// Untouched sections keep their defaults.
	assert.Equal(t, 20.0, cfg.RateLimit.RequestsPerSecond)
	assert.NoError(t, cfg.Weights.Validate())
}

func TestLoadRejectsBadPort(t *testing.T) {
	path := filepath.Join(t.TempDir(), "advisor.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: -1\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsBadWeights(t *testing.T) {
	path := filepath.Join(t.TempDir(), "advisor.yaml")
	content := `weights:
  progress_ratio: 0.9
  time_pressure: 0.9
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidateRateLimit(t *testing.T) {
	cfg := Default()
	cfg.RateLimit.RequestsPerSecond = 0
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.RateLimit.Burst = 0
	assert.Error(t, cfg.Validate())
}
