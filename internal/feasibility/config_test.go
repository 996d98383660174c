package feasibility

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultWeightsValid(t *testing.T) {
	assert.NoError(t, DefaultWeights().Validate())
}

func TestWeightsSumEnforced(t *testing.T) {
	// Scaling to 1.0 must fail until the cap is deliberately rescaled.
	w := DefaultWeights()
	w.ProgressRatio = 0.35
	err := w.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sum")
}

func TestWeightsRangeEnforced(t *testing.T) {
	w := DefaultWeights()
	w.TimePressure = -0.15
	w.ProgressRatio = 0.55
	err := w.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func TestLoadWeights(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weights.yaml")
	content := `progress_ratio: 0.30
time_pressure: 0.10
contribution_affordability: 0.25
spending_headroom: 0.10
liquidity_alignment: 0.05
risk_alignment: 0.10
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	w, err := LoadWeights(path)
	require.NoError(t, err)
	assert.Equal(t, 0.30, w.ProgressRatio)
	assert.Equal(t, 0.10, w.TimePressure)
}

func TestLoadWeightsRejectsBadSum(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weights.yaml")
	content := `progress_ratio: 0.50
time_pressure: 0.50
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := LoadWeights(path)
	assert.Error(t, err)
}

func TestLoadWeightsMissingFile(t *testing.T) {
	_, err := LoadWeights(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
