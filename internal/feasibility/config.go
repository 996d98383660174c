package feasibility

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Weights defines the component weight allocation for goal feasibility
// scoring. The weights intentionally sum to 0.90, capping the maximum score
// at 0.9; Validate enforces the sum so a casual "fix" to 1.0 fails loudly
// until product signs off on rescaling.
type Weights struct {
	ProgressRatio             float64 `yaml:"progress_ratio"`
	TimePressure              float64 `yaml:"time_pressure"`
	ContributionAffordability float64 `yaml:"contribution_affordability"`
	SpendingHeadroom          float64 `yaml:"spending_headroom"`
	LiquidityAlignment        float64 `yaml:"liquidity_alignment"`
	RiskAlignment             float64 `yaml:"risk_alignment"`
}

const weightSum = 0.90

// DefaultWeights returns the production weight allocation.
func DefaultWeights() Weights {
	return Weights{
		ProgressRatio:             0.25,
		TimePressure:              0.15,
		ContributionAffordability: 0.25,
		SpendingHeadroom:          0.10,
		LiquidityAlignment:        0.05,
		RiskAlignment:             0.10,
	}
}

// Validate checks that every weight is in [0,1] and the sum matches the
// expected 0.90 allocation.
func (w Weights) Validate() error {
	all := map[string]float64{
		"progress_ratio":             w.ProgressRatio,
		"time_pressure":              w.TimePressure,
		"contribution_affordability": w.ContributionAffordability,
		"spending_headroom":          w.SpendingHeadroom,
		"liquidity_alignment":        w.LiquidityAlignment,
		"risk_alignment":             w.RiskAlignment,
	}
	sum := 0.0
	for name, v := range all {
		if v < 0 || v > 1 {
			return fmt.Errorf("weight %s out of range [0,1]: %.4f", name, v)
		}
		sum += v
	}
	if math.Abs(sum-weightSum) > 0.001 {
		return fmt.Errorf("weights sum to %.4f, expected %.2f", sum, weightSum)
	}
	return nil
}

// LoadWeights reads a weight allocation from a YAML file and validates it.
func LoadWeights(path string) (Weights, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Weights{}, fmt.Errorf("failed to read weights file %s: %w", path, err)
	}
	var w Weights
	if err := yaml.Unmarshal(data, &w); err != nil {
		return Weights{}, fmt.Errorf("failed to parse weights YAML: %w", err)
	}
	if err := w.Validate(); err != nil {
		return Weights{}, fmt.Errorf("weights validation failed: %w", err)
	}
	return w, nil
}
