package scoring

import (
	"fmt"

	"github.com/codeready-toolchain/sqlbench/pkg/config"
)

// Weight keys for the four primary dimensions.
const (
	WeightCorrectness  = "correctness"
	WeightEfficiency   = "efficiency"
	WeightSafety       = "safety"
	WeightCompleteness = "completeness"
)

// Thresholds bound the efficiency decay curve, in milliseconds.
type Thresholds struct {
	Excellent  float64
	Good       float64
	Acceptable float64
}

// DefaultThresholds are the efficiency thresholds shared by all presets.
func DefaultThresholds() Thresholds {
	return Thresholds{Excellent: 10, Good: 100, Acceptable: 1000}
}

// Preset bundles the weights and heuristics for one named scoring profile.
// The auxiliary heuristic fills the advisory dimensions; only the four
// primary weights enter the overall score.
type Preset struct {
	Name       config.ScorerPreset
	Weights    map[string]float64
	Thresholds Thresholds
	Auxiliary  AuxiliaryFunc
}

// presetFor resolves a preset by name.
func presetFor(name config.ScorerPreset) (Preset, error) {
	switch name {
	case config.PresetDefault:
		return Preset{
			Name: name,
			Weights: map[string]float64{
				WeightCorrectness:  0.40,
				WeightEfficiency:   0.20,
				WeightSafety:       0.25,
				WeightCompleteness: 0.15,
			},
			Thresholds: DefaultThresholds(),
			Auxiliary:  constantAuxiliary,
		}, nil
	case config.PresetStrict:
		return Preset{
			Name: name,
			Weights: map[string]float64{
				WeightCorrectness:  0.60,
				WeightSafety:       0.25,
				WeightEfficiency:   0.05,
				WeightCompleteness: 0.10,
			},
			Thresholds: DefaultThresholds(),
			Auxiliary:  heuristicAuxiliary,
		}, nil
	case config.PresetPerformance:
		return Preset{
			Name: name,
			Weights: map[string]float64{
				WeightEfficiency:   0.45,
				WeightCorrectness:  0.30,
				WeightSafety:       0.15,
				WeightCompleteness: 0.10,
			},
			Thresholds: DefaultThresholds(),
			Auxiliary:  heuristicAuxiliary,
		}, nil
	case config.PresetQuality:
		return Preset{
			Name: name,
			Weights: map[string]float64{
				WeightCompleteness: 0.35,
				WeightCorrectness:  0.30,
				WeightSafety:       0.25,
				WeightEfficiency:   0.10,
			},
			Thresholds: DefaultThresholds(),
			Auxiliary:  heuristicAuxiliary,
		}, nil
	default:
		return Preset{}, fmt.Errorf("%w: %q", config.ErrUnknownPreset, name)
	}
}
