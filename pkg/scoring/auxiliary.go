package scoring

import (
	"regexp"
	"strings"

	"github.com/codeready-toolchain/sqlbench/pkg/models"
)

// AuxiliaryFunc computes the advisory dimensions: semantic accuracy, best
// practices, and plan quality. They are reported but never weighted into the
// overall score.
type AuxiliaryFunc func(in Input) (semantic, bestPractices, planQuality float64)

// constantAuxiliary is the default preset's heuristic: every advisory
// dimension reports 1.0.
func constantAuxiliary(Input) (float64, float64, float64) {
	return 1.0, 1.0, 1.0
}

var crossJoinRe = regexp.MustCompile(`(?i)\bCROSS\s+JOIN\b|\bFROM\s+\w+\s*,\s*\w+`)

// heuristicAuxiliary estimates the advisory dimensions from the comparison
// and simple query shape signals.
func heuristicAuxiliary(in Input) (semantic, bestPractices, planQuality float64) {
	semantic = 1.0
	if in.Expected != nil {
		semantic = in.Comparison.MatchScore
		if in.Comparison.IsMatch {
			semantic = 1.0
		}
	}

	bestPractices = 1.0 - 0.25*float64(len(in.Execution.ValidationWarnings))
	bestPractices = clamp01(bestPractices)

	planQuality = 1.0
	if !in.Execution.Success {
		planQuality = 0.0
	} else {
		if crossJoinRe.MatchString(in.SQL) {
			planQuality -= 0.3
		}
		if strings.Contains(strings.ToUpper(in.SQL), "SELECT *") {
			planQuality -= 0.1
		}
		planQuality = clamp01(planQuality)
	}
	return semantic, bestPractices, planQuality
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Input bundles the evidence a scorer works from.
type Input struct {
	Comparison models.ComparisonResult
	Execution  models.ExecutionResult
	SQL        string
	Dialect    string
	Expected   []models.Row
}
