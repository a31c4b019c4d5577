// Package scoring turns a comparison result and an execution result into a
// weighted multi-dimensional score. Concrete weights and heuristics come from
// named presets (default, strict, performance, quality).
package scoring

import (
	"strings"

	"github.com/codeready-toolchain/sqlbench/pkg/config"
	"github.com/codeready-toolchain/sqlbench/pkg/models"
)

// hallucinationKeywords mark validation errors that indicate references to
// schema objects that do not exist.
var hallucinationKeywords = []string{
	"does not exist",
	"unknown column",
	"unknown table",
	"invalid",
	"not found",
	"no such",
	"doesn't exist",
}

// Scorer computes weighted multi-dimensional scores for one preset.
type Scorer struct {
	preset Preset
}

// New creates a scorer for the named preset.
func New(name config.ScorerPreset) (*Scorer, error) {
	preset, err := presetFor(name)
	if err != nil {
		return nil, err
	}
	return &Scorer{preset: preset}, nil
}

// Preset returns the active preset.
func (s *Scorer) Preset() Preset {
	return s.preset
}

// Score computes the multi-dimensional score for one scored execution.
// Every dimension lands in [0, 1]; overall is the weighted sum of the four
// primary dimensions.
func (s *Scorer) Score(in Input) models.ScoreSummary {
	score := models.ScoreSummary{Weights: s.preset.Weights}

	score.Correctness = correctness(in.Comparison)
	score.Efficiency = s.efficiency(in.Execution)
	score.PerformanceScore = score.Efficiency

	score.ValidationScore = validationScore(in.Execution)
	score.HallucinationScore = hallucinationScore(in.Execution)
	score.Safety = 0.4*score.ValidationScore + 0.6*score.HallucinationScore

	score.Completeness = completeness(in.Execution)

	score.SemanticAccuracy, score.BestPractices, score.PlanQuality = s.preset.Auxiliary(in)

	score.Overall = s.preset.Weights[WeightCorrectness]*score.Correctness +
		s.preset.Weights[WeightEfficiency]*score.Efficiency +
		s.preset.Weights[WeightSafety]*score.Safety +
		s.preset.Weights[WeightCompleteness]*score.Completeness

	return score
}

// correctness: exact match scores 1.0, otherwise the partial match score.
func correctness(comparison models.ComparisonResult) float64 {
	if comparison.IsMatch {
		return 1.0
	}
	return comparison.MatchScore
}

// efficiency maps execution time onto a piecewise-linear decay:
// ≤excellent → 1.0; →good decays to 0.8; →acceptable decays to 0.5; past
// acceptable it keeps falling toward 0. Failed executions score 0.
func (s *Scorer) efficiency(exec models.ExecutionResult) float64 {
	if !exec.Success {
		return 0.0
	}

	t := exec.ExecutionTimeMs
	th := s.preset.Thresholds

	switch {
	case t <= th.Excellent:
		return 1.0
	case t <= th.Good:
		ratio := (t - th.Excellent) / (th.Good - th.Excellent)
		return 1.0 - 0.2*ratio
	case t <= th.Acceptable:
		ratio := (t - th.Good) / (th.Acceptable - th.Good)
		return 0.8 - 0.3*ratio
	default:
		excess := t - th.Acceptable
		return clamp01(0.5 - excess/10000)
	}
}

// validationScore: valid queries lose 0.1 per warning; invalid queries score
// by error count (0 → 0.5, 1 → 0.3, 2+ → 0.1).
func validationScore(exec models.ExecutionResult) float64 {
	if exec.IsValid {
		return clamp01(1.0 - 0.1*float64(len(exec.ValidationWarnings)))
	}
	switch len(exec.ValidationErrors) {
	case 0:
		return 0.5
	case 1:
		return 0.3
	default:
		return 0.1
	}
}

// hallucinationScore counts validation errors carrying hallucination
// keywords: 0 hits → 1.0, 1 hit → 0.4, 2+ → 0.1.
func hallucinationScore(exec models.ExecutionResult) float64 {
	if exec.IsValid && len(exec.ValidationErrors) == 0 {
		return 1.0
	}

	hits := 0
	for _, errText := range exec.ValidationErrors {
		lower := strings.ToLower(errText)
		for _, kw := range hallucinationKeywords {
			if strings.Contains(lower, kw) {
				hits++
				break
			}
		}
	}

	switch hits {
	case 0:
		return 1.0
	case 1:
		return 0.4
	default:
		return 0.1
	}
}

// completeness starts at 1.0 and deducts per insight (empty −0.2, truncated
// −0.1, null −0.05, slow −0.1), with a +0.1 bonus for returning rows.
// Failed executions score 0.
func completeness(exec models.ExecutionResult) float64 {
	if !exec.Success {
		return 0.0
	}

	score := 1.0
	for _, insight := range exec.Insights {
		lower := strings.ToLower(insight)
		switch {
		case strings.Contains(lower, "no results") || strings.Contains(lower, "empty"):
			score -= 0.2
		case strings.Contains(lower, "truncated"):
			score -= 0.1
		case strings.Contains(lower, "null"):
			score -= 0.05
		case strings.Contains(lower, "slow") || strings.Contains(lower, "long"):
			score -= 0.1
		}
	}

	if exec.RowsReturned > 0 {
		score = min(1.0, score+0.1)
	}
	return clamp01(score)
}
