// Package compare implements the result comparator: it matches an actual
// row-set against an expected one under configurable tolerance and produces
// a continuous match score.
package compare

import (
	"math"
	"strings"

	"github.com/codeready-toolchain/sqlbench/pkg/models"
)

// Options configure a Comparator.
type Options struct {
	// NumericTolerance is the maximum absolute difference under which two
	// numeric values are considered equal.
	NumericTolerance float64

	// IgnoreRowOrder matches rows greedily one-to-one instead of by position.
	IgnoreRowOrder bool

	// CaseSensitive controls string comparison.
	CaseSensitive bool
}

// DefaultOptions are the comparator settings used for assessments.
func DefaultOptions() Options {
	return Options{
		NumericTolerance: 1e-6,
		IgnoreRowOrder:   true,
		CaseSensitive:    false,
	}
}

// Comparator compares two ordered lists of row mappings.
type Comparator struct {
	opts Options
}

// New creates a comparator with the given options.
func New(opts Options) *Comparator {
	return &Comparator{opts: opts}
}

// NewDefault creates a comparator with DefaultOptions.
func NewDefault() *Comparator {
	return New(DefaultOptions())
}

// Compare matches actual against expected and scores the overlap.
//
// The match score combines row match ratio (50%), column match ratio (30%),
// row count match (10%), and column count match (10%), rounded to four
// decimals. IsMatch additionally requires matching counts and no missing or
// extra columns.
func (c *Comparator) Compare(actual, expected []models.Row) models.ComparisonResult {
	if len(actual) == 0 && len(expected) == 0 {
		return models.ComparisonResult{
			IsMatch:          true,
			MatchScore:       1.0,
			RowCountMatch:    true,
			ColumnCountMatch: true,
			Details:          map[string]any{"message": "Both results are empty"},
		}
	}
	if len(actual) == 0 {
		return models.ComparisonResult{
			Details: map[string]any{"message": "Actual result is empty", "expected_rows": len(expected)},
		}
	}
	if len(expected) == 0 {
		return models.ComparisonResult{
			Details: map[string]any{"message": "Expected result is empty", "actual_rows": len(actual)},
		}
	}

	actualColumns := keySet(actual[0])
	expectedColumns := keySet(expected[0])

	common := intersect(actualColumns, expectedColumns)
	missing := subtract(expectedColumns, actualColumns)
	extra := subtract(actualColumns, expectedColumns)

	columnCountMatch := len(actualColumns) == len(expectedColumns)
	rowCountMatch := len(actual) == len(expected)

	var columnMatchRatio float64
	switch {
	case len(expectedColumns) > 0:
		columnMatchRatio = float64(len(common)) / float64(len(expectedColumns))
	case len(actualColumns) == 0:
		columnMatchRatio = 1.0
	}

	matched := c.matchRows(actual, expected, common)
	rowMatchRatio := float64(matched) / float64(len(expected))

	score := 0.50*rowMatchRatio + 0.30*columnMatchRatio
	if rowCountMatch {
		score += 0.10
	}
	if columnCountMatch {
		score += 0.10
	}
	score = models.Round4(score)

	isMatch := score >= 0.99 && rowCountMatch && columnCountMatch &&
		len(missing) == 0 && len(extra) == 0

	return models.ComparisonResult{
		IsMatch:          isMatch,
		MatchScore:       score,
		RowCountMatch:    rowCountMatch,
		ColumnCountMatch: columnCountMatch,
		Details: map[string]any{
			"actual_row_count":   len(actual),
			"expected_row_count": len(expected),
			"actual_columns":     actualColumns,
			"expected_columns":   expectedColumns,
			"missing_columns":    missing,
			"extra_columns":      extra,
			"common_columns":     common,
			"column_match_ratio": columnMatchRatio,
			"row_match_ratio":    rowMatchRatio,
			"matched_rows":       matched,
			"unmatched_rows":     len(expected) - matched,
		},
	}
}

// matchRows counts matching rows over the common columns. With
// IgnoreRowOrder each actual row greedily claims the first unmatched
// expected row it agrees with; otherwise rows compare position-wise.
func (c *Comparator) matchRows(actual, expected []models.Row, columns []string) int {
	if len(columns) == 0 {
		return 0
	}

	if !c.opts.IgnoreRowOrder {
		matched := 0
		for i := 0; i < len(actual) && i < len(expected); i++ {
			if c.rowsMatch(actual[i], expected[i], columns) {
				matched++
			}
		}
		return matched
	}

	matched := 0
	claimed := make([]bool, len(expected))
	for _, a := range actual {
		for i, e := range expected {
			if claimed[i] {
				continue
			}
			if c.rowsMatch(a, e, columns) {
				claimed[i] = true
				matched++
				break
			}
		}
	}
	return matched
}

func (c *Comparator) rowsMatch(a, e models.Row, columns []string) bool {
	for _, col := range columns {
		if !c.valuesMatch(a[col], e[col]) {
			return false
		}
	}
	return true
}

// valuesMatch compares two values: nil matches only nil, numerics within
// tolerance (NaN matches NaN), strings per case sensitivity, everything else
// structurally.
func (c *Comparator) valuesMatch(actual, expected any) bool {
	if actual == nil && expected == nil {
		return true
	}
	if actual == nil || expected == nil {
		return false
	}

	if a, aok := asFloat(actual); aok {
		if e, eok := asFloat(expected); eok {
			if math.IsNaN(a) && math.IsNaN(e) {
				return true
			}
			return math.Abs(a-e) <= c.opts.NumericTolerance
		}
		return false
	}

	if a, aok := actual.(string); aok {
		if e, eok := expected.(string); eok {
			if c.opts.CaseSensitive {
				return a == e
			}
			return strings.EqualFold(a, e)
		}
		return false
	}

	return actual == expected
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

func keySet(row models.Row) []string {
	out := make([]string, 0, len(row))
	for k := range row {
		out = append(out, k)
	}
	return out
}

func intersect(a, b []string) []string {
	inB := make(map[string]bool, len(b))
	for _, s := range b {
		inB[s] = true
	}
	var out []string
	for _, s := range a {
		if inB[s] {
			out = append(out, s)
		}
	}
	return out
}

func subtract(a, b []string) []string {
	inB := make(map[string]bool, len(b))
	for _, s := range b {
		inB[s] = true
	}
	var out []string
	for _, s := range a {
		if !inB[s] {
			out = append(out, s)
		}
	}
	return out
}
