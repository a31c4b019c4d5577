package classify

import (
	"fmt"
	"sort"
	"strings"
)

// Input is the evidence available when classifying one task outcome.
// MatchScore is nil when no comparison score is available.
type Input struct {
	SQLSubmitted     string
	GoldSQL          string
	ExecutionSuccess bool
	ValidationErrors []string
	PhantomTables    []string
	PhantomColumns   []string
	ErrorMessage     string
	MatchScore       *float64
	CorrectnessScore *float64
}

// Classifier maps evaluation evidence into the error taxonomy. The decision
// procedure is ordered; the first matching rule wins, and phantom identifiers
// take precedence over any text pattern.
type Classifier struct{}

// New creates a classifier. Patterns are package-level and compiled once.
func New() *Classifier {
	return &Classifier{}
}

// Classify runs the decision procedure. It always returns a classification;
// the last-resort default is no_error/no_error with confidence 0.5.
func (c *Classifier) Classify(in Input) Classification {
	// 1. Clean success with matching results.
	if in.ExecutionSuccess && len(in.ValidationErrors) == 0 &&
		in.MatchScore != nil && *in.MatchScore >= 0.95 {
		return Classification{
			Category:    CategoryNoError,
			Subcategory: SubNoError,
			Confidence:  1.0,
			Details:     "Query executed successfully with correct results",
		}
	}

	// 2–3. Phantom identifiers outrank every text pattern.
	if len(in.PhantomTables) > 0 {
		return Classification{
			Category:    CategorySchemaError,
			Subcategory: SubWrongTable,
			Confidence:  0.95,
			Details:     fmt.Sprintf("Referenced non-existent table(s): %s", strings.Join(in.PhantomTables, ", ")),
			Evidence:    in.PhantomTables,
		}
	}
	if len(in.PhantomColumns) > 0 {
		return Classification{
			Category:    CategorySchemaError,
			Subcategory: SubWrongColumn,
			Confidence:  0.95,
			Details:     fmt.Sprintf("Referenced non-existent column(s): %s", strings.Join(in.PhantomColumns, ", ")),
			Evidence:    in.PhantomColumns,
		}
	}

	// 4. Pattern scan over the concatenated error/validation text.
	errorText := strings.Join(in.ValidationErrors, " ")
	if in.ErrorMessage != "" {
		errorText += " " + in.ErrorMessage
	}
	for _, family := range patternFamilies {
		for _, re := range family.patterns {
			if m := re.FindString(errorText); m != "" {
				return Classification{
					Category:    CategoryOf(family.subcategory),
					Subcategory: family.subcategory,
					Confidence:  family.confidence,
					Details:     fmt.Sprintf("%s detected: %s", family.subcategory, m),
					Evidence:    []string{m},
				}
			}
		}
	}

	// 5. Schema-linking comparison between submitted and gold SQL.
	if in.GoldSQL != "" && in.SQLSubmitted != "" {
		if issues := schemaLinkingIssues(in.SQLSubmitted, in.GoldSQL); len(issues) > 0 {
			return Classification{
				Category:    CategorySchemaError,
				Subcategory: SubWrongSchemaLinking,
				Confidence:  0.7,
				Details:     "Incorrect schema linking detected",
				Evidence:    issues,
			}
		}
	}

	// 6. Successful execution with badly mismatched results.
	if in.MatchScore != nil && *in.MatchScore < 0.5 && in.ExecutionSuccess {
		return Classification{
			Category:    CategoryAnalysisError,
			Subcategory: SubErroneousDataAnalysis,
			Confidence:  0.7,
			Details:     fmt.Sprintf("Results do not match expected (score: %.2f)", *in.MatchScore),
			Evidence:    []string{fmt.Sprintf("match_score=%.4f", *in.MatchScore)},
		}
	}

	// 7. Failed execution with no recognized pattern.
	if !in.ExecutionSuccess && in.ErrorMessage != "" {
		return Classification{
			Category:    CategorySQLError,
			Subcategory: SubSyntaxError,
			Confidence:  0.5,
			Details:     fmt.Sprintf("Execution failed: %s", truncate(in.ErrorMessage, 200)),
			Evidence:    []string{in.ErrorMessage},
		}
	}

	// 8. Moderate match score indicates planning issues.
	if in.MatchScore != nil && *in.MatchScore >= 0.5 && *in.MatchScore < 0.8 {
		return Classification{
			Category:    CategoryAnalysisError,
			Subcategory: SubIncorrectPlanning,
			Confidence:  0.6,
			Details:     "Query structure differs from expected",
			Evidence:    []string{fmt.Sprintf("match_score=%.4f", *in.MatchScore)},
		}
	}

	// 9. Last resort.
	return Classification{
		Category:    CategoryNoError,
		Subcategory: SubNoError,
		Confidence:  0.5,
		Details:     "No clear error pattern detected",
	}
}

// schemaLinkingIssues compares the table sets referenced by the two queries.
func schemaLinkingIssues(submitted, gold string) []string {
	submittedTables := captureTables(submitted)
	goldTables := captureTables(gold)

	var issues []string
	if missing := diff(goldTables, submittedTables); len(missing) > 0 {
		issues = append(issues, "Missing tables: "+strings.Join(missing, ", "))
	}
	if extra := diff(submittedTables, goldTables); len(extra) > 0 {
		issues = append(issues, "Unexpected tables: "+strings.Join(extra, ", "))
	}
	return issues
}

func captureTables(sqlText string) map[string]bool {
	out := make(map[string]bool)
	for _, m := range tableCaptureRe.FindAllStringSubmatch(sqlText, -1) {
		out[strings.ToLower(m[1])] = true
	}
	return out
}

func diff(a, b map[string]bool) []string {
	var out []string
	for t := range a {
		if !b[t] {
			out = append(out, t)
		}
	}
	// Deterministic evidence ordering.
	sort.Strings(out)
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
