package classify

import "regexp"

// patternFamily binds one subcategory to its error-text patterns and the
// confidence assigned on a hit. Families are scanned in declaration order;
// the first hit wins.
type patternFamily struct {
	subcategory Subcategory
	confidence  float64
	patterns    []*regexp.Regexp
}

func compileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(`(?i)` + e)
	}
	return out
}

// patternFamilies is the fixed pattern set, compiled once at startup.
var patternFamilies = []patternFamily{
	{
		subcategory: SubWrongTable,
		confidence:  0.9,
		patterns: compileAll(
			`table\s+'?(\w+)'?\s+does\s+not\s+exist`,
			`no\s+such\s+table:?\s*'?(\w+)'?`,
			`relation\s+'?(\w+)'?\s+does\s+not\s+exist`,
			`unknown\s+table\s+'?(\w+)'?`,
		),
	},
	{
		subcategory: SubWrongColumn,
		confidence:  0.9,
		patterns: compileAll(
			`column\s+'?(\w+)'?\s+does\s+not\s+exist`,
			`no\s+such\s+column:?\s*'?(\w+)'?`,
			`unknown\s+column\s+'?(\w+)'?`,
			`ambiguous\s+column\s+name:?\s*'?(\w+)'?`,
		),
	},
	{
		subcategory: SubSyntaxError,
		confidence:  0.9,
		patterns: compileAll(
			`syntax\s+error`,
			`parse\s+error`,
			`unexpected\s+token`,
			`missing\s+';'`,
			`near\s+"(\w+)":\s+syntax\s+error`,
		),
	},
	{
		subcategory: SubJoinError,
		confidence:  0.85,
		patterns: compileAll(
			`ambiguous\s+column`,
			`join\s+(condition|clause)\s+.*(missing|invalid)`,
			`cannot\s+resolve\s+.*\s+in\s+join`,
			`invalid\s+join\s+specification`,
		),
	},
	{
		subcategory: SubConditionFilterError,
		confidence:  0.85,
		patterns: compileAll(
			`where\s+clause.*invalid`,
			`comparison\s+.*\s+incompatible`,
			`operator\s+does\s+not\s+exist`,
			`invalid\s+(comparison|operator)`,
		),
	},
	{
		subcategory: SubDialectFunctionError,
		confidence:  0.85,
		patterns: compileAll(
			`function\s+'?(\w+)'?\s+does\s+not\s+exist`,
			`unknown\s+function`,
			`no\s+such\s+function`,
			`unsupported\s+function`,
		),
	},
	{
		subcategory: SubIncorrectPlanning,
		confidence:  0.8,
		patterns: compileAll(
			`missing\s+group\s+by`,
			`aggregate.*without.*group`,
			`incorrect\s+aggregation`,
		),
	},
	{
		subcategory: SubIncorrectDataCalculation,
		confidence:  0.8,
		patterns: compileAll(
			`division\s+by\s+zero`,
			`numeric\s+overflow`,
			`invalid\s+arithmetic`,
		),
	},
}

// tableCaptureRe extracts table names after FROM/JOIN for the schema-linking
// comparison between submitted and gold SQL.
var tableCaptureRe = regexp.MustCompile(`(?i)\b(?:FROM|JOIN)\s+(\w+)`)
