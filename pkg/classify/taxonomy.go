// Package classify maps SQL evaluation failures into a fixed error taxonomy
// with evidence, and rolls classifications up into error metrics reports.
package classify

// Category is a top-level error category for SQL generation failures.
type Category string

const (
	CategorySchemaError    Category = "schema_error"
	CategoryAnalysisError  Category = "analysis_error"
	CategorySQLError       Category = "sql_error"
	CategoryPromptError    Category = "prompt_error"
	CategoryKnowledgeError Category = "knowledge_error"
	CategoryNoError        Category = "no_error"
)

// IsValid checks if the category is one of the closed set.
func (c Category) IsValid() bool {
	switch c {
	case CategorySchemaError, CategoryAnalysisError, CategorySQLError,
		CategoryPromptError, CategoryKnowledgeError, CategoryNoError:
		return true
	default:
		return false
	}
}

// Subcategory is a detailed error subcategory for granular tracking.
type Subcategory string

const (
	// Schema errors
	SubWrongSchemaLinking Subcategory = "wrong_schema_linking"
	SubWrongColumn        Subcategory = "wrong_column"
	SubWrongTable         Subcategory = "wrong_table"

	// Analysis errors
	SubErroneousDataAnalysis    Subcategory = "erroneous_data_analysis"
	SubIncorrectPlanning        Subcategory = "incorrect_planning"
	SubIncorrectDataCalculation Subcategory = "incorrect_data_calculation"

	// SQL errors
	SubSyntaxError          Subcategory = "syntax_error"
	SubConditionFilterError Subcategory = "condition_filter_error"
	SubJoinError            Subcategory = "join_error"
	SubDialectFunctionError Subcategory = "incorrect_dialect_function_usage"

	// Other errors
	SubExcessivePromptLength Subcategory = "excessive_prompt_length"
	SubExternalKnowledge     Subcategory = "misunderstanding_external_knowledge"

	// Success
	SubNoError Subcategory = "no_error"
)

// CategoryOf returns the category a subcategory belongs to.
func CategoryOf(sub Subcategory) Category {
	switch sub {
	case SubWrongSchemaLinking, SubWrongColumn, SubWrongTable:
		return CategorySchemaError
	case SubErroneousDataAnalysis, SubIncorrectPlanning, SubIncorrectDataCalculation:
		return CategoryAnalysisError
	case SubSyntaxError, SubConditionFilterError, SubJoinError, SubDialectFunctionError:
		return CategorySQLError
	case SubExcessivePromptLength:
		return CategoryPromptError
	case SubExternalKnowledge:
		return CategoryKnowledgeError
	default:
		return CategoryNoError
	}
}

// Classification is the result of classifying a single task outcome.
type Classification struct {
	Category    Category    `json:"category"`
	Subcategory Subcategory `json:"subcategory"`
	Confidence  float64     `json:"confidence"`
	Details     string      `json:"details,omitempty"`
	Evidence    []string    `json:"evidence,omitempty"`
}
