package models

// PartialResult is one chunk's structured analysis output, keyed by field
// name. Values follow JSON decoding shapes: numbers, strings, []any,
// map[string]any, bool or nil.
type PartialResult map[string]any

// ProblematicRequirement is a requirement flagged during requirements analysis.
type ProblematicRequirement struct {
	Requirement    string `json:"requirement"`
	Description    string `json:"description"`
	Severity       string `json:"severity"`
	Type           string `json:"type"`
	Recommendation string `json:"recommendation,omitempty"`
}

// RequirementsAssessment is the structured verdict produced for a body of
// requirements. Large requirement documents are assessed per chunk and the
// partial assessments merged into one.
type RequirementsAssessment struct {
	TotalScore              float64                  `json:"total_score"`
	ClarityScore            float64                  `json:"clarity_score"`
	CompletenessScore       float64                  `json:"completeness_score"`
	ConsistencyScore        float64                  `json:"consistency_score"`
	TestabilityScore        float64                  `json:"testability_score"`
	FeasibilityScore        float64                  `json:"feasibility_score"`
	ProblematicRequirements []ProblematicRequirement `json:"problematic_requirements"`
	MissingAspects          []string                 `json:"missing_aspects"`
	ImprovementSuggestions  []string                 `json:"improvement_suggestions"`
	OverallAssessment       string                   `json:"overall_assessment"`
}
