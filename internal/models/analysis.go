// internal/models/analysis.go
package models

// RawModelOutput is the untrusted, JSON-shaped report returned by the vision
// model. Nothing about its shape can be assumed; the normalizer coerces it
// field by field into an Analysis.
type RawModelOutput map[string]interface{}

// SkinMetric is a single 0-100 quality measurement with its explanation.
type SkinMetric struct {
	Score int    `json:"score"`
	Why   string `json:"why"`
}

// Strength is a positive signal detected in the scan.
type Strength struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Confidence  float64 `json:"confidence"`
}

// Issue is a named detected concern.
type Issue struct {
	Name          string  `json:"name"`
	Severity      int     `json:"severity"`
	Confidence    float64 `json:"confidence"`
	Description   string  `json:"description,omitempty"`
	WhyThisResult string  `json:"why_this_result"`
	Priority      string  `json:"priority"`
}

// Analysis is the canonical, bounds-checked representation of one scan.
// Every field has been validated, defaulted and sorted; instances are treated
// as immutable after construction.
type Analysis struct {
	SkinType           string                `json:"skin_type"`
	SkinTypeConfidence float64               `json:"skin_type_confidence"`
	SkinMetrics        map[string]SkinMetric `json:"skin_metrics"`
	Strengths          []Strength            `json:"strengths"`
	Issues             []Issue               `json:"issues"`
	PrimaryConcern     Issue                 `json:"primary_concern"`
	Recommendations    []string              `json:"recommendations"`
}

// Skin type values accepted from the model. Anything else normalizes to
// SkinTypeCombination.
const (
	SkinTypeOily        = "oily"
	SkinTypeDry         = "dry"
	SkinTypeCombination = "combination"
	SkinTypeNormal      = "normal"
	SkinTypeSensitive   = "sensitive"
)

// Issue priorities, ordered primary < secondary < minor for sorting.
const (
	PriorityPrimary   = "primary"
	PrioritySecondary = "secondary"
	PriorityMinor     = "minor"
)
