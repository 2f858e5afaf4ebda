// internal/models/score.go
package models

// ScoreFactor records one issue's contribution to the total deduction.
type ScoreFactor struct {
	Issue         string  `json:"issue"`
	Severity      int     `json:"severity"`
	SeverityLabel string  `json:"severity_label"`
	Deduction     float64 `json:"deduction"`
}

// MetricContribution shows how one skin metric entered the base score.
type MetricContribution struct {
	Score    int     `json:"score"`
	Weight   float64 `json:"weight"`
	Weighted float64 `json:"weighted"`
}

// ScoreResult is the deterministic outcome of scoring an Analysis. The same
// Analysis always produces the same ScoreResult.
type ScoreResult struct {
	Score             int                           `json:"score"`
	Label             string                        `json:"label"`
	Description       string                        `json:"description"`
	Factors           []ScoreFactor                 `json:"factors"`
	MetricsBreakdown  map[string]MetricContribution `json:"metrics_breakdown"`
	BaseScore         float64                       `json:"base_score"`
	TotalDeduction    float64                       `json:"total_deduction"`
	CalculationMethod string                        `json:"calculation_method"`
}

// Score labels, mapped from disjoint score bands.
const (
	LabelNeedsCare      = "needs_care"      // 0-39
	LabelNeedsAttention = "needs_attention" // 40-59
	LabelAverage        = "average"         // 60-74
	LabelGood           = "good"            // 75-89
	LabelExcellent      = "excellent"       // 90-100
)

// Calculation methods reported in ScoreResult.
const (
	MethodMetricsBased = "metrics_based"
	MethodIssueBased   = "issue_based"
)
