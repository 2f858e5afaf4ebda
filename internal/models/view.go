// internal/models/view.go
package models

// Entitlement plans. Free callers get the restricted view, everything else
// gets the full view.
const (
	PlanFree    = "free"
	PlanPremium = "premium"
	PlanPro     = "pro"
)

// FullView is the complete scan response served to paying users.
type FullView struct {
	UserPlan                string                  `json:"user_plan"`
	Locked                  bool                    `json:"locked"`
	Analysis                Analysis                `json:"analysis"`
	Score                   ScoreResult             `json:"score"`
	DietRecommendations     DietPlan                `json:"diet_recommendations"`
	Routine                 Routine                 `json:"routine"`
	Products                []ProductRecommendation `json:"products"`
	ProgressTrackingEnabled bool                    `json:"progress_tracking_enabled"`
}

// IssuePreview names an issue without revealing its detail.
type IssuePreview struct {
	Name   string `json:"name"`
	Locked bool   `json:"locked"`
}

// StrengthPreview carries a strength without its confidence value. Strengths
// are free content on purpose: only issue previews strip descriptions.
type StrengthPreview struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// PrimaryConcernPreview carries only the concern's name and explanation.
type PrimaryConcernPreview struct {
	Name          string `json:"name"`
	WhyThisResult string `json:"why_this_result"`
}

// PreviewCounts tells a restricted caller how much content upgrading unlocks,
// without the content itself.
type PreviewCounts struct {
	RoutineSteps int `json:"routine_steps"`
	DietItems    int `json:"diet_items"`
	Products     int `json:"products"`
}

// RestrictedView is the redacted scan response served to free users. It never
// carries severities, descriptions, confidences or full-tier collections.
type RestrictedView struct {
	UserPlan       string                `json:"user_plan"`
	Locked         bool                  `json:"locked"`
	SkinType       string                `json:"skin_type"`
	OverallScore   int                   `json:"overall_score"`
	ScoreLabel     string                `json:"score_label"`
	Strengths      []StrengthPreview     `json:"strengths"`
	PrimaryConcern PrimaryConcernPreview `json:"primary_concern"`
	IssueCount     int                   `json:"issue_count"`
	IssuesPreview  []IssuePreview        `json:"issues_preview"`
	LockedFeatures []string              `json:"locked_features"`
	PreviewCounts  PreviewCounts         `json:"preview_counts"`
}
