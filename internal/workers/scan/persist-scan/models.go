// internal/workers/scan/persist-scan/models.go
package persistscan

import "skinadvisor-workers/internal/models"

type Input struct {
	UserID   string          `json:"userId"`
	Language string          `json:"language"`
	Analysis models.Analysis `json:"analysis"`
	Score    models.ScoreResult `json:"score"`
	DietPlan models.DietPlan `json:"dietPlan"`
	Routine  models.Routine  `json:"routine"`
}

type Output struct {
	ScanID    string `json:"scanId"`
	CreatedAt string `json:"createdAt"`
}

// scanDocument is the Elasticsearch summary for history search.
type scanDocument struct {
	ScanID       string   `json:"scan_id"`
	UserID       string   `json:"user_id"`
	SkinType     string   `json:"skin_type"`
	OverallScore int      `json:"overall_score"`
	ScoreLabel   string   `json:"score_label"`
	IssueNames   []string `json:"issue_names"`
	CreatedAt    string   `json:"created_at"`
}
