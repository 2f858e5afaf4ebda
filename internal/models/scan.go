// internal/models/scan.go
package models

import "time"

// ScanRecord is the persisted form of one completed scan.
type ScanRecord struct {
	ID        string      `json:"id"`
	UserID    string      `json:"user_id"`
	Language  string      `json:"language"`
	Analysis  Analysis    `json:"analysis"`
	Score     ScoreResult `json:"score"`
	DietPlan  DietPlan    `json:"diet_plan"`
	Routine   Routine     `json:"routine"`
	CreatedAt time.Time   `json:"created_at"`
}
