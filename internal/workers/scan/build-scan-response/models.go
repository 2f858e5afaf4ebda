// internal/workers/scan/build-scan-response/models.go
package buildscanresponse

import "skinadvisor-workers/internal/models"

type Input struct {
	UserPlan string                         `json:"userPlan"`
	ScanID   string                         `json:"scanId"`
	Analysis models.Analysis                `json:"analysis"`
	Score    models.ScoreResult             `json:"score"`
	DietPlan models.DietPlan                `json:"dietPlan"`
	Routine  models.Routine                 `json:"routine"`
	Products []models.ProductRecommendation `json:"products"`
}

type Output struct {
	ScanResponse interface{} `json:"scanResponse"`
	Locked       bool        `json:"locked"`
}
