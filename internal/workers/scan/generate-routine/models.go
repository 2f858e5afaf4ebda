// internal/workers/scan/generate-routine/models.go
package generateroutine

import "skinadvisor-workers/internal/models"

type Input struct {
	Analysis models.Analysis `json:"analysis"`
}

type Output struct {
	Routine  models.Routine                 `json:"routine"`
	Products []models.ProductRecommendation `json:"products"`
}
