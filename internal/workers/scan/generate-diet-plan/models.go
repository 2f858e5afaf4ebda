// internal/workers/scan/generate-diet-plan/models.go
package generatedietplan

import "skinadvisor-workers/internal/models"

type Input struct {
	Analysis models.Analysis `json:"analysis"`
}

type Output struct {
	DietPlan models.DietPlan `json:"dietPlan"`
}
