// internal/workers/scan/calculate-skin-score/models.go
package calculateskinscore

import "skinadvisor-workers/internal/models"

type Input struct {
	Analysis models.Analysis `json:"analysis"`
}

type Output struct {
	Score models.ScoreResult `json:"score"`
}
