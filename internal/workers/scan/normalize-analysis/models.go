// internal/workers/scan/normalize-analysis/models.go
package normalizeanalysis

import "skinadvisor-workers/internal/models"

type Input struct {
	RawAnalysis models.RawModelOutput `json:"rawAnalysis"`
}

type Output struct {
	Analysis models.Analysis `json:"analysis"`
}
