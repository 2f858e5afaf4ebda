// internal/workers/scan/build-scan-response/service.go
package buildscanresponse

import (
	"strings"

	"skinadvisor-workers/internal/common/errors"
	"skinadvisor-workers/internal/models"
)

// Projector renders the tier-appropriate view of a completed scan. Stateless;
// views are built fresh per call and never stored.
type Projector struct {
	cfg *Config
}

func NewProjector(cfg *Config) *Projector {
	return &Projector{cfg: cfg}
}

// fullPlans lists every plan that unlocks the complete response. Anything
// else, including an empty plan, is served the restricted view.
var fullPlans = map[string]bool{
	models.PlanPremium: true,
	models.PlanPro:     true,
}

// BuildFull exposes everything verbatim.
func (p *Projector) BuildFull(plan string, scan models.ScanRecord, products []models.ProductRecommendation) models.FullView {
	return models.FullView{
		UserPlan:                plan,
		Locked:                  false,
		Analysis:                scan.Analysis,
		Score:                   scan.Score,
		DietRecommendations:     scan.DietPlan,
		Routine:                 scan.Routine,
		Products:                products,
		ProgressTrackingEnabled: true,
	}
}

// BuildRestricted redacts everything behind the paywall. The issue preview is
// derived element-for-element from the issue list, so issue_count and the
// preview length cannot diverge; the final check guards against regressions
// that bypass this construction.
func (p *Projector) BuildRestricted(plan string, scan models.ScanRecord, products []models.ProductRecommendation) (models.RestrictedView, error) {
	preview := make([]models.IssuePreview, 0, len(scan.Analysis.Issues))
	for _, issue := range scan.Analysis.Issues {
		preview = append(preview, models.IssuePreview{Name: issue.Name, Locked: true})
	}

	strengths := make([]models.StrengthPreview, 0, p.cfg.MaxPreviewStrengths)
	for _, s := range scan.Analysis.Strengths {
		if len(strengths) >= p.cfg.MaxPreviewStrengths {
			break
		}
		strengths = append(strengths, models.StrengthPreview{
			Name:        s.Name,
			Description: s.Description,
		})
	}

	view := models.RestrictedView{
		UserPlan:     plan,
		Locked:       true,
		SkinType:     scan.Analysis.SkinType,
		OverallScore: scan.Score.Score,
		ScoreLabel:   scan.Score.Label,
		Strengths:    strengths,
		PrimaryConcern: models.PrimaryConcernPreview{
			Name:          scan.Analysis.PrimaryConcern.Name,
			WhyThisResult: scan.Analysis.PrimaryConcern.WhyThisResult,
		},
		IssueCount:     len(scan.Analysis.Issues),
		IssuesPreview:  preview,
		LockedFeatures: append([]string(nil), p.cfg.LockedFeatures...),
		PreviewCounts: models.PreviewCounts{
			RoutineSteps: scan.Routine.TotalSteps(),
			DietItems:    scan.DietPlan.TotalItems(),
			Products:     len(products),
		},
	}

	if view.IssueCount != len(view.IssuesPreview) {
		return models.RestrictedView{}, errors.NewProjectionInconsistentError(view.IssueCount, len(view.IssuesPreview))
	}

	return view, nil
}

// IsFullPlan reports whether the plan unlocks the full view.
func IsFullPlan(plan string) bool {
	return fullPlans[strings.ToLower(strings.TrimSpace(plan))]
}
