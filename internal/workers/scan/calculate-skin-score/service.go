// internal/workers/scan/calculate-skin-score/service.go
package calculateskinscore

import (
	"math"
	"sort"
	"strings"

	"skinadvisor-workers/internal/models"
)

// Scorer maps an Analysis to a ScoreResult. Identical input always produces
// an identical result; nothing here reads time, randomness or external state.
type Scorer struct {
	cfg *Config
}

func NewScorer(cfg *Config) *Scorer {
	return &Scorer{cfg: cfg}
}

func (s *Scorer) Score(analysis models.Analysis) models.ScoreResult {
	base, breakdown, method := s.baseScore(analysis.SkinMetrics)

	factors, totalDeduction, maxSeverity := s.deductions(analysis.Issues)

	preliminary := base - totalDeduction

	capped := s.applyHardCaps(preliminary, analysis.Issues, maxSeverity, totalDeduction)

	score := int(math.Round(capped))
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	band := s.bandFor(score)

	topFactors := factors
	if len(topFactors) > s.cfg.MaxFactors {
		topFactors = topFactors[:s.cfg.MaxFactors]
	}

	return models.ScoreResult{
		Score:             score,
		Label:             band.Label,
		Description:       band.Description,
		Factors:           topFactors,
		MetricsBreakdown:  breakdown,
		BaseScore:         round2(base),
		TotalDeduction:    round2(totalDeduction),
		CalculationMethod: method,
	}
}

// baseScore computes a weighted average over whichever metrics are present,
// renormalizing the fixed weights over that subset. Metrics are summed in
// sorted name order so the float accumulation is identical across runs.
func (s *Scorer) baseScore(skinMetrics map[string]models.SkinMetric) (float64, map[string]models.MetricContribution, string) {
	breakdown := make(map[string]models.MetricContribution)

	names := make([]string, 0, len(skinMetrics))
	for name := range skinMetrics {
		if _, ok := s.cfg.MetricWeights[name]; ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	var weightSum, weighted float64
	for _, name := range names {
		w := s.cfg.MetricWeights[name]
		weightSum += w
		weighted += float64(skinMetrics[name].Score) * w
	}

	if weightSum == 0 {
		return s.cfg.FallbackBase, breakdown, models.MethodIssueBased
	}

	for _, name := range names {
		norm := s.cfg.MetricWeights[name] / weightSum
		breakdown[name] = models.MetricContribution{
			Score:    skinMetrics[name].Score,
			Weight:   round2(norm),
			Weighted: round2(float64(skinMetrics[name].Score) * norm),
		}
	}

	return weighted / weightSum, breakdown, models.MethodMetricsBased
}

func (s *Scorer) deductions(issues []models.Issue) ([]models.ScoreFactor, float64, int) {
	factors := make([]models.ScoreFactor, 0, len(issues))

	var total float64
	maxSeverity := 0

	for _, issue := range issues {
		weight := s.weightFor(issue.Name)
		deduction := float64(issue.Severity) * weight * s.cfg.DeductionFactor
		total += deduction

		if issue.Severity > maxSeverity {
			maxSeverity = issue.Severity
		}

		factors = append(factors, models.ScoreFactor{
			Issue:         issue.Name,
			Severity:      issue.Severity,
			SeverityLabel: severityLabel(issue.Severity),
			Deduction:     round2(deduction),
		})
	}

	// Deduction desc, name asc on ties, so truncation to MaxFactors is stable.
	sort.SliceStable(factors, func(i, j int) bool {
		if factors[i].Deduction != factors[j].Deduction {
			return factors[i].Deduction > factors[j].Deduction
		}
		return factors[i].Issue < factors[j].Issue
	})

	return factors, total, maxSeverity
}

func (s *Scorer) weightFor(name string) float64 {
	lower := strings.ToLower(name)
	for _, iw := range s.cfg.IssueWeights {
		if strings.Contains(lower, iw.Match) {
			return iw.Weight
		}
	}
	return s.cfg.DefaultWeight
}

// applyHardCaps clamps the score downward in a fixed order. Caps only ever
// lower the value.
func (s *Scorer) applyHardCaps(score float64, issues []models.Issue, maxSeverity int, totalDeduction float64) float64 {
	if s.hasCriticalIssue(issues) {
		score = capAt(score, float64(s.cfg.CriticalCap))
	}
	if maxSeverity >= s.cfg.HighSeverity {
		score = capAt(score, float64(s.cfg.HighSeverityCap))
	}
	if maxSeverity >= s.cfg.SevereSeverity {
		score = capAt(score, float64(s.cfg.SevereSeverityCap))
	}
	if score >= float64(s.cfg.EliteGate) {
		if maxSeverity > s.cfg.EliteMaxSeverity || totalDeduction >= s.cfg.EliteMaxDeduction {
			score = capAt(score, float64(s.cfg.EliteGate-1))
		}
	}
	if score >= float64(s.cfg.ExcellentGate) {
		if maxSeverity > s.cfg.ExcellentMaxSev || totalDeduction >= s.cfg.ExcellentMaxDeduct {
			score = capAt(score, float64(s.cfg.ExcellentGate-1))
		}
	}
	return score
}

func (s *Scorer) hasCriticalIssue(issues []models.Issue) bool {
	for _, issue := range issues {
		if issue.Severity < s.cfg.CriticalSeverity {
			continue
		}
		lower := strings.ToLower(issue.Name)
		for _, matchers := range s.cfg.CriticalCategories {
			for _, m := range matchers {
				if strings.Contains(lower, m) {
					return true
				}
			}
		}
	}
	return false
}

func (s *Scorer) bandFor(score int) ScoreBand {
	for _, band := range s.cfg.Bands {
		if score >= band.Min && score <= band.Max {
			return band
		}
	}
	// Unreachable when Validate passed; keep the last band as a backstop.
	return s.cfg.Bands[len(s.cfg.Bands)-1]
}

func severityLabel(severity int) string {
	switch {
	case severity <= 3:
		return "mild"
	case severity <= 6:
		return "moderate"
	default:
		return "severe"
	}
}

func capAt(score, cap float64) float64 {
	if score > cap {
		return cap
	}
	return score
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
