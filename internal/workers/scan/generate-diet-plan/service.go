// internal/workers/scan/generate-diet-plan/service.go
package generatedietplan

import (
	"strings"

	"skinadvisor-workers/internal/models"
)

// Planner derives a DietPlan from skin type and issues using fixed rule
// tables. Pure and deterministic; no AI call.
type Planner struct {
	cfg *Config
}

func NewPlanner(cfg *Config) *Planner {
	return &Planner{cfg: cfg}
}

func (p *Planner) Plan(skinType string, issues []models.Issue) models.DietPlan {
	skinType = strings.ToLower(skinType)

	var eatMore, avoid, supplements []models.FoodItem

	for _, rule := range p.cfg.Rules {
		if !p.ruleFires(rule, skinType, issues) {
			continue
		}
		eatMore = append(eatMore, rule.EatMore...)
		avoid = append(avoid, rule.Avoid...)
		supplements = append(supplements, rule.Supplements...)
	}

	// Backfill before capping so a sparse rule hit still yields a usable plan.
	if countUnique(eatMore) < p.cfg.MinEatMore {
		eatMore = append(eatMore, p.cfg.BackfillEatMore...)
	}
	if countUnique(avoid) < p.cfg.MinAvoid {
		avoid = append(avoid, p.cfg.BackfillAvoid...)
	}
	if countUnique(supplements) < p.cfg.MinSupplements {
		supplements = append(supplements, p.cfg.BackfillSupplements...)
	}

	return models.DietPlan{
		EatMore:             dedupeCap(eatMore, p.cfg.MaxEatMore),
		Avoid:               dedupeCap(avoid, p.cfg.MaxAvoid),
		HydrationTip:        p.hydrationTip(skinType, issues),
		SupplementsOptional: dedupeCap(supplements, p.cfg.MaxSupplements),
	}
}

// ruleFires reports whether a rule's skin type matches, or any issue name
// contains one of its keywords at or above the rule's severity gate.
func (p *Planner) ruleFires(rule Rule, skinType string, issues []models.Issue) bool {
	for _, st := range rule.SkinTypes {
		if st == skinType {
			return true
		}
	}
	for _, issue := range issues {
		if rule.MinSeverity > 0 && issue.Severity < rule.MinSeverity {
			continue
		}
		name := strings.ToLower(issue.Name)
		for _, kw := range rule.Keywords {
			if strings.Contains(name, kw) {
				return true
			}
		}
	}
	return false
}

// hydrationTip picks exactly one tip by fixed precedence.
func (p *Planner) hydrationTip(skinType string, issues []models.Issue) string {
	for _, tr := range p.cfg.TipRules {
		for _, st := range tr.SkinTypes {
			if st == skinType {
				return p.cfg.HydrationTips[tr.Key]
			}
		}
		for _, issue := range issues {
			name := strings.ToLower(issue.Name)
			for _, kw := range tr.Keywords {
				if strings.Contains(name, kw) {
					return p.cfg.HydrationTips[tr.Key]
				}
			}
		}
	}
	return p.cfg.HydrationTips[p.cfg.GeneralTipKey]
}

// dedupeCap removes duplicate names (first occurrence wins) and truncates.
func dedupeCap(items []models.FoodItem, max int) []models.FoodItem {
	out := make([]models.FoodItem, 0, max)
	seen := map[string]bool{}
	for _, item := range items {
		key := strings.ToLower(item.Name)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, item)
		if len(out) >= max {
			break
		}
	}
	return out
}

func countUnique(items []models.FoodItem) int {
	seen := map[string]bool{}
	for _, item := range items {
		seen[strings.ToLower(item.Name)] = true
	}
	return len(seen)
}
