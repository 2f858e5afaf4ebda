// internal/workers/scan/generate-routine/service.go
package generateroutine

import (
	"strings"

	"skinadvisor-workers/internal/models"
)

// Builder assembles a skincare routine from the skin-type profile and the
// treatment rules that match the analyzed issues. Same analysis in, same
// routine out.
type Builder struct {
	config *Config
}

func NewBuilder(config *Config) *Builder {
	return &Builder{config: config}
}

func (b *Builder) Build(analysis models.Analysis) (models.Routine, []models.ProductRecommendation) {
	profile, ok := b.config.Profiles[analysis.SkinType]
	if !ok {
		profile = b.config.Profiles[models.SkinTypeCombination]
	}

	fired := b.matchRules(analysis)

	morning := b.buildMorning(profile, fired)
	evening := b.buildEvening(profile, fired)
	weekly := b.buildWeekly(profile, fired)

	routine := models.Routine{
		Morning: numberSteps(morning),
		Evening: numberSteps(evening),
		Weekly:  numberSteps(weekly),
	}

	return routine, b.buildProducts(fired)
}

func (b *Builder) matchRules(analysis models.Analysis) []TreatmentRule {
	var fired []TreatmentRule
	for _, rule := range b.config.Rules {
		if ruleMatches(rule, analysis) {
			fired = append(fired, rule)
		}
	}
	return fired
}

func ruleMatches(rule TreatmentRule, analysis models.Analysis) bool {
	for _, st := range rule.SkinTypes {
		if st == analysis.SkinType {
			return true
		}
	}
	for _, issue := range analysis.Issues {
		name := strings.ToLower(issue.Name)
		for _, kw := range rule.Keywords {
			if strings.Contains(name, kw) {
				return true
			}
		}
	}
	return false
}

func (b *Builder) buildMorning(profile SkinProfile, fired []TreatmentRule) []models.RoutineStep {
	steps := []models.RoutineStep{
		{
			StepName:             "Cleanse",
			ProductType:          "cleanser",
			Instructions:         "Wash your face with a " + profile.CleanserType + " and lukewarm water.",
			IngredientsToLookFor: profile.CleanserIngredients,
			IngredientsToAvoid:   profile.CleanserAvoid,
		},
	}

	// Cleanse, moisturize and sunscreen are fixed, serums fill the gap.
	maxSerums := b.config.MaxMorningSteps - 3
	for _, rule := range fired {
		if rule.MorningSerum != nil && maxSerums > 0 {
			steps = append(steps, *rule.MorningSerum)
			maxSerums--
		}
	}

	steps = append(steps,
		models.RoutineStep{
			StepName:             "Moisturize",
			ProductType:          "moisturizer",
			Instructions:         profile.MoisturizerNote,
			IngredientsToLookFor: profile.MoisturizerLookFor,
		},
		models.RoutineStep{
			StepName:             "Protect",
			ProductType:          "sunscreen",
			Instructions:         "Finish with broad-spectrum SPF 30 or higher, every day.",
			IngredientsToLookFor: []string{"zinc oxide", "titanium dioxide"},
		},
	)

	return steps
}

func (b *Builder) buildEvening(profile SkinProfile, fired []TreatmentRule) []models.RoutineStep {
	steps := []models.RoutineStep{
		{
			StepName:             "Cleanse",
			ProductType:          "cleanser",
			Instructions:         "Remove sunscreen and buildup with a " + profile.CleanserType + ".",
			IngredientsToLookFor: profile.CleanserIngredients,
			IngredientsToAvoid:   profile.CleanserAvoid,
		},
	}

	maxTreatments := b.config.MaxEveningSteps - 2
	for _, rule := range fired {
		if rule.Treatment != nil && maxTreatments > 0 {
			steps = append(steps, *rule.Treatment)
			maxTreatments--
		}
	}

	steps = append(steps, models.RoutineStep{
		StepName:             "Moisturize",
		ProductType:          "moisturizer",
		Instructions:         profile.MoisturizerNote,
		IngredientsToLookFor: profile.MoisturizerLookFor,
	})

	return steps
}

func (b *Builder) buildWeekly(profile SkinProfile, fired []TreatmentRule) []models.RoutineStep {
	steps := []models.RoutineStep{profile.WeeklyMask}
	for _, rule := range fired {
		if rule.Weekly != nil && len(steps) < b.config.MaxWeeklySteps {
			steps = append(steps, *rule.Weekly)
		}
	}
	return steps
}

func (b *Builder) buildProducts(fired []TreatmentRule) []models.ProductRecommendation {
	products := make([]models.ProductRecommendation, 0, b.config.MaxProducts)
	seen := make(map[string]bool)

	add := func(p models.ProductRecommendation) {
		if len(products) >= b.config.MaxProducts || seen[p.Name] {
			return
		}
		seen[p.Name] = true
		products = append(products, p)
	}

	// Targeted products first so the cap never squeezes them out.
	for _, rule := range fired {
		if rule.Product != nil {
			add(*rule.Product)
		}
	}
	for _, p := range b.config.BaseProducts {
		add(p)
	}

	return products
}

func numberSteps(steps []models.RoutineStep) []models.RoutineStep {
	for i := range steps {
		steps[i].Order = i + 1
	}
	return steps
}
