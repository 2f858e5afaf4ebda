// internal/workers/scan/generate-routine/config.go
package generateroutine

import (
	"fmt"
	"time"

	"skinadvisor-workers/internal/models"
)

// SkinProfile holds the base routine scaffolding for one skin type. Every
// routine starts from its profile and gains targeted steps from the issue
// rules below.
type SkinProfile struct {
	CleanserType        string
	CleanserIngredients []string
	CleanserAvoid       []string
	MoisturizerNote     string
	MoisturizerLookFor  []string
	WeeklyMask          models.RoutineStep
}

// TreatmentRule adds a targeted step and product when an issue matches.
// Rules fire in declaration order, which keeps output order stable.
type TreatmentRule struct {
	Name      string
	Keywords  []string
	SkinTypes []string

	// Evening treatment inserted before the moisturizer step.
	Treatment *models.RoutineStep
	// Morning serum inserted after toner. Optional.
	MorningSerum *models.RoutineStep
	Weekly       *models.RoutineStep
	Product      *models.ProductRecommendation
}

type Config struct {
	Timeout time.Duration

	Profiles map[string]SkinProfile
	Rules    []TreatmentRule

	BaseProducts []models.ProductRecommendation

	MaxMorningSteps int
	MaxEveningSteps int
	MaxWeeklySteps  int
	MaxProducts     int
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,

		Profiles: map[string]SkinProfile{
			models.SkinTypeOily: {
				CleanserType:        "gel cleanser",
				CleanserIngredients: []string{"salicylic acid", "niacinamide"},
				CleanserAvoid:       []string{"heavy oils", "comedogenic butters"},
				MoisturizerNote:     "Use a lightweight oil-free gel moisturizer.",
				MoisturizerLookFor:  []string{"hyaluronic acid", "niacinamide"},
				WeeklyMask: models.RoutineStep{
					StepName:             "Clay mask",
					ProductType:          "treatment",
					Instructions:         "Apply a thin layer once a week, rinse after 10 minutes.",
					IngredientsToLookFor: []string{"kaolin", "bentonite"},
					IngredientsToAvoid:   []string{"alcohol denat"},
				},
			},
			models.SkinTypeDry: {
				CleanserType:        "cream cleanser",
				CleanserIngredients: []string{"glycerin", "ceramides"},
				CleanserAvoid:       []string{"sulfates", "fragrance"},
				MoisturizerNote:     "Use a rich cream and seal it in while skin is still damp.",
				MoisturizerLookFor:  []string{"ceramides", "shea butter", "squalane"},
				WeeklyMask: models.RoutineStep{
					StepName:             "Hydrating mask",
					ProductType:          "treatment",
					Instructions:         "Leave on for 15 minutes once a week, pat in the residue.",
					IngredientsToLookFor: []string{"hyaluronic acid", "panthenol"},
					IngredientsToAvoid:   []string{"drying alcohols"},
				},
			},
			models.SkinTypeCombination: {
				CleanserType:        "gentle foaming cleanser",
				CleanserIngredients: []string{"glycerin", "niacinamide"},
				CleanserAvoid:       []string{"harsh sulfates"},
				MoisturizerNote:     "Use a balancing lotion, lighter on the T-zone.",
				MoisturizerLookFor:  []string{"hyaluronic acid", "squalane"},
				WeeklyMask: models.RoutineStep{
					StepName:             "Multi-mask",
					ProductType:          "treatment",
					Instructions:         "Clay on the T-zone, hydrating mask on the cheeks, once a week.",
					IngredientsToLookFor: []string{"kaolin", "hyaluronic acid"},
					IngredientsToAvoid:   []string{"fragrance"},
				},
			},
			models.SkinTypeNormal: {
				CleanserType:        "gentle cleanser",
				CleanserIngredients: []string{"glycerin"},
				CleanserAvoid:       []string{"harsh sulfates"},
				MoisturizerNote:     "Use a light daily lotion.",
				MoisturizerLookFor:  []string{"hyaluronic acid", "vitamin E"},
				WeeklyMask: models.RoutineStep{
					StepName:             "Enzyme exfoliation",
					ProductType:          "treatment",
					Instructions:         "Use a mild enzyme exfoliant once a week.",
					IngredientsToLookFor: []string{"papain", "lactic acid"},
					IngredientsToAvoid:   []string{"coarse scrubs"},
				},
			},
			models.SkinTypeSensitive: {
				CleanserType:        "fragrance-free cream cleanser",
				CleanserIngredients: []string{"oat extract", "glycerin"},
				CleanserAvoid:       []string{"fragrance", "essential oils", "sulfates"},
				MoisturizerNote:     "Use a minimal-ingredient barrier cream.",
				MoisturizerLookFor:  []string{"ceramides", "centella asiatica"},
				WeeklyMask: models.RoutineStep{
					StepName:             "Soothing mask",
					ProductType:          "treatment",
					Instructions:         "Apply a calming mask once a week, rinse with lukewarm water.",
					IngredientsToLookFor: []string{"centella asiatica", "aloe"},
					IngredientsToAvoid:   []string{"fragrance", "menthol"},
				},
			},
		},

		Rules: []TreatmentRule{
			{
				Name:     "acne",
				Keywords: []string{"acne", "breakout", "blemish"},
				Treatment: &models.RoutineStep{
					StepName:             "Acne treatment",
					ProductType:          "treatment",
					Instructions:         "Apply a thin layer to affected areas after cleansing.",
					IngredientsToLookFor: []string{"salicylic acid", "benzoyl peroxide", "azelaic acid"},
					IngredientsToAvoid:   []string{"heavy occlusives on breakout areas"},
				},
				Product: &models.ProductRecommendation{
					ProductType:    "treatment",
					Name:           "BHA Blemish Serum",
					Description:    "Keeps pores clear and calms active breakouts.",
					KeyIngredients: []string{"salicylic acid", "zinc PCA"},
					SuitableFor:    []string{"oily", "combination"},
					PriceRange:     "$$",
				},
			},
			{
				Name:     "dark spots",
				Keywords: []string{"dark spot", "pigment", "uneven"},
				MorningSerum: &models.RoutineStep{
					StepName:             "Brightening serum",
					ProductType:          "serum",
					Instructions:         "Apply a few drops before moisturizer every morning.",
					IngredientsToLookFor: []string{"vitamin C", "alpha arbutin"},
					IngredientsToAvoid:   []string{"mixing with retinoids in the same routine"},
				},
				Product: &models.ProductRecommendation{
					ProductType:    "serum",
					Name:           "Vitamin C Brightening Serum",
					Description:    "Fades dark spots and evens overall tone.",
					KeyIngredients: []string{"ascorbic acid", "vitamin E", "ferulic acid"},
					SuitableFor:    []string{"normal", "combination", "oily"},
					PriceRange:     "$$",
				},
			},
			{
				Name:     "aging",
				Keywords: []string{"wrinkle", "fine line", "aging", "elasticity"},
				Treatment: &models.RoutineStep{
					StepName:             "Retinol treatment",
					ProductType:          "treatment",
					Instructions:         "Start twice a week in the evening, build up slowly.",
					IngredientsToLookFor: []string{"retinol", "peptides"},
					IngredientsToAvoid:   []string{"AHAs in the same evening"},
				},
				Product: &models.ProductRecommendation{
					ProductType:    "treatment",
					Name:           "Gentle Retinol Night Treatment",
					Description:    "Smooths fine lines and supports collagen over time.",
					KeyIngredients: []string{"encapsulated retinol", "squalane"},
					SuitableFor:    []string{"normal", "dry", "combination"},
					PriceRange:     "$$$",
				},
			},
			{
				Name:      "redness",
				Keywords:  []string{"redness", "irritation", "rosacea"},
				SkinTypes: []string{models.SkinTypeSensitive},
				MorningSerum: &models.RoutineStep{
					StepName:             "Soothing serum",
					ProductType:          "serum",
					Instructions:         "Press gently into clean skin morning and evening.",
					IngredientsToLookFor: []string{"centella asiatica", "niacinamide", "panthenol"},
					IngredientsToAvoid:   []string{"fragrance", "menthol", "high-strength acids"},
				},
				Product: &models.ProductRecommendation{
					ProductType:    "serum",
					Name:           "Centella Calming Serum",
					Description:    "Reduces visible redness and strengthens the barrier.",
					KeyIngredients: []string{"centella asiatica", "madecassoside"},
					SuitableFor:    []string{"sensitive", "dry", "normal"},
					PriceRange:     "$$",
				},
			},
			{
				Name:     "pores",
				Keywords: []string{"pore"},
				MorningSerum: &models.RoutineStep{
					StepName:             "Pore-refining serum",
					ProductType:          "serum",
					Instructions:         "Apply to the T-zone before moisturizer.",
					IngredientsToLookFor: []string{"niacinamide", "zinc PCA"},
					IngredientsToAvoid:   []string{"heavy silicone primers"},
				},
				Product: &models.ProductRecommendation{
					ProductType:    "serum",
					Name:           "Niacinamide Pore Serum",
					Description:    "Refines pore appearance and balances oil.",
					KeyIngredients: []string{"niacinamide 10%", "zinc PCA"},
					SuitableFor:    []string{"oily", "combination"},
					PriceRange:     "$",
				},
			},
			{
				Name:     "dehydration",
				Keywords: []string{"dehydration", "dry"},
				MorningSerum: &models.RoutineStep{
					StepName:             "Hydrating serum",
					ProductType:          "serum",
					Instructions:         "Apply to damp skin, then lock in with moisturizer.",
					IngredientsToLookFor: []string{"hyaluronic acid", "glycerin", "beta-glucan"},
					IngredientsToAvoid:   []string{"drying alcohols"},
				},
				Product: &models.ProductRecommendation{
					ProductType:    "serum",
					Name:           "Hyaluronic Hydration Serum",
					Description:    "Layers lightweight hydration under any moisturizer.",
					KeyIngredients: []string{"multi-weight hyaluronic acid", "panthenol"},
					SuitableFor:    []string{"dry", "normal", "combination", "sensitive"},
					PriceRange:     "$",
				},
			},
			{
				Name:     "dullness",
				Keywords: []string{"dull", "texture"},
				Weekly: &models.RoutineStep{
					StepName:             "AHA exfoliation",
					ProductType:          "treatment",
					Instructions:         "Use once a week in the evening, always follow with sunscreen next morning.",
					IngredientsToLookFor: []string{"glycolic acid", "lactic acid"},
					IngredientsToAvoid:   []string{"combining with retinol the same evening"},
				},
				Product: &models.ProductRecommendation{
					ProductType:    "treatment",
					Name:           "Weekly AHA Resurfacing Treatment",
					Description:    "Restores glow by clearing dull surface cells.",
					KeyIngredients: []string{"glycolic acid 7%", "aloe"},
					SuitableFor:    []string{"normal", "oily", "combination"},
					PriceRange:     "$$",
				},
			},
		},

		BaseProducts: []models.ProductRecommendation{
			{
				ProductType:    "sunscreen",
				Name:           "Daily Broad-Spectrum SPF 50",
				Description:    "Non-negotiable daily protection against UV-driven damage.",
				KeyIngredients: []string{"zinc oxide"},
				SuitableFor:    []string{"all skin types"},
				PriceRange:     "$$",
			},
			{
				ProductType:    "moisturizer",
				Name:           "Barrier Support Moisturizer",
				Description:    "Everyday moisturizer that repairs and protects the barrier.",
				KeyIngredients: []string{"ceramides", "hyaluronic acid"},
				SuitableFor:    []string{"all skin types"},
				PriceRange:     "$$",
			},
		},

		MaxMorningSteps: 5,
		MaxEveningSteps: 5,
		MaxWeeklySteps:  3,
		MaxProducts:     6,
	}
}

func (c *Config) Validate() error {
	required := []string{
		models.SkinTypeOily, models.SkinTypeDry, models.SkinTypeCombination,
		models.SkinTypeNormal, models.SkinTypeSensitive,
	}
	for _, st := range required {
		if _, ok := c.Profiles[st]; !ok {
			return fmt.Errorf("missing profile for skin type %q", st)
		}
	}
	for _, rule := range c.Rules {
		if rule.Name == "" {
			return fmt.Errorf("treatment rule with empty name")
		}
		if len(rule.Keywords) == 0 && len(rule.SkinTypes) == 0 {
			return fmt.Errorf("rule %q matches nothing", rule.Name)
		}
		if rule.Treatment == nil && rule.MorningSerum == nil && rule.Weekly == nil && rule.Product == nil {
			return fmt.Errorf("rule %q contributes nothing", rule.Name)
		}
	}
	if c.MaxMorningSteps <= 0 || c.MaxEveningSteps <= 0 || c.MaxWeeklySteps <= 0 {
		return fmt.Errorf("step caps must be positive")
	}
	if c.MaxProducts <= 0 {
		return fmt.Errorf("product cap must be positive")
	}
	return nil
}
