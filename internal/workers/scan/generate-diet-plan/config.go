// internal/workers/scan/generate-diet-plan/config.go
package generatedietplan

import (
	"fmt"
	"time"

	"skinadvisor-workers/internal/models"
)

// Rule is one dietary rule. It fires when the skin type matches or any issue
// name contains one of the keywords at or above MinSeverity. Rules are
// evaluated in slice order; item order inside a rule decides what survives
// the caps.
type Rule struct {
	Name        string
	SkinTypes   []string
	Keywords    []string
	MinSeverity int
	EatMore     []models.FoodItem
	Avoid       []models.FoodItem
	Supplements []models.FoodItem
}

// TipRule selects a hydration tip. The first matching rule wins.
type TipRule struct {
	Key       string
	SkinTypes []string
	Keywords  []string
}

type Config struct {
	Timeout time.Duration

	Rules    []Rule
	TipRules []TipRule

	// HydrationTips is keyed by TipRule.Key plus the general fallback.
	HydrationTips map[string]string
	GeneralTipKey string

	// Backfill items appended when the plan comes up short.
	BackfillEatMore     []models.FoodItem
	BackfillAvoid       []models.FoodItem
	BackfillSupplements []models.FoodItem
	MinEatMore          int
	MinAvoid            int
	MinSupplements      int

	MaxEatMore     int
	MaxAvoid       int
	MaxSupplements int
}

// Food catalogs grouped by benefit. Slice order matters: earlier items win
// the cap truncation.
var (
	omega3Foods = []models.FoodItem{
		{Name: "Salmon", Reason: "Omega-3 fats strengthen the skin's lipid barrier"},
		{Name: "Walnuts", Reason: "Plant omega-3s that calm inflammation"},
		{Name: "Chia seeds", Reason: "Omega-3 and fiber for steady blood sugar"},
	}
	antioxidantFoods = []models.FoodItem{
		{Name: "Blueberries", Reason: "Antioxidants protect against free-radical damage"},
		{Name: "Spinach", Reason: "Carotenoids and iron support skin repair"},
		{Name: "Green tea", Reason: "Polyphenols reduce oxidative stress"},
	}
	zincFoods = []models.FoodItem{
		{Name: "Pumpkin seeds", Reason: "Zinc regulates oil production and healing"},
		{Name: "Lentils", Reason: "Zinc and protein support skin regeneration"},
	}
	vitaminEFoods = []models.FoodItem{
		{Name: "Avocado", Reason: "Vitamin E and healthy fats lock in moisture"},
		{Name: "Almonds", Reason: "Vitamin E protects the skin barrier"},
	}
	vitaminCFoods = []models.FoodItem{
		{Name: "Oranges", Reason: "Vitamin C drives collagen production"},
		{Name: "Bell peppers", Reason: "Vitamin C brightens and evens tone"},
	}
	hydratingFoods = []models.FoodItem{
		{Name: "Cucumber", Reason: "High water content hydrates from within"},
		{Name: "Watermelon", Reason: "Water and lycopene for plump skin"},
	}
	antiInflammatoryFoods = []models.FoodItem{
		{Name: "Turmeric", Reason: "Curcumin soothes inflammatory responses"},
		{Name: "Ginger", Reason: "Anti-inflammatory compounds ease redness"},
	}
	probioticFoods = []models.FoodItem{
		{Name: "Kimchi", Reason: "Probiotics balance the gut-skin axis"},
		{Name: "Sauerkraut", Reason: "Fermented fiber feeds beneficial bacteria"},
	}
	wholeGrainFoods = []models.FoodItem{
		{Name: "Oats", Reason: "Low-glycemic carbs keep sebum in check"},
		{Name: "Quinoa", Reason: "Whole-grain protein with B vitamins"},
	}

	sugarAvoid = []models.FoodItem{
		{Name: "Refined sugar", Reason: "Spikes insulin and drives breakouts"},
		{Name: "Sugary drinks", Reason: "Glycation damages collagen"},
	}
	processedAvoid = []models.FoodItem{
		{Name: "Processed snacks", Reason: "Additives and salt promote puffiness"},
		{Name: "Fast food", Reason: "Trans fats increase inflammation"},
	}
	dairyAvoid = []models.FoodItem{
		{Name: "Dairy products", Reason: "Dairy hormones can worsen moderate to severe acne"},
	}
	friedAvoid = []models.FoodItem{
		{Name: "Fried foods", Reason: "Oxidized oils aggravate oily and acne-prone skin"},
	}
	refinedCarbAvoid = []models.FoodItem{
		{Name: "White bread", Reason: "High-glycemic carbs stimulate oil production"},
	}
	alcoholAvoid = []models.FoodItem{
		{Name: "Alcohol", Reason: "Dehydrates skin and dilates capillaries"},
	}
	caffeineAvoid = []models.FoodItem{
		{Name: "Excess caffeine", Reason: "Acts as a diuretic and dries the skin"},
	}
	spicyAvoid = []models.FoodItem{
		{Name: "Spicy foods", Reason: "Can trigger flushing in reactive skin"},
	}

	zincSupp      = models.FoodItem{Name: "Zinc", Reason: "Supports healing and oil regulation"}
	omega3Supp    = models.FoodItem{Name: "Omega-3 fish oil", Reason: "Anti-inflammatory barrier support"}
	vitaminDSupp  = models.FoodItem{Name: "Vitamin D", Reason: "Commonly low; supports skin immunity"}
	vitaminESupp  = models.FoodItem{Name: "Vitamin E", Reason: "Antioxidant protection for cell membranes"}
	vitaminCSupp  = models.FoodItem{Name: "Vitamin C", Reason: "Collagen synthesis and brightening"}
	probioticSupp = models.FoodItem{Name: "Probiotic", Reason: "Gut balance reflects in clearer skin"}
	collagenSupp  = models.FoodItem{Name: "Collagen peptides", Reason: "Supports elasticity and firmness"}
	hyaluronSupp  = models.FoodItem{Name: "Hyaluronic acid", Reason: "Helps skin retain water"}
)

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,

		Rules: []Rule{
			{
				Name:        "acne",
				Keywords:    []string{"acne", "breakout", "pimple"},
				EatMore:     join(zincFoods, omega3Foods, probioticFoods),
				Avoid:       join(sugarAvoid, friedAvoid, processedAvoid),
				Supplements: []models.FoodItem{zincSupp, probioticSupp},
			},
			{
				// Dairy avoidance only once acne is at least moderate.
				Name:        "acne-dairy",
				Keywords:    []string{"acne", "breakout"},
				MinSeverity: 4,
				Avoid:       dairyAvoid,
			},
			{
				Name:        "oily",
				SkinTypes:   []string{models.SkinTypeOily},
				Keywords:    []string{"oiliness", "oily", "sebum"},
				EatMore:     join(wholeGrainFoods, antioxidantFoods),
				Avoid:       join(friedAvoid, refinedCarbAvoid),
				Supplements: []models.FoodItem{zincSupp},
			},
			{
				Name:        "dry",
				SkinTypes:   []string{models.SkinTypeDry},
				Keywords:    []string{"dryness", "flaking"},
				EatMore:     join(vitaminEFoods, omega3Foods),
				Avoid:       join(alcoholAvoid, caffeineAvoid),
				Supplements: []models.FoodItem{omega3Supp, vitaminESupp},
			},
			{
				Name:        "dehydration",
				Keywords:    []string{"dehydration"},
				EatMore:     hydratingFoods,
				Avoid:       join(caffeineAvoid, alcoholAvoid),
				Supplements: []models.FoodItem{hyaluronSupp},
			},
			{
				Name:        "redness",
				SkinTypes:   []string{models.SkinTypeSensitive},
				Keywords:    []string{"redness", "irritation", "sensitiv", "rosacea"},
				EatMore:     join(antiInflammatoryFoods, omega3Foods),
				Avoid:       join(spicyAvoid, alcoholAvoid),
				Supplements: []models.FoodItem{omega3Supp},
			},
			{
				Name:        "uneven-tone",
				Keywords:    []string{"uneven", "dullness", "dark spot", "pigment"},
				EatMore:     join(antioxidantFoods, vitaminCFoods),
				Avoid:       sugarAvoid,
				Supplements: []models.FoodItem{vitaminCSupp},
			},
			{
				Name:        "aging",
				Keywords:    []string{"wrinkle", "fine line", "aging", "elasticity"},
				MinSeverity: 3,
				EatMore:     join(antioxidantFoods, omega3Foods),
				Avoid:       join(sugarAvoid, alcoholAvoid),
				Supplements: []models.FoodItem{collagenSupp, vitaminCSupp},
			},
			{
				Name:        "large-pores",
				Keywords:    []string{"pore"},
				EatMore:     zincFoods,
				Avoid:       friedAvoid,
				Supplements: []models.FoodItem{zincSupp},
			},
		},

		TipRules: []TipRule{
			{Key: "dry_skin", SkinTypes: []string{models.SkinTypeDry}, Keywords: []string{"dryness", "dehydration", "flaking"}},
			{Key: "oily_skin", SkinTypes: []string{models.SkinTypeOily}, Keywords: []string{"oiliness", "oily", "sebum"}},
			{Key: "acne", Keywords: []string{"acne", "breakout", "pimple"}},
			{Key: "sensitive", SkinTypes: []string{models.SkinTypeSensitive}, Keywords: []string{"redness", "irritation", "sensitiv"}},
		},

		HydrationTips: map[string]string{
			"dry_skin":  "Drink at least 2.5 liters of water daily and start your morning with a full glass before coffee or tea.",
			"oily_skin": "Drink 2 liters of water daily; proper hydration actually helps regulate oil production.",
			"acne":      "Drink 2 liters of water daily and swap one sugary drink for green tea.",
			"sensitive": "Sip water steadily through the day; sudden large intakes can trigger flushing in reactive skin.",
			"general":   "Aim for 2 liters of water spread evenly across the day.",
		},
		GeneralTipKey: "general",

		BackfillEatMore: []models.FoodItem{
			antioxidantFoods[0],
			hydratingFoods[0],
			antioxidantFoods[2],
		},
		BackfillAvoid: []models.FoodItem{
			processedAvoid[0],
			sugarAvoid[0],
		},
		BackfillSupplements: []models.FoodItem{vitaminDSupp, omega3Supp},
		MinEatMore:          3,
		MinAvoid:            2,
		MinSupplements:      2,

		MaxEatMore:     8,
		MaxAvoid:       6,
		MaxSupplements: 4,
	}
}

// Validate fails fast on a broken rule table.
func (c *Config) Validate() error {
	if len(c.Rules) == 0 {
		return fmt.Errorf("rules table is empty")
	}
	for _, rule := range c.Rules {
		if rule.Name == "" {
			return fmt.Errorf("rule with empty name")
		}
		if len(rule.SkinTypes) == 0 && len(rule.Keywords) == 0 {
			return fmt.Errorf("rule %q can never fire", rule.Name)
		}
		for _, item := range join(rule.EatMore, rule.Avoid, rule.Supplements) {
			if item.Name == "" || item.Reason == "" {
				return fmt.Errorf("rule %q has an incomplete food item", rule.Name)
			}
		}
	}
	if _, ok := c.HydrationTips[c.GeneralTipKey]; !ok {
		return fmt.Errorf("missing general hydration tip")
	}
	for _, tr := range c.TipRules {
		if _, ok := c.HydrationTips[tr.Key]; !ok {
			return fmt.Errorf("tip rule %q has no tip text", tr.Key)
		}
	}
	if c.MaxEatMore <= 0 || c.MaxAvoid <= 0 || c.MaxSupplements <= 0 {
		return fmt.Errorf("caps must be positive")
	}
	return nil
}

func join(groups ...[]models.FoodItem) []models.FoodItem {
	var out []models.FoodItem
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}
