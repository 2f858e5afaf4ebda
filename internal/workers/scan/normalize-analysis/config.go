// internal/workers/scan/normalize-analysis/config.go
package normalizeanalysis

import (
	"fmt"
	"time"

	"skinadvisor-workers/internal/models"
)

// RequiredMetrics names the five skin metrics every Analysis must carry, in
// canonical order.
var RequiredMetrics = []string{
	"tone_uniformity",
	"texture_smoothness",
	"hydration_appearance",
	"pore_visibility",
	"redness_level",
}

type Config struct {
	Timeout time.Duration

	DefaultSkinType   string
	DefaultConfidence float64

	// MetricDefaults substitute for missing or malformed metric entries.
	MetricDefaults map[string]models.SkinMetric

	// StrengthCatalog pads strengths to the minimum, in order.
	StrengthCatalog []models.Strength
	MinStrengths    int
	MaxStrengths    int

	// Issue validation bounds.
	SeverityMin     int
	SeverityMax     int
	ConfidenceFloor float64

	// UniversalIssues pad the issue list to MinIssues, in order, skipping
	// names already present.
	UniversalIssues []models.Issue
	MinIssues       int

	DefaultRecommendations []string
	MaxRecommendations     int

	SynthesizedWhy string
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,

		DefaultSkinType:   models.SkinTypeCombination,
		DefaultConfidence: 0.8,

		MetricDefaults: map[string]models.SkinMetric{
			"tone_uniformity":      {Score: 72, Why: "Overall tone is mostly even with minor variation."},
			"texture_smoothness":   {Score: 70, Why: "Texture appears generally smooth with small rough patches."},
			"hydration_appearance": {Score: 68, Why: "Skin shows adequate surface hydration."},
			"pore_visibility":      {Score: 70, Why: "Pores are visible but within a typical range."},
			"redness_level":        {Score: 75, Why: "Low diffuse redness across the observed area."},
		},

		StrengthCatalog: []models.Strength{
			{Name: "Resilient skin barrier", Description: "Your skin shows no signs of barrier damage.", Confidence: 0.7},
			{Name: "Even baseline tone", Description: "Overall tone is consistent across the visible area.", Confidence: 0.7},
			{Name: "Good elasticity", Description: "Skin surface shows healthy firmness for its type.", Confidence: 0.65},
			{Name: "Healthy glow potential", Description: "Underlying luminosity responds well to consistent care.", Confidence: 0.6},
		},
		MinStrengths: 2,
		MaxStrengths: 4,

		SeverityMin:     1,
		SeverityMax:     10,
		ConfidenceFloor: 0.5,

		UniversalIssues: []models.Issue{
			{Name: "hydration optimization", Severity: 2, Confidence: 0.75, Priority: models.PriorityMinor,
				WhyThisResult: "Even well-balanced skin benefits from improved moisture retention."},
			{Name: "texture refinement", Severity: 2, Confidence: 0.7, Priority: models.PriorityMinor,
				WhyThisResult: "Gentle exfoliation keeps surface texture smooth over time."},
			{Name: "glow enhancement", Severity: 1, Confidence: 0.7, Priority: models.PriorityMinor,
				WhyThisResult: "Antioxidant support maintains natural radiance."},
			{Name: "elasticity support", Severity: 1, Confidence: 0.65, Priority: models.PriorityMinor,
				WhyThisResult: "Early collagen support preserves long-term firmness."},
		},
		MinIssues: 3,

		DefaultRecommendations: []string{
			"Cleanse gently twice daily with a pH-balanced cleanser.",
			"Apply a broad-spectrum SPF 30+ sunscreen every morning.",
			"Moisturize while skin is still slightly damp.",
			"Introduce active ingredients one at a time.",
			"Stay consistent for at least four weeks before judging results.",
		},
		MaxRecommendations: 5,

		SynthesizedWhy: "Detected by automated analysis of visible skin signals.",
	}
}

// Validate fails fast on a broken rule table. A worker refusing to start is
// cheaper than a fleet silently producing wrong analyses.
func (c *Config) Validate() error {
	for _, name := range RequiredMetrics {
		def, ok := c.MetricDefaults[name]
		if !ok {
			return fmt.Errorf("missing metric default for %q", name)
		}
		if def.Score < 0 || def.Score > 100 {
			return fmt.Errorf("metric default %q score %d out of range", name, def.Score)
		}
		if def.Why == "" {
			return fmt.Errorf("metric default %q has empty why", name)
		}
	}
	if len(c.StrengthCatalog) < c.MinStrengths {
		return fmt.Errorf("strength catalog smaller than minimum %d", c.MinStrengths)
	}
	if c.SeverityMin < 0 || c.SeverityMin > c.SeverityMax {
		return fmt.Errorf("invalid severity bounds [%d,%d]", c.SeverityMin, c.SeverityMax)
	}
	if c.ConfidenceFloor < 0 || c.ConfidenceFloor > 1 {
		return fmt.Errorf("confidence floor %f out of range", c.ConfidenceFloor)
	}
	for _, issue := range c.UniversalIssues {
		if issue.Name == "" {
			return fmt.Errorf("universal issue with empty name")
		}
		if issue.Severity < c.SeverityMin || issue.Severity > c.SeverityMax {
			return fmt.Errorf("universal issue %q severity %d out of bounds", issue.Name, issue.Severity)
		}
	}
	if len(c.SynthesizedWhy) < 10 {
		return fmt.Errorf("synthesized why text too short")
	}
	return nil
}
