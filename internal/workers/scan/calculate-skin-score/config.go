// internal/workers/scan/calculate-skin-score/config.go
package calculateskinscore

import (
	"fmt"
	"time"
)

// IssueWeight pairs a substring matcher with its penalty weight. Matchers are
// evaluated in order; the first hit wins.
type IssueWeight struct {
	Match  string
	Weight float64
}

// ScoreBand maps an inclusive score range to a label.
type ScoreBand struct {
	Min         int
	Max         int
	Label       string
	Description string
}

type Config struct {
	Timeout time.Duration

	// MetricWeights is renormalized over whichever metrics are present.
	MetricWeights map[string]float64

	// FallbackBase is used when no metrics survive normalization.
	FallbackBase float64

	// IssueWeights resolve a penalty weight per issue name, first match wins.
	IssueWeights  []IssueWeight
	DefaultWeight float64

	// DeductionFactor scales severity * weight into score points.
	DeductionFactor float64

	// CriticalCategories maps category name to its matchers. Any matching
	// issue with severity at or above CriticalSeverity triggers the first
	// hard cap.
	CriticalCategories map[string][]string
	CriticalSeverity   int
	CriticalCap        int

	HighSeverity    int
	HighSeverityCap int

	SevereSeverity    int
	SevereSeverityCap int

	// Elite and excellent gates. Scores at or above the gate are only
	// allowed when severity and deduction stay below the paired limits.
	EliteGate          int
	EliteMaxSeverity   int
	EliteMaxDeduction  float64
	ExcellentGate      int
	ExcellentMaxSev    int
	ExcellentMaxDeduct float64

	Bands []ScoreBand

	MaxFactors int
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,

		MetricWeights: map[string]float64{
			"tone_uniformity":      0.25,
			"texture_smoothness":   0.25,
			"hydration_appearance": 0.20,
			"pore_visibility":      0.15,
			"redness_level":        0.15,
		},
		FallbackBase: 75,

		IssueWeights: []IssueWeight{
			{Match: "acne", Weight: 1.4},
			{Match: "breakout", Weight: 1.4},
			{Match: "dark spot", Weight: 1.1},
			{Match: "pigment", Weight: 1.1},
			{Match: "wrinkle", Weight: 1.0},
			{Match: "fine line", Weight: 0.9},
			{Match: "redness", Weight: 1.2},
			{Match: "irritation", Weight: 1.1},
			{Match: "pore", Weight: 1.0},
			{Match: "dehydration", Weight: 1.1},
			{Match: "dryness", Weight: 1.0},
			{Match: "uneven", Weight: 1.0},
			{Match: "dullness", Weight: 0.7},
			{Match: "texture", Weight: 0.8},
			{Match: "oiliness", Weight: 0.9},
		},
		DefaultWeight: 1.0,

		DeductionFactor: 0.12,

		CriticalCategories: map[string][]string{
			"acne":        {"acne", "breakout"},
			"pores":       {"pore"},
			"uneven_tone": {"uneven"},
			"redness":     {"redness"},
		},
		CriticalSeverity: 3,
		CriticalCap:      84,

		HighSeverity:    5,
		HighSeverityCap: 79,

		SevereSeverity:    7,
		SevereSeverityCap: 74,

		EliteGate:          85,
		EliteMaxSeverity:   1,
		EliteMaxDeduction:  5,
		ExcellentGate:      90,
		ExcellentMaxSev:    0,
		ExcellentMaxDeduct: 2,

		Bands: []ScoreBand{
			{Min: 0, Max: 39, Label: "needs_care", Description: "Your skin needs focused care right now."},
			{Min: 40, Max: 59, Label: "needs_attention", Description: "Several areas would benefit from attention."},
			{Min: 60, Max: 74, Label: "average", Description: "Your skin is in typical condition with room to improve."},
			{Min: 75, Max: 89, Label: "good", Description: "Your skin is in good condition overall."},
			{Min: 90, Max: 100, Label: "excellent", Description: "Your skin is in excellent condition."},
		},

		MaxFactors: 5,
	}
}

// Validate fails fast on a broken scoring table.
func (c *Config) Validate() error {
	if len(c.MetricWeights) == 0 {
		return fmt.Errorf("metric weights table is empty")
	}
	for name, w := range c.MetricWeights {
		if w <= 0 {
			return fmt.Errorf("metric weight %q must be positive, got %f", name, w)
		}
	}
	if c.FallbackBase < 0 || c.FallbackBase > 100 {
		return fmt.Errorf("fallback base %f out of range", c.FallbackBase)
	}
	if c.DeductionFactor <= 0 {
		return fmt.Errorf("deduction factor must be positive")
	}
	for _, iw := range c.IssueWeights {
		if iw.Match == "" {
			return fmt.Errorf("issue weight with empty matcher")
		}
		if iw.Weight <= 0 {
			return fmt.Errorf("issue weight %q must be positive", iw.Match)
		}
	}
	if len(c.Bands) == 0 {
		return fmt.Errorf("score bands table is empty")
	}
	// Bands must tile [0,100] without gaps or overlap.
	next := 0
	for _, band := range c.Bands {
		if band.Min != next {
			return fmt.Errorf("band %q starts at %d, expected %d", band.Label, band.Min, next)
		}
		if band.Max < band.Min {
			return fmt.Errorf("band %q has max below min", band.Label)
		}
		next = band.Max + 1
	}
	if next != 101 {
		return fmt.Errorf("bands end at %d, expected 100", next-1)
	}
	return nil
}
