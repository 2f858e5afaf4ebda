// internal/workers/scan/build-scan-response/config.go
package buildscanresponse

import (
	"fmt"
	"time"
)

type Config struct {
	Timeout time.Duration

	// LockedFeatures names every capability withheld from the free tier.
	LockedFeatures []string

	// MaxPreviewStrengths caps the strengths shown in a restricted view.
	MaxPreviewStrengths int
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,

		LockedFeatures: []string{
			"detailed_issue_analysis",
			"skin_metrics_breakdown",
			"personalized_routine",
			"diet_recommendations",
			"product_recommendations",
			"progress_tracking",
		},

		MaxPreviewStrengths: 2,
	}
}

func (c *Config) Validate() error {
	if len(c.LockedFeatures) == 0 {
		return fmt.Errorf("locked features list is empty")
	}
	for _, f := range c.LockedFeatures {
		if f == "" {
			return fmt.Errorf("locked features list contains an empty name")
		}
	}
	if c.MaxPreviewStrengths < 0 {
		return fmt.Errorf("max preview strengths must not be negative")
	}
	return nil
}
