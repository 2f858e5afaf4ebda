// internal/workers/scan/persist-scan/config.go
package persistscan

import (
	"fmt"
	"time"
)

type Config struct {
	Timeout time.Duration

	// ScanIndex is the Elasticsearch index holding searchable scan summaries.
	ScanIndex string

	// DetailCacheTTL bounds how long a rendered scan stays in Redis under
	// scan:detail:<id>.
	DetailCacheTTL time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout:        15 * time.Second,
		ScanIndex:      "skin-scans",
		DetailCacheTTL: 24 * time.Hour,
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	if c.ScanIndex == "" {
		return fmt.Errorf("scan index is required")
	}
	if c.DetailCacheTTL <= 0 {
		return fmt.Errorf("detail cache TTL must be positive, got %v", c.DetailCacheTTL)
	}
	return nil
}
