// internal/workers/subscription/validate-subscription/config.go
package validatesubscription

import "time"

type Config struct {
	Timeout  time.Duration
	CacheTTL time.Duration

	// FreeScanLimit is the number of scans a free user may run per calendar
	// month. Zero disables the quota check.
	FreeScanLimit int

	// QuotaTTL keeps the monthly counter alive past the month boundary so a
	// late read still sees it; the key name carries the month.
	QuotaTTL time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout:       10 * time.Second,
		CacheTTL:      5 * time.Minute,
		FreeScanLimit: 3,
		QuotaTTL:      32 * 24 * time.Hour,
	}
}
