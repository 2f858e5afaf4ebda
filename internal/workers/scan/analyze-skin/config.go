// internal/workers/scan/analyze-skin/config.go
package analyzeskin

import (
	"fmt"
	"time"

	"skinadvisor-workers/internal/common/config"
)

// languageNames maps supported language codes to the name the vision model
// is told to respond in. Unknown codes fall back to English.
var languageNames = map[string]string{
	"en": "English",
	"fr": "French",
	"tr": "Turkish",
	"it": "Italian",
	"es": "Spanish",
	"de": "German",
	"ar": "Arabic",
	"zh": "Simplified Chinese",
	"hi": "Hindi",
}

const defaultLanguage = "en"

type Config struct {
	BaseURL    string
	APIKey     string
	Model      string
	Timeout    time.Duration
	MaxRetries int
}

func LoadConfig(vision config.VisionConfig) *Config {
	return &Config{
		BaseURL:    vision.BaseURL,
		APIKey:     vision.APIKey,
		Model:      vision.Model,
		Timeout:    time.Duration(vision.Timeout) * time.Millisecond,
		MaxRetries: vision.MaxRetries,
	}
}

func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("vision base URL is required")
	}
	if c.Model == "" {
		return fmt.Errorf("vision model is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max retries must be non-negative, got %d", c.MaxRetries)
	}
	return nil
}
