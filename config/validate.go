package config

import (
	"fmt"
	"strings"

	"github.com/ZaguanLabs/xlitfix/script"
)

// Validate performs rule validation on the loaded configuration.
// Load calls it; call it again after applying flag overrides.
func (c *Config) Validate() error {
	if c.Language != "" {
		if _, _, err := script.ParseLanguage(c.Language); err != nil {
			return fmt.Errorf("language: %w", err)
		}
	}

	if c.Dictionary.Path != "" && c.Dictionary.DSN != "" {
		return fmt.Errorf("dictionary: path and dsn are mutually exclusive")
	}
	if c.Dictionary.MaxNodes < 0 {
		return fmt.Errorf("dictionary.max_nodes must be >= 0 (got %d)", c.Dictionary.MaxNodes)
	}

	if c.Batch.Size <= 0 {
		return fmt.Errorf("batch.size must be > 0 (got %d)", c.Batch.Size)
	}
	if c.Batch.Workers <= 0 {
		return fmt.Errorf("batch.workers must be > 0 (got %d)", c.Batch.Workers)
	}
	if c.Batch.SampleSize < 0 {
		return fmt.Errorf("batch.sample_size must be >= 0 (got %d)", c.Batch.SampleSize)
	}

	if err := c.Model.validate(); err != nil {
		return fmt.Errorf("model: %w", err)
	}

	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("log.format must be json or text (got %q)", c.Log.Format)
	}

	return nil
}

func (m *ModelConfig) validate() error {
	if m.RequestsPerMinute < 0 {
		return fmt.Errorf("requests_per_minute must be >= 0 (got %d)", m.RequestsPerMinute)
	}
	if m.SentencesPerMinute < 0 {
		return fmt.Errorf("sentences_per_minute must be >= 0 (got %d)", m.SentencesPerMinute)
	}
	if m.MaxRetries < 0 {
		return fmt.Errorf("max_retries must be >= 0 (got %d)", m.MaxRetries)
	}
	if m.Enabled && m.APIKey == "" {
		return fmt.Errorf("api_key is required when the model is enabled (set OPENAI_API_KEY)")
	}
	return nil
}
