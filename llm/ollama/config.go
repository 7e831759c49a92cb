package ollama

import (
	"fmt"
	"strings"
	"time"
)

const DefaultBaseURL = "http://localhost:11434"

// Config lives under the "ollama" key.
type Config struct {
	BaseURL string        `yaml:"base_url" mapstructure:"base_url"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// RetryAttempts applies to the idempotent GET calls.
	RetryAttempts int `yaml:"retry_attempts" mapstructure:"retry_attempts"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	if c.RetryAttempts < 1 {
		c.RetryAttempts = 2
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return fmt.Errorf("ollama.base_url must be an http(s) URL, got %q", c.BaseURL)
	}
	return nil
}
