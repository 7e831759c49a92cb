package httpclient

import (
	"fmt"
	"time"

	"github.com/kbukum/voicegate/resilience"
	"github.com/kbukum/voicegate/security"
)

const (
	defaultTimeout         = 30 * time.Second
	defaultMaxResponseSize = 32 << 20
)

// Config configures a Client.
type Config struct {
	// Name identifies the upstream in errors and logs.
	Name    string        `yaml:"name" mapstructure:"name"`
	BaseURL string        `yaml:"base_url" mapstructure:"base_url"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// MaxResponseSize caps how much of a response body is read.
	MaxResponseSize int64 `yaml:"max_response_size" mapstructure:"max_response_size"`

	TLS     *security.TLSConfig `yaml:"tls" mapstructure:"tls"`
	Headers map[string]string   `yaml:"headers" mapstructure:"headers"`
	Auth    *AuthConfig         `yaml:"-" mapstructure:"-"`

	// Retry is off when nil.
	Retry *resilience.RetryConfig `yaml:"-" mapstructure:"-"`
	// CircuitBreaker is off when nil.
	CircuitBreaker *resilience.CircuitBreakerConfig `yaml:"-" mapstructure:"-"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "http"
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.MaxResponseSize <= 0 {
		c.MaxResponseSize = defaultMaxResponseSize
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("httpclient: timeout must be positive")
	}
	return c.TLS.Validate()
}

// DefaultRetryConfig retries retryable errors three times.
func DefaultRetryConfig() *resilience.RetryConfig {
	return &resilience.RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: 200 * time.Millisecond,
		MaxBackoff:     2 * time.Second,
		Jitter:         0.2,
		RetryIf:        IsRetryable,
	}
}

// DefaultCircuitBreakerConfig opens after five consecutive upstream
// failures. Client errors (4xx) do not count.
func DefaultCircuitBreakerConfig(name string) *resilience.CircuitBreakerConfig {
	return &resilience.CircuitBreakerConfig{
		Name:        name,
		MaxFailures: 5,
		Timeout:     30 * time.Second,
		IsFailure:   IsRetryable,
	}
}
