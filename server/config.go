package server

import (
	"fmt"
	"time"

	"github.com/kbukum/voicegate/security"
	"github.com/kbukum/voicegate/server/middleware"
	"github.com/kbukum/voicegate/util"
)

// Config holds HTTP server configuration.
type Config struct {
	Host         string        `yaml:"host" mapstructure:"host"`
	Port         int           `yaml:"port" mapstructure:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout"`
	// MaxBodySize caps request bodies, e.g. "60MB". It must leave room for
	// the largest upload plus multipart overhead.
	MaxBodySize string `yaml:"max_body_size" mapstructure:"max_body_size"`

	CORS      middleware.CORSConfig      `yaml:"cors" mapstructure:"cors"`
	RateLimit middleware.RateLimitConfig `yaml:"rate_limit" mapstructure:"rate_limit"`
	TLS       security.ServerTLSConfig   `yaml:"tls" mapstructure:"tls"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Host == "" {
		c.Host = "0.0.0.0"
	}
	if c.Port == 0 {
		c.Port = 3000
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 60 * time.Second
	}
	// Transcription waits on the engine, so writes get more room.
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 90 * time.Second
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 120 * time.Second
	}
	if c.MaxBodySize == "" {
		c.MaxBodySize = "60MB"
	}
	c.CORS.ApplyDefaults()
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("server.port must be between 0 and 65535 (got: %d)", c.Port)
	}
	if c.ReadTimeout < 0 || c.WriteTimeout < 0 || c.IdleTimeout < 0 {
		return fmt.Errorf("server timeouts must not be negative")
	}
	if _, err := util.ParseSize(c.MaxBodySize); err != nil {
		return fmt.Errorf("server.max_body_size: %w", err)
	}
	if c.RateLimit.RequestsPerMinute < 0 {
		return fmt.Errorf("server.rate_limit.requests_per_minute must not be negative")
	}
	if err := c.TLS.Validate(); err != nil {
		return fmt.Errorf("server.tls: %w", err)
	}
	return nil
}

// Addr is host:port.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// MaxBodyBytes is MaxBodySize in bytes, or 0 when it does not parse.
func (c *Config) MaxBodyBytes() int64 {
	n, err := util.ParseSize(c.MaxBodySize)
	if err != nil {
		return 0
	}
	return n
}
