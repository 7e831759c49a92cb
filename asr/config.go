package asr

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Config holds the engine address and call limits.
type Config struct {
	Host      string `yaml:"host" mapstructure:"host"`
	Port      int    `yaml:"port" mapstructure:"port"`
	Checkcode int32  `yaml:"checkcode" mapstructure:"checkcode"`

	DialTimeout  time.Duration `yaml:"dial_timeout" mapstructure:"dial_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	// Timeout bounds the wait for the engine's reply.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	MaxResponseSize int64 `yaml:"max_response_size" mapstructure:"max_response_size"`
	// StrictEcho rejects replies whose checkcode or request code differ
	// from the request's. Otherwise a mismatch is only logged.
	StrictEcho bool `yaml:"strict_echo" mapstructure:"strict_echo"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 2500
	}
	if c.Checkcode == 0 {
		c.Checkcode = DefaultCheckcode
	}
	if c.DialTimeout == 0 {
		c.DialTimeout = 5 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 10 * time.Second
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
	if c.MaxResponseSize == 0 {
		c.MaxResponseSize = 16 << 20
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("asr.host is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("asr.port must be in 1..65535 (got: %d)", c.Port)
	}
	if c.DialTimeout < 0 || c.WriteTimeout < 0 || c.Timeout < 0 {
		return fmt.Errorf("asr timeouts must not be negative")
	}
	if c.MaxResponseSize < responseHeaderSize {
		return fmt.Errorf("asr.max_response_size must be at least %d (got: %d)", responseHeaderSize, c.MaxResponseSize)
	}
	return nil
}

// Addr is the engine's host:port.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
