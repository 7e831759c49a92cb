package database

import (
	"fmt"
	"time"
)

const DefaultDSN = "file:voicegate.db"

// Config lives under the "database" key.
type Config struct {
	DSN string `yaml:"dsn" mapstructure:"dsn"`

	MaxOpenConns    int           `yaml:"max_open_conns" mapstructure:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns" mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" mapstructure:"conn_max_lifetime"`

	// MaxRetries counts connection attempts on start.
	MaxRetries  int  `yaml:"max_retries" mapstructure:"max_retries"`
	AutoMigrate bool `yaml:"auto_migrate" mapstructure:"auto_migrate"`

	// LogLevel is silent, error, warn or info.
	LogLevel           string        `yaml:"log_level" mapstructure:"log_level"`
	SlowQueryThreshold time.Duration `yaml:"slow_query_threshold" mapstructure:"slow_query_threshold"`
}

// ApplyDefaults fills unset fields. SQLite serializes writers, so the pool
// stays small.
func (c *Config) ApplyDefaults() {
	if c.DSN == "" {
		c.DSN = DefaultDSN
	}
	if c.MaxOpenConns <= 0 {
		c.MaxOpenConns = 4
	}
	if c.MaxIdleConns <= 0 {
		c.MaxIdleConns = 2
	}
	if c.ConnMaxLifetime <= 0 {
		c.ConnMaxLifetime = time.Hour
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.LogLevel == "" {
		c.LogLevel = "warn"
	}
	if c.SlowQueryThreshold <= 0 {
		c.SlowQueryThreshold = 200 * time.Millisecond
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		return fmt.Errorf("max_idle_conns (%d) must be <= max_open_conns (%d)", c.MaxIdleConns, c.MaxOpenConns)
	}
	switch c.LogLevel {
	case "silent", "error", "warn", "info":
	default:
		return fmt.Errorf("database.log_level %q is not one of silent, error, warn, info", c.LogLevel)
	}
	return nil
}
