package storage

import (
	"fmt"

	"github.com/kbukum/voicegate/util"
)

const (
	ProviderLocal = "local"

	DefaultPath        = "./uploads"
	DefaultMaxFileSize = "100MB"
)

// Config selects the backend and its limits. It lives under the "upload"
// key, so UPLOAD_PATH sets Path.
type Config struct {
	Provider string `yaml:"provider" mapstructure:"provider"`
	Path     string `yaml:"path" mapstructure:"path"`
	// MaxFileSize accepts sizes like "25MB".
	MaxFileSize string `yaml:"max_file_size" mapstructure:"max_file_size"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderLocal
	}
	if c.Path == "" {
		c.Path = DefaultPath
	}
	if c.MaxFileSize == "" {
		c.MaxFileSize = DefaultMaxFileSize
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("upload.path is required")
	}
	if _, err := util.ParseSize(c.MaxFileSize); err != nil {
		return fmt.Errorf("upload.max_file_size: %w", err)
	}
	return nil
}

// MaxBytes returns MaxFileSize in bytes, or 0 if it does not parse.
func (c *Config) MaxBytes() int64 {
	n, _ := util.ParseSize(c.MaxFileSize)
	return n
}
