package main

import (
	"github.com/kbukum/voicegate/asr"
	"github.com/kbukum/voicegate/auth/jwt"
	"github.com/kbukum/voicegate/config"
	"github.com/kbukum/voicegate/database"
	"github.com/kbukum/voicegate/llm/ollama"
	"github.com/kbukum/voicegate/observability"
	"github.com/kbukum/voicegate/redis"
	"github.com/kbukum/voicegate/server"
	"github.com/kbukum/voicegate/storage"
	"github.com/kbukum/voicegate/transcription"
	"github.com/kbukum/voicegate/tts/elevenlabs"
)

const serviceName = "voicegate"

// Config is the whole service configuration.
type Config struct {
	config.ServiceConfig `mapstructure:",squash"`

	Server        server.Config        `yaml:"server" mapstructure:"server"`
	ASR           asr.Config           `yaml:"asr" mapstructure:"asr"`
	Upload        storage.Config       `yaml:"upload" mapstructure:"upload"`
	Transcription transcription.Config `yaml:"transcription" mapstructure:"transcription"`
	ElevenLabs    elevenlabs.Config    `yaml:"elevenlabs" mapstructure:"elevenlabs"`
	Ollama        ollama.Config        `yaml:"ollama" mapstructure:"ollama"`
	Database      database.Config      `yaml:"database" mapstructure:"database"`
	Redis         redis.Config         `yaml:"redis" mapstructure:"redis"`
	JWT           jwt.Config           `yaml:"jwt" mapstructure:"jwt"`
	Static        StaticConfig         `yaml:"static" mapstructure:"static"`
	Telemetry     observability.Config `yaml:"telemetry" mapstructure:"telemetry"`
}

// StaticConfig names the directory served at /. Empty disables it.
type StaticConfig struct {
	Asset string `yaml:"asset" mapstructure:"asset"`
}

func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = serviceName
	}
	c.ServiceConfig.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.ASR.ApplyDefaults()
	c.Upload.ApplyDefaults()
	c.Transcription.ApplyDefaults()
	c.ElevenLabs.ApplyDefaults()
	c.Ollama.ApplyDefaults()
	c.Database.ApplyDefaults()
	c.Redis.ApplyDefaults()
	c.JWT.ApplyDefaults()
	c.Telemetry.ApplyDefaults()
	if c.Telemetry.Environment == "" {
		c.Telemetry.Environment = c.Environment
	}
}

// JWTEnabled reports whether user tokens can be issued and checked. Without
// a secret only the admin key authenticates.
func (c *Config) JWTEnabled() bool { return c.JWT.Secret != "" }

func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	parts := []func() error{
		c.Server.Validate,
		c.ASR.Validate,
		c.Upload.Validate,
		c.Transcription.Validate,
		c.ElevenLabs.Validate,
		c.Ollama.Validate,
		c.Database.Validate,
		c.Redis.Validate,
		c.Telemetry.Validate,
	}
	if c.JWTEnabled() {
		parts = append(parts, c.JWT.Validate)
	}
	for _, validate := range parts {
		if err := validate(); err != nil {
			return err
		}
	}
	return nil
}
