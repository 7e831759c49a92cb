package elevenlabs

import (
	"fmt"
	"time"
)

const (
	DefaultBaseURL      = "https://api.elevenlabs.io"
	DefaultVoiceID      = "s07IwTCOrCDCaETjUVjx"
	DefaultModelID      = "eleven_multilingual_v2"
	DefaultOutputFormat = "mp3_44100_128"
)

// Config lives under the "elevenlabs" key; ELEVENLABS_API_KEY sets APIKey.
type Config struct {
	APIKey       string        `yaml:"api_key" mapstructure:"api_key"`
	BaseURL      string        `yaml:"base_url" mapstructure:"base_url"`
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"`
	VoiceID      string        `yaml:"voice_id" mapstructure:"voice_id"`
	ModelID      string        `yaml:"model_id" mapstructure:"model_id"`
	OutputFormat string        `yaml:"output_format" mapstructure:"output_format"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = 60 * time.Second
	}
	if c.VoiceID == "" {
		c.VoiceID = DefaultVoiceID
	}
	if c.ModelID == "" {
		c.ModelID = DefaultModelID
	}
	if c.OutputFormat == "" {
		c.OutputFormat = DefaultOutputFormat
	}
}

// Validate checks the configuration. An empty key is allowed here; New
// rejects it so the server can start with TTS switched off.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("elevenlabs.timeout must be positive")
	}
	return nil
}
