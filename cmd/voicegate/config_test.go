package main

import (
	"testing"

	"github.com/kbukum/voicegate/asr"
	"github.com/kbukum/voicegate/config"
)

func loadTestConfig(t *testing.T) *Config {
	t.Helper()
	cfg := &Config{}
	if err := config.LoadConfig(serviceName, cfg, config.WithConfigFile("config.yml"), config.WithEnvFile("none.env")); err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestShippedConfig(t *testing.T) {
	cfg := loadTestConfig(t)
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if cfg.ASR.Checkcode != asr.DefaultCheckcode || cfg.ASR.Port != 2500 {
		t.Errorf("asr = %+v", cfg.ASR)
	}
	if cfg.Server.Addr() != "0.0.0.0:3000" {
		t.Errorf("server addr = %q", cfg.Server.Addr())
	}
	if cfg.JWTEnabled() {
		t.Error("JWT enabled without a secret")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("ASR_HOST", "asr.internal")
	t.Setenv("ASR_PORT", "2600")
	t.Setenv("UPLOAD_PATH", "/data/uploads")
	t.Setenv("STATIC_ASSET", "/srv/www")
	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")

	cfg := loadTestConfig(t)
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if cfg.ASR.Host != "asr.internal" || cfg.ASR.Port != 2600 {
		t.Errorf("asr = %s:%d", cfg.ASR.Host, cfg.ASR.Port)
	}
	if cfg.Upload.Path != "/data/uploads" {
		t.Errorf("upload.path = %q", cfg.Upload.Path)
	}
	if cfg.Static.Asset != "/srv/www" {
		t.Errorf("static.asset = %q", cfg.Static.Asset)
	}
	if !cfg.JWTEnabled() {
		t.Error("JWT_SECRET did not enable tokens")
	}
}

func TestValidateRejectsBadParts(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"asr port", func(c *Config) { c.ASR.Port = 70000 }},
		{"upload size", func(c *Config) { c.Upload.MaxFileSize = "lots" }},
		{"ollama url", func(c *Config) { c.Ollama.BaseURL = "localhost:11434" }},
		{"jwt method", func(c *Config) { c.JWT.Secret = "s"; c.JWT.Method = "RS256" }},
		{"environment", func(c *Config) { c.Environment = "qa" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := loadTestConfig(t)
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() succeeded")
			}
		})
	}
}

func TestApplyBuildVersion(t *testing.T) {
	cfg := &Config{}
	applyBuildVersion(cfg)
	if cfg.Version == "" {
		t.Error("build version not applied")
	}

	cfg.Version = "2.0.0"
	applyBuildVersion(cfg)
	if cfg.Version != "2.0.0" {
		t.Errorf("configured version overwritten: %q", cfg.Version)
	}
}
