// Package config loads service configuration with viper.
//
// LoadConfig looks for cmd/<service>/config.yml (and a few fallbacks), then a
// .env file, then the process environment. Environment variables bind to
// nested keys automatically, so ASR_HOST sets asr.host and
// ELEVENLABS_API_KEY sets elevenlabs.api_key.
package config
