// Package tts defines text-to-speech providers.
package tts

import (
	"context"

	"github.com/kbukum/voicegate/provider"
)

// Provider synthesizes speech.
type Provider interface {
	provider.Provider

	Synthesize(ctx context.Context, req Request) (*Audio, error)
	ListVoices(ctx context.Context) ([]Voice, error)
}

// Request is one synthesis call. Empty optional fields take provider
// defaults.
type Request struct {
	Text         string `json:"text" validate:"required,max=5000"`
	VoiceID      string `json:"voice_id,omitempty" validate:"omitempty,max=64"`
	ModelID      string `json:"model_id,omitempty" validate:"omitempty,max=64"`
	OutputFormat string `json:"output_format,omitempty" validate:"omitempty,max=32"`
}

// Audio is synthesized speech.
type Audio struct {
	ContentType string
	Data        []byte
}

// Voice is a selectable voice.
type Voice struct {
	ID       string            `json:"voice_id"`
	Name     string            `json:"name"`
	Category string            `json:"category,omitempty"`
	Labels   map[string]string `json:"labels,omitempty"`
}
