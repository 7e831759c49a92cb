package transcription

import (
	"context"

	"github.com/kbukum/voicegate/asr"
	"github.com/kbukum/voicegate/provider"
)

// Provider is a speech-to-text backend.
type Provider interface {
	provider.Provider

	Transcribe(ctx context.Context, req Request) (*Response, error)
}

// Request is one recognition call.
type Request struct {
	Audio    []byte
	Format   asr.Format
	FileName string
}

// Response is a successful recognition. Status is the engine's status byte,
// always 0 on success.
type Response struct {
	Status uint8
	Text   string
}

// NewRegistry returns a registry with the "asr" factory registered.
func NewRegistry() *provider.Registry[Provider] {
	r := provider.NewRegistry[Provider]()
	r.RegisterFactory(ProviderASR, ASRFactory())
	return r
}
