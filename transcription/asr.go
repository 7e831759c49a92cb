package transcription

import (
	"context"
	"fmt"
	"time"

	"github.com/kbukum/voicegate/asr"
	"github.com/kbukum/voicegate/provider"
)

// ProviderASR is the registry name of the ASR engine provider.
const ProviderASR = "asr"

// Recognizer is satisfied by *asr.Client and *asr.Component.
type Recognizer interface {
	Recognize(ctx context.Context, format asr.Format, audio []byte) (*asr.Result, error)
	Ping(ctx context.Context) error
}

type asrProvider struct {
	client Recognizer
}

// NewASRProvider adapts an ASR client to Provider.
func NewASRProvider(client Recognizer) Provider {
	return &asrProvider{client: client}
}

// ASRFactory builds the ASR provider from a config map. The "client" key
// takes a ready Recognizer; otherwise "config" takes an asr.Config.
func ASRFactory() provider.Factory[Provider] {
	return func(cfg map[string]any) (Provider, error) {
		if c, ok := cfg["client"].(Recognizer); ok && c != nil {
			return NewASRProvider(c), nil
		}
		var ac asr.Config
		if v, ok := cfg["config"].(asr.Config); ok {
			ac = v
		}
		client, err := asr.NewClient(ac)
		if err != nil {
			return nil, fmt.Errorf("asr provider: %w", err)
		}
		return NewASRProvider(client), nil
	}
}

func (p *asrProvider) Name() string { return ProviderASR }

func (p *asrProvider) IsAvailable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return p.client.Ping(ctx) == nil
}

func (p *asrProvider) Transcribe(ctx context.Context, req Request) (*Response, error) {
	res, err := p.client.Recognize(ctx, req.Format, req.Audio)
	if err != nil {
		return nil, err
	}
	return &Response{Status: res.Status, Text: res.Text}, nil
}
