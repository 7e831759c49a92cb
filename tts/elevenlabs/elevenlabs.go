// Package elevenlabs is a tts.Provider backed by the ElevenLabs REST API.
package elevenlabs

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	apperrors "github.com/kbukum/voicegate/errors"
	"github.com/kbukum/voicegate/httpclient"
	"github.com/kbukum/voicegate/logger"
	"github.com/kbukum/voicegate/resilience"
	"github.com/kbukum/voicegate/tts"
	"github.com/kbukum/voicegate/util"
)

const ProviderName = "elevenlabs"

// ErrNoAPIKey is returned by New when no API key is configured.
var ErrNoAPIKey = errors.New("elevenlabs: api key is not configured")

// Provider calls ElevenLabs. It is safe for concurrent use.
type Provider struct {
	cfg    Config
	client *httpclient.Client
	log    *logger.Logger
}

var _ tts.Provider = (*Provider)(nil)

// New builds a provider. It fails with ErrNoAPIKey when cfg.APIKey is empty.
func New(cfg Config, log *logger.Logger) (*Provider, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	client, err := httpclient.New(httpclient.Config{
		Name:           ProviderName,
		BaseURL:        cfg.BaseURL,
		Timeout:        cfg.Timeout,
		Auth:           httpclient.APIKeyAuth(cfg.APIKey, "xi-api-key"),
		CircuitBreaker: httpclient.DefaultCircuitBreakerConfig(ProviderName),
	})
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: %w", err)
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Provider{cfg: cfg, client: client, log: log.WithComponent(ProviderName)}, nil
}

func (p *Provider) Name() string { return ProviderName }

// IsAvailable reports whether the upstream circuit is not open.
func (p *Provider) IsAvailable(context.Context) bool {
	return p.client.CircuitState() != resilience.StateOpen
}

// MaskedKey returns the API key with all but its prefix hidden.
func (p *Provider) MaskedKey() string {
	return util.MaskSecret(p.cfg.APIKey, 4)
}

type synthesizeBody struct {
	Text         string `json:"text"`
	ModelID      string `json:"model_id"`
	OutputFormat string `json:"output_format"`
}

// Synthesize posts req to /v1/text-to-speech/{voice_id}.
func (p *Provider) Synthesize(ctx context.Context, req tts.Request) (*tts.Audio, error) {
	if req.Text == "" {
		return nil, apperrors.MissingField("text")
	}
	voice := util.Coalesce(req.VoiceID, p.cfg.VoiceID)
	body := synthesizeBody{
		Text:         req.Text,
		ModelID:      util.Coalesce(req.ModelID, p.cfg.ModelID),
		OutputFormat: util.Coalesce(req.OutputFormat, p.cfg.OutputFormat),
	}

	resp, err := p.client.Do(ctx, httpclient.Request{
		Method:  http.MethodPost,
		Path:    "/v1/text-to-speech/" + url.PathEscape(voice),
		Headers: map[string]string{"Accept": "audio/mpeg"},
		Body:    body,
	})
	if err != nil {
		p.log.WithContext(ctx).Warn("synthesis failed", logger.Fields(
			"voice_id", voice, logger.FieldError, err.Error(),
		))
		return nil, httpclient.ToAppError("ElevenLabs", err)
	}

	p.log.WithContext(ctx).Debug("synthesized", logger.Fields(
		"voice_id", voice, "model_id", body.ModelID, "bytes", len(resp.Body),
	))
	return &tts.Audio{
		ContentType: util.Coalesce(resp.ContentType(), "audio/mpeg"),
		Data:        resp.Body,
	}, nil
}

type voicesResponse struct {
	Voices []struct {
		VoiceID  string            `json:"voice_id"`
		Name     string            `json:"name"`
		Category string            `json:"category"`
		Labels   map[string]string `json:"labels"`
	} `json:"voices"`
}

// ListVoices returns the voices available to the API key.
func (p *Provider) ListVoices(ctx context.Context) ([]tts.Voice, error) {
	resp, err := httpclient.Get[voicesResponse](p.client, ctx, "/v1/voices")
	if err != nil {
		return nil, httpclient.ToAppError("ElevenLabs", err)
	}
	voices := make([]tts.Voice, 0, len(resp.Data.Voices))
	for _, v := range resp.Data.Voices {
		voices = append(voices, tts.Voice{ID: v.VoiceID, Name: v.Name, Category: v.Category, Labels: v.Labels})
	}
	return voices, nil
}
