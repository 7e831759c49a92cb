// Package ollama lists the models and version of an Ollama server.
package ollama

import (
	"context"
	"fmt"
	"time"

	"github.com/kbukum/voicegate/httpclient"
	"github.com/kbukum/voicegate/logger"
	"github.com/kbukum/voicegate/provider"
)

const ProviderName = "ollama"

// Model is one entry of /api/tags.
type Model struct {
	Name       string       `json:"name"`
	Model      string       `json:"model"`
	ModifiedAt time.Time    `json:"modified_at"`
	Size       int64        `json:"size"`
	Digest     string       `json:"digest"`
	Details    ModelDetails `json:"details"`
}

type ModelDetails struct {
	Format            string   `json:"format,omitempty"`
	Family            string   `json:"family,omitempty"`
	Families          []string `json:"families,omitempty"`
	ParameterSize     string   `json:"parameter_size,omitempty"`
	QuantizationLevel string   `json:"quantization_level,omitempty"`
}

// Client talks to one Ollama server.
type Client struct {
	cfg    Config
	client *httpclient.Client
	log    *logger.Logger
}

var _ provider.Provider = (*Client)(nil)

// New builds a client. It does not contact the server.
func New(cfg Config, log *logger.Logger) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	retry := httpclient.DefaultRetryConfig()
	retry.MaxAttempts = cfg.RetryAttempts
	hc, err := httpclient.New(httpclient.Config{
		Name:           ProviderName,
		BaseURL:        cfg.BaseURL,
		Timeout:        cfg.Timeout,
		Headers:        map[string]string{"Accept": "application/json"},
		Retry:          retry,
		CircuitBreaker: httpclient.DefaultCircuitBreakerConfig(ProviderName),
	})
	if err != nil {
		return nil, fmt.Errorf("ollama: %w", err)
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Client{cfg: cfg, client: hc, log: log.WithComponent(ProviderName)}, nil
}

func (c *Client) Name() string { return ProviderName }

// BaseURL returns the server address.
func (c *Client) BaseURL() string { return c.cfg.BaseURL }

// IsAvailable probes /api/tags.
func (c *Client) IsAvailable(ctx context.Context) bool {
	_, err := c.ListModels(ctx)
	return err == nil
}

type tagsResponse struct {
	Models []Model `json:"models"`
}

// ListModels returns the locally available models.
func (c *Client) ListModels(ctx context.Context) ([]Model, error) {
	resp, err := httpclient.Get[tagsResponse](c.client, ctx, "/api/tags")
	if err != nil {
		c.log.WithContext(ctx).Warn("list models failed", logger.ErrorFields("ollama.tags", err))
		return nil, httpclient.ToAppError("Ollama", err)
	}
	if resp.Data.Models == nil {
		return []Model{}, nil
	}
	return resp.Data.Models, nil
}

// Version returns the server version string.
func (c *Client) Version(ctx context.Context) (string, error) {
	resp, err := httpclient.Get[struct {
		Version string `json:"version"`
	}](c.client, ctx, "/api/version")
	if err != nil {
		c.log.WithContext(ctx).Warn("version failed", logger.ErrorFields("ollama.version", err))
		return "", httpclient.ToAppError("Ollama", err)
	}
	return resp.Data.Version, nil
}
