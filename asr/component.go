package asr

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kbukum/voicegate/component"
	"github.com/kbukum/voicegate/logger"
)

const healthPingTimeout = 3 * time.Second

// Component manages a Client's lifecycle. The engine may be down at start;
// that only shows up in Health.
type Component struct {
	cfg    Config
	log    *logger.Logger
	mu     sync.RWMutex
	client *Client
}

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// NewComponent returns an unstarted ASR component.
func NewComponent(cfg Config, log *logger.Logger) *Component {
	if log == nil {
		log = logger.WithComponent("asr")
	}
	return &Component{cfg: cfg, log: log}
}

func (c *Component) Name() string { return "asr" }

// Start builds the client and pings the engine once.
func (c *Component) Start(ctx context.Context) error {
	client, err := NewClient(c.cfg, WithLogger(c.log))
	if err != nil {
		return fmt.Errorf("asr client: %w", err)
	}
	c.mu.Lock()
	c.client = client
	c.cfg = client.Config()
	c.mu.Unlock()

	pingCtx, cancel := context.WithTimeout(ctx, healthPingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx); err != nil {
		c.log.Warn("ASR engine not reachable at startup", logger.Fields("addr", c.cfg.Addr(), logger.FieldError, err))
	} else {
		c.log.Info("ASR engine reachable", logger.Fields("addr", c.cfg.Addr()))
	}
	return nil
}

func (c *Component) Stop(ctx context.Context) error {
	c.mu.Lock()
	c.client = nil
	c.mu.Unlock()
	return nil
}

// Health pings the engine.
func (c *Component) Health(ctx context.Context) component.Health {
	client := c.Client()
	if client == nil {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: "not started"}
	}
	pingCtx, cancel := context.WithTimeout(ctx, healthPingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx); err != nil {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: err.Error()}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}

// Describe reports the engine address for the startup summary.
func (c *Component) Describe() component.Description {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return component.Description{
		Name:    "ASR Engine",
		Type:    "asr",
		Details: fmt.Sprintf("%s checkcode=%d timeout=%s", c.cfg.Host, c.cfg.Checkcode, c.cfg.Timeout),
		Port:    c.cfg.Port,
	}
}

var errNotStarted = errors.New("client not started")

// Recognize delegates to the started client. Before Start it fails with a
// KindConnect error.
func (c *Component) Recognize(ctx context.Context, format Format, audio []byte) (*Result, error) {
	client := c.Client()
	if client == nil {
		return nil, &Error{Kind: KindConnect, Op: "recognize", Err: errNotStarted}
	}
	return client.Recognize(ctx, format, audio)
}

// Ping delegates to the started client.
func (c *Component) Ping(ctx context.Context) error {
	client := c.Client()
	if client == nil {
		return &Error{Kind: KindConnect, Op: "ping", Err: errNotStarted}
	}
	return client.Ping(ctx)
}

// Client returns the started client, or nil before Start.
func (c *Component) Client() *Client {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.client
}
