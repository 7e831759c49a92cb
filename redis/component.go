package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kbukum/voicegate/component"
	"github.com/kbukum/voicegate/logger"
)

// Component connects on Start and closes on Stop.
type Component struct {
	cfg Config
	log *logger.Logger

	mu     sync.RWMutex
	client *Client
}

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

var errNotStarted = errors.New("redis: not started")

// NewComponent returns an unstarted component.
func NewComponent(cfg Config, log *logger.Logger) *Component {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.Nop()
	}
	return &Component{cfg: cfg, log: log.WithComponent("redis")}
}

// Client returns the client, or nil before Start.
func (c *Component) Client() *Client {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.client
}

func (c *Component) Name() string { return "redis" }

func (c *Component) Start(ctx context.Context) error {
	client, err := New(c.cfg, c.log)
	if err != nil {
		return fmt.Errorf("redis start: %w", err)
	}
	if err := client.Ping(ctx); err != nil {
		_ = client.Close()
		return fmt.Errorf("redis start: %w", err)
	}
	c.mu.Lock()
	c.client = client
	c.mu.Unlock()
	c.log.Info("Redis connected", logger.Fields("addr", c.cfg.Addr, "db", c.cfg.DB))
	return nil
}

func (c *Component) Stop(context.Context) error {
	c.mu.Lock()
	client := c.client
	c.client = nil
	c.mu.Unlock()
	if client == nil {
		return nil
	}
	return client.Close()
}

func (c *Component) Health(ctx context.Context) component.Health {
	client := c.Client()
	if client == nil {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: "redis not initialized"}
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx); err != nil {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: err.Error()}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}

func (c *Component) Describe() component.Description {
	return component.Description{
		Name:    "Redis",
		Type:    "redis",
		Details: fmt.Sprintf("%s db=%d pool=%d", c.cfg.Addr, c.cfg.DB, c.cfg.PoolSize),
	}
}

// RateLimitStore counts through whatever client is current, so it can be
// handed to the server before Start. Before Start every call fails.
func (c *Component) RateLimitStore() *WindowCounter {
	return &WindowCounter{client: c.Client, now: time.Now}
}
