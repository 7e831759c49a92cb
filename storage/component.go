package storage

import (
	"context"
	"fmt"

	"github.com/kbukum/voicegate/component"
	"github.com/kbukum/voicegate/logger"
)

// Component builds the configured Storage on start.
type Component struct {
	cfg     Config
	log     *logger.Logger
	storage Storage
}

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// NewComponent returns an unstarted storage component.
func NewComponent(cfg Config, log *logger.Logger) *Component {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.Nop()
	}
	return &Component{cfg: cfg, log: log.WithComponent("storage")}
}

// Storage returns the backend, or nil before Start.
func (c *Component) Storage() Storage { return c.storage }

func (c *Component) Name() string { return "storage" }

func (c *Component) Start(_ context.Context) error {
	s, err := New(c.cfg, c.log)
	if err != nil {
		return fmt.Errorf("storage start: %w", err)
	}
	c.storage = s
	return nil
}

func (c *Component) Stop(_ context.Context) error {
	c.storage = nil
	return nil
}

// Health lists the store as a probe.
func (c *Component) Health(ctx context.Context) component.Health {
	if c.storage == nil {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: "storage not initialized"}
	}
	if _, err := c.storage.List(ctx); err != nil {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: err.Error()}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}

func (c *Component) Describe() component.Description {
	return component.Description{
		Name:    "Audio Storage",
		Type:    "storage",
		Details: fmt.Sprintf("provider=%s path=%s max=%s", c.cfg.Provider, c.cfg.Path, c.cfg.MaxFileSize),
	}
}
