package adminkey

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/kbukum/voicegate/auth"
	"github.com/kbukum/voicegate/component"
	"github.com/kbukum/voicegate/database"
	"github.com/kbukum/voicegate/logger"
	"github.com/kbukum/voicegate/util"
)

// Component loads the admin key on start. Register it after the database
// component it reads from.
type Component struct {
	db  *database.Component
	log *logger.Logger
	key atomic.Pointer[string]
}

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// NewComponent returns an unstarted component backed by db.
func NewComponent(db *database.Component, log *logger.Logger) *Component {
	if log == nil {
		log = logger.Nop()
	}
	return &Component{db: db, log: log}
}

func (c *Component) Name() string { return "adminkey" }

func (c *Component) Start(ctx context.Context) error {
	db := c.db.DB()
	if db == nil {
		return errors.New("adminkey: database not started")
	}
	key, err := NewStore(db, c.log).Bootstrap(ctx)
	if err != nil {
		return fmt.Errorf("adminkey: %w", err)
	}
	c.key.Store(&key)
	return nil
}

func (c *Component) Stop(context.Context) error { return nil }

func (c *Component) Health(context.Context) component.Health {
	if c.Key() == "" {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: "admin key not loaded"}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}

func (c *Component) Describe() component.Description {
	return component.Description{Name: "Admin Key", Type: "auth", Details: util.MaskSecret(c.Key(), 2)}
}

// Key returns the loaded key, or "" before Start.
func (c *Component) Key() string {
	if k := c.key.Load(); k != nil {
		return *k
	}
	return ""
}

// Validator accepts the loaded key. Before Start it accepts nothing.
func (c *Component) Validator() auth.TokenValidator {
	return auth.TokenValidatorFunc(func(ctx context.Context, token string) (*auth.User, error) {
		return auth.AdminKeyValidator(c.Key()).ValidateToken(ctx, token)
	})
}
