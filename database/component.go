package database

import (
	"context"
	"fmt"
	"io/fs"
	"time"

	"github.com/kbukum/voicegate/component"
	"github.com/kbukum/voicegate/database/migration"
	"github.com/kbukum/voicegate/logger"
)

// Component opens the database on Start and closes it on Stop.
type Component struct {
	cfg    Config
	log    *logger.Logger
	driver Driver
	models []any
	db     *DB

	migrations []migrationSet
}

type migrationSet struct {
	fsys fs.FS
	dir  string
}

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// NewComponent returns an unstarted component using DefaultDriver.
func NewComponent(cfg Config, log *logger.Logger) *Component {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.Nop()
	}
	return &Component{cfg: cfg, log: log.WithComponent("database"), driver: DefaultDriver}
}

// WithDriver replaces the SQL driver.
func (c *Component) WithDriver(d Driver) *Component {
	c.driver = d
	return c
}

// WithAutoMigrate registers models migrated on Start when auto_migrate is on.
func (c *Component) WithAutoMigrate(models ...any) *Component {
	c.models = append(c.models, models...)
	return c
}

// WithMigrations registers versioned SQL migrations under dir in fsys,
// applied on every Start before auto-migrate.
func (c *Component) WithMigrations(fsys fs.FS, dir string) *Component {
	c.migrations = append(c.migrations, migrationSet{fsys: fsys, dir: dir})
	return c
}

// DB returns the handle, or nil before Start.
func (c *Component) DB() *DB { return c.db }

func (c *Component) Name() string { return "database" }

func (c *Component) Start(ctx context.Context) error {
	db, err := Open(ctx, c.cfg, c.driver, c.log)
	if err != nil {
		return fmt.Errorf("database start: %w", err)
	}
	c.db = db
	for _, m := range c.migrations {
		if err := migration.Up(db.GormDB, m.fsys, m.dir, nil); err != nil {
			return fmt.Errorf("database migrations %s: %w", m.dir, err)
		}
	}
	if c.cfg.AutoMigrate && len(c.models) > 0 {
		if err := db.AutoMigrate(c.models...); err != nil {
			return fmt.Errorf("database auto-migrate: %w", err)
		}
	}
	return nil
}

func (c *Component) Stop(_ context.Context) error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

func (c *Component) Health(ctx context.Context) component.Health {
	if c.db == nil {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: "database not initialized"}
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := c.db.PingContext(ctx); err != nil {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: fmt.Sprintf("ping failed: %v", err)}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}

func (c *Component) Describe() component.Description {
	details := fmt.Sprintf("dsn=%s pool=%d/%d", c.cfg.DSN, c.cfg.MaxOpenConns, c.cfg.MaxIdleConns)
	if len(c.migrations) > 0 {
		details += fmt.Sprintf(" migrations=%d", len(c.migrations))
	}
	if c.cfg.AutoMigrate {
		details += " auto-migrate=on"
	}
	return component.Description{Name: "Database", Type: "database", Details: details}
}
