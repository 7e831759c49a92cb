package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kbukum/voicegate/logger"
	"github.com/kbukum/voicegate/resilience"
)

// Driver turns a DSN into a GORM dialector.
type Driver func(dsn string) gorm.Dialector

// DefaultDriver is SQLite.
var DefaultDriver Driver = sqlite.Open

// DB wraps a GORM handle.
type DB struct {
	GormDB *gorm.DB
	log    *logger.Logger
	cfg    Config

	mu     sync.Mutex
	closed bool
}

// Open connects with driver, retrying with backoff until MaxRetries attempts
// are spent or ctx ends.
func Open(ctx context.Context, cfg Config, driver Driver, log *logger.Logger) (*DB, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if driver == nil {
		driver = DefaultDriver
	}
	if log == nil {
		log = logger.Nop()
	}
	gormCfg := &gorm.Config{
		Logger: newGormLogger(log, cfg.SlowQueryThreshold, parseLogLevel(cfg.LogLevel)),
	}

	retry := resilience.RetryConfig{
		MaxAttempts:    cfg.MaxRetries,
		InitialBackoff: 500 * time.Millisecond,
		OnRetry: func(attempt int, err error, backoff time.Duration) {
			log.Warn("database connection failed, retrying", logger.Fields(
				"attempt", attempt, "backoff", backoff.String(), logger.FieldError, err.Error(),
			))
		},
	}
	gdb, err := resilience.Retry(ctx, retry, func(ctx context.Context) (*gorm.DB, error) {
		gdb, err := gorm.Open(driver(cfg.DSN), gormCfg)
		if err != nil {
			return nil, err
		}
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, err
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
		return gdb, nil
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database after %d attempts: %w", cfg.MaxRetries, err)
	}

	sqlDB, _ := gdb.DB()
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	log.Info("database connected", logger.Fields("dsn", cfg.DSN))
	return &DB{GormDB: gdb, log: log, cfg: cfg}, nil
}

// Close is safe to call more than once.
func (d *DB) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	sqlDB, err := d.GormDB.DB()
	if err != nil {
		return err
	}
	d.closed = true
	return sqlDB.Close()
}

// PingContext checks the connection.
func (d *DB) PingContext(ctx context.Context) error {
	sqlDB, err := d.GormDB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// WithContext returns a session bound to ctx.
func (d *DB) WithContext(ctx context.Context) *gorm.DB {
	return d.GormDB.WithContext(ctx)
}

// AutoMigrate migrates each model in turn.
func (d *DB) AutoMigrate(models ...any) error {
	for _, m := range models {
		if err := d.GormDB.AutoMigrate(m); err != nil {
			return fmt.Errorf("migrate %T: %w", m, err)
		}
	}
	d.log.Debug("auto-migration done", logger.Fields("models", len(models)))
	return nil
}

// Transaction runs fn in a transaction bound to ctx.
func (d *DB) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return d.GormDB.WithContext(ctx).Transaction(fn)
}
