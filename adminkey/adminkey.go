// Package adminkey keeps the server's admin key in the settings table,
// generating one on first start.
package adminkey

import (
	"context"
	"crypto/rand"
	"embed"
	"fmt"
	"io"
	"math/big"
	"time"

	"gorm.io/gorm/clause"

	"github.com/kbukum/voicegate/database"
	"github.com/kbukum/voicegate/logger"
)

const (
	// SettingKey is the settings row holding the admin key.
	SettingKey = "admin_key"
	keyLength  = 13
	alphabet   = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// Migrations holds the schema under "migrations", for
// database.Component.WithMigrations.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// Setting is one key/value row.
type Setting struct {
	Key       string `gorm:"primaryKey;size:64"`
	Value     string `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Setting) TableName() string { return "settings" }

// Store reads and writes settings.
type Store struct {
	db   *database.DB
	log  *logger.Logger
	rand io.Reader
}

// NewStore wraps db.
func NewStore(db *database.DB, log *logger.Logger) *Store {
	if log == nil {
		log = logger.Nop()
	}
	return &Store{db: db, log: log.WithComponent("adminkey"), rand: rand.Reader}
}

// Get returns the value under key. A missing row satisfies database.IsNotFound.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	var row Setting
	if err := s.db.WithContext(ctx).Where(&Setting{Key: key}).First(&row).Error; err != nil {
		return "", err
	}
	return row.Value, nil
}

// Bootstrap returns the stored admin key, creating and logging a new one when
// none exists. Concurrent first starts agree on a single key. Without
// Migrations applied the table is created from the model.
func (s *Store) Bootstrap(ctx context.Context) (string, error) {
	if !s.db.GormDB.Migrator().HasTable(&Setting{}) {
		if err := s.db.AutoMigrate(&Setting{}); err != nil {
			return "", err
		}
	}

	key, err := s.Get(ctx, SettingKey)
	if err == nil {
		s.log.Info("admin key loaded")
		return key, nil
	}
	if !database.IsNotFound(err) {
		return "", fmt.Errorf("load admin key: %w", err)
	}

	fresh, err := generateKey(s.rand)
	if err != nil {
		return "", fmt.Errorf("generate admin key: %w", err)
	}
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&Setting{Key: SettingKey, Value: fresh})
	if res.Error != nil {
		return "", fmt.Errorf("store admin key: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		// lost the race to another process
		return s.Get(ctx, SettingKey)
	}

	s.log.Warn("admin key created, save this key in a safe place", logger.Fields("admin_key", fresh))
	return fresh, nil
}

func generateKey(r io.Reader) (string, error) {
	base := big.NewInt(int64(len(alphabet)))
	b := make([]byte, keyLength)
	for i := range b {
		n, err := rand.Int(r, base)
		if err != nil {
			return "", err
		}
		b[i] = alphabet[n.Int64()]
	}
	return string(b), nil
}
