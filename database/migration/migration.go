// Package migration applies versioned SQL migrations with golang-migrate.
//
// Files follow the golang-migrate naming, VERSION_name.up.sql and
// VERSION_name.down.sql, and are usually embedded:
//
//	//go:embed migrations/*.sql
//	var Migrations embed.FS
//
//	err := migration.Up(gormDB, Migrations, "migrations", nil)
package migration

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"
)

// DriverFunc adapts an open *sql.DB to a golang-migrate driver.
type DriverFunc func(*sql.DB) (migratedb.Driver, error)

// SQLite is the default driver.
func SQLite(db *sql.DB) (migratedb.Driver, error) {
	return sqlite3.WithInstance(db, &sqlite3.Config{})
}

// Up applies every pending migration under dir. Nothing to apply is not an
// error. A nil driver means SQLite.
func Up(db *gorm.DB, fsys fs.FS, dir string, driver DriverFunc) error {
	m, err := newMigrator(db, fsys, dir, driver)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

// Steps applies n migrations, or rolls back -n when n is negative.
func Steps(db *gorm.DB, fsys fs.FS, dir string, n int, driver DriverFunc) error {
	m, err := newMigrator(db, fsys, dir, driver)
	if err != nil {
		return err
	}
	if err := m.Steps(n); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate steps: %w", err)
	}
	return nil
}

// Version reports the applied version. A fresh database reports 0.
func Version(db *gorm.DB, fsys fs.FS, dir string, driver DriverFunc) (version uint, dirty bool, err error) {
	m, err := newMigrator(db, fsys, dir, driver)
	if err != nil {
		return 0, false, err
	}
	version, dirty, err = m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

// The returned migrator must not be closed: that would close db.
func newMigrator(db *gorm.DB, fsys fs.FS, dir string, driver DriverFunc) (*migrate.Migrate, error) {
	if driver == nil {
		driver = SQLite
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	target, err := driver(sqlDB)
	if err != nil {
		return nil, fmt.Errorf("migration driver: %w", err)
	}
	source, err := iofs.New(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("migration source %s: %w", dir, err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "database", target)
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	return m, nil
}
