package database

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"testing"
	"testing/fstest"

	"gorm.io/gorm"

	apperrors "github.com/kbukum/voicegate/errors"
)

type note struct {
	ID   uint `gorm:"primaryKey"`
	Body string
}

func tempDSN(t *testing.T) string {
	return "file:" + filepath.Join(t.TempDir(), "test.db")
}

func TestComponentLifecycle(t *testing.T) {
	ctx := context.Background()
	c := NewComponent(Config{DSN: tempDSN(t), AutoMigrate: true}, nil).WithAutoMigrate(&note{})

	if c.DB() != nil {
		t.Fatal("DB() before Start")
	}
	if h := c.Health(ctx); h.Healthy() {
		t.Error("healthy before Start")
	}
	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if h := c.Health(ctx); !h.Healthy() {
		t.Errorf("Health() = %+v", h)
	}

	db := c.DB()
	if err := db.WithContext(ctx).Create(&note{Body: "hi"}).Error; err != nil {
		t.Fatalf("insert into migrated table: %v", err)
	}

	if err := c.Stop(ctx); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if err := db.Close(); err != nil {
		t.Errorf("second Close() = %v", err)
	}
}

func TestComponentMigrations(t *testing.T) {
	ctx := context.Background()
	fsys := fstest.MapFS{
		"sql/0001_notes.up.sql":   {Data: []byte("CREATE TABLE notes (id integer PRIMARY KEY, body text);")},
		"sql/0001_notes.down.sql": {Data: []byte("DROP TABLE notes;")},
	}
	dsn := tempDSN(t)

	// a restart against the same file finds nothing to apply
	for i := 0; i < 2; i++ {
		c := NewComponent(Config{DSN: dsn}, nil).WithMigrations(fsys, "sql")
		if err := c.Start(ctx); err != nil {
			t.Fatalf("Start() #%d error = %v", i+1, err)
		}
		if err := c.DB().WithContext(ctx).Create(&note{Body: "hi"}).Error; err != nil {
			t.Errorf("insert into migrated table: %v", err)
		}
		_ = c.Stop(ctx)
	}

	broken := NewComponent(Config{DSN: tempDSN(t)}, nil).WithMigrations(fsys, "nope")
	if err := broken.Start(ctx); err == nil {
		t.Error("Start() with a missing migration dir succeeded")
	}
	_ = broken.Stop(ctx)
}

func TestTransactionRollback(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, Config{DSN: tempDSN(t)}, nil, nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()
	if err := db.AutoMigrate(&note{}); err != nil {
		t.Fatal(err)
	}

	boom := errors.New("boom")
	err = db.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&note{Body: "lost"}).Error; err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Transaction() = %v", err)
	}
	var count int64
	db.WithContext(ctx).Model(&note{}).Count(&count)
	if count != 0 {
		t.Errorf("count = %d after rollback", count)
	}
}

func TestFromDatabase(t *testing.T) {
	if FromDatabase(nil, "setting") != nil {
		t.Error("nil error mapped")
	}
	if ae := FromDatabase(gorm.ErrRecordNotFound, "setting"); ae.HTTPStatus != http.StatusNotFound {
		t.Errorf("not found = %+v", ae)
	}
	if ae := FromDatabase(errors.New("disk I/O error"), "setting"); ae.Code != apperrors.ErrCodeDatabaseError {
		t.Errorf("generic = %+v", ae)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"defaults", Config{}, false},
		{"idle above open", Config{MaxOpenConns: 1, MaxIdleConns: 2}, true},
		{"bad log level", Config{LogLevel: "loud"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.cfg.ApplyDefaults()
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
