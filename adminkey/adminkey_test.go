package adminkey

import (
	"context"
	"crypto/rand"
	"errors"
	"io"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/kbukum/voicegate/database"
)

func openDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Open(context.Background(), database.Config{
		DSN: "file:" + filepath.Join(t.TempDir(), "keys.db"),
	}, nil, nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestBootstrapIdempotent(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)

	first, err := NewStore(db, nil).Bootstrap(ctx)
	if err != nil {
		t.Fatalf("Bootstrap() error = %v", err)
	}
	if !regexp.MustCompile(`^[0-9a-z]{13}$`).MatchString(first) {
		t.Errorf("key %q is not 13 base36 chars", first)
	}

	second, err := NewStore(db, nil).Bootstrap(ctx)
	if err != nil {
		t.Fatalf("second Bootstrap() error = %v", err)
	}
	if second != first {
		t.Errorf("second Bootstrap() = %q, want %q", second, first)
	}

	var count int64
	db.WithContext(ctx).Model(&Setting{}).Count(&count)
	if count != 1 {
		t.Errorf("settings rows = %d", count)
	}
}

func TestBootstrapKeepsExistingKey(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	if err := db.AutoMigrate(&Setting{}); err != nil {
		t.Fatal(err)
	}
	if err := db.WithContext(ctx).Create(&Setting{Key: SettingKey, Value: "legacykey1234"}).Error; err != nil {
		t.Fatal(err)
	}

	got, err := NewStore(db, nil).Bootstrap(ctx)
	if err != nil || got != "legacykey1234" {
		t.Errorf("Bootstrap() = %q, %v", got, err)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("no entropy") }

func TestBootstrapRandFailure(t *testing.T) {
	s := NewStore(openDB(t), nil)
	s.rand = failingReader{}
	if _, err := s.Bootstrap(context.Background()); err == nil {
		t.Error("expected error when the random source fails")
	}
}

func TestGenerateKeyVaries(t *testing.T) {
	seen := map[string]bool{}
	for range 20 {
		k, err := generateKey(cryptoReader())
		if err != nil {
			t.Fatal(err)
		}
		seen[k] = true
	}
	if len(seen) < 20 {
		t.Errorf("only %d distinct keys in 20", len(seen))
	}
}

func cryptoReader() io.Reader { return rand.Reader }
