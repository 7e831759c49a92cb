package adminkey

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/kbukum/voicegate/database"
)

func TestComponent(t *testing.T) {
	ctx := context.Background()
	db := database.NewComponent(database.Config{DSN: "file:" + filepath.Join(t.TempDir(), "keys.db")}, nil).
		WithMigrations(Migrations, "migrations")
	c := NewComponent(db, nil)

	if err := c.Start(ctx); err == nil {
		t.Fatal("Start() before the database succeeded")
	}
	if _, err := c.Validator().ValidateToken(ctx, ""); err == nil {
		t.Error("validator accepted a token before start")
	}

	if err := db.Start(ctx); err != nil {
		t.Fatalf("database Start() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Stop(ctx) })
	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !c.Health(ctx).Healthy() {
		t.Errorf("Health() = %+v", c.Health(ctx))
	}

	user, err := c.Validator().ValidateToken(ctx, c.Key())
	if err != nil || !user.IsAdmin() {
		t.Errorf("ValidateToken(key) = %+v, %v", user, err)
	}
	if _, err := c.Validator().ValidateToken(ctx, c.Key()+"x"); err == nil {
		t.Error("validator accepted a wrong key")
	}
	if d := c.Describe(); d.Details == c.Key() {
		t.Error("Describe() leaked the key")
	}
}
