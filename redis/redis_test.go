package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func startComponent(t *testing.T) (*Component, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := NewComponent(Config{Enabled: true, Addr: mr.Addr()}, nil)
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() { _ = c.Stop(context.Background()) })
	return c, mr
}

func TestComponentLifecycle(t *testing.T) {
	ctx := context.Background()
	c, mr := startComponent(t)

	if h := c.Health(ctx); !h.Healthy() {
		t.Errorf("Health() = %+v", h)
	}
	mr.SetError("LOADING dataset in memory")
	if h := c.Health(ctx); h.Healthy() {
		t.Error("healthy while the server refuses commands")
	}
	mr.SetError("")
	if err := c.Stop(ctx); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
	if err := c.Stop(ctx); err != nil {
		t.Errorf("second Stop() error = %v", err)
	}
}

func TestStartUnreachable(t *testing.T) {
	c := NewComponent(Config{Enabled: true, Addr: "127.0.0.1:1", DialTimeout: 200 * time.Millisecond, MaxRetries: 1}, nil)
	if err := c.Start(context.Background()); err == nil {
		t.Fatal("Start() against a closed port succeeded")
	}
	if c.Client() != nil {
		t.Error("client kept after a failed start")
	}
}

func TestWindowCounter(t *testing.T) {
	ctx := context.Background()
	c, mr := startComponent(t)

	now := time.Unix(1700000000, 0)
	w := c.RateLimitStore()
	w.now = func() time.Time { return now }

	allow := func(key string) bool {
		t.Helper()
		ok, err := w.Allow(ctx, key, 2, time.Minute)
		if err != nil {
			t.Fatalf("Allow() error = %v", err)
		}
		return ok
	}

	if !allow("10.0.0.1") || !allow("10.0.0.1") {
		t.Fatal("first two requests rejected")
	}
	if allow("10.0.0.1") {
		t.Error("third request allowed")
	}
	if !allow("10.0.0.2") {
		t.Error("other client rejected")
	}

	keys := mr.Keys()
	if len(keys) != 2 {
		t.Fatalf("keys = %v", keys)
	}
	if ttl := mr.TTL(keys[0]); ttl <= 0 || ttl > time.Minute {
		t.Errorf("TTL(%s) = %v", keys[0], ttl)
	}
	if want := "voicegate:ratelimit:10.0.0.1:"; keys[0][:len(want)] != want {
		t.Errorf("key %q lacks prefix %q", keys[0], want)
	}

	now = now.Add(time.Minute)
	if !allow("10.0.0.1") {
		t.Error("request in the next window rejected")
	}
}

func TestWindowCounterBeforeStart(t *testing.T) {
	c := NewComponent(Config{Enabled: true}, nil)
	if _, err := c.RateLimitStore().Allow(context.Background(), "k", 1, time.Minute); err == nil {
		t.Error("Allow() before Start succeeded")
	}
}

func TestConfigValidate(t *testing.T) {
	if err := (&Config{}).Validate(); err != nil {
		t.Errorf("disabled config: %v", err)
	}
	if err := (&Config{Enabled: true, Addr: "x:1", DB: -1}).Validate(); err == nil {
		t.Error("negative db accepted")
	}
}
