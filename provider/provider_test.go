package provider

import (
	"context"
	"errors"
	"slices"
	"testing"
)

type stubProvider struct {
	name string
}

func (s *stubProvider) Name() string                         { return s.name }
func (s *stubProvider) IsAvailable(ctx context.Context) bool { return true }

func TestRegistryCreateCaches(t *testing.T) {
	r := NewRegistry[*stubProvider]()
	r.RegisterFactory("asr", func(cfg map[string]any) (*stubProvider, error) {
		return &stubProvider{name: cfg["name"].(string)}, nil
	})

	p, err := r.Create("asr", map[string]any{"name": "engine-a"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if p.Name() != "engine-a" {
		t.Errorf("Name() = %q", p.Name())
	}
	cached, ok := r.Get("asr")
	if !ok || cached != p {
		t.Errorf("Get() = %v, %v", cached, ok)
	}
}

func TestRegistryCreateErrors(t *testing.T) {
	r := NewRegistry[*stubProvider]()
	if _, err := r.Create("missing", nil); err == nil {
		t.Error("expected error for unknown provider")
	}

	errBad := errors.New("bad config")
	r.RegisterFactory("broken", func(map[string]any) (*stubProvider, error) { return nil, errBad })
	if _, err := r.Create("broken", nil); !errors.Is(err, errBad) {
		t.Errorf("Create() error = %v, want wrapped factory error", err)
	}
	if _, ok := r.Get("broken"); ok {
		t.Error("failed create must not cache")
	}
}

func TestRegistryList(t *testing.T) {
	r := NewRegistry[*stubProvider]()
	for _, n := range []string{"whisper", "asr", "elevenlabs"} {
		r.RegisterFactory(n, func(map[string]any) (*stubProvider, error) { return &stubProvider{}, nil })
	}
	if got := r.List(); !slices.Equal(got, []string{"asr", "elevenlabs", "whisper"}) {
		t.Errorf("List() = %v", got)
	}
}
