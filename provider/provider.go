package provider

import "context"

// Provider is a named backend that can report whether it is usable.
type Provider interface {
	Name() string
	IsAvailable(ctx context.Context) bool
}

// Factory builds a provider from a loosely typed config map.
type Factory[T Provider] func(cfg map[string]any) (T, error)
