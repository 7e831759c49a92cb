package storage

import (
	"fmt"
	"sort"
	"sync"

	"github.com/kbukum/voicegate/logger"
)

// Factory builds a Storage from config.
type Factory func(cfg Config, log *logger.Logger) (Storage, error)

var (
	factoriesMu sync.RWMutex
	factories   = map[string]Factory{}
)

// RegisterFactory makes a backend available under provider.
func RegisterFactory(provider string, f Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[provider] = f
}

// New builds the backend cfg.Provider names.
func New(cfg Config, log *logger.Logger) (Storage, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	factoriesMu.RLock()
	f, ok := factories[cfg.Provider]
	factoriesMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("storage: provider %q not registered (known: %v)", cfg.Provider, providers())
	}
	return f(cfg, log)
}

func providers() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	names := make([]string, 0, len(factories))
	for n := range factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
