package component

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kbukum/voicegate/logger"
)

const defaultStopTimeout = 10 * time.Second

type entry struct {
	component Component
	started   bool
}

// Registry starts components in registration order and stops them in
// reverse. Register dependencies first.
type Registry struct {
	mu          sync.RWMutex
	entries     []*entry
	byName      map[string]*entry
	stopTimeout time.Duration
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byName:      make(map[string]*entry),
		stopTimeout: defaultStopTimeout,
	}
}

// Register adds c. Names must be unique.
func (r *Registry) Register(c Component) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := c.Name()
	if _, ok := r.byName[name]; ok {
		return fmt.Errorf("component %s already registered", name)
	}
	e := &entry{component: c}
	r.entries = append(r.entries, e)
	r.byName[name] = e

	logger.Debug("Component registered", logger.Fields(logger.FieldComponent, name))
	return nil
}

// StartAll starts every component and stops at the first failure. Components
// started before the failure stay started so StopAll can release them.
func (r *Registry) StartAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	logger.Info("Starting components", logger.Fields("count", len(r.entries)))
	for _, e := range r.entries {
		name := e.component.Name()
		if err := e.component.Start(ctx); err != nil {
			logger.Error("Component start failed", logger.Fields(logger.FieldComponent, name, logger.FieldError, err))
			return fmt.Errorf("start %s: %w", name, err)
		}
		e.started = true
		logger.Debug("Component started", logger.Fields(logger.FieldComponent, name))
	}
	return nil
}

// StopAll stops started components in reverse order, giving each its own
// timeout, and joins every stop error.
func (r *Registry) StopAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for i := len(r.entries) - 1; i >= 0; i-- {
		e := r.entries[i]
		if !e.started {
			continue
		}
		name := e.component.Name()
		stopCtx, cancel := context.WithTimeout(ctx, r.stopTimeout)
		err := e.component.Stop(stopCtx)
		cancel()
		e.started = false
		if err != nil {
			logger.Error("Component stop failed", logger.Fields(logger.FieldComponent, name, logger.FieldError, err))
			errs = append(errs, fmt.Errorf("stop %s: %w", name, err))
			continue
		}
		logger.Info("Component stopped", logger.Fields(logger.FieldComponent, name))
	}
	return errors.Join(errs...)
}

// HealthAll returns every component's health in registration order.
func (r *Registry) HealthAll(ctx context.Context) []Health {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Health, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.component.Health(ctx))
	}
	return out
}

// Get returns the named component or nil.
func (r *Registry) Get(name string) Component {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if e, ok := r.byName[name]; ok {
		return e.component
	}
	return nil
}

// All returns components in registration order.
func (r *Registry) All() []Component {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Component, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.component)
	}
	return out
}

// Descriptions collects Describe() from components that implement it.
func (r *Registry) Descriptions() []Description {
	var out []Description
	for _, c := range r.All() {
		d, ok := c.(Describable)
		if !ok {
			continue
		}
		desc := d.Describe()
		if desc.Name == "" {
			desc.Name = c.Name()
		}
		out = append(out, desc)
	}
	return out
}

// Routes collects routes from components that implement RouteProvider.
func (r *Registry) Routes() []Route {
	var out []Route
	for _, c := range r.All() {
		if rp, ok := c.(RouteProvider); ok {
			out = append(out, rp.Routes()...)
		}
	}
	return out
}
