// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package canvas

import (
	"errors"
	"sort"
	"sync"
)

// Entry describes a registered canvas backend.
type Entry struct {
	// Name is the unique identifier for this backend.
	Name string

	// Priority determines selection order (higher = preferred).
	//   - 100: GPU-accelerated rasterizers
	//   - 10: gg software rasterizer
	//   - 5: alternative software rasterizers
	Priority int

	// Factory creates canvases.
	Factory Factory

	// Available reports whether the backend can be used on this system.
	Available func() bool
}

var defaultRegistry = NewRegistry()

// Registry maps backend names to canvas factories.
//
// Backends register into the default registry from init. Tests and embedders
// that need isolation create their own with NewRegistry.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*Entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*Entry)}
}

// Default returns the process-wide registry that backends register into.
func Default() *Registry { return defaultRegistry }

// Register adds a backend to the default registry.
// A nil available function means always available.
// Registering an existing name replaces the previous entry.
func Register(name string, priority int, factory Factory, available func() bool) {
	defaultRegistry.Register(name, priority, factory, available)
}

// Unregister removes a backend from the default registry.
func Unregister(name string) {
	defaultRegistry.Unregister(name)
}

// List returns every registered backend name, highest priority first.
func List() []string {
	return defaultRegistry.List()
}

// New creates a canvas with the named backend of the default registry.
func New(name string, width, height int) (Canvas, error) {
	return defaultRegistry.New(name, width, height)
}

// NewBest creates a canvas with the best available backend.
func NewBest(width, height int) (Canvas, error) {
	return defaultRegistry.NewBest(width, height)
}

// Register adds a backend to this registry.
func (r *Registry) Register(name string, priority int, factory Factory, available func() bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.entries == nil {
		r.entries = make(map[string]*Entry)
	}
	if available == nil {
		available = func() bool { return true }
	}
	r.entries[name] = &Entry{
		Name:      name,
		Priority:  priority,
		Factory:   factory,
		Available: available,
	}
}

// Unregister removes a backend from this registry.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.entries, name)
}

// List returns all registered names sorted by priority.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sortedNames(false)
}

// Available returns the names of available backends sorted by priority.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sortedNames(true)
}

// Factory returns the factory registered under name.
func (r *Registry) Factory(name string) (Factory, error) {
	r.mu.RLock()
	e, ok := r.entries[name]
	r.mu.RUnlock()

	if !ok {
		return nil, &BackendNotFoundError{Name: name}
	}
	if !e.Available() {
		return nil, &BackendUnavailableError{Name: name}
	}
	return e.Factory, nil
}

// Best returns the name and factory of the highest-priority available backend.
func (r *Registry) Best() (string, Factory, error) {
	r.mu.RLock()
	names := r.sortedNames(true)
	r.mu.RUnlock()

	if len(names) == 0 {
		return "", nil, ErrNoBackendAvailable
	}
	f, err := r.Factory(names[0])
	return names[0], f, err
}

// New creates a canvas with the named backend.
func (r *Registry) New(name string, width, height int) (Canvas, error) {
	f, err := r.Factory(name)
	if err != nil {
		return nil, err
	}
	return f(width, height)
}

// NewBest creates a canvas with the first available backend that succeeds.
func (r *Registry) NewBest(width, height int) (Canvas, error) {
	r.mu.RLock()
	names := r.sortedNames(true)
	r.mu.RUnlock()

	var lastErr error
	for _, name := range names {
		c, err := r.New(name, width, height)
		if err == nil {
			return c, nil
		}
		lastErr = err
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, ErrNoBackendAvailable
}

// sortedNames returns names by descending priority, ties broken by name.
// Must be called with the lock held.
func (r *Registry) sortedNames(onlyAvailable bool) []string {
	if len(r.entries) == 0 {
		return nil
	}
	entries := make([]*Entry, 0, len(r.entries))
	for _, e := range r.entries {
		if onlyAvailable && !e.Available() {
			continue
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Priority != entries[j].Priority {
			return entries[i].Priority > entries[j].Priority
		}
		return entries[i].Name < entries[j].Name
	})
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names
}

// ErrNoBackendAvailable is returned when no canvas backend is registered or
// available.
var ErrNoBackendAvailable = errors.New("canvas: no backend available")

// BackendNotFoundError indicates a named backend is not registered.
type BackendNotFoundError struct {
	Name string
}

func (e *BackendNotFoundError) Error() string {
	return "canvas: backend not found: " + e.Name
}

// BackendUnavailableError indicates a backend exists but is not available.
type BackendUnavailableError struct {
	Name string
}

func (e *BackendUnavailableError) Error() string {
	return "canvas: backend unavailable: " + e.Name
}
