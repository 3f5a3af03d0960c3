// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package backend

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Factory creates a Generator with the given options.
type Factory func(opts Options) (Generator, error)

// ErrNoBackendAvailable is returned when no backend is registered or usable.
var ErrNoBackendAvailable = errors.New("backend: no backend available")

// NotFoundError indicates a named backend is not registered.
type NotFoundError struct {
	Name  string
	Known []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("backend: not found: %s (have %s)", e.Name, strings.Join(e.Known, ", "))
}

// UnavailableError indicates a backend is registered but cannot run here.
type UnavailableError struct {
	Name string
}

func (e *UnavailableError) Error() string {
	return "backend: unavailable: " + e.Name
}

type entry struct {
	name      string
	priority  int
	factory   Factory
	available func() bool
}

// Registry holds the generation backends a Module can pick from, ordered
// by priority (highest first, ties by name).
type Registry struct {
	mu      sync.RWMutex
	entries []entry
}

var defaultRegistry Registry

// Register adds a backend to the default registry. A nil available means
// always available; registering an existing name replaces it.
func Register(name string, priority int, factory Factory, available func() bool) {
	defaultRegistry.Register(name, priority, factory, available)
}

// Names lists the backends of the default registry in selection order.
func Names() []string { return defaultRegistry.Names() }

// New creates a generator from the best usable backend of the default
// registry.
func New(opts Options) (Generator, error) { return defaultRegistry.New(opts) }

// NewByName creates a generator from the named backend of the default
// registry.
func NewByName(name string, opts Options) (Generator, error) {
	return defaultRegistry.NewByName(name, opts)
}

// Register adds a backend to r.
func (r *Registry) Register(name string, priority int, factory Factory, available func() bool) {
	if available == nil {
		available = func() bool { return true }
	}
	e := entry{name: name, priority: priority, factory: factory, available: available}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = slices.DeleteFunc(r.entries, func(o entry) bool { return o.name == name })
	r.entries = append(r.entries, e)
	slices.SortStableFunc(r.entries, func(a, b entry) int {
		if c := cmp.Compare(b.priority, a.priority); c != 0 {
			return c
		}
		return cmp.Compare(a.name, b.name)
	})
}

// Names lists every registered backend in selection order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.entries))
	for i, e := range r.entries {
		names[i] = e.name
	}
	return names
}

// New tries the usable backends in selection order and returns the first
// generator a factory produces. Factory errors are joined when all fail.
func (r *Registry) New(opts Options) (Generator, error) {
	r.mu.RLock()
	entries := slices.Clone(r.entries)
	r.mu.RUnlock()

	var errs []error
	for _, e := range entries {
		if !e.available() {
			continue
		}
		g, err := e.factory(opts)
		if err == nil {
			return g, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", e.name, err))
	}
	if len(errs) == 0 {
		return nil, ErrNoBackendAvailable
	}
	return nil, errors.Join(errs...)
}

// NewByName creates a generator from the named backend.
func (r *Registry) NewByName(name string, opts Options) (Generator, error) {
	r.mu.RLock()
	i := slices.IndexFunc(r.entries, func(e entry) bool { return e.name == name })
	var e entry
	if i >= 0 {
		e = r.entries[i]
	}
	r.mu.RUnlock()

	switch {
	case i < 0:
		return nil, &NotFoundError{Name: name, Known: r.Names()}
	case !e.available():
		return nil, &UnavailableError{Name: name}
	}
	return e.factory(opts)
}

func init() {
	Register("exec", 10, func(opts Options) (Generator, error) {
		return NewExec(opts), nil
	}, nil)
}
