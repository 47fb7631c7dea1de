// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package backend keeps the named providers that can be installed into a
// dispatch table.
package backend

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"code.hybscloud.com/uarray"
)

var (
	ErrAlreadyRegistered = errors.New("backend: already registered")
	ErrUnknown           = errors.New("backend: unknown backend")
	ErrInvalid           = errors.New("backend: invalid backend")
)

// Backend is a provider: a name and a function that registers its handlers
// into a table.
type Backend struct {
	Name        string
	Description string
	Install     func(t *uarray.Table) error
}

// Validate checks that b can be registered.
func (b *Backend) Validate() error {
	if b.Name == "" {
		return fmt.Errorf("%w: name required", ErrInvalid)
	}
	if b.Install == nil {
		return fmt.Errorf("%w: %s has no install function", ErrInvalid, b.Name)
	}
	return nil
}

// Registry holds backends by name. It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	backends map[string]*Backend
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{backends: make(map[string]*Backend)}
}

// Register adds b. It fails if a backend with the same name exists.
func (r *Registry) Register(b *Backend) error {
	if err := b.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.backends[b.Name]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, b.Name)
	}
	r.backends[b.Name] = b
	return nil
}

// MustRegister registers b and panics on error.
func (r *Registry) MustRegister(b *Backend) {
	if err := r.Register(b); err != nil {
		panic(fmt.Sprintf("failed to register backend %s: %v", b.Name, err))
	}
}

// Get returns the backend named name.
func (r *Registry) Get(name string) (*Backend, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.backends[name]
	return b, ok
}

// Names returns all backend names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.backends))
	for n := range r.backends {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Table builds a table with the named backends installed in order. A
// backend installed later is tried first for every key it shares with an
// earlier one.
func (r *Registry) Table(names ...string) (*uarray.Table, error) {
	t := uarray.NewTable()
	if err := r.InstallInto(t, names...); err != nil {
		return nil, err
	}
	return t, nil
}

// InstallInto installs the named backends into t in order.
func (r *Registry) InstallInto(t *uarray.Table, names ...string) error {
	for _, n := range names {
		b, ok := r.Get(n)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknown, n)
		}
		if err := b.Install(t); err != nil {
			return fmt.Errorf("install %s: %w", n, err)
		}
	}
	return nil
}
