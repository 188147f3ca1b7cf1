// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package geoprovider

import (
	"io"
	"net/netip"
	"sort"
	"sync"

	"geoipsed/internal/template"
)

type entry struct {
	provider    Provider
	once        sync.Once
	initErr     error
	initialized bool
}

// Registry maps provider names to Providers and tracks a single active
// selection. Register/SetActive/InitializeActive are safe for concurrent
// use; at most one Initialize call per provider is ever in flight, even
// under concurrent InitializeActive calls racing on the same name.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry
	active  string
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*entry)}
}

// Register inserts a provider, overwriting any earlier registration under
// the same name.
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[p.Name()] = &entry{provider: p}
}

// Names returns every registered provider name, sorted.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetActive selects the active provider by name.
func (r *Registry) SetActive(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[name]; !ok {
		return &UnknownProviderError{Name: name}
	}
	r.active = name
	return nil
}

// InitializeActive resolves dirOverride (or the active provider's
// DefaultPath if empty) and initializes the active provider exactly once.
func (r *Registry) InitializeActive(dirOverride string) error {
	r.mu.Lock()
	e, ok := r.entries[r.active]
	active := r.active
	r.mu.Unlock()
	if !ok {
		return &UnknownProviderError{Name: active}
	}

	dir := dirOverride
	if dir == "" {
		dir = e.provider.DefaultPath()
	}

	e.once.Do(func() {
		e.initErr = e.provider.Initialize(dir)
		e.initialized = e.initErr == nil
	})
	return e.initErr
}

// activeEntry returns the active provider's entry, failing if unselected
// or uninitialized.
func (r *Registry) activeEntry() (*entry, error) {
	r.mu.Lock()
	e, ok := r.entries[r.active]
	active := r.active
	r.mu.Unlock()
	if !ok {
		return nil, &UnknownProviderError{Name: active}
	}
	if !e.initialized {
		return nil, &ProviderNotInitializedError{Name: active}
	}
	return e, nil
}

// AvailableFields delegates to the active provider.
func (r *Registry) AvailableFields() ([]string, error) {
	e, err := r.activeEntry()
	if err != nil {
		return nil, err
	}
	return e.provider.AvailableFields(), nil
}

// Lookup delegates to the active provider.
func (r *Registry) Lookup(addr netip.Addr, literal string, tmpl *template.Template) (string, error) {
	e, err := r.activeEntry()
	if err != nil {
		return "", err
	}
	return e.provider.Lookup(addr, literal, tmpl), nil
}

// WriteLookup delegates to the active provider.
func (r *Registry) WriteLookup(w io.Writer, addr netip.Addr, literal string, tmpl *template.Template) error {
	e, err := r.activeEntry()
	if err != nil {
		return err
	}
	return e.provider.WriteLookup(w, addr, literal, tmpl)
}

// HasASN delegates to the active provider.
func (r *Registry) HasASN(addr netip.Addr) (bool, error) {
	e, err := r.activeEntry()
	if err != nil {
		return false, err
	}
	return e.provider.HasASN(addr), nil
}

// ActiveName returns the currently selected provider name, or "" if none.
func (r *Registry) ActiveName() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// IsInitialized reports whether name has already completed a successful
// Initialize call. It never triggers initialization itself.
func (r *Registry) IsInitialized(name string) bool {
	r.mu.Lock()
	e, ok := r.entries[name]
	r.mu.Unlock()
	return ok && e.initialized
}

// Fields returns the AvailableFields for name without requiring it to be
// the active or an initialized provider, for use by --list-providers.
func (r *Registry) Fields(name string) ([]string, error) {
	r.mu.Lock()
	e, ok := r.entries[name]
	r.mu.Unlock()
	if !ok {
		return nil, &UnknownProviderError{Name: name}
	}
	return e.provider.AvailableFields(), nil
}
