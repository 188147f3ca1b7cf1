// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package geoprovider defines the polymorphic geolocation lookup backend
// (Provider) and the Provider Registry that selects and initializes one.
package geoprovider

import (
	"fmt"
	"io"
	"net/netip"

	"geoipsed/internal/template"
)

// Provider is a stateful lookup backend with lifecycle
// uninitialized -> initialized(path) -> queryable. Once Initialize
// succeeds, a Provider is immutable and safe for concurrent read access.
type Provider interface {
	// Name is the provider's unique registry key.
	Name() string
	// DefaultPath returns the directory this provider's database is
	// conventionally installed into, used when no override is given.
	DefaultPath() string
	// RequiredFiles lists the database file names Initialize looks for.
	RequiredFiles() []string
	// AvailableFields lists every template field name this provider can
	// populate.
	AvailableFields() []string
	// Initialize opens the provider's database files from dir. It is the
	// only method that reports a database error; WriteLookup returns only
	// errors from writing to its sink.
	Initialize(dir string) error
	// Lookup renders tmpl against addr's field table and returns an owned
	// string.
	Lookup(addr netip.Addr, literal string, tmpl *template.Template) string
	// WriteLookup renders tmpl directly into w, avoiding Lookup's
	// allocation; preferred on hot paths.
	WriteLookup(w io.Writer, addr netip.Addr, literal string, tmpl *template.Template) error
	// HasASN reports whether the provider can supply a meaningful
	// autonomous-system number for addr.
	HasASN(addr netip.Addr) bool
}

// DatabaseNotFoundError is returned by Initialize when none of
// RequiredFiles() could be opened at the resolved path.
type DatabaseNotFoundError struct {
	Provider string
	Path     string
}

func (e *DatabaseNotFoundError) Error() string {
	return fmt.Sprintf("geoprovider: no database for %q found at %q", e.Provider, e.Path)
}

// UnknownProviderError is returned by SetActive for an unregistered name.
type UnknownProviderError struct {
	Name string
}

func (e *UnknownProviderError) Error() string {
	return fmt.Sprintf("geoprovider: unknown provider %q", e.Name)
}

// ProviderNotInitializedError is returned when a query method is called
// before InitializeActive succeeds.
type ProviderNotInitializedError struct {
	Name string
}

func (e *ProviderNotInitializedError) Error() string {
	return fmt.Sprintf("geoprovider: provider %q is not initialized", e.Name)
}
