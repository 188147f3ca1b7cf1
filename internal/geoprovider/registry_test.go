// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package geoprovider

import (
	"io"
	"net/netip"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geoipsed/internal/template"
)

type stubProvider struct {
	name      string
	initCalls int
	initErr   error
	mu        sync.Mutex
}

func (s *stubProvider) Name() string           { return s.name }
func (s *stubProvider) DefaultPath() string     { return "/default/" + s.name }
func (s *stubProvider) RequiredFiles() []string { return []string{"db.mmdb"} }
func (s *stubProvider) AvailableFields() []string {
	return []string{"ip"}
}
func (s *stubProvider) Initialize(dir string) error {
	s.mu.Lock()
	s.initCalls++
	s.mu.Unlock()
	return s.initErr
}
func (s *stubProvider) Lookup(addr netip.Addr, literal string, tmpl *template.Template) string {
	return tmpl.Render(func(string) string { return addr.String() })
}
func (s *stubProvider) WriteLookup(w io.Writer, addr netip.Addr, literal string, tmpl *template.Template) error {
	return tmpl.Write(w, func(string) string { return addr.String() })
}
func (s *stubProvider) HasASN(addr netip.Addr) bool { return true }

func TestRegisterAndSetActiveUnknownName(t *testing.T) {
	r := NewRegistry()
	err := r.SetActive("nope")
	var unknown *UnknownProviderError
	assert.ErrorAs(t, err, &unknown)
}

func TestInitializeActiveRunsOnlyOnce(t *testing.T) {
	p := &stubProvider{name: "stub"}
	r := NewRegistry()
	r.Register(p)
	require.NoError(t, r.SetActive("stub"))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = r.InitializeActive("")
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, p.initCalls)
	assert.True(t, r.IsInitialized("stub"))
}

func TestQueryBeforeInitializeFails(t *testing.T) {
	p := &stubProvider{name: "stub"}
	r := NewRegistry()
	r.Register(p)
	require.NoError(t, r.SetActive("stub"))

	_, err := r.Lookup(netip.MustParseAddr("1.2.3.4"), "1.2.3.4", nil)
	assert.Error(t, err)
}

func TestLookupDelegatesToActiveProvider(t *testing.T) {
	p := &stubProvider{name: "stub"}
	r := NewRegistry()
	r.Register(p)
	require.NoError(t, r.SetActive("stub"))
	require.NoError(t, r.InitializeActive("/tmp"))

	tmpl, err := template.Compile("<{ip}>")
	require.NoError(t, err)

	out, err := r.Lookup(netip.MustParseAddr("8.8.8.8"), "8.8.8.8", tmpl)
	require.NoError(t, err)
	assert.Equal(t, "<8.8.8.8>", out)
}

func TestFieldsWorksWithoutInitializing(t *testing.T) {
	p := &stubProvider{name: "stub"}
	r := NewRegistry()
	r.Register(p)

	fields, err := r.Fields("stub")
	require.NoError(t, err)
	assert.Equal(t, []string{"ip"}, fields)
}
