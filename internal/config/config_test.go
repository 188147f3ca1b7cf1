// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultTemplate, cfg.Defaults.Template)
	assert.Equal(t, DefaultProvider, cfg.Defaults.Provider)
	assert.True(t, cfg.Defaults.IncludeAll)
	assert.Empty(t, cfg.Profiles)
}

func TestLoadConfigMergesOverFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "geoipsed.yaml")
	contents := `
defaults:
  color: never
  no_private: true
profiles:
  soc:
    template: "{ip} {country_iso}"
    description: "compact SOC feed"
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "never", cfg.Defaults.Color)
	assert.True(t, cfg.Defaults.NoPrivate)
	// Untouched default string fields survive the merge.
	assert.Equal(t, DefaultTemplate, cfg.Defaults.Template)

	profile, ok := cfg.GetProfile("soc")
	require.True(t, ok)
	assert.Equal(t, "{ip} {country_iso}", profile.Template)
	assert.Equal(t, "compact SOC feed", profile.Description)
}

func TestLoadConfigMissingFileErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	assert.Error(t, err)
}

func TestLoadConfigOrDefaultFallsBackOnError(t *testing.T) {
	cfg := LoadConfigOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Equal(t, DefaultTemplate, cfg.Defaults.Template)
}
