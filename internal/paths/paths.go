// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package paths resolves the two filesystem locations geoipsed cares about:
// its own config file, and the GeoIP database directory.
package paths

import (
	"fmt"
	"os"
	"path/filepath"

	"geoipsed/internal/platform"
)

// GetConfigDir returns the geoipsed configuration directory.
func GetConfigDir() string {
	return platform.GetPlatform().GetConfigDir()
}

// GetConfigFile returns the path to the main config file.
func GetConfigFile() string {
	return filepath.Join(GetConfigDir(), "config.yaml")
}

// ConfigSearchPaths returns, in priority order, the locations checked for a
// config file: the current directory first (so a project-local config wins),
// then the platform config directory.
func ConfigSearchPaths() []string {
	return []string{
		"geoipsed.yaml",
		".geoipsed.yaml",
		GetConfigFile(),
	}
}

// FindConfigFile returns the first existing config file from
// ConfigSearchPaths, or "" if none exist.
func FindConfigFile() string {
	for _, p := range ConfigSearchPaths() {
		if p == "" {
			continue
		}
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

// GeoIPDir resolves the GeoIP database directory, in priority order:
//  1. explicit override (the CLI's -I flag, passed in as dirOverride)
//  2. GEOIPSED_MMDB_DIR
//  3. MAXMIND_MMDB_DIR (legacy; the caller should warn when this fires)
//  4. the first platform search path that exists on disk
//
// legacyUsed reports whether the legacy environment variable was the source,
// so the caller can emit its deprecation warning.
func GeoIPDir(dirOverride string) (dir string, legacyUsed bool) {
	if dirOverride != "" {
		return dirOverride, false
	}
	if v := os.Getenv("GEOIPSED_MMDB_DIR"); v != "" {
		return v, false
	}
	if v := os.Getenv("MAXMIND_MMDB_DIR"); v != "" {
		return v, true
	}
	for _, candidate := range platform.GetPlatform().GeoIPSearchPath() {
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, false
		}
	}
	return "", false
}

// EnsureConfigDir creates the config directory if it does not exist.
func EnsureConfigDir() error {
	dir := GetConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return nil
}
