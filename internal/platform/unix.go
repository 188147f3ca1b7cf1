// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package platform

import (
	"os"
	"path/filepath"
)

// UnixPlatform implements Platform for Unix-like systems (Linux, macOS, etc.)
type UnixPlatform struct{}

// GetConfigDir returns the Unix-appropriate configuration directory.
func (u *UnixPlatform) GetConfigDir() string {
	if dir := os.Getenv("GEOIPSED_CONFIG_DIR"); dir != "" {
		return dir
	}
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "geoipsed")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "geoipsed")
}

// GetTempDir returns the Unix temporary directory.
func (u *UnixPlatform) GetTempDir() string {
	if tmpDir := os.Getenv("TMPDIR"); tmpDir != "" {
		return tmpDir
	}
	return "/tmp"
}

// IsAbsolutePath checks if a path is absolute on Unix.
func (u *UnixPlatform) IsAbsolutePath(path string) bool {
	return filepath.IsAbs(path)
}

// NormalizePath normalizes a path for Unix.
func (u *UnixPlatform) NormalizePath(path string) string {
	return filepath.Clean(path)
}

// GeoIPSearchPath returns the conventional GeoIP install directories on Unix,
// matching the upstream geoipsed default_path() search order.
func (u *UnixPlatform) GeoIPSearchPath() []string {
	return []string{
		"/usr/share/GeoIP",
		"/opt/homebrew/var/GeoIP",
		"/usr/local/var/GeoIP",
		"/var/lib/GeoIP",
	}
}
