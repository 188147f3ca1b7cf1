// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package platform resolves OS-specific defaults: where config lives and
// where a GeoIP database directory is likely to be found absent an explicit
// override.
package platform

import (
	"runtime"
)

// Platform defines the interface for platform-specific path resolution.
type Platform interface {
	GetConfigDir() string
	GetTempDir() string
	NormalizePath(path string) string
	IsAbsolutePath(path string) bool
	// GeoIPSearchPath returns, in priority order, the directories this
	// platform conventionally installs a GeoIP database into.
	GeoIPSearchPath() []string
}

// GetPlatform returns the appropriate platform implementation for the current OS.
func GetPlatform() Platform {
	switch runtime.GOOS {
	case "windows":
		return &WindowsPlatform{}
	default:
		return &UnixPlatform{}
	}
}

// IsWindows returns true if running on Windows.
func IsWindows() bool {
	return runtime.GOOS == "windows"
}
