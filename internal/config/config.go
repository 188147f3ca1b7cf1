// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package config loads geoipsed's optional YAML configuration file: a set
// of defaults plus named profiles a user can select with --profile instead
// of respecifying flags. Absent any config file, every Default matches the
// CLI's own built-in defaults — config is additive, never required.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"geoipsed/internal/paths"
)

// DefaultTemplate is the canonical provider's default decoration format.
const DefaultTemplate = "<{ip}|AS{asnnum}_{asnorg}|{country_iso}|{city}>"

// DefaultProvider is the name of the provider selected absent --provider.
const DefaultProvider = "maxmind"

// Settings is the bundle of knobs shared by Config.Defaults and each
// Profile.
type Settings struct {
	Template     string `yaml:"template"`
	Provider     string `yaml:"provider"`
	Color        string `yaml:"color"` // "auto", "always", or "never"
	IncludeAll   bool   `yaml:"include_all"`
	NoPrivate    bool   `yaml:"no_private"`
	NoLoopback   bool   `yaml:"no_loopback"`
	NoBroadcast  bool   `yaml:"no_broadcast"`
	OnlyRoutable bool   `yaml:"only_routable"`
	GeoIPDir     string `yaml:"geoip_dir"`
}

// Profile is a named Settings bundle, selectable with --profile.
type Profile struct {
	Settings    `yaml:",inline"`
	Description string `yaml:"description"`
}

// Config is the top-level configuration document.
type Config struct {
	Defaults Settings           `yaml:"defaults"`
	Profiles map[string]Profile `yaml:"profiles"`
}

// defaultSettings returns the CLI's built-in defaults, used both as
// Config.Defaults when no file is present and as the base every loaded
// file is merged over.
func defaultSettings() Settings {
	return Settings{
		Template:   DefaultTemplate,
		Provider:   DefaultProvider,
		Color:      "auto",
		IncludeAll: true,
	}
}

// LoadConfig loads configuration from configPath. An empty configPath
// returns the built-in defaults with no profiles.
func LoadConfig(configPath string) (*Config, error) {
	cfg := &Config{
		Defaults: defaultSettings(),
		Profiles: make(map[string]Profile),
	}
	if configPath == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", configPath, err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", configPath, err)
	}

	cfg.Defaults = mergeSettings(cfg.Defaults, fileCfg.Defaults)
	if fileCfg.Profiles != nil {
		cfg.Profiles = fileCfg.Profiles
	}
	return cfg, nil
}

// mergeSettings overlays override onto base: an empty string field in
// override leaves base's value in place, so a config file need only
// mention the string settings it wants to change. Boolean fields are
// always taken from override.
func mergeSettings(base, override Settings) Settings {
	if override.Template != "" {
		base.Template = override.Template
	}
	if override.Provider != "" {
		base.Provider = override.Provider
	}
	if override.Color != "" {
		base.Color = override.Color
	}
	if override.GeoIPDir != "" {
		base.GeoIPDir = override.GeoIPDir
	}
	// Booleans have no "unset" state in YAML; every loaded config file is
	// taken to mean every boolean its defaults section carries, so a file
	// that omits include_all (or has no defaults section) turns it off.
	base.IncludeAll = override.IncludeAll
	base.NoPrivate = override.NoPrivate
	base.NoLoopback = override.NoLoopback
	base.NoBroadcast = override.NoBroadcast
	base.OnlyRoutable = override.OnlyRoutable
	return base
}

// FindConfigFile searches the standard locations for a config file and
// returns the first one found, or "" if none exist.
func FindConfigFile() string {
	return paths.FindConfigFile()
}

// LoadConfigOrDefault loads configuration from configFile (or searches
// standard locations when configFile is empty). If loading fails, it
// returns the built-in defaults rather than failing the whole run.
func LoadConfigOrDefault(configFile string) *Config {
	configPath := configFile
	if configPath == "" {
		configPath = FindConfigFile()
	}
	cfg, err := LoadConfig(configPath)
	if err != nil {
		cfg, _ = LoadConfig("")
	}
	return cfg
}

// GetProfile returns a profile by name and whether it exists.
func (c *Config) GetProfile(name string) (Profile, bool) {
	p, ok := c.Profiles[name]
	return p, ok
}

// ProfileNames returns every configured profile name.
func (c *Config) ProfileNames() []string {
	names := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		names = append(names, name)
	}
	return names
}
