// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Command geoipsed decorates IP addresses found in a stream with
// geolocation metadata, sed-style: read stdin or files, find addresses,
// render a template against each, and write the result back out.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"geoipsed/internal/config"
	"geoipsed/internal/extractor"
	"geoipsed/internal/geoprovider"
	"geoipsed/internal/geoprovider/maxmind"
	"geoipsed/internal/help"
	"geoipsed/internal/observability"
	"geoipsed/internal/paths"
	"geoipsed/internal/template"
	"geoipsed/internal/transform"
	"geoipsed/internal/version"
)

// colorWrapPrefix/colorWrapSuffix bracket a template in red SGR codes when
// -C always is in effect, matching the canonical provider's own highlight
// convention.
const (
	colorWrapPrefix = "\x1b[1;31m"
	colorWrapSuffix = "\x1b[0;0m"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

type cliFlags struct {
	onlyMatching bool
	tag          bool
	tagFiles     bool
	justIPs      bool
	templateFmt  string
	colorMode    string
	noColor      bool
	all          bool
	noPrivate    bool
	noLoopback   bool
	noBroadcast  bool
	onlyRoutable bool
	provider     string
	geoipDir     string
	configPath   string
	profile      string
	listProv     bool
	listTmpl     bool
	debug        bool
	showVersion  bool
	showHelp     bool
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var f cliFlags
	fs := flag.NewFlagSet("geoipsed", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.BoolVar(&f.onlyMatching, "only-matching", false, "")
	fs.BoolVar(&f.onlyMatching, "o", false, "")
	fs.BoolVar(&f.tag, "tag", false, "")
	fs.BoolVar(&f.tagFiles, "tag-files", false, "")
	fs.BoolVar(&f.justIPs, "justips", false, "")
	fs.BoolVar(&f.justIPs, "j", false, "")
	fs.StringVar(&f.templateFmt, "template", "", "")
	fs.StringVar(&f.templateFmt, "t", "", "")
	fs.StringVar(&f.colorMode, "color", "", "")
	fs.StringVar(&f.colorMode, "C", "", "")
	fs.BoolVar(&f.noColor, "no-color", false, "")
	fs.BoolVar(&f.all, "all", false, "")
	fs.BoolVar(&f.noPrivate, "no-private", false, "")
	fs.BoolVar(&f.noLoopback, "no-loopback", false, "")
	fs.BoolVar(&f.noBroadcast, "no-broadcast", false, "")
	fs.BoolVar(&f.onlyRoutable, "only-routable", false, "")
	fs.StringVar(&f.provider, "provider", "", "")
	fs.StringVar(&f.geoipDir, "geoip-dir", "", "")
	fs.StringVar(&f.geoipDir, "I", "", "")
	fs.StringVar(&f.configPath, "config", "", "")
	fs.StringVar(&f.profile, "profile", "", "")
	fs.BoolVar(&f.listProv, "list-providers", false, "")
	fs.BoolVar(&f.listTmpl, "list-templates", false, "")
	fs.BoolVar(&f.debug, "debug", false, "")
	fs.BoolVar(&f.showVersion, "version", false, "")
	fs.BoolVar(&f.showHelp, "help", false, "")

	fs.Usage = func() { help.NewSystem(false).ShowGeneralHelp() }

	if err := fs.Parse(args); err != nil {
		return 1
	}

	if f.showHelp {
		help.NewSystem(f.noColor).ShowGeneralHelp()
		return 0
	}
	if f.showVersion {
		fmt.Fprintln(stdout, version.Info())
		return 0
	}

	cfg := config.LoadConfigOrDefault(f.configPath)
	settings := cfg.Defaults
	if f.profile != "" {
		profile, ok := cfg.GetProfile(f.profile)
		if !ok {
			fmt.Fprintf(stderr, "geoipsed: unknown profile %q\n", f.profile)
			return 1
		}
		settings = mergeProfile(settings, profile.Settings)
	}

	hs := help.NewSystem(f.noColor || settings.Color == "never")
	registry := geoprovider.NewRegistry()
	registry.Register(maxmind.New())

	if f.listProv {
		hs.ShowListProviders(registry)
		return 0
	}
	if f.listTmpl {
		hs.ShowListTemplates(cfg)
		return 0
	}

	var obs *observability.DebugObserver
	if f.debug {
		obs = observability.NewDebugObserver(stderr)
	}

	providerName := firstNonEmpty(f.provider, settings.Provider, config.DefaultProvider)
	if err := registry.SetActive(providerName); err != nil {
		fmt.Fprintf(stderr, "geoipsed: %v\n", err)
		return 1
	}

	geoipDir := firstNonEmpty(f.geoipDir, settings.GeoIPDir)
	resolvedDir, legacyUsed := paths.GeoIPDir(geoipDir)
	if legacyUsed {
		fmt.Fprintln(stderr, "geoipsed: MAXMIND_MMDB_DIR is deprecated, use GEOIPSED_MMDB_DIR instead")
	}
	if obs != nil {
		done := obs.StartStep("geoprovider", "initialize", resolvedDir)
		err := registry.InitializeActive(resolvedDir)
		done(err == nil, providerName)
		if err != nil {
			fmt.Fprintf(stderr, "geoipsed: %v\n", err)
			return 1
		}
	} else if err := registry.InitializeActive(resolvedDir); err != nil {
		fmt.Fprintf(stderr, "geoipsed: %v\n", err)
		return 1
	}

	templateFmt := firstNonEmpty(f.templateFmt, settings.Template, config.DefaultTemplate)

	colorMode := firstNonEmpty(f.colorMode, settings.Color, "auto")
	if f.noColor {
		colorMode = "never"
	}
	if shouldColor(colorMode, stdout) {
		templateFmt = colorWrapPrefix + templateFmt + colorWrapSuffix
	}

	tmpl, err := template.Compile(templateFmt)
	if err != nil {
		fmt.Fprintf(stderr, "geoipsed: invalid template: %v\n", err)
		return 1
	}

	ex, err := buildExtractor(f, settings)
	if err != nil {
		fmt.Fprintf(stderr, "geoipsed: %v\n", err)
		return 1
	}

	mode := resolveMode(f)
	onlyRoutable := f.onlyRoutable || settings.OnlyRoutable

	if obs != nil {
		obs.LogDetail("template", tmpl.String())
		obs.LogMetric("template", "fields", len(tmpl.Fields()))
		obs.LogDetail("transform", modeName(mode))
	}

	tr := transform.New(ex, registry, tmpl, transform.Options{Mode: mode, OnlyRoutable: onlyRoutable})

	files := fs.Args()
	if len(files) == 0 {
		files = []string{"-"}
	}

	for _, name := range files {
		if err := processFile(tr, name, stdin, stdout, obs); err != nil {
			if transform.IsBrokenPipe(err) {
				return 0
			}
			fmt.Fprintf(stderr, "geoipsed: %s: %v\n", name, err)
			return 1
		}
	}
	return 0
}

func processFile(tr *transform.Transformer, name string, stdin io.Reader, stdout io.Writer, obs *observability.DebugObserver) error {
	var r io.Reader
	if name == "-" || name == "" {
		r = stdin
	} else {
		file, err := os.Open(name)
		if err != nil {
			return err
		}
		defer file.Close()
		r = file
	}

	if obs != nil {
		done := obs.StartStep("transform", "process", name)
		err := tr.Run(r, stdout)
		done(err == nil, "")
		return err
	}
	return tr.Run(r, stdout)
}

// buildExtractor wires CLI flags and config settings into an
// extractor.Builder. The CLI's own default is --all (include every special
// category), opt out with --no-private/--no-loopback/--no-broadcast — the
// opposite of the library's own exclude-by-default Builder.
func buildExtractor(f cliFlags, settings config.Settings) (*extractor.Extractor, error) {
	b := extractor.NewBuilder()
	if f.all || settings.IncludeAll {
		b.All()
	}

	if f.noPrivate || settings.NoPrivate {
		b.IgnorePrivate()
	}
	if f.noLoopback || settings.NoLoopback {
		b.IgnoreLoopback()
	}
	if f.noBroadcast || settings.NoBroadcast {
		b.IgnoreBroadcast()
	}
	return b.Build()
}

func resolveMode(f cliFlags) transform.Mode {
	switch {
	case f.tagFiles:
		return transform.ModeTagFiles
	case f.tag:
		return transform.ModeTag
	case f.justIPs:
		return transform.ModeExtract
	case f.onlyMatching:
		return transform.ModeOnlyMatching
	default:
		return transform.ModeDecorate
	}
}

func modeName(m transform.Mode) string {
	switch m {
	case transform.ModeOnlyMatching:
		return "only-matching"
	case transform.ModeTag:
		return "tag"
	case transform.ModeTagFiles:
		return "tag-files"
	case transform.ModeExtract:
		return "extract"
	default:
		return "decorate"
	}
}

func shouldColor(mode string, stdout io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default:
		f, ok := stdout.(*os.File)
		return ok && term.IsTerminal(int(f.Fd()))
	}
}

func mergeProfile(base config.Settings, override config.Settings) config.Settings {
	merged := base
	if override.Template != "" {
		merged.Template = override.Template
	}
	if override.Provider != "" {
		merged.Provider = override.Provider
	}
	if override.Color != "" {
		merged.Color = override.Color
	}
	if override.GeoIPDir != "" {
		merged.GeoIPDir = override.GeoIPDir
	}
	// Booleans have no "unset" state in YAML; selecting a profile at all
	// is assumed to mean every boolean it carries, same as config's own
	// file-over-defaults merge.
	merged.IncludeAll = override.IncludeAll
	merged.NoPrivate = override.NoPrivate
	merged.NoLoopback = override.NoLoopback
	merged.NoBroadcast = override.NoBroadcast
	merged.OnlyRoutable = override.OnlyRoutable
	return merged
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
