// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package help renders geoipsed's --help, --list-providers, and
// --list-templates output.
package help

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/fatih/color"

	"geoipsed/internal/config"
	"geoipsed/internal/geoprovider"
)

// System renders help and introspection output in geoipsed's color scheme.
type System struct {
	noColor bool
	colors  map[string]*color.Color
}

// NewSystem creates a new help system. noColor disables all color output.
func NewSystem(noColor bool) *System {
	if noColor {
		color.NoColor = true
	}

	return &System{
		noColor: noColor,
		colors: map[string]*color.Color{
			"title":    color.New(color.FgWhite, color.Bold),
			"header":   color.New(color.FgBlue, color.Bold),
			"item":     color.New(color.FgCyan),
			"emphasis": color.New(color.FgWhite, color.Bold),
			"positive": color.New(color.FgGreen),
			"negative": color.New(color.FgRed),
			"example":  color.New(color.FgMagenta),
		},
	}
}

// ShowGeneralHelp prints geoipsed's usage summary.
func (h *System) ShowGeneralHelp() {
	h.colors["title"].Println("geoipsed - stream IP geolocation decorator")
	fmt.Println("===========================================")
	fmt.Println()
	h.colors["header"].Println("USAGE:")
	fmt.Println("  geoipsed [options] [file ...]")
	fmt.Println("  command | geoipsed [options]    # read from stdin")
	fmt.Println()

	h.colors["header"].Println("OPTIONS:")

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  -o, --only-matching\t\tPrint only the decorated IP addresses, one per line")
	fmt.Fprintln(w, "  --tag\t\tEmit one JSON object per line: matched text, offsets, decoration")
	fmt.Fprintln(w, "  --tag-files\t\tLike --tag, but buffers each whole input before tagging it")
	fmt.Fprintln(w, "  -j, --justips\t\tPrint only the bare matched IP addresses, undecorated")
	fmt.Fprintln(w, "  -t, --template\t<fmt>\tDecoration template, e.g. \"<{ip}|AS{asnnum}_{asnorg}>\"")
	fmt.Fprintln(w, "  -C, --color\t<mode>\tColor the decoration: auto, always, or never (default: auto)")
	fmt.Fprintln(w, "  --all\t\tInclude private, loopback, and broadcast addresses (default)")
	fmt.Fprintln(w, "  --no-private\t\tExclude RFC 1918 private addresses and IPv6 unique-local/link-local")
	fmt.Fprintln(w, "  --no-loopback\t\tExclude loopback addresses (127.0.0.0/8, ::1)")
	fmt.Fprintln(w, "  --no-broadcast\t\tExclude broadcast and link-local IPv4 (255.255.255.255, 169.254.0.0/16)")
	fmt.Fprintln(w, "  --only-routable\t\tSkip decoration for addresses with no autonomous-system number")
	fmt.Fprintln(w, "  --provider\t<name>\tGeolocation backend to use (default: maxmind)")
	fmt.Fprintln(w, "  -I, --geoip-dir\t<dir>\tDirectory containing the provider's database files")
	fmt.Fprintln(w, "  --config\t<path>\tPath to a geoipsed.yaml configuration file")
	fmt.Fprintln(w, "  --profile\t<name>\tApply a named profile from the config file")
	fmt.Fprintln(w, "  --list-providers\t\tList registered providers, their init state, and fields")
	fmt.Fprintln(w, "  --list-templates\t\tList the built-in template and any config profiles")
	fmt.Fprintln(w, "  --debug\t\tEnable step-by-step trace logging to stderr")
	fmt.Fprintln(w, "  --no-color\t\tDisable colored output (shorthand for --color never)")
	fmt.Fprintln(w, "  --version\t\tShow version information")
	fmt.Fprintln(w, "  --help\t\tShow this help message")
	w.Flush()

	fmt.Println()
	h.colors["header"].Println("EXAMPLES:")
	h.colors["example"].Println("    geoipsed access.log")
	h.colors["example"].Println("    tail -f access.log | geoipsed --only-routable")
	h.colors["example"].Println("    geoipsed --tag -t '{ip} {country_iso}' events.log")
	h.colors["example"].Println("    geoipsed --provider maxmind -I /usr/share/GeoIP --all access.log")
	h.colors["example"].Println("    geoipsed --list-providers")
	h.colors["example"].Println("    geoipsed --profile soc --config geoipsed.yaml events.log")

	fmt.Println()
	h.colors["header"].Println("CONFIGURATION:")
	fmt.Println("  Default config: ~/.config/geoipsed/config.yaml (or $GEOIPSED_CONFIG_DIR/config.yaml)")
	fmt.Println("  Project config: geoipsed.yaml or .geoipsed.yaml (in current directory)")
	fmt.Println("  GeoIP database directory: $GEOIPSED_MMDB_DIR, or the provider's platform default")
}

// ShowListProviders prints a table of every registered provider: name,
// whether it is the active selection, whether it has been initialized, and
// the template fields it can populate.
func (h *System) ShowListProviders(reg *geoprovider.Registry) {
	h.colors["title"].Println("Registered Providers")
	fmt.Println("=====================")
	fmt.Println()

	names := reg.Names()
	if len(names) == 0 {
		fmt.Println("  (none registered)")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	h.colors["header"].Fprintln(w, "  PROVIDER\tACTIVE\tINITIALIZED\tFIELDS")
	for _, name := range names {
		active := ""
		if name == reg.ActiveName() {
			active = "yes"
		}
		initState := h.colors["negative"].Sprint("no")
		if reg.IsInitialized(name) {
			initState = h.colors["positive"].Sprint("yes")
		}
		fields, err := reg.Fields(name)
		fieldList := "?"
		if err == nil {
			fieldList = joinFields(fields)
		}
		fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n", name, active, initState, fieldList)
	}
	w.Flush()
}

func joinFields(fields []string) string {
	out := ""
	for i, f := range fields {
		if i > 0 {
			out += ", "
		}
		out += f
	}
	return out
}

// ShowListTemplates prints the built-in default template and any named
// profiles found in cfg.
func (h *System) ShowListTemplates(cfg *config.Config) {
	h.colors["title"].Println("Templates")
	fmt.Println("=========")
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	h.colors["header"].Fprintln(w, "  NAME\tTEMPLATE\tDESCRIPTION")
	fmt.Fprintf(w, "  %s\t%s\t%s\n", h.colors["emphasis"].Sprint("(default)"), config.DefaultTemplate, "built-in default")

	names := cfg.ProfileNames()
	sort.Strings(names)
	for _, name := range names {
		profile, _ := cfg.GetProfile(name)
		tmpl := profile.Template
		if tmpl == "" {
			tmpl = h.colors["item"].Sprint("(inherits default)")
		}
		fmt.Fprintf(w, "  %s\t%s\t%s\n", name, tmpl, profile.Description)
	}
	w.Flush()

	if len(names) == 0 {
		fmt.Println()
		fmt.Println("  No named profiles found. Add a 'profiles:' section to a config file to define more.")
	}
}
