// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package ipgrammar holds the shape-level patterns that recognize IPv4 and
// IPv6 literals. The patterns deliberately over-accept at their boundaries —
// word-boundary enforcement lives in internal/extractor, strict numeric
// validation in internal/ipvalidate. This package only answers "does this
// byte run look like the shape of an address".
//
// Go has no build-time DFA codegen comparable to regex_automata + build.rs,
// so the patterns are compiled once, at package initialization, into RE2
// programs via the standard regexp package. RE2 shares the property the
// design calls for: no backtracking, linear-time matching regardless of
// input shape.
package ipgrammar

import "regexp"

// Pattern identifies which grammar matched a candidate run.
type Pattern int

const (
	// PatternIPv4 identifies the dotted-decimal shape.
	PatternIPv4 Pattern = iota
	// PatternIPv6 identifies any of the hextet shapes, including the
	// IPv4-embedded form.
	PatternIPv6
)

func (p Pattern) String() string {
	if p == PatternIPv4 {
		return "ipv4"
	}
	return "ipv6"
}

// ipv4Shape: exactly four dot-separated octet-shaped groups. Over-accepts
// nothing numerically out of range beyond what the 0-255 alternation
// already excludes; the remaining strictness (leading zeros) is left to
// the validator, which re-parses the raw bytes.
const octet = `(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)`

const ipv4Shape = octet + `(?:\.` + octet + `){3}`

// ipv6Shape covers full-form, every canonical `::`-compressed form, and the
// IPv4-embedded tail (`::ffff:a.b.c.d` and the general `...::a.b.c.d`
// form). Zone identifiers are never part of the grammar: `%` is not an
// IP-class byte, so a shape match never extends across it.
//
// Go's regexp package (RE2) matches alternation leftmost-first, not
// leftmost-longest: it commits to the first alternative that matches at a
// given start position even when a later one would consume more of the
// input. A textbook anchored IPv6-validation regex relies on the `$`
// anchor to force backtracking into a longer alternative when a shorter
// one fails to reach the end of the string; used unanchored for scanning,
// that escape hatch doesn't exist, so alternative order is load-bearing.
// The IPv4-embedded forms are tried first since they're the only
// alternatives that can consume a trailing dotted-decimal tail; the
// compressed hextet form is expressed as a single greedy `charset* "::"
// charset*` alternative (rather than one alternative per leading/trailing
// hextet-count combination) so it always extends to the rightmost `::`
// and consumes every hextet around it, instead of stopping at whichever
// shorter combination happens to be listed first.
const ipv6Shape = `::(?:ffff(?::0{1,4})?:)?` + ipv4Shape +
	`|(?:[0-9A-Fa-f]{1,4}:){1,4}:` + ipv4Shape +
	`|(?:[0-9A-Fa-f]{1,4}:){7}[0-9A-Fa-f]{1,4}` +
	`|[0-9A-Fa-f:]*::[0-9A-Fa-f:]*`

var (
	ipv4Only = regexp.MustCompile(ipv4Shape)
	ipv6Only = regexp.MustCompile(ipv6Shape)
	// combined reports, via named groups, which alternative matched so a
	// caller never has to re-examine the substring to learn the pattern
	// ID — mirroring the DFA's reported pattern index.
	combined = regexp.MustCompile(`(?P<v4>` + ipv4Shape + `)|(?P<v6>` + ipv6Shape + `)`)
)

// Automaton finds the next shape-level candidate in a byte slice. It is an
// immutable, concurrency-safe value: the same Automaton may be shared by
// any number of Extractors.
type Automaton struct {
	re        *regexp.Regexp
	v4group   int
	v6group   int
	includeV4 bool
	includeV6 bool
}

// New builds the automaton variant for the requested pattern set. At least
// one of includeIPv4/includeIPv6 must be true.
func New(includeIPv4, includeIPv6 bool) *Automaton {
	switch {
	case includeIPv4 && includeIPv6:
		return &Automaton{
			re:        combined,
			v4group:   combined.SubexpIndex("v4"),
			v6group:   combined.SubexpIndex("v6"),
			includeV4: true,
			includeV6: true,
		}
	case includeIPv4:
		return &Automaton{re: ipv4Only, v4group: -1, v6group: -1, includeV4: true}
	default:
		return &Automaton{re: ipv6Only, v4group: -1, v6group: -1, includeV6: true}
	}
}

// Next finds the next shape match at or after byte offset from. It reports
// the match's exclusive end offset (absolute, not relative to from) and
// which pattern matched. ok is false once no further match exists.
func (a *Automaton) Next(haystack []byte, from int) (end int, pattern Pattern, ok bool) {
	if from > len(haystack) {
		return 0, 0, false
	}
	loc := a.re.FindSubmatchIndex(haystack[from:])
	if loc == nil {
		return 0, 0, false
	}
	absEnd := from + loc[1]

	if a.v4group < 0 {
		// single-pattern automaton: the pattern is whichever one we built.
		if a.includeV4 {
			return absEnd, PatternIPv4, true
		}
		return absEnd, PatternIPv6, true
	}

	// combined automaton: determine which named group participated.
	v4start := loc[2*a.v4group]
	if v4start >= 0 {
		return absEnd, PatternIPv4, true
	}
	return absEnd, PatternIPv6, true
}

// IsIPChar reports whether b belongs to the IP-class alphabet shared by
// both grammars: hex digits, '.', and ':'. Zone-id '%' is deliberately
// excluded — it is a right-boundary character, never part of a match.
func IsIPChar(b byte) bool {
	switch {
	case b >= '0' && b <= '9':
		return true
	case b >= 'a' && b <= 'f':
		return true
	case b >= 'A' && b <= 'F':
		return true
	case b == '.' || b == ':':
		return true
	}
	return false
}

// IsDigit reports whether b is an ASCII decimal digit.
func IsDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
