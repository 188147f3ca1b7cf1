// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package extractor implements the streaming match iterator: it drives the
// ipgrammar automaton, recovers each match's true left boundary, applies
// the right-boundary rule, and dispatches to ipvalidate for the final
// accept/reject decision.
package extractor

import (
	"errors"

	"geoipsed/internal/ipgrammar"
	"geoipsed/internal/ipvalidate"
)

// ErrNoPatternsSelected is returned by Build when both IncludeIPv4 and
// IncludeIPv6 are false.
var ErrNoPatternsSelected = errors.New("extractor: no IP address patterns selected")

// backwardScanCap bounds the left-boundary recovery scan. It is larger than
// the longest valid IPv6 literal (39 bytes), so it never clips a genuine
// match; it only bounds worst-case work on pathological all-IP-class runs.
const backwardScanCap = 40

// Match is a single accepted address: a half-open byte range plus the
// grammar that matched it.
type Match struct {
	Start, End int
	Kind       ipgrammar.Pattern
}

// Builder configures an Extractor before construction. NewBuilder's
// default excludes every special category (private, loopback, broadcast)
// and includes both address families — see SPEC_FULL.md §5 for why the
// library default differs from the CLI's default. The zero value enables
// neither address family, so Build on it fails with ErrNoPatternsSelected.
type Builder struct {
	includeIPv4      bool
	includeIPv6      bool
	includePrivate   bool
	includeLoopback  bool
	includeBroadcast bool
}

// NewBuilder returns a Builder with both address families enabled and
// every special category excluded.
func NewBuilder() *Builder {
	return &Builder{includeIPv4: true, includeIPv6: true}
}

// All enables every address family and every special category. Equivalent
// to the CLI's default policy.
func (b *Builder) All() *Builder {
	b.includeIPv4 = true
	b.includeIPv6 = true
	b.includePrivate = true
	b.includeLoopback = true
	b.includeBroadcast = true
	return b
}

// OnlyPublic documents, at the call site, that the builder is left at its
// exclude-all-special-categories default. It is a no-op alias.
func (b *Builder) OnlyPublic() *Builder { return b }

// IgnorePrivate excludes private/link-local/unique-local addresses.
func (b *Builder) IgnorePrivate() *Builder { b.includePrivate = false; return b }

// IgnoreLoopback excludes loopback addresses.
func (b *Builder) IgnoreLoopback() *Builder { b.includeLoopback = false; return b }

// IgnoreBroadcast excludes broadcast and IPv4 link-local addresses.
func (b *Builder) IgnoreBroadcast() *Builder { b.includeBroadcast = false; return b }

// IncludePrivate includes private/link-local/unique-local addresses.
func (b *Builder) IncludePrivate() *Builder { b.includePrivate = true; return b }

// IncludeLoopback includes loopback addresses.
func (b *Builder) IncludeLoopback() *Builder { b.includeLoopback = true; return b }

// IncludeBroadcast includes broadcast and IPv4 link-local addresses.
func (b *Builder) IncludeBroadcast() *Builder { b.includeBroadcast = true; return b }

// OnlyIPv4 restricts matching to IPv4 literals.
func (b *Builder) OnlyIPv4() *Builder { b.includeIPv4 = true; b.includeIPv6 = false; return b }

// OnlyIPv6 restricts matching to IPv6 literals.
func (b *Builder) OnlyIPv6() *Builder { b.includeIPv4 = false; b.includeIPv6 = true; return b }

// Build constructs the immutable Extractor, or fails with
// ErrNoPatternsSelected.
func (b *Builder) Build() (*Extractor, error) {
	if !b.includeIPv4 && !b.includeIPv6 {
		return nil, ErrNoPatternsSelected
	}
	return &Extractor{
		automaton: ipgrammar.New(b.includeIPv4, b.includeIPv6),
		filter: ipvalidate.Filter{
			IncludePrivate:   b.includePrivate,
			IncludeLoopback:  b.includeLoopback,
			IncludeBroadcast: b.includeBroadcast,
		},
	}, nil
}

// Extractor is immutable after construction and safe for concurrent use by
// multiple goroutines, since both its automaton and filter are read-only.
type Extractor struct {
	automaton *ipgrammar.Automaton
	filter    ipvalidate.Filter
}

// Iterator yields accepted matches from a single haystack, left to right,
// non-overlapping.
type Iterator struct {
	e        *Extractor
	haystack []byte
	pos      int
}

// Find returns an Iterator over haystack. The Extractor borrows no part of
// haystack past the Iterator's lifetime; callers own the buffer.
func (e *Extractor) Find(haystack []byte) *Iterator {
	return &Iterator{e: e, haystack: haystack}
}

// Next advances the iterator and returns the next accepted match. ok is
// false once the haystack is exhausted.
func (it *Iterator) Next() (Match, bool) {
	for it.pos <= len(it.haystack) {
		end, pattern, found := it.e.automaton.Next(it.haystack, it.pos)
		if !found {
			return Match{}, false
		}
		// Advance unconditionally: a rejected candidate must not cause
		// the automaton to re-match the same run.
		it.pos = end

		start := leftBoundary(it.haystack, end)
		if !rightBoundaryOK(it.haystack, end, pattern) {
			continue
		}
		if !ipvalidate.Validate(it.haystack[start:end], pattern, it.e.filter) {
			continue
		}
		return Match{Start: start, End: end, Kind: pattern}, true
	}
	return Match{}, false
}

// leftBoundary scans backward from end, up to backwardScanCap bytes,
// returning the largest index s such that s == 0 or haystack[s-1] is not
// an IP-class character.
func leftBoundary(haystack []byte, end int) int {
	limit := end - backwardScanCap
	if limit < 0 {
		limit = 0
	}
	s := end
	for s > limit {
		if s == 0 || !ipgrammar.IsIPChar(haystack[s-1]) {
			break
		}
		s--
	}
	return s
}

// rightBoundaryOK implements the kind-specific right-boundary rule.
func rightBoundaryOK(haystack []byte, end int, kind ipgrammar.Pattern) bool {
	if end == len(haystack) {
		return true
	}
	next := haystack[end]
	if kind == ipgrammar.PatternIPv4 {
		if ipgrammar.IsDigit(next) {
			return false
		}
		if next == '.' && end+1 < len(haystack) && ipgrammar.IsDigit(haystack[end+1]) {
			return false
		}
		return true
	}
	return !ipgrammar.IsIPChar(next)
}
