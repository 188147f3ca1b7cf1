// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package ipvalidate implements the strict parse + categorization step: it
// turns a byte run that merely looks like an address into a verdict —
// accepted or rejected — against a caller-supplied category filter.
package ipvalidate

import (
	"net/netip"

	"geoipsed/internal/ipgrammar"
)

// Filter controls which special-purpose address categories are accepted.
// The zero value excludes every special category (see the category-filter
// default-policy decision in SPEC_FULL.md §5).
type Filter struct {
	IncludePrivate   bool
	IncludeLoopback  bool
	IncludeBroadcast bool
}

// All returns a Filter that accepts every category.
func All() Filter {
	return Filter{IncludePrivate: true, IncludeLoopback: true, IncludeBroadcast: true}
}

// Validate parses raw strictly for the given kind and checks it against
// filter. It returns false both for malformed input and for well-formed
// input in a disabled category.
func Validate(raw []byte, kind ipgrammar.Pattern, filter Filter) bool {
	if kind == ipgrammar.PatternIPv4 {
		return validateIPv4(raw, filter)
	}
	return validateIPv6(raw, filter)
}

// validateIPv4 parses raw as a strict dotted-decimal address directly on
// the bytes, without an intermediate string allocation, then checks its
// category membership.
func validateIPv4(raw []byte, filter Filter) bool {
	octets, ok := parseIPv4Strict(raw)
	if !ok {
		return false
	}

	private := isPrivateIPv4(octets)
	loopback := octets[0] == 127
	broadcast := (octets == [4]byte{255, 255, 255, 255}) || (octets[0] == 169 && octets[1] == 254)

	if private && !filter.IncludePrivate {
		return false
	}
	if loopback && !filter.IncludeLoopback {
		return false
	}
	if broadcast && !filter.IncludeBroadcast {
		return false
	}
	return true
}

// parseIPv4Strict rejects anything that is not exactly four dot-separated
// decimal octets in [0,255] with no leading zeros in a multi-digit octet.
func parseIPv4Strict(raw []byte) (octets [4]byte, ok bool) {
	if len(raw) < 7 || len(raw) > 15 {
		return octets, false
	}

	groupStart := 0
	groupIdx := 0
	for i := 0; i <= len(raw); i++ {
		if i == len(raw) || raw[i] == '.' {
			if groupIdx >= 4 {
				return octets, false
			}
			group := raw[groupStart:i]
			v, okGroup := parseOctet(group)
			if !okGroup {
				return octets, false
			}
			octets[groupIdx] = v
			groupIdx++
			groupStart = i + 1
			continue
		}
		if !ipgrammar.IsDigit(raw[i]) {
			return octets, false
		}
	}
	if groupIdx != 4 {
		return octets, false
	}
	return octets, true
}

func parseOctet(group []byte) (byte, bool) {
	if len(group) == 0 || len(group) > 3 {
		return 0, false
	}
	if len(group) > 1 && group[0] == '0' {
		return 0, false
	}
	var v int
	for _, c := range group {
		v = v*10 + int(c-'0')
	}
	if v > 255 {
		return 0, false
	}
	return byte(v), true
}

// isPrivateIPv4 checks the RFC 1918 ranges: 10.0.0.0/8, 172.16.0.0/12,
// 192.168.0.0/16.
func isPrivateIPv4(o [4]byte) bool {
	switch {
	case o[0] == 10:
		return true
	case o[0] == 172 && o[1] >= 16 && o[1] <= 31:
		return true
	case o[0] == 192 && o[1] == 168:
		return true
	}
	return false
}

// validateIPv6 delegates strict parsing to netip, then checks category
// membership. Link-local unicast (fe80::/10) and unique-local (fc00::/7)
// addresses are both governed by IncludePrivate; ::1 is governed by
// IncludeLoopback, mirroring the IPv4 loopback flag.
func validateIPv6(raw []byte, filter Filter) bool {
	if len(raw) < 2 {
		return false
	}
	addr, err := netip.ParseAddr(string(raw))
	if err != nil {
		return false
	}
	if addr.Is4() {
		// the IPv6 grammar only matches byte runs containing ':', so this
		// indicates something went wrong upstream; reject defensively.
		return false
	}

	if addr.IsLoopback() {
		return filter.IncludeLoopback
	}
	if addr.IsLinkLocalUnicast() || isUniqueLocal(addr) {
		return filter.IncludePrivate
	}
	return true
}

// isUniqueLocal reports fc00::/7 membership (first byte 0xfc or 0xfd).
func isUniqueLocal(addr netip.Addr) bool {
	if !addr.Is6() {
		return false
	}
	b := addr.As16()
	return b[0] == 0xfc || b[0] == 0xfd
}
