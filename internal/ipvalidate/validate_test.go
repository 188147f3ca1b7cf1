// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package ipvalidate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"geoipsed/internal/ipgrammar"
)

func TestStrictIPv4RejectsLeadingZero(t *testing.T) {
	assert.False(t, Validate([]byte("192.168.01.1"), ipgrammar.PatternIPv4, All()))
}

func TestStrictIPv4AcceptsValid(t *testing.T) {
	assert.True(t, Validate([]byte("67.43.156.1"), ipgrammar.PatternIPv4, All()))
}

func TestStrictIPv4RejectsOutOfRangeOctet(t *testing.T) {
	assert.False(t, Validate([]byte("300.1.1.1"), ipgrammar.PatternIPv4, All()))
}

func TestCategoryFilterPrivateIPv4(t *testing.T) {
	filter := Filter{}
	assert.False(t, Validate([]byte("192.168.1.1"), ipgrammar.PatternIPv4, filter))
	assert.True(t, Validate([]byte("192.168.1.1"), ipgrammar.PatternIPv4, Filter{IncludePrivate: true}))
}

func TestCategoryFilterLoopbackIPv4(t *testing.T) {
	filter := Filter{}
	assert.False(t, Validate([]byte("127.0.0.1"), ipgrammar.PatternIPv4, filter))
	assert.True(t, Validate([]byte("127.0.0.1"), ipgrammar.PatternIPv4, Filter{IncludeLoopback: true}))
}

func TestCategoryFilterBroadcastIPv4(t *testing.T) {
	filter := Filter{}
	assert.False(t, Validate([]byte("255.255.255.255"), ipgrammar.PatternIPv4, filter))
	assert.False(t, Validate([]byte("169.254.1.1"), ipgrammar.PatternIPv4, filter))
	assert.True(t, Validate([]byte("255.255.255.255"), ipgrammar.PatternIPv4, Filter{IncludeBroadcast: true}))
}

func TestIPv6LoopbackAndLinkLocal(t *testing.T) {
	filter := Filter{}
	assert.False(t, Validate([]byte("::1"), ipgrammar.PatternIPv6, filter))
	assert.True(t, Validate([]byte("::1"), ipgrammar.PatternIPv6, Filter{IncludeLoopback: true}))

	assert.False(t, Validate([]byte("fe80::1"), ipgrammar.PatternIPv6, filter))
	assert.True(t, Validate([]byte("fe80::1"), ipgrammar.PatternIPv6, Filter{IncludePrivate: true}))
}

func TestIPv6PublicAccepted(t *testing.T) {
	assert.True(t, Validate([]byte("2001:480::52"), ipgrammar.PatternIPv6, Filter{}))
}
