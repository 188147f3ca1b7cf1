// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package ipgrammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatternString(t *testing.T) {
	assert.Equal(t, "ipv4", PatternIPv4.String())
	assert.Equal(t, "ipv6", PatternIPv6.String())
}

func TestAutomatonFindsIPv4Shape(t *testing.T) {
	a := New(true, true)
	end, pattern, ok := a.Next([]byte("log line 67.43.156.1 done"), 0)
	require.True(t, ok)
	assert.Equal(t, PatternIPv4, pattern)
	assert.Equal(t, "67.43.156.1", "log line 67.43.156.1 done"[end-len("67.43.156.1"):end])
}

func TestAutomatonFindsIPv6Shape(t *testing.T) {
	a := New(true, true)
	haystack := []byte("addr 2001:db8::1 seen")
	end, pattern, ok := a.Next(haystack, 0)
	require.True(t, ok)
	assert.Equal(t, PatternIPv6, pattern)
	assert.Equal(t, "2001:db8::1", string(haystack[end-len("2001:db8::1"):end]))
}

func TestAutomatonOnlyIPv4SkipsIPv6(t *testing.T) {
	a := New(true, false)
	_, pattern, ok := a.Next([]byte("fe80::1 and 1.2.3.4"), 0)
	require.True(t, ok)
	assert.Equal(t, PatternIPv4, pattern)
}

func TestAutomatonOnlyIPv6SkipsIPv4(t *testing.T) {
	a := New(false, true)
	_, pattern, ok := a.Next([]byte("1.2.3.4 and fe80::1"), 0)
	require.True(t, ok)
	assert.Equal(t, PatternIPv6, pattern)
}

func TestAutomatonNoMatchReturnsFalse(t *testing.T) {
	a := New(true, true)
	_, _, ok := a.Next([]byte("no addresses here"), 0)
	assert.False(t, ok)
}

func TestAutomatonFromPastEndReturnsFalse(t *testing.T) {
	a := New(true, true)
	_, _, ok := a.Next([]byte("1.2.3.4"), 100)
	assert.False(t, ok)
}

func TestIPv4EmbeddedIPv6Shape(t *testing.T) {
	a := New(true, true)
	haystack := []byte("::ffff:192.0.2.1")
	_, pattern, ok := a.Next(haystack, 0)
	require.True(t, ok)
	assert.Equal(t, PatternIPv6, pattern)
}

func TestIsIPCharExcludesZoneDelimiter(t *testing.T) {
	assert.True(t, IsIPChar('a'))
	assert.True(t, IsIPChar(':'))
	assert.True(t, IsIPChar('.'))
	assert.False(t, IsIPChar('%'))
	assert.False(t, IsIPChar('g'))
}

func TestIsDigit(t *testing.T) {
	assert.True(t, IsDigit('0'))
	assert.True(t, IsDigit('9'))
	assert.False(t, IsDigit('a'))
}
