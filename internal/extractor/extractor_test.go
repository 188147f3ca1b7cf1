// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geoipsed/internal/ipgrammar"
)

func collect(t *testing.T, e *Extractor, haystack string) []Match {
	t.Helper()
	it := e.Find([]byte(haystack))
	var out []Match
	for {
		m, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, m)
	}
	return out
}

func TestBuilderNoPatternsSelected(t *testing.T) {
	b := &Builder{}
	_, err := b.Build()
	require.ErrorIs(t, err, ErrNoPatternsSelected)
}

func TestDefaultBuilderExcludesSpecialCategories(t *testing.T) {
	e, err := NewBuilder().Build()
	require.NoError(t, err)

	input := "192.168.1.1 and 67.43.156.1"
	matches := collect(t, e, input)
	require.Len(t, matches, 1)
	assert.Equal(t, "67.43.156.1", input[matches[0].Start:matches[0].End])
}

func TestAllIncludesPrivate(t *testing.T) {
	e, err := NewBuilder().All().Build()
	require.NoError(t, err)

	input := "The C2 IP was 192.168.1.1."
	matches := collect(t, e, input)
	require.Len(t, matches, 1)
	assert.Equal(t, "192.168.1.1", input[matches[0].Start:matches[0].End])
}

func TestLeftToRightOrdering(t *testing.T) {
	e, err := NewBuilder().All().Build()
	require.NoError(t, err)

	input := "a 1.2.3.4 b 5.6.7.8 c 9.10.11.12"
	matches := collect(t, e, input)
	require.Len(t, matches, 3)
	for i := 0; i+1 < len(matches); i++ {
		assert.LessOrEqual(t, matches[i].End, matches[i+1].Start)
	}
}

func TestRejectsMalformedIPv4(t *testing.T) {
	e, err := NewBuilder().All().Build()
	require.NoError(t, err)

	for _, input := range []string{
		"256.256.256.256",
		"1.2.3",
		"1.2.3.4.5",
		"127.0.0.01",
	} {
		matches := collect(t, e, "Not an IP: "+input)
		assert.Empty(t, matches, "input %q should not match", input)
	}
}

func TestRightBoundaryTrailingDot(t *testing.T) {
	e, err := NewBuilder().All().Build()
	require.NoError(t, err)

	for _, input := range []string{"1.2.3.4 ", "1.2.3.4,", "1.2.3.4.", "(1.2.3.4)", "1.2.3.4.abc"} {
		matches := collect(t, e, input)
		require.Len(t, matches, 1, "input %q", input)
		assert.Equal(t, "1.2.3.4", input[matches[0].Start:matches[0].End])
	}

	matches := collect(t, e, "1.2.3.4.5")
	assert.Empty(t, matches)
}

func TestIPv6ZoneIDExcluded(t *testing.T) {
	e, err := NewBuilder().All().Build()
	require.NoError(t, err)

	input := "fe80::1%eth0"
	matches := collect(t, e, input)
	require.Len(t, matches, 1)
	assert.Equal(t, "fe80::1", input[matches[0].Start:matches[0].End])
	assert.Equal(t, ipgrammar.PatternIPv6, matches[0].Kind)
}

func TestIdempotentOnNonIPText(t *testing.T) {
	e, err := NewBuilder().All().Build()
	require.NoError(t, err)

	input := "no addresses to see here, just prose and 999.999.999.999 noise"
	matches := collect(t, e, input)
	assert.Empty(t, matches)
}

func TestBackwardScanCapRejectsPathologicalRun(t *testing.T) {
	e, err := NewBuilder().All().Build()
	require.NoError(t, err)

	// A run of IP-class characters far longer than backwardScanCap
	// ("1.1.1.…1."); its final "1.1.1.1" candidate passes the right-boundary
	// rule, but the left-boundary recovery stops at the cap, so the
	// recovered substring is not a valid address and is rejected.
	run := make([]byte, 200)
	for i := range run {
		run[i] = "1."[i%2]
	}
	matches := collect(t, e, string(run))
	assert.Empty(t, matches)
	for _, m := range matches {
		assert.LessOrEqual(t, m.End-m.Start, backwardScanCap)
	}
}
