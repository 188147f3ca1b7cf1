// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package maxmind

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"

	"geoipsed/internal/geoprovider"
)

func TestNameAndRequiredFiles(t *testing.T) {
	p := New()
	assert.Equal(t, "maxmind", p.Name())
	assert.ElementsMatch(t, []string{"GeoLite2-ASN.mmdb", "GeoLite2-City.mmdb"}, p.RequiredFiles())
}

func TestAvailableFieldsMatchCanonicalSet(t *testing.T) {
	p := New()
	assert.Equal(t, canonicalFields, p.AvailableFields())
	assert.Contains(t, p.AvailableFields(), FieldASNNum)
	assert.Contains(t, p.AvailableFields(), FieldCountryISO)
}

func TestInitializeFailsWithoutDatabases(t *testing.T) {
	p := New()
	err := p.Initialize(t.TempDir())
	assert.Error(t, err)
	var notFound *geoprovider.DatabaseNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestHasASNFalseBeforeInitialize(t *testing.T) {
	p := New()
	assert.False(t, p.HasASN(netip.MustParseAddr("8.8.8.8")))
}

func TestLookupValueReplacesSpaces(t *testing.T) {
	fields := map[string]string{FieldASNOrg: "Google LLC"}
	assert.Equal(t, "Google_LLC", lookupValue(fields, FieldASNOrg))
}

func TestStringReportsOpenState(t *testing.T) {
	p := New()
	assert.Contains(t, p.String(), "asn=false")
	assert.Contains(t, p.String(), "city=false")
}
