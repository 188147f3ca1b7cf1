// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package maxmind implements the canonical Geolocation Provider reading
// MaxMind GeoLite2/GeoIP2 .mmdb files via the standard Go reader library,
// github.com/oschwald/maxminddb-golang/v2.
package maxmind

import (
	"fmt"
	"io"
	"net/netip"
	"path/filepath"
	"strconv"
	"strings"

	maxminddb "github.com/oschwald/maxminddb-golang/v2"

	"geoipsed/internal/geoprovider"
	"geoipsed/internal/paths"
	"geoipsed/internal/template"
)

// Name is the provider's registry key and the CLI's default --provider
// value.
const Name = "maxmind"

// Canonical template field names this provider can populate.
const (
	FieldIP          = "ip"
	FieldASNNum      = "asnnum"
	FieldASNOrg      = "asnorg"
	FieldCity        = "city"
	FieldContinent   = "continent"
	FieldCountryISO  = "country_iso"
	FieldCountryFull = "country_full"
	FieldLatitude    = "latitude"
	FieldLongitude   = "longitude"
	FieldTimezone    = "timezone"
)

var canonicalFields = []string{
	FieldIP, FieldASNNum, FieldASNOrg, FieldCity, FieldContinent,
	FieldCountryISO, FieldCountryFull, FieldLatitude, FieldLongitude, FieldTimezone,
}

// asnRecord mirrors the fields MaxMind's ASN database exposes.
type asnRecord struct {
	AutonomousSystemNumber       uint   `maxminddb:"autonomous_system_number"`
	AutonomousSystemOrganization string `maxminddb:"autonomous_system_organization"`
}

// cityRecord mirrors the fields MaxMind's City database exposes.
type cityRecord struct {
	City struct {
		Names map[string]string `maxminddb:"names"`
	} `maxminddb:"city"`
	Continent struct {
		Names map[string]string `maxminddb:"names"`
	} `maxminddb:"continent"`
	Country struct {
		ISOCode string            `maxminddb:"iso_code"`
		Names   map[string]string `maxminddb:"names"`
	} `maxminddb:"country"`
	Location struct {
		Latitude  float64 `maxminddb:"latitude"`
		Longitude float64 `maxminddb:"longitude"`
		TimeZone  string  `maxminddb:"time_zone"`
	} `maxminddb:"location"`
}

// Provider is the concrete MaxMind-format geoprovider.Provider. It is safe
// for concurrent use once Initialize has returned successfully: both
// readers are read-only memory-mapped handles.
type Provider struct {
	asn  *maxminddb.Reader
	city *maxminddb.Reader
}

// New returns an uninitialized MaxMind Provider.
func New() *Provider {
	return &Provider{}
}

// Name implements geoprovider.Provider.
func (p *Provider) Name() string { return Name }

// DefaultPath implements geoprovider.Provider, using the same OS-specific
// search list the CLI's -I flag falls back to.
func (p *Provider) DefaultPath() string {
	dir, _ := paths.GeoIPDir("")
	return dir
}

// RequiredFiles implements geoprovider.Provider. Either file alone is
// sufficient for Initialize to succeed; both together give the full field
// set.
func (p *Provider) RequiredFiles() []string {
	return []string{"GeoLite2-ASN.mmdb", "GeoLite2-City.mmdb"}
}

// AvailableFields implements geoprovider.Provider.
func (p *Provider) AvailableFields() []string {
	return canonicalFields
}

// Initialize opens whichever of RequiredFiles exist under dir. It succeeds
// if at least one database was opened.
func (p *Provider) Initialize(dir string) error {
	asnPath := filepath.Join(dir, "GeoLite2-ASN.mmdb")
	cityPath := filepath.Join(dir, "GeoLite2-City.mmdb")

	if r, err := maxminddb.Open(asnPath); err == nil {
		p.asn = r
	}
	if r, err := maxminddb.Open(cityPath); err == nil {
		p.city = r
	}

	if p.asn == nil && p.city == nil {
		return &geoprovider.DatabaseNotFoundError{Provider: Name, Path: dir}
	}
	return nil
}

// Close releases both memory-mapped database handles.
func (p *Provider) Close() error {
	var firstErr error
	if p.asn != nil {
		firstErr = p.asn.Close()
	}
	if p.city != nil {
		if err := p.city.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// fields performs the ASN then City longest-prefix-match lookups and fills
// a complete field table; absent values default to "", "0", or "0.0" as
// appropriate. A lookup miss is never an error — see §7 of the design.
func (p *Provider) fields(addr netip.Addr) map[string]string {
	out := map[string]string{
		FieldIP:          addr.String(),
		FieldASNNum:      "0",
		FieldASNOrg:      "",
		FieldCity:        "",
		FieldContinent:   "",
		FieldCountryISO:  "",
		FieldCountryFull: "",
		FieldLatitude:    "0.0",
		FieldLongitude:   "0.0",
		FieldTimezone:    "",
	}

	if p.asn != nil {
		var rec asnRecord
		if err := p.asn.Lookup(addr).Decode(&rec); err == nil && rec.AutonomousSystemNumber != 0 {
			out[FieldASNNum] = strconv.FormatUint(uint64(rec.AutonomousSystemNumber), 10)
			out[FieldASNOrg] = rec.AutonomousSystemOrganization
		}
	}

	if p.city != nil {
		var rec cityRecord
		if err := p.city.Lookup(addr).Decode(&rec); err == nil {
			out[FieldCity] = rec.City.Names["en"]
			out[FieldContinent] = rec.Continent.Names["en"]
			out[FieldCountryISO] = rec.Country.ISOCode
			out[FieldCountryFull] = rec.Country.Names["en"]
			if rec.Location.Latitude != 0 {
				out[FieldLatitude] = strconv.FormatFloat(rec.Location.Latitude, 'f', -1, 64)
			}
			if rec.Location.Longitude != 0 {
				out[FieldLongitude] = strconv.FormatFloat(rec.Location.Longitude, 'f', -1, 64)
			}
			out[FieldTimezone] = rec.Location.TimeZone
		}
	}

	return out
}

// lookupValue returns the column-safe value for field: any space is
// replaced with '_' so a substituted value never splits a
// whitespace-delimited log column. Template literal segments never pass
// through this function.
func lookupValue(fields map[string]string, field string) string {
	return strings.ReplaceAll(fields[field], " ", "_")
}

// Lookup implements geoprovider.Provider.
func (p *Provider) Lookup(addr netip.Addr, literal string, tmpl *template.Template) string {
	fields := p.fields(addr)
	return tmpl.Render(func(field string) string { return lookupValue(fields, field) })
}

// WriteLookup implements geoprovider.Provider.
func (p *Provider) WriteLookup(w io.Writer, addr netip.Addr, literal string, tmpl *template.Template) error {
	fields := p.fields(addr)
	return tmpl.Write(w, func(field string) string { return lookupValue(fields, field) })
}

// HasASN implements geoprovider.Provider: true iff the ASN database has a
// nonzero autonomous-system number for addr.
func (p *Provider) HasASN(addr netip.Addr) bool {
	if p.asn == nil {
		return false
	}
	var rec asnRecord
	if err := p.asn.Lookup(addr).Decode(&rec); err != nil {
		return false
	}
	return rec.AutonomousSystemNumber != 0
}

var _ fmt.Stringer = (*Provider)(nil)

// String implements fmt.Stringer for debug output.
func (p *Provider) String() string {
	return fmt.Sprintf("maxmind(asn=%v, city=%v)", p.asn != nil, p.city != nil)
}
