package geocode

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// DefaultCountry is the country restriction used when none is configured.
const DefaultCountry = "US"

// BuildQuery turns an AddressRecord into the canonical GeoQuery string: the
// present fields in address, city, state, zip order followed by a country
// token, joined by ", ". Empty and "nan" fields are skipped.
//
// The result is the cache key, so it depends on nothing but its inputs. Two
// records that normalize to the same string are the same address.
func BuildQuery(rec AddressRecord, country string) string {
	parts := make([]string, 0, 5)
	for _, f := range []string{rec.Address, rec.City, rec.State, rec.Zip} {
		if f = normalizeField(f); f != "" {
			parts = append(parts, f)
		}
	}
	parts = append(parts, countryToken(country))
	return strings.Join(parts, ", ")
}

// normalizeField trims, NFC-normalizes and drops placeholder values.
func normalizeField(s string) string {
	s = strings.TrimSpace(norm.NFC.String(s))
	if strings.EqualFold(s, "nan") {
		return ""
	}
	return s
}

func countryToken(country string) string {
	c := strings.ToUpper(strings.TrimSpace(country))
	if c == "" || c == "US" {
		return "USA"
	}
	return c
}
