package ingest

import (
	"strings"
	"unicode"
)

// aliases maps each canonical column to the header spellings it accepts,
// compared after normalizeToken.
var aliases = []struct {
	target string
	names  []string
}{
	{ColAddress, []string{"address", "street", "street_address", "addr", "adresse", "adress", "address1", "line1"}},
	{ColCity, []string{"city", "ville", "town", "municipality"}},
	{ColState, []string{"state", "st", "etat", "province", "region"}},
	{ColZip, []string{"zip", "zipcode", "postal", "postal_code", "zip_code", "code postal", "code_postal"}},
}

var aliasIndex = buildAliasIndex()

func buildAliasIndex() map[string]string {
	idx := make(map[string]string)
	for _, a := range aliases {
		idx[normalizeToken(a.target)] = a.target
		for _, n := range a.names {
			idx[normalizeToken(n)] = a.target
		}
	}
	return idx
}

// normalizeToken lowercases s and drops everything but ASCII letters and
// digits, so "Street Address" and "street_address" compare equal.
func normalizeToken(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeHeader renames recognised columns to their canonical names. The
// first column to claim a canonical name keeps it; later aliases of the same
// name are left as they were. Unrecognised columns pass through.
func NormalizeHeader(header []string) []string {
	out := make([]string, len(header))
	claimed := make(map[string]bool)
	for i, h := range header {
		out[i] = h
		target, ok := aliasIndex[normalizeToken(h)]
		if !ok || claimed[target] {
			continue
		}
		out[i] = target
		claimed[target] = true
	}
	return out
}
