package geocode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildQuery(t *testing.T) {
	tests := []struct {
		name     string
		rec      AddressRecord
		country  string
		expected string
	}{
		{
			name:     "all fields",
			rec:      AddressRecord{Address: "100 MAIN ST", City: "SAN ANTONIO", State: "TX", Zip: "78201"},
			country:  "US",
			expected: "100 MAIN ST, SAN ANTONIO, TX, 78201, USA",
		},
		{
			name:     "missing zip",
			rec:      AddressRecord{Address: "100 MAIN ST", City: "SAN ANTONIO", State: "TX"},
			country:  "US",
			expected: "100 MAIN ST, SAN ANTONIO, TX, USA",
		},
		{
			name:     "nan placeholders dropped",
			rec:      AddressRecord{Address: "100 MAIN ST", City: "nan", State: "NaN", Zip: "NAN"},
			country:  "US",
			expected: "100 MAIN ST, USA",
		},
		{
			name:     "whitespace trimmed and blank dropped",
			rec:      AddressRecord{Address: "  100 MAIN ST ", City: "   ", State: "TX"},
			country:  "US",
			expected: "100 MAIN ST, TX, USA",
		},
		{
			name:     "lowercase us",
			rec:      AddressRecord{Address: "1 Alamo Plaza"},
			country:  "us",
			expected: "1 Alamo Plaza, USA",
		},
		{
			name:     "empty country defaults to USA",
			rec:      AddressRecord{Address: "1 Alamo Plaza"},
			country:  "",
			expected: "1 Alamo Plaza, USA",
		},
		{
			name:     "other country upper-cased",
			rec:      AddressRecord{Address: "Av. 18 de Julio 1000", City: "Montevideo"},
			country:  "uy",
			expected: "Av. 18 de Julio 1000, Montevideo, UY",
		},
		{
			name:     "no fields yields country only",
			rec:      AddressRecord{},
			country:  "US",
			expected: "USA",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, BuildQuery(tt.rec, tt.country))
		})
	}
}

func TestBuildQuery_Deterministic(t *testing.T) {
	rec := AddressRecord{Address: "100 MAIN ST", City: "SAN ANTONIO", State: "TX", Zip: "78201"}
	assert.Equal(t, BuildQuery(rec, "US"), BuildQuery(rec, "US"))
}

func TestBuildQuery_NearDuplicatesShareKey(t *testing.T) {
	a := AddressRecord{Address: "100 MAIN ST ", City: "SAN ANTONIO", State: "TX", Zip: "nan"}
	b := AddressRecord{Address: "100 MAIN ST", City: " SAN ANTONIO", State: "TX"}
	assert.Equal(t, BuildQuery(a, "US"), BuildQuery(b, "US"))
}

func TestBuildQuery_UnicodeNormalized(t *testing.T) {
	composed := AddressRecord{Address: "12 Calle Pe\u00f1a"}
	decomposed := AddressRecord{Address: "12 Calle Pen\u0303a"}
	assert.Equal(t, BuildQuery(composed, "US"), BuildQuery(decomposed, "US"))
}
