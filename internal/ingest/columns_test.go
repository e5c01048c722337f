package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeToken(t *testing.T) {
	assert.Equal(t, "streetaddress", normalizeToken(" Street Address "))
	assert.Equal(t, "streetaddress", normalizeToken("street_address"))
	assert.Equal(t, "codepostal", normalizeToken("Code-Postal"))
	assert.Equal(t, "", normalizeToken("***"))
}

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		name   string
		header []string
		want   []string
	}{
		{
			name:   "canonical names untouched",
			header: []string{"address", "city", "state", "zip"},
			want:   []string{"address", "city", "state", "zip"},
		},
		{
			name:   "aliases in other languages",
			header: []string{"Adresse", "Ville", "Etat", "Code postal"},
			want:   []string{"address", "city", "state", "zip"},
		},
		{
			name:   "first claim wins",
			header: []string{"Street", "Address1", "ZIP", "postal_code"},
			want:   []string{"address", "Address1", "zip", "postal_code"},
		},
		{
			name:   "unknown columns pass through",
			header: []string{"Owner", "line1", "Notes"},
			want:   []string{"Owner", "address", "Notes"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeHeader(tt.header))
		})
	}
}
