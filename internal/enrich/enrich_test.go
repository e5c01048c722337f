package enrich

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/property-zones/internal/ingest"
)

const referenceCSV = `address,neighborhood,property_type,property_sqft,appraised_value
100 Main St,Downtown,Commercial,12000,1500000
"200   oak ave",Alamo Heights,Residential,2400,450000
100 MAIN ST,Duplicate,Ignored,0,0
`

func TestNormalizeAddress(t *testing.T) {
	assert.Equal(t, "100 MAIN ST", NormalizeAddress("  100   main\tst "))
	assert.Equal(t, "", NormalizeAddress("   "))
}

func TestReadReference(t *testing.T) {
	ref, err := ReadReference(strings.NewReader(referenceCSV))
	require.NoError(t, err)
	assert.Equal(t, 2, ref.Len())

	v, ok := ref.Lookup("100 main st")
	require.True(t, ok)
	assert.Equal(t, []string{"Downtown", "Commercial", "12000", "1500000"}, v, "first row wins")

	v, ok = ref.Lookup("200 OAK AVE")
	require.True(t, ok)
	assert.Equal(t, "Alamo Heights", v[0])
}

func TestReadReference_PartialColumns(t *testing.T) {
	ref, err := ReadReference(strings.NewReader("address,neighborhood\n1 Alamo Plaza,Downtown\n"))
	require.NoError(t, err)

	v, ok := ref.Lookup("1 ALAMO PLAZA")
	require.True(t, ok)
	assert.Equal(t, []string{"Downtown", "", "", ""}, v)
}

func TestReadReference_NoAddressColumn(t *testing.T) {
	_, err := ReadReference(strings.NewReader("street,neighborhood\n1 Alamo Plaza,Downtown\n"))
	assert.Error(t, err)
}

func TestLoadReference_Missing(t *testing.T) {
	assert.Nil(t, LoadReference(filepath.Join(t.TempDir(), "missing.csv")))
}

func TestLoadReference_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ref.csv")
	require.NoError(t, os.WriteFile(path, []byte(referenceCSV), 0o644))

	ref := LoadReference(path)
	require.NotNil(t, ref)
	assert.Equal(t, 2, ref.Len())
}

func TestApply(t *testing.T) {
	tbl := &ingest.Table{
		Header: []string{"address", "city", "neighborhood"},
		Rows: [][]string{
			{"100 MAIN ST", "SAN ANTONIO", ""},
			{"200 Oak Ave", "SAN ANTONIO", "Kept"},
			{"999 NOWHERE", "SAN ANTONIO", ""},
		},
	}
	ref, err := ReadReference(strings.NewReader(referenceCSV))
	require.NoError(t, err)

	matched := Apply(tbl, ref)
	assert.Equal(t, 2, matched)

	assert.Equal(t, []string{"address", "city", "neighborhood", "property_type", "property_sqft", "appraised_value"}, tbl.Header)
	assert.Equal(t, []string{"100 MAIN ST", "SAN ANTONIO", "Downtown", "Commercial", "12000", "1500000"}, tbl.Rows[0])
	assert.Equal(t, "Kept", tbl.Rows[1][2], "input value wins")
	assert.Equal(t, "Residential", tbl.Rows[1][3])
	assert.Equal(t, []string{"999 NOWHERE", "SAN ANTONIO", "", "", "", ""}, tbl.Rows[2])
}

func TestApply_NilReferenceStillAddsColumns(t *testing.T) {
	tbl := &ingest.Table{
		Header: []string{"address"},
		Rows:   [][]string{{"100 MAIN ST"}},
	}

	assert.Equal(t, 0, Apply(tbl, nil))
	assert.Equal(t, append([]string{"address"}, Columns...), tbl.Header)
	assert.Len(t, tbl.Rows[0], 5)
}
