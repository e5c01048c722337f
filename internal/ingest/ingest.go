// Package ingest reads the uploaded address list (CSV or Excel) into a
// rectangular table with canonical column names.
package ingest

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/sells-group/property-zones/pkg/geocode"
)

// Canonical column names.
const (
	ColAddress = "address"
	ColCity    = "city"
	ColState   = "state"
	ColZip     = "zip"
)

var (
	// ErrNoAddressColumn means no header maps to the address column.
	ErrNoAddressColumn = eris.New("ingest: no address column")
	// ErrEmpty means the file has a header but no data rows.
	ErrEmpty = eris.New("ingest: no data rows")
)

// Table is a header plus rows, every row padded to the header width.
type Table struct {
	Header []string
	Rows   [][]string
}

// Column returns the index of name in the header, or -1.
func (t *Table) Column(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// Validate checks that the table can be geocoded.
func (t *Table) Validate() error {
	if t.Column(ColAddress) < 0 {
		return ErrNoAddressColumn
	}
	if len(t.Rows) == 0 {
		return ErrEmpty
	}
	return nil
}

// Records projects each row onto an AddressRecord. Missing optional columns
// yield empty fields.
func (t *Table) Records() []geocode.AddressRecord {
	addr, city, state, zip := t.Column(ColAddress), t.Column(ColCity), t.Column(ColState), t.Column(ColZip)
	cell := func(row []string, i int) string {
		if i < 0 || i >= len(row) {
			return ""
		}
		return row[i]
	}

	out := make([]geocode.AddressRecord, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = geocode.AddressRecord{
			Address: cell(row, addr),
			City:    cell(row, city),
			State:   cell(row, state),
			Zip:     cell(row, zip),
		}
	}
	return out
}

// ReadFile loads path, choosing the parser by extension.
func ReadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: open %s", path)
	}
	defer f.Close() //nolint:errcheck
	return Read(f, filepath.Base(path))
}

// Read parses r as CSV or XLSX depending on the extension of name.
func Read(r io.Reader, name string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, eris.Wrapf(err, "ingest: read %s", name)
		}
		return ReadXLSX(data)
	case ".csv", ".txt", "":
		return ReadCSV(r)
	default:
		return nil, eris.Errorf("ingest: unsupported file type %q", filepath.Ext(name))
	}
}

// ReadCSV parses a comma separated file with a header row. A UTF-8 byte
// order mark is dropped.
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "ingest: parse csv")
	}
	return newTable(records)
}

// ReadXLSX parses the first sheet of an Excel workbook.
func ReadXLSX(data []byte) (*Table, error) {
	f, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, eris.Wrap(err, "ingest: open xlsx")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("ingest: workbook has no sheets")
	}

	var records [][]string
	for _, row := range f.Sheets[0].Rows {
		if row == nil {
			continue
		}
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = cell.String()
		}
		records = append(records, cells)
	}
	return newTable(records)
}

func newTable(records [][]string) (*Table, error) {
	if len(records) == 0 {
		return nil, eris.New("ingest: missing header row")
	}

	t := &Table{Header: NormalizeHeader(records[0])}
	width := len(t.Header)
	for _, rec := range records[1:] {
		if blank(rec) {
			continue
		}
		row := make([]string, width)
		copy(row, rec)
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
