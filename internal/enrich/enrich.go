// Package enrich joins optional property details onto the input table by
// normalized address.
package enrich

import (
	"encoding/csv"
	"errors"
	"io"
	"io/fs"
	"os"
	"slices"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/property-zones/internal/ingest"
)

// DefaultReferencePath is where the reference dataset is looked for when no
// path is configured.
const DefaultReferencePath = "data/property_reference.csv"

// Columns are always present in enriched output, in this order.
var Columns = []string{"neighborhood", "property_type", "property_sqft", "appraised_value"}

type referenceRow struct {
	Address        string `csv:"address"`
	Neighborhood   string `csv:"neighborhood"`
	PropertyType   string `csv:"property_type"`
	PropertySqft   string `csv:"property_sqft"`
	AppraisedValue string `csv:"appraised_value"`
}

func (r referenceRow) values() []string {
	return []string{r.Neighborhood, r.PropertyType, r.PropertySqft, r.AppraisedValue}
}

// Reference is a loaded property dataset keyed by normalized address. A nil
// Reference matches nothing.
type Reference struct {
	byAddress map[string][]string
}

// NormalizeAddress upper-cases s and collapses runs of whitespace.
func NormalizeAddress(s string) string {
	return strings.Join(strings.Fields(strings.ToUpper(s)), " ")
}

// LoadReference reads the dataset at path. A missing file, an unreadable
// file or one without an address column all yield a nil Reference and no
// error: enrichment is optional and never blocks a run.
func LoadReference(path string) *Reference {
	log := zap.L().With(zap.String("component", "enrich"), zap.String("path", path))

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Debug("no property reference, skipping enrichment")
		return nil
	}
	if err != nil {
		log.Warn("cannot open property reference", zap.Error(err))
		return nil
	}
	defer f.Close() //nolint:errcheck

	ref, err := ReadReference(f)
	if err != nil {
		log.Warn("ignoring property reference", zap.Error(err))
		return nil
	}
	log.Info("loaded property reference", zap.Int("addresses", ref.Len()))
	return ref
}

// ReadReference parses a reference CSV. Only the address column is
// required. When an address repeats, the first row wins.
func ReadReference(r io.Reader) (*Reference, error) {
	dec, err := csvutil.NewDecoder(csv.NewReader(r))
	if err != nil {
		return nil, eris.Wrap(err, "enrich: read header")
	}
	if !slices.Contains(dec.Header(), "address") {
		return nil, eris.New("enrich: reference has no address column")
	}

	ref := &Reference{byAddress: make(map[string][]string)}
	for {
		var row referenceRow
		if err := dec.Decode(&row); err == io.EOF {
			break
		} else if err != nil {
			return nil, eris.Wrap(err, "enrich: decode row")
		}

		key := NormalizeAddress(row.Address)
		if key == "" {
			continue
		}
		if _, dup := ref.byAddress[key]; !dup {
			ref.byAddress[key] = row.values()
		}
	}
	return ref, nil
}

// Len returns the number of distinct addresses.
func (r *Reference) Len() int {
	if r == nil {
		return 0
	}
	return len(r.byAddress)
}

// Lookup returns the detail values for addr in Columns order.
func (r *Reference) Lookup(addr string) ([]string, bool) {
	if r == nil {
		return nil, false
	}
	v, ok := r.byAddress[NormalizeAddress(addr)]
	return v, ok
}

// Apply makes sure tbl carries every enrichment column, appending missing
// ones, and fills empty cells from ref. Values already present in the input
// are kept. It returns the number of rows that matched the reference.
func Apply(tbl *ingest.Table, ref *Reference) int {
	cols := make([]int, len(Columns))
	for i, name := range Columns {
		idx := tbl.Column(name)
		if idx < 0 {
			tbl.Header = append(tbl.Header, name)
			idx = len(tbl.Header) - 1
			for r := range tbl.Rows {
				tbl.Rows[r] = append(tbl.Rows[r], "")
			}
		}
		cols[i] = idx
	}

	addrCol := tbl.Column(ingest.ColAddress)
	if addrCol < 0 || ref.Len() == 0 {
		return 0
	}

	matched := 0
	for _, row := range tbl.Rows {
		values, ok := ref.Lookup(row[addrCol])
		if !ok {
			continue
		}
		matched++
		for i, idx := range cols {
			if strings.TrimSpace(row[idx]) == "" {
				row[idx] = values[i]
			}
		}
	}
	return matched
}
