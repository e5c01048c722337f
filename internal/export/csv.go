package export

import (
	"encoding/csv"
	"os"

	"github.com/rotisserie/eris"
)

// writeCSV writes header and rows to path. An empty bucket still gets its
// header so downstream tools see a consistent schema.
func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "export: create %s", path)
	}
	defer f.Close() //nolint:errcheck

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return eris.Wrapf(err, "export: write header %s", path)
	}
	if err := w.WriteAll(rows); err != nil {
		return eris.Wrapf(err, "export: write rows %s", path)
	}
	return eris.Wrapf(f.Close(), "export: close %s", path)
}
