package export

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/property-zones/internal/zone"
)

// writeXLSX writes one sheet per bucket: the four zones, then unassigned.
func writeXLSX(path string, header []string, rows [][]string, a zone.Assignment) error {
	f := xlsx.NewFile()

	addSheet := func(name string, idx []int) error {
		sheet, err := f.AddSheet(name)
		if err != nil {
			return eris.Wrapf(err, "export: add sheet %s", name)
		}
		appendRow(sheet, header)
		for _, i := range idx {
			appendRow(sheet, rows[i])
		}
		return nil
	}

	for _, z := range zone.All {
		if err := addSheet(string(z), a.Bucket(z)); err != nil {
			return err
		}
	}
	if err := addSheet(zone.Unassigned, a.Unassigned); err != nil {
		return err
	}

	return eris.Wrapf(f.Save(path), "export: save %s", path)
}

func appendRow(sheet *xlsx.Sheet, values []string) {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().SetString(v)
	}
}
