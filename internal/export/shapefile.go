package export

import (
	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"

	"github.com/sells-group/property-zones/internal/zone"
)

// dbf character fields are capped at 254 bytes.
const maxDBFString = 254

// writeShapefile writes the assigned points (unassigned rows are skipped)
// with address, zone and method attributes. The .shx and .dbf companions
// are created next to path.
func writeShapefile(path string, ds Dataset) error {
	w, err := shp.Create(path, shp.POINT)
	if err != nil {
		return eris.Wrapf(err, "export: create shapefile %s", path)
	}
	defer w.Close()

	w.SetFields([]shp.Field{
		shp.StringField("ADDRESS", maxDBFString),
		shp.StringField("ZONE", 16),
		shp.StringField("METHOD", 16),
	})

	addrCol := ds.Table.Column("address")
	for i, p := range ds.Points {
		label := ds.Assignment.Labels[i]
		if label == zone.Unassigned {
			continue
		}
		lat, lon, ok := p.Coords()
		if !ok {
			continue
		}

		n := int(w.Write(&shp.Point{X: lon, Y: lat}))
		addr := ""
		if addrCol >= 0 {
			addr = truncateBytes(ds.Table.Rows[i][addrCol], maxDBFString)
		}
		for field, v := range []string{addr, label, string(p.Method)} {
			if err := w.WriteAttribute(n, field, v); err != nil {
				return eris.Wrapf(err, "export: shapefile attribute row %d", n)
			}
		}
	}
	return nil
}

func truncateBytes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
