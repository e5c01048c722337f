package export

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sells-group/property-zones/internal/zone"
)

// ZoneOutlines returns one polygon feature per zone, with the zone name in
// the "zone" property.
func ZoneOutlines(c zone.Classifier) []*geojson.Feature {
	features := make([]*geojson.Feature, 0, len(zone.All))
	for _, z := range zone.All {
		poly := c.Polygon(z)
		if poly == nil {
			continue
		}
		features = append(features, &geojson.Feature{
			ID:         string(z),
			Geometry:   poly,
			Properties: map[string]any{"zone": string(z), "kind": "outline"},
		})
	}
	return features
}

// writeGeoJSON writes zone outlines followed by every resolved point.
func writeGeoJSON(path string, ds Dataset, c zone.Classifier) error {
	fc := geojson.FeatureCollection{Features: ZoneOutlines(c)}

	addrCol := ds.Table.Column("address")
	for i, p := range ds.Points {
		lat, lon, ok := p.Coords()
		if !ok {
			continue
		}
		var zoneProp any
		if z := zoneCell(ds.Assignment.Labels[i]); z != "" {
			zoneProp = z
		}
		props := map[string]any{
			"kind":   "point",
			"zone":   zoneProp,
			"method": string(p.Method),
			"query":  p.Query,
		}
		if addrCol >= 0 {
			props["address"] = ds.Table.Rows[i][addrCol]
		}
		fc.Features = append(fc.Features, &geojson.Feature{
			Geometry:   geom.NewPointFlat(geom.XY, []float64{lon, lat}),
			Properties: props,
		})
	}

	data, err := json.Marshal(&fc)
	if err != nil {
		return eris.Wrap(err, "export: encode geojson")
	}
	return eris.Wrapf(os.WriteFile(path, data, 0o644), "export: write %s", path)
}
