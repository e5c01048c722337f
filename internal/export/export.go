// Package export writes the per-zone output files of a run.
package export

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/property-zones/internal/ingest"
	"github.com/sells-group/property-zones/internal/zone"
	"github.com/sells-group/property-zones/pkg/geocode"
)

// File names inside the output directory.
const (
	AllFileName     = "all_addresses_geocoded.csv"
	StatsFileName   = "stats.yaml"
	XLSXFileName    = "zones.xlsx"
	GeoJSONFileName = "zones.geojson"
)

// Columns appended to every input row.
var geoColumns = []string{"lat", "lon", "geocode_method", "zone"}

// Options controls what is written and where.
type Options struct {
	Dir        string
	Area       string
	XLSX       bool
	GeoJSON    bool
	Shapefile  bool
	Classifier zone.Classifier
}

// Dataset is one run's result. Table rows, Points and Assignment.Labels are
// index aligned.
type Dataset struct {
	Table      *ingest.Table
	Points     []geocode.ResolvedPoint
	Assignment zone.Assignment
}

// ZoneFileName returns the CSV name for a bucket, e.g. north_san_antonio.csv.
func ZoneFileName(bucket, area string) string {
	return bucket + "_" + area + ".csv"
}

// ShapefileName returns the base .shp name for the assigned points.
func ShapefileName(area string) string {
	return "points_" + area + ".shp"
}

// Write creates opts.Dir and writes every output file concurrently. stats is
// marshalled as-is into stats.yaml. It returns the written paths, sorted.
func Write(ctx context.Context, ds Dataset, stats any, opts Options) ([]string, error) {
	if ds.Table == nil {
		return nil, eris.New("export: nil table")
	}
	if len(ds.Points) != len(ds.Table.Rows) || len(ds.Assignment.Labels) != len(ds.Table.Rows) {
		return nil, eris.Errorf("export: %d rows, %d points, %d labels",
			len(ds.Table.Rows), len(ds.Points), len(ds.Assignment.Labels))
	}
	if opts.Area == "" {
		opts.Area = "area"
	}
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "export: create dir %s", opts.Dir)
	}

	header, rows := ds.outputRows()

	var (
		mu    sync.Mutex
		files []string
	)
	g, gCtx := errgroup.WithContext(ctx)
	write := func(name string, fn func(path string) error) {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			path := filepath.Join(opts.Dir, name)
			if err := fn(path); err != nil {
				return err
			}
			mu.Lock()
			files = append(files, path)
			mu.Unlock()
			return nil
		})
	}

	write(AllFileName, func(path string) error {
		return writeCSV(path, header, rows)
	})
	for _, z := range zone.All {
		write(ZoneFileName(string(z), opts.Area), func(path string) error {
			return writeCSV(path, header, pick(rows, ds.Assignment.Bucket(z)))
		})
	}
	write(ZoneFileName(zone.Unassigned, opts.Area), func(path string) error {
		return writeCSV(path, header, pick(rows, ds.Assignment.Unassigned))
	})
	write(StatsFileName, func(path string) error {
		return writeYAML(path, stats)
	})
	if opts.XLSX {
		write(XLSXFileName, func(path string) error {
			return writeXLSX(path, header, rows, ds.Assignment)
		})
	}
	if opts.GeoJSON {
		write(GeoJSONFileName, func(path string) error {
			return writeGeoJSON(path, ds, opts.Classifier)
		})
	}
	if opts.Shapefile {
		write(ShapefileName(opts.Area), func(path string) error {
			return writeShapefile(path, ds)
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Strings(files)
	zap.L().Info("export: wrote outputs", zap.String("dir", opts.Dir), zap.Int("files", len(files)))
	return files, nil
}

// outputRows appends the geocode columns to every input row.
func (ds Dataset) outputRows() ([]string, [][]string) {
	header := append(append([]string{}, ds.Table.Header...), geoColumns...)
	rows := make([][]string, len(ds.Table.Rows))
	for i, in := range ds.Table.Rows {
		row := make([]string, 0, len(header))
		row = append(row, in...)
		p := ds.Points[i]
		lat, lon := "", ""
		if la, lo, ok := p.Coords(); ok {
			lat, lon = formatCoord(la), formatCoord(lo)
		}
		row = append(row, lat, lon, string(p.Method), zoneCell(ds.Assignment.Labels[i]))
		rows[i] = row
	}
	return header, rows
}

// zoneCell is the zone column value: a zone name, or empty for unassigned
// rows.
func zoneCell(label string) string {
	if label == zone.Unassigned {
		return ""
	}
	return label
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func pick(rows [][]string, idx []int) [][]string {
	out := make([][]string, 0, len(idx))
	for _, i := range idx {
		out = append(out, rows[i])
	}
	return out
}

func writeYAML(path string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return eris.Wrap(err, "export: marshal stats")
	}
	return eris.Wrapf(os.WriteFile(path, data, 0o644), "export: write %s", path)
}
