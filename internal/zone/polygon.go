package zone

import (
	"github.com/twpayne/go-geom"
)

// wedgeReach is far enough in degrees to cross any box edge.
const wedgeReach = 1000.0

// Polygon returns the region of the bounds that Classify maps to z, as a
// closed lon/lat polygon in EPSG:4326. It is derived for display only and
// plays no part in classification.
func (c Classifier) Polygon(z Zone) *geom.Polygon {
	cx, cy := c.LonSplit, c.LatSplit
	r := wedgeReach

	var wedge [][2]float64
	switch z {
	case North:
		wedge = [][2]float64{{cx, cy}, {cx + r, cy + r}, {cx - r, cy + r}}
	case South:
		wedge = [][2]float64{{cx, cy}, {cx - r, cy - r}, {cx + r, cy - r}}
	case East:
		wedge = [][2]float64{{cx, cy}, {cx + r, cy - r}, {cx + r, cy + r}}
	case West:
		wedge = [][2]float64{{cx, cy}, {cx - r, cy + r}, {cx - r, cy - r}}
	default:
		return nil
	}

	ring := clipToBox(wedge, c.Bounds)
	if len(ring) < 3 {
		return nil
	}

	flat := make([]float64, 0, 2*(len(ring)+1))
	for _, p := range ring {
		flat = append(flat, p[0], p[1])
	}
	flat = append(flat, ring[0][0], ring[0][1])

	return geom.NewPolygonFlat(geom.XY, flat, []int{len(flat)}).SetSRID(4326)
}

// BoundsPolygon returns the whole bounding box as a polygon.
func (c Classifier) BoundsPolygon() *geom.Polygon {
	b := c.Bounds
	flat := []float64{
		b.WestLonMin, b.SouthLatMin,
		b.EastLonMax, b.SouthLatMin,
		b.EastLonMax, b.NorthLatMax,
		b.WestLonMin, b.NorthLatMax,
		b.WestLonMin, b.SouthLatMin,
	}
	return geom.NewPolygonFlat(geom.XY, flat, []int{len(flat)}).SetSRID(4326)
}

// clipToBox clips a convex polygon (x=lon, y=lat) against the bounds, one
// half-plane at a time.
func clipToBox(poly [][2]float64, b Bounds) [][2]float64 {
	type halfPlane struct {
		inside func(p [2]float64) bool
		cross  func(a, p [2]float64) [2]float64
	}
	atX := func(x float64) func(a, p [2]float64) [2]float64 {
		return func(a, p [2]float64) [2]float64 {
			t := (x - a[0]) / (p[0] - a[0])
			return [2]float64{x, a[1] + t*(p[1]-a[1])}
		}
	}
	atY := func(y float64) func(a, p [2]float64) [2]float64 {
		return func(a, p [2]float64) [2]float64 {
			t := (y - a[1]) / (p[1] - a[1])
			return [2]float64{a[0] + t*(p[0]-a[0]), y}
		}
	}

	planes := []halfPlane{
		{func(p [2]float64) bool { return p[0] >= b.WestLonMin }, atX(b.WestLonMin)},
		{func(p [2]float64) bool { return p[0] <= b.EastLonMax }, atX(b.EastLonMax)},
		{func(p [2]float64) bool { return p[1] >= b.SouthLatMin }, atY(b.SouthLatMin)},
		{func(p [2]float64) bool { return p[1] <= b.NorthLatMax }, atY(b.NorthLatMax)},
	}

	out := poly
	for _, hp := range planes {
		if len(out) == 0 {
			break
		}
		in := out
		out = nil
		prev := in[len(in)-1]
		for _, cur := range in {
			switch {
			case hp.inside(cur) && hp.inside(prev):
				out = append(out, cur)
			case hp.inside(cur):
				out = append(out, hp.cross(prev, cur), cur)
			case hp.inside(prev):
				out = append(out, hp.cross(prev, cur))
			}
			prev = cur
		}
	}
	return out
}
