// Package zone buckets geocoded points into the four quadrants of a
// metropolitan area.
package zone

import (
	"math"

	"github.com/rotisserie/eris"
)

// Zone names one quadrant.
type Zone string

// Quadrants, in export order.
const (
	North Zone = "north"
	South Zone = "south"
	East  Zone = "east"
	West  Zone = "west"
)

// Unassigned labels points outside the area or without coordinates. It is
// not a Zone.
const Unassigned = "unassigned"

// All lists the quadrants in a stable order.
var All = []Zone{North, South, East, West}

// San Antonio defaults.
const (
	DefaultSouthLatMin = 28.80
	DefaultNorthLatMax = 30.00
	DefaultWestLonMin  = -100.00
	DefaultEastLonMax  = -97.00
	DefaultLatSplit    = 29.48
	DefaultLonSplit    = -98.45
)

// Bounds is an inclusive lat/lon box.
type Bounds struct {
	SouthLatMin float64 `json:"south_lat_min" yaml:"south_lat_min"`
	NorthLatMax float64 `json:"north_lat_max" yaml:"north_lat_max"`
	WestLonMin  float64 `json:"west_lon_min" yaml:"west_lon_min"`
	EastLonMax  float64 `json:"east_lon_max" yaml:"east_lon_max"`
}

// Contains reports whether the point lies in the box, edges included.
func (b Bounds) Contains(lat, lon float64) bool {
	return lat >= b.SouthLatMin && lat <= b.NorthLatMax &&
		lon >= b.WestLonMin && lon <= b.EastLonMax
}

// Classifier assigns a point to exactly one quadrant around the split point
// (LatSplit, LonSplit). The axis on which the point sits farther from the
// split decides; a tie goes to the latitude axis.
type Classifier struct {
	Bounds   Bounds  `json:"bounds" yaml:"bounds"`
	LatSplit float64 `json:"lat_split" yaml:"lat_split"`
	LonSplit float64 `json:"lon_split" yaml:"lon_split"`
}

// DefaultClassifier returns the San Antonio quadrant layout.
func DefaultClassifier() Classifier {
	return Classifier{
		Bounds: Bounds{
			SouthLatMin: DefaultSouthLatMin,
			NorthLatMax: DefaultNorthLatMax,
			WestLonMin:  DefaultWestLonMin,
			EastLonMax:  DefaultEastLonMax,
		},
		LatSplit: DefaultLatSplit,
		LonSplit: DefaultLonSplit,
	}
}

// Validate rejects inverted boxes and split points outside the box.
func (c Classifier) Validate() error {
	b := c.Bounds
	if b.SouthLatMin >= b.NorthLatMax {
		return eris.Errorf("zone: south_lat_min %.4f must be below north_lat_max %.4f", b.SouthLatMin, b.NorthLatMax)
	}
	if b.WestLonMin >= b.EastLonMax {
		return eris.Errorf("zone: west_lon_min %.4f must be below east_lon_max %.4f", b.WestLonMin, b.EastLonMax)
	}
	if !b.Contains(c.LatSplit, c.LonSplit) {
		return eris.Errorf("zone: split point (%.4f, %.4f) lies outside bounds", c.LatSplit, c.LonSplit)
	}
	return nil
}

// Classify returns the quadrant for a coordinate, or false when the point is
// outside the bounds. Coordinates are trusted as given; NaN is never in
// bounds.
func (c Classifier) Classify(lat, lon float64) (Zone, bool) {
	if !c.Bounds.Contains(lat, lon) {
		return "", false
	}

	latDelta := math.Abs(lat - c.LatSplit)
	lonDelta := math.Abs(lon - c.LonSplit)

	if latDelta >= lonDelta {
		if lat >= c.LatSplit {
			return North, true
		}
		return South, true
	}
	if lon >= c.LonSplit {
		return East, true
	}
	return West, true
}
