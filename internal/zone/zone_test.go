package zone

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	c := DefaultClassifier()

	tests := []struct {
		name     string
		lat, lon float64
		expected Zone
		ok       bool
	}{
		{name: "east: lon delta wins", lat: 29.50, lon: -98.40, expected: East, ok: true},
		{name: "south: lat delta wins", lat: 29.30, lon: -98.50, expected: South, ok: true},
		{name: "north", lat: 29.90, lon: -98.50, expected: North, ok: true},
		{name: "west", lat: 29.40, lon: -99.50, expected: West, ok: true},
		{name: "split point itself is north", lat: 29.48, lon: -98.45, expected: North, ok: true},
		{name: "on lon split east side", lat: 29.48, lon: -98.00, expected: East, ok: true},
		{name: "north edge inclusive", lat: 30.00, lon: -98.45, expected: North, ok: true},
		{name: "south-west corner inclusive", lat: 28.80, lon: -100.00, expected: West, ok: true},
		{name: "above box", lat: 30.01, lon: -98.45},
		{name: "below box", lat: 28.79, lon: -98.45},
		{name: "west of box", lat: 29.48, lon: -100.01},
		{name: "east of box", lat: 29.48, lon: -96.99},
		{name: "NaN", lat: math.NaN(), lon: -98.45},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			z, ok := c.Classify(tt.lat, tt.lon)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, z)
		})
	}
}

func TestClassify_TieGoesToLatitude(t *testing.T) {
	c := Classifier{
		Bounds:   Bounds{SouthLatMin: -10, NorthLatMax: 10, WestLonMin: -10, EastLonMax: 10},
		LatSplit: 0,
		LonSplit: 0,
	}

	z, ok := c.Classify(0.5, 0.5)
	require.True(t, ok)
	assert.Equal(t, North, z)

	z, ok = c.Classify(-0.5, 0.5)
	require.True(t, ok)
	assert.Equal(t, South, z)
}

func TestClassify_Deterministic(t *testing.T) {
	c := DefaultClassifier()
	for i := 0; i < 10; i++ {
		z, ok := c.Classify(29.50, -98.40)
		require.True(t, ok)
		assert.Equal(t, East, z)
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, DefaultClassifier().Validate())

	inverted := DefaultClassifier()
	inverted.Bounds.SouthLatMin, inverted.Bounds.NorthLatMax = 30.0, 28.8
	assert.Error(t, inverted.Validate())

	flipped := DefaultClassifier()
	flipped.Bounds.WestLonMin = -96.0
	assert.Error(t, flipped.Validate())

	outside := DefaultClassifier()
	outside.LatSplit = 31.0
	assert.Error(t, outside.Validate())
}

func TestPolygon_AreasPartitionBounds(t *testing.T) {
	c := DefaultClassifier()
	b := c.Bounds
	boxArea := (b.NorthLatMax - b.SouthLatMin) * (b.EastLonMax - b.WestLonMin)

	var sum float64
	for _, z := range All {
		p := c.Polygon(z)
		require.NotNil(t, p, z)
		assert.Equal(t, 4326, p.SRID())
		sum += p.Area()
	}
	assert.InDelta(t, boxArea, sum, 1e-9)
	assert.InDelta(t, boxArea, c.BoundsPolygon().Area(), 1e-9)
}

func TestPolygon_NorthTriangle(t *testing.T) {
	c := DefaultClassifier()
	p := c.Polygon(North)
	require.NotNil(t, p)

	// Split is 0.52 below the north edge, and both diagonals reach it inside
	// the box, so the north region is a triangle of base 1.04.
	assert.InDelta(t, 0.5*1.04*0.52, p.Area(), 1e-9)
}

func TestPolygon_UnknownZone(t *testing.T) {
	assert.Nil(t, DefaultClassifier().Polygon(Zone("central")))
}
