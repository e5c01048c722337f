package pipeline

import (
	"time"

	"github.com/sells-group/property-zones/internal/zone"
	"github.com/sells-group/property-zones/pkg/geocode"
)

// Stats summarizes one run. It is recomputed from the run's points and
// assignment every time and only ever persisted as stats.yaml next to the
// CSVs it describes.
type Stats struct {
	RunID      string          `json:"run_id" yaml:"run_id"`
	Area       string          `json:"area" yaml:"area"`
	Total      int             `json:"total" yaml:"total"`
	Geocoded   int             `json:"geocoded" yaml:"geocoded"`
	Unassigned int             `json:"unassigned" yaml:"unassigned"`
	North      int             `json:"north" yaml:"north"`
	South      int             `json:"south" yaml:"south"`
	East       int             `json:"east" yaml:"east"`
	West       int             `json:"west" yaml:"west"`
	Enriched   int             `json:"enriched" yaml:"enriched"`
	Methods    geocode.Summary `json:"methods" yaml:"methods"`
	StartedAt  time.Time       `json:"started_at" yaml:"started_at"`
	Duration   string          `json:"duration" yaml:"duration"`
}

// ComputeStats derives the counts for a run. North+South+East+West+Unassigned
// always equals Total, and Geocoded never exceeds Total.
func ComputeStats(points []geocode.ResolvedPoint, a zone.Assignment, methods geocode.Summary) Stats {
	s := Stats{
		Total:      len(points),
		Unassigned: len(a.Unassigned),
		North:      len(a.North),
		South:      len(a.South),
		East:       len(a.East),
		West:       len(a.West),
		Methods:    methods,
	}
	for _, p := range points {
		if p.Resolved() {
			s.Geocoded++
		}
	}
	return s
}

// Zoned is the number of rows placed in one of the four zones.
func (s Stats) Zoned() int {
	return s.North + s.South + s.East + s.West
}
