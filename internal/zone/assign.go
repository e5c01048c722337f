package zone

import "github.com/sells-group/property-zones/pkg/geocode"

// Assignment partitions a batch of points by row index. Every input index
// appears in exactly one bucket.
type Assignment struct {
	North      []int
	South      []int
	East       []int
	West       []int
	Unassigned []int

	// Labels holds the bucket name for each input index: a Zone value or
	// Unassigned.
	Labels []string
}

// Bucket returns the row indexes assigned to z.
func (a Assignment) Bucket(z Zone) []int {
	switch z {
	case North:
		return a.North
	case South:
		return a.South
	case East:
		return a.East
	case West:
		return a.West
	}
	return nil
}

// Total is the number of rows across all buckets.
func (a Assignment) Total() int {
	return len(a.North) + len(a.South) + len(a.East) + len(a.West) + len(a.Unassigned)
}

// AssignBatch classifies every point. Points without coordinates and points
// outside the bounds land in Unassigned.
func (c Classifier) AssignBatch(points []geocode.ResolvedPoint) Assignment {
	a := Assignment{Labels: make([]string, len(points))}

	for i, p := range points {
		lat, lon, ok := p.Coords()
		if !ok {
			a.Unassigned = append(a.Unassigned, i)
			a.Labels[i] = Unassigned
			continue
		}

		z, in := c.Classify(lat, lon)
		if !in {
			a.Unassigned = append(a.Unassigned, i)
			a.Labels[i] = Unassigned
			continue
		}

		switch z {
		case North:
			a.North = append(a.North, i)
		case South:
			a.South = append(a.South, i)
		case East:
			a.East = append(a.East, i)
		case West:
			a.West = append(a.West, i)
		}
		a.Labels[i] = string(z)
	}
	return a
}
