package domain

import (
	"fmt"
	"math"
)

// DefaultTieEpsilonKm is the distance within which two grid features count as
// equidistant from a query point.
const DefaultTieEpsilonKm = 1e-6

// GridFeature is one transmission or distribution asset: a polyline of (lon, lat)
// vertices, or a single vertex for point assets such as substations.
type GridFeature struct {
	ID           string  `json:"id"`
	Geometry     []Point `json:"geometry"`
	VoltageClass string  `json:"voltage_class,omitempty"`
}

// GridConnection is the nearest grid feature to a query point.
type GridConnection struct {
	FeatureID    string  `json:"feature_id"`
	VoltageClass string  `json:"voltage_class,omitempty"`
	DistanceKm   float64 `json:"distance_km"`
	Nearest      Point   `json:"nearest_point"`
}

// GridLocator finds the nearest grid feature by great-circle distance.
type GridLocator struct {
	tieEpsilonKm float64
}

// NewGridLocator returns a locator that treats features within tieEpsilonKm of
// the minimum distance as tied. A negative epsilon selects DefaultTieEpsilonKm.
func NewGridLocator(tieEpsilonKm float64) GridLocator {
	if tieEpsilonKm < 0 || math.IsNaN(tieEpsilonKm) {
		tieEpsilonKm = DefaultTieEpsilonKm
	}
	return GridLocator{tieEpsilonKm: tieEpsilonKm}
}

// Nearest returns the feature closest to query and the haversine distance to the
// closest point on its geometry. Ties within the locator's epsilon resolve to the
// lowest feature ID, so the result does not depend on input order.
func (l GridLocator) Nearest(query Point, features []GridFeature) (GridConnection, error) {
	if len(features) == 0 {
		return GridConnection{}, ErrEmptyFeatureSet
	}
	if err := query.Validate(); err != nil {
		return GridConnection{}, err
	}

	candidates := make([]GridConnection, len(features))
	minDist := math.Inf(1)
	for i, f := range features {
		d, nearest, err := featureDistance(query, f)
		if err != nil {
			return GridConnection{}, err
		}
		candidates[i] = GridConnection{FeatureID: f.ID, VoltageClass: f.VoltageClass, DistanceKm: d, Nearest: nearest}
		minDist = math.Min(minDist, d)
	}

	best := -1
	for i, c := range candidates {
		if c.DistanceKm-minDist > l.tieEpsilonKm {
			continue
		}
		if best < 0 || c.FeatureID < candidates[best].FeatureID {
			best = i
		}
	}
	return candidates[best], nil
}

// featureDistance returns the minimum distance from p to any segment of f.
func featureDistance(p Point, f GridFeature) (float64, Point, error) {
	if len(f.Geometry) == 0 {
		return 0, Point{}, invalidInput("grid feature %q has no vertices", f.ID)
	}
	for _, v := range f.Geometry {
		if err := v.Validate(); err != nil {
			return 0, Point{}, fmt.Errorf("grid feature %q: %w", f.ID, err)
		}
	}

	if len(f.Geometry) == 1 {
		return HaversineKm(p, f.Geometry[0]), f.Geometry[0], nil
	}

	best := math.Inf(1)
	var nearest Point
	for i := 1; i < len(f.Geometry); i++ {
		d, q := segmentDistance(p, f.Geometry[i-1], f.Geometry[i])
		if d < best {
			best, nearest = d, q
		}
	}
	return best, nearest, nil
}
