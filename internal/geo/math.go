package geo

import (
	"errors"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// MaxMercatorLat is the latitude limit of the Web Mercator square.
const MaxMercatorLat = 85.05112878

// ErrNoGeometry is returned when a collection has nothing to measure.
var ErrNoGeometry = errors.New("collection has no geometry")

// Centroid returns the planar centroid of all geometries in the collection.
// Areas dominate lines and lines dominate points, as in planar.CentroidArea.
func Centroid(fc *FeatureCollection) (orb.Point, error) {
	col := make(orb.Collection, 0, len(fc.Features))
	for _, f := range fc.Features {
		if f.Geometry != nil {
			col = append(col, f.Geometry)
		}
	}
	if len(col) == 0 {
		return orb.Point{}, ErrNoGeometry
	}

	c, _ := planar.CentroidArea(col)
	if math.IsNaN(c[0]) || math.IsNaN(c[1]) {
		return col.Bound().Center(), nil
	}

	return c, nil
}

// ClampLat limits a latitude to the Web Mercator range.
func ClampLat(lat float64) float64 {
	if lat > MaxMercatorLat {
		return MaxMercatorLat
	} else if lat < -MaxMercatorLat {
		return -MaxMercatorLat
	}

	return lat
}
