package geo

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReprojectUTM(t *testing.T) {
	fc := NewFeatureCollection("pt", WGS84())
	fc.Append(orb.Point{-75, 0}, map[string]interface{}{"name": "origin"})

	out, err := fc.Reproject(32718)
	require.NoError(t, err)
	assert.Equal(t, 32718, out.CRS.EPSG)
	assert.Equal(t, "origin", out.Features[0].Properties["name"])

	p := out.Features[0].Geometry.(orb.Point)
	assert.InDelta(t, 500000, p[0], 0.01)
	assert.InDelta(t, 10000000, p[1], 0.01)

	// source untouched
	assert.Equal(t, orb.Point{-75, 0}, fc.Features[0].Geometry.(orb.Point))
}

func TestReprojectRoundTrip(t *testing.T) {
	fc := NewFeatureCollection("coast", WGS84())
	line := orb.LineString{{151.28, -33.72}, {151.30, -33.73}, {151.32, -33.71}}
	fc.Append(line, nil)

	mga, err := fc.Reproject(28356)
	require.NoError(t, err)

	back, err := mga.Reproject(4326)
	require.NoError(t, err)

	got := back.Features[0].Geometry.(orb.LineString)
	require.Len(t, got, len(line))
	for i := range line {
		assert.InDelta(t, line[i][0], got[i][0], 1e-6)
		assert.InDelta(t, line[i][1], got[i][1], 1e-6)
	}
}

func TestReprojectSameCRS(t *testing.T) {
	fc := NewFeatureCollection("pt", WGS84())
	fc.Append(orb.Point{10, 20}, nil)

	out, err := fc.Reproject(4326)
	require.NoError(t, err)
	assert.Equal(t, orb.Point{10, 20}, out.Features[0].Geometry)
}

func TestReprojectErrors(t *testing.T) {
	fc := NewFeatureCollection("pt", CRS{})
	fc.Append(orb.Point{1, 1}, nil)

	_, err := fc.Reproject(4326)
	assert.ErrorIs(t, err, ErrUnknownCRS)

	fc.CRS = WGS84()
	_, err = fc.Reproject(123)
	assert.ErrorIs(t, err, ErrUnknownEPSG)
}

func TestCentroid(t *testing.T) {
	fc := NewFeatureCollection("c", WGS84())
	_, err := Centroid(fc)
	assert.ErrorIs(t, err, ErrNoGeometry)

	fc.Append(orb.Polygon{{{0, 0}, {2, 0}, {2, 2}, {0, 2}, {0, 0}}}, nil)
	fc.Append(orb.Point{100, 100}, nil)

	c, err := Centroid(fc)
	require.NoError(t, err)
	assert.InDelta(t, 1, c[0], 1e-9)
	assert.InDelta(t, 1, c[1], 1e-9)

	assert.Equal(t, MaxMercatorLat, ClampLat(90))
	assert.Equal(t, -MaxMercatorLat, ClampLat(-89))
	assert.Equal(t, 12.5, ClampLat(12.5))
}
