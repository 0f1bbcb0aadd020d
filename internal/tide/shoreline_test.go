package tide

import (
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/woozymasta/coastprep/internal/geo"
	"github.com/woozymasta/coastprep/internal/vector"

	"github.com/matryer/is"
	"github.com/paulmach/orb"
)

func TestShorelineCentroid(t *testing.T) {
	is := is.New(t)
	dir := t.TempDir()

	path := filepath.Join(dir, "beach.geojson")
	fc := geo.NewFeatureCollection("beach", geo.WGS84())
	fc.Append(orb.Polygon{{{151, -34}, {152, -34}, {152, -33}, {151, -33}, {151, -34}}}, nil)
	is.NoErr(vector.Write(fc, path, vector.DriverGeoJSON))

	c, err := ShorelineCentroid(path)
	is.NoErr(err)
	is.True(math.Abs(c.Lon-151.5) < 1e-9)
	is.True(math.Abs(c.Lat+33.5) < 1e-9)
}

func TestShorelineCentroidProjected(t *testing.T) {
	is := is.New(t)
	dir := t.TempDir()

	utm, err := geo.LookupEPSG(32718)
	is.NoErr(err)

	path := filepath.Join(dir, "utm.geojson")
	fc := geo.NewFeatureCollection("utm", utm)
	fc.Append(orb.Point{500000, 10000000}, nil)
	is.NoErr(vector.Write(fc, path, vector.DriverGeoJSON))

	c, err := ShorelineCentroid(path)
	is.NoErr(err)
	is.True(math.Abs(c.Lon+75) < 1e-6)
	is.True(math.Abs(c.Lat) < 1e-6)
}

func TestShorelineCentroidUnknownCRS(t *testing.T) {
	is := is.New(t)
	dir := t.TempDir()

	path := filepath.Join(dir, "noprj.shp")
	fc := geo.NewFeatureCollection("noprj", geo.CRS{})
	fc.Append(orb.Point{1, 2}, nil)
	is.NoErr(vector.Write(fc, path, vector.DriverShapefile))

	_, err := ShorelineCentroid(path)
	is.True(errors.Is(err, geo.ErrUnknownCRS))
}
