package tide

import (
	"fmt"

	"github.com/woozymasta/coastprep/internal/geo"
	"github.com/woozymasta/coastprep/internal/vector"
)

// ShorelineCentroid reads a vector file and returns the centroid of its
// geometries in EPSG:4326.
func ShorelineCentroid(path string) (Centroid, error) {
	fc, err := vector.Read(path, "")
	if err != nil {
		return Centroid{}, err
	}

	if fc.CRS.EPSG != 4326 {
		if !fc.CRS.Known() {
			return Centroid{}, fmt.Errorf("%s: %w", path, geo.ErrUnknownCRS)
		}
		if fc, err = fc.Reproject(4326); err != nil {
			return Centroid{}, fmt.Errorf("%s: %w", path, err)
		}
	}

	p, err := geo.Centroid(fc)
	if err != nil {
		return Centroid{}, fmt.Errorf("%s: %w", path, err)
	}

	c := Centroid{Lon: p[0], Lat: p[1]}
	return c, c.Validate()
}
