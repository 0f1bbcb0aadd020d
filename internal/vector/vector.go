// Package vector reads and writes feature collections as Shapefile, GeoJSON and KML.
package vector

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/woozymasta/coastprep/internal/geo"
)

// Driver names a file format codec, using the names GDAL gives them.
type Driver string

const (
	DriverShapefile Driver = "ESRI Shapefile"
	DriverGeoJSON   Driver = "GeoJSON"
	DriverKML       Driver = "KML"
)

var (
	ErrUnsupportedDriver   = errors.New("unsupported driver")
	ErrMixedGeometry       = errors.New("mixed geometry types")
	ErrUnsupportedGeometry = errors.New("unsupported geometry")
	ErrOrphanSidecar       = errors.New("shapefile sidecars exist without a .shp")
)

// WriteOptions tune the encoded output.
type WriteOptions struct {
	// Compact minifies text formats (GeoJSON, KML).
	Compact bool
}

// DriverFor returns the default driver for a detected format.
func DriverFor(f geo.Format) Driver {
	switch f {
	case geo.FormatShapefile:
		return DriverShapefile
	case geo.FormatGeoJSON:
		return DriverGeoJSON
	case geo.FormatKML, geo.FormatKMZ:
		return DriverKML
	default:
		return ""
	}
}

// Read loads a vector file. An empty driver selects the default one for the extension.
func Read(path string, driver Driver) (*geo.FeatureCollection, error) {
	if driver == "" {
		f, ok := geo.DetectFormat(path)
		if !ok {
			return nil, fmt.Errorf("%w: no driver for %s", ErrUnsupportedDriver, path)
		}
		driver = DriverFor(f)
	}

	var (
		fc  *geo.FeatureCollection
		err error
	)

	switch driver {
	case DriverShapefile:
		fc, err = readShapefile(path)
	case DriverGeoJSON:
		fc, err = readGeoJSONFile(path)
	case DriverKML:
		if strings.EqualFold(filepath.Ext(path), geo.FormatKMZ.Ext()) {
			fc, err = readKMZ(path)
		} else {
			fc, err = readKMLFile(path)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}

	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if fc.Name == "" {
		fc.Name = geo.Stem(path)
	}
	fc.InferFields()

	return fc, nil
}

// Write stores the collection at path with the given driver.
func Write(fc *geo.FeatureCollection, path string, driver Driver) error {
	return WriteWith(fc, path, driver, WriteOptions{})
}

// WriteWith stores the collection at path with the given driver and options.
// Text formats are written to a temporary file and renamed into place.
func WriteWith(fc *geo.FeatureCollection, path string, driver Driver, opts WriteOptions) error {
	if len(fc.Fields) == 0 {
		cp := *fc
		cp.InferFields()
		fc = &cp
	}

	var err error
	switch driver {
	case DriverShapefile:
		err = writeShapefile(fc, path)
	case DriverGeoJSON:
		err = writeAtomic(path, func(w io.Writer) error {
			return encodeGeoJSON(w, fc, opts)
		})
	case DriverKML:
		err = writeAtomic(path, func(w io.Writer) error {
			return encodeKML(w, fc, opts)
		})
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}

	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	return nil
}

// writeAtomic never leaves a partial file at path.
func writeAtomic(path string, encode func(io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	bw := bufio.NewWriter(tmp)
	if err = encode(bw); err != nil {
		return err
	}
	if err = bw.Flush(); err != nil {
		return err
	}
	if err = tmp.Chmod(0644); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), path)
}
