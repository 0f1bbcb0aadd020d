package vector

import (
	"archive/zip"
	"fmt"
	"path"
	"strings"

	"github.com/woozymasta/coastprep/internal/geo"
)

// readKMZ reads the main document of a KMZ archive: doc.kml when present,
// otherwise the first .kml entry.
func readKMZ(filename string) (*geo.FeatureCollection, error) {
	zr, err := zip.OpenReader(filename)
	if err != nil {
		return nil, err
	}
	defer func() { _ = zr.Close() }()

	var doc *zip.File
	for _, f := range zr.File {
		if !strings.EqualFold(path.Ext(f.Name), ".kml") {
			continue
		}
		if strings.EqualFold(path.Base(f.Name), "doc.kml") {
			doc = f
			break
		}
		if doc == nil {
			doc = f
		}
	}

	if doc == nil {
		return nil, fmt.Errorf("kmz archive has no .kml document")
	}

	rc, err := doc.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	return decodeKML(rc)
}
