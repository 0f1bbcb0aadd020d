// Package export writes the attribute table of a vector file to a spreadsheet.
package export

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/woozymasta/coastprep/internal/geo"
	"github.com/woozymasta/coastprep/internal/vector"

	"github.com/paulmach/orb/encoding/wkt"
	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
)

const (
	// GeometryColumn holds the WKT of each feature.
	GeometryColumn = "geometry"
	sheetName      = "Sheet1"
	spreadsheetExt = ".xlsx"
	maxCellChars   = 32767
)

// SpreadsheetPath returns the input path with its extension replaced by .xlsx.
func SpreadsheetPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + spreadsheetExt
}

// Spreadsheet reads a vector file and writes its attribute table plus a WKT
// geometry column next to it. It returns the spreadsheet path.
func Spreadsheet(path string) (string, error) {
	fc, err := vector.Read(path, "")
	if err != nil {
		return "", err
	}

	out := SpreadsheetPath(path)
	omitted, err := WriteSpreadsheet(fc, out)
	if err != nil {
		return "", err
	}
	if len(omitted) > 0 {
		log.Warn().
			Str("output", out).
			Ints("rows", omitted).
			Msg("Geometry omitted where WKT exceeds the cell limit")
	}

	log.Info().
		Str("source", path).
		Str("output", out).
		Int("rows", fc.Len()).
		Msg("Attribute table exported")

	return out, nil
}

// WriteSpreadsheet writes the collection as one header row followed by one row per feature.
// A geometry whose WKT does not fit in a cell is replaced by a marker and its
// spreadsheet row number is returned in omitted.
func WriteSpreadsheet(fc *geo.FeatureCollection, path string) ([]int, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	header := make([]interface{}, 0, len(fc.Fields)+1)
	for _, name := range fc.FieldNames() {
		header = append(header, name)
	}
	header = append(header, GeometryColumn)

	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return nil, err
	}

	var omitted []int
	for i, feat := range fc.Features {
		row := make([]interface{}, 0, len(header))
		for _, field := range fc.Fields {
			row = append(row, feat.Properties[field.Name])
		}

		geom := ""
		if feat.Geometry != nil {
			geom = wkt.MarshalString(feat.Geometry)
		}
		if len(geom) > maxCellChars {
			log.Debug().
				Int("row", i+2).
				Int("length", len(geom)).
				Msg("WKT exceeds the spreadsheet cell limit")
			geom = OmittedGeometry(len(geom))
			omitted = append(omitted, i+2)
		}
		row = append(row, geom)

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return nil, err
	}
	return omitted, nil
}

// OmittedGeometry is the cell text written in place of a WKT of length n.
func OmittedGeometry(n int) string {
	return fmt.Sprintf("GEOMETRY OMITTED: WKT has %d characters, cell limit is %d", n, maxCellChars)
}
