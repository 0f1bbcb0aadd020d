package geo

import (
	"path/filepath"
	"strings"
)

// Format is a vector file format recognized by extension.
type Format string

const (
	FormatShapefile Format = "shp"
	FormatGeoJSON   Format = "geojson"
	FormatKML       Format = "kml"
	FormatKMZ       Format = "kmz"
)

// TargetFormats are the formats every conversion job emits, in write order.
var TargetFormats = []Format{FormatShapefile, FormatGeoJSON, FormatKML}

// Ext returns the extension with the leading dot.
func (f Format) Ext() string {
	return "." + string(f)
}

// DetectFormat matches the file extension case-insensitively.
// The file content is never inspected.
func DetectFormat(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".shp":
		return FormatShapefile, true
	case ".geojson":
		return FormatGeoJSON, true
	case ".kml":
		return FormatKML, true
	case ".kmz":
		return FormatKMZ, true
	default:
		return "", false
	}
}

// Stem returns the base name without its extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// SiblingPath returns the path next to src with the same stem and the given format.
func SiblingPath(src string, f Format) string {
	return filepath.Join(filepath.Dir(src), Stem(src)+f.Ext())
}
