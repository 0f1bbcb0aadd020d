package vector

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/woozymasta/coastprep/internal/geo"

	"github.com/paulmach/orb"
	"github.com/rs/zerolog/log"
	"github.com/twpayne/go-kml"
)

// encodeKML writes longitude/latitude output; collections in another known CRS
// are reprojected to EPSG:4326 first.
func encodeKML(w io.Writer, fc *geo.FeatureCollection, opts WriteOptions) error {
	wgs84 := geo.WGS84()
	switch {
	case !fc.CRS.Known():
		log.Warn().
			Str("layer", fc.Name).
			Msg("Writing KML from a collection without CRS, coordinates are assumed to be longitude/latitude")
	case fc.CRS.EPSG != wgs84.EPSG:
		projected, err := fc.Reproject(wgs84.EPSG)
		if err != nil {
			return err
		}
		fc = projected
	}

	id := xmlID(fc.Name)
	children := []kml.Element{kml.Name(fc.Name)}

	var fields []geo.Field
	for _, f := range fc.Fields {
		if f.Name == kmlNameField || f.Name == kmlDescriptionField {
			continue
		}
		fields = append(fields, f)
	}
	if len(fields) > 0 {
		simple := make([]kml.Element, 0, len(fields))
		for _, f := range fields {
			simple = append(simple, kml.SimpleField(f.Name, kmlType(f.Type)))
		}
		children = append(children, kml.Schema(id, id, simple...))
	}

	for i, f := range fc.Features {
		pm := []kml.Element{
			kml.Name(geo.FormatValue(f.Properties[kmlNameField])),
			kml.Description(geo.FormatValue(f.Properties[kmlDescriptionField])),
		}

		var data []kml.Element
		for _, field := range fields {
			v, ok := f.Properties[field.Name]
			if !ok || v == nil {
				continue
			}
			data = append(data, kml.SimpleData(field.Name, geo.FormatValue(v)))
		}
		if len(data) > 0 {
			pm = append(pm, kml.ExtendedData(kml.SchemaData("#"+id, data...)))
		}

		if f.Geometry != nil {
			g, err := geometryToKML(f.Geometry)
			if err != nil {
				return fmt.Errorf("feature %d: %w", i, err)
			}
			pm = append(pm, g)
		}

		children = append(children, kml.Placemark(pm...))
	}

	var buf bytes.Buffer
	indent := "  "
	if opts.Compact {
		indent = ""
	}
	if err := kml.KML(kml.Document(children...)).WriteIndent(&buf, "", indent); err != nil {
		return err
	}
	buf.WriteByte('\n')

	out := buf.Bytes()
	if opts.Compact {
		var err error
		if out, err = compact(mimeKML, out); err != nil {
			return err
		}
	}

	_, err := w.Write(out)
	return err
}

func geometryToKML(g orb.Geometry) (kml.Element, error) {
	switch v := g.(type) {
	case orb.Point:
		return kml.Point(kml.Coordinates(kmlCoordinates(v)...)), nil
	case orb.LineString:
		return kml.LineString(kml.Coordinates(kmlCoordinates(v...)...)), nil
	case orb.Ring:
		return polygonToKML(orb.Polygon{v}), nil
	case orb.Polygon:
		return polygonToKML(v), nil
	case orb.Bound:
		return polygonToKML(v.ToPolygon()), nil
	case orb.MultiPoint:
		parts := make([]kml.Element, 0, len(v))
		for _, p := range v {
			parts = append(parts, kml.Point(kml.Coordinates(kmlCoordinates(p)...)))
		}
		return kml.MultiGeometry(parts...), nil
	case orb.MultiLineString:
		parts := make([]kml.Element, 0, len(v))
		for _, ls := range v {
			parts = append(parts, kml.LineString(kml.Coordinates(kmlCoordinates(ls...)...)))
		}
		return kml.MultiGeometry(parts...), nil
	case orb.MultiPolygon:
		parts := make([]kml.Element, 0, len(v))
		for _, p := range v {
			parts = append(parts, polygonToKML(p))
		}
		return kml.MultiGeometry(parts...), nil
	case orb.Collection:
		parts := make([]kml.Element, 0, len(v))
		for _, sub := range v {
			e, err := geometryToKML(sub)
			if err != nil {
				return nil, err
			}
			parts = append(parts, e)
		}
		return kml.MultiGeometry(parts...), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedGeometry, g)
	}
}

func polygonToKML(p orb.Polygon) kml.Element {
	rings := make([]kml.Element, 0, len(p))
	for i, r := range p {
		ring := kml.LinearRing(kml.Coordinates(kmlCoordinates(r...)...))
		if i == 0 {
			rings = append(rings, kml.OuterBoundaryIs(ring))
			continue
		}
		rings = append(rings, kml.InnerBoundaryIs(ring))
	}

	return kml.Polygon(rings...)
}

func kmlCoordinates(pts ...orb.Point) []kml.Coordinate {
	out := make([]kml.Coordinate, len(pts))
	for i, p := range pts {
		out[i] = kml.Coordinate{Lon: p[0], Lat: p[1]}
	}

	return out
}

func kmlType(t geo.FieldType) string {
	switch t {
	case geo.FieldInteger:
		return "int"
	case geo.FieldFloat:
		return "double"
	case geo.FieldBool:
		return "bool"
	default:
		return "string"
	}
}

// xmlID turns a layer name into a valid XML id.
func xmlID(name string) string {
	var sb strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			sb.WriteRune(r)
			continue
		}
		sb.WriteByte('_')
	}

	id := sb.String()
	if id == "" || (id[0] >= '0' && id[0] <= '9') || id[0] == '-' {
		id = "layer_" + id
	}

	return id
}
