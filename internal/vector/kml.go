package vector

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/woozymasta/coastprep/internal/geo"

	"github.com/paulmach/orb"
)

// Attribute names mapped onto the Placemark name and description elements.
const (
	kmlNameField        = "Name"
	kmlDescriptionField = "Description"
)

// The types below decode KML; writing goes through go-kml.

type kmlSchema struct {
	Name   string           `xml:"name,attr"`
	ID     string           `xml:"id,attr"`
	Fields []kmlSimpleField `xml:"SimpleField"`
}

type kmlSimpleField struct {
	Name string `xml:"name,attr"`
	Type string `xml:"type,attr"`
}

type kmlPlacemark struct {
	Name          string            `xml:"name,omitempty"`
	Description   string            `xml:"description,omitempty"`
	ExtendedData  *kmlExtendedData  `xml:"ExtendedData,omitempty"`
	Point         *kmlCoords        `xml:"Point,omitempty"`
	LineString    *kmlCoords        `xml:"LineString,omitempty"`
	LinearRing    *kmlCoords        `xml:"LinearRing,omitempty"`
	Polygon       *kmlPolygon       `xml:"Polygon,omitempty"`
	MultiGeometry *kmlMultiGeometry `xml:"MultiGeometry,omitempty"`
}

type kmlExtendedData struct {
	Data       []kmlData       `xml:"Data,omitempty"`
	SchemaData []kmlSchemaData `xml:"SchemaData,omitempty"`
}

type kmlData struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value"`
}

type kmlSchemaData struct {
	SchemaURL  string          `xml:"schemaUrl,attr"`
	SimpleData []kmlSimpleData `xml:"SimpleData"`
}

type kmlSimpleData struct {
	Name  string `xml:"name,attr"`
	Value string `xml:",chardata"`
}

type kmlCoords struct {
	Coordinates string `xml:"coordinates"`
}

type kmlBoundary struct {
	LinearRing kmlCoords `xml:"LinearRing"`
}

type kmlPolygon struct {
	Outer kmlBoundary   `xml:"outerBoundaryIs"`
	Inner []kmlBoundary `xml:"innerBoundaryIs,omitempty"`
}

type kmlMultiGeometry struct {
	Points          []kmlCoords        `xml:"Point,omitempty"`
	LineStrings     []kmlCoords        `xml:"LineString,omitempty"`
	LinearRings     []kmlCoords        `xml:"LinearRing,omitempty"`
	Polygons        []kmlPolygon       `xml:"Polygon,omitempty"`
	MultiGeometries []kmlMultiGeometry `xml:"MultiGeometry,omitempty"`
}

func readKMLFile(path string) (*geo.FeatureCollection, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	return decodeKML(f)
}

// decodeKML streams the document and collects every Placemark regardless of
// Folder nesting. Schema declarations type the SimpleData values.
func decodeKML(r io.Reader) (*geo.FeatureCollection, error) {
	dec := xml.NewDecoder(r)
	fc := geo.NewFeatureCollection("", geo.WGS84())
	schemas := make(map[string]map[string]string)
	sawRoot := false

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode kml: %w", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		switch start.Name.Local {
		case "kml":
			sawRoot = true

		case "Schema":
			var s kmlSchema
			if err := dec.DecodeElement(&s, &start); err != nil {
				return nil, fmt.Errorf("decode kml schema: %w", err)
			}
			types := make(map[string]string, len(s.Fields))
			for _, f := range s.Fields {
				types[f.Name] = f.Type
			}
			schemas[s.ID] = types
			if s.Name != "" {
				schemas[s.Name] = types
			}

		case "Placemark":
			var pm kmlPlacemark
			if err := dec.DecodeElement(&pm, &start); err != nil {
				return nil, fmt.Errorf("decode kml placemark: %w", err)
			}
			g, err := pm.geometry()
			if err != nil {
				return nil, fmt.Errorf("placemark %d: %w", fc.Len(), err)
			}
			fc.Append(g, pm.properties(schemas))
		}
	}

	if !sawRoot {
		return nil, fmt.Errorf("decode kml: missing kml root element")
	}

	return fc, nil
}

func (pm kmlPlacemark) properties(schemas map[string]map[string]string) map[string]interface{} {
	props := map[string]interface{}{
		kmlNameField:        strings.TrimSpace(pm.Name),
		kmlDescriptionField: strings.TrimSpace(pm.Description),
	}
	if pm.ExtendedData == nil {
		return props
	}

	for _, d := range pm.ExtendedData.Data {
		props[d.Name] = strings.TrimSpace(d.Value)
	}
	for _, sd := range pm.ExtendedData.SchemaData {
		types := schemas[strings.TrimPrefix(sd.SchemaURL, "#")]
		for _, d := range sd.SimpleData {
			props[d.Name] = parseKMLValue(strings.TrimSpace(d.Value), types[d.Name])
		}
	}

	return props
}

func parseKMLValue(s, typ string) interface{} {
	switch typ {
	case "int", "uint", "short", "ushort":
		if v, err := strconv.Atoi(s); err == nil {
			return v
		}
	case "float", "double":
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			return v
		}
	case "bool":
		if v, err := strconv.ParseBool(s); err == nil {
			return v
		}
	}

	return s
}

func (pm kmlPlacemark) geometry() (orb.Geometry, error) {
	switch {
	case pm.Point != nil:
		return pointFromKML(*pm.Point)
	case pm.LineString != nil:
		return parseCoordinates(pm.LineString.Coordinates)
	case pm.LinearRing != nil:
		ls, err := parseCoordinates(pm.LinearRing.Coordinates)
		if err != nil {
			return nil, err
		}
		return orb.Polygon{orb.Ring(ls)}, nil
	case pm.Polygon != nil:
		return polygonFromKML(*pm.Polygon)
	case pm.MultiGeometry != nil:
		return multiFromKML(*pm.MultiGeometry)
	default:
		return nil, nil
	}
}

func pointFromKML(c kmlCoords) (orb.Geometry, error) {
	ls, err := parseCoordinates(c.Coordinates)
	if err != nil {
		return nil, err
	}
	if len(ls) != 1 {
		return nil, fmt.Errorf("point has %d coordinates", len(ls))
	}

	return ls[0], nil
}

func polygonFromKML(p kmlPolygon) (orb.Polygon, error) {
	outer, err := parseCoordinates(p.Outer.LinearRing.Coordinates)
	if err != nil {
		return nil, err
	}

	poly := orb.Polygon{orb.Ring(outer)}
	for _, in := range p.Inner {
		ring, err := parseCoordinates(in.LinearRing.Coordinates)
		if err != nil {
			return nil, err
		}
		poly = append(poly, orb.Ring(ring))
	}

	return poly, nil
}

// multiFromKML collapses homogeneous MultiGeometry into the matching multi type.
func multiFromKML(m kmlMultiGeometry) (orb.Geometry, error) {
	var col orb.Collection

	for _, c := range m.Points {
		g, err := pointFromKML(c)
		if err != nil {
			return nil, err
		}
		col = append(col, g)
	}
	for _, c := range m.LineStrings {
		ls, err := parseCoordinates(c.Coordinates)
		if err != nil {
			return nil, err
		}
		col = append(col, ls)
	}
	for _, c := range m.LinearRings {
		ls, err := parseCoordinates(c.Coordinates)
		if err != nil {
			return nil, err
		}
		col = append(col, orb.Polygon{orb.Ring(ls)})
	}
	for _, p := range m.Polygons {
		poly, err := polygonFromKML(p)
		if err != nil {
			return nil, err
		}
		col = append(col, poly)
	}
	for _, sub := range m.MultiGeometries {
		g, err := multiFromKML(sub)
		if err != nil {
			return nil, err
		}
		col = append(col, g)
	}

	return collapse(col), nil
}

func collapse(col orb.Collection) orb.Geometry {
	if len(col) == 0 {
		return nil
	}

	var (
		mp  orb.MultiPoint
		mls orb.MultiLineString
		mpg orb.MultiPolygon
	)
	for _, g := range col {
		switch v := g.(type) {
		case orb.Point:
			mp = append(mp, v)
		case orb.LineString:
			mls = append(mls, v)
		case orb.Polygon:
			mpg = append(mpg, v)
		default:
			return col
		}
	}

	switch len(col) {
	case len(mp):
		return mp
	case len(mls):
		return mls
	case len(mpg):
		return mpg
	default:
		return col
	}
}

// parseCoordinates reads whitespace separated "lon,lat[,alt]" tuples.
// Altitude is dropped.
func parseCoordinates(s string) (orb.LineString, error) {
	tuples := strings.Fields(s)
	if len(tuples) == 0 {
		return nil, fmt.Errorf("empty coordinates")
	}

	ls := make(orb.LineString, 0, len(tuples))
	for _, t := range tuples {
		parts := strings.Split(t, ",")
		if len(parts) < 2 || len(parts) > 3 {
			return nil, fmt.Errorf("invalid coordinate tuple %q", t)
		}
		lon, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid longitude %q: %w", parts[0], err)
		}
		lat, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid latitude %q: %w", parts[1], err)
		}
		ls = append(ls, orb.Point{lon, lat})
	}

	return ls, nil
}
