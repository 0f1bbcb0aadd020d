package vector

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/woozymasta/coastprep/internal/geo"

	"github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
)

const (
	// dbfNameLen is the longest column name a DBF header can hold.
	dbfNameLen = 10
	// dbfMaxWidth is the widest DBF column.
	dbfMaxWidth = 254
	// Float columns aim for this width and give up decimals to stay within it.
	dbfFloatWidth     = 24
	dbfFloatPrecision = 15
)

var shapefileSidecars = []string{".shp", ".shx", ".dbf", ".prj"}

func shapefileStem(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path))
}

func readShapefile(path string) (*geo.FeatureCollection, error) {
	r, err := shp.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()

	crs, err := readPrj(shapefileStem(path))
	if err != nil {
		return nil, err
	}

	fc := geo.NewFeatureCollection(geo.Stem(path), crs)

	dbf := r.Fields()
	for _, f := range dbf {
		fc.Fields = append(fc.Fields, geo.Field{Name: dbfFieldName(f), Type: dbfFieldType(f)})
	}

	for r.Next() {
		n, shape := r.Shape()
		g, err := shapeToGeometry(shape)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", n, err)
		}

		props := make(map[string]interface{}, len(dbf))
		for i, f := range fc.Fields {
			props[f.Name] = parseDBFValue(r.ReadAttribute(n, i), f.Type)
		}
		fc.Append(g, props)
	}

	if err := r.Err(); err != nil {
		return nil, err
	}

	return fc, nil
}

// readPrj resolves the .prj sidecar. A missing sidecar means the CRS is unknown.
func readPrj(stem string) (geo.CRS, error) {
	for _, ext := range []string{".prj", ".PRJ"} {
		data, err := os.ReadFile(stem + ext)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return geo.CRS{}, err
		}

		return geo.ParsePrj(string(data)), nil
	}

	return geo.CRS{}, nil
}

func dbfFieldName(f shp.Field) string {
	return strings.TrimRight(string(f.Name[:]), "\x00 ")
}

func dbfFieldType(f shp.Field) geo.FieldType {
	switch f.Fieldtype {
	case 'N':
		if f.Precision == 0 {
			return geo.FieldInteger
		}
		return geo.FieldFloat
	case 'F':
		return geo.FieldFloat
	case 'L':
		return geo.FieldBool
	default:
		return geo.FieldString
	}
}

func parseDBFValue(s string, t geo.FieldType) interface{} {
	s = strings.Trim(s, " \x00")
	if s == "" {
		return nil
	}

	switch t {
	case geo.FieldInteger:
		if v, err := strconv.Atoi(s); err == nil {
			return v
		}
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			return v
		}
	case geo.FieldFloat:
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			return v
		}
	case geo.FieldBool:
		switch s {
		case "T", "t", "Y", "y":
			return true
		case "F", "f", "N", "n":
			return false
		default:
			return nil
		}
	}

	return s
}

func shapeToGeometry(shape shp.Shape) (orb.Geometry, error) {
	switch s := shape.(type) {
	case nil, *shp.Null:
		return nil, nil
	case *shp.Point:
		return orb.Point{s.X, s.Y}, nil
	case *shp.PointZ:
		return orb.Point{s.X, s.Y}, nil
	case *shp.PointM:
		return orb.Point{s.X, s.Y}, nil
	case *shp.MultiPoint:
		return multiPoint(s.Points), nil
	case *shp.MultiPointZ:
		return multiPoint(s.Points), nil
	case *shp.MultiPointM:
		return multiPoint(s.Points), nil
	case *shp.PolyLine:
		return lineGeometry(s.Parts, s.Points), nil
	case *shp.PolyLineZ:
		return lineGeometry(s.Parts, s.Points), nil
	case *shp.PolyLineM:
		return lineGeometry(s.Parts, s.Points), nil
	case *shp.Polygon:
		return polygonGeometry(s.Parts, s.Points), nil
	case *shp.PolygonZ:
		return polygonGeometry(s.Parts, s.Points), nil
	case *shp.PolygonM:
		return polygonGeometry(s.Parts, s.Points), nil
	default:
		return nil, fmt.Errorf("%w: shape type %T", ErrUnsupportedGeometry, shape)
	}
}

func multiPoint(pts []shp.Point) orb.MultiPoint {
	mp := make(orb.MultiPoint, len(pts))
	for i, p := range pts {
		mp[i] = orb.Point{p.X, p.Y}
	}

	return mp
}

func splitParts(parts []int32, pts []shp.Point) [][]orb.Point {
	out := make([][]orb.Point, 0, len(parts))
	for i, start := range parts {
		end := int32(len(pts))
		if i+1 < len(parts) {
			end = parts[i+1]
		}
		if start < 0 || start > end || int(end) > len(pts) {
			continue
		}

		seg := make([]orb.Point, 0, end-start)
		for _, p := range pts[start:end] {
			seg = append(seg, orb.Point{p.X, p.Y})
		}
		out = append(out, seg)
	}

	return out
}

func lineGeometry(parts []int32, pts []shp.Point) orb.Geometry {
	segs := splitParts(parts, pts)
	if len(segs) == 1 {
		return orb.LineString(segs[0])
	}

	mls := make(orb.MultiLineString, len(segs))
	for i, s := range segs {
		mls[i] = orb.LineString(s)
	}

	return mls
}

// polygonGeometry groups rings: a clockwise ring opens a polygon, counter
// clockwise rings are holes of the polygon opened before them.
func polygonGeometry(parts []int32, pts []shp.Point) orb.Geometry {
	var mp orb.MultiPolygon
	for _, seg := range splitParts(parts, pts) {
		ring := orb.Ring(seg)
		if ring.Orientation() == orb.CW || len(mp) == 0 {
			mp = append(mp, orb.Polygon{ring})
			continue
		}
		mp[len(mp)-1] = append(mp[len(mp)-1], ring)
	}

	if len(mp) == 1 {
		return mp[0]
	}

	return mp
}

// shapeTypeOf picks the one shape type a shapefile allows from the first geometry.
func shapeTypeOf(fc *geo.FeatureCollection) (shp.ShapeType, error) {
	var (
		found bool
		st    shp.ShapeType
	)

	for _, f := range fc.Features {
		if f.Geometry == nil {
			continue
		}

		var t shp.ShapeType
		switch f.Geometry.(type) {
		case orb.Point:
			t = shp.POINT
		case orb.MultiPoint:
			t = shp.MULTIPOINT
		case orb.LineString, orb.MultiLineString:
			t = shp.POLYLINE
		case orb.Ring, orb.Polygon, orb.MultiPolygon, orb.Bound:
			t = shp.POLYGON
		default:
			return 0, fmt.Errorf("%w: %s in shapefile", ErrUnsupportedGeometry, f.Geometry.GeoJSONType())
		}

		if !found {
			st, found = t, true
			continue
		}
		if t != st {
			return 0, ErrMixedGeometry
		}
	}

	if !found {
		return shp.POINT, nil
	}

	return st, nil
}

func geometryToShape(g orb.Geometry) shp.Shape {
	switch v := g.(type) {
	case nil:
		return &shp.Null{}
	case orb.Point:
		return &shp.Point{X: v[0], Y: v[1]}
	case orb.MultiPoint:
		pts := toShpPoints(v)
		return &shp.MultiPoint{Box: shp.BBoxFromPoints(pts), NumPoints: int32(len(pts)), Points: pts}
	case orb.LineString:
		return shp.NewPolyLine([][]shp.Point{toShpPoints(v)})
	case orb.MultiLineString:
		parts := make([][]shp.Point, len(v))
		for i, ls := range v {
			parts[i] = toShpPoints(ls)
		}
		return shp.NewPolyLine(parts)
	case orb.Ring:
		return polygonShape(orb.MultiPolygon{{v}})
	case orb.Polygon:
		return polygonShape(orb.MultiPolygon{v})
	case orb.MultiPolygon:
		return polygonShape(v)
	case orb.Bound:
		return polygonShape(orb.MultiPolygon{v.ToPolygon()})
	default:
		return &shp.Null{}
	}
}

// polygonShape writes outer rings clockwise and holes counter clockwise.
func polygonShape(mp orb.MultiPolygon) *shp.Polygon {
	var parts [][]shp.Point
	for _, poly := range mp {
		for i, r := range poly {
			ring := append(orb.Ring(nil), r...)
			if len(ring) > 0 && !ring.Closed() {
				ring = append(ring, ring[0])
			}
			want := orb.CCW
			if i == 0 {
				want = orb.CW
			}
			if ring.Orientation() != want {
				ring.Reverse()
			}
			parts = append(parts, toShpPoints(ring))
		}
	}

	p := shp.Polygon(*shp.NewPolyLine(parts))
	return &p
}

func toShpPoints[T ~[]orb.Point](pts T) []shp.Point {
	out := make([]shp.Point, len(pts))
	for i, p := range pts {
		out[i] = shp.Point{X: p[0], Y: p[1]}
	}

	return out
}

// dbfFields maps the schema to DBF columns with unique names of at most ten characters.
// An empty schema gets a FID column since a shapefile needs a DBF with at least one column.
func dbfFields(fc *geo.FeatureCollection) ([]shp.Field, []geo.Field) {
	schema := fc.Fields
	if len(schema) == 0 {
		fid := geo.Field{Name: "FID", Type: geo.FieldInteger}
		last := len(fc.Features) - 1
		if last < 0 {
			last = 0
		}
		return []shp.Field{shp.NumberField(fid.Name, clampWidth(len(strconv.Itoa(last))))}, []geo.Field{fid}
	}

	used := make(map[string]bool, len(schema))
	fields := make([]shp.Field, len(schema))

	for i, f := range schema {
		name := uniqueDBFName(f.Name, used)

		switch f.Type {
		case geo.FieldInteger:
			fields[i] = shp.NumberField(name, integerWidth(fc, f))
		case geo.FieldFloat:
			width, prec := floatSize(fc, f)
			fields[i] = shp.FloatField(name, width, prec)
		case geo.FieldBool:
			fields[i] = shp.StringField(name, 1)
			fields[i].Fieldtype = 'L'
		default:
			fields[i] = shp.StringField(name, stringWidth(fc, f.Name))
		}
	}

	return fields, schema
}

func uniqueDBFName(name string, used map[string]bool) string {
	base := name
	if len(base) > dbfNameLen {
		base = base[:dbfNameLen]
	}
	if base == "" {
		base = "field"
	}

	candidate := base
	for n := 1; used[strings.ToUpper(candidate)]; n++ {
		suffix := "_" + strconv.Itoa(n)
		cut := len(base)
		if cut+len(suffix) > dbfNameLen {
			cut = dbfNameLen - len(suffix)
		}
		candidate = base[:cut] + suffix
	}
	used[strings.ToUpper(candidate)] = true

	return candidate
}

// integerWidth fits the longest integer in the column.
func integerWidth(fc *geo.FeatureCollection, field geo.Field) uint8 {
	width := 1
	for _, f := range fc.Features {
		v, ok := dbfValue(f.Properties[field.Name], field.Type).(int)
		if !ok {
			continue
		}
		if n := len(strconv.Itoa(v)); n > width {
			width = n
		}
	}

	return clampWidth(width)
}

// floatSize picks the precision the values need, at most dbfFloatPrecision,
// and drops decimals while the widest value is longer than dbfFloatWidth.
// Large integer parts widen the column instead of failing the write.
func floatSize(fc *geo.FeatureCollection, field geo.Field) (width, prec uint8) {
	var values []float64
	decimals := 0
	for _, f := range fc.Features {
		v, ok := dbfValue(f.Properties[field.Name], field.Type).(float64)
		if !ok {
			continue
		}
		values = append(values, v)

		s := strconv.FormatFloat(v, 'f', -1, 64)
		if dot := strings.IndexByte(s, '.'); dot >= 0 && len(s)-dot-1 > decimals {
			decimals = len(s) - dot - 1
		}
	}
	if decimals > dbfFloatPrecision {
		decimals = dbfFloatPrecision
	}

	for {
		w := 1
		for _, v := range values {
			if n := len(strconv.FormatFloat(v, 'f', decimals, 64)); n > w {
				w = n
			}
		}
		if w <= dbfFloatWidth || decimals == 0 {
			return clampWidth(w), uint8(decimals)
		}
		decimals--
	}
}

func clampWidth(w int) uint8 {
	if w > dbfMaxWidth {
		return dbfMaxWidth
	}

	return uint8(w)
}

func stringWidth(fc *geo.FeatureCollection, name string) uint8 {
	width := 1
	for _, f := range fc.Features {
		if n := len(geo.FormatValue(f.Properties[name])); n > width {
			width = n
		}
	}
	if width > dbfMaxWidth {
		width = dbfMaxWidth
	}

	return uint8(width)
}

func dbfValue(v interface{}, t geo.FieldType) interface{} {
	if v == nil {
		return ""
	}

	switch t {
	case geo.FieldInteger:
		switch x := v.(type) {
		case int:
			return x
		case int64:
			return int(x)
		case int32:
			return int(x)
		case float64:
			return int(x)
		}
	case geo.FieldFloat:
		switch x := v.(type) {
		case float64:
			return x
		case int:
			return float64(x)
		case int64:
			return float64(x)
		}
	case geo.FieldBool:
		if b, ok := v.(bool); ok && b {
			return "T"
		}
		return "F"
	}

	s := geo.FormatValue(v)
	if len(s) > dbfMaxWidth {
		s = s[:dbfMaxWidth]
	}

	return s
}

// writeShapefile writes .shp, .shx, .dbf and, for a known CRS, .prj.
// Sidecars created by a failed write are removed. Sidecars without their .shp
// are left alone and fail the write; a stale .prj is removed when the CRS is unknown.
func writeShapefile(fc *geo.FeatureCollection, path string) (err error) {
	stem := shapefileStem(path)

	var created, existing []string
	for _, ext := range shapefileSidecars {
		_, statErr := os.Stat(stem + ext)
		switch {
		case errors.Is(statErr, os.ErrNotExist):
			created = append(created, stem+ext)
		case statErr != nil:
			return statErr
		default:
			existing = append(existing, stem+ext)
		}
	}
	if len(existing) > 0 && existing[0] != stem+".shp" {
		return fmt.Errorf("%w: %s", ErrOrphanSidecar, strings.Join(existing, ", "))
	}
	defer func() {
		if err != nil {
			for _, p := range created {
				_ = os.Remove(p)
			}
		}
	}()

	st, err := shapeTypeOf(fc)
	if err != nil {
		return err
	}

	w, err := shp.Create(stem+".shp", st)
	if err != nil {
		return err
	}

	fields, schema := dbfFields(fc)
	if err = w.SetFields(fields); err != nil {
		w.Close()
		return err
	}

	for i, f := range fc.Features {
		row := int(w.Write(geometryToShape(f.Geometry)))
		for j, field := range schema {
			var v interface{} = i
			if len(fc.Fields) > 0 {
				v = dbfValue(f.Properties[field.Name], field.Type)
			}
			if err = w.WriteAttribute(row, j, v); err != nil {
				w.Close()
				return fmt.Errorf("feature %d, field %s: %w", i, field.Name, err)
			}
		}
	}
	w.Close()

	if fc.CRS.WKT == "" {
		if rmErr := os.Remove(stem + ".prj"); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			return rmErr
		}
		return nil
	}
	if err = os.WriteFile(stem+".prj", []byte(fc.CRS.WKT), 0644); err != nil {
		return err
	}

	return nil
}
