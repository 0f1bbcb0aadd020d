// Package geo handles the in-memory feature model, coordinate reference systems
// and file format detection shared by the drivers and tools.
package geo

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// FieldType is the scalar type of an attribute column.
type FieldType int

const (
	FieldString FieldType = iota
	FieldInteger
	FieldFloat
	FieldBool
)

// String returns the lowercase type name.
func (t FieldType) String() string {
	switch t {
	case FieldInteger:
		return "integer"
	case FieldFloat:
		return "float"
	case FieldBool:
		return "bool"
	default:
		return "string"
	}
}

// Field describes one attribute column.
type Field struct {
	Name string    `json:"name" yaml:"name"`
	Type FieldType `json:"-" yaml:"-"`
}

// FeatureCollection is an ordered set of features sharing one CRS and one attribute schema.
type FeatureCollection struct {
	Name     string
	CRS      CRS
	Fields   []Field
	Features []*geojson.Feature
}

// NewFeatureCollection returns an empty collection.
func NewFeatureCollection(name string, crs CRS) *FeatureCollection {
	return &FeatureCollection{
		Name:     name,
		CRS:      crs,
		Features: []*geojson.Feature{},
	}
}

// Append adds a feature with a copy of props.
func (fc *FeatureCollection) Append(g orb.Geometry, props map[string]interface{}) *geojson.Feature {
	f := geojson.NewFeature(g)
	for k, v := range props {
		f.Properties[k] = v
	}
	fc.Features = append(fc.Features, f)

	return f
}

// Len returns the number of features.
func (fc *FeatureCollection) Len() int {
	return len(fc.Features)
}

// Clone returns a deep copy of the collection.
func (fc *FeatureCollection) Clone() *FeatureCollection {
	out := &FeatureCollection{
		Name:     fc.Name,
		CRS:      fc.CRS,
		Fields:   append([]Field(nil), fc.Fields...),
		Features: make([]*geojson.Feature, 0, len(fc.Features)),
	}

	for _, f := range fc.Features {
		var g orb.Geometry
		if f.Geometry != nil {
			g = orb.Clone(f.Geometry)
		}
		nf := geojson.NewFeature(g)
		nf.ID = f.ID
		for k, v := range f.Properties {
			nf.Properties[k] = v
		}
		out.Features = append(out.Features, nf)
	}

	return out
}

// Bound returns the bounding box of all geometries, false when there are none.
func (fc *FeatureCollection) Bound() (orb.Bound, bool) {
	var b orb.Bound
	found := false
	for _, f := range fc.Features {
		if f.Geometry == nil {
			continue
		}
		if !found {
			b = f.Geometry.Bound()
			found = true
			continue
		}
		b = b.Union(f.Geometry.Bound())
	}

	return b, found
}

// GeometryTypes returns the distinct geometry type names in order of appearance.
func (fc *FeatureCollection) GeometryTypes() []string {
	seen := make(map[string]bool)
	var types []string
	for _, f := range fc.Features {
		if f.Geometry == nil {
			continue
		}
		t := f.Geometry.GeoJSONType()
		if !seen[t] {
			seen[t] = true
			types = append(types, t)
		}
	}

	return types
}

// FieldNames returns the schema column names in order.
func (fc *FeatureCollection) FieldNames() []string {
	names := make([]string, len(fc.Fields))
	for i, f := range fc.Fields {
		names[i] = f.Name
	}

	return names
}

// InferFields builds the schema from feature properties when it is empty.
// Columns keep first-seen order, keys within one feature are taken sorted.
// Mixed integer and float values widen to float, anything else mixed widens to string.
func (fc *FeatureCollection) InferFields() {
	if len(fc.Fields) > 0 {
		return
	}

	index := make(map[string]int)
	typed := make(map[string]bool)

	for _, f := range fc.Features {
		keys := make([]string, 0, len(f.Properties))
		for k := range f.Properties {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			i, ok := index[k]
			if !ok {
				i = len(fc.Fields)
				index[k] = i
				fc.Fields = append(fc.Fields, Field{Name: k, Type: FieldString})
			}

			t, ok := ValueType(f.Properties[k])
			if !ok {
				continue
			}
			if !typed[k] {
				fc.Fields[i].Type = t
				typed[k] = true
				continue
			}
			fc.Fields[i].Type = widen(fc.Fields[i].Type, t)
		}
	}
}

// ValueType reports the field type of a scalar attribute value.
// It returns false for nil values.
func ValueType(v interface{}) (FieldType, bool) {
	switch x := v.(type) {
	case nil:
		return FieldString, false
	case bool:
		return FieldBool, true
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32:
		return FieldInteger, true
	case float32:
		return floatType(float64(x)), true
	case float64:
		return floatType(x), true
	default:
		return FieldString, true
	}
}

// floatType treats integral JSON numbers as integers.
func floatType(f float64) FieldType {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return FieldInteger
	}

	return FieldFloat
}

func widen(a, b FieldType) FieldType {
	if a == b {
		return a
	}
	if (a == FieldInteger && b == FieldFloat) || (a == FieldFloat && b == FieldInteger) {
		return FieldFloat
	}

	return FieldString
}

// FormatValue renders an attribute value as text the way it is stored in text-only formats.
func FormatValue(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		if floatType(x) == FieldInteger {
			return fmt.Sprintf("%d", int64(x))
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}
