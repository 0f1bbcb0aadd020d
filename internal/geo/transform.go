package geo

import (
	"errors"
	"fmt"
	"math"

	"github.com/ctessum/geom/proj"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

// ErrUnknownCRS is returned when a transform needs a source CRS that is absent.
var ErrUnknownCRS = errors.New("source CRS is unknown")

// TransformFunc maps one coordinate pair between reference systems.
type TransformFunc func(x, y float64) (float64, float64, error)

// NewTransform builds a coordinate transform from src to dst.
func NewTransform(src, dst CRS) (TransformFunc, error) {
	if !src.Known() {
		return nil, ErrUnknownCRS
	}
	if !dst.Known() {
		return nil, fmt.Errorf("target CRS is unknown")
	}

	srcSR, err := proj.Parse(src.Definition())
	if err != nil {
		return nil, fmt.Errorf("parse source CRS %s: %w", src, err)
	}
	dstSR, err := proj.Parse(dst.Definition())
	if err != nil {
		return nil, fmt.Errorf("parse target CRS %s: %w", dst, err)
	}

	t, err := srcSR.NewTransform(dstSR)
	if err != nil {
		return nil, fmt.Errorf("transform %s to %s: %w", src, dst, err)
	}

	return TransformFunc(t), nil
}

// TransformGeometry applies fn to every vertex of g in place and returns it.
func TransformGeometry(g orb.Geometry, fn TransformFunc) (orb.Geometry, error) {
	var terr error
	out := project.Geometry(g, func(p orb.Point) orb.Point {
		if terr != nil {
			return p
		}

		x, y, err := fn(p[0], p[1])
		if err != nil {
			terr = err
			return p
		}
		if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
			terr = fmt.Errorf("point (%g, %g) has no valid projection", p[0], p[1])
			return p
		}

		return orb.Point{x, y}
	})

	return out, terr
}

// Reproject returns a copy of the collection in the target EPSG system.
// Attributes and feature order are kept. A collection already in the target
// system is cloned without touching coordinates.
func (fc *FeatureCollection) Reproject(targetEPSG int) (*FeatureCollection, error) {
	if !fc.CRS.Known() {
		return nil, ErrUnknownCRS
	}

	dst, err := LookupEPSG(targetEPSG)
	if err != nil {
		return nil, err
	}

	out := fc.Clone()
	out.CRS = dst
	if fc.CRS.EPSG == targetEPSG {
		return out, nil
	}

	fn, err := NewTransform(fc.CRS, dst)
	if err != nil {
		return nil, err
	}

	for i, f := range out.Features {
		if f.Geometry == nil {
			continue
		}
		g, err := TransformGeometry(f.Geometry, fn)
		if err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}
		f.Geometry = g
	}

	return out, nil
}
