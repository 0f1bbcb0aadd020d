package processor

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"os"
	"path/filepath"

	"github.com/woozymasta/coastprep/internal/geo"

	"github.com/chai2010/webp"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
	"github.com/rs/zerolog/log"
	"golang.org/x/image/vector"
)

const (
	defaultPreviewSize = 512
	previewMargin      = 8
	previewExt         = ".webp"
	strokeWidth        = 1.5
	pointRadius        = 2.5
)

var (
	previewBackground = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	previewFill       = color.NRGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0x55}
	previewStroke     = color.NRGBA{R: 0x1f, G: 0x4e, B: 0x79, A: 0xff}
)

func previewPath(src string) string {
	return filepath.Join(filepath.Dir(src), geo.Stem(src)+previewExt)
}

// WritePreview renders the collection to a WebP quicklook at path.
func WritePreview(fc *geo.FeatureCollection, path string, size int) error {
	img, err := RenderPreview(fc, size)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := webp.Encode(f, img, &webp.Options{Lossless: false, Quality: 85}); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return fmt.Errorf("encode webp: %w", err)
	}

	// We care about write errors on close
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return err
	}

	log.Debug().Str("path", path).Msg("Preview written")
	return nil
}

// RenderPreview draws polygons filled, lines stroked and points as dots,
// fitted into a size x size box. Geographic data is drawn in Web Mercator.
func RenderPreview(fc *geo.FeatureCollection, size int) (*image.RGBA, error) {
	if size <= 0 {
		size = defaultPreviewSize
	}

	toPlane := func(p orb.Point) orb.Point { return p }
	if fc.CRS.Geographic() {
		toPlane = func(p orb.Point) orb.Point {
			return project.WGS84.ToMercator(orb.Point{p[0], geo.ClampLat(p[1])})
		}
	}

	geoms := make([]orb.Geometry, 0, fc.Len())
	for _, f := range fc.Features {
		if f.Geometry == nil {
			continue
		}
		geoms = append(geoms, project.Geometry(orb.Clone(f.Geometry), toPlane))
	}
	if len(geoms) == 0 {
		return nil, geo.ErrNoGeometry
	}

	bound := orb.Collection(geoms).Bound()
	c := newCanvas(bound, size)

	for _, g := range geoms {
		c.draw(g)
	}

	return c.img, nil
}

type canvas struct {
	img   *image.RGBA
	ras   *vector.Rasterizer
	min   orb.Point
	scale float64
	w, h  int
}

func newCanvas(b orb.Bound, size int) *canvas {
	dx, dy := b.Max[0]-b.Min[0], b.Max[1]-b.Min[1]
	inner := float64(size - 2*previewMargin)

	scale := 1.0
	if span := math.Max(dx, dy); span > 0 {
		scale = inner / span
	}

	w := int(math.Ceil(dx*scale)) + 2*previewMargin
	h := int(math.Ceil(dy*scale)) + 2*previewMargin

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(previewBackground), image.Point{}, draw.Src)

	ras := vector.NewRasterizer(w, h)
	ras.DrawOp = draw.Over

	return &canvas{img: img, ras: ras, min: b.Min, scale: scale, w: w, h: h}
}

// px maps plane coordinates to pixels with the y axis pointing down.
func (c *canvas) px(p orb.Point) (float32, float32) {
	x := previewMargin + (p[0]-c.min[0])*c.scale
	y := float64(c.h) - previewMargin - (p[1]-c.min[1])*c.scale

	return float32(x), float32(y)
}

func (c *canvas) draw(g orb.Geometry) {
	switch v := g.(type) {
	case orb.Point:
		c.dot(v)
	case orb.MultiPoint:
		for _, p := range v {
			c.dot(p)
		}
	case orb.LineString:
		c.line(v)
	case orb.MultiLineString:
		for _, ls := range v {
			c.line(ls)
		}
	case orb.Ring:
		c.polygon(orb.Polygon{v})
	case orb.Polygon:
		c.polygon(v)
	case orb.MultiPolygon:
		for _, p := range v {
			c.polygon(p)
		}
	case orb.Bound:
		c.polygon(v.ToPolygon())
	case orb.Collection:
		for _, sub := range v {
			c.draw(sub)
		}
	}
}

func (c *canvas) fill(col color.Color) {
	c.ras.Draw(c.img, c.img.Bounds(), image.NewUniform(col), image.Point{})
	c.ras.Reset(c.w, c.h)
}

func (c *canvas) polygon(p orb.Polygon) {
	c.ras.Reset(c.w, c.h)
	for _, r := range p {
		if len(r) < 3 {
			continue
		}
		x, y := c.px(r[0])
		c.ras.MoveTo(x, y)
		for _, pt := range r[1:] {
			x, y = c.px(pt)
			c.ras.LineTo(x, y)
		}
		c.ras.ClosePath()
	}
	c.fill(previewFill)

	for _, r := range p {
		c.line(orb.LineString(r))
	}
}

// line strokes each segment as a quad; the rasterizer only fills paths.
func (c *canvas) line(ls orb.LineString) {
	if len(ls) < 2 {
		return
	}

	c.ras.Reset(c.w, c.h)
	for i := 1; i < len(ls); i++ {
		x0, y0 := c.px(ls[i-1])
		x1, y1 := c.px(ls[i])

		dx, dy := x1-x0, y1-y0
		l := float32(math.Hypot(float64(dx), float64(dy)))
		if l == 0 {
			continue
		}
		nx, ny := -dy/l*strokeWidth/2, dx/l*strokeWidth/2

		c.ras.MoveTo(x0+nx, y0+ny)
		c.ras.LineTo(x1+nx, y1+ny)
		c.ras.LineTo(x1-nx, y1-ny)
		c.ras.LineTo(x0-nx, y0-ny)
		c.ras.ClosePath()
	}
	c.fill(previewStroke)
}

func (c *canvas) dot(p orb.Point) {
	x, y := c.px(p)

	c.ras.Reset(c.w, c.h)
	c.ras.MoveTo(x-pointRadius, y-pointRadius)
	c.ras.LineTo(x+pointRadius, y-pointRadius)
	c.ras.LineTo(x+pointRadius, y+pointRadius)
	c.ras.LineTo(x-pointRadius, y+pointRadius)
	c.ras.ClosePath()
	c.fill(previewStroke)
}
