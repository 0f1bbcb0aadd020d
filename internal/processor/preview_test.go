package processor

import (
	"image/color"
	"testing"

	"github.com/woozymasta/coastprep/internal/geo"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderPreview(t *testing.T) {
	fc := geo.NewFeatureCollection("poly", geo.CRS{})
	fc.Append(orb.Polygon{{{0, 0}, {100, 0}, {100, 50}, {0, 50}, {0, 0}}}, nil)

	img, err := RenderPreview(fc, 116)
	require.NoError(t, err)

	b := img.Bounds()
	assert.Equal(t, 116, b.Dx())
	assert.Equal(t, 66, b.Dy())

	// centre is filled, corner is background
	assert.NotEqual(t, color.RGBAModel.Convert(previewBackground), img.At(b.Dx()/2, b.Dy()/2))
	assert.Equal(t, color.RGBAModel.Convert(previewBackground), img.At(1, 1))
}

func TestRenderPreviewEmpty(t *testing.T) {
	fc := geo.NewFeatureCollection("empty", geo.WGS84())
	fc.Append(nil, map[string]interface{}{"a": 1})

	_, err := RenderPreview(fc, 0)
	assert.ErrorIs(t, err, geo.ErrNoGeometry)
}

func TestRenderPreviewSinglePoint(t *testing.T) {
	fc := geo.NewFeatureCollection("pt", geo.WGS84())
	fc.Append(orb.Point{151.3, -33.7}, nil)

	img, err := RenderPreview(fc, 32)
	require.NoError(t, err)
	assert.Equal(t, 2*previewMargin, img.Bounds().Dx())
}
