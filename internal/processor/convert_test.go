package processor

import (
	"archive/zip"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/woozymasta/coastprep/internal/geo"
	"github.com/woozymasta/coastprep/internal/vector"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeShapefile(t *testing.T, path string) {
	t.Helper()
	fc := geo.NewFeatureCollection(geo.Stem(path), geo.WGS84())
	fc.Append(orb.LineString{{151.28, -33.72}, {151.30, -33.73}}, map[string]interface{}{"name": "north", "id": 1})
	fc.Append(orb.LineString{{151.30, -33.73}, {151.32, -33.71}}, map[string]interface{}{"name": "south", "id": 2})
	require.NoError(t, vector.Write(fc, path, vector.DriverShapefile))
}

type snapshot map[string]struct {
	data  []byte
	mtime time.Time
}

func takeSnapshot(t *testing.T, root string) snapshot {
	t.Helper()
	s := make(snapshot)
	require.NoError(t, filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		s[path] = struct {
			data  []byte
			mtime time.Time
		}{data, info.ModTime()}
		return nil
	}))
	return s
}

func TestConvertTree(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "sub")
	require.NoError(t, os.MkdirAll(sub, 0755))

	writeShapefile(t, filepath.Join(root, "a.shp"))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "b.geojson"), []byte(`{"type":"FeatureCollection","features":[`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "notes.txt"), []byte("ignored"), 0644))

	report, err := ConvertTree(root, ConvertOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Converted)
	require.Len(t, report.Failed, 1)
	assert.Equal(t, filepath.Join(sub, "b.geojson"), report.Failed[0].Source)

	written := append([]string(nil), report.Written...)
	sort.Strings(written)
	assert.Equal(t, []string{filepath.Join(root, "a.geojson"), filepath.Join(root, "a.kml")}, written)
	assert.Equal(t, []string{filepath.Join(root, "a.shp")}, report.Skipped)

	assert.NoFileExists(t, filepath.Join(sub, "b.shp"))
	assert.NoFileExists(t, filepath.Join(sub, "b.kml"))

	fc, err := vector.Read(filepath.Join(root, "a.geojson"), "")
	require.NoError(t, err)
	assert.Equal(t, 2, fc.Len())
	assert.Equal(t, "south", fc.Features[1].Properties["name"])

	kml, err := vector.Read(filepath.Join(root, "a.kml"), "")
	require.NoError(t, err)
	assert.Equal(t, 2, kml.Len())
}

func TestConvertTreeIsIdempotent(t *testing.T) {
	root := t.TempDir()
	writeShapefile(t, filepath.Join(root, "a.shp"))

	_, err := ConvertTree(root, ConvertOptions{})
	require.NoError(t, err)
	before := takeSnapshot(t, root)

	// a rewrite would move mtimes forward
	time.Sleep(20 * time.Millisecond)

	report, err := ConvertTree(root, ConvertOptions{})
	require.NoError(t, err)
	assert.Empty(t, report.Written)
	assert.Len(t, report.Skipped, 3)

	after := takeSnapshot(t, root)
	require.Equal(t, len(before), len(after))
	for path, b := range before {
		a, ok := after[path]
		require.True(t, ok, path)
		assert.Equal(t, b.data, a.data, path)
		assert.Equal(t, b.mtime, a.mtime, path)
	}
}

func TestConvertTreeNeverOverwrites(t *testing.T) {
	root := t.TempDir()
	writeShapefile(t, filepath.Join(root, "a.shp"))

	marker := []byte("hand edited")
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.kml"), marker, 0644))

	report, err := ConvertTree(root, ConvertOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "a.geojson")}, report.Written)

	data, err := os.ReadFile(filepath.Join(root, "a.kml"))
	require.NoError(t, err)
	assert.Equal(t, marker, data)
}

func TestConvertTreeKMLAndKMZ(t *testing.T) {
	root := t.TempDir()

	tmp := t.TempDir()
	writeShapefile(t, filepath.Join(tmp, "src.shp"))
	_, _, err := ConvertFile(filepath.Join(tmp, "src.shp"), geo.FormatShapefile, ConvertOptions{})
	require.NoError(t, err)
	kml, err := os.ReadFile(filepath.Join(tmp, "src.kml"))
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(root, "Upper.KML"), kml, 0644))

	f, err := os.Create(filepath.Join(root, "survey.kmz"))
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	w, err := zw.Create("doc.kml")
	require.NoError(t, err)
	_, err = w.Write(kml)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	report, err := ConvertTree(root, ConvertOptions{Compact: true})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Converted)
	assert.Empty(t, report.Failed)

	for _, name := range []string{"Upper.shp", "Upper.geojson", "survey.shp", "survey.geojson", "survey.kml"} {
		assert.FileExists(t, filepath.Join(root, name))
	}

	fc, err := vector.Read(filepath.Join(root, "survey.geojson"), "")
	require.NoError(t, err)
	assert.Equal(t, 2, fc.Len())
	assert.Equal(t, "north", fc.Features[0].Properties["name"])
}

func TestConvertTreeMissingRoot(t *testing.T) {
	_, err := ConvertTree(filepath.Join(t.TempDir(), "missing"), ConvertOptions{})
	assert.Error(t, err)
}

func TestConvertTreePreview(t *testing.T) {
	root := t.TempDir()
	writeShapefile(t, filepath.Join(root, "a.shp"))

	report, err := ConvertTree(root, ConvertOptions{Preview: true, PreviewSize: 64})
	require.NoError(t, err)
	assert.Contains(t, report.Written, filepath.Join(root, "a.webp"))

	info, err := os.Stat(filepath.Join(root, "a.webp"))
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
