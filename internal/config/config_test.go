package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matryer/is"
)

func TestLoad(t *testing.T) {
	is := is.New(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
settings:
  output_epsg: 32718
convert:
  root: GIS
  preview: true
reproject:
  - input: chi0356_transects.geojson
    output: chi0356_transects_transformed.geojson
decompress:
  folder: fes2022b/ocean_tide_extrapolated
tide:
  model_config: fes2022b/fes2022.yaml
  centroid: [151.3023463, -33.7239154]
  start: 2024-01-01T00:00:00Z
  end: 2025-01-01T00:00:00Z
  timestep: 900
`
	is.NoErr(os.WriteFile(path, []byte(data), 0644))

	cfg, err := Load(path)
	is.NoErr(err)

	epsg, err := cfg.Settings.OutputEPSG()
	is.NoErr(err)
	is.Equal(epsg, 32718)
	is.Equal(cfg.Convert.Root, "GIS")
	is.True(cfg.Convert.Preview)
	is.Equal(len(cfg.Reproject), 1)
	is.Equal(cfg.Reproject[0].Output, "chi0356_transects_transformed.geojson")
	is.Equal(cfg.Decompress.Folder, "fes2022b/ocean_tide_extrapolated")
	is.Equal(cfg.Tide.Centroid, []float64{151.3023463, -33.7239154})
	is.Equal(cfg.Tide.Timestep, 900)
	is.True(cfg.Tide.Start.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestLoadMissingFile(t *testing.T) {
	is := is.New(t)

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	is.True(errors.Is(err, os.ErrNotExist))
}

func TestLoadOrDefault(t *testing.T) {
	is := is.New(t)

	cfg, err := LoadOrDefault("")
	is.NoErr(err)
	is.True(cfg.Settings != nil)

	_, err = cfg.Settings.OutputEPSG()
	is.True(errors.Is(err, ErrMissingOutputEPSG))
}

func TestOutputEPSG(t *testing.T) {
	is := is.New(t)

	cases := []struct {
		value interface{}
		want  int
		err   error
	}{
		{value: 32718, want: 32718},
		{value: float64(4326), want: 4326},
		{value: "EPSG:3857", want: 3857},
		{value: " 28356 ", want: 28356},
		{value: 4326.5, err: ErrInvalidOutputEPSG},
		{value: "wgs84", err: ErrInvalidOutputEPSG},
		{value: -1, err: ErrInvalidOutputEPSG},
		{value: []int{1}, err: ErrInvalidOutputEPSG},
		{value: nil, err: ErrMissingOutputEPSG},
	}

	for _, c := range cases {
		got, err := Settings{OutputEPSGKey: c.value}.OutputEPSG()
		if c.err != nil {
			is.True(errors.Is(err, c.err))
			continue
		}
		is.NoErr(err)
		is.Equal(got, c.want)
	}

	_, err := Settings{}.OutputEPSG()
	is.True(errors.Is(err, ErrMissingOutputEPSG))
}
