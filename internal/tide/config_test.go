package tide

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/matryer/is"
	"github.com/paulmach/orb"
)

const modelYAML = `epoch: 2000-01-01T00:00:00Z
handlers:
  tide:
    constituents:
      - {name: M2, amplitude: 50, phase: 0}
      - {name: K1, amplitude: 10, phase: 0}
  radial:
    file: radial/constituents.yaml
`

const radialYAML = `- {name: M2, amplitude: 2, phase: 0}
`

func TestLoadConfig(t *testing.T) {
	is := is.New(t)
	dir := t.TempDir()

	is.NoErr(os.MkdirAll(filepath.Join(dir, "radial"), 0755))
	is.NoErr(os.WriteFile(filepath.Join(dir, "radial", "constituents.yaml"), []byte(radialYAML), 0644))
	is.NoErr(os.WriteFile(filepath.Join(dir, "models.yaml"), []byte(modelYAML), 0644))

	h, err := LoadConfig(filepath.Join(dir, "models.yaml"))
	is.NoErr(err)
	is.Equal(len(h), 2)

	ocean, err := h.Get(OceanHandler)
	is.NoErr(err)
	v, err := ocean.Evaluate(orb.Point{}, DefaultEpoch)
	is.NoErr(err)
	is.True(math.Abs(v-60) < 1e-9)

	load, err := h.Get(LoadHandler)
	is.NoErr(err)
	v, err = load.Evaluate(orb.Point{}, DefaultEpoch)
	is.NoErr(err)
	is.True(math.Abs(v-2) < 1e-9)

	_, err = h.Get("fes2014")
	is.True(errors.Is(err, ErrUnknownHandler))
}

func TestLoadConfigErrors(t *testing.T) {
	is := is.New(t)
	dir := t.TempDir()

	write := func(name, body string) string {
		p := filepath.Join(dir, name)
		is.NoErr(os.WriteFile(p, []byte(body), 0644))
		return p
	}

	_, err := LoadConfig(filepath.Join(dir, "missing.yaml"))
	is.True(err != nil)

	_, err = LoadConfig(write("empty.yaml", "epoch: 2000-01-01T00:00:00Z\n"))
	is.True(err != nil)

	_, err = LoadConfig(write("unknown.yaml", "handlers:\n  tide:\n    constituents:\n      - {name: Z0, amplitude: 1}\n"))
	is.True(err != nil)

	_, err = LoadConfig(write("nofile.yaml", "handlers:\n  tide:\n    file: nope.yaml\n"))
	is.True(err != nil)

	_, err = LoadConfig(write("bare.yaml", "handlers:\n  tide: {}\n"))
	is.True(err != nil)

	_, err = LoadConfig(write("bad.yaml", "handlers: [\n"))
	is.True(err != nil)
}
