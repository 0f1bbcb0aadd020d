package tide

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// Default handler names for the ocean and load tide components.
const (
	OceanHandler = "tide"
	LoadHandler  = "radial"
)

var ErrUnknownHandler = errors.New("unknown tide handler")

// Handlers maps handler names to tide models.
type Handlers map[string]Model

// Get returns the named handler.
func (h Handlers) Get(name string) (Model, error) {
	m, ok := h[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (have %v)", ErrUnknownHandler, name, h.names())
	}

	return m, nil
}

func (h Handlers) names() []string {
	names := make([]string, 0, len(h))
	for n := range h {
		names = append(names, n)
	}
	sort.Strings(names)

	return names
}

type modelFile struct {
	Epoch    time.Time                `yaml:"epoch"`
	Handlers map[string]handlerConfig `yaml:"handlers"`
}

type handlerConfig struct {
	Epoch        time.Time     `yaml:"epoch"`
	File         string        `yaml:"file"` // YAML list of constituents
	Constituents []Constituent `yaml:"constituents"`
}

// LoadConfig reads a model configuration file:
//
//	epoch: 2000-01-01T00:00:00Z
//	handlers:
//	  tide:
//	    constituents:
//	      - {name: M2, amplitude: 50.1, phase: 113.2}
//	  radial:
//	    file: radial.yaml
//
// Constituent files are resolved relative to the configuration file.
func LoadConfig(path string) (Handlers, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var mf modelFile
	if err := yaml.Unmarshal(data, &mf); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(mf.Handlers) == 0 {
		return nil, fmt.Errorf("%s: no handlers defined", path)
	}

	dir := filepath.Dir(path)
	handlers := make(Handlers, len(mf.Handlers))
	for name, hc := range mf.Handlers {
		cs := hc.Constituents
		if hc.File != "" {
			extra, err := loadConstituents(resolve(dir, hc.File))
			if err != nil {
				return nil, fmt.Errorf("handler %q: %w", name, err)
			}
			cs = append(cs, extra...)
		}
		if len(cs) == 0 {
			return nil, fmt.Errorf("handler %q: no constituents", name)
		}

		epoch := hc.Epoch
		if epoch.IsZero() {
			epoch = mf.Epoch
		}

		m, err := NewHarmonicModel(epoch, cs)
		if err != nil {
			return nil, fmt.Errorf("handler %q: %w", name, err)
		}
		handlers[name] = m
	}

	return handlers, nil
}

func loadConstituents(path string) ([]Constituent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cs []Constituent
	if err := yaml.Unmarshal(data, &cs); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return cs, nil
}

func resolve(dir, p string) string {
	if filepath.IsAbs(p) {
		return p
	}

	return filepath.Join(dir, p)
}
