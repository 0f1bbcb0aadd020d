// Package config handles configuration loading and shared settings.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// OutputEPSGKey is the settings key holding the reprojection target.
const OutputEPSGKey = "output_epsg"

var (
	ErrMissingOutputEPSG = errors.New("settings must contain the key '" + OutputEPSGKey + "'")
	ErrInvalidOutputEPSG = errors.New("settings key '" + OutputEPSGKey + "' is not a valid EPSG code")
)

// Config represents the root configuration file structure.
type Config struct {
	Settings   Settings       `yaml:"settings"`
	Convert    Convert        `yaml:"convert"`
	Decompress Decompress     `yaml:"decompress"`
	Tide       Tide           `yaml:"tide"`
	Reproject  []ReprojectJob `yaml:"reproject,omitempty"`
	Export     []string       `yaml:"export,omitempty"`
}

// Settings is a plain key/value mapping handed to operations.
type Settings map[string]interface{}

// Convert configures the batch converter.
type Convert struct {
	Root        string `yaml:"root"`
	PreviewSize int    `yaml:"preview_size,omitempty"`
	Preview     bool   `yaml:"preview,omitempty"`
	Compact     bool   `yaml:"compact,omitempty"`
}

// ReprojectJob is one input/output pair for the reprojection tool.
type ReprojectJob struct {
	Input  string `yaml:"input"`
	Output string `yaml:"output"`
}

// Decompress configures the tide model archive expansion.
type Decompress struct {
	Folder string `yaml:"folder"`
}

// Tide configures the tide prediction run.
type Tide struct {
	Start time.Time `yaml:"start"`
	End   time.Time `yaml:"end"`

	ModelConfig  string `yaml:"model_config"`
	OceanHandler string `yaml:"ocean_handler,omitempty"`
	LoadHandler  string `yaml:"load_handler,omitempty"`
	Shoreline    string `yaml:"shoreline,omitempty"` // centroid source when Centroid is empty
	Output       string `yaml:"output,omitempty"`

	Centroid []float64 `yaml:"centroid,omitempty"` // [lon, lat]
	Timestep int       `yaml:"timestep,omitempty"` // seconds
}

// Load reads and parses the YAML configuration file from the specified path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.Settings == nil {
		cfg.Settings = Settings{}
	}

	return &cfg, nil
}

// LoadOrDefault loads path, or returns an empty configuration when path is empty.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return &Config{Settings: Settings{}}, nil
	}

	return Load(path)
}

// OutputEPSG returns the required reprojection target code.
// Accepted values are integers, integral floats and strings like "32718" or "EPSG:32718".
func (s Settings) OutputEPSG() (int, error) {
	raw, ok := s[OutputEPSGKey]
	if !ok || raw == nil {
		return 0, ErrMissingOutputEPSG
	}

	var code int
	switch v := raw.(type) {
	case int:
		code = v
	case int64:
		code = int(v)
	case uint64:
		code = int(v)
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("%w: %v", ErrInvalidOutputEPSG, v)
		}
		code = int(v)
	case string:
		n, err := strconv.Atoi(strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(v)), "EPSG:"))
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidOutputEPSG, v)
		}
		code = n
	default:
		return 0, fmt.Errorf("%w: %v", ErrInvalidOutputEPSG, raw)
	}

	if code <= 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidOutputEPSG, code)
	}

	return code, nil
}
