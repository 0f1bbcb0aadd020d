package tide

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/paulmach/orb"
)

// DefaultEpoch is the phase reference used when a model does not set one.
var DefaultEpoch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// speeds are angular speeds in degrees per mean solar hour.
var speeds = map[string]float64{
	"M2":  28.9841042,
	"S2":  30.0000000,
	"N2":  28.4397295,
	"K2":  30.0821373,
	"K1":  15.0410686,
	"O1":  13.9430356,
	"P1":  14.9589314,
	"Q1":  13.3986609,
	"M4":  57.9682084,
	"MF":  1.0980331,
	"MM":  0.5443747,
	"SA":  0.0410686,
	"SSA": 0.0821373,
}

// Speed returns the angular speed of a named constituent.
func Speed(name string) (float64, bool) {
	s, ok := speeds[strings.ToUpper(name)]
	return s, ok
}

// Constituent is one harmonic term at the site.
type Constituent struct {
	Name      string  `yaml:"name"`
	Amplitude float64 `yaml:"amplitude"` // cm
	Phase     float64 `yaml:"phase"`     // degrees, relative to the model epoch
	Speed     float64 `yaml:"-"`         // degrees per hour
}

// HarmonicModel sums site constituents. Amplitudes and phases belong to one
// site, so the evaluated point is not used; nodal corrections are not applied.
type HarmonicModel struct {
	Epoch        time.Time
	Constituents []Constituent
}

// NewHarmonicModel resolves constituent speeds by name.
func NewHarmonicModel(epoch time.Time, cs []Constituent) (*HarmonicModel, error) {
	if epoch.IsZero() {
		epoch = DefaultEpoch
	}

	m := &HarmonicModel{Epoch: epoch, Constituents: make([]Constituent, 0, len(cs))}
	for _, c := range cs {
		speed, ok := Speed(c.Name)
		if !ok {
			return nil, fmt.Errorf("unknown constituent %q", c.Name)
		}
		c.Name = strings.ToUpper(c.Name)
		c.Speed = speed
		m.Constituents = append(m.Constituents, c)
	}

	return m, nil
}

// Evaluate returns the tide level in centimetres.
func (m *HarmonicModel) Evaluate(_ orb.Point, t time.Time) (float64, error) {
	hours := t.Sub(m.Epoch).Hours()

	var h float64
	for _, c := range m.Constituents {
		arg := math.Mod(c.Speed*hours-c.Phase, 360) * math.Pi / 180
		h += c.Amplitude * math.Cos(arg)
	}

	return h, nil
}
