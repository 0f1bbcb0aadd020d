// Package tide predicts tide levels at a coastline centroid over a date range.
package tide

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/paulmach/orb"
)

var (
	ErrInvalidCentroid = errors.New("invalid centroid")
	ErrInvalidRange    = errors.New("invalid date range")
	ErrInvalidTimestep = errors.New("timestep must be positive")
)

// Model evaluates one tide component in centimetres at a location and instant.
type Model interface {
	Evaluate(p orb.Point, t time.Time) (float64, error)
}

// Centroid is a longitude/latitude pair in degrees.
type Centroid struct {
	Lon float64
	Lat float64
}

// NewCentroid builds a centroid from a [lon, lat] slice.
// Anything but exactly two values is rejected rather than guessed.
func NewCentroid(values []float64) (Centroid, error) {
	if len(values) != 2 {
		return Centroid{}, fmt.Errorf("%w: want [lon, lat], got %d value(s)", ErrInvalidCentroid, len(values))
	}

	c := Centroid{Lon: values[0], Lat: values[1]}
	return c, c.Validate()
}

// Validate checks the coordinate ranges.
func (c Centroid) Validate() error {
	if math.IsNaN(c.Lon) || c.Lon < -180 || c.Lon > 180 {
		return fmt.Errorf("%w: longitude %g", ErrInvalidCentroid, c.Lon)
	}
	if math.IsNaN(c.Lat) || c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("%w: latitude %g", ErrInvalidCentroid, c.Lat)
	}

	return nil
}

// Point returns the centroid as an orb point.
func (c Centroid) Point() orb.Point {
	return orb.Point{c.Lon, c.Lat}
}

// DateRange is the closed interval [Start, End].
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Series holds parallel timestamps (UTC) and tide levels in metres.
type Series struct {
	Times   []time.Time
	Heights []float64
}

// Len returns the number of samples.
func (s *Series) Len() int {
	return len(s.Times)
}

// ComputeTide samples [r.Start, r.End] every step and sums the ocean and load
// tide at the centroid, converting centimetres to metres.
func ComputeTide(c Centroid, r DateRange, step time.Duration, ocean, load Model) (*Series, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if !r.Start.Before(r.End) {
		return nil, fmt.Errorf("%w: start %s is not before end %s", ErrInvalidRange, r.Start, r.End)
	}
	if step <= 0 {
		return nil, ErrInvalidTimestep
	}
	if ocean == nil || load == nil {
		return nil, errors.New("ocean and load tide models are required")
	}

	n := int(r.End.Sub(r.Start)/step) + 1
	s := &Series{
		Times:   make([]time.Time, 0, n),
		Heights: make([]float64, 0, n),
	}

	p := c.Point()
	start := r.Start.UTC()
	for i := 0; i < n; i++ {
		t := start.Add(time.Duration(i) * step)

		o, err := ocean.Evaluate(p, t)
		if err != nil {
			return nil, fmt.Errorf("ocean tide at %s: %w", t.Format(time.RFC3339), err)
		}
		l, err := load.Evaluate(p, t)
		if err != nil {
			return nil, fmt.Errorf("load tide at %s: %w", t.Format(time.RFC3339), err)
		}

		s.Times = append(s.Times, t)
		s.Heights = append(s.Heights, (o+l)/100)
	}

	return s, nil
}
