package tide

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/paulmach/orb"
)

type constModel float64

func (m constModel) Evaluate(orb.Point, time.Time) (float64, error) {
	return float64(m), nil
}

type failModel struct{}

func (failModel) Evaluate(orb.Point, time.Time) (float64, error) {
	return 0, errors.New("grid lookup failed")
}

var start = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

func TestComputeTide(t *testing.T) {
	is := is.New(t)

	c, err := NewCentroid([]float64{151.3023463, -33.7239154})
	is.NoErr(err)

	s, err := ComputeTide(c, DateRange{Start: start, End: start.Add(time.Hour)}, 15*time.Minute, constModel(100), constModel(20))
	is.NoErr(err)
	is.Equal(s.Len(), 5)
	is.Equal(s.Times[0], start)
	is.Equal(s.Times[4], start.Add(time.Hour))
	for _, h := range s.Heights {
		is.True(math.Abs(h-1.2) < 1e-12)
	}
}

func TestComputeTideStepPastEnd(t *testing.T) {
	is := is.New(t)

	c := Centroid{Lon: 0, Lat: 0}
	s, err := ComputeTide(c, DateRange{Start: start, End: start.Add(time.Hour)}, 25*time.Minute, constModel(0), constModel(0))
	is.NoErr(err)
	is.Equal(s.Len(), 3)
	is.Equal(s.Times[2], start.Add(50*time.Minute))
}

func TestComputeTideYearAtQuarterHour(t *testing.T) {
	is := is.New(t)

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s, err := ComputeTide(Centroid{Lon: 151.3023463, Lat: -33.7239154}, DateRange{Start: from, End: to}, 900*time.Second, constModel(0), constModel(0))
	is.NoErr(err)
	is.Equal(s.Len(), 35137)
	is.Equal(s.Times[s.Len()-1], to)
}

func TestComputeTideErrors(t *testing.T) {
	is := is.New(t)
	r := DateRange{Start: start, End: start.Add(time.Hour)}
	c := Centroid{Lon: 10, Lat: 10}

	_, err := ComputeTide(Centroid{Lon: 10, Lat: 91}, r, time.Minute, constModel(0), constModel(0))
	is.True(errors.Is(err, ErrInvalidCentroid))

	_, err = ComputeTide(c, DateRange{Start: start, End: start}, time.Minute, constModel(0), constModel(0))
	is.True(errors.Is(err, ErrInvalidRange))

	_, err = ComputeTide(c, r, 0, constModel(0), constModel(0))
	is.True(errors.Is(err, ErrInvalidTimestep))

	_, err = ComputeTide(c, r, time.Minute, constModel(0), failModel{})
	is.True(err != nil)

	_, err = ComputeTide(c, r, time.Minute, nil, constModel(0))
	is.True(err != nil)
}

func TestNewCentroid(t *testing.T) {
	is := is.New(t)

	_, err := NewCentroid([]float64{151.3023463})
	is.True(errors.Is(err, ErrInvalidCentroid))

	_, err = NewCentroid(nil)
	is.True(errors.Is(err, ErrInvalidCentroid))

	_, err = NewCentroid([]float64{1, 2, 3})
	is.True(errors.Is(err, ErrInvalidCentroid))

	_, err = NewCentroid([]float64{181, 0})
	is.True(errors.Is(err, ErrInvalidCentroid))

	c, err := NewCentroid([]float64{-75, 12})
	is.NoErr(err)
	is.Equal(c.Point(), orb.Point{-75, 12})
}

func TestHarmonicModel(t *testing.T) {
	is := is.New(t)

	m, err := NewHarmonicModel(time.Time{}, []Constituent{{Name: "m2", Amplitude: 100}})
	is.NoErr(err)
	is.Equal(m.Epoch, DefaultEpoch)
	is.Equal(m.Constituents[0].Name, "M2")

	h, err := m.Evaluate(orb.Point{}, DefaultEpoch)
	is.NoErr(err)
	is.True(math.Abs(h-100) < 1e-9)

	speed, _ := Speed("M2")
	half := time.Duration(180 / speed * float64(time.Hour))
	h, err = m.Evaluate(orb.Point{}, DefaultEpoch.Add(half))
	is.NoErr(err)
	is.True(math.Abs(h+100) < 1e-6)

	// a 90 degree lag peaks a quarter period later
	lagged, err := NewHarmonicModel(time.Time{}, []Constituent{{Name: "M2", Amplitude: 100, Phase: 90}})
	is.NoErr(err)
	h, err = lagged.Evaluate(orb.Point{}, DefaultEpoch.Add(half/2))
	is.NoErr(err)
	is.True(math.Abs(h-100) < 1e-6)

	_, err = NewHarmonicModel(time.Time{}, []Constituent{{Name: "X9"}})
	is.True(err != nil)
}
