package metrics

import (
	"math"

	"github.com/san-kum/springsim/internal/dynamo"
)

// DefaultSettlingBand is the 2% settling criterion.
const DefaultSettlingBand = 0.02

// PeakAmplitude is max |x[0]| over the run.
type PeakAmplitude struct {
	name string
	peak float64
}

func NewPeakAmplitude() *PeakAmplitude {
	return &PeakAmplitude{name: "peak_amplitude"}
}

func (p *PeakAmplitude) Name() string { return p.name }

func (p *PeakAmplitude) Observe(x dynamo.State, t float64) {
	if len(x) == 0 {
		return
	}
	p.peak = math.Max(p.peak, math.Abs(x[0]))
}

func (p *PeakAmplitude) Value() float64 { return p.peak }

func (p *PeakAmplitude) Reset() { p.peak = 0 }

// SettlingTime is the last time the position lies outside a band around
// its final value. The band is a fraction of the largest excursion from
// that final value. A run that never leaves the band settles at its first
// sample.
type SettlingTime struct {
	name  string
	band  float64
	times []float64
	xs    []float64
}

func NewSettlingTime(band float64) *SettlingTime {
	if band <= 0 {
		band = DefaultSettlingBand
	}
	return &SettlingTime{name: "settling_time", band: band}
}

func (s *SettlingTime) Name() string { return s.name }

func (s *SettlingTime) Observe(x dynamo.State, t float64) {
	if len(x) == 0 {
		return
	}
	s.times = append(s.times, t)
	s.xs = append(s.xs, x[0])
}

func (s *SettlingTime) Value() float64 {
	return Settling(s.times, s.xs, s.band)
}

func (s *SettlingTime) Reset() {
	s.times = s.times[:0]
	s.xs = s.xs[:0]
}

// Settling computes the settling time of x(t) for the given band fraction.
func Settling(t, x []float64, band float64) float64 {
	n := len(x)
	if n == 0 || len(t) != n {
		return 0
	}
	final := x[n-1]
	maxDev := 0.0
	for _, v := range x {
		maxDev = math.Max(maxDev, math.Abs(v-final))
	}
	if maxDev == 0 {
		return t[0]
	}
	limit := band * maxDev
	for i := n - 1; i >= 0; i-- {
		if math.Abs(x[i]-final) > limit {
			if i+1 < n {
				return t[i+1]
			}
			return t[i]
		}
	}
	return t[0]
}
