package analysis

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/physics"
)

const (
	DefaultResonancePoints = 100
	sweepLowFactor         = 0.1
	sweepHighFactor        = 3.0
)

// SweepRange is an inclusive range of driving frequencies in rad/s.
type SweepRange struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// DefaultSweep is [0.1ωn, 3ωn].
func DefaultSweep(p physics.Params) SweepRange {
	wn := p.NaturalFrequency()
	return SweepRange{Min: sweepLowFactor * wn, Max: sweepHighFactor * wn}
}

type ResonanceResult struct {
	Omega              []float64          `json:"omega"`
	Amplitude          []physics.Quantity `json:"amplitude"`
	ResonanceFrequency float64            `json:"resonance_frequency"`
	PeakAmplitude      physics.Quantity   `json:"peak_amplitude"`
	QualityFactor      physics.Quantity   `json:"quality_factor"`
	Bandwidth3dB       float64            `json:"bandwidth_3db"`
}

// HasPeak reports whether the response has a resonance peak above zero
// frequency.
func (r *ResonanceResult) HasPeak() bool { return r.ResonanceFrequency > 0 }

// AnalyzeResonance evaluates |H(ω)| = 1/sqrt((1-r²)² + (2ζr)²), r = ω/ωn,
// over an inclusive sweep. A nil sweep selects DefaultSweep and points <= 0
// selects DefaultResonancePoints.
func AnalyzeResonance(p physics.Params, sweep *SweepRange, points int) (*ResonanceResult, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if points <= 0 {
		points = DefaultResonancePoints
	}
	if points < 2 {
		return nil, dynamo.Bounds("points", float64(points), ">= 2")
	}
	rng := DefaultSweep(p)
	if sweep != nil {
		rng = *sweep
	}
	if math.IsNaN(rng.Min) || rng.Min < 0 {
		return nil, dynamo.Bounds("omega_min", rng.Min, ">= 0")
	}
	if !(rng.Max > rng.Min) || math.IsInf(rng.Max, 0) {
		return nil, dynamo.Bounds("omega_max", rng.Max, "finite and > omega_min")
	}

	wn := p.NaturalFrequency()
	zeta := p.DampingRatio()

	omega := make([]float64, points)
	floats.Span(omega, rng.Min, rng.Max)

	amp := make([]physics.Quantity, points)
	for i, w := range omega {
		amp[i] = physics.Quantity(TransferMagnitude(w/wn, zeta))
	}

	res := &ResonanceResult{
		Omega:         omega,
		Amplitude:     amp,
		QualityFactor: physics.Quantity(math.Inf(1)),
		Bandwidth3dB:  2 * zeta * wn,
	}
	if zeta > 0 {
		res.QualityFactor = physics.Quantity(1 / (2 * zeta))
	}
	if zeta < 1/math.Sqrt2 {
		res.ResonanceFrequency = wn * math.Sqrt(1-2*zeta*zeta)
		res.PeakAmplitude = physics.Quantity(TransferMagnitude(res.ResonanceFrequency/wn, zeta))
	} else {
		res.PeakAmplitude = 1
	}
	return res, nil
}

// TransferMagnitude is the normalised steady-state amplitude at frequency
// ratio r for damping ratio zeta.
func TransferMagnitude(r, zeta float64) float64 {
	a := 1 - r*r
	b := 2 * zeta * r
	return 1 / math.Sqrt(a*a+b*b)
}
