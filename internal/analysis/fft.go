package analysis

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"

	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/sim"
)

type SpectrumResult struct {
	Frequencies          []float64 `json:"frequencies"`
	Amplitudes           []float64 `json:"amplitudes"`
	DominantFrequency    float64   `json:"dominant_frequency"`
	TheoreticalFrequency float64   `json:"theoretical_frequency"`
	FrequencyErrorPct    float64   `json:"frequency_error_pct"`
}

// AnalyzeFrequency takes the real FFT of the position series and reports
// the strictly positive half of the one-sided amplitude spectrum,
// normalised as 2|X_k|/N.
func AnalyzeFrequency(traj *sim.Trajectory) (*SpectrumResult, error) {
	if traj == nil || traj.Len() < 3 {
		n := 0
		if traj != nil {
			n = traj.Len()
		}
		return nil, fmt.Errorf("%w: spectrum needs at least 3 samples, got %d", dynamo.ErrTooFewSamples, n)
	}

	freqs, amps := PowerSpectrum(traj.X, traj.T[1]-traj.T[0])

	dominant := 0
	for k := 1; k < len(amps); k++ {
		if amps[k] > amps[dominant] {
			dominant = k
		}
	}

	res := &SpectrumResult{
		Frequencies:       freqs,
		Amplitudes:        amps,
		DominantFrequency: freqs[dominant],
	}
	if traj.Params.Oscillates() {
		res.TheoreticalFrequency = traj.Params.DampedFrequency() / (2 * math.Pi)
	}
	if res.TheoreticalFrequency > 0 {
		res.FrequencyErrorPct = math.Abs(res.DominantFrequency-res.TheoreticalFrequency) / res.TheoreticalFrequency * 100
	}
	return res, nil
}

// PowerSpectrum returns the positive DFT bin frequencies k/(N·dt),
// k = 1..(N-1)/2, and their amplitudes.
func PowerSpectrum(data []float64, dt float64) (freqs, amps []float64) {
	n := len(data)
	spectrum := fft.FFTReal(data)

	bins := (n - 1) / 2
	freqs = make([]float64, bins)
	amps = make([]float64, bins)
	for k := 1; k <= bins; k++ {
		freqs[k-1] = float64(k) / (float64(n) * dt)
		amps[k-1] = cmplx.Abs(spectrum[k]) / float64(n) * 2
	}
	return freqs, amps
}
