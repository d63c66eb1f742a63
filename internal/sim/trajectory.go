package sim

import (
	"fmt"

	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/metrics"
	"github.com/san-kum/springsim/internal/physics"
)

// Trajectory is the sampled response of one oscillator run. All series
// have the same length and share the uniform time grid T. It is not
// modified after construction.
type Trajectory struct {
	Params     physics.Params `json:"params"`
	Force      physics.Force  `json:"-"`
	ForceKind  string         `json:"force"`
	Integrator string         `json:"integrator,omitempty"`
	Step       float64        `json:"step"`

	T           []float64 `json:"t"`
	X           []float64 `json:"x"`
	V           []float64 `json:"v"`
	A           []float64 `json:"a"`
	KE          []float64 `json:"ke"`
	PE          []float64 `json:"pe"`
	ETotal      []float64 `json:"e_total"`
	EDissipated []float64 `json:"e_dissipated"`

	Metrics       map[string]float64 `json:"metrics,omitempty"`
	StepsTaken    int                `json:"steps_taken"`
	StepsRejected int                `json:"steps_rejected"`
}

// NewTrajectory derives acceleration and energies from sampled position
// and velocity. Acceleration is re-evaluated from the equation of motion
// rather than differentiated.
func NewTrajectory(p physics.Params, force physics.Force, t, x, v []float64) (*Trajectory, error) {
	n := len(t)
	if len(x) != n || len(v) != n {
		return nil, fmt.Errorf("%w: t=%d x=%d v=%d", dynamo.ErrDimensionMismatch, n, len(x), len(v))
	}
	if n < 2 {
		return nil, fmt.Errorf("%w: trajectory has %d samples", dynamo.ErrTooFewSamples, n)
	}
	if force == nil {
		force = physics.NoForce{}
	}

	osc := physics.NewOscillator(p, force)
	a := make([]float64, n)
	for i := range t {
		a[i] = osc.Acceleration(x[i], v[i], t[i])
	}

	step := t[1] - t[0]
	ke, pe, total := metrics.Energies(p.Mass, p.Stiffness, x, v)

	return &Trajectory{
		Params:      p,
		Force:       force,
		ForceKind:   force.Kind(),
		Step:        step,
		T:           t,
		X:           x,
		V:           v,
		A:           a,
		KE:          ke,
		PE:          pe,
		ETotal:      total,
		EDissipated: metrics.DissipatedEnergy(p.Damping, v, step),
		Metrics:     make(map[string]float64),
	}, nil
}

func (tr *Trajectory) Len() int { return len(tr.T) }

// Forced reports whether a non-trivial external force drove the run.
func (tr *Trajectory) Forced() bool {
	if tr.Force != nil {
		return physics.IsForced(tr.Force)
	}
	return tr.ForceKind != "" && tr.ForceKind != "none"
}

// Duration is the covered time span, end exclusive.
func (tr *Trajectory) Duration() float64 {
	if len(tr.T) == 0 {
		return 0
	}
	return tr.T[len(tr.T)-1] - tr.T[0] + tr.Step
}

// Decimate returns a copy keeping at most maxSamples evenly strided
// samples. Step is scaled to the new spacing.
func (tr *Trajectory) Decimate(maxSamples int) *Trajectory {
	n := tr.Len()
	if maxSamples <= 0 || n <= maxSamples {
		return tr
	}
	stride := (n + maxSamples - 1) / maxSamples
	pick := func(src []float64) []float64 {
		out := make([]float64, 0, maxSamples)
		for i := 0; i < n; i += stride {
			out = append(out, src[i])
		}
		return out
	}

	cp := *tr
	cp.Step = tr.Step * float64(stride)
	cp.T = pick(tr.T)
	cp.X = pick(tr.X)
	cp.V = pick(tr.V)
	cp.A = pick(tr.A)
	cp.KE = pick(tr.KE)
	cp.PE = pick(tr.PE)
	cp.ETotal = pick(tr.ETotal)
	cp.EDissipated = pick(tr.EDissipated)
	return &cp
}
