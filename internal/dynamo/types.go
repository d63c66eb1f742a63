package dynamo

import (
	"fmt"
	"math"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// System is a first-order ODE dX/dt = f(X, t). Derive must be safe to call
// at arbitrary, non-monotonic times.
type System interface {
	Derive(x State, t float64) State
	StateDim() int
}

type Hamiltonian interface {
	Energy(x State) float64
}

type Integrator interface {
	Step(sys System, x State, t, dt float64) (State, error)
}

// AdaptiveIntegrator attempts one step of size dt and reports whether the
// local error estimate was within tol, along with the step size to try next.
// A rejected step returns the unchanged input state.
type AdaptiveIntegrator interface {
	Integrator
	StepAdaptive(sys System, x State, t, dt, tol float64) (next State, dtNext float64, accepted bool, err error)
}

type Metric interface {
	Name() string
	Observe(x State, t float64)
	Value() float64
	Reset()
}

// Config describes the output grid and error control of one run.
// The grid is half-open: samples at Start + i*Dt for i in [0, Samples()).
type Config struct {
	Start         float64
	End           float64
	Dt            float64
	Tolerance     float64
	MinDt         float64
	MaxIterations int
	ValidateState bool
}

const (
	DefaultDt            = 0.001
	DefaultDuration      = 10.0
	DefaultTolerance     = 1e-8
	DefaultMinDt         = 1e-12
	DefaultMaxIterations = 100000

	// MaxSamples caps the output grid of one run.
	MaxSamples = 5_000_000

	// gridSlack absorbs representation error in (End-Start)/Dt so that
	// 10/0.001 counts as 10000 intervals rather than 9999.999...
	gridSlack = 1e-9
)

func DefaultConfig() Config {
	return Config{
		Start:         0,
		End:           DefaultDuration,
		Dt:            DefaultDt,
		Tolerance:     DefaultTolerance,
		MinDt:         DefaultMinDt,
		MaxIterations: DefaultMaxIterations,
		ValidateState: true,
	}
}

// Samples returns the number of grid points; End itself is never included.
func (c Config) Samples() int {
	if c.Dt <= 0 || c.End <= c.Start {
		return 0
	}
	return int(math.Floor((c.End-c.Start)/c.Dt + gridSlack))
}

// TimeAt returns the i-th grid time.
func (c Config) TimeAt(i int) float64 {
	return c.Start + float64(i)*c.Dt
}

func (c Config) Validate() error {
	if math.IsNaN(c.Start) || math.IsInf(c.Start, 0) {
		return Bounds("start", c.Start, "finite")
	}
	if !(c.End > c.Start) || math.IsInf(c.End, 0) {
		return Bounds("end", c.End, "finite and > start")
	}
	if !(c.Dt > 0) || math.IsInf(c.Dt, 0) {
		return Bounds("dt", c.Dt, "> 0")
	}
	if c.Tolerance < 0 {
		return Bounds("tolerance", c.Tolerance, ">= 0")
	}
	if intervals := (c.End - c.Start) / c.Dt; intervals > MaxSamples {
		return Bounds("dt", c.Dt, fmt.Sprintf("at most %d samples over the span", MaxSamples))
	}
	if n := c.Samples(); n < 2 {
		return fmt.Errorf("%w: grid has %d samples, need at least 2", ErrTooFewSamples, n)
	}
	return nil
}

