package sim

import (
	"context"

	"github.com/san-kum/springsim/internal/dynamo"
)

// Simulator drives a System on a uniform output grid. Adaptive steppers
// take as many internal steps as their error control demands between grid
// points; every grid point is an integrator node.
type Simulator struct {
	sys        dynamo.System
	integrator dynamo.Integrator
	metrics    []dynamo.Metric
}

func New(sys dynamo.System, integrator dynamo.Integrator) *Simulator {
	return &Simulator{
		sys:        sys,
		integrator: integrator,
		metrics:    make([]dynamo.Metric, 0),
	}
}

func (s *Simulator) AddMetric(m dynamo.Metric) { s.metrics = append(s.metrics, m) }

// Stats counts integrator work over one run.
type Stats struct {
	StepsTaken    int
	StepsRejected int
}

// Metrics reports the value of every registered metric for the last run.
func (s *Simulator) Metrics() map[string]float64 {
	out := make(map[string]float64, len(s.metrics))
	for _, m := range s.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}

// RunWithCallback integrates over cfg's grid and hands each sample to
// callback after the registered metrics have observed it. Returning false
// stops the run early without error. The state passed to callback must not
// be retained.
func (s *Simulator) RunWithCallback(ctx context.Context, x0 dynamo.State, cfg dynamo.Config, callback func(i int, t float64, x dynamo.State) bool) (Stats, error) {
	var stats Stats
	if err := cfg.Validate(); err != nil {
		return stats, err
	}
	if len(x0) != s.sys.StateDim() {
		return stats, dynamo.ErrDimensionMismatch
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	n := cfg.Samples()
	x := x0.Clone()
	h := cfg.Dt

	for i := 0; i < n; i++ {
		t := cfg.TimeAt(i)
		select {
		case <-ctx.Done():
			return stats, &dynamo.SimulationError{Step: i, Time: t, State: x.Clone(), Wrapped: ctx.Err()}
		default:
		}

		if i > 0 {
			var err error
			x, h, err = s.advance(x, cfg.TimeAt(i-1), t, h, cfg, &stats)
			if err != nil {
				return stats, &dynamo.SimulationError{Step: i, Time: t, State: x.Clone(), Wrapped: err}
			}
		}

		if cfg.ValidateState && !x.IsValid() {
			return stats, &dynamo.SimulationError{Step: i, Time: t, State: x.Clone(), Wrapped: dynamo.ErrInvalidState}
		}

		for _, m := range s.metrics {
			m.Observe(x, t)
		}
		if !callback(i, t, x) {
			return stats, nil
		}
	}

	return stats, nil
}

// advance moves x from t0 to exactly t1. h is the adaptive step carried
// between grid intervals and is returned updated.
func (s *Simulator) advance(x dynamo.State, t0, t1, h float64, cfg dynamo.Config, stats *Stats) (dynamo.State, float64, error) {
	adaptive, ok := s.integrator.(dynamo.AdaptiveIntegrator)
	if !ok {
		next, err := s.integrator.Step(s.sys, x, t0, t1-t0)
		if err != nil {
			return x, h, err
		}
		stats.StepsTaken++
		return next, h, nil
	}

	minDt := cfg.MinDt
	if minDt <= 0 {
		minDt = dynamo.DefaultMinDt
	}
	maxIter := cfg.MaxIterations
	if maxIter <= 0 {
		maxIter = dynamo.DefaultMaxIterations
	}

	t := t0
	for iter := 0; ; iter++ {
		if iter >= maxIter {
			return x, h, dynamo.ErrNoConvergence
		}

		remaining := t1 - t
		last := h >= remaining
		step := h
		if last {
			step = remaining
		}

		next, hNext, accepted, err := adaptive.StepAdaptive(s.sys, x, t, step, cfg.Tolerance)
		if err != nil {
			return x, h, err
		}
		if !accepted {
			stats.StepsRejected++
			h = hNext
			if h < minDt {
				return x, h, dynamo.ErrStepTooSmall
			}
			continue
		}

		stats.StepsTaken++
		x = next
		if last {
			// A clipped step says nothing about the natural step size.
			if step == h {
				h = hNext
			}
			return x, h, nil
		}
		t += step
		h = hNext
	}
}
