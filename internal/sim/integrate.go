package sim

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/integrators"
	"github.com/san-kum/springsim/internal/metrics"
	"github.com/san-kum/springsim/internal/physics"
)

// Span is a half-open time interval [Start, End).
type Span struct {
	Start float64 `json:"start" yaml:"start"`
	End   float64 `json:"end" yaml:"end"`
}

type options struct {
	integrator     dynamo.Integrator
	integratorName string
	tolerance      float64
	logger         *zap.Logger
	metrics        bool
}

type Option func(*options)

// WithIntegrator replaces the default adaptive Dormand-Prince stepper.
func WithIntegrator(name string, integ dynamo.Integrator) Option {
	return func(o *options) {
		o.integrator = integ
		o.integratorName = name
	}
}

func WithTolerance(tol float64) Option {
	return func(o *options) { o.tolerance = tol }
}

func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMetrics toggles the per-run observers: energy drift, mean energy,
// peak amplitude and settling time. They are on by default.
func WithMetrics(enabled bool) Option {
	return func(o *options) { o.metrics = enabled }
}

// Integrate solves m·x'' + c·x' + k·x = F(t) on the grid Start + i·step,
// i in [0, floor((End-Start)/step)). A nil force means free vibration.
func Integrate(ctx context.Context, p physics.Params, span Span, step float64, force physics.Force, opts ...Option) (*Trajectory, error) {
	o := options{
		tolerance: dynamo.DefaultTolerance,
		logger:    zap.NewNop(),
		metrics:   true,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.integrator == nil {
		o.integrator = integrators.NewRK45()
		o.integratorName = "rk45"
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	if force == nil {
		force = physics.NoForce{}
	}
	if err := force.Validate(); err != nil {
		return nil, fmt.Errorf("%s force: %w", force.Kind(), err)
	}
	if math.IsNaN(o.tolerance) || o.tolerance < 0 {
		return nil, dynamo.Bounds("tolerance", o.tolerance, ">= 0")
	}

	cfg := dynamo.DefaultConfig()
	cfg.Start = span.Start
	cfg.End = span.End
	cfg.Dt = step
	cfg.Tolerance = o.tolerance
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	osc := physics.NewOscillator(p, force)
	s := New(osc, o.integrator)
	if o.metrics {
		s.AddMetric(metrics.NewEnergyDrift(osc))
		s.AddMetric(metrics.NewMeanEnergy(osc))
		s.AddMetric(metrics.NewPeakAmplitude())
		s.AddMetric(metrics.NewSettlingTime(metrics.DefaultSettlingBand))
	}

	n := cfg.Samples()
	log := o.logger.With(
		zap.String("label", p.Label),
		zap.String("force", force.Kind()),
		zap.String("integrator", o.integratorName),
	)
	log.Debug("integration started",
		zap.Int("samples", n),
		zap.Float64("step", step),
		zap.Float64("start", span.Start),
		zap.Float64("end", span.End),
	)
	began := time.Now()

	t := make([]float64, 0, n)
	x := make([]float64, 0, n)
	v := make([]float64, 0, n)
	stats, err := s.RunWithCallback(ctx, osc.InitialState(), cfg, func(i int, ti float64, xi dynamo.State) bool {
		t = append(t, ti)
		x = append(x, xi[0])
		v = append(v, xi[1])
		return true
	})
	if err != nil {
		log.Debug("integration failed", zap.Error(err))
		return nil, err
	}

	traj, err := NewTrajectory(p, force, t, x, v)
	if err != nil {
		return nil, err
	}
	traj.Step = step
	traj.Integrator = o.integratorName
	traj.StepsTaken = stats.StepsTaken
	traj.StepsRejected = stats.StepsRejected
	for name, value := range s.Metrics() {
		traj.Metrics[name] = value
	}

	log.Debug("integration finished",
		zap.Int("steps", stats.StepsTaken),
		zap.Int("rejected", stats.StepsRejected),
		zap.Duration("elapsed", time.Since(began)),
	)
	return traj, nil
}
