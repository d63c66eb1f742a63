package experiment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/san-kum/springsim/internal/analysis"
	"github.com/san-kum/springsim/internal/config"
	"github.com/san-kum/springsim/internal/physics"
	"github.com/san-kum/springsim/internal/sim"
)

// Report is everything one run produces. Validation is nil for forced
// runs and Decrement is nil when fewer than two peaks exist.
type Report struct {
	Trajectory  *sim.Trajectory            `json:"trajectory"`
	Validation  *analysis.ValidationResult `json:"validation,omitempty"`
	Spectrum    *analysis.SpectrumResult   `json:"spectrum"`
	Resonance   *analysis.ResonanceResult  `json:"resonance"`
	Decrement   *analysis.Decrement        `json:"decrement,omitempty"`
	Conclusions string                     `json:"conclusions"`
	Elapsed     time.Duration              `json:"elapsed_ns"`
}

type Experiment struct {
	cfg      *config.Config
	registry *Registry
	logger   *zap.Logger
}

type Option func(*Experiment)

func WithLogger(l *zap.Logger) Option {
	return func(e *Experiment) { e.logger = l }
}

func WithRegistry(r *Registry) Option {
	return func(e *Experiment) { e.registry = r }
}

func New(cfg *config.Config, opts ...Option) *Experiment {
	e := &Experiment{
		cfg:      cfg,
		registry: NewRegistry(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Simulate integrates the configured system without running the analyses.
func (e *Experiment) Simulate(ctx context.Context) (*sim.Trajectory, error) {
	cfg := e.cfg
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p, err := cfg.SystemParams()
	if err != nil {
		return nil, err
	}
	force, err := cfg.BuildForce()
	if err != nil {
		return nil, err
	}
	integOpt, release, err := e.registry.IntegratorOption(cfg.Integrator)
	if err != nil {
		return nil, err
	}
	defer release()

	return sim.Integrate(ctx, p, cfg.Span(), cfg.Dt, force,
		integOpt,
		sim.WithTolerance(cfg.Tolerance),
		sim.WithLogger(e.logger),
	)
}

// Run simulates and analyses the configured system.
func (e *Experiment) Run(ctx context.Context) (*Report, error) {
	began := time.Now()
	traj, err := e.Simulate(ctx)
	if err != nil {
		return nil, err
	}
	report, err := Analyze(traj, e.cfg.SweepRange(), e.cfg.Resonance.Points)
	if err != nil {
		return nil, err
	}
	report.Elapsed = time.Since(began)

	e.logger.Info("experiment finished",
		zap.String("label", traj.Params.Label),
		zap.Stringer("regime", traj.Params.Regime()),
		zap.String("integrator", traj.Integrator),
		zap.Int("samples", traj.Len()),
		zap.Duration("elapsed", report.Elapsed),
	)
	return report, nil
}

// Analyze runs validation, spectrum, resonance and decrement analyses on a
// finished trajectory and writes the conclusions.
func Analyze(traj *sim.Trajectory, sweep *analysis.SweepRange, points int) (*Report, error) {
	report := &Report{Trajectory: traj}

	if !traj.Forced() {
		v, err := analysis.Validate(traj)
		if err != nil {
			return nil, fmt.Errorf("validate: %w", err)
		}
		report.Validation = v
		if d, err := analysis.LogDecrement(traj); err == nil {
			report.Decrement = d
		}
	}

	spectrum, err := analysis.AnalyzeFrequency(traj)
	if err != nil {
		return nil, fmt.Errorf("spectrum: %w", err)
	}
	report.Spectrum = spectrum

	res, err := analysis.AnalyzeResonance(traj.Params, sweep, points)
	if err != nil {
		return nil, fmt.Errorf("resonance: %w", err)
	}
	report.Resonance = res

	report.Conclusions = analysis.Conclusions(traj, report.Validation, spectrum)
	return report, nil
}

// Comparison is the accuracy and cost of one stepper on a free response.
type Comparison struct {
	Integrator    string        `json:"integrator"`
	RMSError      float64       `json:"rms_error"`
	MaxError      float64       `json:"max_error"`
	EnergyDrift   float64       `json:"energy_drift"`
	StepsTaken    int           `json:"steps_taken"`
	StepsRejected int           `json:"steps_rejected"`
	Elapsed       time.Duration `json:"elapsed_ns"`
	Err           string        `json:"error,omitempty"`
}

// Compare integrates the free response of p with each named stepper in
// turn and validates it against the closed-form solution. A stepper that
// fails is reported with Err set; unknown names are an error.
func (r *Registry) Compare(ctx context.Context, p physics.Params, span sim.Span, step float64, names []string) ([]Comparison, error) {
	if len(names) == 0 {
		names = r.ListIntegrators()
	}
	out := make([]Comparison, 0, len(names))
	for _, name := range names {
		opt, release, err := r.IntegratorOption(name)
		if err != nil {
			return nil, err
		}

		c := Comparison{Integrator: name}
		began := time.Now()
		traj, err := sim.Integrate(ctx, p, span, step, nil, opt)
		c.Elapsed = time.Since(began)
		release()

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		if err != nil {
			c.Err = err.Error()
			out = append(out, c)
			continue
		}

		v, err := analysis.Validate(traj)
		if err != nil {
			return nil, err
		}
		c.RMSError = v.RMSError
		c.MaxError = v.MaxError
		c.EnergyDrift = traj.Metrics["energy_drift"]
		c.StepsTaken = traj.StepsTaken
		c.StepsRejected = traj.StepsRejected
		out = append(out, c)
	}
	return out, nil
}
