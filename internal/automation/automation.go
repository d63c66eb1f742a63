package automation

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/springsim/internal/config"
	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/experiment"
	"github.com/san-kum/springsim/internal/physics"
	"github.com/san-kum/springsim/internal/sim"
	"github.com/san-kum/springsim/internal/storage"
)

// Scenario is a named list of runs loaded from YAML.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is one run. Its fields are a full config.Config on top of
// the defaults; Save stores the trajectory when the runner has a store.
type ScenarioStep struct {
	Name          string `yaml:"name"`
	Save          bool   `yaml:"save"`
	config.Config `yaml:",inline"`
}

func (s *ScenarioStep) UnmarshalYAML(node *yaml.Node) error {
	type plain ScenarioStep
	p := plain{Config: *config.DefaultConfig()}
	if err := node.Decode(&p); err != nil {
		return err
	}
	*s = ScenarioStep(p)
	return nil
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("scenario: %w", err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}
	for i := range scenario.Steps {
		if scenario.Steps[i].Name == "" {
			scenario.Steps[i].Name = fmt.Sprintf("step-%d", i+1)
		}
	}
	return &scenario, nil
}

type StepResult struct {
	Name   string
	Report *experiment.Report
	RunID  string
	Err    error
}

type Runner struct {
	Registry *experiment.Registry
	Store    *storage.Store
	Logger   *zap.Logger
}

func NewRunner(store *storage.Store, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{Registry: experiment.NewRegistry(), Store: store, Logger: logger}
}

// RunScenario executes all steps concurrently. Results keep step order; a
// failing step does not stop the others.
func (r *Runner) RunScenario(ctx context.Context, scenario *Scenario) []StepResult {
	results := make([]StepResult, len(scenario.Steps))
	dynamo.ParallelFor(len(scenario.Steps), 1, func(start, end int) {
		for i := start; i < end; i++ {
			results[i] = r.runStep(ctx, &scenario.Steps[i])
		}
	})
	return results
}

func (r *Runner) runStep(ctx context.Context, step *ScenarioStep) StepResult {
	log := r.Logger.With(zap.String("step", step.Name))
	log.Info("scenario step started",
		zap.String("preset", step.Preset),
		zap.String("integrator", step.Integrator),
		zap.String("force", step.Force.Type),
	)

	res := StepResult{Name: step.Name}
	cfg := step.Config
	report, err := experiment.New(&cfg, experiment.WithRegistry(r.Registry), experiment.WithLogger(log)).Run(ctx)
	if err != nil {
		log.Warn("scenario step failed", zap.Error(err))
		res.Err = err
		return res
	}
	res.Report = report

	if step.Save && r.Store != nil {
		id, err := r.Store.Save(report.Trajectory)
		if err != nil {
			log.Warn("saving scenario step failed", zap.Error(err))
			res.Err = fmt.Errorf("save: %w", err)
			return res
		}
		res.RunID = id
	}
	return res
}

// MonteCarloConfig perturbs the initial displacement and velocity of a
// system uniformly by up to ±Perturbation in each.
type MonteCarloConfig struct {
	Params       physics.Params
	Force        physics.Force
	Integrator   string
	Span         sim.Span
	Step         float64
	Perturbation float64
	NumTrials    int
	Seed         int64
}

type MonteCarloResult struct {
	TrialID       int     `json:"trial"`
	X0            float64 `json:"x0"`
	V0            float64 `json:"v0"`
	PeakAmplitude float64 `json:"peak_amplitude"`
	SettlingTime  float64 `json:"settling_time"`
	FinalX        float64 `json:"final_x"`
	Stable        bool    `json:"stable"`
}

// RunMonteCarlo executes the trials concurrently.
func (r *Runner) RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig) ([]MonteCarloResult, error) {
	if cfg.NumTrials <= 0 {
		return nil, dynamo.Bounds("trials", float64(cfg.NumTrials), "> 0")
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	jobs := make([]sim.Job, cfg.NumTrials)
	var releases []func()
	defer func() {
		for _, release := range releases {
			release()
		}
	}()
	for i := range jobs {
		p := cfg.Params
		p.X0 += (rng.Float64() - 0.5) * 2 * cfg.Perturbation
		p.V0 += (rng.Float64() - 0.5) * 2 * cfg.Perturbation

		opt, release, err := r.Registry.IntegratorOption(cfg.Integrator)
		if err != nil {
			return nil, err
		}
		releases = append(releases, release)
		jobs[i] = sim.Job{
			Name:    fmt.Sprintf("trial-%d", i),
			Params:  p,
			Span:    cfg.Span,
			Step:    cfg.Step,
			Force:   cfg.Force,
			Options: []sim.Option{opt, sim.WithLogger(r.Logger)},
		}
	}

	results := make([]MonteCarloResult, len(jobs))
	for i, jr := range sim.RunBatch(ctx, jobs) {
		if jr.Err != nil {
			return nil, fmt.Errorf("%s: %w", jr.Name, jr.Err)
		}
		tr := jr.Trajectory
		final := tr.X[tr.Len()-1]
		results[i] = MonteCarloResult{
			TrialID:       i,
			X0:            jobs[i].Params.X0,
			V0:            jobs[i].Params.V0,
			PeakAmplitude: tr.Metrics["peak_amplitude"],
			SettlingTime:  tr.Metrics["settling_time"],
			FinalX:        final,
			Stable:        !math.IsNaN(final) && math.Abs(final) < 1e6,
		}
	}
	r.Logger.Info("monte carlo finished", zap.Int("trials", len(results)), zap.Int64("seed", seed))
	return results, nil
}

// MonteCarloStats counts stable and unstable trials.
func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}
