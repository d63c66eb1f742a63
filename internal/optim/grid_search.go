// Package optim tunes oscillator parameters by exhaustive grid search.
package optim

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/springsim/internal/experiment"
	"github.com/san-kum/springsim/internal/physics"
	"github.com/san-kum/springsim/internal/sim"
)

var (
	ErrUnknownParam = errors.New("optim: unknown parameter")
	ErrNoCandidate  = errors.New("optim: no grid point could be evaluated")
)

// Objective scores one parameter set. Lower is better.
type Objective func(ctx context.Context, p physics.Params) (float64, error)

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

// NewGridSearch searches the cartesian product of ranges. Names are
// mass, stiffness, damping, x0 or v0.
func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) == 0 || len(params) != len(ranges) {
		return nil, fmt.Errorf("optim: %d parameters for %d ranges", len(params), len(ranges))
	}
	for i, name := range params {
		if _, err := field(&physics.Params{}, name); err != nil {
			return nil, err
		}
		if len(ranges[i]) == 0 {
			return nil, fmt.Errorf("optim: empty range for %s", name)
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

type Result struct {
	Params    physics.Params     `json:"params"`
	Values    map[string]float64 `json:"values"`
	Score     float64            `json:"score"`
	Evaluated int                `json:"evaluated"`
	Failed    int                `json:"failed"`
}

// Search evaluates every grid point on top of base. Points whose params
// are invalid or whose objective fails or is NaN count as failed.
func (g *GridSearch) Search(ctx context.Context, base physics.Params, objective Objective) (*Result, error) {
	res := &Result{Score: math.Inf(1)}
	if err := g.searchRecursive(ctx, 0, base, make(map[string]float64), objective, res); err != nil {
		return nil, err
	}
	if res.Values == nil {
		return nil, ErrNoCandidate
	}
	return res, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current physics.Params,
	values map[string]float64,
	objective Objective,
	res *Result,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		if current.Validate() != nil {
			res.Failed++
			return nil
		}
		val, err := objective(ctx, current)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		if err != nil || math.IsNaN(val) {
			res.Failed++
			return nil
		}
		res.Evaluated++
		if val < res.Score {
			res.Score = val
			res.Params = current
			res.Values = make(map[string]float64, len(values))
			for k, v := range values {
				res.Values[k] = v
			}
		}
		return nil
	}

	name := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		next := current
		dst, _ := field(&next, name)
		*dst = val
		values[name] = val
		if err := g.searchRecursive(ctx, depth+1, next, values, objective, res); err != nil {
			return err
		}
	}
	delete(values, name)
	return nil
}

func field(p *physics.Params, name string) (*float64, error) {
	switch name {
	case "mass":
		return &p.Mass, nil
	case "stiffness":
		return &p.Stiffness, nil
	case "damping":
		return &p.Damping, nil
	case "x0":
		return &p.X0, nil
	case "v0":
		return &p.V0, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownParam, name)
}

// Linspace returns n evenly spaced values over [lo, hi].
func Linspace(lo, hi float64, n int) []float64 {
	if n < 1 {
		return nil
	}
	if n == 1 {
		return []float64{lo}
	}
	return floats.Span(make([]float64, n), lo, hi)
}

// MetricObjective integrates each candidate and scores it by a named
// trajectory metric such as settling_time or peak_amplitude.
func MetricObjective(registry *experiment.Registry, integrator string, span sim.Span, step float64, force physics.Force, metric string) Objective {
	return func(ctx context.Context, p physics.Params) (float64, error) {
		opt, release, err := registry.IntegratorOption(integrator)
		if err != nil {
			return 0, err
		}
		defer release()

		traj, err := sim.Integrate(ctx, p, span, step, force, opt)
		if err != nil {
			return 0, err
		}
		v, ok := traj.Metrics[metric]
		if !ok {
			return 0, fmt.Errorf("optim: trajectory has no metric %q", metric)
		}
		return v, nil
	}
}
