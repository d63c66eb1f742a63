package optim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/springsim/internal/config"
	"github.com/san-kum/springsim/internal/experiment"
	"github.com/san-kum/springsim/internal/physics"
	"github.com/san-kum/springsim/internal/sim"
)

func TestNewGridSearch_Errors(t *testing.T) {
	tests := []struct {
		name   string
		params []string
		ranges [][]float64
	}{
		{"empty", nil, nil},
		{"mismatch", []string{"damping"}, nil},
		{"unknown", []string{"gravity"}, [][]float64{{1}}},
		{"empty range", []string{"damping"}, [][]float64{{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewGridSearch(tt.params, tt.ranges); err == nil {
				t.Error("expected error")
			}
		})
	}

	_, err := NewGridSearch([]string{"gravity"}, [][]float64{{1}})
	if !errors.Is(err, ErrUnknownParam) {
		t.Errorf("err = %v, want ErrUnknownParam", err)
	}
}

func TestGridSearch_Quadratic(t *testing.T) {
	g, err := NewGridSearch(
		[]string{"mass", "damping"},
		[][]float64{Linspace(1, 3, 5), Linspace(0, 4, 9)},
	)
	if err != nil {
		t.Fatal(err)
	}
	base := physics.Params{Mass: 1, Stiffness: 100}
	objective := func(_ context.Context, p physics.Params) (float64, error) {
		return (p.Mass-2)*(p.Mass-2) + (p.Damping-1.5)*(p.Damping-1.5), nil
	}

	res, err := g.Search(context.Background(), base, objective)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if res.Evaluated != 45 || res.Failed != 0 {
		t.Errorf("evaluated %d failed %d, want 45/0", res.Evaluated, res.Failed)
	}
	if res.Values["mass"] != 2 || res.Values["damping"] != 1.5 {
		t.Errorf("best = %v", res.Values)
	}
	if res.Params.Stiffness != 100 || res.Params.Mass != 2 {
		t.Errorf("best params = %+v", res.Params)
	}
	if res.Score != 0 {
		t.Errorf("score = %v", res.Score)
	}
}

func TestGridSearch_InvalidPointsFail(t *testing.T) {
	g, err := NewGridSearch([]string{"mass"}, [][]float64{{-1, 0, 1}})
	if err != nil {
		t.Fatal(err)
	}
	res, err := g.Search(context.Background(), physics.Params{Mass: 1, Stiffness: 1}, func(context.Context, physics.Params) (float64, error) {
		return 1, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Evaluated != 1 || res.Failed != 2 {
		t.Errorf("evaluated %d failed %d, want 1/2", res.Evaluated, res.Failed)
	}

	_, err = g.Search(context.Background(), physics.Params{Mass: 1, Stiffness: 1}, func(context.Context, physics.Params) (float64, error) {
		return math.NaN(), nil
	})
	if !errors.Is(err, ErrNoCandidate) {
		t.Errorf("all-NaN search: err = %v, want ErrNoCandidate", err)
	}
}

func TestGridSearch_Canceled(t *testing.T) {
	g, _ := NewGridSearch([]string{"damping"}, [][]float64{{1, 2}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := g.Search(ctx, physics.Params{Mass: 1, Stiffness: 1}, func(context.Context, physics.Params) (float64, error) {
		return 0, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestLinspace(t *testing.T) {
	got := Linspace(0, 1, 5)
	want := []float64{0, 0.25, 0.5, 0.75, 1}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Fatalf("Linspace = %v", got)
		}
	}
	if len(Linspace(3, 4, 1)) != 1 || Linspace(0, 1, 0) != nil {
		t.Error("edge cases")
	}
}

func TestMetricObjective_SettlingTime(t *testing.T) {
	p, _ := config.GetPreset("spring_mass")
	cc := 2 * math.Sqrt(p.Stiffness*p.Mass)

	zetas := Linspace(0.1, 2, 20)
	dampings := make([]float64, len(zetas))
	for i, z := range zetas {
		dampings[i] = z * cc
	}
	g, err := NewGridSearch([]string{"damping"}, [][]float64{dampings})
	if err != nil {
		t.Fatal(err)
	}

	objective := MetricObjective(experiment.NewRegistry(), "rk4", sim.Span{End: 5}, 0.001, nil, "settling_time")
	res, err := g.Search(context.Background(), p, objective)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if res.Evaluated != 20 {
		t.Errorf("evaluated = %d", res.Evaluated)
	}
	if z := res.Params.DampingRatio(); z < 0.5 || z > 1.1 {
		t.Errorf("fastest settling at zeta=%.2f, want near critical", z)
	}

	bad := MetricObjective(experiment.NewRegistry(), "rk4", sim.Span{End: 1}, 0.01, nil, "nonexistent")
	if _, err := bad(context.Background(), p); err == nil {
		t.Error("expected error for missing metric")
	}
}
