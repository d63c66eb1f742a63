package experiment

import (
	"context"
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/san-kum/springsim/internal/config"
	"github.com/san-kum/springsim/internal/physics"
	"github.com/san-kum/springsim/internal/sim"
)

func TestRegistry_List(t *testing.T) {
	r := NewRegistry()
	got := strings.Join(r.ListIntegrators(), ",")
	if got != "euler,leapfrog,rk4,rk45,trapezoid,verlet" {
		t.Errorf("ListIntegrators() = %s", got)
	}
	for _, name := range r.ListIntegrators() {
		if r.Describe(name) == "" {
			t.Errorf("%s has no description", name)
		}
		a, _ := r.GetIntegrator(name)
		b, _ := r.GetIntegrator(name)
		// Pointers to zero-size steppers may compare equal; they hold no state.
		if reflect.TypeOf(a).Elem().Size() == 0 {
			continue
		}
		if a == b {
			t.Errorf("%s: registry returned a shared instance", name)
		}
	}
}

func TestRegistry_Unknown(t *testing.T) {
	if _, err := NewRegistry().GetIntegrator("magic"); !errors.Is(err, ErrUnknownIntegrator) {
		t.Errorf("expected ErrUnknownIntegrator, got %v", err)
	}
}

func TestRun_Unforced(t *testing.T) {
	cfg := config.DefaultConfig()
	report, err := New(cfg).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if report.Trajectory.Len() != 10000 {
		t.Errorf("samples = %d, want 10000", report.Trajectory.Len())
	}
	if report.Validation == nil || !report.Validation.IsAccurate {
		t.Fatalf("validation = %+v", report.Validation)
	}
	if report.Validation.Correlation < 0.999 {
		t.Errorf("correlation = %v", report.Validation.Correlation)
	}
	if math.Abs(report.Spectrum.DominantFrequency-1.6) > 1e-9 {
		t.Errorf("dominant frequency = %v, want 1.6", report.Spectrum.DominantFrequency)
	}
	if !report.Resonance.HasPeak() {
		t.Error("zeta=0.1 should have a resonance peak")
	}
	if report.Decrement == nil || math.Abs(report.Decrement.Zeta-0.1) > 1e-3 {
		t.Errorf("decrement = %+v", report.Decrement)
	}
	if !strings.Contains(report.Conclusions, "Underdamped") {
		t.Error("conclusions do not name the regime")
	}
}

func TestRun_ForcedSkipsValidation(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Force = config.ForceConfig{Type: "harmonic"}
	cfg.Integrator = "rk4"
	cfg.Duration = 2

	report, err := New(cfg).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Validation != nil || report.Decrement != nil {
		t.Error("forced run must not be validated")
	}
	if report.Trajectory.ForceKind != "harmonic" || report.Trajectory.Integrator != "rk4" {
		t.Errorf("force=%s integrator=%s", report.Trajectory.ForceKind, report.Trajectory.Integrator)
	}
	if report.Spectrum == nil || report.Resonance == nil || report.Conclusions == "" {
		t.Error("spectrum, resonance and conclusions are always produced")
	}
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		target error
	}{
		{"unknown integrator", func(c *config.Config) { c.Integrator = "magic" }, ErrUnknownIntegrator},
		{"unknown preset", func(c *config.Config) { c.Preset = "rocket" }, config.ErrUnknownPreset},
		{"unknown force", func(c *config.Config) { c.Force.Type = "sawtooth" }, config.ErrUnknownForce},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			tt.mutate(cfg)
			if _, err := New(cfg).Run(context.Background()); !errors.Is(err, tt.target) {
				t.Errorf("got %v, want %v", err, tt.target)
			}
		})
	}
}

func TestRun_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New(config.DefaultConfig()).Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestCompare(t *testing.T) {
	p := physics.Params{Mass: 1, Stiffness: 100, Damping: 2, X0: 0.2}
	rows, err := NewRegistry().Compare(context.Background(), p, sim.Span{Start: 0, End: 2}, 0.001, []string{"euler", "rk4", "trapezoid"})
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d", len(rows))
	}
	byName := map[string]Comparison{}
	for _, r := range rows {
		if r.Err != "" {
			t.Errorf("%s failed: %s", r.Integrator, r.Err)
		}
		byName[r.Integrator] = r
	}
	if !(byName["rk4"].RMSError < byName["trapezoid"].RMSError && byName["trapezoid"].RMSError < byName["euler"].RMSError) {
		t.Errorf("unexpected accuracy ordering: %+v", rows)
	}

	if _, err := NewRegistry().Compare(context.Background(), p, sim.Span{Start: 0, End: 1}, 0.01, []string{"magic"}); !errors.Is(err, ErrUnknownIntegrator) {
		t.Errorf("expected ErrUnknownIntegrator, got %v", err)
	}
}
