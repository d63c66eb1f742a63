package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/physics"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Preset != "spring_mass" {
		t.Errorf("expected preset spring_mass, got %s", cfg.Preset)
	}
	if cfg.Dt != 0.001 {
		t.Errorf("dt = %v, want 0.001", cfg.Dt)
	}
	if cfg.Duration != 10 {
		t.Errorf("duration = %v, want 10", cfg.Duration)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestGetPreset(t *testing.T) {
	tests := []struct {
		id              string
		m, k, c, x0, v0 float64
		regime          physics.Regime
	}{
		{"car_suspension", 400, 40000, 7200, 0.05, 0, physics.CriticallyDamped},
		{"trampoline", 15, 5000, 100, 0.3, -2, physics.Underdamped},
		{"lab_spring", 0.5, 20, 0.1, 0.1, 0, physics.Underdamped},
		{"spring_mass", 1, 100, 2, 0.2, 0, physics.Underdamped},
		{"door_closer", 5, 50, 50, 1, 0, physics.Overdamped},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			p, err := GetPreset(tt.id)
			if err != nil {
				t.Fatalf("GetPreset: %v", err)
			}
			if p.Mass != tt.m || p.Stiffness != tt.k || p.Damping != tt.c || p.X0 != tt.x0 || p.V0 != tt.v0 {
				t.Errorf("preset values = %+v", p)
			}
			if p.Regime() != tt.regime {
				t.Errorf("regime = %v, want %v", p.Regime(), tt.regime)
			}
			if p.Label == "" || p.Description == "" {
				t.Error("preset missing label or description")
			}
		})
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	_, err := GetPreset("nonexistent")
	if !errors.Is(err, ErrUnknownPreset) {
		t.Errorf("expected ErrUnknownPreset, got %v", err)
	}
}

func TestGetPreset_ReturnsCopy(t *testing.T) {
	p, _ := GetPreset("spring_mass")
	p.Mass = 99
	again, _ := GetPreset("spring_mass")
	if again.Mass != 1 {
		t.Error("preset table was mutated through a returned value")
	}
}

func TestListPresets(t *testing.T) {
	ids := ListPresets()
	want := []string{"car_suspension", "door_closer", "lab_spring", "spring_mass", "trampoline"}
	if len(ids) != len(want) {
		t.Fatalf("got %v", ids)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("ids[%d] = %s, want %s", i, ids[i], want[i])
		}
	}

	ids[0] = "tampered"
	if _, err := GetPreset(ListPresets()[0]); err != nil {
		t.Errorf("ListPresets shares its slice with callers: %v", err)
	}
}

func TestSystemParams_Overrides(t *testing.T) {
	cfg := DefaultConfig()
	cfg.System = &SystemConfig{Damping: Float(0), X0: Float(1)}

	p, err := cfg.SystemParams()
	if err != nil {
		t.Fatalf("SystemParams: %v", err)
	}
	if p.Mass != 1 || p.Stiffness != 100 || p.Damping != 0 || p.X0 != 1 {
		t.Errorf("overrides not applied: %+v", p)
	}
	if p.Regime() != physics.Undamped {
		t.Errorf("regime = %v", p.Regime())
	}
}

func TestSystemParams_Custom(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Preset = ""
	if _, err := cfg.SystemParams(); !errors.Is(err, ErrNoSystem) {
		t.Errorf("expected ErrNoSystem, got %v", err)
	}

	cfg.System = &SystemConfig{Mass: Float(2), Stiffness: Float(8)}
	p, err := cfg.SystemParams()
	if err != nil {
		t.Fatalf("SystemParams: %v", err)
	}
	if p.Label != "custom" || p.NaturalFrequency() != 2 {
		t.Errorf("custom params = %+v", p)
	}

	cfg.System.Mass = Float(-1)
	if _, err := cfg.SystemParams(); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("expected ErrParameterBounds, got %v", err)
	}
}

func TestBuildForce(t *testing.T) {
	tests := []struct {
		name string
		fc   ForceConfig
		kind string
		at   float64
		want float64
	}{
		{"none", ForceConfig{}, "none", 5, 0},
		{"step default", ForceConfig{Type: "step"}, "step", 1, 10},
		{"step custom", ForceConfig{Type: "step", Amplitude: Float(3), Start: Float(0)}, "step", 0, 3},
		{"harmonic", ForceConfig{Type: "harmonic", Omega: Float(0)}, "harmonic", 1, 0},
		{"impulse", ForceConfig{Type: "impulse"}, "impulse", 1, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Force = tt.fc
			f, err := cfg.BuildForce()
			if err != nil {
				t.Fatalf("BuildForce: %v", err)
			}
			if f.Kind() != tt.kind {
				t.Errorf("Kind() = %s, want %s", f.Kind(), tt.kind)
			}
			if got := f.At(tt.at); got != tt.want {
				t.Errorf("At(%v) = %v, want %v", tt.at, got, tt.want)
			}
		})
	}
}

func TestBuildForce_Errors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Force = ForceConfig{Type: "sawtooth"}
	if _, err := cfg.BuildForce(); !errors.Is(err, ErrUnknownForce) {
		t.Errorf("expected ErrUnknownForce, got %v", err)
	}

	cfg.Force = ForceConfig{Type: "impulse", Width: Float(0)}
	if _, err := cfg.BuildForce(); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("expected ErrParameterBounds, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"short duration", func(c *Config) { c.Duration = 0.5 }},
		{"long duration", func(c *Config) { c.Duration = 31 }},
		{"zero dt", func(c *Config) { c.Dt = 0 }},
		{"dt below minimum", func(c *Config) { c.Duration = 30; c.Dt = 1e-12 }},
		{"dt too large", func(c *Config) { c.Dt = 6 }},
		{"negative tolerance", func(c *Config) { c.Tolerance = -1 }},
		{"one resonance point", func(c *Config) { c.Resonance.Points = 1 }},
		{"unknown preset", func(c *Config) { c.Preset = "rocket" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestSpanAndSweep(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Start = 2
	span := cfg.Span()
	if span.Start != 2 || span.End != 12 {
		t.Errorf("Span() = %+v", span)
	}
	if cfg.SweepRange() != nil {
		t.Error("expected default sweep")
	}
	cfg.Resonance.OmegaMax = 50
	if r := cfg.SweepRange(); r == nil || r.Max != 50 {
		t.Errorf("SweepRange() = %+v", r)
	}
}

func TestLoadSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sim.yaml")

	yamlText := `preset: door_closer
integrator: trapezoid
duration: 5
force:
  type: harmonic
  omega: 3
server:
  timeout: 5s
`
	if err := os.WriteFile(path, []byte(yamlText), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Preset != "door_closer" || cfg.Integrator != "trapezoid" || cfg.Duration != 5 {
		t.Errorf("loaded %+v", cfg)
	}
	if cfg.Dt != DefaultDt {
		t.Errorf("unset dt should keep default, got %v", cfg.Dt)
	}
	if cfg.Server.Timeout != 5*time.Second || cfg.Server.Addr != DefaultAddr {
		t.Errorf("server = %+v", cfg.Server)
	}
	f, err := cfg.BuildForce()
	if err != nil {
		t.Fatal(err)
	}
	if hf, ok := f.(physics.HarmonicForce); !ok || hf.Omega != 3 || hf.Amplitude != physics.DefaultHarmonicAmplitude {
		t.Errorf("force = %#v", f)
	}

	out := filepath.Join(dir, "out.yaml")
	if err := Save(out, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	back, err := Load(out)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if back.Preset != cfg.Preset || *back.Force.Omega != 3 || back.Server.Timeout != cfg.Server.Timeout {
		t.Errorf("round trip mismatch: %+v", back)
	}
}

func TestLoad_Missing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
