package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/springsim/internal/analysis"
	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/physics"
	"github.com/san-kum/springsim/internal/sim"
)

const (
	DefaultPreset     = "spring_mass"
	DefaultIntegrator = "rk45"
	DefaultDt         = dynamo.DefaultDt
	DefaultDuration   = dynamo.DefaultDuration
	DefaultTolerance  = dynamo.DefaultTolerance

	MinDuration = 1.0
	MaxDuration = 30.0
	MinDt       = 1e-5

	DefaultAddr    = ":8080"
	DefaultRate    = 5.0
	DefaultBurst   = 10
	DefaultTimeout = 30 * time.Second
)

var (
	ErrUnknownPreset = errors.New("config: unknown preset")
	ErrUnknownForce  = errors.New("config: unknown force type")
	ErrNoSystem      = errors.New("config: neither preset nor system given")
)

type Config struct {
	Preset     string          `yaml:"preset,omitempty" json:"preset,omitempty"`
	System     *SystemConfig   `yaml:"system,omitempty" json:"system,omitempty"`
	Integrator string          `yaml:"integrator" json:"integrator"`
	Dt         float64         `yaml:"dt" json:"dt"`
	Duration   float64         `yaml:"duration" json:"duration"`
	Start      float64         `yaml:"start" json:"start"`
	Tolerance  float64         `yaml:"tolerance" json:"tolerance"`
	Force      ForceConfig     `yaml:"force" json:"force"`
	Resonance  ResonanceConfig `yaml:"resonance" json:"resonance"`
	Server     ServerConfig    `yaml:"server" json:"-"`
}

// SystemConfig overrides preset values field by field; nil fields keep
// the preset's value.
type SystemConfig struct {
	Mass      *float64 `yaml:"mass,omitempty" json:"mass,omitempty"`
	Stiffness *float64 `yaml:"stiffness,omitempty" json:"stiffness,omitempty"`
	Damping   *float64 `yaml:"damping,omitempty" json:"damping,omitempty"`
	X0        *float64 `yaml:"x0,omitempty" json:"x0,omitempty"`
	V0        *float64 `yaml:"v0,omitempty" json:"v0,omitempty"`
	Label     string   `yaml:"label,omitempty" json:"label,omitempty"`
}

// ForceConfig selects a force generator. Unset parameters take the
// generator's defaults.
type ForceConfig struct {
	Type      string   `yaml:"type" json:"type"`
	Amplitude *float64 `yaml:"amplitude,omitempty" json:"amplitude,omitempty"`
	Start     *float64 `yaml:"start,omitempty" json:"start,omitempty"`
	Omega     *float64 `yaml:"omega,omitempty" json:"omega,omitempty"`
	Center    *float64 `yaml:"center,omitempty" json:"center,omitempty"`
	Width     *float64 `yaml:"width,omitempty" json:"width,omitempty"`
}

// ResonanceConfig leaves the sweep at [0.1ωn, 3ωn] when both bounds are 0.
type ResonanceConfig struct {
	Points   int     `yaml:"points" json:"points"`
	OmegaMin float64 `yaml:"omega_min" json:"omega_min"`
	OmegaMax float64 `yaml:"omega_max" json:"omega_max"`
}

type ServerConfig struct {
	Addr    string        `yaml:"addr"`
	Rate    float64       `yaml:"rate"`
	Burst   int           `yaml:"burst"`
	Timeout time.Duration `yaml:"timeout"`
}

func DefaultConfig() *Config {
	return &Config{
		Preset:     DefaultPreset,
		Integrator: DefaultIntegrator,
		Dt:         DefaultDt,
		Duration:   DefaultDuration,
		Tolerance:  DefaultTolerance,
		Force:      ForceConfig{Type: "none"},
		Resonance:  ResonanceConfig{Points: analysis.DefaultResonancePoints},
		Server: ServerConfig{
			Addr:    DefaultAddr,
			Rate:    DefaultRate,
			Burst:   DefaultBurst,
			Timeout: DefaultTimeout,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if _, err := c.SystemParams(); err != nil {
		return err
	}
	if _, err := c.BuildForce(); err != nil {
		return err
	}
	if math.IsNaN(c.Duration) || c.Duration < MinDuration || c.Duration > MaxDuration {
		return dynamo.Bounds("duration", c.Duration, fmt.Sprintf("in [%g, %g]", MinDuration, MaxDuration))
	}
	if !(c.Dt >= MinDt) || c.Dt > c.Duration/2 {
		return dynamo.Bounds("dt", c.Dt, fmt.Sprintf(">= %g and <= duration/2", MinDt))
	}
	if math.IsNaN(c.Tolerance) || c.Tolerance < 0 {
		return dynamo.Bounds("tolerance", c.Tolerance, ">= 0")
	}
	if c.Resonance.Points < 0 || c.Resonance.Points == 1 {
		return dynamo.Bounds("resonance.points", float64(c.Resonance.Points), "0 or >= 2")
	}
	return nil
}

// SystemParams resolves the preset and applies explicit overrides.
func (c *Config) SystemParams() (physics.Params, error) {
	var p physics.Params
	switch {
	case c.Preset != "":
		var err error
		if p, err = GetPreset(c.Preset); err != nil {
			return p, err
		}
	case c.System == nil:
		return p, ErrNoSystem
	}

	if s := c.System; s != nil {
		set := func(dst *float64, src *float64) {
			if src != nil {
				*dst = *src
			}
		}
		set(&p.Mass, s.Mass)
		set(&p.Stiffness, s.Stiffness)
		set(&p.Damping, s.Damping)
		set(&p.X0, s.X0)
		set(&p.V0, s.V0)
		if s.Label != "" {
			p.Label = s.Label
		}
	}
	if p.Label == "" {
		p.Label = "custom"
	}
	return p, p.Validate()
}

func (c *Config) BuildForce() (physics.Force, error) {
	fc := c.Force
	set := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
		}
	}

	var f physics.Force
	switch fc.Type {
	case "", "none":
		f = physics.NoForce{}
	case "step":
		sf := physics.NewStepForce()
		set(&sf.Amplitude, fc.Amplitude)
		set(&sf.Start, fc.Start)
		f = sf
	case "harmonic":
		hf := physics.NewHarmonicForce()
		set(&hf.Amplitude, fc.Amplitude)
		set(&hf.Omega, fc.Omega)
		f = hf
	case "impulse":
		imp := physics.NewImpulseForce()
		set(&imp.Amplitude, fc.Amplitude)
		set(&imp.Center, fc.Center)
		set(&imp.Width, fc.Width)
		f = imp
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownForce, fc.Type)
	}
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("%s force: %w", f.Kind(), err)
	}
	return f, nil
}

// Span is [Start, Start+Duration).
func (c *Config) Span() sim.Span {
	return sim.Span{Start: c.Start, End: c.Start + c.Duration}
}

// SweepRange returns nil when the default resonance range applies.
func (c *Config) SweepRange() *analysis.SweepRange {
	if c.Resonance.OmegaMin == 0 && c.Resonance.OmegaMax == 0 {
		return nil
	}
	return &analysis.SweepRange{Min: c.Resonance.OmegaMin, Max: c.Resonance.OmegaMax}
}

// Float returns a pointer to v, for building SystemConfig and ForceConfig
// literals.
func Float(v float64) *float64 { return &v }
