package physics

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/san-kum/springsim/internal/dynamo"
)

// CriticalBand is the relative half-width of the damping-ratio band around
// 1 that is classified as critically damped.
const CriticalBand = 0.1

// criticalAbs is the absolute slack added to CriticalBand.
const criticalAbs = 1e-8

// periodCutoff is the damping ratio at or above which the system no longer
// has a meaningful oscillation period.
const periodCutoff = 0.9

// Params describes one linear mass-spring-damper. It is a value type and is
// never mutated after construction.
type Params struct {
	Mass        float64 `json:"mass" yaml:"mass"`
	Stiffness   float64 `json:"stiffness" yaml:"stiffness"`
	Damping     float64 `json:"damping" yaml:"damping"`
	X0          float64 `json:"x0" yaml:"x0"`
	V0          float64 `json:"v0" yaml:"v0"`
	Label       string  `json:"label,omitempty" yaml:"label,omitempty"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
}

func (p Params) Validate() error {
	checks := []struct {
		name  string
		value float64
	}{
		{"mass", p.Mass},
		{"stiffness", p.Stiffness},
		{"damping", p.Damping},
		{"x0", p.X0},
		{"v0", p.V0},
	}
	for _, c := range checks {
		if math.IsNaN(c.value) || math.IsInf(c.value, 0) {
			return dynamo.Bounds(c.name, c.value, "finite")
		}
	}
	if p.Mass <= 0 {
		return dynamo.Bounds("mass", p.Mass, "> 0")
	}
	if p.Stiffness <= 0 {
		return dynamo.Bounds("stiffness", p.Stiffness, "> 0")
	}
	if p.Damping < 0 {
		return dynamo.Bounds("damping", p.Damping, ">= 0")
	}
	return nil
}

// NaturalFrequency returns ωn = sqrt(k/m) in rad/s.
func (p Params) NaturalFrequency() float64 {
	return math.Sqrt(p.Stiffness / p.Mass)
}

// DampingRatio returns ζ = c / (2 sqrt(k m)).
func (p Params) DampingRatio() float64 {
	return p.Damping / (2 * math.Sqrt(p.Stiffness*p.Mass))
}

// DampedFrequency returns ωd = ωn sqrt(1-ζ²), or 0 when ζ >= 1.
func (p Params) DampedFrequency() float64 {
	zeta := p.DampingRatio()
	if zeta >= 1 {
		return 0
	}
	return p.NaturalFrequency() * math.Sqrt(1-zeta*zeta)
}

// Period returns 2π/ωd, or +Inf for ζ >= 0.9.
func (p Params) Period() Quantity {
	if p.DampingRatio() >= periodCutoff {
		return Quantity(math.Inf(1))
	}
	return Quantity(2 * math.Pi / p.DampedFrequency())
}

// Oscillates reports whether the system has a theoretical oscillation
// frequency worth comparing against.
func (p Params) Oscillates() bool {
	return p.DampingRatio() < periodCutoff
}

func (p Params) Regime() Regime {
	if p.Damping == 0 {
		return Undamped
	}
	zeta := p.DampingRatio()
	if math.Abs(zeta-1) <= criticalAbs+CriticalBand {
		return CriticallyDamped
	}
	if zeta < 1 {
		return Underdamped
	}
	return Overdamped
}

func (p Params) InitialState() dynamo.State {
	return dynamo.State{p.X0, p.V0}
}

// WithDamping returns a copy of p with a different damping coefficient.
func (p Params) WithDamping(c float64) Params {
	p.Damping = c
	return p
}

func (p Params) String() string {
	return fmt.Sprintf("m=%g kg, k=%g N/m, c=%g Ns/m, x0=%g m, v0=%g m/s",
		p.Mass, p.Stiffness, p.Damping, p.X0, p.V0)
}

type Regime int

const (
	Undamped Regime = iota
	Underdamped
	CriticallyDamped
	Overdamped
)

var regimeNames = [...]string{
	Undamped:         "undamped",
	Underdamped:      "underdamped",
	CriticallyDamped: "critically_damped",
	Overdamped:       "overdamped",
}

func (r Regime) String() string {
	if r < 0 || int(r) >= len(regimeNames) {
		return "Regime(" + strconv.Itoa(int(r)) + ")"
	}
	return regimeNames[r]
}

func (r Regime) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Regime) UnmarshalText(text []byte) error {
	for i, name := range regimeNames {
		if name == string(text) {
			*r = Regime(i)
			return nil
		}
	}
	return fmt.Errorf("physics: unknown regime %q", text)
}

// Title returns the human-readable regime name.
func (r Regime) Title() string {
	switch r {
	case Undamped:
		return "Undamped"
	case Underdamped:
		return "Underdamped"
	case CriticallyDamped:
		return "Critically damped"
	case Overdamped:
		return "Overdamped"
	}
	return r.String()
}

// Quantity is a float64 that survives JSON encoding when infinite or NaN.
// Non-finite values are written as the strings "+Inf", "-Inf" and "NaN".
type Quantity float64

func (q Quantity) Float() float64 { return float64(q) }

func (q Quantity) IsInf() bool { return math.IsInf(float64(q), 0) }

func (q Quantity) MarshalJSON() ([]byte, error) {
	f := float64(q)
	switch {
	case math.IsInf(f, 1):
		return []byte(`"+Inf"`), nil
	case math.IsInf(f, -1):
		return []byte(`"-Inf"`), nil
	case math.IsNaN(f):
		return []byte(`"NaN"`), nil
	}
	return json.Marshal(f)
}

func (q *Quantity) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("physics: invalid quantity %q: %w", s, err)
		}
		*q = Quantity(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*q = Quantity(f)
	return nil
}

func (q Quantity) String() string {
	f := float64(q)
	if math.IsInf(f, 1) {
		return "∞"
	}
	return strconv.FormatFloat(f, 'g', 6, 64)
}
