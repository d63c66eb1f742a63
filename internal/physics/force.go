package physics

import (
	"math"

	"github.com/san-kum/springsim/internal/dynamo"
)

const (
	DefaultStepAmplitude     = 10.0
	DefaultStepStart         = 1.0
	DefaultHarmonicAmplitude = 10.0
	DefaultHarmonicOmega     = 5.0
	DefaultImpulseAmplitude  = 100.0
	DefaultImpulseCenter     = 1.0
	DefaultImpulseWidth      = 0.1
)

// Force is an external force as a pure function of time. Implementations
// must tolerate out-of-order and concurrent calls.
type Force interface {
	At(t float64) float64
	Kind() string
	Validate() error
}

type NoForce struct{}

func (NoForce) At(float64) float64 { return 0 }
func (NoForce) Kind() string       { return "none" }
func (NoForce) Validate() error    { return nil }

// StepForce applies Amplitude from Start onwards.
type StepForce struct {
	Amplitude float64 `json:"amplitude" yaml:"amplitude"`
	Start     float64 `json:"start" yaml:"start"`
}

func NewStepForce() StepForce {
	return StepForce{Amplitude: DefaultStepAmplitude, Start: DefaultStepStart}
}

func (f StepForce) At(t float64) float64 {
	if t >= f.Start {
		return f.Amplitude
	}
	return 0
}

func (StepForce) Kind() string { return "step" }

func (f StepForce) Validate() error {
	if err := finite("amplitude", f.Amplitude); err != nil {
		return err
	}
	return finite("start", f.Start)
}

// HarmonicForce is Amplitude·sin(Omega·t).
type HarmonicForce struct {
	Amplitude float64 `json:"amplitude" yaml:"amplitude"`
	Omega     float64 `json:"omega" yaml:"omega"`
}

func NewHarmonicForce() HarmonicForce {
	return HarmonicForce{Amplitude: DefaultHarmonicAmplitude, Omega: DefaultHarmonicOmega}
}

func (f HarmonicForce) At(t float64) float64 {
	return f.Amplitude * math.Sin(f.Omega*t)
}

func (HarmonicForce) Kind() string { return "harmonic" }

func (f HarmonicForce) Validate() error {
	if err := finite("amplitude", f.Amplitude); err != nil {
		return err
	}
	return finite("omega", f.Omega)
}

// ImpulseForce is a Gaussian pulse Amplitude·exp(-((t-Center)/Width)²).
type ImpulseForce struct {
	Amplitude float64 `json:"amplitude" yaml:"amplitude"`
	Center    float64 `json:"center" yaml:"center"`
	Width     float64 `json:"width" yaml:"width"`
}

func NewImpulseForce() ImpulseForce {
	return ImpulseForce{
		Amplitude: DefaultImpulseAmplitude,
		Center:    DefaultImpulseCenter,
		Width:     DefaultImpulseWidth,
	}
}

func (f ImpulseForce) At(t float64) float64 {
	u := (t - f.Center) / f.Width
	return f.Amplitude * math.Exp(-u*u)
}

func (ImpulseForce) Kind() string { return "impulse" }

func (f ImpulseForce) Validate() error {
	if err := finite("amplitude", f.Amplitude); err != nil {
		return err
	}
	if err := finite("center", f.Center); err != nil {
		return err
	}
	if !(f.Width > 0) || math.IsInf(f.Width, 0) {
		return dynamo.Bounds("width", f.Width, "> 0")
	}
	return nil
}

// IsForced reports whether f is a non-trivial external force.
func IsForced(f Force) bool {
	if f == nil {
		return false
	}
	_, none := f.(NoForce)
	return !none
}

func finite(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return dynamo.Bounds(name, v, "finite")
	}
	return nil
}
