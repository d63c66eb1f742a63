package physics

import "github.com/san-kum/springsim/internal/dynamo"

// Oscillator is the first-order form of m·x'' + c·x' + k·x = F(t) with
// state [x, v].
type Oscillator struct {
	Params Params
	Force  Force
}

func NewOscillator(p Params, f Force) *Oscillator {
	if f == nil {
		f = NoForce{}
	}
	return &Oscillator{Params: p, Force: f}
}

func (o *Oscillator) StateDim() int { return 2 }

func (o *Oscillator) Derive(x dynamo.State, t float64) dynamo.State {
	return dynamo.State{x[1], o.Acceleration(x[0], x[1], t)}
}

// NetForce returns F(t) - k·x - c·v.
func (o *Oscillator) NetForce(x, v, t float64) float64 {
	p := o.Params
	return o.Force.At(t) - p.Stiffness*x - p.Damping*v
}

func (o *Oscillator) Acceleration(x, v, t float64) float64 {
	return o.NetForce(x, v, t) / o.Params.Mass
}

// Energy returns the mechanical energy ½mv² + ½kx².
func (o *Oscillator) Energy(x dynamo.State) float64 {
	p := o.Params
	return 0.5*p.Mass*x[1]*x[1] + 0.5*p.Stiffness*x[0]*x[0]
}

func (o *Oscillator) InitialState() dynamo.State {
	return o.Params.InitialState()
}
