package analysis

import (
	"math"

	"github.com/san-kum/springsim/internal/physics"
)

// Analytical evaluates the closed-form free response of p at each time in
// t. The branch follows p.Regime(), so systems inside the critical band
// use the critically damped solution. External forcing is not modelled.
func Analytical(p physics.Params, t []float64) (x, v []float64) {
	x = make([]float64, len(t))
	v = make([]float64, len(t))
	sol := newFreeResponse(p)
	for i, ti := range t {
		x[i], v[i] = sol(ti)
	}
	return x, v
}

// AnalyticalAt is Analytical for a single instant.
func AnalyticalAt(p physics.Params, t float64) (x, v float64) {
	return newFreeResponse(p)(t)
}

func newFreeResponse(p physics.Params) func(t float64) (float64, float64) {
	wn := p.NaturalFrequency()
	zeta := p.DampingRatio()
	x0, v0 := p.X0, p.V0

	switch p.Regime() {
	case physics.Undamped:
		return func(t float64) (float64, float64) {
			s, c := math.Sincos(wn * t)
			return x0*c + v0/wn*s, -x0*wn*s + v0*c
		}

	case physics.Underdamped:
		wd := wn * math.Sqrt(1-zeta*zeta)
		alpha := zeta * wn
		a := x0
		b := (v0 + alpha*x0) / wd
		return func(t float64) (float64, float64) {
			e := math.Exp(-alpha * t)
			s, c := math.Sincos(wd * t)
			x := e * (a*c + b*s)
			v := e * ((b*wd-alpha*a)*c - (a*wd+alpha*b)*s)
			return x, v
		}

	case physics.CriticallyDamped:
		a := x0
		b := v0 + wn*x0
		return func(t float64) (float64, float64) {
			e := math.Exp(-wn * t)
			return e * (a + b*t), e * (b - wn*(a+b*t))
		}

	default:
		root := math.Sqrt(zeta*zeta - 1)
		r1 := -wn * (zeta - root)
		r2 := -wn * (zeta + root)
		b := (v0 - r1*x0) / (r2 - r1)
		a := x0 - b
		return func(t float64) (float64, float64) {
			e1, e2 := math.Exp(r1*t), math.Exp(r2*t)
			return a*e1 + b*e2, a*r1*e1 + b*r2*e2
		}
	}
}

// Envelope returns the ±A₀·e^{-ζωn t} decay envelope of an underdamped
// or undamped system. ok is false when the system does not oscillate.
func Envelope(p physics.Params, t []float64) (upper, lower []float64, ok bool) {
	r := p.Regime()
	if r != physics.Underdamped && r != physics.Undamped {
		return nil, nil, false
	}
	wn := p.NaturalFrequency()
	zeta := p.DampingRatio()
	wd := p.DampedFrequency()
	b := (p.V0 + zeta*wn*p.X0) / wd
	amp := math.Hypot(p.X0, b)

	upper = make([]float64, len(t))
	lower = make([]float64, len(t))
	for i, ti := range t {
		e := amp * math.Exp(-zeta*wn*ti)
		upper[i] = e
		lower[i] = -e
	}
	return upper, lower, true
}
