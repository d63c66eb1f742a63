// Package physics models a linear single-degree-of-freedom mass-spring-damper.
//
// [Params] holds the physical constants and initial conditions and derives
// the natural frequency, damping ratio, damped frequency, period and
// [Regime]. [Force] generators describe optional external forcing:
//
//   - [NoForce]: free vibration
//   - [StepForce]: constant force switched on at a start time
//   - [HarmonicForce]: sinusoidal drive
//   - [ImpulseForce]: Gaussian pulse
//
// [Oscillator] combines the two into a [dynamo.System]:
//
//	osc := physics.NewOscillator(params, physics.NewHarmonicForce())
//	dx := osc.Derive(osc.InitialState(), 0)
//
// [Oscillator] also implements [dynamo.Hamiltonian]; for zero damping and no
// force its energy is conserved.
package physics
