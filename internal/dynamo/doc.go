// Package dynamo provides core simulation primitives for the oscillator engine.
//
// The package defines the fundamental interfaces and types shared by the
// steppers, the simulation driver and the analysis code:
//
//   - [State]: vector representing system state ([position, velocity])
//   - [System]: interface for ODE systems (dX/dt = f(X, t))
//   - [Integrator]: fixed-step numerical integrator
//   - [AdaptiveIntegrator]: stepper with embedded error control
//   - [Metric]: observer that reduces a run to a scalar
//   - [Config]: output grid and error-control settings
//
// # Example
//
//	osc := physics.NewOscillator(params, physics.NoForce{})
//	s := sim.New(osc, integrators.NewRK45())
//	stats, err := s.RunWithCallback(ctx, osc.InitialState(), dynamo.DefaultConfig(),
//		func(i int, t float64, x dynamo.State) bool { return true })
//
// # Thread Safety
//
// Integrators keep scratch buffers and are NOT safe for concurrent use.
// Independent runs should each construct their own integrator, as
// [ParallelFor] callers in this module do.
package dynamo
