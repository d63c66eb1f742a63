// Package analysis validates and characterises oscillator trajectories.
//
//   - [Analytical]: closed-form free response for all four damping regimes
//   - [Validate]: numerical vs analytical error metrics
//   - [AnalyzeFrequency]: FFT of the position series and dominant frequency
//   - [AnalyzeResonance]: frequency response |H(ω)|, Q and bandwidth
//   - [LogDecrement]: damping measured from successive peaks
//   - [DampingSweep]: concurrent runs over a range of damping coefficients
//   - [PhasePortrait], [PoincareSection]: (x, v) plots
//   - [Conclusions]: markdown summary of the above
//
// # Validation
//
// The closed-form solutions assume no external force:
//
//	traj, _ := sim.Integrate(ctx, params, sim.Span{End: 10}, 0.001, nil)
//	res, err := analysis.Validate(traj)
//	if err == nil && res.IsAccurate {
//	    // RMS error below 1% of the analytical peak
//	}
package analysis
