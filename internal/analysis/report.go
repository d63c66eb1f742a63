package analysis

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/springsim/internal/physics"
	"github.com/san-kum/springsim/internal/sim"
)

const (
	conservationLossPct = 1.0
	moderateLossPct     = 50.0
	consistentFreqPct   = 5.0
)

// Conclusions renders a markdown summary of a run. validation and
// spectrum may be nil; the corresponding sections are then omitted.
func Conclusions(traj *sim.Trajectory, validation *ValidationResult, spectrum *SpectrumResult) string {
	if traj == nil || traj.Len() == 0 {
		return ""
	}
	p := traj.Params
	zeta := p.DampingRatio()
	wn := p.NaturalFrequency()

	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format, args...)
		b.WriteByte('\n')
	}

	line("## Analysis Conclusions")
	line("")
	line("### 1. System Characteristics")
	line("- **System type**: %s", p.Regime().Title())
	line("- **Natural frequency (ωₙ)**: %.4f rad/s", wn)
	line("- **Damping ratio (ζ)**: %.4f", zeta)
	if zeta < 1 {
		line("- **Damped frequency (ωd)**: %.4f rad/s", p.DampedFrequency())
		if per := p.Period(); per.IsInf() {
			line("- **Oscillation period**: ∞ (near-critical damping)")
		} else {
			line("- **Oscillation period**: %.4f s", per.Float())
		}
	}
	if traj.Forced() {
		line("- **External force**: %s", traj.ForceKind)
	}

	line("")
	line("### 2. Dynamic Behaviour")
	switch p.Regime() {
	case physics.Undamped:
		peak := 0.0
		for _, x := range traj.X {
			peak = math.Max(peak, math.Abs(x))
		}
		line("- The system oscillates with constant amplitude **%.4f m**", peak)
		line("- No energy is lost (energy is conserved)")
	case physics.Underdamped:
		tau := 1 / (zeta * wn)
		line("- Initial amplitude: **%.4f m**", math.Abs(p.X0))
		line("- Decay time constant (τ): **%.4f s**", tau)
		line("- The amplitude falls to ~37%% of its initial value after **%.2f s**", tau)
		if !traj.Forced() {
			if d, err := LogDecrement(traj); err == nil {
				line("- Logarithmic decrement δ = %.4f gives a measured ζ ≈ %.4f", d.Delta, d.Zeta)
			}
		}
	case physics.CriticallyDamped:
		line("- The system returns to equilibrium **as fast as possible without oscillating**")
		line("- This is the optimal condition for control systems")
	default:
		line("- The system returns to equilibrium **slowly and without oscillating**")
		line("- Suited to applications that need smooth motion")
	}

	line("")
	line("### 3. Energy Analysis")
	eInitial := traj.ETotal[0]
	eFinal := traj.ETotal[traj.Len()-1]
	loss := 0.0
	if eInitial != 0 {
		loss = (eInitial - eFinal) / eInitial * 100
	}
	line("- Initial energy: **%.6f J**", eInitial)
	line("- Final energy: **%.6f J**", eFinal)
	line("- Energy dissipated: **%.2f%%**", loss)
	switch {
	case loss < conservationLossPct:
		line("- The system is close to **energy conservation** (losses < 1%%)")
	case loss < moderateLossPct:
		line("- **Moderate energy dissipation** occurs due to damping")
	default:
		line("- **Significant energy dissipation** occurs (heavily damped system)")
	}

	if validation != nil {
		line("")
		line("### 4. Numerical Validation")
		line("- Max error vs analytical: **%.2e m**", validation.MaxError)
		line("- RMS error: **%.2e m**", validation.RMSError)
		line("- Correlation: **%.6f**", validation.Correlation)
		if validation.IsAccurate {
			line("- The numerical solution is **validated as accurate**")
		} else {
			line("- Numerical error exceeds the tolerance; consider a smaller step")
		}
	}

	if spectrum != nil && zeta < 1 {
		line("")
		line("### 5. Spectral Analysis")
		line("- Dominant frequency (FFT): **%.4f Hz**", spectrum.DominantFrequency)
		line("- Theoretical frequency: **%.4f Hz**", spectrum.TheoreticalFrequency)
		line("- Difference: **%.2f%%**", spectrum.FrequencyErrorPct)
		if spectrum.FrequencyErrorPct < consistentFreqPct {
			line("- The FFT is **consistent** with theory")
		}
	}

	line("")
	line("### 6. Practical Implications")
	label := strings.ToLower(p.Label)
	switch {
	case strings.Contains(label, "suspension"):
		line("- For vehicle suspension, ζ ~ 0.3-0.5 balances ride comfort and handling")
	case strings.Contains(label, "laboratory"):
		line("- A laboratory spring is well suited to demonstrating Hooke's law and simple harmonic motion")
	case strings.Contains(label, "spring-mass"):
		line("- The classic spring-mass system demonstrates damped harmonic oscillation")
	case strings.Contains(label, "trampoline"):
		line("- A trampoline stores energy elastically; light damping keeps the rebound lively")
	case strings.Contains(label, "door"):
		line("- Door closers are deliberately overdamped so the door shuts without slamming")
	default:
		line("- Compare ζ against 1 to judge whether the design oscillates or creeps back to rest")
	}

	return b.String()
}
