package analysis

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/springsim/internal/physics"
	"github.com/san-kum/springsim/internal/sim"
)

// SweepPoint summarises one run of a damping sweep.
type SweepPoint struct {
	Damping       float64          `json:"damping"`
	Zeta          float64          `json:"zeta"`
	Regime        physics.Regime   `json:"regime"`
	PeakAmplitude float64          `json:"peak_amplitude"`
	SettlingTime  float64          `json:"settling_time"`
	QualityFactor physics.Quantity `json:"quality_factor"`
}

// DampingSweep integrates p once per damping coefficient, concurrently,
// and returns the points in the order given. newOpts is called once per
// run so that no stepper instance is shared between goroutines.
func DampingSweep(ctx context.Context, p physics.Params, dampings []float64, span sim.Span, step float64, force physics.Force, newOpts func() []sim.Option) ([]SweepPoint, error) {
	jobs := make([]sim.Job, len(dampings))
	for i, c := range dampings {
		var opts []sim.Option
		if newOpts != nil {
			opts = newOpts()
		}
		jobs[i] = sim.Job{
			Name:    fmt.Sprintf("c=%g", c),
			Params:  p.WithDamping(c),
			Span:    span,
			Step:    step,
			Force:   force,
			Options: opts,
		}
	}

	points := make([]SweepPoint, len(jobs))
	for i, r := range sim.RunBatch(ctx, jobs) {
		if r.Err != nil {
			return nil, fmt.Errorf("sweep %s: %w", r.Name, r.Err)
		}
		q := jobs[i].Params
		pt := SweepPoint{
			Damping:       q.Damping,
			Zeta:          q.DampingRatio(),
			Regime:        q.Regime(),
			PeakAmplitude: r.Trajectory.Metrics["peak_amplitude"],
			SettlingTime:  r.Trajectory.Metrics["settling_time"],
			QualityFactor: physics.Quantity(math.Inf(1)),
		}
		if pt.Zeta > 0 {
			pt.QualityFactor = physics.Quantity(1 / (2 * pt.Zeta))
		}
		points[i] = pt
	}
	return points, nil
}

// LinearDampings returns n damping coefficients spanning ζ in [zetaMin, zetaMax].
func LinearDampings(p physics.Params, zetaMin, zetaMax float64, n int) []float64 {
	if n < 1 {
		return nil
	}
	cc := 2 * math.Sqrt(p.Stiffness*p.Mass)
	out := make([]float64, n)
	for i := range out {
		z := zetaMin
		if n > 1 {
			z += (zetaMax - zetaMin) * float64(i) / float64(n-1)
		}
		out[i] = z * cc
	}
	return out
}

// SweepToASCII plots settling time against damping ratio.
func SweepToASCII(points []SweepPoint, width, height int) string {
	if len(points) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	minVal, maxVal := points[0].SettlingTime, points[0].SettlingTime
	for _, p := range points {
		minVal = math.Min(minVal, p.SettlingTime)
		maxVal = math.Max(maxVal, p.SettlingTime)
	}
	if maxVal == minVal {
		maxVal = minVal + 1
	}

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	for i, p := range points {
		col := i * width / len(points)
		if col >= width {
			col = width - 1
		}
		row := height - 1 - int((p.SettlingTime-minVal)/(maxVal-minVal)*float64(height-1))
		if row >= 0 && row < height {
			canvas[row][col] = '•'
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
