package analysis

import (
	"fmt"
	"math"

	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/sim"
)

// peakFloor drops peaks that have decayed below this fraction of the first.
const peakFloor = 1e-9

// Decrement is the damping measured from successive positive peaks of a
// free response.
type Decrement struct {
	Peaks       int     `json:"peaks"`
	Delta       float64 `json:"delta"`
	DampingRate float64 `json:"damping_rate"`
	Zeta        float64 `json:"zeta"`
	Period      float64 `json:"period"`
}

// LogDecrement estimates δ = ln(x_0/x_n)/n over the positive peaks of x.
// The damping ratio follows as δ/sqrt(4π²+δ²) and the exponential decay
// rate as δ divided by the mean peak spacing.
func LogDecrement(traj *sim.Trajectory) (*Decrement, error) {
	if traj == nil || traj.Len() < 3 {
		return nil, dynamo.ErrTooFewSamples
	}

	var times, heights []float64
	x := traj.X
	for i := 1; i < len(x)-1; i++ {
		if x[i] > 0 && x[i] > x[i-1] && x[i] >= x[i+1] {
			// Parabolic refinement of the sampled maximum.
			den := x[i-1] - 2*x[i] + x[i+1]
			offset, peak := 0.0, x[i]
			if den != 0 {
				offset = 0.5 * (x[i-1] - x[i+1]) / den
				peak = x[i] - 0.25*(x[i-1]-x[i+1])*offset
			}
			if len(heights) > 0 && peak < heights[0]*peakFloor {
				break
			}
			times = append(times, traj.T[i]+offset*traj.Step)
			heights = append(heights, peak)
		}
	}
	if len(heights) < 2 {
		return nil, fmt.Errorf("%w: found %d positive peaks, need 2", dynamo.ErrTooFewSamples, len(heights))
	}

	n := len(heights) - 1
	delta := math.Log(heights[0]/heights[n]) / float64(n)
	period := (times[n] - times[0]) / float64(n)

	return &Decrement{
		Peaks:       len(heights),
		Delta:       delta,
		DampingRate: delta / period,
		Zeta:        delta / math.Sqrt(4*math.Pi*math.Pi+delta*delta),
		Period:      period,
	}, nil
}
