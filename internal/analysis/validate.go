package analysis

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/sim"
)

// AccuracyFraction is the RMS error, as a fraction of the analytical peak,
// below which a numerical solution counts as accurate.
const AccuracyFraction = 0.01

// ErrForcedTrajectory is returned when validating a forced run; the
// closed-form solutions only describe free vibration.
var ErrForcedTrajectory = errors.New("analysis: analytical validation requires an unforced trajectory")

type ValidationResult struct {
	MaxError         float64   `json:"max_error"`
	RMSError         float64   `json:"rms_error"`
	RelativeErrorPct float64   `json:"relative_error_pct"`
	Correlation      float64   `json:"correlation"`
	IsAccurate       bool      `json:"is_accurate"`
	XAnalytical      []float64 `json:"x_analytical"`
}

// Validate compares a trajectory's position against the closed-form
// solution at the same sample times.
func Validate(traj *sim.Trajectory) (*ValidationResult, error) {
	if traj == nil || traj.Len() < 2 {
		return nil, dynamo.ErrTooFewSamples
	}
	if traj.Forced() {
		return nil, ErrForcedTrajectory
	}

	xa, _ := Analytical(traj.Params, traj.T)
	n := len(xa)

	errs := make([]float64, n)
	floats.SubTo(errs, traj.X, xa)

	var maxErr, sumSq, sumRel, peak float64
	for i, e := range errs {
		ae := math.Abs(e)
		maxErr = math.Max(maxErr, ae)
		sumSq += e * e
		if xa[i] != 0 {
			sumRel += ae / math.Abs(xa[i])
		}
		peak = math.Max(peak, math.Abs(xa[i]))
	}
	rms := math.Sqrt(sumSq / float64(n))

	return &ValidationResult{
		MaxError:         maxErr,
		RMSError:         rms,
		RelativeErrorPct: sumRel / float64(n) * 100,
		Correlation:      correlation(traj.X, xa),
		IsAccurate:       rms < AccuracyFraction*peak,
		XAnalytical:      xa,
	}, nil
}

// correlation is the Pearson coefficient, defined as 0 when either series
// is constant.
func correlation(a, b []float64) float64 {
	if stat.Variance(a, nil) == 0 || stat.Variance(b, nil) == 0 {
		return 0
	}
	r := stat.Correlation(a, b, nil)
	if math.IsNaN(r) {
		return 0
	}
	return r
}
