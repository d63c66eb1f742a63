package integrators

import (
	"fmt"
	"math"

	"github.com/edp1096/sparse"

	"github.com/san-kum/springsim/internal/dynamo"
)

const (
	trapMaxNewton = 8
	trapNewtonTol = 1e-12
	trapFDEps     = 1e-7
)

// Trapezoid is the implicit trapezoidal rule (A-stable, second order).
// Each step solves x1 = x0 + dt/2·(f(x0,t0) + f(x1,t1)) with Newton's
// method; the Jacobian is approximated by forward differences and the
// linear system goes through a sparse LU factorisation. For the linear
// oscillator Newton converges in one or two iterations.
type Trapezoid struct {
	mat  *sparse.Matrix
	elem [][]*sparse.Element
	size int
	rhs  []float64
}

func NewTrapezoid() *Trapezoid {
	return &Trapezoid{}
}

func (tr *Trapezoid) ensureMatrix(n int) error {
	if tr.mat != nil && tr.size == n {
		return nil
	}
	tr.Close()

	config := &sparse.Configuration{
		Real:                    true,
		Complex:                 false,
		SeparatedComplexVectors: false,
		Expandable:              true,
		Translate:               true,
		ModifiedNodal:           true,
		TiesMultiplier:          5,
		PrinterWidth:            140,
		Annotate:                0,
	}
	mat, err := sparse.Create(int64(n), config)
	if err != nil {
		return fmt.Errorf("trapezoid: create %dx%d matrix: %w", n, n, err)
	}
	// Factor reorders the matrix; later writes go through these handles.
	tr.elem = make([][]*sparse.Element, n)
	for i := range tr.elem {
		tr.elem[i] = make([]*sparse.Element, n)
		for j := range tr.elem[i] {
			tr.elem[i][j] = mat.GetElement(int64(i+1), int64(j+1))
		}
	}
	tr.mat = mat
	tr.size = n
	tr.rhs = make([]float64, n+1)
	return nil
}

// Close releases the factorisation workspace.
func (tr *Trapezoid) Close() error {
	if tr.mat != nil {
		tr.mat.Destroy()
		tr.mat = nil
	}
	tr.elem = nil
	tr.size = 0
	return nil
}

func (tr *Trapezoid) Step(sys dynamo.System, x dynamo.State, t, dt float64) (dynamo.State, error) {
	n := len(x)
	if n != sys.StateDim() {
		return nil, dynamo.ErrDimensionMismatch
	}
	if err := tr.ensureMatrix(n); err != nil {
		return nil, err
	}

	half := 0.5 * dt
	t1 := t + dt
	f0 := sys.Derive(x, t)

	// Explicit Euler predictor.
	x1 := make(dynamo.State, n)
	for i := range x {
		x1[i] = x[i] + dt*f0[i]
	}

	probe := make(dynamo.State, n)
	for iter := 0; iter < trapMaxNewton; iter++ {
		f1 := sys.Derive(x1, t1)

		tr.mat.Clear()
		for j := 0; j < n; j++ {
			h := trapFDEps * math.Max(1, math.Abs(x1[j]))
			copy(probe, x1)
			probe[j] += h
			fp := sys.Derive(probe, t1)
			for i := 0; i < n; i++ {
				jac := (fp[i] - f1[i]) / h
				v := -half * jac
				if i == j {
					v += 1
				}
				tr.elem[i][j].Real += v
			}
		}

		for i := 0; i < n; i++ {
			// Residual G(x1) = x1 - x0 - dt/2·(f0 + f1); solve J·δ = -G.
			tr.rhs[i+1] = -(x1[i] - x[i] - half*(f0[i]+f1[i]))
		}

		if err := tr.mat.Factor(); err != nil {
			return nil, fmt.Errorf("trapezoid: factor: %w", err)
		}
		delta, err := tr.mat.Solve(tr.rhs)
		if err != nil {
			return nil, fmt.Errorf("trapezoid: solve: %w", err)
		}

		norm := 0.0
		for i := 0; i < n; i++ {
			x1[i] += delta[i+1]
			norm = math.Max(norm, math.Abs(delta[i+1])/(1+math.Abs(x1[i])))
		}
		if math.IsNaN(norm) {
			return nil, dynamo.ErrInvalidState
		}
		if norm <= trapNewtonTol {
			return x1, nil
		}
	}

	return nil, fmt.Errorf("trapezoid: %d newton iterations at t=%g: %w", trapMaxNewton, t, dynamo.ErrNoConvergence)
}
