package experiment

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/integrators"
	"github.com/san-kum/springsim/internal/sim"
)

var ErrUnknownIntegrator = errors.New("experiment: unknown integrator")

type integratorEntry struct {
	build       func() dynamo.Integrator
	description string
}

// Registry maps integrator names to constructors. Every lookup returns a
// fresh instance, so instances are never shared between runs.
type Registry struct {
	integrators map[string]integratorEntry
}

func NewRegistry() *Registry {
	r := &Registry{integrators: make(map[string]integratorEntry)}

	r.integrators["euler"] = integratorEntry{
		build:       func() dynamo.Integrator { return integrators.NewEuler() },
		description: "explicit Euler, first order",
	}
	r.integrators["rk4"] = integratorEntry{
		build:       func() dynamo.Integrator { return integrators.NewRK4() },
		description: "classical Runge-Kutta, fourth order",
	}
	r.integrators["rk45"] = integratorEntry{
		build:       func() dynamo.Integrator { return integrators.NewRK45() },
		description: "adaptive Dormand-Prince 5(4) with error control",
	}
	r.integrators["trapezoid"] = integratorEntry{
		build:       func() dynamo.Integrator { return integrators.NewTrapezoid() },
		description: "implicit trapezoidal rule, A-stable",
	}
	r.integrators["verlet"] = integratorEntry{
		build:       func() dynamo.Integrator { return integrators.NewVerlet() },
		description: "velocity Verlet, symplectic",
	}
	r.integrators["leapfrog"] = integratorEntry{
		build:       func() dynamo.Integrator { return integrators.NewLeapfrog() },
		description: "kick-drift-kick leapfrog, symplectic",
	}

	return r
}

func (r *Registry) GetIntegrator(name string) (dynamo.Integrator, error) {
	e, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownIntegrator, name)
	}
	return e.build(), nil
}

// IntegratorOption builds the named stepper as a sim option. The returned
// release func frees solver resources and must be called after the run.
func (r *Registry) IntegratorOption(name string) (sim.Option, func(), error) {
	integ, err := r.GetIntegrator(name)
	if err != nil {
		return nil, nil, err
	}
	release := func() {}
	if c, ok := integ.(io.Closer); ok {
		release = func() { c.Close() }
	}
	return sim.WithIntegrator(name, integ), release, nil
}

func (r *Registry) Describe(name string) string {
	return r.integrators[name].description
}

func (r *Registry) ListIntegrators() []string {
	names := make([]string, 0, len(r.integrators))
	for name := range r.integrators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
