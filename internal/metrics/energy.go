package metrics

import (
	"math"

	"github.com/san-kum/springsim/internal/dynamo"
)

func KineticEnergy(mass, v float64) float64 { return 0.5 * mass * v * v }

func PotentialEnergy(stiffness, x float64) float64 { return 0.5 * stiffness * x * x }

// Energies returns per-sample kinetic, potential and total energy.
// total[i] is ke[i]+pe[i] exactly.
func Energies(mass, stiffness float64, x, v []float64) (ke, pe, total []float64) {
	n := len(x)
	ke = make([]float64, n)
	pe = make([]float64, n)
	total = make([]float64, n)
	for i := 0; i < n; i++ {
		ke[i] = KineticEnergy(mass, v[i])
		pe[i] = PotentialEnergy(stiffness, x[i])
		total[i] = ke[i] + pe[i]
	}
	return ke, pe, total
}

// DissipatedEnergy is the right-rule cumulative sum of c·v²·step with
// out[0] = 0. It is non-decreasing and identically zero for c = 0.
func DissipatedEnergy(damping float64, v []float64, step float64) []float64 {
	out := make([]float64, len(v))
	for i := 1; i < len(v); i++ {
		out[i] = out[i-1] + damping*v[i]*v[i]*step
	}
	return out
}

// MeanEnergy averages the mechanical energy of a Hamiltonian system over
// the observed samples.
type MeanEnergy struct {
	name        string
	sys         dynamo.Hamiltonian
	samples     int
	totalEnergy float64
}

func NewMeanEnergy(sys dynamo.Hamiltonian) *MeanEnergy {
	return &MeanEnergy{name: "mean_energy", sys: sys}
}

func (e *MeanEnergy) Name() string { return e.name }

func (e *MeanEnergy) Observe(x dynamo.State, t float64) {
	e.totalEnergy += e.sys.Energy(x)
	e.samples++
}

func (e *MeanEnergy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *MeanEnergy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

// EnergyDrift tracks the largest relative deviation from the first observed
// energy. Systems that are not Hamiltonian report 0.
type EnergyDrift struct {
	name          string
	initialEnergy float64
	maxDrift      float64
	samples       int
	dyn           dynamo.System
}

func NewEnergyDrift(dyn dynamo.System) *EnergyDrift {
	return &EnergyDrift{
		name: "energy_drift",
		dyn:  dyn,
	}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(x dynamo.State, t float64) {
	ec, ok := e.dyn.(dynamo.Hamiltonian)
	if !ok {
		return
	}

	energy := ec.Energy(x)

	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}
