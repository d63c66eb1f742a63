package export

import (
	"encoding/json"
	"io"

	"github.com/san-kum/springsim/internal/physics"
	"github.com/san-kum/springsim/internal/sim"
)

// Summary carries the derived quantities next to the raw trajectory.
type Summary struct {
	Regime           physics.Regime   `json:"regime"`
	NaturalFrequency float64          `json:"natural_frequency"`
	DampingRatio     float64          `json:"damping_ratio"`
	DampedFrequency  float64          `json:"damped_frequency"`
	Period           physics.Quantity `json:"period"`
	Samples          int              `json:"samples"`
	Duration         float64          `json:"duration"`
}

type Document struct {
	Summary    Summary         `json:"summary"`
	Trajectory *sim.Trajectory `json:"trajectory"`
}

func NewDocument(traj *sim.Trajectory) Document {
	p := traj.Params
	return Document{
		Summary: Summary{
			Regime:           p.Regime(),
			NaturalFrequency: p.NaturalFrequency(),
			DampingRatio:     p.DampingRatio(),
			DampedFrequency:  p.DampedFrequency(),
			Period:           p.Period(),
			Samples:          traj.Len(),
			Duration:         traj.Duration(),
		},
		Trajectory: traj,
	}
}

func WriteJSON(w io.Writer, traj *sim.Trajectory) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewDocument(traj))
}
