package config

import (
	"fmt"
	"sort"

	"github.com/san-kum/springsim/internal/physics"
)

// presets is the table of example systems. GetPreset hands out copies.
var presets = map[string]physics.Params{
	"car_suspension": {
		Mass: 400, Stiffness: 40000, Damping: 7200, X0: 0.05, V0: 0,
		Label:       "Car suspension",
		Description: "Sedan suspension, one quarter of the car. Designed near-critically damped for comfort.",
	},
	"trampoline": {
		Mass: 15, Stiffness: 5000, Damping: 100, X0: 0.3, V0: -2,
		Label:       "Trampoline",
		Description: "Recreational trampoline. Underdamped for a bouncing effect.",
	},
	"lab_spring": {
		Mass: 0.5, Stiffness: 20, Damping: 0.1, X0: 0.1, V0: 0,
		Label:       "Laboratory spring",
		Description: "Standard helical spring for introductory physics practicals.",
	},
	"spring_mass": {
		Mass: 1.0, Stiffness: 100, Damping: 2, X0: 0.2, V0: 0,
		Label:       "Spring-mass system",
		Description: "Ideal spring-mass system for demonstrating Hooke's law and harmonic oscillation.",
	},
	"door_closer": {
		Mass: 5, Stiffness: 50, Damping: 50, X0: 1.0, V0: 0,
		Label:       "Door closer",
		Description: "Automatic door closer. Overdamped so the door shuts slowly.",
	},
}

func GetPreset(id string) (physics.Params, error) {
	p, ok := presets[id]
	if !ok {
		return physics.Params{}, fmt.Errorf("%w: %q", ErrUnknownPreset, id)
	}
	return p, nil
}

// ListPresets returns the preset ids in sorted order.
func ListPresets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
