package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/san-kum/springsim/internal/export"
	"github.com/san-kum/springsim/internal/metrics"
	"github.com/san-kum/springsim/internal/physics"
	"github.com/san-kum/springsim/internal/sim"
)

const (
	metadataFile   = "metadata.json"
	trajectoryFile = "trajectory.csv"
)

var ErrInvalidRunID = errors.New("storage: invalid run id")

// Store keeps one directory per run under baseDir.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID            string             `json:"id"`
	Timestamp     time.Time          `json:"timestamp"`
	Params        physics.Params     `json:"params"`
	Regime        physics.Regime     `json:"regime"`
	Force         ForceSpec          `json:"force"`
	Integrator    string             `json:"integrator"`
	Start         float64            `json:"start"`
	Step          float64            `json:"step"`
	Samples       int                `json:"samples"`
	StepsTaken    int                `json:"steps_taken"`
	StepsRejected int                `json:"steps_rejected"`
	Metrics       map[string]float64 `json:"metrics"`
}

// ForceSpec is the serialisable form of a physics.Force.
type ForceSpec struct {
	Kind      string  `json:"kind"`
	Amplitude float64 `json:"amplitude,omitempty"`
	Start     float64 `json:"start,omitempty"`
	Omega     float64 `json:"omega,omitempty"`
	Center    float64 `json:"center,omitempty"`
	Width     float64 `json:"width,omitempty"`
}

func SpecOf(f physics.Force) ForceSpec {
	switch f := f.(type) {
	case physics.StepForce:
		return ForceSpec{Kind: f.Kind(), Amplitude: f.Amplitude, Start: f.Start}
	case physics.HarmonicForce:
		return ForceSpec{Kind: f.Kind(), Amplitude: f.Amplitude, Omega: f.Omega}
	case physics.ImpulseForce:
		return ForceSpec{Kind: f.Kind(), Amplitude: f.Amplitude, Center: f.Center, Width: f.Width}
	}
	return ForceSpec{Kind: "none"}
}

func (s ForceSpec) Force() (physics.Force, error) {
	var f physics.Force
	switch s.Kind {
	case "", "none":
		return physics.NoForce{}, nil
	case "step":
		f = physics.StepForce{Amplitude: s.Amplitude, Start: s.Start}
	case "harmonic":
		f = physics.HarmonicForce{Amplitude: s.Amplitude, Omega: s.Omega}
	case "impulse":
		f = physics.ImpulseForce{Amplitude: s.Amplitude, Center: s.Center, Width: s.Width}
	default:
		return nil, fmt.Errorf("storage: unknown force kind %q", s.Kind)
	}
	return f, f.Validate()
}

// Save writes metadata.json and trajectory.csv into a new run directory
// and returns the run id. A failed save leaves no run directory behind.
func (s *Store) Save(traj *sim.Trajectory) (id string, err error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", slug(traj.Params.Label), now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			os.RemoveAll(runDir)
		}
	}()

	meta := RunMetadata{
		ID:            runID,
		Timestamp:     now,
		Params:        traj.Params,
		Regime:        traj.Params.Regime(),
		Force:         SpecOf(traj.Force),
		Integrator:    traj.Integrator,
		Step:          traj.Step,
		Samples:       traj.Len(),
		StepsTaken:    traj.StepsTaken,
		StepsRejected: traj.StepsRejected,
		Metrics:       traj.Metrics,
	}
	if traj.Len() > 0 {
		meta.Start = traj.T[0]
	}

	if err = writeFile(filepath.Join(runDir, metadataFile), func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(meta)
	}); err != nil {
		return "", err
	}
	if err = writeFile(filepath.Join(runDir, trajectoryFile), func(w io.Writer) error {
		return export.WriteCSV(w, traj)
	}); err != nil {
		return "", err
	}
	return runID, nil
}

// writeFile creates path, fills it with write and syncs it. The close error
// is reported when nothing else failed.
func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	if err := write(f); err != nil {
		return err
	}
	return f.Sync()
}

// List returns all readable runs, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	dir, err := s.runDir(runID)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(dir, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("storage: %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadTrajectory rebuilds a run from its CSV. Acceleration and energies are
// recomputed from the stored position and velocity.
func (s *Store) LoadTrajectory(runID string) (*sim.Trajectory, *RunMetadata, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	force, err := meta.Force.Force()
	if err != nil {
		return nil, nil, err
	}

	f, err := os.Open(filepath.Join(s.baseDir, runID, trajectoryFile))
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	cols, err := export.ReadCSV(f)
	if err != nil {
		return nil, nil, fmt.Errorf("storage: %s: %w", runID, err)
	}

	traj, err := sim.NewTrajectory(meta.Params, force, cols.T, cols.X, cols.V)
	if err != nil {
		return nil, nil, err
	}
	if meta.Step > 0 {
		traj.Step = meta.Step
		traj.EDissipated = metrics.DissipatedEnergy(meta.Params.Damping, traj.V, meta.Step)
	}
	traj.Integrator = meta.Integrator
	traj.StepsTaken = meta.StepsTaken
	traj.StepsRejected = meta.StepsRejected
	for k, v := range meta.Metrics {
		traj.Metrics[k] = v
	}
	return traj, meta, nil
}

func (s *Store) Delete(runID string) error {
	dir, err := s.runDir(runID)
	if err != nil {
		return err
	}
	if _, err := os.Stat(filepath.Join(dir, metadataFile)); err != nil {
		return err
	}
	return os.RemoveAll(dir)
}

func (s *Store) runDir(runID string) (string, error) {
	if runID == "" || runID != filepath.Base(runID) || strings.HasPrefix(runID, ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidRunID, runID)
	}
	return filepath.Join(s.baseDir, runID), nil
}

func slug(label string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(label)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "run"
	}
	return b.String()
}
