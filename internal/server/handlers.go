package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/san-kum/springsim/internal/analysis"
	"github.com/san-kum/springsim/internal/config"
	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/experiment"
	"github.com/san-kum/springsim/internal/physics"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

type presetResponse struct {
	ID               string           `json:"id"`
	Params           physics.Params   `json:"params"`
	Regime           physics.Regime   `json:"regime"`
	NaturalFrequency float64          `json:"natural_frequency"`
	DampingRatio     float64          `json:"damping_ratio"`
	DampedFrequency  float64          `json:"damped_frequency"`
	Period           physics.Quantity `json:"period"`
}

type integratorResponse struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func newPresetResponse(id string, p physics.Params) presetResponse {
	return presetResponse{
		ID:               id,
		Params:           p,
		Regime:           p.Regime(),
		NaturalFrequency: p.NaturalFrequency(),
		DampingRatio:     p.DampingRatio(),
		DampedFrequency:  p.DampedFrequency(),
		Period:           p.Period(),
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": time.Since(s.started).Seconds(),
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"requests_total":     s.requests.Load(),
		"start_time_seconds": s.started.Unix(),
		"rate_limit":         float64(s.limiter.Limit()),
		"rate_burst":         s.limiter.Burst(),
		"tokens_available":   s.limiter.Tokens(),
		"allowed_total":      s.allowed.Load(),
		"denied_total":       s.denied.Load(),
	})
}

func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	ids := config.ListPresets()
	out := make([]presetResponse, 0, len(ids))
	for _, id := range ids {
		p, _ := config.GetPreset(id)
		out = append(out, newPresetResponse(id, p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handlePreset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := config.GetPreset(id)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, newPresetResponse(id, p))
}

func (s *Server) handleIntegrators(w http.ResponseWriter, r *http.Request) {
	names := s.cfg.Registry.ListIntegrators()
	out := make([]integratorResponse, len(names))
	for i, name := range names {
		out[i] = integratorResponse{Name: name, Description: s.cfg.Registry.Describe(name)}
	}
	writeJSON(w, http.StatusOK, out)
}

// handleSimulate runs the full experiment for a config body. The analyses
// use every sample; only the returned arrays are decimated.
func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	cfg, ok := s.decodeConfig(w, r)
	if !ok {
		return
	}

	maxSamples := s.cfg.MaxSamples
	if q := r.URL.Query().Get("samples"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 2 {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("samples must be an integer >= 2, got %q", q))
			return
		}
		maxSamples = n
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Timeout)
	defer cancel()

	exp := experiment.New(cfg, experiment.WithRegistry(s.cfg.Registry), experiment.WithLogger(s.cfg.Logger))
	report, err := exp.Run(ctx)
	if err != nil {
		s.writeRunError(w, err)
		return
	}

	traj := report.Trajectory.Decimate(maxSamples)
	if traj != report.Trajectory && report.Validation != nil {
		v := *report.Validation
		v.XAnalytical, _ = analysis.Analytical(traj.Params, traj.T)
		report.Validation = &v
	}
	report.Trajectory = traj
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleResonance(w http.ResponseWriter, r *http.Request) {
	cfg, ok := s.decodeConfig(w, r)
	if !ok {
		return
	}
	p, err := cfg.SystemParams()
	if err != nil {
		s.writeRunError(w, err)
		return
	}
	res, err := analysis.AnalyzeResonance(p, cfg.SweepRange(), cfg.Resonance.Points)
	if err != nil {
		s.writeRunError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// decodeConfig reads a config body on top of the defaults.
func (s *Server) decodeConfig(w http.ResponseWriter, r *http.Request) (*config.Config, bool) {
	cfg := config.DefaultConfig()
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return nil, false
	}
	return cfg, true
}

func (s *Server) writeRunError(w http.ResponseWriter, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		s.cfg.Logger.Warn("run failed", zap.Error(err), zap.Int("status", status))
	}
	writeError(w, status, err.Error())
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	case errors.Is(err, dynamo.ErrParameterBounds),
		errors.Is(err, dynamo.ErrInvalidState),
		errors.Is(err, dynamo.ErrDimensionMismatch),
		errors.Is(err, dynamo.ErrTooFewSamples),
		errors.Is(err, config.ErrUnknownPreset),
		errors.Is(err, config.ErrUnknownForce),
		errors.Is(err, config.ErrNoSystem),
		errors.Is(err, experiment.ErrUnknownIntegrator):
		return http.StatusBadRequest
	case errors.Is(err, dynamo.ErrStepTooSmall),
		errors.Is(err, dynamo.ErrNoConvergence):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
