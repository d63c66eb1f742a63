// Package server exposes presets, simulations and resonance sweeps over a
// JSON HTTP API.
package server

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/san-kum/springsim/internal/config"
	"github.com/san-kum/springsim/internal/experiment"
)

const DefaultMaxSamples = 2000

type Config struct {
	Addr    string
	Rate    rate.Limit
	Burst   int
	Timeout time.Duration
	// MaxSamples caps the trajectory arrays in simulate responses when
	// the request gives no ?samples= value.
	MaxSamples int
	Logger     *zap.Logger
	Registry   *experiment.Registry
}

// ConfigFrom converts the YAML server section.
func ConfigFrom(sc config.ServerConfig, logger *zap.Logger) Config {
	return Config{
		Addr:    sc.Addr,
		Rate:    rate.Limit(sc.Rate),
		Burst:   sc.Burst,
		Timeout: sc.Timeout,
		Logger:  logger,
	}
}

type Server struct {
	cfg     Config
	router  *chi.Mux
	limiter *rate.Limiter
	started time.Time

	requests atomic.Int64
	allowed  atomic.Int64
	denied   atomic.Int64
}

func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Registry == nil {
		cfg.Registry = experiment.NewRegistry()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = config.DefaultTimeout
	}
	if cfg.Rate <= 0 {
		cfg.Rate = rate.Limit(config.DefaultRate)
	}
	if cfg.Burst <= 0 {
		cfg.Burst = config.DefaultBurst
	}
	if cfg.MaxSamples <= 0 {
		cfg.MaxSamples = DefaultMaxSamples
	}

	s := &Server{
		cfg:     cfg,
		limiter: rate.NewLimiter(cfg.Rate, cfg.Burst),
		started: time.Now(),
	}
	s.router = s.routes()
	return s
}

// Router returns the underlying router, useful for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start serves until ctx is done, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	s.cfg.Logger.Info("server listening", zap.String("addr", s.cfg.Addr))
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
