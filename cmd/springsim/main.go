package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/springsim/internal/config"
	"github.com/san-kum/springsim/internal/logging"
)

var (
	dataDir    string
	configFile string
	logLevel   string
	logDev     bool

	preset     string
	integrator string
	dt         float64
	duration   float64
	tolerance  float64
	mass       float64
	stiffness  float64
	damping    float64
	x0         float64
	v0         float64

	forceType  string
	amplitude  float64
	forceStart float64
	forceOmega float64
	center     float64
	width      float64

	noSave      bool
	points      int
	sweepPoints int
	metric      string
	omegaMin    float64
	omegaMax    float64
	zetaMin     float64
	zetaMax     float64
	poincare    float64
	skip        int
	trials      int
	perturb     float64
	seed        int64
	outFile     string
	svgKind     string
	chart       string
	carrier     float64
	audioSpeed  float64
	addr        string

	logger *zap.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "springsim",
		Short:         "damped mass-spring oscillator lab",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := logging.New(logLevel, logDev)
			if err != nil {
				return err
			}
			logger = l
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLive(cmd, nil)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".springsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logDev, "log-dev", false, "human-readable development logging")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "simulate, analyse and save a run",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addSystemFlags(runCmd)
	addForceFlags(runCmd)
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	runCmd.Flags().IntVar(&points, "points", 0, "resonance sweep points (0 keeps config)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot displacement and energy of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "validation, spectrum and decrement of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "phase portrait of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().Float64Var(&poincare, "poincare", 0, "sample once per period (s) instead of the full portrait")
	phaseCmd.Flags().IntVar(&skip, "skip", 0, "samples to drop before the Poincaré section")

	resonanceCmd := &cobra.Command{
		Use:   "resonance",
		Short: "frequency response of a system",
		Args:  cobra.NoArgs,
		RunE:  resonance,
	}
	addSystemFlags(resonanceCmd)
	resonanceCmd.Flags().IntVar(&points, "points", 0, "sweep points (0 keeps config)")
	resonanceCmd.Flags().Float64Var(&omegaMin, "omega-min", 0, "lowest driving frequency (rad/s)")
	resonanceCmd.Flags().Float64Var(&omegaMax, "omega-max", 0, "highest driving frequency (rad/s)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list example systems",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	compareCmd := &cobra.Command{
		Use:   "compare [integrator...]",
		Short: "compare integrators on the free response",
		RunE:  compareIntegrators,
	}
	addSystemFlags(compareCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "sweep the damping ratio",
		Args:  cobra.NoArgs,
		RunE:  dampingSweep,
	}
	addSystemFlags(sweepCmd)
	addForceFlags(sweepCmd)
	sweepCmd.Flags().Float64Var(&zetaMin, "zeta-min", 0.05, "lowest damping ratio")
	sweepCmd.Flags().Float64Var(&zetaMax, "zeta-max", 2, "highest damping ratio")
	sweepCmd.Flags().IntVar(&sweepPoints, "points", 20, "number of damping values")

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid-search the damping that minimises a metric",
		Args:  cobra.NoArgs,
		RunE:  tuneDamping,
	}
	addSystemFlags(tuneCmd)
	addForceFlags(tuneCmd)
	tuneCmd.Flags().Float64Var(&zetaMin, "zeta-min", 0.05, "lowest damping ratio")
	tuneCmd.Flags().Float64Var(&zetaMax, "zeta-max", 2, "highest damping ratio")
	tuneCmd.Flags().IntVar(&sweepPoints, "points", 20, "number of damping values")
	tuneCmd.Flags().StringVar(&metric, "metric", "settling_time", "settling_time, peak_amplitude or energy_drift")

	montecarloCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "perturb the initial conditions and report spread",
		Args:  cobra.NoArgs,
		RunE:  monteCarlo,
	}
	addSystemFlags(montecarloCmd)
	addForceFlags(montecarloCmd)
	montecarloCmd.Flags().IntVar(&trials, "trials", 50, "number of trials")
	montecarloCmd.Flags().Float64Var(&perturb, "perturb", 0.05, "max perturbation of x0 and v0")
	montecarloCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 uses the clock)")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a YAML scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	liveCmd := &cobra.Command{
		Use:   "live [preset]",
		Short: "animate a system in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addSystemFlags(liveCmd)
	addForceFlags(liveCmd)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE:  serve,
	}
	serveCmd.Flags().StringVar(&addr, "addr", config.DefaultAddr, "listen address")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export a displacement or phase plot to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVar(&svgKind, "kind", "displacement", "displacement or phase")
	exportPNGCmd := &cobra.Command{
		Use:   "export-png [run_id]",
		Short: "render a chart of a run to PNG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportPNG,
	}
	exportPNGCmd.Flags().StringVar(&chart, "chart", "motion", "motion or energy")
	exportWAVCmd := &cobra.Command{
		Use:   "export-wav [run_id]",
		Short: "sonify the displacement of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  exportWAV,
	}
	exportWAVCmd.Flags().Float64Var(&carrier, "carrier", 440, "carrier tone (Hz)")
	exportWAVCmd.Flags().Float64Var(&audioSpeed, "speed", 1, "playback speed factor")

	for _, c := range []*cobra.Command{exportCSVCmd, exportJSONCmd, exportSVGCmd, exportPNGCmd, exportWAVCmd} {
		c.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout or <run_id>.<ext>)")
	}

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, analyzeCmd, phaseCmd, resonanceCmd, presetsCmd,
		compareCmd, sweepCmd, tuneCmd, montecarloCmd, scenarioCmd, liveCmd, serveCmd,
		exportCSVCmd, exportJSONCmd, exportSVGCmd, exportPNGCmd, exportWAVCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addSystemFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&preset, "preset", config.DefaultPreset, "example system")
	f.StringVar(&integrator, "integrator", config.DefaultIntegrator, "integrator")
	f.Float64Var(&dt, "dt", config.DefaultDt, "sample interval (s)")
	f.Float64Var(&duration, "time", config.DefaultDuration, "duration (s)")
	f.Float64Var(&tolerance, "tol", config.DefaultTolerance, "adaptive step tolerance")
	f.Float64Var(&mass, "mass", 0, "mass (kg)")
	f.Float64Var(&stiffness, "stiffness", 0, "spring constant (N/m)")
	f.Float64Var(&damping, "damping", 0, "damping coefficient (N·s/m)")
	f.Float64Var(&x0, "x0", 0, "initial displacement (m)")
	f.Float64Var(&v0, "v0", 0, "initial velocity (m/s)")
}

func addForceFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&forceType, "force", "none", "none, step, harmonic or impulse")
	f.Float64Var(&amplitude, "amplitude", 0, "force amplitude (N)")
	f.Float64Var(&forceStart, "force-start", 0, "step force start time (s)")
	f.Float64Var(&forceOmega, "omega", 0, "harmonic driving frequency (rad/s)")
	f.Float64Var(&center, "center", 0, "impulse center (s)")
	f.Float64Var(&width, "width", 0, "impulse width (s)")
}

// loadConfig starts from defaults or --config and applies only the flags
// the user set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	changed := func(name string) bool {
		return flags.Lookup(name) != nil && flags.Changed(name)
	}

	if changed("preset") {
		cfg.Preset = preset
	}
	if changed("integrator") {
		cfg.Integrator = integrator
	}
	if changed("dt") {
		cfg.Dt = dt
	}
	if changed("time") {
		cfg.Duration = duration
	}
	if changed("tol") {
		cfg.Tolerance = tolerance
	}

	system := func() *config.SystemConfig {
		if cfg.System == nil {
			cfg.System = &config.SystemConfig{}
		}
		return cfg.System
	}
	if changed("mass") {
		system().Mass = config.Float(mass)
	}
	if changed("stiffness") {
		system().Stiffness = config.Float(stiffness)
	}
	if changed("damping") {
		system().Damping = config.Float(damping)
	}
	if changed("x0") {
		system().X0 = config.Float(x0)
	}
	if changed("v0") {
		system().V0 = config.Float(v0)
	}

	if changed("force") {
		cfg.Force = config.ForceConfig{Type: forceType}
	}
	if changed("amplitude") {
		cfg.Force.Amplitude = config.Float(amplitude)
	}
	if changed("force-start") {
		cfg.Force.Start = config.Float(forceStart)
	}
	if changed("omega") {
		cfg.Force.Omega = config.Float(forceOmega)
	}
	if changed("center") {
		cfg.Force.Center = config.Float(center)
	}
	if changed("width") {
		cfg.Force.Width = config.Float(width)
	}

	if changed("points") && points > 0 {
		cfg.Resonance.Points = points
	}
	if changed("omega-min") {
		cfg.Resonance.OmegaMin = omegaMin
	}
	if changed("omega-max") {
		cfg.Resonance.OmegaMax = omegaMax
	}
	if changed("addr") {
		cfg.Server.Addr = addr
	}

	return cfg, cfg.Validate()
}
