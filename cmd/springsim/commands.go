package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/springsim/internal/analysis"
	"github.com/san-kum/springsim/internal/automation"
	"github.com/san-kum/springsim/internal/config"
	"github.com/san-kum/springsim/internal/experiment"
	"github.com/san-kum/springsim/internal/optim"
	"github.com/san-kum/springsim/internal/server"
	"github.com/san-kum/springsim/internal/sim"
	"github.com/san-kum/springsim/internal/storage"
	"github.com/san-kum/springsim/internal/viz"
)

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	report, err := experiment.New(cfg, experiment.WithLogger(logger)).Run(cmd.Context())
	if err != nil {
		return err
	}
	printReport(report)

	if noSave {
		return nil
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(report.Trajectory)
	if err != nil {
		return err
	}
	fmt.Printf("\nrun id: %s\n", runID)
	return nil
}

func printReport(r *experiment.Report) {
	traj := r.Trajectory
	p := traj.Params

	fmt.Println(viz.HeaderStyle.Render(p.Label))
	rows := [][2]string{
		{"regime", p.Regime().Title()},
		{"natural frequency", fmt.Sprintf("%.4f rad/s", p.NaturalFrequency())},
		{"damping ratio", fmt.Sprintf("%.4f", p.DampingRatio())},
		{"damped frequency", fmt.Sprintf("%.4f rad/s", p.DampedFrequency())},
		{"period", p.Period().String() + " s"},
		{"force", traj.ForceKind},
		{"integrator", traj.Integrator},
		{"samples", fmt.Sprintf("%d", traj.Len())},
		{"steps", fmt.Sprintf("%d (%d rejected)", traj.StepsTaken, traj.StepsRejected)},
		{"elapsed", r.Elapsed.String()},
	}
	for _, name := range []string{"peak_amplitude", "settling_time", "energy_drift", "mean_energy"} {
		if v, ok := traj.Metrics[name]; ok {
			rows = append(rows, [2]string{strings.ReplaceAll(name, "_", " "), fmt.Sprintf("%.6g", v)})
		}
	}
	fmt.Print(viz.KeyValue(rows))
	printAnalyses(r)
}

func printAnalyses(r *experiment.Report) {
	if v := r.Validation; v != nil {
		fmt.Println("\n" + viz.HeaderStyle.Render("validation"))
		fmt.Print(viz.KeyValue([][2]string{
			{"max error", fmt.Sprintf("%.3e m", v.MaxError)},
			{"rms error", fmt.Sprintf("%.3e m", v.RMSError)},
			{"relative error", fmt.Sprintf("%.4f %%", v.RelativeErrorPct)},
			{"correlation", fmt.Sprintf("%.6f", v.Correlation)},
			{"accurate", fmt.Sprintf("%t", v.IsAccurate)},
		}))
	}
	if s := r.Spectrum; s != nil {
		fmt.Println("\n" + viz.HeaderStyle.Render("spectrum"))
		fmt.Print(viz.KeyValue([][2]string{
			{"dominant", fmt.Sprintf("%.4f Hz", s.DominantFrequency)},
			{"theoretical", fmt.Sprintf("%.4f Hz", s.TheoreticalFrequency)},
			{"error", fmt.Sprintf("%.2f %%", s.FrequencyErrorPct)},
		}))
	}
	if d := r.Decrement; d != nil {
		fmt.Println("\n" + viz.HeaderStyle.Render("logarithmic decrement"))
		fmt.Print(viz.KeyValue([][2]string{
			{"peaks", fmt.Sprintf("%d", d.Peaks)},
			{"delta", fmt.Sprintf("%.4f", d.Delta)},
			{"zeta", fmt.Sprintf("%.4f", d.Zeta)},
			{"period", fmt.Sprintf("%.4f s", d.Period)},
		}))
	}
	if res := r.Resonance; res != nil {
		printResonance(res)
	}
	fmt.Println("\n" + r.Conclusions)
}

func printResonance(res *analysis.ResonanceResult) {
	fmt.Println("\n" + viz.HeaderStyle.Render("resonance"))
	rows := [][2]string{{"peak", "none"}}
	if res.HasPeak() {
		rows = [][2]string{
			{"resonance frequency", fmt.Sprintf("%.4f rad/s", res.ResonanceFrequency)},
			{"peak amplification", res.PeakAmplitude.String()},
			{"quality factor", res.QualityFactor.String()},
			{"3 dB bandwidth", fmt.Sprintf("%.4f rad/s", res.Bandwidth3dB)},
		}
	}
	fmt.Print(viz.KeyValue(rows))
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := storage.New(dataDir).List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tREGIME\tFORCE\tINTEG\tSTEP\tSAMPLES")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%.4fs\t%d\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Regime,
			run.Force.Kind,
			run.Integrator,
			run.Step,
			run.Samples,
		)
	}
	return w.Flush()
}

func loadRun(runID string) (*sim.Trajectory, *storage.RunMetadata, error) {
	return storage.New(dataDir).LoadTrajectory(runID)
}

func plotRun(cmd *cobra.Command, args []string) error {
	traj, meta, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("system: %s (%s)\n", traj.Params.Label, meta.Regime.Title())
	fmt.Printf("samples: %d\n\n", traj.Len())

	series := []struct {
		data    []float64
		caption string
	}{
		{traj.X, "x (m) vs time"},
		{traj.V, "v (m/s) vs time"},
		{traj.ETotal, "mechanical energy (J) vs time"},
	}
	for _, s := range series {
		fmt.Println(asciigraph.Plot(s.data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(s.caption),
		))
		fmt.Println()
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	traj, meta, err := loadRun(args[0])
	if err != nil {
		return err
	}
	report, err := experiment.Analyze(traj, nil, 0)
	if err != nil {
		return err
	}

	fmt.Printf("analysis: %s\n\n", meta.ID)
	printAnalyses(report)

	s := report.Spectrum
	n := len(s.Amplitudes) / 4
	if n > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(s.Amplitudes[:n],
			asciigraph.Height(12),
			asciigraph.Width(80),
			asciigraph.Caption("amplitude spectrum of x"),
		))
	}
	return nil
}

func phasePlot(cmd *cobra.Command, args []string) error {
	traj, meta, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("phase space: %s\n", meta.ID)
	if poincare > 0 {
		section := analysis.PoincareSection(traj, poincare, skip)
		if section == nil || len(section.Points) == 0 {
			return fmt.Errorf("no Poincaré points for period %g", poincare)
		}
		fmt.Printf("Poincaré section, period %.4f s, %d points\n\n", poincare, len(section.Points))
		fmt.Println(analysis.PoincareSectionToASCII(section, 70, 20))
		return nil
	}
	fmt.Println("x (m) horizontal, v (m/s) vertical")
	fmt.Println()
	fmt.Println(analysis.PhasePortraitToASCII(analysis.PhasePortrait(traj), 70, 20))
	return nil
}

func resonance(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	p, err := cfg.SystemParams()
	if err != nil {
		return err
	}
	res, err := analysis.AnalyzeResonance(p, cfg.SweepRange(), cfg.Resonance.Points)
	if err != nil {
		return err
	}

	amps := make([]float64, len(res.Amplitude))
	for i, a := range res.Amplitude {
		amps[i] = a.Float()
	}
	fmt.Println(asciigraph.Plot(amps,
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("|H(ω)| for ω in [%.2f, %.2f] rad/s", res.Omega[0], res.Omega[len(res.Omega)-1])),
	))
	printResonance(res)
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	for _, id := range config.ListPresets() {
		p, _ := config.GetPreset(id)
		fmt.Println(viz.HeaderStyle.Render(id))
		fmt.Println(viz.Subtle.Render(p.Description))
		fmt.Print(viz.KeyValue([][2]string{
			{"label", p.Label},
			{"m, k, c", fmt.Sprintf("%g kg, %g N/m, %g N·s/m", p.Mass, p.Stiffness, p.Damping)},
			{"x0, v0", fmt.Sprintf("%g m, %g m/s", p.X0, p.V0)},
			{"regime", p.Regime().Title()},
		}))
		fmt.Println(viz.Separator(48))
	}
	return nil
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	p, err := cfg.SystemParams()
	if err != nil {
		return err
	}

	results, err := experiment.NewRegistry().Compare(cmd.Context(), p, cfg.Span(), cfg.Dt, args)
	if err != nil {
		return err
	}

	fmt.Printf("comparing integrators for %s (dt=%.4f, duration=%.1fs)\n\n", p.Label, cfg.Dt, cfg.Duration)
	fmt.Printf("%-10s  %-12s  %-12s  %-12s  %-8s  %-10s\n", "integrator", "rms_error", "max_error", "energy_drift", "steps", "time_ms")
	fmt.Println(strings.Repeat("-", 72))
	for _, c := range results {
		if c.Err != "" {
			fmt.Printf("%-10s  error: %s\n", c.Integrator, c.Err)
			continue
		}
		fmt.Printf("%-10s  %12.3e  %12.3e  %12.3e  %8d  %10.2f\n",
			c.Integrator, c.RMSError, c.MaxError, c.EnergyDrift, c.StepsTaken,
			float64(c.Elapsed.Microseconds())/1000)
	}
	return nil
}

func dampingSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	p, err := cfg.SystemParams()
	if err != nil {
		return err
	}
	force, err := cfg.BuildForce()
	if err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	var releases []func()
	defer func() {
		for _, release := range releases {
			release()
		}
	}()
	var optErr error
	newOpts := func() []sim.Option {
		opt, release, err := registry.IntegratorOption(cfg.Integrator)
		if err != nil {
			optErr = err
			return nil
		}
		releases = append(releases, release)
		return []sim.Option{opt, sim.WithTolerance(cfg.Tolerance), sim.WithLogger(logger)}
	}

	dampings := analysis.LinearDampings(p, zetaMin, zetaMax, sweepPoints)
	sweep, err := analysis.DampingSweep(cmd.Context(), p, dampings, cfg.Span(), cfg.Dt, force, newOpts)
	if optErr != nil {
		return optErr
	}
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "C\tZETA\tREGIME\tPEAK\tSETTLING\tQ")
	for _, pt := range sweep {
		fmt.Fprintf(w, "%.3f\t%.3f\t%s\t%.4f\t%.3fs\t%s\n",
			pt.Damping, pt.Zeta, pt.Regime, pt.PeakAmplitude, pt.SettlingTime, pt.QualityFactor)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Println("\nsettling time vs damping ratio")
	fmt.Println(analysis.SweepToASCII(sweep, 70, 16))
	return nil
}

func tuneDamping(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	p, err := cfg.SystemParams()
	if err != nil {
		return err
	}
	force, err := cfg.BuildForce()
	if err != nil {
		return err
	}

	g, err := optim.NewGridSearch([]string{"damping"}, [][]float64{analysis.LinearDampings(p, zetaMin, zetaMax, sweepPoints)})
	if err != nil {
		return err
	}
	objective := optim.MetricObjective(experiment.NewRegistry(), cfg.Integrator, cfg.Span(), cfg.Dt, force, metric)
	res, err := g.Search(cmd.Context(), p, objective)
	if err != nil {
		return err
	}

	fmt.Println(viz.HeaderStyle.Render(fmt.Sprintf("%s: minimum %s", p.Label, metric)))
	fmt.Print(viz.KeyValue([][2]string{
		{"damping", fmt.Sprintf("%.4f N·s/m", res.Params.Damping)},
		{"damping ratio", fmt.Sprintf("%.4f", res.Params.DampingRatio())},
		{"regime", res.Params.Regime().Title()},
		{metric, fmt.Sprintf("%.6g", res.Score)},
		{"evaluated", fmt.Sprintf("%d (%d failed)", res.Evaluated, res.Failed)},
	}))
	return nil
}

func monteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	p, err := cfg.SystemParams()
	if err != nil {
		return err
	}
	force, err := cfg.BuildForce()
	if err != nil {
		return err
	}

	runner := automation.NewRunner(nil, logger)
	results, err := runner.RunMonteCarlo(cmd.Context(), &automation.MonteCarloConfig{
		Params:       p,
		Force:        force,
		Integrator:   cfg.Integrator,
		Span:         cfg.Span(),
		Step:         cfg.Dt,
		Perturbation: perturb,
		NumTrials:    trials,
		Seed:         seed,
	})
	if err != nil {
		return err
	}

	peaks := make([]float64, len(results))
	settle := make([]float64, len(results))
	for i, r := range results {
		peaks[i] = r.PeakAmplitude
		settle[i] = r.SettlingTime
	}
	stable, unstable := automation.MonteCarloStats(results)

	fmt.Println(viz.HeaderStyle.Render(fmt.Sprintf("%s: %d trials, ±%g", p.Label, len(results), perturb)))
	fmt.Print(viz.KeyValue([][2]string{
		{"stable", fmt.Sprintf("%d", stable)},
		{"unstable", fmt.Sprintf("%d", unstable)},
		{"peak amplitude", spread(peaks) + " m"},
		{"settling time", spread(settle) + " s"},
	}))
	fmt.Println("peaks  " + viz.Sparkline(peaks, 60))
	return nil
}

func spread(values []float64) string {
	lo, hi, sum := math.Inf(1), math.Inf(-1), 0.0
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
		sum += v
	}
	return fmt.Sprintf("mean %.4g [%.4g, %.4g]", sum/float64(len(values)), lo, hi)
}

func runScenario(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	fmt.Printf("scenario: %s (%d steps)\n", scenario.Name, len(scenario.Steps))
	if scenario.Description != "" {
		fmt.Println(viz.Subtle.Render(scenario.Description))
	}
	fmt.Println()

	results := automation.NewRunner(st, logger).RunScenario(cmd.Context(), scenario)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tSYSTEM\tREGIME\tSAMPLES\tRUN ID\tSTATUS")
	var failed []error
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(w, "%s\t-\t-\t-\t-\t%v\n", r.Name, r.Err)
			failed = append(failed, fmt.Errorf("%s: %w", r.Name, r.Err))
			continue
		}
		traj := r.Report.Trajectory
		id := r.RunID
		if id == "" {
			id = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\tok\n",
			r.Name, traj.Params.Label, traj.Params.Regime(), traj.Len(), id)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return errors.Join(failed...)
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	registry := experiment.NewRegistry()

	if len(args) == 1 || cmd.Flags().Changed("preset") {
		if len(args) == 1 {
			cfg.Preset = args[0]
		}
		traj, err := experiment.New(cfg, experiment.WithRegistry(registry), experiment.WithLogger(logger)).Simulate(ctx)
		if err != nil {
			return err
		}
		return viz.Play(traj, traj.Params.Label)
	}

	ids := config.ListPresets()
	entries := make([]viz.Entry, 0, len(ids))
	for _, id := range ids {
		p, _ := config.GetPreset(id)
		entries = append(entries, viz.Entry{ID: id, Label: p.Label, Description: p.Description})
	}
	load := func(id string) (*sim.Trajectory, error) {
		c := *cfg
		c.Preset = id
		c.System = nil
		return experiment.New(&c, experiment.WithRegistry(registry), experiment.WithLogger(logger)).Simulate(ctx)
	}
	return viz.RunPicker(entries, load)
}

func serve(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(server.ConfigFrom(cfg.Server, logger))
	fmt.Printf("listening on %s\n", cfg.Server.Addr)
	return srv.Start(ctx)
}
