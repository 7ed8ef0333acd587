package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/propsim/internal/airfoil"
	"github.com/san-kum/propsim/internal/config"
	"github.com/san-kum/propsim/internal/export"
	"github.com/san-kum/propsim/internal/metrics"
	"github.com/san-kum/propsim/internal/qprop"
	"github.com/san-kum/propsim/internal/storage"
	"github.com/san-kum/propsim/internal/sweep"
	"github.com/san-kum/propsim/internal/viz"
)

// buildCase turns a case file into the solver inputs.
func buildCase(cmd *cobra.Command, path string) (*config.Config, *qprop.Rotor, error) {
	cfg, err := loadCase(cmd, path)
	if err != nil {
		return nil, nil, err
	}
	foil, err := cfg.BuildAirfoil()
	if err != nil {
		return nil, nil, fmt.Errorf("airfoil: %w", err)
	}
	rotor, err := cfg.BuildRotor(foil)
	if err != nil {
		return nil, nil, fmt.Errorf("rotor: %w", err)
	}

	lo, hi := foil.ReynoldsRange()
	log.WithFields(log.Fields{
		"rotor":    rotor.Name,
		"blades":   rotor.Blades,
		"diameter": rotor.Diameter,
		"elements": len(rotor.Elements),
		"airfoil":  foil.Name,
		"re_min":   lo,
		"re_max":   hi,
	}).Debug("case loaded")
	return cfg, rotor, nil
}

func solveCase(cmd *cobra.Command, args []string) error {
	cfg, rotor, err := buildCase(cmd, args[0])
	if err != nil {
		return err
	}
	flow, solverCfg := cfg.OperatingPoint(), cfg.SolverParams()

	start := time.Now()
	perf, err := qprop.Solve(rotor, flow, solverCfg)
	if perf == nil || errors.Is(err, qprop.ErrMalformedInput) {
		return err
	}
	if err != nil {
		log.WithError(err).Warnf("%d elements failed to bracket, results are partial", len(perf.Failed()))
	}
	if cerr := perf.Err(); cerr != nil {
		log.WithError(cerr).Warn("bisection hit the iteration cap")
	}
	log.WithField("elapsed", time.Since(start)).Debug("solve done")

	fmt.Println(viz.Summary(rotor.Name, flow, perf))
	if plot := viz.LoadingPlot(perf.DTdr); plot != "" {
		fmt.Println()
		fmt.Println(plot)
	}

	if pngPath != "" {
		rows := storage.ElementRows(perf)
		if err := export.LoadingChart(rows, rotor.Name+" blade loading", pngPath); err != nil {
			return err
		}
		fmt.Printf("chart: %s\n", pngPath)
	}

	if noSave {
		return nil
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	runID, err := st.SaveSolve(cfg.Name, rotor, flow, solverCfg, perf)
	if err != nil {
		return err
	}
	fmt.Printf("\nrun id: %s\n", runID)

	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	if err := recordRun(meta, nil); err != nil {
		log.WithError(err).Warn("run not added to catalog")
	}
	return nil
}

func sweepCase(cmd *cobra.Command, args []string) error {
	cfg, rotor, err := buildCase(cmd, args[0])
	if err != nil {
		return err
	}
	flows, err := cfg.Flows(rotor.Diameter)
	if err != nil {
		return err
	}

	requested := cfg.SolverParams()
	opts := sweep.Options{
		Workers: requested.Workers,
		Metrics: metrics.Default(),
		Logger:  log.StandardLogger(),
	}
	// sweep points run concurrently, elements within a point serially
	solverCfg := requested
	solverCfg.Workers = 1

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("sweeping %s over %d %s points...\n", rotor.Name, len(flows), cfg.Sweep.Kind)
	start := time.Now()
	res, err := sweep.Run(ctx, rotor, flows, solverCfg, opts)
	if err != nil {
		return err
	}
	fmt.Printf("completed in %v\n\n", time.Since(start))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "V\tRPM\tJ\tCT\tCP\tETA\tT\tQ\tSTATUS")
	for _, p := range res.Points {
		status := "ok"
		switch {
		case len(p.Failed) > 0:
			status = fmt.Sprintf("%d failed", len(p.Failed))
		case len(p.Unconverged) > 0:
			status = fmt.Sprintf("%d unconverged", len(p.Unconverged))
		}
		fmt.Fprintf(w, "%.2f\t%.0f\t%.4f\t%.5f\t%.5f\t%.3f\t%.4f\t%.5f\t%s\n",
			p.Flow.Velocity, p.Flow.RPM(), p.J, p.CT, p.CP, p.Efficiency, p.Thrust, p.Torque, status)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println("\nmetrics:")
	for _, m := range opts.Metrics {
		fmt.Printf("  %s: %.6f\n", m.Name(), res.Metrics[m.Name()])
	}

	rows := storage.SweepRows(res)
	fmt.Println()
	fmt.Println(viz.SweepPlot(rows))
	if pngPath != "" {
		if err := export.SweepChart(rows, rotor.Name+" sweep", pngPath); err != nil {
			return err
		}
		fmt.Printf("chart: %s\n", pngPath)
	}

	if noSave {
		return nil
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	runID, err := st.SaveSweep(cfg.Name, rotor, requested, res)
	if err != nil {
		return err
	}
	fmt.Printf("\nrun id: %s\n", runID)

	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	if err := recordRun(meta, res); err != nil {
		log.WithError(err).Warn("run not added to catalog")
	}
	return nil
}

func recordRun(meta *storage.RunMetadata, res *sweep.Result) error {
	cat, err := openCatalog()
	if err != nil {
		return err
	}
	defer cat.Close()

	if res != nil {
		return cat.RecordSweep(meta, res)
	}
	return cat.RecordSolve(meta)
}

func queryPolar(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(args[0])
	if err != nil {
		return fmt.Errorf("failed to load case: %w", err)
	}
	foil, err := cfg.BuildAirfoil()
	if err != nil {
		return err
	}

	c, err := foil.At(airfoil.Deg2Rad(alphaDeg), reynolds, mach)
	if err != nil {
		return err
	}
	lo, hi := foil.ReynoldsRange()
	fmt.Printf("airfoil: %s (%d polars, Re %.0f to %.0f)\n", foil.Name, len(foil.Polars), lo, hi)
	fmt.Printf("alpha: %.2f deg  Re: %.0f  Mach: %.3f\n", alphaDeg, reynolds, mach)
	fmt.Printf("  CL: %.5f\n", c.CL)
	fmt.Printf("  CD: %.5f\n", c.CD)
	if c.CD > 0 {
		fmt.Printf("  L/D: %.2f\n", c.CL/c.CD)
	}
	return nil
}

func exploreCase(cmd *cobra.Command, args []string) error {
	cfg, rotor, err := buildCase(cmd, args[0])
	if err != nil {
		return err
	}
	return viz.RunExplorer(rotor, cfg.OperatingPoint(), cfg.SolverParams())
}
