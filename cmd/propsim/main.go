package main

import (
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/propsim/internal/catalog"
	"github.com/san-kum/propsim/internal/config"
	"github.com/san-kum/propsim/internal/storage"
)

var (
	dataDir string
	verbose bool

	// operating point overrides
	velocity     float64
	rpm          float64
	density      float64
	speedOfSound float64
	atmosphere   string

	// solver overrides
	tolerance     float64
	maxIterations int
	workers       int
	solverPreset  string

	// sweep overrides
	sweepKind   string
	sweepFrom   float64
	sweepTo     float64
	sweepPoints int

	// polar query
	alphaDeg float64
	reynolds float64
	mach     float64

	// grid search
	axes      []string
	objective string
	target    float64

	noSave  bool
	pngPath string
	outPath string
	limit   int
	best    string
)

// main executes the root command, exiting with status 1 on error.
func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd registers the propsim commands. Registering resets every flag
// variable to its default.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "propsim",
		Short:        "propeller blade-element performance lab",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
			if verbose {
				log.SetLevel(log.DebugLevel)
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".propsim", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	solveCmd := &cobra.Command{
		Use:   "solve [case.yaml]",
		Short: "solve a single operating point",
		Args:  cobra.ExactArgs(1),
		RunE:  solveCase,
	}
	addFlowFlags(solveCmd)
	addSolverFlags(solveCmd)
	solveCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	solveCmd.Flags().StringVar(&pngPath, "png", "", "write a blade loading chart")

	sweepCmd := &cobra.Command{
		Use:   "sweep [case.yaml]",
		Short: "solve a series of operating points",
		Args:  cobra.ExactArgs(1),
		RunE:  sweepCase,
	}
	addFlowFlags(sweepCmd)
	addSolverFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepKind, "kind", config.SweepVelocity, "sweep variable: velocity, rpm or advance")
	sweepCmd.Flags().Float64Var(&sweepFrom, "from", 0, "first sweep value")
	sweepCmd.Flags().Float64Var(&sweepTo, "to", 20, "last sweep value")
	sweepCmd.Flags().IntVar(&sweepPoints, "points", config.DefaultSweepPoints, "number of points")
	sweepCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	sweepCmd.Flags().StringVar(&pngPath, "png", "", "write a CT/CP/efficiency chart")

	polarCmd := &cobra.Command{
		Use:   "polar [case.yaml]",
		Short: "query the airfoil coefficients of a case",
		Args:  cobra.ExactArgs(1),
		RunE:  queryPolar,
	}
	polarCmd.Flags().Float64Var(&alphaDeg, "alpha", 0, "angle of attack (deg)")
	polarCmd.Flags().Float64Var(&reynolds, "re", 100000, "Reynolds number")
	polarCmd.Flags().Float64Var(&mach, "mach", 0, "Mach number")

	exploreCmd := &cobra.Command{
		Use:   "explore [case.yaml]",
		Short: "tune the operating point interactively",
		Args:  cobra.ExactArgs(1),
		RunE:  exploreCase,
	}
	addFlowFlags(exploreCmd)
	addSolverFlags(exploreCmd)

	optimizeCmd := &cobra.Command{
		Use:   "optimize [case.yaml]",
		Short: "grid search rpm, velocity and collective pitch",
		Args:  cobra.ExactArgs(1),
		RunE:  optimizeCase,
	}
	addFlowFlags(optimizeCmd)
	addSolverFlags(optimizeCmd)
	optimizeCmd.Flags().StringArrayVar(&axes, "axis", nil, "grid axis name=from:to:n (rpm, velocity, pitch)")
	optimizeCmd.Flags().StringVar(&objective, "objective", "efficiency", "efficiency or thrust")
	optimizeCmd.Flags().Float64Var(&target, "target", 0, "thrust target (N) for the thrust objective")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "query the run catalog",
		RunE:  showHistory,
	}
	historyCmd.Flags().IntVar(&limit, "limit", 20, "number of runs")
	historyCmd.Flags().StringVar(&best, "best", "", "show the most efficient clean sweep point of a rotor")

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&pngPath, "png", "", "also write a PNG chart")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets [group]",
		Short: "list atmosphere and solver presets",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			groups := []string{"atmosphere", "solver"}
			if len(args) == 1 {
				groups = args
			}
			for _, g := range groups {
				presets := config.ListPresets(g)
				if len(presets) == 0 {
					fmt.Printf("no presets for group: %s\n", g)
					continue
				}
				fmt.Printf("%s presets:\n", g)
				for _, p := range presets {
					fmt.Printf("  %s\n", p)
				}
			}
			return nil
		},
	}

	rootCmd.AddCommand(solveCmd, sweepCmd, polarCmd, exploreCmd, optimizeCmd, listCmd, historyCmd, plotCmd, exportJSONCmd, exportCSVCmd, presetsCmd)
	return rootCmd
}

func addFlowFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&velocity, "velocity", 0, "free-stream velocity (m/s)")
	cmd.Flags().Float64Var(&rpm, "rpm", config.DefaultRPM, "rotational speed")
	cmd.Flags().Float64Var(&density, "density", config.DefaultDensity, "air density (kg/m3)")
	cmd.Flags().Float64Var(&speedOfSound, "speed-of-sound", 0, "speed of sound (m/s), 0 disables the Mach correction")
	cmd.Flags().StringVar(&atmosphere, "atmosphere", "", "atmosphere preset")
}

func addSolverFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&tolerance, "tol", config.DefaultTolerance, "bisection tolerance")
	cmd.Flags().IntVar(&maxIterations, "max-iter", config.DefaultMaxIterations, "bisection iteration cap")
	cmd.Flags().IntVar(&workers, "workers", 1, "concurrent elements or sweep points")
	cmd.Flags().StringVar(&solverPreset, "solver", "", "solver preset")
}

// loadCase reads the case file, applies presets and then any flag that was
// set explicitly. Flags override presets, presets override the file.
func loadCase(cmd *cobra.Command, path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load case: %w", err)
	}

	if atmosphere != "" && !cfg.ApplyPreset("atmosphere", atmosphere) {
		return nil, fmt.Errorf("unknown atmosphere preset: %s (available: %v)", atmosphere, config.ListPresets("atmosphere"))
	}
	if solverPreset != "" && !cfg.ApplyPreset("solver", solverPreset) {
		return nil, fmt.Errorf("unknown solver preset: %s (available: %v)", solverPreset, config.ListPresets("solver"))
	}

	flags := cmd.Flags()
	if flags.Changed("velocity") {
		cfg.Flow.Velocity = velocity
	}
	if flags.Changed("rpm") {
		cfg.Flow.RPM = rpm
	}
	if flags.Changed("density") {
		cfg.Flow.Density = density
	}
	if flags.Changed("speed-of-sound") {
		cfg.Flow.SpeedOfSound = speedOfSound
	}
	if flags.Changed("tol") {
		cfg.Solver.Tolerance = tolerance
	}
	if flags.Changed("max-iter") {
		cfg.Solver.MaxIterations = maxIterations
	}
	if flags.Changed("workers") {
		cfg.Solver.Workers = workers
	}
	if flags.Changed("kind") {
		cfg.Sweep.Kind = sweepKind
	}
	if flags.Changed("from") {
		cfg.Sweep.From = sweepFrom
	}
	if flags.Changed("to") {
		cfg.Sweep.To = sweepTo
	}
	if flags.Changed("points") {
		cfg.Sweep.Points = sweepPoints
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func openStore() (*storage.Store, error) {
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return nil, err
	}
	return st, nil
}

func openCatalog() (*catalog.Catalog, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, err
	}
	return catalog.Open(filepath.Join(dataDir, "catalog.db"))
}
