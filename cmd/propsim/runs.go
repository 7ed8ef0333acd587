package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/propsim/internal/export"
	"github.com/san-kum/propsim/internal/storage"
	"github.com/san-kum/propsim/internal/viz"
)

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tNAME\tTIME\tELEMENTS\tPOINTS\tTHRUST")
	for _, run := range runs {
		points := run.Points
		if run.Kind == storage.KindSolve {
			points = 1
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%.4f\n",
			run.ID,
			run.Kind,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Elements,
			points,
			run.Thrust,
		)
	}
	return w.Flush()
}

func showHistory(cmd *cobra.Command, args []string) error {
	cat, err := openCatalog()
	if err != nil {
		return err
	}
	defer cat.Close()

	if best != "" {
		p, err := cat.Best(best)
		if err != nil {
			return err
		}
		fmt.Printf("best point for %s (run %s):\n", best, p.RunID)
		fmt.Printf("  V %.2f m/s  %.0f rpm  J %.4f\n", p.Velocity, p.RPM, p.J)
		fmt.Printf("  eta %.4f  CT %.5f  CP %.5f  T %.4f N\n", p.Efficiency, p.CT, p.CP, p.Thrust)
		return nil
	}

	runs, err := cat.Recent(limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("catalog is empty")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tNAME\tTIME\tTHRUST\tETA\tFAILED")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.4f\t%.3f\t%d\n",
			r.ID, r.Kind, r.Name, r.CreatedAt.Format("2006-01-02 15:04:05"), r.Thrust, r.Efficiency, r.Failed)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	data, err := export.ReadRun(storage.New(dataDir), args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", data.Meta.ID)
	fmt.Printf("rotor: %s\n\n", data.Meta.Name)

	if len(data.Sweep) > 0 {
		fmt.Println(viz.SweepPlot(data.Sweep))
		fmt.Println()
		fmt.Println(viz.EfficiencyPlot(data.Sweep))
	} else {
		dTdr := make([]float64, len(data.Elements))
		for i, e := range data.Elements {
			dTdr[i] = e.DTdr
		}
		plot := viz.LoadingPlot(dTdr)
		if plot == "" {
			return fmt.Errorf("no data to plot")
		}
		fmt.Println(plot)
	}

	if pngPath != "" {
		if err := export.Chart(data, pngPath); err != nil {
			return err
		}
		fmt.Printf("\nchart: %s\n", pngPath)
	}
	return nil
}

// output returns the --out file or stdout.
func output() (io.WriteCloser, error) {
	if outPath == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(outPath)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func exportJSON(cmd *cobra.Command, args []string) error {
	data, err := export.ReadRun(storage.New(dataDir), args[0])
	if err != nil {
		return err
	}
	if outPath != "" {
		return export.ExportJSON(outPath, data)
	}
	return export.WriteJSON(os.Stdout, data)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	data, err := export.ReadRun(storage.New(dataDir), args[0])
	if err != nil {
		return err
	}
	w, err := output()
	if err != nil {
		return err
	}
	if err := export.WriteCSV(w, data); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}
