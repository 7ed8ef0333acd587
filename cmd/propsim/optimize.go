package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/propsim/internal/optim"
	"github.com/san-kum/propsim/internal/viz"
)

func optimizeCase(cmd *cobra.Command, args []string) error {
	if len(axes) == 0 {
		return fmt.Errorf("at least one --axis is required")
	}
	grid := make([]optim.Axis, len(axes))
	for i, s := range axes {
		a, err := optim.ParseAxis(s)
		if err != nil {
			return err
		}
		grid[i] = a
	}
	search, err := optim.NewGridSearch(grid...)
	if err != nil {
		return err
	}

	var obj optim.Objective
	switch objective {
	case "efficiency":
		obj = optim.MaxEfficiency()
	case "thrust":
		if !cmd.Flags().Changed("target") {
			return fmt.Errorf("the thrust objective needs --target")
		}
		obj = optim.ThrustTarget(target)
	default:
		return fmt.Errorf("unknown objective: %s (available: efficiency, thrust)", objective)
	}

	cfg, rotor, err := buildCase(cmd, args[0])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	flow := cfg.OperatingPoint()
	best, err := search.Search(ctx, rotor, flow, cfg.SolverParams(), obj)
	log.WithField("points", search.Evaluated()).Debug("grid search done")
	if err != nil {
		return err
	}

	names := make([]string, 0, len(best.Params))
	for k := range best.Params {
		names = append(names, k)
	}
	sort.Strings(names)
	fmt.Printf("best of %d grid points:\n", search.Evaluated())
	for _, k := range names {
		fmt.Printf("  %s: %.4f\n", k, best.Params[k])
		switch k {
		case optim.ParamRPM:
			flow.Omega = best.Performance.Omega
		case optim.ParamVelocity:
			flow.Velocity = best.Params[k]
		}
	}
	fmt.Println()
	fmt.Println(viz.Summary(rotor.Name, flow, best.Performance))
	return nil
}
