package qprop

import (
	"errors"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/propsim/internal/airfoil"
)

// elementResult is the outcome of one element solve, stored by index so
// the totals can be summed in element order whatever the scheduling.
type elementResult struct {
	sol ElementSolution
	err *BracketError
}

// Solve computes the performance of rotor at the operating point flow.
//
// Inputs are validated before any iteration; a rejected input returns a nil
// Performance and an *InputError. Elements without a bracketed root do not
// abort the solve: they are marked StatusBracketFailed, contribute nothing
// to the totals, and the returned error joins one *BracketError per failed
// element. The Performance is returned in that case too.
func Solve(rotor *Rotor, flow Flow, cfg Config) (*Performance, error) {
	if err := validate(rotor, flow, cfg); err != nil {
		return nil, err
	}

	n := len(rotor.Elements)
	radius := rotor.Radius()
	results := make([]elementResult, n)

	run := func(i int) error {
		e := &rotor.Elements[i]
		sol, err := SolveElement(e, radius, rotor.Blades, flow, cfg)
		if err != nil {
			var be *BracketError
			if !errors.As(err, &be) {
				return err
			}
			failed := *be
			failed.Element = i
			results[i].err = &failed
			return nil
		}
		results[i].sol = sol
		return nil
	}

	if cfg.Workers > 1 && n > 1 {
		var g errgroup.Group
		g.SetLimit(cfg.Workers)
		for i := 0; i < n; i++ {
			g.Go(func() error { return run(i) })
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i := 0; i < n; i++ {
			if err := run(i); err != nil {
				return nil, err
			}
		}
	}

	return aggregate(rotor, flow, results)
}

func aggregate(rotor *Rotor, flow Flow, results []elementResult) (*Performance, error) {
	perf := newPerformance(len(results))
	perf.Omega = flow.Omega
	rho := flow.Density

	var errs []error
	for i, res := range results {
		e := &rotor.Elements[i]
		perf.Radius[i] = e.Radius
		if res.err != nil {
			perf.Status[i] = StatusBracketFailed
			errs = append(errs, res.err)
			continue
		}

		s := res.sol.State
		perf.Residuals[i] = s.Residual
		perf.Gamma[i] = s.Gamma
		perf.LambdaW[i] = s.LambdaW
		perf.W[i] = s.W
		perf.Phi[i] = s.Phi
		perf.Psi[i] = res.sol.Psi
		perf.Iterations[i] = res.sol.Iterations
		perf.DTdr[i] = 0.5 * rho * s.W * s.W * s.Cn * e.Chord
		perf.DQdr[i] = 0.5 * rho * s.W * s.W * s.Ct * e.Chord * e.Radius
		perf.Thrust += perf.DTdr[i] * e.Width
		perf.Torque += perf.DQdr[i] * e.Width

		if res.sol.Converged {
			perf.Status[i] = StatusConverged
		} else {
			perf.Status[i] = StatusUnconverged
		}
	}

	b := float64(rotor.Blades)
	perf.Thrust *= b
	perf.Torque *= b

	d := rotor.Diameter
	rps := flow.Omega / (2 * math.Pi)
	perf.CT = perf.Thrust / (rho * math.Pow(rps, 2) * math.Pow(d, 4))
	perf.CQ = perf.Torque / (rho * math.Pow(rps, 2) * math.Pow(d, 5))
	perf.CP = 2 * math.Pi * perf.CQ
	perf.J = flow.Velocity / (rps * d)

	return perf, errors.Join(errs...)
}

func validate(rotor *Rotor, flow Flow, cfg Config) error {
	bad := func(field, reason string) error {
		return &InputError{Field: field, Reason: reason}
	}

	if rotor == nil || len(rotor.Elements) == 0 {
		return bad("rotor.elements", "rotor has no elements")
	}
	if !(rotor.Diameter > 0) || math.IsInf(rotor.Diameter, 0) {
		return bad("rotor.diameter", "must be positive and finite")
	}
	if rotor.Blades < 1 {
		return bad("rotor.blades", "need at least one blade")
	}

	checked := make(map[*airfoil.Airfoil]bool)
	for i := range rotor.Elements {
		e := &rotor.Elements[i]
		switch {
		case e.Airfoil == nil:
			return &InputError{Field: elementField(i, "airfoil"), Reason: "missing", Cause: airfoil.ErrEmptyAirfoil}
		case !(e.Chord > 0):
			return bad(elementField(i, "chord"), "must be positive")
		case !(e.Width > 0):
			return bad(elementField(i, "width"), "must be positive")
		case !(e.Radius > 0):
			return bad(elementField(i, "radius"), "must be positive")
		case math.IsNaN(e.Twist) || math.IsInf(e.Twist, 0):
			return bad(elementField(i, "twist"), "must be finite")
		}
		if checked[e.Airfoil] {
			continue
		}
		if err := e.Airfoil.Validate(); err != nil {
			return &InputError{Field: elementField(i, "airfoil"), Reason: "invalid table", Cause: err}
		}
		checked[e.Airfoil] = true
	}

	switch {
	case math.IsNaN(flow.Velocity) || math.IsInf(flow.Velocity, 0):
		return bad("flow.velocity", "must be finite")
	case !(flow.Omega > 0) || math.IsInf(flow.Omega, 0):
		return bad("flow.omega", "must be positive and finite")
	case !(flow.Density > 0):
		return bad("flow.density", "must be positive")
	case !(flow.Viscosity > 0):
		return bad("flow.viscosity", "must be positive")
	case flow.SpeedOfSound < 0 || math.IsNaN(flow.SpeedOfSound):
		return bad("flow.speed_of_sound", "must be zero or positive")
	}

	switch {
	case !(cfg.Tolerance > 0):
		return bad("solver.tolerance", "must be positive")
	case cfg.MaxIterations < 1:
		return bad("solver.max_iterations", "need at least one iteration")
	case cfg.Workers < 0:
		return bad("solver.workers", "must not be negative")
	}
	return nil
}

func elementField(i int, name string) string {
	return fmt.Sprintf("rotor.elements[%d].%s", i, name)
}
