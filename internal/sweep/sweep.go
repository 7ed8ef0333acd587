// Package sweep solves a rotor over a series of operating points.
package sweep

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/propsim/internal/qprop"
)

var ErrNoPoints = errors.New("sweep: no operating points")

// Metric summarises a sweep, observing points in input order.
type Metric interface {
	Name() string
	Observe(p Point)
	Value() float64
	Reset()
}

// Options control how a sweep runs.
type Options struct {
	Workers int             // operating points solved concurrently; <= 1 runs serially
	Metrics []Metric        // observed after all points are solved
	Logger  log.FieldLogger // defaults to the logrus standard logger
}

// Point is the outcome of one operating point.
type Point struct {
	Flow        qprop.Flow
	J           float64
	CT          float64
	CP          float64
	Efficiency  float64
	Thrust      float64
	Torque      float64
	Power       float64
	Unconverged []int
	Failed      []int
	Err         error `json:"-"`

	Performance *qprop.Performance `json:"-"`
}

// Clean reports whether every element of the point converged.
func (p Point) Clean() bool {
	return p.Err == nil && len(p.Unconverged) == 0 && len(p.Failed) == 0
}

type Result struct {
	Rotor   string
	Points  []Point
	Metrics map[string]float64
}

// Run solves rotor at each flow. Points are returned in input order. A
// point whose elements fail to bracket keeps its partial performance and
// the error in Point.Err; malformed input and context cancellation abort
// the whole sweep.
func Run(ctx context.Context, rotor *qprop.Rotor, flows []qprop.Flow, cfg qprop.Config, opts Options) (*Result, error) {
	if len(flows) == 0 {
		return nil, ErrNoPoints
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.StandardLogger()
	}

	points := make([]Point, len(flows))
	solve := func(ctx context.Context, i int) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		p, err := solvePoint(rotor, flows[i], cfg)
		if err != nil {
			return fmt.Errorf("sweep: point %d: %w", i, err)
		}
		points[i] = p
		report(logger, i, p)
		return nil
	}

	if opts.Workers > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(opts.Workers)
		for i := range flows {
			g.Go(func() error { return solve(gctx, i) })
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i := range flows {
			if err := solve(ctx, i); err != nil {
				return nil, err
			}
		}
	}

	res := &Result{Points: points, Metrics: make(map[string]float64, len(opts.Metrics))}
	if rotor != nil {
		res.Rotor = rotor.Name
	}
	for _, m := range opts.Metrics {
		m.Reset()
		for _, p := range points {
			m.Observe(p)
		}
		res.Metrics[m.Name()] = m.Value()
	}
	return res, nil
}

func solvePoint(rotor *qprop.Rotor, flow qprop.Flow, cfg qprop.Config) (Point, error) {
	perf, err := qprop.Solve(rotor, flow, cfg)
	if perf == nil {
		return Point{}, err
	}
	return Point{
		Flow:        flow,
		J:           perf.J,
		CT:          perf.CT,
		CP:          perf.CP,
		Efficiency:  perf.Efficiency(),
		Thrust:      perf.Thrust,
		Torque:      perf.Torque,
		Power:       perf.Power(),
		Unconverged: perf.Unconverged(),
		Failed:      perf.Failed(),
		Err:         err,
		Performance: perf,
	}, nil
}

func report(logger log.FieldLogger, i int, p Point) {
	fields := log.Fields{
		"point":    i,
		"velocity": p.Flow.Velocity,
		"rpm":      p.Flow.RPM(),
		"J":        p.J,
	}
	switch {
	case len(p.Failed) > 0:
		logger.WithFields(fields).WithField("elements", p.Failed).Warn("elements without bracketed root")
	case len(p.Unconverged) > 0:
		logger.WithFields(fields).WithField("elements", p.Unconverged).Warn("elements did not converge")
	default:
		logger.WithFields(fields).WithField("thrust", p.Thrust).Debug("point solved")
	}
}
