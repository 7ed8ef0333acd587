// Package optim searches operating points and collective pitch for the
// best rotor performance under an objective.
package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/san-kum/propsim/internal/qprop"
	"github.com/san-kum/propsim/internal/sweep"
)

// Parameters a grid can vary. Pitch is a collective twist offset in
// degrees added to every element.
const (
	ParamRPM      = "rpm"
	ParamVelocity = "velocity"
	ParamPitch    = "pitch"
)

var ErrNoCandidate = errors.New("optim: no grid point solved cleanly")

// Objective scores a solved point; lower is better.
type Objective func(p *qprop.Performance) float64

// MaxEfficiency prefers the highest propulsive efficiency.
func MaxEfficiency() Objective {
	return func(p *qprop.Performance) float64 { return -p.Efficiency() }
}

// ThrustTarget prefers the point whose thrust is closest to thrust.
func ThrustTarget(thrust float64) Objective {
	return func(p *qprop.Performance) float64 { return math.Abs(p.Thrust - thrust) }
}

type Axis struct {
	Name   string
	Values []float64
}

// ParseAxis reads "name=from:to:n".
func ParseAxis(s string) (Axis, error) {
	name, rng, ok := strings.Cut(s, "=")
	if !ok {
		return Axis{}, fmt.Errorf("optim: axis %q: want name=from:to:n", s)
	}
	parts := strings.Split(rng, ":")
	if len(parts) != 3 {
		return Axis{}, fmt.Errorf("optim: axis %q: want name=from:to:n", s)
	}
	from, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return Axis{}, fmt.Errorf("optim: axis %q: %w", s, err)
	}
	to, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return Axis{}, fmt.Errorf("optim: axis %q: %w", s, err)
	}
	n, err := strconv.Atoi(parts[2])
	if err != nil || n < 1 {
		return Axis{}, fmt.Errorf("optim: axis %q: point count must be a positive integer", s)
	}
	return Axis{Name: strings.TrimSpace(name), Values: sweep.Linspace(from, to, n)}, nil
}

// Candidate is a solved grid point.
type Candidate struct {
	Params      map[string]float64
	Score       float64
	Performance *qprop.Performance
}

type GridSearch struct {
	axes      []Axis
	evaluated int
}

func NewGridSearch(axes ...Axis) (*GridSearch, error) {
	if len(axes) == 0 {
		return nil, errors.New("optim: no axes")
	}
	seen := map[string]bool{}
	for _, a := range axes {
		switch a.Name {
		case ParamRPM, ParamVelocity, ParamPitch:
		default:
			return nil, fmt.Errorf("optim: unknown parameter %q", a.Name)
		}
		if seen[a.Name] {
			return nil, fmt.Errorf("optim: parameter %q given twice", a.Name)
		}
		if len(a.Values) == 0 {
			return nil, fmt.Errorf("optim: parameter %q has no values", a.Name)
		}
		seen[a.Name] = true
	}
	return &GridSearch{axes: axes}, nil
}

// Evaluated returns the number of grid points solved by the last Search.
func (g *GridSearch) Evaluated() int { return g.evaluated }

// Search solves every grid point and returns the best one. Points with
// unconverged or unbracketed elements are not candidates. Malformed input
// at any point aborts the search.
func (g *GridSearch) Search(ctx context.Context, rotor *qprop.Rotor, flow qprop.Flow, cfg qprop.Config, obj Objective) (*Candidate, error) {
	g.evaluated = 0
	var best *Candidate
	current := make(map[string]float64, len(g.axes))
	if err := g.searchRecursive(ctx, 0, current, rotor, flow, cfg, obj, &best); err != nil {
		return nil, err
	}
	if best == nil {
		return nil, ErrNoCandidate
	}
	return best, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	rotor *qprop.Rotor,
	flow qprop.Flow,
	cfg qprop.Config,
	obj Objective,
	best **Candidate,
) error {
	if depth == len(g.axes) {
		if err := ctx.Err(); err != nil {
			return err
		}
		r, f := apply(rotor, flow, current)
		perf, err := qprop.Solve(r, f, cfg)
		g.evaluated++
		if errors.Is(err, qprop.ErrMalformedInput) {
			return err
		}
		if perf == nil || err != nil || len(perf.Unconverged()) > 0 {
			return nil
		}

		score := obj(perf)
		if *best == nil || score < (*best).Score {
			params := make(map[string]float64, len(current))
			for k, v := range current {
				params[k] = v
			}
			*best = &Candidate{Params: params, Score: score, Performance: perf}
		}
		return nil
	}

	axis := g.axes[depth]
	for _, val := range axis.Values {
		current[axis.Name] = val
		if err := g.searchRecursive(ctx, depth+1, current, rotor, flow, cfg, obj, best); err != nil {
			return err
		}
	}
	delete(current, axis.Name)
	return nil
}

// apply returns the rotor and flow with the grid parameters set. The rotor
// is copied only when the pitch changes.
func apply(rotor *qprop.Rotor, flow qprop.Flow, params map[string]float64) (*qprop.Rotor, qprop.Flow) {
	if v, ok := params[ParamRPM]; ok {
		flow.Omega = v * math.Pi / 30
	}
	if v, ok := params[ParamVelocity]; ok {
		flow.Velocity = v
	}
	pitch, ok := params[ParamPitch]
	if !ok || pitch == 0 || rotor == nil {
		return rotor, flow
	}

	out := *rotor
	out.Elements = make([]qprop.Element, len(rotor.Elements))
	offset := pitch * math.Pi / 180
	for i, e := range rotor.Elements {
		e.Twist += offset
		out.Elements[i] = e
	}
	return &out, flow
}
