package qprop

import (
	"math"

	"github.com/san-kum/propsim/internal/airfoil"
)

// Element is one radial station of a blade.
type Element struct {
	Chord   float64 // m
	Twist   float64 // pitch angle beta, rad
	Radius  float64 // m
	Width   float64 // radial extent dr, m
	Airfoil *airfoil.Airfoil
}

// Rotor owns its elements. Elements are usually ordered by radius but are
// solved independently.
type Rotor struct {
	Name     string
	Diameter float64
	Blades   int
	Elements []Element
}

func (r *Rotor) Radius() float64 { return 0.5 * r.Diameter }

// Flow is one operating point plus the fluid properties.
type Flow struct {
	Velocity     float64 // free-stream axial velocity, m/s
	Omega        float64 // rotational speed, rad/s
	Density      float64 // kg/m^3
	Viscosity    float64 // dynamic viscosity, Pa s
	SpeedOfSound float64 // m/s; 0 disables the Mach correction
}

// RPM returns the rotational speed in revolutions per minute.
func (f Flow) RPM() float64 { return f.Omega * 30 / math.Pi }

// Config holds the solver parameters.
type Config struct {
	Tolerance     float64
	MaxIterations int
	Workers       int
}

func DefaultConfig() Config {
	return Config{
		Tolerance:     1e-6,
		MaxIterations: 100,
		Workers:       1,
	}
}

// ResidualState is the outcome of one residual evaluation.
type ResidualState struct {
	Residual float64
	W        float64 // relative velocity magnitude
	Phi      float64 // inflow angle
	Gamma    float64 // circulation
	LambdaW  float64 // local wake advance ratio
	Va       float64 // axial induced velocity
	Vt       float64 // tangential induced velocity
	Cn       float64
	Ct       float64
	Alpha    float64
	Re       float64
	Mach     float64
	CL       float64
	CD       float64
}

// ElementSolution is the result of the bisection on one element.
type ElementSolution struct {
	Psi        float64
	State      ResidualState
	Iterations int
	Converged  bool
}

type ElementStatus int

const (
	StatusConverged ElementStatus = iota
	StatusUnconverged
	StatusBracketFailed
)

func (s ElementStatus) String() string {
	switch s {
	case StatusConverged:
		return "converged"
	case StatusUnconverged:
		return "unconverged"
	case StatusBracketFailed:
		return "bracket-failed"
	default:
		return "unknown"
	}
}

// Performance is the aggregated result of a rotor solve. The per-element
// slices follow the order of Rotor.Elements.
type Performance struct {
	Thrust float64 // N
	Torque float64 // N m
	CT     float64
	CQ     float64
	CP     float64
	J      float64
	Omega  float64

	Residuals  []float64
	Gamma      []float64
	LambdaW    []float64
	Radius     []float64
	W          []float64
	Phi        []float64
	DTdr       []float64
	DQdr       []float64
	Psi        []float64
	Iterations []int
	Status     []ElementStatus
}

func newPerformance(n int) *Performance {
	return &Performance{
		Residuals:  make([]float64, n),
		Gamma:      make([]float64, n),
		LambdaW:    make([]float64, n),
		Radius:     make([]float64, n),
		W:          make([]float64, n),
		Phi:        make([]float64, n),
		DTdr:       make([]float64, n),
		DQdr:       make([]float64, n),
		Psi:        make([]float64, n),
		Iterations: make([]int, n),
		Status:     make([]ElementStatus, n),
	}
}

// Len returns the number of elements.
func (p *Performance) Len() int { return len(p.Radius) }

// Power returns the shaft power Q*Omega in watts.
func (p *Performance) Power() float64 { return p.Torque * p.Omega }

// Efficiency returns the propulsive efficiency J*CT/CP, or 0 when the rotor
// absorbs no power.
func (p *Performance) Efficiency() float64 {
	if p.CP <= 0 {
		return 0
	}
	return p.J * p.CT / p.CP
}

// Unconverged lists the elements whose bisection hit the iteration cap.
func (p *Performance) Unconverged() []int {
	var idx []int
	for i, s := range p.Status {
		if s == StatusUnconverged {
			idx = append(idx, i)
		}
	}
	return idx
}

// Failed lists the elements without a sign change over the psi bracket.
func (p *Performance) Failed() []int {
	var idx []int
	for i, s := range p.Status {
		if s == StatusBracketFailed {
			idx = append(idx, i)
		}
	}
	return idx
}

// Err reports unconverged elements as a *ConvergenceError, nil otherwise.
func (p *Performance) Err() error {
	idx := p.Unconverged()
	if len(idx) == 0 {
		return nil
	}
	res := make([]float64, len(idx))
	for k, i := range idx {
		res[k] = p.Residuals[i]
	}
	return &ConvergenceError{Elements: idx, Residuals: res}
}
