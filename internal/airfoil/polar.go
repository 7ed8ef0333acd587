package airfoil

import (
	"errors"
	"fmt"
	"math"
)

// Domain errors for coefficient tables.
var (
	// ErrEmptyPolar indicates a polar without any (alpha, CL, CD) rows.
	ErrEmptyPolar = errors.New("airfoil: polar has no points")

	// ErrEmptyAirfoil indicates an airfoil without any polar.
	ErrEmptyAirfoil = errors.New("airfoil: airfoil has no polars")

	// ErrUnordered indicates alpha or Reynolds values that are not strictly increasing.
	ErrUnordered = errors.New("airfoil: table not strictly increasing")

	// ErrColumnMismatch indicates alpha, CL and CD columns of different lengths.
	ErrColumnMismatch = errors.New("airfoil: column length mismatch")
)

// Polar holds the coefficients of one section at a fixed Reynolds number.
// Alpha is in radians and strictly increasing.
type Polar struct {
	Re    float64
	Alpha []float64
	CL    []float64
	CD    []float64
}

// Coefficients is one interpolated operating point.
type Coefficients struct {
	CL float64
	CD float64
}

// Airfoil is a family of polars sorted by ascending Reynolds number.
type Airfoil struct {
	Name   string
	Polars []Polar
}

func (p *Polar) Len() int { return len(p.Alpha) }

// Validate checks the table invariants the interpolator relies on.
func (p *Polar) Validate() error {
	if len(p.Alpha) == 0 {
		return ErrEmptyPolar
	}
	if len(p.CL) != len(p.Alpha) || len(p.CD) != len(p.Alpha) {
		return fmt.Errorf("%w: alpha=%d cl=%d cd=%d", ErrColumnMismatch, len(p.Alpha), len(p.CL), len(p.CD))
	}
	for i := 1; i < len(p.Alpha); i++ {
		if !(p.Alpha[i] > p.Alpha[i-1]) {
			return fmt.Errorf("%w: alpha[%d]=%g after %g (Re %g)", ErrUnordered, i, p.Alpha[i], p.Alpha[i-1], p.Re)
		}
	}
	for i := range p.Alpha {
		if math.IsNaN(p.Alpha[i]) || math.IsNaN(p.CL[i]) || math.IsNaN(p.CD[i]) {
			return fmt.Errorf("airfoil: NaN in polar row %d (Re %g)", i, p.Re)
		}
	}
	return nil
}

// Validate checks every polar and the Reynolds ordering.
func (a *Airfoil) Validate() error {
	if a == nil || len(a.Polars) == 0 {
		return ErrEmptyAirfoil
	}
	for i := range a.Polars {
		if err := a.Polars[i].Validate(); err != nil {
			return fmt.Errorf("polar %d: %w", i, err)
		}
		if i > 0 && !(a.Polars[i].Re > a.Polars[i-1].Re) {
			return fmt.Errorf("%w: Re[%d]=%g after %g", ErrUnordered, i, a.Polars[i].Re, a.Polars[i-1].Re)
		}
	}
	return nil
}

// ReynoldsRange returns the lowest and highest tabulated Reynolds numbers.
func (a *Airfoil) ReynoldsRange() (float64, float64) {
	if a == nil || len(a.Polars) == 0 {
		return 0, 0
	}
	return a.Polars[0].Re, a.Polars[len(a.Polars)-1].Re
}

func Deg2Rad(deg float64) float64 { return deg * math.Pi / 180.0 }

func Rad2Deg(rad float64) float64 { return rad * 180.0 / math.Pi }
