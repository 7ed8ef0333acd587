package airfoil

import (
	"fmt"
	"math"
)

// AnalyticParams are the section coefficients of Drela's QPROP airfoil model.
type AnalyticParams struct {
	CL0   float64 `yaml:"cl0"`   // lift coefficient at zero alpha
	CLa   float64 `yaml:"cla"`   // lift slope (1/rad)
	CLmin float64 `yaml:"clmin"` // negative stall
	CLmax float64 `yaml:"clmax"` // positive stall
	CD0   float64 `yaml:"cd0"`   // minimum drag
	CD2u  float64 `yaml:"cd2u"`  // quadratic drag factor above CLCD0
	CD2l  float64 `yaml:"cd2l"`  // quadratic drag factor below CLCD0
	CLCD0 float64 `yaml:"clcd0"` // lift coefficient at minimum drag
	REref float64 `yaml:"reref"` // reference Reynolds number of the coefficients
	REexp float64 `yaml:"reexp"` // Reynolds scaling exponent, typically -0.5
}

// AnalyticReynolds returns the Reynolds grid used by Analytic.
func AnalyticReynolds() []float64 {
	return []float64{30000, 50000, 75000, 100000, 150000, 200000, 500000}
}

// AnalyticAlphas returns the angle-of-attack grid (degrees) used by Analytic.
func AnalyticAlphas() []float64 {
	return []float64{
		-45, -30, -20, -15, -12, -10, -9, -8, -7, -6, -5, -4, -3, -2, -1, 0,
		1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 12, 15, 20, 30, 45,
	}
}

func (p AnalyticParams) validate() error {
	if p.CLa == 0 {
		return fmt.Errorf("airfoil: analytic lift slope must be nonzero")
	}
	if p.CLmin >= p.CLmax {
		return fmt.Errorf("airfoil: analytic clmin %g must be below clmax %g", p.CLmin, p.CLmax)
	}
	if p.REref <= 0 {
		return fmt.Errorf("airfoil: analytic reref must be positive, got %g", p.REref)
	}
	return nil
}

// Analytic tabulates the QPROP analytic model: linear lift clipped at stall,
// quadratic drag scaled by (Re/REref)^REexp, plus a post-stall term that brings
// drag towards 2.0 at 90 degrees.
func Analytic(name string, p AnalyticParams) (*Airfoil, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	res := AnalyticReynolds()
	alphas := AnalyticAlphas()
	aCD0 := (p.CLCD0 - p.CL0) / p.CLa

	foil := &Airfoil{Name: name, Polars: make([]Polar, len(res))}
	for i, re := range res {
		polar := Polar{
			Re:    re,
			Alpha: make([]float64, len(alphas)),
			CL:    make([]float64, len(alphas)),
			CD:    make([]float64, len(alphas)),
		}
		scale := math.Pow(re/p.REref, p.REexp)

		for j, deg := range alphas {
			alpha := Deg2Rad(deg)
			cl := math.Min(math.Max(p.CL0+p.CLa*alpha, p.CLmin), p.CLmax)

			cd2 := p.CD2l
			if cl >= p.CLCD0 {
				cd2 = p.CD2u
			}
			cd := (p.CD0 + cd2*(cl-p.CLCD0)*(cl-p.CLCD0)) * scale
			if cl == p.CLmax || cl == p.CLmin {
				s := math.Sin(alpha - aCD0)
				cd += 2 * s * s
			}

			polar.Alpha[j] = alpha
			polar.CL[j] = cl
			polar.CD[j] = cd
		}
		foil.Polars[i] = polar
	}
	return foil, nil
}
