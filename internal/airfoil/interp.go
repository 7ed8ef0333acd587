package airfoil

import "math"

const (
	// StallDrag is the drag coefficient reached at +/-90 degrees.
	StallDrag = 2.0

	// MachLimit bounds the Prandtl-Glauert correction; at or above it CL is left as is.
	MachLimit = 0.99
)

// lerp interpolates linearly between (x1,y1) and (x2,y2).
// The (1-t)*y1 + t*y2 form returns y1 and y2 exactly at the endpoints.
func lerp(x1, y1, x2, y2, xq float64) float64 {
	if x2 == x1 {
		return y1
	}
	t := (xq - x1) / (x2 - x1)
	return (1-t)*y1 + t*y2
}

// At interpolates the polar at angle of attack alpha (radians).
//
// Below the table CL is held at its first value and CD runs linearly to
// StallDrag at -90 degrees; above the table the same rule applies towards
// +90 degrees. Queries outside the table are never errors.
func (p *Polar) At(alpha float64) (Coefficients, error) {
	n := len(p.Alpha)
	if n == 0 {
		return Coefficients{}, ErrEmptyPolar
	}

	if alpha <= p.Alpha[0] {
		return Coefficients{
			CL: p.CL[0],
			CD: lerp(-math.Pi/2, StallDrag, p.Alpha[0], p.CD[0], alpha),
		}, nil
	}
	if alpha > p.Alpha[n-1] {
		return Coefficients{
			CL: p.CL[n-1],
			CD: lerp(p.Alpha[n-1], p.CD[n-1], math.Pi/2, StallDrag, alpha),
		}, nil
	}

	for i := 1; i < n; i++ {
		if p.Alpha[i-1] < alpha && alpha <= p.Alpha[i] {
			return Coefficients{
				CL: lerp(p.Alpha[i-1], p.CL[i-1], p.Alpha[i], p.CL[i], alpha),
				CD: lerp(p.Alpha[i-1], p.CD[i-1], p.Alpha[i], p.CD[i], alpha),
			}, nil
		}
	}

	// only reachable with a NaN query
	return Coefficients{CL: math.NaN(), CD: math.NaN()}, nil
}

// bracket returns the indices of the polars enclosing re.
func (a *Airfoil) bracket(re float64) (lo, hi int) {
	last := len(a.Polars) - 1
	switch {
	case re <= a.Polars[0].Re:
		return 0, 0
	case re > a.Polars[last].Re:
		return last, last
	}
	for i := 1; i <= last; i++ {
		if a.Polars[i-1].Re < re && re <= a.Polars[i].Re {
			return i - 1, i
		}
	}
	return 0, last
}

// At interpolates the airfoil at angle of attack alpha (radians), Reynolds
// number re and Mach number mach. Pass mach = 0 to skip compressibility.
//
// Reynolds numbers outside the tabulated range use the nearest polar. When
// 0 < mach < MachLimit the lift coefficient is divided by sqrt(1-mach^2);
// drag is never corrected.
func (a *Airfoil) At(alpha, re, mach float64) (Coefficients, error) {
	if a == nil || len(a.Polars) == 0 {
		return Coefficients{}, ErrEmptyAirfoil
	}

	lo, hi := a.bracket(re)
	lower, err := a.Polars[lo].At(alpha)
	if err != nil {
		return Coefficients{}, err
	}

	c := lower
	if hi != lo {
		upper, err := a.Polars[hi].At(alpha)
		if err != nil {
			return Coefficients{}, err
		}
		reLo, reHi := a.Polars[lo].Re, a.Polars[hi].Re
		c = Coefficients{
			CL: lerp(reLo, lower.CL, reHi, upper.CL, re),
			CD: lerp(reLo, lower.CD, reHi, upper.CD, re),
		}
	}

	if mach > 0 && mach < MachLimit {
		c.CL /= math.Sqrt(1 - mach*mach)
	}
	return c, nil
}
