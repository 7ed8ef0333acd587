package qprop

import (
	"fmt"
	"math"
)

// Residual evaluates the circulation mismatch of element e for the trial
// angle psi. ua is the axial and ut the tangential (Omega*r) free velocity;
// only the fluid properties of flow are read.
//
// The tip-loss factor has no real value when the wake advance ratio is
// negative, so the returned residual is NaN for such trial angles. The
// error is non-nil only when the airfoil cannot be interpolated.
func Residual(psi, ua, ut, rotorRadius float64, blades int, e *Element, flow Flow) (ResidualState, error) {
	var s ResidualState
	b := float64(blades)

	u := math.Sqrt(ua*ua + ut*ut)
	wa := 0.5*ua + 0.5*u*math.Sin(psi)
	wt := 0.5*ut + 0.5*u*math.Cos(psi)
	s.Va = wa - ua
	s.Vt = ut - wt

	s.W = math.Sqrt(wa*wa + wt*wt)
	s.Re = flow.Density * s.W * e.Chord / flow.Viscosity
	s.Phi = math.Atan(wa / wt)
	s.Alpha = e.Twist - s.Phi
	if flow.SpeedOfSound > 0 {
		s.Mach = s.W / flow.SpeedOfSound
	}

	c, err := e.Airfoil.At(s.Alpha, s.Re, s.Mach)
	if err != nil {
		return s, fmt.Errorf("qprop: interpolate at r=%g: %w", e.Radius, err)
	}
	s.CL, s.CD = c.CL, c.CD

	rr := e.Radius / rotorRadius
	s.LambdaW = rr * (wa / wt)
	f := (1 - rr) * 0.5 * b / s.LambdaW
	tipLoss := math.Acos(math.Exp(-f)) * 2 / math.Pi

	k := 4 * s.LambdaW * rotorRadius / (math.Pi * b * e.Radius)
	s.Gamma = s.Vt * (4 * math.Pi * e.Radius / b) * tipLoss * math.Sqrt(1+k*k)
	s.Residual = s.Gamma - 0.5*s.W*e.Chord*s.CL

	s.Cn = s.CL*wt/s.W - s.CD*wa/s.W
	s.Ct = s.CL*wa/s.W + s.CD*wt/s.W
	return s, nil
}
