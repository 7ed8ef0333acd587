package qprop

import "math"

const (
	psiLower = -math.Pi / 2
	psiUpper = math.Pi / 2
)

// SolveElement bisects the residual of e over psi in [-pi/2, +pi/2] at the
// operating point in flow.
//
// An endpoint with a NaN residual carries no sign. While one end is NaN a
// NaN midpoint replaces it, a midpoint of opposite sign to the finite end
// replaces it and closes the bracket, and a midpoint of the same sign
// replaces the finite end. If the search narrows to cfg.Tolerance, or the
// iterations run out, without a sign change the element fails with a
// *BracketError, as do two NaN endpoints or two finite endpoints of the same
// sign. Iteration stops once both |residual| and the bracket half-width are
// within cfg.Tolerance; when cfg.MaxIterations runs out on a closed bracket
// the last midpoint is returned with Converged false.
func SolveElement(e *Element, rotorRadius float64, blades int, flow Flow, cfg Config) (ElementSolution, error) {
	ua := flow.Velocity
	ut := flow.Omega * e.Radius
	eval := func(psi float64) (ResidualState, error) {
		return Residual(psi, ua, ut, rotorRadius, blades, e, flow)
	}

	psi1, psi2 := psiLower, psiUpper
	lo, err := eval(psi1)
	if err != nil {
		return ElementSolution{}, err
	}
	hi, err := eval(psi2)
	if err != nil {
		return ElementSolution{}, err
	}
	f1, f2 := lo.Residual, hi.Residual
	noBracket := &BracketError{Element: -1, Radius: e.Radius, Lower: f1, Upper: f2}
	if (math.IsNaN(f1) && math.IsNaN(f2)) || f1*f2 > 0 {
		return ElementSolution{}, noBracket
	}

	var sol ElementSolution
	for j := 0; j < cfg.MaxIterations; j++ {
		c := 0.5 * (psi1 + psi2)
		s, err := eval(c)
		if err != nil {
			return ElementSolution{}, err
		}
		fc := s.Residual
		sol = ElementSolution{Psi: c, State: s, Iterations: j + 1}

		if math.Abs(fc) <= cfg.Tolerance && 0.5*(psi2-psi1) <= cfg.Tolerance {
			sol.Converged = true
			break
		}
		psi1, f1, psi2, f2 = narrow(psi1, f1, psi2, f2, c, fc)

		if unbracketed(f1, f2) && 0.5*(psi2-psi1) <= cfg.Tolerance {
			return ElementSolution{}, noBracket
		}
	}
	if !sol.Converged && unbracketed(f1, f2) {
		return ElementSolution{}, noBracket
	}
	return sol, nil
}

// narrow replaces one end of the bracket [psi1, psi2] with the midpoint c
// whose residual is fc.
func narrow(psi1, f1, psi2, f2, c, fc float64) (float64, float64, float64, float64) {
	switch {
	case math.IsNaN(f1):
		switch {
		case math.IsNaN(fc):
			return c, f1, psi2, f2
		case fc*f2 <= 0:
			return c, fc, psi2, f2
		default:
			return psi1, f1, c, fc
		}
	case math.IsNaN(f2):
		switch {
		case math.IsNaN(fc):
			return psi1, f1, c, f2
		case fc*f1 <= 0:
			return psi1, f1, c, fc
		default:
			return c, fc, psi2, f2
		}
	case f1*fc <= 0:
		// an exact zero at either point stays on the bracket
		return psi1, f1, c, fc
	default:
		return c, fc, psi2, f2
	}
}

// unbracketed reports whether the bracket still has an end without a sign.
func unbracketed(f1, f2 float64) bool {
	return math.IsNaN(f1) || math.IsNaN(f2)
}
