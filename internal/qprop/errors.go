package qprop

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors for rotor solves.
var (
	// ErrMalformedInput indicates rotor, flow or solver parameters that cannot be solved.
	ErrMalformedInput = errors.New("qprop: malformed input")

	// ErrBracket indicates an element whose residual has no sign change over [-pi/2, +pi/2].
	ErrBracket = errors.New("qprop: residual does not change sign over psi bracket")

	// ErrNotConverged indicates elements that hit the iteration cap.
	ErrNotConverged = errors.New("qprop: bisection did not converge")
)

// InputError describes the offending input of a rejected solve.
type InputError struct {
	Field  string
	Reason string
	Cause  error
}

func (e *InputError) Error() string {
	msg := fmt.Sprintf("qprop: malformed input: %s: %s", e.Field, e.Reason)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *InputError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrMalformedInput}
	}
	return []error{ErrMalformedInput, e.Cause}
}

// BracketError carries the endpoint residuals of a failed element.
type BracketError struct {
	Element int
	Radius  float64
	Lower   float64 // residual at psi = -pi/2
	Upper   float64 // residual at psi = +pi/2
}

func (e *BracketError) Error() string {
	return fmt.Sprintf("qprop: element %d (r=%.5g m): residual %g at -pi/2 and %g at +pi/2 do not bracket a root",
		e.Element, e.Radius, e.Lower, e.Upper)
}

func (e *BracketError) Unwrap() error {
	return ErrBracket
}

// ConvergenceError lists unconverged elements and their final residuals.
type ConvergenceError struct {
	Elements  []int
	Residuals []float64
}

func (e *ConvergenceError) Error() string {
	parts := make([]string, len(e.Elements))
	for k, i := range e.Elements {
		parts[k] = fmt.Sprintf("%d (%.3g)", i, e.Residuals[k])
	}
	return fmt.Sprintf("qprop: %d element(s) did not converge: %s", len(e.Elements), strings.Join(parts, ", "))
}

func (e *ConvergenceError) Unwrap() error {
	return ErrNotConverged
}
