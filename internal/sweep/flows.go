package sweep

import (
	"math"

	"github.com/san-kum/propsim/internal/qprop"
)

// Linspace returns n values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	step := (hi - lo) / float64(n-1)
	out := make([]float64, n)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[n-1] = hi
	return out
}

// Velocities varies the free-stream velocity of base.
func Velocities(base qprop.Flow, from, to float64, n int) []qprop.Flow {
	vals := Linspace(from, to, n)
	flows := make([]qprop.Flow, len(vals))
	for i, v := range vals {
		flows[i] = base
		flows[i].Velocity = v
	}
	return flows
}

// Speeds varies the rotational speed of base, given in rpm.
func Speeds(base qprop.Flow, rpmFrom, rpmTo float64, n int) []qprop.Flow {
	vals := Linspace(rpmFrom, rpmTo, n)
	flows := make([]qprop.Flow, len(vals))
	for i, rpm := range vals {
		flows[i] = base
		flows[i].Omega = rpm * math.Pi / 30
	}
	return flows
}

// AdvanceRatios sets the velocity for each advance ratio J = V/(nD) at the
// rotational speed of base.
func AdvanceRatios(base qprop.Flow, diameter, jFrom, jTo float64, n int) []qprop.Flow {
	rps := base.Omega / (2 * math.Pi)
	vals := Linspace(jFrom, jTo, n)
	flows := make([]qprop.Flow, len(vals))
	for i, j := range vals {
		flows[i] = base
		flows[i].Velocity = j * rps * diameter
	}
	return flows
}
