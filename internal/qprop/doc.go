// Package qprop implements the blade-element / momentum-theory propeller
// solver of Drela's QPROP.
//
// The package is built from three layers:
//
//   - [Residual]: the circulation mismatch at one blade element for a trial
//     induced-flow angle psi
//   - [SolveElement]: bisection of the residual over psi in [-pi/2, +pi/2]
//   - [Solve]: the per-element solves aggregated into rotor thrust, torque
//     and the non-dimensional coefficients
//
// Section coefficients come from [airfoil.Airfoil] tables owned by the caller.
//
// # Example
//
//	rotor := &qprop.Rotor{Diameter: 0.254, Blades: 2, Elements: elems}
//	flow := qprop.Flow{Velocity: 5, Omega: 6000 * math.Pi / 30, Density: 1.225, Viscosity: 1.81e-5}
//	perf, err := qprop.Solve(rotor, flow, qprop.DefaultConfig())
//
// # Thread Safety
//
// Solve holds no state between calls and only reads the rotor and its
// airfoils, so concurrent solves over the same rotor are safe as long as
// nobody mutates it. Setting Config.Workers above one solves the elements
// of a single rotor in parallel.
package qprop
