// Package airfoil provides section aerodynamic tables and their interpolation.
//
// An [Airfoil] is a family of [Polar] tables, one per Reynolds number, each
// listing lift and drag coefficients against angle of attack (radians):
//
//   - [Polar.At]: linear interpolation across alpha, with CL clamped and CD
//     extrapolated towards 2.0 at +/-90 degrees outside the table
//   - [Airfoil.At]: bracketing across Reynolds number plus an optional
//     Prandtl-Glauert lift correction
//   - [Analytic]: Drela's analytic polar model tabulated on a fixed grid
//   - [ReadXFoil], [LoadXFoil]: XFoil/XFLR5 text polars
//
// # Example
//
//	foil, _ := airfoil.LoadXFoil("naca4412", files...)
//	c, err := foil.At(airfoil.Deg2Rad(4.5), 150000, 0)
//
// # Thread Safety
//
// Polars and airfoils are never mutated by lookups, so one Airfoil can be
// shared by any number of concurrent solves.
package airfoil
