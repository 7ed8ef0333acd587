// Package viz renders propeller results in the terminal.
//
// Static output ([Summary], [LoadingPlot], [SweepPlot]) is plain strings
// for the CLI. [Explorer] is a Bubble Tea model that re-solves the rotor
// while the operating point is tuned from the keyboard.
//
// # Key Bindings
//
//	Tab     - Cycle parameter (rpm, velocity, density)
//	Up/K    - Increase parameter
//	Down/J  - Decrease parameter
//	R       - Reset to the initial operating point
//	T       - Cycle color themes
//	?       - Show help overlay
//	Q       - Quit
package viz
