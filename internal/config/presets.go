package config

import "sort"

// Presets overlay part of a case: "atmosphere" presets set the fluid
// properties, "solver" presets the bisection parameters.
var Presets = map[string]map[string]*Config{
	"atmosphere": {
		"sea-level": {
			Flow: FlowConfig{Density: 1.225, Viscosity: 1.81e-5, SpeedOfSound: 340.3},
		},
		"5000ft": {
			Flow: FlowConfig{Density: 1.0556, Viscosity: 1.7572e-5, SpeedOfSound: 334.9},
		},
		"hot-day": {
			Flow: FlowConfig{Density: 1.146, Viscosity: 1.88e-5, SpeedOfSound: 351.9},
		},
	},
	"solver": {
		"fast": {
			Solver: SolverConfig{Tolerance: 1e-4, MaxIterations: 50, Workers: 4},
		},
		"default": {
			Solver: SolverConfig{Tolerance: DefaultTolerance, MaxIterations: DefaultMaxIterations, Workers: 1},
		},
		"precise": {
			Solver: SolverConfig{Tolerance: 1e-9, MaxIterations: 200, Workers: 1},
		},
	},
}

func GetPreset(group, preset string) *Config {
	groupPresets, ok := Presets[group]
	if !ok {
		return nil
	}
	cfg, ok := groupPresets[preset]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets(group string) []string {
	groupPresets, ok := Presets[group]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(groupPresets))
	for name := range groupPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ApplyPreset copies the section a preset group owns onto c.
func (c *Config) ApplyPreset(group, preset string) bool {
	p := GetPreset(group, preset)
	if p == nil {
		return false
	}
	switch group {
	case "atmosphere":
		c.Flow.Density = p.Flow.Density
		c.Flow.Viscosity = p.Flow.Viscosity
		c.Flow.SpeedOfSound = p.Flow.SpeedOfSound
	case "solver":
		c.Solver = p.Solver
	}
	return true
}
