package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/propsim/internal/airfoil"
	"github.com/san-kum/propsim/internal/geometry"
	"github.com/san-kum/propsim/internal/qprop"
	"github.com/san-kum/propsim/internal/sweep"
)

const (
	DefaultBlades        = 2
	DefaultRPM           = 6000.0
	DefaultDensity       = 1.225
	DefaultViscosity     = 1.81e-5
	DefaultTolerance     = 1e-6
	DefaultMaxIterations = 100
	DefaultSweepPoints   = 15
)

const (
	SweepVelocity = "velocity"
	SweepRPM      = "rpm"
	SweepAdvance  = "advance"
)

var ErrNoGeometry = errors.New("config: rotor needs exactly one of apc, uiuc or stations")

// Config is a propeller case file.
type Config struct {
	Name    string        `yaml:"name"`
	Rotor   RotorConfig   `yaml:"rotor"`
	Airfoil AirfoilConfig `yaml:"airfoil"`
	Flow    FlowConfig    `yaml:"flow"`
	Solver  SolverConfig  `yaml:"solver"`
	Sweep   SweepConfig   `yaml:"sweep"`

	dir string
}

type RotorConfig struct {
	Blades   int             `yaml:"blades"`
	Diameter float64         `yaml:"diameter,omitempty"`
	APC      string          `yaml:"apc,omitempty"`
	UIUC     string          `yaml:"uiuc,omitempty"`
	Stations []StationConfig `yaml:"stations,omitempty"`
	Centered bool            `yaml:"centered,omitempty"`
	Refine   int             `yaml:"refine,omitempty"`
}

type StationConfig struct {
	R       float64 `yaml:"r"`
	C       float64 `yaml:"c"`
	BetaDeg float64 `yaml:"beta_deg"`
}

type AirfoilConfig struct {
	Name     string                  `yaml:"name"`
	XFoil    []string                `yaml:"xfoil,omitempty"`
	Analytic *airfoil.AnalyticParams `yaml:"analytic,omitempty"`
}

type FlowConfig struct {
	Velocity     float64 `yaml:"velocity"`
	RPM          float64 `yaml:"rpm"`
	Density      float64 `yaml:"density"`
	Viscosity    float64 `yaml:"viscosity"`
	SpeedOfSound float64 `yaml:"speed_of_sound"`
}

type SolverConfig struct {
	Tolerance     float64 `yaml:"tolerance"`
	MaxIterations int     `yaml:"max_iterations"`
	Workers       int     `yaml:"workers"`
}

type SweepConfig struct {
	Kind   string  `yaml:"kind"`
	From   float64 `yaml:"from"`
	To     float64 `yaml:"to"`
	Points int     `yaml:"points"`
}

// DefaultAnalytic is the section used when a case names no airfoil data.
func DefaultAnalytic() airfoil.AnalyticParams {
	return airfoil.AnalyticParams{
		CL0: 0.5, CLa: 5.8, CLmin: -0.3, CLmax: 1.2,
		CD0: 0.028, CD2u: 0.05, CD2l: 0.02, CLCD0: 0.5,
		REref: 70000, REexp: -0.7,
	}
}

func DefaultConfig() *Config {
	return &Config{
		Name:  "propeller",
		Rotor: RotorConfig{Blades: DefaultBlades},
		Flow: FlowConfig{
			RPM:       DefaultRPM,
			Density:   DefaultDensity,
			Viscosity: DefaultViscosity,
		},
		Solver: SolverConfig{
			Tolerance:     DefaultTolerance,
			MaxIterations: DefaultMaxIterations,
			Workers:       1,
		},
		Sweep: SweepConfig{
			Kind:   SweepVelocity,
			From:   0,
			To:     20,
			Points: DefaultSweepPoints,
		},
	}
}

// Load reads a case file over the defaults. Relative data paths in the
// file resolve against its directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.dir = filepath.Dir(path)
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) resolve(p string) string {
	if c.dir == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.dir, p)
}

// Validate checks the case before any file is read.
func (c *Config) Validate() error {
	sources := 0
	for _, set := range []bool{c.Rotor.APC != "", c.Rotor.UIUC != "", len(c.Rotor.Stations) > 0} {
		if set {
			sources++
		}
	}
	if sources != 1 {
		return ErrNoGeometry
	}
	if c.Rotor.UIUC != "" && (c.Rotor.Diameter <= 0 || c.Rotor.Blades < 1) {
		return fmt.Errorf("config: uiuc geometry needs rotor.diameter and rotor.blades")
	}
	if len(c.Rotor.Stations) > 0 && c.Rotor.Blades < 1 {
		return fmt.Errorf("config: rotor.blades must be at least 1")
	}
	if c.Rotor.Refine < 0 || c.Rotor.Refine == 1 {
		return fmt.Errorf("config: rotor.refine must be 0 or at least 2, got %d", c.Rotor.Refine)
	}
	if len(c.Airfoil.XFoil) > 0 && c.Airfoil.Analytic != nil {
		return fmt.Errorf("config: airfoil takes either xfoil or analytic, not both")
	}
	if c.Flow.RPM <= 0 {
		return fmt.Errorf("config: flow.rpm must be positive, got %g", c.Flow.RPM)
	}
	switch c.Sweep.Kind {
	case "", SweepVelocity, SweepRPM, SweepAdvance:
	default:
		return fmt.Errorf("config: unknown sweep kind %q", c.Sweep.Kind)
	}
	return nil
}

// BuildAirfoil loads the XFoil polars or tabulates the analytic model.
func (c *Config) BuildAirfoil() (*airfoil.Airfoil, error) {
	name := c.Airfoil.Name
	if name == "" {
		name = "analytic"
	}
	if len(c.Airfoil.XFoil) > 0 {
		paths := make([]string, len(c.Airfoil.XFoil))
		for i, p := range c.Airfoil.XFoil {
			paths[i] = c.resolve(p)
		}
		return airfoil.LoadXFoil(name, paths...)
	}
	params := DefaultAnalytic()
	if c.Airfoil.Analytic != nil {
		params = *c.Airfoil.Analytic
	}
	return airfoil.Analytic(name, params)
}

// Blade reads the geometry named by the case, refined when requested.
func (c *Config) Blade() (*geometry.Blade, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	var (
		blade *geometry.Blade
		err   error
	)
	switch {
	case c.Rotor.APC != "":
		blade, err = geometry.ReadAPC(c.resolve(c.Rotor.APC))
		if err == nil && c.Rotor.Blades > 0 {
			blade.Blades = c.Rotor.Blades
		}
	case c.Rotor.UIUC != "":
		blade, err = geometry.ReadUIUC(c.resolve(c.Rotor.UIUC), c.Rotor.Diameter, c.Rotor.Blades)
	default:
		blade = &geometry.Blade{Blades: c.Rotor.Blades, Diameter: c.Rotor.Diameter}
		for _, s := range c.Rotor.Stations {
			blade.Stations = append(blade.Stations, geometry.Station{
				Radius: s.R,
				Chord:  s.C,
				Twist:  airfoil.Deg2Rad(s.BetaDeg),
			})
		}
	}
	if err != nil {
		return nil, err
	}
	if c.Name != "" {
		blade.Name = c.Name
	}

	if c.Rotor.Refine >= 2 {
		return blade.Refined(c.Rotor.Refine)
	}
	return blade, nil
}

// BuildRotor assembles the rotor of the case around foil.
func (c *Config) BuildRotor(foil *airfoil.Airfoil) (*qprop.Rotor, error) {
	blade, err := c.Blade()
	if err != nil {
		return nil, err
	}
	if c.Rotor.Centered {
		return geometry.ElementsAtStations(blade.Name, blade.Blades, blade.Diameter, blade.Stations, foil)
	}
	return blade.Rotor(foil)
}

// OperatingPoint returns the single flow of the case.
func (c *Config) OperatingPoint() qprop.Flow {
	return qprop.Flow{
		Velocity:     c.Flow.Velocity,
		Omega:        c.Flow.RPM * math.Pi / 30,
		Density:      c.Flow.Density,
		Viscosity:    c.Flow.Viscosity,
		SpeedOfSound: c.Flow.SpeedOfSound,
	}
}

func (c *Config) SolverParams() qprop.Config {
	return qprop.Config{
		Tolerance:     c.Solver.Tolerance,
		MaxIterations: c.Solver.MaxIterations,
		Workers:       c.Solver.Workers,
	}
}

// Flows expands the sweep section around the operating point.
func (c *Config) Flows(diameter float64) ([]qprop.Flow, error) {
	n := c.Sweep.Points
	if n < 1 {
		n = DefaultSweepPoints
	}
	base := c.OperatingPoint()
	switch c.Sweep.Kind {
	case "", SweepVelocity:
		return sweep.Velocities(base, c.Sweep.From, c.Sweep.To, n), nil
	case SweepRPM:
		return sweep.Speeds(base, c.Sweep.From, c.Sweep.To, n), nil
	case SweepAdvance:
		return sweep.AdvanceRatios(base, diameter, c.Sweep.From, c.Sweep.To, n), nil
	default:
		return nil, fmt.Errorf("config: unknown sweep kind %q", c.Sweep.Kind)
	}
}
