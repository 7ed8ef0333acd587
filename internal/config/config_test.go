package config

import (
	"errors"
	"math"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Rotor.Blades != DefaultBlades {
		t.Errorf("expected %d blades, got %d", DefaultBlades, cfg.Rotor.Blades)
	}
	if cfg.Flow.Density != DefaultDensity {
		t.Errorf("expected density %v, got %v", DefaultDensity, cfg.Flow.Density)
	}
	if cfg.Solver.Tolerance <= 0 {
		t.Error("tolerance should be positive")
	}
	if cfg.Sweep.Kind != SweepVelocity {
		t.Errorf("expected velocity sweep, got %q", cfg.Sweep.Kind)
	}
	if err := cfg.Validate(); !errors.Is(err, ErrNoGeometry) {
		t.Errorf("default config has no geometry, got %v", err)
	}
}

func TestLoad_Stations(t *testing.T) {
	cfg, err := Load(filepath.Join("testdata", "stations.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Name != "test-6x4" {
		t.Errorf("name = %q", cfg.Name)
	}
	// fields absent from the file keep their defaults
	if cfg.Flow.Density != DefaultDensity || cfg.Solver.MaxIterations != DefaultMaxIterations {
		t.Errorf("defaults lost: density %v, maxIter %d", cfg.Flow.Density, cfg.Solver.MaxIterations)
	}
	if cfg.Solver.Tolerance != 1e-8 {
		t.Errorf("tolerance = %v, want 1e-8", cfg.Solver.Tolerance)
	}

	foil, err := cfg.BuildAirfoil()
	if err != nil {
		t.Fatalf("BuildAirfoil: %v", err)
	}
	if foil.Name != "graupner" {
		t.Errorf("airfoil name = %q", foil.Name)
	}

	rotor, err := cfg.BuildRotor(foil)
	if err != nil {
		t.Fatalf("BuildRotor: %v", err)
	}
	if len(rotor.Elements) != 2 {
		t.Fatalf("expected 2 elements, got %d", len(rotor.Elements))
	}
	if rotor.Diameter != 0.1524 || rotor.Blades != 2 {
		t.Errorf("rotor D=%v B=%d", rotor.Diameter, rotor.Blades)
	}
	want := 0.5 * (32 + 22) * math.Pi / 180
	if math.Abs(rotor.Elements[0].Twist-want) > 1e-12 {
		t.Errorf("twist = %v, want %v", rotor.Elements[0].Twist, want)
	}

	flow := cfg.OperatingPoint()
	if math.Abs(flow.RPM()-8000) > 1e-9 {
		t.Errorf("rpm = %v", flow.RPM())
	}
	if flow.SpeedOfSound != 340 {
		t.Errorf("speed of sound = %v", flow.SpeedOfSound)
	}

	flows, err := cfg.Flows(rotor.Diameter)
	if err != nil {
		t.Fatalf("Flows: %v", err)
	}
	if len(flows) != 4 {
		t.Fatalf("expected 4 flows, got %d", len(flows))
	}
	n := flows[3].Omega / (2 * math.Pi)
	if j := flows[3].Velocity / (n * rotor.Diameter); math.Abs(j-0.6) > 1e-12 {
		t.Errorf("last advance ratio = %v, want 0.6", j)
	}
}

func TestLoad_UIUC(t *testing.T) {
	cfg, err := Load(filepath.Join("testdata", "uiuc.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	rotor, err := cfg.BuildRotor(nil)
	if err != nil {
		t.Fatalf("BuildRotor: %v", err)
	}
	if len(rotor.Elements) != 9 {
		t.Errorf("centred elements on 9 stations, got %d", len(rotor.Elements))
	}
	if rotor.Blades != 3 {
		t.Errorf("blades = %d, want 3", rotor.Blades)
	}
	tip := rotor.Elements[len(rotor.Elements)-1]
	if math.Abs(tip.Radius-0.127) > 1e-12 {
		t.Errorf("tip radius = %v, want 0.127", tip.Radius)
	}

	foil, err := cfg.BuildAirfoil()
	if err != nil {
		t.Fatalf("default analytic airfoil: %v", err)
	}
	if len(foil.Polars) == 0 {
		t.Error("default airfoil has no polars")
	}

	flows, err := cfg.Flows(rotor.Diameter)
	if err != nil {
		t.Fatalf("Flows: %v", err)
	}
	if len(flows) != 3 || math.Abs(flows[1].RPM()-5000) > 1e-9 {
		t.Errorf("rpm sweep = %+v", flows)
	}
}

func TestLoad_Missing(t *testing.T) {
	if _, err := Load(filepath.Join("testdata", "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestSaveLoad(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Name = "saved"
	cfg.Rotor.Stations = []StationConfig{{R: 0.01, C: 0.01, BetaDeg: 20}, {R: 0.05, C: 0.008, BetaDeg: 10}}
	cfg.Flow.Velocity = 7

	path := filepath.Join(t.TempDir(), "case.yaml")
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Name != "saved" || got.Flow.Velocity != 7 || len(got.Rotor.Stations) != 2 {
		t.Errorf("round trip lost fields: %+v", got)
	}
	if got.Rotor.Stations[1].BetaDeg != 10 {
		t.Errorf("beta = %v", got.Rotor.Stations[1].BetaDeg)
	}
}

func TestValidate(t *testing.T) {
	stations := []StationConfig{{R: 0.01, C: 0.01, BetaDeg: 20}, {R: 0.05, C: 0.008, BetaDeg: 10}}

	tests := []struct {
		name   string
		mutate func(c *Config)
		ok     bool
	}{
		{"stations", func(c *Config) { c.Rotor.Stations = stations }, true},
		{"no geometry", func(c *Config) {}, false},
		{"two sources", func(c *Config) { c.Rotor.Stations = stations; c.Rotor.APC = "x.PE0" }, false},
		{"uiuc without diameter", func(c *Config) { c.Rotor.UIUC = "geom.txt" }, false},
		{"refine one", func(c *Config) { c.Rotor.Stations = stations; c.Rotor.Refine = 1 }, false},
		{"zero rpm", func(c *Config) { c.Rotor.Stations = stations; c.Flow.RPM = 0 }, false},
		{"bad sweep", func(c *Config) { c.Rotor.Stations = stations; c.Sweep.Kind = "pitch" }, false},
		{"both airfoils", func(c *Config) {
			c.Rotor.Stations = stations
			p := DefaultAnalytic()
			c.Airfoil.Analytic = &p
			c.Airfoil.XFoil = []string{"a.txt"}
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("atmosphere", "5000ft")
	if cfg == nil {
		t.Fatal("expected preset")
	}
	if cfg.Flow.Density >= DefaultDensity {
		t.Errorf("density at altitude should be below sea level, got %v", cfg.Flow.Density)
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("atmosphere", "mars"); cfg != nil {
		t.Error("expected nil for unknown preset")
	}
	if cfg := GetPreset("weather", "sea-level"); cfg != nil {
		t.Error("expected nil for unknown group")
	}
}

func TestListPresets(t *testing.T) {
	names := ListPresets("solver")
	want := []string{"default", "fast", "precise"}
	if len(names) != len(want) {
		t.Fatalf("expected %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
	if ListPresets("unknown") != nil {
		t.Error("expected nil for unknown group")
	}
}

func TestApplyPreset(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Flow.Velocity = 12

	if !cfg.ApplyPreset("atmosphere", "hot-day") {
		t.Fatal("hot-day not applied")
	}
	if cfg.Flow.Density != 1.146 || cfg.Flow.SpeedOfSound != 351.9 {
		t.Errorf("atmosphere not copied: %+v", cfg.Flow)
	}
	if cfg.Flow.Velocity != 12 || cfg.Flow.RPM != DefaultRPM {
		t.Errorf("operating point changed: %+v", cfg.Flow)
	}

	if !cfg.ApplyPreset("solver", "precise") {
		t.Fatal("precise not applied")
	}
	if cfg.Solver.Tolerance != 1e-9 {
		t.Errorf("tolerance = %v", cfg.Solver.Tolerance)
	}
	if cfg.ApplyPreset("solver", "bogus") {
		t.Error("unknown preset reported as applied")
	}
}
