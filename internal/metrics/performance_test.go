package metrics

import (
	"errors"
	"testing"

	"github.com/san-kum/propsim/internal/sweep"
)

func samplePoints() []sweep.Point {
	return []sweep.Point{
		{J: 0.0, CT: 0.11, Thrust: 8.0, Efficiency: 0},
		{J: 0.3, CT: 0.09, Thrust: 6.5, Efficiency: 0.55},
		{J: 0.5, CT: 0.06, Thrust: 4.1, Efficiency: 0.72, Unconverged: []int{3}},
		{J: 0.7, CT: 0.02, Thrust: 1.2, Efficiency: 0.9, Failed: []int{0}, Err: errors.New("bracket")},
	}
}

func observeAll(m sweep.Metric, pts []sweep.Point) float64 {
	m.Reset()
	for _, p := range pts {
		m.Observe(p)
	}
	return m.Value()
}

func TestMetrics(t *testing.T) {
	pts := samplePoints()
	tests := []struct {
		metric sweep.Metric
		want   float64
	}{
		{NewPeakEfficiency(), 0.72},
		{NewMaxThrust(), 8.0},
		{NewConvergenceRate(), 0.5},
		{NewStaticThrustCoefficient(), 0.11},
	}
	for _, tt := range tests {
		t.Run(tt.metric.Name(), func(t *testing.T) {
			if got := observeAll(tt.metric, pts); got != tt.want {
				t.Errorf("%s = %v, want %v", tt.metric.Name(), got, tt.want)
			}
		})
	}
}

func TestPeakEfficiency_AdvanceRatio(t *testing.T) {
	m := NewPeakEfficiency()
	observeAll(m, samplePoints())
	if m.AdvanceRatio() != 0.5 {
		t.Errorf("J at peak = %v, want 0.5", m.AdvanceRatio())
	}
}

func TestMaxThrust_Negative(t *testing.T) {
	m := NewMaxThrust()
	got := observeAll(m, []sweep.Point{{Thrust: -2}, {Thrust: -0.5}})
	if got != -0.5 {
		t.Errorf("max thrust = %v, want -0.5", got)
	}
}

func TestReset(t *testing.T) {
	for _, m := range Default() {
		observeAll(m, samplePoints())
		m.Reset()
		if m.Value() != 0 {
			t.Errorf("%s after reset = %v", m.Name(), m.Value())
		}
	}
}

func TestDefault_UniqueNames(t *testing.T) {
	seen := map[string]bool{}
	for _, m := range Default() {
		if seen[m.Name()] {
			t.Errorf("duplicate metric %q", m.Name())
		}
		seen[m.Name()] = true
	}
}
