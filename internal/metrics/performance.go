package metrics

import (
	"math"

	"github.com/san-kum/propsim/internal/sweep"
)

// Default returns the metrics reported for every sweep.
func Default() []sweep.Metric {
	return []sweep.Metric{
		NewPeakEfficiency(),
		NewMaxThrust(),
		NewConvergenceRate(),
		NewStaticThrustCoefficient(),
	}
}

type PeakEfficiency struct {
	name string
	peak float64
	at   float64
}

func NewPeakEfficiency() *PeakEfficiency {
	return &PeakEfficiency{name: "peak_efficiency"}
}

func (m *PeakEfficiency) Name() string { return m.name }

func (m *PeakEfficiency) Observe(p sweep.Point) {
	if len(p.Failed) > 0 {
		return
	}
	if p.Efficiency > m.peak {
		m.peak = p.Efficiency
		m.at = p.J
	}
}

func (m *PeakEfficiency) Value() float64 { return m.peak }

// AdvanceRatio returns the J of the most efficient point.
func (m *PeakEfficiency) AdvanceRatio() float64 { return m.at }

func (m *PeakEfficiency) Reset() {
	m.peak = 0
	m.at = 0
}

type MaxThrust struct {
	name    string
	max     float64
	samples int
}

func NewMaxThrust() *MaxThrust {
	return &MaxThrust{name: "max_thrust"}
}

func (m *MaxThrust) Name() string { return m.name }

func (m *MaxThrust) Observe(p sweep.Point) {
	if m.samples == 0 || p.Thrust > m.max {
		m.max = p.Thrust
	}
	m.samples++
}

func (m *MaxThrust) Value() float64 { return m.max }

func (m *MaxThrust) Reset() {
	m.max = 0
	m.samples = 0
}

// ConvergenceRate is the fraction of points where every element converged.
type ConvergenceRate struct {
	name    string
	clean   int
	samples int
}

func NewConvergenceRate() *ConvergenceRate {
	return &ConvergenceRate{name: "convergence_rate"}
}

func (m *ConvergenceRate) Name() string { return m.name }

func (m *ConvergenceRate) Observe(p sweep.Point) {
	if p.Clean() {
		m.clean++
	}
	m.samples++
}

func (m *ConvergenceRate) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return float64(m.clean) / float64(m.samples)
}

func (m *ConvergenceRate) Reset() {
	m.clean = 0
	m.samples = 0
}

// StaticThrustCoefficient is the CT of the point closest to J = 0.
type StaticThrustCoefficient struct {
	name string
	ct   float64
	j    float64
}

func NewStaticThrustCoefficient() *StaticThrustCoefficient {
	return &StaticThrustCoefficient{name: "static_ct", j: math.Inf(1)}
}

func (m *StaticThrustCoefficient) Name() string { return m.name }

func (m *StaticThrustCoefficient) Observe(p sweep.Point) {
	if math.Abs(p.J) < m.j {
		m.j = math.Abs(p.J)
		m.ct = p.CT
	}
}

func (m *StaticThrustCoefficient) Value() float64 { return m.ct }

func (m *StaticThrustCoefficient) Reset() {
	m.ct = 0
	m.j = math.Inf(1)
}
