package qprop_test

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/propsim/internal/airfoil"
	"github.com/san-kum/propsim/internal/qprop"
)

// flatFoil has a positive lift coefficient at every angle of attack.
func flatFoil() *airfoil.Airfoil {
	return &airfoil.Airfoil{Name: "flat", Polars: []airfoil.Polar{{
		Re:    1e5,
		Alpha: []float64{-0.1, 0.1},
		CL:    []float64{0.5, 0.5},
		CD:    []float64{0.02, 0.02},
	}}}
}

// constantFoil has the same lift coefficient cl at every angle of attack.
func constantFoil(cl float64) *airfoil.Airfoil {
	return &airfoil.Airfoil{Name: "constant", Polars: []airfoil.Polar{{
		Re:    1e5,
		Alpha: []float64{-0.1, 0.1},
		CL:    []float64{cl, cl},
		CD:    []float64{0.02, 0.02},
	}}}
}

// inboard is an element well inside the tip, where the residual at
// psi = -pi/2 is NaN in forward flight.
func inboard(foil *airfoil.Airfoil) qprop.Element {
	return qprop.Element{Radius: 0.05, Chord: 0.01, Twist: 0.3, Width: 0.01, Airfoil: foil}
}

var _ = Describe("SolveElement", func() {
	var (
		rotor *qprop.Rotor
		flow  qprop.Flow
		cfg   qprop.Config
	)

	BeforeEach(func() {
		rotor = smallRotor(graupnerFoil())
		flow = seaLevel(5, 8000)
		cfg = qprop.DefaultConfig()
	})

	It("drives every element residual within tolerance", func() {
		for i := range rotor.Elements {
			sol, err := qprop.SolveElement(&rotor.Elements[i], rotor.Radius(), rotor.Blades, flow, cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(sol.Converged).To(BeTrue(), "element %d", i)
			Expect(math.Abs(sol.State.Residual)).To(BeNumerically("<=", cfg.Tolerance))
			Expect(sol.Psi).To(BeNumerically(">", -math.Pi/2))
			Expect(sol.Psi).To(BeNumerically("<", math.Pi/2))
			Expect(sol.Iterations).To(BeNumerically("<=", cfg.MaxIterations))
		}
	})

	It("converges in static thrust", func() {
		flow.Velocity = 0
		for i := range rotor.Elements {
			sol, err := qprop.SolveElement(&rotor.Elements[i], rotor.Radius(), rotor.Blades, flow, cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(sol.Converged).To(BeTrue(), "element %d", i)
		}
	})

	It("does not stop on a small residual while the bracket is wide", func() {
		cfg.Tolerance = 1e-2
		sol, err := qprop.SolveElement(&rotor.Elements[0], rotor.Radius(), rotor.Blades, flow, cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(sol.Converged).To(BeTrue())
		// half-width pi/2^k must be within 1e-2, so at least 8 halvings
		Expect(sol.Iterations).To(BeNumerically(">=", 8))
	})

	It("flags an exhausted iteration budget", func() {
		cfg.MaxIterations = 3
		sol, err := qprop.SolveElement(&rotor.Elements[0], rotor.Radius(), rotor.Blades, flow, cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(sol.Converged).To(BeFalse())
		Expect(sol.Iterations).To(Equal(3))
	})

	It("reports a bracket without sign change", func() {
		tip := qprop.Element{
			Radius:  rotor.Radius(),
			Chord:   0.005,
			Twist:   0.1,
			Width:   0.001,
			Airfoil: flatFoil(),
		}
		_, err := qprop.SolveElement(&tip, rotor.Radius(), rotor.Blades, flow, cfg)
		Expect(err).To(MatchError(qprop.ErrBracket))

		var be *qprop.BracketError
		Expect(errors.As(err, &be)).To(BeTrue())
		Expect(be.Lower).To(BeNumerically("<", 0))
		Expect(be.Upper).To(BeNumerically("<", 0))
	})

	DescribeTable("reports an inboard element without a sign change",
		func(cl float64) {
			e := inboard(constantFoil(cl))
			_, err := qprop.SolveElement(&e, rotor.Radius(), rotor.Blades, flow, cfg)
			Expect(err).To(MatchError(qprop.ErrBracket))

			var be *qprop.BracketError
			Expect(errors.As(err, &be)).To(BeTrue())
			Expect(be.Radius).To(Equal(0.05))
			Expect(math.IsNaN(be.Lower)).To(BeTrue())
		},
		Entry("lift far below the circulation", -5.0),
		Entry("lift far above the circulation", 50.0),
		Entry("extreme lift", 500.0),
	)

	It("brackets the root of an inboard element past the NaN end", func() {
		e := inboard(constantFoil(0.5))
		sol, err := qprop.SolveElement(&e, rotor.Radius(), rotor.Blades, flow, cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(sol.Converged).To(BeTrue())
		Expect(math.Abs(sol.State.Residual)).To(BeNumerically("<=", cfg.Tolerance))
	})

	It("reports a static inboard element without a sign change", func() {
		flow.Velocity = 0
		e := inboard(constantFoil(-5))
		_, err := qprop.SolveElement(&e, rotor.Radius(), rotor.Blades, flow, cfg)
		Expect(err).To(MatchError(qprop.ErrBracket))
	})
})
