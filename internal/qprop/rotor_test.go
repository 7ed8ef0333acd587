package qprop_test

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/propsim/internal/airfoil"
	"github.com/san-kum/propsim/internal/qprop"
)

var _ = Describe("Solve", func() {
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

	It("matches the reference thrust and torque", func() {
		perf, err := qprop.Solve(rotor, flow, cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(perf.Err()).NotTo(HaveOccurred())

		Expect(perf.Thrust).To(BeNumerically("~", 0.6719832795158525, 1e-6))
		Expect(perf.Torque).To(BeNumerically("~", 0.009870233546237336, 1e-6))
		Expect(perf.Len()).To(Equal(len(rotor.Elements)))
		for i, s := range perf.Status {
			Expect(s).To(Equal(qprop.StatusConverged), "element %d", i)
			Expect(math.Abs(perf.Residuals[i])).To(BeNumerically("<=", cfg.Tolerance))
			Expect(perf.Radius[i]).To(Equal(rotor.Elements[i].Radius))
		}
	})

	It("derives the coefficients from the totals", func() {
		perf, err := qprop.Solve(rotor, flow, cfg)
		Expect(err).NotTo(HaveOccurred())

		n := flow.Omega / (2 * math.Pi)
		d := rotor.Diameter
		Expect(perf.CT).To(BeNumerically("~", perf.Thrust/(flow.Density*n*n*math.Pow(d, 4)), 1e-12))
		Expect(perf.CQ).To(BeNumerically("~", perf.Torque/(flow.Density*n*n*math.Pow(d, 5)), 1e-12))
		Expect(perf.CP).To(BeNumerically("~", 2*math.Pi*perf.CQ, 1e-12))
		Expect(perf.J).To(BeNumerically("~", flow.Velocity/(n*d), 1e-12))
		Expect(perf.Power()).To(BeNumerically("~", perf.Torque*flow.Omega, 1e-12))
		Expect(perf.Efficiency()).To(BeNumerically("~", perf.J*perf.CT/perf.CP, 1e-12))
		Expect(perf.Efficiency()).To(BeNumerically(">", 0))
		Expect(perf.Efficiency()).To(BeNumerically("<", 1))
	})

	It("integrates the loading distributions", func() {
		perf, err := qprop.Solve(rotor, flow, cfg)
		Expect(err).NotTo(HaveOccurred())

		var thrust float64
		for i, e := range rotor.Elements {
			thrust += perf.DTdr[i] * e.Width
		}
		Expect(perf.Thrust).To(BeNumerically("~", float64(rotor.Blades)*thrust, 1e-12))
	})

	It("is bit-identical across repeated solves", func() {
		first, err := qprop.Solve(rotor, flow, cfg)
		Expect(err).NotTo(HaveOccurred())
		second, err := qprop.Solve(rotor, flow, cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(second).To(Equal(first))
	})

	It("gives the same result serially and in parallel", func() {
		serial, err := qprop.Solve(rotor, flow, cfg)
		Expect(err).NotTo(HaveOccurred())

		cfg.Workers = 4
		parallel, err := qprop.Solve(rotor, flow, cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(parallel).To(Equal(serial))
	})

	It("does not depend on element order", func() {
		forward, err := qprop.Solve(rotor, flow, cfg)
		Expect(err).NotTo(HaveOccurred())

		reversed := *rotor
		reversed.Elements = make([]qprop.Element, len(rotor.Elements))
		for i, e := range rotor.Elements {
			reversed.Elements[len(rotor.Elements)-1-i] = e
		}
		backward, err := qprop.Solve(&reversed, flow, cfg)
		Expect(err).NotTo(HaveOccurred())

		Expect(backward.Thrust).To(BeNumerically("~", forward.Thrust, 1e-12))
		Expect(backward.Torque).To(BeNumerically("~", forward.Torque, 1e-12))
		Expect(backward.Radius[0]).To(Equal(forward.Radius[forward.Len()-1]))
	})

	It("produces more static thrust than in forward flight", func() {
		cruise, err := qprop.Solve(rotor, flow, cfg)
		Expect(err).NotTo(HaveOccurred())

		flow.Velocity = 0
		static, err := qprop.Solve(rotor, flow, cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(static.J).To(BeZero())
		Expect(static.Efficiency()).To(BeZero())
		Expect(static.Thrust).To(BeNumerically(">", cruise.Thrust))
	})

	It("keeps unconverged elements and reports them", func() {
		cfg.MaxIterations = 3
		perf, err := qprop.Solve(rotor, flow, cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(perf.Unconverged()).To(HaveLen(len(rotor.Elements)))
		Expect(perf.Thrust).NotTo(BeZero())

		convErr := perf.Err()
		Expect(convErr).To(MatchError(qprop.ErrNotConverged))
		var ce *qprop.ConvergenceError
		Expect(errors.As(convErr, &ce)).To(BeTrue())
		Expect(ce.Elements).To(HaveLen(len(rotor.Elements)))
	})

	It("returns partial results when an element has no bracket", func() {
		healthy, err := qprop.Solve(rotor, flow, cfg)
		Expect(err).NotTo(HaveOccurred())

		broken := *rotor
		broken.Elements = append(append([]qprop.Element{}, rotor.Elements...), qprop.Element{
			Radius:  rotor.Radius(),
			Chord:   0.004,
			Twist:   0.07,
			Width:   0.0005,
			Airfoil: flatFoil(),
		})
		failedIdx := len(broken.Elements) - 1

		perf, err := qprop.Solve(&broken, flow, cfg)
		Expect(err).To(MatchError(qprop.ErrBracket))
		Expect(perf).NotTo(BeNil())

		var be *qprop.BracketError
		Expect(errors.As(err, &be)).To(BeTrue())
		Expect(be.Element).To(Equal(failedIdx))
		Expect(be.Radius).To(Equal(rotor.Radius()))

		Expect(perf.Status[failedIdx]).To(Equal(qprop.StatusBracketFailed))
		Expect(perf.Failed()).To(Equal([]int{failedIdx}))
		Expect(perf.DTdr[failedIdx]).To(BeZero())
		Expect(perf.Thrust).To(Equal(healthy.Thrust))
		Expect(perf.Torque).To(Equal(healthy.Torque))
	})

	It("leaves an inboard element without a bracket out of the totals", func() {
		healthy, err := qprop.Solve(rotor, flow, cfg)
		Expect(err).NotTo(HaveOccurred())

		broken := *rotor
		broken.Elements = append(append([]qprop.Element{}, rotor.Elements...), inboard(constantFoil(-5)))
		failedIdx := len(broken.Elements) - 1

		perf, err := qprop.Solve(&broken, flow, cfg)
		Expect(err).To(MatchError(qprop.ErrBracket))
		Expect(perf.Failed()).To(Equal([]int{failedIdx}))
		Expect(perf.Unconverged()).To(BeEmpty())
		Expect(perf.Thrust).To(Equal(healthy.Thrust))
		Expect(perf.Torque).To(Equal(healthy.Torque))
	})

	DescribeTable("rejects malformed input",
		func(mutate func(*qprop.Rotor, *qprop.Flow, *qprop.Config), cause error) {
			mutate(rotor, &flow, &cfg)
			perf, err := qprop.Solve(rotor, flow, cfg)
			Expect(perf).To(BeNil())
			Expect(err).To(MatchError(qprop.ErrMalformedInput))
			var ie *qprop.InputError
			Expect(errors.As(err, &ie)).To(BeTrue())
			if cause != nil {
				Expect(err).To(MatchError(cause))
			}
		},
		Entry("no elements", func(r *qprop.Rotor, _ *qprop.Flow, _ *qprop.Config) { r.Elements = nil }, nil),
		Entry("zero diameter", func(r *qprop.Rotor, _ *qprop.Flow, _ *qprop.Config) { r.Diameter = 0 }, nil),
		Entry("no blades", func(r *qprop.Rotor, _ *qprop.Flow, _ *qprop.Config) { r.Blades = 0 }, nil),
		Entry("missing airfoil", func(r *qprop.Rotor, _ *qprop.Flow, _ *qprop.Config) { r.Elements[1].Airfoil = nil }, airfoil.ErrEmptyAirfoil),
		Entry("empty airfoil", func(r *qprop.Rotor, _ *qprop.Flow, _ *qprop.Config) { r.Elements[0].Airfoil = &airfoil.Airfoil{} }, airfoil.ErrEmptyAirfoil),
		Entry("empty polar", func(r *qprop.Rotor, _ *qprop.Flow, _ *qprop.Config) {
			r.Elements[0].Airfoil = &airfoil.Airfoil{Polars: []airfoil.Polar{{Re: 1e5}}}
		}, airfoil.ErrEmptyPolar),
		Entry("negative chord", func(r *qprop.Rotor, _ *qprop.Flow, _ *qprop.Config) { r.Elements[2].Chord = -0.01 }, nil),
		Entry("zero width", func(r *qprop.Rotor, _ *qprop.Flow, _ *qprop.Config) { r.Elements[2].Width = 0 }, nil),
		Entry("stopped rotor", func(_ *qprop.Rotor, f *qprop.Flow, _ *qprop.Config) { f.Omega = 0 }, nil),
		Entry("no density", func(_ *qprop.Rotor, f *qprop.Flow, _ *qprop.Config) { f.Density = 0 }, nil),
		Entry("no viscosity", func(_ *qprop.Rotor, f *qprop.Flow, _ *qprop.Config) { f.Viscosity = 0 }, nil),
		Entry("NaN velocity", func(_ *qprop.Rotor, f *qprop.Flow, _ *qprop.Config) { f.Velocity = math.NaN() }, nil),
		Entry("zero tolerance", func(_ *qprop.Rotor, _ *qprop.Flow, c *qprop.Config) { c.Tolerance = 0 }, nil),
		Entry("no iterations", func(_ *qprop.Rotor, _ *qprop.Flow, c *qprop.Config) { c.MaxIterations = 0 }, nil),
	)
})
