package qprop_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/propsim/internal/airfoil"
	"github.com/san-kum/propsim/internal/qprop"
)

var _ = Describe("Residual", func() {
	var (
		rotor *qprop.Rotor
		elem  *qprop.Element
		flow  qprop.Flow
		ut    float64
	)

	BeforeEach(func() {
		rotor = smallRotor(graupnerFoil())
		elem = &rotor.Elements[2]
		flow = seaLevel(5, 8000)
		ut = flow.Omega * elem.Radius
	})

	It("reproduces the reference state at psi=0.2", func() {
		s, err := qprop.Residual(0.2, flow.Velocity, ut, rotor.Radius(), rotor.Blades, elem, flow)
		Expect(err).NotTo(HaveOccurred())

		Expect(s.Residual).To(BeNumerically("~", -0.17259723171436636, 1e-9))
		Expect(s.W).To(BeNumerically("~", 37.55173596337925, 1e-9))
		Expect(s.Phi).To(BeNumerically("~", 0.16673596036296032, 1e-9))
		Expect(s.Gamma).To(BeNumerically("~", 0.057719859017714994, 1e-9))
		Expect(s.LambdaW).To(BeNumerically("~", 0.0981741097565641, 1e-9))
		Expect(s.CL).To(BeNumerically("~", 0.8185409569138532, 1e-9))
		Expect(s.Cn).To(BeNumerically("~", 0.7984467533641949, 1e-9))
		Expect(s.Ct).To(BeNumerically("~", 0.18779487313232987, 1e-9))
		Expect(s.Mach).To(BeZero())
	})

	It("keeps the velocity triangle consistent", func() {
		s, err := qprop.Residual(0.7, flow.Velocity, ut, rotor.Radius(), rotor.Blades, elem, flow)
		Expect(err).NotTo(HaveOccurred())

		wa := s.Va + flow.Velocity
		wt := ut - s.Vt
		Expect(math.Hypot(wa, wt)).To(BeNumerically("~", s.W, 1e-12))
		Expect(s.Alpha).To(BeNumerically("~", elem.Twist-s.Phi, 1e-15))
		Expect(s.Re).To(BeNumerically("~", flow.Density*s.W*elem.Chord/flow.Viscosity, 1e-6))
	})

	It("applies the Mach correction to lift only", func() {
		flow.SpeedOfSound = 340
		s, err := qprop.Residual(0.2, flow.Velocity, ut, rotor.Radius(), rotor.Blades, elem, flow)
		Expect(err).NotTo(HaveOccurred())

		Expect(s.Mach).To(BeNumerically("~", s.W/340, 1e-15))
		Expect(s.CL).To(BeNumerically("~", 0.8235795382987972, 1e-9))
		Expect(s.CD).To(BeNumerically("~", 0.052676694914972115, 1e-9))
		Expect(s.Residual).To(BeNumerically("~", -0.17401496334550237, 1e-9))
	})

	It("has no tip-loss factor at psi=-pi/2 in forward flight", func() {
		s, err := qprop.Residual(-math.Pi/2, flow.Velocity, ut, rotor.Radius(), rotor.Blades, elem, flow)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.LambdaW).To(BeNumerically("<", 0))
		Expect(math.IsNaN(s.Residual)).To(BeTrue())
	})

	It("fails on an element without polars", func() {
		bare := *elem
		bare.Airfoil = &airfoil.Airfoil{}
		_, err := qprop.Residual(0.2, flow.Velocity, ut, rotor.Radius(), rotor.Blades, &bare, flow)
		Expect(err).To(MatchError(airfoil.ErrEmptyAirfoil))
	})
})
