package qprop_test

import (
	"math"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/propsim/internal/airfoil"
	"github.com/san-kum/propsim/internal/geometry"
	"github.com/san-kum/propsim/internal/qprop"
)

// The APC 10x7SF case needs the full vendor geometry and the ten XFoil
// NACA 4412 polars; point PROPSIM_VALIDATION_DIR at a directory holding
// 10x7SF-PERF.PE0 and naca4412/*.txt to run it.
var _ = Describe("APC 10x7SF validation", Ordered, func() {
	var rotor *qprop.Rotor

	BeforeAll(func() {
		dir := os.Getenv("PROPSIM_VALIDATION_DIR")
		if dir == "" {
			Skip("PROPSIM_VALIDATION_DIR not set")
		}
		polars, err := filepath.Glob(filepath.Join(dir, "naca4412", "*.txt"))
		Expect(err).NotTo(HaveOccurred())
		foil, err := airfoil.LoadXFoil("naca4412", polars...)
		Expect(err).NotTo(HaveOccurred())

		blade, err := geometry.ReadAPC(filepath.Join(dir, "10x7SF-PERF.PE0"))
		Expect(err).NotTo(HaveOccurred())
		rotor, err = blade.Rotor(foil)
		Expect(err).NotTo(HaveOccurred())
	})

	It("has the vendor geometry", func() {
		Expect(rotor.Elements).To(HaveLen(43))
		Expect(rotor.Diameter).To(BeNumerically("~", 0.254, 1e-12))
	})

	DescribeTable("thrust and torque",
		func(velocity, thrust, torque float64) {
			flow := qprop.Flow{Velocity: velocity, Omega: 6014 * math.Pi / 30, Density: 1.225, Viscosity: 1.81e-5}
			perf, err := qprop.Solve(rotor, flow, qprop.DefaultConfig())
			Expect(err).NotTo(HaveOccurred())
			Expect(perf.Thrust).To(BeNumerically("~", thrust, 1e-6))
			Expect(perf.Torque).To(BeNumerically("~", torque, 1e-6))
		},
		Entry("J=0.05", 1.2729633333333334, 7.811303879404407, 0.14308075154669447),
		Entry("J=0.75", 19.09445, 1.1348963862887862, 0.05252953779296362),
	)
})
