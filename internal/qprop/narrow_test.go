package qprop

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("narrow", func() {
	nan := math.NaN()

	It("moves the end sharing the midpoint sign", func() {
		psi1, f1, psi2, f2 := narrow(-1, -2, 1, 3, 0, 1)
		Expect([]float64{psi1, f1, psi2, f2}).To(Equal([]float64{-1, -2, 0, 1}))

		psi1, f1, psi2, f2 = narrow(-1, -2, 1, 3, 0, -1)
		Expect([]float64{psi1, f1, psi2, f2}).To(Equal([]float64{0, -1, 1, 3}))
	})

	It("keeps an exact root on the bracket", func() {
		psi1, f1, psi2, f2 := narrow(-1, -2, 1, 3, 0, 0)
		Expect([]float64{psi1, f1, psi2, f2}).To(Equal([]float64{-1, -2, 0, 0}))

		// the root is now the upper end; later midpoints close in on it
		psi1, f1, psi2, f2 = narrow(psi1, f1, psi2, f2, -0.5, -1)
		Expect([]float64{psi1, f1, psi2, f2}).To(Equal([]float64{-0.5, -1, 0, 0}))

		psi1, f1, psi2, f2 = narrow(0, 0, 1, 3, 0.5, 1)
		Expect([]float64{psi1, f1, psi2, f2}).To(Equal([]float64{0, 0, 0.5, 1}))
	})

	It("walks a NaN lower end towards the finite region", func() {
		psi1, f1, psi2, f2 := narrow(-1, nan, 1, 2, 0, nan)
		Expect(psi1).To(Equal(0.0))
		Expect(math.IsNaN(f1)).To(BeTrue())
		Expect([]float64{psi2, f2}).To(Equal([]float64{1, 2}))

		psi1, f1, psi2, f2 = narrow(-1, nan, 1, 2, 0, 1)
		Expect(psi1).To(Equal(-1.0))
		Expect(math.IsNaN(f1)).To(BeTrue())
		Expect([]float64{psi2, f2}).To(Equal([]float64{0, 1}))

		psi1, f1, psi2, f2 = narrow(-1, nan, 1, 2, 0, -1)
		Expect([]float64{psi1, f1, psi2, f2}).To(Equal([]float64{0, -1, 1, 2}))
		Expect(unbracketed(f1, f2)).To(BeFalse())
	})

	It("walks a NaN upper end towards the finite region", func() {
		psi1, f1, psi2, f2 := narrow(-1, 2, 1, nan, 0, 1)
		Expect([]float64{psi1, f1}).To(Equal([]float64{0, 1}))
		Expect(psi2).To(Equal(1.0))
		Expect(math.IsNaN(f2)).To(BeTrue())

		psi1, f1, psi2, f2 = narrow(-1, 2, 1, nan, 0, -1)
		Expect([]float64{psi1, f1, psi2, f2}).To(Equal([]float64{-1, 2, 0, -1}))
	})
})
