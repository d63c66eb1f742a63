package analysis_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/springsim/internal/analysis"
	"github.com/san-kum/springsim/internal/physics"
)

var _ = Describe("Conclusions", func() {
	It("covers every section for an unforced underdamped run", func() {
		p := physics.Params{Mass: 1, Stiffness: 100, Damping: 2, X0: 0.2, Label: "Spring-mass system"}
		traj := integrate(p, nil)
		val, err := analysis.Validate(traj)
		Expect(err).NotTo(HaveOccurred())
		spectrum, err := analysis.AnalyzeFrequency(traj)
		Expect(err).NotTo(HaveOccurred())

		md := analysis.Conclusions(traj, val, spectrum)
		Expect(md).To(ContainSubstring("### 1. System Characteristics"))
		Expect(md).To(ContainSubstring("Underdamped"))
		Expect(md).To(ContainSubstring("Decay time constant (τ): **1.0000 s**"))
		Expect(md).To(ContainSubstring("### 4. Numerical Validation"))
		Expect(md).To(ContainSubstring("validated as accurate"))
		Expect(md).To(ContainSubstring("The FFT is **consistent** with theory"))
		Expect(md).To(ContainSubstring("Significant energy dissipation"))
		Expect(md).To(ContainSubstring("damped harmonic oscillation"))
	})

	It("omits validation and spectrum when absent", func() {
		p := physics.Params{Mass: 5, Stiffness: 50, Damping: 50, X0: 1, Label: "Door closer"}
		md := analysis.Conclusions(integrate(p, nil), nil, nil)
		Expect(md).NotTo(ContainSubstring("Numerical Validation"))
		Expect(md).NotTo(ContainSubstring("Spectral Analysis"))
		Expect(md).To(ContainSubstring("slowly and without oscillating"))
		Expect(md).To(ContainSubstring("overdamped"))
	})

	It("reports conservation for an undamped run", func() {
		md := analysis.Conclusions(integrate(physics.Params{Mass: 1, Stiffness: 100, X0: 1}, nil), nil, nil)
		Expect(md).To(ContainSubstring("constant amplitude"))
		Expect(md).To(ContainSubstring("close to **energy conservation**"))
	})
})

var _ = Describe("PhasePortrait", func() {
	It("pairs position with velocity", func() {
		traj := integrate(physics.Params{Mass: 1, Stiffness: 100, X0: 1}, nil)
		portrait := analysis.PhasePortrait(traj)
		Expect(portrait.Points).To(HaveLen(traj.Len()))
		Expect(portrait.Points[10].X).To(Equal(traj.X[10]))
		Expect(portrait.Points[10].Y).To(Equal(traj.V[10]))

		art := analysis.PhasePortraitToASCII(portrait, 40, 20)
		Expect(art).To(ContainSubstring("•"))
	})

	It("samples one point per drive period", func() {
		f := physics.NewHarmonicForce()
		traj := integrate(physics.Params{Mass: 1, Stiffness: 100, Damping: 2}, f)
		period := 2 * 3.141592653589793 / f.Omega
		section := analysis.PoincareSection(traj, period, 0)
		Expect(section.Points).To(HaveLen(8))
		Expect(analysis.PoincareSectionToASCII(nil, 10, 5)).To(Equal("No crossings detected"))
	})
})
