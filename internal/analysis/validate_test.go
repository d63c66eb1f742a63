package analysis_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/springsim/internal/analysis"
	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/physics"
	"github.com/san-kum/springsim/internal/sim"
)

func integrate(p physics.Params, force physics.Force) *sim.Trajectory {
	traj, err := sim.Integrate(context.Background(), p, sim.Span{Start: 0, End: 10}, 0.001, force)
	Expect(err).NotTo(HaveOccurred())
	return traj
}

var _ = Describe("Analytical", func() {
	DescribeTable("reproduces the initial conditions",
		func(damping float64) {
			p := physics.Params{Mass: 1, Stiffness: 100, Damping: damping, X0: 0.3, V0: -1.5}
			x, v := analysis.AnalyticalAt(p, 0)
			Expect(x).To(BeNumerically("~", 0.3, 1e-12))
			Expect(v).To(BeNumerically("~", -1.5, 1e-12))
		},
		Entry("undamped", 0.0),
		Entry("underdamped", 2.0),
		Entry("critically damped", 20.0),
		Entry("overdamped", 40.0),
	)

	DescribeTable("velocity is the time derivative of position",
		func(damping float64) {
			p := physics.Params{Mass: 1, Stiffness: 100, Damping: damping, X0: 0.3, V0: -1.5}
			const h = 1e-6
			for _, t := range []float64{0.05, 0.4, 1.3} {
				xp, _ := analysis.AnalyticalAt(p, t+h)
				xm, _ := analysis.AnalyticalAt(p, t-h)
				_, v := analysis.AnalyticalAt(p, t)
				Expect((xp - xm) / (2 * h)).To(BeNumerically("~", v, 1e-5))
			}
		},
		Entry("undamped", 0.0),
		Entry("underdamped", 2.0),
		Entry("critically damped", 20.0),
		Entry("overdamped", 40.0),
	)

	It("bounds an underdamped response by its envelope", func() {
		p := physics.Params{Mass: 1, Stiffness: 100, Damping: 2, X0: 0.5, V0: 1}
		t := make([]float64, 2000)
		for i := range t {
			t[i] = float64(i) * 0.001
		}
		x, _ := analysis.Analytical(p, t)
		upper, lower, ok := analysis.Envelope(p, t)
		Expect(ok).To(BeTrue())
		for i := range t {
			Expect(x[i]).To(BeNumerically("<=", upper[i]+1e-12))
			Expect(x[i]).To(BeNumerically(">=", lower[i]-1e-12))
		}

		_, _, ok = analysis.Envelope(physics.Params{Mass: 1, Stiffness: 100, Damping: 40}, t)
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("Validate", func() {
	DescribeTable("numerical solution agrees with the closed form",
		func(p physics.Params) {
			res, err := analysis.Validate(integrate(p, nil))
			Expect(err).NotTo(HaveOccurred())
			Expect(res.IsAccurate).To(BeTrue())
			Expect(res.Correlation).To(BeNumerically(">", 0.999))
			Expect(res.XAnalytical).To(HaveLen(10000))
			Expect(res.MaxError).To(BeNumerically(">=", res.RMSError))
		},
		Entry("undamped", physics.Params{Mass: 1, Stiffness: 100, Damping: 0, X0: 1}),
		Entry("underdamped", physics.Params{Mass: 1, Stiffness: 100, Damping: 2, X0: 0.5}),
		Entry("critically damped", physics.Params{Mass: 1, Stiffness: 100, Damping: 20, X0: 0.5}),
		Entry("overdamped door closer", physics.Params{Mass: 5, Stiffness: 50, Damping: 50, X0: 1}),
		Entry("trampoline", physics.Params{Mass: 15, Stiffness: 5000, Damping: 100, X0: 0.3, V0: -2}),
	)

	It("rejects forced trajectories", func() {
		traj := integrate(physics.Params{Mass: 1, Stiffness: 100, Damping: 2}, physics.NewStepForce())
		_, err := analysis.Validate(traj)
		Expect(err).To(MatchError(analysis.ErrForcedTrajectory))
	})

	It("guards division by zero analytical samples", func() {
		res, err := analysis.Validate(integrate(physics.Params{Mass: 1, Stiffness: 100, Damping: 2}, nil))
		Expect(err).NotTo(HaveOccurred())
		Expect(math.IsNaN(res.RelativeErrorPct)).To(BeFalse())
		Expect(res.RelativeErrorPct).To(BeZero())
		Expect(res.Correlation).To(BeZero())
		Expect(res.IsAccurate).To(BeFalse())
	})

	It("needs at least two samples", func() {
		_, err := analysis.Validate(nil)
		Expect(err).To(MatchError(dynamo.ErrTooFewSamples))
	})
})

var _ = Describe("LogDecrement", func() {
	It("recovers the damping ratio of a free response", func() {
		traj := integrate(physics.Params{Mass: 1, Stiffness: 100, Damping: 2, X0: 0.5}, nil)
		d, err := analysis.LogDecrement(traj)
		Expect(err).NotTo(HaveOccurred())
		Expect(d.Peaks).To(BeNumerically(">=", 10))
		Expect(d.Zeta).To(BeNumerically("~", 0.1, 0.002))
		Expect(d.DampingRate).To(BeNumerically("~", 1.0, 0.02))
		Expect(d.Period).To(BeNumerically("~", 2*math.Pi/math.Sqrt(99), 1e-3))
	})

	It("fails without oscillation", func() {
		traj := integrate(physics.Params{Mass: 5, Stiffness: 50, Damping: 50, X0: 1}, nil)
		_, err := analysis.LogDecrement(traj)
		Expect(err).To(MatchError(ContainSubstring("positive peaks")))
	})
})
