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

var _ = Describe("AnalyzeFrequency", func() {
	It("finds the damped frequency of an underdamped system", func() {
		p := physics.Params{Mass: 1, Stiffness: 100, Damping: 2, X0: 0.5}
		res, err := analysis.AnalyzeFrequency(integrate(p, nil))
		Expect(err).NotTo(HaveOccurred())

		Expect(res.TheoreticalFrequency).To(BeNumerically("~", math.Sqrt(99)/(2*math.Pi), 1e-12))
		Expect(res.DominantFrequency).To(BeNumerically("~", res.TheoreticalFrequency, 0.05*res.TheoreticalFrequency))
		Expect(res.FrequencyErrorPct).To(BeNumerically("<", 5))
		Expect(res.Frequencies).To(HaveLen(4999))
		Expect(res.Amplitudes).To(HaveLen(4999))
		Expect(res.Frequencies[0]).To(BeNumerically("~", 0.1, 1e-9))
	})

	It("reports no theoretical frequency near critical damping", func() {
		p := physics.Params{Mass: 400, Stiffness: 40000, Damping: 7200, X0: 0.05}
		res, err := analysis.AnalyzeFrequency(integrate(p, nil))
		Expect(err).NotTo(HaveOccurred())
		Expect(res.TheoreticalFrequency).To(BeZero())
		Expect(res.FrequencyErrorPct).To(BeZero())
	})

	It("normalises a pure tone to its amplitude", func() {
		const n = 1000
		const dt = 0.01
		data := make([]float64, n)
		for i := range data {
			data[i] = 0.7 * math.Cos(2*math.Pi*5*float64(i)*dt)
		}
		freqs, amps := analysis.PowerSpectrum(data, dt)
		Expect(freqs).To(HaveLen(499))
		Expect(freqs[49]).To(BeNumerically("~", 5, 1e-9))
		Expect(amps[49]).To(BeNumerically("~", 0.7, 1e-9))
	})

	It("rejects degenerate trajectories", func() {
		traj, err := sim.NewTrajectory(physics.Params{Mass: 1, Stiffness: 1}, nil,
			[]float64{0, 0.1}, []float64{1, 1}, []float64{0, 0})
		Expect(err).NotTo(HaveOccurred())
		_, err = analysis.AnalyzeFrequency(traj)
		Expect(err).To(MatchError(dynamo.ErrTooFewSamples))
	})
})

var _ = Describe("AnalyzeResonance", func() {
	It("has a peak for light damping", func() {
		res, err := analysis.AnalyzeResonance(physics.Params{Mass: 1, Stiffness: 100, Damping: 1}, nil, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.HasPeak()).To(BeTrue())
		Expect(res.ResonanceFrequency).To(BeNumerically("~", 10*math.Sqrt(1-2*0.0025), 1e-12))
		Expect(res.QualityFactor.Float()).To(BeNumerically("~", 10, 1e-12))
		Expect(res.Bandwidth3dB).To(BeNumerically("~", 1, 1e-12))
		Expect(res.PeakAmplitude.Float()).To(BeNumerically(">", 9.9))
	})

	It("has no peak when overdamped", func() {
		res, err := analysis.AnalyzeResonance(physics.Params{Mass: 1, Stiffness: 100, Damping: 30}, nil, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.ResonanceFrequency).To(BeZero())
		Expect(res.HasPeak()).To(BeFalse())
	})

	It("sweeps the default range inclusively", func() {
		res, err := analysis.AnalyzeResonance(physics.Params{Mass: 1, Stiffness: 100, Damping: 2}, nil, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Omega).To(HaveLen(analysis.DefaultResonancePoints))
		Expect(res.Omega[0]).To(BeNumerically("~", 1, 1e-12))
		Expect(res.Omega[len(res.Omega)-1]).To(BeNumerically("~", 30, 1e-12))
		Expect(res.Amplitude[0].Float()).To(BeNumerically("~", analysis.TransferMagnitude(0.1, 0.1), 1e-12))
	})

	It("uses an infinite quality factor without damping", func() {
		res, err := analysis.AnalyzeResonance(physics.Params{Mass: 1, Stiffness: 100}, &analysis.SweepRange{Min: 0, Max: 20}, 11)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.QualityFactor.IsInf()).To(BeTrue())
		Expect(res.Amplitude[5].IsInf()).To(BeTrue())
		Expect(res.Bandwidth3dB).To(BeZero())
	})

	DescribeTable("rejects invalid input",
		func(p physics.Params, r *analysis.SweepRange, points int) {
			_, err := analysis.AnalyzeResonance(p, r, points)
			Expect(err).To(MatchError(dynamo.ErrParameterBounds))
		},
		Entry("one point", physics.Params{Mass: 1, Stiffness: 100}, nil, 1),
		Entry("reversed range", physics.Params{Mass: 1, Stiffness: 100}, &analysis.SweepRange{Min: 5, Max: 1}, 10),
		Entry("negative start", physics.Params{Mass: 1, Stiffness: 100}, &analysis.SweepRange{Min: -1, Max: 1}, 10),
		Entry("bad params", physics.Params{Mass: 0, Stiffness: 100}, nil, 10),
	)
})

var _ = Describe("DampingSweep", func() {
	It("classifies each run and orders results by input", func() {
		p := physics.Params{Mass: 1, Stiffness: 100, X0: 0.5}
		dampings := analysis.LinearDampings(p, 0.1, 1.9, 3)
		Expect(dampings).To(HaveLen(3))

		points, err := analysis.DampingSweep(context.Background(), p, dampings, sim.Span{End: 5}, 0.001, nil, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(points).To(HaveLen(3))
		Expect(points[0].Regime).To(Equal(physics.Underdamped))
		Expect(points[1].Regime).To(Equal(physics.CriticallyDamped))
		Expect(points[2].Regime).To(Equal(physics.Overdamped))
		Expect(points[0].Zeta).To(BeNumerically("~", 0.1, 1e-12))
		Expect(points[0].PeakAmplitude).To(BeNumerically("~", 0.5, 1e-9))
		Expect(analysis.SweepToASCII(points, 30, 8)).To(ContainSubstring("•"))
	})
})
