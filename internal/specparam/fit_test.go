package specparam_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nkoval/speclab/internal/signal"
	"github.com/nkoval/speclab/internal/specparam"
)

// spectrumFor evaluates a generating profile on a frequency grid, giving a
// noise-free PSD with known ground truth.
func spectrumFor(p signal.Profile, lo, hi, step float64) (freqs, power []float64) {
	for f := lo; f <= hi; f += step {
		freqs = append(freqs, f)
		power = append(power, math.Pow(10, p.LogPower(f)))
	}
	return freqs, power
}

var _ = Describe("Fit", func() {
	var opts specparam.Options

	BeforeEach(func() {
		opts = specparam.DefaultOptions()
	})

	Context("fixed aperiodic mode", func() {
		profile := signal.Profile{
			Offset:   -1.0,
			Exponent: 1.2,
			Peaks: []signal.Peak{
				{Freq: 10, Amp: 0.6, Width: 1.2},
				{Freq: 21, Amp: 0.3, Width: 2.0},
			},
		}

		It("recovers the aperiodic parameters", func() {
			freqs, power := spectrumFor(profile, 1, 45, 0.25)
			res, err := specparam.Fit(freqs, power, opts)
			Expect(err).NotTo(HaveOccurred())

			Expect(res.Aperiodic.Mode).To(Equal(specparam.ModeFixed))
			Expect(res.Aperiodic.Offset).To(BeNumerically("~", -1.0, 0.1))
			Expect(res.Aperiodic.Exponent).To(BeNumerically("~", 1.2, 0.1))
		})

		It("finds the oscillatory peaks in frequency order", func() {
			freqs, power := spectrumFor(profile, 1, 45, 0.25)
			res, err := specparam.Fit(freqs, power, opts)
			Expect(err).NotTo(HaveOccurred())

			Expect(res.Peaks).To(HaveLen(2))
			Expect(res.Peaks[0].CenterFreq).To(BeNumerically("~", 10, 1))
			Expect(res.Peaks[0].Height).To(BeNumerically("~", 0.6, 0.15))
			Expect(res.Peaks[1].CenterFreq).To(BeNumerically("~", 21, 1))
		})

		It("explains the spectrum", func() {
			freqs, power := spectrumFor(profile, 1, 45, 0.25)
			res, err := specparam.Fit(freqs, power, opts)
			Expect(err).NotTo(HaveOccurred())

			Expect(res.R2).To(BeNumerically(">", 0.95))
			Expect(res.RMSE).To(BeNumerically("<", 0.1))
		})

		It("honors the peak budget", func() {
			freqs, power := spectrumFor(profile, 1, 45, 0.25)
			opts.MaxPeaks = 1
			res, err := specparam.Fit(freqs, power, opts)
			Expect(err).NotTo(HaveOccurred())

			Expect(res.Peaks).To(HaveLen(1))
			// The alpha peak is the tallest, so it wins the single slot.
			Expect(res.Peaks[0].CenterFreq).To(BeNumerically("~", 10, 1))
		})

		It("finds no peaks in a pure 1/f spectrum", func() {
			freqs, power := spectrumFor(signal.Profile{Offset: -1, Exponent: 1.5}, 1, 45, 0.25)
			res, err := specparam.Fit(freqs, power, opts)
			Expect(err).NotTo(HaveOccurred())

			Expect(res.Peaks).To(BeEmpty())
			Expect(res.Aperiodic.Exponent).To(BeNumerically("~", 1.5, 0.05))
		})
	})

	Context("knee aperiodic mode", func() {
		profile := signal.Profile{
			Offset:   0.2,
			Exponent: 2.0,
			Knee:     150,
			Peaks:    []signal.Peak{{Freq: 10, Amp: 0.6, Width: 1.2}},
		}

		It("recovers exponent and knee", func() {
			freqs, power := spectrumFor(profile, 1, 100, 0.25)
			opts.FreqHi = 100
			opts.Mode = specparam.ModeKnee
			res, err := specparam.Fit(freqs, power, opts)
			Expect(err).NotTo(HaveOccurred())

			Expect(res.Aperiodic.Mode).To(Equal(specparam.ModeKnee))
			Expect(res.Aperiodic.Exponent).To(BeNumerically("~", 2.0, 0.2))
			Expect(res.Aperiodic.Knee).To(BeNumerically(">", 75))
			Expect(res.Aperiodic.Knee).To(BeNumerically("<", 300))
			Expect(res.R2).To(BeNumerically(">", 0.95))
		})
	})

	Context("input validation", func() {
		It("rejects a degenerate frequency range", func() {
			opts.FreqLo, opts.FreqHi = 45, 1
			_, err := specparam.Fit([]float64{1, 2, 3, 4}, []float64{1, 1, 1, 1}, opts)
			Expect(err).To(HaveOccurred())
		})

		It("rejects bad peak width limits", func() {
			opts.PeakWidthLo, opts.PeakWidthHi = 12, 0.5
			_, err := specparam.Fit([]float64{1, 2, 3, 4}, []float64{1, 1, 1, 1}, opts)
			Expect(err).To(HaveOccurred())
		})

		It("rejects an unknown mode", func() {
			opts.Mode = "bent"
			_, err := specparam.Fit([]float64{1, 2, 3, 4}, []float64{1, 1, 1, 1}, opts)
			Expect(err).To(HaveOccurred())
		})

		It("rejects mismatched slice lengths", func() {
			_, err := specparam.Fit([]float64{1, 2, 3}, []float64{1, 1}, opts)
			Expect(err).To(HaveOccurred())
		})

		It("rejects a range with too few bins", func() {
			freqs := []float64{1, 2, 3, 50, 60}
			power := []float64{1, 1, 1, 1, 1}
			opts.FreqLo, opts.FreqHi = 1, 3
			_, err := specparam.Fit(freqs, power, opts)
			Expect(err).To(HaveOccurred())
		})

		It("rejects non-positive power", func() {
			freqs, power := spectrumFor(signal.Profile{Offset: -1, Exponent: 1}, 1, 45, 0.25)
			power[10] = 0
			_, err := specparam.Fit(freqs, power, opts)
			Expect(err).To(HaveOccurred())
		})
	})

	Context("metrics", func() {
		It("reports the headline numbers", func() {
			profile := signal.Profile{Offset: -1, Exponent: 1.2,
				Peaks: []signal.Peak{{Freq: 10, Amp: 0.6, Width: 1.2}}}
			freqs, power := spectrumFor(profile, 1, 45, 0.25)
			res, err := specparam.Fit(freqs, power, opts)
			Expect(err).NotTo(HaveOccurred())

			m := res.Metrics()
			Expect(m).To(HaveKey("offset"))
			Expect(m).To(HaveKey("exponent"))
			Expect(m["n_peaks"]).To(Equal(1.0))
			Expect(m["peak_freq"]).To(BeNumerically("~", 10, 1))
			Expect(m).NotTo(HaveKey("knee"))
		})
	})
})
