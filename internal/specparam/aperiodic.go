package specparam

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// fitAperiodicRobust fits the aperiodic component twice: once on the whole
// range, then again with the bins that sit above the first fit (the peak
// regions) masked out, so oscillations do not drag the slope.
func fitAperiodicRobust(freqs, logp []float64, mode Mode) Aperiodic {
	initial := fitAperiodic(freqs, logp, mode)

	flat := make([]float64, len(freqs))
	for i, f := range freqs {
		flat[i] = logp[i] - initial.LogPower(f)
		if flat[i] < 0 {
			flat[i] = 0
		}
	}
	sorted := append([]float64(nil), flat...)
	sort.Float64s(sorted)
	thresh := stat.Quantile(0.025, stat.Empirical, sorted, nil)

	var mf, mp []float64
	for i := range freqs {
		if flat[i] <= thresh {
			mf = append(mf, freqs[i])
			mp = append(mp, logp[i])
		}
	}
	if len(mf) < 4 {
		return initial
	}
	return fitAperiodic(mf, mp, mode)
}

func fitAperiodic(freqs, logp []float64, mode Mode) Aperiodic {
	if mode == ModeKnee {
		return fitKnee(freqs, logp)
	}
	logf := make([]float64, len(freqs))
	for i, f := range freqs {
		logf[i] = math.Log10(f)
	}
	alpha, beta := stat.LinearRegression(logf, logp, nil, false)
	return Aperiodic{Mode: ModeFixed, Offset: alpha, Exponent: -beta}
}

// fitKnee searches exponent and knee on a coarse grid, then refines around
// the best cell. The offset for a candidate pair is closed-form: the mean
// residual of log10(knee + f^exponent).
func fitKnee(freqs, logp []float64) Aperiodic {
	expLo, expHi := 0.25, 4.0
	kneeLo, kneeHi := 1.0, 1e4

	best := searchKnee(freqs, logp, expLo, expHi, kneeLo, kneeHi, 40)

	// Refine one cell around the coarse optimum.
	expStep := (expHi - expLo) / 40
	logStep := (math.Log10(kneeHi) - math.Log10(kneeLo)) / 40
	best = searchKnee(freqs, logp,
		math.Max(expLo, best.Exponent-expStep), math.Min(expHi, best.Exponent+expStep),
		math.Max(kneeLo, best.Knee*math.Pow(10, -logStep)), math.Min(kneeHi, best.Knee*math.Pow(10, logStep)),
		20)
	return best
}

func searchKnee(freqs, logp []float64, expLo, expHi, kneeLo, kneeHi float64, steps int) Aperiodic {
	best := Aperiodic{Mode: ModeKnee}
	bestSSE := math.Inf(1)

	logKneeLo := math.Log10(kneeLo)
	logKneeHi := math.Log10(kneeHi)
	for i := 0; i <= steps; i++ {
		exp := expLo + (expHi-expLo)*float64(i)/float64(steps)
		for j := 0; j <= steps; j++ {
			knee := math.Pow(10, logKneeLo+(logKneeHi-logKneeLo)*float64(j)/float64(steps))

			var offset float64
			for k, f := range freqs {
				offset += logp[k] + math.Log10(knee+math.Pow(f, exp))
			}
			offset /= float64(len(freqs))

			var sse float64
			for k, f := range freqs {
				d := logp[k] - (offset - math.Log10(knee+math.Pow(f, exp)))
				sse += d * d
			}
			if sse < bestSSE {
				bestSSE = sse
				best = Aperiodic{Mode: ModeKnee, Offset: offset, Knee: knee, Exponent: exp}
			}
		}
	}
	return best
}
