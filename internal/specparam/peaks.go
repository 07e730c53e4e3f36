package specparam

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// FWHM of a Gaussian is 2*sqrt(2*ln 2) standard deviations.
const fwhmFactor = 2.3548200450309493

// Detection floor in log10 units, below which a candidate is noise.
const minPeakHeight = 0.05

// findPeaks extracts Gaussian peaks from the flattened spectrum, largest
// first. Each accepted peak is subtracted before the next search, so
// overlapping peaks resolve one at a time. flat is consumed.
func findPeaks(freqs, flat []float64, opts Options) []Peak {
	if len(freqs) < 3 || opts.MaxPeaks == 0 {
		return nil
	}

	var peaks []Peak
	for len(peaks) < opts.MaxPeaks {
		idx := floats.MaxIdx(flat)
		height := flat[idx]
		thresh := math.Max(minPeakHeight, 2*stat.StdDev(flat, nil))
		if height < thresh {
			break
		}

		p := Peak{
			CenterFreq: freqs[idx],
			Height:     height,
			Width:      clamp(halfHeightWidth(freqs, flat, idx), opts.PeakWidthLo, opts.PeakWidthHi),
		}
		peaks = append(peaks, p)

		for i, f := range freqs {
			flat[i] -= p.logPower(f)
		}
	}

	sort.Slice(peaks, func(i, j int) bool { return peaks[i].CenterFreq < peaks[j].CenterFreq })
	return peaks
}

// halfHeightWidth estimates a peak's FWHM by walking out from the maximum
// until the flattened spectrum drops below half the peak height. One-sided
// estimates are doubled when the other side runs into the range edge.
func halfHeightWidth(freqs, flat []float64, idx int) float64 {
	half := flat[idx] / 2

	li, ri := -1, -1
	for i := idx - 1; i >= 0; i-- {
		if flat[i] <= half {
			li = i
			break
		}
	}
	for i := idx + 1; i < len(flat); i++ {
		if flat[i] <= half {
			ri = i
			break
		}
	}

	switch {
	case li >= 0 && ri >= 0:
		return freqs[ri] - freqs[li]
	case li >= 0:
		return 2 * (freqs[idx] - freqs[li])
	case ri >= 0:
		return 2 * (freqs[ri] - freqs[idx])
	default:
		return 2 * (freqs[1] - freqs[0])
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
