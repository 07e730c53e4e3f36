// Package specparam decomposes a power spectrum into an aperiodic 1/f
// component and a set of oscillatory peaks.
//
// Fitting happens in log10 power. The aperiodic component is either
//
//	fixed: offset - exponent * log10(f)
//	knee:  offset - log10(knee + f^exponent)
//
// fit by linear regression (fixed) or a coarse-to-fine parameter search
// (knee), with a robust second pass that masks peak regions before
// refitting. Peaks are then extracted from the flattened spectrum, largest
// first, each modeled as a Gaussian and subtracted before the next is
// sought:
//
//	res, err := specparam.Fit(freqs, power, specparam.Options{
//	    FreqLo: 1, FreqHi: 45,
//	    PeakWidthLo: 0.5, PeakWidthHi: 12,
//	    MaxPeaks: 3,
//	    Mode: specparam.ModeFixed,
//	})
//	fmt.Println(res.Aperiodic.Exponent, res.Peaks)
package specparam
