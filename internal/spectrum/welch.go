// Package spectrum estimates power spectral densities of recording
// channels.
package spectrum

import (
	"fmt"
	"math"

	"github.com/mjibson/go-dsp/spectral"
	"github.com/mjibson/go-dsp/window"
	"gonum.org/v1/gonum/floats"
)

// Options tunes the Welch estimator. Zero values fall back to a 1024-point
// Hann-windowed FFT with 50% overlap.
type Options struct {
	NFFT    int
	Overlap int
}

// PSD is a one-sided power spectral density.
type PSD struct {
	Freqs []float64
	Power []float64
}

// Welch computes the Welch-averaged PSD of x sampled at fs Hz.
func Welch(x []float64, fs float64, opts Options) (*PSD, error) {
	if len(x) == 0 {
		return nil, fmt.Errorf("empty signal")
	}
	if fs <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %g", fs)
	}

	nfft := opts.NFFT
	if nfft == 0 {
		nfft = 1024
	}
	if nfft > len(x) {
		nfft = prevPow2(len(x))
	}
	overlap := opts.Overlap
	if overlap == 0 {
		overlap = nfft / 2
	}

	pxx, freqs := spectral.Pwelch(x, fs, &spectral.PwelchOptions{
		NFFT:     nfft,
		Noverlap: overlap,
		Window:   window.Hann,
	})
	return &PSD{Freqs: freqs, Power: pxx}, nil
}

// Band returns the slice of the PSD with lo <= f <= hi. The result shares
// no storage with the receiver.
func (p *PSD) Band(lo, hi float64) *PSD {
	out := &PSD{}
	for i, f := range p.Freqs {
		if f < lo || f > hi {
			continue
		}
		out.Freqs = append(out.Freqs, f)
		out.Power = append(out.Power, p.Power[i])
	}
	return out
}

// LogPower returns log10 of the power values.
func (p *PSD) LogPower() []float64 {
	out := make([]float64, len(p.Power))
	for i, v := range p.Power {
		out[i] = math.Log10(v)
	}
	return out
}

// PeakFreq returns the frequency of maximum power, or 0 for an empty PSD.
func (p *PSD) PeakFreq() float64 {
	if len(p.Power) == 0 {
		return 0
	}
	return p.Freqs[floats.MaxIdx(p.Power)]
}

func prevPow2(n int) int {
	p := 1
	for p*2 <= n {
		p *= 2
	}
	return p
}
