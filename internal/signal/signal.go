package signal

import (
	"fmt"
	"math"
	"math/cmplx"
	"math/rand"

	"github.com/mjibson/go-dsp/fft"
)

// Peak is an oscillatory component of a channel profile: a Gaussian bump in
// the log-power spectrum centered at Freq with height Amp (log10 units) and
// standard deviation Width (Hz).
type Peak struct {
	Freq  float64
	Amp   float64
	Width float64
}

// Profile describes the spectral content of one channel: an aperiodic
// 1/f component plus oscillatory peaks.
type Profile struct {
	Offset   float64 // log10 power at 0 Hz, before the 1/f rolloff
	Exponent float64 // aperiodic slope
	Knee     float64 // 0 for a pure 1/f profile
	Peaks    []Peak
}

// LogPower evaluates the profile's log10 power at frequency f.
func (p Profile) LogPower(f float64) float64 {
	lp := p.Offset - math.Log10(p.Knee+math.Pow(f, p.Exponent))
	for _, pk := range p.Peaks {
		d := f - pk.Freq
		lp += pk.Amp * math.Exp(-d*d/(2*pk.Width*pk.Width))
	}
	return lp
}

// Recording holds seeded synthetic time series for the channels of one
// montage.
type Recording struct {
	montage  string
	rate     float64
	channels []string
	data     map[string][]float64
}

// NewRecording synthesizes a recording for the named montage. Each channel
// is built by shaping an amplitude spectrum to the channel's profile,
// randomizing phases from the seed, and inverse-transforming. The same seed
// always yields the same recording.
func NewRecording(montage string, rate, duration float64, seed int64) (*Recording, error) {
	profiles, ok := montages[montage]
	if !ok {
		return nil, fmt.Errorf("unknown montage: %s (available: %v)", montage, Montages())
	}
	if rate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %g", rate)
	}
	if duration <= 0 {
		return nil, fmt.Errorf("duration must be positive, got %g", duration)
	}

	n := int(rate * duration)
	rec := &Recording{
		montage:  montage,
		rate:     rate,
		channels: montageOrder[montage],
		data:     make(map[string][]float64, len(profiles)),
	}

	rng := rand.New(rand.NewSource(seed))
	for _, ch := range rec.channels {
		rec.data[ch] = synthesize(profiles[ch], n, rate, rng)
	}
	return rec, nil
}

// synthesize builds one channel: hermitian spectrum with profile-shaped
// amplitudes and random phases, then the inverse FFT's real part.
func synthesize(p Profile, n int, rate float64, rng *rand.Rand) []float64 {
	spec := make([]complex128, n)
	df := rate / float64(n)
	for k := 1; k <= n/2; k++ {
		f := float64(k) * df
		amp := math.Sqrt(math.Pow(10, p.LogPower(f)))
		phase := rng.Float64() * 2 * math.Pi
		spec[k] = cmplx.Rect(amp, phase)
		if k < n-k {
			spec[n-k] = cmplx.Conj(spec[k])
		}
	}

	out := fft.IFFT(spec)
	x := make([]float64, n)
	// Undo the 1/n of the inverse transform so power matches the profile.
	scale := math.Sqrt(float64(n) * rate / 2)
	for i := range out {
		x[i] = real(out[i]) * scale
	}
	return x
}

func (r *Recording) Montage() string { return r.montage }

func (r *Recording) Rate() float64 { return r.rate }

// Channels returns the channel names in montage order.
func (r *Recording) Channels() []string {
	out := make([]string, len(r.channels))
	copy(out, r.channels)
	return out
}

// Data returns the time series for one channel.
func (r *Recording) Data(channel string) ([]float64, error) {
	x, ok := r.data[channel]
	if !ok {
		return nil, fmt.Errorf("unknown channel: %s (available: %v)", channel, r.channels)
	}
	return x, nil
}
