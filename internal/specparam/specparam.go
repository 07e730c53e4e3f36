package specparam

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Mode selects the aperiodic model.
type Mode string

const (
	ModeFixed Mode = "fixed"
	ModeKnee  Mode = "knee"
)

// Modes lists the aperiodic modes in menu order.
func Modes() []string {
	return []string{string(ModeFixed), string(ModeKnee)}
}

// Options controls a spectral parameterization.
type Options struct {
	FreqLo      float64
	FreqHi      float64
	PeakWidthLo float64 // minimum peak FWHM in Hz
	PeakWidthHi float64 // maximum peak FWHM in Hz
	MaxPeaks    int
	Mode        Mode
}

func DefaultOptions() Options {
	return Options{
		FreqLo:      1,
		FreqHi:      45,
		PeakWidthLo: 0.5,
		PeakWidthHi: 12,
		MaxPeaks:    3,
		Mode:        ModeFixed,
	}
}

func (o Options) validate() error {
	if o.FreqLo >= o.FreqHi {
		return fmt.Errorf("frequency range [%g, %g] is empty", o.FreqLo, o.FreqHi)
	}
	if o.PeakWidthLo <= 0 || o.PeakWidthLo >= o.PeakWidthHi {
		return fmt.Errorf("peak width limits [%g, %g] are invalid", o.PeakWidthLo, o.PeakWidthHi)
	}
	if o.MaxPeaks < 0 {
		return fmt.Errorf("max peaks must be non-negative, got %d", o.MaxPeaks)
	}
	switch o.Mode {
	case ModeFixed, ModeKnee:
	default:
		return fmt.Errorf("unknown aperiodic mode: %q", o.Mode)
	}
	return nil
}

// Aperiodic holds the fitted 1/f component. Knee is zero in fixed mode.
type Aperiodic struct {
	Mode     Mode
	Offset   float64
	Knee     float64
	Exponent float64
}

// LogPower evaluates the aperiodic model at frequency f.
func (a Aperiodic) LogPower(f float64) float64 {
	if a.Mode == ModeKnee {
		return a.Offset - math.Log10(a.Knee+math.Pow(f, a.Exponent))
	}
	return a.Offset - a.Exponent*math.Log10(f)
}

// Peak is one fitted oscillatory component.
type Peak struct {
	CenterFreq float64
	Height     float64 // log10 power above the aperiodic component
	Width      float64 // FWHM in Hz
}

func (p Peak) logPower(f float64) float64 {
	sd := p.Width / fwhmFactor
	d := f - p.CenterFreq
	return p.Height * math.Exp(-d*d/(2*sd*sd))
}

// Result is a full parameterization of one spectrum.
type Result struct {
	Freqs     []float64
	Log       []float64 // measured log10 power over the fit range
	Aperiodic Aperiodic
	ApModel   []float64 // aperiodic component evaluated on Freqs
	Peaks     []Peak
	Model     []float64 // aperiodic + peaks evaluated on Freqs
	R2        float64
	RMSE      float64
}

// Fit parameterizes a PSD over the requested frequency range. Bins at or
// below 0 Hz are dropped before fitting.
func Fit(freqs, power []float64, opts Options) (*Result, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if len(freqs) != len(power) {
		return nil, fmt.Errorf("freqs and power lengths differ: %d vs %d", len(freqs), len(power))
	}

	res := &Result{}
	for i, f := range freqs {
		if f <= 0 || f < opts.FreqLo || f > opts.FreqHi {
			continue
		}
		if power[i] <= 0 {
			return nil, fmt.Errorf("non-positive power at %g Hz", f)
		}
		res.Freqs = append(res.Freqs, f)
		res.Log = append(res.Log, math.Log10(power[i]))
	}
	if len(res.Freqs) < 4 {
		return nil, fmt.Errorf("only %d usable bins in [%g, %g] Hz", len(res.Freqs), opts.FreqLo, opts.FreqHi)
	}

	res.Aperiodic = fitAperiodicRobust(res.Freqs, res.Log, opts.Mode)
	res.ApModel = make([]float64, len(res.Freqs))
	flat := make([]float64, len(res.Freqs))
	for i, f := range res.Freqs {
		res.ApModel[i] = res.Aperiodic.LogPower(f)
		flat[i] = res.Log[i] - res.ApModel[i]
	}

	res.Peaks = findPeaks(res.Freqs, flat, opts)

	res.Model = make([]float64, len(res.Freqs))
	for i, f := range res.Freqs {
		res.Model[i] = res.ApModel[i]
		for _, p := range res.Peaks {
			res.Model[i] += p.logPower(f)
		}
	}

	res.R2 = stat.RSquaredFrom(res.Model, res.Log, nil)
	var sse float64
	for i := range res.Model {
		d := res.Model[i] - res.Log[i]
		sse += d * d
	}
	res.RMSE = math.Sqrt(sse / float64(len(res.Model)))

	return res, nil
}

// Metrics flattens the headline fit numbers for display and storage.
func (r *Result) Metrics() map[string]float64 {
	m := map[string]float64{
		"offset":   r.Aperiodic.Offset,
		"exponent": r.Aperiodic.Exponent,
		"r2":       r.R2,
		"rmse":     r.RMSE,
		"n_peaks":  float64(len(r.Peaks)),
	}
	if r.Aperiodic.Mode == ModeKnee {
		m["knee"] = r.Aperiodic.Knee
	}
	if len(r.Peaks) > 0 {
		m["peak_freq"] = r.Peaks[0].CenterFreq
	}
	return m
}
