package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nkoval/speclab/internal/specparam"
)

const (
	DefaultSampleRate  = 250.0
	DefaultDuration    = 120.0
	DefaultSeed        = 42
	DefaultFreqLo      = 1.0
	DefaultFreqHi      = 45.0
	DefaultPeakWidthLo = 0.5
	DefaultPeakWidthHi = 12.0
	DefaultMaxPeaks    = 3
)

type Config struct {
	Montage    string    `yaml:"montage"`
	SampleRate float64   `yaml:"sample_rate"`
	Duration   float64   `yaml:"duration"`
	Seed       int64     `yaml:"seed"`
	Channel    string    `yaml:"channel"`
	Fit        FitConfig `yaml:"fit"`
}

type FitConfig struct {
	FreqLo        float64 `yaml:"freq_lo"`
	FreqHi        float64 `yaml:"freq_hi"`
	PeakWidthLo   float64 `yaml:"peak_width_lo"`
	PeakWidthHi   float64 `yaml:"peak_width_hi"`
	MaxPeaks      int     `yaml:"max_peaks"`
	AperiodicMode string  `yaml:"aperiodic_mode"`
}

func DefaultConfig() *Config {
	return &Config{
		Montage:    "demo",
		SampleRate: DefaultSampleRate,
		Duration:   DefaultDuration,
		Seed:       DefaultSeed,
		Channel:    "Cz",
		Fit: FitConfig{
			FreqLo:        DefaultFreqLo,
			FreqHi:        DefaultFreqHi,
			PeakWidthLo:   DefaultPeakWidthLo,
			PeakWidthHi:   DefaultPeakWidthHi,
			MaxPeaks:      DefaultMaxPeaks,
			AperiodicMode: string(specparam.ModeFixed),
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// FitOptions translates the fit section into specparam options.
func (c *Config) FitOptions() specparam.Options {
	return specparam.Options{
		FreqLo:      c.Fit.FreqLo,
		FreqHi:      c.Fit.FreqHi,
		PeakWidthLo: c.Fit.PeakWidthLo,
		PeakWidthHi: c.Fit.PeakWidthHi,
		MaxPeaks:    c.Fit.MaxPeaks,
		Mode:        specparam.Mode(c.Fit.AperiodicMode),
	}
}
