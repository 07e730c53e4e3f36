package config

import "sort"

var Presets = map[string]*Config{
	"default": {
		Montage: "demo", SampleRate: 250, Duration: 120, Seed: 42, Channel: "Cz",
		Fit: FitConfig{FreqLo: 1, FreqHi: 45, PeakWidthLo: 0.5, PeakWidthHi: 12, MaxPeaks: 3, AperiodicMode: "fixed"},
	},
	"alpha": {
		Montage: "demo", SampleRate: 250, Duration: 120, Seed: 42, Channel: "Oz",
		Fit: FitConfig{FreqLo: 5, FreqHi: 15, PeakWidthLo: 0.5, PeakWidthHi: 6, MaxPeaks: 1, AperiodicMode: "fixed"},
	},
	"broadband": {
		Montage: "demo", SampleRate: 250, Duration: 120, Seed: 42, Channel: "Cz",
		Fit: FitConfig{FreqLo: 1, FreqHi: 100, PeakWidthLo: 0.5, PeakWidthHi: 12, MaxPeaks: 6, AperiodicMode: "fixed"},
	},
	"knee": {
		Montage: "knee", SampleRate: 250, Duration: 120, Seed: 42, Channel: "Cz",
		Fit: FitConfig{FreqLo: 1, FreqHi: 100, PeakWidthLo: 0.5, PeakWidthHi: 12, MaxPeaks: 3, AperiodicMode: "knee"},
	},
}

func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
