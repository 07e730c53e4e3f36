package store

import (
	"encoding/json"
	"io"
	"os"
)

type ExportData struct {
	ID            string             `json:"id"`
	Montage       string             `json:"montage"`
	Channel       string             `json:"channel"`
	AperiodicMode string             `json:"aperiodic_mode"`
	Freqs         []float64          `json:"freqs"`
	LogPower      []float64          `json:"log_power"`
	Aperiodic     []float64          `json:"aperiodic"`
	Model         []float64          `json:"model"`
	Metrics       map[string]float64 `json:"metrics"`
}

func ExportJSON(w io.Writer, meta *FitMetadata, spec *Spectrum) error {
	data := ExportData{
		ID:            meta.ID,
		Montage:       meta.Montage,
		Channel:       meta.Channel,
		AperiodicMode: meta.AperiodicMode,
		Freqs:         spec.Freqs,
		LogPower:      spec.LogPower,
		Aperiodic:     spec.Aperiodic,
		Model:         spec.Model,
		Metrics:       meta.Metrics,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func ExportJSONStdout(meta *FitMetadata, spec *Spectrum) error {
	return ExportJSON(os.Stdout, meta, spec)
}
