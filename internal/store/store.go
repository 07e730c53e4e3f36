package store

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/nkoval/speclab/internal/specparam"
)

// Store persists fit runs under a data directory, one subdirectory per run
// holding metadata.json and spectrum.csv.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type FitMetadata struct {
	ID            string             `json:"id"`
	Montage       string             `json:"montage"`
	Channel       string             `json:"channel"`
	Timestamp     time.Time          `json:"timestamp"`
	Seed          int64              `json:"seed"`
	SampleRate    float64            `json:"sample_rate"`
	Duration      float64            `json:"duration"`
	AperiodicMode string             `json:"aperiodic_mode"`
	Metrics       map[string]float64 `json:"metrics"`
}

func (s *Store) Save(montage, channel string, rate, duration float64, seed int64, res *specparam.Result) (string, error) {
	runID := fmt.Sprintf("%s_%d", channel, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := FitMetadata{
		ID:            runID,
		Montage:       montage,
		Channel:       channel,
		Timestamp:     time.Now(),
		Seed:          seed,
		SampleRate:    rate,
		Duration:      duration,
		AperiodicMode: string(res.Aperiodic.Mode),
		Metrics:       res.Metrics(),
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "spectrum.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	if err := w.Write([]string{"freq", "log_power", "aperiodic", "model"}); err != nil {
		return "", err
	}
	for i := range res.Freqs {
		row := []string{
			strconv.FormatFloat(res.Freqs[i], 'f', 6, 64),
			strconv.FormatFloat(res.Log[i], 'f', 6, 64),
			strconv.FormatFloat(res.ApModel[i], 'f', 6, 64),
			strconv.FormatFloat(res.Model[i], 'f', 6, 64),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	return runID, nil
}

func (s *Store) Load(runID string) (*FitMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, fmt.Errorf("run not found: %s", runID)
	}
	var meta FitMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// Spectrum is the persisted curve set of one run.
type Spectrum struct {
	Freqs     []float64
	LogPower  []float64
	Aperiodic []float64
	Model     []float64
}

func (s *Store) LoadSpectrum(runID string) (*Spectrum, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, "spectrum.csv"))
	if err != nil {
		return nil, fmt.Errorf("run not found: %s", runID)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) < 1 {
		return nil, fmt.Errorf("empty spectrum for run %s", runID)
	}

	spec := &Spectrum{}
	for _, row := range rows[1:] {
		if len(row) != 4 {
			return nil, fmt.Errorf("malformed row in spectrum for run %s", runID)
		}
		vals := make([]float64, 4)
		for i, cell := range row {
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, err
			}
			vals[i] = v
		}
		spec.Freqs = append(spec.Freqs, vals[0])
		spec.LogPower = append(spec.LogPower, vals[1])
		spec.Aperiodic = append(spec.Aperiodic, vals[2])
		spec.Model = append(spec.Model, vals[3])
	}
	return spec, nil
}

func (s *Store) List() ([]FitMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var runs []FitMetadata
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		meta, err := s.Load(e.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}
