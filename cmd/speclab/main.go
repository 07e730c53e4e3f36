package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/nkoval/speclab/internal/config"
	"github.com/nkoval/speclab/internal/signal"
	"github.com/nkoval/speclab/internal/spectrum"
	"github.com/nkoval/speclab/internal/specparam"
	"github.com/nkoval/speclab/internal/store"
	"github.com/nkoval/speclab/internal/tui"
)

var (
	dataDir    string
	montage    string
	sampleRate float64
	duration   float64
	seed       int64
	freqLo     float64
	freqHi     float64
	widthLo    float64
	widthHi    float64
	maxPeaks   int
	mode       string
	configFile string
	preset     string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "speclab",
		Short: "spectral parameterization lab",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			return tui.Run(cfg, dataDir)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".speclab", "data directory")
	addFitFlags(rootCmd)

	fitCmd := &cobra.Command{
		Use:   "fit [channel]",
		Short: "fit a channel spectrum and save the run",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runFit,
	}
	addFitFlags(fitCmd)

	spectrumCmd := &cobra.Command{
		Use:   "spectrum [channel]",
		Short: "plot a channel power spectrum",
		Args:  cobra.MaximumNArgs(1),
		RunE:  plotSpectrum,
	}
	addFitFlags(spectrumCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved fits",
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show a saved fit",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export a saved fit to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a saved fit to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list fit presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tMONTAGE\tCHANNEL\tRANGE\tMODE")
			for _, name := range config.ListPresets() {
				cfg := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%s\t%s\t%g-%g Hz\t%s\n",
					name, cfg.Montage, cfg.Channel, cfg.Fit.FreqLo, cfg.Fit.FreqHi, cfg.Fit.AperiodicMode)
			}
			return w.Flush()
		},
	}

	channelsCmd := &cobra.Command{
		Use:   "channels",
		Short: "list montages and their channels",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range signal.Montages() {
				rec, err := signal.NewRecording(name, 250, 1, 0)
				if err != nil {
					return err
				}
				fmt.Printf("%s: %v\n", name, rec.Channels())
			}
			return nil
		},
	}

	rootCmd.AddCommand(fitCmd, spectrumCmd, listCmd, showCmd, exportCSVCmd, exportJSONCmd, presetsCmd, channelsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addFitFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&montage, "montage", "demo", "montage name")
	cmd.Flags().Float64Var(&sampleRate, "rate", config.DefaultSampleRate, "sample rate (Hz)")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "recording duration (s)")
	cmd.Flags().Int64Var(&seed, "seed", config.DefaultSeed, "random seed")
	cmd.Flags().Float64Var(&freqLo, "fmin", config.DefaultFreqLo, "fit range lower bound (Hz)")
	cmd.Flags().Float64Var(&freqHi, "fmax", config.DefaultFreqHi, "fit range upper bound (Hz)")
	cmd.Flags().Float64Var(&widthLo, "width-min", config.DefaultPeakWidthLo, "minimum peak width (Hz)")
	cmd.Flags().Float64Var(&widthHi, "width-max", config.DefaultPeakWidthHi, "maximum peak width (Hz)")
	cmd.Flags().IntVar(&maxPeaks, "peaks", config.DefaultMaxPeaks, "maximum number of peaks")
	cmd.Flags().StringVar(&mode, "mode", "fixed", "aperiodic mode (fixed|knee)")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
}

// resolveConfig layers settings: preset, then config file, then flags,
// with explicitly set flags winning.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		*cfg = *p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("montage") {
		cfg.Montage = montage
	}
	if cmd.Flags().Changed("rate") {
		cfg.SampleRate = sampleRate
	}
	if cmd.Flags().Changed("time") {
		cfg.Duration = duration
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	}
	if cmd.Flags().Changed("fmin") {
		cfg.Fit.FreqLo = freqLo
	}
	if cmd.Flags().Changed("fmax") {
		cfg.Fit.FreqHi = freqHi
	}
	if cmd.Flags().Changed("width-min") {
		cfg.Fit.PeakWidthLo = widthLo
	}
	if cmd.Flags().Changed("width-max") {
		cfg.Fit.PeakWidthHi = widthHi
	}
	if cmd.Flags().Changed("peaks") {
		cfg.Fit.MaxPeaks = maxPeaks
	}
	if cmd.Flags().Changed("mode") {
		cfg.Fit.AperiodicMode = mode
	}

	return cfg, nil
}

// channelPSD synthesizes the configured recording and estimates the PSD of
// one channel.
func channelPSD(cfg *config.Config, channel string) (*spectrum.PSD, error) {
	rec, err := signal.NewRecording(cfg.Montage, cfg.SampleRate, cfg.Duration, cfg.Seed)
	if err != nil {
		return nil, err
	}
	x, err := rec.Data(channel)
	if err != nil {
		return nil, err
	}
	return spectrum.Welch(x, cfg.SampleRate, spectrum.Options{})
}

func runFit(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	channel := cfg.Channel
	if len(args) > 0 {
		channel = args[0]
	}

	psd, err := channelPSD(cfg, channel)
	if err != nil {
		return err
	}

	res, err := specparam.Fit(psd.Freqs, psd.Power, cfg.FitOptions())
	if err != nil {
		return err
	}

	st := store.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(cfg.Montage, channel, cfg.SampleRate, cfg.Duration, cfg.Seed, res)
	if err != nil {
		return err
	}

	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("channel: %s (%s)\n", channel, cfg.Montage)
	fmt.Printf("bins: %d (%.1f-%.1f Hz)\n", len(res.Freqs), res.Freqs[0], res.Freqs[len(res.Freqs)-1])
	fmt.Println("\nmetrics:")
	for name, val := range res.Metrics() {
		fmt.Printf("  %s: %.4f\n", name, val)
	}
	return nil
}

func plotSpectrum(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	channel := cfg.Channel
	if len(args) > 0 {
		channel = args[0]
	}

	psd, err := channelPSD(cfg, channel)
	if err != nil {
		return err
	}

	band := psd.Band(cfg.Fit.FreqLo, cfg.Fit.FreqHi)
	if len(band.Freqs) == 0 {
		return fmt.Errorf("no bins in %g-%g Hz", cfg.Fit.FreqLo, cfg.Fit.FreqHi)
	}

	fmt.Printf("channel: %s (%s)\n", channel, cfg.Montage)
	fmt.Printf("peak frequency: %.2f Hz\n\n", band.PeakFreq())

	graph := asciigraph.Plot(band.LogPower(),
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("log10 power, %.1f-%.1f Hz", band.Freqs[0], band.Freqs[len(band.Freqs)-1])),
	)
	fmt.Println(graph)
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMONTAGE\tCHANNEL\tTIME\tMODE\tEXPONENT\tR2")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%.2f\t%.3f\n",
			run.ID,
			run.Montage,
			run.Channel,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.AperiodicMode,
			run.Metrics["exponent"],
			run.Metrics["r2"],
		)
	}

	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := store.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	spec, err := st.LoadSpectrum(runID)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("channel: %s (%s)\n", meta.Channel, meta.Montage)
	fmt.Printf("mode: %s\n\n", meta.AperiodicMode)

	graph := asciigraph.PlotMany(
		[][]float64{spec.LogPower, spec.Model},
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption("log10 power (spectrum vs model)"),
	)
	fmt.Println(graph)

	fmt.Println("\nmetrics:")
	for name, val := range meta.Metrics {
		fmt.Printf("  %s: %.4f\n", name, val)
	}
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := store.New(dataDir)
	spec, err := st.LoadSpectrum(runID)
	if err != nil {
		return err
	}

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	if err := w.Write([]string{"freq", "log_power", "aperiodic", "model"}); err != nil {
		return err
	}
	for i := range spec.Freqs {
		row := []string{
			strconv.FormatFloat(spec.Freqs[i], 'f', 6, 64),
			strconv.FormatFloat(spec.LogPower[i], 'f', 6, 64),
			strconv.FormatFloat(spec.Aperiodic[i], 'f', 6, 64),
			strconv.FormatFloat(spec.Model[i], 'f', 6, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := store.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	spec, err := st.LoadSpectrum(runID)
	if err != nil {
		return err
	}
	return store.ExportJSONStdout(meta, spec)
}
