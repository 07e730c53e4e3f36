package tui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nkoval/speclab/internal/config"
	"github.com/nkoval/speclab/internal/panel"
	"github.com/nkoval/speclab/internal/signal"
	"github.com/nkoval/speclab/internal/spectrum"
	"github.com/nkoval/speclab/internal/specparam"
	"github.com/nkoval/speclab/internal/store"
)

// Parameter names on the dashboard panel.
const (
	pChannel    = "channel"
	pFreqRange  = "freq_range"
	pPeakWidth  = "peak_width"
	pMaxPeaks   = "max_peaks"
	pMode       = "aperiodic_mode"
	pAnnPeaks   = "annotate_peaks"
	pAnnAperiod = "annotate_aperiodic"
)

// Adjustment step per left/right keypress, by parameter.
var steps = map[string]float64{
	pFreqRange: 1.0,
	pPeakWidth: 0.5,
	pMaxPeaks:  1.0,
}

// fitView is the binding result: the sliced spectrum and its
// parameterization, everything the view needs for one render.
type fitView struct {
	band *spectrum.PSD
	fit  *specparam.Result
}

type model struct {
	cfg     *config.Config
	dataDir string

	pan     *panel.Panel
	binding *panel.Binding
	names   []string // sidebar order

	cursor  int
	field   int // active endpoint of a range parameter: 0 = lo, 1 = hi
	editing bool
	input   textinput.Model
	status  string

	width  int
	height int
}

// NewApp builds the dashboard: synthesizes the recording, caches a PSD per
// channel, declares the panel parameters, and registers the fit binding.
func NewApp(cfg *config.Config, dataDir string) (*model, error) {
	rec, err := signal.NewRecording(cfg.Montage, cfg.SampleRate, cfg.Duration, cfg.Seed)
	if err != nil {
		return nil, err
	}

	// Spectra do not depend on any panel parameter, so they are computed
	// once up front and every recompute reads from this cache.
	psds := make(map[string]*spectrum.PSD, len(rec.Channels()))
	for _, ch := range rec.Channels() {
		x, err := rec.Data(ch)
		if err != nil {
			return nil, err
		}
		psd, err := spectrum.Welch(x, cfg.SampleRate, spectrum.Options{})
		if err != nil {
			return nil, fmt.Errorf("spectrum for %s: %w", ch, err)
		}
		psds[ch] = psd
	}

	channel := cfg.Channel
	if _, ok := psds[channel]; !ok {
		channel = rec.Channels()[0]
	}
	nyquist := cfg.SampleRate / 2

	pan, err := panel.New(
		panel.ChoiceParam(pChannel, rec.Channels(), channel, panel.Immediate),
		panel.RangeParam(pFreqRange, 0, nyquist, cfg.Fit.FreqLo, cfg.Fit.FreqHi, panel.Throttled),
		panel.RangeParam(pPeakWidth, 0.1, 40, cfg.Fit.PeakWidthLo, cfg.Fit.PeakWidthHi, panel.Throttled),
		panel.ScalarParam(pMaxPeaks, 0, 10, float64(cfg.Fit.MaxPeaks), panel.Throttled),
		panel.ChoiceParam(pMode, specparam.Modes(), cfg.Fit.AperiodicMode, panel.Immediate),
		panel.BoolParam(pAnnPeaks, false, panel.Immediate),
		panel.BoolParam(pAnnAperiod, false, panel.Immediate),
	)
	if err != nil {
		return nil, err
	}

	inputs := []string{pChannel, pFreqRange, pPeakWidth, pMaxPeaks, pMode, pAnnPeaks, pAnnAperiod}
	binding, err := pan.Bind(inputs, func(s panel.Snapshot) (any, error) {
		psd := psds[s[pChannel].Choice()]
		lo, hi := s[pFreqRange].Span()
		wlo, whi := s[pPeakWidth].Span()

		band := psd.Band(lo, hi)
		fit, err := specparam.Fit(band.Freqs, band.Power, specparam.Options{
			FreqLo:      lo,
			FreqHi:      hi,
			PeakWidthLo: wlo,
			PeakWidthHi: whi,
			MaxPeaks:    int(s[pMaxPeaks].Scalar()),
			Mode:        specparam.Mode(s[pMode].Choice()),
		})
		if err != nil {
			return nil, err
		}
		return &fitView{band: band, fit: fit}, nil
	})
	if err != nil {
		return nil, err
	}

	// First render needs a result before any parameter has changed.
	if err := pan.Refresh(binding); err != nil {
		return nil, err
	}

	ti := textinput.New()
	ti.CharLimit = 12
	ti.Width = 12

	return &model{
		cfg:     cfg,
		dataDir: dataDir,
		pan:     pan,
		binding: binding,
		names:   inputs,
		input:   ti,
		width:   100,
		height:  32,
	}, nil
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		if m.editing {
			return m.editKey(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
			m.field = 0
		}
	case "down", "j":
		if m.cursor < len(m.names)-1 {
			m.cursor++
			m.field = 0
		}
	case "tab":
		if m.param().Kind == panel.KindRange {
			m.field = 1 - m.field
		}
	case "left", "h":
		m.adjust(-1)
	case "right", "l":
		m.adjust(+1)
	case " ":
		m.toggle()
	case "enter":
		m.commitCurrent()
	case "e":
		return m.startEdit()
	case "r":
		m.resetAll()
	case "s":
		m.saveFit()
	}
	return m, nil
}

func (m model) editKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.applyEdit()
		m.editing = false
		m.input.Blur()
		return m, nil
	case "esc":
		m.editing = false
		m.input.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *model) param() panel.Param {
	return m.pan.Params()[m.cursor]
}

// adjust nudges the current parameter by one step in the given direction.
// Immediate parameters recompute inside Set; throttled ones stay pending
// until enter commits them.
func (m *model) adjust(dir int) {
	p := m.param()
	pending, err := m.pan.Pending(p.Name)
	if err != nil {
		m.status = err.Error()
		return
	}

	var next panel.Value
	switch p.Kind {
	case panel.KindScalar:
		next = panel.Scalar(pending.Scalar() + float64(dir)*steps[p.Name])
	case panel.KindRange:
		lo, hi := pending.Span()
		if m.field == 0 {
			lo += float64(dir) * steps[p.Name]
		} else {
			hi += float64(dir) * steps[p.Name]
		}
		next = panel.Span(lo, hi)
	case panel.KindChoice:
		next = panel.Choice(cycle(p.Options, pending.Choice(), dir))
	case panel.KindBool:
		next = panel.Bool(!pending.Bool())
	}

	if err := m.pan.Set(p.Name, next); err != nil {
		m.status = err.Error()
		return
	}
	m.status = ""
}

func (m *model) toggle() {
	if p := m.param(); p.Kind == panel.KindBool {
		m.adjust(+1)
	}
}

func (m *model) commitCurrent() {
	if err := m.pan.Commit(m.param().Name); err != nil {
		m.status = err.Error()
		return
	}
	m.status = ""
}

func (m model) startEdit() (tea.Model, tea.Cmd) {
	p := m.param()
	if p.Kind == panel.KindChoice || p.Kind == panel.KindBool {
		return m, nil
	}
	pending, err := m.pan.Pending(p.Name)
	if err != nil {
		return m, nil
	}
	switch p.Kind {
	case panel.KindScalar:
		m.input.SetValue(strconv.FormatFloat(pending.Scalar(), 'g', -1, 64))
	case panel.KindRange:
		lo, hi := pending.Span()
		v := lo
		if m.field == 1 {
			v = hi
		}
		m.input.SetValue(strconv.FormatFloat(v, 'g', -1, 64))
	}
	m.editing = true
	return m, m.input.Focus()
}

// applyEdit parses the input buffer into the active field and commits.
func (m *model) applyEdit() {
	v, err := strconv.ParseFloat(m.input.Value(), 64)
	if err != nil {
		m.status = fmt.Sprintf("not a number: %s", m.input.Value())
		return
	}

	p := m.param()
	var next panel.Value
	switch p.Kind {
	case panel.KindScalar:
		next = panel.Scalar(v)
	case panel.KindRange:
		pending, err := m.pan.Pending(p.Name)
		if err != nil {
			m.status = err.Error()
			return
		}
		lo, hi := pending.Span()
		if m.field == 0 {
			lo = v
		} else {
			hi = v
		}
		next = panel.Span(lo, hi)
	default:
		return
	}

	if err := m.pan.Set(p.Name, next); err != nil {
		m.status = err.Error()
		return
	}
	if err := m.pan.Commit(p.Name); err != nil {
		m.status = err.Error()
		return
	}
	m.status = ""
}

// resetAll restores every parameter default in one batch, so the binding
// recomputes once rather than once per parameter.
func (m *model) resetAll() {
	updates := make([]panel.Update, 0, len(m.names))
	for _, p := range m.pan.Params() {
		updates = append(updates, panel.Update{Name: p.Name, Value: p.Default})
	}
	if err := m.pan.ApplyBatch(updates...); err != nil {
		m.status = err.Error()
		return
	}
	m.status = "reset to defaults"
}

func (m *model) saveFit() {
	res, ok := m.binding.Result()
	if !ok {
		m.status = "nothing to save yet"
		return
	}
	view := res.(*fitView)

	channel, err := m.pan.Get(pChannel)
	if err != nil {
		m.status = err.Error()
		return
	}

	st := store.New(m.dataDir)
	if err := st.Init(); err != nil {
		m.status = err.Error()
		return
	}
	id, err := st.Save(m.cfg.Montage, channel.Choice(),
		m.cfg.SampleRate, m.cfg.Duration, m.cfg.Seed, view.fit)
	if err != nil {
		m.status = err.Error()
		return
	}
	m.status = "saved " + id
}

func cycle(options []string, current string, dir int) string {
	for i, opt := range options {
		if opt == current {
			return options[(i+dir+len(options))%len(options)]
		}
	}
	return options[0]
}

// Run launches the dashboard.
func Run(cfg *config.Config, dataDir string) error {
	app, err := NewApp(cfg, dataDir)
	if err != nil {
		return err
	}
	p := tea.NewProgram(*app, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
