package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/nkoval/speclab/internal/panel"
	"github.com/nkoval/speclab/internal/specparam"
)

var (
	cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	green   = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	magenta = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
	red     = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

var paramLabels = map[string]string{
	pChannel:    "channel",
	pFreqRange:  "freq range (Hz)",
	pPeakWidth:  "peak width (Hz)",
	pMaxPeaks:   "max peaks",
	pMode:       "aperiodic mode",
	pAnnPeaks:   "annotate peaks",
	pAnnAperiod: "annotate aperiodic",
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(dimmer.Render("  ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("       " + cyan.Render("s p e c l a b") + "  " + dim.Render(m.cfg.Montage) + "\n")
	b.WriteString(dimmer.Render("  ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n\n")

	sidebar := m.viewSidebar()
	main := m.viewMain()
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, sidebar, main))

	b.WriteString("\n")
	if m.status != "" {
		b.WriteString("  " + red.Render(m.status) + "\n")
	}
	b.WriteString(dim.Render("  ↑↓ select  ←→ adjust  tab lo/hi  enter commit  e edit  r reset  s save  q quit") + "\n")

	return b.String()
}

func (m model) viewSidebar() string {
	var b strings.Builder

	for i, p := range m.pan.Params() {
		label := paramLabels[p.Name]
		value := m.renderValue(p, i == m.cursor)

		marker := "  "
		if m.pan.Dirty(p.Name) {
			marker = yellow.Render("* ")
		}

		if i == m.cursor {
			b.WriteString("  " + cyan.Render("▸ ") + marker + white.Render(fmt.Sprintf("%-19s", label)) + value + "\n")
		} else {
			b.WriteString("    " + marker + dim.Render(fmt.Sprintf("%-19s", label)) + dim.Render(value) + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(dimmer.Render("    * pending until enter") + "\n")

	return lipgloss.NewStyle().Width(44).Render(b.String())
}

func (m model) renderValue(p panel.Param, active bool) string {
	pending, err := m.pan.Pending(p.Name)
	if err != nil {
		return "?"
	}

	if m.editing && active {
		return m.input.View()
	}

	if p.Kind == panel.KindRange {
		lo, hi := pending.Span()
		los := fmt.Sprintf("%g", lo)
		his := fmt.Sprintf("%g", hi)
		if active {
			if m.field == 0 {
				los = magenta.Render(los)
			} else {
				his = magenta.Render(his)
			}
		}
		return fmt.Sprintf("[%s, %s]", los, his)
	}

	s := pending.String()
	if active {
		return magenta.Render(s)
	}
	return s
}

func (m model) viewMain() string {
	res, ok := m.binding.Result()
	if !ok {
		return dim.Render("  no result yet")
	}
	view := res.(*fitView)
	fit := view.fit

	gw := m.width - 58
	if gw < 40 {
		gw = 40
	}
	gh := m.height - 16
	if gh < 10 {
		gh = 10
	}
	if gh > 20 {
		gh = 20
	}

	graph := asciigraph.PlotMany(
		[][]float64{fit.Log, fit.Model},
		asciigraph.Height(gh),
		asciigraph.Width(gw),
		asciigraph.Caption(fmt.Sprintf("log10 power, %.1f-%.1f Hz (spectrum vs model)",
			fit.Freqs[0], fit.Freqs[len(fit.Freqs)-1])),
		asciigraph.SeriesColors(asciigraph.SkyBlue, asciigraph.Salmon),
	)

	var b strings.Builder
	b.WriteString(graph + "\n\n")
	b.WriteString(m.viewMetrics(fit))
	return lipgloss.NewStyle().PaddingLeft(2).Render(b.String())
}

func (m model) viewMetrics(fit *specparam.Result) string {
	var b strings.Builder

	line := fmt.Sprintf("%s %s  %s %s",
		dim.Render("offset"), white.Render(fmt.Sprintf("%.2f", fit.Aperiodic.Offset)),
		dim.Render("exponent"), white.Render(fmt.Sprintf("%.2f", fit.Aperiodic.Exponent)))
	if fit.Aperiodic.Mode == specparam.ModeKnee {
		line += fmt.Sprintf("  %s %s", dim.Render("knee"), white.Render(fmt.Sprintf("%.1f", fit.Aperiodic.Knee)))
	}
	line += fmt.Sprintf("  %s %s", dim.Render("r²"), green.Render(fmt.Sprintf("%.3f", fit.R2)))
	b.WriteString(line + "\n")

	annPeaks, _ := m.pan.Get(pAnnPeaks)
	if annPeaks.Bool() {
		if len(fit.Peaks) == 0 {
			b.WriteString(dim.Render("no peaks detected") + "\n")
		}
		for _, p := range fit.Peaks {
			b.WriteString(fmt.Sprintf("%s %s  %s %.2f  %s %.1f\n",
				yellow.Render("peak"), white.Render(fmt.Sprintf("%.1f Hz", p.CenterFreq)),
				dim.Render("height"), p.Height,
				dim.Render("width"), p.Width))
		}
	}

	annAp, _ := m.pan.Get(pAnnAperiod)
	if annAp.Bool() {
		if fit.Aperiodic.Mode == specparam.ModeKnee {
			b.WriteString(dim.Render(fmt.Sprintf("aperiodic: %.2f - log10(%.1f + f^%.2f)",
				fit.Aperiodic.Offset, fit.Aperiodic.Knee, fit.Aperiodic.Exponent)) + "\n")
		} else {
			b.WriteString(dim.Render(fmt.Sprintf("aperiodic: %.2f - %.2f·log10(f)",
				fit.Aperiodic.Offset, fit.Aperiodic.Exponent)) + "\n")
		}
	}

	return b.String()
}
