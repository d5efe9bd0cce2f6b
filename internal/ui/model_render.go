package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"go.opentelemetry.io/otel/attribute"

	"github.com/unkn0wn-root/sysgraph/internal/analysis"
	"github.com/unkn0wn-root/sysgraph/internal/board"
	"github.com/unkn0wn-root/sysgraph/internal/duration"
)

var statsPercentiles = []int{50, 90, 95, 99}

func (m Model) View() string {
	if !m.ready {
		return m.renderWithinAppFrame("Initialising...")
	}
	if m.showHelp {
		return m.renderWithinAppFrame(m.renderHelpOverlay())
	}

	header := m.renderHeader()
	legend := m.renderLegend()
	status := m.renderStatusBar()

	used := lipgloss.Height(header) + lipgloss.Height(status)
	if legend != "" {
		used += lipgloss.Height(legend)
	}
	rows := maxInt(m.height-used, 0)

	var body string
	if m.showStats {
		body = m.renderStats(rows)
	} else {
		body = m.renderCharts(rows)
	}

	parts := []string{header, body}
	if legend != "" {
		parts = append(parts, legend)
	}
	parts = append(parts, status)
	return m.renderWithinAppFrame(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func (m Model) renderWithinAppFrame(content string) string {
	innerWidth := maxInt(m.width, lipgloss.Width(content))
	innerHeight := maxInt(m.height, lipgloss.Height(content))

	if innerWidth > 0 {
		content = lipgloss.Place(innerWidth, innerHeight, lipgloss.Top, lipgloss.Left, content,
			lipgloss.WithWhitespaceChars(" "))
	}
	return m.theme.AppFrame.Render(content)
}

func (m Model) renderHeader() string {
	parts := []string{
		m.theme.HeaderTitle.Render(m.title),
		m.theme.HeaderValue.Render("window " + duration.Format(m.board.Window())),
		m.theme.HeaderValue.Render(fmt.Sprintf("%d series", m.board.Len())),
	}
	if m.paused {
		parts = append(parts, m.theme.StatusBarKey.Render("paused"))
	}
	if m.pinned {
		parts = append(parts, m.theme.HeaderValue.Render("pinned"))
	}
	if m.sourceClosed {
		parts = append(parts, m.theme.Error.Render("source closed"))
	}
	return m.theme.Header.Render(strings.Join(parts, "  "))
}

func (m Model) renderCharts(rows int) string {
	_, span := m.tracer.Start(context.Background(), "ui.render")
	defer span.End()

	panels := m.board.RenderTerminal(m.width, rows, m.viewEnd(), m.canvasOpts...)
	span.SetAttributes(
		attribute.Int("ui.panels", len(panels)),
		attribute.Int("ui.width", m.width),
		attribute.Int("ui.rows", rows),
	)
	if len(panels) == 0 {
		return lipgloss.Place(m.width, rows, lipgloss.Center, lipgloss.Center, "waiting for readings...")
	}
	out := make([]string, 0, 2*len(panels))
	for _, p := range panels {
		out = append(out, m.panelTitle(p), p.Canvas.String())
	}
	return lipgloss.JoinVertical(lipgloss.Left, out...)
}

func (m Model) panelTitle(p board.Panel) string {
	title := m.theme.PaneTitle.Render(p.Title)
	if p.Unit != "" {
		title += " " + m.theme.HeaderValue.Render("("+p.Unit+")")
	}
	return title
}

func (m Model) window() (float64, float64) {
	end := m.viewEnd()
	return end - duration.Millis(m.board.Window()), end
}

func (m Model) renderLegend() string {
	start, end := m.window()
	legends := m.board.Legends(start, end)
	if len(legends) == 0 {
		return ""
	}
	series := m.board.Series()
	lines := make([]string, 0, min(len(legends), legendMaxRows))
	for _, l := range legends {
		if l.Index >= legendMaxRows {
			lines = append(lines, m.theme.LegendHidden.UnsetStrikethrough().
				Render(fmt.Sprintf("  +%d more", len(legends)-legendMaxRows)))
			break
		}
		cursor := "  "
		if l.Index == m.selected {
			cursor = m.theme.StatusBarKey.Render("> ")
		}
		nameStyle := m.theme.LegendStyle(l.Color)
		if !l.Visible {
			nameStyle = m.theme.LegendHidden
		}
		spark := lipgloss.NewStyle().Foreground(l.Color).
			Render(sparkline(sparkValues(series[l.Index].PointsIn(start, end), sparklineWidth)))
		values := fmt.Sprintf("now %s  min %s  max %s  avg %s", l.Latest, l.Min, l.Max, l.Average)
		line := fmt.Sprintf("%s%d %s %s %s", cursor, l.Index+1,
			nameStyle.Render(l.Series), spark, m.theme.LegendValue.Render(values))
		lines = append(lines, ansi.Truncate(line, maxInt(m.width, 1), "…"))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderStats(rows int) string {
	series := m.board.Series()
	if len(series) == 0 {
		return lipgloss.Place(m.width, rows, lipgloss.Center, lipgloss.Center, "no series yet")
	}
	idx := min(m.selected, len(series)-1)
	s := series[idx]
	_, group, _ := m.board.Lookup(s.Title())
	precision := m.board.Precision()
	format := func(v float64) string { return group.Units.Format(v, precision) }

	start, end := m.window()
	var values []float64
	for _, p := range s.PointsIn(start, end) {
		values = append(values, p.Value)
	}
	summary := analysis.Summarize(values, statsPercentiles, statsBins)

	var b strings.Builder
	b.WriteString(m.theme.LegendStyle(s.Color()).Render(s.Title()))
	b.WriteString(m.theme.HeaderValue.Render(" over " + duration.Format(m.board.Window())))
	b.WriteString("\n")
	if summary.Count == 0 {
		b.WriteString("  no samples in window\n")
		return clipLines(b.String(), rows)
	}
	fmt.Fprintf(&b, "  samples %d\n", summary.Count)
	fmt.Fprintf(&b, "  min %s  max %s  mean %s  median %s  stddev %s\n",
		format(summary.Min), format(summary.Max), format(summary.Mean),
		format(summary.Median), format(summary.StdDev))
	pcts := make([]string, 0, len(statsPercentiles))
	for _, p := range statsPercentiles {
		pcts = append(pcts, fmt.Sprintf("p%d %s", p, format(summary.Percentiles[p])))
	}
	b.WriteString("  " + strings.Join(pcts, "  ") + "\n")
	b.WriteString(RenderHistogram(summary.Histogram, format))
	return clipLines(b.String(), rows)
}

func (m Model) renderStatusBar() string {
	msg := m.statusMessage
	if strings.TrimSpace(msg.text) == "" {
		return m.theme.StatusBar.Render(m.help.View(m.keys))
	}
	style := m.theme.Notification
	switch msg.level {
	case statusError:
		style = m.theme.Error
	case statusWarn:
		style = m.theme.StatusBarKey
	case statusSuccess:
		style = m.theme.StatusBarValue
	}
	return m.theme.StatusBar.Render(style.Render(msg.text))
}

func (m Model) renderHelpOverlay() string {
	var b strings.Builder
	b.WriteString(m.theme.HeaderTitle.Render("Keys"))
	b.WriteString("\n\n")
	for _, column := range m.keys.FullHelp() {
		for _, binding := range column {
			label := fmt.Sprintf("%-28s", bindingLabel(binding))
			fmt.Fprintf(&b, "  %s %s\n",
				m.theme.StatusBarKey.Render(label),
				m.theme.StatusBarValue.Render(binding.Help().Desc))
		}
	}
	b.WriteString("\n")
	b.WriteString(m.theme.StatusBar.Render("press ? to close"))
	return b.String()
}

// plainReport is the current chart and legend without styling.
func (m Model) plainReport() string {
	width := m.width
	if width <= 0 {
		width = 80
	}
	rows := maxInt(m.height-m.board.Len()-2, 8*maxInt(len(m.board.Groups()), 1))
	var b strings.Builder
	for _, p := range m.board.RenderTerminal(width, rows, m.viewEnd(), m.canvasOpts...) {
		b.WriteString(ansi.Strip(m.panelTitle(p)))
		b.WriteString("\n")
		b.WriteString(p.Canvas.Plain())
		b.WriteString("\n")
	}
	b.WriteString(ansi.Strip(m.renderLegend()))
	return strings.TrimRight(b.String(), "\n") + "\n"
}

func clipLines(s string, rows int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if rows > 0 && len(lines) > rows {
		lines = lines[:rows]
	}
	return strings.Join(lines, "\n")
}
