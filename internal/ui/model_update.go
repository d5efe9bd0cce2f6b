package ui

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/unkn0wn-root/sysgraph/internal/collect"
	"github.com/unkn0wn-root/sysgraph/internal/duration"
	"github.com/unkn0wn-root/sysgraph/internal/errdef"
)

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.waitForReadings(), m.waitForReload(), m.tickCmd())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.frameWidth = typed.Width
		m.frameHeight = typed.Height
		m.width = maxInt(typed.Width-2, 0)
		m.height = maxInt(typed.Height-2, 0)
		m.help.Width = m.width
		m.ready = true
	case readingsMsg:
		if accepted := m.board.Ingest(typed.readings); accepted < len(typed.readings) {
			m.setStatus(statusWarn, "dropped %d out-of-order readings", len(typed.readings)-accepted)
		}
		cmds = append(cmds, m.waitForReadings())
	case readingsClosedMsg:
		m.sourceClosed = true
		m.setStatus(statusWarn, "source closed; showing collected data")
	case tickMsg:
		if !m.paused {
			m.board.Prune(collect.UnixMillis(typed.at))
		}
		cmds = append(cmds, m.tickCmd())
	case reloadMsg:
		m.applyReload(typed.reload)
		cmds = append(cmds, m.waitForReload())
	case statusMsg:
		m.setStatusMessage(typed)
	case tea.KeyMsg:
		if cmd := m.handleKey(typed); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}

	return m, tea.Batch(cmds...)
}

func (m Model) waitForReadings() tea.Cmd {
	ch := m.readings
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		batch, ok := <-ch
		if !ok {
			return readingsClosedMsg{}
		}
		return readingsMsg{readings: batch}
	}
}

func (m Model) waitForReload() tea.Cmd {
	ch := m.reloads
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		r, ok := <-ch
		if !ok {
			return nil
		}
		return reloadMsg{reload: r}
	}
}

func (m *Model) applyReload(r Reload) {
	if r.Err != nil {
		m.setStatus(statusError, "reload settings: %v", r.Err)
		return
	}
	m.theme = r.Theme
	m.board.SetTheme(r.Theme)
	if r.Window > 0 {
		m.windowIdx = nearestZoom(r.Window)
		m.board.SetWindow(zoomSteps[m.windowIdx])
	}
	m.setStatus(statusSuccess, "settings reloaded")
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.refresh, func(t time.Time) tea.Msg {
		return tickMsg{at: t}
	})
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
	case key.Matches(msg, m.keys.ZoomIn):
		m.zoom(-1)
	case key.Matches(msg, m.keys.ZoomOut):
		m.zoom(1)
	case key.Matches(msg, m.keys.Pause):
		m.togglePause()
	case key.Matches(msg, m.keys.Toggle):
		m.toggleSeries(int(msg.String()[0] - '1'))
	case key.Matches(msg, m.keys.FixedMax):
		m.togglePinned()
	case key.Matches(msg, m.keys.NextSeries):
		m.cycleSelection(msg.String() == "shift+tab")
	case key.Matches(msg, m.keys.Stats):
		m.showStats = !m.showStats
	case key.Matches(msg, m.keys.Copy):
		return m.copyCmd()
	case key.Matches(msg, m.keys.Snapshot):
		return m.snapshotCmd()
	}
	return nil
}

func (m *Model) zoom(delta int) {
	next := min(max(m.windowIdx+delta, 0), len(zoomSteps)-1)
	if next == m.windowIdx {
		m.setStatus(statusInfo, "window already at %s", duration.Format(zoomSteps[next]))
		return
	}
	m.windowIdx = next
	m.board.SetWindow(zoomSteps[next])
	m.setStatus(statusInfo, "window %s", duration.Format(zoomSteps[next]))
}

func (m *Model) togglePause() {
	m.paused = !m.paused
	if m.paused {
		m.frozenEnd = collect.UnixMillis(m.clock())
		m.setStatus(statusInfo, "paused")
		return
	}
	m.setStatus(statusInfo, "resumed")
}

func (m *Model) toggleSeries(idx int) {
	if !m.board.Toggle(idx) {
		m.setStatus(statusWarn, "no series %d", idx+1)
		return
	}
	s := m.board.Series()[idx]
	state := "shown"
	if !s.Visible() {
		state = "hidden"
	}
	m.setStatus(statusInfo, "%s %s", s.Title(), state)
}

// togglePinned freezes every value axis at its current top, percent axes at
// 100, or releases them again.
func (m *Model) togglePinned() {
	m.pinned = !m.pinned
	for _, g := range m.board.Groups() {
		if !m.pinned {
			m.board.SetFixedMax(g.Kind, nil)
			continue
		}
		top := 100.0
		if g.Kind != collect.KindPercent {
			units := g.Drawer.UnitLabel()
			top = units.TopLabelValue() * units.CurrentUnitScale()
		}
		m.board.SetFixedMax(g.Kind, &top)
	}
	if m.pinned {
		m.setStatus(statusInfo, "axes pinned")
	} else {
		m.setStatus(statusInfo, "axes follow data")
	}
}

func (m *Model) cycleSelection(back bool) {
	n := m.board.Len()
	if n == 0 {
		return
	}
	if back {
		m.selected = (m.selected - 1 + n) % n
	} else {
		m.selected = (m.selected + 1) % n
	}
}

func (m Model) copyCmd() tea.Cmd {
	if m.clipboard == nil {
		return statusCmd(statusWarn, "clipboard unavailable")
	}
	text := m.plainReport()
	write := m.clipboard
	return func() tea.Msg {
		if err := write(text); err != nil {
			return statusMsg{text: errdef.Wrap(errdef.CodeUI, err, "copy chart").Error(), level: statusError}
		}
		return statusMsg{text: "chart copied to clipboard", level: statusSuccess}
	}
}

func (m Model) snapshotCmd() tea.Cmd {
	if m.snapshotDir == "" {
		return statusCmd(statusWarn, "snapshots disabled")
	}
	path := filepath.Join(m.snapshotDir, fmt.Sprintf("sysgraph-%s.png", m.clock().Format("20060102-150405")))
	end := m.viewEnd()
	width, height := 1200, 300*maxInt(len(m.board.Groups()), 1)
	// Render on the update goroutine; only the file write is deferred.
	img := m.board.RenderImage(width, height, end)
	return func() tea.Msg {
		if err := writePNG(path, img); err != nil {
			return statusMsg{text: err.Error(), level: statusError}
		}
		return statusMsg{text: "saved " + path, level: statusSuccess}
	}
}

func statusCmd(level statusLevel, text string) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text, level: level} }
}

func (m Model) viewEnd() float64 {
	if m.paused {
		return m.frozenEnd
	}
	return collect.UnixMillis(m.clock())
}
