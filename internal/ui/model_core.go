// Package ui is the live chart terminal interface.
package ui

import (
	"log"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/unkn0wn-root/sysgraph/internal/board"
	"github.com/unkn0wn-root/sysgraph/internal/canvas"
	"github.com/unkn0wn-root/sysgraph/internal/collect"
	"github.com/unkn0wn-root/sysgraph/internal/theme"
)

const (
	defaultRefresh = time.Second
	legendMaxRows  = 9
	statsBins      = 8
)

// zoomSteps are the selectable visible windows, narrowest first.
var zoomSteps = []time.Duration{
	30 * time.Second,
	time.Minute,
	2 * time.Minute,
	5 * time.Minute,
	10 * time.Minute,
	15 * time.Minute,
	30 * time.Minute,
	time.Hour,
	3 * time.Hour,
	6 * time.Hour,
	12 * time.Hour,
	24 * time.Hour,
}

type Config struct {
	Board    *board.Board
	Theme    theme.Theme
	Readings <-chan []collect.Reading
	// Reloads delivers edited settings; nil disables hot reload.
	Reloads <-chan Reload
	// Refresh is how often the view advances and old data is pruned.
	Refresh   time.Duration
	Title     string
	Clock     func() time.Time
	Clipboard func(string) error
	// SnapshotDir receives PNG snapshots; empty disables them.
	SnapshotDir string
	// CanvasOptions style the terminal charts, e.g. a forced color profile.
	CanvasOptions []canvas.TerminalOption
	Tracer        trace.Tracer
	Logf          func(string, ...any)
}

type Model struct {
	board       *board.Board
	theme       theme.Theme
	keys        keyMap
	help        help.Model
	readings    <-chan []collect.Reading
	reloads     <-chan Reload
	refresh     time.Duration
	title       string
	clock       func() time.Time
	clipboard   func(string) error
	snapshotDir string
	canvasOpts  []canvas.TerminalOption
	tracer      trace.Tracer
	logf        func(string, ...any)

	width       int
	height      int
	frameWidth  int
	frameHeight int
	ready       bool

	windowIdx     int
	paused        bool
	frozenEnd     float64
	pinned        bool
	selected      int
	showHelp      bool
	showStats     bool
	sourceClosed  bool
	statusMessage statusMsg
}

var _ tea.Model = Model{}

func New(cfg Config) Model {
	b := cfg.Board
	if b == nil {
		b = board.New(cfg.Theme, board.TerminalMetrics(cfg.Theme, 2))
	}
	refresh := cfg.Refresh
	if refresh <= 0 {
		refresh = defaultRefresh
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	tracer := cfg.Tracer
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("ui")
	}
	logf := cfg.Logf
	if logf == nil {
		logf = log.Printf
	}
	title := cfg.Title
	if title == "" {
		title = "sysgraph"
	}

	h := help.New()
	h.ShortSeparator = "  "

	m := Model{
		board:       b,
		theme:       cfg.Theme,
		keys:        defaultKeyMap(),
		help:        h,
		readings:    cfg.Readings,
		reloads:     cfg.Reloads,
		refresh:     refresh,
		title:       title,
		clock:       clock,
		clipboard:   cfg.Clipboard,
		snapshotDir: cfg.SnapshotDir,
		canvasOpts:  cfg.CanvasOptions,
		tracer:      tracer,
		logf:        logf,
	}
	m.windowIdx = nearestZoom(b.Window())
	b.SetWindow(zoomSteps[m.windowIdx])
	return m
}

func nearestZoom(d time.Duration) int {
	best := 0
	for i, step := range zoomSteps {
		if absDuration(step-d) < absDuration(zoomSteps[best]-d) {
			best = i
		}
	}
	return best
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
