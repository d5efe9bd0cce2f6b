// Package board arranges series into one chart per unit kind and keeps
// their data, visibility and axis overrides together.
package board

import (
	"log"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/unkn0wn-root/sysgraph/internal/collect"
	"github.com/unkn0wn-root/sysgraph/internal/duration"
	"github.com/unkn0wn-root/sysgraph/internal/linechart"
	"github.com/unkn0wn-root/sysgraph/internal/theme"
)

var kindOrder = map[collect.Kind]int{
	collect.KindPercent: 0,
	collect.KindBytes:   1,
	collect.KindCount:   2,
}

// Group is one chart: every series of a kind sharing a value axis.
type Group struct {
	Kind   collect.Kind
	Units  linechart.UnitSystem
	Drawer *linechart.CanvasDrawer
}

func (g *Group) Title() string {
	switch g.Kind {
	case collect.KindPercent:
		return "utilisation"
	case collect.KindBytes:
		return "memory"
	default:
		return "counts"
	}
}

type Board struct {
	theme   theme.Theme
	metrics Metrics
	window  time.Duration
	logf    func(string, ...any)

	groups []*Group
	byKind map[collect.Kind]*Group
	series map[string]*entry
	order  []*entry
}

type entry struct {
	series *linechart.DataSeries
	group  *Group
}

type Option func(*Board)

func WithLogf(fn func(string, ...any)) Option {
	return func(b *Board) {
		if fn != nil {
			b.logf = fn
		}
	}
}

// WithWindow sets the visible span; data older than a retention buffer
// before the window start is pruned.
func WithWindow(d time.Duration) Option {
	return func(b *Board) {
		if d > 0 {
			b.window = d
		}
	}
}

func New(th theme.Theme, m Metrics, opts ...Option) *Board {
	b := &Board{
		theme:   th,
		metrics: m,
		window:  5 * time.Minute,
		logf:    log.Printf,
		byKind:  make(map[collect.Kind]*Group),
		series:  make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Board) Window() time.Duration { return b.window }

// Precision is the number of decimals used for labels and legends.
func (b *Board) Precision() int { return b.metrics.Drawer.Precision }

func (b *Board) SetWindow(d time.Duration) {
	if d > 0 {
		b.window = d
	}
}

// SetTheme recolors every group and series; series keep their palette index.
func (b *Board) SetTheme(th theme.Theme) {
	b.theme = th
	b.metrics.Drawer.GridColor = th.Grid
	b.metrics.Drawer.TextColor = th.Text
	b.metrics.Drawer.FillAlpha = th.FillAlpha
	for _, g := range b.groups {
		g.Drawer.SetColors(th.Grid, th.Text, th.FillAlpha)
	}
	for i, e := range b.order {
		e.series.SetColor(th.SeriesColor(i))
	}
}

// Ingest appends readings, creating series and groups on first sight. It
// returns how many readings were accepted.
func (b *Board) Ingest(readings []collect.Reading) int {
	accepted := 0
	for _, r := range readings {
		e := b.entryFor(r)
		if e.series.AddDataPoint(r.Value, r.Time) == nil {
			accepted++
		}
	}
	return accepted
}

// Prune drops data that can no longer be shown for a window ending at now.
// It reports whether anything was removed.
func (b *Board) Prune(now float64) bool {
	start := now - duration.Millis(b.window)
	removed := false
	for _, e := range b.order {
		if e.series.RemoveOutdatedData(start) {
			removed = true
		}
	}
	return removed
}

// Toggle flips the visibility of the idx-th series in first-seen order.
func (b *Board) Toggle(idx int) bool {
	if idx < 0 || idx >= len(b.order) {
		return false
	}
	s := b.order[idx].series
	s.SetVisible(!s.Visible())
	return true
}

// SetFixedMax pins or, with nil, releases the value axis of a kind.
func (b *Board) SetFixedMax(kind collect.Kind, v *float64) {
	if g, ok := b.byKind[kind]; ok {
		g.Drawer.SetFixedMaxValue(v)
	}
}

func (b *Board) Groups() []*Group { return b.groups }

func (b *Board) Len() int { return len(b.order) }

// Series returns the series in first-seen order.
func (b *Board) Series() []*linechart.DataSeries {
	out := make([]*linechart.DataSeries, len(b.order))
	for i, e := range b.order {
		out[i] = e.series
	}
	return out
}

func (b *Board) Lookup(name string) (*linechart.DataSeries, *Group, bool) {
	e, ok := b.series[name]
	if !ok {
		return nil, nil, false
	}
	return e.series, e.group, true
}

// Legend is one series' entry under the chart.
type Legend struct {
	Index   int
	Series  string
	Color   lipgloss.Color
	Visible bool
	Kind    collect.Kind
	Stats   linechart.Statistics
	Latest  string
	Min     string
	Max     string
	Average string
}

// Legends summarises every series over [start, end].
func (b *Board) Legends(start, end float64) []Legend {
	out := make([]Legend, 0, len(b.order))
	precision := b.Precision()
	for i, e := range b.order {
		st := e.series.LatestStatistics(start, end)
		l := Legend{
			Index:   i,
			Series:  e.series.Title(),
			Color:   e.series.Color(),
			Visible: e.series.Visible(),
			Kind:    e.group.Kind,
			Stats:   st,
			Latest:  "-",
			Min:     "-",
			Max:     "-",
			Average: "-",
		}
		if !st.Empty() {
			f := e.group.Units
			l.Latest = f.Format(st.Latest, precision)
			l.Min = f.Format(st.Min, precision)
			l.Max = f.Format(st.Max, precision)
			l.Average = f.Format(st.Average, precision)
		}
		out = append(out, l)
	}
	return out
}

func (b *Board) entryFor(r collect.Reading) *entry {
	if e, ok := b.series[r.Series]; ok {
		return e
	}
	g := b.groupFor(collect.ParseKind(string(r.Kind)))
	s := linechart.NewDataSeries(r.Series, b.theme.SeriesColor(len(b.order)), linechart.WithSeriesLogf(b.logf))
	g.Drawer.AddDataSeries(s)
	e := &entry{series: s, group: g}
	b.series[r.Series] = e
	b.order = append(b.order, e)
	return e
}

func (b *Board) groupFor(kind collect.Kind) *Group {
	if g, ok := b.byKind[kind]; ok {
		return g
	}
	units := unitsFor(kind)
	label := units.NewLabel(
		linechart.WithLabelLogf(b.logf),
		linechart.WithTextMetrics(b.metrics.TextSize, b.metrics.MinSpacing),
		linechart.WithMaxLabels(b.metrics.MaxLabels),
	)
	g := &Group{Kind: kind, Units: units, Drawer: linechart.NewCanvasDrawer(label, b.metrics.Drawer)}
	b.byKind[kind] = g

	// keep groups in a stable kind order regardless of arrival order
	idx := len(b.groups)
	for i, other := range b.groups {
		if kindOrder[kind] < kindOrder[other.Kind] {
			idx = i
			break
		}
	}
	b.groups = append(b.groups, nil)
	copy(b.groups[idx+1:], b.groups[idx:])
	b.groups[idx] = g
	return g
}

func unitsFor(kind collect.Kind) linechart.UnitSystem {
	switch kind {
	case collect.KindPercent:
		return linechart.Percent
	case collect.KindBytes:
		return linechart.Bytes
	default:
		return linechart.Count
	}
}
