package board

import (
	"github.com/unkn0wn-root/sysgraph/internal/linechart"
	"github.com/unkn0wn-root/sysgraph/internal/theme"
)

// Metrics is the layout of one kind of drawing surface.
type Metrics struct {
	Drawer     linechart.DrawerConfig
	TextSize   float64
	MinSpacing float64
	MaxLabels  int
}

// TerminalMetrics measures in braille dots: one text row is four dots high
// and a character is two dots wide.
func TerminalMetrics(th theme.Theme, precision int) Metrics {
	cfg := linechart.DefaultDrawerConfig()
	cfg.TimeLabelHeight = 4
	cfg.MinLabelHorizontalSpacing = 4
	cfg.TickLength = 2
	cfg.LabelPadding = 2
	cfg.PointSpacing = 1
	cfg.Precision = precision
	cfg.FillAlpha = th.FillAlpha
	cfg.GridColor = th.Grid
	cfg.TextColor = th.Text
	return Metrics{Drawer: cfg, TextSize: 2, MinSpacing: 4, MaxLabels: linechart.DefaultMaxLabels}
}

// RasterMetrics fits the 7x13 bitmap font used for PNG export.
func RasterMetrics(th theme.Theme, precision int) Metrics {
	cfg := linechart.DefaultDrawerConfig()
	cfg.Precision = precision
	cfg.FillAlpha = th.FillAlpha
	cfg.GridColor = th.Grid
	cfg.TextColor = th.Text
	return Metrics{
		Drawer:     cfg,
		TextSize:   linechart.DefaultTextSize,
		MinSpacing: linechart.DefaultMinLabelSpacing,
		MaxLabels:  10,
	}
}
