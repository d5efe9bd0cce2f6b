package linechart

import "github.com/charmbracelet/lipgloss"

type TextAlign int

const (
	AlignLeft TextAlign = iota
	AlignCenter
	AlignRight
)

// Context is the 2D surface a CanvasDrawer paints on. Coordinates are in the
// surface's own pixel unit with the origin at the top-left. FillText places
// text vertically centered on y.
type Context interface {
	ClearRect(x, y, w, h float64)
	StrokeRect(x, y, w, h float64, c lipgloss.Color)
	BeginPath()
	MoveTo(x, y float64)
	LineTo(x, y float64)
	ClosePath()
	Stroke(c lipgloss.Color)
	Fill(c lipgloss.Color, alpha float64)
	FillText(text string, x, y float64, align TextAlign, c lipgloss.Color)
	MeasureText(text string) float64
}
