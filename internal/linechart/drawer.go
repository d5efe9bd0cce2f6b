package linechart

import (
	"math"
	"time"

	"github.com/charmbracelet/lipgloss"
)

const (
	second = float64(time.Second / time.Millisecond)
	minute = 60 * second
	hour   = 60 * minute
	day    = 24 * hour
)

// timeStepUnits are the tick spacings the time axis may use, finest first.
var timeStepUnits = []float64{
	second, 2 * second, 5 * second, 10 * second, 15 * second, 30 * second,
	minute, 2 * minute, 5 * minute, 10 * minute, 15 * minute, 30 * minute,
	hour, 2 * hour, 3 * hour, 6 * hour, 12 * hour,
	day, 2 * day, 7 * day,
}

const sampleTimeLabel = "00:00:00"

// DrawerConfig holds the layout metrics of a drawing surface. Lengths are in
// the surface's pixel unit, BaseStep in milliseconds.
type DrawerConfig struct {
	TimeLabelHeight           float64
	MinLabelHorizontalSpacing float64
	TickLength                float64
	LabelPadding              float64
	PointSpacing              float64
	BaseStep                  float64
	Precision                 int
	FillAlpha                 float64
	GridColor                 lipgloss.Color
	TextColor                 lipgloss.Color
	Location                  *time.Location
}

func DefaultDrawerConfig() DrawerConfig {
	return DrawerConfig{
		TimeLabelHeight:           20,
		MinLabelHorizontalSpacing: 25,
		TickLength:                10,
		LabelPadding:              4,
		PointSpacing:              2,
		BaseStep:                  1,
		Precision:                 DefaultPrecision,
		FillAlpha:                 0.2,
		GridColor:                 lipgloss.Color("#403B59"),
		TextColor:                 lipgloss.Color("#A6A1BB"),
		Location:                  time.Local,
	}
}

// CanvasDrawer draws a set of series that share one UnitLabel.
type CanvasDrawer struct {
	cfg      DrawerConfig
	units    *UnitLabel
	series   []*DataSeries
	fixedMax *float64

	width  float64
	height float64
}

func NewCanvasDrawer(units *UnitLabel, cfg DrawerConfig) *CanvasDrawer {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &CanvasDrawer{cfg: cfg, units: units}
}

func (d *CanvasDrawer) AddDataSeries(s *DataSeries) {
	if s == nil {
		return
	}
	d.series = append(d.series, s)
}

func (d *CanvasDrawer) Series() []*DataSeries {
	return d.series
}

func (d *CanvasDrawer) UnitLabel() *UnitLabel {
	return d.units
}

// SetFixedMaxValue pins the value axis maximum; nil returns to the visible
// maximum of the data.
func (d *CanvasDrawer) SetFixedMaxValue(v *float64) {
	if v == nil {
		d.fixedMax = nil
		return
	}
	val := *v
	d.fixedMax = &val
}

// SetColors restyles the grid, labels and area fill of later renders.
func (d *CanvasDrawer) SetColors(grid, text lipgloss.Color, fillAlpha float64) {
	d.cfg.GridColor = grid
	d.cfg.TextColor = text
	d.cfg.FillAlpha = fillAlpha
}

func (d *CanvasDrawer) ShouldRender() bool {
	return len(d.series) > 0
}

// PlotSize is the width and height of the plotting area of the last render.
func (d *CanvasDrawer) PlotSize() (float64, float64) {
	return d.width, d.height
}

// RenderCanvas draws the visible window [start, end] where timeScale is the
// number of milliseconds per pixel. Degenerate input draws what it can and
// never fails.
func (d *CanvasDrawer) RenderCanvas(ctx Context, width, height, start, end, timeScale float64) {
	if ctx == nil || !(width > 0) || !(height > 0) {
		return
	}
	ctx.ClearRect(0, 0, width, height)

	chartHeight := height - d.cfg.TimeLabelHeight
	if chartHeight <= 0 {
		return
	}
	d.width, d.height = width, chartHeight
	ctx.StrokeRect(0, 0, width, chartHeight, d.cfg.GridColor)

	if !(timeScale > 0) || !isFinite(timeScale) || !isFinite(start) || !isFinite(end) {
		return
	}

	d.drawTimeLabels(ctx, width, chartHeight, start, end, timeScale)

	step := d.StepSize(timeScale)
	_ = d.units.SetLayout(chartHeight, d.cfg.Precision)
	d.units.SetMaxValue(d.visibleMaxValue(start, end, step))
	d.drawValueLabels(ctx, chartHeight)

	scale := d.units.ValueScale()
	for _, s := range d.series {
		d.drawSeries(ctx, s, chartHeight, start, end, step, timeScale, scale)
	}
}

// StepSize is the down-sampling bucket width for a time scale: BaseStep
// doubled until it covers PointSpacing pixels. Power-of-two steps keep the
// same buckets across nearby zoom levels.
func (d *CanvasDrawer) StepSize(timeScale float64) float64 {
	minStep := d.cfg.PointSpacing * timeScale
	step := d.cfg.BaseStep
	if !(step > 0) {
		step = 1
	}
	for step < minStep && !math.IsInf(step, 0) {
		step *= 2
	}
	return step
}

// TimeLabelStep picks the finest predefined tick spacing whose on-screen gap
// fits a label plus the minimum spacing, or the coarsest one if none fits.
func (d *CanvasDrawer) TimeLabelStep(ctx Context, timeScale float64) float64 {
	need := ctx.MeasureText(sampleTimeLabel) + d.cfg.MinLabelHorizontalSpacing
	for _, unit := range timeStepUnits {
		if unit/timeScale >= need {
			return unit
		}
	}
	return timeStepUnits[len(timeStepUnits)-1]
}

func (d *CanvasDrawer) drawTimeLabels(ctx Context, width, chartHeight, start, end, timeScale float64) {
	step := d.TimeLabelStep(ctx, timeScale)
	y := chartHeight + d.cfg.TimeLabelHeight/2
	first := d.firstTick(start, step)
	for i := 0; ; i++ {
		t := first + float64(i)*step
		if t > end {
			break
		}
		x := (t - start) / timeScale
		if x > width {
			break
		}
		ctx.BeginPath()
		ctx.MoveTo(x, chartHeight)
		ctx.LineTo(x, chartHeight-d.cfg.TickLength/2)
		ctx.Stroke(d.cfg.GridColor)
		ctx.FillText(d.formatTime(t, step), x, y, AlignCenter, d.cfg.TextColor)
	}
}

// firstTick is the first tick at or after start. Steps of an hour or more
// align to the wall clock of cfg.Location rather than to UTC.
func (d *CanvasDrawer) firstTick(start, step float64) float64 {
	if step < hour {
		return math.Ceil(start/step) * step
	}
	_, off := time.UnixMilli(int64(math.Floor(start))).In(d.cfg.Location).Zone()
	shift := float64(off) * second
	return math.Ceil((start+shift)/step)*step - shift
}

func (d *CanvasDrawer) formatTime(t, step float64) string {
	ts := time.UnixMilli(int64(math.Round(t))).In(d.cfg.Location)
	switch {
	case step >= day:
		return ts.Format("Jan 2")
	case step >= minute:
		return ts.Format("15:04")
	default:
		return ts.Format("15:04:05")
	}
}

func (d *CanvasDrawer) visibleMaxValue(start, end, step float64) float64 {
	if d.fixedMax != nil {
		return *d.fixedMax
	}
	maxValue := 0.0
	for _, s := range d.series {
		if v := s.DisplayedMaxValue(start, end, step); v > maxValue {
			maxValue = v
		}
	}
	return maxValue
}

func (d *CanvasDrawer) drawValueLabels(ctx Context, chartHeight float64) {
	labels := d.units.Labels()
	n := len(labels)
	if n == 0 {
		return
	}
	for i, label := range labels {
		y := chartHeight
		if n > 1 {
			y = chartHeight * float64(i) / float64(n-1)
		}
		ctx.BeginPath()
		ctx.MoveTo(0, y)
		ctx.LineTo(d.cfg.TickLength, y)
		ctx.Stroke(d.cfg.GridColor)
		ctx.FillText(label, d.cfg.TickLength+d.cfg.LabelPadding, y, AlignLeft, d.cfg.TextColor)
	}
}

func (d *CanvasDrawer) drawSeries(ctx Context, s *DataSeries, chartHeight, start, end, step, timeScale, scale float64) {
	points := s.DisplayedPoints(start, end, step)
	if len(points) == 0 {
		return
	}
	x := func(p Sample) float64 { return (p.Time - start) / timeScale }
	y := func(p Sample) float64 {
		if scale <= 0 {
			return chartHeight
		}
		return chartHeight - p.Value/scale
	}

	ctx.BeginPath()
	ctx.MoveTo(x(points[0]), y(points[0]))
	for _, p := range points[1:] {
		ctx.LineTo(x(p), y(p))
	}
	ctx.LineTo(x(points[len(points)-1]), chartHeight)
	ctx.LineTo(x(points[0]), chartHeight)
	ctx.ClosePath()
	ctx.Fill(s.Color(), d.cfg.FillAlpha)

	ctx.BeginPath()
	ctx.MoveTo(x(points[0]), y(points[0]))
	for _, p := range points[1:] {
		ctx.LineTo(x(p), y(p))
	}
	ctx.Stroke(s.Color())
}
