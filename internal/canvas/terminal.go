package canvas

import (
	"io"
	"math"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/termenv"
	"github.com/rivo/uniseg"

	"github.com/unkn0wn-root/sysgraph/internal/linechart"
)

const (
	cellDotsX   = 2
	cellDotsY   = 4
	brailleBase = 0x2800
)

// brailleBits[y][x] is the Unicode braille bit of dot (x, y) inside a cell.
var brailleBits = [cellDotsY][cellDotsX]uint8{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

type textCell struct {
	glyph string
	color lipgloss.Color
	// cont marks the trailing cell of a double-width glyph.
	cont bool
}

// Terminal is a character-cell surface. Each cell holds a 2x4 braille dot
// matrix so the drawing resolution is twice the columns and four times the
// rows.
type Terminal struct {
	cols, rows int
	dots       []uint8
	dotColor   []lipgloss.Color
	fill       []lipgloss.Color
	text       []textCell

	background lipgloss.Color
	renderer   *lipgloss.Renderer
	path       path
}

type TerminalOption func(*Terminal)

// WithBackground sets the color fills blend against.
func WithBackground(c lipgloss.Color) TerminalOption {
	return func(t *Terminal) { t.background = c }
}

// WithColorProfile renders with a fixed color profile instead of the one
// detected from stdout.
func WithColorProfile(p termenv.Profile) TerminalOption {
	return func(t *Terminal) {
		r := lipgloss.NewRenderer(io.Discard)
		r.SetColorProfile(p)
		t.renderer = r
	}
}

func WithRenderer(r *lipgloss.Renderer) TerminalOption {
	return func(t *Terminal) {
		if r != nil {
			t.renderer = r
		}
	}
}

func NewTerminal(cols, rows int, opts ...TerminalOption) *Terminal {
	cols, rows = max(cols, 0), max(rows, 0)
	n := cols * rows
	t := &Terminal{
		cols:       cols,
		rows:       rows,
		dots:       make([]uint8, n),
		dotColor:   make([]lipgloss.Color, n),
		fill:       make([]lipgloss.Color, n),
		text:       make([]textCell, n),
		background: lipgloss.Color("#000000"),
		renderer:   lipgloss.DefaultRenderer(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Size is the drawable area in dots.
func (t *Terminal) Size() (float64, float64) {
	return float64(t.cols * cellDotsX), float64(t.rows * cellDotsY)
}

func (t *Terminal) Cells() (int, int) { return t.cols, t.rows }

func (t *Terminal) ClearRect(x, y, w, h float64) {
	c0, r0, c1, r1, ok := t.cellRect(x, y, w, h)
	if !ok {
		return
	}
	for r := r0; r <= r1; r++ {
		for c := c0; c <= c1; c++ {
			i := r*t.cols + c
			t.dots[i] = 0
			t.dotColor[i] = ""
			t.fill[i] = ""
			t.text[i] = textCell{}
		}
	}
}

// StrokeRect outlines the dots covered by [x, x+w) x [y, y+h).
func (t *Terminal) StrokeRect(x, y, w, h float64, c lipgloss.Color) {
	if w <= 0 || h <= 0 {
		return
	}
	x1, y1 := x+w-1, y+h-1
	corners := []point{{x, y}, {x1, y}, {x1, y1}, {x, y1}, {x, y}}
	for i := 1; i < len(corners); i++ {
		t.segment(corners[i-1], corners[i], c)
	}
}

func (t *Terminal) BeginPath()          { t.path.reset() }
func (t *Terminal) MoveTo(x, y float64) { t.path.moveTo(x, y) }
func (t *Terminal) LineTo(x, y float64) { t.path.lineTo(x, y) }
func (t *Terminal) ClosePath()          { t.path.close() }

func (t *Terminal) Stroke(c lipgloss.Color) {
	for _, sub := range t.path.subs {
		if len(sub) == 1 {
			t.segment(sub[0], sub[0], c)
			continue
		}
		for i := 1; i < len(sub); i++ {
			t.segment(sub[i-1], sub[i], c)
		}
	}
}

// Fill shades every cell that has at least one dot center inside the path
// (even-odd rule). The cell background becomes c blended over the existing
// fill at alpha.
func (t *Terminal) Fill(c lipgloss.Color, alpha float64) {
	wDots, hDots := t.cols*cellDotsX, t.rows*cellDotsY
	touched := make(map[int]struct{})
	scanline(t.path.subs, hDots, func(y int, xa, xb float64) {
		from := max(0, int(math.Ceil(xa-0.5)))
		to := min(wDots-1, int(math.Ceil(xb-0.5))-1)
		for x := from; x <= to; x++ {
			touched[(y/cellDotsY)*t.cols+x/cellDotsX] = struct{}{}
		}
	})
	for i := range touched {
		base := t.fill[i]
		if base == "" {
			base = t.background
		}
		t.fill[i] = blend(base, c, alpha)
	}
}

// FillText writes text on the cell row containing y. The run is shifted to
// stay inside the canvas.
func (t *Terminal) FillText(text string, x, y float64, align linechart.TextAlign, c lipgloss.Color) {
	if text == "" || t.cols == 0 || math.IsNaN(x) || math.IsNaN(y) {
		return
	}
	row := int(math.Floor(y / cellDotsY))
	if row < 0 || row >= t.rows {
		return
	}
	width := runewidth.StringWidth(text)
	col := int(math.Floor(x / cellDotsX))
	switch align {
	case linechart.AlignCenter:
		col -= width / 2
	case linechart.AlignRight:
		col -= width
	}
	col = max(0, min(col, t.cols-width))

	g := uniseg.NewGraphemes(text)
	for g.Next() && col < t.cols {
		cluster := g.Str()
		w := runewidth.StringWidth(cluster)
		if w == 0 {
			continue
		}
		if col+w > t.cols {
			break
		}
		i := row*t.cols + col
		t.text[i] = textCell{glyph: cluster, color: c}
		for k := 1; k < w; k++ {
			t.text[i+k] = textCell{cont: true, color: c}
		}
		col += w
	}
}

// MeasureText returns the width of text in dots.
func (t *Terminal) MeasureText(text string) float64 {
	return float64(runewidth.StringWidth(text) * cellDotsX)
}

// String renders the canvas as styled rows joined by newlines.
func (t *Terminal) String() string {
	var b strings.Builder
	for r := 0; r < t.rows; r++ {
		if r > 0 {
			b.WriteByte('\n')
		}
		t.renderRow(&b, r)
	}
	return b.String()
}

// Plain is String without any escape sequences.
func (t *Terminal) Plain() string {
	return ansi.Strip(t.String())
}

type cellStyle struct {
	fg, bg lipgloss.Color
}

func (t *Terminal) renderRow(b *strings.Builder, r int) {
	var (
		run   strings.Builder
		style cellStyle
	)
	flush := func() {
		if run.Len() == 0 {
			return
		}
		s := t.renderer.NewStyle()
		if style.fg != "" {
			s = s.Foreground(style.fg)
		}
		if style.bg != "" {
			s = s.Background(style.bg)
		}
		b.WriteString(s.Render(run.String()))
		run.Reset()
	}
	for c := 0; c < t.cols; c++ {
		i := r*t.cols + c
		glyph, st := t.cell(i)
		if glyph == "" {
			continue
		}
		if st != style {
			flush()
			style = st
		}
		run.WriteString(glyph)
	}
	flush()
}

func (t *Terminal) cell(i int) (string, cellStyle) {
	st := cellStyle{bg: t.fill[i]}
	switch tc := t.text[i]; {
	case tc.cont:
		return "", st
	case tc.glyph != "":
		st.fg = tc.color
		return tc.glyph, st
	}
	if t.dots[i] != 0 {
		st.fg = t.dotColor[i]
		return string(rune(brailleBase + int(t.dots[i]))), st
	}
	return " ", st
}

func (t *Terminal) segment(a, b point, c lipgloss.Color) {
	wDots, hDots := t.cols*cellDotsX, t.rows*cellDotsY
	if wDots == 0 || hDots == 0 {
		return
	}
	a, b, ok := clipSegment(a, b, 0, 0, float64(wDots-1), float64(hDots-1))
	if !ok {
		return
	}
	x0, y0 := int(math.Round(a.x)), int(math.Round(a.y))
	x1, y1 := int(math.Round(b.x)), int(math.Round(b.y))

	dx, sx := abs(x1-x0), 1
	if x0 > x1 {
		sx = -1
	}
	dy, sy := -abs(y1-y0), 1
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		t.setDot(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func (t *Terminal) setDot(x, y int, c lipgloss.Color) {
	col, row := x/cellDotsX, y/cellDotsY
	if col < 0 || col >= t.cols || row < 0 || row >= t.rows {
		return
	}
	i := row*t.cols + col
	t.dots[i] |= brailleBits[y%cellDotsY][x%cellDotsX]
	t.dotColor[i] = c
}

func (t *Terminal) cellRect(x, y, w, h float64) (int, int, int, int, bool) {
	if t.cols == 0 || t.rows == 0 || !(w > 0) || !(h > 0) {
		return 0, 0, 0, 0, false
	}
	c0 := max(0, int(math.Floor(x/cellDotsX)))
	r0 := max(0, int(math.Floor(y/cellDotsY)))
	c1 := min(t.cols-1, int(math.Ceil((x+w)/cellDotsX))-1)
	r1 := min(t.rows-1, int(math.Ceil((y+h)/cellDotsY))-1)
	return c0, r0, c1, r1, c0 <= c1 && r0 <= r1
}

// scanline calls span for every dot row with the [xa, xb) intervals that lie
// inside the polygons under the even-odd rule. Subpaths are closed
// implicitly.
func scanline(polys [][]point, height int, span func(y int, xa, xb float64)) {
	var xs []float64
	for y := 0; y < height; y++ {
		cy := float64(y) + 0.5
		xs = xs[:0]
		for _, poly := range polys {
			n := len(poly)
			if n < 3 {
				continue
			}
			for i := 0; i < n; i++ {
				a, b := poly[i], poly[(i+1)%n]
				if !finite(a) || !finite(b) {
					continue
				}
				if (a.y <= cy) != (b.y <= cy) {
					xs = append(xs, a.x+(cy-a.y)*(b.x-a.x)/(b.y-a.y))
				}
			}
		}
		sort.Float64s(xs)
		for i := 0; i+1 < len(xs); i += 2 {
			span(y, xs[i], xs[i+1])
		}
	}
}

// blend mixes over onto base at alpha in RGB space. Colors that are not hex
// (ANSI indices) cannot be mixed; the dominant one wins.
func blend(base, over lipgloss.Color, alpha float64) lipgloss.Color {
	alpha = math.Max(0, math.Min(1, alpha))
	bc, errB := colorful.Hex(string(base))
	oc, errO := colorful.Hex(string(over))
	if errB != nil || errO != nil {
		if alpha >= 0.5 {
			return over
		}
		return base
	}
	return lipgloss.Color(bc.BlendRgb(oc, alpha).Clamped().Hex())
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
