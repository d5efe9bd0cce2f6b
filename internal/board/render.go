package board

import (
	"image"
	"image/draw"
	"image/png"
	"io"

	"github.com/unkn0wn-root/sysgraph/internal/canvas"
	"github.com/unkn0wn-root/sysgraph/internal/duration"
	"github.com/unkn0wn-root/sysgraph/internal/errdef"
	"github.com/unkn0wn-root/sysgraph/internal/linechart"
)

const rasterTitleHeight = 18

// Panel is one group drawn onto its own terminal canvas.
type Panel struct {
	Group  *Group
	Title  string
	Unit   string
	Canvas *canvas.Terminal
}

// Height is the number of terminal rows the panel needs including its title.
func (p Panel) Height() int {
	_, rows := p.Canvas.Cells()
	return rows + 1
}

// RenderTerminal shares rows between the groups, one title row each, and
// draws the window ending at end.
func (b *Board) RenderTerminal(cols, rows int, end float64, opts ...canvas.TerminalOption) []Panel {
	if len(b.groups) == 0 || cols <= 0 || rows <= 0 {
		return nil
	}
	opts = append([]canvas.TerminalOption{canvas.WithBackground(b.theme.Background)}, opts...)
	heights := split(rows, len(b.groups))
	panels := make([]Panel, 0, len(b.groups))
	for i, g := range b.groups {
		body := heights[i] - 1
		if body <= 0 {
			continue
		}
		t := canvas.NewTerminal(cols, body, opts...)
		b.draw(g, t, end)
		panels = append(panels, Panel{
			Group:  g,
			Title:  g.Title(),
			Unit:   g.Drawer.UnitLabel().CurrentUnitString(),
			Canvas: t,
		})
	}
	return panels
}

// RenderImage stacks every group into one image with a title strip above
// each chart.
func (b *Board) RenderImage(width, height int, end float64) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, max(width, 1), max(height, 1)))
	if len(b.groups) == 0 {
		bg := canvas.NewRaster(width, height, canvas.WithRasterBackground(b.theme.Background))
		draw.Draw(out, out.Bounds(), bg.Image(), image.Point{}, draw.Src)
		return out
	}
	y := 0
	for i, h := range split(height, len(b.groups)) {
		g := b.groups[i]
		strip := canvas.NewRaster(width, rasterTitleHeight, canvas.WithRasterBackground(b.theme.Background))
		chart := canvas.NewRaster(width, max(h-rasterTitleHeight, 1), canvas.WithRasterBackground(b.theme.Background))
		b.draw(g, chart, end)

		title := g.Title()
		if unit := g.Drawer.UnitLabel().CurrentUnitString(); unit != "" {
			title += " (" + unit + ")"
		}
		strip.FillText(title, 4, rasterTitleHeight/2, linechart.AlignLeft, b.theme.Text)

		draw.Draw(out, image.Rect(0, y, width, y+rasterTitleHeight), strip.Image(), image.Point{}, draw.Src)
		draw.Draw(out, image.Rect(0, y+rasterTitleHeight, width, y+h), chart.Image(), image.Point{}, draw.Src)
		y += h
	}
	return out
}

func (b *Board) WritePNG(w io.Writer, width, height int, end float64) error {
	if err := png.Encode(w, b.RenderImage(width, height, end)); err != nil {
		return errdef.Wrap(errdef.CodeRender, err, "encode png")
	}
	return nil
}

type surface interface {
	linechart.Context
	Size() (float64, float64)
}

func (b *Board) draw(g *Group, s surface, end float64) {
	width, height := s.Size()
	span := duration.Millis(b.window)
	timeScale := 0.0
	if width > 0 {
		timeScale = span / width
	}
	g.Drawer.RenderCanvas(s, width, height, end-span, end, timeScale)
}

// split divides total into n near-equal parts, earlier parts taking the
// remainder.
func split(total, n int) []int {
	out := make([]int, n)
	if n == 0 {
		return out
	}
	base, rem := total/n, total%n
	for i := range out {
		out[i] = base
		if i < rem {
			out[i]++
		}
	}
	return out
}
