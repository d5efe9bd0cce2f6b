package canvas

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/unkn0wn-root/sysgraph/internal/errdef"
	"github.com/unkn0wn-root/sysgraph/internal/linechart"
)

const (
	strokeWidth = 1.5
	// coordinates beyond this are clamped before rasterizing
	coordLimit = 1e6
)

// Raster is an RGBA image surface for PNG export.
type Raster struct {
	img        *image.RGBA
	background color.RGBA
	face       font.Face
	raster     *vector.Rasterizer
	path       path
}

type RasterOption func(*Raster)

func WithRasterBackground(c lipgloss.Color) RasterOption {
	return func(r *Raster) { r.background = rgba(c, 1) }
}

func WithFace(face font.Face) RasterOption {
	return func(r *Raster) {
		if face != nil {
			r.face = face
		}
	}
}

func NewRaster(width, height int, opts ...RasterOption) *Raster {
	width, height = max(width, 1), max(height, 1)
	r := &Raster{
		img:        image.NewRGBA(image.Rect(0, 0, width, height)),
		background: color.RGBA{A: 0xff},
		face:       basicfont.Face7x13,
		raster:     vector.NewRasterizer(width, height),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.ClearRect(0, 0, float64(width), float64(height))
	return r
}

func (r *Raster) Size() (float64, float64) {
	b := r.img.Bounds()
	return float64(b.Dx()), float64(b.Dy())
}

func (r *Raster) Image() *image.RGBA { return r.img }

func (r *Raster) ClearRect(x, y, w, h float64) {
	rect := image.Rect(
		int(math.Floor(x)), int(math.Floor(y)),
		int(math.Ceil(x+w)), int(math.Ceil(y+h)),
	).Intersect(r.img.Bounds())
	draw.Draw(r.img, rect, image.NewUniform(r.background), image.Point{}, draw.Src)
}

func (r *Raster) StrokeRect(x, y, w, h float64, c lipgloss.Color) {
	if w <= 0 || h <= 0 {
		return
	}
	x0, y0 := x+0.5, y+0.5
	x1, y1 := x+w-0.5, y+h-0.5
	r.BeginPath()
	r.MoveTo(x0, y0)
	r.LineTo(x1, y0)
	r.LineTo(x1, y1)
	r.LineTo(x0, y1)
	r.ClosePath()
	r.Stroke(c)
	r.BeginPath()
}

func (r *Raster) BeginPath()          { r.path.reset() }
func (r *Raster) MoveTo(x, y float64) { r.path.moveTo(x, y) }
func (r *Raster) LineTo(x, y float64) { r.path.lineTo(x, y) }
func (r *Raster) ClosePath()          { r.path.close() }

// Stroke draws each segment as a quad of strokeWidth. All quads share one
// winding so overlaps at joints do not cancel.
func (r *Raster) Stroke(c lipgloss.Color) {
	r.resetRaster()
	drawn := false
	hw := strokeWidth / 2
	for _, sub := range r.path.subs {
		for i := 1; i < len(sub); i++ {
			a, b := clampPoint(sub[i-1]), clampPoint(sub[i])
			if !finite(a) || !finite(b) {
				continue
			}
			dx, dy := b.x-a.x, b.y-a.y
			length := math.Hypot(dx, dy)
			if length == 0 {
				continue
			}
			nx, ny := -dy/length*hw, dx/length*hw
			r.raster.MoveTo(float32(a.x+nx), float32(a.y+ny))
			r.raster.LineTo(float32(b.x+nx), float32(b.y+ny))
			r.raster.LineTo(float32(b.x-nx), float32(b.y-ny))
			r.raster.LineTo(float32(a.x-nx), float32(a.y-ny))
			r.raster.ClosePath()
			drawn = true
		}
	}
	if drawn {
		r.raster.Draw(r.img, r.img.Bounds(), image.NewUniform(rgba(c, 1)), image.Point{})
	}
}

func (r *Raster) Fill(c lipgloss.Color, alpha float64) {
	r.resetRaster()
	drawn := false
	for _, sub := range r.path.subs {
		if len(sub) < 3 {
			continue
		}
		started := false
		for _, p := range sub {
			p = clampPoint(p)
			if !finite(p) {
				continue
			}
			if !started {
				r.raster.MoveTo(float32(p.x), float32(p.y))
				started = true
				continue
			}
			r.raster.LineTo(float32(p.x), float32(p.y))
		}
		if started {
			r.raster.ClosePath()
			drawn = true
		}
	}
	if drawn {
		r.raster.Draw(r.img, r.img.Bounds(), image.NewUniform(nrgba(c, alpha)), image.Point{})
	}
}

// FillText draws text with its vertical center at y, shifted to stay inside
// the image horizontally.
func (r *Raster) FillText(text string, x, y float64, align linechart.TextAlign, c lipgloss.Color) {
	if text == "" || math.IsNaN(x) || math.IsNaN(y) {
		return
	}
	width := r.MeasureText(text)
	switch align {
	case linechart.AlignCenter:
		x -= width / 2
	case linechart.AlignRight:
		x -= width
	}
	imgW, _ := r.Size()
	x = math.Max(0, math.Min(x, imgW-width))

	m := r.face.Metrics()
	baseline := y + float64(m.Ascent.Round()-m.Descent.Round())/2
	d := font.Drawer{
		Dst:  r.img,
		Src:  image.NewUniform(rgba(c, 1)),
		Face: r.face,
		Dot:  fixed.P(int(math.Round(x)), int(math.Round(baseline))),
	}
	d.DrawString(text)
}

func (r *Raster) MeasureText(text string) float64 {
	return float64(font.MeasureString(r.face, text).Ceil())
}

// WritePNG encodes the current image.
func (r *Raster) WritePNG(w io.Writer) error {
	if err := png.Encode(w, r.img); err != nil {
		return errdef.Wrap(errdef.CodeRender, err, "encode png")
	}
	return nil
}

func (r *Raster) resetRaster() {
	b := r.img.Bounds()
	r.raster.Reset(b.Dx(), b.Dy())
	r.raster.DrawOp = draw.Over
}

func clampPoint(p point) point {
	return point{
		x: math.Max(-coordLimit, math.Min(coordLimit, p.x)),
		y: math.Max(-coordLimit, math.Min(coordLimit, p.y)),
	}
}

func rgba(c lipgloss.Color, alpha float64) color.RGBA {
	n := nrgba(c, alpha)
	return color.RGBAModel.Convert(n).(color.RGBA)
}

func nrgba(c lipgloss.Color, alpha float64) color.NRGBA {
	col, err := colorful.Hex(string(c))
	if err != nil {
		col = colorful.Color{R: 0.5, G: 0.5, B: 0.5}
	}
	red, green, blue := col.Clamped().RGB255()
	a := math.Max(0, math.Min(1, alpha))
	return color.NRGBA{R: red, G: green, B: blue, A: uint8(math.Round(a * 255))}
}
