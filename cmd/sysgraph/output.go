package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/unkn0wn-root/sysgraph/internal/board"
	"github.com/unkn0wn-root/sysgraph/internal/duration"
	"github.com/unkn0wn-root/sysgraph/internal/errdef"
)

const (
	defaultTextWidth  = 100
	textRowsPerGroup  = 14
	defaultPNGWidth   = 1200
	pngHeightPerGroup = 300
)

type outputOptions struct {
	png    string
	width  int
	height int
}

func (o *outputOptions) register(fs *flag.FlagSet) {
	fs.StringVar(&o.png, "png", "", "Write a PNG image to this path instead of printing")
	fs.IntVar(&o.width, "width", 0, "Columns, or pixels with --png")
	fs.IntVar(&o.height, "height", 0, "Rows, or pixels with --png")
}

// writeBoard prints the charts and legend of b for the window ending at end,
// or saves them as a PNG.
func writeBoard(w io.Writer, e *env, b *board.Board, opts outputOptions, end float64) error {
	groups := len(b.Groups())
	if groups == 0 {
		return errdef.New(errdef.CodeRender, "no readings to chart")
	}
	if opts.png != "" {
		width, height := opts.width, opts.height
		if width <= 0 {
			width = defaultPNGWidth
		}
		if height <= 0 {
			height = pngHeightPerGroup * groups
		}
		f, err := os.Create(opts.png)
		if err != nil {
			return errdef.Wrap(errdef.CodeFilesystem, err, "create %s", opts.png)
		}
		if err := b.WritePNG(f, width, height, end); err != nil {
			_ = f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return errdef.Wrap(errdef.CodeFilesystem, err, "close %s", opts.png)
		}
		fmt.Fprintf(w, "wrote %s (%dx%d)\n", opts.png, width, height)
		return nil
	}

	width, height := opts.width, opts.height
	if width <= 0 {
		width = defaultTextWidth
	}
	if height <= 0 {
		height = textRowsPerGroup * groups
	}
	for _, p := range b.RenderTerminal(width, height, end, e.canvasOptions()...) {
		title := p.Title
		if p.Unit != "" {
			title += " (" + p.Unit + ")"
		}
		fmt.Fprintln(w, e.theme.PaneTitle.Render(title))
		fmt.Fprintln(w, p.Canvas.String())
	}
	start := end - duration.Millis(b.Window())
	for _, l := range b.Legends(start, end) {
		fmt.Fprintf(w, "%d %-24s now %-10s min %-10s max %-10s avg %s\n",
			l.Index+1, l.Series, l.Latest, l.Min, l.Max, l.Average)
	}
	return nil
}
