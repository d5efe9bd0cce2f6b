package canvas

import "math"

type point struct{ x, y float64 }

func finite(p point) bool {
	return !math.IsNaN(p.x) && !math.IsNaN(p.y) && !math.IsInf(p.x, 0) && !math.IsInf(p.y, 0)
}

// path collects subpaths between BeginPath calls. Each subpath starts at a
// MoveTo; a LineTo without one starts a new subpath at its own point.
type path struct {
	subs [][]point
}

func (p *path) reset() { p.subs = p.subs[:0] }

func (p *path) moveTo(x, y float64) {
	p.subs = append(p.subs, []point{{x, y}})
}

func (p *path) lineTo(x, y float64) {
	if len(p.subs) == 0 {
		p.moveTo(x, y)
		return
	}
	last := len(p.subs) - 1
	p.subs[last] = append(p.subs[last], point{x, y})
}

func (p *path) close() {
	if len(p.subs) == 0 {
		return
	}
	last := len(p.subs) - 1
	if sub := p.subs[last]; len(sub) > 1 {
		p.subs[last] = append(sub, sub[0])
	}
}

// clipSegment clips a->b to the box [minX, maxX] x [minY, maxY] using the
// Liang-Barsky parametric test.
func clipSegment(a, b point, minX, minY, maxX, maxY float64) (point, point, bool) {
	if !finite(a) || !finite(b) {
		return a, b, false
	}
	t0, t1 := 0.0, 1.0
	dx, dy := b.x-a.x, b.y-a.y
	edges := [4][2]float64{
		{-dx, a.x - minX},
		{dx, maxX - a.x},
		{-dy, a.y - minY},
		{dy, maxY - a.y},
	}
	for _, e := range edges {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return a, b, false
			}
			continue
		}
		r := q / p
		if p < 0 {
			if r > t1 {
				return a, b, false
			}
			t0 = math.Max(t0, r)
		} else {
			if r < t0 {
				return a, b, false
			}
			t1 = math.Min(t1, r)
		}
	}
	return point{a.x + t0*dx, a.y + t0*dy}, point{a.x + t1*dx, a.y + t1*dy}, true
}
