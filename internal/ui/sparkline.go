package ui

import (
	"sort"
	"strings"

	"github.com/unkn0wn-root/sysgraph/internal/linechart"
)

const sparklineWidth = 16

var sparkLevels = []rune("▁▂▄▆█")

// sparkValues returns up to n trailing values of points.
func sparkValues(points []linechart.Sample, n int) []float64 {
	if n <= 0 || len(points) == 0 {
		return nil
	}
	if len(points) > n {
		points = points[len(points)-n:]
	}
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Value
	}
	return out
}

// sparkBounds uses the 10th and 90th percentile so single spikes do not
// flatten the rest of the line.
func sparkBounds(vals []float64) (float64, float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	if len(vals) == 1 {
		return vals[0], vals[0]
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	lo := percentile(sorted, 10)
	hi := percentile(sorted, 90)
	if hi <= lo {
		return sorted[0], sorted[len(sorted)-1]
	}
	return lo, hi
}

func percentile(sorted []float64, pct int) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if pct <= 0 {
		return sorted[0]
	}
	if pct >= 100 {
		return sorted[len(sorted)-1]
	}
	pos := (float64(pct) / 100.0) * float64(len(sorted)-1)
	idx := int(pos + 0.5)
	return sorted[min(max(idx, 0), len(sorted)-1)]
}

func sparkline(vals []float64) string {
	if len(vals) == 0 {
		return ""
	}
	lo, hi := sparkBounds(vals)
	if hi <= lo {
		return strings.Repeat(string(sparkLevels[0]), len(vals))
	}
	scale := hi - lo
	out := make([]rune, len(vals))
	for i, v := range vals {
		v = min(max(v, lo), hi)
		n := (v - lo) / scale
		idx := int(n*float64(len(sparkLevels)-1) + 0.5)
		out[i] = sparkLevels[min(max(idx, 0), len(sparkLevels)-1)]
	}
	return string(out)
}
