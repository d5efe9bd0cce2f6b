package ui

import (
	"strings"
	"testing"

	"github.com/unkn0wn-root/sysgraph/internal/analysis"
	"github.com/unkn0wn-root/sysgraph/internal/linechart"
)

func TestRenderHistogramAlignment(t *testing.T) {
	bins := []analysis.Bucket{
		{From: 512, To: 2048, Count: 6},
		{From: 2048, To: 3 << 20, Count: 0},
	}
	output := RenderHistogram(bins, func(v float64) string { return linechart.Bytes.Format(v, 1) })
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) != 3 { // header + 2 rows
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	first := lines[1]
	second := lines[2]
	pipeIdx := strings.Index(first, "|")
	if pipeIdx == -1 || strings.Index(second, "|") != pipeIdx {
		t.Fatalf("expected pipes to align: %q vs %q", first, second)
	}
	parenIdx := strings.Index(first, "(")
	if parenIdx == -1 || strings.Index(second, "(") != parenIdx {
		t.Fatalf("expected counts to align: %q vs %q", first, second)
	}
	if !strings.Contains(first, "512 B") || !strings.Contains(second, "3 MB") {
		t.Fatalf("expected bounds in series units: %q / %q", first, second)
	}
	if !strings.Contains(first, strings.Repeat("#", histogramBarWidth)) {
		t.Fatalf("expected the fullest bucket to fill the bar: %q", first)
	}
}

func TestRenderHistogramEmpty(t *testing.T) {
	if out := RenderHistogram(nil, nil); out != "" {
		t.Fatalf("expected empty output, got %q", out)
	}
}
