package ui

import (
	"fmt"
	"strings"

	"github.com/unkn0wn-root/sysgraph/internal/analysis"
)

const histogramBarWidth = 20

// RenderHistogram draws bins as aligned text bars. format renders bucket
// bounds in the series unit.
func RenderHistogram(bins []analysis.Bucket, format func(float64) string) string {
	if len(bins) == 0 {
		return ""
	}
	if format == nil {
		format = func(v float64) string { return fmt.Sprintf("%g", v) }
	}

	maxBarCount := 0
	maxFromWidth := 0
	maxToWidth := 0
	maxCountWidth := 0

	formattedFrom := make([]string, len(bins))
	formattedTo := make([]string, len(bins))
	counts := make([]string, len(bins))

	for i, bucket := range bins {
		formattedFrom[i] = format(bucket.From)
		formattedTo[i] = format(bucket.To)
		counts[i] = fmt.Sprintf("%d", bucket.Count)

		if bucket.Count > maxBarCount {
			maxBarCount = bucket.Count
		}
		if w := len(formattedFrom[i]); w > maxFromWidth {
			maxFromWidth = w
		}
		if w := len(formattedTo[i]); w > maxToWidth {
			maxToWidth = w
		}
		if w := len(counts[i]); w > maxCountWidth {
			maxCountWidth = w
		}
	}

	if maxBarCount == 0 {
		maxBarCount = 1
	}

	var builder strings.Builder
	builder.WriteString("  Histogram:\n")

	for i, bucket := range bins {
		barLen := int((float64(bucket.Count) / float64(maxBarCount)) * histogramBarWidth)
		bar := strings.Repeat("#", max(barLen, 0))
		builder.WriteString("    ")
		builder.WriteString(fmt.Sprintf("%-*s", maxFromWidth, formattedFrom[i]))
		builder.WriteString(" - ")
		builder.WriteString(fmt.Sprintf("%-*s", maxToWidth, formattedTo[i]))
		builder.WriteString(" | ")
		builder.WriteString(fmt.Sprintf("%-*s", histogramBarWidth, bar))
		builder.WriteString(" (")
		builder.WriteString(fmt.Sprintf("%-*s", maxCountWidth, counts[i]))
		builder.WriteString(")\n")
	}

	return builder.String()
}
