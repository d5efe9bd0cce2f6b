package analysis

import (
	"math"
	"testing"
)

func TestSummarize(t *testing.T) {
	values := []float64{500, 100, 300, 200, 400}

	stats := Summarize(values, []int{50, 90, 95, 99}, 5)

	if stats.Count != len(values) {
		t.Fatalf("expected count %d, got %d", len(values), stats.Count)
	}
	if stats.Min != 100 || stats.Max != 500 {
		t.Fatalf("expected range 100..500, got %v..%v", stats.Min, stats.Max)
	}
	if stats.Median != 300 {
		t.Fatalf("expected median 300, got %v", stats.Median)
	}
	if stats.Mean != 300 {
		t.Fatalf("expected mean 300, got %v", stats.Mean)
	}
	if want := math.Sqrt(20000); math.Abs(stats.StdDev-want) > 1e-9 {
		t.Fatalf("expected stddev %v, got %v", want, stats.StdDev)
	}
	if p50 := stats.Percentiles[50]; p50 != 300 {
		t.Fatalf("expected P50 300, got %v", p50)
	}
	if p90 := stats.Percentiles[90]; p90 != 500 {
		t.Fatalf("expected P90 500, got %v", p90)
	}

	if len(stats.Histogram) != 5 {
		t.Fatalf("expected 5 histogram buckets, got %d", len(stats.Histogram))
	}
	count := 0
	for _, bucket := range stats.Histogram {
		count += bucket.Count
	}
	if count != len(values) {
		t.Fatalf("expected histogram counts sum to %d, got %d", len(values), count)
	}
	if values[0] != 500 {
		t.Fatalf("input slice must not be reordered")
	}
}

func TestSummarizeSkipsNonFinite(t *testing.T) {
	stats := Summarize([]float64{math.NaN(), 2, math.Inf(1), 4}, nil, 0)
	if stats.Count != 2 || stats.Mean != 3 {
		t.Fatalf("expected two finite values with mean 3, got %+v", stats)
	}
	if stats.Percentiles != nil {
		t.Fatalf("expected no percentiles when none requested")
	}
}

func TestSummarizeFlatHistogram(t *testing.T) {
	stats := Summarize([]float64{7, 7, 7}, nil, 4)
	if len(stats.Histogram) != 1 || stats.Histogram[0].Count != 3 {
		t.Fatalf("expected a single bucket for constant input, got %+v", stats.Histogram)
	}
	if empty := Summarize(nil, []int{50}, 3); empty.Count != 0 || empty.Histogram != nil {
		t.Fatalf("expected zero summary for empty input, got %+v", empty)
	}
}
