package analysis

import (
	"math"
	"sort"
)

type Bucket struct {
	From  float64
	To    float64
	Count int
}

// Summary describes the distribution of one series over a window.
type Summary struct {
	Count       int
	Min         float64
	Max         float64
	Mean        float64
	Median      float64
	StdDev      float64
	Percentiles map[int]float64
	Histogram   []Bucket
}

// Summarize computes order statistics over values. Non-finite values are
// ignored. bins <= 0 falls back to 10 buckets.
func Summarize(values []float64, percentiles []int, bins int) Summary {
	sorted := make([]float64, 0, len(values))
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		sorted = append(sorted, v)
	}
	stats := Summary{}
	count := len(sorted)
	if count == 0 {
		return stats
	}
	sort.Float64s(sorted)

	stats.Count = count
	stats.Min = sorted[0]
	stats.Max = sorted[count-1]

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	stats.Mean = sum / float64(count)

	if count%2 == 0 {
		mid := count / 2
		stats.Median = (sorted[mid-1] + sorted[mid]) / 2
	} else {
		stats.Median = sorted[count/2]
	}

	stats.StdDev = stdDev(sorted, stats.Mean)

	if len(percentiles) > 0 {
		stats.Percentiles = nearestRank(sorted, percentiles)
	}

	if bins <= 0 {
		bins = 10
	}
	stats.Histogram = histogram(sorted, bins)

	return stats
}

func stdDev(values []float64, mean float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sumSquares float64
	for _, v := range values {
		delta := v - mean
		sumSquares += delta * delta
	}
	return math.Sqrt(sumSquares / float64(len(values)))
}

// nearestRank expects values sorted ascending.
func nearestRank(values []float64, percentiles []int) map[int]float64 {
	result := make(map[int]float64, len(percentiles))
	count := len(values)
	for _, p := range percentiles {
		switch {
		case p <= 0:
			result[p] = values[0]
			continue
		case p >= 100:
			result[p] = values[count-1]
			continue
		}
		idx := int(math.Ceil(float64(p)/100*float64(count))) - 1
		idx = max(0, min(idx, count-1))
		result[p] = values[idx]
	}
	return result
}

func histogram(values []float64, bins int) []Bucket {
	if len(values) == 0 {
		return nil
	}
	if bins > len(values) {
		bins = len(values)
	}

	lo := values[0]
	hi := values[len(values)-1]
	delta := hi - lo
	if delta <= 0 {
		return []Bucket{{From: lo, To: hi, Count: len(values)}}
	}

	width := delta / float64(bins)
	counts := make([]int, bins)
	for _, v := range values {
		bucket := int(math.Floor((v - lo) / width))
		counts[max(0, min(bucket, bins-1))]++
	}

	hist := make([]Bucket, bins)
	for i := range hist {
		from := lo + float64(i)*width
		to := from + width
		if i == bins-1 {
			to = hi
		}
		hist[i] = Bucket{From: from, To: to, Count: counts[i]}
	}
	return hist
}
