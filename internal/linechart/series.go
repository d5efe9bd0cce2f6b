package linechart

import (
	"math"
	"sort"

	"github.com/charmbracelet/lipgloss"

	"github.com/unkn0wn-root/sysgraph/internal/errdef"
)

type window struct {
	start float64
	end   float64
	step  float64
}

type pointCache struct {
	key    window
	valid  bool
	points []Sample
	max    float64
}

// DataSeries is an append-only, time-ascending sequence of samples for one
// signal plus the down-sampled view last requested for drawing.
type DataSeries struct {
	title   string
	color   lipgloss.Color
	visible bool
	points  []Sample
	cache   pointCache
	logf    Logf
}

type SeriesOption func(*DataSeries)

// WithSeriesLogf routes rejected-sample warnings to fn.
func WithSeriesLogf(fn Logf) SeriesOption {
	return func(s *DataSeries) {
		if fn != nil {
			s.logf = fn
		}
	}
}

func NewDataSeries(title string, color lipgloss.Color, opts ...SeriesOption) *DataSeries {
	s := &DataSeries{
		title:   title,
		color:   color,
		visible: true,
		logf:    defaultLogf,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *DataSeries) Title() string         { return s.title }
func (s *DataSeries) Color() lipgloss.Color { return s.color }
func (s *DataSeries) Visible() bool         { return s.visible }
func (s *DataSeries) Len() int              { return len(s.points) }

func (s *DataSeries) SetVisible(v bool) {
	s.visible = v
}

// SetColor changes the draw color; the sample cache stays valid.
func (s *DataSeries) SetColor(c lipgloss.Color) {
	s.color = c
}

// Points returns a copy of the stored samples.
func (s *DataSeries) Points() []Sample {
	return append([]Sample(nil), s.points...)
}

// PointsIn returns a copy of the samples with start <= time <= end.
func (s *DataSeries) PointsIn(start, end float64) []Sample {
	from := s.lowerBound(start)
	to := from + sort.Search(len(s.points)-from, func(i int) bool {
		return s.points[from+i].Time > end
	})
	return append([]Sample(nil), s.points[from:to]...)
}

// AddDataPoint appends a sample. Non-finite input or a time earlier than the
// last stored sample is dropped with a warning and reported as a sample error.
func (s *DataSeries) AddDataPoint(value, t float64) error {
	if !isFinite(value) || !isFinite(t) {
		return errdef.Soft(s.logf, errdef.New(errdef.CodeSample,
			"%s: non-finite sample value=%v time=%v", s.title, value, t))
	}
	if n := len(s.points); n > 0 && t < s.points[n-1].Time {
		return errdef.Soft(s.logf, errdef.New(errdef.CodeSample,
			"%s: sample time %v is before last sample time %v", s.title, t, s.points[n-1].Time))
	}
	s.points = append(s.points, Sample{Value: value, Time: t})
	s.cache.valid = false
	return nil
}

// DisplayedPoints returns the down-sampled points for the window, one per
// step-wide bucket. The returned slice is shared with the cache and must not
// be modified.
func (s *DataSeries) DisplayedPoints(start, end, step float64) []Sample {
	if !s.visible {
		return nil
	}
	s.updateCache(start, end, step)
	return s.cache.points
}

// DisplayedMaxValue is the largest value among DisplayedPoints, never below 0.
func (s *DataSeries) DisplayedMaxValue(start, end, step float64) float64 {
	if !s.visible {
		return 0
	}
	s.updateCache(start, end, step)
	return s.cache.max
}

// LatestStatistics scans the samples with start <= time <= end.
func (s *DataSeries) LatestStatistics(start, end float64) Statistics {
	stats := Statistics{Min: math.Inf(1), Max: math.Inf(-1)}
	var sum float64
	count := 0
	for i := s.lowerBound(start); i < len(s.points); i++ {
		p := s.points[i]
		if p.Time > end {
			break
		}
		stats.Latest = p.Value
		stats.Min = math.Min(stats.Min, p.Value)
		stats.Max = math.Max(stats.Max, p.Value)
		sum += p.Value
		count++
	}
	if count > 0 {
		stats.Average = sum / float64(count)
	}
	return stats
}

// RemoveOutdatedData drops, in one batch, every sample older than
// start - RetentionBuffer and reports whether anything was removed.
func (s *DataSeries) RemoveOutdatedData(start float64) bool {
	idx := s.lowerBound(start - RetentionBuffer)
	if idx == 0 {
		return false
	}
	kept := make([]Sample, len(s.points)-idx)
	copy(kept, s.points[idx:])
	s.points = kept
	s.cache.valid = false
	return true
}

// lowerBound returns the index of the first sample with time >= t.
func (s *DataSeries) lowerBound(t float64) int {
	return sort.Search(len(s.points), func(i int) bool {
		return s.points[i].Time >= t
	})
}

func (s *DataSeries) updateCache(start, end, step float64) {
	key := window{start: start, end: end, step: step}
	if s.cache.valid && s.cache.key == key {
		return
	}
	s.cache = pointCache{key: key, valid: true}
	if !(step > 0) || math.IsInf(step, 0) {
		_ = errdef.Soft(s.logf, errdef.New(errdef.CodeSample, "%s: invalid step size %v", s.title, step))
		return
	}

	points := s.downsample(start, end, step)
	maxValue := 0.0
	for _, p := range points {
		if p.Value > maxValue {
			maxValue = p.Value
		}
	}
	s.cache.points = points
	s.cache.max = maxValue
}

// downsample averages samples into buckets aligned to multiples of step so
// the boundaries do not move while start scrolls. One bucket before the
// window and one point after it keep the line from starting or stopping
// short of the chart edges.
func (s *DataSeries) downsample(start, end, step float64) []Sample {
	n := len(s.points)
	if n == 0 {
		return nil
	}

	bucket := alignDown(start, step) - step
	idx := s.lowerBound(bucket)

	var out []Sample
	if idx > 0 && (idx == n || s.points[idx].Time >= bucket+step) {
		out = append(out, s.points[idx-1])
	}

	for idx < n && bucket <= end {
		next := bucket + step
		if next <= bucket {
			// step vanished against the magnitude of bucket
			break
		}
		if p, used := s.average(idx, next); used > 0 {
			out = append(out, p)
			idx += used
		}
		bucket = next
		if idx < n && s.points[idx].Time >= bucket+step {
			bucket = alignDown(s.points[idx].Time, step)
		}
	}

	if idx < n && bucket > end {
		limit := alignDown(s.points[idx].Time, step) + step
		if p, used := s.average(idx, limit); used > 0 {
			out = append(out, p)
		}
	}
	return out
}

// average reduces the samples from index from up to (excluding) time limit
// to their mean value and mean time.
func (s *DataSeries) average(from int, limit float64) (Sample, int) {
	var sumV, sumT float64
	i := from
	for i < len(s.points) && s.points[i].Time < limit {
		sumV += s.points[i].Value
		sumT += s.points[i].Time
		i++
	}
	used := i - from
	if used == 0 {
		return Sample{}, 0
	}
	return Sample{Value: sumV / float64(used), Time: sumT / float64(used)}, used
}
