package linechart

import (
	"fmt"
	"math"
	"testing"

	"github.com/unkn0wn-root/sysgraph/internal/errdef"
)

func quietSeries(title string) (*DataSeries, *[]string) {
	var logs []string
	s := NewDataSeries(title, "#7D56F4", WithSeriesLogf(func(format string, args ...any) {
		logs = append(logs, fmt.Sprintf(format, args...))
	}))
	return s, &logs
}

func TestAddDataPointRejectsOutOfOrder(t *testing.T) {
	s, logs := quietSeries("cpu")
	if err := s.AddDataPoint(1, 100); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.AddDataPoint(2, 100); err != nil {
		t.Fatalf("equal timestamps must be accepted: %v", err)
	}
	err := s.AddDataPoint(3, 99)
	if !errdef.Is(err, errdef.CodeSample) {
		t.Fatalf("expected sample error, got %v", err)
	}
	if s.Len() != 2 {
		t.Fatalf("expected 2 samples after rejected append, got %d", s.Len())
	}
	if len(*logs) != 1 {
		t.Fatalf("expected one warning, got %v", *logs)
	}
}

func TestAddDataPointRejectsNonFinite(t *testing.T) {
	s, _ := quietSeries("cpu")
	cases := [][2]float64{
		{math.NaN(), 1},
		{1, math.NaN()},
		{math.Inf(1), 1},
		{1, math.Inf(-1)},
	}
	for _, c := range cases {
		if err := s.AddDataPoint(c[0], c[1]); err == nil {
			t.Fatalf("expected rejection for value=%v time=%v", c[0], c[1])
		}
	}
	if s.Len() != 0 {
		t.Fatalf("expected empty series, got %d", s.Len())
	}
}

func TestDisplayedPointsOnePerBucket(t *testing.T) {
	s, _ := quietSeries("mem")
	_ = s.AddDataPoint(10, 0)
	_ = s.AddDataPoint(20, 1000)
	_ = s.AddDataPoint(15, 2000)

	got := s.DisplayedPoints(0, 2000, 1000)
	want := []Sample{{10, 0}, {20, 1000}, {15, 2000}}
	if len(got) != len(want) {
		t.Fatalf("expected %d points, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("point %d: expected %v, got %v", i, want[i], got[i])
		}
	}
	if max := s.DisplayedMaxValue(0, 2000, 1000); max != 20 {
		t.Fatalf("expected max 20, got %v", max)
	}
}

func TestDisplayedPointsAveragesBucket(t *testing.T) {
	s, _ := quietSeries("mem")
	_ = s.AddDataPoint(2, 1000)
	_ = s.AddDataPoint(4, 1200)
	_ = s.AddDataPoint(6, 1400)

	got := s.DisplayedPoints(1000, 1999, 1000)
	if len(got) != 1 {
		t.Fatalf("expected a single averaged point, got %v", got)
	}
	if got[0].Value != 4 || got[0].Time != 1200 {
		t.Fatalf("expected mean point {4 1200}, got %v", got[0])
	}
}

func TestDisplayedPointsCache(t *testing.T) {
	s, _ := quietSeries("cpu")
	for i := 0; i < 50; i++ {
		_ = s.AddDataPoint(float64(i), float64(i*100))
	}
	first := s.DisplayedPoints(0, 4000, 400)
	second := s.DisplayedPoints(0, 4000, 400)
	if len(first) == 0 || &first[0] != &second[0] {
		t.Fatalf("expected identical query to return the cached slice")
	}

	other := s.DisplayedPoints(100, 4100, 400)
	if &other[0] == &first[0] {
		t.Fatalf("expected a different window to recompute")
	}

	_ = s.AddDataPoint(99, 5000)
	again := s.DisplayedPoints(100, 4100, 400)
	if &again[0] == &other[0] {
		t.Fatalf("expected an append to invalidate the cache")
	}
}

func TestDisplayedPointsBucketsStayAligned(t *testing.T) {
	s, _ := quietSeries("cpu")
	for i := 0; i < 200; i++ {
		_ = s.AddDataPoint(float64(i%7), float64(i*137))
	}
	const step = 1000
	a := s.DisplayedPoints(5000, 20000, step)
	b := s.DisplayedPoints(5600, 20600, step)

	bucketsOf := func(points []Sample) map[float64]Sample {
		out := make(map[float64]Sample, len(points))
		for _, p := range points {
			out[math.Floor(p.Time/step)] = p
		}
		return out
	}
	ba, bb := bucketsOf(a), bucketsOf(b)
	shared := 0
	for k, pa := range ba {
		if pb, ok := bb[k]; ok {
			shared++
			if pa != pb {
				t.Fatalf("bucket %v differs between windows: %v vs %v", k, pa, pb)
			}
		}
	}
	if shared < 10 {
		t.Fatalf("expected overlapping windows to share buckets, shared %d", shared)
	}
}

func TestDisplayedPointsLeadingAnchor(t *testing.T) {
	s, _ := quietSeries("cpu")
	_ = s.AddDataPoint(1, 0)
	_ = s.AddDataPoint(2, 5000)

	got := s.DisplayedPoints(3000, 6000, 1000)
	if len(got) != 2 {
		t.Fatalf("expected anchor plus one point, got %v", got)
	}
	if got[0] != (Sample{Value: 1, Time: 0}) {
		t.Fatalf("expected verbatim anchor sample, got %v", got[0])
	}
	if got[1] != (Sample{Value: 2, Time: 5000}) {
		t.Fatalf("expected in-window point, got %v", got[1])
	}
}

func TestDisplayedPointsKeepsOnePointPastEnd(t *testing.T) {
	s, _ := quietSeries("cpu")
	for i := 0; i <= 10; i++ {
		_ = s.AddDataPoint(float64(i), float64(i*1000))
	}
	got := s.DisplayedPoints(2000, 5000, 1000)
	last := got[len(got)-1]
	if last.Time != 6000 {
		t.Fatalf("expected trailing point at 6000, got %v", got)
	}
	for _, p := range got[:len(got)-1] {
		if p.Time > 5000 {
			t.Fatalf("only one point may lie past the window end: %v", got)
		}
	}
}

func TestDisplayedPointsHiddenAndEmpty(t *testing.T) {
	s, _ := quietSeries("cpu")
	if got := s.DisplayedPoints(0, 1000, 100); len(got) != 0 {
		t.Fatalf("expected no points for empty series, got %v", got)
	}
	_ = s.AddDataPoint(5, 10)
	s.SetVisible(false)
	if got := s.DisplayedPoints(0, 1000, 100); len(got) != 0 {
		t.Fatalf("expected no points for hidden series, got %v", got)
	}
	if max := s.DisplayedMaxValue(0, 1000, 100); max != 0 {
		t.Fatalf("expected max 0 for hidden series, got %v", max)
	}
}

func TestDisplayedPointsInvalidStep(t *testing.T) {
	s, logs := quietSeries("cpu")
	_ = s.AddDataPoint(5, 10)
	if got := s.DisplayedPoints(0, 1000, 0); len(got) != 0 {
		t.Fatalf("expected no points for zero step, got %v", got)
	}
	if len(*logs) == 0 {
		t.Fatalf("expected a warning for the invalid step")
	}
}

func TestLatestStatistics(t *testing.T) {
	s, _ := quietSeries("cpu")
	for i, v := range []float64{4, 8, 2, 6} {
		_ = s.AddDataPoint(v, float64(i*1000))
	}
	st := s.LatestStatistics(1000, 3000)
	if st.Latest != 6 || st.Min != 2 || st.Max != 8 || st.Average != 16.0/3 {
		t.Fatalf("unexpected statistics %+v", st)
	}
}

func TestLatestStatisticsEmptyRange(t *testing.T) {
	s, _ := quietSeries("cpu")
	_ = s.AddDataPoint(4, 0)
	st := s.LatestStatistics(5000, 6000)
	if st.Latest != 0 || st.Average != 0 {
		t.Fatalf("expected zero latest and average, got %+v", st)
	}
	if !math.IsInf(st.Min, 1) || !math.IsInf(st.Max, -1) {
		t.Fatalf("expected infinite sentinels, got %+v", st)
	}
	if !st.Empty() {
		t.Fatalf("expected Empty to report the sentinel range")
	}
}

func TestRemoveOutdatedData(t *testing.T) {
	s, _ := quietSeries("cpu")
	const n = 10000
	span := 3 * RetentionBuffer
	first := 1_700_000_000_000.0
	for i := 0; i < n; i++ {
		_ = s.AddDataPoint(float64(i), first+float64(i)*span/(n-1))
	}
	now := first + 2*RetentionBuffer
	cutoff := now - RetentionBuffer

	want := 0
	for _, p := range s.Points() {
		if p.Time >= cutoff {
			want++
		}
	}

	if !s.RemoveOutdatedData(now) {
		t.Fatalf("expected outdated samples to be removed")
	}
	if s.Len() != want {
		t.Fatalf("expected %d retained samples, got %d", want, s.Len())
	}
	if p := s.Points()[0]; p.Time < cutoff {
		t.Fatalf("oldest retained sample %v is older than cutoff %v", p.Time, cutoff)
	}
	if s.RemoveOutdatedData(now) {
		t.Fatalf("expected second prune to be a no-op")
	}
}

func TestLowerBound(t *testing.T) {
	s, _ := quietSeries("cpu")
	for _, ts := range []float64{10, 20, 20, 30} {
		_ = s.AddDataPoint(1, ts)
	}
	cases := map[float64]int{5: 0, 10: 0, 15: 1, 20: 1, 25: 3, 30: 3, 31: 4}
	for in, want := range cases {
		if got := s.lowerBound(in); got != want {
			t.Fatalf("lowerBound(%v): expected %d, got %d", in, want, got)
		}
	}
}

func TestPointsIn(t *testing.T) {
	s, _ := quietSeries("cpu")
	for i, v := range []float64{4, 8, 2, 6, 9} {
		_ = s.AddDataPoint(v, float64(i*1000))
	}
	got := s.PointsIn(1000, 3000)
	if len(got) != 3 || got[0].Value != 8 || got[2].Value != 6 {
		t.Fatalf("unexpected points %+v", got)
	}
	got[0].Value = -1
	if s.Points()[1].Value != 8 {
		t.Fatalf("expected a copy, stored sample changed")
	}
	if got := s.PointsIn(5000, 9000); len(got) != 0 {
		t.Fatalf("expected no points past the data, got %+v", got)
	}
}
