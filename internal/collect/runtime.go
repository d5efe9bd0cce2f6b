package collect

import (
	"context"
	"math"
	"runtime"
	"time"
)

// Runtime samples the Go runtime of this process.
type Runtime struct{}

func (Runtime) Name() string { return "runtime" }

func (Runtime) Collect(_ context.Context, now time.Time) ([]Reading, error) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	ts := UnixMillis(now)
	return []Reading{
		{Series: "go.heap", Value: float64(ms.HeapAlloc), Time: ts, Kind: KindBytes},
		{Series: "go.goroutines", Value: float64(runtime.NumGoroutine()), Time: ts, Kind: KindCount},
	}, nil
}

// Synthetic is a sine wave, handy for demos and for exercising the chart
// without a real system to watch.
type Synthetic struct {
	Series    string
	Period    time.Duration
	Amplitude float64
	Offset    float64
	Kind      Kind
}

func (s Synthetic) Name() string { return s.Series }

func (s Synthetic) Collect(_ context.Context, now time.Time) ([]Reading, error) {
	period := s.Period
	if period <= 0 {
		period = time.Minute
	}
	phase := float64(now.UnixNano()%int64(period)) / float64(period)
	v := s.Offset + s.Amplitude*math.Sin(2*math.Pi*phase)
	return []Reading{{Series: s.Series, Value: v, Time: UnixMillis(now), Kind: s.Kind}}, nil
}
