// Package linechart keeps time-ordered metric samples and draws them as
// scrolling line charts onto an abstract 2D drawing surface.
//
// All types in this package are single-threaded. Callers confine appends,
// pruning and rendering to one goroutine.
package linechart

import (
	"log"
	"math"
	"time"
)

// Sample is one reading. Time is in milliseconds since an epoch shared by
// every series drawn together.
type Sample struct {
	Value float64
	Time  float64
}

// Statistics summarizes the samples of a time range. For an empty range
// Latest and Average are 0 while Min and Max stay at +Inf and -Inf.
type Statistics struct {
	Latest  float64
	Min     float64
	Max     float64
	Average float64
}

// Empty reports whether the statistics came from a range without samples.
func (s Statistics) Empty() bool {
	return math.IsInf(s.Min, 1) && math.IsInf(s.Max, -1)
}

// Logf receives soft warnings about rejected input.
type Logf func(format string, args ...any)

// RetentionBuffer is how much history older than the visible start
// RemoveOutdatedData keeps, in milliseconds.
const RetentionBuffer = float64(time.Hour / time.Millisecond)

func defaultLogf(format string, args ...any) {
	log.Printf(format, args...)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// alignDown returns the largest multiple of step that is <= t.
func alignDown(t, step float64) float64 {
	return math.Floor(t/step) * step
}
