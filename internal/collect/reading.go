// Package collect gathers samples from local and remote sources and moves
// them between processes as JSON frames.
package collect

import (
	"context"
	"time"
)

// Kind tells consumers which unit system a series uses.
type Kind string

const (
	KindPercent Kind = "percent"
	KindBytes   Kind = "bytes"
	KindCount   Kind = "count"
)

type Reading struct {
	Series string  `json:"series"`
	Value  float64 `json:"value"`
	// Time is Unix milliseconds.
	Time float64 `json:"time"`
	Kind Kind    `json:"kind,omitempty"`
}

type Source interface {
	Name() string
	Collect(ctx context.Context, now time.Time) ([]Reading, error)
}

// UnixMillis converts t to the fractional millisecond timestamps used by
// readings and charts.
func UnixMillis(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Millisecond)
}

// ParseKind maps a configured kind name, defaulting to count.
func ParseKind(name string) Kind {
	switch Kind(name) {
	case KindPercent, KindBytes:
		return Kind(name)
	default:
		return KindCount
	}
}
