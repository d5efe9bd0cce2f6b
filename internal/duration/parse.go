package duration

import (
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	Day  = 24 * time.Hour
	Week = 7 * Day

	maxDuration = float64(math.MaxInt64)
)

var units = map[string]time.Duration{
	"ns": time.Nanosecond,
	"us": time.Microsecond,
	"µs": time.Microsecond,
	"ms": time.Millisecond,
	"s":  time.Second,
	"m":  time.Minute,
	"h":  time.Hour,
	"d":  Day,
	"w":  Week,
}

// Parse accepts everything time.ParseDuration does plus d and w units,
// decimal terms ("1.5d") and spaces between terms ("1h 30m").
func Parse(value string) (time.Duration, bool) {
	s := strings.TrimSpace(value)
	if s == "" {
		return 0, false
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d, true
	}

	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	var total float64
	terms := 0
	for s = strings.TrimLeft(s, " "); s != ""; s = strings.TrimLeft(s, " ") {
		n, rest, ok := leadingNumber(s)
		if !ok {
			return 0, false
		}
		unit, rest := leadingUnit(rest)
		scale, ok := units[strings.ToLower(unit)]
		if !ok {
			return 0, false
		}
		total += n * float64(scale)
		if math.IsNaN(total) || math.Abs(total) > maxDuration {
			return 0, false
		}
		terms++
		s = rest
	}
	if terms == 0 {
		return 0, false
	}
	if neg {
		total = -total
	}
	return time.Duration(math.Round(total)), true
}

// ParseOr returns fallback when value is empty or invalid.
func ParseOr(value string, fallback time.Duration) time.Duration {
	if d, ok := Parse(value); ok {
		return d
	}
	return fallback
}

// Millis converts d to fractional milliseconds, the chart time unit.
func Millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// Format renders d with the coarsest units first ("1d2h", "90s" becomes
// "1m30s"). Durations under a second use time.Duration's own format.
func Format(d time.Duration) string {
	if d < 0 {
		return "-" + Format(-d)
	}
	if d < time.Second {
		return d.String()
	}
	var b strings.Builder
	for _, u := range []struct {
		suffix string
		size   time.Duration
	}{{"d", Day}, {"h", time.Hour}, {"m", time.Minute}, {"s", time.Second}} {
		if n := d / u.size; n > 0 {
			b.WriteString(strconv.FormatInt(int64(n), 10))
			b.WriteString(u.suffix)
			d -= n * u.size
		}
	}
	return b.String()
}

func leadingNumber(s string) (float64, string, bool) {
	end, dot, digits := 0, false, false
	for ; end < len(s); end++ {
		ch := s[end]
		if ch >= '0' && ch <= '9' {
			digits = true
			continue
		}
		if ch == '.' && !dot {
			dot = true
			continue
		}
		break
	}
	if !digits {
		return 0, s, false
	}
	n, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0, s, false
	}
	return n, s[end:], true
}

func leadingUnit(s string) (string, string) {
	end := strings.IndexFunc(s, func(r rune) bool {
		return r != 'µ' && (r < 'a' || r > 'z') && (r < 'A' || r > 'Z')
	})
	if end < 0 {
		return s, ""
	}
	return s[:end], s[end:]
}
