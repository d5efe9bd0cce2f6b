package linechart

import (
	"math"
	"strconv"
	"strings"
)

// UnitSystem is an ordered unit list with the multiplier between neighbours.
type UnitSystem struct {
	Names []string
	Base  float64
}

var (
	Bytes   = UnitSystem{Names: []string{"B", "KB", "MB", "GB", "TB", "PB"}, Base: 1024}
	Percent = UnitSystem{Names: []string{"%"}, Base: 100}
	Count   = UnitSystem{Names: []string{"", "K", "M", "G", "T"}, Base: 1000}
	Millis  = UnitSystem{Names: []string{"ms", "s"}, Base: 1000}
)

// NewLabel builds a UnitLabel for the system.
func (u UnitSystem) NewLabel(opts ...UnitLabelOption) *UnitLabel {
	return NewUnitLabel(u.Names, u.Base, opts...)
}

// Format renders v in the largest unit that keeps it below Base, trimming
// trailing zeros after at most precision decimals.
func (u UnitSystem) Format(v float64, precision int) string {
	if !isFinite(v) {
		return "-"
	}
	idx := 0
	scaled := v
	if u.Base > 0 {
		for idx+1 < len(u.Names) && math.Abs(scaled) >= u.Base {
			scaled /= u.Base
			idx++
		}
	}
	if precision < 0 {
		precision = 0
	}
	out := strconv.FormatFloat(scaled, 'f', precision, 64)
	if strings.Contains(out, ".") {
		out = strings.TrimRight(strings.TrimRight(out, "0"), ".")
	}
	if idx < len(u.Names) && u.Names[idx] != "" {
		if u.Names[idx] == "%" {
			return out + "%"
		}
		return out + " " + u.Names[idx]
	}
	return out
}
