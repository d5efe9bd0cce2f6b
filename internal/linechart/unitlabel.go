package linechart

import (
	"math"
	"strconv"

	"github.com/unkn0wn-root/sysgraph/internal/errdef"
)

const (
	DefaultTextSize        = 10
	DefaultMinLabelSpacing = 4
	DefaultMaxLabels       = 8
	DefaultPrecision       = 2
	MaxPrecision           = 20
)

// UnitLabel picks a display unit for the current maximum value and builds
// evenly spaced, round axis labels from the top value down to 0.
type UnitLabel struct {
	units      []string
	base       float64
	textSize   float64
	minSpacing float64
	maxLabels  int
	logf       Logf

	rawMax    float64
	hasMax    bool
	unitIdx   int
	maxValue  float64
	height    float64
	precision int

	valid  bool
	labels []string
	top    float64
}

type UnitLabelOption func(*UnitLabel)

func WithLabelLogf(fn Logf) UnitLabelOption {
	return func(u *UnitLabel) {
		if fn != nil {
			u.logf = fn
		}
	}
}

// WithTextMetrics sets the label text height and the minimum gap between
// labels, both in the surface's pixel unit.
func WithTextMetrics(textSize, minSpacing float64) UnitLabelOption {
	return func(u *UnitLabel) {
		if textSize > 0 {
			u.textSize = textSize
		}
		if minSpacing >= 0 {
			u.minSpacing = minSpacing
		}
	}
}

// WithMaxLabels caps the number of labels regardless of height.
func WithMaxLabels(n int) UnitLabelOption {
	return func(u *UnitLabel) {
		if n >= 2 {
			u.maxLabels = n
		}
	}
}

// NewUnitLabel builds a label set for units ordered smallest to largest with
// base between adjacent units. Bad configuration is logged and leaves a
// degenerate but usable instance.
func NewUnitLabel(units []string, base float64, opts ...UnitLabelOption) *UnitLabel {
	u := &UnitLabel{
		units:      append([]string(nil), units...),
		base:       base,
		textSize:   DefaultTextSize,
		minSpacing: DefaultMinLabelSpacing,
		maxLabels:  DefaultMaxLabels,
		precision:  DefaultPrecision,
		logf:       defaultLogf,
	}
	for _, opt := range opts {
		opt(u)
	}
	if len(u.units) == 0 {
		_ = errdef.Soft(u.logf, errdef.New(errdef.CodeConfig, "unit label: empty unit list"))
	}
	if !(u.base > 0) {
		_ = errdef.Soft(u.logf, errdef.New(errdef.CodeConfig, "unit label: base must be > 0, got %v", u.base))
	}
	return u
}

// SetMaxValue selects the smallest unit keeping the scaled value below the
// base, stopping at the largest unit. Repeating the same raw value is free.
func (u *UnitLabel) SetMaxValue(v float64) {
	if u.hasMax && u.rawMax == v {
		return
	}
	u.rawMax, u.hasMax = v, true
	if !isFinite(v) || v < 0 {
		_ = errdef.Soft(u.logf, errdef.New(errdef.CodeLayout, "unit label: unusable max value %v", v))
		v = 0
	}

	idx := 0
	if u.base > 0 {
		for idx+1 < len(u.units) && v >= u.base {
			v /= u.base
			idx++
		}
	}
	u.unitIdx = idx
	u.maxValue = v
	u.valid = false
}

// SetLayout sets the label track height and the maximum number of decimals.
// A precision outside [0, MaxPrecision] is rejected and the call ignored.
func (u *UnitLabel) SetLayout(height float64, precision int) error {
	if precision < 0 || precision > MaxPrecision {
		return errdef.Soft(u.logf, errdef.New(errdef.CodeLayout,
			"unit label: precision %d outside [0, %d]", precision, MaxPrecision))
	}
	if height == u.height && precision == u.precision {
		return nil
	}
	u.height = height
	u.precision = precision
	u.valid = false
	return nil
}

// Labels returns the axis labels from the top value down to 0.
func (u *UnitLabel) Labels() []string {
	u.update()
	return u.labels
}

// TopLabelValue is the value of the first label in the current unit.
func (u *UnitLabel) TopLabelValue() float64 {
	u.update()
	return u.top
}

// ValueScale converts a raw value into pixels: y = value / ValueScale().
// It is 0 while there is no height or the top label is 0.
func (u *UnitLabel) ValueScale() float64 {
	u.update()
	if u.height <= 0 || u.top == 0 {
		return 0
	}
	return u.top * u.CurrentUnitScale() / u.height
}

func (u *UnitLabel) CurrentUnitString() string {
	if u.unitIdx < len(u.units) {
		return u.units[u.unitIdx]
	}
	return ""
}

func (u *UnitLabel) CurrentUnitScale() float64 {
	if !(u.base > 0) {
		return 1
	}
	return math.Pow(u.base, float64(u.unitIdx))
}

func (u *UnitLabel) update() {
	if u.valid {
		return
	}
	step, digits := u.suitableStep(u.maxValue, u.maxLabelCount())
	count := int(labelSteps(u.maxValue, step))
	labels := make([]string, 0, count+1)
	for i := count; i >= 0; i-- {
		labels = append(labels, strconv.FormatFloat(float64(i)*step, 'f', digits, 64))
	}
	u.labels = labels
	u.top = float64(count) * step
	u.valid = true
}

func (u *UnitLabel) maxLabelCount() int {
	spacing := 2*u.textSize + u.minSpacing
	n := 2
	if spacing > 0 && u.height > 0 {
		n = 1 + int(math.Floor(u.height/spacing))
	}
	if n > u.maxLabels {
		n = u.maxLabels
	}
	if n < 2 {
		n = 2
	}
	return n
}

// suitableStep tries 1x, 2x and 5x of 10^-precision, then of each coarser
// power of ten, until the labels fit. It also returns how many decimals the
// chosen step needs. Once the step overflows, maxValue itself is the step so
// only 0 and the maximum are labelled.
func (u *UnitLabel) suitableStep(maxValue float64, maxLabels int) (float64, int) {
	exp := -u.precision
	for {
		for _, m := range [...]float64{1, 2, 5} {
			step := m * math.Pow10(exp)
			if math.IsInf(step, 0) {
				return maxValue, 0
			}
			if labelSteps(maxValue, step)+1 <= float64(maxLabels) {
				return step, max(0, -exp)
			}
		}
		exp++
	}
}

func topLabelValue(maxValue, step float64) float64 {
	return math.Ceil(maxValue/step) * step
}

// labelSteps is how many steps separate the top label from 0. It stays a
// float so huge ratios compare correctly before any int conversion.
func labelSteps(maxValue, step float64) float64 {
	return math.Round(topLabelValue(maxValue, step) / step)
}
