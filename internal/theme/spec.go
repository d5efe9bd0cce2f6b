package theme

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Spec is the user-facing color override block. Nil fields keep the base
// theme's value.
type Spec struct {
	Background *string  `toml:"background,omitempty" yaml:"background,omitempty"`
	Grid       *string  `toml:"grid,omitempty" yaml:"grid,omitempty"`
	Text       *string  `toml:"text,omitempty" yaml:"text,omitempty"`
	Series     []string `toml:"series,omitempty" yaml:"series,omitempty"`
	FillAlpha  *float64 `toml:"fill_alpha,omitempty" yaml:"fill_alpha,omitempty"`
}

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// ApplySpec returns base with the overrides in spec applied.
func ApplySpec(base Theme, spec Spec) (Theme, error) {
	out := base
	out.Series = append([]lipgloss.Color(nil), base.Series...)

	set := func(dst *lipgloss.Color, val *string, field string) error {
		if val == nil {
			return nil
		}
		c, err := parseColor(*val)
		if err != nil {
			return fmt.Errorf("%s: %w", field, err)
		}
		*dst = c
		return nil
	}
	if err := set(&out.Background, spec.Background, "background"); err != nil {
		return base, err
	}
	if err := set(&out.Grid, spec.Grid, "grid"); err != nil {
		return base, err
	}
	if err := set(&out.Text, spec.Text, "text"); err != nil {
		return base, err
	}
	if len(spec.Series) > 0 {
		series := make([]lipgloss.Color, 0, len(spec.Series))
		for i, raw := range spec.Series {
			c, err := parseColor(raw)
			if err != nil {
				return base, fmt.Errorf("series[%d]: %w", i, err)
			}
			series = append(series, c)
		}
		out.Series = series
	}
	if spec.FillAlpha != nil {
		a := *spec.FillAlpha
		if a < 0 || a > 1 {
			return base, fmt.Errorf("fill_alpha: %v outside [0, 1]", a)
		}
		out.FillAlpha = a
	}
	return out, nil
}

func parseColor(raw string) (lipgloss.Color, error) {
	v := strings.TrimSpace(raw)
	if !hexColor.MatchString(v) {
		return "", fmt.Errorf("invalid color %q", raw)
	}
	return lipgloss.Color(v), nil
}
