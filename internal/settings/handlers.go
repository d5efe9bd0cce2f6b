package settings

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/unkn0wn-root/sysgraph/internal/config"
	"github.com/unkn0wn-root/sysgraph/internal/duration"
	"github.com/unkn0wn-root/sysgraph/internal/linechart"
)

func ChartHandler(s *config.ChartSettings) Handler {
	return Handler{
		Match: PrefixMatcher("chart."),
		Apply: func(key, val string) error {
			switch key {
			case "chart.window":
				if d, ok := duration.Parse(val); !ok || d <= 0 {
					return fmt.Errorf("invalid window %q", val)
				}
				s.Window = val
			case "chart.precision":
				n, err := strconv.Atoi(strings.TrimSpace(val))
				if err != nil || n < 0 || n > linechart.MaxPrecision {
					return fmt.Errorf("precision must be 0..%d, got %q", linechart.MaxPrecision, val)
				}
				s.Precision = n
			case "chart.color":
				b, err := strconv.ParseBool(strings.TrimSpace(val))
				if err != nil {
					return err
				}
				s.Color = b
			default:
				return fmt.Errorf("unknown chart setting")
			}
			return nil
		},
	}
}

func CollectHandler(s *config.CollectSettings) Handler {
	return Handler{
		Match: PrefixMatcher("collect."),
		Apply: func(key, val string) error {
			switch key {
			case "collect.interval":
				if d, ok := duration.Parse(val); !ok || d <= 0 {
					return fmt.Errorf("invalid interval %q", val)
				}
				s.Interval = val
			case "collect.sources":
				var sources []string
				for _, name := range strings.Split(val, ",") {
					if name = strings.TrimSpace(name); name != "" {
						sources = append(sources, strings.ToLower(name))
					}
				}
				s.Sources = sources
			case "collect.feed":
				s.Feed = strings.TrimSpace(val)
			default:
				return fmt.Errorf("unknown collect setting")
			}
			return nil
		},
	}
}

func RecordHandler(s *config.RecordSettings) Handler {
	return Handler{
		Match: PrefixMatcher("record."),
		Apply: func(key, val string) error {
			switch key {
			case "record.enabled":
				b, err := strconv.ParseBool(strings.TrimSpace(val))
				if err != nil {
					return err
				}
				s.Enabled = b
			case "record.path":
				s.Path = strings.TrimSpace(val)
			default:
				return fmt.Errorf("unknown record setting")
			}
			return nil
		},
	}
}

func ColorHandler(s *config.Settings) Handler {
	return Handler{
		Match: PrefixMatcher("colors."),
		Apply: func(key, val string) error {
			v := strings.TrimSpace(val)
			switch key {
			case "colors.background":
				s.Colors.Background = &v
			case "colors.grid":
				s.Colors.Grid = &v
			case "colors.text":
				s.Colors.Text = &v
			case "colors.series":
				s.Colors.Series = strings.Split(strings.ReplaceAll(v, " ", ""), ",")
			case "colors.fill-alpha":
				a, err := strconv.ParseFloat(v, 64)
				if err != nil {
					return err
				}
				s.Colors.FillAlpha = &a
			default:
				return fmt.Errorf("unknown color setting")
			}
			return nil
		},
	}
}

// ForSettings wires every section of s.
func ForSettings(s *config.Settings) Applier {
	return New(
		ChartHandler(&s.Chart),
		CollectHandler(&s.Collect),
		RecordHandler(&s.Record),
		ColorHandler(s),
	)
}
