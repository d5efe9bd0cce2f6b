package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/unkn0wn-root/sysgraph/internal/board"
	"github.com/unkn0wn-root/sysgraph/internal/collect"
	"github.com/unkn0wn-root/sysgraph/internal/config"
	"github.com/unkn0wn-root/sysgraph/internal/errdef"
	"github.com/unkn0wn-root/sysgraph/internal/history"
	"github.com/unkn0wn-root/sysgraph/internal/theme"
)

func silent(string, ...any) {}

func TestLoadSettingsOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SYSGRAPH_CONFIG_DIR", dir)
	if err := os.WriteFile(filepath.Join(dir, "settings.toml"), []byte("[chart]\nwindow = \"10m\"\nprecision = 3\n"), 0o644); err != nil {
		t.Fatalf("write settings: %v", err)
	}

	flags := commonFlags{precision: -1, interval: "2s"}
	flags.sets = stringList{"chart.precision=1"}
	env := []string{"SYSGRAPH_SET_CHART__PRECISION=4", "SYSGRAPH_SET_COLLECT__SOURCES=runtime", "HOME=/tmp"}

	s, h, err := loadSettings(flags, env)
	if err != nil {
		t.Fatalf("loadSettings: %v", err)
	}
	if h.Path != filepath.Join(dir, "settings.toml") {
		t.Fatalf("unexpected handle %+v", h)
	}
	if s.Chart.Window != "10m" {
		t.Fatalf("expected file value kept, got %q", s.Chart.Window)
	}
	if s.Chart.Precision != 1 {
		t.Fatalf("expected --set to win over env, got %d", s.Chart.Precision)
	}
	if s.Collect.Interval != "2s" {
		t.Fatalf("expected --interval applied, got %q", s.Collect.Interval)
	}
	if len(s.Collect.Sources) != 1 || s.Collect.Sources[0] != "runtime" {
		t.Fatalf("expected env sources, got %v", s.Collect.Sources)
	}
}

func TestLoadSettingsRejectsUnknownKeys(t *testing.T) {
	t.Setenv("SYSGRAPH_CONFIG_DIR", t.TempDir())
	flags := commonFlags{precision: -1, sets: stringList{"bogus.key=1"}}
	_, _, err := loadSettings(flags, nil)
	if !errdef.Is(err, errdef.CodeConfig) || !strings.Contains(err.Error(), "bogus.key") {
		t.Fatalf("expected unknown setting error, got %v", err)
	}
}

func TestAssignments(t *testing.T) {
	flags := commonFlags{window: "1h", precision: 0, record: true, noColor: true, sets: stringList{"chart.window=2h"}}
	got := strings.Join(flags.assignments(), " ")
	want := "chart.window=1h chart.precision=0 record.enabled=true chart.color=false chart.window=2h"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestBuildSources(t *testing.T) {
	sources, err := buildSources([]string{"cpu", "MEM", "runtime", "cpu", "synthetic"})
	if err != nil {
		t.Fatalf("buildSources: %v", err)
	}
	if len(sources) != 5 {
		t.Fatalf("expected 5 sources with duplicates removed, got %d", len(sources))
	}
	if _, err := buildSources([]string{"disk"}); !errdef.Is(err, errdef.CodeConfig) {
		t.Fatalf("expected config error for unknown source, got %v", err)
	}
	if _, err := buildSources(nil); err == nil {
		t.Fatalf("expected error without sources")
	}
}

func TestSessionSpan(t *testing.T) {
	if got := sessionSpan(history.Session{First: 1000, Last: 1200}); got != time.Second {
		t.Fatalf("expected minimum span, got %v", got)
	}
	if got := sessionSpan(history.Session{First: 0, Last: 90_000}); got != 90*time.Second {
		t.Fatalf("expected 90s, got %v", got)
	}
}

func TestWriteSummary(t *testing.T) {
	th := theme.DefaultTheme()
	b := board.New(th, board.TerminalMetrics(th, 1), board.WithLogf(func(string, ...any) {}))
	var samples []collect.Reading
	for i := 0; i < 10; i++ {
		samples = append(samples, collect.Reading{Series: "mem.used", Value: float64(i+1) * 1024, Time: float64(i * 1000), Kind: collect.KindBytes})
	}
	b.Ingest(samples)

	var buf bytes.Buffer
	writeSummary(&buf, b, samples, 4)
	out := buf.String()
	for _, want := range []string{"mem.used", "p99", "10 KB", "Histogram"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in summary:\n%s", want, out)
		}
	}
}

func TestWriteSessionsEmpty(t *testing.T) {
	var buf bytes.Buffer
	writeSessions(&buf, nil)
	if !strings.Contains(buf.String(), "no recorded sessions") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestReloadSettings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.toml")
	body := "[chart]\nwindow = \"15m\"\n[colors]\nseries = [\"#abcdef\"]\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write settings: %v", err)
	}

	r := reloadSettings(commonFlags{configPath: path, precision: -1}, nil)
	if r.Err != nil {
		t.Fatalf("reloadSettings: %v", r.Err)
	}
	if r.Window != 15*time.Minute {
		t.Fatalf("expected 15m window, got %s", r.Window)
	}
	if got := r.Theme.SeriesColor(3); got != "#abcdef" {
		t.Fatalf("expected reloaded palette, got %s", got)
	}

	// An explicit --window still wins over the edited file.
	r = reloadSettings(commonFlags{configPath: path, precision: -1, window: "1h"}, nil)
	if r.Window != time.Hour {
		t.Fatalf("expected flag window, got %s", r.Window)
	}
}

func TestReloadSettingsReportsBadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.toml")
	if err := os.WriteFile(path, []byte("[chart\n"), 0o644); err != nil {
		t.Fatalf("write settings: %v", err)
	}
	r := reloadSettings(commonFlags{configPath: path, precision: -1}, nil)
	if errdef.CodeOf(r.Err) != errdef.CodeConfig {
		t.Fatalf("expected config error, got %v", r.Err)
	}
}

func TestWatchSettingsWithoutFile(t *testing.T) {
	e := &env{handle: config.SettingsHandle{Path: filepath.Join(t.TempDir(), "settings.toml")}, logf: silent}
	if ch := e.watchSettings(context.Background(), commonFlags{precision: -1}); ch != nil {
		t.Fatalf("expected no reload channel for a missing file")
	}
}
