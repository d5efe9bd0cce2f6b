package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/muesli/termenv"

	"github.com/unkn0wn-root/sysgraph/internal/board"
	"github.com/unkn0wn-root/sysgraph/internal/canvas"
	"github.com/unkn0wn-root/sysgraph/internal/collect"
	"github.com/unkn0wn-root/sysgraph/internal/config"
	"github.com/unkn0wn-root/sysgraph/internal/errdef"
	"github.com/unkn0wn-root/sysgraph/internal/history"
	"github.com/unkn0wn-root/sysgraph/internal/scripts"
	"github.com/unkn0wn-root/sysgraph/internal/settings"
	"github.com/unkn0wn-root/sysgraph/internal/telemetry"
	"github.com/unkn0wn-root/sysgraph/internal/theme"
)

const (
	procStat    = "/proc/stat"
	procMeminfo = "/proc/meminfo"
)

// env holds everything a subcommand needs after flags and settings are
// resolved.
type env struct {
	settings config.Settings
	handle   config.SettingsHandle
	theme    theme.Theme
	tracing  *telemetry.Provider
	logf     func(string, ...any)
}

func loadSettings(flags commonFlags, environ []string) (config.Settings, config.SettingsHandle, error) {
	var (
		s   config.Settings
		h   config.SettingsHandle
		err error
	)
	if flags.configPath != "" {
		s, h, err = config.LoadSettingsFrom(flags.configPath)
	} else {
		s, h, err = config.LoadSettings()
	}
	if err != nil {
		return s, h, err
	}

	explicit, err := settings.ParseAssignments(flags.assignments())
	if err != nil {
		return s, h, err
	}
	left, err := settings.ForSettings(&s).ApplyAll(settings.Merge(settings.FromEnv(environ), explicit))
	if err != nil {
		return s, h, err
	}
	if len(left) > 0 {
		keys := make([]string, 0, len(left))
		for k := range left {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return s, h, errdef.New(errdef.CodeConfig, "unknown settings: %s", strings.Join(keys, ", "))
	}
	return s, h, nil
}

func newEnv(ctx context.Context, flags commonFlags) (*env, error) {
	s, h, err := loadSettings(flags, os.Environ())
	if err != nil {
		return nil, err
	}
	th, err := theme.ApplySpec(theme.DefaultTheme(), s.Colors)
	if err != nil {
		return nil, errdef.Wrap(errdef.CodeConfig, err, "colors")
	}

	tracing := telemetry.Noop()
	if cfg := telemetry.ConfigFromEnv(os.Getenv); cfg.Enabled() {
		cfg.Version = version
		if p, err := telemetry.Setup(ctx, cfg); err != nil {
			log.Printf("tracing disabled: %v", err)
		} else {
			tracing = p
		}
	}
	return &env{settings: s, handle: h, theme: th, tracing: tracing, logf: log.Printf}, nil
}

func (e *env) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.tracing.Shutdown(ctx); err != nil {
		log.Printf("tracing shutdown: %v", err)
	}
}

// sources builds the configured sources. A feed URL replaces local sources.
func (e *env) sources(ctx context.Context) ([]collect.Source, error) {
	if url := strings.TrimSpace(e.settings.Collect.Feed); url != "" {
		feed := collect.NewFeedSource(url, e.logf)
		feed.Start(ctx)
		return []collect.Source{feed}, nil
	}
	return buildSources(e.settings.Collect.Sources)
}

func buildSources(names []string) ([]collect.Source, error) {
	var out []collect.Source
	seen := make(map[string]bool)
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		switch name {
		case "cpu":
			out = append(out, collect.NewProcCPU(procStat))
		case "mem":
			out = append(out, collect.NewProcMem(procMeminfo))
		case "runtime":
			out = append(out, collect.Runtime{})
		case "synthetic":
			out = append(out,
				collect.Synthetic{Series: "wave.slow", Period: time.Minute, Amplitude: 40, Offset: 50, Kind: collect.KindPercent},
				collect.Synthetic{Series: "wave.fast", Period: 10 * time.Second, Amplitude: 20, Offset: 30, Kind: collect.KindPercent},
			)
		default:
			return nil, errdef.New(errdef.CodeConfig, "unknown source %q", name)
		}
	}
	if len(out) == 0 {
		return nil, errdef.New(errdef.CodeConfig, "no sources configured")
	}
	return out, nil
}

func (e *env) deriver() (*scripts.Deriver, error) {
	if len(e.settings.Derived) == 0 {
		return nil, nil
	}
	rules := make([]scripts.Rule, 0, len(e.settings.Derived))
	for _, d := range e.settings.Derived {
		rules = append(rules, scripts.Rule{Name: d.Name, Expr: d.Expr, Kind: collect.ParseKind(d.Kind)})
	}
	return scripts.NewDeriver(rules, scripts.WithLogf(e.logf))
}

func (e *env) collector(ctx context.Context) (*collect.Collector, error) {
	sources, err := e.sources(ctx)
	if err != nil {
		return nil, err
	}
	opts := []collect.Option{
		collect.WithInterval(e.settings.Collect.IntervalDuration()),
		collect.WithLogf(e.logf),
		collect.WithTracer(e.tracing.Tracer()),
	}
	d, err := e.deriver()
	if err != nil {
		return nil, err
	}
	if d != nil {
		opts = append(opts, collect.WithTransform(d.Apply))
	}
	return collect.NewCollector(sources, opts...), nil
}

func (e *env) board(metrics func(theme.Theme, int) board.Metrics) *board.Board {
	return board.New(e.theme, metrics(e.theme, e.settings.Chart.Precision),
		board.WithLogf(e.logf),
		board.WithWindow(e.settings.Chart.WindowDuration()),
	)
}

func (e *env) canvasOptions() []canvas.TerminalOption {
	if !e.settings.Chart.Color {
		return []canvas.TerminalOption{canvas.WithColorProfile(termenv.Ascii)}
	}
	return []canvas.TerminalOption{canvas.WithColorProfile(termenv.ColorProfile())}
}

func (e *env) recordPath() string {
	if p := strings.TrimSpace(e.settings.Record.Path); p != "" {
		return p
	}
	return config.RecordPath()
}

// recorder opens the history store and starts a session when recording is
// enabled; otherwise it returns nil.
func (e *env) recorder(ctx context.Context, note string) (*history.Store, history.Session, error) {
	if !e.settings.Record.Enabled {
		return nil, history.Session{}, nil
	}
	store, err := history.Open(e.recordPath())
	if err != nil {
		return nil, history.Session{}, err
	}
	host, _ := os.Hostname()
	session, err := store.BeginSession(ctx, host, note, time.Now())
	if err != nil {
		_ = store.Close()
		return nil, history.Session{}, err
	}
	return store, session, nil
}

// pump forwards collector batches to out, recording them when store is set.
// It closes out when in is drained.
func pump(ctx context.Context, in <-chan []collect.Reading, out chan<- []collect.Reading, store *history.Store, sessionID string, logf func(string, ...any)) {
	defer close(out)
	for batch := range in {
		if store != nil {
			if err := store.Append(ctx, sessionID, batch); err != nil {
				_ = errdef.Soft(logf, err)
			}
		}
		select {
		case out <- batch:
		case <-ctx.Done():
			return
		}
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}
