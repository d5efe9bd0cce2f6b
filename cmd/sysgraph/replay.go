package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/unkn0wn-root/sysgraph/internal/analysis"
	"github.com/unkn0wn-root/sysgraph/internal/board"
	"github.com/unkn0wn-root/sysgraph/internal/collect"
	"github.com/unkn0wn-root/sysgraph/internal/duration"
	"github.com/unkn0wn-root/sysgraph/internal/history"
	"github.com/unkn0wn-root/sysgraph/internal/ui"
)

var summaryPercentiles = []int{50, 90, 99}

func runReplay(args []string) error {
	fs := flag.NewFlagSet("replay", flag.ContinueOnError)
	var (
		flags   commonFlags
		out     outputOptions
		dbPath  string
		remove  bool
		bins    int
		summary bool
	)
	flags.register(fs)
	out.register(fs)
	fs.StringVar(&dbPath, "db", "", "History database (default: recordings.db in the config dir)")
	fs.BoolVar(&remove, "delete", false, "Delete the referenced session")
	fs.IntVar(&bins, "bins", 0, "Print a histogram with this many buckets per series")
	fs.BoolVar(&summary, "summary", true, "Print a statistics table")
	if ok, err := parseFlags(fs, args); !ok {
		return err
	}

	ctx := context.Background()
	e, err := newEnv(ctx, flags)
	if err != nil {
		return err
	}
	defer e.close()

	if dbPath == "" {
		dbPath = e.recordPath()
	}
	store, err := history.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if fs.NArg() == 0 {
		sessions, err := store.Sessions(ctx)
		if err != nil {
			return err
		}
		writeSessions(os.Stdout, sessions)
		return nil
	}

	sess, err := store.Resolve(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	if remove {
		if _, err := store.Delete(ctx, sess.ID); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "deleted session %s\n", sess.ID)
		return nil
	}

	samples, err := store.Samples(ctx, sess.ID)
	if err != nil {
		return err
	}
	metrics := board.TerminalMetrics
	if out.png != "" {
		metrics = board.RasterMetrics
	}
	b := e.board(metrics)
	b.SetWindow(sessionSpan(sess))
	b.Ingest(samples)

	fmt.Fprintf(os.Stdout, "session %s  %s  %s  %d samples over %s\n\n",
		sess.ID, sess.StartedAt.Local().Format(time.DateTime), sess.Host, sess.Samples,
		duration.Format(sessionSpan(sess)))
	if summary {
		writeSummary(os.Stdout, b, samples, bins)
		fmt.Fprintln(os.Stdout)
	}
	return writeBoard(os.Stdout, e, b, out, sess.Last)
}

// sessionSpan is the recorded time range, at least one second.
func sessionSpan(sess history.Session) time.Duration {
	span := time.Duration((sess.Last - sess.First) * float64(time.Millisecond))
	if span < time.Second {
		return time.Second
	}
	return span
}

func writeSessions(w io.Writer, sessions []history.Session) {
	if len(sessions) == 0 {
		fmt.Fprintln(w, "no recorded sessions")
		return
	}
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"id", "started", "host", "note", "samples", "span"})
	for _, s := range sessions {
		t.AppendRow(table.Row{
			s.ID[:min(8, len(s.ID))],
			s.StartedAt.Local().Format(time.DateTime),
			s.Host,
			s.Note,
			s.Samples,
			duration.Format(sessionSpan(s)),
		})
	}
	t.Render()
}

func writeSummary(w io.Writer, b *board.Board, samples []collect.Reading, bins int) {
	values := make(map[string][]float64)
	for _, r := range samples {
		values[r.Series] = append(values[r.Series], r.Value)
	}
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	header := table.Row{"series", "count", "min", "mean", "median", "stddev", "max"}
	for _, p := range summaryPercentiles {
		header = append(header, fmt.Sprintf("p%d", p))
	}
	t.AppendHeader(header)

	histograms := make([]string, 0, len(names))
	precision := b.Precision()
	for _, name := range names {
		_, group, ok := b.Lookup(name)
		if !ok {
			continue
		}
		format := func(v float64) string { return group.Units.Format(v, precision) }
		s := analysis.Summarize(values[name], summaryPercentiles, bins)
		row := table.Row{name, s.Count, format(s.Min), format(s.Mean), format(s.Median), format(s.StdDev), format(s.Max)}
		for _, p := range summaryPercentiles {
			row = append(row, format(s.Percentiles[p]))
		}
		t.AppendRow(row)
		if bins > 0 {
			histograms = append(histograms, name+"\n"+ui.RenderHistogram(s.Histogram, format))
		}
	}
	t.Render()
	for _, h := range histograms {
		fmt.Fprintln(w)
		fmt.Fprint(w, h)
	}
}
