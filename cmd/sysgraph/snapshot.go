package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/unkn0wn-root/sysgraph/internal/board"
	"github.com/unkn0wn-root/sysgraph/internal/collect"
	"github.com/unkn0wn-root/sysgraph/internal/errdef"
)

func runSnapshot(args []string) error {
	fs := flag.NewFlagSet("snapshot", flag.ContinueOnError)
	var (
		flags   commonFlags
		out     outputOptions
		span    time.Duration
	)
	flags.register(fs)
	out.register(fs)
	fs.DurationVar(&span, "for", 10*time.Second, "How long to collect before charting")
	if ok, err := parseFlags(fs, args); !ok {
		return err
	}
	if span <= 0 {
		return errdef.New(errdef.CodeConfig, "snapshot: --for must be positive")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	e, err := newEnv(ctx, flags)
	if err != nil {
		return err
	}
	defer e.close()

	metrics := board.TerminalMetrics
	if out.png != "" {
		metrics = board.RasterMetrics
	}
	b := e.board(metrics)
	if flags.window == "" {
		b.SetWindow(span)
	}

	n, err := collectInto(ctx, e, b, span)
	if err != nil {
		return err
	}
	e.logf("snapshot: collected %d readings", n)
	return writeBoard(os.Stdout, e, b, out, collectNow())
}

// collectInto runs the collector for d, feeding b and the recorder.
func collectInto(ctx context.Context, e *env, b *board.Board, d time.Duration) (int, error) {
	coll, err := e.collector(ctx)
	if err != nil {
		return 0, err
	}
	store, session, err := e.recorder(ctx, "snapshot")
	if err != nil {
		return 0, err
	}
	if store != nil {
		defer store.Close()
	}

	runCtx, stop := context.WithTimeout(ctx, d)
	defer stop()
	raw := make(chan []collect.Reading, 16)
	go func() {
		_ = coll.Run(runCtx, raw)
		close(raw)
	}()

	total := 0
	for batch := range raw {
		if store != nil {
			if err := store.Append(ctx, session.ID, batch); err != nil {
				_ = errdef.Soft(e.logf, err)
			}
		}
		total += b.Ingest(batch)
	}
	return total, nil
}

func collectNow() float64 {
	return collect.UnixMillis(time.Now())
}
