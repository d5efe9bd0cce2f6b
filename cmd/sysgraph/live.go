package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/unkn0wn-root/sysgraph/internal/board"
	"github.com/unkn0wn-root/sysgraph/internal/collect"
	"github.com/unkn0wn-root/sysgraph/internal/config"
	"github.com/unkn0wn-root/sysgraph/internal/errdef"
	"github.com/unkn0wn-root/sysgraph/internal/ui"
)

func runLive(args []string) error {
	fs := flag.NewFlagSet("sysgraph", flag.ContinueOnError)
	var (
		flags       commonFlags
		showVersion bool
	)
	flags.register(fs)
	fs.BoolVar(&showVersion, "version", false, "Show sysgraph version")
	if ok, err := parseFlags(fs, args); !ok {
		return err
	}
	if showVersion {
		printVersion(os.Stdout)
		return nil
	}

	// Warnings go to a file while the alt screen is active.
	if err := os.MkdirAll(filepath.Dir(config.LogPath()), 0o755); err != nil {
		return errdef.Wrap(errdef.CodeFilesystem, err, "create log dir")
	}
	logFile, err := tea.LogToFile(config.LogPath(), "sysgraph")
	if err != nil {
		return errdef.Wrap(errdef.CodeFilesystem, err, "open log")
	}
	defer logFile.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	e, err := newEnv(ctx, flags)
	if err != nil {
		return err
	}
	defer e.close()

	coll, err := e.collector(ctx)
	if err != nil {
		return err
	}
	store, session, err := e.recorder(ctx, "live")
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	raw := make(chan []collect.Reading, 16)
	readings := make(chan []collect.Reading, 16)
	go func() {
		_ = coll.Run(ctx, raw)
		close(raw)
	}()
	go pump(ctx, raw, readings, store, session.ID, e.logf)

	title := "sysgraph"
	if host, err := os.Hostname(); err == nil && host != "" {
		title += " @ " + host
	}
	model := ui.New(ui.Config{
		Board:         e.board(board.TerminalMetrics),
		Theme:         e.theme,
		Readings:      readings,
		Reloads:       e.watchSettings(ctx, flags),
		Refresh:       coll.Interval(),
		Title:         title,
		Clipboard:     clipboard.WriteAll,
		SnapshotDir:   config.Dir(),
		CanvasOptions: e.canvasOptions(),
		Tracer:        e.tracing.Tracer(),
		Logf:          e.logf,
	})

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
