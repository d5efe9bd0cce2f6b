package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/unkn0wn-root/sysgraph/internal/collect"
	"github.com/unkn0wn-root/sysgraph/internal/errdef"
)

const feedPath = "/feed"

func runFeed(args []string) error {
	fs := flag.NewFlagSet("feed", flag.ContinueOnError)
	var (
		flags commonFlags
		addr  string
	)
	flags.register(fs)
	fs.StringVar(&addr, "addr", "127.0.0.1:7070", "Listen address")
	if ok, err := parseFlags(fs, args); !ok {
		return err
	}

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
	store, session, err := e.recorder(ctx, "feed")
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	server := collect.NewFeedServer(e.logf)
	mux := http.NewServeMux()
	mux.Handle(feedPath, server)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	raw := make(chan []collect.Reading, 16)
	readings := make(chan []collect.Reading, 16)
	go func() {
		_ = coll.Run(ctx, raw)
		close(raw)
	}()
	go pump(ctx, raw, readings, store, session.ID, e.logf)
	go func() {
		for batch := range readings {
			if err := server.Publish(batch); err != nil {
				_ = errdef.Soft(e.logf, err)
			}
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("serving readings on ws://%s%s", addr, feedPath)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errdef.Wrap(errdef.CodeFeed, err, "listen %s", addr)
	case <-ctx.Done():
	}
	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return errdef.Wrap(errdef.CodeFeed, err, "shutdown")
	}
	return nil
}
