package main

import (
	"context"
	"os"
	"time"

	"github.com/unkn0wn-root/sysgraph/internal/errdef"
	"github.com/unkn0wn-root/sysgraph/internal/theme"
	"github.com/unkn0wn-root/sysgraph/internal/ui"
	"github.com/unkn0wn-root/sysgraph/internal/watcher"
)

const reloadInterval = 2 * time.Second

// watchSettings polls the settings file and sends re-resolved chart settings
// until ctx is done. Flags and environment overrides still apply on top of
// the edited file. It returns nil when there is no file to watch.
func (e *env) watchSettings(ctx context.Context, flags commonFlags) <-chan ui.Reload {
	path := e.handle.Path
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	w := watcher.New(watcher.Options{Interval: reloadInterval})
	w.Track(path, data)
	w.Start()

	flags.configPath = path
	out := make(chan ui.Reload, 1)
	go func() {
		defer close(out)
		defer w.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case evt := <-w.Events():
				if evt.Kind == watcher.EventMissing {
					e.logf("settings %s removed; keeping current settings", evt.Path)
					continue
				}
				r := reloadSettings(flags, os.Environ())
				select {
				case out <- r:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

func reloadSettings(flags commonFlags, environ []string) ui.Reload {
	s, _, err := loadSettings(flags, environ)
	if err != nil {
		return ui.Reload{Err: err}
	}
	th, err := theme.ApplySpec(theme.DefaultTheme(), s.Colors)
	if err != nil {
		return ui.Reload{Err: errdef.Wrap(errdef.CodeConfig, err, "colors")}
	}
	return ui.Reload{Theme: th, Window: s.Chart.WindowDuration()}
}
