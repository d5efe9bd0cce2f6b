package ui

import (
	"time"

	"github.com/unkn0wn-root/sysgraph/internal/collect"
	"github.com/unkn0wn-root/sysgraph/internal/theme"
)

type statusLevel int

const (
	statusInfo statusLevel = iota
	statusWarn
	statusError
	statusSuccess
)

type statusMsg struct {
	text  string
	level statusLevel
}

// readingsMsg carries one batch from the collector channel.
type readingsMsg struct {
	readings []collect.Reading
}

// readingsClosedMsg reports that the source channel was closed.
type readingsClosedMsg struct{}

type tickMsg struct {
	at time.Time
}

// Reload is a settings change picked up while running. Err reports a file
// that could not be applied; the current settings stay in effect.
type Reload struct {
	Theme  theme.Theme
	Window time.Duration
	Err    error
}

type reloadMsg struct {
	reload Reload
}
