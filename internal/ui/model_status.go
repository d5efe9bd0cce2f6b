package ui

import (
	"fmt"
	"strings"
)

func (m *Model) setStatusMessage(msg statusMsg) {
	m.statusMessage = msg
	if msg.level == statusError && strings.TrimSpace(msg.text) != "" {
		m.logf("ui: %s", msg.text)
	}
}

func (m *Model) setStatus(level statusLevel, format string, args ...any) {
	m.setStatusMessage(statusMsg{text: fmt.Sprintf(format, args...), level: level})
}
