package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

var helpTokenMap = map[string]string{
	"tab":    "Tab",
	"enter":  "Enter",
	"space":  "Space",
	"home":   "Home",
	"end":    "End",
	"pgup":   "PgUp",
	"pgdown": "PgDn",
	"up":     "Up",
	"down":   "Down",
	"left":   "Left",
	"right":  "Right",
	"esc":    "Esc",
}

type keyMap struct {
	ZoomIn     key.Binding
	ZoomOut    key.Binding
	Pause      key.Binding
	Toggle     key.Binding
	FixedMax   key.Binding
	NextSeries key.Binding
	Stats      key.Binding
	Copy       key.Binding
	Snapshot   key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		ZoomIn: key.NewBinding(
			key.WithKeys("+", "=", "up"),
			key.WithHelp("+", "zoom in"),
		),
		ZoomOut: key.NewBinding(
			key.WithKeys("-", "_", "down"),
			key.WithHelp("-", "zoom out"),
		),
		Pause: key.NewBinding(
			key.WithKeys("p", " "),
			key.WithHelp("space", "pause"),
		),
		Toggle: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"),
			key.WithHelp("1-9", "toggle series"),
		),
		FixedMax: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "pin axis"),
		),
		NextSeries: key.NewBinding(
			key.WithKeys("tab", "shift+tab"),
			key.WithHelp("tab", "select series"),
		),
		Stats: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "statistics"),
		),
		Copy: key.NewBinding(
			key.WithKeys("y", "ctrl+shift+c"),
			key.WithHelp("y", "copy chart"),
		),
		Snapshot: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "save png"),
		),
		Help: key.NewBinding(
			key.WithKeys("?", "shift+/"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c", "ctrl+q"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.ZoomIn, k.ZoomOut, k.Pause, k.Toggle, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.ZoomIn, k.ZoomOut, k.Pause, k.FixedMax},
		{k.Toggle, k.NextSeries, k.Stats},
		{k.Copy, k.Snapshot, k.Help, k.Quit},
	}
}

// bindingLabel renders every key of a binding for the status bar.
func bindingLabel(b key.Binding) string {
	keys := b.Keys()
	if len(keys) == 0 {
		return ""
	}
	labels := make([]string, 0, len(keys))
	for _, k := range keys {
		if label := formatHelpBindingStep(k); label != "" {
			labels = append(labels, label)
		}
	}
	return strings.Join(labels, " / ")
}

func formatHelpBindingStep(step string) string {
	if step == " " {
		return "Space"
	}
	trimmed := strings.TrimSpace(step)
	if trimmed == "" {
		return ""
	}
	if trimmed == "shift+/" {
		return "?"
	}
	parts := strings.Split(trimmed, "+")
	hasModifier := len(parts) > 1
	if hasModifier && parts[len(parts)-1] == "" {
		// "+" itself
		return trimmed
	}
	for i, part := range parts {
		parts[i] = formatHelpToken(part, hasModifier)
	}
	return strings.Join(parts, "+")
}

func formatHelpToken(token string, capitalizeSingle bool) string {
	lowered := strings.ToLower(strings.TrimSpace(token))
	if lowered == "" {
		return ""
	}
	switch lowered {
	case "ctrl":
		return "Ctrl"
	case "alt":
		return "Alt"
	case "shift":
		return "Shift"
	}
	if mapped, ok := helpTokenMap[lowered]; ok {
		return mapped
	}
	if len(lowered) == 1 {
		if capitalizeSingle {
			return strings.ToUpper(lowered)
		}
		return lowered
	}
	return strings.ToUpper(lowered[:1]) + lowered[1:]
}
