package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/MakeNowJust/heredoc"
)

var usageText = heredoc.Doc(`
	Usage:
	  sysgraph [flags]                 live charts of local metrics
	  sysgraph snapshot [flags]        collect for a while, then print or save a chart
	  sysgraph replay [flags] [ref]    list recorded sessions or chart one
	  sysgraph feed [flags]            serve local readings over websocket

	Sessions are referenced by full id, a unique id prefix or "latest".

	Settings are read from settings.toml or settings.yaml in the config
	directory (override with SYSGRAPH_CONFIG_DIR). Any setting can be
	overridden with --set section.key=value or SYSGRAPH_SET_SECTION__KEY.

	Examples:
	  sysgraph --window 15m --sources cpu,mem
	  sysgraph --set colors.series=#ff8800,#00aaff
	  sysgraph snapshot --for 30s --png cpu.png
	  sysgraph replay latest --png last.png
	  sysgraph feed --addr :7070
	  sysgraph --feed ws://host:7070/feed
`)

func printUsage(w io.Writer, flags string) {
	fmt.Fprint(w, usageText)
	if strings.TrimSpace(flags) != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Flags:")
		fmt.Fprint(w, flags)
	}
}
