package main

import (
	"bytes"
	"flag"
	"strconv"
	"strings"
)

// stringList collects a repeatable flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// commonFlags are shared by every subcommand that collects readings.
type commonFlags struct {
	configPath string
	sets       stringList
	window     string
	interval   string
	sources    string
	feed       string
	precision  int
	record     bool
	noColor    bool
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configPath, "config", "", "Settings file (toml or yaml)")
	fs.Var(&c.sets, "set", "Override a setting as key=value (repeatable)")
	fs.StringVar(&c.window, "window", "", "Visible time window, e.g. 5m or 1h")
	fs.StringVar(&c.interval, "interval", "", "Collection interval, e.g. 1s")
	fs.StringVar(&c.sources, "sources", "", "Comma separated sources: cpu, mem, runtime, synthetic")
	fs.StringVar(&c.feed, "feed", "", "Subscribe to a sysgraph feed at this websocket URL")
	fs.IntVar(&c.precision, "precision", -1, "Decimals in labels (0-20)")
	fs.BoolVar(&c.record, "record", false, "Record readings to the history database")
	fs.BoolVar(&c.noColor, "no-color", false, "Disable colors in chart output")
}

// assignments turns explicit flags into settings overrides; --set wins over
// the dedicated flags.
func (c *commonFlags) assignments() []string {
	var out []string
	add := func(key, val string) {
		if strings.TrimSpace(val) != "" {
			out = append(out, key+"="+val)
		}
	}
	add("chart.window", c.window)
	add("collect.interval", c.interval)
	add("collect.sources", c.sources)
	add("collect.feed", c.feed)
	if c.precision >= 0 {
		add("chart.precision", strconv.Itoa(c.precision))
	}
	if c.record {
		add("record.enabled", "true")
	}
	if c.noColor {
		add("chart.color", "false")
	}
	return append(out, c.sets...)
}

func flagDefaults(fs *flag.FlagSet) string {
	var buf bytes.Buffer
	out := fs.Output()
	fs.SetOutput(&buf)
	fs.PrintDefaults()
	fs.SetOutput(out)
	return buf.String()
}
