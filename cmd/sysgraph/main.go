package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	args := os.Args[1:]
	run := runLive
	if len(args) > 0 {
		switch args[0] {
		case "snapshot":
			run, args = runSnapshot, args[1:]
		case "replay":
			run, args = runReplay, args[1:]
		case "feed":
			run, args = runFeed, args[1:]
		case "help":
			printUsage(os.Stdout, "")
			return
		}
	}
	if err := run(args); err != nil {
		fatalf("%v", err)
	}
}

// parseFlags reports false when the caller should stop, either because help
// was printed or parsing failed.
func parseFlags(fs *flag.FlagSet, args []string) (bool, error) {
	fs.SetOutput(io.Discard)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printUsage(os.Stderr, flagDefaults(fs))
			return false, nil
		}
		return false, fmt.Errorf("%s: %w", fs.Name(), err)
	}
	return true, nil
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "sysgraph %s\n", version)
	fmt.Fprintf(w, "  commit: %s\n", commit)
	fmt.Fprintf(w, "  built:  %s\n", date)
}
