// Package main is the entry point for the blocktree editor.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dshills/blocktree/internal/app"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	application, err := app.New(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}
	defer application.Shutdown()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signals
		application.Shutdown()
		os.Exit(1)
	}()

	if err := application.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func parseFlags() app.Options {
	var opts app.Options
	var showVersion bool

	flag.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file")
	flag.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.PluginDir, "plugins", "", "Directory of Lua rule scripts")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Blocktree - structural block editor\n\n")
		fmt.Fprintf(os.Stderr, "Usage: blocktree [options] [document.json]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nKeys:\n")
		fmt.Fprintf(os.Stderr, "  Enter        split or create blocks\n")
		fmt.Fprintf(os.Stderr, "  Tab/S-Tab    indent and outdent\n")
		fmt.Fprintf(os.Stderr, "  Backspace    structural delete at block start\n")
		fmt.Fprintf(os.Stderr, "  Ctrl+Z/Y     undo and redo\n")
		fmt.Fprintf(os.Stderr, "  Ctrl+Space   fold subtree\n")
		fmt.Fprintf(os.Stderr, "  Ctrl+S       save, Ctrl+Q quit\n")
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("blocktree %s (%s)\n", version, commit)
		os.Exit(0)
	}

	if args := flag.Args(); len(args) > 0 {
		opts.DocPath = args[0]
	}
	return opts
}
