// Package main is the entry point for the clc chat client.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/sfeek/ChatClient/internal/app"
	"github.com/sfeek/ChatClient/internal/config"
	"github.com/sfeek/ChatClient/internal/ui"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	conn, err := app.Dial(opts.Host, opts.Port)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer conn.Close()

	screen, err := ui.NewTerminal()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create terminal: %v\n", err)
		return 1
	}

	session, err := app.New(opts, screen, conn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}

	if err := session.Run(); err != nil {
		// A peer-initiated close is a normal way for a chat session to end.
		if errors.Is(err, app.ErrDisconnected) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	return 0
}

func parseFlags() app.Options {
	var opts app.Options
	var configPath string
	var scriptPath string
	var showVersion bool
	var showHelp bool

	flag.StringVar(&configPath, "config", "", "Path to configuration file")
	flag.StringVar(&configPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&scriptPath, "script", "", "Path to Lua hook script")
	flag.StringVar(&scriptPath, "s", "", "Path to Lua hook script (shorthand)")
	flag.BoolVar(&opts.Debug, "debug", false, "Enable debug logging")
	flag.BoolVar(&opts.Debug, "d", false, "Enable debug logging (shorthand)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "clc - terminal chat client\n\n")
		fmt.Fprintf(os.Stderr, "Usage: clc [options] [host [port]]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  clc                         Connect using the configured server\n")
		fmt.Fprintf(os.Stderr, "  clc chat.example.com        Connect to port 6969\n")
		fmt.Fprintf(os.Stderr, "  clc chat.example.com 4000   Connect to an explicit port\n")
		fmt.Fprintf(os.Stderr, "  clc -s hooks.lua            Connect with a hook script loaded\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("clc %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	if configPath == "" {
		configPath = config.DefaultPath()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if scriptPath != "" {
		cfg.Script = scriptPath
	}

	// Positional arguments override the configured server.
	args := flag.Args()
	if len(args) > 0 {
		cfg.Host = args[0]
	}
	if len(args) > 1 {
		cfg.Port = args[1]
	}
	if len(args) > 2 {
		fmt.Fprintln(os.Stderr, "Error: too many arguments")
		flag.Usage()
		os.Exit(1)
	}

	opts.Host = cfg.Host
	opts.Port = cfg.Port
	opts.Config = cfg

	return opts
}
