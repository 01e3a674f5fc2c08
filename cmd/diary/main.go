package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/hpungsan/diary/internal/config"
	"github.com/hpungsan/diary/internal/logging"
	"github.com/hpungsan/diary/internal/mcp"
	"github.com/hpungsan/diary/internal/store"
	"github.com/hpungsan/diary/internal/view"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"add": true, "delete": true, "entries": true, "summary": true, "symptoms": true,
	"help": true,
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode() bool {
	if len(os.Args) < 2 {
		return false // No args → MCP server
	}
	arg := os.Args[1]
	if cliCommands[arg] {
		return true
	}
	if arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" {
		return true
	}
	return false
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion() bool {
	if len(os.Args) < 2 {
		return false
	}
	arg := os.Args[1]
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" || arg == "help"
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, _ := os.Stdin.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
   ___  _
  |   \(_)__ _ _ _ _  _
  | |) | / _' | '_| || |
  |___/|_\__,_|_|  \_, |
                   |__/

  Personal mood and symptom diary

  Usage: diary <command> [options]
         diary --help

  MCP server mode requires piped input.`)
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}

// openStore loads configuration and opens the configured backend.
func openStore() (store.Store, *config.Config, *slog.Logger) {
	baseDir, err := config.BaseDir()
	if err != nil {
		fail("%v", err)
	}

	wd, err := os.Getwd()
	if err != nil {
		fail("could not determine working directory: %v", err)
	}

	cfg, err := config.LoadWithRepo(baseDir, wd)
	if err != nil {
		fail("failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		fail("%v", err)
	}

	logger, err := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		fail("%v", err)
	}

	st, err := store.Open(store.Config{
		Backend: store.Backend(cfg.Backend),
		Path:    cfg.DBPath(baseDir),
		Logger:  logger,
	})
	if err != nil {
		fail("failed to open store: %v", err)
	}

	return st, cfg, logger
}

func main() {
	// No args + interactive terminal → show banner and exit
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	// Handle --help/--version before opening the store
	if isHelpOrVersion() {
		app := newCLIApp(nil, nil, nil)
		if err := app.Run(os.Args); err != nil {
			fail("%v", err)
		}
		return
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if !isCLIMode() && len(os.Args) >= 2 && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'diary --help' for usage.\n")
		os.Exit(1)
	}

	st, cfg, logger := openStore()
	defer st.Close()

	if isCLIMode() {
		app := newCLIApp(st, cfg, logger)
		if err := app.Run(os.Args); err != nil {
			fail("%v", err)
		}
		return
	}

	// MCP server mode (default)
	ctrl, err := view.New(st,
		view.Options{List: cfg.ListEnabled(), Summary: cfg.SummaryEnabled()},
		view.WithLogger(logger))
	if err != nil {
		fail("%v", err)
	}
	defer ctrl.Close()

	if err := mcp.Run(ctrl, cfg, Version, logger); err != nil {
		fail("%v", err)
	}
}
