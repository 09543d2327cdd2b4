package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/hpungsan/linkgrab/internal/config"
	"github.com/hpungsan/linkgrab/internal/db"
	"github.com/hpungsan/linkgrab/internal/fetch"
	"github.com/hpungsan/linkgrab/internal/mcp"
	"github.com/hpungsan/linkgrab/internal/session"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"fetch": true, "show": true, "clear": true,
	"extract": true, "serve": true,
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
   _ _       _                    _
  | (_)_ __ | | ____ _ _ __ __ _| |__
  | | | '_ \| |/ / _' | '__/ _' | '_ \
  | | | | | |   < (_| | | | (_| | |_) |
  |_|_|_| |_|_|\_\__, |_|  \__,_|_.__/
                 |___/
  Fetch a page, keep its links

  Usage: linkgrab <command> [options]
         linkgrab --help

  MCP server mode requires piped input.`)
}

func main() {
	// No args + interactive terminal → show banner and exit
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// run wires the dependencies and dispatches to the CLI or the MCP server.
func run() error {
	// Handle --help/--version before DB init (no DB needed)
	if isHelpOrVersion() {
		return newCLIApp(nil).Run(os.Args)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("could not determine home directory: %w", err)
	}
	baseDir := filepath.Join(homeDir, config.DirName)

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("could not determine working directory: %w", err)
	}

	cfg, err := config.LoadWithRepo(baseDir, cwd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// stdout carries MCP frames or command output
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "linkgrab",
	})

	var storage session.Storage
	switch cfg.Storage {
	case config.StorageMemory:
		storage = session.NewMemoryStorage()
	default:
		database, err := db.Init(baseDir)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer database.Close()
		db.ConfigurePool(database, cfg)
		storage = db.NewKV(database)
	}

	fetcher, err := fetch.New(cfg)
	if err != nil {
		return err
	}
	defer fetcher.Close()

	if unknown := mcp.ValidateDisabledTools(cfg.DisabledTools); len(unknown) > 0 {
		logger.Warn("ignoring unknown disabled_tools", "tools", unknown)
	}

	store := session.New(storage, fetcher, session.WithLogger(logger))

	// CLI mode: known subcommand
	if isCLIMode() {
		return newCLIApp(&appDeps{store: store, cfg: cfg, logger: logger}).Run(os.Args)
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if len(os.Args) >= 2 && isTerminal() {
		return fmt.Errorf("unknown command %q\nRun 'linkgrab --help' for usage", os.Args[1])
	}

	// MCP server mode (default)
	return mcp.Run(store, cfg, Version)
}
