// Copyright 2026 The PMIS Authors
// SPDX-License-Identifier: Apache-2.0

// pmis-console is the terminal administrative console for the PMIS
// project-tracking API: authentication, project browsing, the events
// pilot, transaction browsing, and the admin database screens, all in
// one bubbletea program.
//
// Configuration comes from a YAML file (--config flag or PMIS_CONFIG
// environment variable) with development defaults when neither is
// given; --api-url, --download-dir, and --session-file override
// individual fields. The session persists across restarts in a JSON
// file under the user's config directory.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/pmisuite/pmis/lib/apiclient"
	"github.com/pmisuite/pmis/lib/config"
	"github.com/pmisuite/pmis/lib/consoleui"
	"github.com/pmisuite/pmis/lib/session"
	"github.com/pmisuite/pmis/lib/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var configPath string
	var apiURL string
	var downloadDirectory string
	var sessionFile string
	var logOutput string

	flagSet := pflag.NewFlagSet("pmis-console", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to YAML config file (default: $PMIS_CONFIG)")
	flagSet.StringVar(&apiURL, "api-url", "", "base URL of the PMIS API (overrides config)")
	flagSet.StringVar(&downloadDirectory, "download-dir", "", "directory for document downloads (overrides config)")
	flagSet.StringVar(&sessionFile, "session-file", "", "path of the session file (overrides config)")
	flagSet.StringVar(&logOutput, "log-output", "", "write JSON log records to this file (in addition to the status bar)")
	flagSet.BoolP("help", "h", false, "show help")

	// Handle --version before flag parsing so it works regardless of
	// other flags.
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		version.Print("pmis-console")
		return nil
	}

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}
	if args := flagSet.Args(); len(args) > 0 {
		return fmt.Errorf("unexpected argument: %s", args[0])
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("pmis-console requires an interactive terminal")
	}

	configuration, err := loadConfiguration(configPath)
	if err != nil {
		return err
	}
	if apiURL != "" {
		configuration.API.BaseURL = apiURL
	}
	if downloadDirectory != "" {
		configuration.Downloads.Directory = downloadDirectory
	}
	if sessionFile != "" {
		configuration.SessionFile = sessionFile
	}
	if err := configuration.Validate(); err != nil {
		return err
	}

	// Startup logging goes to stderr; once the alt screen is up, all
	// logging is routed into the status bar instead.
	startupLogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	client, err := apiclient.New(apiclient.Config{
		BaseURL: configuration.API.BaseURL,
		Logger:  startupLogger,
	})
	if err != nil {
		return err
	}

	statusHandler := consoleui.NewStatusLogHandler(slog.LevelInfo)
	var uiLogger *slog.Logger
	if logOutput != "" {
		fileHandler, closeFile, fileErr := openFileLogHandler(logOutput)
		if fileErr != nil {
			return fmt.Errorf("cannot open log file %s: %w", logOutput, fileErr)
		}
		defer closeFile()
		uiLogger = slog.New(fanoutHandler{statusHandler, fileHandler})
	} else {
		uiLogger = slog.New(statusHandler)
	}

	store := session.New(configuration.SessionFile, client, uiLogger)

	model := consoleui.New(client, store, &configuration, uiLogger)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	statusHandler.SetProgram(program)

	_, err = program.Run()
	return err
}

// loadConfiguration resolves the config source: explicit flag first,
// then the PMIS_CONFIG environment variable, then defaults.
func loadConfiguration(configPath string) (config.Config, error) {
	if configPath != "" {
		return config.LoadFile(configPath)
	}
	return config.Load()
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `PMIS console — terminal UI for the PMIS project-tracking API.

Connects to the API named in the config file (or --api-url), restores
the saved session if one exists, and opens the console. Sign in with a
PMIS account; the admin screens require the administrator role.

Usage:
  pmis-console [flags]

Examples:
  # Connect with defaults (http://127.0.0.1:8000)
  pmis-console

  # Explicit API and a log file for debugging
  pmis-console --api-url https://pmis.example.gouv:8443 --log-output /tmp/pmis.jsonl

Flags:
`)
	flagSet.SetOutput(os.Stderr)
	flagSet.PrintDefaults()
}

// openFileLogHandler creates a JSON slog handler writing to path. The
// file is created or truncated.
func openFileLogHandler(path string) (slog.Handler, func(), error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	handler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: slog.LevelDebug})
	return handler, func() { file.Close() }, nil
}

// fanoutHandler sends each record to multiple handlers. A record is
// enabled if any sub-handler wants it.
type fanoutHandler []slog.Handler

func (handlers fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (handlers fanoutHandler) Handle(ctx context.Context, record slog.Record) error {
	for _, handler := range handlers {
		if handler.Enabled(ctx, record.Level) {
			if err := handler.Handle(ctx, record); err != nil {
				return err
			}
		}
	}
	return nil
}

func (handlers fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	derived := make(fanoutHandler, len(handlers))
	for index, handler := range handlers {
		derived[index] = handler.WithAttrs(attrs)
	}
	return derived
}

func (handlers fanoutHandler) WithGroup(name string) slog.Handler {
	derived := make(fanoutHandler, len(handlers))
	for index, handler := range handlers {
		derived[index] = handler.WithGroup(name)
	}
	return derived
}
