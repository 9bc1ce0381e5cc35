// Package app contains the Cobra command tree for refactorwatch.
package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/refactorwatch/internal/config"
	"github.com/blackwell-systems/refactorwatch/internal/output"
	"github.com/blackwell-systems/refactorwatch/internal/store"
)

var appVersion = "dev"

// SetVersion sets the application version (called from main with ldflags value).
func SetVersion(v string) {
	appVersion = v
	rootCmd.Version = v
}

var (
	flagNoColor bool
	flagJSON    bool
	flagVerbose bool
	flagConfig  string
	flagDB      string
)

var rootCmd = &cobra.Command{
	Use:   "refactorwatch",
	Short: "Find monolithic source files and file refactoring issues",
	Long: `refactorwatch - Autonomous code refactoring.

It scans a codebase for source files that exceed configured line limits,
ranks them by size, and can open GitHub issues asking @claude to split them
up. Scans and filed issues are recorded locally so progress can be tracked.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		fmt.Fprintln(w, "refactorwatch", appVersion)
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Use a subcommand:")
		fmt.Fprintln(w, "  scan      Find files over the line limit and optionally file issues")
		fmt.Fprintln(w, "  status    Show refactoring issue progress")
		fmt.Fprintln(w, "  report    Generate a markdown progress report")
		fmt.Fprintln(w, "  issues    List filed issues and update their state")
		fmt.Fprintln(w, "  watch     Rescan on an interval and alert on changes")
		fmt.Fprintln(w, "  mcp       Serve scan and status tools over MCP stdio")
		fmt.Fprintln(w, "  config    Write or show configuration")
		return nil
	},
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default: ~/.config/refactorwatch/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "Database path (default: ~/.config/refactorwatch/refactorwatch.db)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose output")
}

// newLogger returns a text logger on w; debug records are kept only when
// verbose is set.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// setupOutput applies color preferences for a command run.
func setupOutput(cfg *config.Config) {
	output.ConfigureColor(flagNoColor, cfg.Output.Color, os.Stdout)
}

// openStore opens the database at --db or the default location.
func openStore() (*store.DB, error) {
	path := flagDB
	if path == "" {
		path = config.DBPath()
	}
	db, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return db, nil
}
