package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/refactorwatch/internal/config"
	"github.com/blackwell-systems/refactorwatch/internal/output"
	"github.com/blackwell-systems/refactorwatch/internal/scanner"
	"github.com/blackwell-systems/refactorwatch/internal/watcher"
)

var (
	watchInterval string
	watchQuiet    bool
	watchNotify   bool
	watchNoRecord bool
)

var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Rescan periodically and alert when monoliths appear or grow",
	Long: `Watch rescans the given directory at a fixed interval and prints an alert
when a file crosses its line limit, when an existing monolith grows, or when a
monolith drops back under the limit.

Examples:
  refactorwatch watch                  # watch the current directory every 5m
  refactorwatch watch ./src --interval 1m
  refactorwatch watch --notify         # also send desktop notifications`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchInterval, "interval", "5m", "Check interval as duration string (e.g. 30s, 5m)")
	watchCmd.Flags().BoolVar(&watchQuiet, "quiet", false, "Suppress terminal output")
	watchCmd.Flags().BoolVar(&watchNotify, "notify", false, "Send desktop notifications for alerts")
	watchCmd.Flags().BoolVar(&watchNoRecord, "no-record", false, "Do not record each check in the history database")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) > 0 {
		root = args[0]
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", root, err)
	}

	interval, err := time.ParseDuration(watchInterval)
	if err != nil {
		return fmt.Errorf("invalid interval %q: %w", watchInterval, err)
	}
	if interval < 5*time.Second {
		return fmt.Errorf("interval must be at least 5s, got %s", interval)
	}

	cfg, err := config.Load(flagConfig, absRoot)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	setupOutput(cfg)
	logger := newLogger(cmd.ErrOrStderr(), flagVerbose)

	out := cmd.OutOrStdout()
	if watchQuiet {
		out = io.Discard
	}

	sc := scanner.New(cfg.Scanner(), scanner.WithLogger(logger))
	w := watcher.New(sc, absRoot, interval, func(a watcher.Alert) {
		if watchNotify {
			_ = watcher.Notify(a)
		}
		printAlert(out, a)
	})

	if !watchNoRecord {
		db, err := openStore()
		if err != nil {
			logger.Warn("scan history disabled", "error", err)
		} else {
			defer func() { _ = db.Close() }()
			w.OnSnapshot = func(s *watcher.State) {
				if err := recordScan(db, absRoot, sc.Config(), s.Violations); err != nil {
					logger.Warn("could not record scan", "error", err)
				}
			}
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(out, "refactorwatch watching %s (checking every %s)\n", absRoot, interval)

	base, err := w.Baseline(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "[%s] %s %d monolith(s), %d excess lines\n",
		base.Timestamp.Format(time.TimeOnly),
		output.StyleSuccess.Render("✓"),
		base.Count(),
		base.TotalExcess)

	err = w.Run(ctx)
	if errors.Is(err, context.Canceled) {
		fmt.Fprintln(out, "\nStopped.")
		return nil
	}
	return err
}

// printAlert writes one alert as a timestamped line plus its message.
func printAlert(w io.Writer, a watcher.Alert) {
	fmt.Fprintf(w, "[%s] %s %s\n", a.Time.Format(time.TimeOnly), alertIcon(a.Level), a.Title)
	if a.Message != "" {
		fmt.Fprintf(w, "           %s\n", a.Message)
	}
}

// alertIcon returns the terminal indicator for an alert level.
func alertIcon(level string) string {
	switch level {
	case watcher.LevelCritical:
		return output.StyleError.Render("✗")
	case watcher.LevelWarning:
		return output.StyleWarning.Render("▲")
	case watcher.LevelInfo:
		return output.StyleSuccess.Render("✓")
	default:
		return " "
	}
}
