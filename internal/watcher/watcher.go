// Package watcher rescans a codebase on an interval and emits alerts when
// monolithic files appear, grow, or are split up.
package watcher

import (
	"context"
	"fmt"
	"time"

	"github.com/blackwell-systems/refactorwatch/internal/scanner"
)

// Alert levels.
const (
	LevelCritical = "critical"
	LevelWarning  = "warning"
	LevelInfo     = "info"
)

// Scanner is the subset of scanner.Scanner the watcher needs.
type Scanner interface {
	Scan(ctx context.Context, root string) ([]scanner.Violation, error)
}

// State is the result of one scan of the watched root.
type State struct {
	Timestamp   time.Time
	Violations  []scanner.Violation
	TotalExcess int

	lines map[string]int // relative path -> line count
}

// Count returns the number of files over their limit.
func (s *State) Count() int {
	return len(s.Violations)
}

// Alert represents a notable change between two scans.
type Alert struct {
	Level   string
	Title   string
	Message string
	Time    time.Time
}

// Watcher rescans a root at a regular interval and emits alerts when the
// set of monoliths changes.
type Watcher struct {
	scanner       Scanner
	root          string
	interval      time.Duration
	previous      *State
	alertFn       func(Alert)
	lastAlertKeys map[string]bool

	// OnSnapshot, when set, is called with every successful scan,
	// including the initial one.
	OnSnapshot func(*State)
}

// New creates a Watcher for root.
func New(sc Scanner, root string, interval time.Duration, alertFn func(Alert)) *Watcher {
	return &Watcher{
		scanner:       sc,
		root:          root,
		interval:      interval,
		alertFn:       alertFn,
		lastAlertKeys: make(map[string]bool),
	}
}

// Baseline takes the initial snapshot if none exists yet and returns it.
func (w *Watcher) Baseline(ctx context.Context) (*State, error) {
	if w.previous != nil {
		return w.previous, nil
	}
	initial, err := w.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("initial scan: %w", err)
	}
	w.previous = initial
	return initial, nil
}

// Run takes a baseline, then checks at every interval. Blocks until ctx is
// cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	if _, err := w.Baseline(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			for _, a := range w.Check(ctx) {
				if w.alertFn != nil {
					w.alertFn(a)
				}
			}
		}
	}
}

// Check rescans, compares against the previous state, and returns any
// alerts. An alert identical to one raised by the previous check is
// suppressed.
func (w *Watcher) Check(ctx context.Context) []Alert {
	curr, err := w.Snapshot(ctx)
	if err != nil {
		return []Alert{{
			Level:   LevelWarning,
			Title:   "Scan failed",
			Message: err.Error(),
			Time:    time.Now(),
		}}
	}

	var raw []Alert
	if w.previous != nil {
		raw = Compare(w.previous, curr)
	}

	currentKeys := make(map[string]bool, len(raw))
	var alerts []Alert
	for _, a := range raw {
		key := a.Level + ":" + a.Title + ":" + a.Message
		currentKeys[key] = true
		if !w.lastAlertKeys[key] {
			alerts = append(alerts, a)
		}
	}
	w.lastAlertKeys = currentKeys

	w.previous = curr
	return alerts
}

// Snapshot scans the root once.
func (w *Watcher) Snapshot(ctx context.Context) (*State, error) {
	violations, err := w.scanner.Scan(ctx, w.root)
	if err != nil {
		return nil, err
	}
	state := newState(time.Now(), violations)
	if w.OnSnapshot != nil {
		w.OnSnapshot(state)
	}
	return state, nil
}

func newState(ts time.Time, violations []scanner.Violation) *State {
	s := &State{
		Timestamp:  ts,
		Violations: violations,
		lines:      make(map[string]int, len(violations)),
	}
	for _, v := range violations {
		s.lines[v.Path] = v.Lines
		s.TotalExcess += v.ExcessLines
	}
	return s
}
