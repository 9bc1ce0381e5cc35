package watcher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/refactorwatch/internal/scanner"
)

// scriptedScanner returns one canned result per call, repeating the last.
type scriptedScanner struct {
	results [][]scanner.Violation
	err     error
	calls   int
}

func (s *scriptedScanner) Scan(ctx context.Context, root string) ([]scanner.Violation, error) {
	if s.err != nil {
		return nil, s.err
	}
	i := min(s.calls, len(s.results)-1)
	s.calls++
	return s.results[i], nil
}

func v(path string, lines int) scanner.Violation {
	return scanner.Violation{Path: path, Lines: lines, Type: "python", ExcessLines: lines - 500}
}

func TestCheck_NewGrownResolved(t *testing.T) {
	sc := &scriptedScanner{results: [][]scanner.Violation{
		{v("a.py", 600), v("b.py", 550)},
		{v("c.py", 900), v("a.py", 650)},
	}}
	w := New(sc, "/src", time.Minute, nil)

	base, err := w.Baseline(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, base.Count())
	assert.Equal(t, 150, base.TotalExcess)

	alerts := w.Check(context.Background())
	require.Len(t, alerts, 3)

	assert.Equal(t, LevelCritical, alerts[0].Level)
	assert.Equal(t, "New monolith: c.py", alerts[0].Title)
	assert.Equal(t, LevelWarning, alerts[1].Level)
	assert.Equal(t, "Monolith grew: a.py", alerts[1].Title)
	assert.Equal(t, "600 to 650 lines (+50)", alerts[1].Message)
	assert.Equal(t, LevelInfo, alerts[2].Level)
	assert.Equal(t, "Resolved: b.py", alerts[2].Title)
}

func TestCheck_NoChangeNoAlerts(t *testing.T) {
	sc := &scriptedScanner{results: [][]scanner.Violation{{v("a.py", 600)}}}
	w := New(sc, "/src", time.Minute, nil)

	_, err := w.Baseline(context.Background())
	require.NoError(t, err)
	assert.Empty(t, w.Check(context.Background()))
}

func TestCheck_ShrinkIsQuiet(t *testing.T) {
	sc := &scriptedScanner{results: [][]scanner.Violation{
		{v("a.py", 700)},
		{v("a.py", 600)},
	}}
	w := New(sc, "/src", time.Minute, nil)

	_, err := w.Baseline(context.Background())
	require.NoError(t, err)
	assert.Empty(t, w.Check(context.Background()))
}

func TestCheck_ScanFailureAlwaysReported(t *testing.T) {
	sc := &scriptedScanner{err: errors.New("permission denied")}
	w := New(sc, "/src", time.Minute, nil)

	first := w.Check(context.Background())
	require.Len(t, first, 1)
	assert.Equal(t, "Scan failed", first[0].Title)

	// A failed scan leaves the previous state in place.
	second := w.Check(context.Background())
	assert.Len(t, second, 1)
}

func TestCheck_RepeatedAlertSuppressed(t *testing.T) {
	sc := &scriptedScanner{results: [][]scanner.Violation{
		{v("a.py", 600)},
		{v("a.py", 650)},
		{v("a.py", 700)},
	}}
	w := New(sc, "/src", time.Minute, nil)
	_, err := w.Baseline(context.Background())
	require.NoError(t, err)

	assert.Len(t, w.Check(context.Background()), 1)
	assert.Len(t, w.Check(context.Background()), 1, "different growth is a new alert")
	assert.Empty(t, w.Check(context.Background()), "no change after the last scan")
}

func TestBaseline_Error(t *testing.T) {
	w := New(&scriptedScanner{err: errors.New("boom")}, "/src", time.Minute, nil)
	_, err := w.Baseline(context.Background())
	assert.ErrorContains(t, err, "initial scan")
}

func TestOnSnapshot(t *testing.T) {
	sc := &scriptedScanner{results: [][]scanner.Violation{{v("a.py", 600)}}}
	w := New(sc, "/src", time.Minute, nil)

	var seen []int
	w.OnSnapshot = func(s *State) { seen = append(seen, s.Count()) }

	_, err := w.Baseline(context.Background())
	require.NoError(t, err)
	w.Check(context.Background())
	assert.Equal(t, []int{1, 1}, seen)
}

func TestRun_StopsOnCancel(t *testing.T) {
	sc := &scriptedScanner{results: [][]scanner.Violation{{}}}
	w := New(sc, "/src", time.Hour, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := w.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_WithRealScanner(t *testing.T) {
	sc := scanner.New(scanner.Config{})
	w := New(sc, t.TempDir(), time.Hour, nil)

	base, err := w.Baseline(context.Background())
	require.NoError(t, err)
	assert.Zero(t, base.Count())
}
