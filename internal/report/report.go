// Package report renders refactoring progress as markdown.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/blackwell-systems/refactorwatch/internal/store"
)

// EmptyReport is returned when no scan has been recorded.
const EmptyReport = "# Refactoring Progress\n\nNo data yet."

// DefaultTop is the number of files listed when none is configured.
const DefaultTop = 10

// Reporter produces a progress report.
type Reporter interface {
	GenerateReport() (string, error)
}

// Source is the store capability the reporter reads from.
type Source interface {
	GetScanN(n int) (*store.Scan, error)
	GetViolations(scanID int64) ([]store.ViolationRow, error)
	CountIssues() (store.IssueCounts, error)
}

// MarkdownReporter summarizes the latest scan against the one before it.
type MarkdownReporter struct {
	src Source
	top int
}

// New returns a reporter listing at most top files (DefaultTop when top < 1).
func New(src Source, top int) *MarkdownReporter {
	if top < 1 {
		top = DefaultTop
	}
	return &MarkdownReporter{src: src, top: top}
}

// GenerateReport implements Reporter.
func (r *MarkdownReporter) GenerateReport() (string, error) {
	latest, err := r.src.GetScanN(1)
	if err != nil {
		return "", fmt.Errorf("loading latest scan: %w", err)
	}
	if latest == nil {
		return EmptyReport, nil
	}
	prev, err := r.src.GetScanN(2)
	if err != nil {
		return "", fmt.Errorf("loading previous scan: %w", err)
	}
	violations, err := r.src.GetViolations(latest.ID)
	if err != nil {
		return "", fmt.Errorf("loading violations: %w", err)
	}
	counts, err := r.src.CountIssues()
	if err != nil {
		return "", fmt.Errorf("counting issues: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("# Refactoring Progress\n\n")
	fmt.Fprintf(&sb, "Latest scan of `%s` at %s (limits: %d lines, %d for tests).\n\n",
		latest.Root, latest.TakenAt.UTC().Format(time.RFC3339), latest.MaxLines, latest.MaxTestLines)

	sb.WriteString("| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(&sb, "| Monoliths | %d%s |\n", latest.ViolationCount, delta(prev, func(s *store.Scan) int { return s.ViolationCount }, latest.ViolationCount))
	fmt.Fprintf(&sb, "| Excess lines | %d%s |\n", latest.TotalExcess, delta(prev, func(s *store.Scan) int { return s.TotalExcess }, latest.TotalExcess))
	fmt.Fprintf(&sb, "| Issues filed | %d (open %d, in progress %d, completed %d) |\n",
		counts.Total, counts.Open, counts.InProgress, counts.Completed)

	if len(violations) == 0 {
		sb.WriteString("\nNo monoliths found.\n")
		return sb.String(), nil
	}

	shown := violations
	if len(shown) > r.top {
		shown = shown[:r.top]
	}
	sb.WriteString("\n## Largest files\n\n")
	sb.WriteString("| File | Lines | Excess | Type |\n|---|---:|---:|---|\n")
	for _, v := range shown {
		file := v.Path
		if v.IsTest {
			file += " (test)"
		}
		fmt.Fprintf(&sb, "| %s | %d | +%d | %s |\n", escapeCell(file), v.Lines, v.ExcessLines, v.Type)
	}
	if rest := len(violations) - len(shown); rest > 0 {
		fmt.Fprintf(&sb, "\n_%d more not shown._\n", rest)
	}

	return sb.String(), nil
}

// delta formats the change since prev, or "" when there is no previous scan.
func delta(prev *store.Scan, field func(*store.Scan) int, current int) string {
	if prev == nil {
		return ""
	}
	d := current - field(prev)
	if d == 0 {
		return " (unchanged)"
	}
	return fmt.Sprintf(" (%+d)", d)
}

// escapeCell keeps pipes in file names from breaking the table.
func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
