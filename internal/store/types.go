// Package store provides SQLite persistence for scan history and filed
// refactoring issues.
package store

import "time"

// Issue states tracked by the monitor.
const (
	IssueOpen       = "open"
	IssueInProgress = "in_progress"
	IssueCompleted  = "completed"
)

// Scan is one recorded run of the monolith scanner.
type Scan struct {
	ID             int64     `json:"id"`
	RunID          string    `json:"run_id"`
	TakenAt        time.Time `json:"taken_at"`
	Root           string    `json:"root"`
	Version        string    `json:"version"`
	MaxLines       int       `json:"max_lines"`
	MaxTestLines   int       `json:"max_test_lines"`
	ViolationCount int       `json:"violation_count"`
	TotalExcess    int       `json:"total_excess"`
}

// ViolationRow is a monolith recorded as part of a scan.
type ViolationRow struct {
	ID          int64  `json:"id"`
	ScanID      int64  `json:"scan_id"`
	Path        string `json:"path"`
	Lines       int    `json:"lines"`
	Type        string `json:"type"`
	IsTest      bool   `json:"is_test"`
	ExcessLines int    `json:"excess_lines"`
}

// Issue is a refactoring issue filed for a monolith.
type Issue struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Repo      string    `json:"repo"`
	Path      string    `json:"path"`
	Lines     int       `json:"lines"`
	URL       string    `json:"url"`
	State     string    `json:"state"`
}

// IssueCounts tallies recorded issues by state.
type IssueCounts struct {
	Total      int `json:"total"`
	Open       int `json:"open"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
}
