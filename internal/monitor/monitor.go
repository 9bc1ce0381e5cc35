// Package monitor reports the progress of filed refactoring issues.
package monitor

import (
	"fmt"

	"github.com/blackwell-systems/refactorwatch/internal/store"
)

// Status counts filed refactoring issues.
type Status struct {
	IssuesCreated int `json:"issues_created"`
	InProgress    int `json:"in_progress"`
	Completed     int `json:"completed"`
}

// Monitor reports refactoring progress.
type Monitor interface {
	CheckStatus() (Status, error)
}

// IssueCounter is the store capability the monitor reads from.
type IssueCounter interface {
	CountIssues() (store.IssueCounts, error)
}

// StoreMonitor derives status from the issues recorded in the store.
type StoreMonitor struct {
	issues IssueCounter
}

// New returns a monitor reading from issues.
func New(issues IssueCounter) *StoreMonitor {
	return &StoreMonitor{issues: issues}
}

// CheckStatus implements Monitor.
func (m *StoreMonitor) CheckStatus() (Status, error) {
	c, err := m.issues.CountIssues()
	if err != nil {
		return Status{}, fmt.Errorf("counting issues: %w", err)
	}
	return Status{
		IssuesCreated: c.Total,
		InProgress:    c.InProgress,
		Completed:     c.Completed,
	}, nil
}
