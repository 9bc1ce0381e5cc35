package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// RecordIssue stores a filed issue and returns its ID. State defaults to
// IssueOpen and CreatedAt to now.
func (db *DB) RecordIssue(is *Issue) (int64, error) {
	if is.State == "" {
		is.State = IssueOpen
	}
	if err := validState(is.State); err != nil {
		return 0, err
	}
	if is.CreatedAt.IsZero() {
		is.CreatedAt = time.Now().UTC()
	}

	result, err := db.conn.Exec(
		`INSERT INTO issues (created_at, repo, path, lines, url, state)
		VALUES (?, ?, ?, ?, ?, ?)`,
		is.CreatedAt.UTC().Format(time.RFC3339), is.Repo, is.Path, is.Lines, is.URL, is.State,
	)
	if err != nil {
		return 0, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}
	is.ID = id
	return id, nil
}

// UpdateIssueState changes the state of a recorded issue.
func (db *DB) UpdateIssueState(id int64, state string) error {
	if err := validState(state); err != nil {
		return err
	}
	result, err := db.conn.Exec("UPDATE issues SET state = ? WHERE id = ?", state, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("issue %d: %w", id, sql.ErrNoRows)
	}
	return nil
}

// FindIssue returns the most recent issue filed for path in repo that is
// not completed, or nil if there is none.
func (db *DB) FindIssue(repo, path string) (*Issue, error) {
	row := db.conn.QueryRow(
		`SELECT id, created_at, repo, path, lines, url, state FROM issues
		WHERE repo = ? AND path = ? AND state != ?
		ORDER BY id DESC LIMIT 1`,
		repo, path, IssueCompleted,
	)
	is, err := scanIssue(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return is, err
}

// ListIssues returns all recorded issues, newest first.
func (db *DB) ListIssues() ([]Issue, error) {
	rows, err := db.conn.Query(
		"SELECT id, created_at, repo, path, lines, url, state FROM issues ORDER BY id DESC",
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []Issue
	for rows.Next() {
		is, err := scanIssue(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *is)
	}
	return out, rows.Err()
}

// CountIssues tallies recorded issues by state.
func (db *DB) CountIssues() (IssueCounts, error) {
	var c IssueCounts
	rows, err := db.conn.Query("SELECT state, COUNT(*) FROM issues GROUP BY state")
	if err != nil {
		return c, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var state string
		var n int
		if err := rows.Scan(&state, &n); err != nil {
			return c, err
		}
		c.Total += n
		switch state {
		case IssueOpen:
			c.Open = n
		case IssueInProgress:
			c.InProgress = n
		case IssueCompleted:
			c.Completed = n
		}
	}
	return c, rows.Err()
}

func scanIssue(row rowScanner) (*Issue, error) {
	var is Issue
	var createdAt string
	if err := row.Scan(&is.ID, &createdAt, &is.Repo, &is.Path, &is.Lines, &is.URL, &is.State); err != nil {
		return nil, err
	}
	is.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &is, nil
}

func validState(state string) error {
	switch state {
	case IssueOpen, IssueInProgress, IssueCompleted:
		return nil
	}
	return fmt.Errorf("unknown issue state %q", state)
}
