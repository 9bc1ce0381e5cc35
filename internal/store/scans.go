package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const scanColumns = `id, run_id, taken_at, root, version, max_lines, max_test_lines,
	violation_count, total_excess`

// RecordScan stores a scan and its violations in one transaction and
// returns the new scan ID. RunID and TakenAt are filled in when empty;
// ViolationCount and TotalExcess are derived from violations.
func (db *DB) RecordScan(s *Scan, violations []ViolationRow) (int64, error) {
	if s.RunID == "" {
		s.RunID = uuid.NewString()
	}
	if s.TakenAt.IsZero() {
		s.TakenAt = time.Now().UTC()
	}
	s.ViolationCount = len(violations)
	s.TotalExcess = 0
	for _, v := range violations {
		s.TotalExcess += v.ExcessLines
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.Exec(
		`INSERT INTO scans
		(run_id, taken_at, root, version, max_lines, max_test_lines, violation_count, total_excess)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.RunID, s.TakenAt.UTC().Format(time.RFC3339), s.Root, s.Version,
		s.MaxLines, s.MaxTestLines, s.ViolationCount, s.TotalExcess,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting scan: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}

	stmt, err := tx.Prepare(
		`INSERT INTO violations (scan_id, path, lines, type, is_test, excess_lines)
		VALUES (?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return 0, err
	}
	defer func() { _ = stmt.Close() }()

	for _, v := range violations {
		if _, err := stmt.Exec(id, v.Path, v.Lines, v.Type, v.IsTest, v.ExcessLines); err != nil {
			return 0, fmt.Errorf("inserting violation %s: %w", v.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	s.ID = id
	return id, nil
}

// GetScan returns a scan by ID, or nil if it does not exist.
func (db *DB) GetScan(id int64) (*Scan, error) {
	row := db.conn.QueryRow("SELECT "+scanColumns+" FROM scans WHERE id = ?", id)
	return scanScan(row)
}

// GetLatestScan returns the most recent scan, or nil if none exist.
func (db *DB) GetLatestScan() (*Scan, error) {
	return db.GetScanN(1)
}

// GetScanN returns the Nth most recent scan (1 = latest, 2 = previous, etc.),
// or nil if there are fewer than n scans.
func (db *DB) GetScanN(n int) (*Scan, error) {
	if n < 1 {
		return nil, nil
	}
	row := db.conn.QueryRow(
		"SELECT "+scanColumns+" FROM scans ORDER BY id DESC LIMIT 1 OFFSET ?",
		n-1,
	)
	return scanScan(row)
}

// ListScans returns up to limit scans, newest first.
func (db *DB) ListScans(limit int) ([]Scan, error) {
	rows, err := db.conn.Query(
		"SELECT "+scanColumns+" FROM scans ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var scans []Scan
	for rows.Next() {
		s, err := scanScan(rows)
		if err != nil {
			return nil, err
		}
		scans = append(scans, *s)
	}
	return scans, rows.Err()
}

// GetViolations returns the violations recorded for a scan, most lines first.
func (db *DB) GetViolations(scanID int64) ([]ViolationRow, error) {
	rows, err := db.conn.Query(
		`SELECT id, scan_id, path, lines, type, is_test, excess_lines
		FROM violations WHERE scan_id = ? ORDER BY lines DESC, path ASC`,
		scanID,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []ViolationRow
	for rows.Next() {
		var v ViolationRow
		if err := rows.Scan(&v.ID, &v.ScanID, &v.Path, &v.Lines, &v.Type, &v.IsTest, &v.ExcessLines); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanScan(row rowScanner) (*Scan, error) {
	var s Scan
	var takenAt string
	err := row.Scan(&s.ID, &s.RunID, &takenAt, &s.Root, &s.Version,
		&s.MaxLines, &s.MaxTestLines, &s.ViolationCount, &s.TotalExcess)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.TakenAt, _ = time.Parse(time.RFC3339, takenAt)
	return &s, nil
}
