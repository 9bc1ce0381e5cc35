package store

import "fmt"

// currentSchemaVersion is the latest schema version.
const currentSchemaVersion = 1

// Migrate runs forward migrations to bring the database schema up to date.
func (db *DB) Migrate() error {
	if _, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	version := 0
	row := db.conn.QueryRow("SELECT version FROM schema_version LIMIT 1")
	if err := row.Scan(&version); err != nil {
		// No rows means a fresh database.
		version = 0
	}

	if version < 1 {
		if err := db.migrateV1(); err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
	}

	return nil
}

// migrateV1 creates the scan history and issue tables.
func (db *DB) migrateV1() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS scans (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id          TEXT NOT NULL UNIQUE,
			taken_at        TEXT NOT NULL,
			root            TEXT NOT NULL,
			version         TEXT NOT NULL,
			max_lines       INTEGER NOT NULL,
			max_test_lines  INTEGER NOT NULL,
			violation_count INTEGER NOT NULL,
			total_excess    INTEGER NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS violations (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			scan_id      INTEGER NOT NULL REFERENCES scans(id) ON DELETE CASCADE,
			path         TEXT NOT NULL,
			lines        INTEGER NOT NULL,
			type         TEXT NOT NULL,
			is_test      BOOLEAN NOT NULL,
			excess_lines INTEGER NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS issues (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			created_at TEXT NOT NULL,
			repo       TEXT NOT NULL,
			path       TEXT NOT NULL,
			lines      INTEGER NOT NULL,
			url        TEXT NOT NULL,
			state      TEXT NOT NULL DEFAULT 'open'
		)`,

		`CREATE INDEX IF NOT EXISTS idx_violations_scan ON violations(scan_id)`,
		`CREATE INDEX IF NOT EXISTS idx_scans_root ON scans(root)`,
		`CREATE INDEX IF NOT EXISTS idx_issues_repo_path ON issues(repo, path)`,
		`CREATE INDEX IF NOT EXISTS idx_issues_state ON issues(state)`,
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("executing %q: %w", stmt[:40], err)
		}
	}

	if _, err := tx.Exec("DELETE FROM schema_version"); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", currentSchemaVersion); err != nil {
		return err
	}

	return tx.Commit()
}
