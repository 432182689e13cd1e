package storage

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strconv"
	"strings"
	"time"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const versionTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
	version INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	applied_at TEXT NOT NULL
)`

type migration struct {
	version int
	name    string
	file    string
}

// MigrateUp applies every embedded migration not yet recorded in
// schema_migrations, oldest first, one transaction each.
func MigrateUp(db *sql.DB) error {
	pending, err := loadMigrations(".up.sql")
	if err != nil {
		return err
	}
	applied, err := appliedSet(db)
	if err != nil {
		return err
	}
	for _, m := range pending {
		if applied[m.version] {
			continue
		}
		err := runMigration(db, m, func(tx *sql.Tx) error {
			_, err := tx.Exec(`INSERT INTO schema_migrations(version, name, applied_at) VALUES(?, ?, ?)`,
				m.version, m.name, time.Now().UTC().Format(time.RFC3339))
			return err
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// MigrateDown reverts applied migrations, newest first.
func MigrateDown(db *sql.DB) error {
	down, err := loadMigrations(".down.sql")
	if err != nil {
		return err
	}
	applied, err := appliedSet(db)
	if err != nil {
		return err
	}
	slices.Reverse(down)
	for _, m := range down {
		if !applied[m.version] {
			continue
		}
		err := runMigration(db, m, func(tx *sql.Tx) error {
			_, err := tx.Exec(`DELETE FROM schema_migrations WHERE version = ?`, m.version)
			return err
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// AppliedVersions lists recorded migration versions in ascending order.
func AppliedVersions(db *sql.DB) ([]int, error) {
	applied, err := appliedSet(db)
	if err != nil {
		return nil, err
	}
	out := make([]int, 0, len(applied))
	for v := range applied {
		out = append(out, v)
	}
	slices.Sort(out)
	return out, nil
}

func runMigration(db *sql.DB, m migration, record func(*sql.Tx) error) error {
	body, err := migrationFiles.ReadFile(m.file)
	if err != nil {
		return fmt.Errorf("read migration %s: %w", m.file, err)
	}
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin migration %s: %w", m.file, err)
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.Exec(string(body)); err != nil {
		return fmt.Errorf("apply migration %s: %w", m.file, err)
	}
	if err := record(tx); err != nil {
		return fmt.Errorf("record migration %s: %w", m.file, err)
	}
	return tx.Commit()
}

func appliedSet(db *sql.DB) (map[int]bool, error) {
	if _, err := db.Exec(versionTable); err != nil {
		return nil, fmt.Errorf("create schema_migrations: %w", err)
	}
	rows, err := db.Query(`SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("query schema_migrations: %w", err)
	}
	defer rows.Close()
	out := map[int]bool{}
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out[v] = true
	}
	return out, rows.Err()
}

// loadMigrations reads files named NNNN_name<suffix> sorted by version.
func loadMigrations(suffix string) ([]migration, error) {
	entries, err := fs.Glob(migrationFiles, "migrations/*"+suffix)
	if err != nil {
		return nil, fmt.Errorf("glob migrations: %w", err)
	}
	out := make([]migration, 0, len(entries))
	for _, file := range entries {
		base := strings.TrimSuffix(path.Base(file), suffix)
		prefix, name, ok := strings.Cut(base, "_")
		version, convErr := strconv.Atoi(prefix)
		if !ok || convErr != nil {
			return nil, fmt.Errorf("migration %s: name must look like 0001_name%s", file, suffix)
		}
		out = append(out, migration{version: version, name: name, file: file})
	}
	slices.SortFunc(out, func(a, b migration) int { return a.version - b.version })
	return out, nil
}
