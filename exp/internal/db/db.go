package db

import (
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// schemaVersion is stored in PRAGMA user_version. Bump it whenever the
// results layout changes.
const schemaVersion = 1

var (
	ErrSchemaVersion = errors.New("unsupported database schema version")
)

// pragmas apply per connection, so the pool is limited to one.
var pragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA foreign_keys=ON",
	// the query tool may read while a sweep is writing
	"PRAGMA busy_timeout=5000",
}

type DB struct {
	db *sql.DB
}

// Open opens or creates the SQLite database holding fill sweep results.
// Files written with another schema version are refused rather than mixed.
func Open(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to run %q: %w", p, err)
		}
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return &DB{db: db}, nil
}

// migrate creates the tables on a fresh file and checks the version of an
// existing one.
func migrate(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	switch version {
	case schemaVersion:
		return nil
	case 0:
		// an unversioned file with a results table predates the fill sweep
		var tables int
		err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'results'").Scan(&tables)
		if err != nil {
			return fmt.Errorf("failed to inspect database: %w", err)
		}
		if tables > 0 {
			return fmt.Errorf("%w: unversioned results table", ErrSchemaVersion)
		}
	default:
		return fmt.Errorf("%w: got %d, want %d", ErrSchemaVersion, version, schemaVersion)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin migration: %w", err)
	}
	defer tx.Rollback()
	if _, err := tx.Exec(schema); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return fmt.Errorf("failed to set schema version: %w", err)
	}
	return tx.Commit()
}

// Close closes the database connection
func (d *DB) Close() error {
	return d.db.Close()
}
