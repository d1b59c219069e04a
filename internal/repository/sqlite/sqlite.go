// Package sqlite implements the repository interfaces on an embedded
// SQLite database (modernc.org/sqlite — pure Go, no CGo toolchain needed).
//
// DEGRADED MODE:
// The database is optional for the auth flow: with no path configured the
// app still serves sign-ins, it just can't remember anything. A *DB built
// with an empty path reports Available() == false and then:
//
//   - read paths (GetByOpenID, ListByUser, GetAnalysisByID) log at Warn
//     and return empty values, never an error
//   - Upsert logs at Warn and returns nil without effect
//   - SaveAnalysis fails with apperror.ErrUnavailable
//
// Best-effort reads and upserts, strict writes. Callers that need to tell
// "empty" from "unavailable" check Available().
package sqlite

import (
	"database/sql"
	"fmt"
	"log/slog"

	// Blank import registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// Config holds everything the store needs beyond a connection.
type Config struct {
	// Path to the database file, or ":memory:" for tests.
	// Empty means no store: the handle comes up in degraded mode.
	Path string
	// OwnerOpenID is promoted to the admin role automatically on upsert
	// when no explicit role is supplied.
	OwnerOpenID string
}

// DB wraps the sql.DB pool and implements repository.UserRepository and
// repository.AnalysisRepository.
type DB struct {
	conn        *sql.DB // nil in degraded mode
	ownerOpenID string
	logger      *slog.Logger
}

// New opens the database, applies the session pragmas, and runs migrations.
// An empty cfg.Path is not an error — it returns a degraded handle so the
// server can start without a store (reads empty, analysis writes fail).
func New(cfg Config, logger *slog.Logger) (*DB, error) {
	if cfg.Path == "" {
		logger.Warn("no database path configured — store degraded to read-as-empty / write-as-no-op")
		return &DB{ownerOpenID: cfg.OwnerOpenID, logger: logger}, nil
	}

	conn, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Surface a bad path or permissions now, not on the first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL allows concurrent reads while a write is in flight — several
	// sessions can browse history while one analyze persists.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// code_analyses.user_id references users(id); SQLite leaves
	// enforcement off unless asked.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn, ownerOpenID: cfg.OwnerOpenID, logger: logger}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Available reports whether a real connection backs this handle.
func (db *DB) Available() bool {
	return db.conn != nil
}

// Close closes the connection pool. Safe on a degraded handle.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}
	return db.conn.Close()
}

// migrate creates the two tables. CREATE TABLE IF NOT EXISTS keeps this
// idempotent across restarts.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			open_id        TEXT NOT NULL UNIQUE,
			name           TEXT NOT NULL DEFAULT '',
			email          TEXT NOT NULL DEFAULT '',
			login_method   TEXT NOT NULL DEFAULT '',
			role           TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('user', 'admin')),
			created_at     DATETIME NOT NULL,
			updated_at     DATETIME NOT NULL,
			last_signed_in DATETIME NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS code_analyses (
			id                      INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id                 INTEGER NOT NULL REFERENCES users(id),
			code                    TEXT NOT NULL,
			file_name               TEXT NOT NULL DEFAULT '',
			elementary_explanation  TEXT NOT NULL DEFAULT '',
			college_explanation     TEXT NOT NULL DEFAULT '',
			created_at              DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_code_analyses_user_id ON code_analyses(user_id);
		CREATE INDEX IF NOT EXISTS idx_code_analyses_created_at ON code_analyses(created_at);
	`)
	if err != nil {
		return fmt.Errorf("creating code_analyses table: %w", err)
	}

	return nil
}
