// Package db owns the SQLite connection backing the persistent session store.
package db

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema/schema.sql
var schemaSQL string

// FileName is the database file created inside the data directory.
const FileName = "patchview.db"

const (
	maxRetries  = 5
	initialWait = 100 * time.Millisecond
)

// OpenOptions tunes the connection pool and lock handling.
type OpenOptions struct {
	MaxOpenConns int
	MaxIdleConns int
	BusyTimeout  int // milliseconds
}

// DefaultOpenOptions returns the options used when config leaves them unset.
func DefaultOpenOptions() OpenOptions {
	return OpenOptions{
		MaxOpenConns: 4,
		MaxIdleConns: 2,
		BusyTimeout:  5000,
	}
}

// DB wraps a SQL database connection with retry logic and typed queries.
type DB struct {
	conn    *sql.DB
	queries *Queries
}

// Open creates a new database connection with connection pooling and retry logic.
// The database file is created in the specified data directory.
func Open(dataDir string, opts OpenOptions) (*DB, error) {
	dbPath := filepath.Join(dataDir, FileName)

	// WAL keeps a second patchview process from blocking readers.
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)", dbPath, opts.BusyTimeout)
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn.SetMaxOpenConns(opts.MaxOpenConns)
	conn.SetMaxIdleConns(opts.MaxIdleConns)
	conn.SetConnMaxLifetime(0)

	db := &DB{
		conn:    conn,
		queries: New(conn),
	}

	if err := db.pingWithRetry(context.Background()); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.initSchema(context.Background()); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn exposes the raw connection for tests and diagnostics.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Queries returns the typed queries.
func (db *DB) Queries() *Queries {
	return db.queries
}

// pingWithRetry attempts to ping the database with exponential backoff.
func (db *DB) pingWithRetry(ctx context.Context) error {
	wait := initialWait
	var lastErr error
	for i := 0; i < maxRetries; i++ {
		if lastErr = db.conn.PingContext(ctx); lastErr == nil {
			return nil
		}

		if i < maxRetries-1 {
			time.Sleep(wait)
			wait *= 2
		}
	}

	return fmt.Errorf("failed to ping database after %d retries: %w", maxRetries, lastErr)
}

// initSchema creates the database schema if it doesn't exist.
func (db *DB) initSchema(ctx context.Context) error {
	if _, err := db.conn.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}
