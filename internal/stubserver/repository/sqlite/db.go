package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Rrens/deskflow/internal/config"
	_ "modernc.org/sqlite"
)

// DB wraps the embedded database handle
type DB struct {
	SQL *sql.DB
}

// NewDB opens (and creates, if needed) the stub database file
func NewDB(ctx context.Context, cfg config.DatabaseConfig) (*DB, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("database file path is required")
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", cfg.Path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{SQL: db}, nil
}

// Close closes the database
func (db *DB) Close() error {
	return db.SQL.Close()
}

// Timestamps are stored as RFC3339 text so scans never depend on driver
// type inference.

func encodeTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func decodeTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
