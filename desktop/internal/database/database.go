package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps the sqlite handle. Every service call checks a connection out of
// the pool for a handful of autocommit statements; no transaction ever spans
// more than one service call.
type DB struct {
	conn *sql.DB
	path string
}

// Open opens (creating if needed) the sqlite file at path with WAL journaling,
// foreign keys on and the given busy timeout.
func Open(path string, busyTimeoutMS int) (*DB, error) {
	if busyTimeoutMS <= 0 {
		busyTimeoutMS = 10000
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=%d&_journal_mode=WAL&_foreign_keys=on", path, busyTimeoutMS)
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &DB{conn: conn, path: path}, nil
}

// OpenAndInit opens the database and makes sure the current schema exists
func OpenAndInit(ctx context.Context, path string, busyTimeoutMS int) (*DB, error) {
	db, err := Open(path, busyTimeoutMS)
	if err != nil {
		return nil, err
	}
	if err := db.InitSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return db, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

// GetConn returns the underlying *sql.DB
func (db *DB) GetConn() *sql.DB {
	return db.conn
}

// Path returns the sqlite file path
func (db *DB) Path() string {
	return db.path
}
