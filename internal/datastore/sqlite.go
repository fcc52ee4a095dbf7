// Package datastore opens the SQLite database that backs the book catalog.
package datastore

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// DefaultDBPath is where the catalog lives unless configured otherwise.
var DefaultDBPath = filepath.Join("data", "bibly.sqlite")

// pragmas run on the single pooled connection after it is opened.
var pragmas = []string{
	"PRAGMA foreign_keys=ON",
	"PRAGMA busy_timeout=5000",
	"PRAGMA journal_mode=WAL",
}

// SQLiteStore owns the connection to a local SQLite database
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore creates a new SQLiteStore instance
func NewSQLiteStore(dbPath string) *SQLiteStore {
	return &SQLiteStore{
		dbPath: dbPath,
	}
}

// Open connects to dbPath and creates the catalog schema.
func Open(dbPath string) (*SQLiteStore, error) {
	s := NewSQLiteStore(dbPath)
	if err := s.Connect(); err != nil {
		return nil, err
	}
	if err := s.CreateTable(CatalogSchema); err != nil {
		return nil, errors.Join(err, s.Close())
	}
	return s, nil
}

// Connect opens the database, creating its parent directory first. The pool
// is limited to one connection so connection-scoped pragmas always apply.
func (s *SQLiteStore) Connect() error {
	if err := EnsureDir(s.dbPath); err != nil {
		return err
	}

	db, err := sql.Open("sqlite", s.dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return errors.Join(fmt.Errorf("exec pragma %q: %w", pragma, err), db.Close())
		}
	}

	slog.Debug("Database opened", "path", s.dbPath)
	s.db = db
	return nil
}

// CreateTable runs schema, which must be idempotent
func (s *SQLiteStore) CreateTable(schema string) error {
	if s.db == nil {
		return errors.New("database is not connected")
	}
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	return nil
}

// DB returns the underlying handle, nil before Connect.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

// Path returns the database location.
func (s *SQLiteStore) Path() string {
	return s.dbPath
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// EnsureDir creates the directory holding dbPath. In-memory and URI
// databases are left alone.
func EnsureDir(dbPath string) error {
	if dbPath == "" || dbPath == ":memory:" || strings.HasPrefix(dbPath, "file:") {
		return nil
	}
	dir := filepath.Dir(dbPath)
	if dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create database directory %s: %w", dir, err)
	}
	return nil
}
