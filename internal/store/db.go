package store

import (
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

var (
	// ErrStaleRef is returned for a Ref taken before the last Replace.
	ErrStaleRef = errors.New("record reference is stale: the app list was refreshed")
	// ErrNotFound is returned for a Ref or key with no record behind it.
	ErrNotFound = errors.New("record not found")
)

// Store holds the snapshot of flatpak apps for one pacpak run.
//
// It is backed by an in-memory SQLite database: nothing is written to disk
// and every process starts empty. The store is not safe for concurrent use.
type Store struct {
	db  *sql.DB
	gen uint64
}

// Ref addresses one record. It is only valid for the generation it was
// issued in.
type Ref struct {
	Pos int
	Gen uint64
}

// New opens an empty in-memory store with the schema in place.
func New() (*Store, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Each connection to ":memory:" is its own database, so keep exactly one
	// and never let it expire.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Generation returns the number of completed Replace calls.
func (s *Store) Generation() uint64 {
	return s.gen
}

func (s *Store) check(ref Ref) error {
	if ref.Gen != s.gen {
		return fmt.Errorf("ref %d (generation %d, current %d): %w", ref.Pos, ref.Gen, s.gen, ErrStaleRef)
	}
	return nil
}
