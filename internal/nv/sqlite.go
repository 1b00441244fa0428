package nv

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `CREATE TABLE IF NOT EXISTS nv_items (
	id   INTEGER PRIMARY KEY,
	data BLOB NOT NULL
)`

// SQLiteStore keeps items in a single table.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path.
// Use ":memory:" for a throwaway store.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open nv database: %w", err)
	}
	// One connection keeps ":memory:" databases alive and serialises writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create nv schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Init creates a zero-filled item when it does not exist.
func (s *SQLiteStore) Init(id uint16, size int) (Status, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("start transaction: %w", err)
	}
	defer tx.Rollback()

	var n int
	err = tx.QueryRow(`SELECT length(data) FROM nv_items WHERE id = ?`, id).Scan(&n)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := tx.Exec(`INSERT INTO nv_items (id, data) VALUES (?, ?)`, id, make([]byte, size)); err != nil {
			return 0, fmt.Errorf("create item %#04x: %w", id, err)
		}
		if err := tx.Commit(); err != nil {
			return 0, fmt.Errorf("commit item %#04x: %w", id, err)
		}
		return StatusUninitialized, nil
	case err != nil:
		return 0, fmt.Errorf("query item %#04x: %w", id, err)
	}

	if n != size {
		return 0, fmt.Errorf("%w: item %#04x has %d bytes, want %d", ErrSizeMismatch, id, n, size)
	}
	return StatusPresent, nil
}

// Read copies the item into buf, which must match the stored size.
func (s *SQLiteStore) Read(id uint16, buf []byte) error {
	var data []byte
	err := s.db.QueryRow(`SELECT data FROM nv_items WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("read item %#04x: %w", id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("read item %#04x: %w", id, err)
	}
	if len(data) != len(buf) {
		return fmt.Errorf("%w: item %#04x has %d bytes, buffer %d", ErrSizeMismatch, id, len(data), len(buf))
	}
	copy(buf, data)
	return nil
}

// Write replaces an initialised item. Writing a different size is refused.
func (s *SQLiteStore) Write(id uint16, buf []byte) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("start transaction: %w", err)
	}
	defer tx.Rollback()

	var n int
	err = tx.QueryRow(`SELECT length(data) FROM nv_items WHERE id = ?`, id).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("write item %#04x: %w", id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("query item %#04x: %w", id, err)
	}
	if n != len(buf) {
		return fmt.Errorf("%w: item %#04x has %d bytes, write %d", ErrSizeMismatch, id, n, len(buf))
	}

	if _, err := tx.Exec(`UPDATE nv_items SET data = ? WHERE id = ?`, buf, id); err != nil {
		return fmt.Errorf("write item %#04x: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit item %#04x: %w", id, err)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
