// Package nv provides a small non-volatile item store: fixed-size blobs
// addressed by a 16-bit item id. The real implementation keeps items in a
// SQLite database; the in-memory one is for tests.
package nv

import "errors"

// Status is the outcome of Init.
type Status int

const (
	// StatusPresent means the item already existed and can be read.
	StatusPresent Status = iota
	// StatusUninitialized means the item was just created (zero-filled).
	StatusUninitialized
)

func (s Status) String() string {
	if s == StatusUninitialized {
		return "uninitialized"
	}
	return "present"
}

var (
	ErrSizeMismatch = errors.New("nv: item size mismatch")
	ErrNotFound     = errors.New("nv: item not initialized")
)

// Store reads and writes non-volatile items.
type Store interface {
	// Init makes sure the item exists with the given size.
	Init(id uint16, size int) (Status, error)
	// Read fills buf with the item's contents.
	Read(id uint16, buf []byte) error
	// Write replaces the item's contents.
	Write(id uint16, buf []byte) error
}
