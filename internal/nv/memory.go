package nv

import "fmt"

// MemStore is an in-memory Store that counts calls, for tests.
type MemStore struct {
	Items map[uint16][]byte

	Inits  int
	Reads  int
	Writes int

	// InitError, ReadError and WriteError, if set, are returned by the
	// corresponding calls.
	InitError  error
	ReadError  error
	WriteError error
}

// NewMemStore creates an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{Items: map[uint16][]byte{}}
}

func (m *MemStore) Init(id uint16, size int) (Status, error) {
	m.Inits++
	if m.InitError != nil {
		return 0, m.InitError
	}
	data, ok := m.Items[id]
	if !ok {
		m.Items[id] = make([]byte, size)
		return StatusUninitialized, nil
	}
	if len(data) != size {
		return 0, fmt.Errorf("%w: item %#04x", ErrSizeMismatch, id)
	}
	return StatusPresent, nil
}

func (m *MemStore) Read(id uint16, buf []byte) error {
	m.Reads++
	if m.ReadError != nil {
		return m.ReadError
	}
	data, ok := m.Items[id]
	if !ok {
		return ErrNotFound
	}
	if len(data) != len(buf) {
		return ErrSizeMismatch
	}
	copy(buf, data)
	return nil
}

func (m *MemStore) Write(id uint16, buf []byte) error {
	m.Writes++
	if m.WriteError != nil {
		return m.WriteError
	}
	if _, ok := m.Items[id]; !ok {
		return ErrNotFound
	}
	m.Items[id] = append([]byte(nil), buf...)
	return nil
}
