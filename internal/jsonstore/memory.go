// Implements an in-memory table with the same semantics as Store.

package jsonstore

import (
	"fmt"
	"slices"
	"sync"
	"time"
)

// Memory is a table kept in memory only.
//
// It follows the same id assignment, seeding and not-found rules as [Store]
// and is used where persistence is not wanted (tests, demos). Rows are cloned
// on the way in and on the way out.
type Memory[T Row[T]] struct {
	cfg  Config[T]
	mu   sync.RWMutex
	rows []T
}

// NewMemory returns an in-memory table holding the configured seed rows.
func NewMemory[T Row[T]](cfg Config[T]) (*Memory[T], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	m := &Memory[T]{cfg: cfg, rows: []T{}}
	if cfg.Seed != nil {
		for _, row := range cfg.Seed() {
			m.rows = append(m.rows, row.Clone())
		}
	}
	return m, nil
}

// Name returns the table name.
func (m *Memory[T]) Name() string {
	return m.cfg.Name
}

// Add assigns the next id to row and appends a copy of it.
func (m *Memory[T]) Add(row T) (_ T, err error) {
	defer m.cfg.observe(OpAdd, time.Now(), &err)
	m.mu.Lock()
	defer m.mu.Unlock()
	row.SetID(nextID(m.rows))
	m.rows = append(m.rows, row.Clone())
	return row, nil
}

// Update replaces the row with the same id, keeping its position.
func (m *Memory[T]) Update(row T) (err error) {
	defer m.cfg.observe(OpUpdate, time.Now(), &err)
	m.mu.Lock()
	defer m.mu.Unlock()
	i := indexOf(m.rows, row.GetID())
	if i < 0 {
		return fmt.Errorf("%s %d: %w", m.cfg.Name, row.GetID(), ErrNotFound)
	}
	m.rows[i] = row.Clone()
	return nil
}

// Delete removes the first row with the given id and returns it.
func (m *Memory[T]) Delete(id int) (_ T, err error) {
	defer m.cfg.observe(OpDelete, time.Now(), &err)
	m.mu.Lock()
	defer m.mu.Unlock()
	i := indexOf(m.rows, id)
	if i < 0 {
		var zero T
		return zero, fmt.Errorf("%s %d: %w", m.cfg.Name, id, ErrNotFound)
	}
	removed := m.rows[i]
	m.rows = slices.Delete(m.rows, i, i+1)
	return removed, nil
}

// Patch sets the table's designated field on the row with the given id.
func (m *Memory[T]) Patch(id int, value string) (_ T, err error) {
	defer m.cfg.observe(OpPatch, time.Now(), &err)
	m.mu.Lock()
	defer m.mu.Unlock()
	i := indexOf(m.rows, id)
	if i < 0 {
		var zero T
		return zero, fmt.Errorf("%s %d: %w", m.cfg.Name, id, ErrNotFound)
	}
	m.cfg.Patch(m.rows[i], value)
	return m.rows[i].Clone(), nil
}

// Get returns a copy of the first row with the given id.
func (m *Memory[T]) Get(id int) (_ T, err error) {
	defer m.cfg.observe(OpGet, time.Now(), &err)
	m.mu.RLock()
	defer m.mu.RUnlock()
	i := indexOf(m.rows, id)
	if i < 0 {
		var zero T
		return zero, fmt.Errorf("%s %d: %w", m.cfg.Name, id, ErrNotFound)
	}
	return m.rows[i].Clone(), nil
}

// All returns copies of every row in insertion order.
func (m *Memory[T]) All() (_ []T, err error) {
	defer m.cfg.observe(OpList, time.Now(), &err)
	m.mu.RLock()
	defer m.mu.RUnlock()
	rows := make([]T, len(m.rows))
	for i, row := range m.rows {
		rows[i] = row.Clone()
	}
	return rows, nil
}

// Exists reports whether any row's unique field equals value.
func (m *Memory[T]) Exists(value string) (_ bool, err error) {
	defer m.cfg.observe(OpExists, time.Now(), &err)
	m.mu.RLock()
	defer m.mu.RUnlock()
	return containsUnique(m.rows, m.cfg.Unique, value), nil
}
