// Implements the file-backed single-table store.

package jsonstore

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"
)

var (
	// ErrNotFound is returned when no row has the requested id.
	ErrNotFound = errors.New("not found")
	// ErrCorrupt is returned when a table file does not decode as a JSON array of rows.
	ErrCorrupt = errors.New("corrupt table file")

	errNameRequired   = errors.New("table name is required")
	errUniqueRequired = errors.New("unique field accessor is required")
	errPatchRequired  = errors.New("patch field setter is required")
)

// Row is implemented by the pointer types stored in a table.
type Row[T any] interface {
	Clone() T
	GetID() int
	SetID(id int)
}

// Op names a table operation as reported to [Config.OnOp].
type Op string

// Table operations.
const (
	OpAdd    Op = "add"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
	OpPatch  Op = "patch"
	OpGet    Op = "get"
	OpList   Op = "list"
	OpExists Op = "exists"
)

// Config describes one table: where it lives, what it is seeded with and
// which fields carry the per-entity behavior.
type Config[T Row[T]] struct {
	// Name identifies the table in logs, metrics and errors.
	Name string
	// Dir is the directory holding the table file. Created if missing.
	Dir string
	// FileName is the table file within Dir. Defaults to Name + ".json".
	FileName string
	// Seed returns the rows written when the table is first found empty.
	Seed func() []T
	// Unique returns the value matched by Exists.
	Unique func(T) string
	// Patch sets the single field changed by Patch.
	Patch func(T, string)
	// OnOp, if set, is called after every operation.
	OnOp func(op Op, elapsed time.Duration, err error)
}

// Validate checks that the configuration is usable.
func (c *Config[T]) Validate() error {
	if c.Name == "" {
		return errNameRequired
	}
	if c.Unique == nil {
		return fmt.Errorf("table %s: %w", c.Name, errUniqueRequired)
	}
	if c.Patch == nil {
		return fmt.Errorf("table %s: %w", c.Name, errPatchRequired)
	}
	return nil
}

func (c *Config[T]) fileName() string {
	if c.FileName != "" {
		return c.FileName
	}
	return c.Name + ".json"
}

func (c *Config[T]) observe(op Op, start time.Time, err *error) {
	if c.OnOp != nil {
		c.OnOp(op, time.Since(start), *err)
	}
}

// Store is a table persisted as a JSON array in a single file.
//
// It is safe for concurrent use. See the package documentation for the
// consistency model.
type Store[T Row[T]] struct {
	cfg  Config[T]
	path string
	mu   sync.Mutex
}

// Open provisions the table file and returns a Store for it.
//
// The directory is created if needed. A missing file is created holding an
// empty array. If the table is then empty, the seed rows are written. An
// existing non-empty table is left untouched.
func Open[T Row[T]](cfg Config[T]) (*Store[T], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Dir == "" {
		cfg.Dir = "."
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil { //nolint:gosec // G301: 0o755 is intentional for data directories
		return nil, fmt.Errorf("failed to create directory for table %s: %w", cfg.Name, err)
	}
	s := &Store[T]{
		cfg:  cfg,
		path: filepath.Join(cfg.Dir, cfg.fileName()),
	}
	if err := s.init(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store[T]) init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path); errors.Is(err, fs.ErrNotExist) {
		if err := s.save(nil); err != nil {
			return err
		}
	} else if err != nil {
		return fmt.Errorf("failed to stat table file %s: %w", s.path, err)
	}

	rows, err := s.load()
	if err != nil {
		return err
	}
	if len(rows) > 0 || s.cfg.Seed == nil {
		return nil
	}
	seed := s.cfg.Seed()
	if len(seed) == 0 {
		return nil
	}
	slog.Debug("Seeding table", "table", s.cfg.Name, "rows", len(seed), "path", s.path)
	return s.save(seed)
}

// Name returns the table name.
func (s *Store[T]) Name() string {
	return s.cfg.Name
}

// Path returns the path of the table file.
func (s *Store[T]) Path() string {
	return s.path
}

// Add assigns the next id to row, appends it and persists the table.
//
// The id already set on row is ignored. Duplicate field values are accepted;
// use Exists beforehand to enforce uniqueness.
func (s *Store[T]) Add(row T) (_ T, err error) {
	defer s.cfg.observe(OpAdd, time.Now(), &err)
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.load()
	if err != nil {
		var zero T
		return zero, err
	}
	row.SetID(nextID(rows))
	rows = append(rows, row)
	if err := s.save(rows); err != nil {
		var zero T
		return zero, err
	}
	return row, nil
}

// Update replaces the row with the same id, keeping its position.
//
// It returns ErrNotFound, without touching the file, if no such row exists.
func (s *Store[T]) Update(row T) (err error) {
	defer s.cfg.observe(OpUpdate, time.Now(), &err)
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.load()
	if err != nil {
		return err
	}
	i := indexOf(rows, row.GetID())
	if i < 0 {
		return fmt.Errorf("%s %d: %w", s.cfg.Name, row.GetID(), ErrNotFound)
	}
	rows[i] = row
	return s.save(rows)
}

// Delete removes the first row with the given id and returns it.
func (s *Store[T]) Delete(id int) (_ T, err error) {
	defer s.cfg.observe(OpDelete, time.Now(), &err)
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	rows, err := s.load()
	if err != nil {
		return zero, err
	}
	i := indexOf(rows, id)
	if i < 0 {
		return zero, fmt.Errorf("%s %d: %w", s.cfg.Name, id, ErrNotFound)
	}
	removed := rows[i]
	rows = slices.Delete(rows, i, i+1)
	if err := s.save(rows); err != nil {
		return zero, err
	}
	return removed, nil
}

// Patch sets the table's designated field on the row with the given id and
// returns the updated row.
func (s *Store[T]) Patch(id int, value string) (_ T, err error) {
	defer s.cfg.observe(OpPatch, time.Now(), &err)
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	rows, err := s.load()
	if err != nil {
		return zero, err
	}
	i := indexOf(rows, id)
	if i < 0 {
		return zero, fmt.Errorf("%s %d: %w", s.cfg.Name, id, ErrNotFound)
	}
	s.cfg.Patch(rows[i], value)
	if err := s.save(rows); err != nil {
		return zero, err
	}
	return rows[i], nil
}

// Get returns the first row with the given id.
//
// It does not take the gate.
func (s *Store[T]) Get(id int) (_ T, err error) {
	defer s.cfg.observe(OpGet, time.Now(), &err)
	var zero T
	rows, err := s.load()
	if err != nil {
		return zero, err
	}
	i := indexOf(rows, id)
	if i < 0 {
		return zero, fmt.Errorf("%s %d: %w", s.cfg.Name, id, ErrNotFound)
	}
	return rows[i], nil
}

// All returns every row in insertion order.
//
// It does not take the gate.
func (s *Store[T]) All() (_ []T, err error) {
	defer s.cfg.observe(OpList, time.Now(), &err)
	return s.load()
}

// Exists reports whether any row's unique field equals value.
//
// It holds the gate so it never interleaves with a mutation of this table.
func (s *Store[T]) Exists(value string) (_ bool, err error) {
	defer s.cfg.observe(OpExists, time.Now(), &err)
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.load()
	if err != nil {
		return false, err
	}
	return containsUnique(rows, s.cfg.Unique, value), nil
}

func (s *Store[T]) load() ([]T, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read table file %s: %w", s.path, err)
	}
	rows := []T{}
	if len(bytes.TrimSpace(data)) == 0 {
		return rows, nil
	}
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrCorrupt, s.path, err)
	}
	for i, row := range rows {
		if isNil(row) {
			return nil, fmt.Errorf("%w %s: null row at index %d", ErrCorrupt, s.path, i)
		}
	}
	if rows == nil {
		rows = []T{}
	}
	return rows, nil
}

// save replaces the table file with rows.
//
// The data is written to a temporary file in the same directory and renamed
// over the table file.
func (s *Store[T]) save(rows []T) error {
	if rows == nil {
		rows = []T{}
	}
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal table %s: %w", s.cfg.Name, err)
	}
	f, err := os.CreateTemp(filepath.Dir(s.path), "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", s.path, err)
	}
	tmp := f.Name()
	defer func() {
		// No-op once the rename succeeded.
		_ = os.Remove(tmp)
	}()
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write table file %s: %w", s.path, err)
	}
	if err := f.Chmod(0o644); err != nil { //nolint:gosec // G302: table files are not secret
		_ = f.Close()
		return fmt.Errorf("failed to chmod table file %s: %w", s.path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close table file %s: %w", s.path, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace table file %s: %w", s.path, err)
	}
	return nil
}

func nextID[T Row[T]](rows []T) int {
	maxID := 0
	for _, row := range rows {
		maxID = max(maxID, row.GetID())
	}
	return maxID + 1
}

func indexOf[T Row[T]](rows []T, id int) int {
	return slices.IndexFunc(rows, func(row T) bool { return row.GetID() == id })
}

func containsUnique[T Row[T]](rows []T, unique func(T) string, value string) bool {
	return slices.ContainsFunc(rows, func(row T) bool { return unique(row) == value })
}
