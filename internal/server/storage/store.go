package storage

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
)

var (
	// ErrInvalidRow means a row or patch was empty or carried a non-scalar field.
	ErrInvalidRow = errors.New("invalid row")
	// ErrInvalidSearch means the search key was not a usable scalar.
	ErrInvalidSearch = errors.New("invalid search")
	// ErrNoneOrDuplicate means a lookup did not match exactly one row.
	ErrNoneOrDuplicate = errors.New("none or duplicate match")
)

// Record is one table row: field name to scalar value. Allowed value types
// are string, bool, int64 and float64 (smaller ints and float32 are widened
// on the way in). The "id" field is owned by the table.
type Record map[string]any

// Store owns every table in the process. Tables live for the process
// lifetime and are shared by all callers.
//
// Table methods are not synchronized. Flows that touch the store wrap each
// check-then-mutate sequence in Atomic, which serializes all store access
// behind one mutex. That reproduces the single-request-at-a-time execution
// the flows' conflict checks depend on.
type Store struct {
	mu sync.Mutex

	regMu  sync.Mutex
	tables map[string]*Table
}

func NewStore() *Store {
	return &Store{tables: make(map[string]*Table)}
}

// Open returns the named table, creating it on first reference.
func (s *Store) Open(name string) *Table {
	if name == "" {
		panic("storage: empty table name")
	}
	s.regMu.Lock()
	defer s.regMu.Unlock()
	t, ok := s.tables[name]
	if !ok {
		t = newTable(name)
		s.tables[name] = t
	}
	return t
}

// Atomic runs fn while holding the store lock. Every table access must
// happen inside an Atomic region.
func (s *Store) Atomic(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}

// Table is a named, insertion-ordered collection of records with an
// auto-incrementing integer id starting at 1. Ids are never reused, even
// after removal. Other fields have no schema; the calling code manages them.
type Table struct {
	name   string
	rows   []Record
	byID   map[int64]int
	autoID int64

	// exact-match secondary indexes, field -> value -> ids in insertion order
	indexes map[string]map[any][]int64
}

func newTable(name string) *Table {
	return &Table{
		name:    name,
		byID:    make(map[int64]int),
		indexes: make(map[string]map[any][]int64),
	}
}

// Index declares an exact-match secondary index on field. Substring
// searches still scan; exact Find and Exists on the field become map
// lookups. Safe to call before any rows exist.
func (t *Table) Index(field string) {
	if field == "" || field == "id" {
		return
	}
	if _, ok := t.indexes[field]; ok {
		return
	}
	idx := make(map[any][]int64)
	for _, row := range t.rows {
		if v, ok := row[field]; ok {
			idx[v] = append(idx[v], row["id"].(int64))
		}
	}
	t.indexes[field] = idx
}

// Insert validates row and appends it with the next id. The stored row is
// a copy; the caller keeps ownership of its argument.
func (t *Table) Insert(row Record) (int64, error) {
	clean, err := checkRow(row)
	if err != nil {
		return 0, err
	}
	t.autoID++
	id := t.autoID
	clean["id"] = id
	t.byID[id] = len(t.rows)
	t.rows = append(t.rows, clean)
	for field, idx := range t.indexes {
		if v, ok := clean[field]; ok {
			idx[v] = append(idx[v], id)
		}
	}
	return id, nil
}

// Update shallow-merges patch into the row with the given id. An "id"
// field in patch is dropped. Validation happens before any field is
// written, so a failed update changes nothing.
func (t *Table) Update(id int64, patch Record) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid id %d", ErrNoneOrDuplicate, id)
	}
	pos, ok := t.byID[id]
	if !ok {
		return fmt.Errorf("%w: id %d", ErrNoneOrDuplicate, id)
	}
	clean, err := checkRow(patch)
	if err != nil {
		return err
	}
	delete(clean, "id")
	row := t.rows[pos]
	for field, v := range clean {
		if idx, indexed := t.indexes[field]; indexed {
			if old, had := row[field]; had {
				idx[old] = dropID(idx[old], id)
			}
			idx[v] = append(idx[v], id)
		}
		row[field] = v
	}
	return nil
}

// Remove deletes the row with the given id.
func (t *Table) Remove(id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid id %d", ErrNoneOrDuplicate, id)
	}
	pos, ok := t.byID[id]
	if !ok {
		return fmt.Errorf("%w: id %d", ErrNoneOrDuplicate, id)
	}
	row := t.rows[pos]
	for field, idx := range t.indexes {
		if v, had := row[field]; had {
			idx[v] = dropID(idx[v], id)
		}
	}
	t.rows = append(t.rows[:pos], t.rows[pos+1:]...)
	delete(t.byID, id)
	for i := pos; i < len(t.rows); i++ {
		t.byID[t.rows[i]["id"].(int64)] = i
	}
	return nil
}

// Find collects matching rows in insertion order. Exact mode matches on
// type and value; inexact mode, available only for string keys, matches
// rows whose stringified field value contains the key case-insensitively.
// An empty field searches "id". Returned records are copies.
func (t *Table) Find(value any, field string, inexact bool) ([]Record, error) {
	key, ok := normalizeValue(value)
	if !ok {
		return nil, fmt.Errorf("%w: non-scalar key", ErrInvalidSearch)
	}
	if s, isStr := key.(string); isStr && s == "" {
		return nil, fmt.Errorf("%w: empty key", ErrInvalidSearch)
	}
	if field == "" {
		field = "id"
	}
	sub, isStr := key.(string)
	if !isStr {
		inexact = false
	}

	if !inexact {
		if idx, indexed := t.indexes[field]; indexed {
			found := make([]Record, 0, len(idx[key]))
			for _, id := range idx[key] {
				found = append(found, cloneRecord(t.rows[t.byID[id]]))
			}
			return found, nil
		}
		if field == "id" {
			if id, isInt := key.(int64); isInt {
				if pos, have := t.byID[id]; have {
					return []Record{cloneRecord(t.rows[pos])}, nil
				}
				return nil, nil
			}
		}
	}

	var found []Record
	for _, row := range t.rows {
		v, has := row[field]
		if !has {
			continue
		}
		if inexact {
			if strings.Contains(strings.ToLower(fmt.Sprint(v)), strings.ToLower(sub)) {
				found = append(found, cloneRecord(row))
			}
		} else if v == key {
			found = append(found, cloneRecord(row))
		}
	}
	return found, nil
}

// Current returns the single row matching value on field, or
// ErrNoneOrDuplicate when zero or several rows match.
func (t *Table) Current(value any, field string) (Record, error) {
	rows, err := t.Find(value, field, false)
	if err != nil {
		return nil, err
	}
	if len(rows) != 1 {
		return nil, fmt.Errorf("%w: %d rows", ErrNoneOrDuplicate, len(rows))
	}
	return rows[0], nil
}

// Exists reports whether any row matches value on field (default "uname").
// It fails closed: a search error reports true, biasing duplicate-creation
// checks toward rejection rather than risking a collision.
func (t *Table) Exists(value any, field string) bool {
	if field == "" {
		field = "uname"
	}
	rows, err := t.Find(value, field, false)
	if err != nil {
		log.WithError(err).WithField("table", t.name).Warn("exists search failed, reporting true")
		return true
	}
	return len(rows) > 0
}

// All returns a copy of every row in insertion order.
func (t *Table) All() []Record {
	out := make([]Record, len(t.rows))
	for i, row := range t.rows {
		out[i] = cloneRecord(row)
	}
	return out
}

// Len reports the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// checkRow validates and copies a row or patch: at least one field, every
// value a scalar, ints and float32 widened.
func checkRow(row Record) (Record, error) {
	if len(row) == 0 {
		return nil, ErrInvalidRow
	}
	clean := make(Record, len(row))
	for field, v := range row {
		n, ok := normalizeValue(v)
		if !ok {
			return nil, fmt.Errorf("%w: invalid type of field %s", ErrInvalidRow, field)
		}
		clean[field] = n
	}
	return clean, nil
}

func normalizeValue(v any) (any, bool) {
	switch x := v.(type) {
	case string, bool, int64, float64:
		return x, true
	case int:
		return int64(x), true
	case int32:
		return int64(x), true
	case uint32:
		return int64(x), true
	case float32:
		return float64(x), true
	default:
		return nil, false
	}
}

func cloneRecord(row Record) Record {
	out := make(Record, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out
}

func dropID(ids []int64, id int64) []int64 {
	for i, x := range ids {
		if x == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
