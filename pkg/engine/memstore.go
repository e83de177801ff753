package engine

import (
	"fmt"
	"maps"
	"os"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// MemStore is the thread-safe in-memory engine. Every write hands a copy of the
// touched scope to the persister in the background.
type MemStore struct {
	mu sync.RWMutex
	// Structure: [scope][collection][]record
	data      map[string]map[string][]Record
	persister Persister
	wg        sync.WaitGroup
}

// NewMemStore accepts existing data (from LoadAll) and an optional persister.
func NewMemStore(initialData map[string]map[string][]Record, p Persister) *MemStore {
	if initialData == nil {
		initialData = make(map[string]map[string][]Record)
	}
	return &MemStore{
		data:      initialData,
		persister: p,
	}
}

// Wait waits for all background persistence tasks to complete.
func (m *MemStore) Wait() {
	m.wg.Wait()
}

func cloneRecord(r Record) Record {
	return maps.Clone(r)
}

func indexOf(items []Record, id string) int {
	return slices.IndexFunc(items, func(r Record) bool { return RecordID(r) == id })
}

func (m *MemStore) List(scope, collection string) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	items := m.data[scope][collection]
	out := make([]Record, len(items))
	for i, r := range items {
		out[i] = cloneRecord(r)
	}
	return out, nil
}

func (m *MemStore) Get(scope, collection, id string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	items := m.data[scope][collection]
	i := indexOf(items, id)
	if i < 0 {
		return nil, ErrRecordNotFound
	}
	return cloneRecord(items[i]), nil
}

// Insert appends rec. A missing id is generated; a taken one is rejected.
func (m *MemStore) Insert(scope, collection string, rec Record) (Record, error) {
	rec = cloneRecord(rec)
	if rec == nil {
		rec = Record{}
	}
	if RecordID(rec) == "" {
		rec[IDField] = uuid.NewString()
	}

	m.mu.Lock()
	items := m.collection(scope, collection)
	if indexOf(items, RecordID(rec)) >= 0 {
		m.mu.Unlock()
		return nil, ErrDuplicateID
	}
	m.data[scope][collection] = append(items, rec)
	snapshot := m.copyScopeData(scope)
	m.mu.Unlock()

	m.persist(scope, snapshot)
	return cloneRecord(rec), nil
}

// Put inserts rec or replaces the record with the same id.
func (m *MemStore) Put(scope, collection string, rec Record) (Record, error) {
	id := RecordID(rec)
	if id == "" {
		return m.Insert(scope, collection, rec)
	}
	rec = cloneRecord(rec)

	m.mu.Lock()
	items := m.collection(scope, collection)
	if i := indexOf(items, id); i >= 0 {
		items[i] = rec
	} else {
		m.data[scope][collection] = append(items, rec)
	}
	snapshot := m.copyScopeData(scope)
	m.mu.Unlock()

	m.persist(scope, snapshot)
	return cloneRecord(rec), nil
}

// Replace overwrites the record at id. The id field always stays id.
func (m *MemStore) Replace(scope, collection, id string, rec Record) (Record, error) {
	rec = cloneRecord(rec)
	if rec == nil {
		rec = Record{}
	}
	rec[IDField] = id
	return m.modify(scope, collection, id, func(Record) Record { return rec })
}

// Patch merges fields into the record at id.
func (m *MemStore) Patch(scope, collection, id string, fields Record) (Record, error) {
	return m.modify(scope, collection, id, func(cur Record) Record {
		next := cloneRecord(cur)
		for k, v := range fields {
			if k != IDField {
				next[k] = v
			}
		}
		return next
	})
}

// Increment adds delta to a numeric field of the record at id under one lock,
// so concurrent counters never lose an update. A missing field counts as 0.
func (m *MemStore) Increment(scope, collection, id, field string, delta int) (Record, error) {
	return m.modify(scope, collection, id, func(cur Record) Record {
		next := cloneRecord(cur)
		next[field] = counter(cur[field]) + delta
		return next
	})
}

// counter reads a number that may have come back from JSON as a float.
func counter(v any) int {
	switch v := v.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

func (m *MemStore) modify(scope, collection, id string, fn func(Record) Record) (Record, error) {
	m.mu.Lock()
	items := m.data[scope][collection]
	i := indexOf(items, id)
	if i < 0 {
		m.mu.Unlock()
		return nil, ErrRecordNotFound
	}
	next := fn(items[i])
	items[i] = next
	snapshot := m.copyScopeData(scope)
	m.mu.Unlock()

	m.persist(scope, snapshot)
	return cloneRecord(next), nil
}

func (m *MemStore) Delete(scope, collection, id string) error {
	m.mu.Lock()
	items := m.data[scope][collection]
	i := indexOf(items, id)
	if i < 0 {
		m.mu.Unlock()
		return ErrRecordNotFound
	}
	m.data[scope][collection] = slices.Delete(items, i, i+1)
	snapshot := m.copyScopeData(scope)
	m.mu.Unlock()

	m.persist(scope, snapshot)
	return nil
}

func (m *MemStore) Scopes() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Sorted(maps.Keys(m.data)), nil
}

func (m *MemStore) Collections(scope string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.data[scope]
	if !ok {
		return nil, ErrScopeNotFound
	}
	return slices.Sorted(maps.Keys(s)), nil
}

// Find returns the first record of collection whose field equals value, and its scope.
func (m *MemStore) Find(collection, field string, value any) (Record, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, scope := range slices.Sorted(maps.Keys(m.data)) {
		for _, r := range m.data[scope][collection] {
			if r[field] == value {
				return cloneRecord(r), scope, nil
			}
		}
	}
	return nil, "", ErrRecordNotFound
}

// collection returns the records of scope/collection, creating both if needed.
// It MUST be called while holding m.mu.Lock.
func (m *MemStore) collection(scope, collection string) []Record {
	if m.data[scope] == nil {
		m.data[scope] = make(map[string][]Record)
	}
	return m.data[scope][collection]
}

// copyScopeData creates a deep copy of a scope's data.
// It MUST be called while holding m.mu.Lock or m.mu.RLock.
func (m *MemStore) copyScopeData(scope string) map[string][]Record {
	original, ok := m.data[scope]
	if !ok {
		return nil
	}

	scopeCopy := make(map[string][]Record, len(original))
	for name, items := range original {
		itemsCopy := make([]Record, len(items))
		for i, r := range items {
			itemsCopy[i] = cloneRecord(r)
		}
		scopeCopy[name] = itemsCopy
	}
	return scopeCopy
}

func (m *MemStore) persist(scope string, data map[string][]Record) {
	if m.persister == nil {
		return
	}
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		if err := m.persister.SaveScope(scope, data); err != nil {
			fmt.Fprintf(os.Stderr, "[portal engine] failed to persist scope %s: %v\n", scope, err)
		}
	}()
}
