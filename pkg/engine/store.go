// Package engine is the storage engine of the portal API daemon: ordered
// collections of JSON records, partitioned into scopes and persisted in the background.
package engine

import "errors"

var (
	// ErrScopeNotFound is returned when a requested scope does not exist.
	ErrScopeNotFound = errors.New("scope not found")
	// ErrRecordNotFound is returned when no record in a collection has the requested id.
	ErrRecordNotFound = errors.New("record not found")
	// ErrDuplicateID is returned when inserting a record whose id is already taken.
	ErrDuplicateID = errors.New("duplicate record id")
)

// SharedScope holds the data every account sees (jobs, drives, accounts).
// Per-account data lives in a scope named after the account id.
const SharedScope = "_shared"

// IDField is the record field carrying the identifier.
const IDField = "id"

// Record is one JSON object of a collection.
type Record = map[string]any

// --- Functional Interfaces (Interface Segregation) ---

// RecordReader reads records.
type RecordReader interface {
	List(scope, collection string) ([]Record, error)
	Get(scope, collection, id string) (Record, error)
}

// RecordWriter creates, changes and removes records.
type RecordWriter interface {
	Insert(scope, collection string, rec Record) (Record, error)
	Put(scope, collection string, rec Record) (Record, error)
	Replace(scope, collection, id string, rec Record) (Record, error)
	Patch(scope, collection, id string, fields Record) (Record, error)
	Increment(scope, collection, id, field string, delta int) (Record, error)
	Delete(scope, collection, id string) error
}

// ScopeEnumeration discovers scopes and their collections.
type ScopeEnumeration interface {
	Scopes() ([]string, error)
	Collections(scope string) ([]string, error)
}

// GlobalSearcher finds a record by field value across all scopes.
type GlobalSearcher interface {
	Find(collection, field string, value any) (Record, string, error)
}

// Store is the complete storage contract used by the API.
type Store interface {
	RecordReader
	RecordWriter
	ScopeEnumeration
	GlobalSearcher
}

// Persister saves and restores whole scopes.
type Persister interface {
	SaveScope(scope string, data map[string][]Record) error
	LoadAll() (map[string]map[string][]Record, error)
}

// RecordID returns the identifier of rec, or "" when it has none.
func RecordID(rec Record) string {
	id, _ := rec[IDField].(string)
	return id
}
