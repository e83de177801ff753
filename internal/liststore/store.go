// Package liststore keeps one view's copy of a remote collection. Mutations are
// applied locally first and confirmed or undone when the server answers.
package liststore

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/campuscatalyst/portal/pkg/schema"
	"github.com/campuscatalyst/portal/pkg/sdk"
)

var (
	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("list store closed")
	// ErrNotFound is returned when a mutation targets an id the list does not hold.
	ErrNotFound = errors.New("record not found")
	// ErrUncommitted is returned when a mutation targets a record whose creation
	// the server has not confirmed yet.
	ErrUncommitted = errors.New("record not yet saved")
)

// State is the snapshot a view renders.
type State[T any] struct {
	Items   []T
	Query   string
	Loading bool
	// Err is set after a load fell back to example data.
	Err string
}

// Store is the optimistic list of one view. It is safe for concurrent use;
// mutations run independently and are never queued behind each other.
type Store[T schema.Record[T]] struct {
	remote   sdk.Remote[T]
	fallback func() []T
	notifier Notifier
	label    string

	ctx    context.Context
	cancel context.CancelFunc

	mu    sync.Mutex
	state State[T]
	gen   map[string]uint64
	// base holds the last record the server confirmed per id; baseGen is the
	// generation of the mutation that confirmed it.
	base    map[string]T
	baseGen map[string]uint64
	pending map[string]int
	subs    map[int]func(State[T])
	nextID int
	closed bool
}

// New creates the store of a freshly mounted view. label names one record in
// notices ("drive", "applicant"). fallback and notifier may be nil.
func New[T schema.Record[T]](remote sdk.Remote[T], fallback func() []T, notifier Notifier, label string) *Store[T] {
	ctx, cancel := context.WithCancel(context.Background())
	return &Store[T]{
		remote:   remote,
		fallback: fallback,
		notifier: notifier,
		label:    label,
		ctx:      ctx,
		cancel:   cancel,
		state:    State[T]{Items: []T{}},
		gen:      make(map[string]uint64),
		base:     make(map[string]T),
		baseGen:  make(map[string]uint64),
		pending:  make(map[string]int),
		subs:     make(map[int]func(State[T])),
	}
}

// Close unmounts the view: in-flight requests are cancelled and their results dropped.
func (s *Store[T]) Close() {
	s.mu.Lock()
	s.closed = true
	s.subs = map[int]func(State[T]){}
	s.mu.Unlock()
	s.cancel()
}

// Subscribe registers fn to be called with a snapshot after every change.
// The returned func unregisters it.
func (s *Store[T]) Subscribe(fn func(State[T])) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Snapshot returns a copy of the current state.
func (s *Store[T]) Snapshot() State[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store[T]) snapshotLocked() State[T] {
	st := s.state
	st.Items = slices.Clone(s.state.Items)
	return st
}

// Items returns a copy of the full list, ignoring the query.
func (s *Store[T]) Items() []T {
	return s.Snapshot().Items
}

// SetQuery changes the search text.
func (s *Store[T]) SetQuery(q string) {
	s.mu.Lock()
	s.state.Query = q
	s.mu.Unlock()
	s.publish()
}

// Visible returns the items whose search text contains the query, ignoring case.
func (s *Store[T]) Visible() []T {
	st := s.Snapshot()
	q := strings.ToLower(strings.TrimSpace(st.Query))
	if q == "" {
		return st.Items
	}
	out := make([]T, 0, len(st.Items))
	for _, it := range st.Items {
		if strings.Contains(strings.ToLower(it.SearchText()), q) {
			out = append(out, it)
		}
	}
	return out
}

// Get returns the item with id.
func (s *Store[T]) Get(id string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		var zero T
		return zero, false
	}
	return s.state.Items[i], true
}

// publish hands a snapshot to every subscriber outside the lock.
func (s *Store[T]) publish() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	st := s.snapshotLocked()
	subs := make([]func(State[T]), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(st)
	}
}

func (s *Store[T]) notify(n Notice) {
	if s.notifier != nil {
		s.notifier.Notify(n)
	}
}

func (s *Store[T]) indexLocked(id string) int {
	return slices.IndexFunc(s.state.Items, func(it T) bool { return it.Key() == id })
}

// requestContext ties a call to both the caller's context and the store's lifetime.
func (s *Store[T]) requestContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	stop := context.AfterFunc(s.ctx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

// Load fetches the collection. When the fetch fails the list is filled with
// example data and an Info notice is raised; the error is returned as well.
func (s *Store[T]) Load(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.state.Loading = true
	s.mu.Unlock()
	s.publish()

	ctx, done := s.requestContext(ctx)
	defer done()
	items, err := s.remote.List(ctx)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.state.Loading = false
	if err != nil {
		var fb []T
		if s.fallback != nil {
			fb = s.fallback()
		}
		s.state.Items = append([]T{}, fb...)
		s.state.Err = sdk.Describe(err)
	} else {
		s.state.Items = append([]T{}, items...)
		s.state.Err = ""
	}
	s.resetBaseLocked()
	s.mu.Unlock()

	if err != nil {
		s.notify(Notice{
			Level:   Info,
			Title:   "Data Fallback",
			Message: fmt.Sprintf("Could not reach the server. Showing example %s data.", s.label),
		})
	}
	s.publish()
	return err
}

// resetBaseLocked takes the freshly loaded items as the confirmed records.
func (s *Store[T]) resetBaseLocked() {
	clear(s.base)
	for _, it := range s.state.Items {
		id := it.Key()
		s.base[id] = it
		s.baseGen[id] = s.gen[id]
	}
}

// commitLocked records what the server confirmed for a mutation of generation g.
// A nil rec means the record is gone. Answers older than the confirmed one are ignored.
func (s *Store[T]) commitLocked(id string, g uint64, rec *T) {
	if g < s.baseGen[id] {
		return
	}
	s.baseGen[id] = g
	if rec == nil {
		delete(s.base, id)
		return
	}
	s.base[id] = *rec
}

// settleLocked marks one mutation of id as answered and reports whether it was
// the last one in flight.
func (s *Store[T]) settleLocked(id string) bool {
	s.pending[id]--
	if s.pending[id] > 0 {
		return false
	}
	delete(s.pending, id)
	return true
}

func (s *Store[T]) fail(op string, err error) {
	s.notify(Notice{
		Level:   Error,
		Title:   "Error",
		Message: fmt.Sprintf("Failed to %s %s: %s", op, s.label, sdk.Describe(err)),
	})
}

// Create appends rec under a placeholder id, then swaps in the server's record.
// On failure the placeholder is removed.
func (s *Store[T]) Create(ctx context.Context, rec T) (T, error) {
	var zero T
	tmp := rec.WithKey(schema.NewTempID())
	tmpID := tmp.Key()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return zero, ErrClosed
	}
	s.state.Items = append(s.state.Items, tmp)
	s.mu.Unlock()
	s.publish()

	ctx, done := s.requestContext(ctx)
	defer done()
	saved, err := s.remote.Create(ctx, rec)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return zero, ErrClosed
	}
	i := s.indexLocked(tmpID)
	switch {
	case err != nil:
		if i >= 0 {
			s.state.Items = slices.Delete(s.state.Items, i, i+1)
		}
	case saved.Key() == "":
		// nothing authoritative to adopt; the placeholder stays
		saved = tmp
	case s.indexLocked(saved.Key()) >= 0:
		if i >= 0 {
			s.state.Items = slices.Delete(s.state.Items, i, i+1)
		}
	case i >= 0:
		s.state.Items[i] = saved
	default:
		s.state.Items = append(s.state.Items, saved)
	}
	if err == nil && !schema.IsTempID(saved.Key()) {
		s.base[saved.Key()] = saved
	}
	s.mu.Unlock()

	if err != nil {
		s.fail("create", err)
		s.publish()
		return zero, err
	}
	s.publish()
	return saved, nil
}

// Update replaces the record at id with edit(record). On success the server's
// record is adopted; on failure the previous record is restored unless a newer
// mutation of the same id has happened since. Once no mutation of id is in
// flight the list shows the last record the server confirmed.
func (s *Store[T]) Update(ctx context.Context, id string, edit func(T) T) (T, error) {
	var zero T
	if schema.IsTempID(id) {
		return zero, ErrUncommitted
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return zero, ErrClosed
	}
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return zero, ErrNotFound
	}
	prev := s.state.Items[i]
	next := edit(prev).WithKey(id)
	s.state.Items[i] = next
	s.gen[id]++
	g := s.gen[id]
	s.pending[id]++
	s.mu.Unlock()
	s.publish()

	ctx, done := s.requestContext(ctx)
	defer done()
	saved, err := s.remote.Update(ctx, id, next)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return zero, ErrClosed
	}
	if err == nil {
		rec := saved
		if rec.Key() == "" {
			rec = next
		}
		s.commitLocked(id, g, &rec)
	}
	j := s.indexLocked(id)
	settled := s.settleLocked(id)
	base, confirmed := s.base[id]
	switch {
	case j < 0:
	case settled && confirmed:
		s.state.Items[j] = base
	case s.gen[id] != g:
	case err != nil:
		s.state.Items[j] = prev
	case saved.Key() != "":
		s.state.Items[j] = saved
	}
	s.mu.Unlock()

	if err != nil {
		s.fail("update", err)
		s.publish()
		return zero, err
	}
	s.publish()
	if saved.Key() == "" {
		return next, nil
	}
	return saved, nil
}

// Delete removes the record at id. On failure the last record the server
// confirmed is put back at its old position.
func (s *Store[T]) Delete(ctx context.Context, id string) error {
	if schema.IsTempID(id) {
		return ErrUncommitted
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return ErrNotFound
	}
	prev := s.state.Items[i]
	s.state.Items = slices.Delete(s.state.Items, i, i+1)
	s.gen[id]++
	g := s.gen[id]
	s.pending[id]++
	s.mu.Unlock()
	s.publish()

	ctx, done := s.requestContext(ctx)
	defer done()
	err := s.remote.Remove(ctx, id)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if err == nil {
		s.commitLocked(id, g, nil)
	}
	j := s.indexLocked(id)
	settled := s.settleLocked(id)
	base, confirmed := s.base[id]
	switch {
	case settled && confirmed && j >= 0:
		s.state.Items[j] = base
	case settled && confirmed:
		s.state.Items = slices.Insert(s.state.Items, min(i, len(s.state.Items)), base)
	case settled && err == nil && j >= 0:
		s.state.Items = slices.Delete(s.state.Items, j, j+1)
	case err != nil && s.gen[id] == g && j < 0:
		s.state.Items = slices.Insert(s.state.Items, min(i, len(s.state.Items)), prev)
	}
	s.mu.Unlock()

	if err != nil {
		s.fail("delete", err)
		s.publish()
		return err
	}
	s.publish()
	return nil
}
