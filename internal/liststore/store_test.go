package liststore

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuscatalyst/portal/internal/fallback"
	"github.com/campuscatalyst/portal/pkg/schema"
	"github.com/campuscatalyst/portal/pkg/sdk"
)

// fakeRemote is a scriptable remote collection. A non-nil hold channel makes
// every write block until it is closed.
type fakeRemote[T schema.Record[T]] struct {
	mu      sync.Mutex
	items   []T
	listErr error
	err     error
	hold    chan struct{}
	nextID  int
	idFor   func(n int) string
	calls   []string
}

// gatedUpdates answers the n-th Update with whatever is sent on gates[n].
type gatedUpdates struct {
	fakeRemote[schema.Applicant]
	gmu   sync.Mutex
	n     int
	gates []chan error
}

func (g *gatedUpdates) Update(ctx context.Context, id string, rec schema.Applicant) (schema.Applicant, error) {
	g.gmu.Lock()
	ch := g.gates[g.n]
	g.n++
	g.gmu.Unlock()
	if err := <-ch; err != nil {
		return schema.Applicant{}, err
	}
	return rec, nil
}

func (g *gatedUpdates) started() int {
	g.gmu.Lock()
	defer g.gmu.Unlock()
	return g.n
}

func (f *fakeRemote[T]) wait(ctx context.Context) error {
	if f.hold == nil {
		return nil
	}
	select {
	case <-f.hold:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// record logs the call and returns the error scripted for it.
func (f *fakeRemote[T]) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	return f.err
}

func (f *fakeRemote[T]) List(ctx context.Context) ([]T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "list")
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]T{}, f.items...), nil
}

func (f *fakeRemote[T]) Create(ctx context.Context, rec T) (T, error) {
	var zero T
	err := f.record("create")
	if werr := f.wait(ctx); werr != nil {
		return zero, werr
	}
	if err != nil {
		return zero, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	saved := rec.WithKey(f.idFor(f.nextID))
	f.items = append(f.items, saved)
	return saved, nil
}

func (f *fakeRemote[T]) Update(ctx context.Context, id string, rec T) (T, error) {
	var zero T
	err := f.record("update " + id)
	if werr := f.wait(ctx); werr != nil {
		return zero, werr
	}
	if err != nil {
		return zero, err
	}
	return rec, nil
}

func (f *fakeRemote[T]) Remove(ctx context.Context, id string) error {
	err := f.record("remove " + id)
	if werr := f.wait(ctx); werr != nil {
		return werr
	}
	return err
}

func (f *fakeRemote[T]) setErr(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

type noticeLog struct {
	mu      sync.Mutex
	notices []Notice
}

func (n *noticeLog) Notify(x Notice) {
	n.mu.Lock()
	n.notices = append(n.notices, x)
	n.mu.Unlock()
}

func (n *noticeLog) all() []Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Notice{}, n.notices...)
}

func applicants() []schema.Applicant {
	return []schema.Applicant{
		{ID: "41", Name: "Asha Verma", JobTitle: "Data Analyst", Status: schema.ApplicationPending},
		{ID: "42", Name: "Rahul Nair", JobTitle: "Backend Engineer", Status: schema.ApplicationUnderReview},
		{ID: "43", Name: "Meera Iyer", JobTitle: "Backend Engineer", Status: schema.ApplicationInterview},
	}
}

func newApplicantStore(t *testing.T) (*Store[schema.Applicant], *fakeRemote[schema.Applicant], *noticeLog) {
	t.Helper()
	remote := &fakeRemote[schema.Applicant]{
		items: applicants(),
		idFor: func(n int) string { return "srv-" + string(rune('0'+n)) },
	}
	notes := &noticeLog{}
	s := New[schema.Applicant](remote, fallback.Applicants, notes, "applicant")
	t.Cleanup(s.Close)
	require.NoError(t, s.Load(context.Background()))
	return s, remote, notes
}

func keys[T schema.Record[T]](items []T) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Key()
	}
	return out
}

func networkErr() error {
	return &sdk.NetworkError{Op: "DELETE /recruiter/applicants/42", Err: errors.New("connection refused")}
}

func TestLoadSuccess(t *testing.T) {
	s, _, notes := newApplicantStore(t)

	st := s.Snapshot()
	assert.False(t, st.Loading)
	assert.Empty(t, st.Err)
	assert.Equal(t, []string{"41", "42", "43"}, keys(st.Items))
	assert.Empty(t, notes.all())
}

func TestLoadFallsBackOnNetworkError(t *testing.T) {
	remote := &fakeRemote[schema.Drive]{listErr: networkErr()}
	notes := &noticeLog{}
	s := New[schema.Drive](remote, fallback.Drives, notes, "drive")
	defer s.Close()

	err := s.Load(context.Background())
	require.Error(t, err)
	assert.True(t, sdk.IsNetwork(err))

	st := s.Snapshot()
	assert.False(t, st.Loading)
	assert.Equal(t, "Network Error", st.Err)
	assert.Equal(t, keys(fallback.Drives()), keys(st.Items))
	assert.NotEmpty(t, st.Items)

	got := notes.all()
	require.Len(t, got, 1)
	assert.Equal(t, Info, got[0].Level)
	assert.Equal(t, "Data Fallback", got[0].Title)
}

func TestLoadFallsBackOnStatusError(t *testing.T) {
	remote := &fakeRemote[schema.Job]{listErr: &sdk.StatusError{Op: "GET /student/jobs", Code: http.StatusInternalServerError, Message: "db down"}}
	s := New[schema.Job](remote, fallback.Jobs, nil, "job")
	defer s.Close()

	require.Error(t, s.Load(context.Background()))
	st := s.Snapshot()
	assert.Equal(t, "db down", st.Err)
	assert.Len(t, st.Items, len(fallback.Jobs()))
}

func TestLoadWithoutFallbackYieldsEmptyList(t *testing.T) {
	remote := &fakeRemote[schema.Job]{listErr: networkErr()}
	s := New[schema.Job](remote, nil, nil, "job")
	defer s.Close()

	require.Error(t, s.Load(context.Background()))
	assert.NotNil(t, s.Snapshot().Items)
	assert.Empty(t, s.Snapshot().Items)
}

// A recruiter deletes applicant 42 while offline: the row disappears, the
// request fails, and the row comes back in place with an error notice.
func TestDeleteRollsBackWhileOffline(t *testing.T) {
	s, remote, notes := newApplicantStore(t)
	before := s.Items()

	remote.setErr(networkErr())
	err := s.Delete(context.Background(), "42")
	require.Error(t, err)

	assert.Equal(t, before, s.Items())
	got := notes.all()
	require.Len(t, got, 1)
	assert.Equal(t, Error, got[0].Level)
	assert.Equal(t, "Failed to delete applicant: Network Error", got[0].Message)
}

func TestDeleteCommit(t *testing.T) {
	s, remote, notes := newApplicantStore(t)

	require.NoError(t, s.Delete(context.Background(), "42"))
	assert.Equal(t, []string{"41", "43"}, keys(s.Items()))
	assert.Contains(t, remote.calls, "remove 42")
	assert.Empty(t, notes.all())
}

func TestDeleteUnknownID(t *testing.T) {
	s, remote, _ := newApplicantStore(t)

	assert.ErrorIs(t, s.Delete(context.Background(), "nope"), ErrNotFound)
	assert.NotContains(t, remote.calls, "remove nope")
}

func TestOptimisticDeleteIsVisibleBeforeServerAnswers(t *testing.T) {
	s, remote, _ := newApplicantStore(t)
	remote.hold = make(chan struct{})

	done := make(chan error, 1)
	go func() { done <- s.Delete(context.Background(), "42") }()

	require.Eventually(t, func() bool {
		_, ok := s.Get("42")
		return !ok
	}, time.Second, 5*time.Millisecond)

	close(remote.hold)
	require.NoError(t, <-done)
	assert.Equal(t, []string{"41", "43"}, keys(s.Items()))
}

func TestCreateReplacesPlaceholder(t *testing.T) {
	remote := &fakeRemote[schema.Drive]{
		items: fallback.Drives(),
		hold:  make(chan struct{}),
		idFor: func(n int) string { return "drive-99" },
	}
	s := New[schema.Drive](remote, nil, nil, "drive")
	defer s.Close()
	require.NoError(t, s.Load(context.Background()))

	type result struct {
		rec schema.Drive
		err error
	}
	done := make(chan result, 1)
	go func() {
		rec, err := s.Create(context.Background(), schema.Drive{Name: "Winter Drive", Company: "Acme"})
		done <- result{rec, err}
	}()

	require.Eventually(t, func() bool {
		items := s.Items()
		return len(items) == 3 && schema.IsTempID(items[2].ID)
	}, time.Second, 5*time.Millisecond)

	close(remote.hold)
	res := <-done
	require.NoError(t, res.err)
	assert.Equal(t, "drive-99", res.rec.ID)

	items := s.Items()
	require.Len(t, items, 3)
	assert.Equal(t, "drive-99", items[2].ID)
	assert.Equal(t, "Winter Drive", items[2].Name)
	for _, it := range items {
		assert.False(t, schema.IsTempID(it.ID))
	}
}

func TestCreateFailureRemovesPlaceholder(t *testing.T) {
	s, remote, notes := newApplicantStore(t)
	before := s.Items()

	remote.setErr(&sdk.StatusError{Op: "POST /recruiter/applicants", Code: http.StatusBadRequest, Message: "name required"})
	_, err := s.Create(context.Background(), schema.Applicant{JobTitle: "QA"})
	require.Error(t, err)

	assert.Equal(t, before, s.Items())
	got := notes.all()
	require.Len(t, got, 1)
	assert.Equal(t, "Failed to create applicant: name required", got[0].Message)
}

func TestCreateDropsPlaceholderWhenServerRecordAlreadyListed(t *testing.T) {
	s, remote, _ := newApplicantStore(t)
	remote.idFor = func(int) string { return "43" }

	rec, err := s.Create(context.Background(), schema.Applicant{Name: "Dup"})
	require.NoError(t, err)
	assert.Equal(t, "43", rec.ID)
	assert.Equal(t, []string{"41", "42", "43"}, keys(s.Items()))
}

func TestUpdateStatusCommit(t *testing.T) {
	s, _, _ := newApplicantStore(t)

	rec, err := s.Update(context.Background(), "41", func(a schema.Applicant) schema.Applicant {
		a.Status = schema.ApplicationSelected
		return a
	})
	require.NoError(t, err)
	assert.Equal(t, schema.ApplicationSelected, rec.Status)

	got, ok := s.Get("41")
	require.True(t, ok)
	assert.Equal(t, schema.ApplicationSelected, got.Status)
}

func TestUpdateFailureRestoresPreviousRecord(t *testing.T) {
	s, remote, notes := newApplicantStore(t)
	before := s.Items()

	remote.setErr(&sdk.StatusError{Op: "PUT /recruiter/applicants/42", Code: http.StatusForbidden})
	_, err := s.Update(context.Background(), "42", func(a schema.Applicant) schema.Applicant {
		a.Status = schema.ApplicationRejected
		return a
	})
	require.Error(t, err)
	assert.Equal(t, 403, sdk.StatusCode(err))
	assert.Equal(t, before, s.Items())
	require.Len(t, notes.all(), 1)
	assert.True(t, strings.HasPrefix(notes.all()[0].Message, "Failed to update applicant"))
}

func TestUpdateCannotChangeID(t *testing.T) {
	s, _, _ := newApplicantStore(t)

	_, err := s.Update(context.Background(), "41", func(a schema.Applicant) schema.Applicant {
		a.ID = "hijack"
		return a
	})
	require.NoError(t, err)
	_, ok := s.Get("41")
	assert.True(t, ok)
}

func TestMutationsOnPlaceholderAreRejected(t *testing.T) {
	s, _, _ := newApplicantStore(t)
	tmp := schema.NewTempID()

	_, err := s.Update(context.Background(), tmp, func(a schema.Applicant) schema.Applicant { return a })
	assert.ErrorIs(t, err, ErrUncommitted)
	assert.ErrorIs(t, s.Delete(context.Background(), tmp), ErrUncommitted)
}

// A failed older edit must not undo a newer edit of the same record.
func TestStaleFailureDoesNotRollBackNewerEdit(t *testing.T) {
	remote := &gatedUpdates{gates: []chan error{make(chan error), make(chan error)}}
	remote.items = applicants()
	s := New[schema.Applicant](remote, nil, nil, "applicant")
	defer s.Close()
	require.NoError(t, s.Load(context.Background()))

	setStatus := func(status string) func(schema.Applicant) schema.Applicant {
		return func(a schema.Applicant) schema.Applicant {
			a.Status = status
			return a
		}
	}

	first := make(chan error, 1)
	go func() {
		_, err := s.Update(context.Background(), "42", setStatus(schema.ApplicationInterview))
		first <- err
	}()
	require.Eventually(t, func() bool { return remote.started() == 1 }, time.Second, 5*time.Millisecond)

	second := make(chan error, 1)
	go func() {
		_, err := s.Update(context.Background(), "42", setStatus(schema.ApplicationSelected))
		second <- err
	}()
	require.Eventually(t, func() bool { return remote.started() == 2 }, time.Second, 5*time.Millisecond)

	got, _ := s.Get("42")
	assert.Equal(t, schema.ApplicationSelected, got.Status)

	remote.gates[0] <- networkErr()
	require.Error(t, <-first)
	got, _ = s.Get("42")
	assert.Equal(t, schema.ApplicationSelected, got.Status)

	remote.gates[1] <- nil
	require.NoError(t, <-second)
	got, _ = s.Get("42")
	assert.Equal(t, schema.ApplicationSelected, got.Status)
}

// gatedWrites answers Update and Remove with whatever is sent on their gate.
type gatedWrites struct {
	fakeRemote[schema.Applicant]
	update  chan error
	remove  chan error
	updates sync.WaitGroup
	removes sync.WaitGroup
}

func (g *gatedWrites) Update(ctx context.Context, id string, rec schema.Applicant) (schema.Applicant, error) {
	g.updates.Done()
	if err := <-g.update; err != nil {
		return schema.Applicant{}, err
	}
	return rec, nil
}

func (g *gatedWrites) Remove(ctx context.Context, id string) error {
	g.removes.Done()
	return <-g.remove
}

func TestOverlappingFailuresRestoreConfirmedRecord(t *testing.T) {
	remote := &gatedWrites{update: make(chan error), remove: make(chan error)}
	remote.items = applicants()
	s := New[schema.Applicant](remote, nil, nil, "applicant")
	defer s.Close()
	require.NoError(t, s.Load(context.Background()))

	remote.updates.Add(1)
	updated := make(chan error, 1)
	go func() {
		_, err := s.Update(context.Background(), "42", func(a schema.Applicant) schema.Applicant {
			a.Status = schema.ApplicationSelected
			return a
		})
		updated <- err
	}()
	remote.updates.Wait()

	remote.removes.Add(1)
	removed := make(chan error, 1)
	go func() { removed <- s.Delete(context.Background(), "42") }()
	remote.removes.Wait()

	_, present := s.Get("42")
	assert.False(t, present)

	remote.update <- networkErr()
	require.Error(t, <-updated)
	remote.remove <- networkErr()
	require.Error(t, <-removed)

	got, present := s.Get("42")
	require.True(t, present)
	assert.Equal(t, schema.ApplicationUnderReview, got.Status)
	assert.Equal(t, []string{"41", "42", "43"}, keys(s.Items()))
}

func TestOverlappingUpdateCommitSurvivesFailedDelete(t *testing.T) {
	remote := &gatedWrites{update: make(chan error), remove: make(chan error)}
	remote.items = applicants()
	s := New[schema.Applicant](remote, nil, nil, "applicant")
	defer s.Close()
	require.NoError(t, s.Load(context.Background()))

	remote.updates.Add(1)
	updated := make(chan error, 1)
	go func() {
		_, err := s.Update(context.Background(), "42", func(a schema.Applicant) schema.Applicant {
			a.Status = schema.ApplicationSelected
			return a
		})
		updated <- err
	}()
	remote.updates.Wait()

	remote.removes.Add(1)
	removed := make(chan error, 1)
	go func() { removed <- s.Delete(context.Background(), "42") }()
	remote.removes.Wait()

	remote.update <- nil
	require.NoError(t, <-updated)
	remote.remove <- networkErr()
	require.Error(t, <-removed)

	got, present := s.Get("42")
	require.True(t, present)
	assert.Equal(t, schema.ApplicationSelected, got.Status)
}

func TestIndependentMutationsDoNotWaitForEachOther(t *testing.T) {
	s, remote, _ := newApplicantStore(t)
	remote.hold = make(chan struct{})

	var wg sync.WaitGroup
	for _, id := range []string{"41", "42", "43"} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_ = s.Delete(context.Background(), id)
		}(id)
	}

	require.Eventually(t, func() bool { return len(s.Items()) == 0 }, time.Second, 5*time.Millisecond)
	close(remote.hold)
	wg.Wait()
	assert.Empty(t, s.Items())
}

func TestCloseCancelsInFlightAndDropsResult(t *testing.T) {
	s, remote, notes := newApplicantStore(t)
	remote.hold = make(chan struct{})

	var renders int
	var mu sync.Mutex
	s.Subscribe(func(State[schema.Applicant]) {
		mu.Lock()
		renders++
		mu.Unlock()
	})

	done := make(chan error, 1)
	go func() { done <- s.Delete(context.Background(), "42") }()
	require.Eventually(t, func() bool {
		_, ok := s.Get("42")
		return !ok
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	seen := renders
	mu.Unlock()

	s.Close()
	assert.ErrorIs(t, <-done, ErrClosed)

	mu.Lock()
	assert.Equal(t, seen, renders)
	mu.Unlock()
	assert.Empty(t, notes.all())

	assert.ErrorIs(t, s.Load(context.Background()), ErrClosed)
	_, err := s.Create(context.Background(), schema.Applicant{})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestVisibleFiltersCaseInsensitively(t *testing.T) {
	s, _, _ := newApplicantStore(t)

	s.SetQuery("  BACKEND ")
	assert.Equal(t, []string{"42", "43"}, keys(s.Visible()))

	s.SetQuery("asha")
	assert.Equal(t, []string{"41"}, keys(s.Visible()))

	s.SetQuery("")
	assert.Len(t, s.Visible(), 3)
	assert.Len(t, s.Items(), 3)
}

func TestSubscribeReceivesSnapshots(t *testing.T) {
	s, _, _ := newApplicantStore(t)

	var last State[schema.Applicant]
	unsubscribe := s.Subscribe(func(st State[schema.Applicant]) { last = st })

	s.SetQuery("meera")
	assert.Equal(t, "meera", last.Query)
	assert.Len(t, last.Items, 3)

	// snapshots are copies
	last.Items[0].Name = "changed"
	got, _ := s.Get("41")
	assert.Equal(t, "Asha Verma", got.Name)

	unsubscribe()
	s.SetQuery("other")
	assert.Equal(t, "meera", last.Query)
}
