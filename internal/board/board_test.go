package board

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/brightpath/opsconsole/backend/internal/workflow"
)

// fakeStore answers ChangeStatus from a script so tests can control
// which moves the server accepts and in what order responses land.
type fakeStore struct {
	mu       sync.Mutex
	projects []Project
	fail     map[uint]error
	delay    map[uint]chan struct{} // block the response until released
	calls    []uint
}

func newFakeStore(projects ...Project) *fakeStore {
	return &fakeStore{
		projects: projects,
		fail:     make(map[uint]error),
		delay:    make(map[uint]chan struct{}),
	}
}

func (f *fakeStore) ListProjects(ctx context.Context) ([]Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Project, len(f.projects))
	copy(out, f.projects)
	return out, nil
}

func (f *fakeStore) ChangeStatus(ctx context.Context, projectID uint, status workflow.Status) (*Project, error) {
	f.mu.Lock()
	f.calls = append(f.calls, projectID)
	gate := f.delay[projectID]
	fail := f.fail[projectID]
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if fail != nil {
		return nil, fail
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.projects {
		if f.projects[i].ID == projectID {
			f.projects[i].Status = status
			p := f.projects[i]
			return &p, nil
		}
	}
	return nil, errors.New("project not found")
}

// waitCalls blocks until the store has seen at least n ChangeStatus
// calls, so tests can order in-flight requests deterministically.
func waitCalls(t *testing.T, store *fakeStore, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		store.mu.Lock()
		got := len(store.calls)
		store.mu.Unlock()
		if got >= n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("store never saw %d calls", n)
}

func settle(t *testing.T, done chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("move did not settle")
		return nil
	}
}

func TestBoard_Refresh(t *testing.T) {
	store := newFakeStore(
		Project{ID: 1, Purpose: "Landing page", Status: workflow.JustStarted},
		Project{ID: 2, Purpose: "Brand refresh", Status: workflow.FiftyPercent},
	)
	b := New(store)

	if err := b.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if len(b.Projects()) != 2 {
		t.Fatalf("got %d projects, expected 2", len(b.Projects()))
	}
	if p, _ := b.Project(2); p.Status != workflow.FiftyPercent {
		t.Errorf("project 2 status = %s, expected FIFTY_PERCENT", p.Status)
	}
}

func TestBoard_Drop_NoOp(t *testing.T) {
	store := newFakeStore(Project{ID: 1, Status: workflow.JustStarted})
	b := New(store)
	if err := b.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	if b.Drop(context.Background(), 1, workflow.JustStarted, nil) {
		t.Error("dropping onto the current column should be rejected locally")
	}

	time.Sleep(50 * time.Millisecond)
	store.mu.Lock()
	calls := len(store.calls)
	store.mu.Unlock()
	if calls != 0 {
		t.Errorf("no-op drop made %d server calls, expected 0", calls)
	}
}

func TestBoard_Drop_SpeculativeThenConfirmed(t *testing.T) {
	store := newFakeStore(Project{ID: 1, Status: workflow.JustStarted})
	b := New(store)
	if err := b.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	gate := make(chan struct{})
	store.delay[1] = gate

	done := make(chan error, 1)
	if !b.Drop(context.Background(), 1, workflow.FiftyPercent, func(err error) { done <- err }) {
		t.Fatal("Drop should be accepted")
	}

	// Status flips before the server answers
	if p, _ := b.Project(1); p.Status != workflow.FiftyPercent {
		t.Errorf("speculative status = %s, expected FIFTY_PERCENT", p.Status)
	}
	if !b.Pending(1) {
		t.Error("move should be pending while in flight")
	}

	close(gate)
	if err := settle(t, done); err != nil {
		t.Fatalf("move settled with error: %v", err)
	}
	if p, _ := b.Project(1); p.Status != workflow.FiftyPercent {
		t.Errorf("confirmed status = %s, expected FIFTY_PERCENT", p.Status)
	}
	if b.Pending(1) {
		t.Error("move should no longer be pending")
	}
}

func TestBoard_Drop_RollbackRestoresOriginal(t *testing.T) {
	store := newFakeStore(Project{ID: 1, Status: workflow.ThirtyPercent})
	b := New(store)
	if err := b.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	store.fail[1] = errors.New("operator may not move projects")

	done := make(chan error, 1)
	b.Drop(context.Background(), 1, workflow.Completed, func(err error) { done <- err })

	if err := settle(t, done); err == nil {
		t.Fatal("expected the move to be rejected")
	}
	if p, _ := b.Project(1); p.Status != workflow.ThirtyPercent {
		t.Errorf("status after rollback = %s, expected the original THIRTY_PERCENT", p.Status)
	}
	if b.Pending(1) {
		t.Error("rolled-back move should not stay pending")
	}
}

func TestBoard_Drop_StaleResponseDiscarded(t *testing.T) {
	store := newFakeStore(Project{ID: 1, Status: workflow.JustStarted})
	b := New(store)
	if err := b.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	// First drop's response is held back
	gate := make(chan struct{})
	store.delay[1] = gate

	firstDone := make(chan error, 1)
	b.Drop(context.Background(), 1, workflow.FiftyPercent, func(err error) { firstDone <- err })
	waitCalls(t, store, 1)

	// Second drop supersedes it while the first is still in flight
	store.mu.Lock()
	delete(store.delay, 1)
	store.mu.Unlock()

	secondDone := make(chan error, 1)
	b.Drop(context.Background(), 1, workflow.SeventyPercent, func(err error) { secondDone <- err })

	if err := settle(t, secondDone); err != nil {
		t.Fatalf("second move: %v", err)
	}
	if p, _ := b.Project(1); p.Status != workflow.SeventyPercent {
		t.Errorf("status = %s, expected the later drop's SEVENTY_PERCENT", p.Status)
	}

	// Now release the first response; it must not disturb the board
	close(gate)
	select {
	case err := <-firstDone:
		t.Fatalf("stale response should be discarded, got callback with %v", err)
	case <-time.After(100 * time.Millisecond):
	}
	if p, _ := b.Project(1); p.Status != workflow.SeventyPercent {
		t.Errorf("status after stale response = %s, expected SEVENTY_PERCENT", p.Status)
	}
}

func TestBoard_Redrag_RollsBackToConfirmedState(t *testing.T) {
	store := newFakeStore(Project{ID: 1, Status: workflow.JustStarted})
	b := New(store)
	if err := b.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	// Both requests will fail; the first is held until the second lands
	gate := make(chan struct{})
	store.delay[1] = gate
	store.fail[1] = errors.New("rejected")

	b.Drop(context.Background(), 1, workflow.FiftyPercent, nil)
	waitCalls(t, store, 1)

	store.mu.Lock()
	delete(store.delay, 1)
	store.mu.Unlock()

	done := make(chan error, 1)
	b.Drop(context.Background(), 1, workflow.SeventyPercent, func(err error) { done <- err })

	if err := settle(t, done); err == nil {
		t.Fatal("expected rejection")
	}
	close(gate)

	// Rollback lands on the state the server last confirmed, not on the
	// intermediate speculative FIFTY_PERCENT
	if p, _ := b.Project(1); p.Status != workflow.JustStarted {
		t.Errorf("status after rollback = %s, expected JUST_STARTED", p.Status)
	}
}

func TestBoard_Refresh_KeepsSpeculativeForPending(t *testing.T) {
	store := newFakeStore(Project{ID: 1, Status: workflow.JustStarted})
	b := New(store)
	if err := b.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	gate := make(chan struct{})
	store.delay[1] = gate

	done := make(chan error, 1)
	b.Drop(context.Background(), 1, workflow.FiftyPercent, func(err error) { done <- err })

	// A background refresh while the move is in flight must not yank
	// the card back to the server's stale status
	if err := b.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if p, _ := b.Project(1); p.Status != workflow.FiftyPercent {
		t.Errorf("status after refresh = %s, expected speculative FIFTY_PERCENT", p.Status)
	}

	close(gate)
	if err := settle(t, done); err != nil {
		t.Fatalf("move settled with error: %v", err)
	}
}

func TestBoard_Column(t *testing.T) {
	store := newFakeStore(
		Project{ID: 1, Status: workflow.JustStarted},
		Project{ID: 2, Status: workflow.JustStarted},
		Project{ID: 3, Status: workflow.Completed},
	)
	b := New(store)
	if err := b.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	if got := len(b.Column(workflow.JustStarted)); got != 2 {
		t.Errorf("JUST_STARTED column size = %d, expected 2", got)
	}
	if got := len(b.Column(workflow.FiftyPercent)); got != 0 {
		t.Errorf("FIFTY_PERCENT column size = %d, expected 0", got)
	}
}
