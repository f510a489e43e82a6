// Package board keeps a local mirror of the project board and applies
// drag-and-drop moves speculatively, reconciling with the server's
// authoritative answer as responses arrive.
package board

import (
	"context"
	"sync"

	"github.com/brightpath/opsconsole/backend/internal/workflow"
	"github.com/brightpath/opsconsole/backend/pkg/logger"
)

// Project is the board's view of a project, a subset of the server model.
type Project struct {
	ID       uint            `json:"id"`
	Purpose  string          `json:"purpose"`
	Status   workflow.Status `json:"status"`
	ClientID *uint           `json:"client_id"`
}

// Store is the authoritative backend the board reconciles against.
type Store interface {
	// ListProjects returns the operator's visible projects.
	ListProjects(ctx context.Context) ([]Project, error)
	// ChangeStatus moves a project and returns its authoritative state.
	ChangeStatus(ctx context.Context, projectID uint, status workflow.Status) (*Project, error)
}

// pendingMove is an in-flight speculative move. original is the status
// captured at drop time, restored verbatim if the server rejects the
// move. seq distinguishes the latest drop from earlier in-flight ones.
type pendingMove struct {
	original workflow.Status
	seq      uint64
}

// Board holds the local project snapshot. Moves apply immediately so
// the card lands in its new column without waiting for the network; the
// server's answer then either confirms the move or rolls it back.
//
// Responses are matched against a per-project sequence number, so when
// the same card is dragged twice in quick succession, only the response
// to the latest drop settles it. Stale responses are discarded.
type Board struct {
	store Store

	mu       sync.Mutex
	projects map[uint]*Project
	pending  map[uint]*pendingMove
	seq      map[uint]uint64
}

func New(store Store) *Board {
	return &Board{
		store:    store,
		projects: make(map[uint]*Project),
		pending:  make(map[uint]*pendingMove),
		seq:      make(map[uint]uint64),
	}
}

// Refresh replaces the snapshot wholesale with the server's current
// state. Projects with a move still in flight keep their speculative
// status so a background refresh cannot yank a card mid-drag.
func (b *Board) Refresh(ctx context.Context) error {
	projects, err := b.store.ListProjects(ctx)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	fresh := make(map[uint]*Project, len(projects))
	for i := range projects {
		p := projects[i]
		if _, inFlight := b.pending[p.ID]; inFlight {
			if current, ok := b.projects[p.ID]; ok {
				p.Status = current.Status
			}
		}
		fresh[p.ID] = &p
	}
	b.projects = fresh
	return nil
}

// Projects returns a copy of the snapshot.
func (b *Board) Projects() []Project {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Project, 0, len(b.projects))
	for _, p := range b.projects {
		out = append(out, *p)
	}
	return out
}

// Project returns a copy of one project from the snapshot.
func (b *Board) Project(id uint) (Project, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	p, ok := b.projects[id]
	if !ok {
		return Project{}, false
	}
	return *p, true
}

// Column returns the projects currently sitting in the given stage.
func (b *Board) Column(status workflow.Status) []Project {
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []Project
	for _, p := range b.projects {
		if p.Status == status {
			out = append(out, *p)
		}
	}
	return out
}

// Drop moves a project card onto a target column. Dropping onto the
// current column is a no-op and never reaches the server. Otherwise the
// status flips immediately and the authoritative request goes out in
// the background; done (if non-nil) is called once the move settles,
// with the server error when it was rolled back.
func (b *Board) Drop(ctx context.Context, projectID uint, target workflow.Status, done func(error)) bool {
	b.mu.Lock()

	p, ok := b.projects[projectID]
	if !ok || p.Status == target {
		b.mu.Unlock()
		return false
	}

	b.seq[projectID]++
	seq := b.seq[projectID]

	// A re-drag while a move is still in flight keeps the originally
	// captured status as the rollback target: the first drop's original
	// is the last state the server confirmed. Rolling back to an
	// intermediate speculative status could park the card in a state
	// the server never held.
	pend, inFlight := b.pending[projectID]
	if !inFlight {
		pend = &pendingMove{original: p.Status}
		b.pending[projectID] = pend
	}
	pend.seq = seq
	p.Status = target

	b.mu.Unlock()

	go b.settle(ctx, projectID, target, seq, done)
	return true
}

func (b *Board) settle(ctx context.Context, projectID uint, target workflow.Status, seq uint64, done func(error)) {
	authoritative, err := b.store.ChangeStatus(ctx, projectID, target)

	b.mu.Lock()
	pend, inFlight := b.pending[projectID]
	if !inFlight || pend.seq != seq {
		// A later drop superseded this one; its response settles the card.
		b.mu.Unlock()
		return
	}
	delete(b.pending, projectID)

	p, ok := b.projects[projectID]
	if ok {
		if err != nil {
			p.Status = pend.original
		} else if authoritative != nil {
			p.Status = authoritative.Status
		}
	}
	b.mu.Unlock()

	if err != nil {
		logger.Warn().
			Uint("project_id", projectID).
			Str("target", string(target)).
			Err(err).
			Msg("board move rejected, rolled back")
	}
	if done != nil {
		done(err)
	}
}

// Pending reports whether the project has a move still in flight.
func (b *Board) Pending(projectID uint) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.pending[projectID]
	return ok
}
