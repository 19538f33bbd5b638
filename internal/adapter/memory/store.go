// Package memory implements every repository and the transaction manager on
// in-process maps. Transactions are serialized by a store-wide lock and run
// on a copy of the state that is swapped in on commit.
package memory

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/tourops-backend/internal/domain"
)

type busyRow struct {
	GuideID uuid.UUID
	Date    time.Time
}

type state struct {
	applications   map[uuid.UUID]domain.GuideApplication
	guides         map[uuid.UUID]domain.GuideProfile
	changeRequests map[uuid.UUID]domain.ProfileChangeRequest
	packages       map[uuid.UUID]domain.TourPackage
	busy           map[uuid.UUID]busyRow // keyed by package id
	audit          []domain.AuditEntry
	seq            int64
}

func (s state) clone() state {
	return state{
		applications:   maps.Clone(s.applications),
		guides:         maps.Clone(s.guides),
		changeRequests: maps.Clone(s.changeRequests),
		packages:       maps.Clone(s.packages),
		busy:           maps.Clone(s.busy),
		audit:          slices.Clone(s.audit),
		seq:            s.seq,
	}
}

// Store holds all entities. Stored values are never mutated in place: every
// write replaces the map value, so a shallow map copy is a full snapshot.
//
// txMu serializes writers (transactions and single writes outside one);
// mu guards the committed state. Readers outside a transaction only see
// committed state.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex
	data state
}

// New creates an empty store.
func New() *Store {
	return &Store{
		data: state{
			applications:   make(map[uuid.UUID]domain.GuideApplication),
			guides:         make(map[uuid.UUID]domain.GuideProfile),
			changeRequests: make(map[uuid.UUID]domain.ProfileChangeRequest),
			packages:       make(map[uuid.UUID]domain.TourPackage),
			busy:           make(map[uuid.UUID]busyRow),
		},
	}
}

type txCtxKey struct{}

// tx is the working copy of an open transaction.
type tx struct {
	owner *Store
	data  state
}

func (s *Store) txFrom(ctx context.Context) *tx {
	if t, ok := ctx.Value(txCtxKey{}).(*tx); ok && t.owner == s {
		return t
	}
	return nil
}

// RunInTx executes fn against a private copy of the store. The copy replaces
// the committed state only when fn returns nil; on error or panic it is
// dropped. Nested calls with a context produced by this store join the outer
// transaction.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.txFrom(ctx) != nil {
		return fn(ctx)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	t := &tx{owner: s, data: s.data.clone()}
	s.mu.RUnlock()

	if err := fn(context.WithValue(ctx, txCtxKey{}, t)); err != nil {
		return err
	}

	s.mu.Lock()
	s.data = t.data
	s.mu.Unlock()
	return nil
}

// RunReadOnly executes fn against a snapshot of the committed state. The
// snapshot is never swapped back, and it does not block writers.
func (s *Store) RunReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.txFrom(ctx) != nil {
		return fn(ctx)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	s.mu.RLock()
	t := &tx{owner: s, data: s.data.clone()}
	s.mu.RUnlock()

	return fn(context.WithValue(ctx, txCtxKey{}, t))
}

// read returns the state visible to ctx and the function releasing it.
func (s *Store) read(ctx context.Context) (*state, func()) {
	if t := s.txFrom(ctx); t != nil {
		return &t.data, func() {}
	}
	s.mu.RLock()
	return &s.data, s.mu.RUnlock
}

// write returns the state a write through ctx must modify. Outside a
// transaction the write is applied to the committed state while holding
// txMu, so it cannot interleave with a transaction's copy and swap.
func (s *Store) write(ctx context.Context) (*state, func()) {
	if t := s.txFrom(ctx); t != nil {
		return &t.data, func() {}
	}
	s.txMu.Lock()
	s.mu.Lock()
	return &s.data, func() {
		s.mu.Unlock()
		s.txMu.Unlock()
	}
}

// Applications returns the application repository view of the store.
func (s *Store) Applications() *ApplicationRepo { return &ApplicationRepo{s: s} }

// Guides returns the guide profile repository view of the store.
func (s *Store) Guides() *GuideRepo { return &GuideRepo{s: s} }

// ChangeRequests returns the change request repository view of the store.
func (s *Store) ChangeRequests() *ChangeRequestRepo { return &ChangeRequestRepo{s: s} }

// Packages returns the tour package repository view of the store.
func (s *Store) Packages() *PackageRepo { return &PackageRepo{s: s} }

// Audit returns the audit log repository view of the store.
func (s *Store) Audit() *AuditRepo { return &AuditRepo{s: s} }

// Ping always succeeds; it lets the store back the readiness check.
func (s *Store) Ping(context.Context) error { return nil }

func notFound(entity string, id uuid.UUID) error {
	return fmt.Errorf("%s %s: %w", entity, id, domain.ErrNotFound)
}

func paginate[T any](items []T, page domain.Page) []T {
	page = page.Clamp()
	if page.Offset >= len(items) {
		return []T{}
	}
	end := min(page.Offset+page.Limit, len(items))
	return slices.Clone(items[page.Offset:end])
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return slices.Clone(values)
}
