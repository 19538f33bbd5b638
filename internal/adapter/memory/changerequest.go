package memory

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/heartmarshall/tourops-backend/internal/domain"
)

// ChangeRequestRepo stores profile change requests.
type ChangeRequestRepo struct {
	s *Store
}

func cloneRequest(req domain.ProfileChangeRequest) *domain.ProfileChangeRequest {
	req.OldValue = cloneStrings(req.OldValue)
	req.NewValue = cloneStrings(req.NewValue)
	req.EvidenceRef = clonePtr(req.EvidenceRef)
	req.RejectionReason = clonePtr(req.RejectionReason)
	req.DecidedAt = clonePtr(req.DecidedAt)
	req.DecidedBy = clonePtr(req.DecidedBy)
	return &req
}

// Create inserts a new change request. The target profile must exist.
func (r *ChangeRequestRepo) Create(ctx context.Context, req *domain.ProfileChangeRequest) (*domain.ProfileChangeRequest, error) {
	st, done := r.s.write(ctx)
	defer done()

	if _, ok := st.changeRequests[req.ID]; ok {
		return nil, fmt.Errorf("profile_change_request %s: %w", req.ID, domain.ErrAlreadyExists)
	}
	if _, ok := st.guides[req.GuideID]; !ok {
		return nil, notFound("profile_change_request", req.ID)
	}
	stored := cloneRequest(*req)
	st.changeRequests[req.ID] = *stored
	return cloneRequest(*stored), nil
}

// SaveDecision persists the terminal status of a pending request.
func (r *ChangeRequestRepo) SaveDecision(ctx context.Context, req *domain.ProfileChangeRequest) error {
	st, done := r.s.write(ctx)
	defer done()

	cur, ok := st.changeRequests[req.ID]
	if !ok {
		return notFound("profile_change_request", req.ID)
	}
	if cur.Status != domain.DecisionPending {
		return fmt.Errorf("profile_change_request %s: %w", req.ID, domain.ErrInvalidStateTransition)
	}
	if (req.Status == domain.DecisionRejected) != (req.RejectionReason != nil) {
		return fmt.Errorf("profile_change_request %s: %w", req.ID, domain.ErrValidation)
	}
	cur.Status = req.Status
	cur.RejectionReason = clonePtr(req.RejectionReason)
	cur.DecidedAt = clonePtr(req.DecidedAt)
	cur.DecidedBy = clonePtr(req.DecidedBy)
	st.changeRequests[req.ID] = cur
	return nil
}

// SetEvidence attaches a supporting document reference to a pending request.
func (r *ChangeRequestRepo) SetEvidence(ctx context.Context, id uuid.UUID, ref string) error {
	st, done := r.s.write(ctx)
	defer done()

	cur, ok := st.changeRequests[id]
	if !ok {
		return notFound("profile_change_request", id)
	}
	if cur.Status != domain.DecisionPending {
		return fmt.Errorf("profile_change_request %s: %w", id, domain.ErrInvalidStateTransition)
	}
	cur.EvidenceRef = &ref
	st.changeRequests[id] = cur
	return nil
}

// GetByID returns a change request by ID.
func (r *ChangeRequestRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ProfileChangeRequest, error) {
	st, done := r.s.read(ctx)
	defer done()

	req, ok := st.changeRequests[id]
	if !ok {
		return nil, notFound("profile_change_request", id)
	}
	return cloneRequest(req), nil
}

// GetByIDForUpdate is GetByID; the store lock already serializes transactions.
func (r *ChangeRequestRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.ProfileChangeRequest, error) {
	return r.GetByID(ctx, id)
}

// List returns change requests newest first with the total match count.
func (r *ChangeRequestRepo) List(ctx context.Context, filter domain.ChangeRequestFilter) ([]*domain.ProfileChangeRequest, int, error) {
	st, done := r.s.read(ctx)
	defer done()

	var matched []*domain.ProfileChangeRequest
	for _, req := range st.changeRequests {
		if filter.GuideID != nil && req.GuideID != *filter.GuideID {
			continue
		}
		if filter.Status != nil && req.Status != *filter.Status {
			continue
		}
		if filter.Field != nil && req.Field != *filter.Field {
			continue
		}
		matched = append(matched, cloneRequest(req))
	}
	slices.SortFunc(matched, func(a, b *domain.ProfileChangeRequest) int {
		if c := b.RequestedAt.Compare(a.RequestedAt); c != 0 {
			return c
		}
		return compareIDs(a.ID, b.ID)
	})
	return paginate(matched, filter.Page), len(matched), nil
}
