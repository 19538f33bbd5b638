package memory

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/heartmarshall/tourops-backend/internal/domain"
)

// ApplicationRepo stores guide applications.
type ApplicationRepo struct {
	s *Store
}

func cloneApplication(a domain.GuideApplication) *domain.GuideApplication {
	a.Languages = cloneStrings(a.Languages)
	a.ServiceAreas = cloneStrings(a.ServiceAreas)
	a.Documents = cloneStrings(a.Documents)
	a.RejectionReason = clonePtr(a.RejectionReason)
	a.DecidedAt = clonePtr(a.DecidedAt)
	a.DecidedBy = clonePtr(a.DecidedBy)
	return &a
}

// Create inserts a new application.
func (r *ApplicationRepo) Create(ctx context.Context, app *domain.GuideApplication) (*domain.GuideApplication, error) {
	st, done := r.s.write(ctx)
	defer done()

	if _, ok := st.applications[app.ID]; ok {
		return nil, fmt.Errorf("guide_application %s: %w", app.ID, domain.ErrAlreadyExists)
	}
	stored := cloneApplication(*app)
	st.applications[app.ID] = *stored
	return cloneApplication(*stored), nil
}

// SaveDecision persists the terminal status of a pending application.
func (r *ApplicationRepo) SaveDecision(ctx context.Context, app *domain.GuideApplication) error {
	st, done := r.s.write(ctx)
	defer done()

	cur, ok := st.applications[app.ID]
	if !ok {
		return notFound("guide_application", app.ID)
	}
	if cur.Status != domain.DecisionPending {
		return fmt.Errorf("guide_application %s: %w", app.ID, domain.ErrInvalidStateTransition)
	}
	if (app.Status == domain.DecisionRejected) != (app.RejectionReason != nil) {
		return fmt.Errorf("guide_application %s: %w", app.ID, domain.ErrValidation)
	}
	cur.Status = app.Status
	cur.RejectionReason = clonePtr(app.RejectionReason)
	cur.DecidedAt = clonePtr(app.DecidedAt)
	cur.DecidedBy = clonePtr(app.DecidedBy)
	st.applications[app.ID] = cur
	return nil
}

// GetByID returns an application by ID.
func (r *ApplicationRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.GuideApplication, error) {
	st, done := r.s.read(ctx)
	defer done()

	app, ok := st.applications[id]
	if !ok {
		return nil, notFound("guide_application", id)
	}
	return cloneApplication(app), nil
}

// GetByIDForUpdate is GetByID; the store lock already serializes transactions.
func (r *ApplicationRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.GuideApplication, error) {
	return r.GetByID(ctx, id)
}

// List returns applications newest first with the total match count.
func (r *ApplicationRepo) List(ctx context.Context, filter domain.ApplicationFilter) ([]*domain.GuideApplication, int, error) {
	st, done := r.s.read(ctx)
	defer done()

	var matched []*domain.GuideApplication
	for _, app := range st.applications {
		if filter.Status != nil && app.Status != *filter.Status {
			continue
		}
		matched = append(matched, cloneApplication(app))
	}
	slices.SortFunc(matched, func(a, b *domain.GuideApplication) int {
		if c := b.SubmittedAt.Compare(a.SubmittedAt); c != 0 {
			return c
		}
		return compareIDs(a.ID, b.ID)
	})
	return paginate(matched, filter.Page), len(matched), nil
}

func compareIDs(a, b uuid.UUID) int {
	return slices.Compare(a[:], b[:])
}
