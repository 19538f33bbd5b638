package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/heartmarshall/tourops-backend/internal/domain"
)

// GuideRepo stores guide profiles.
type GuideRepo struct {
	s *Store
}

func cloneProfile(p domain.GuideProfile) *domain.GuideProfile {
	p.Languages = cloneStrings(p.Languages)
	p.ServiceAreas = cloneStrings(p.ServiceAreas)
	return &p
}

// Create inserts a new profile. The originating application must exist.
func (r *GuideRepo) Create(ctx context.Context, p *domain.GuideProfile) (*domain.GuideProfile, error) {
	st, done := r.s.write(ctx)
	defer done()

	if _, ok := st.guides[p.ID]; ok {
		return nil, fmt.Errorf("guide_profile %s: %w", p.ID, domain.ErrAlreadyExists)
	}
	if _, ok := st.applications[p.ID]; !ok {
		return nil, notFound("guide_profile", p.ID)
	}
	stored := cloneProfile(*p)
	st.guides[p.ID] = *stored
	return cloneProfile(*stored), nil
}

// Update writes the mutable attributes of a profile.
func (r *GuideRepo) Update(ctx context.Context, p *domain.GuideProfile) (*domain.GuideProfile, error) {
	st, done := r.s.write(ctx)
	defer done()

	cur, ok := st.guides[p.ID]
	if !ok {
		return nil, notFound("guide_profile", p.ID)
	}
	cur.Applicant.Phone = p.Applicant.Phone
	cur.Applicant.Email = p.Applicant.Email
	cur.Languages = cloneStrings(p.Languages)
	cur.ServiceAreas = cloneStrings(p.ServiceAreas)
	cur.Status = p.Status
	cur.UpdatedAt = p.UpdatedAt
	st.guides[p.ID] = cur
	return cloneProfile(cur), nil
}

// GetByID returns a profile by ID.
func (r *GuideRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.GuideProfile, error) {
	st, done := r.s.read(ctx)
	defer done()

	p, ok := st.guides[id]
	if !ok {
		return nil, notFound("guide_profile", id)
	}
	return cloneProfile(p), nil
}

// GetByIDForUpdate is GetByID; the store lock already serializes transactions.
func (r *GuideRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.GuideProfile, error) {
	return r.GetByID(ctx, id)
}

// GetByIDs returns the profiles that exist among ids.
func (r *GuideRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.GuideProfile, error) {
	st, done := r.s.read(ctx)
	defer done()

	out := make([]*domain.GuideProfile, 0, len(ids))
	for _, id := range ids {
		if p, ok := st.guides[id]; ok {
			out = append(out, cloneProfile(p))
		}
	}
	return out, nil
}

// ListByStatus returns every profile in the given status ordered by name.
func (r *GuideRepo) ListByStatus(ctx context.Context, status domain.GuideStatus) ([]*domain.GuideProfile, error) {
	st, done := r.s.read(ctx)
	defer done()

	return r.filter(st, domain.GuideFilter{Status: &status}), nil
}

// List returns profiles ordered by name with the total match count.
func (r *GuideRepo) List(ctx context.Context, filter domain.GuideFilter) ([]*domain.GuideProfile, int, error) {
	st, done := r.s.read(ctx)
	defer done()

	matched := r.filter(st, filter)
	return paginate(matched, filter.Page), len(matched), nil
}

func (r *GuideRepo) filter(st *state, filter domain.GuideFilter) []*domain.GuideProfile {
	var matched []*domain.GuideProfile
	for _, p := range st.guides {
		if filter.Status != nil && p.Status != *filter.Status {
			continue
		}
		if filter.Language != nil && !slices.Contains(p.Languages, domain.NormalizeText(*filter.Language)) {
			continue
		}
		if filter.Area != nil && !slices.Contains(p.ServiceAreas, domain.NormalizeText(*filter.Area)) {
			continue
		}
		matched = append(matched, cloneProfile(p))
	}
	slices.SortFunc(matched, func(a, b *domain.GuideProfile) int {
		if c := strings.Compare(a.Applicant.LastName, b.Applicant.LastName); c != 0 {
			return c
		}
		if c := strings.Compare(a.Applicant.FirstName, b.Applicant.FirstName); c != 0 {
			return c
		}
		return compareIDs(a.ID, b.ID)
	})
	return matched
}
