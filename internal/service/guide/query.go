package guide

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/heartmarshall/tourops-backend/internal/domain"
)

// Get returns one guide profile.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.GuideProfile, error) {
	p, err := s.guides.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get guide: %w", err)
	}
	return p, nil
}

// ListResult is a page of guide profiles.
type ListResult struct {
	Guides []*domain.GuideProfile
	Total  int
}

// List returns profiles filtered by status, language and area.
func (s *Service) List(ctx context.Context, filter domain.GuideFilter) (*ListResult, error) {
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, domain.NewValidationError("status", "unknown status")
	}
	if filter.Language != nil {
		v := domain.NormalizeText(*filter.Language)
		filter.Language = &v
	}
	if filter.Area != nil {
		v := domain.NormalizeText(*filter.Area)
		filter.Area = &v
	}

	guides, total, err := s.guides.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list guides: %w", err)
	}
	return &ListResult{Guides: guides, Total: total}, nil
}

// History returns every audit entry about the guide, its originating
// application and its change requests, in log order.
func (s *Service) History(ctx context.Context, guideID uuid.UUID) ([]domain.AuditEntry, error) {
	if _, err := s.guides.GetByID(ctx, guideID); err != nil {
		return nil, fmt.Errorf("get guide: %w", err)
	}

	subjects := []domain.SubjectRef{
		{Type: domain.SubjectApplication, ID: guideID},
		{Type: domain.SubjectGuide, ID: guideID},
	}

	filter := domain.ChangeRequestFilter{GuideID: &guideID, Page: domain.Page{Limit: domain.MaxListLimit}}
	for {
		reqs, total, err := s.requests.List(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("list change requests: %w", err)
		}
		for _, r := range reqs {
			subjects = append(subjects, domain.SubjectRef{Type: domain.SubjectChangeRequest, ID: r.ID})
		}
		filter.Offset += len(reqs)
		if len(reqs) == 0 || filter.Offset >= total {
			break
		}
	}

	entries, err := s.history.EntriesForAll(ctx, subjects)
	if err != nil {
		return nil, fmt.Errorf("guide history: %w", err)
	}
	return entries, nil
}
