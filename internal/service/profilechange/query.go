package profilechange

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/heartmarshall/tourops-backend/internal/domain"
)

// Get returns one change request.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.ProfileChangeRequest, error) {
	req, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get change request: %w", err)
	}
	return req, nil
}

// ListResult is a page of change requests.
type ListResult struct {
	Requests []*domain.ProfileChangeRequest
	Total    int
}

// List returns change requests newest first.
func (s *Service) List(ctx context.Context, filter domain.ChangeRequestFilter) (*ListResult, error) {
	var errs []domain.FieldError
	if filter.Status != nil && !filter.Status.IsValid() {
		errs = append(errs, domain.FieldError{Field: "status", Message: "unknown status"})
	}
	if filter.Field != nil && !filter.Field.IsValid() {
		errs = append(errs, domain.FieldError{Field: "field", Message: "unknown field"})
	}
	if len(errs) > 0 {
		return nil, domain.NewValidationErrors(errs)
	}

	reqs, total, err := s.requests.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list change requests: %w", err)
	}
	return &ListResult{Requests: reqs, Total: total}, nil
}
