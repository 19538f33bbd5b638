package application

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/heartmarshall/tourops-backend/internal/domain"
)

// Get returns one application.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.GuideApplication, error) {
	app, err := s.apps.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get application: %w", err)
	}
	return app, nil
}

// ListResult is a page of applications.
type ListResult struct {
	Applications []*domain.GuideApplication
	Total        int
}

// List returns applications newest first.
func (s *Service) List(ctx context.Context, filter domain.ApplicationFilter) (*ListResult, error) {
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, domain.NewValidationError("status", "unknown status")
	}
	apps, total, err := s.apps.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return &ListResult{Applications: apps, Total: total}, nil
}
