package assignment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/tourops-backend/internal/domain"
)

// UpsertPackage stores the directory copy of a package. The date of an
// assigned package cannot change: the guide's busy day would go stale.
func (s *Service) UpsertPackage(ctx context.Context, input UpsertPackageInput) (*domain.TourPackage, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	pkg := &domain.TourPackage{
		ID:                input.ID,
		Name:              domain.NormalizeText(input.Name),
		Date:              domain.TruncateDay(input.Date),
		RequiredLanguages: domain.NormalizeSet(input.RequiredLanguages),
		RequiredAreas:     domain.NormalizeSet(input.RequiredAreas),
		UpdatedAt:         s.timestamp(),
	}

	var saved *domain.TourPackage
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		existing, err := s.packages.GetByIDForUpdate(txCtx, pkg.ID)
		switch {
		case errors.Is(err, domain.ErrNotFound):
		case err != nil:
			return fmt.Errorf("get package: %w", err)
		case existing.IsAssigned() && !existing.Date.Equal(pkg.Date):
			return fmt.Errorf("package %s is assigned; unassign before moving its date: %w", pkg.ID, domain.ErrConflict)
		}

		saved, err = s.packages.Upsert(txCtx, pkg)
		if err != nil {
			return fmt.Errorf("upsert package: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "package synced",
		slog.String("package_id", saved.ID.String()),
		slog.String("date", domain.FormatDate(saved.Date)),
	)

	return saved, nil
}

// GetPackage returns one package.
func (s *Service) GetPackage(ctx context.Context, id uuid.UUID) (*domain.TourPackage, error) {
	pkg, err := s.packages.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get package: %w", err)
	}
	return pkg, nil
}

// PackageListResult is a page of packages.
type PackageListResult struct {
	Packages []*domain.TourPackage
	Total    int
}

// ListPackages returns packages ordered by date.
func (s *Service) ListPackages(ctx context.Context, filter domain.PackageFilter) (*PackageListResult, error) {
	pkgs, total, err := s.packages.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list packages: %w", err)
	}
	return &PackageListResult{Packages: pkgs, Total: total}, nil
}
