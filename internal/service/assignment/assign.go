package assignment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/tourops-backend/internal/domain"
	"github.com/heartmarshall/tourops-backend/internal/service/assignment/eligibility"
	"github.com/heartmarshall/tourops-backend/pkg/ctxutil"
)

// Assign binds a guide to an unassigned package. The package check comes
// before eligibility: an assigned package fails with
// domain.ErrPackageAlreadyAssigned whatever the guide.
func (s *Service) Assign(ctx context.Context, input AssignInput) (*domain.TourPackage, error) {
	actor, ok := ctxutil.ActorFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var assigned *domain.TourPackage
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		pkg, err := s.packages.GetByIDForUpdate(txCtx, input.PackageID)
		if err != nil {
			return fmt.Errorf("get package: %w", err)
		}
		assigned, err = s.assignLocked(txCtx, actor, pkg, input.GuideID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "guide assigned",
		slog.String("package_id", input.PackageID.String()),
		slog.String("guide_id", input.GuideID.String()),
		slog.String("actor", actor),
	)

	return assigned, nil
}

// Unassign releases the guide of a package and frees their day.
func (s *Service) Unassign(ctx context.Context, packageID uuid.UUID) (*domain.TourPackage, error) {
	actor, ok := ctxutil.ActorFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	var (
		released *domain.TourPackage
		previous uuid.UUID
	)
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		pkg, err := s.packages.GetByIDForUpdate(txCtx, packageID)
		if err != nil {
			return fmt.Errorf("get package: %w", err)
		}
		if pkg.AssignedGuideID != nil {
			previous = *pkg.AssignedGuideID
		}
		released, err = s.unassignLocked(txCtx, actor, pkg)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "guide unassigned",
		slog.String("package_id", packageID.String()),
		slog.String("guide_id", previous.String()),
		slog.String("actor", actor),
	)

	return released, nil
}

// Reassign replaces the guide of an assigned package in one transaction.
// If the new guide is not eligible the old assignment stays.
func (s *Service) Reassign(ctx context.Context, input AssignInput) (*domain.TourPackage, error) {
	actor, ok := ctxutil.ActorFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var reassigned *domain.TourPackage
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		pkg, err := s.packages.GetByIDForUpdate(txCtx, input.PackageID)
		if err != nil {
			return fmt.Errorf("get package: %w", err)
		}
		if pkg.AssignedGuideID != nil && *pkg.AssignedGuideID == input.GuideID {
			return domain.NewValidationError("guide_id", "already assigned to this package")
		}

		released, err := s.unassignLocked(txCtx, actor, pkg)
		if err != nil {
			return err
		}
		reassigned, err = s.assignLocked(txCtx, actor, released, input.GuideID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "guide reassigned",
		slog.String("package_id", input.PackageID.String()),
		slog.String("guide_id", input.GuideID.String()),
		slog.String("actor", actor),
	)

	return reassigned, nil
}

// assignLocked expects pkg to be locked by the caller's transaction.
func (s *Service) assignLocked(ctx context.Context, actor string, pkg *domain.TourPackage, guideID uuid.UUID) (*domain.TourPackage, error) {
	if pkg.IsAssigned() {
		return nil, fmt.Errorf("package %s: %w", pkg.ID, domain.ErrPackageAlreadyAssigned)
	}

	profile, err := s.guides.GetByIDForUpdate(ctx, guideID)
	if err != nil {
		return nil, fmt.Errorf("get guide: %w", err)
	}
	busy, err := s.packages.BusyDates(ctx, guideID)
	if err != nil {
		return nil, fmt.Errorf("get busy dates: %w", err)
	}

	verdict := eligibility.Evaluate(*profile, pkg.Requirements(), busy)
	if !verdict.Eligible {
		return nil, &domain.IneligibleGuideError{GuideID: guideID, PackageID: pkg.ID, Reasons: verdict.Reasons}
	}

	if err := s.packages.SetAssignedGuide(ctx, pkg.ID, &guideID); err != nil {
		return nil, fmt.Errorf("set assigned guide: %w", err)
	}
	if err := s.packages.AddBusyDate(ctx, guideID, pkg.ID, pkg.Date); err != nil {
		return nil, fmt.Errorf("add busy date: %w", err)
	}

	auditErr := s.audit.Log(ctx, domain.AuditEntry{
		SubjectType: domain.SubjectPackage,
		SubjectID:   pkg.ID,
		Action:      domain.AuditActionAssigned,
		Actor:       actor,
		Changes: map[string]any{
			"guide_id": guideID.String(),
			"date":     domain.FormatDate(pkg.Date),
		},
		CreatedAt: s.timestamp(),
	})
	if auditErr != nil {
		return nil, fmt.Errorf("audit log: %w", auditErr)
	}

	out := *pkg
	out.AssignedGuideID = &guideID
	return &out, nil
}

// unassignLocked expects pkg to be locked by the caller's transaction.
func (s *Service) unassignLocked(ctx context.Context, actor string, pkg *domain.TourPackage) (*domain.TourPackage, error) {
	if !pkg.IsAssigned() {
		return nil, fmt.Errorf("package %s: %w", pkg.ID, domain.ErrPackageNotAssigned)
	}
	guideID := *pkg.AssignedGuideID

	if err := s.packages.SetAssignedGuide(ctx, pkg.ID, nil); err != nil {
		return nil, fmt.Errorf("clear assigned guide: %w", err)
	}
	if err := s.packages.RemoveBusyDate(ctx, pkg.ID); err != nil {
		return nil, fmt.Errorf("remove busy date: %w", err)
	}

	auditErr := s.audit.Log(ctx, domain.AuditEntry{
		SubjectType: domain.SubjectPackage,
		SubjectID:   pkg.ID,
		Action:      domain.AuditActionUnassigned,
		Actor:       actor,
		Changes: map[string]any{
			"guide_id": guideID.String(),
			"date":     domain.FormatDate(pkg.Date),
		},
		CreatedAt: s.timestamp(),
	})
	if auditErr != nil {
		return nil, fmt.Errorf("audit log: %w", auditErr)
	}

	out := *pkg
	out.AssignedGuideID = nil
	return &out, nil
}
