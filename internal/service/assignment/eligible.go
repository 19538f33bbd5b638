package assignment

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/heartmarshall/tourops-backend/internal/domain"
	"github.com/heartmarshall/tourops-backend/internal/service/assignment/eligibility"
)

// CheckEligibility evaluates one guide against a package without changing
// anything. A guide already bound to the package does not conflict with
// its own day.
func (s *Service) CheckEligibility(ctx context.Context, packageID, guideID uuid.UUID) (domain.Verdict, error) {
	pkg, err := s.packages.GetByID(ctx, packageID)
	if err != nil {
		return domain.Verdict{}, fmt.Errorf("get package: %w", err)
	}
	profile, err := s.guides.GetByID(ctx, guideID)
	if err != nil {
		return domain.Verdict{}, fmt.Errorf("get guide: %w", err)
	}
	return s.evaluate(ctx, pkg, profile)
}

// Candidate is an eligible guide for a package.
type Candidate struct {
	Guide   *domain.GuideProfile
	Verdict domain.Verdict
}

// EligibleGuides lists every active guide that passes all checks for the
// package, in guide listing order.
func (s *Service) EligibleGuides(ctx context.Context, packageID uuid.UUID) ([]Candidate, error) {
	pkg, err := s.packages.GetByID(ctx, packageID)
	if err != nil {
		return nil, fmt.Errorf("get package: %w", err)
	}
	guides, err := s.guides.ListByStatus(ctx, domain.GuideStatusActive)
	if err != nil {
		return nil, fmt.Errorf("list active guides: %w", err)
	}

	candidates := make([]Candidate, 0)
	for _, g := range guides {
		verdict, err := s.evaluate(ctx, pkg, g)
		if err != nil {
			return nil, err
		}
		if verdict.Eligible {
			candidates = append(candidates, Candidate{Guide: g, Verdict: verdict})
		}
	}
	return candidates, nil
}

func (s *Service) evaluate(ctx context.Context, pkg *domain.TourPackage, profile *domain.GuideProfile) (domain.Verdict, error) {
	busy, err := s.packages.BusyDates(ctx, profile.ID)
	if err != nil {
		return domain.Verdict{}, fmt.Errorf("get busy dates: %w", err)
	}
	if pkg.AssignedGuideID != nil && *pkg.AssignedGuideID == profile.ID {
		busy = eligibility.Without(busy, pkg.Date)
	}
	return eligibility.Evaluate(*profile, pkg.Requirements(), busy), nil
}
