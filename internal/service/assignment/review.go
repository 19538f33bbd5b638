package assignment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/tourops-backend/internal/domain"
	"github.com/heartmarshall/tourops-backend/internal/service/assignment/eligibility"
	"github.com/heartmarshall/tourops-backend/pkg/ctxutil"
)

// Review re-evaluates every assigned package against its guide's current
// profile and returns the assignments that no longer pass. It never
// mutates; flagged assignments are for an operator to resolve.
func (s *Service) Review(ctx context.Context) ([]domain.FlaggedAssignment, error) {
	return s.reviewSnapshot(ctx, nil)
}

// ReviewGuide is Review restricted to the packages of one guide.
func (s *Service) ReviewGuide(ctx context.Context, guideID uuid.UUID) ([]domain.FlaggedAssignment, error) {
	return s.reviewSnapshot(ctx, &guideID)
}

// reviewSnapshot reads packages, profiles and busy dates from one snapshot,
// so a profile change committed mid-review cannot mix old and new rows.
func (s *Service) reviewSnapshot(ctx context.Context, guideID *uuid.UUID) ([]domain.FlaggedAssignment, error) {
	var flagged []domain.FlaggedAssignment
	err := s.tx.RunReadOnly(ctx, func(txCtx context.Context) error {
		pkgs, err := s.packages.ListAssigned(txCtx, guideID)
		if err != nil {
			return fmt.Errorf("list assigned packages: %w", err)
		}
		flagged, err = s.review(txCtx, pkgs)
		return err
	})
	if err != nil {
		return nil, err
	}
	return flagged, nil
}

func (s *Service) review(ctx context.Context, pkgs []*domain.TourPackage) ([]domain.FlaggedAssignment, error) {
	flagged := make([]domain.FlaggedAssignment, 0)
	if len(pkgs) == 0 {
		return flagged, nil
	}

	ids := make([]uuid.UUID, 0, len(pkgs))
	seen := make(map[uuid.UUID]struct{}, len(pkgs))
	for _, p := range pkgs {
		id := *p.AssignedGuideID
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}

	profiles, err := s.guides.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get guides: %w", err)
	}
	byID := make(map[uuid.UUID]*domain.GuideProfile, len(profiles))
	for _, p := range profiles {
		byID[p.ID] = p
	}

	busyByGuide := make(map[uuid.UUID][]time.Time, len(ids))
	for _, id := range ids {
		busy, err := s.packages.BusyDates(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("get busy dates: %w", err)
		}
		busyByGuide[id] = busy
	}

	for _, pkg := range pkgs {
		guideID := *pkg.AssignedGuideID
		profile, ok := byID[guideID]
		if !ok {
			continue
		}
		busy := eligibility.Without(busyByGuide[guideID], pkg.Date)
		verdict := eligibility.Evaluate(*profile, pkg.Requirements(), busy)
		if verdict.Eligible {
			continue
		}
		flagged = append(flagged, domain.FlaggedAssignment{
			PackageID: pkg.ID,
			GuideID:   guideID,
			Date:      pkg.Date,
			Verdict:   verdict,
		})
	}
	return flagged, nil
}

// RunPeriodicReview calls Review every interval until ctx is done and logs
// the flagged count at WARN.
func (s *Service) RunPeriodicReview(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			flagged, err := s.Review(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				s.log.ErrorContext(ctx, "periodic assignment review", slog.String("error", err.Error()))
				continue
			}
			if len(flagged) > 0 {
				s.log.WarnContext(ctx, "assignments no longer eligible", slog.Int("count", len(flagged)))
			}
		}
	}
}

// RebuildBusyIndex recomputes the whole busy-date index from package
// assignments and returns the number of rows written.
func (s *Service) RebuildBusyIndex(ctx context.Context) (int, error) {
	actor, ok := ctxutil.ActorFromCtx(ctx)
	if !ok {
		return 0, domain.ErrUnauthorized
	}

	var rows int
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		rows, err = s.packages.RebuildBusyIndex(txCtx)
		if err != nil {
			return fmt.Errorf("rebuild busy index: %w", err)
		}

		auditErr := s.audit.Log(txCtx, domain.AuditEntry{
			SubjectType: domain.SubjectBusyIndex,
			SubjectID:   BusyIndexSubjectID,
			Action:      domain.AuditActionIndexRebuilt,
			Actor:       actor,
			Changes:     map[string]any{"rows": rows},
			CreatedAt:   s.timestamp(),
		})
		if auditErr != nil {
			return fmt.Errorf("audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.log.InfoContext(ctx, "busy index rebuilt", slog.Int("rows", rows), slog.String("actor", actor))
	return rows, nil
}
