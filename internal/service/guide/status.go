package guide

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/tourops-backend/internal/domain"
	"github.com/heartmarshall/tourops-backend/pkg/ctxutil"
)

// SuspendInput holds the parameters for suspending a guide.
type SuspendInput struct {
	GuideID uuid.UUID
	Reason  string
}

func (i SuspendInput) Validate() error {
	if strings.TrimSpace(i.Reason) == "" {
		return domain.NewValidationError("reason", "required")
	}
	return nil
}

// Suspend moves an active guide to Suspended. Existing assignments stay and
// show up in the assignment review.
func (s *Service) Suspend(ctx context.Context, input SuspendInput) (*domain.GuideProfile, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	return s.setStatus(ctx, input.GuideID, domain.GuideStatusSuspended, domain.OptionalReason(input.Reason))
}

// Activate moves a suspended guide back to Active.
func (s *Service) Activate(ctx context.Context, guideID uuid.UUID) (*domain.GuideProfile, error) {
	return s.setStatus(ctx, guideID, domain.GuideStatusActive, nil)
}

func (s *Service) setStatus(ctx context.Context, guideID uuid.UUID, to domain.GuideStatus, reason *string) (*domain.GuideProfile, error) {
	actor, ok := ctxutil.ActorFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	action := domain.AuditActionActivated
	if to == domain.GuideStatusSuspended {
		action = domain.AuditActionSuspended
	}

	var updated *domain.GuideProfile
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		profile, err := s.guides.GetByIDForUpdate(txCtx, guideID)
		if err != nil {
			return fmt.Errorf("get guide: %w", err)
		}
		if profile.Status == to {
			return domain.NewTransitionError(domain.SubjectGuide, guideID, profile.Status.String(), to.String())
		}

		from := profile.Status
		now := s.now().UTC().Truncate(time.Microsecond)
		profile.Status = to
		profile.UpdatedAt = now

		updated, err = s.guides.Update(txCtx, profile)
		if err != nil {
			return fmt.Errorf("update guide: %w", err)
		}

		auditErr := s.audit.Log(txCtx, domain.AuditEntry{
			SubjectType: domain.SubjectGuide,
			SubjectID:   guideID,
			Action:      action,
			Actor:       actor,
			Status:      to.String(),
			Reason:      reason,
			Changes:     map[string]any{"from": from.String(), "to": to.String()},
			CreatedAt:   now,
		})
		if auditErr != nil {
			return fmt.Errorf("audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "guide status changed",
		slog.String("guide_id", guideID.String()),
		slog.String("status", to.String()),
		slog.String("actor", actor),
	)

	return updated, nil
}
