package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/tourops-backend/internal/domain"
	"github.com/heartmarshall/tourops-backend/pkg/ctxutil"
)

// ApproveResult holds the approved application and the profile created from it.
type ApproveResult struct {
	Application *domain.GuideApplication
	Profile     *domain.GuideProfile
}

// Approve turns a pending application into an active guide profile. The
// profile, the decision and its audit entry commit together.
func (s *Service) Approve(ctx context.Context, applicationID uuid.UUID) (*ApproveResult, error) {
	actor, ok := ctxutil.ActorFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	var result ApproveResult
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		app, err := s.apps.GetByIDForUpdate(txCtx, applicationID)
		if err != nil {
			return fmt.Errorf("get application: %w", err)
		}

		now := s.timestamp()
		if err := app.Decide(domain.DecisionApproved, actor, nil, now); err != nil {
			return err
		}

		profile := domain.NewProfileFromApplication(*app, now)
		created, err := s.guides.Create(txCtx, &profile)
		if err != nil {
			return fmt.Errorf("create guide profile: %w", err)
		}

		if err := s.apps.SaveDecision(txCtx, app); err != nil {
			return fmt.Errorf("save decision: %w", err)
		}

		auditErr := s.audit.Log(txCtx, domain.AuditEntry{
			SubjectType: domain.SubjectApplication,
			SubjectID:   app.ID,
			Action:      domain.AuditActionApproved,
			Actor:       actor,
			Status:      app.Status.String(),
			Changes: map[string]any{
				"guide_id":      created.ID.String(),
				"languages":     created.Languages,
				"service_areas": created.ServiceAreas,
			},
			CreatedAt: now,
		})
		if auditErr != nil {
			return fmt.Errorf("audit log: %w", auditErr)
		}

		result = ApproveResult{Application: app, Profile: created}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "application approved",
		slog.String("application_id", applicationID.String()),
		slog.String("guide_id", result.Profile.ID.String()),
		slog.String("actor", actor),
	)

	return &result, nil
}

// Reject closes a pending application with a reason. The reason is checked
// before the application is loaded.
func (s *Service) Reject(ctx context.Context, input RejectInput) (*domain.GuideApplication, error) {
	actor, ok := ctxutil.ActorFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}
	reason := domain.OptionalReason(input.Reason)

	var rejected *domain.GuideApplication
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		app, err := s.apps.GetByIDForUpdate(txCtx, input.ApplicationID)
		if err != nil {
			return fmt.Errorf("get application: %w", err)
		}

		now := s.timestamp()
		if err := app.Decide(domain.DecisionRejected, actor, reason, now); err != nil {
			return err
		}

		if err := s.apps.SaveDecision(txCtx, app); err != nil {
			return fmt.Errorf("save decision: %w", err)
		}

		auditErr := s.audit.Log(txCtx, domain.AuditEntry{
			SubjectType: domain.SubjectApplication,
			SubjectID:   app.ID,
			Action:      domain.AuditActionRejected,
			Actor:       actor,
			Status:      app.Status.String(),
			Reason:      reason,
			CreatedAt:   now,
		})
		if auditErr != nil {
			return fmt.Errorf("audit log: %w", auditErr)
		}

		rejected = app
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "application rejected",
		slog.String("application_id", input.ApplicationID.String()),
		slog.String("actor", actor),
	)

	return rejected, nil
}
