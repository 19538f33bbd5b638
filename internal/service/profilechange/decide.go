package profilechange

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/tourops-backend/internal/domain"
	"github.com/heartmarshall/tourops-backend/pkg/ctxutil"
)

const staleReason = "profile changed since the request was made"

// ApproveResult holds the approved request, the updated profile and the
// existing assignments the change made ineligible. Flagged assignments are
// reported, never undone.
type ApproveResult struct {
	Request *domain.ProfileChangeRequest
	Profile *domain.GuideProfile
	Flagged []domain.FlaggedAssignment
}

// Approve applies a pending change to the live profile.
//
// Checks run in order: pending, evidence, staleness. A stale request is
// rejected automatically; that rejection commits and Approve returns
// domain.ErrStaleRequest without touching the profile.
func (s *Service) Approve(ctx context.Context, requestID uuid.UUID) (*ApproveResult, error) {
	actor, ok := ctxutil.ActorFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	var (
		result ApproveResult
		stale  bool
	)
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		req, err := s.requests.GetByIDForUpdate(txCtx, requestID)
		if err != nil {
			return fmt.Errorf("get change request: %w", err)
		}
		if req.Status != domain.DecisionPending {
			return domain.NewTransitionError(domain.SubjectChangeRequest, req.ID, req.Status.String(), domain.DecisionApproved.String())
		}
		if req.Field.RequiresEvidence() && !req.HasEvidence() {
			return fmt.Errorf("change request %s: %w", req.ID, domain.ErrMissingDocument)
		}

		profile, err := s.guides.GetByIDForUpdate(txCtx, req.GuideID)
		if err != nil {
			return fmt.Errorf("get guide: %w", err)
		}

		now := s.timestamp()

		if req.IsStale(*profile) {
			stale = true
			return s.autoReject(txCtx, req, profile, now)
		}

		oldValue := profile.FieldValue(req.Field)
		profile.SetFieldValue(req.Field, req.NewValue)
		profile.UpdatedAt = now
		updated, err := s.guides.Update(txCtx, profile)
		if err != nil {
			return fmt.Errorf("update guide: %w", err)
		}

		if err := req.Decide(domain.DecisionApproved, actor, nil, now); err != nil {
			return err
		}
		if err := s.requests.SaveDecision(txCtx, req); err != nil {
			return fmt.Errorf("save decision: %w", err)
		}

		auditErr := s.audit.Log(txCtx, domain.AuditEntry{
			SubjectType: domain.SubjectChangeRequest,
			SubjectID:   req.ID,
			Action:      domain.AuditActionApproved,
			Actor:       actor,
			Status:      req.Status.String(),
			Changes:     domain.FieldChange(req.Field, oldValue, updated.FieldValue(req.Field)),
			CreatedAt:   now,
		})
		if auditErr != nil {
			return fmt.Errorf("audit log: %w", auditErr)
		}

		result = ApproveResult{Request: req, Profile: updated}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if stale {
		s.log.InfoContext(ctx, "stale change request auto-rejected",
			slog.String("request_id", requestID.String()),
		)
		return nil, fmt.Errorf("change request %s: %w", requestID, domain.ErrStaleRequest)
	}

	s.log.InfoContext(ctx, "change request approved",
		slog.String("request_id", requestID.String()),
		slog.String("guide_id", result.Profile.ID.String()),
		slog.String("field", result.Request.Field.String()),
	)

	if result.Request.Field.IsSet() && s.reviewer != nil {
		flagged, err := s.reviewer.ReviewGuide(ctx, result.Profile.ID)
		if err != nil {
			// The change is committed; a failed review only loses the report.
			s.log.WarnContext(ctx, "review assignments after change",
				slog.String("guide_id", result.Profile.ID.String()),
				slog.String("error", err.Error()),
			)
		}
		result.Flagged = flagged
	}
	if result.Flagged == nil {
		result.Flagged = []domain.FlaggedAssignment{}
	}

	return &result, nil
}

func (s *Service) autoReject(ctx context.Context, req *domain.ProfileChangeRequest, profile *domain.GuideProfile, now time.Time) error {
	actor, _ := ctxutil.ActorFromCtx(ctx)
	reason := staleReason
	if err := req.Decide(domain.DecisionRejected, actor, &reason, now); err != nil {
		return err
	}
	if err := s.requests.SaveDecision(ctx, req); err != nil {
		return fmt.Errorf("save decision: %w", err)
	}

	auditErr := s.audit.Log(ctx, domain.AuditEntry{
		SubjectType: domain.SubjectChangeRequest,
		SubjectID:   req.ID,
		Action:      domain.AuditActionAutoRejected,
		Actor:       actor,
		Status:      req.Status.String(),
		Reason:      &reason,
		Changes:     domain.FieldChange(req.Field, req.OldValue, profile.FieldValue(req.Field)),
		CreatedAt:   now,
	})
	if auditErr != nil {
		return fmt.Errorf("audit log: %w", auditErr)
	}
	return nil
}

// Reject closes a pending request with a reason. The reason is checked
// before the request is loaded.
func (s *Service) Reject(ctx context.Context, input RejectInput) (*domain.ProfileChangeRequest, error) {
	actor, ok := ctxutil.ActorFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}
	reason := domain.OptionalReason(input.Reason)

	var rejected *domain.ProfileChangeRequest
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		req, err := s.requests.GetByIDForUpdate(txCtx, input.RequestID)
		if err != nil {
			return fmt.Errorf("get change request: %w", err)
		}

		now := s.timestamp()
		if err := req.Decide(domain.DecisionRejected, actor, reason, now); err != nil {
			return err
		}
		if err := s.requests.SaveDecision(txCtx, req); err != nil {
			return fmt.Errorf("save decision: %w", err)
		}

		auditErr := s.audit.Log(txCtx, domain.AuditEntry{
			SubjectType: domain.SubjectChangeRequest,
			SubjectID:   req.ID,
			Action:      domain.AuditActionRejected,
			Actor:       actor,
			Status:      req.Status.String(),
			Reason:      reason,
			CreatedAt:   now,
		})
		if auditErr != nil {
			return fmt.Errorf("audit log: %w", auditErr)
		}

		rejected = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "change request rejected",
		slog.String("request_id", input.RequestID.String()),
		slog.String("actor", actor),
	)

	return rejected, nil
}
