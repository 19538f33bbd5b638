package profilechange

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/heartmarshall/tourops-backend/internal/domain"
	"github.com/heartmarshall/tourops-backend/pkg/ctxutil"
)

// Submit records a pending change request with a snapshot of the live value.
func (s *Service) Submit(ctx context.Context, input SubmitInput) (*domain.ProfileChangeRequest, error) {
	actor, ok := ctxutil.ActorFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	evidence := domain.OptionalReason(input.EvidenceRef)
	if evidence != nil {
		if err := s.checkDocument(ctx, "evidence_ref", *evidence); err != nil {
			return nil, err
		}
	}
	newValue := domain.NormalizeFieldValue(input.Field, input.NewValue)

	var created *domain.ProfileChangeRequest
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		profile, err := s.guides.GetByID(txCtx, input.GuideID)
		if err != nil {
			return fmt.Errorf("get guide: %w", err)
		}

		oldValue := profile.FieldValue(input.Field)
		if domain.FieldValuesEqual(input.Field, oldValue, newValue) {
			return domain.NewValidationError("new_value", "equals current value")
		}

		now := s.timestamp()
		req := &domain.ProfileChangeRequest{
			ID:          uuid.New(),
			GuideID:     profile.ID,
			Field:       input.Field,
			OldValue:    oldValue,
			NewValue:    newValue,
			EvidenceRef: evidence,
			Status:      domain.DecisionPending,
			RequestedAt: now,
			RequestedBy: actor,
		}

		created, err = s.requests.Create(txCtx, req)
		if err != nil {
			return fmt.Errorf("create change request: %w", err)
		}

		auditErr := s.audit.Log(txCtx, domain.AuditEntry{
			SubjectType: domain.SubjectChangeRequest,
			SubjectID:   created.ID,
			Action:      domain.AuditActionSubmitted,
			Actor:       actor,
			Status:      created.Status.String(),
			Changes:     domain.FieldChange(created.Field, created.OldValue, created.NewValue),
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

	s.log.InfoContext(ctx, "change request submitted",
		slog.String("request_id", created.ID.String()),
		slog.String("guide_id", created.GuideID.String()),
		slog.String("field", created.Field.String()),
	)

	return created, nil
}

// AttachEvidence stores a document reference on a pending request.
func (s *Service) AttachEvidence(ctx context.Context, input AttachEvidenceInput) (*domain.ProfileChangeRequest, error) {
	actor, ok := ctxutil.ActorFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}
	ref := strings.TrimSpace(input.Reference)
	if err := s.checkDocument(ctx, "reference", ref); err != nil {
		return nil, err
	}

	var updated *domain.ProfileChangeRequest
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		req, err := s.requests.GetByIDForUpdate(txCtx, input.RequestID)
		if err != nil {
			return fmt.Errorf("get change request: %w", err)
		}
		if req.Status != domain.DecisionPending {
			return fmt.Errorf("change request %s is %s: %w", req.ID, req.Status, domain.ErrInvalidStateTransition)
		}

		if err := s.requests.SetEvidence(txCtx, req.ID, ref); err != nil {
			return fmt.Errorf("set evidence: %w", err)
		}
		req.EvidenceRef = &ref

		auditErr := s.audit.Log(txCtx, domain.AuditEntry{
			SubjectType: domain.SubjectChangeRequest,
			SubjectID:   req.ID,
			Action:      domain.AuditActionEvidenceAttached,
			Actor:       actor,
			Status:      req.Status.String(),
			Changes:     map[string]any{"evidence_ref": ref},
			CreatedAt:   s.timestamp(),
		})
		if auditErr != nil {
			return fmt.Errorf("audit log: %w", auditErr)
		}

		updated = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "change request evidence attached",
		slog.String("request_id", input.RequestID.String()),
	)

	return updated, nil
}
