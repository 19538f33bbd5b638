package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/heartmarshall/tourops-backend/internal/domain"
	"github.com/heartmarshall/tourops-backend/pkg/ctxutil"
)

// Submit records a new pending application.
func (s *Service) Submit(ctx context.Context, input SubmitInput) (*domain.GuideApplication, error) {
	actor, ok := ctxutil.ActorFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	now := s.timestamp()
	app := &domain.GuideApplication{
		ID: uuid.New(),
		Applicant: domain.Applicant{
			FirstName: domain.NormalizeText(input.FirstName),
			LastName:  domain.NormalizeText(input.LastName),
			Age:       input.Age,
			Sex:       strings.TrimSpace(input.Sex),
			Phone:     strings.TrimSpace(input.Phone),
			Email:     strings.TrimSpace(input.Email),
			GuideType: domain.NormalizeText(input.GuideType),
		},
		Languages:    domain.NormalizeSet(input.Languages),
		ServiceAreas: domain.NormalizeSet(input.ServiceAreas),
		Documents:    domain.NormalizeSet(input.Documents),
		Status:       domain.DecisionPending,
		SubmittedAt:  now,
		SubmittedBy:  actor,
	}

	var created *domain.GuideApplication
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var createErr error
		created, createErr = s.apps.Create(txCtx, app)
		if createErr != nil {
			return fmt.Errorf("create application: %w", createErr)
		}

		auditErr := s.audit.Log(txCtx, domain.AuditEntry{
			SubjectType: domain.SubjectApplication,
			SubjectID:   created.ID,
			Action:      domain.AuditActionSubmitted,
			Actor:       actor,
			Status:      created.Status.String(),
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

	s.log.InfoContext(ctx, "application submitted",
		slog.String("application_id", created.ID.String()),
		slog.String("actor", actor),
	)

	return created, nil
}
