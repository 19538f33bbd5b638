// Package profilechange implements the workflow for changing one field of
// an approved guide profile.
package profilechange

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/tourops-backend/internal/domain"
)

type changeRequestRepo interface {
	Create(ctx context.Context, req *domain.ProfileChangeRequest) (*domain.ProfileChangeRequest, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ProfileChangeRequest, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.ProfileChangeRequest, error)
	SaveDecision(ctx context.Context, req *domain.ProfileChangeRequest) error
	SetEvidence(ctx context.Context, id uuid.UUID, ref string) error
	List(ctx context.Context, filter domain.ChangeRequestFilter) ([]*domain.ProfileChangeRequest, int, error)
}

type guideRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.GuideProfile, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.GuideProfile, error)
	Update(ctx context.Context, p *domain.GuideProfile) (*domain.GuideProfile, error)
}

type documentStore interface {
	Exists(ctx context.Context, ref string) (bool, error)
}

// assignmentReviewer re-evaluates the existing assignments of one guide.
type assignmentReviewer interface {
	ReviewGuide(ctx context.Context, guideID uuid.UUID) ([]domain.FlaggedAssignment, error)
}

type auditLogger interface {
	Log(ctx context.Context, entry domain.AuditEntry) error
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service runs the profile change workflow.
type Service struct {
	requests changeRequestRepo
	guides   guideRepo
	docs     documentStore
	reviewer assignmentReviewer
	audit    auditLogger
	tx       txManager
	log      *slog.Logger
	now      func() time.Time
}

// NewService creates a new profile change service. docs and reviewer may be
// nil: evidence references are then not checked and approvals report no
// flagged assignments.
func NewService(
	log *slog.Logger,
	requests changeRequestRepo,
	guides guideRepo,
	docs documentStore,
	reviewer assignmentReviewer,
	audit auditLogger,
	tx txManager,
) *Service {
	return &Service{
		requests: requests,
		guides:   guides,
		docs:     docs,
		reviewer: reviewer,
		audit:    audit,
		tx:       tx,
		log:      log.With("service", "profilechange"),
		now:      time.Now,
	}
}

func (s *Service) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// checkDocument verifies that ref was issued by the document store.
func (s *Service) checkDocument(ctx context.Context, field, ref string) error {
	if s.docs == nil {
		return nil
	}
	ok, err := s.docs.Exists(ctx, ref)
	if err != nil {
		return err
	}
	if !ok {
		return domain.NewValidationError(field, "unknown document")
	}
	return nil
}
