// Package application implements the guide application workflow:
// Pending -> Approved (creates the guide profile) or Pending -> Rejected.
package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/tourops-backend/internal/domain"
)

type applicationRepo interface {
	Create(ctx context.Context, app *domain.GuideApplication) (*domain.GuideApplication, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.GuideApplication, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.GuideApplication, error)
	SaveDecision(ctx context.Context, app *domain.GuideApplication) error
	List(ctx context.Context, filter domain.ApplicationFilter) ([]*domain.GuideApplication, int, error)
}

type guideRepo interface {
	Create(ctx context.Context, p *domain.GuideProfile) (*domain.GuideProfile, error)
}

type auditLogger interface {
	Log(ctx context.Context, entry domain.AuditEntry) error
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service runs the application workflow.
type Service struct {
	apps   applicationRepo
	guides guideRepo
	audit  auditLogger
	tx     txManager
	log    *slog.Logger
	now    func() time.Time
}

// NewService creates a new application service.
func NewService(
	log *slog.Logger,
	apps applicationRepo,
	guides guideRepo,
	audit auditLogger,
	tx txManager,
) *Service {
	return &Service{
		apps:   apps,
		guides: guides,
		audit:  audit,
		tx:     tx,
		log:    log.With("service", "application"),
		now:    time.Now,
	}
}

func (s *Service) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}
