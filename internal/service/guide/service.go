// Package guide serves the guide profile store: reads, status changes and
// the merged decision history of a guide.
package guide

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/tourops-backend/internal/domain"
)

type guideRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.GuideProfile, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.GuideProfile, error)
	Update(ctx context.Context, p *domain.GuideProfile) (*domain.GuideProfile, error)
	List(ctx context.Context, filter domain.GuideFilter) ([]*domain.GuideProfile, int, error)
}

type changeRequestRepo interface {
	List(ctx context.Context, filter domain.ChangeRequestFilter) ([]*domain.ProfileChangeRequest, int, error)
}

type historyReader interface {
	EntriesForAll(ctx context.Context, subjects []domain.SubjectRef) ([]domain.AuditEntry, error)
}

type auditLogger interface {
	Log(ctx context.Context, entry domain.AuditEntry) error
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service manages guide profiles.
type Service struct {
	guides   guideRepo
	requests changeRequestRepo
	history  historyReader
	audit    auditLogger
	tx       txManager
	log      *slog.Logger
	now      func() time.Time
}

// NewService creates a new guide service.
func NewService(
	log *slog.Logger,
	guides guideRepo,
	requests changeRequestRepo,
	history historyReader,
	audit auditLogger,
	tx txManager,
) *Service {
	return &Service{
		guides:   guides,
		requests: requests,
		history:  history,
		audit:    audit,
		tx:       tx,
		log:      log.With("service", "guide"),
		now:      time.Now,
	}
}
