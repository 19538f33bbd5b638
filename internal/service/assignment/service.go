// Package assignment binds guides to tour packages. It keeps the derived
// busy-date index in step with package assignments and re-evaluates
// existing assignments on request.
package assignment

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/tourops-backend/internal/domain"
)

type packageRepo interface {
	Upsert(ctx context.Context, pkg *domain.TourPackage) (*domain.TourPackage, error)
	SetAssignedGuide(ctx context.Context, packageID uuid.UUID, guideID *uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.TourPackage, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.TourPackage, error)
	ListAssigned(ctx context.Context, guideID *uuid.UUID) ([]*domain.TourPackage, error)
	List(ctx context.Context, filter domain.PackageFilter) ([]*domain.TourPackage, int, error)

	BusyDates(ctx context.Context, guideID uuid.UUID) ([]time.Time, error)
	AddBusyDate(ctx context.Context, guideID, packageID uuid.UUID, date time.Time) error
	RemoveBusyDate(ctx context.Context, packageID uuid.UUID) error
	RebuildBusyIndex(ctx context.Context) (int, error)
}

type guideRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.GuideProfile, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.GuideProfile, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.GuideProfile, error)
	ListByStatus(ctx context.Context, status domain.GuideStatus) ([]*domain.GuideProfile, error)
}

type auditLogger interface {
	Log(ctx context.Context, entry domain.AuditEntry) error
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
	RunReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

// BusyIndexSubjectID is the audit subject id of busy-index rebuilds.
var BusyIndexSubjectID = uuid.NewSHA1(uuid.NameSpaceOID, []byte("guide_busy_dates"))

// Service is the assignment engine.
type Service struct {
	packages packageRepo
	guides   guideRepo
	audit    auditLogger
	tx       txManager
	log      *slog.Logger
	now      func() time.Time
}

// NewService creates a new assignment service.
func NewService(
	log *slog.Logger,
	packages packageRepo,
	guides guideRepo,
	audit auditLogger,
	tx txManager,
) *Service {
	return &Service{
		packages: packages,
		guides:   guides,
		audit:    audit,
		tx:       tx,
		log:      log.With("service", "assignment"),
		now:      time.Now,
	}
}

func (s *Service) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}
