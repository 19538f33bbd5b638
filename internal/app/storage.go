package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/tourops-backend/internal/adapter/memory"
	"github.com/heartmarshall/tourops-backend/internal/adapter/postgres"
	"github.com/heartmarshall/tourops-backend/internal/adapter/postgres/application"
	"github.com/heartmarshall/tourops-backend/internal/adapter/postgres/audit"
	"github.com/heartmarshall/tourops-backend/internal/adapter/postgres/changerequest"
	"github.com/heartmarshall/tourops-backend/internal/adapter/postgres/guide"
	"github.com/heartmarshall/tourops-backend/internal/adapter/postgres/tourpackage"
	"github.com/heartmarshall/tourops-backend/internal/config"
	"github.com/heartmarshall/tourops-backend/internal/domain"
)

// The store interfaces below are the full method sets shared by the
// PostgreSQL and in-memory adapters.

type applicationStore interface {
	Create(ctx context.Context, app *domain.GuideApplication) (*domain.GuideApplication, error)
	SaveDecision(ctx context.Context, app *domain.GuideApplication) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.GuideApplication, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.GuideApplication, error)
	List(ctx context.Context, filter domain.ApplicationFilter) ([]*domain.GuideApplication, int, error)
}

type guideStore interface {
	Create(ctx context.Context, p *domain.GuideProfile) (*domain.GuideProfile, error)
	Update(ctx context.Context, p *domain.GuideProfile) (*domain.GuideProfile, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.GuideProfile, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.GuideProfile, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.GuideProfile, error)
	ListByStatus(ctx context.Context, status domain.GuideStatus) ([]*domain.GuideProfile, error)
	List(ctx context.Context, filter domain.GuideFilter) ([]*domain.GuideProfile, int, error)
}

type changeRequestStore interface {
	Create(ctx context.Context, req *domain.ProfileChangeRequest) (*domain.ProfileChangeRequest, error)
	SaveDecision(ctx context.Context, req *domain.ProfileChangeRequest) error
	SetEvidence(ctx context.Context, id uuid.UUID, ref string) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ProfileChangeRequest, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.ProfileChangeRequest, error)
	List(ctx context.Context, filter domain.ChangeRequestFilter) ([]*domain.ProfileChangeRequest, int, error)
}

type packageStore interface {
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

type auditStore interface {
	Create(ctx context.Context, entry domain.AuditEntry) (domain.AuditEntry, error)
	ListBySubject(ctx context.Context, subjectType domain.SubjectType, subjectID uuid.UUID) ([]domain.AuditEntry, error)
	List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, int, error)
}

type txRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
	RunReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

type pinger interface {
	Ping(ctx context.Context) error
}

// Storage bundles the repositories of one backend.
type Storage struct {
	Driver         string
	Applications   applicationStore
	Guides         guideStore
	ChangeRequests changeRequestStore
	Packages       packageStore
	Audit          auditStore
	Tx             txRunner
	Pinger         pinger
	close          func()
}

// Close releases the backend's resources.
func (s *Storage) Close() {
	if s.close != nil {
		s.close()
	}
}

// OpenStorage connects the configured backend. For postgres it applies
// pending migrations when database.auto_migrate is set.
func OpenStorage(ctx context.Context, cfg *config.Config, log *slog.Logger) (*Storage, error) {
	switch cfg.Storage.Driver {
	case config.StorageMemory:
		store := memory.New()
		log.WarnContext(ctx, "using in-memory storage, data is lost on restart")
		return &Storage{
			Driver:         config.StorageMemory,
			Applications:   store.Applications(),
			Guides:         store.Guides(),
			ChangeRequests: store.ChangeRequests(),
			Packages:       store.Packages(),
			Audit:          store.Audit(),
			Tx:             store,
			Pinger:         store,
		}, nil

	case config.StoragePostgres:
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		if cfg.Database.AutoMigrate {
			if err := postgres.Migrate(ctx, pool, log); err != nil {
				pool.Close()
				return nil, fmt.Errorf("migrate: %w", err)
			}
		}
		return &Storage{
			Driver:         config.StoragePostgres,
			Applications:   application.New(pool),
			Guides:         guide.New(pool),
			ChangeRequests: changerequest.New(pool),
			Packages:       tourpackage.New(pool),
			Audit:          audit.New(pool),
			Tx:             postgres.NewTxManager(pool, postgres.WithLockTimeout(cfg.Database.LockTimeout)),
			Pinger:         pool,
			close:          pool.Close,
		}, nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}
