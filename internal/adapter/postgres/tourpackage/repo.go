// Package tourpackage implements the tour package repository and the derived
// guide busy-date index using PostgreSQL.
package tourpackage

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/heartmarshall/tourops-backend/internal/adapter/postgres"
	"github.com/heartmarshall/tourops-backend/internal/domain"
)

// Repo provides tour package persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new tour package repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const columns = `id, name, tour_date, required_languages, required_areas, assigned_guide_id, updated_at`

// Upsert never touches assigned_guide_id; only assignment writes it.
const upsertSQL = `
INSERT INTO tour_packages (id, name, tour_date, required_languages, required_areas, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (id) DO UPDATE
SET name = EXCLUDED.name,
    tour_date = EXCLUDED.tour_date,
    required_languages = EXCLUDED.required_languages,
    required_areas = EXCLUDED.required_areas,
    updated_at = EXCLUDED.updated_at
RETURNING ` + columns

const getByIDSQL = `SELECT ` + columns + ` FROM tour_packages WHERE id = $1`

const getByIDForUpdateSQL = getByIDSQL + ` FOR UPDATE`

const listAssignedSQL = `
SELECT ` + columns + `
FROM tour_packages
WHERE assigned_guide_id IS NOT NULL
ORDER BY tour_date, id`

const listAssignedToGuideSQL = `
SELECT ` + columns + `
FROM tour_packages
WHERE assigned_guide_id = $1
ORDER BY tour_date, id`

const setAssignedGuideSQL = `
UPDATE tour_packages
SET assigned_guide_id = $2, updated_at = now()
WHERE id = $1`

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Upsert creates the package or updates its directory attributes.
func (r *Repo) Upsert(ctx context.Context, pkg *domain.TourPackage) (*domain.TourPackage, error) {
	row := postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, upsertSQL,
		pkg.ID, pkg.Name, domain.TruncateDay(pkg.Date),
		postgres.TextArray(pkg.RequiredLanguages), postgres.TextArray(pkg.RequiredAreas),
		pkg.UpdatedAt,
	)
	saved, err := scanPackage(row)
	if err != nil {
		return nil, postgres.MapError(err, "tour_package", pkg.ID)
	}
	return saved, nil
}

// SetAssignedGuide binds (guideID != nil) or clears the package's guide.
func (r *Repo) SetAssignedGuide(ctx context.Context, packageID uuid.UUID, guideID *uuid.UUID) error {
	tag, err := postgres.QuerierFromCtx(ctx, r.pool).Exec(ctx, setAssignedGuideSQL, packageID, guideID)
	if err != nil {
		return postgres.MapError(err, "tour_package", packageID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("tour_package %s: %w", packageID, domain.ErrNotFound)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByID returns a package by primary key.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.TourPackage, error) {
	return r.get(ctx, getByIDSQL, id)
}

// GetByIDForUpdate returns a package and locks its row until the surrounding
// transaction ends.
func (r *Repo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.TourPackage, error) {
	return r.get(ctx, getByIDForUpdateSQL, id)
}

func (r *Repo) get(ctx context.Context, query string, id uuid.UUID) (*domain.TourPackage, error) {
	pkg, err := scanPackage(postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		return nil, postgres.MapError(err, "tour_package", id)
	}
	return pkg, nil
}

// ListAssigned returns every package that has a guide, or only the packages
// of one guide when guideID is set.
func (r *Repo) ListAssigned(ctx context.Context, guideID *uuid.UUID) ([]*domain.TourPackage, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var (
		rows pgx.Rows
		err  error
	)
	if guideID != nil {
		rows, err = q.Query(ctx, listAssignedToGuideSQL, *guideID)
	} else {
		rows, err = q.Query(ctx, listAssignedSQL)
	}
	if err != nil {
		return nil, fmt.Errorf("list assigned tour_packages: %w", err)
	}
	defer rows.Close()

	return scanPackages(rows)
}

// List returns packages ordered by date with the total match count.
func (r *Repo) List(ctx context.Context, filter domain.PackageFilter) ([]*domain.TourPackage, int, error) {
	page := filter.Page.Clamp()

	where := sq.And{}
	if filter.Assigned != nil {
		if *filter.Assigned {
			where = append(where, sq.NotEq{"assigned_guide_id": nil})
		} else {
			where = append(where, sq.Eq{"assigned_guide_id": nil})
		}
	}
	if filter.GuideID != nil {
		where = append(where, sq.Eq{"assigned_guide_id": *filter.GuideID})
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)

	countSQL, countArgs, err := postgres.Builder().
		Select("count(*)").From("tour_packages").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build package count query: %w", err)
	}
	var total int
	if err := q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count tour_packages: %w", err)
	}

	listSQL, listArgs, err := postgres.Builder().
		Select(columns).From("tour_packages").Where(where).
		OrderBy("tour_date", "id").
		Limit(uint64(page.Limit)).Offset(uint64(page.Offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build package list query: %w", err)
	}

	rows, err := q.Query(ctx, listSQL, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list tour_packages: %w", err)
	}
	defer rows.Close()

	pkgs, err := scanPackages(rows)
	if err != nil {
		return nil, 0, err
	}
	return pkgs, total, nil
}

// ---------------------------------------------------------------------------
// Scanning helpers
// ---------------------------------------------------------------------------

func scanPackage(row pgx.Row) (*domain.TourPackage, error) {
	var pkg domain.TourPackage
	err := row.Scan(
		&pkg.ID, &pkg.Name, &pkg.Date, &pkg.RequiredLanguages, &pkg.RequiredAreas,
		&pkg.AssignedGuideID, &pkg.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	pkg.Date = domain.TruncateDay(pkg.Date)
	pkg.UpdatedAt = pkg.UpdatedAt.UTC()
	return &pkg, nil
}

func scanPackages(rows pgx.Rows) ([]*domain.TourPackage, error) {
	pkgs := make([]*domain.TourPackage, 0)
	for rows.Next() {
		pkg, err := scanPackage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tour_package: %w", err)
		}
		pkgs = append(pkgs, pkg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan tour_packages: %w", err)
	}
	return pkgs, nil
}
