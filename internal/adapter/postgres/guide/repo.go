// Package guide implements the guide profile repository using PostgreSQL.
package guide

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

// Repo provides guide profile persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new guide profile repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const columns = `id, first_name, last_name, age, sex, phone, email, guide_type,
    languages, service_areas, status, created_at, updated_at`

const insertSQL = `
INSERT INTO guide_profiles (` + columns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
RETURNING ` + columns

const getByIDSQL = `SELECT ` + columns + ` FROM guide_profiles WHERE id = $1`

const getByIDForUpdateSQL = getByIDSQL + ` FOR UPDATE`

const getByIDsSQL = `SELECT ` + columns + ` FROM guide_profiles WHERE id = ANY($1::uuid[])`

const listByStatusSQL = `SELECT ` + columns + ` FROM guide_profiles WHERE status = $1 ORDER BY last_name, first_name, id`

const updateSQL = `
UPDATE guide_profiles
SET phone = $2, email = $3, languages = $4, service_areas = $5, status = $6, updated_at = $7
WHERE id = $1
RETURNING ` + columns

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Create inserts a new profile. Returns domain.ErrAlreadyExists if a profile
// with the same ID exists.
func (r *Repo) Create(ctx context.Context, p *domain.GuideProfile) (*domain.GuideProfile, error) {
	row := postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, insertSQL,
		p.ID, p.Applicant.FirstName, p.Applicant.LastName, p.Applicant.Age,
		p.Applicant.Sex, p.Applicant.Phone, p.Applicant.Email, p.Applicant.GuideType,
		postgres.TextArray(p.Languages), postgres.TextArray(p.ServiceAreas),
		string(p.Status), p.CreatedAt, p.UpdatedAt,
	)
	created, err := scanProfile(row)
	if err != nil {
		return nil, postgres.MapError(err, "guide_profile", p.ID)
	}
	return created, nil
}

// Update writes the mutable attributes of a profile: contact fields,
// language and area sets, and status.
func (r *Repo) Update(ctx context.Context, p *domain.GuideProfile) (*domain.GuideProfile, error) {
	row := postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, updateSQL,
		p.ID, p.Applicant.Phone, p.Applicant.Email,
		postgres.TextArray(p.Languages), postgres.TextArray(p.ServiceAreas),
		string(p.Status), p.UpdatedAt,
	)
	updated, err := scanProfile(row)
	if err != nil {
		return nil, postgres.MapError(err, "guide_profile", p.ID)
	}
	return updated, nil
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByID returns a profile by primary key.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.GuideProfile, error) {
	return r.get(ctx, getByIDSQL, id)
}

// GetByIDForUpdate returns a profile and locks its row until the surrounding
// transaction ends.
func (r *Repo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.GuideProfile, error) {
	return r.get(ctx, getByIDForUpdateSQL, id)
}

func (r *Repo) get(ctx context.Context, query string, id uuid.UUID) (*domain.GuideProfile, error) {
	p, err := scanProfile(postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		return nil, postgres.MapError(err, "guide_profile", id)
	}
	return p, nil
}

// GetByIDs returns the profiles that exist among ids, in no particular order
// (batch for DataLoader).
func (r *Repo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.GuideProfile, error) {
	if len(ids) == 0 {
		return []*domain.GuideProfile{}, nil
	}

	rows, err := postgres.QuerierFromCtx(ctx, r.pool).Query(ctx, getByIDsSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("get guide_profiles by ids: %w", err)
	}
	defer rows.Close()

	return scanProfiles(rows)
}

// ListByStatus returns every profile in the given status ordered by name.
func (r *Repo) ListByStatus(ctx context.Context, status domain.GuideStatus) ([]*domain.GuideProfile, error) {
	rows, err := postgres.QuerierFromCtx(ctx, r.pool).Query(ctx, listByStatusSQL, string(status))
	if err != nil {
		return nil, fmt.Errorf("list guide_profiles by status: %w", err)
	}
	defer rows.Close()

	return scanProfiles(rows)
}

// List returns profiles ordered by name with the total match count.
func (r *Repo) List(ctx context.Context, filter domain.GuideFilter) ([]*domain.GuideProfile, int, error) {
	page := filter.Page.Clamp()

	where := sq.And{}
	if filter.Status != nil {
		where = append(where, sq.Eq{"status": string(*filter.Status)})
	}
	if filter.Language != nil {
		where = append(where, sq.Expr("languages @> ARRAY[?]::text[]", domain.NormalizeText(*filter.Language)))
	}
	if filter.Area != nil {
		where = append(where, sq.Expr("service_areas @> ARRAY[?]::text[]", domain.NormalizeText(*filter.Area)))
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)

	countSQL, countArgs, err := postgres.Builder().
		Select("count(*)").From("guide_profiles").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build guide count query: %w", err)
	}
	var total int
	if err := q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count guide_profiles: %w", err)
	}

	listSQL, listArgs, err := postgres.Builder().
		Select(columns).From("guide_profiles").Where(where).
		OrderBy("last_name", "first_name", "id").
		Limit(uint64(page.Limit)).Offset(uint64(page.Offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build guide list query: %w", err)
	}

	rows, err := q.Query(ctx, listSQL, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list guide_profiles: %w", err)
	}
	defer rows.Close()

	profiles, err := scanProfiles(rows)
	if err != nil {
		return nil, 0, err
	}
	return profiles, total, nil
}

// ---------------------------------------------------------------------------
// Scanning helpers
// ---------------------------------------------------------------------------

func scanProfile(row pgx.Row) (*domain.GuideProfile, error) {
	var (
		p      domain.GuideProfile
		status string
	)
	err := row.Scan(
		&p.ID, &p.Applicant.FirstName, &p.Applicant.LastName, &p.Applicant.Age,
		&p.Applicant.Sex, &p.Applicant.Phone, &p.Applicant.Email, &p.Applicant.GuideType,
		&p.Languages, &p.ServiceAreas, &status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Status = domain.GuideStatus(status)
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return &p, nil
}

func scanProfiles(rows pgx.Rows) ([]*domain.GuideProfile, error) {
	profiles := make([]*domain.GuideProfile, 0)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan guide_profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan guide_profiles: %w", err)
	}
	return profiles, nil
}
