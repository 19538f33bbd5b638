// Package application implements the guide application repository using PostgreSQL.
package application

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

// Repo provides guide application persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new application repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const columns = `id, first_name, last_name, age, sex, phone, email, guide_type,
    languages, service_areas, documents, status, rejection_reason,
    submitted_at, submitted_by, decided_at, decided_by`

const insertSQL = `
INSERT INTO guide_applications (` + columns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
RETURNING ` + columns

const getByIDSQL = `SELECT ` + columns + ` FROM guide_applications WHERE id = $1`

const getByIDForUpdateSQL = getByIDSQL + ` FOR UPDATE`

// The status guard makes a decision on an already decided application a no-op.
const saveDecisionSQL = `
UPDATE guide_applications
SET status = $2, rejection_reason = $3, decided_at = $4, decided_by = $5
WHERE id = $1 AND status = 'PENDING'`

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Create inserts a new application.
func (r *Repo) Create(ctx context.Context, app *domain.GuideApplication) (*domain.GuideApplication, error) {
	row := postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, insertSQL,
		app.ID, app.Applicant.FirstName, app.Applicant.LastName, app.Applicant.Age,
		app.Applicant.Sex, app.Applicant.Phone, app.Applicant.Email, app.Applicant.GuideType,
		postgres.TextArray(app.Languages), postgres.TextArray(app.ServiceAreas), postgres.TextArray(app.Documents),
		string(app.Status), app.RejectionReason,
		app.SubmittedAt, app.SubmittedBy, app.DecidedAt, app.DecidedBy,
	)
	created, err := scanApplication(row)
	if err != nil {
		return nil, postgres.MapError(err, "guide_application", app.ID)
	}
	return created, nil
}

// SaveDecision persists the terminal status of a pending application.
// Returns domain.ErrInvalidStateTransition if the row is no longer pending.
func (r *Repo) SaveDecision(ctx context.Context, app *domain.GuideApplication) error {
	tag, err := postgres.QuerierFromCtx(ctx, r.pool).Exec(ctx, saveDecisionSQL,
		app.ID, string(app.Status), app.RejectionReason, app.DecidedAt, app.DecidedBy,
	)
	if err != nil {
		return postgres.MapError(err, "guide_application", app.ID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("guide_application %s: %w", app.ID, domain.ErrInvalidStateTransition)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByID returns an application by primary key.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.GuideApplication, error) {
	return r.get(ctx, getByIDSQL, id)
}

// GetByIDForUpdate returns an application and locks its row until the
// surrounding transaction ends.
func (r *Repo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.GuideApplication, error) {
	return r.get(ctx, getByIDForUpdateSQL, id)
}

func (r *Repo) get(ctx context.Context, query string, id uuid.UUID) (*domain.GuideApplication, error) {
	app, err := scanApplication(postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		return nil, postgres.MapError(err, "guide_application", id)
	}
	return app, nil
}

// List returns applications newest first with the total match count.
func (r *Repo) List(ctx context.Context, filter domain.ApplicationFilter) ([]*domain.GuideApplication, int, error) {
	page := filter.Page.Clamp()

	where := sq.And{}
	if filter.Status != nil {
		where = append(where, sq.Eq{"status": string(*filter.Status)})
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)

	countSQL, countArgs, err := postgres.Builder().
		Select("count(*)").From("guide_applications").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build application count query: %w", err)
	}
	var total int
	if err := q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count guide_applications: %w", err)
	}

	listSQL, listArgs, err := postgres.Builder().
		Select(columns).From("guide_applications").Where(where).
		OrderBy("submitted_at DESC", "id").
		Limit(uint64(page.Limit)).Offset(uint64(page.Offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build application list query: %w", err)
	}

	rows, err := q.Query(ctx, listSQL, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list guide_applications: %w", err)
	}
	defer rows.Close()

	apps := make([]*domain.GuideApplication, 0)
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan guide_application: %w", err)
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list guide_applications: %w", err)
	}
	return apps, total, nil
}

// ---------------------------------------------------------------------------
// Scanning helpers
// ---------------------------------------------------------------------------

func scanApplication(row pgx.Row) (*domain.GuideApplication, error) {
	var (
		app    domain.GuideApplication
		status string
	)
	err := row.Scan(
		&app.ID, &app.Applicant.FirstName, &app.Applicant.LastName, &app.Applicant.Age,
		&app.Applicant.Sex, &app.Applicant.Phone, &app.Applicant.Email, &app.Applicant.GuideType,
		&app.Languages, &app.ServiceAreas, &app.Documents, &status, &app.RejectionReason,
		&app.SubmittedAt, &app.SubmittedBy, &app.DecidedAt, &app.DecidedBy,
	)
	if err != nil {
		return nil, err
	}
	app.Status = domain.DecisionStatus(status)
	app.SubmittedAt = app.SubmittedAt.UTC()
	if app.DecidedAt != nil {
		t := app.DecidedAt.UTC()
		app.DecidedAt = &t
	}
	return &app, nil
}
