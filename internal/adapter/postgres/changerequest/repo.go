// Package changerequest implements the profile change request repository
// using PostgreSQL.
package changerequest

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

// Repo provides change request persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new change request repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const columns = `id, guide_id, field, old_value, new_value, evidence_ref, status,
    rejection_reason, requested_at, requested_by, decided_at, decided_by`

const insertSQL = `
INSERT INTO profile_change_requests (` + columns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
RETURNING ` + columns

const getByIDSQL = `SELECT ` + columns + ` FROM profile_change_requests WHERE id = $1`

const getByIDForUpdateSQL = getByIDSQL + ` FOR UPDATE`

const saveDecisionSQL = `
UPDATE profile_change_requests
SET status = $2, rejection_reason = $3, decided_at = $4, decided_by = $5
WHERE id = $1 AND status = 'PENDING'`

const setEvidenceSQL = `
UPDATE profile_change_requests
SET evidence_ref = $2
WHERE id = $1 AND status = 'PENDING'`

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Create inserts a new change request. Returns domain.ErrNotFound if the
// target profile does not exist.
func (r *Repo) Create(ctx context.Context, req *domain.ProfileChangeRequest) (*domain.ProfileChangeRequest, error) {
	row := postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, insertSQL,
		req.ID, req.GuideID, string(req.Field),
		postgres.TextArray(req.OldValue), postgres.TextArray(req.NewValue), req.EvidenceRef,
		string(req.Status), req.RejectionReason,
		req.RequestedAt, req.RequestedBy, req.DecidedAt, req.DecidedBy,
	)
	created, err := scanRequest(row)
	if err != nil {
		return nil, postgres.MapError(err, "profile_change_request", req.ID)
	}
	return created, nil
}

// SaveDecision persists the terminal status of a pending request.
// Returns domain.ErrInvalidStateTransition if the row is no longer pending.
func (r *Repo) SaveDecision(ctx context.Context, req *domain.ProfileChangeRequest) error {
	tag, err := postgres.QuerierFromCtx(ctx, r.pool).Exec(ctx, saveDecisionSQL,
		req.ID, string(req.Status), req.RejectionReason, req.DecidedAt, req.DecidedBy,
	)
	if err != nil {
		return postgres.MapError(err, "profile_change_request", req.ID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("profile_change_request %s: %w", req.ID, domain.ErrInvalidStateTransition)
	}
	return nil
}

// SetEvidence attaches a supporting document reference to a pending request.
func (r *Repo) SetEvidence(ctx context.Context, id uuid.UUID, ref string) error {
	tag, err := postgres.QuerierFromCtx(ctx, r.pool).Exec(ctx, setEvidenceSQL, id, ref)
	if err != nil {
		return postgres.MapError(err, "profile_change_request", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("profile_change_request %s: %w", id, domain.ErrInvalidStateTransition)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByID returns a change request by primary key.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ProfileChangeRequest, error) {
	return r.get(ctx, getByIDSQL, id)
}

// GetByIDForUpdate returns a change request and locks its row until the
// surrounding transaction ends.
func (r *Repo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.ProfileChangeRequest, error) {
	return r.get(ctx, getByIDForUpdateSQL, id)
}

func (r *Repo) get(ctx context.Context, query string, id uuid.UUID) (*domain.ProfileChangeRequest, error) {
	req, err := scanRequest(postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		return nil, postgres.MapError(err, "profile_change_request", id)
	}
	return req, nil
}

// List returns change requests newest first with the total match count.
func (r *Repo) List(ctx context.Context, filter domain.ChangeRequestFilter) ([]*domain.ProfileChangeRequest, int, error) {
	page := filter.Page.Clamp()

	where := sq.And{}
	if filter.GuideID != nil {
		where = append(where, sq.Eq{"guide_id": *filter.GuideID})
	}
	if filter.Status != nil {
		where = append(where, sq.Eq{"status": string(*filter.Status)})
	}
	if filter.Field != nil {
		where = append(where, sq.Eq{"field": string(*filter.Field)})
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)

	countSQL, countArgs, err := postgres.Builder().
		Select("count(*)").From("profile_change_requests").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build change request count query: %w", err)
	}
	var total int
	if err := q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count profile_change_requests: %w", err)
	}

	listSQL, listArgs, err := postgres.Builder().
		Select(columns).From("profile_change_requests").Where(where).
		OrderBy("requested_at DESC", "id").
		Limit(uint64(page.Limit)).Offset(uint64(page.Offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build change request list query: %w", err)
	}

	rows, err := q.Query(ctx, listSQL, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list profile_change_requests: %w", err)
	}
	defer rows.Close()

	reqs := make([]*domain.ProfileChangeRequest, 0)
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan profile_change_request: %w", err)
		}
		reqs = append(reqs, req)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list profile_change_requests: %w", err)
	}
	return reqs, total, nil
}

// ---------------------------------------------------------------------------
// Scanning helpers
// ---------------------------------------------------------------------------

func scanRequest(row pgx.Row) (*domain.ProfileChangeRequest, error) {
	var (
		req    domain.ProfileChangeRequest
		field  string
		status string
	)
	err := row.Scan(
		&req.ID, &req.GuideID, &field, &req.OldValue, &req.NewValue, &req.EvidenceRef, &status,
		&req.RejectionReason, &req.RequestedAt, &req.RequestedBy, &req.DecidedAt, &req.DecidedBy,
	)
	if err != nil {
		return nil, err
	}
	req.Field = domain.ProfileField(field)
	req.Status = domain.DecisionStatus(status)
	req.RequestedAt = req.RequestedAt.UTC()
	if req.DecidedAt != nil {
		t := req.DecidedAt.UTC()
		req.DecidedAt = &t
	}
	return &req, nil
}
