// Package audit implements the audit log repository using PostgreSQL.
// Entries are append-only; the table rejects UPDATE and DELETE.
package audit

import (
	"context"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/heartmarshall/tourops-backend/internal/adapter/postgres"
	"github.com/heartmarshall/tourops-backend/internal/domain"
)

// Repo provides audit log persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new audit repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const entryColumns = `seq, id, subject_type, subject_id, action, actor, status, reason, changes, created_at`

const insertSQL = `
INSERT INTO audit_entries (id, subject_type, subject_id, action, actor, status, reason, changes, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING ` + entryColumns

const listBySubjectSQL = `
SELECT ` + entryColumns + `
FROM audit_entries
WHERE subject_type = $1 AND subject_id = $2
ORDER BY created_at, seq`

const countBySubjectSQL = `
SELECT count(*) FROM audit_entries WHERE subject_type = $1 AND subject_id = $2`

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Create inserts a new audit entry and returns it with its sequence number.
func (r *Repo) Create(ctx context.Context, entry domain.AuditEntry) (domain.AuditEntry, error) {
	var changes []byte
	if entry.Changes != nil {
		var err error
		changes, err = json.Marshal(entry.Changes)
		if err != nil {
			return domain.AuditEntry{}, fmt.Errorf("audit_entry marshal changes: %w", err)
		}
	}

	row := postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, insertSQL,
		entry.ID, string(entry.SubjectType), entry.SubjectID, string(entry.Action),
		entry.Actor, entry.Status, entry.Reason, changes, entry.CreatedAt,
	)
	created, err := scanEntry(row)
	if err != nil {
		return domain.AuditEntry{}, postgres.MapError(err, "audit_entry", entry.ID)
	}
	return created, nil
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// ListBySubject returns every entry for a subject in log order.
// Returns an empty slice (not nil) when the subject has no history.
func (r *Repo) ListBySubject(ctx context.Context, subjectType domain.SubjectType, subjectID uuid.UUID) ([]domain.AuditEntry, error) {
	rows, err := postgres.QuerierFromCtx(ctx, r.pool).Query(ctx, listBySubjectSQL, string(subjectType), subjectID)
	if err != nil {
		return nil, fmt.Errorf("list audit_entries by subject: %w", err)
	}
	defer rows.Close()

	entries, err := scanEntries(rows)
	if err != nil {
		return nil, fmt.Errorf("list audit_entries by subject: %w", err)
	}
	return entries, nil
}

// CountBySubject returns the number of entries recorded for a subject.
func (r *Repo) CountBySubject(ctx context.Context, subjectType domain.SubjectType, subjectID uuid.UUID) (int, error) {
	var n int
	err := postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, countBySubjectSQL, string(subjectType), subjectID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count audit_entries by subject: %w", err)
	}
	return n, nil
}

// List returns entries matching the filter in log order together with the
// total number of matches.
func (r *Repo) List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, int, error) {
	page := filter.Page.Clamp()

	where := sq.And{}
	if filter.SubjectType != nil {
		where = append(where, sq.Eq{"subject_type": string(*filter.SubjectType)})
	}
	if filter.Actor != nil {
		where = append(where, sq.Eq{"actor": *filter.Actor})
	}
	if filter.Action != nil {
		where = append(where, sq.Eq{"action": string(*filter.Action)})
	}
	if filter.Since != nil {
		where = append(where, sq.GtOrEq{"created_at": *filter.Since})
	}
	if filter.Until != nil {
		where = append(where, sq.Lt{"created_at": *filter.Until})
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)

	countSQL, countArgs, err := postgres.Builder().
		Select("count(*)").From("audit_entries").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build audit count query: %w", err)
	}
	var total int
	if err := q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count audit_entries: %w", err)
	}

	listSQL, listArgs, err := postgres.Builder().
		Select(entryColumns).From("audit_entries").Where(where).
		OrderBy("created_at", "seq").
		Limit(uint64(page.Limit)).Offset(uint64(page.Offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build audit list query: %w", err)
	}

	rows, err := q.Query(ctx, listSQL, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list audit_entries: %w", err)
	}
	defer rows.Close()

	entries, err := scanEntries(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("list audit_entries: %w", err)
	}
	return entries, total, nil
}

// ---------------------------------------------------------------------------
// Scanning helpers
// ---------------------------------------------------------------------------

func scanEntry(row pgx.Row) (domain.AuditEntry, error) {
	var (
		e           domain.AuditEntry
		subjectType string
		action      string
		changes     []byte
	)
	err := row.Scan(&e.Seq, &e.ID, &subjectType, &e.SubjectID, &action, &e.Actor, &e.Status, &e.Reason, &changes, &e.CreatedAt)
	if err != nil {
		return domain.AuditEntry{}, err
	}
	e.SubjectType = domain.SubjectType(subjectType)
	e.Action = domain.AuditAction(action)
	e.CreatedAt = e.CreatedAt.UTC()

	if len(changes) > 0 {
		if err := json.Unmarshal(changes, &e.Changes); err != nil {
			return domain.AuditEntry{}, fmt.Errorf("audit_entry %s unmarshal changes: %w", e.ID, err)
		}
	}
	return e, nil
}

func scanEntries(rows pgx.Rows) ([]domain.AuditEntry, error) {
	entries := make([]domain.AuditEntry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
