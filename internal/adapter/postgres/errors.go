package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/heartmarshall/tourops-backend/internal/domain"
)

// MapError converts pgx/pgconn errors to domain errors.
// context.DeadlineExceeded and context.Canceled are NOT mapped; they pass through.
func MapError(err error, entity string, id uuid.UUID) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s %s: %w", entity, id, err)
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", entity, id, domain.ErrNotFound)
	}

	if sentinel := classify(err); sentinel != nil {
		return fmt.Errorf("%s %s: %w", entity, id, sentinel)
	}

	return fmt.Errorf("%s %s: %w", entity, id, err)
}

// classify returns the domain sentinel for a server error code, or nil.
// Lock and serialization failures mean a concurrent decision won the row;
// they surface as domain.ErrConflict and the caller may retry.
func classify(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return nil
	}
	switch pgErr.Code {
	case "23505": // unique_violation
		return domain.ErrAlreadyExists
	case "23503": // foreign_key_violation
		return domain.ErrNotFound
	case "23514", "23502": // check_violation, not_null_violation
		return domain.ErrValidation
	case "55P03", "40001", "40P01": // lock_not_available, serialization_failure, deadlock_detected
		return domain.ErrConflict
	}
	return nil
}
