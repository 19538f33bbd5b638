// Package audit is the append-only audit log: the single write path for
// decision records and the read side behind every history view.
package audit

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/tourops-backend/internal/domain"
)

type auditRepo interface {
	Create(ctx context.Context, entry domain.AuditEntry) (domain.AuditEntry, error)
	ListBySubject(ctx context.Context, subjectType domain.SubjectType, subjectID uuid.UUID) ([]domain.AuditEntry, error)
	List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, int, error)
}

// Service appends and reads audit entries.
type Service struct {
	repo auditRepo
	log  *slog.Logger
	now  func() time.Time
}

// NewService creates a new audit service.
func NewService(log *slog.Logger, repo auditRepo) *Service {
	return &Service{
		repo: repo,
		log:  log.With("service", "audit"),
		now:  time.Now,
	}
}

// Log appends one entry. It fills ID and CreatedAt when unset and rejects
// entries without subject, action or actor. Call it with the transaction
// context of the decision it records.
func (s *Service) Log(ctx context.Context, entry domain.AuditEntry) error {
	_, err := s.Append(ctx, entry)
	return err
}

// Append is Log returning the stored entry.
func (s *Service) Append(ctx context.Context, entry domain.AuditEntry) (domain.AuditEntry, error) {
	if err := entry.Validate(); err != nil {
		return domain.AuditEntry{}, err
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now().UTC().Truncate(time.Microsecond)
	}

	created, err := s.repo.Create(ctx, entry)
	if err != nil {
		return domain.AuditEntry{}, fmt.Errorf("append audit entry: %w", err)
	}
	return created, nil
}

// EntriesFor returns the history of one subject ordered by time, ties
// broken by sequence.
func (s *Service) EntriesFor(ctx context.Context, subjectType domain.SubjectType, subjectID uuid.UUID) ([]domain.AuditEntry, error) {
	if !subjectType.IsValid() {
		return nil, domain.NewValidationError("subject_type", "unknown subject type")
	}
	entries, err := s.repo.ListBySubject(ctx, subjectType, subjectID)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	return entries, nil
}

// EntriesForAll merges the histories of several subjects into one ordered
// list.
func (s *Service) EntriesForAll(ctx context.Context, subjects []domain.SubjectRef) ([]domain.AuditEntry, error) {
	var merged []domain.AuditEntry
	for _, ref := range subjects {
		entries, err := s.EntriesFor(ctx, ref.Type, ref.ID)
		if err != nil {
			return nil, err
		}
		merged = append(merged, entries...)
	}
	SortEntries(merged)
	if merged == nil {
		merged = []domain.AuditEntry{}
	}
	return merged, nil
}

// ListResult is a page of audit entries.
type ListResult struct {
	Entries []domain.AuditEntry
	Total   int
}

// List returns a filtered page of the log.
func (s *Service) List(ctx context.Context, filter domain.AuditFilter) (*ListResult, error) {
	if filter.SubjectType != nil && !filter.SubjectType.IsValid() {
		return nil, domain.NewValidationError("subject_type", "unknown subject type")
	}
	if filter.Action != nil && !filter.Action.IsValid() {
		return nil, domain.NewValidationError("action", "unknown action")
	}
	if filter.Since != nil && filter.Until != nil && !filter.Since.Before(*filter.Until) {
		return nil, domain.NewValidationError("since", "must be before until")
	}

	entries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	return &ListResult{Entries: entries, Total: total}, nil
}

// SortEntries orders entries by CreatedAt, then Seq.
func SortEntries(entries []domain.AuditEntry) {
	slices.SortStableFunc(entries, func(a, b domain.AuditEntry) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		switch {
		case a.Seq < b.Seq:
			return -1
		case a.Seq > b.Seq:
			return 1
		}
		return 0
	})
}
