package memory

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/google/uuid"

	"github.com/heartmarshall/tourops-backend/internal/domain"
)

// AuditRepo is the append-only audit log.
type AuditRepo struct {
	s *Store
}

func cloneEntry(e domain.AuditEntry) domain.AuditEntry {
	e.Reason = clonePtr(e.Reason)
	e.Changes = maps.Clone(e.Changes)
	return e
}

// Create appends an entry and assigns its sequence number.
func (r *AuditRepo) Create(ctx context.Context, entry domain.AuditEntry) (domain.AuditEntry, error) {
	st, done := r.s.write(ctx)
	defer done()

	for _, e := range st.audit {
		if e.ID == entry.ID {
			return domain.AuditEntry{}, fmt.Errorf("audit_entry %s: %w", entry.ID, domain.ErrAlreadyExists)
		}
	}
	st.seq++
	entry = cloneEntry(entry)
	entry.Seq = st.seq
	st.audit = append(st.audit, entry)
	return cloneEntry(entry), nil
}

// ListBySubject returns every entry for a subject in log order.
func (r *AuditRepo) ListBySubject(ctx context.Context, subjectType domain.SubjectType, subjectID uuid.UUID) ([]domain.AuditEntry, error) {
	st, done := r.s.read(ctx)
	defer done()

	out := make([]domain.AuditEntry, 0)
	for _, e := range st.audit {
		if e.SubjectType == subjectType && e.SubjectID == subjectID {
			out = append(out, cloneEntry(e))
		}
	}
	sortEntries(out)
	return out, nil
}

// CountBySubject returns the number of entries recorded for a subject.
func (r *AuditRepo) CountBySubject(ctx context.Context, subjectType domain.SubjectType, subjectID uuid.UUID) (int, error) {
	entries, err := r.ListBySubject(ctx, subjectType, subjectID)
	return len(entries), err
}

// List returns entries matching the filter in log order with the total count.
func (r *AuditRepo) List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, int, error) {
	st, done := r.s.read(ctx)
	defer done()

	var matched []domain.AuditEntry
	for _, e := range st.audit {
		if filter.SubjectType != nil && e.SubjectType != *filter.SubjectType {
			continue
		}
		if filter.Actor != nil && e.Actor != *filter.Actor {
			continue
		}
		if filter.Action != nil && e.Action != *filter.Action {
			continue
		}
		if filter.Since != nil && e.CreatedAt.Before(*filter.Since) {
			continue
		}
		if filter.Until != nil && !e.CreatedAt.Before(*filter.Until) {
			continue
		}
		matched = append(matched, cloneEntry(e))
	}
	sortEntries(matched)
	return paginate(matched, filter.Page), len(matched), nil
}

func sortEntries(entries []domain.AuditEntry) {
	slices.SortFunc(entries, func(a, b domain.AuditEntry) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.Seq, b.Seq)
	})
}
