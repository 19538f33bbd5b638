package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// AuditEntry is an immutable record of a decision. Seq is assigned by
// storage and breaks ties between entries with the same CreatedAt.
type AuditEntry struct {
	ID          uuid.UUID
	Seq         int64
	SubjectType SubjectType
	SubjectID   uuid.UUID
	Action      AuditAction
	Actor       string
	Status      string
	Reason      *string
	Changes     map[string]any
	CreatedAt   time.Time
}

// Validate checks the fields every entry must carry.
func (e AuditEntry) Validate() error {
	var errs []FieldError
	if !e.SubjectType.IsValid() {
		errs = append(errs, FieldError{Field: "subject_type", Message: "required"})
	}
	if e.SubjectID == uuid.Nil {
		errs = append(errs, FieldError{Field: "subject_id", Message: "required"})
	}
	if !e.Action.IsValid() {
		errs = append(errs, FieldError{Field: "action", Message: "required"})
	}
	if strings.TrimSpace(e.Actor) == "" {
		errs = append(errs, FieldError{Field: "actor", Message: "required"})
	}
	if len(errs) > 0 {
		return NewValidationErrors(errs)
	}
	return nil
}

// FieldChange builds the structured payload of a profile field change.
func FieldChange(field ProfileField, oldValue, newValue []string) map[string]any {
	return map[string]any{
		"field": field.String(),
		"old":   oldValue,
		"new":   newValue,
	}
}

// OptionalReason returns nil for blank reasons.
func OptionalReason(reason string) *string {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil
	}
	return &reason
}

// SubjectRef identifies one audited subject.
type SubjectRef struct {
	Type SubjectType
	ID   uuid.UUID
}
