package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Sentinel errors used across all layers.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrValidation    = errors.New("validation error")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrConflict      = errors.New("conflict")

	// Workflow and assignment errors.
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrStaleRequest           = errors.New("stale change request")
	ErrMissingDocument        = errors.New("missing supporting document")
	ErrPackageAlreadyAssigned = errors.New("package already assigned")
	ErrPackageNotAssigned     = errors.New("package not assigned")
	ErrIneligibleGuide        = errors.New("ineligible guide")
)

// FieldError describes a validation error for a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError contains a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s: %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	return fmt.Sprintf("validation: %d errors", len(e.Errors))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Errors: []FieldError{{Field: field, Message: message}},
	}
}

// NewValidationErrors creates a ValidationError from multiple field errors.
func NewValidationErrors(errs []FieldError) *ValidationError {
	return &ValidationError{Errors: errs}
}

// IneligibleGuideError carries every constraint the guide failed for a package.
type IneligibleGuideError struct {
	GuideID   uuid.UUID
	PackageID uuid.UUID
	Reasons   []IneligibilityReason
}

func (e *IneligibleGuideError) Error() string {
	reasons := make([]string, len(e.Reasons))
	for i, r := range e.Reasons {
		reasons[i] = r.String()
	}
	return fmt.Sprintf("guide %s for package %s: %s", e.GuideID, e.PackageID, strings.Join(reasons, ", "))
}

func (e *IneligibleGuideError) Unwrap() error { return ErrIneligibleGuide }

// NewTransitionError reports an attempt to leave a terminal or wrong state.
func NewTransitionError(subject SubjectType, id uuid.UUID, from string, to string) error {
	return fmt.Errorf("%s %s: %s -> %s: %w", strings.ToLower(subject.String()), id, from, to, ErrInvalidStateTransition)
}
