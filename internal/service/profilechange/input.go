package profilechange

import (
	"strings"

	"github.com/google/uuid"

	"github.com/heartmarshall/tourops-backend/internal/domain"
)

// SubmitInput holds a requested change of one profile field.
type SubmitInput struct {
	GuideID     uuid.UUID
	Field       domain.ProfileField
	NewValue    []string
	EvidenceRef string
}

// Validate checks the field and the shape of the new value. Comparison with
// the live value happens in Submit.
func (i SubmitInput) Validate() error {
	var errs []domain.FieldError

	if !i.Field.IsValid() {
		errs = append(errs, domain.FieldError{Field: "field", Message: "must be LANGUAGE, SERVICE_AREA, PHONE or EMAIL"})
	}

	value := domain.NormalizeFieldValue(i.Field, i.NewValue)
	switch {
	case len(value) == 0:
		errs = append(errs, domain.FieldError{Field: "new_value", Message: "required"})
	case i.Field == domain.ProfileFieldPhone && !domain.IsValidPhone(value[0]):
		errs = append(errs, domain.FieldError{Field: "new_value", Message: "invalid phone"})
	case i.Field == domain.ProfileFieldEmail && !domain.IsValidEmail(value[0]):
		errs = append(errs, domain.FieldError{Field: "new_value", Message: "invalid email"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// AttachEvidenceInput attaches a document reference to a pending request.
type AttachEvidenceInput struct {
	RequestID uuid.UUID
	Reference string
}

func (i AttachEvidenceInput) Validate() error {
	if strings.TrimSpace(i.Reference) == "" {
		return domain.NewValidationError("reference", "required")
	}
	return nil
}

// RejectInput holds the parameters for rejecting a change request.
type RejectInput struct {
	RequestID uuid.UUID
	Reason    string
}

func (i RejectInput) Validate() error {
	if strings.TrimSpace(i.Reason) == "" {
		return domain.NewValidationError("reason", "required")
	}
	return nil
}
