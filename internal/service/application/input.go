package application

import (
	"strings"

	"github.com/google/uuid"

	"github.com/heartmarshall/tourops-backend/internal/domain"
)

const (
	MinApplicantAge = 18
	MaxApplicantAge = 80
	maxNameLength   = 100
)

// SubmitInput holds the applicant data of a new application.
type SubmitInput struct {
	FirstName    string
	LastName     string
	Age          int
	Sex          string
	Phone        string
	Email        string
	GuideType    string
	Languages    []string
	ServiceAreas []string
	Documents    []string
}

// Validate checks all fields and collects all errors.
func (i SubmitInput) Validate() error {
	var errs []domain.FieldError

	for _, f := range []struct{ name, value string }{
		{"first_name", i.FirstName},
		{"last_name", i.LastName},
	} {
		v := strings.TrimSpace(f.value)
		if v == "" {
			errs = append(errs, domain.FieldError{Field: f.name, Message: "required"})
		} else if len(v) > maxNameLength {
			errs = append(errs, domain.FieldError{Field: f.name, Message: "max 100 characters"})
		}
	}
	if i.Age < MinApplicantAge || i.Age > MaxApplicantAge {
		errs = append(errs, domain.FieldError{Field: "age", Message: "must be between 18 and 80"})
	}
	if strings.TrimSpace(i.Sex) == "" {
		errs = append(errs, domain.FieldError{Field: "sex", Message: "required"})
	}
	if !domain.IsValidPhone(i.Phone) {
		errs = append(errs, domain.FieldError{Field: "phone", Message: "invalid format"})
	}
	if !domain.IsValidEmail(i.Email) {
		errs = append(errs, domain.FieldError{Field: "email", Message: "invalid format"})
	}
	if strings.TrimSpace(i.GuideType) == "" {
		errs = append(errs, domain.FieldError{Field: "guide_type", Message: "required"})
	}
	if len(domain.NormalizeSet(i.Languages)) == 0 {
		errs = append(errs, domain.FieldError{Field: "languages", Message: "at least one required"})
	}
	if len(domain.NormalizeSet(i.ServiceAreas)) == 0 {
		errs = append(errs, domain.FieldError{Field: "service_areas", Message: "at least one required"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// RejectInput holds the parameters for rejecting an application.
type RejectInput struct {
	ApplicationID uuid.UUID
	Reason        string
}

// Validate checks the reason before anything else is looked at.
func (i RejectInput) Validate() error {
	if strings.TrimSpace(i.Reason) == "" {
		return domain.NewValidationError("reason", "required")
	}
	return nil
}
