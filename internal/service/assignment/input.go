package assignment

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/tourops-backend/internal/domain"
)

const maxPackageNameLength = 200

// UpsertPackageInput is one package as published by the package directory.
type UpsertPackageInput struct {
	ID                uuid.UUID
	Name              string
	Date              time.Time
	RequiredLanguages []string
	RequiredAreas     []string
}

func (i UpsertPackageInput) Validate() error {
	var errs []domain.FieldError

	if i.ID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "id", Message: "required"})
	}
	name := strings.TrimSpace(i.Name)
	if name == "" {
		errs = append(errs, domain.FieldError{Field: "name", Message: "required"})
	} else if len(name) > maxPackageNameLength {
		errs = append(errs, domain.FieldError{Field: "name", Message: "max 200 characters"})
	}
	if i.Date.IsZero() {
		errs = append(errs, domain.FieldError{Field: "date", Message: "required"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// AssignInput binds a guide to a package.
type AssignInput struct {
	PackageID uuid.UUID
	GuideID   uuid.UUID
}

func (i AssignInput) Validate() error {
	if i.GuideID == uuid.Nil {
		return domain.NewValidationError("guide_id", "required")
	}
	return nil
}
