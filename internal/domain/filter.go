package domain

import (
	"time"

	"github.com/google/uuid"
)

// DefaultListLimit and MaxListLimit bound every paginated listing.
const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

// Page holds limit/offset pagination.
type Page struct {
	Limit  int
	Offset int
}

// Clamp applies defaults and bounds.
func (p Page) Clamp() Page {
	if p.Limit <= 0 {
		p.Limit = DefaultListLimit
	}
	if p.Limit > MaxListLimit {
		p.Limit = MaxListLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// ApplicationFilter lists applications newest first.
type ApplicationFilter struct {
	Status *DecisionStatus
	Page
}

// GuideFilter lists profiles. Language and Area match profiles whose set
// contains the value.
type GuideFilter struct {
	Status   *GuideStatus
	Language *string
	Area     *string
	Page
}

// ChangeRequestFilter lists change requests newest first.
type ChangeRequestFilter struct {
	GuideID *uuid.UUID
	Status  *DecisionStatus
	Field   *ProfileField
	Page
}

// PackageFilter lists packages by date.
type PackageFilter struct {
	Assigned *bool
	GuideID  *uuid.UUID
	Page
}

// AuditFilter lists audit entries in log order.
type AuditFilter struct {
	SubjectType *SubjectType
	Actor       *string
	Action      *AuditAction
	Since       *time.Time
	Until       *time.Time
	Page
}
