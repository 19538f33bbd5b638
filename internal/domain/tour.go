package domain

import (
	"time"

	"github.com/google/uuid"
)

// DateLayout is the wire format of whole-day dates.
const DateLayout = "2006-01-02"

// TourPackage is the locally held copy of a package from the package
// directory. Only the assignment engine writes AssignedGuideID.
type TourPackage struct {
	ID                uuid.UUID
	Name              string
	Date              time.Time
	RequiredLanguages []string
	RequiredAreas     []string
	AssignedGuideID   *uuid.UUID
	UpdatedAt         time.Time
}

// IsAssigned reports whether a guide is bound to the package.
func (p TourPackage) IsAssigned() bool {
	return p.AssignedGuideID != nil
}

// Requirements extracts what a guide must satisfy to lead the package.
func (p TourPackage) Requirements() Requirements {
	return Requirements{
		Languages: NormalizeSet(p.RequiredLanguages),
		Areas:     NormalizeSet(p.RequiredAreas),
		Date:      TruncateDay(p.Date),
	}
}

// Requirements is the part of a package the eligibility evaluator looks at.
type Requirements struct {
	Languages []string
	Areas     []string
	Date      time.Time
}

// TruncateDay drops the time of day, keeping the calendar date in UTC.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// FormatDate renders a whole-day date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Verdict is the result of an eligibility check. Reasons keeps the
// evaluation order: status, languages, areas, date.
type Verdict struct {
	Eligible         bool
	Reasons          []IneligibilityReason
	MissingLanguages []string
	MissingAreas     []string
}

// FlaggedAssignment is an existing assignment that no longer passes
// eligibility against the guide's current profile.
type FlaggedAssignment struct {
	PackageID uuid.UUID
	GuideID   uuid.UUID
	Date      time.Time
	Verdict   Verdict
}
