package domain

import (
	"time"

	"github.com/google/uuid"
)

// Applicant holds the personal attributes shared by an application and the
// profile created from it.
type Applicant struct {
	FirstName string
	LastName  string
	Age       int
	Sex       string
	Phone     string
	Email     string
	GuideType string
}

// GuideApplication is a request to become a guide. It is mutated only by the
// application workflow and never deleted.
type GuideApplication struct {
	ID              uuid.UUID
	Applicant       Applicant
	Languages       []string
	ServiceAreas    []string
	Documents       []string
	Status          DecisionStatus
	RejectionReason *string
	SubmittedAt     time.Time
	SubmittedBy     string
	DecidedAt       *time.Time
	DecidedBy       *string
}

// Decide moves a pending application into a terminal status.
func (a *GuideApplication) Decide(status DecisionStatus, actor string, reason *string, at time.Time) error {
	if !a.Status.CanTransitionTo(status) {
		return NewTransitionError(SubjectApplication, a.ID, a.Status.String(), status.String())
	}
	a.Status = status
	a.RejectionReason = reason
	a.DecidedAt = &at
	a.DecidedBy = &actor
	return nil
}

// GuideProfile is the live record of an approved guide. Its ID equals the ID
// of the application it was created from.
type GuideProfile struct {
	ID           uuid.UUID
	Applicant    Applicant
	Languages    []string
	ServiceAreas []string
	Status       GuideStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewProfileFromApplication copies the applicant and requested sets of an
// approved application into a new active profile.
func NewProfileFromApplication(app GuideApplication, now time.Time) GuideProfile {
	return GuideProfile{
		ID:           app.ID,
		Applicant:    app.Applicant,
		Languages:    NormalizeSet(app.Languages),
		ServiceAreas: NormalizeSet(app.ServiceAreas),
		Status:       GuideStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// FullName returns "First Last".
func (p GuideProfile) FullName() string {
	return p.Applicant.FirstName + " " + p.Applicant.LastName
}

// FieldValue returns the current value of a changeable field as a list.
// Scalar fields are single-element lists.
func (p GuideProfile) FieldValue(field ProfileField) []string {
	switch field {
	case ProfileFieldLanguage:
		return NormalizeSet(p.Languages)
	case ProfileFieldServiceArea:
		return NormalizeSet(p.ServiceAreas)
	case ProfileFieldPhone:
		return []string{p.Applicant.Phone}
	case ProfileFieldEmail:
		return []string{p.Applicant.Email}
	}
	return nil
}

// SetFieldValue replaces the value of a changeable field.
func (p *GuideProfile) SetFieldValue(field ProfileField, value []string) {
	switch field {
	case ProfileFieldLanguage:
		p.Languages = NormalizeSet(value)
	case ProfileFieldServiceArea:
		p.ServiceAreas = NormalizeSet(value)
	case ProfileFieldPhone:
		p.Applicant.Phone = firstOrEmpty(value)
	case ProfileFieldEmail:
		p.Applicant.Email = firstOrEmpty(value)
	}
}

// ProfileChangeRequest asks to replace one field of an existing profile.
// OldValue is the snapshot of the field at request time.
type ProfileChangeRequest struct {
	ID              uuid.UUID
	GuideID         uuid.UUID
	Field           ProfileField
	OldValue        []string
	NewValue        []string
	EvidenceRef     *string
	Status          DecisionStatus
	RejectionReason *string
	RequestedAt     time.Time
	RequestedBy     string
	DecidedAt       *time.Time
	DecidedBy       *string
}

// Decide moves a pending change request into a terminal status.
func (r *ProfileChangeRequest) Decide(status DecisionStatus, actor string, reason *string, at time.Time) error {
	if !r.Status.CanTransitionTo(status) {
		return NewTransitionError(SubjectChangeRequest, r.ID, r.Status.String(), status.String())
	}
	r.Status = status
	r.RejectionReason = reason
	r.DecidedAt = &at
	r.DecidedBy = &actor
	return nil
}

// HasEvidence reports whether a non-blank evidence reference is attached.
func (r ProfileChangeRequest) HasEvidence() bool {
	return r.EvidenceRef != nil && *r.EvidenceRef != ""
}

// IsStale reports whether the snapshot no longer matches the live value.
func (r ProfileChangeRequest) IsStale(profile GuideProfile) bool {
	return !FieldValuesEqual(r.Field, r.OldValue, profile.FieldValue(r.Field))
}

func firstOrEmpty(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
