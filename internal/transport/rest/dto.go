package rest

import (
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/tourops-backend/internal/domain"
)

type applicantResponse struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Age       int    `json:"age"`
	Sex       string `json:"sex"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	GuideType string `json:"guideType"`
}

func toApplicantResponse(a domain.Applicant) applicantResponse {
	return applicantResponse{
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Age:       a.Age,
		Sex:       a.Sex,
		Phone:     a.Phone,
		Email:     a.Email,
		GuideType: a.GuideType,
	}
}

type applicationResponse struct {
	ID              string            `json:"id"`
	Applicant       applicantResponse `json:"applicant"`
	Languages       []string          `json:"languages"`
	ServiceAreas    []string          `json:"serviceAreas"`
	Documents       []string          `json:"documents"`
	Status          string            `json:"status"`
	RejectionReason *string           `json:"rejectionReason,omitempty"`
	SubmittedAt     time.Time         `json:"submittedAt"`
	SubmittedBy     string            `json:"submittedBy"`
	DecidedAt       *time.Time        `json:"decidedAt,omitempty"`
	DecidedBy       *string           `json:"decidedBy,omitempty"`
}

func toApplicationResponse(a *domain.GuideApplication) applicationResponse {
	return applicationResponse{
		ID:              a.ID.String(),
		Applicant:       toApplicantResponse(a.Applicant),
		Languages:       nonNil(a.Languages),
		ServiceAreas:    nonNil(a.ServiceAreas),
		Documents:       nonNil(a.Documents),
		Status:          a.Status.String(),
		RejectionReason: a.RejectionReason,
		SubmittedAt:     a.SubmittedAt,
		SubmittedBy:     a.SubmittedBy,
		DecidedAt:       a.DecidedAt,
		DecidedBy:       a.DecidedBy,
	}
}

type guideResponse struct {
	ID           string            `json:"id"`
	Applicant    applicantResponse `json:"applicant"`
	Languages    []string          `json:"languages"`
	ServiceAreas []string          `json:"serviceAreas"`
	Status       string            `json:"status"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

func toGuideResponse(g *domain.GuideProfile) guideResponse {
	return guideResponse{
		ID:           g.ID.String(),
		Applicant:    toApplicantResponse(g.Applicant),
		Languages:    nonNil(g.Languages),
		ServiceAreas: nonNil(g.ServiceAreas),
		Status:       g.Status.String(),
		CreatedAt:    g.CreatedAt,
		UpdatedAt:    g.UpdatedAt,
	}
}

// guideSummary is embedded in package and assignment listings.
type guideSummary struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

func toGuideSummary(g *domain.GuideProfile) *guideSummary {
	if g == nil {
		return nil
	}
	return &guideSummary{ID: g.ID.String(), Name: g.FullName(), Status: g.Status.String()}
}

type changeRequestResponse struct {
	ID              string     `json:"id"`
	GuideID         string     `json:"guideId"`
	Field           string     `json:"field"`
	OldValue        []string   `json:"oldValue"`
	NewValue        []string   `json:"newValue"`
	EvidenceRef     *string    `json:"evidenceRef,omitempty"`
	Status          string     `json:"status"`
	RejectionReason *string    `json:"rejectionReason,omitempty"`
	RequestedAt     time.Time  `json:"requestedAt"`
	RequestedBy     string     `json:"requestedBy"`
	DecidedAt       *time.Time `json:"decidedAt,omitempty"`
	DecidedBy       *string    `json:"decidedBy,omitempty"`
}

func toChangeRequestResponse(req *domain.ProfileChangeRequest) changeRequestResponse {
	return changeRequestResponse{
		ID:              req.ID.String(),
		GuideID:         req.GuideID.String(),
		Field:           req.Field.String(),
		OldValue:        nonNil(req.OldValue),
		NewValue:        nonNil(req.NewValue),
		EvidenceRef:     req.EvidenceRef,
		Status:          req.Status.String(),
		RejectionReason: req.RejectionReason,
		RequestedAt:     req.RequestedAt,
		RequestedBy:     req.RequestedBy,
		DecidedAt:       req.DecidedAt,
		DecidedBy:       req.DecidedBy,
	}
}

type packageResponse struct {
	ID                string        `json:"id"`
	Name              string        `json:"name"`
	Date              string        `json:"date"`
	RequiredLanguages []string      `json:"requiredLanguages"`
	RequiredAreas     []string      `json:"requiredAreas"`
	AssignedGuideID   *string       `json:"assignedGuideId"`
	AssignedGuide     *guideSummary `json:"assignedGuide,omitempty"`
	UpdatedAt         time.Time     `json:"updatedAt"`
}

func toPackageResponse(p *domain.TourPackage) packageResponse {
	resp := packageResponse{
		ID:                p.ID.String(),
		Name:              p.Name,
		Date:              domain.FormatDate(p.Date),
		RequiredLanguages: nonNil(p.RequiredLanguages),
		RequiredAreas:     nonNil(p.RequiredAreas),
		UpdatedAt:         p.UpdatedAt,
	}
	if p.AssignedGuideID != nil {
		id := p.AssignedGuideID.String()
		resp.AssignedGuideID = &id
	}
	return resp
}

type verdictResponse struct {
	Eligible         bool     `json:"eligible"`
	Reasons          []string `json:"reasons"`
	MissingLanguages []string `json:"missingLanguages"`
	MissingAreas     []string `json:"missingAreas"`
}

func toVerdictResponse(v domain.Verdict) verdictResponse {
	reasons := make([]string, len(v.Reasons))
	for i, r := range v.Reasons {
		reasons[i] = r.String()
	}
	return verdictResponse{
		Eligible:         v.Eligible,
		Reasons:          reasons,
		MissingLanguages: nonNil(v.MissingLanguages),
		MissingAreas:     nonNil(v.MissingAreas),
	}
}

type flaggedResponse struct {
	PackageID string        `json:"packageId"`
	GuideID   string        `json:"guideId"`
	Guide     *guideSummary `json:"guide,omitempty"`
	Date      string        `json:"date"`
	verdictResponse
}

func toFlaggedResponses(flagged []domain.FlaggedAssignment, guides map[uuid.UUID]*domain.GuideProfile) []flaggedResponse {
	out := make([]flaggedResponse, len(flagged))
	for i, f := range flagged {
		out[i] = flaggedResponse{
			PackageID:       f.PackageID.String(),
			GuideID:         f.GuideID.String(),
			Guide:           toGuideSummary(guides[f.GuideID]),
			Date:            domain.FormatDate(f.Date),
			verdictResponse: toVerdictResponse(f.Verdict),
		}
	}
	return out
}

type auditEntryResponse struct {
	ID          string         `json:"id"`
	SubjectType string         `json:"subjectType"`
	SubjectID   string         `json:"subjectId"`
	Action      string         `json:"action"`
	Actor       string         `json:"actor"`
	Status      string         `json:"status,omitempty"`
	Reason      *string        `json:"reason,omitempty"`
	Changes     map[string]any `json:"changes,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
}

func toAuditResponses(entries []domain.AuditEntry) []auditEntryResponse {
	out := make([]auditEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = auditEntryResponse{
			ID:          e.ID.String(),
			SubjectType: e.SubjectType.String(),
			SubjectID:   e.SubjectID.String(),
			Action:      e.Action.String(),
			Actor:       e.Actor,
			Status:      e.Status,
			Reason:      e.Reason,
			Changes:     e.Changes,
			CreatedAt:   e.CreatedAt,
		}
	}
	return out
}

type listResponse[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

func mapSlice[S, T any](items []S, fn func(S) T) []T {
	out := make([]T, len(items))
	for i, item := range items {
		out[i] = fn(item)
	}
	return out
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
