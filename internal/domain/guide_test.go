package domain

import (
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestGuideApplication_Decide(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC)
	app := GuideApplication{ID: uuid.New(), Status: DecisionPending}

	if err := app.Decide(DecisionApproved, "admin-1", nil, now); err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if app.Status != DecisionApproved || app.DecidedBy == nil || *app.DecidedBy != "admin-1" {
		t.Fatalf("unexpected application after approve: %+v", app)
	}

	err := app.Decide(DecisionRejected, "admin-2", OptionalReason("late"), now)
	if !errors.Is(err, ErrInvalidStateTransition) {
		t.Fatalf("second Decide error = %v, want ErrInvalidStateTransition", err)
	}
	if app.Status != DecisionApproved || *app.DecidedBy != "admin-1" {
		t.Fatal("failed transition must not mutate the application")
	}
}

func TestNewProfileFromApplication(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	app := GuideApplication{
		ID:           uuid.New(),
		Applicant:    Applicant{FirstName: "Somchai", LastName: "Dee", Phone: "0812345678"},
		Languages:    []string{"Chinese", " Chinese"},
		ServiceAreas: []string{"Ayutthaya"},
	}

	p := NewProfileFromApplication(app, now)

	if p.ID != app.ID {
		t.Error("profile must share the application id")
	}
	if p.Status != GuideStatusActive {
		t.Errorf("status = %s, want ACTIVE", p.Status)
	}
	if !slices.Equal(p.Languages, []string{"Chinese"}) || !slices.Equal(p.ServiceAreas, []string{"Ayutthaya"}) {
		t.Errorf("unexpected sets: %q %q", p.Languages, p.ServiceAreas)
	}
	if p.FullName() != "Somchai Dee" {
		t.Errorf("FullName() = %q", p.FullName())
	}
}

func TestGuideProfile_FieldValue(t *testing.T) {
	t.Parallel()

	p := GuideProfile{
		Applicant:    Applicant{Phone: "0812345678", Email: "g@example.com"},
		Languages:    []string{"Thai", "English"},
		ServiceAreas: []string{"Bangkok"},
	}

	if got := p.FieldValue(ProfileFieldLanguage); !slices.Equal(got, []string{"English", "Thai"}) {
		t.Errorf("LANGUAGE = %q", got)
	}
	if got := p.FieldValue(ProfileFieldEmail); !slices.Equal(got, []string{"g@example.com"}) {
		t.Errorf("EMAIL = %q", got)
	}

	p.SetFieldValue(ProfileFieldPhone, []string{"0899999999"})
	p.SetFieldValue(ProfileFieldServiceArea, []string{"Phuket", "Bangkok"})
	if p.Applicant.Phone != "0899999999" {
		t.Errorf("phone = %q", p.Applicant.Phone)
	}
	if !slices.Equal(p.ServiceAreas, []string{"Bangkok", "Phuket"}) {
		t.Errorf("areas = %q", p.ServiceAreas)
	}
}

func TestProfileChangeRequest_IsStale(t *testing.T) {
	t.Parallel()

	p := GuideProfile{Languages: []string{"Thai"}}
	req := ProfileChangeRequest{Field: ProfileFieldLanguage, OldValue: []string{"Thai"}}

	if req.IsStale(p) {
		t.Fatal("fresh request reported stale")
	}
	p.Languages = []string{"Thai", "English"}
	if !req.IsStale(p) {
		t.Fatal("request should be stale after profile changed")
	}
}

func TestAuditEntry_Validate(t *testing.T) {
	t.Parallel()

	valid := AuditEntry{
		SubjectType: SubjectApplication,
		SubjectID:   uuid.New(),
		Action:      AuditActionApproved,
		Actor:       "admin-1",
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}

	var ve *ValidationError
	err := AuditEntry{}.Validate()
	if !errors.As(err, &ve) {
		t.Fatalf("Validate() = %v, want *ValidationError", err)
	}
	if len(ve.Errors) != 4 {
		t.Errorf("expected 4 field errors, got %d", len(ve.Errors))
	}
}

func TestTourPackage_Requirements(t *testing.T) {
	t.Parallel()

	pkg := TourPackage{
		Date:              time.Date(2025, 9, 10, 15, 30, 0, 0, time.UTC),
		RequiredLanguages: []string{"Chinese"},
		RequiredAreas:     []string{"Ayutthaya"},
	}
	req := pkg.Requirements()

	if FormatDate(req.Date) != "2025-09-10" || req.Date.Hour() != 0 {
		t.Errorf("date = %v", req.Date)
	}
	if pkg.IsAssigned() {
		t.Error("package without guide reported assigned")
	}
}
