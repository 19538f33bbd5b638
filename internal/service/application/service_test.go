package application

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/tourops-backend/internal/adapter/memory"
	"github.com/heartmarshall/tourops-backend/internal/domain"
	auditsvc "github.com/heartmarshall/tourops-backend/internal/service/audit"
	"github.com/heartmarshall/tourops-backend/pkg/ctxutil"
)

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

type fixture struct {
	store *memory.Store
	audit *auditsvc.Service
	svc   *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.New()
	audit := auditsvc.NewService(logger, store.Audit())
	return &fixture{
		store: store,
		audit: audit,
		svc:   NewService(logger, store.Applications(), store.Guides(), audit, store),
	}
}

func asActor(actor string) context.Context {
	return ctxutil.WithActor(context.Background(), actor)
}

func validInput() SubmitInput {
	return SubmitInput{
		FirstName:    " Anna ",
		LastName:     "Ivanova",
		Age:          29,
		Sex:          "female",
		Phone:        "+7 900 123-45-67",
		Email:        "anna@example.com",
		GuideType:    "city",
		Languages:    []string{"fr", "en", " en "},
		ServiceAreas: []string{"Lyon", "Paris"},
		Documents:    []string{"2025/09/passport.pdf"},
	}
}

func (f *fixture) submit(t *testing.T) *domain.GuideApplication {
	t.Helper()
	app, err := f.svc.Submit(asActor("applicant-1"), validInput())
	require.NoError(t, err)
	return app
}

// ---------------------------------------------------------------------------
// Submit
// ---------------------------------------------------------------------------

func TestSubmit_CreatesPendingApplication(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	app := f.submit(t)

	assert.Equal(t, domain.DecisionPending, app.Status)
	assert.Equal(t, "Anna", app.Applicant.FirstName)
	assert.Equal(t, []string{"en", "fr"}, app.Languages)
	assert.Equal(t, "applicant-1", app.SubmittedBy)
	assert.Nil(t, app.DecidedAt)

	entries, err := f.audit.EntriesFor(context.Background(), domain.SubjectApplication, app.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.AuditActionSubmitted, entries[0].Action)
}

func TestSubmit_RequiresActor(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	_, err := f.svc.Submit(context.Background(), validInput())
	require.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestSubmit_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*SubmitInput)
		field  string
	}{
		{"blank first name", func(i *SubmitInput) { i.FirstName = "  " }, "first_name"},
		{"too young", func(i *SubmitInput) { i.Age = 17 }, "age"},
		{"too old", func(i *SubmitInput) { i.Age = 81 }, "age"},
		{"missing sex", func(i *SubmitInput) { i.Sex = "" }, "sex"},
		{"bad phone", func(i *SubmitInput) { i.Phone = "call me" }, "phone"},
		{"bad email", func(i *SubmitInput) { i.Email = "nope" }, "email"},
		{"no languages", func(i *SubmitInput) { i.Languages = []string{" "} }, "languages"},
		{"no areas", func(i *SubmitInput) { i.ServiceAreas = nil }, "service_areas"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)
			in := validInput()
			tt.mutate(&in)

			_, err := f.svc.Submit(asActor("applicant-1"), in)

			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			require.Len(t, verr.Errors, 1)
			assert.Equal(t, tt.field, verr.Errors[0].Field)

			res, err := f.svc.List(context.Background(), domain.ApplicationFilter{})
			require.NoError(t, err)
			assert.Zero(t, res.Total)
		})
	}
}

func TestSubmit_AgeBoundsInclusive(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	for _, age := range []int{MinApplicantAge, MaxApplicantAge} {
		in := validInput()
		in.Age = age
		_, err := f.svc.Submit(asActor("applicant-1"), in)
		require.NoError(t, err, "age %d", age)
	}
}

// ---------------------------------------------------------------------------
// Approve
// ---------------------------------------------------------------------------

func TestApprove_CreatesActiveProfile(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	app := f.submit(t)
	ctx := asActor("admin-1")

	res, err := f.svc.Approve(ctx, app.ID)
	require.NoError(t, err)

	assert.Equal(t, domain.DecisionApproved, res.Application.Status)
	assert.Equal(t, app.ID, res.Profile.ID)
	assert.Equal(t, domain.GuideStatusActive, res.Profile.Status)
	assert.Equal(t, app.Languages, res.Profile.Languages)
	assert.Equal(t, app.ServiceAreas, res.Profile.ServiceAreas)

	stored, err := f.store.Guides().GetByID(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, "Anna Ivanova", stored.FullName())

	entries, err := f.audit.EntriesFor(ctx, domain.SubjectApplication, app.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, domain.AuditActionApproved, entries[1].Action)
	assert.Equal(t, "admin-1", entries[1].Actor)
}

func TestApprove_NotFound(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	_, err := f.svc.Approve(asActor("admin-1"), uuid.New())
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestApprove_TerminalApplicationUnchanged(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	app := f.submit(t)
	ctx := asActor("admin-1")

	_, err := f.svc.Reject(ctx, RejectInput{ApplicationID: app.ID, Reason: "incomplete documents"})
	require.NoError(t, err)

	_, err = f.svc.Approve(ctx, app.ID)
	require.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	_, err = f.store.Guides().GetByID(ctx, app.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)

	n, err := f.store.Audit().CountBySubject(ctx, domain.SubjectApplication, app.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n, "failed approval must not be audited")
}

func TestApprove_ProfileFailureRollsBack(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	app := f.submit(t)

	guides := &guideRepoMock{
		CreateFunc: func(context.Context, *domain.GuideProfile) (*domain.GuideProfile, error) {
			return nil, errors.New("disk full")
		},
	}
	svc := NewService(slog.New(slog.NewTextHandler(io.Discard, nil)), f.store.Applications(), guides, f.audit, f.store)

	_, err := svc.Approve(asActor("admin-1"), app.ID)
	require.Error(t, err)
	assert.Len(t, guides.CreateCalls(), 1)

	got, err := f.svc.Get(context.Background(), app.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DecisionPending, got.Status)
}

func TestApprove_AuditFailureRollsBack(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	app := f.submit(t)

	audit := &auditLoggerMock{
		LogFunc: func(context.Context, domain.AuditEntry) error { return errors.New("audit down") },
	}
	svc := NewService(slog.New(slog.NewTextHandler(io.Discard, nil)), f.store.Applications(), f.store.Guides(), audit, f.store)

	_, err := svc.Approve(asActor("admin-1"), app.ID)
	require.Error(t, err)
	require.Len(t, audit.LogCalls(), 1)
	assert.Equal(t, domain.AuditActionApproved, audit.LogCalls()[0].Entry.Action)

	got, err := f.svc.Get(context.Background(), app.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DecisionPending, got.Status)
	_, err = f.store.Guides().GetByID(context.Background(), app.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestApprove_ConcurrentDecisionsOneWins(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	app := f.submit(t)

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx := asActor("admin-1")
			var err error
			if i%2 == 0 {
				_, err = f.svc.Approve(ctx, app.ID)
			} else {
				_, err = f.svc.Reject(ctx, RejectInput{ApplicationID: app.ID, Reason: "duplicate"})
			}
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	n, err := f.store.Audit().CountBySubject(context.Background(), domain.SubjectApplication, app.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

// ---------------------------------------------------------------------------
// Reject
// ---------------------------------------------------------------------------

func TestReject_RecordsReason(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	app := f.submit(t)

	got, err := f.svc.Reject(asActor("admin-1"), RejectInput{ApplicationID: app.ID, Reason: "  no licence  "})
	require.NoError(t, err)
	assert.Equal(t, domain.DecisionRejected, got.Status)
	require.NotNil(t, got.RejectionReason)
	assert.Equal(t, "no licence", *got.RejectionReason)

	entries, err := f.audit.EntriesFor(context.Background(), domain.SubjectApplication, app.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.NotNil(t, entries[1].Reason)
	assert.Equal(t, "no licence", *entries[1].Reason)
}

func TestReject_BlankReasonBeforeLookup(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	// Unknown id: the reason check must fire first.
	_, err := f.svc.Reject(asActor("admin-1"), RejectInput{ApplicationID: uuid.New(), Reason: "   "})
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestReject_AlreadyApproved(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	app := f.submit(t)
	ctx := asActor("admin-1")

	_, err := f.svc.Approve(ctx, app.ID)
	require.NoError(t, err)

	_, err = f.svc.Reject(ctx, RejectInput{ApplicationID: app.ID, Reason: "changed my mind"})
	require.ErrorIs(t, err, domain.ErrInvalidStateTransition)
}

// ---------------------------------------------------------------------------
// Queries
// ---------------------------------------------------------------------------

func TestList_FiltersByStatus(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	first := f.submit(t)
	f.submit(t)

	_, err := f.svc.Approve(asActor("admin-1"), first.ID)
	require.NoError(t, err)

	pending := domain.DecisionPending
	res, err := f.svc.List(context.Background(), domain.ApplicationFilter{Status: &pending})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)

	bogus := domain.DecisionStatus("MAYBE")
	_, err = f.svc.List(context.Background(), domain.ApplicationFilter{Status: &bogus})
	require.ErrorIs(t, err, domain.ErrValidation)
}
