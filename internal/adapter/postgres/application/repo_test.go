package application_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/tourops-backend/internal/adapter/postgres/application"
	"github.com/heartmarshall/tourops-backend/internal/adapter/postgres/testhelper"
	"github.com/heartmarshall/tourops-backend/internal/domain"
)

func newRepo(t *testing.T) (*application.Repo, *pgxpool.Pool) {
	t.Helper()
	pool := testhelper.SetupTestDB(t)
	return application.New(pool), pool
}

func TestRepo_Create_GetByID(t *testing.T) {
	t.Parallel()
	repo, _ := newRepo(t)
	ctx := context.Background()

	input := testhelper.NewApplication([]string{"Chinese", "Thai"}, []string{"Ayutthaya"})
	input.Documents = []string{"docs/license.pdf"}

	created, err := repo.Create(ctx, &input)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Status != domain.DecisionPending {
		t.Errorf("status = %s, want PENDING", created.Status)
	}

	got, err := repo.GetByID(ctx, input.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Applicant != input.Applicant {
		t.Errorf("applicant mismatch: got %+v, want %+v", got.Applicant, input.Applicant)
	}
	if len(got.Languages) != 2 || got.Languages[0] != "Chinese" {
		t.Errorf("languages = %q", got.Languages)
	}
	if len(got.Documents) != 1 {
		t.Errorf("documents = %q", got.Documents)
	}
	if got.DecidedAt != nil || got.DecidedBy != nil {
		t.Error("pending application must not carry decision fields")
	}
}

func TestRepo_GetByID_NotFound(t *testing.T) {
	t.Parallel()
	repo, _ := newRepo(t)

	_, err := repo.GetByID(context.Background(), uuid.New())
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRepo_SaveDecision_OnlyFromPending(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	app := testhelper.SeedApplication(t, pool, []string{"Thai"}, []string{"Bangkok"})

	if err := app.Decide(domain.DecisionRejected, "admin-1", domain.OptionalReason("incomplete"), time.Now().UTC()); err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if err := repo.SaveDecision(ctx, &app); err != nil {
		t.Fatalf("SaveDecision: %v", err)
	}

	got, err := repo.GetByID(ctx, app.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != domain.DecisionRejected || got.RejectionReason == nil || *got.RejectionReason != "incomplete" {
		t.Fatalf("unexpected decision: %+v", got)
	}

	again := *got
	again.Status = domain.DecisionApproved
	again.RejectionReason = nil
	if err := repo.SaveDecision(ctx, &again); !errors.Is(err, domain.ErrInvalidStateTransition) {
		t.Fatalf("expected ErrInvalidStateTransition, got %v", err)
	}
}

func TestRepo_RejectWithoutReason_ViolatesCheck(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)

	app := testhelper.SeedApplication(t, pool, []string{"Thai"}, []string{"Bangkok"})
	now := time.Now().UTC()
	actor := "admin-1"
	app.Status = domain.DecisionRejected
	app.DecidedAt = &now
	app.DecidedBy = &actor

	if err := repo.SaveDecision(context.Background(), &app); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation from check constraint, got %v", err)
	}
}

func TestRepo_List_ByStatus(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	first := testhelper.SeedApplication(t, pool, []string{"Thai"}, []string{"Krabi"})
	second := testhelper.SeedApplication(t, pool, []string{"Thai"}, []string{"Krabi"})

	status := domain.DecisionPending
	got, total, err := repo.List(ctx, domain.ApplicationFilter{Status: &status, Page: domain.Page{Limit: 200}})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total < 2 {
		t.Errorf("total = %d, want >= 2", total)
	}

	pos := map[uuid.UUID]int{}
	for i, a := range got {
		if a.Status != domain.DecisionPending {
			t.Errorf("unexpected status %s in pending listing", a.Status)
		}
		pos[a.ID] = i
	}
	if _, ok := pos[second.ID]; !ok {
		t.Fatal("second application missing from listing")
	}
	if i, ok := pos[first.ID]; ok && i < pos[second.ID] && first.SubmittedAt.Before(second.SubmittedAt) {
		t.Error("listing must be newest first")
	}
}
