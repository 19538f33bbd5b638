package guide_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/tourops-backend/internal/adapter/postgres/guide"
	"github.com/heartmarshall/tourops-backend/internal/adapter/postgres/testhelper"
	"github.com/heartmarshall/tourops-backend/internal/domain"
)

func newRepo(t *testing.T) (*guide.Repo, *pgxpool.Pool) {
	t.Helper()
	pool := testhelper.SetupTestDB(t)
	return guide.New(pool), pool
}

func TestRepo_Create_FromApplication(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	app := testhelper.SeedApplication(t, pool, []string{"Chinese"}, []string{"Ayutthaya"})
	p := domain.NewProfileFromApplication(app, time.Now().UTC().Truncate(time.Microsecond))

	created, err := repo.Create(ctx, &p)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID != app.ID || created.Status != domain.GuideStatusActive {
		t.Fatalf("unexpected profile: %+v", created)
	}

	if _, err := repo.Create(ctx, &p); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("second Create: expected ErrAlreadyExists, got %v", err)
	}
}

func TestRepo_Create_WithoutApplication(t *testing.T) {
	t.Parallel()
	repo, _ := newRepo(t)

	p := domain.NewProfileFromApplication(testhelper.NewApplication([]string{"Thai"}, []string{"Krabi"}), time.Now().UTC())
	if _, err := repo.Create(context.Background(), &p); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing application, got %v", err)
	}
}

func TestRepo_Update(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	p := testhelper.SeedGuide(t, pool, []string{"Thai"}, []string{"Krabi"})
	p.SetFieldValue(domain.ProfileFieldLanguage, []string{"Thai", "English"})
	p.SetFieldValue(domain.ProfileFieldEmail, []string{"new@example.com"})
	p.Status = domain.GuideStatusSuspended
	p.UpdatedAt = time.Now().UTC().Truncate(time.Microsecond)

	updated, err := repo.Update(ctx, &p)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(updated.Languages) != 2 || updated.Applicant.Email != "new@example.com" || updated.Status != domain.GuideStatusSuspended {
		t.Fatalf("unexpected profile after update: %+v", updated)
	}
}

func TestRepo_GetByIDs(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)

	a := testhelper.SeedGuide(t, pool, []string{"Thai"}, []string{"Krabi"})
	b := testhelper.SeedGuide(t, pool, []string{"Thai"}, []string{"Krabi"})

	got, err := repo.GetByIDs(context.Background(), []uuid.UUID{a.ID, b.ID, uuid.New()})
	if err != nil {
		t.Fatalf("GetByIDs: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(got))
	}

	empty, err := repo.GetByIDs(context.Background(), nil)
	if err != nil || len(empty) != 0 {
		t.Fatalf("GetByIDs(nil) = %v, %v", empty, err)
	}
}

func TestRepo_List_ByLanguageAndArea(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	lang := "Lang-" + uuid.New().String()[:8]
	match := testhelper.SeedGuide(t, pool, []string{lang, "Thai"}, []string{"Chiang Mai"})
	testhelper.SeedGuide(t, pool, []string{lang}, []string{"Phuket"})

	area := "Chiang Mai"
	got, total, err := repo.List(ctx, domain.GuideFilter{Language: &lang, Area: &area})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 1 || len(got) != 1 || got[0].ID != match.ID {
		t.Fatalf("expected only %s, got total=%d %v", match.ID, total, got)
	}
}
