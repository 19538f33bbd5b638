package testhelper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/tourops-backend/internal/domain"
)

// uniqueSuffix returns a short unique string for generating non-conflicting test data.
func uniqueSuffix() string {
	return uuid.New().String()[:8]
}

// NewApplication returns a pending application with valid applicant data.
// It is not persisted.
func NewApplication(languages, areas []string) domain.GuideApplication {
	suffix := uniqueSuffix()
	return domain.GuideApplication{
		ID: uuid.New(),
		Applicant: domain.Applicant{
			FirstName: "Guide",
			LastName:  "Test " + suffix,
			Age:       30,
			Sex:       "F",
			Phone:     "0812345678",
			Email:     "guide-" + suffix + "@example.com",
			GuideType: "Local",
		},
		Languages:    domain.NormalizeSet(languages),
		ServiceAreas: domain.NormalizeSet(areas),
		Documents:    []string{},
		Status:       domain.DecisionPending,
		SubmittedAt:  time.Now().UTC().Truncate(time.Microsecond),
		SubmittedBy:  "seed",
	}
}

// SeedApplication inserts a pending application.
func SeedApplication(t *testing.T, pool *pgxpool.Pool, languages, areas []string) domain.GuideApplication {
	t.Helper()

	app := NewApplication(languages, areas)
	_, err := pool.Exec(context.Background(),
		`INSERT INTO guide_applications
		    (id, first_name, last_name, age, sex, phone, email, guide_type,
		     languages, service_areas, documents, status, submitted_at, submitted_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		app.ID, app.Applicant.FirstName, app.Applicant.LastName, app.Applicant.Age, app.Applicant.Sex,
		app.Applicant.Phone, app.Applicant.Email, app.Applicant.GuideType,
		app.Languages, app.ServiceAreas, app.Documents, string(app.Status), app.SubmittedAt, app.SubmittedBy,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedApplication: %v", err)
	}
	return app
}

// SeedGuide inserts an approved application and the active profile created from it.
func SeedGuide(t *testing.T, pool *pgxpool.Pool, languages, areas []string) domain.GuideProfile {
	t.Helper()
	ctx := context.Background()

	app := SeedApplication(t, pool, languages, areas)
	now := time.Now().UTC().Truncate(time.Microsecond)

	_, err := pool.Exec(ctx,
		`UPDATE guide_applications SET status = 'APPROVED', decided_at = $2, decided_by = 'seed' WHERE id = $1`,
		app.ID, now,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedGuide approve application: %v", err)
	}

	p := domain.NewProfileFromApplication(app, now)
	_, err = pool.Exec(ctx,
		`INSERT INTO guide_profiles
		    (id, first_name, last_name, age, sex, phone, email, guide_type,
		     languages, service_areas, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		p.ID, p.Applicant.FirstName, p.Applicant.LastName, p.Applicant.Age, p.Applicant.Sex,
		p.Applicant.Phone, p.Applicant.Email, p.Applicant.GuideType,
		p.Languages, p.ServiceAreas, string(p.Status), p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedGuide insert profile: %v", err)
	}
	return p
}

// SeedPackage inserts an unassigned tour package on the given day.
func SeedPackage(t *testing.T, pool *pgxpool.Pool, date time.Time, languages, areas []string) domain.TourPackage {
	t.Helper()

	pkg := domain.TourPackage{
		ID:                uuid.New(),
		Name:              "Package " + uniqueSuffix(),
		Date:              domain.TruncateDay(date),
		RequiredLanguages: domain.NormalizeSet(languages),
		RequiredAreas:     domain.NormalizeSet(areas),
		UpdatedAt:         time.Now().UTC().Truncate(time.Microsecond),
	}
	_, err := pool.Exec(context.Background(),
		`INSERT INTO tour_packages (id, name, tour_date, required_languages, required_areas, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		pkg.ID, pkg.Name, pkg.Date, pkg.RequiredLanguages, pkg.RequiredAreas, pkg.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedPackage: %v", err)
	}
	return pkg
}
