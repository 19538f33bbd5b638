package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/tourops-backend/internal/domain"
)

var tourDay = time.Date(2025, 9, 10, 0, 0, 0, 0, time.UTC)

func seedGuide(t *testing.T, s *Store, languages []string) domain.GuideProfile {
	t.Helper()
	ctx := context.Background()

	app := domain.GuideApplication{
		ID:           uuid.New(),
		Applicant:    domain.Applicant{FirstName: "Guide", LastName: uuid.NewString()[:6]},
		Languages:    languages,
		ServiceAreas: []string{"Ayutthaya"},
		Status:       domain.DecisionPending,
		SubmittedAt:  time.Now().UTC(),
	}
	_, err := s.Applications().Create(ctx, &app)
	require.NoError(t, err)

	p := domain.NewProfileFromApplication(app, time.Now().UTC())
	_, err = s.Guides().Create(ctx, &p)
	require.NoError(t, err)
	return p
}

func seedPackage(t *testing.T, s *Store, date time.Time) domain.TourPackage {
	t.Helper()
	p, err := s.Packages().Upsert(context.Background(), &domain.TourPackage{ID: uuid.New(), Name: "pkg", Date: date})
	require.NoError(t, err)
	return *p
}

func TestRunInTx_RollbackDiscardsWrites(t *testing.T) {
	t.Parallel()
	s := New()
	ctx := context.Background()
	g := seedGuide(t, s, []string{"Thai"})
	pkg := seedPackage(t, s, tourDay)
	sentinel := errors.New("boom")

	err := s.RunInTx(ctx, func(txCtx context.Context) error {
		require.NoError(t, s.Packages().SetAssignedGuide(txCtx, pkg.ID, &g.ID))
		require.NoError(t, s.Packages().AddBusyDate(txCtx, g.ID, pkg.ID, pkg.Date))
		_, err := s.Audit().Create(txCtx, domain.AuditEntry{ID: uuid.New(), SubjectType: domain.SubjectPackage, SubjectID: pkg.ID, Action: domain.AuditActionAssigned})
		require.NoError(t, err)
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)

	got, err := s.Packages().GetByID(ctx, pkg.ID)
	require.NoError(t, err)
	assert.Nil(t, got.AssignedGuideID)

	dates, err := s.Packages().BusyDates(ctx, g.ID)
	require.NoError(t, err)
	assert.Empty(t, dates)

	n, err := s.Audit().CountBySubject(ctx, domain.SubjectPackage, pkg.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRunInTx_RollbackOnPanic(t *testing.T) {
	t.Parallel()
	s := New()
	pkg := seedPackage(t, s, tourDay)

	assert.PanicsWithValue(t, "test panic", func() {
		_ = s.RunInTx(context.Background(), func(txCtx context.Context) error {
			pkg.Name = "renamed"
			_, _ = s.Packages().Upsert(txCtx, &pkg)
			panic("test panic")
		})
	})

	got, err := s.Packages().GetByID(context.Background(), pkg.ID)
	require.NoError(t, err)
	assert.Equal(t, "pkg", got.Name)
}

func TestRunInTx_NestedJoinsOuter(t *testing.T) {
	t.Parallel()
	s := New()

	done := make(chan error, 1)
	go func() {
		done <- s.RunInTx(context.Background(), func(outer context.Context) error {
			return s.RunInTx(outer, func(context.Context) error { return nil })
		})
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("nested RunInTx deadlocked")
	}
}

func TestRunInTx_Serializes(t *testing.T) {
	t.Parallel()
	s := New()
	pkg := seedPackage(t, s, tourDay)

	const workers = 20
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.RunInTx(context.Background(), func(txCtx context.Context) error {
				cur, err := s.Packages().GetByIDForUpdate(txCtx, pkg.ID)
				if err != nil {
					return err
				}
				cur.Name += "x"
				_, err = s.Packages().Upsert(txCtx, cur)
				return err
			})
		}()
	}
	wg.Wait()

	got, err := s.Packages().GetByID(context.Background(), pkg.ID)
	require.NoError(t, err)
	assert.Len(t, got.Name, len("pkg")+workers)
}

func TestReturnedValuesAreCopies(t *testing.T) {
	t.Parallel()
	s := New()
	g := seedGuide(t, s, []string{"Thai"})

	got, err := s.Guides().GetByID(context.Background(), g.ID)
	require.NoError(t, err)
	got.Languages[0] = "Klingon"

	again, err := s.Guides().GetByID(context.Background(), g.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Thai"}, again.Languages)
}

func TestGuideCreate_RequiresApplication(t *testing.T) {
	t.Parallel()
	s := New()

	_, err := s.Guides().Create(context.Background(), &domain.GuideProfile{ID: uuid.New()})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBusyIndex_UniquePerGuideAndDay(t *testing.T) {
	t.Parallel()
	s := New()
	ctx := context.Background()
	g := seedGuide(t, s, []string{"Thai"})
	p1 := seedPackage(t, s, tourDay)
	p2 := seedPackage(t, s, tourDay)

	require.NoError(t, s.Packages().AddBusyDate(ctx, g.ID, p1.ID, tourDay))
	require.ErrorIs(t, s.Packages().AddBusyDate(ctx, g.ID, p2.ID, tourDay.Add(5*time.Hour)), domain.ErrAlreadyExists)
}

func TestRebuildBusyIndex(t *testing.T) {
	t.Parallel()
	s := New()
	ctx := context.Background()
	g := seedGuide(t, s, []string{"Thai"})
	p1 := seedPackage(t, s, tourDay)
	p2 := seedPackage(t, s, tourDay.AddDate(0, 0, 1))
	seedPackage(t, s, tourDay.AddDate(0, 0, 2))

	require.NoError(t, s.Packages().SetAssignedGuide(ctx, p1.ID, &g.ID))
	require.NoError(t, s.Packages().SetAssignedGuide(ctx, p2.ID, &g.ID))
	// stale row for a package that is no longer assigned
	require.NoError(t, s.Packages().AddBusyDate(ctx, g.ID, uuid.New(), tourDay.AddDate(0, 0, 5)))

	n, err := s.Packages().RebuildBusyIndex(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	dates, err := s.Packages().BusyDates(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{tourDay, tourDay.AddDate(0, 0, 1)}, dates)
}

func TestAuditList_OrderAndPaging(t *testing.T) {
	t.Parallel()
	s := New()
	ctx := context.Background()
	subject := uuid.New()
	at := time.Now().UTC()

	for _, action := range []domain.AuditAction{domain.AuditActionSubmitted, domain.AuditActionApproved} {
		_, err := s.Audit().Create(ctx, domain.AuditEntry{ID: uuid.New(), SubjectType: domain.SubjectApplication, SubjectID: subject, Action: action, Actor: "a", CreatedAt: at})
		require.NoError(t, err)
	}

	entries, err := s.Audit().ListBySubject(ctx, domain.SubjectApplication, subject)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, domain.AuditActionSubmitted, entries[0].Action)
	assert.Less(t, entries[0].Seq, entries[1].Seq)

	page, total, err := s.Audit().List(ctx, domain.AuditFilter{Page: domain.Page{Limit: 1, Offset: 1}})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, page, 1)
	assert.Equal(t, domain.AuditActionApproved, page[0].Action)
}

// openTx runs a transaction in the background that changes the guide's
// languages and then waits on release before appending the audit entry.
// The returned channel yields the transaction result.
func openTx(s *Store, guideID uuid.UUID, written chan<- struct{}, release <-chan struct{}, result error) <-chan error {
	done := make(chan error, 1)
	go func() {
		done <- s.RunInTx(context.Background(), func(txCtx context.Context) error {
			p, err := s.Guides().GetByIDForUpdate(txCtx, guideID)
			if err != nil {
				return err
			}
			p.Languages = []string{"English"}
			if _, err := s.Guides().Update(txCtx, p); err != nil {
				return err
			}
			close(written)
			<-release
			if _, err := s.Audit().Create(txCtx, domain.AuditEntry{
				ID: uuid.New(), SubjectType: domain.SubjectGuide, SubjectID: guideID,
				Action: domain.AuditActionApproved, Actor: "admin", CreatedAt: time.Now().UTC(),
			}); err != nil {
				return err
			}
			return result
		})
	}()
	return done
}

func TestRunInTx_ReadersSeeOnlyCommittedState(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		result        error
		wantLanguages []string
		wantAudit     int
	}{
		{"rolled back", errors.New("boom"), []string{"Chinese"}, 0},
		{"committed", nil, []string{"English"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := New()
			ctx := context.Background()
			g := seedGuide(t, s, []string{"Chinese"})

			written := make(chan struct{})
			release := make(chan struct{})
			done := openTx(s, g.ID, written, release, tt.result)
			<-written

			during, err := s.Guides().GetByID(ctx, g.ID)
			require.NoError(t, err)
			assert.Equal(t, []string{"Chinese"}, during.Languages)

			listed, _, err := s.Guides().List(ctx, domain.GuideFilter{})
			require.NoError(t, err)
			require.Len(t, listed, 1)
			assert.Equal(t, []string{"Chinese"}, listed[0].Languages)

			entries, err := s.Audit().ListBySubject(ctx, domain.SubjectGuide, g.ID)
			require.NoError(t, err)
			assert.Empty(t, entries)

			close(release)
			require.ErrorIs(t, <-done, tt.result)

			after, err := s.Guides().GetByID(ctx, g.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantLanguages, after.Languages)

			n, err := s.Audit().CountBySubject(ctx, domain.SubjectGuide, g.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantAudit, n)
		})
	}
}

func TestWriteOutsideTx_WaitsForOpenTx(t *testing.T) {
	t.Parallel()
	s := New()
	ctx := context.Background()
	g := seedGuide(t, s, []string{"Chinese"})

	written := make(chan struct{})
	release := make(chan struct{})
	done := openTx(s, g.ID, written, release, errors.New("boom"))
	<-written

	upserted := make(chan error, 1)
	pkgID := uuid.New()
	go func() {
		_, err := s.Packages().Upsert(ctx, &domain.TourPackage{ID: pkgID, Name: "late", Date: tourDay})
		upserted <- err
	}()

	select {
	case <-upserted:
		t.Fatal("write outside the transaction completed while it was open")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	require.Error(t, <-done)
	require.NoError(t, <-upserted)

	// The rollback must not drop the write that waited for it.
	_, err := s.Packages().GetByID(ctx, pkgID)
	require.NoError(t, err)
}

func TestRunReadOnly_ReadsOneSnapshot(t *testing.T) {
	t.Parallel()
	s := New()
	ctx := context.Background()
	g := seedGuide(t, s, []string{"Chinese"})

	err := s.RunReadOnly(ctx, func(txCtx context.Context) error {
		before, err := s.Guides().GetByID(txCtx, g.ID)
		require.NoError(t, err)

		// A commit made while the snapshot is open does not block and is not seen.
		changed := *before
		changed.Languages = []string{"English"}
		_, err = s.Guides().Update(ctx, &changed)
		require.NoError(t, err)

		again, err := s.Guides().GetByID(txCtx, g.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"Chinese"}, again.Languages)

		// Writes through the snapshot are never published.
		_, err = s.Packages().Upsert(txCtx, &domain.TourPackage{ID: uuid.New(), Name: "ghost", Date: tourDay})
		require.NoError(t, err)
		return nil
	})
	require.NoError(t, err)

	after, err := s.Guides().GetByID(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"English"}, after.Languages)

	_, total, err := s.Packages().List(ctx, domain.PackageFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
}
