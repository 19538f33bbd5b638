package memory

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/tourops-backend/internal/domain"
)

// PackageRepo stores tour packages and the guide busy-date index.
type PackageRepo struct {
	s *Store
}

func clonePackage(p domain.TourPackage) *domain.TourPackage {
	p.RequiredLanguages = cloneStrings(p.RequiredLanguages)
	p.RequiredAreas = cloneStrings(p.RequiredAreas)
	p.AssignedGuideID = clonePtr(p.AssignedGuideID)
	return &p
}

// Upsert creates the package or updates its directory attributes. The
// assigned guide is kept.
func (r *PackageRepo) Upsert(ctx context.Context, pkg *domain.TourPackage) (*domain.TourPackage, error) {
	st, done := r.s.write(ctx)
	defer done()

	next := *clonePackage(*pkg)
	next.Date = domain.TruncateDay(next.Date)
	next.AssignedGuideID = nil
	if cur, ok := st.packages[pkg.ID]; ok {
		next.AssignedGuideID = clonePtr(cur.AssignedGuideID)
	}
	st.packages[pkg.ID] = next
	return clonePackage(next), nil
}

// SetAssignedGuide binds (guideID != nil) or clears the package's guide.
func (r *PackageRepo) SetAssignedGuide(ctx context.Context, packageID uuid.UUID, guideID *uuid.UUID) error {
	st, done := r.s.write(ctx)
	defer done()

	cur, ok := st.packages[packageID]
	if !ok {
		return notFound("tour_package", packageID)
	}
	if guideID != nil {
		if _, ok := st.guides[*guideID]; !ok {
			return notFound("tour_package", packageID)
		}
	}
	cur.AssignedGuideID = clonePtr(guideID)
	cur.UpdatedAt = time.Now().UTC()
	st.packages[packageID] = cur
	return nil
}

// GetByID returns a package by ID.
func (r *PackageRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.TourPackage, error) {
	st, done := r.s.read(ctx)
	defer done()

	p, ok := st.packages[id]
	if !ok {
		return nil, notFound("tour_package", id)
	}
	return clonePackage(p), nil
}

// GetByIDForUpdate is GetByID; the store lock already serializes transactions.
func (r *PackageRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.TourPackage, error) {
	return r.GetByID(ctx, id)
}

// ListAssigned returns every assigned package, or only those of one guide.
func (r *PackageRepo) ListAssigned(ctx context.Context, guideID *uuid.UUID) ([]*domain.TourPackage, error) {
	st, done := r.s.read(ctx)
	defer done()

	assigned := true
	return r.filter(st, domain.PackageFilter{Assigned: &assigned, GuideID: guideID}), nil
}

// List returns packages ordered by date with the total match count.
func (r *PackageRepo) List(ctx context.Context, filter domain.PackageFilter) ([]*domain.TourPackage, int, error) {
	st, done := r.s.read(ctx)
	defer done()

	matched := r.filter(st, filter)
	return paginate(matched, filter.Page), len(matched), nil
}

func (r *PackageRepo) filter(st *state, filter domain.PackageFilter) []*domain.TourPackage {
	var matched []*domain.TourPackage
	for _, p := range st.packages {
		if filter.Assigned != nil && p.IsAssigned() != *filter.Assigned {
			continue
		}
		if filter.GuideID != nil && (p.AssignedGuideID == nil || *p.AssignedGuideID != *filter.GuideID) {
			continue
		}
		matched = append(matched, clonePackage(p))
	}
	slices.SortFunc(matched, func(a, b *domain.TourPackage) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		return compareIDs(a.ID, b.ID)
	})
	return matched
}

// ---------------------------------------------------------------------------
// Busy-date index
// ---------------------------------------------------------------------------

// BusyDates returns the days on which the guide already leads a package.
func (r *PackageRepo) BusyDates(ctx context.Context, guideID uuid.UUID) ([]time.Time, error) {
	st, done := r.s.read(ctx)
	defer done()

	dates := make([]time.Time, 0)
	for _, row := range st.busy {
		if row.GuideID == guideID {
			dates = append(dates, row.Date)
		}
	}
	slices.SortFunc(dates, time.Time.Compare)
	return dates, nil
}

// AddBusyDate records that the guide is busy on date because of packageID.
func (r *PackageRepo) AddBusyDate(ctx context.Context, guideID, packageID uuid.UUID, date time.Time) error {
	st, done := r.s.write(ctx)
	defer done()

	day := domain.TruncateDay(date)
	if _, ok := st.busy[packageID]; ok {
		return fmt.Errorf("guide_busy_date %s: %w", packageID, domain.ErrAlreadyExists)
	}
	for _, row := range st.busy {
		if row.GuideID == guideID && row.Date.Equal(day) {
			return fmt.Errorf("guide_busy_date %s: %w", packageID, domain.ErrAlreadyExists)
		}
	}
	st.busy[packageID] = busyRow{GuideID: guideID, Date: day}
	return nil
}

// RemoveBusyDate drops the busy day contributed by packageID, if any.
func (r *PackageRepo) RemoveBusyDate(ctx context.Context, packageID uuid.UUID) error {
	st, done := r.s.write(ctx)
	defer done()

	delete(st.busy, packageID)
	return nil
}

// RebuildBusyIndex recomputes the index from package assignments and
// returns the number of rows written.
func (r *PackageRepo) RebuildBusyIndex(ctx context.Context) (int, error) {
	st, done := r.s.write(ctx)
	defer done()

	busy := make(map[uuid.UUID]busyRow)
	taken := make(map[busyRow]struct{})

	pkgs := make([]domain.TourPackage, 0, len(st.packages))
	for _, p := range st.packages {
		if p.IsAssigned() {
			pkgs = append(pkgs, p)
		}
	}
	slices.SortFunc(pkgs, func(a, b domain.TourPackage) int { return compareIDs(a.ID, b.ID) })

	for _, p := range pkgs {
		row := busyRow{GuideID: *p.AssignedGuideID, Date: domain.TruncateDay(p.Date)}
		if _, dup := taken[row]; dup {
			continue
		}
		taken[row] = struct{}{}
		busy[p.ID] = row
	}
	st.busy = busy
	return len(busy), nil
}
