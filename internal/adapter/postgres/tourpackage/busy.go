package tourpackage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	postgres "github.com/heartmarshall/tourops-backend/internal/adapter/postgres"
	"github.com/heartmarshall/tourops-backend/internal/domain"
)

const busyDatesSQL = `
SELECT busy_date FROM guide_busy_dates WHERE guide_id = $1 ORDER BY busy_date`

const addBusyDateSQL = `
INSERT INTO guide_busy_dates (package_id, guide_id, busy_date) VALUES ($1, $2, $3)`

const removeBusyDateSQL = `DELETE FROM guide_busy_dates WHERE package_id = $1`

const clearBusyIndexSQL = `DELETE FROM guide_busy_dates`

const fillBusyIndexSQL = `
INSERT INTO guide_busy_dates (package_id, guide_id, busy_date)
SELECT id, assigned_guide_id, tour_date
FROM tour_packages
WHERE assigned_guide_id IS NOT NULL
ON CONFLICT DO NOTHING`

// BusyDates returns the days on which the guide already leads a package.
func (r *Repo) BusyDates(ctx context.Context, guideID uuid.UUID) ([]time.Time, error) {
	rows, err := postgres.QuerierFromCtx(ctx, r.pool).Query(ctx, busyDatesSQL, guideID)
	if err != nil {
		return nil, fmt.Errorf("get busy dates for guide %s: %w", guideID, err)
	}
	defer rows.Close()

	dates := make([]time.Time, 0)
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scan busy date: %w", err)
		}
		dates = append(dates, domain.TruncateDay(d))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get busy dates for guide %s: %w", guideID, err)
	}
	return dates, nil
}

// AddBusyDate records that the guide is busy on date because of packageID.
// Returns domain.ErrAlreadyExists if the guide is already busy that day.
func (r *Repo) AddBusyDate(ctx context.Context, guideID, packageID uuid.UUID, date time.Time) error {
	_, err := postgres.QuerierFromCtx(ctx, r.pool).Exec(ctx, addBusyDateSQL, packageID, guideID, domain.TruncateDay(date))
	if err != nil {
		return postgres.MapError(err, "guide_busy_date", packageID)
	}
	return nil
}

// RemoveBusyDate drops the busy day contributed by packageID, if any.
func (r *Repo) RemoveBusyDate(ctx context.Context, packageID uuid.UUID) error {
	if _, err := postgres.QuerierFromCtx(ctx, r.pool).Exec(ctx, removeBusyDateSQL, packageID); err != nil {
		return postgres.MapError(err, "guide_busy_date", packageID)
	}
	return nil
}

// RebuildBusyIndex recomputes the whole index from package assignments and
// returns the number of rows written. Run it inside a transaction.
func (r *Repo) RebuildBusyIndex(ctx context.Context) (int, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	if _, err := q.Exec(ctx, clearBusyIndexSQL); err != nil {
		return 0, fmt.Errorf("clear busy index: %w", err)
	}
	tag, err := q.Exec(ctx, fillBusyIndexSQL)
	if err != nil {
		return 0, fmt.Errorf("fill busy index: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
