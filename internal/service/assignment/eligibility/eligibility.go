// Package eligibility decides whether a guide can lead a tour package.
//
// Evaluate is pure: it reads nothing and mutates nothing, so callers must pass
// the guide's current profile and busy dates.
package eligibility

import (
	"time"

	"github.com/heartmarshall/tourops-backend/internal/domain"
)

// Evaluate runs every check and reports all failing reasons in a fixed order:
// status, languages, areas, date.
func Evaluate(profile domain.GuideProfile, req domain.Requirements, busyDates []time.Time) domain.Verdict {
	var v domain.Verdict

	if profile.Status != domain.GuideStatusActive {
		v.Reasons = append(v.Reasons, domain.ReasonSuspended)
	}

	if missing := domain.Missing(req.Languages, profile.Languages); len(missing) > 0 {
		v.Reasons = append(v.Reasons, domain.ReasonLanguageMismatch)
		v.MissingLanguages = missing
	}

	if missing := domain.Missing(req.Areas, profile.ServiceAreas); len(missing) > 0 {
		v.Reasons = append(v.Reasons, domain.ReasonAreaMismatch)
		v.MissingAreas = missing
	}

	if IsBusy(busyDates, req.Date) {
		v.Reasons = append(v.Reasons, domain.ReasonDateConflict)
	}

	v.Eligible = len(v.Reasons) == 0
	return v
}

// IsBusy reports whether day falls on one of the busy dates.
func IsBusy(busyDates []time.Time, day time.Time) bool {
	day = domain.TruncateDay(day)
	for _, d := range busyDates {
		if domain.TruncateDay(d).Equal(day) {
			return true
		}
	}
	return false
}

// Without returns busyDates minus one occurrence of day. Re-evaluating an
// existing assignment uses it so the package does not conflict with itself.
func Without(busyDates []time.Time, day time.Time) []time.Time {
	day = domain.TruncateDay(day)
	out := make([]time.Time, 0, len(busyDates))
	removed := false
	for _, d := range busyDates {
		if !removed && domain.TruncateDay(d).Equal(day) {
			removed = true
			continue
		}
		out = append(out, d)
	}
	return out
}
