// Package availability decides whether a requested date range is bookable.
// It evaluates duration bounds and overlap against a snapshot of existing
// bookings; serializing concurrent writes is the caller's job.
package availability

import (
	"fmt"
	"time"

	"gearshare-backend/internal/domain"
)

// Resolver checks requested ranges against the duration policy and a booking
// snapshot. All rules are evaluated independently and every violation is
// returned; an empty result means the range is bookable.
type Resolver struct {
	minDays int
	maxDays int
}

func NewResolver(minDays, maxDays int) *Resolver {
	return &Resolver{minDays: minDays, maxDays: maxDays}
}

// CheckConflicts validates [startDate, endDate) against the duration bounds
// and against every existing booking that still blocks the calendar (PENDING,
// APPROVED or ACTIVE). Ranges are half-open, so a new booking starting the
// day an existing one ends does not conflict.
func (r *Resolver) CheckConflicts(resourceID int64, startDate, endDate time.Time, existing []domain.Booking) []domain.Conflict {
	var conflicts []domain.Conflict

	days := daysBetween(startDate, endDate)
	if days < r.minDays {
		conflicts = append(conflicts, domain.Conflict{
			Type:    domain.ConflictTypeMinimumDays,
			Message: fmt.Sprintf("rental must be at least %d day(s), requested %d", r.minDays, days),
		})
	}
	if days > r.maxDays {
		conflicts = append(conflicts, domain.Conflict{
			Type:    domain.ConflictTypeMaximumDays,
			Message: fmt.Sprintf("rental must be at most %d days, requested %d", r.maxDays, days),
		})
	}

	for _, b := range existing {
		if b.ResourceID != resourceID || !b.Status.BlocksBooking() {
			continue
		}
		if startDate.Before(b.EndDate) && b.StartDate.Before(endDate) {
			conflicts = append(conflicts, domain.Conflict{
				Type: domain.ConflictTypeOverlap,
				Message: fmt.Sprintf("dates conflict with an existing booking from %s to %s",
					b.StartDate.Format("2006-01-02"), b.EndDate.Format("2006-01-02")),
				BookingID: b.ID,
			})
		}
	}

	return conflicts
}

// CheckCalendar reports every date in [startDate, endDate) that the owner has
// blocked out via a rate override with is_available=false.
func (r *Resolver) CheckCalendar(startDate, endDate time.Time, overrides []domain.RateOverride) []domain.Conflict {
	blocked := make(map[string]bool, len(overrides))
	for _, o := range overrides {
		if !o.IsAvailable {
			blocked[o.Date.Format("2006-01-02")] = true
		}
	}

	var conflicts []domain.Conflict
	for d := startDate; d.Before(endDate); d = d.AddDate(0, 0, 1) {
		key := d.Format("2006-01-02")
		if blocked[key] {
			conflicts = append(conflicts, domain.Conflict{
				Type:    domain.ConflictTypeUnavailableDate,
				Message: fmt.Sprintf("the resource is not available on %s", key),
			})
		}
	}
	return conflicts
}

func daysBetween(start, end time.Time) int {
	return int(end.Sub(start).Hours() / 24)
}
