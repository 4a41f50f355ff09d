package domain

type ConflictType string

const (
	ConflictTypeMinimumDays     ConflictType = "minimum_days"
	ConflictTypeMaximumDays     ConflictType = "maximum_days"
	ConflictTypeOverlap         ConflictType = "overlap"
	ConflictTypeUnavailableDate ConflictType = "unavailable_date"
)

// Conflict is one reason a requested date range cannot be booked. Conflicts
// are data, not errors: a single check can surface several at once and the
// caller shows all of them.
type Conflict struct {
	Type    ConflictType `json:"type"`
	Message string       `json:"message"`
	// BookingID identifies the colliding booking for overlap conflicts.
	BookingID int64 `json:"booking_id,omitempty"`
}
