package domain

import "time"

type InspectionType string

const (
	InspectionTypePickup InspectionType = "PICKUP"
	InspectionTypeReturn InspectionType = "RETURN"
)

type ChecklistStatus string

const (
	ChecklistStatusGood    ChecklistStatus = "GOOD"
	ChecklistStatusFair    ChecklistStatus = "FAIR"
	ChecklistStatusDamaged ChecklistStatus = "DAMAGED"
)

type ChecklistItem struct {
	Item   string          `json:"item"`
	Status ChecklistStatus `json:"status"`
	Notes  string          `json:"notes,omitempty"`
}

// Inspection records the condition handoff at pickup or return. There is at
// most one per (booking, type). The return inspection starts the claim window
// once the renter has verified it; owner verification closes the window early.
type Inspection struct {
	ID               int64          `json:"id"`
	BookingID        int64          `json:"booking_id"`
	Type             InspectionType `json:"type"`
	RecordedAt       time.Time      `json:"recorded_at"`
	VerifiedByOwner  bool           `json:"verified_by_owner"`
	VerifiedByRenter bool           `json:"verified_by_renter"`
	// AutoAccepted is set by the sweep when the claim window lapses with no
	// claim and no owner verification. Silence counts as acceptance.
	AutoAccepted bool            `json:"auto_accepted"`
	Photos       []string        `json:"photos,omitempty"`
	Checklist    []ChecklistItem `json:"checklist,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// ReturnConfirmed reports whether the return has been accepted, either by the
// owner explicitly or by the claim window lapsing.
func (i *Inspection) ReturnConfirmed() bool {
	return i.Type == InspectionTypeReturn && (i.VerifiedByOwner || i.AutoAccepted)
}
