package domain

import "time"

type ClaimStatus string

const (
	ClaimStatusPending   ClaimStatus = "PENDING"
	ClaimStatusAccepted  ClaimStatus = "ACCEPTED"
	ClaimStatusDisputed  ClaimStatus = "DISPUTED"
	ClaimStatusEscalated ClaimStatus = "ESCALATED"
	ClaimStatusResolved  ClaimStatus = "RESOLVED"
)

type ClaimAction string

const (
	ClaimActionAccept   ClaimAction = "ACCEPT"
	ClaimActionCounter  ClaimAction = "COUNTER"
	ClaimActionEscalate ClaimAction = "ESCALATE"
)

// RenterResponse is the renter's answer to a filed claim.
type RenterResponse struct {
	Action            ClaimAction `json:"action"`
	CounterOfferCents *int64      `json:"counter_offer_cents,omitempty"`
	Notes             string      `json:"notes,omitempty"`
	RespondedAt       time.Time   `json:"responded_at"`
}

// DamageClaim is an owner's damage report against a booking. At most one
// exists per booking, and it must be filed inside the claim window.
type DamageClaim struct {
	ID                 int64           `json:"id"`
	BookingID          int64           `json:"booking_id"`
	EstimatedCostCents int64           `json:"estimated_cost_cents"`
	EvidencePhotos     []string        `json:"evidence_photos,omitempty"`
	Description        string          `json:"description,omitempty"`
	Status             ClaimStatus     `json:"status"`
	FiledAt            time.Time       `json:"filed_at"`
	RenterResponse     *RenterResponse `json:"renter_response,omitempty"`
	// Resolution fields, written when the claim is resolved.
	AwardedCents    *int64     `json:"awarded_cents,omitempty"`
	ResolutionNotes string     `json:"resolution_notes,omitempty"`
	ResolvedAt      *time.Time `json:"resolved_at,omitempty"`
}

// Open reports whether the claim still blocks escrow release.
func (c *DamageClaim) Open() bool {
	return c.Status != ClaimStatusResolved
}
