package domain

import "time"

// RateOverride is a per-date price or availability exception for a resource.
// Absence of an override for a date means the default daily rate applies and
// the date is bookable.
type RateOverride struct {
	ResourceID      int64     `json:"resource_id"`
	Date            time.Time `json:"date"`
	IsAvailable     bool      `json:"is_available"`
	CustomRateCents *int64    `json:"custom_rate_cents,omitempty"`
}

// PricingBreakdown is the itemized cost of a rental. It is computed, never a
// source of truth; bookings snapshot the fields they need at request time.
type PricingBreakdown struct {
	Days            int           `json:"days"`
	DailyRateCents  int64         `json:"daily_rate_cents"`
	SubtotalCents   int64         `json:"subtotal_cents"`
	ServiceFeeCents int64         `json:"service_fee_cents"`
	InsuranceTier   InsuranceTier `json:"insurance_tier"`
	InsuranceCents  int64         `json:"insurance_cents"`
	DepositCents    int64         `json:"deposit_cents"`
	// TotalCents is the rental cost: subtotal + service fee + insurance.
	// The deposit is collected alongside but is refundable, not revenue.
	TotalCents int64 `json:"total_cents"`
}

// AmountDueCents is the amount charged at activation: rental cost plus the
// refundable deposit.
func (p *PricingBreakdown) AmountDueCents() int64 {
	return p.TotalCents + p.DepositCents
}
