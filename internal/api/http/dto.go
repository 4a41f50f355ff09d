package http

import (
	"fmt"
	"time"

	"gearshare-backend/internal/domain"

	"github.com/go-playground/validator/v10"
)

// Booking dates are calendar days, not instants. The wire format is
// YYYY-MM-DD and the parsed value is midnight UTC.
const dateLayout = "2006-01-02"

var validate = validator.New()

type createBookingRequest struct {
	ResourceID    int64  `json:"resource_id" validate:"required,gt=0"`
	StartDate     string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate       string `json:"end_date" validate:"required,datetime=2006-01-02"`
	InsuranceTier string `json:"insurance_tier" validate:"omitempty,oneof=NONE BASIC PREMIUM"`
}

type declineBookingRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

type cancelBookingRequest struct {
	Reason         string `json:"reason" validate:"max=500"`
	RefundEligible bool   `json:"refund_eligible"`
}

type recordInspectionRequest struct {
	Type      string                 `json:"type" validate:"required,oneof=PICKUP RETURN"`
	Checklist []domain.ChecklistItem `json:"checklist" validate:"omitempty,dive"`
	// Photo references are opaque storage keys or URLs; only emptiness is
	// rejected here.
	Photos []string `json:"photos" validate:"omitempty,dive,required"`
}

type fileClaimRequest struct {
	EstimatedCostCents int64    `json:"estimated_cost_cents" validate:"required,gt=0"`
	Description        string   `json:"description" validate:"required,max=2000"`
	Photos             []string `json:"photos" validate:"omitempty,dive,required"`
}

type respondClaimRequest struct {
	Action            string `json:"action" validate:"required,oneof=ACCEPT COUNTER ESCALATE"`
	CounterOfferCents *int64 `json:"counter_offer_cents" validate:"omitempty,gte=0"`
	Notes             string `json:"notes" validate:"max=2000"`
}

type resolveClaimRequest struct {
	AwardCents int64  `json:"award_cents" validate:"gte=0"`
	Notes      string `json:"notes" validate:"max=2000"`
}

// bookingWithConflicts is the create/approve response: either the booking
// moved, or the conflicts that stopped it.
type bookingWithConflicts struct {
	Booking   *domain.Booking   `json:"booking,omitempty"`
	Conflicts []domain.Conflict `json:"conflicts,omitempty"`
}

type bookingListResponse struct {
	Bookings   []domain.Booking `json:"bookings"`
	TotalCount int32            `json:"total_count"`
	Page       int32            `json:"page"`
	PageSize   int32            `json:"page_size"`
}

type quoteResponse struct {
	Breakdown *domain.PricingBreakdown `json:"breakdown"`
	Conflicts []domain.Conflict        `json:"conflicts,omitempty"`
	Available bool                     `json:"available"`
}

type availabilityResponse struct {
	Conflicts []domain.Conflict `json:"conflicts"`
	Available bool              `json:"available"`
}

type settlementResponse struct {
	Payment *domain.Payment `json:"payment"`
	Payouts []domain.Payout `json:"payouts"`
}

type claimResolutionResponse struct {
	Claim   *domain.DamageClaim `json:"claim"`
	Payment *domain.Payment     `json:"payment"`
}

type activateBookingResponse struct {
	Booking *domain.Booking `json:"booking"`
	Payment *domain.Payment `json:"payment"`
}

func parseDate(value string) (time.Time, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", value)
	}
	return t.UTC(), nil
}

func parseTier(value string) domain.InsuranceTier {
	switch value {
	case string(domain.InsuranceTierBasic):
		return domain.InsuranceTierBasic
	case string(domain.InsuranceTierPremium):
		return domain.InsuranceTierPremium
	default:
		return domain.InsuranceTierNone
	}
}

// validationMessage flattens validator errors into a single human-readable
// message for the error envelope.
func validationMessage(err error) string {
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		first := verrs[0]
		return fmt.Sprintf("field %s failed validation on %q", first.Field(), first.Tag())
	}
	return err.Error()
}
