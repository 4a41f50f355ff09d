// Package pricing computes the itemized cost of a rental from the resource's
// daily rate, per-date overrides, and the platform fee policy. All arithmetic
// is integer cents; percentage rates are basis points so rounding stays exact.
package pricing

import (
	"time"

	"gearshare-backend/internal/domain"
)

// Calculator prices date ranges. It holds only policy rates and is safe for
// concurrent use.
type Calculator struct {
	serviceFeeBps int64
	tierBps       map[domain.InsuranceTier]int64
}

// NewCalculator creates a calculator with the given fee rates in basis points
// (500 = 5%). Insurance rates apply to the subtotal; the NONE tier is free.
func NewCalculator(serviceFeeBps, basicInsuranceBps, premiumInsuranceBps int64) *Calculator {
	return &Calculator{
		serviceFeeBps: serviceFeeBps,
		tierBps: map[domain.InsuranceTier]int64{
			domain.InsuranceTierNone:    0,
			domain.InsuranceTierBasic:   basicInsuranceBps,
			domain.InsuranceTierPremium: premiumInsuranceBps,
		},
	}
}

// Calculate prices the half-open range [startDate, endDate). Each night uses
// the override rate when one exists for that date with a custom rate and the
// date marked available; otherwise the default daily rate. Dates with an
// unavailable override are an availability concern and are assumed to have
// been screened out before pricing runs.
//
// The deposit is carried on the breakdown but excluded from TotalCents; use
// AmountDueCents for the amount to charge.
func (c *Calculator) Calculate(dailyRateCents int64, startDate, endDate time.Time, overrides []domain.RateOverride, tier domain.InsuranceTier, depositCents int64) (*domain.PricingBreakdown, error) {
	if dailyRateCents <= 0 {
		return nil, domain.ErrInvalidRate
	}
	if endDate.Before(startDate) {
		return nil, domain.ErrInvalidDateRange
	}

	byDate := make(map[string]domain.RateOverride, len(overrides))
	for _, o := range overrides {
		byDate[dateKey(o.Date)] = o
	}

	days := 0
	var subtotal int64
	for d := startDate; d.Before(endDate); d = d.AddDate(0, 0, 1) {
		rate := dailyRateCents
		if o, ok := byDate[dateKey(d)]; ok && o.IsAvailable && o.CustomRateCents != nil {
			rate = *o.CustomRateCents
		}
		subtotal += rate
		days++
	}

	serviceFee := roundBps(subtotal, c.serviceFeeBps)
	insurance := roundBps(subtotal, c.tierBps[tier])

	return &domain.PricingBreakdown{
		Days:            days,
		DailyRateCents:  dailyRateCents,
		SubtotalCents:   subtotal,
		ServiceFeeCents: serviceFee,
		InsuranceTier:   tier,
		InsuranceCents:  insurance,
		DepositCents:    depositCents,
		TotalCents:      subtotal + serviceFee + insurance,
	}, nil
}

// roundBps applies a basis-point rate to an amount of cents, rounding half up
// to the nearest cent.
func roundBps(cents, bps int64) int64 {
	return (cents*bps + 5000) / 10000
}

func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}
