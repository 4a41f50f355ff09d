package service

import (
	"context"
	"fmt"
	"time"

	"gearshare-backend/internal/availability"
	"gearshare-backend/internal/domain"
	"gearshare-backend/internal/pricing"
	"gearshare-backend/internal/repository"
)

type quoteService struct {
	resourceRepo repository.ResourceRepository
	bookingRepo  repository.BookingRepository
	calc         *pricing.Calculator
	resolver     *availability.Resolver
}

func NewQuoteService(
	resourceRepo repository.ResourceRepository,
	bookingRepo repository.BookingRepository,
	calc *pricing.Calculator,
	resolver *availability.Resolver,
) QuoteService {
	return &quoteService{
		resourceRepo: resourceRepo,
		bookingRepo:  bookingRepo,
		calc:         calc,
		resolver:     resolver,
	}
}

func (s *quoteService) Quote(ctx context.Context, resourceID int64, startDate, endDate time.Time, tier domain.InsuranceTier) (*domain.PricingBreakdown, []domain.Conflict, error) {
	res, overrides, blocking, err := s.snapshot(ctx, resourceID, startDate, endDate)
	if err != nil {
		return nil, nil, err
	}

	conflicts := s.resolver.CheckConflicts(resourceID, startDate, endDate, blocking)
	conflicts = append(conflicts, s.resolver.CheckCalendar(startDate, endDate, overrides)...)

	breakdown, err := s.calc.Calculate(res.DailyRateCents, startDate, endDate, overrides, tier, res.DepositCents)
	if err != nil {
		return nil, nil, err
	}
	return breakdown, conflicts, nil
}

func (s *quoteService) CheckAvailability(ctx context.Context, resourceID int64, startDate, endDate time.Time) ([]domain.Conflict, error) {
	_, overrides, blocking, err := s.snapshot(ctx, resourceID, startDate, endDate)
	if err != nil {
		return nil, err
	}

	conflicts := s.resolver.CheckConflicts(resourceID, startDate, endDate, blocking)
	conflicts = append(conflicts, s.resolver.CheckCalendar(startDate, endDate, overrides)...)
	return conflicts, nil
}

// snapshot loads the resource, its rate overrides for the range and the
// bookings still occupying its calendar. Reversed ranges fail fast; equal
// dates pass through and surface as a minimum_days conflict.
func (s *quoteService) snapshot(ctx context.Context, resourceID int64, startDate, endDate time.Time) (*domain.Resource, []domain.RateOverride, []domain.Booking, error) {
	if endDate.Before(startDate) {
		return nil, nil, nil, domain.ErrInvalidDateRange
	}

	res, err := s.resourceRepo.GetByID(ctx, resourceID)
	if err != nil {
		return nil, nil, nil, err
	}
	if res.Status != domain.ResourceStatusActive {
		return nil, nil, nil, fmt.Errorf("resource %d is not listed: %w", resourceID, domain.ErrResourceUnavailable)
	}

	overrides, err := s.resourceRepo.ListRateOverrides(ctx, resourceID, startDate, endDate)
	if err != nil {
		return nil, nil, nil, err
	}
	blocking, err := s.bookingRepo.ListBlocking(ctx, resourceID)
	if err != nil {
		return nil, nil, nil, err
	}
	return res, overrides, blocking, nil
}
