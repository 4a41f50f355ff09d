package service_test

import (
	"context"
	"testing"
	"time"

	"gearshare-backend/internal/availability"
	"gearshare-backend/internal/domain"
	"gearshare-backend/internal/pricing"
	"gearshare-backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type quoteFixture struct {
	resourceRepo *MockResourceRepo
	bookingRepo  *MockBookingRepo
	svc          service.QuoteService
}

func newQuoteFixture() *quoteFixture {
	f := &quoteFixture{
		resourceRepo: new(MockResourceRepo),
		bookingRepo:  new(MockBookingRepo),
	}
	f.svc = service.NewQuoteService(
		f.resourceRepo, f.bookingRepo,
		pricing.NewCalculator(1000, 500, 1000),
		availability.NewResolver(1, 30),
	)
	return f
}

func listedResource() *domain.Resource {
	return &domain.Resource{
		ID: 2, OwnerID: 10, Name: "Canon EOS R5",
		DailyRateCents: 5000, DepositCents: 10000,
		Status: domain.ResourceStatusActive,
	}
}

func TestQuoteService_Quote(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC)

	t.Run("Success", func(t *testing.T) {
		f := newQuoteFixture()
		f.resourceRepo.On("GetByID", ctx, int64(2)).Return(listedResource(), nil)
		f.resourceRepo.On("ListRateOverrides", ctx, int64(2), start, end).Return([]domain.RateOverride{}, nil)
		f.bookingRepo.On("ListBlocking", ctx, int64(2)).Return([]domain.Booking{}, nil)

		breakdown, conflicts, err := f.svc.Quote(ctx, 2, start, end, domain.InsuranceTierBasic)
		assert.NoError(t, err)
		assert.Empty(t, conflicts)
		assert.Equal(t, 3, breakdown.Days)
		assert.Equal(t, int64(15000), breakdown.SubtotalCents)
		assert.Equal(t, int64(1500), breakdown.ServiceFeeCents)
		assert.Equal(t, int64(750), breakdown.InsuranceCents)
		assert.Equal(t, int64(17250), breakdown.TotalCents)
		assert.Equal(t, int64(27250), breakdown.AmountDueCents())
	})

	t.Run("Custom Rate Override", func(t *testing.T) {
		f := newQuoteFixture()
		weekend := int64(8000)
		overrides := []domain.RateOverride{
			{ResourceID: 2, Date: time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC), IsAvailable: true, CustomRateCents: &weekend},
		}
		f.resourceRepo.On("GetByID", ctx, int64(2)).Return(listedResource(), nil)
		f.resourceRepo.On("ListRateOverrides", ctx, int64(2), start, end).Return(overrides, nil)
		f.bookingRepo.On("ListBlocking", ctx, int64(2)).Return([]domain.Booking{}, nil)

		breakdown, conflicts, err := f.svc.Quote(ctx, 2, start, end, domain.InsuranceTierNone)
		assert.NoError(t, err)
		assert.Empty(t, conflicts)
		assert.Equal(t, int64(18000), breakdown.SubtotalCents)
		assert.Equal(t, int64(0), breakdown.InsuranceCents)
	})

	t.Run("Blocked Date Surfaces As Conflict", func(t *testing.T) {
		f := newQuoteFixture()
		overrides := []domain.RateOverride{
			{ResourceID: 2, Date: time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC), IsAvailable: false},
		}
		f.resourceRepo.On("GetByID", ctx, int64(2)).Return(listedResource(), nil)
		f.resourceRepo.On("ListRateOverrides", ctx, int64(2), start, end).Return(overrides, nil)
		f.bookingRepo.On("ListBlocking", ctx, int64(2)).Return([]domain.Booking{}, nil)

		breakdown, conflicts, err := f.svc.Quote(ctx, 2, start, end, domain.InsuranceTierNone)
		assert.NoError(t, err)
		assert.NotNil(t, breakdown)
		if assert.Len(t, conflicts, 1) {
			assert.Equal(t, domain.ConflictTypeUnavailableDate, conflicts[0].Type)
		}
	})

	t.Run("Overlap Conflict", func(t *testing.T) {
		f := newQuoteFixture()
		blocking := []domain.Booking{{
			ID: 7, ResourceID: 2, Status: domain.BookingStatusApproved,
			StartDate: time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2024, 6, 7, 0, 0, 0, 0, time.UTC),
		}}
		f.resourceRepo.On("GetByID", ctx, int64(2)).Return(listedResource(), nil)
		f.resourceRepo.On("ListRateOverrides", ctx, int64(2), start, end).Return([]domain.RateOverride{}, nil)
		f.bookingRepo.On("ListBlocking", ctx, int64(2)).Return(blocking, nil)

		_, conflicts, err := f.svc.Quote(ctx, 2, start, end, domain.InsuranceTierNone)
		assert.NoError(t, err)
		if assert.Len(t, conflicts, 1) {
			assert.Equal(t, domain.ConflictTypeOverlap, conflicts[0].Type)
			assert.Equal(t, int64(7), conflicts[0].BookingID)
		}
	})

	t.Run("Same Day Fails Minimum", func(t *testing.T) {
		f := newQuoteFixture()
		f.resourceRepo.On("GetByID", ctx, int64(2)).Return(listedResource(), nil)
		f.resourceRepo.On("ListRateOverrides", ctx, int64(2), start, start).Return([]domain.RateOverride{}, nil)
		f.bookingRepo.On("ListBlocking", ctx, int64(2)).Return([]domain.Booking{}, nil)

		breakdown, conflicts, err := f.svc.Quote(ctx, 2, start, start, domain.InsuranceTierNone)
		assert.NoError(t, err)
		assert.Equal(t, 0, breakdown.Days)
		if assert.Len(t, conflicts, 1) {
			assert.Equal(t, domain.ConflictTypeMinimumDays, conflicts[0].Type)
		}
	})

	t.Run("Too Long Fails Maximum", func(t *testing.T) {
		f := newQuoteFixture()
		longEnd := start.AddDate(0, 0, 31)
		f.resourceRepo.On("GetByID", ctx, int64(2)).Return(listedResource(), nil)
		f.resourceRepo.On("ListRateOverrides", ctx, int64(2), start, longEnd).Return([]domain.RateOverride{}, nil)
		f.bookingRepo.On("ListBlocking", ctx, int64(2)).Return([]domain.Booking{}, nil)

		_, conflicts, err := f.svc.Quote(ctx, 2, start, longEnd, domain.InsuranceTierNone)
		assert.NoError(t, err)
		if assert.Len(t, conflicts, 1) {
			assert.Equal(t, domain.ConflictTypeMaximumDays, conflicts[0].Type)
		}
	})

	t.Run("Unlisted Resource", func(t *testing.T) {
		f := newQuoteFixture()
		res := listedResource()
		res.Status = domain.ResourceStatusUnlisted
		f.resourceRepo.On("GetByID", ctx, int64(2)).Return(res, nil)

		_, _, err := f.svc.Quote(ctx, 2, start, end, domain.InsuranceTierNone)
		assert.ErrorIs(t, err, domain.ErrResourceUnavailable)
	})

	t.Run("Reversed Range Fails Fast", func(t *testing.T) {
		f := newQuoteFixture()
		_, _, err := f.svc.Quote(ctx, 2, end, start, domain.InsuranceTierNone)
		assert.ErrorIs(t, err, domain.ErrInvalidDateRange)
		f.resourceRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})
}

func TestQuoteService_CheckAvailability(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC)

	t.Run("Touching Ranges Do Not Conflict", func(t *testing.T) {
		// Half-open ranges: an existing booking starting the day this one
		// ends shares no night with it.
		f := newQuoteFixture()
		blocking := []domain.Booking{{
			ID: 7, ResourceID: 2, Status: domain.BookingStatusActive,
			StartDate: end, EndDate: end.AddDate(0, 0, 3),
		}}
		f.resourceRepo.On("GetByID", ctx, int64(2)).Return(listedResource(), nil)
		f.resourceRepo.On("ListRateOverrides", ctx, int64(2), start, end).Return([]domain.RateOverride{}, nil)
		f.bookingRepo.On("ListBlocking", ctx, int64(2)).Return(blocking, nil)

		conflicts, err := f.svc.CheckAvailability(ctx, 2, start, end)
		assert.NoError(t, err)
		assert.Empty(t, conflicts)
	})

	t.Run("Cancelled Bookings Do Not Block", func(t *testing.T) {
		f := newQuoteFixture()
		blocking := []domain.Booking{{
			ID: 7, ResourceID: 2, Status: domain.BookingStatusCancelled,
			StartDate: start, EndDate: end,
		}}
		f.resourceRepo.On("GetByID", ctx, int64(2)).Return(listedResource(), nil)
		f.resourceRepo.On("ListRateOverrides", ctx, int64(2), start, end).Return([]domain.RateOverride{}, nil)
		f.bookingRepo.On("ListBlocking", ctx, int64(2)).Return(blocking, nil)

		conflicts, err := f.svc.CheckAvailability(ctx, 2, start, end)
		assert.NoError(t, err)
		assert.Empty(t, conflicts)
	})
}
