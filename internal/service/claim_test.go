package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"gearshare-backend/internal/claims"
	"gearshare-backend/internal/domain"
	"gearshare-backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type claimFixture struct {
	claimRepo      *MockClaimRepo
	bookingRepo    *MockBookingRepo
	resourceRepo   *MockResourceRepo
	inspectionRepo *MockInspectionRepo
	paymentRepo    *MockPaymentRepo
	userRepo       *MockUserRepo
	escrowSvc      *MockEscrowService
	emailSvc       *MockEmailService
	svc            service.ClaimService
}

func newClaimFixture() *claimFixture {
	f := &claimFixture{
		claimRepo:      new(MockClaimRepo),
		bookingRepo:    new(MockBookingRepo),
		resourceRepo:   new(MockResourceRepo),
		inspectionRepo: new(MockInspectionRepo),
		paymentRepo:    new(MockPaymentRepo),
		userRepo:       new(MockUserRepo),
		escrowSvc:      new(MockEscrowService),
		emailSvc:       new(MockEmailService),
	}
	f.svc = service.NewClaimService(
		f.claimRepo, f.bookingRepo, f.resourceRepo, f.inspectionRepo,
		f.paymentRepo, f.userRepo, claims.NewGuard(48), f.escrowSvc, f.emailSvc,
	)
	return f
}

var returnedAt = time.Date(2024, 6, 4, 10, 0, 0, 0, time.UTC)

func claimBooking() *domain.Booking {
	return &domain.Booking{
		ID: 42, ResourceID: 2, RenterID: 1, OwnerID: 10,
		EndDate: time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC),
		Status:  domain.BookingStatusActive,
	}
}

func verifiedReturn() *domain.Inspection {
	return &domain.Inspection{
		ID: 9, BookingID: 42, Type: domain.InspectionTypeReturn,
		RecordedAt: returnedAt, VerifiedByRenter: true,
	}
}

func TestClaimService_FileClaim(t *testing.T) {
	ctx := context.Background()
	resource := &domain.Resource{ID: 2, OwnerID: 10, Name: "Canon EOS R5"}

	t.Run("Success Inside Window", func(t *testing.T) {
		f := newClaimFixture()
		f.bookingRepo.On("GetByID", ctx, int64(42)).Return(claimBooking(), nil)
		f.resourceRepo.On("GetByID", ctx, int64(2)).Return(resource, nil)
		f.inspectionRepo.On("GetByBookingAndType", ctx, int64(42), domain.InspectionTypeReturn).Return(verifiedReturn(), nil)
		f.claimRepo.On("GetByBookingID", ctx, int64(42)).Return(nil, domain.ErrNotFound)
		f.escrowSvc.On("Dispute", ctx, int64(42)).Return(&domain.Payment{ID: 77, EscrowStatus: domain.EscrowStatusDisputed}, nil)
		f.claimRepo.On("Create", ctx, mock.AnythingOfType("*domain.DamageClaim")).Run(func(args mock.Arguments) {
			args.Get(1).(*domain.DamageClaim).ID = 5
		}).Return(nil)
		f.userRepo.On("GetByID", ctx, int64(1)).Return(&domain.User{ID: 1, Email: "renter@test.com"}, nil)
		f.emailSvc.On("SendClaimFiledNotification", ctx, "renter@test.com", "Canon EOS R5", int64(8000)).Return(nil)

		filedAt := returnedAt.Add(10 * time.Hour)
		c, err := f.svc.FileClaim(ctx, 10, 42, 8000, "cracked lens mount", []string{"p1.jpg"}, filedAt)
		assert.NoError(t, err)
		assert.Equal(t, domain.ClaimStatusPending, c.Status)
		assert.Equal(t, int64(8000), c.EstimatedCostCents)
		assert.Equal(t, filedAt, c.FiledAt)
		f.escrowSvc.AssertNumberOfCalls(t, "Dispute", 1)
	})

	t.Run("Return Not Confirmed", func(t *testing.T) {
		f := newClaimFixture()
		f.bookingRepo.On("GetByID", ctx, int64(42)).Return(claimBooking(), nil)
		f.resourceRepo.On("GetByID", ctx, int64(2)).Return(resource, nil)
		f.inspectionRepo.On("GetByBookingAndType", ctx, int64(42), domain.InspectionTypeReturn).Return(nil, domain.ErrNotFound)

		_, err := f.svc.FileClaim(ctx, 10, 42, 8000, "", nil, returnedAt)
		assert.ErrorIs(t, err, domain.ErrReturnNotConfirmed)
	})

	t.Run("Owner Confirmation Closes The Window", func(t *testing.T) {
		f := newClaimFixture()
		ret := verifiedReturn()
		ret.VerifiedByOwner = true
		f.bookingRepo.On("GetByID", ctx, int64(42)).Return(claimBooking(), nil)
		f.resourceRepo.On("GetByID", ctx, int64(2)).Return(resource, nil)
		f.inspectionRepo.On("GetByBookingAndType", ctx, int64(42), domain.InspectionTypeReturn).Return(ret, nil)

		_, err := f.svc.FileClaim(ctx, 10, 42, 8000, "", nil, returnedAt.Add(time.Hour))
		assert.ErrorIs(t, err, domain.ErrWindowClosed)
		f.escrowSvc.AssertNotCalled(t, "Dispute", mock.Anything, mock.Anything)
	})

	t.Run("Lapsed Window Still Files While Funds Are Held", func(t *testing.T) {
		// The lapse is advisory until the release sweep settles the escrow;
		// a filing that still finds HELD funds wins.
		f := newClaimFixture()
		f.bookingRepo.On("GetByID", ctx, int64(42)).Return(claimBooking(), nil)
		f.resourceRepo.On("GetByID", ctx, int64(2)).Return(resource, nil)
		f.inspectionRepo.On("GetByBookingAndType", ctx, int64(42), domain.InspectionTypeReturn).Return(verifiedReturn(), nil)
		f.claimRepo.On("GetByBookingID", ctx, int64(42)).Return(nil, domain.ErrNotFound)
		f.escrowSvc.On("Dispute", ctx, int64(42)).Return(&domain.Payment{ID: 77, EscrowStatus: domain.EscrowStatusDisputed}, nil)
		f.claimRepo.On("Create", ctx, mock.AnythingOfType("*domain.DamageClaim")).Return(nil)
		f.userRepo.On("GetByID", ctx, int64(1)).Return(&domain.User{ID: 1, Email: "renter@test.com"}, nil)
		f.emailSvc.On("SendClaimFiledNotification", ctx, "renter@test.com", "Canon EOS R5", int64(8000)).Return(nil)

		c, err := f.svc.FileClaim(ctx, 10, 42, 8000, "", nil, returnedAt.Add(50*time.Hour))
		assert.NoError(t, err)
		assert.Equal(t, domain.ClaimStatusPending, c.Status)
	})

	t.Run("Sweep Beat The Filing", func(t *testing.T) {
		f := newClaimFixture()
		f.bookingRepo.On("GetByID", ctx, int64(42)).Return(claimBooking(), nil)
		f.resourceRepo.On("GetByID", ctx, int64(2)).Return(resource, nil)
		f.inspectionRepo.On("GetByBookingAndType", ctx, int64(42), domain.InspectionTypeReturn).Return(verifiedReturn(), nil)
		f.claimRepo.On("GetByBookingID", ctx, int64(42)).Return(nil, domain.ErrNotFound)
		f.escrowSvc.On("Dispute", ctx, int64(42)).Return(nil, fmt.Errorf("escrow is RELEASED: %w", domain.ErrInvalidTransition))
		f.paymentRepo.On("GetByBookingID", ctx, int64(42)).Return(&domain.Payment{EscrowStatus: domain.EscrowStatusReleased}, nil)

		_, err := f.svc.FileClaim(ctx, 10, 42, 8000, "", nil, returnedAt.Add(50*time.Hour))
		assert.ErrorIs(t, err, domain.ErrWindowClosed)
		f.claimRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Concurrent Filing Beat This One", func(t *testing.T) {
		f := newClaimFixture()
		f.bookingRepo.On("GetByID", ctx, int64(42)).Return(claimBooking(), nil)
		f.resourceRepo.On("GetByID", ctx, int64(2)).Return(resource, nil)
		f.inspectionRepo.On("GetByBookingAndType", ctx, int64(42), domain.InspectionTypeReturn).Return(verifiedReturn(), nil)
		f.claimRepo.On("GetByBookingID", ctx, int64(42)).Return(nil, domain.ErrNotFound)
		f.escrowSvc.On("Dispute", ctx, int64(42)).Return(nil, fmt.Errorf("guarded update matched no row: %w", domain.ErrEscrowConflict))
		f.paymentRepo.On("GetByBookingID", ctx, int64(42)).Return(&domain.Payment{EscrowStatus: domain.EscrowStatusDisputed}, nil)

		_, err := f.svc.FileClaim(ctx, 10, 42, 8000, "", nil, returnedAt.Add(time.Hour))
		assert.ErrorIs(t, err, domain.ErrClaimExists)
	})

	t.Run("Duplicate Claim", func(t *testing.T) {
		f := newClaimFixture()
		f.bookingRepo.On("GetByID", ctx, int64(42)).Return(claimBooking(), nil)
		f.resourceRepo.On("GetByID", ctx, int64(2)).Return(resource, nil)
		f.inspectionRepo.On("GetByBookingAndType", ctx, int64(42), domain.InspectionTypeReturn).Return(verifiedReturn(), nil)
		f.claimRepo.On("GetByBookingID", ctx, int64(42)).Return(&domain.DamageClaim{ID: 5, BookingID: 42, Status: domain.ClaimStatusPending}, nil)

		_, err := f.svc.FileClaim(ctx, 10, 42, 8000, "", nil, returnedAt.Add(time.Hour))
		assert.ErrorIs(t, err, domain.ErrClaimExists)
		f.escrowSvc.AssertNotCalled(t, "Dispute", mock.Anything, mock.Anything)
	})

	t.Run("Only The Owner Files", func(t *testing.T) {
		f := newClaimFixture()
		f.bookingRepo.On("GetByID", ctx, int64(42)).Return(claimBooking(), nil)

		_, err := f.svc.FileClaim(ctx, 1, 42, 8000, "", nil, returnedAt)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("Estimate Must Be Positive", func(t *testing.T) {
		f := newClaimFixture()
		_, err := f.svc.FileClaim(ctx, 10, 42, 0, "", nil, returnedAt)
		assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	})
}

func TestClaimService_RespondToClaim(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 5, 15, 0, 0, 0, time.UTC)

	pendingClaim := func() *domain.DamageClaim {
		return &domain.DamageClaim{
			ID: 5, BookingID: 42, EstimatedCostCents: 8000,
			Status: domain.ClaimStatusPending, FiledAt: returnedAt.Add(10 * time.Hour),
		}
	}

	t.Run("Accept Settles At The Estimate", func(t *testing.T) {
		f := newClaimFixture()
		f.bookingRepo.On("GetByID", ctx, int64(42)).Return(claimBooking(), nil)
		f.claimRepo.On("GetByBookingID", ctx, int64(42)).Return(pendingClaim(), nil)
		f.claimRepo.On("Update", ctx, mock.AnythingOfType("*domain.DamageClaim")).Return(nil)
		f.escrowSvc.On("Resolve", ctx, int64(42), int64(8000), now).Return(&domain.Payment{
			ID: 77, EscrowStatus: domain.EscrowStatusReleased,
			OwnerPayoutCents: 8000, RenterRefundCents: 7750, DepositRefundCents: 10000,
		}, nil)
		f.resourceRepo.On("GetByID", ctx, int64(2)).Return(nil, domain.ErrNotFound)

		c, err := f.svc.RespondToClaim(ctx, 1, 42, domain.ClaimActionAccept, nil, "fair enough", now)
		assert.NoError(t, err)
		assert.Equal(t, domain.ClaimStatusResolved, c.Status)
		if assert.NotNil(t, c.AwardedCents) {
			assert.Equal(t, int64(8000), *c.AwardedCents)
		}
		assert.Equal(t, domain.ClaimActionAccept, c.RenterResponse.Action)
		f.claimRepo.AssertNumberOfCalls(t, "Update", 2)
	})

	t.Run("Counter Offer", func(t *testing.T) {
		f := newClaimFixture()
		offer := int64(2500)
		f.bookingRepo.On("GetByID", ctx, int64(42)).Return(claimBooking(), nil)
		f.claimRepo.On("GetByBookingID", ctx, int64(42)).Return(pendingClaim(), nil)
		f.claimRepo.On("Update", ctx, mock.AnythingOfType("*domain.DamageClaim")).Return(nil)
		f.userRepo.On("GetByID", ctx, int64(10)).Return(&domain.User{ID: 10, Email: "owner@test.com"}, nil)
		f.resourceRepo.On("GetByID", ctx, int64(2)).Return(&domain.Resource{ID: 2, Name: "Canon EOS R5"}, nil)
		f.emailSvc.On("SendClaimCounterNotification", ctx, "owner@test.com", "Canon EOS R5", offer).Return(nil)

		c, err := f.svc.RespondToClaim(ctx, 1, 42, domain.ClaimActionCounter, &offer, "only the hood broke", now)
		assert.NoError(t, err)
		assert.Equal(t, domain.ClaimStatusDisputed, c.Status)
		if assert.NotNil(t, c.RenterResponse.CounterOfferCents) {
			assert.Equal(t, offer, *c.RenterResponse.CounterOfferCents)
		}
		f.escrowSvc.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Counter Requires An Offer", func(t *testing.T) {
		f := newClaimFixture()
		f.bookingRepo.On("GetByID", ctx, int64(42)).Return(claimBooking(), nil)
		f.claimRepo.On("GetByBookingID", ctx, int64(42)).Return(pendingClaim(), nil)

		_, err := f.svc.RespondToClaim(ctx, 1, 42, domain.ClaimActionCounter, nil, "", now)
		assert.ErrorIs(t, err, domain.ErrInvalidAmount)

		negative := int64(-100)
		_, err = f.svc.RespondToClaim(ctx, 1, 42, domain.ClaimActionCounter, &negative, "", now)
		assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	})

	t.Run("Escalate", func(t *testing.T) {
		f := newClaimFixture()
		f.bookingRepo.On("GetByID", ctx, int64(42)).Return(claimBooking(), nil)
		f.claimRepo.On("GetByBookingID", ctx, int64(42)).Return(pendingClaim(), nil)
		f.claimRepo.On("Update", ctx, mock.AnythingOfType("*domain.DamageClaim")).Return(nil)

		c, err := f.svc.RespondToClaim(ctx, 1, 42, domain.ClaimActionEscalate, nil, "need a third opinion", now)
		assert.NoError(t, err)
		assert.Equal(t, domain.ClaimStatusEscalated, c.Status)
	})

	t.Run("Already Responded", func(t *testing.T) {
		f := newClaimFixture()
		c := pendingClaim()
		c.Status = domain.ClaimStatusDisputed
		f.bookingRepo.On("GetByID", ctx, int64(42)).Return(claimBooking(), nil)
		f.claimRepo.On("GetByBookingID", ctx, int64(42)).Return(c, nil)

		_, err := f.svc.RespondToClaim(ctx, 1, 42, domain.ClaimActionAccept, nil, "", now)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})

	t.Run("Only The Renter Responds", func(t *testing.T) {
		f := newClaimFixture()
		f.bookingRepo.On("GetByID", ctx, int64(42)).Return(claimBooking(), nil)

		_, err := f.svc.RespondToClaim(ctx, 10, 42, domain.ClaimActionAccept, nil, "", now)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})
}

func TestClaimService_ResolveClaim(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 7, 9, 0, 0, 0, time.UTC)

	escalated := func() *domain.DamageClaim {
		return &domain.DamageClaim{ID: 5, BookingID: 42, EstimatedCostCents: 8000, Status: domain.ClaimStatusEscalated}
	}

	t.Run("Success", func(t *testing.T) {
		f := newClaimFixture()
		f.bookingRepo.On("GetByID", ctx, int64(42)).Return(claimBooking(), nil)
		f.claimRepo.On("GetByBookingID", ctx, int64(42)).Return(escalated(), nil)
		f.escrowSvc.On("Resolve", ctx, int64(42), int64(3000), now).Return(&domain.Payment{
			ID: 77, EscrowStatus: domain.EscrowStatusReleased,
			OwnerPayoutCents: 3000, RenterRefundCents: 12750, DepositRefundCents: 10000,
		}, nil)
		f.claimRepo.On("Update", ctx, mock.AnythingOfType("*domain.DamageClaim")).Return(nil)
		f.resourceRepo.On("GetByID", ctx, int64(2)).Return(nil, domain.ErrNotFound)

		c, p, err := f.svc.ResolveClaim(ctx, 1, 42, 3000, "agreed on repair cost", now)
		assert.NoError(t, err)
		assert.Equal(t, domain.ClaimStatusResolved, c.Status)
		assert.Equal(t, "agreed on repair cost", c.ResolutionNotes)
		if assert.NotNil(t, c.AwardedCents) {
			assert.Equal(t, int64(3000), *c.AwardedCents)
		}
		assert.Equal(t, int64(3000), p.OwnerPayoutCents)
	})

	t.Run("Recorded Award Is The Actual Draw", func(t *testing.T) {
		// An award beyond escrow + deposit settles at the capped amount; the
		// claim records what was actually drawn.
		f := newClaimFixture()
		f.bookingRepo.On("GetByID", ctx, int64(42)).Return(claimBooking(), nil)
		f.claimRepo.On("GetByBookingID", ctx, int64(42)).Return(escalated(), nil)
		f.escrowSvc.On("Resolve", ctx, int64(42), int64(99000), now).Return(&domain.Payment{
			ID: 77, EscrowStatus: domain.EscrowStatusReleased,
			OwnerPayoutCents: 15750, DepositWithheldCents: 10000,
		}, nil)
		f.claimRepo.On("Update", ctx, mock.AnythingOfType("*domain.DamageClaim")).Return(nil)
		f.resourceRepo.On("GetByID", ctx, int64(2)).Return(nil, domain.ErrNotFound)

		c, _, err := f.svc.ResolveClaim(ctx, 10, 42, 99000, "", now)
		assert.NoError(t, err)
		if assert.NotNil(t, c.AwardedCents) {
			assert.Equal(t, int64(25750), *c.AwardedCents)
		}
	})

	t.Run("Already Resolved", func(t *testing.T) {
		f := newClaimFixture()
		c := escalated()
		c.Status = domain.ClaimStatusResolved
		f.bookingRepo.On("GetByID", ctx, int64(42)).Return(claimBooking(), nil)
		f.claimRepo.On("GetByBookingID", ctx, int64(42)).Return(c, nil)

		_, _, err := f.svc.ResolveClaim(ctx, 10, 42, 3000, "", now)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})

	t.Run("Not A Party", func(t *testing.T) {
		f := newClaimFixture()
		f.bookingRepo.On("GetByID", ctx, int64(42)).Return(claimBooking(), nil)

		_, _, err := f.svc.ResolveClaim(ctx, 5, 42, 3000, "", now)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("Negative Award", func(t *testing.T) {
		f := newClaimFixture()
		_, _, err := f.svc.ResolveClaim(ctx, 10, 42, -1, "", now)
		assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	})
}

func TestClaimService_EvaluateWindow(t *testing.T) {
	ctx := context.Background()
	resource := &domain.Resource{ID: 2, OwnerID: 10, Name: "Canon EOS R5"}

	t.Run("Window Open", func(t *testing.T) {
		f := newClaimFixture()
		f.bookingRepo.On("GetByID", ctx, int64(42)).Return(claimBooking(), nil)
		f.resourceRepo.On("GetByID", ctx, int64(2)).Return(resource, nil)
		f.inspectionRepo.On("GetByBookingAndType", ctx, int64(42), domain.InspectionTypeReturn).Return(verifiedReturn(), nil)
		f.claimRepo.On("GetByBookingID", ctx, int64(42)).Return(nil, domain.ErrNotFound)

		w, err := f.svc.EvaluateWindow(ctx, 10, 42, returnedAt.Add(10*time.Hour))
		assert.NoError(t, err)
		assert.True(t, w.CanFileClaim)
		assert.Equal(t, claims.ReasonWindowOpen, w.Reason)
		assert.Equal(t, returnedAt.Add(48*time.Hour), w.Deadline)
	})

	t.Run("Resource Window Override", func(t *testing.T) {
		f := newClaimFixture()
		shortWindow := &domain.Resource{ID: 2, OwnerID: 10, ClaimWindowHours: 12}
		f.bookingRepo.On("GetByID", ctx, int64(42)).Return(claimBooking(), nil)
		f.resourceRepo.On("GetByID", ctx, int64(2)).Return(shortWindow, nil)
		f.inspectionRepo.On("GetByBookingAndType", ctx, int64(42), domain.InspectionTypeReturn).Return(verifiedReturn(), nil)
		f.claimRepo.On("GetByBookingID", ctx, int64(42)).Return(nil, domain.ErrNotFound)

		w, err := f.svc.EvaluateWindow(ctx, 10, 42, returnedAt.Add(13*time.Hour))
		assert.NoError(t, err)
		assert.False(t, w.CanFileClaim)
		assert.True(t, w.AutoAccepted)
		assert.Equal(t, claims.ReasonWindowLapsed, w.Reason)
		assert.Equal(t, returnedAt.Add(12*time.Hour), w.Deadline)
	})

	t.Run("Filed Claim Consumes The Window", func(t *testing.T) {
		f := newClaimFixture()
		f.bookingRepo.On("GetByID", ctx, int64(42)).Return(claimBooking(), nil)
		f.resourceRepo.On("GetByID", ctx, int64(2)).Return(resource, nil)
		f.inspectionRepo.On("GetByBookingAndType", ctx, int64(42), domain.InspectionTypeReturn).Return(verifiedReturn(), nil)
		f.claimRepo.On("GetByBookingID", ctx, int64(42)).Return(&domain.DamageClaim{ID: 5, BookingID: 42, Status: domain.ClaimStatusPending}, nil)

		// Even past the deadline a filed claim pins the window state; the
		// lapse must not read as auto-acceptance.
		w, err := f.svc.EvaluateWindow(ctx, 1, 42, returnedAt.Add(60*time.Hour))
		assert.NoError(t, err)
		assert.False(t, w.CanFileClaim)
		assert.False(t, w.AutoAccepted)
		assert.Equal(t, claims.ReasonClaimFiled, w.Reason)
	})

	t.Run("No Return Yet", func(t *testing.T) {
		f := newClaimFixture()
		f.bookingRepo.On("GetByID", ctx, int64(42)).Return(claimBooking(), nil)
		f.resourceRepo.On("GetByID", ctx, int64(2)).Return(resource, nil)
		f.inspectionRepo.On("GetByBookingAndType", ctx, int64(42), domain.InspectionTypeReturn).Return(nil, domain.ErrNotFound)
		f.claimRepo.On("GetByBookingID", ctx, int64(42)).Return(nil, domain.ErrNotFound)

		w, err := f.svc.EvaluateWindow(ctx, 10, 42, returnedAt)
		assert.NoError(t, err)
		assert.False(t, w.CanFileClaim)
		assert.Equal(t, claims.ReasonReturnNotConfirmed, w.Reason)
	})

	t.Run("Not A Party", func(t *testing.T) {
		f := newClaimFixture()
		f.bookingRepo.On("GetByID", ctx, int64(42)).Return(claimBooking(), nil)

		_, err := f.svc.EvaluateWindow(ctx, 5, 42, returnedAt)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})
}
