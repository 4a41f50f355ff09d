package service_test

import (
	"context"
	"time"

	"gearshare-backend/internal/domain"
	"gearshare-backend/internal/events"

	"github.com/stretchr/testify/mock"
)

// MockBookingRepo
type MockBookingRepo struct {
	mock.Mock
}

func (m *MockBookingRepo) Create(ctx context.Context, b *domain.Booking) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}
func (m *MockBookingRepo) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}
func (m *MockBookingRepo) ListBlocking(ctx context.Context, resourceID int64) ([]domain.Booking, error) {
	args := m.Called(ctx, resourceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}
func (m *MockBookingRepo) UpdateStatus(ctx context.Context, id int64, from, to domain.BookingStatus, reason string) error {
	args := m.Called(ctx, id, from, to, reason)
	return args.Error(0)
}
func (m *MockBookingRepo) Activate(ctx context.Context, id int64, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}
func (m *MockBookingRepo) ListByRenter(ctx context.Context, renterID int64, status string, page, pageSize int32) ([]domain.Booking, int32, error) {
	args := m.Called(ctx, renterID, status, page, pageSize)
	return args.Get(0).([]domain.Booking), args.Get(1).(int32), args.Error(2)
}
func (m *MockBookingRepo) ListByOwner(ctx context.Context, ownerID int64, status string, page, pageSize int32) ([]domain.Booking, int32, error) {
	args := m.Called(ctx, ownerID, status, page, pageSize)
	return args.Get(0).([]domain.Booking), args.Get(1).(int32), args.Error(2)
}

// MockResourceRepo
type MockResourceRepo struct {
	mock.Mock
}

func (m *MockResourceRepo) GetByID(ctx context.Context, id int64) (*domain.Resource, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Resource), args.Error(1)
}
func (m *MockResourceRepo) ListRateOverrides(ctx context.Context, resourceID int64, from, to time.Time) ([]domain.RateOverride, error) {
	args := m.Called(ctx, resourceID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RateOverride), args.Error(1)
}

// MockUserRepo
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// MockPaymentRepo
type MockPaymentRepo struct {
	mock.Mock
}

func (m *MockPaymentRepo) Create(ctx context.Context, p *domain.Payment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}
func (m *MockPaymentRepo) GetByID(ctx context.Context, id int64) (*domain.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}
func (m *MockPaymentRepo) GetByBookingID(ctx context.Context, bookingID int64) (*domain.Payment, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}
func (m *MockPaymentRepo) Transition(ctx context.Context, p *domain.Payment, from domain.EscrowStatus) error {
	args := m.Called(ctx, p, from)
	return args.Error(0)
}

// MockInspectionRepo
type MockInspectionRepo struct {
	mock.Mock
}

func (m *MockInspectionRepo) Create(ctx context.Context, i *domain.Inspection) error {
	args := m.Called(ctx, i)
	return args.Error(0)
}
func (m *MockInspectionRepo) GetByBookingAndType(ctx context.Context, bookingID int64, typ domain.InspectionType) (*domain.Inspection, error) {
	args := m.Called(ctx, bookingID, typ)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Inspection), args.Error(1)
}
func (m *MockInspectionRepo) Update(ctx context.Context, i *domain.Inspection) error {
	args := m.Called(ctx, i)
	return args.Error(0)
}

// MockClaimRepo
type MockClaimRepo struct {
	mock.Mock
}

func (m *MockClaimRepo) Create(ctx context.Context, c *domain.DamageClaim) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}
func (m *MockClaimRepo) GetByBookingID(ctx context.Context, bookingID int64) (*domain.DamageClaim, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DamageClaim), args.Error(1)
}
func (m *MockClaimRepo) Update(ctx context.Context, c *domain.DamageClaim) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

// MockPayoutRepo
type MockPayoutRepo struct {
	mock.Mock
}

func (m *MockPayoutRepo) Create(ctx context.Context, p *domain.Payout) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}
func (m *MockPayoutRepo) ListByBookingID(ctx context.Context, bookingID int64) ([]domain.Payout, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Payout), args.Error(1)
}

// MockPaymentProcessor
type MockPaymentProcessor struct {
	mock.Mock
}

func (m *MockPaymentProcessor) Authorize(ctx context.Context, bookingID int64, amountCents int64) (string, error) {
	args := m.Called(ctx, bookingID, amountCents)
	return args.String(0), args.Error(1)
}

// MockPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, event *events.SettlementEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
func (m *MockPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockEmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendBookingRequestNotification(ctx context.Context, ownerEmail, renterName, resourceName, startDate, endDate string) error {
	args := m.Called(ctx, ownerEmail, renterName, resourceName, startDate, endDate)
	return args.Error(0)
}
func (m *MockEmailService) SendBookingApprovalNotification(ctx context.Context, renterEmail, resourceName string) error {
	args := m.Called(ctx, renterEmail, resourceName)
	return args.Error(0)
}
func (m *MockEmailService) SendBookingDeclineNotification(ctx context.Context, renterEmail, resourceName, reason string) error {
	args := m.Called(ctx, renterEmail, resourceName, reason)
	return args.Error(0)
}
func (m *MockEmailService) SendBookingCancellationNotification(ctx context.Context, recipientEmail, cancellerName, resourceName, reason string) error {
	args := m.Called(ctx, recipientEmail, cancellerName, resourceName, reason)
	return args.Error(0)
}
func (m *MockEmailService) SendBookingActivationNotification(ctx context.Context, ownerEmail, renterName, resourceName string) error {
	args := m.Called(ctx, ownerEmail, renterName, resourceName)
	return args.Error(0)
}
func (m *MockEmailService) SendReturnRecordedNotification(ctx context.Context, ownerEmail, resourceName string, deadline time.Time) error {
	args := m.Called(ctx, ownerEmail, resourceName, deadline)
	return args.Error(0)
}
func (m *MockEmailService) SendReturnReminderNotification(ctx context.Context, renterEmail, resourceName string) error {
	args := m.Called(ctx, renterEmail, resourceName)
	return args.Error(0)
}
func (m *MockEmailService) SendClaimFiledNotification(ctx context.Context, renterEmail, resourceName string, estimatedCostCents int64) error {
	args := m.Called(ctx, renterEmail, resourceName, estimatedCostCents)
	return args.Error(0)
}
func (m *MockEmailService) SendClaimCounterNotification(ctx context.Context, ownerEmail, resourceName string, counterOfferCents int64) error {
	args := m.Called(ctx, ownerEmail, resourceName, counterOfferCents)
	return args.Error(0)
}
func (m *MockEmailService) SendClaimResolvedNotification(ctx context.Context, recipientEmail, resourceName string, awardCents int64) error {
	args := m.Called(ctx, recipientEmail, resourceName, awardCents)
	return args.Error(0)
}
func (m *MockEmailService) SendPayoutNotification(ctx context.Context, ownerEmail, resourceName string, amountCents int64) error {
	args := m.Called(ctx, ownerEmail, resourceName, amountCents)
	return args.Error(0)
}
func (m *MockEmailService) SendRefundNotification(ctx context.Context, renterEmail, resourceName string, amountCents int64) error {
	args := m.Called(ctx, renterEmail, resourceName, amountCents)
	return args.Error(0)
}

// MockQuoteService
type MockQuoteService struct {
	mock.Mock
}

func (m *MockQuoteService) Quote(ctx context.Context, resourceID int64, startDate, endDate time.Time, tier domain.InsuranceTier) (*domain.PricingBreakdown, []domain.Conflict, error) {
	args := m.Called(ctx, resourceID, startDate, endDate, tier)
	var breakdown *domain.PricingBreakdown
	if args.Get(0) != nil {
		breakdown = args.Get(0).(*domain.PricingBreakdown)
	}
	var conflicts []domain.Conflict
	if args.Get(1) != nil {
		conflicts = args.Get(1).([]domain.Conflict)
	}
	return breakdown, conflicts, args.Error(2)
}
func (m *MockQuoteService) CheckAvailability(ctx context.Context, resourceID int64, startDate, endDate time.Time) ([]domain.Conflict, error) {
	args := m.Called(ctx, resourceID, startDate, endDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Conflict), args.Error(1)
}

// MockEscrowService
type MockEscrowService struct {
	mock.Mock
}

func (m *MockEscrowService) Hold(ctx context.Context, b *domain.Booking) (*domain.Payment, error) {
	args := m.Called(ctx, b)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}
func (m *MockEscrowService) RequestRelease(ctx context.Context, ownerID, bookingID int64, now time.Time) (*domain.Payment, error) {
	args := m.Called(ctx, ownerID, bookingID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}
func (m *MockEscrowService) Release(ctx context.Context, bookingID int64, now time.Time) (*domain.Payment, error) {
	args := m.Called(ctx, bookingID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}
func (m *MockEscrowService) Dispute(ctx context.Context, bookingID int64) (*domain.Payment, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}
func (m *MockEscrowService) Resolve(ctx context.Context, bookingID int64, awardCents int64, now time.Time) (*domain.Payment, error) {
	args := m.Called(ctx, bookingID, awardCents, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}
func (m *MockEscrowService) RefundOnCancellation(ctx context.Context, bookingID int64, refundEligible bool) (*domain.Payment, error) {
	args := m.Called(ctx, bookingID, refundEligible)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}
func (m *MockEscrowService) GetSettlement(ctx context.Context, userID, bookingID int64) (*domain.Payment, []domain.Payout, error) {
	args := m.Called(ctx, userID, bookingID)
	var p *domain.Payment
	if args.Get(0) != nil {
		p = args.Get(0).(*domain.Payment)
	}
	var payouts []domain.Payout
	if args.Get(1) != nil {
		payouts = args.Get(1).([]domain.Payout)
	}
	return p, payouts, args.Error(2)
}
