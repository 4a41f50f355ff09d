package service

import (
	"context"

	"gearshare-backend/internal/logger"

	"github.com/google/uuid"
)

// sandboxProcessor approves every authorization and mints an opaque
// reference. It stands in for the real payment collaborator in local and
// test environments.
type sandboxProcessor struct{}

func NewSandboxProcessor() PaymentProcessor {
	return &sandboxProcessor{}
}

func (p *sandboxProcessor) Authorize(ctx context.Context, bookingID int64, amountCents int64) (string, error) {
	ref := "auth_" + uuid.New().String()
	logger.InfoContext(ctx, "Payment authorized (sandbox)",
		"booking_id", bookingID, "amount_cents", amountCents, "processor_ref", ref)
	return ref, nil
}
