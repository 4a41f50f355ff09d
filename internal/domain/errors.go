package domain

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("not a party to this booking")

	// Input-contract violations. These fail fast, nothing is computed.
	ErrInvalidDateRange = errors.New("end date must be after start date")
	ErrInvalidRate      = errors.New("daily rate must be positive")
	ErrInvalidAmount    = errors.New("amount must be a non-negative number of cents")

	// State-machine violations. The record is left unchanged.
	ErrInvalidTransition     = errors.New("transition not permitted from current status")
	ErrImmutableState        = errors.New("booking can no longer be modified: escrow has settled")
	ErrReleaseNotYetEligible = errors.New("escrow release buffer has not elapsed")
	ErrDisputeOpen           = errors.New("an open damage claim blocks the release")
	ErrEscrowNotSettled      = errors.New("escrow funds have not settled yet")
	ErrWindowClosed          = errors.New("claim window is closed")
	ErrReturnNotConfirmed    = errors.New("return has not been confirmed by the renter")
	ErrClaimExists           = errors.New("a damage claim was already filed for this booking")
	ErrResourceUnavailable   = errors.New("resource is not available for booking")

	// ErrSplitMismatch means a resolution tried to create or destroy money:
	// the owner and renter shares must sum to the escrowed amount.
	ErrSplitMismatch = errors.New("resolution amounts do not sum to the escrowed amount")

	// Race losses. ErrBookingOverlap surfaces when the overlap exclusion
	// constraint rejects an insert that passed the conflict check; the caller
	// retries the check once and reports the conflict as data.
	ErrBookingOverlap = errors.New("booking dates were taken concurrently")
	// ErrEscrowConflict surfaces when a guarded escrow update matched no row:
	// another transition committed first.
	ErrEscrowConflict = errors.New("escrow state changed concurrently")
)
