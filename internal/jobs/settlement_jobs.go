package jobs

import (
	"context"
	"errors"
	"time"

	"gearshare-backend/internal/domain"
	"gearshare-backend/internal/logger"
)

// ReleaseEligibleEscrows releases held escrows whose release buffer has
// elapsed, whose return is confirmed or auto-accepted, and which have no
// open damage claim. Each candidate goes through the guarded service
// transition, so a claim filed between the query and the release wins the
// race and the candidate is skipped.
func (jr *JobRunner) ReleaseEligibleEscrows() {
	jr.runWithRecovery("ReleaseEligibleEscrows", func() {
		jr.withLease("ReleaseEligibleEscrows", 10*time.Minute, func() {
			ctx := context.Background()

			query := `
				SELECT p.booking_id
				FROM payments p
				JOIN bookings b ON b.id = p.booking_id
				JOIN inspections i ON i.booking_id = b.id AND i.type = 'RETURN'
				WHERE p.escrow_status = 'HELD'
				  AND b.end_date + make_interval(hours => $1) <= NOW()
				  AND i.verified_by_renter = TRUE
				  AND (i.verified_by_owner = TRUE OR i.auto_accepted = TRUE)
				  AND NOT EXISTS (
					SELECT 1 FROM damage_claims c
					WHERE c.booking_id = b.id AND c.status <> 'RESOLVED'
				  )
				ORDER BY p.booking_id
			`

			rows, err := jr.db.QueryContext(ctx, query, jr.config.Policy.ReleaseBufferHours)
			if err != nil {
				logger.Error("Failed to query releasable escrows", "error", err)
				return
			}
			defer rows.Close()

			var candidates []int64
			for rows.Next() {
				var bookingID int64
				if err := rows.Scan(&bookingID); err != nil {
					logger.Error("Failed to scan releasable escrow", "error", err)
					continue
				}
				candidates = append(candidates, bookingID)
			}
			if err := rows.Err(); err != nil {
				logger.Error("Error iterating releasable escrows", "error", err)
				return
			}

			released := 0
			for _, bookingID := range candidates {
				_, err := jr.services.Escrow.Release(ctx, bookingID, time.Now().UTC())
				switch {
				case err == nil:
					released++
				case errors.Is(err, domain.ErrDisputeOpen),
					errors.Is(err, domain.ErrEscrowConflict),
					errors.Is(err, domain.ErrInvalidTransition):
					// A claim or another release beat us; leave it alone.
					logger.Warn("Skipped escrow release",
						"booking_id", bookingID,
						"reason", err)
				default:
					logger.Error("Failed to release escrow",
						"booking_id", bookingID,
						"error", err)
				}
			}

			logger.Info("Released eligible escrows", "candidates", len(candidates), "released", released)
		})
	})
}

// AutoAcceptLapsedReturns marks renter-verified returns as auto-accepted
// once the claim window has lapsed with no owner verification and no claim.
// Resources may carry their own window length; zero falls back to the
// platform default.
func (jr *JobRunner) AutoAcceptLapsedReturns() {
	jr.runWithRecovery("AutoAcceptLapsedReturns", func() {
		jr.withLease("AutoAcceptLapsedReturns", 10*time.Minute, func() {
			ctx := context.Background()

			query := `
				UPDATE inspections i
				SET auto_accepted = TRUE
				FROM bookings b
				JOIN resources r ON r.id = b.resource_id
				WHERE i.booking_id = b.id
				  AND i.type = 'RETURN'
				  AND i.verified_by_renter = TRUE
				  AND i.verified_by_owner = FALSE
				  AND i.auto_accepted = FALSE
				  AND i.recorded_at + make_interval(hours => COALESCE(NULLIF(r.claim_window_hours, 0), $1)) <= NOW()
				  AND NOT EXISTS (
					SELECT 1 FROM damage_claims c WHERE c.booking_id = b.id
				  )
				RETURNING i.booking_id
			`

			rows, err := jr.db.QueryContext(ctx, query, jr.config.Policy.ClaimWindowHours)
			if err != nil {
				logger.Error("Failed to auto-accept lapsed returns", "error", err)
				return
			}
			defer rows.Close()

			count := 0
			for rows.Next() {
				var bookingID int64
				if err := rows.Scan(&bookingID); err != nil {
					logger.Error("Failed to scan lapsed return", "error", err)
					continue
				}
				count++
				logger.Debug("Auto-accepted lapsed return", "booking_id", bookingID)
			}
			if err := rows.Err(); err != nil {
				logger.Error("Error iterating lapsed returns", "error", err)
				return
			}

			logger.Info("Auto-accepted lapsed returns", "count", count)
		})
	})
}
