package jobs

import (
	"context"
	"time"

	"gearshare-backend/internal/logger"
)

// MarkOverdueBookings finds ACTIVE bookings past their end date with no
// renter-verified return and sends the renter a return reminder. Each
// booking is reminded once; the sent timestamp guards against nightly
// repeats.
func (jr *JobRunner) MarkOverdueBookings() {
	jr.runWithRecovery("MarkOverdueBookings", func() {
		jr.withLease("MarkOverdueBookings", 10*time.Minute, func() {
			ctx := context.Background()

			query := `
				SELECT b.id, b.end_date, u.email, u.name, r.name
				FROM bookings b
				JOIN users u ON u.id = b.renter_id
				JOIN resources r ON r.id = b.resource_id
				WHERE b.status = 'ACTIVE'
				  AND b.end_date < $1
				  AND b.return_reminder_sent_at IS NULL
				  AND NOT EXISTS (
					SELECT 1 FROM inspections i
					WHERE i.booking_id = b.id
					  AND i.type = 'RETURN'
					  AND i.verified_by_renter = TRUE
				  )
			`

			rows, err := jr.db.QueryContext(ctx, query, time.Now().UTC().Format("2006-01-02"))
			if err != nil {
				logger.Error("Failed to query overdue bookings", "error", err)
				return
			}
			defer rows.Close()

			type overdue struct {
				bookingID    int64
				endDate      time.Time
				renterEmail  string
				renterName   string
				resourceName string
			}
			var overdues []overdue
			for rows.Next() {
				var o overdue
				if err := rows.Scan(&o.bookingID, &o.endDate, &o.renterEmail, &o.renterName, &o.resourceName); err != nil {
					logger.Error("Failed to scan overdue booking", "error", err)
					continue
				}
				overdues = append(overdues, o)
			}
			if err := rows.Err(); err != nil {
				logger.Error("Error iterating overdue bookings", "error", err)
				return
			}

			count := 0
			for _, o := range overdues {
				if err := jr.services.Email.SendReturnReminderNotification(ctx, o.renterEmail, o.resourceName); err != nil {
					logger.Error("Failed to send return reminder",
						"booking_id", o.bookingID,
						"email", o.renterEmail,
						"error", err)
					continue
				}

				if _, err := jr.db.ExecContext(ctx,
					`UPDATE bookings SET return_reminder_sent_at = NOW(), updated_at = NOW() WHERE id = $1`,
					o.bookingID,
				); err != nil {
					logger.Error("Failed to stamp return reminder",
						"booking_id", o.bookingID,
						"error", err)
					continue
				}

				count++
				logger.Debug("Sent return reminder",
					"booking_id", o.bookingID,
					"end_date", o.endDate.Format("2006-01-02"))
			}

			logger.Info("Return reminders sent", "count", count)
		})
	})
}
