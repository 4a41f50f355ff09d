package service

import (
	"context"
	"fmt"
	"time"

	"gearshare-backend/internal/logger"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type emailService struct {
	apiKey    string
	fromEmail string
	fromName  string
}

// NewEmailService sends through SendGrid. An empty API key turns sending into
// a logged no-op so local runs work without credentials.
func NewEmailService(apiKey, fromEmail, fromName string) EmailService {
	return &emailService{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (s *emailService) send(ctx context.Context, to, subject, body string) error {
	if s.apiKey == "" {
		logger.DebugContext(ctx, "Email skipped, no SendGrid key configured", "to", to, "subject", subject)
		return nil
	}

	from := mail.NewEmail(s.fromName, s.fromEmail)
	recipient := mail.NewEmail("", to)
	message := mail.NewSingleEmail(from, subject, recipient, body, "")

	client := sendgrid.NewSendClient(s.apiKey)
	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	return nil
}

func (s *emailService) SendBookingRequestNotification(ctx context.Context, ownerEmail, renterName, resourceName, startDate, endDate string) error {
	subject := fmt.Sprintf("New booking request for %s", resourceName)
	body := fmt.Sprintf("%s requested to rent your %s from %s to %s.\n\nApprove or decline the request in your dashboard.\n\nThe GearShare Team",
		renterName, resourceName, startDate, endDate)
	return s.send(ctx, ownerEmail, subject, body)
}

func (s *emailService) SendBookingApprovalNotification(ctx context.Context, renterEmail, resourceName string) error {
	subject := fmt.Sprintf("Your booking for %s was approved", resourceName)
	body := fmt.Sprintf("Good news: the owner approved your booking for %s.\n\nConfirm the booking to authorize payment and start the rental.\n\nThe GearShare Team", resourceName)
	return s.send(ctx, renterEmail, subject, body)
}

func (s *emailService) SendBookingDeclineNotification(ctx context.Context, renterEmail, resourceName, reason string) error {
	subject := fmt.Sprintf("Your booking for %s was declined", resourceName)
	body := fmt.Sprintf("The owner declined your booking request for %s.", resourceName)
	if reason != "" {
		body += fmt.Sprintf("\n\nReason: %s", reason)
	}
	body += "\n\nThe GearShare Team"
	return s.send(ctx, renterEmail, subject, body)
}

func (s *emailService) SendBookingCancellationNotification(ctx context.Context, recipientEmail, cancellerName, resourceName, reason string) error {
	subject := fmt.Sprintf("Booking for %s was cancelled", resourceName)
	body := fmt.Sprintf("%s cancelled the booking for %s.", cancellerName, resourceName)
	if reason != "" {
		body += fmt.Sprintf("\n\nReason: %s", reason)
	}
	body += "\n\nThe GearShare Team"
	return s.send(ctx, recipientEmail, subject, body)
}

func (s *emailService) SendBookingActivationNotification(ctx context.Context, ownerEmail, renterName, resourceName string) error {
	subject := fmt.Sprintf("Rental of %s has started", resourceName)
	body := fmt.Sprintf("%s confirmed the booking for %s. Payment is authorized and held in escrow until the rental completes.\n\nThe GearShare Team",
		renterName, resourceName)
	return s.send(ctx, ownerEmail, subject, body)
}

func (s *emailService) SendReturnRecordedNotification(ctx context.Context, ownerEmail, resourceName string, deadline time.Time) error {
	subject := fmt.Sprintf("%s was returned", resourceName)
	body := fmt.Sprintf("The renter recorded the return of %s.\n\nInspect the equipment and confirm the return. If anything is damaged, file a claim before %s; after that the return is accepted automatically.\n\nThe GearShare Team",
		resourceName, deadline.Format("Jan 2, 2006 15:04 MST"))
	return s.send(ctx, ownerEmail, subject, body)
}

func (s *emailService) SendReturnReminderNotification(ctx context.Context, renterEmail, resourceName string) error {
	subject := fmt.Sprintf("Reminder: return %s", resourceName)
	body := fmt.Sprintf("Your rental of %s has ended but the return has not been recorded yet. Please return the equipment and record the return in the app.\n\nThe GearShare Team", resourceName)
	return s.send(ctx, renterEmail, subject, body)
}

func (s *emailService) SendClaimFiledNotification(ctx context.Context, renterEmail, resourceName string, estimatedCostCents int64) error {
	subject := fmt.Sprintf("Damage claim filed for %s", resourceName)
	body := fmt.Sprintf("The owner filed a damage claim of %s for %s. The funds for this rental are on hold until the claim settles.\n\nYou can accept the claim, make a counter offer, or escalate it for review.\n\nThe GearShare Team",
		formatCents(estimatedCostCents), resourceName)
	return s.send(ctx, renterEmail, subject, body)
}

func (s *emailService) SendClaimCounterNotification(ctx context.Context, ownerEmail, resourceName string, counterOfferCents int64) error {
	subject := fmt.Sprintf("Counter offer on your claim for %s", resourceName)
	body := fmt.Sprintf("The renter countered your damage claim for %s with an offer of %s.\n\nAccept the offer or escalate the claim for review.\n\nThe GearShare Team",
		resourceName, formatCents(counterOfferCents))
	return s.send(ctx, ownerEmail, subject, body)
}

func (s *emailService) SendClaimResolvedNotification(ctx context.Context, recipientEmail, resourceName string, awardCents int64) error {
	subject := fmt.Sprintf("Damage claim for %s resolved", resourceName)
	body := fmt.Sprintf("The damage claim for %s has been resolved with an award of %s. Settlement details are available in your dashboard.\n\nThe GearShare Team",
		resourceName, formatCents(awardCents))
	return s.send(ctx, recipientEmail, subject, body)
}

func (s *emailService) SendPayoutNotification(ctx context.Context, ownerEmail, resourceName string, amountCents int64) error {
	subject := fmt.Sprintf("Payout on the way for %s", resourceName)
	body := fmt.Sprintf("Your payout of %s for the rental of %s is being processed.\n\nThe GearShare Team",
		formatCents(amountCents), resourceName)
	return s.send(ctx, ownerEmail, subject, body)
}

func (s *emailService) SendRefundNotification(ctx context.Context, renterEmail, resourceName string, amountCents int64) error {
	subject := fmt.Sprintf("Refund on the way for %s", resourceName)
	body := fmt.Sprintf("Your refund of %s for the rental of %s is being processed.\n\nThe GearShare Team",
		formatCents(amountCents), resourceName)
	return s.send(ctx, renterEmail, subject, body)
}

func formatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}
