// Package events publishes settlement events so downstream consumers (the
// payout processor, accounting) can react to money leaving escrow.
package events

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"gearshare-backend/internal/logger"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const (
	TypeEscrowReleased = "escrow.released"
	TypeEscrowRefunded = "escrow.refunded"
	TypeEscrowDisputed = "escrow.disputed"
)

// SettlementEvent describes one escrow transition and where the money went.
type SettlementEvent struct {
	EventID              string    `json:"event_id"`
	Type                 string    `json:"type"`
	BookingID            int64     `json:"booking_id"`
	PaymentID            int64     `json:"payment_id"`
	EscrowCents          int64     `json:"escrow_cents"`
	OwnerPayoutCents     int64     `json:"owner_payout_cents"`
	RenterRefundCents    int64     `json:"renter_refund_cents"`
	DepositWithheldCents int64     `json:"deposit_withheld_cents"`
	DepositRefundCents   int64     `json:"deposit_refund_cents"`
	OccurredAt           time.Time `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, event *SettlementEvent) error
	Close() error
}

// KafkaPublisher writes settlement events to a Kafka topic, keyed by booking
// id so events for one booking stay ordered within a partition.
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			BatchTimeout: 50 * time.Millisecond,
		},
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event *SettlementEvent) error {
	if event.EventID == "" {
		event.EventID = uuid.New().String()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	value, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(event.BookingID, 10)),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event-id", Value: []byte(event.EventID)},
			{Key: "event-type", Value: []byte(event.Type)},
		},
	}
	return p.writer.WriteMessages(ctx, msg)
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NoopPublisher drops events. It backs local runs and tests where no broker
// is configured.
type NoopPublisher struct{}

func NewNoopPublisher() *NoopPublisher { return &NoopPublisher{} }

func (p *NoopPublisher) Publish(_ context.Context, event *SettlementEvent) error {
	logger.Debug("Settlement event dropped (no broker configured)", "type", event.Type, "booking_id", event.BookingID)
	return nil
}

func (p *NoopPublisher) Close() error { return nil }
