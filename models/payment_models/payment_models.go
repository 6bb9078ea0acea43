package payment_models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/minhzk/smarthotel-booking/logger"
	"github.com/minhzk/smarthotel-booking/models/booking_models"
	"github.com/minhzk/smarthotel-booking/models/calendar_models"
	"github.com/minhzk/smarthotel-booking/models/shared_models"
)

// EventType classifies a payment event from the external gateway.
type EventType string

const (
	EventTypeDeposit     EventType = "deposit"
	EventTypeRemaining   EventType = "remaining"
	EventTypeFullPayment EventType = "full_payment"
	EventTypeRefund      EventType = "refund"
)

func (t EventType) IsValid() bool {
	switch t {
	case EventTypeDeposit, EventTypeRemaining, EventTypeFullPayment, EventTypeRefund:
		return true
	}
	return false
}

// EventStatus is the gateway's verdict for one attempt.
type EventStatus string

const (
	EventStatusSuccess EventStatus = "success"
	EventStatusFailed  EventStatus = "failed"
)

func (s EventStatus) IsValid() bool {
	return s == EventStatusSuccess || s == EventStatusFailed
}

// PaymentEvent is one row of the append-only payment log referenced by
// booking_id. The gateway owns the transactions; this service only records
// and reacts to them.
type PaymentEvent struct {
	ID               uuid.UUID   `json:"id"`
	BookingID        uuid.UUID   `json:"booking_id"`
	EventType        EventType   `json:"event_type"`
	Status           EventStatus `json:"status"`
	Amount           int64       `json:"amount"`
	GatewayPaymentID string      `json:"gateway_payment_id"`
	CreatedAt        time.Time   `json:"created_at"`
}

// NewPaymentEvent builds a PaymentEvent for persisting.
func NewPaymentEvent(bookingID uuid.UUID, eventType EventType, status EventStatus, amount int64, gatewayPaymentID string) (*PaymentEvent, error) {
	if !eventType.IsValid() {
		return nil, fmt.Errorf("invalid payment event type %q", eventType)
	}
	if amount < 0 {
		return nil, fmt.Errorf("payment amount must not be negative")
	}
	id, err := shared_models.GenerateUUIDv7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate UUID for payment event: %w", err)
	}
	return &PaymentEvent{
		ID:               id,
		BookingID:        bookingID,
		EventType:        eventType,
		Status:           status,
		Amount:           amount,
		GatewayPaymentID: gatewayPaymentID,
		CreatedAt:        time.Now(),
	}, nil
}

// ApplyPaymentEvent folds one event into the booking's payment axes in
// place. The lifecycle status axis is never touched here: the sweeper and
// the UI read the payment axes to decide further actions.
func ApplyPaymentEvent(b *booking_models.Booking, ev *PaymentEvent) error {
	if !ev.EventType.IsValid() {
		return fmt.Errorf("invalid payment event type %q", ev.EventType)
	}

	if ev.Status == EventStatusFailed {
		b.PaymentStatus = shared_models.PaymentStatusFailed
		return nil
	}

	switch ev.EventType {
	case EventTypeDeposit:
		b.DepositStatus = shared_models.DepositStatusPaid
		if b.RemainingAmount > 0 {
			b.PaymentStatus = shared_models.PaymentStatusPartiallyPaid
		} else {
			b.PaymentStatus = shared_models.PaymentStatusPaid
		}
	case EventTypeRemaining, EventTypeFullPayment:
		if ev.EventType == EventTypeFullPayment {
			b.DepositStatus = shared_models.DepositStatusPaid
		}
		b.PaymentStatus = shared_models.PaymentStatusPaid
		// Keep deposit + remaining == total: a full settlement folds the
		// remainder into the deposit column.
		b.DepositAmount = b.TotalAmount
		b.RemainingAmount = 0
	case EventTypeRefund:
		b.PaymentStatus = shared_models.PaymentStatusRefunded
	}
	return nil
}

// CreatePaymentEvent appends the event to the log.
func CreatePaymentEvent(ctx context.Context, q calendar_models.Querier, ev *PaymentEvent) (*PaymentEvent, error) {
	logger.InfoLogger.Infof("Recording %s/%s payment event for booking %s", ev.EventType, ev.Status, ev.BookingID)

	query := `
		INSERT INTO payment_events (id, booking_id, event_type, status, amount, gateway_payment_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	var insertedID uuid.UUID
	err := q.QueryRow(ctx, query,
		ev.ID, ev.BookingID, ev.EventType, ev.Status, ev.Amount, ev.GatewayPaymentID, ev.CreatedAt,
	).Scan(&insertedID)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to insert payment event for booking %s: %v", ev.BookingID, err)
		return nil, fmt.Errorf("failed to record payment event: %w", err)
	}

	ev.ID = insertedID
	return ev, nil
}

// GatewayEventSeen reports whether an event with this gateway payment ID and
// type was already recorded, the webhook idempotency check.
func GatewayEventSeen(ctx context.Context, q calendar_models.Querier, gatewayPaymentID string, eventType EventType) (bool, error) {
	if gatewayPaymentID == "" {
		return false, nil
	}
	query := `SELECT id FROM payment_events WHERE gateway_payment_id = $1 AND event_type = $2 LIMIT 1`

	var id uuid.UUID
	err := q.QueryRow(ctx, query, gatewayPaymentID, eventType).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check payment event idempotency: %w", err)
	}
	return true, nil
}

// GetEventsByBooking returns the booking's payment log, oldest first.
func GetEventsByBooking(ctx context.Context, q calendar_models.Querier, bookingID uuid.UUID) ([]PaymentEvent, error) {
	query := `
		SELECT id, booking_id, event_type, status, amount, gateway_payment_id, created_at
		FROM payment_events
		WHERE booking_id = $1
		ORDER BY created_at`

	rows, err := q.Query(ctx, query, bookingID)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to fetch payment events for booking %s: %v", bookingID, err)
		return nil, fmt.Errorf("failed to fetch payment events: %w", err)
	}
	defer rows.Close()

	var events []PaymentEvent
	for rows.Next() {
		var ev PaymentEvent
		if err := rows.Scan(&ev.ID, &ev.BookingID, &ev.EventType, &ev.Status, &ev.Amount, &ev.GatewayPaymentID, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment event: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}
