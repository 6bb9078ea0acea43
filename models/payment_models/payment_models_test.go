package payment_models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhzk/smarthotel-booking/models/booking_models"
	"github.com/minhzk/smarthotel-booking/models/shared_models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func pendingBooking(t *testing.T) *booking_models.Booking {
	t.Helper()
	b, err := booking_models.NewBooking(uuid.New(), uuid.New(), uuid.New(),
		day(2026, 6, 10), day(2026, 6, 13),
		2, "Tran Thi B", "guest@example.com", "+84901234567",
		100000, 20000, day(2026, 5, 1))
	require.NoError(t, err)
	return b
}

func event(t *testing.T, bookingID uuid.UUID, eventType EventType, status EventStatus, amount int64) *PaymentEvent {
	t.Helper()
	ev, err := NewPaymentEvent(bookingID, eventType, status, amount, "pay_"+uuid.NewString()[:8])
	require.NoError(t, err)
	return ev
}

func TestNewPaymentEvent(t *testing.T) {
	t.Run("UnknownTypeRejected", func(t *testing.T) {
		_, err := NewPaymentEvent(uuid.New(), EventType("chargeback"), EventStatusSuccess, 100, "pay_x")
		assert.Error(t, err)
	})

	t.Run("NegativeAmountRejected", func(t *testing.T) {
		_, err := NewPaymentEvent(uuid.New(), EventTypeDeposit, EventStatusSuccess, -1, "pay_x")
		assert.Error(t, err)
	})
}

func TestApplyPaymentEvent(t *testing.T) {
	t.Run("DepositSuccess", func(t *testing.T) {
		b := pendingBooking(t)
		ev := event(t, b.ID, EventTypeDeposit, EventStatusSuccess, b.DepositAmount)

		require.NoError(t, ApplyPaymentEvent(b, ev))
		assert.Equal(t, shared_models.DepositStatusPaid, b.DepositStatus)
		assert.Equal(t, shared_models.PaymentStatusPartiallyPaid, b.PaymentStatus)
		assert.Equal(t, shared_models.BookingStatusPending, b.Status, "payment events never move the lifecycle axis")
	})

	t.Run("DepositCoveringFullTotal", func(t *testing.T) {
		b := pendingBooking(t)
		b.DepositAmount = b.TotalAmount
		b.RemainingAmount = 0
		ev := event(t, b.ID, EventTypeDeposit, EventStatusSuccess, b.DepositAmount)

		require.NoError(t, ApplyPaymentEvent(b, ev))
		assert.Equal(t, shared_models.PaymentStatusPaid, b.PaymentStatus)
	})

	t.Run("RemainingAfterDeposit", func(t *testing.T) {
		b := pendingBooking(t)
		require.NoError(t, ApplyPaymentEvent(b, event(t, b.ID, EventTypeDeposit, EventStatusSuccess, b.DepositAmount)))
		require.NoError(t, ApplyPaymentEvent(b, event(t, b.ID, EventTypeRemaining, EventStatusSuccess, b.RemainingAmount)))

		assert.Equal(t, shared_models.PaymentStatusPaid, b.PaymentStatus)
		assert.Equal(t, shared_models.DepositStatusPaid, b.DepositStatus)
		assert.Equal(t, b.TotalAmount, b.DepositAmount+b.RemainingAmount)
		assert.Zero(t, b.RemainingAmount)
	})

	t.Run("FullPaymentAtOnce", func(t *testing.T) {
		b := pendingBooking(t)
		require.NoError(t, ApplyPaymentEvent(b, event(t, b.ID, EventTypeFullPayment, EventStatusSuccess, b.TotalAmount)))

		assert.Equal(t, shared_models.PaymentStatusPaid, b.PaymentStatus)
		assert.Equal(t, shared_models.DepositStatusPaid, b.DepositStatus)
		assert.Equal(t, b.TotalAmount, b.DepositAmount)
		assert.Zero(t, b.RemainingAmount)
	})

	t.Run("FailedAttempt", func(t *testing.T) {
		b := pendingBooking(t)
		require.NoError(t, ApplyPaymentEvent(b, event(t, b.ID, EventTypeDeposit, EventStatusFailed, b.DepositAmount)))

		assert.Equal(t, shared_models.PaymentStatusFailed, b.PaymentStatus)
		assert.Equal(t, shared_models.DepositStatusUnpaid, b.DepositStatus, "a failed deposit pays nothing")
	})

	t.Run("FailedThenSuccessfulRetry", func(t *testing.T) {
		b := pendingBooking(t)
		require.NoError(t, ApplyPaymentEvent(b, event(t, b.ID, EventTypeDeposit, EventStatusFailed, b.DepositAmount)))
		require.NoError(t, ApplyPaymentEvent(b, event(t, b.ID, EventTypeDeposit, EventStatusSuccess, b.DepositAmount)))

		assert.Equal(t, shared_models.PaymentStatusPartiallyPaid, b.PaymentStatus)
		assert.Equal(t, shared_models.DepositStatusPaid, b.DepositStatus)
	})

	t.Run("Refund", func(t *testing.T) {
		b := pendingBooking(t)
		require.NoError(t, ApplyPaymentEvent(b, event(t, b.ID, EventTypeDeposit, EventStatusSuccess, b.DepositAmount)))
		require.NoError(t, ApplyPaymentEvent(b, event(t, b.ID, EventTypeRefund, EventStatusSuccess, b.DepositAmount)))

		assert.Equal(t, shared_models.PaymentStatusRefunded, b.PaymentStatus)
	})

	t.Run("AmountInvariantHolds", func(t *testing.T) {
		b := pendingBooking(t)
		events := []*PaymentEvent{
			event(t, b.ID, EventTypeDeposit, EventStatusFailed, b.DepositAmount),
			event(t, b.ID, EventTypeDeposit, EventStatusSuccess, b.DepositAmount),
			event(t, b.ID, EventTypeRemaining, EventStatusSuccess, b.RemainingAmount),
		}
		for _, ev := range events {
			require.NoError(t, ApplyPaymentEvent(b, ev))
			assert.Equal(t, b.TotalAmount, b.DepositAmount+b.RemainingAmount)
		}
	})
}
