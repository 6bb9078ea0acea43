package shared_models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBookingStatusTransitions(t *testing.T) {
	t.Run("PendingTransitions", func(t *testing.T) {
		assert.True(t, BookingStatusPending.CanTransitionTo(BookingStatusConfirmed))
		assert.True(t, BookingStatusPending.CanTransitionTo(BookingStatusCanceled))
		assert.True(t, BookingStatusPending.CanTransitionTo(BookingStatusExpired))
		assert.False(t, BookingStatusPending.CanTransitionTo(BookingStatusCompleted))
	})

	t.Run("ConfirmedTransitions", func(t *testing.T) {
		assert.True(t, BookingStatusConfirmed.CanTransitionTo(BookingStatusCompleted))
		assert.True(t, BookingStatusConfirmed.CanTransitionTo(BookingStatusCanceled))
		assert.False(t, BookingStatusConfirmed.CanTransitionTo(BookingStatusExpired))
		assert.False(t, BookingStatusConfirmed.CanTransitionTo(BookingStatusPending))
	})

	t.Run("TerminalStatesAbsorb", func(t *testing.T) {
		terminals := []BookingStatus{BookingStatusCompleted, BookingStatusCanceled, BookingStatusExpired}
		all := []BookingStatus{BookingStatusPending, BookingStatusConfirmed, BookingStatusCompleted, BookingStatusCanceled, BookingStatusExpired}
		for _, from := range terminals {
			assert.True(t, from.IsTerminal(), "%s should be terminal", from)
			for _, to := range all {
				assert.False(t, from.CanTransitionTo(to), "%s -> %s must be rejected", from, to)
			}
		}
	})

	t.Run("NoSelfTransitions", func(t *testing.T) {
		for _, s := range []BookingStatus{BookingStatusPending, BookingStatusConfirmed} {
			assert.False(t, s.CanTransitionTo(s))
		}
	})

	t.Run("UnknownStatus", func(t *testing.T) {
		unknown := BookingStatus("on_hold")
		assert.False(t, unknown.IsValid())
		assert.False(t, unknown.IsTerminal())
		assert.False(t, unknown.CanTransitionTo(BookingStatusConfirmed))
	})
}

func TestPaymentStatusIsValid(t *testing.T) {
	for _, s := range []PaymentStatus{
		PaymentStatusPending, PaymentStatusPaid, PaymentStatusPartiallyPaid,
		PaymentStatusFailed, PaymentStatusRefunded, PaymentStatusExpired,
	} {
		assert.True(t, s.IsValid())
	}
	assert.False(t, PaymentStatus("settled").IsValid())
}
