package booking_models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhzk/smarthotel-booking/models/shared_models"
	"github.com/minhzk/smarthotel-booking/utils"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testBooking(t *testing.T, checkIn, checkOut time.Time) *Booking {
	t.Helper()
	b, err := NewBooking(uuid.New(), uuid.New(), uuid.New(), checkIn, checkOut,
		2, "Nguyen Van A", "guest@example.com", "+84901234567",
		200000, 40000, checkIn.AddDate(0, 0, -30))
	require.NoError(t, err)
	return b
}

func TestNewBooking(t *testing.T) {
	now := day(2026, 3, 1)

	t.Run("DefaultsToPendingUnpaid", func(t *testing.T) {
		b := testBooking(t, day(2026, 6, 10), day(2026, 6, 13))
		assert.Equal(t, shared_models.BookingStatusPending, b.Status)
		assert.Equal(t, shared_models.PaymentStatusPending, b.PaymentStatus)
		assert.Equal(t, shared_models.DepositStatusUnpaid, b.DepositStatus)
		assert.Equal(t, 3, b.Nights())
		assert.NotEmpty(t, b.BookingID)
	})

	t.Run("AmountInvariant", func(t *testing.T) {
		b := testBooking(t, day(2026, 6, 10), day(2026, 6, 13))
		assert.Equal(t, b.TotalAmount, b.DepositAmount+b.RemainingAmount)
	})

	t.Run("DefaultDepositPercent", func(t *testing.T) {
		b, err := NewBooking(uuid.New(), uuid.New(), uuid.New(), day(2026, 6, 10), day(2026, 6, 12),
			2, "Guest", "guest@example.com", "+84901234567", 100000, 0, now)
		require.NoError(t, err)
		assert.Equal(t, int64(20000), b.DepositAmount)
		assert.Equal(t, int64(80000), b.RemainingAmount)
	})

	t.Run("ZeroNightStayRejected", func(t *testing.T) {
		_, err := NewBooking(uuid.New(), uuid.New(), uuid.New(), day(2026, 6, 10), day(2026, 6, 10),
			2, "Guest", "guest@example.com", "+84901234567", 100000, 0, now)
		assert.ErrorIs(t, err, utils.ErrInvalidDateRange)
	})

	t.Run("PastCheckInRejected", func(t *testing.T) {
		_, err := NewBooking(uuid.New(), uuid.New(), uuid.New(), day(2026, 2, 20), day(2026, 2, 22),
			2, "Guest", "guest@example.com", "+84901234567", 100000, 0, now)
		assert.ErrorIs(t, err, utils.ErrInvalidDateRange)
	})

	t.Run("DepositAboveTotalRejected", func(t *testing.T) {
		_, err := NewBooking(uuid.New(), uuid.New(), uuid.New(), day(2026, 6, 10), day(2026, 6, 12),
			2, "Guest", "guest@example.com", "+84901234567", 100000, 150000, now)
		assert.Error(t, err)
	})
}

func TestEvaluateCancellation(t *testing.T) {
	checkIn, checkOut := day(2026, 6, 10), day(2026, 6, 13)

	t.Run("RefundBeforeCutoffWithDepositPaid", func(t *testing.T) {
		b := testBooking(t, checkIn, checkOut)
		b.DepositStatus = shared_models.DepositStatusPaid

		// Exactly 48h before check-in midnight still refunds.
		now := checkIn.Add(-48 * time.Hour)
		out, err := EvaluateCancellation(b, now)
		require.NoError(t, err)
		assert.True(t, out.RefundEligible)
		assert.Equal(t, b.DepositAmount, out.RefundAmount)
	})

	t.Run("NoRefundInsideCutoff", func(t *testing.T) {
		b := testBooking(t, checkIn, checkOut)
		b.DepositStatus = shared_models.DepositStatusPaid

		now := checkIn.Add(-47 * time.Hour)
		out, err := EvaluateCancellation(b, now)
		require.NoError(t, err)
		assert.False(t, out.RefundEligible)
		assert.Zero(t, out.RefundAmount)
	})

	t.Run("NoRefundWithoutDeposit", func(t *testing.T) {
		b := testBooking(t, checkIn, checkOut)

		now := checkIn.Add(-30 * 24 * time.Hour)
		out, err := EvaluateCancellation(b, now)
		require.NoError(t, err)
		assert.False(t, out.RefundEligible)
	})

	t.Run("ConfirmedBookingCanCancel", func(t *testing.T) {
		b := testBooking(t, checkIn, checkOut)
		b.Status = shared_models.BookingStatusConfirmed
		b.DepositStatus = shared_models.DepositStatusPaid

		out, err := EvaluateCancellation(b, checkIn.Add(-72*time.Hour))
		require.NoError(t, err)
		assert.True(t, out.RefundEligible)
	})

	t.Run("TerminalStatusesCannotCancel", func(t *testing.T) {
		for _, status := range []shared_models.BookingStatus{
			shared_models.BookingStatusCompleted,
			shared_models.BookingStatusCanceled,
			shared_models.BookingStatusExpired,
		} {
			b := testBooking(t, checkIn, checkOut)
			b.Status = status
			_, err := EvaluateCancellation(b, checkIn.Add(-72*time.Hour))
			assert.ErrorIs(t, err, utils.ErrInvalidStateTransition, "status %s", status)
		}
	})
}

func TestSweeperPredicates(t *testing.T) {
	checkIn, checkOut := day(2026, 6, 10), day(2026, 6, 13)

	t.Run("ShouldComplete", func(t *testing.T) {
		b := testBooking(t, checkIn, checkOut)
		b.Status = shared_models.BookingStatusConfirmed

		assert.False(t, ShouldComplete(b, checkOut), "checkout day itself is not past the stay")
		assert.True(t, ShouldComplete(b, checkOut.AddDate(0, 0, 1)))

		b.Status = shared_models.BookingStatusPending
		assert.False(t, ShouldComplete(b, checkOut.AddDate(0, 0, 1)))
	})

	t.Run("ShouldExpire", func(t *testing.T) {
		b := testBooking(t, checkIn, checkOut)

		assert.False(t, ShouldExpire(b, checkIn), "check-in day itself is not yet expired")
		assert.True(t, ShouldExpire(b, checkIn.AddDate(0, 0, 1)))

		b.PaymentStatus = shared_models.PaymentStatusPaid
		assert.False(t, ShouldExpire(b, checkIn.AddDate(0, 0, 1)), "paid bookings never expire")

		b.PaymentStatus = shared_models.PaymentStatusPartiallyPaid
		b.Status = shared_models.BookingStatusConfirmed
		assert.False(t, ShouldExpire(b, checkIn.AddDate(0, 0, 1)), "only pending bookings expire")
	})
}

func TestReviewableAt(t *testing.T) {
	checkIn, checkOut := day(2026, 6, 10), day(2026, 6, 13)

	completedPaid := func() *Booking {
		b := testBooking(t, checkIn, checkOut)
		b.Status = shared_models.BookingStatusCompleted
		b.PaymentStatus = shared_models.PaymentStatusPaid
		return b
	}

	t.Run("WithinWindow", func(t *testing.T) {
		b := completedPaid()
		assert.True(t, b.ReviewableAt(checkOut.AddDate(0, 0, 29)))
	})

	t.Run("WindowClosed", func(t *testing.T) {
		b := completedPaid()
		assert.False(t, b.ReviewableAt(checkOut.AddDate(0, 0, 31)))
	})

	t.Run("NotCompleted", func(t *testing.T) {
		b := completedPaid()
		b.Status = shared_models.BookingStatusConfirmed
		assert.False(t, b.ReviewableAt(checkOut.AddDate(0, 0, 1)))
	})

	t.Run("NotFullyPaid", func(t *testing.T) {
		b := completedPaid()
		b.PaymentStatus = shared_models.PaymentStatusPartiallyPaid
		assert.False(t, b.ReviewableAt(checkOut.AddDate(0, 0, 1)))
	})
}
