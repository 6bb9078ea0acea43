package booking_models

import (
	"fmt"
	"time"

	"github.com/minhzk/smarthotel-booking/models/shared_models"
	"github.com/minhzk/smarthotel-booking/utils"
	"github.com/minhzk/smarthotel-booking/utils/daterange"
)

// FreeCancellationCutoff is how long before check-in a cancellation still
// refunds the deposit.
const FreeCancellationCutoff = 48 * time.Hour

// CancellationOutcome is the evaluated result of a cancellation request.
// A cancellation past the cutoff still succeeds; it just carries no refund.
type CancellationOutcome struct {
	RefundEligible bool
	RefundAmount   int64 // deposit amount, 0 when not eligible
}

// EvaluateCancellation decides whether the booking can be canceled at `now`
// and whether a refund instruction should be emitted. Cancellation is
// permitted from pending and confirmed only; the refund requires the
// deposit to be paid and now <= check_in - 48h.
func EvaluateCancellation(b *Booking, now time.Time) (CancellationOutcome, error) {
	if b.Status.IsTerminal() {
		return CancellationOutcome{}, fmt.Errorf("%w: cannot cancel booking in status %s", utils.ErrInvalidStateTransition, b.Status)
	}
	if !b.Status.CanTransitionTo(shared_models.BookingStatusCanceled) {
		return CancellationOutcome{}, fmt.Errorf("%w: cannot cancel booking in status %s", utils.ErrInvalidStateTransition, b.Status)
	}

	cutoff := daterange.Date(b.CheckInDate).Add(-FreeCancellationCutoff)
	eligible := !now.After(cutoff) && b.DepositStatus == shared_models.DepositStatusPaid

	out := CancellationOutcome{RefundEligible: eligible}
	if eligible {
		out.RefundAmount = b.DepositAmount
	}
	return out, nil
}

// ShouldComplete reports whether the sweeper's completion pass should move
// the booking to completed on the given day.
func ShouldComplete(b *Booking, today time.Time) bool {
	return b.Status == shared_models.BookingStatusConfirmed &&
		daterange.Date(b.CheckOutDate).Before(daterange.Date(today))
}

// ShouldExpire reports whether the sweeper's expiry pass should move the
// booking to expired on the given day: pending past its check-in without
// full payment.
func ShouldExpire(b *Booking, today time.Time) bool {
	return b.Status == shared_models.BookingStatusPending &&
		daterange.Date(b.CheckInDate).Before(daterange.Date(today)) &&
		b.PaymentStatus != shared_models.PaymentStatusPaid
}

// ReviewWindow is how long after checkout a completed booking stays
// reviewable.
const ReviewWindow = 30 * 24 * time.Hour

// ReviewableAt reports whether the booking itself (status, payment, window)
// allows a review at `now`. Review uniqueness is checked separately against
// the reviews table.
func (b *Booking) ReviewableAt(now time.Time) bool {
	if b.Status != shared_models.BookingStatusCompleted {
		return false
	}
	if b.PaymentStatus != shared_models.PaymentStatusPaid {
		return false
	}
	return !now.After(daterange.Date(b.CheckOutDate).Add(ReviewWindow))
}
