package shared_models

import (
	"github.com/google/uuid"
)

// BookingStatus is the booking lifecycle axis. Transitions are closed:
// anything not listed in bookingTransitions is rejected.
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCanceled  BookingStatus = "canceled"
	BookingStatusExpired   BookingStatus = "expired"
)

// bookingTransitions is the whole state machine:
//
//	pending   -> confirmed | canceled | expired
//	confirmed -> completed | canceled
//
// completed, canceled and expired are terminal.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:   {BookingStatusConfirmed, BookingStatusCanceled, BookingStatusExpired},
	BookingStatusConfirmed: {BookingStatusCompleted, BookingStatusCanceled},
	BookingStatusCompleted: {},
	BookingStatusCanceled:  {},
	BookingStatusExpired:   {},
}

// IsValid reports whether s is one of the five known statuses.
func (s BookingStatus) IsValid() bool {
	_, ok := bookingTransitions[s]
	return ok
}

// IsTerminal reports whether no further transition is defined out of s.
func (s BookingStatus) IsTerminal() bool {
	next, ok := bookingTransitions[s]
	return ok && len(next) == 0
}

// CanTransitionTo reports whether s -> next is a defined transition.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, t := range bookingTransitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// PaymentStatus is the payment axis. It is driven only by the payment
// tracker and never changes the booking lifecycle axis directly.
type PaymentStatus string

const (
	PaymentStatusPending       PaymentStatus = "pending"
	PaymentStatusPaid          PaymentStatus = "paid"
	PaymentStatusPartiallyPaid PaymentStatus = "partially_paid"
	PaymentStatusFailed        PaymentStatus = "failed"
	PaymentStatusRefunded      PaymentStatus = "refunded"
	PaymentStatusExpired       PaymentStatus = "expired"
)

func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusPartiallyPaid,
		PaymentStatusFailed, PaymentStatusRefunded, PaymentStatusExpired:
		return true
	}
	return false
}

// DepositStatus is the deposit axis.
type DepositStatus string

const (
	DepositStatusPaid   DepositStatus = "paid"
	DepositStatusUnpaid DepositStatus = "unpaid"
)

// GenerateUUIDv7 generates a new time-ordered UUID for primary keys.
func GenerateUUIDv7() (uuid.UUID, error) {
	return uuid.NewV7()
}
