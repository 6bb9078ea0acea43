// utils/errors.go
package utils

import "errors"

var (
	// Reservation errors. ErrRoomUnavailable is recoverable: the caller
	// should re-query availability and retry with different dates.
	ErrRoomUnavailable        = errors.New("room is not available for the requested dates")
	ErrInvalidDateRange       = errors.New("invalid date range")
	ErrInvalidStateTransition = errors.New("invalid booking state transition")

	ErrBookingNotFound       = errors.New("booking not found")
	ErrBookingNotOwnedByUser = errors.New("booking does not belong to this user")

	ErrDuplicateReview = errors.New("booking has already been reviewed")

	ErrUserIDNotFound = errors.New("authentication required: user ID not found")
	ErrUnauthorized   = errors.New("unauthorized access")
)
