package booking_models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/minhzk/smarthotel-booking/logger"
	"github.com/minhzk/smarthotel-booking/models/calendar_models"
	"github.com/minhzk/smarthotel-booking/models/shared_models"
	"github.com/minhzk/smarthotel-booking/utils"
	"github.com/minhzk/smarthotel-booking/utils/daterange"
	"github.com/minhzk/smarthotel-booking/utils/shared_utils"
)

// DefaultDepositPercent is applied when a booking request does not carry an
// explicit deposit amount.
const DefaultDepositPercent = 20

// Booking is a guest's reservation of one room for a date range. Amounts are
// in minor currency units. deposit_amount + remaining_amount == total_amount
// always holds; rows are never deleted, only moved to a terminal status.
type Booking struct {
	ID                 uuid.UUID                    `json:"id"`
	BookingID          string                       `json:"booking_id"` // human-readable reference
	UserID             uuid.UUID                    `json:"user_id"`
	HotelID            uuid.UUID                    `json:"hotel_id"`
	RoomID             uuid.UUID                    `json:"room_id"`
	CheckInDate        time.Time                    `json:"check_in_date"`
	CheckOutDate       time.Time                    `json:"check_out_date"`
	NumberOfGuests     int                          `json:"number_of_guests"`
	GuestName          string                       `json:"guest_name"`
	GuestEmail         string                       `json:"guest_email"`
	GuestPhone         string                       `json:"guest_phone"`
	TotalAmount        int64                        `json:"total_amount"`
	DepositAmount      int64                        `json:"deposit_amount"`
	RemainingAmount    int64                        `json:"remaining_amount"`
	Status             shared_models.BookingStatus  `json:"status"`
	PaymentStatus      shared_models.PaymentStatus  `json:"payment_status"`
	DepositStatus      shared_models.DepositStatus  `json:"deposit_status"`
	CancellationReason *string                      `json:"cancellation_reason,omitempty"`
	CancelledAt        *time.Time                   `json:"cancelled_at,omitempty"`
	RefundEmitted      bool                         `json:"refund_emitted"`
	CreatedAt          time.Time                    `json:"created_at"`
	UpdatedAt          time.Time                    `json:"updated_at"`
}

// Nights returns the stay length in nights.
func (b *Booking) Nights() int {
	return daterange.Nights(b.CheckInDate, b.CheckOutDate)
}

// NewBooking validates a booking request and builds the pending Booking.
// depositAmount <= 0 selects the default deposit percentage.
func NewBooking(userID, hotelID, roomID uuid.UUID, checkIn, checkOut time.Time, guests int, guestName, guestEmail, guestPhone string, totalAmount, depositAmount int64, now time.Time) (*Booking, error) {
	if err := daterange.ValidateStay(checkIn, checkOut, now); err != nil {
		return nil, err
	}
	if guests <= 0 {
		return nil, fmt.Errorf("number of guests must be positive")
	}
	if totalAmount <= 0 {
		return nil, fmt.Errorf("total amount must be positive")
	}
	if depositAmount < 0 || depositAmount > totalAmount {
		return nil, fmt.Errorf("deposit amount out of range")
	}
	if depositAmount == 0 {
		depositAmount = totalAmount * DefaultDepositPercent / 100
	}

	id, err := shared_models.GenerateUUIDv7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate UUID for booking: %w", err)
	}
	reference, err := shared_utils.GenerateBookingReference(checkIn)
	if err != nil {
		return nil, fmt.Errorf("failed to generate booking reference: %w", err)
	}

	return &Booking{
		ID:              id,
		BookingID:       reference,
		UserID:          userID,
		HotelID:         hotelID,
		RoomID:          roomID,
		CheckInDate:     daterange.Date(checkIn),
		CheckOutDate:    daterange.Date(checkOut),
		NumberOfGuests:  guests,
		GuestName:       guestName,
		GuestEmail:      guestEmail,
		GuestPhone:      guestPhone,
		TotalAmount:     totalAmount,
		DepositAmount:   depositAmount,
		RemainingAmount: totalAmount - depositAmount,
		Status:          shared_models.BookingStatusPending,
		PaymentStatus:   shared_models.PaymentStatusPending,
		DepositStatus:   shared_models.DepositStatusUnpaid,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

const bookingColumns = `
	id, booking_id, user_id, hotel_id, room_id, check_in_date, check_out_date,
	number_of_guests, guest_name, guest_email, guest_phone,
	total_amount, deposit_amount, remaining_amount,
	status, payment_status, deposit_status,
	cancellation_reason, cancelled_at, refund_emitted, created_at, updated_at`

func scanBooking(row pgx.Row) (*Booking, error) {
	b := &Booking{}
	err := row.Scan(
		&b.ID, &b.BookingID, &b.UserID, &b.HotelID, &b.RoomID, &b.CheckInDate, &b.CheckOutDate,
		&b.NumberOfGuests, &b.GuestName, &b.GuestEmail, &b.GuestPhone,
		&b.TotalAmount, &b.DepositAmount, &b.RemainingAmount,
		&b.Status, &b.PaymentStatus, &b.DepositStatus,
		&b.CancellationReason, &b.CancelledAt, &b.RefundEmitted, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// CreateBooking inserts the booking row. Runs inside the reservation
// transaction so the row and its calendar hold commit together.
func CreateBooking(ctx context.Context, q calendar_models.Querier, b *Booking) (*Booking, error) {
	logger.InfoLogger.Infof("Attempting to create booking %s for room %s", b.BookingID, b.RoomID)

	query := `
		INSERT INTO bookings (` + bookingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
		RETURNING id`

	var insertedID uuid.UUID
	err := q.QueryRow(ctx, query,
		b.ID, b.BookingID, b.UserID, b.HotelID, b.RoomID, b.CheckInDate, b.CheckOutDate,
		b.NumberOfGuests, b.GuestName, b.GuestEmail, b.GuestPhone,
		b.TotalAmount, b.DepositAmount, b.RemainingAmount,
		b.Status, b.PaymentStatus, b.DepositStatus,
		b.CancellationReason, b.CancelledAt, b.RefundEmitted, b.CreatedAt, b.UpdatedAt,
	).Scan(&insertedID)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to insert booking %s: %v", b.BookingID, err)
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	b.ID = insertedID
	logger.InfoLogger.Infof("Booking %s created for room %s [%s..%s)", b.BookingID, b.RoomID,
		b.CheckInDate.Format("2006-01-02"), b.CheckOutDate.Format("2006-01-02"))
	return b, nil
}

// GetBookingByID fetches a booking by its primary key.
func GetBookingByID(ctx context.Context, q calendar_models.Querier, id uuid.UUID) (*Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	b, err := scanBooking(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			logger.WarnLogger.Warnf("Booking %s not found", id)
			return nil, utils.ErrBookingNotFound
		}
		logger.ErrorLogger.Errorf("Failed to fetch booking %s: %v", id, err)
		return nil, fmt.Errorf("database error fetching booking: %w", err)
	}
	return b, nil
}

// GetBookingByReference fetches a booking by its human-readable reference.
func GetBookingByReference(ctx context.Context, q calendar_models.Querier, reference string) (*Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE booking_id = $1`

	b, err := scanBooking(q.QueryRow(ctx, query, reference))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, utils.ErrBookingNotFound
		}
		logger.ErrorLogger.Errorf("Failed to fetch booking %s: %v", reference, err)
		return nil, fmt.Errorf("database error fetching booking: %w", err)
	}
	return b, nil
}

// UpdateBookingStatusIf performs the guarded lifecycle transition from -> to.
// It validates the transition against the state machine, then applies it as
// a conditional write: if the row is no longer in the expected source state
// (a concurrent cancel, sweep or payment won), nothing changes and false is
// returned. The later writer wins and this caller becomes a no-op.
func UpdateBookingStatusIf(ctx context.Context, q calendar_models.Querier, id uuid.UUID, from, to shared_models.BookingStatus) (bool, error) {
	if !from.CanTransitionTo(to) {
		logger.ErrorLogger.Errorf("Rejected booking %s transition %s -> %s", id, from, to)
		return false, fmt.Errorf("%w: %s -> %s", utils.ErrInvalidStateTransition, from, to)
	}

	query := `
		UPDATE bookings
		SET status = $3, updated_at = $4
		WHERE id = $1 AND status = $2`

	cmdTag, err := q.Exec(ctx, query, id, from, to, time.Now())
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to update booking %s status: %v", id, err)
		return false, fmt.Errorf("failed to update booking status: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		logger.WarnLogger.Warnf("Booking %s no longer in status %s; %s transition skipped", id, from, to)
		return false, nil
	}

	logger.InfoLogger.Infof("Booking %s status updated %s -> %s", id, from, to)
	return true, nil
}

// MarkCancelled applies the cancellation outcome to the booking row,
// conditional on it still being cancellable. Returns false when a concurrent
// transition already terminalized the booking.
func MarkCancelled(ctx context.Context, q calendar_models.Querier, id uuid.UUID, reason string, cancelledAt time.Time, refundEmitted bool) (bool, error) {
	query := `
		UPDATE bookings
		SET status = $2, cancellation_reason = $3, cancelled_at = $4, refund_emitted = $5, updated_at = $4
		WHERE id = $1 AND status IN ($6, $7)`

	cmdTag, err := q.Exec(ctx, query, id, shared_models.BookingStatusCanceled, reason, cancelledAt, refundEmitted,
		shared_models.BookingStatusPending, shared_models.BookingStatusConfirmed)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to cancel booking %s: %v", id, err)
		return false, fmt.Errorf("failed to cancel booking: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return false, nil
	}

	logger.InfoLogger.Infof("Booking %s canceled (refund emitted: %t)", id, refundEmitted)
	return true, nil
}

// UpdatePaymentAxes persists the payment tracker's view of a booking. The
// lifecycle status column is deliberately not touched here.
func UpdatePaymentAxes(ctx context.Context, q calendar_models.Querier, b *Booking) error {
	query := `
		UPDATE bookings
		SET payment_status = $2, deposit_status = $3, remaining_amount = $4, updated_at = $5
		WHERE id = $1`

	cmdTag, err := q.Exec(ctx, query, b.ID, b.PaymentStatus, b.DepositStatus, b.RemainingAmount, time.Now())
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to update payment state for booking %s: %v", b.ID, err)
		return fmt.Errorf("failed to update payment state: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return utils.ErrBookingNotFound
	}
	return nil
}

// ExpireBookingIf moves a still-pending, still-unpaid booking to expired,
// flipping a pending payment status to expired in the same write. Returns
// false when the booking was paid, confirmed or canceled concurrently.
func ExpireBookingIf(ctx context.Context, q calendar_models.Querier, id uuid.UUID) (bool, error) {
	query := `
		UPDATE bookings
		SET status = $2,
		    payment_status = CASE WHEN payment_status = $3 THEN $4 ELSE payment_status END,
		    updated_at = $5
		WHERE id = $1 AND status = $6 AND payment_status <> $7`

	cmdTag, err := q.Exec(ctx, query, id,
		shared_models.BookingStatusExpired,
		shared_models.PaymentStatusPending, shared_models.PaymentStatusExpired,
		time.Now(),
		shared_models.BookingStatusPending, shared_models.PaymentStatusPaid)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to expire booking %s: %v", id, err)
		return false, fmt.Errorf("failed to expire booking: %w", err)
	}
	return cmdTag.RowsAffected() > 0, nil
}

// BookingFilter narrows list queries.
type BookingFilter struct {
	UserID  uuid.UUID
	HotelID uuid.UUID
	Status  shared_models.BookingStatus
	Page    int
	Limit   int
}

// ListBookings retrieves bookings matching the filter, newest first, with
// the total match count for pagination.
func ListBookings(ctx context.Context, db *pgxpool.Pool, f BookingFilter) ([]Booking, int, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}

	where := " WHERE 1=1"
	var args []interface{}
	if f.UserID != uuid.Nil {
		args = append(args, f.UserID)
		where += fmt.Sprintf(" AND user_id = $%d", len(args))
	}
	if f.HotelID != uuid.Nil {
		args = append(args, f.HotelID)
		where += fmt.Sprintf(" AND hotel_id = $%d", len(args))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}

	var total int
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM bookings`+where, args...).Scan(&total); err != nil {
		logger.ErrorLogger.Errorf("Failed to count bookings: %v", err)
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	args = append(args, f.Limit, (f.Page-1)*f.Limit)
	query := fmt.Sprintf(`SELECT %s FROM bookings%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		bookingColumns, where, len(args)-1, len(args))

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to fetch bookings: %v", err)
		return nil, 0, fmt.Errorf("failed to fetch bookings: %w", err)
	}
	defer rows.Close()

	var bookings []Booking
	for rows.Next() {
		var b Booking
		if err := rows.Scan(
			&b.ID, &b.BookingID, &b.UserID, &b.HotelID, &b.RoomID, &b.CheckInDate, &b.CheckOutDate,
			&b.NumberOfGuests, &b.GuestName, &b.GuestEmail, &b.GuestPhone,
			&b.TotalAmount, &b.DepositAmount, &b.RemainingAmount,
			&b.Status, &b.PaymentStatus, &b.DepositStatus,
			&b.CancellationReason, &b.CancelledAt, &b.RefundEmitted, &b.CreatedAt, &b.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}

	logger.InfoLogger.Infof("Fetched %d bookings (total %d)", len(bookings), total)
	return bookings, total, rows.Err()
}

// GetCompletableBookings lists confirmed bookings whose checkout day is
// before today, the completion pass input.
func GetCompletableBookings(ctx context.Context, db *pgxpool.Pool, today time.Time, limit int) ([]Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE status = $1 AND check_out_date < $2
		ORDER BY check_out_date
		LIMIT $3`

	rows, err := db.Query(ctx, query, shared_models.BookingStatusConfirmed, daterange.Date(today), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch completable bookings: %w", err)
	}
	defer rows.Close()

	return collectBookings(rows)
}

// GetExpirableBookings lists pending bookings whose check-in day has passed
// without full payment, the expiry pass input.
func GetExpirableBookings(ctx context.Context, db *pgxpool.Pool, today time.Time, limit int) ([]Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE status = $1 AND check_in_date < $2 AND payment_status <> $3
		ORDER BY check_in_date
		LIMIT $4`

	rows, err := db.Query(ctx, query, shared_models.BookingStatusPending, daterange.Date(today), shared_models.PaymentStatusPaid, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch expirable bookings: %w", err)
	}
	defer rows.Close()

	return collectBookings(rows)
}

func collectBookings(rows pgx.Rows) ([]Booking, error) {
	var bookings []Booking
	for rows.Next() {
		var b Booking
		if err := rows.Scan(
			&b.ID, &b.BookingID, &b.UserID, &b.HotelID, &b.RoomID, &b.CheckInDate, &b.CheckOutDate,
			&b.NumberOfGuests, &b.GuestName, &b.GuestEmail, &b.GuestPhone,
			&b.TotalAmount, &b.DepositAmount, &b.RemainingAmount,
			&b.Status, &b.PaymentStatus, &b.DepositStatus,
			&b.CancellationReason, &b.CancelledAt, &b.RefundEmitted, &b.CreatedAt, &b.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}
