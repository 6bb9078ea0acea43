package reservation_controller

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/minhzk/smarthotel-booking/logger"
	"github.com/minhzk/smarthotel-booking/models/booking_models"
	"github.com/minhzk/smarthotel-booking/models/calendar_models"
	"github.com/minhzk/smarthotel-booking/models/shared_models"
	"github.com/minhzk/smarthotel-booking/sweeper"
	"github.com/minhzk/smarthotel-booking/utils"
	"github.com/minhzk/smarthotel-booking/utils/daterange"
	"github.com/minhzk/smarthotel-booking/utils/mail"
)

const (
	// RoomHoldPrefix keys the short-lived per-room Redis hold taken in
	// front of the reservation transaction.
	RoomHoldPrefix = "room_hold:"
	RoomHoldTTL    = 15 * time.Second
)

// ReservationService owns booking creation and lifecycle transitions.
type ReservationService struct {
	DB          *pgxpool.Pool
	RedisClient *redis.Client
	Sweeper     *sweeper.Sweeper
}

// NewReservationService creates a ReservationService. The Redis client may
// be nil; the hold is an optimization, the transaction is the authority.
func NewReservationService(db *pgxpool.Pool, rdb *redis.Client, sw *sweeper.Sweeper) *ReservationService {
	return &ReservationService{DB: db, RedisClient: rdb, Sweeper: sw}
}

// CreateBookingRequest is the payload for POST /bookings. Dates are
// calendar days in "2006-01-02" form; amounts are minor currency units.
type CreateBookingRequest struct {
	HotelID        string `json:"hotel_id" binding:"required,uuid"`
	RoomID         string `json:"room_id" binding:"required,uuid"`
	CheckInDate    string `json:"check_in_date" binding:"required"`
	CheckOutDate   string `json:"check_out_date" binding:"required"`
	NumberOfGuests int    `json:"number_of_guests" binding:"required,gt=0"`
	GuestName      string `json:"guest_name" binding:"required"`
	GuestEmail     string `json:"guest_email" binding:"required,email"`
	GuestPhone     string `json:"guest_phone" binding:"required"`
	TotalAmount    int64  `json:"total_amount" binding:"required,gt=0"`
	DepositAmount  int64  `json:"deposit_amount"`
}

func parseDay(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad date %q", utils.ErrInvalidDateRange, s)
	}
	return daterange.Date(t), nil
}

func (s *ReservationService) roomHoldKey(roomID uuid.UUID) string {
	return RoomHoldPrefix + roomID.String()
}

// acquireRoomHold takes the per-room Redis hold. The returned release func
// is always safe to call. A held room means another reservation for it is
// mid-flight; the caller reports the room busy rather than queueing.
func (s *ReservationService) acquireRoomHold(ctx context.Context, roomID uuid.UUID) (func(), error) {
	if s.RedisClient == nil {
		return func() {}, nil
	}

	key := s.roomHoldKey(roomID)
	set, err := s.RedisClient.SetNX(ctx, key, time.Now().UnixNano(), RoomHoldTTL).Result()
	if err != nil {
		// Redis being down must not take reservations down; the
		// transaction still serializes correctly.
		logger.WarnLogger.Warnf("Redis error acquiring hold for room %s: %v", roomID, err)
		return func() {}, nil
	}
	if !set {
		logger.InfoLogger.Infof("Room %s hold already taken by a concurrent request", roomID)
		return func() {}, utils.ErrRoomUnavailable
	}

	return func() {
		if err := s.RedisClient.Del(context.Background(), key).Err(); err != nil {
			logger.WarnLogger.Warnf("Failed to release hold for room %s: %v", roomID, err)
		}
	}, nil
}

// Reserve is the atomic reservation: availability check, calendar write and
// booking insert commit as one transaction. A per-room advisory lock
// serializes concurrent requests for the same room, so of two overlapping
// requests exactly one succeeds and the loser observes no partial side
// effects.
func (s *ReservationService) Reserve(ctx context.Context, userID, hotelID, roomID uuid.UUID, checkIn, checkOut time.Time, req *CreateBookingRequest) (*booking_models.Booking, error) {
	b, err := booking_models.NewBooking(userID, hotelID, roomID, checkIn, checkOut,
		req.NumberOfGuests, req.GuestName, req.GuestEmail, req.GuestPhone,
		req.TotalAmount, req.DepositAmount, time.Now())
	if err != nil {
		return nil, err
	}

	release, err := s.acquireRoomHold(ctx, roomID)
	if err != nil {
		return nil, err
	}
	defer release()

	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin reservation transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// The advisory lock is the authoritative serialization: a fresh room
	// has no calendar rows, so row locks alone would lock nothing and two
	// concurrent requests would both see an empty window.
	if err := calendar_models.LockRoom(ctx, tx, roomID); err != nil {
		return nil, err
	}

	lastNight := b.CheckOutDate.AddDate(0, 0, -1)
	entries, err := calendar_models.LockEntriesForRange(ctx, tx, roomID,
		b.CheckInDate.AddDate(0, 0, -1), lastNight.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	if calendar_models.RangeConflicts(entries, b.CheckInDate, b.CheckOutDate) {
		logger.InfoLogger.Infof("Room %s unavailable for [%s..%s)", roomID,
			b.CheckInDate.Format("2006-01-02"), b.CheckOutDate.Format("2006-01-02"))
		return nil, utils.ErrRoomUnavailable
	}

	if err := calendar_models.MarkStayBooked(ctx, tx, roomID, b.CheckInDate, b.CheckOutDate, nil); err != nil {
		return nil, err
	}
	if _, err := booking_models.CreateBooking(ctx, tx, b); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit reservation: %w", err)
	}

	go mail.SendBookingConfirmation(b)
	return b, nil
}

// Book handles POST /bookings.
func (s *ReservationService) Book(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	hotelID, err1 := uuid.Parse(req.HotelID)
	roomID, err2 := uuid.Parse(req.RoomID)
	if err1 != nil || err2 != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "hotel_id and room_id must be valid UUIDs"})
		return
	}

	checkIn, err := parseDay(req.CheckInDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "check_in_date must be YYYY-MM-DD"})
		return
	}
	checkOut, err := parseDay(req.CheckOutDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "check_out_date must be YYYY-MM-DD"})
		return
	}

	booking, err := s.Reserve(c.Request.Context(), userID, hotelID, roomID, checkIn, checkOut, &req)
	if err != nil {
		status, msg := mapReservationError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Booking created successfully", "booking": booking})
}

func mapReservationError(err error) (int, string) {
	switch {
	case errors.Is(err, utils.ErrRoomUnavailable):
		return http.StatusConflict, "Room is not available for the requested dates. Please choose different dates."
	case errors.Is(err, utils.ErrInvalidDateRange):
		return http.StatusBadRequest, "Invalid date range: check-out must be after check-in and dates must not be in the past."
	case errors.Is(err, utils.ErrInvalidStateTransition):
		return http.StatusConflict, "Booking is not in a state that allows this action."
	case errors.Is(err, utils.ErrBookingNotFound):
		return http.StatusNotFound, "Booking not found."
	case errors.Is(err, utils.ErrBookingNotOwnedByUser):
		return http.StatusForbidden, "Booking does not belong to this user."
	default:
		logger.ErrorLogger.Errorf("Reservation error: %v", err)
		return http.StatusInternalServerError, "Internal server error."
	}
}

// GetBooking handles GET /bookings/:booking_id. Accepts either the row UUID
// or the human-readable reference.
func (s *ReservationService) GetBooking(c *gin.Context) {
	param := c.Param("booking_id")

	var booking *booking_models.Booking
	var err error
	if id, parseErr := uuid.Parse(param); parseErr == nil {
		booking, err = booking_models.GetBookingByID(c.Request.Context(), s.DB, id)
	} else {
		booking, err = booking_models.GetBookingByReference(c.Request.Context(), s.DB, param)
	}
	if err != nil {
		status, msg := mapReservationError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	if booking.UserID != userID && c.GetString("role") != "admin" {
		c.JSON(http.StatusForbidden, gin.H{"error": "Booking does not belong to this user."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

// ListBookings handles GET /bookings with status filter and pagination.
// Regular users see their own bookings; admins may filter by hotel.
func (s *ReservationService) ListBookings(c *gin.Context) {
	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	filter := booking_models.BookingFilter{
		Page:  queryInt(c, "page", 1),
		Limit: queryInt(c, "limit", 20),
	}
	if status := c.Query("status"); status != "" {
		bs := shared_models.BookingStatus(status)
		if !bs.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown booking status filter."})
			return
		}
		filter.Status = bs
	}

	if c.GetString("role") == "admin" {
		if hotelID := c.Query("hotel_id"); hotelID != "" {
			id, err := uuid.Parse(hotelID)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "hotel_id must be a valid UUID"})
				return
			}
			filter.HotelID = id
		}
	} else {
		filter.UserID = userID
	}

	bookings, total, err := booking_models.ListBookings(c.Request.Context(), s.DB, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch bookings."})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"bookings": bookings,
		"total":    total,
		"page":     filter.Page,
		"limit":    filter.Limit,
	})
}

func queryInt(c *gin.Context, key string, fallback int) int {
	v := c.Query(key)
	if v == "" {
		return fallback
	}
	var n int
	if _, err := fmt.Sscanf(v, "%d", &n); err != nil || n < 1 {
		return fallback
	}
	return n
}

// ConfirmBooking handles PATCH /bookings/:booking_id/confirm, the explicit
// pending -> confirmed transition by the hotel or an admin. Confirmation is
// independent of payment state.
func (s *ReservationService) ConfirmBooking(c *gin.Context) {
	id, err := uuid.Parse(c.Param("booking_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "booking_id must be a valid UUID"})
		return
	}

	applied, err := booking_models.UpdateBookingStatusIf(c.Request.Context(), s.DB, id,
		shared_models.BookingStatusPending, shared_models.BookingStatusConfirmed)
	if err != nil {
		status, msg := mapReservationError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}
	if !applied {
		c.JSON(http.StatusConflict, gin.H{"error": "Booking is no longer pending."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Booking confirmed"})
}

// CheckCompletedBookings handles POST /bookings/check-completed: the manual
// trigger for the sweeper's completion pass.
func (s *ReservationService) CheckCompletedBookings(c *gin.Context) {
	completed, err := s.Sweeper.CompletionPass(c.Request.Context())
	if err != nil {
		logger.ErrorLogger.Errorf("Manual completion pass failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Completion pass failed."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Completion pass finished", "completed": completed})
}
