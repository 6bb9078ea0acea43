package cancel_booking_controller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/minhzk/smarthotel-booking/clients"
	"github.com/minhzk/smarthotel-booking/logger"
	"github.com/minhzk/smarthotel-booking/models/booking_models"
	"github.com/minhzk/smarthotel-booking/models/calendar_models"
	"github.com/minhzk/smarthotel-booking/models/payment_models"
	"github.com/minhzk/smarthotel-booking/utils"
	"github.com/minhzk/smarthotel-booking/utils/mail"
)

// CancelBookingService handles guest-initiated cancellations: policy
// evaluation, the cancel transaction and the post-commit refund emission.
type CancelBookingService struct {
	DB      *pgxpool.Pool
	Gateway clients.PaymentGatewayWrapper
}

func NewCancelBookingService(db *pgxpool.Pool, gateway clients.PaymentGatewayWrapper) *CancelBookingService {
	return &CancelBookingService{DB: db, Gateway: gateway}
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

// CancelBook handles POST /bookings/:booking_id/cancel. The status flip and
// the calendar release commit together; the refund instruction goes out
// after commit and its failure is logged, not surfaced, since the booking
// is already canceled and refunds are reconciled via the webhook.
func (s *CancelBookingService) CancelBook(c *gin.Context) {
	id, err := uuid.Parse(c.Param("booking_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "booking_id must be a valid UUID"})
		return
	}

	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	var req cancelRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	ctx := c.Request.Context()
	booking, err := booking_models.GetBookingByID(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, utils.ErrBookingNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found."})
			return
		}
		logger.ErrorLogger.Errorf("Failed to fetch booking %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error."})
		return
	}

	if booking.UserID != userID && c.GetString("role") != "admin" {
		c.JSON(http.StatusForbidden, gin.H{"error": "Booking does not belong to this user."})
		return
	}

	now := time.Now()
	outcome, err := booking_models.EvaluateCancellation(booking, now)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Booking is not in a state that allows cancellation."})
		return
	}

	applied, err := s.cancelTx(ctx, booking, req.Reason, now, outcome.RefundEligible)
	if err != nil {
		logger.ErrorLogger.Errorf("Cancellation failed for booking %s: %v", booking.BookingID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel booking."})
		return
	}
	if !applied {
		// Raced with the sweeper or a concurrent cancel.
		c.JSON(http.StatusConflict, gin.H{"error": "Booking is not in a state that allows cancellation."})
		return
	}

	if outcome.RefundEligible {
		s.emitRefund(ctx, booking, outcome.RefundAmount)
	}
	go mail.SendBookingCancellation(booking, outcome.RefundEligible, outcome.RefundAmount)

	c.JSON(http.StatusOK, gin.H{
		"message":         "Booking canceled",
		"refund_eligible": outcome.RefundEligible,
		"refund_amount":   outcome.RefundAmount,
	})
}

func (s *CancelBookingService) cancelTx(ctx context.Context, b *booking_models.Booking, reason string, now time.Time, refundEmitted bool) (bool, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin cancellation transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	applied, err := booking_models.MarkCancelled(ctx, tx, b.ID, reason, now, refundEmitted)
	if err != nil {
		return false, err
	}
	if !applied {
		return false, nil
	}

	if err := calendar_models.ReleaseStayRange(ctx, tx, b.RoomID, b.CheckInDate, b.CheckOutDate); err != nil {
		return false, err
	}
	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit cancellation: %w", err)
	}
	return true, nil
}

// emitRefund looks up the successful deposit capture and asks the gateway
// to refund it. The refund's own success webhook later flips the booking's
// payment status to refunded.
func (s *CancelBookingService) emitRefund(ctx context.Context, b *booking_models.Booking, amount int64) {
	events, err := payment_models.GetEventsByBooking(ctx, s.DB, b.ID)
	if err != nil {
		logger.ErrorLogger.Errorf("Refund skipped for booking %s, failed to load payment events: %v", b.BookingID, err)
		return
	}

	var gatewayPaymentID string
	for i := len(events) - 1; i >= 0; i-- {
		ev := events[i]
		if ev.Status == payment_models.EventStatusSuccess &&
			(ev.EventType == payment_models.EventTypeDeposit || ev.EventType == payment_models.EventTypeFullPayment) {
			gatewayPaymentID = ev.GatewayPaymentID
			break
		}
	}
	if gatewayPaymentID == "" {
		logger.WarnLogger.Warnf("Refund skipped for booking %s, no captured payment found", b.BookingID)
		return
	}

	notes := map[string]interface{}{"booking_id": b.BookingID, "reason": "cancellation refund"}
	if _, err := s.Gateway.CreateRefund(gatewayPaymentID, amount, notes); err != nil {
		logger.ErrorLogger.Errorf("Refund emission failed for booking %s: %v", b.BookingID, err)
		return
	}
	logger.InfoLogger.Infof("Refund of %d emitted for booking %s", amount, b.BookingID)
}
