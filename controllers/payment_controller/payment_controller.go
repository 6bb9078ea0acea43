package payment_controller

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/minhzk/smarthotel-booking/clients"
	"github.com/minhzk/smarthotel-booking/logger"
	"github.com/minhzk/smarthotel-booking/models/booking_models"
	"github.com/minhzk/smarthotel-booking/models/payment_models"
)

// PaymentService ingests gateway webhook events and keeps each booking's
// payment axes in sync with the event ledger.
type PaymentService struct {
	DB      *pgxpool.Pool
	Gateway clients.PaymentGatewayWrapper
}

func NewPaymentService(db *pgxpool.Pool, gateway clients.PaymentGatewayWrapper) *PaymentService {
	return &PaymentService{DB: db, Gateway: gateway}
}

type webhookPayload struct {
	BookingID        string `json:"booking_id"`
	EventType        string `json:"event_type"`
	Status           string `json:"status"`
	Amount           int64  `json:"amount"`
	GatewayPaymentID string `json:"gateway_payment_id"`
}

// Webhook handles POST /payments/webhook. The gateway signs the raw body;
// verification happens before any parsing. Replayed events are detected by
// gateway payment id and acknowledged without reapplying.
func (s *PaymentService) Webhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body."})
		return
	}

	signature := c.GetHeader("X-Razorpay-Signature")
	if signature == "" || !s.Gateway.VerifyWebhookSignature(signature, string(body)) {
		logger.WarnLogger.Warn("Rejected webhook with missing or invalid signature")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid webhook signature."})
		return
	}

	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid webhook payload."})
		return
	}

	bookingID, err := uuid.Parse(payload.BookingID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "booking_id must be a valid UUID"})
		return
	}
	eventType := payment_models.EventType(payload.EventType)
	eventStatus := payment_models.EventStatus(payload.Status)
	if !eventType.IsValid() || !eventStatus.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown event type or status."})
		return
	}

	seen, err := payment_models.GatewayEventSeen(c.Request.Context(), s.DB, payload.GatewayPaymentID, eventType)
	if err != nil {
		logger.ErrorLogger.Errorf("Webhook dedup check failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error."})
		return
	}
	if seen {
		logger.InfoLogger.Infof("Skipping replayed webhook event %s/%s", payload.GatewayPaymentID, eventType)
		c.JSON(http.StatusOK, gin.H{"message": "Event already processed"})
		return
	}

	ev, err := payment_models.NewPaymentEvent(bookingID, eventType, eventStatus, payload.Amount, payload.GatewayPaymentID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.applyEvent(c.Request.Context(), bookingID, ev); err != nil {
		logger.ErrorLogger.Errorf("Failed to apply payment event for booking %s: %v", bookingID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process payment event."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Payment event processed"})
}

// applyEvent records the event and updates the booking's payment axes in
// one transaction. The booking's lifecycle status is never touched here;
// confirmation and expiry are separate concerns.
func (s *PaymentService) applyEvent(ctx context.Context, bookingID uuid.UUID, ev *payment_models.PaymentEvent) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin payment transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := payment_models.CreatePaymentEvent(ctx, tx, ev); err != nil {
		return err
	}

	b, err := booking_models.GetBookingByID(ctx, tx, bookingID)
	if err != nil {
		return err
	}
	if err := payment_models.ApplyPaymentEvent(b, ev); err != nil {
		return err
	}
	if err := booking_models.UpdatePaymentAxes(ctx, tx, b); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// ListEvents handles GET /payments/bookings/:booking_id/events for the
// hotel dashboard.
func (s *PaymentService) ListEvents(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("booking_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "booking_id must be a valid UUID"})
		return
	}

	events, err := payment_models.GetEventsByBooking(c.Request.Context(), s.DB, bookingID)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to fetch payment events for booking %s: %v", bookingID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch payment events."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": events})
}
