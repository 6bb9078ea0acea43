package sweeper

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/minhzk/smarthotel-booking/logger"
	"github.com/minhzk/smarthotel-booking/models/booking_models"
	"github.com/minhzk/smarthotel-booking/models/calendar_models"
	"github.com/minhzk/smarthotel-booking/models/shared_models"
	"github.com/minhzk/smarthotel-booking/utils/daterange"
)

// batchSize caps how many bookings a single pass pulls. A busy system
// drains the backlog over successive ticks rather than in one long sweep.
const batchSize = 200

// Sweeper runs the periodic lifecycle passes: completing confirmed
// bookings whose stay has ended and expiring unpaid bookings whose
// check-in date has passed.
type Sweeper struct {
	DB       *pgxpool.Pool
	Interval time.Duration
}

func New(db *pgxpool.Pool, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Sweeper{DB: db, Interval: interval}
}

// Run blocks, executing both passes every Interval until ctx is done. One
// booking failing never aborts the rest of a pass.
func (s *Sweeper) Run(ctx context.Context) {
	logger.InfoLogger.Infof("Sweeper started with interval %s", s.Interval)
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.InfoLogger.Info("Sweeper stopped")
			return
		case <-ticker.C:
			if n, err := s.CompletionPass(ctx); err != nil {
				logger.ErrorLogger.Errorf("Completion pass failed: %v", err)
			} else if n > 0 {
				logger.InfoLogger.Infof("Completion pass marked %d bookings completed", n)
			}
			if n, err := s.ExpiryPass(ctx); err != nil {
				logger.ErrorLogger.Errorf("Expiry pass failed: %v", err)
			} else if n > 0 {
				logger.InfoLogger.Infof("Expiry pass marked %d bookings expired", n)
			}
		}
	}
}

// CompletionPass moves confirmed bookings with a past check-out date to
// completed. Returns how many bookings were transitioned.
func (s *Sweeper) CompletionPass(ctx context.Context) (int, error) {
	today := daterange.Today()
	candidates, err := booking_models.GetCompletableBookings(ctx, s.DB, today, batchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch completable bookings: %w", err)
	}

	completed := 0
	for i := range candidates {
		b := &candidates[i]
		applied, err := booking_models.UpdateBookingStatusIf(ctx, s.DB, b.ID,
			shared_models.BookingStatusConfirmed, shared_models.BookingStatusCompleted)
		if err != nil {
			logger.WarnLogger.Warnf("Failed to complete booking %s: %v", b.BookingID, err)
			continue
		}
		if applied {
			completed++
		}
	}
	return completed, nil
}

// ExpiryPass expires pending bookings that were never paid and whose
// check-in date has passed, releasing their calendar range in the same
// transaction. A booking that got paid or canceled between the candidate
// query and the guarded update is skipped untouched.
func (s *Sweeper) ExpiryPass(ctx context.Context) (int, error) {
	today := daterange.Today()
	candidates, err := booking_models.GetExpirableBookings(ctx, s.DB, today, batchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch expirable bookings: %w", err)
	}

	expired := 0
	for i := range candidates {
		b := &candidates[i]
		applied, err := s.expireOne(ctx, b)
		if err != nil {
			logger.WarnLogger.Warnf("Failed to expire booking %s: %v", b.BookingID, err)
			continue
		}
		if applied {
			expired++
		}
	}
	return expired, nil
}

// expireOne reports whether the booking was actually expired; false means
// the guarded update lost the race to a payment or cancellation.
func (s *Sweeper) expireOne(ctx context.Context, b *booking_models.Booking) (bool, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin expiry transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	applied, err := booking_models.ExpireBookingIf(ctx, tx, b.ID)
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
		return false, err
	}
	return true, nil
}
