//go:build integration

package sweeper

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhzk/smarthotel-booking/logger"
	"github.com/minhzk/smarthotel-booking/models/booking_models"
	"github.com/minhzk/smarthotel-booking/models/calendar_models"
	"github.com/minhzk/smarthotel-booking/models/shared_models"
	"github.com/minhzk/smarthotel-booking/utils/daterange"
)

func init() {
	logger.InitLoggers()
}

const bookingsDDL = `
	CREATE TABLE IF NOT EXISTS bookings (
		id UUID PRIMARY KEY,
		booking_id TEXT NOT NULL,
		user_id UUID NOT NULL,
		hotel_id UUID NOT NULL,
		room_id UUID NOT NULL,
		check_in_date DATE NOT NULL,
		check_out_date DATE NOT NULL,
		number_of_guests INT NOT NULL,
		guest_name TEXT NOT NULL,
		guest_email TEXT NOT NULL,
		guest_phone TEXT NOT NULL,
		total_amount BIGINT NOT NULL,
		deposit_amount BIGINT NOT NULL,
		remaining_amount BIGINT NOT NULL,
		status TEXT NOT NULL,
		payment_status TEXT NOT NULL,
		deposit_status TEXT NOT NULL,
		cancellation_reason TEXT,
		cancelled_at TIMESTAMPTZ,
		refund_emitted BOOLEAN NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`

const roomAvailabilityDDL = `
	CREATE TABLE IF NOT EXISTS room_availability (
		id UUID PRIMARY KEY,
		room_id UUID NOT NULL,
		start_date DATE NOT NULL,
		end_date DATE NOT NULL,
		status TEXT NOT NULL,
		price_override BIGINT,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`

func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	pool, err := pgxpool.New(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	for _, ddl := range []string{bookingsDDL, roomAvailabilityDDL} {
		_, err := pool.Exec(context.Background(), ddl)
		require.NoError(t, err)
	}
	_, err = pool.Exec(context.Background(), `TRUNCATE bookings, room_availability`)
	require.NoError(t, err)
	return pool
}

// insertBooking writes a booking row with the given lifecycle state and stay,
// bypassing the date validation that guards live reservations.
func insertBooking(t *testing.T, pool *pgxpool.Pool, status shared_models.BookingStatus, checkIn, checkOut time.Time) *booking_models.Booking {
	t.Helper()

	futureIn := daterange.Date(time.Now().AddDate(0, 0, 30))
	b, err := booking_models.NewBooking(uuid.New(), uuid.New(), uuid.New(),
		futureIn, futureIn.AddDate(0, 0, 2), 2, "Sweep Guest", "sweep@example.com", "+84901234567",
		20000, 0, time.Now())
	require.NoError(t, err)

	b.CheckInDate = daterange.Date(checkIn)
	b.CheckOutDate = daterange.Date(checkOut)
	b.Status = status

	_, err = booking_models.CreateBooking(context.Background(), pool, b)
	require.NoError(t, err)
	return b
}

// A confirmed booking past its checkout can be completed by the sweeper or
// canceled by the guest, but never both: the guarded status updates let
// exactly one of the racing writers through.
func TestCompletionPassRacingCancel(t *testing.T) {
	pool := testPool(t)
	sw := New(pool, time.Minute)

	b := insertBooking(t, pool, shared_models.BookingStatusConfirmed,
		time.Now().AddDate(0, 0, -5), time.Now().AddDate(0, 0, -2))

	var completed int
	var cancelApplied bool
	var completeErr, cancelErr error

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		completed, completeErr = sw.CompletionPass(context.Background())
	}()
	go func() {
		defer wg.Done()
		cancelApplied, cancelErr = booking_models.MarkCancelled(context.Background(), pool, b.ID, "changed plans", time.Now(), false)
	}()
	wg.Wait()

	require.NoError(t, completeErr)
	require.NoError(t, cancelErr)

	wins := completed
	if cancelApplied {
		wins++
	}
	assert.Equal(t, 1, wins, "exactly one of completion and cancellation must apply")

	after, err := booking_models.GetBookingByID(context.Background(), pool, b.ID)
	require.NoError(t, err)
	if cancelApplied {
		assert.Equal(t, shared_models.BookingStatusCanceled, after.Status)
	} else {
		assert.Equal(t, shared_models.BookingStatusCompleted, after.Status)
	}
}

// expireOne must report false when its guarded update loses to a concurrent
// transition, so the expiry pass counts only bookings it actually expired.
func TestExpiryCountsOnlyAppliedTransitions(t *testing.T) {
	pool := testPool(t)
	sw := New(pool, time.Minute)
	ctx := context.Background()

	b := insertBooking(t, pool, shared_models.BookingStatusPending,
		time.Now().AddDate(0, 0, -3), time.Now().AddDate(0, 0, -1))
	require.NoError(t, calendar_models.GenerateCalendar(ctx, pool, b.RoomID,
		b.CheckInDate, b.CheckOutDate.AddDate(0, 0, -1), calendar_models.EntryStatusBooked, nil))

	t.Run("LostRaceIsNotCounted", func(t *testing.T) {
		// The booking is canceled after the pass would have fetched it.
		applied, err := booking_models.MarkCancelled(ctx, pool, b.ID, "paid off-platform", time.Now(), false)
		require.NoError(t, err)
		require.True(t, applied)

		got, err := sw.expireOne(ctx, b)
		require.NoError(t, err)
		assert.False(t, got)

		expired, err := sw.ExpiryPass(ctx)
		require.NoError(t, err)
		assert.Zero(t, expired)
	})

	t.Run("AppliedExpiryIsCounted", func(t *testing.T) {
		b2 := insertBooking(t, pool, shared_models.BookingStatusPending,
			time.Now().AddDate(0, 0, -3), time.Now().AddDate(0, 0, -1))
		require.NoError(t, calendar_models.GenerateCalendar(ctx, pool, b2.RoomID,
			b2.CheckInDate, b2.CheckOutDate.AddDate(0, 0, -1), calendar_models.EntryStatusBooked, nil))

		expired, err := sw.ExpiryPass(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, expired)

		after, err := booking_models.GetBookingByID(ctx, pool, b2.ID)
		require.NoError(t, err)
		assert.Equal(t, shared_models.BookingStatusExpired, after.Status)

		free, err := calendar_models.CheckRangeAvailability(ctx, pool, b2.RoomID, b2.CheckInDate, b2.CheckOutDate)
		require.NoError(t, err)
		assert.True(t, free, "expiry must release the stay window")
	})
}
