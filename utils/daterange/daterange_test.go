package daterange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhzk/smarthotel-booking/utils"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDate(t *testing.T) {
	noon := time.Date(2026, 3, 10, 12, 34, 56, 789, time.UTC)
	assert.Equal(t, day(2026, 3, 10), Date(noon))

	// A local-time evening lands on its UTC calendar day.
	loc := time.FixedZone("ICT", 7*3600)
	lateEvening := time.Date(2026, 3, 10, 2, 0, 0, 0, loc) // 2026-03-09 19:00 UTC
	assert.Equal(t, day(2026, 3, 9), Date(lateEvening))
}

func TestNights(t *testing.T) {
	assert.Equal(t, 1, Nights(day(2026, 3, 10), day(2026, 3, 11)))
	assert.Equal(t, 3, Nights(day(2026, 3, 10), day(2026, 3, 13)))
	assert.Equal(t, 0, Nights(day(2026, 3, 10), day(2026, 3, 10)))
}

func TestValidateStay(t *testing.T) {
	now := day(2026, 3, 1)

	t.Run("ValidStay", func(t *testing.T) {
		require.NoError(t, ValidateStay(day(2026, 3, 10), day(2026, 3, 12), now))
	})

	t.Run("SameDayCheckInIsValid", func(t *testing.T) {
		require.NoError(t, ValidateStay(day(2026, 3, 1), day(2026, 3, 2), now))
	})

	t.Run("ZeroNightStay", func(t *testing.T) {
		err := ValidateStay(day(2026, 3, 10), day(2026, 3, 10), now)
		assert.ErrorIs(t, err, utils.ErrInvalidDateRange)
	})

	t.Run("InvertedRange", func(t *testing.T) {
		err := ValidateStay(day(2026, 3, 12), day(2026, 3, 10), now)
		assert.ErrorIs(t, err, utils.ErrInvalidDateRange)
	})

	t.Run("CheckInInPast", func(t *testing.T) {
		err := ValidateStay(day(2026, 2, 28), day(2026, 3, 2), now)
		assert.ErrorIs(t, err, utils.ErrInvalidDateRange)
	})
}

func TestStayOverlapsEntry(t *testing.T) {
	// Entry blocks March 10-12 inclusive.
	entryStart, entryEnd := day(2026, 3, 10), day(2026, 3, 12)

	t.Run("StayInsideEntry", func(t *testing.T) {
		assert.True(t, StayOverlapsEntry(day(2026, 3, 11), day(2026, 3, 12), entryStart, entryEnd))
	})

	t.Run("StayStraddlesEntryStart", func(t *testing.T) {
		assert.True(t, StayOverlapsEntry(day(2026, 3, 8), day(2026, 3, 11), entryStart, entryEnd))
	})

	t.Run("CheckoutDayIsNotOccupied", func(t *testing.T) {
		// Checking out on the entry's first day: last night is the 9th.
		assert.False(t, StayOverlapsEntry(day(2026, 3, 8), day(2026, 3, 10), entryStart, entryEnd))
	})

	t.Run("CheckInAfterEntryEnd", func(t *testing.T) {
		assert.False(t, StayOverlapsEntry(day(2026, 3, 13), day(2026, 3, 15), entryStart, entryEnd))
	})

	t.Run("CheckInOnEntryEnd", func(t *testing.T) {
		assert.True(t, StayOverlapsEntry(day(2026, 3, 12), day(2026, 3, 14), entryStart, entryEnd))
	})
}

func TestSpansTouch(t *testing.T) {
	t.Run("Overlapping", func(t *testing.T) {
		assert.True(t, SpansTouch(day(2026, 3, 1), day(2026, 3, 5), day(2026, 3, 4), day(2026, 3, 8)))
	})
	t.Run("Adjacent", func(t *testing.T) {
		assert.True(t, SpansTouch(day(2026, 3, 1), day(2026, 3, 5), day(2026, 3, 6), day(2026, 3, 8)))
	})
	t.Run("GapOfOneDay", func(t *testing.T) {
		assert.False(t, SpansTouch(day(2026, 3, 1), day(2026, 3, 5), day(2026, 3, 7), day(2026, 3, 8)))
	})
}

func TestDaysIn(t *testing.T) {
	days := DaysIn(day(2026, 3, 10), day(2026, 3, 12))
	require.Len(t, days, 3)
	assert.Equal(t, day(2026, 3, 10), days[0])
	assert.Equal(t, day(2026, 3, 12), days[2])

	assert.Len(t, DaysIn(day(2026, 3, 10), day(2026, 3, 10)), 1)
	assert.Empty(t, DaysIn(day(2026, 3, 12), day(2026, 3, 10)))
}
