// Package daterange holds the date-granularity helpers shared by the
// calendar store, the booking lifecycle and the sweeper. All booking dates
// are midnight-UTC days; time-of-day never participates in any comparison.
package daterange

import (
	"time"

	"github.com/minhzk/smarthotel-booking/utils"
)

// Date truncates t to its calendar day in UTC.
func Date(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today returns the current calendar day in UTC.
func Today() time.Time {
	return Date(time.Now())
}

// Nights returns the number of nights between check-in and check-out.
func Nights(checkIn, checkOut time.Time) int {
	return int(Date(checkOut).Sub(Date(checkIn)).Hours() / 24)
}

// ValidateStay rejects zero-night stays, inverted ranges and check-ins in
// the past, per the booking input rules. now is passed in for testability.
func ValidateStay(checkIn, checkOut, now time.Time) error {
	in, out := Date(checkIn), Date(checkOut)
	if !out.After(in) {
		return utils.ErrInvalidDateRange
	}
	if in.Before(Date(now)) {
		return utils.ErrInvalidDateRange
	}
	return nil
}

// StayOverlapsEntry reports whether an occupancy window [checkIn, checkOut)
// intersects a calendar entry's inclusive [startDate, endDate] span. The
// checkout day itself is not occupied, so a checkout on day D and a new
// check-in on day D do not conflict.
func StayOverlapsEntry(checkIn, checkOut, startDate, endDate time.Time) bool {
	lastNight := Date(checkOut).AddDate(0, 0, -1)
	return !Date(checkIn).After(Date(endDate)) && !lastNight.Before(Date(startDate))
}

// SpansTouch reports whether two inclusive day spans overlap or are
// directly adjacent (end of one is the day before the start of the other).
// Used by the calendar generator when merging entries.
func SpansTouch(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !Date(aStart).After(Date(bEnd).AddDate(0, 0, 1)) &&
		!Date(bStart).After(Date(aEnd).AddDate(0, 0, 1))
}

// DaysIn enumerates every day in the inclusive span [start, end].
func DaysIn(start, end time.Time) []time.Time {
	var days []time.Time
	for d := Date(start); !d.After(Date(end)); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}
