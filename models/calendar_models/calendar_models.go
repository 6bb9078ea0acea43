package calendar_models

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/minhzk/smarthotel-booking/logger"
	"github.com/minhzk/smarthotel-booking/models/shared_models"
	"github.com/minhzk/smarthotel-booking/utils/daterange"
)

// Querier is satisfied by both *pgxpool.Pool and pgx.Tx so the same store
// functions serve plain reads and transactional reservation paths.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// EntryStatus is the per-day room state recorded in the calendar.
type EntryStatus string

const (
	EntryStatusAvailable   EntryStatus = "available"
	EntryStatusBooked      EntryStatus = "booked"
	EntryStatusMaintenance EntryStatus = "maintenance"
)

func (s EntryStatus) IsValid() bool {
	switch s {
	case EntryStatusAvailable, EntryStatusBooked, EntryStatusMaintenance:
		return true
	}
	return false
}

// Blocking reports whether this status conflicts with an occupancy request.
func (s EntryStatus) Blocking() bool {
	return s == EntryStatusBooked || s == EntryStatusMaintenance
}

// RoomAvailabilityEntry is one date-range record of a room's calendar.
// Spans are inclusive day ranges. For a given room, persisted entries never
// overlap; dates not covered by any entry are implicitly available at the
// catalog-default price.
type RoomAvailabilityEntry struct {
	ID            uuid.UUID   `json:"id"`
	RoomID        uuid.UUID   `json:"room_id"`
	StartDate     time.Time   `json:"start_date"`
	EndDate       time.Time   `json:"end_date"`
	Status        EntryStatus `json:"status"`
	PriceOverride *int64      `json:"price_override,omitempty"` // minor currency units
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// DayAvailability is the per-day view returned by the check-room-dates API.
type DayAvailability struct {
	Date          time.Time   `json:"date"`
	Status        EntryStatus `json:"status"`
	PriceOverride *int64      `json:"price_override,omitempty"`
}

func samePrice(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// RangeConflicts reports whether any entry blocks the half-open occupancy
// window [checkIn, checkOut). Entries of other rooms must not be passed in.
func RangeConflicts(entries []RoomAvailabilityEntry, checkIn, checkOut time.Time) bool {
	for _, e := range entries {
		if !e.Status.Blocking() {
			continue
		}
		if daterange.StayOverlapsEntry(checkIn, checkOut, e.StartDate, e.EndDate) {
			return true
		}
	}
	return false
}

// DaySnapshot expands entries into the per-day state of [checkIn, checkOut).
// Days with no covering entry come back as available with no override.
func DaySnapshot(entries []RoomAvailabilityEntry, checkIn, checkOut time.Time) []DayAvailability {
	lastNight := daterange.Date(checkOut).AddDate(0, 0, -1)
	days := daterange.DaysIn(checkIn, lastNight)

	snapshot := make([]DayAvailability, 0, len(days))
	for _, day := range days {
		state := DayAvailability{Date: day, Status: EntryStatusAvailable}
		for _, e := range entries {
			if !day.Before(daterange.Date(e.StartDate)) && !day.After(daterange.Date(e.EndDate)) {
				state.Status = e.Status
				state.PriceOverride = e.PriceOverride
				break
			}
		}
		snapshot = append(snapshot, state)
	}
	return snapshot
}

// PlanRangeWrite computes the replacement entry set for overwriting
// [start, end] (inclusive days) with the given status and price override.
// existing must hold every entry of the room touching [start-1, end+1] so
// clipped remnants and adjacency merges come out right. The plan is a pure
// function of its inputs, which is what makes the generator idempotent:
// replaying the same write yields the byte-identical entry set.
//
// Explicitly-available spans without a price override are not materialized;
// absence of an entry already means available at the default price.
func PlanRangeWrite(existing []RoomAvailabilityEntry, roomID uuid.UUID, start, end time.Time, status EntryStatus, priceOverride *int64) []RoomAvailabilityEntry {
	start, end = daterange.Date(start), daterange.Date(end)

	var pieces []RoomAvailabilityEntry

	// Remnants of existing entries outside the overwritten window.
	for _, e := range existing {
		eStart, eEnd := daterange.Date(e.StartDate), daterange.Date(e.EndDate)
		if eEnd.Before(start) || eStart.After(end) {
			pieces = append(pieces, RoomAvailabilityEntry{
				RoomID: roomID, StartDate: eStart, EndDate: eEnd,
				Status: e.Status, PriceOverride: e.PriceOverride,
			})
			continue
		}
		if eStart.Before(start) {
			pieces = append(pieces, RoomAvailabilityEntry{
				RoomID: roomID, StartDate: eStart, EndDate: start.AddDate(0, 0, -1),
				Status: e.Status, PriceOverride: e.PriceOverride,
			})
		}
		if eEnd.After(end) {
			pieces = append(pieces, RoomAvailabilityEntry{
				RoomID: roomID, StartDate: end.AddDate(0, 0, 1), EndDate: eEnd,
				Status: e.Status, PriceOverride: e.PriceOverride,
			})
		}
	}

	if status != EntryStatusAvailable || priceOverride != nil {
		pieces = append(pieces, RoomAvailabilityEntry{
			RoomID: roomID, StartDate: start, EndDate: end,
			Status: status, PriceOverride: priceOverride,
		})
	}

	sort.Slice(pieces, func(i, j int) bool { return pieces[i].StartDate.Before(pieces[j].StartDate) })

	// Merge adjacent same-status, same-price spans to keep the entry count minimal.
	var merged []RoomAvailabilityEntry
	for _, p := range pieces {
		if len(merged) > 0 {
			last := &merged[len(merged)-1]
			if last.Status == p.Status && samePrice(last.PriceOverride, p.PriceOverride) &&
				daterange.SpansTouch(last.StartDate, last.EndDate, p.StartDate, p.EndDate) {
				if p.EndDate.After(last.EndDate) {
					last.EndDate = p.EndDate
				}
				continue
			}
		}
		merged = append(merged, p)
	}
	return merged
}

// LockRoom takes a transaction-scoped advisory lock on the room. Row locks
// alone cannot serialize calendar writers: a fresh room has no rows, so
// FOR UPDATE on its window locks nothing and two concurrent reservations
// would both see an empty calendar. The advisory lock keys on the room ID
// and is released automatically at commit or rollback.
func LockRoom(ctx context.Context, tx pgx.Tx, roomID uuid.UUID) error {
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, roomID.String()); err != nil {
		logger.ErrorLogger.Errorf("Failed to acquire lock for room %s: %v", roomID, err)
		return fmt.Errorf("failed to acquire room lock: %w", err)
	}
	return nil
}

const entryColumns = `id, room_id, start_date, end_date, status, price_override, created_at, updated_at`

func scanEntries(rows pgx.Rows) ([]RoomAvailabilityEntry, error) {
	defer rows.Close()

	var entries []RoomAvailabilityEntry
	for rows.Next() {
		var e RoomAvailabilityEntry
		if err := rows.Scan(&e.ID, &e.RoomID, &e.StartDate, &e.EndDate, &e.Status, &e.PriceOverride, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan calendar entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// GetEntriesForRange fetches every entry of the room whose inclusive span
// intersects [start, end].
func GetEntriesForRange(ctx context.Context, q Querier, roomID uuid.UUID, start, end time.Time) ([]RoomAvailabilityEntry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM room_availability
		WHERE room_id = $1 AND start_date <= $3 AND end_date >= $2
		ORDER BY start_date`

	rows, err := q.Query(ctx, query, roomID, daterange.Date(start), daterange.Date(end))
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to fetch calendar entries for room %s: %v", roomID, err)
		return nil, fmt.Errorf("failed to fetch calendar entries: %w", err)
	}
	return scanEntries(rows)
}

// LockEntriesForRange is GetEntriesForRange with FOR UPDATE row locks. Must
// be called inside a transaction; it is the serialization point that makes
// reserve-then-commit atomic for a room.
func LockEntriesForRange(ctx context.Context, tx pgx.Tx, roomID uuid.UUID, start, end time.Time) ([]RoomAvailabilityEntry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM room_availability
		WHERE room_id = $1 AND start_date <= $3 AND end_date >= $2
		ORDER BY start_date
		FOR UPDATE`

	rows, err := tx.Query(ctx, query, roomID, daterange.Date(start), daterange.Date(end))
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to lock calendar entries for room %s: %v", roomID, err)
		return nil, fmt.Errorf("failed to lock calendar entries: %w", err)
	}
	return scanEntries(rows)
}

// ApplyRangeWrite overwrites the room calendar for the inclusive span
// [start, end] with the given status and price. It deletes every touching
// entry and inserts the planned replacement set in one shot. Callers that
// need atomicity with other writes pass a pgx.Tx.
func ApplyRangeWrite(ctx context.Context, q Querier, roomID uuid.UUID, start, end time.Time, status EntryStatus, priceOverride *int64) error {
	if !status.IsValid() {
		return fmt.Errorf("invalid calendar status %q", status)
	}
	if priceOverride != nil && *priceOverride <= 0 {
		return fmt.Errorf("price override must be positive")
	}
	start, end = daterange.Date(start), daterange.Date(end)
	if end.Before(start) {
		return fmt.Errorf("calendar range end %s before start %s", end.Format("2006-01-02"), start.Format("2006-01-02"))
	}

	// Include the adjacent day on each side so same-status neighbours merge.
	touchStart := start.AddDate(0, 0, -1)
	touchEnd := end.AddDate(0, 0, 1)

	existing, err := GetEntriesForRange(ctx, q, roomID, touchStart, touchEnd)
	if err != nil {
		return err
	}

	planned := PlanRangeWrite(existing, roomID, start, end, status, priceOverride)

	if len(existing) > 0 {
		ids := make([]uuid.UUID, 0, len(existing))
		for _, e := range existing {
			ids = append(ids, e.ID)
		}
		if _, err := q.Exec(ctx, `DELETE FROM room_availability WHERE id = ANY($1)`, ids); err != nil {
			logger.ErrorLogger.Errorf("Failed to clear calendar entries for room %s: %v", roomID, err)
			return fmt.Errorf("failed to clear calendar entries: %w", err)
		}
	}

	now := time.Now()
	insert := `
		INSERT INTO room_availability (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	for i := range planned {
		id, err := shared_models.GenerateUUIDv7()
		if err != nil {
			return fmt.Errorf("failed to generate UUID for calendar entry: %w", err)
		}
		p := planned[i]
		if _, err := q.Exec(ctx, insert, id, p.RoomID, p.StartDate, p.EndDate, p.Status, p.PriceOverride, now, now); err != nil {
			logger.ErrorLogger.Errorf("Failed to insert calendar entry for room %s: %v", roomID, err)
			return fmt.Errorf("failed to insert calendar entry: %w", err)
		}
	}

	logger.InfoLogger.Infof("Calendar for room %s rewritten: [%s..%s] -> %s (%d entries)",
		roomID, start.Format("2006-01-02"), end.Format("2006-01-02"), status, len(planned))
	return nil
}

// GenerateCalendar is the calendar generator entry point: an idempotent
// overwrite of [start, end] run in its own transaction. Used both for the
// initial seeding and for manual blocking/pricing, single-day or range.
func GenerateCalendar(ctx context.Context, pool *pgxpool.Pool, roomID uuid.UUID, start, end time.Time, status EntryStatus, priceOverride *int64) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin calendar transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := LockRoom(ctx, tx, roomID); err != nil {
		return err
	}
	if _, err := LockEntriesForRange(ctx, tx, roomID, daterange.Date(start).AddDate(0, 0, -1), daterange.Date(end).AddDate(0, 0, 1)); err != nil {
		return err
	}
	if err := ApplyRangeWrite(ctx, tx, roomID, start, end, status, priceOverride); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit calendar transaction: %w", err)
	}
	return nil
}

// CheckRangeAvailability answers the availability query for an occupancy
// window [checkIn, checkOut): true iff no booked or maintenance entry
// intersects it. Days without entries count as available.
func CheckRangeAvailability(ctx context.Context, q Querier, roomID uuid.UUID, checkIn, checkOut time.Time) (bool, error) {
	lastNight := daterange.Date(checkOut).AddDate(0, 0, -1)
	entries, err := GetEntriesForRange(ctx, q, roomID, checkIn, lastNight)
	if err != nil {
		return false, err
	}
	return !RangeConflicts(entries, checkIn, checkOut), nil
}

// PriceSegment is a run of consecutive days sharing one price override.
type PriceSegment struct {
	Start, End time.Time
	Price      *int64
}

// PriceSegments splits the inclusive day span [start, end] into runs of
// constant price override as recorded by the given entries. Days without a
// covering entry carry a nil price. Booking and release walk these segments
// so admin price overrides survive a book-then-cancel cycle.
func PriceSegments(entries []RoomAvailabilityEntry, start, end time.Time) []PriceSegment {
	var segments []PriceSegment
	for _, day := range daterange.DaysIn(start, end) {
		var p *int64
		for _, e := range entries {
			if !day.Before(daterange.Date(e.StartDate)) && !day.After(daterange.Date(e.EndDate)) {
				p = e.PriceOverride
				break
			}
		}
		if len(segments) > 0 && samePrice(segments[len(segments)-1].Price, p) {
			segments[len(segments)-1].End = day
			continue
		}
		segments = append(segments, PriceSegment{Start: day, End: day, Price: p})
	}
	return segments
}

// MarkStayBooked writes booked entries for the occupancy window of a new
// reservation. Must run inside the reservation transaction, after
// LockEntriesForRange has verified the window is free. Without an explicit
// price the booked entries inherit any price overrides covering the window,
// segment by segment, so release can restore them.
func MarkStayBooked(ctx context.Context, tx pgx.Tx, roomID uuid.UUID, checkIn, checkOut time.Time, priceOverride *int64) error {
	start := daterange.Date(checkIn)
	lastNight := daterange.Date(checkOut).AddDate(0, 0, -1)

	if priceOverride != nil {
		return ApplyRangeWrite(ctx, tx, roomID, start, lastNight, EntryStatusBooked, priceOverride)
	}

	existing, err := GetEntriesForRange(ctx, tx, roomID, start, lastNight)
	if err != nil {
		return err
	}
	for _, seg := range PriceSegments(existing, start, lastNight) {
		if err := ApplyRangeWrite(ctx, tx, roomID, seg.Start, seg.End, EntryStatusBooked, seg.Price); err != nil {
			return err
		}
	}
	return nil
}

// ReleaseStayRange returns the occupancy window of a canceled or expired
// booking to availability, re-materializing the price overrides its booked
// entries carried. Days without an override go back to implicit coverage.
func ReleaseStayRange(ctx context.Context, q Querier, roomID uuid.UUID, checkIn, checkOut time.Time) error {
	start := daterange.Date(checkIn)
	lastNight := daterange.Date(checkOut).AddDate(0, 0, -1)

	existing, err := GetEntriesForRange(ctx, q, roomID, start, lastNight)
	if err != nil {
		return err
	}
	for _, seg := range PriceSegments(existing, start, lastNight) {
		if err := ApplyRangeWrite(ctx, q, roomID, seg.Start, seg.End, EntryStatusAvailable, seg.Price); err != nil {
			return err
		}
	}
	return nil
}
