package availability_controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/minhzk/smarthotel-booking/logger"
	"github.com/minhzk/smarthotel-booking/models/calendar_models"
	"github.com/minhzk/smarthotel-booking/utils"
	"github.com/minhzk/smarthotel-booking/utils/daterange"
)

const (
	availabilityCachePrefix = "room_avail:"
	availabilityCacheTTL    = 60 * time.Second
)

// AvailabilityService owns the room calendar: generation, manual status
// writes and availability queries.
type AvailabilityService struct {
	DB          *pgxpool.Pool
	RedisClient *redis.Client
}

func NewAvailabilityService(db *pgxpool.Pool, rdb *redis.Client) *AvailabilityService {
	return &AvailabilityService{DB: db, RedisClient: rdb}
}

// GenerateCalendarRequest seeds or overwrites a date range for one room.
// Dates are inclusive calendar days. A single day is just start == end.
type GenerateCalendarRequest struct {
	RoomID        string `json:"room_id" binding:"required,uuid"`
	StartDate     string `json:"start_date" binding:"required"`
	EndDate       string `json:"end_date" binding:"required"`
	Status        string `json:"status" binding:"required"`
	PriceOverride *int64 `json:"price_override"`
}

func parseDay(s string) (time.Time, bool) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, false
	}
	return daterange.Date(t), true
}

// GenerateCalendar handles POST /room-availability/generate. The write is
// idempotent: replaying the same request leaves the calendar unchanged.
func (s *AvailabilityService) GenerateCalendar(c *gin.Context) {
	var req GenerateCalendarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	roomID, err := uuid.Parse(req.RoomID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "room_id must be a valid UUID"})
		return
	}
	start, ok1 := parseDay(req.StartDate)
	end, ok2 := parseDay(req.EndDate)
	if !ok1 || !ok2 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_date and end_date must be YYYY-MM-DD"})
		return
	}
	if end.Before(start) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end_date must not be before start_date"})
		return
	}

	status := calendar_models.EntryStatus(req.Status)
	if !status.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be one of available, booked, maintenance"})
		return
	}
	if req.PriceOverride != nil && *req.PriceOverride <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "price_override must be positive"})
		return
	}

	if err := calendar_models.GenerateCalendar(c.Request.Context(), s.DB, roomID, start, end, status, req.PriceOverride); err != nil {
		logger.ErrorLogger.Errorf("Calendar generation failed for room %s: %v", roomID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate calendar."})
		return
	}

	s.invalidateCache(c.Request.Context(), roomID)
	c.JSON(http.StatusOK, gin.H{"message": "Calendar updated"})
}

// UpdateStatus handles PATCH /room-availability/:room_id. Same primitive
// as generation; kept as a separate route for the hotel dashboard.
func (s *AvailabilityService) UpdateStatus(c *gin.Context) {
	roomID, err := uuid.Parse(c.Param("room_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "room_id must be a valid UUID"})
		return
	}

	var req struct {
		StartDate     string `json:"start_date" binding:"required"`
		EndDate       string `json:"end_date" binding:"required"`
		Status        string `json:"status" binding:"required"`
		PriceOverride *int64 `json:"price_override"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	start, ok1 := parseDay(req.StartDate)
	end, ok2 := parseDay(req.EndDate)
	if !ok1 || !ok2 || end.Before(start) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date range"})
		return
	}
	status := calendar_models.EntryStatus(req.Status)
	if !status.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be one of available, booked, maintenance"})
		return
	}

	if err := calendar_models.GenerateCalendar(c.Request.Context(), s.DB, roomID, start, end, status, req.PriceOverride); err != nil {
		logger.ErrorLogger.Errorf("Calendar update failed for room %s: %v", roomID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update calendar."})
		return
	}

	s.invalidateCache(c.Request.Context(), roomID)
	c.JSON(http.StatusOK, gin.H{"message": "Calendar updated"})
}

type availabilityResponse struct {
	RoomID      string                           `json:"room_id"`
	CheckIn     string                           `json:"check_in_date"`
	CheckOut    string                           `json:"check_out_date"`
	IsAvailable bool                             `json:"is_available"`
	Days        []calendar_models.DayAvailability `json:"days"`
}

// CheckRoomDates handles GET /room-availability/check. Query params:
// room_id, check_in_date, check_out_date. Results are cached briefly in
// Redis; any calendar write for the room invalidates the cache.
func (s *AvailabilityService) CheckRoomDates(c *gin.Context) {
	roomID, err := uuid.Parse(c.Query("room_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "room_id must be a valid UUID"})
		return
	}
	checkIn, ok1 := parseDay(c.Query("check_in_date"))
	checkOut, ok2 := parseDay(c.Query("check_out_date"))
	if !ok1 || !ok2 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "check_in_date and check_out_date must be YYYY-MM-DD"})
		return
	}
	if err := daterange.ValidateStay(checkIn, checkOut, time.Now()); err != nil {
		if errors.Is(err, utils.ErrInvalidDateRange) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date range: check-out must be after check-in and dates must not be in the past."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error."})
		return
	}

	cacheKey := availabilityCachePrefix + roomID.String() + ":" +
		checkIn.Format("2006-01-02") + ":" + checkOut.Format("2006-01-02")
	if cached, ok := s.cacheGet(c.Request.Context(), cacheKey); ok {
		c.Data(http.StatusOK, "application/json", cached)
		return
	}

	lastNight := checkOut.AddDate(0, 0, -1)
	entries, err := calendar_models.GetEntriesForRange(c.Request.Context(), s.DB, roomID, checkIn, lastNight)
	if err != nil {
		logger.ErrorLogger.Errorf("Availability query failed for room %s: %v", roomID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query availability."})
		return
	}

	resp := availabilityResponse{
		RoomID:      roomID.String(),
		CheckIn:     checkIn.Format("2006-01-02"),
		CheckOut:    checkOut.Format("2006-01-02"),
		IsAvailable: !calendar_models.RangeConflicts(entries, checkIn, checkOut),
		Days:        calendar_models.DaySnapshot(entries, checkIn, checkOut),
	}

	body, err := json.Marshal(resp)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error."})
		return
	}
	s.cacheSet(c.Request.Context(), cacheKey, body)
	c.Data(http.StatusOK, "application/json", body)
}

func (s *AvailabilityService) cacheGet(ctx context.Context, key string) ([]byte, bool) {
	if s.RedisClient == nil {
		return nil, false
	}
	body, err := s.RedisClient.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.WarnLogger.Warnf("Availability cache read failed: %v", err)
		}
		return nil, false
	}
	return body, true
}

func (s *AvailabilityService) cacheSet(ctx context.Context, key string, body []byte) {
	if s.RedisClient == nil {
		return
	}
	if err := s.RedisClient.Set(ctx, key, body, availabilityCacheTTL).Err(); err != nil {
		logger.WarnLogger.Warnf("Availability cache write failed: %v", err)
	}
}

// invalidateCache drops cached availability answers for a room after a
// calendar write. Keys carry the date window, so a scan is needed.
func (s *AvailabilityService) invalidateCache(ctx context.Context, roomID uuid.UUID) {
	if s.RedisClient == nil {
		return
	}
	pattern := availabilityCachePrefix + roomID.String() + ":*"
	iter := s.RedisClient.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := s.RedisClient.Del(ctx, iter.Val()).Err(); err != nil {
			logger.WarnLogger.Warnf("Failed to invalidate cache key %s: %v", iter.Val(), err)
		}
	}
	if err := iter.Err(); err != nil {
		logger.WarnLogger.Warnf("Cache invalidation scan failed for room %s: %v", roomID, err)
	}
}
