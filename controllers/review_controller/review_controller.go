package review_controller

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/minhzk/smarthotel-booking/badwords"
	"github.com/minhzk/smarthotel-booking/logger"
	"github.com/minhzk/smarthotel-booking/models/booking_models"
	"github.com/minhzk/smarthotel-booking/models/review_models"
	"github.com/minhzk/smarthotel-booking/utils"
)

// ReviewService gates and stores guest reviews.
type ReviewService struct {
	DB *pgxpool.Pool
}

func NewReviewService(db *pgxpool.Pool) *ReviewService {
	return &ReviewService{DB: db}
}

type createReviewRequest struct {
	BookingID  string `json:"booking_id" binding:"required,uuid"`
	Rating     int    `json:"rating" binding:"required,min=1,max=5"`
	ReviewText string `json:"review_text" binding:"required"`
}

// CreateReview handles POST /reviews. Only the guest of a completed, fully
// paid stay may review, once, within the review window after check-out.
func (s *ReviewService) CreateReview(c *gin.Context) {
	var req createReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	bookingID, err := uuid.Parse(req.BookingID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "booking_id must be a valid UUID"})
		return
	}

	if badwords.ContainsBadWords(req.ReviewText) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Review text contains inappropriate language."})
		return
	}

	ctx := c.Request.Context()
	booking, err := booking_models.GetBookingByID(ctx, s.DB, bookingID)
	if err != nil {
		if errors.Is(err, utils.ErrBookingNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found."})
			return
		}
		logger.ErrorLogger.Errorf("Failed to fetch booking %s: %v", bookingID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error."})
		return
	}

	if booking.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Booking does not belong to this user."})
		return
	}

	alreadyReviewed, err := review_models.HasReviewForBooking(ctx, s.DB, bookingID)
	if err != nil {
		logger.ErrorLogger.Errorf("Review lookup failed for booking %s: %v", bookingID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error."})
		return
	}
	if alreadyReviewed {
		c.JSON(http.StatusConflict, gin.H{"error": "This booking has already been reviewed."})
		return
	}

	if !review_models.EligibleForReview(booking, alreadyReviewed, time.Now()) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Booking is not eligible for review: the stay must be completed, fully paid and reviewed within 30 days of check-out."})
		return
	}

	review, err := review_models.NewReview(booking, req.Rating, req.ReviewText)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := review_models.CreateReview(ctx, s.DB, review); err != nil {
		if errors.Is(err, utils.ErrDuplicateReview) {
			c.JSON(http.StatusConflict, gin.H{"error": "This booking has already been reviewed."})
			return
		}
		logger.ErrorLogger.Errorf("Failed to create review for booking %s: %v", bookingID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create review."})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Review created", "review": review})
}

// GetHotelReviews handles GET /reviews/hotels/:hotel_id.
func (s *ReviewService) GetHotelReviews(c *gin.Context) {
	hotelID, err := uuid.Parse(c.Param("hotel_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "hotel_id must be a valid UUID"})
		return
	}

	page, limit := 1, 20
	if n, err := strconv.Atoi(c.Query("page")); err == nil && n >= 1 {
		page = n
	}
	if n, err := strconv.Atoi(c.Query("limit")); err == nil && n >= 1 {
		limit = n
	}

	reviews, err := review_models.GetReviewsByHotel(c.Request.Context(), s.DB, hotelID, page, limit)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to fetch reviews for hotel %s: %v", hotelID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch reviews."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"reviews": reviews, "page": page, "limit": limit})
}
