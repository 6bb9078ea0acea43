package review_models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/minhzk/smarthotel-booking/logger"
	"github.com/minhzk/smarthotel-booking/models/booking_models"
	"github.com/minhzk/smarthotel-booking/models/calendar_models"
	"github.com/minhzk/smarthotel-booking/models/shared_models"
	"github.com/minhzk/smarthotel-booking/utils"
)

// Review is a guest's review of a completed stay. At most one review exists
// per booking; a unique constraint on booking_id backs the eligibility gate
// against concurrent submissions.
type Review struct {
	ID         uuid.UUID  `json:"id"`
	BookingID  uuid.UUID  `json:"booking_id"`
	HotelID    uuid.UUID  `json:"hotel_id"`
	UserID     uuid.UUID  `json:"user_id"`
	Rating     int        `json:"rating"`
	ReviewText string     `json:"review_text"`
	Response   *string    `json:"response,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// NewReview validates and builds a Review for a booking.
func NewReview(b *booking_models.Booking, rating int, reviewText string) (*Review, error) {
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("rating must be between 1 and 5")
	}
	id, err := shared_models.GenerateUUIDv7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate UUID for review: %w", err)
	}
	now := time.Now()
	return &Review{
		ID:         id,
		BookingID:  b.ID,
		HotelID:    b.HotelID,
		UserID:     b.UserID,
		Rating:     rating,
		ReviewText: reviewText,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// EligibleForReview is the review gate predicate: completed, fully paid,
// within the review window, and not yet reviewed.
func EligibleForReview(b *booking_models.Booking, alreadyReviewed bool, now time.Time) bool {
	return b.ReviewableAt(now) && !alreadyReviewed
}

// HasReviewForBooking reports whether a review already references the booking.
func HasReviewForBooking(ctx context.Context, q calendar_models.Querier, bookingID uuid.UUID) (bool, error) {
	var id uuid.UUID
	err := q.QueryRow(ctx, `SELECT id FROM reviews WHERE booking_id = $1`, bookingID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		logger.ErrorLogger.Errorf("Failed to check existing review for booking %s: %v", bookingID, err)
		return false, fmt.Errorf("failed to check existing review: %w", err)
	}
	return true, nil
}

// CreateReview inserts the review. The unique constraint on booking_id
// defends the gate against two concurrent submissions: the loser gets
// ErrDuplicateReview instead of a second row.
func CreateReview(ctx context.Context, q calendar_models.Querier, r *Review) (*Review, error) {
	logger.InfoLogger.Infof("Attempting to create review for booking %s", r.BookingID)

	query := `
		INSERT INTO reviews (id, booking_id, hotel_id, user_id, rating, review_text, response, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`

	var insertedID uuid.UUID
	err := q.QueryRow(ctx, query,
		r.ID, r.BookingID, r.HotelID, r.UserID, r.Rating, r.ReviewText, r.Response, r.CreatedAt, r.UpdatedAt,
	).Scan(&insertedID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			logger.WarnLogger.Warnf("Duplicate review rejected for booking %s", r.BookingID)
			return nil, utils.ErrDuplicateReview
		}
		logger.ErrorLogger.Errorf("Failed to insert review for booking %s: %v", r.BookingID, err)
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	r.ID = insertedID
	logger.InfoLogger.Infof("Review %s created for booking %s", r.ID, r.BookingID)
	return r, nil
}

// GetReviewsByHotel returns a hotel's reviews, newest first.
func GetReviewsByHotel(ctx context.Context, q calendar_models.Querier, hotelID uuid.UUID, page, limit int) ([]Review, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := `
		SELECT id, booking_id, hotel_id, user_id, rating, review_text, response, created_at, updated_at
		FROM reviews
		WHERE hotel_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := q.Query(ctx, query, hotelID, limit, (page-1)*limit)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to fetch reviews for hotel %s: %v", hotelID, err)
		return nil, fmt.Errorf("failed to fetch reviews: %w", err)
	}
	defer rows.Close()

	var reviews []Review
	for rows.Next() {
		var r Review
		if err := rows.Scan(&r.ID, &r.BookingID, &r.HotelID, &r.UserID, &r.Rating, &r.ReviewText, &r.Response, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}
