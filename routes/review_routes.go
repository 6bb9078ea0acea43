package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/minhzk/smarthotel-booking/config/db"
	"github.com/minhzk/smarthotel-booking/controllers/review_controller"
	middleware "github.com/minhzk/smarthotel-booking/middlewares"
	"github.com/minhzk/smarthotel-booking/middlewares/auth"
)

// RegisterReviewRoutes wires review creation and the public hotel listing.
func RegisterReviewRoutes(router *gin.Engine) {
	reviewService := review_controller.NewReviewService(db.DB)

	router.GET("/api/v1/reviews/hotels/:hotel_id",
		middleware.NewRateLimiter("60-1m", "hotel-reviews"),
		reviewService.GetHotelReviews)

	protected := router.Group("/api/v1/reviews")
	protected.Use(auth.AuthMiddleware())
	{
		protected.POST("",
			middleware.NewRateLimiter("5-1m", "create-review"),
			reviewService.CreateReview)
	}
}
