package routes

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/minhzk/smarthotel-booking/config/db"
	"github.com/minhzk/smarthotel-booking/config/redis"
	"github.com/minhzk/smarthotel-booking/controllers/availability_controller"
	middleware "github.com/minhzk/smarthotel-booking/middlewares"
	"github.com/minhzk/smarthotel-booking/middlewares/auth"
)

// RegisterAvailabilityRoutes wires the room calendar endpoints. Reading
// availability is public; writing the calendar requires authentication.
func RegisterAvailabilityRoutes(router *gin.Engine) {
	redisClient := redis.GetRedisClient(context.Background())
	availabilityService := availability_controller.NewAvailabilityService(db.DB, redisClient)

	public := router.Group("/api/v1/room-availability")
	{
		public.GET("/check",
			middleware.NewRateLimiter("60-1m", "check-availability"),
			availabilityService.CheckRoomDates)
	}

	protected := router.Group("/api/v1/room-availability")
	protected.Use(auth.AuthMiddleware())
	{
		protected.POST("/generate",
			middleware.NewRateLimiter("10-1m", "generate-calendar"),
			availabilityService.GenerateCalendar)

		protected.PATCH("/:room_id",
			middleware.NewRateLimiter("20-1m", "update-calendar"),
			availabilityService.UpdateStatus)
	}
}
