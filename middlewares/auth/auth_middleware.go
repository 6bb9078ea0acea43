package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/minhzk/smarthotel-booking/logger"
	"github.com/minhzk/smarthotel-booking/utils/jwt_parse"
)

// AuthMiddleware authenticates the request via its JWT bearer token. The
// engine does not perform login or session management; it only requires an
// already-authenticated caller identity.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		jwt_parse.ParseJWTToken()(c)
		if c.IsAborted() {
			return
		}

		if _, exists := c.Get("user_id"); !exists {
			logger.ErrorLogger.Error("User ID not found in context after JWT parsing")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "error": "Unauthorized: missing user identification from token."})
			return
		}

		c.Next()
	}
}
