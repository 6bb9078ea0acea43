package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhzk/smarthotel-booking/logger"
)

func init() {
	logger.InitLoggers()
}

func TestParseCustomRate(t *testing.T) {
	t.Run("Minutes", func(t *testing.T) {
		rate, err := ParseCustomRate("10-2m")
		require.NoError(t, err)
		assert.Equal(t, int64(10), rate.Limit)
		assert.Equal(t, 2*time.Minute, rate.Period)
	})

	t.Run("Seconds", func(t *testing.T) {
		rate, err := ParseCustomRate("20-30s")
		require.NoError(t, err)
		assert.Equal(t, int64(20), rate.Limit)
		assert.Equal(t, 30*time.Second, rate.Period)
	})

	t.Run("Hours", func(t *testing.T) {
		rate, err := ParseCustomRate("100-1h")
		require.NoError(t, err)
		assert.Equal(t, time.Hour, rate.Period)
	})

	t.Run("Malformed", func(t *testing.T) {
		for _, s := range []string{"10", "10-2d", "ten-2m", "10-2m-extra", "10-m"} {
			_, err := ParseCustomRate(s)
			assert.Error(t, err, "rate %q should be rejected", s)
		}
	})
}

func TestNewRateLimiterDegradesOnBadRate(t *testing.T) {
	// A bad rate string must yield a pass-through, not a panic.
	handler := NewRateLimiter("bogus", "test-route")
	assert.NotNil(t, handler)
}
