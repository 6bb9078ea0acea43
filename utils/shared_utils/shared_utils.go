package shared_utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/minhzk/smarthotel-booking/logger"
)

const charset = "0123456789abcdefghijklmnopqrstuvwxyz"

// GenerateTinyID returns a short random identifier drawn from a URL-safe charset.
func GenerateTinyID(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("length must be positive")
	}
	if length > 1000 {
		return "", fmt.Errorf("length too large")
	}
	result := make([]byte, length)
	for i := 0; i < length; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			logger.ErrorLogger.Errorf("Failed to generate random number: %v", err)
			return "", fmt.Errorf("failed to generate random number: %w", err)
		}
		result[i] = charset[num.Int64()]
	}
	return string(result), nil
}

// GenerateBookingReference builds the human-readable booking reference,
// e.g. "BK-20250310-x4k9qz". Uniqueness is backed by the DB constraint on
// bookings.booking_id; the random suffix keeps collisions improbable.
func GenerateBookingReference(checkIn time.Time) (string, error) {
	suffix, err := GenerateTinyID(6)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("BK-%s-%s", checkIn.Format("20060102"), strings.ToLower(suffix)), nil
}
