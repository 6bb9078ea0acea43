package auth

import (
	"context"

	"golang.org/x/sync/singleflight"

	"github.com/minhzk/smarthotel-booking/logger"
)

// RefreshFunc exchanges a refresh token at the authorization server for a
// new access token. Refresh tokens are single-use there.
type RefreshFunc func(ctx context.Context, refreshToken string) (string, error)

// TokenRefresher serializes token refreshes per session. Refreshing lazily
// inside each request means that near expiry many requests would fire the
// refresh at once and all but one would burn an already-consumed refresh
// token. Concurrent callers for the same session therefore share a single
// in-flight refresh and all receive its result.
//
// This service validates access tokens only and does not talk to the
// authorization server itself. TokenRefresher is the integration point for
// the session layer that does: construct one with that layer's RefreshFunc
// and route its refreshes through it.
type TokenRefresher struct {
	group     singleflight.Group
	refreshFn RefreshFunc
}

// NewTokenRefresher wraps refreshFn with per-session single-flighting.
func NewTokenRefresher(refreshFn RefreshFunc) *TokenRefresher {
	return &TokenRefresher{refreshFn: refreshFn}
}

// Refresh returns a fresh access token for the session, joining any refresh
// already in flight for the same sessionID.
func (t *TokenRefresher) Refresh(ctx context.Context, sessionID, refreshToken string) (string, error) {
	v, err, shared := t.group.Do(sessionID, func() (interface{}, error) {
		return t.refreshFn(ctx, refreshToken)
	})
	if err != nil {
		logger.ErrorLogger.Errorf("Token refresh failed for session %s: %v", sessionID, err)
		return "", err
	}
	if shared {
		logger.InfoLogger.Infof("Token refresh for session %s shared with concurrent requests", sessionID)
	}
	return v.(string), nil
}
