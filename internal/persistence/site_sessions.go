package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// SiteSessionStore records passed geofence checks as short-lived markers.
// A marker keyed by (ticket, technician) unlocks the on-site-start transition
// until it expires; a failed or expired check forces re-verification.
type SiteSessionStore struct {
	redis *Redis
	ttl   time.Duration
}

// NewSiteSessionStore builds the store over the shared redis client.
func NewSiteSessionStore(r *Redis, ttl time.Duration) *SiteSessionStore {
	return &SiteSessionStore{redis: r, ttl: ttl}
}

// MarkVerified records a passed check for the session window.
func (s *SiteSessionStore) MarkVerified(ctx context.Context, ticketID, technicianID string) error {
	if s.redis == nil || s.redis.Client == nil {
		return errors.New("redis client not configured")
	}
	return s.redis.Client.Set(ctx, siteKey(ticketID, technicianID), "1", s.ttl).Err()
}

// Verified reports whether a non-expired marker exists.
func (s *SiteSessionStore) Verified(ctx context.Context, ticketID, technicianID string) (bool, error) {
	if s.redis == nil || s.redis.Client == nil {
		return false, errors.New("redis client not configured")
	}
	err := s.redis.Client.Get(ctx, siteKey(ticketID, technicianID)).Err()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Clear drops the marker, forcing the next start attempt to re-verify.
func (s *SiteSessionStore) Clear(ctx context.Context, ticketID, technicianID string) error {
	if s.redis == nil || s.redis.Client == nil {
		return nil
	}
	return s.redis.Client.Del(ctx, siteKey(ticketID, technicianID)).Err()
}

func siteKey(ticketID, technicianID string) string {
	return "site-check:" + ticketID + ":" + technicianID
}
