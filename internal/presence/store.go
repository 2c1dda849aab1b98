package presence

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrStoreUnavailable = errors.New("last-seen store not configured")
	ErrLastSeenNotFound = errors.New("last seen not found")
)

const lastSeenKeyPrefix = "presence:lastseen:"

// LastSeenReader is the read side of LastSeenStore.
type LastSeenReader interface {
	LastSeen(ctx context.Context, userID string) (time.Time, error)
}

// LastSeenStore keeps the time a user was last connected after their Session is gone.
type LastSeenStore struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewLastSeenStore(client *redis.Client, ttl time.Duration) *LastSeenStore {
	return &LastSeenStore{redis: client, ttl: ttl}
}

func lastSeenKey(userID string) string {
	return lastSeenKeyPrefix + userID
}

// Touch stores at as the last-seen time of userID.
func (s *LastSeenStore) Touch(ctx context.Context, userID string, at time.Time) error {
	if s == nil || s.redis == nil {
		return ErrStoreUnavailable
	}
	value := strconv.FormatInt(at.UnixMilli(), 10)
	if err := s.redis.Set(ctx, lastSeenKey(userID), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("store last seen: %w", err)
	}
	return nil
}

// LastSeen returns ErrLastSeenNotFound when nothing is stored or the entry expired.
func (s *LastSeenStore) LastSeen(ctx context.Context, userID string) (time.Time, error) {
	if s == nil || s.redis == nil {
		return time.Time{}, ErrStoreUnavailable
	}
	ms, err := s.redis.Get(ctx, lastSeenKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, ErrLastSeenNotFound
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("load last seen: %w", err)
	}
	return time.UnixMilli(ms).UTC(), nil
}
