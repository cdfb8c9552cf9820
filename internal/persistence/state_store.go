package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const oauthStatePrefix = "oauth:state:"

// OAuthStateStore keeps pending authorization-request nonces in Redis.
type OAuthStateStore struct {
	client *redis.Client
}

// NewOAuthStateStore wraps a Redis client.
func NewOAuthStateStore(r *Redis) *OAuthStateStore {
	return &OAuthStateStore{client: r.Client}
}

// Save records a state nonce that expires after ttl.
func (s *OAuthStateStore) Save(ctx context.Context, state string, ttl time.Duration) error {
	return s.client.Set(ctx, oauthStatePrefix+state, "1", ttl).Err()
}

// Consume deletes the nonce and reports whether it was pending. A nonce can
// be consumed at most once.
func (s *OAuthStateStore) Consume(ctx context.Context, state string) (bool, error) {
	err := s.client.GetDel(ctx, oauthStatePrefix+state).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
