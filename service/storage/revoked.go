package storage

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const revokedKeyPrefix = "nimbus:revoked:"

// RevokedStore is the jti denylist consulted on every connection attempt.
// Entries expire with the token itself, so the set stays bounded.
type RevokedStore struct {
	rdb *redis.Client
}

func NewRevokedStore(rdb *redis.Client) *RevokedStore {
	return &RevokedStore{rdb: rdb}
}

// Revoke marks a token id as dead until its natural expiry.
func (s *RevokedStore) Revoke(ctx context.Context, tokenID string, expireAt time.Time) error {
	ttl := time.Until(expireAt)
	if ttl <= 0 {
		// already expired, nothing to deny
		return nil
	}
	if err := s.rdb.Set(ctx, revokedKeyPrefix+tokenID, "1", ttl).Err(); err != nil {
		return errors.Wrap(err, "revoke token")
	}
	return nil
}

// IsRevoked reports whether the token id has been revoked.
func (s *RevokedStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.rdb.Exists(ctx, revokedKeyPrefix+tokenID).Result()
	if err != nil {
		return false, errors.Wrap(err, "check revoked token")
	}
	return n > 0, nil
}
