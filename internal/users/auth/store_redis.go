// Copyright (c) 2026 Cardfolio. All rights reserved.
// Author: engineering@cardfolio.app

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cardfolio/cardfolio/internal/platform/constants"
)

// # Redis Revocation Store

// RedisRevocationStore implements RevocationStore using Redis.
//
// Each revoked token ID becomes a key with a TTL equal to the token's
// remaining lifetime, so Redis garbage-collects the list automatically.
type RedisRevocationStore struct {
	client *redis.Client
}

// NewRedisRevocationStore creates a new Redis-backed RevocationStore.
func NewRedisRevocationStore(client *redis.Client) *RedisRevocationStore {
	return &RedisRevocationStore{client: client}
}

/*
Revoke marks a token ID as unusable until its natural expiry.

Parameters:
  - context: context.Context
  - tokenID: string
  - ttl: time.Duration

Returns:
  - error: Execution errors
*/
func (store *RedisRevocationStore) Revoke(context context.Context, tokenID string, ttl time.Duration) error {

	// Tokens that already expired need no revocation entry
	if ttl <= 0 {
		return nil
	}

	key := constants.RedisPrefixRevokedToken + tokenID

	if err := store.client.Set(context, key, "1", ttl).Err(); err != nil {
		return fmt.Errorf("redis_revocation_set_failed: %w", err)
	}

	return nil
}

/*
IsRevoked reports whether a token ID is on the revocation list.

Parameters:
  - context: context.Context
  - tokenID: string

Returns:
  - bool: true when the token must be rejected
  - error: Connectivity errors
*/
func (store *RedisRevocationStore) IsRevoked(context context.Context, tokenID string) (bool, error) {
	key := constants.RedisPrefixRevokedToken + tokenID

	if err := store.client.Get(context, key).Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("redis_revocation_get_failed: %w", err)
	}

	return true, nil
}
