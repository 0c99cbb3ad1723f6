// Copyright (c) 2026 Cardfolio. All rights reserved.
// Author: engineering@cardfolio.app

package auth

import (
	"context"
	"sync"
	"time"
)

// MemoryRevocationStore is an in-process RevocationStore.
//
// It satisfies the same contract as the Redis implementation without any
// external dependency. Suitable for tests and single-node deployments.
type MemoryRevocationStore struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

// NewMemoryRevocationStore creates an empty in-memory RevocationStore.
func NewMemoryRevocationStore() *MemoryRevocationStore {
	return &MemoryRevocationStore{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

// WithClock overrides the time source. Test hook for expiry scenarios.
func (store *MemoryRevocationStore) WithClock(now func() time.Time) *MemoryRevocationStore {
	store.now = now
	return store
}

// Revoke marks a token ID as unusable until the TTL elapses.
func (store *MemoryRevocationStore) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	store.entries[tokenID] = store.now().Add(ttl)
	return nil
}

// IsRevoked reports whether a token ID is on the revocation list.
// Expired entries are pruned lazily on lookup.
func (store *MemoryRevocationStore) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	expiresAt, found := store.entries[tokenID]
	if !found {
		return false, nil
	}

	if store.now().After(expiresAt) {
		delete(store.entries, tokenID)
		return false, nil
	}

	return true, nil
}
