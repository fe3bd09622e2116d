package cache

import (
	"context"
	"fmt"
	"time"
)

// DefaultTTL is the sliding expiry applied to every cached entry
const DefaultTTL = 3600 * time.Second

// Store is a string key-value cache with a sliding expiry.
// Every hit pushes the entry's expiry back to the store's TTL.
type Store interface {
	// Get returns the value and true on a hit, or "" and false on a miss
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// WalletKey is the cache key holding a user's wallet as a decimal string
func WalletKey(userID int64) string {
	return fmt.Sprintf("bal:%d", userID)
}

// SettingsKey is the cache key holding a guild's settings as JSON
func SettingsKey(guildID int64) string {
	return fmt.Sprintf("settings:%d", guildID)
}
