package service

import (
	"context"

	"harvest/events"
	"harvest/models"
)

// EconomyRepository defines the interface for wallet and bank storage
type EconomyRepository interface {
	// GetAccount returns the user's row, or nil when none exists
	GetAccount(ctx context.Context, userID int64) (*models.Account, error)

	// GetWallet returns the stored wallet, 0 when no row exists
	GetWallet(ctx context.Context, userID int64) (int64, error)

	// UpsertWallet overwrites the wallet, creating the row when needed
	UpsertWallet(ctx context.Context, userID int64, wallet int64) error

	// OpenAccount atomically moves cost from wallet to bank when bank is 0 and
	// the wallet covers it; returns nil when nothing was updated
	OpenAccount(ctx context.Context, userID int64, cost int64) (*models.Account, error)

	// GetRank returns 1 + the count of strictly larger totals and the player count
	GetRank(ctx context.Context, total int64) (rank int64, players int64, err error)

	// GetLeaderboard returns the accounts with the largest totals
	GetLeaderboard(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error)
}

// SettingsRepository defines the interface for guild settings storage
type SettingsRepository interface {
	// GetOrCreate returns the guild's settings, inserting defaults if missing
	GetOrCreate(ctx context.Context, guildID int64) (*models.GuildSettings, error)

	// SetPrefixes replaces the prefix list
	SetPrefixes(ctx context.Context, guildID int64, prefixes []string) (*models.GuildSettings, error)

	// AddPrefix appends a prefix; returns nil if it was already present
	AddPrefix(ctx context.Context, guildID int64, prefix string) (*models.GuildSettings, error)

	// RemovePrefix removes a prefix; returns nil if it was not present
	RemovePrefix(ctx context.Context, guildID int64, prefix string) (*models.GuildSettings, error)
}

// WriteBehind queues durable wallet writes off the request path
type WriteBehind interface {
	// Enqueue schedules an upsert of the wallet; it never reports storage errors
	Enqueue(userID int64, wallet int64)

	// Flush waits until every write queued so far for the user has been applied
	Flush(ctx context.Context, userID int64) error
}

// EventPublisher emits domain events
type EventPublisher interface {
	Emit(ctx context.Context, event events.Event)
}

// MetricsRecorder receives cache and persistence counters
type MetricsRecorder interface {
	RecordCacheLookup(ctx context.Context, keyspace string, hit bool)
	RecordPersist(ctx context.Context, succeeded bool)
	RecordPersistBlocked(ctx context.Context)
}

// LedgerService defines the interface for wallet and account operations
type LedgerService interface {
	// GetWallet returns the wallet through the cache, loading it from storage on a miss
	GetWallet(ctx context.Context, userID int64) (int64, error)

	// ApplyDelta caches the new wallet and schedules its durable write
	ApplyDelta(ctx context.Context, userID int64, newWallet int64) error

	// OpenAccount moves the opening cost from wallet to bank
	OpenAccount(ctx context.Context, userID int64) (*models.Account, error)

	// GetBalanceView returns the user's balances with their leaderboard position
	GetBalanceView(ctx context.Context, userID int64) (*models.BalanceView, error)

	// Leaderboard returns the top accounts by total
	Leaderboard(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error)
}

// BegService defines the interface for the beg mini-game
type BegService interface {
	// DrawOutcome picks a random outcome without touching any balance
	DrawOutcome() models.Outcome

	// Beg draws an outcome and applies it to the user's wallet
	Beg(ctx context.Context, userID int64) (*BegResult, error)
}

// SettingsService defines the interface for guild settings
type SettingsService interface {
	// Fetch returns the guild's settings, creating them on first use
	Fetch(ctx context.Context, guildID int64) (*models.GuildSettings, error)

	// Update applies a partial settings update
	Update(ctx context.Context, guildID int64, update models.SettingsUpdate) (*models.GuildSettings, error)

	// AddPrefix adds a prefix, failing with ErrPrefixInUse if present
	AddPrefix(ctx context.Context, guildID int64, prefix string) (*models.GuildSettings, error)

	// RemovePrefix removes a prefix, failing with ErrPrefixNotFound if absent
	RemovePrefix(ctx context.Context, guildID int64, prefix string) (*models.GuildSettings, error)

	// ResetPrefixes clears the list so the default prefix applies
	ResetPrefixes(ctx context.Context, guildID int64) (*models.GuildSettings, error)

	// Prefixes returns the prefixes in effect for the guild
	Prefixes(ctx context.Context, guildID int64) ([]string, error)
}
