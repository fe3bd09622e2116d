package repository

import (
	"context"
	"errors"
	"fmt"

	"harvest/database"
	"harvest/models"

	"github.com/jackc/pgx/v5"
)

// SettingsRepository reads and writes the per-guild settings table
type SettingsRepository struct {
	q queryable
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *database.DB) *SettingsRepository {
	return &SettingsRepository{q: db.Pool}
}

// GetOrCreate returns the guild's settings, inserting a default row if none exists.
// The no-op update makes RETURNING produce the existing row on conflict.
func (r *SettingsRepository) GetOrCreate(ctx context.Context, guildID int64) (*models.GuildSettings, error) {
	query := `
		INSERT INTO settings (guild_id)
		VALUES ($1)
		ON CONFLICT (guild_id) DO UPDATE SET guild_id = excluded.guild_id
		RETURNING guild_id, prefixes
	`

	settings, err := r.scanOne(ctx, query, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create settings for guild %d: %w", guildID, err)
	}
	return settings, nil
}

// SetPrefixes replaces the guild's prefix list
func (r *SettingsRepository) SetPrefixes(ctx context.Context, guildID int64, prefixes []string) (*models.GuildSettings, error) {
	if prefixes == nil {
		prefixes = []string{}
	}

	query := `
		INSERT INTO settings (guild_id, prefixes)
		VALUES ($1, $2)
		ON CONFLICT (guild_id) DO UPDATE SET prefixes = excluded.prefixes
		RETURNING guild_id, prefixes
	`

	settings, err := r.scanOne(ctx, query, guildID, prefixes)
	if err != nil {
		return nil, fmt.Errorf("failed to set prefixes for guild %d: %w", guildID, err)
	}
	return settings, nil
}

// AddPrefix appends a prefix unless it is already present.
// Returns nil when the prefix was already in the list or the guild has no row.
func (r *SettingsRepository) AddPrefix(ctx context.Context, guildID int64, prefix string) (*models.GuildSettings, error) {
	query := `
		UPDATE settings
		SET prefixes = array_append(prefixes, $2::text)
		WHERE guild_id = $1 AND NOT ($2::text = ANY(prefixes))
		RETURNING guild_id, prefixes
	`

	settings, err := r.scanOne(ctx, query, guildID, prefix)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to add prefix for guild %d: %w", guildID, err)
	}
	return settings, nil
}

// RemovePrefix removes a prefix from the list.
// Returns nil when the prefix was not in the list or the guild has no row.
func (r *SettingsRepository) RemovePrefix(ctx context.Context, guildID int64, prefix string) (*models.GuildSettings, error) {
	query := `
		UPDATE settings
		SET prefixes = array_remove(prefixes, $2::text)
		WHERE guild_id = $1 AND $2::text = ANY(prefixes)
		RETURNING guild_id, prefixes
	`

	settings, err := r.scanOne(ctx, query, guildID, prefix)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to remove prefix for guild %d: %w", guildID, err)
	}
	return settings, nil
}

func (r *SettingsRepository) scanOne(ctx context.Context, query string, args ...any) (*models.GuildSettings, error) {
	var settings models.GuildSettings
	if err := r.q.QueryRow(ctx, query, args...).Scan(&settings.GuildID, &settings.Prefixes); err != nil {
		return nil, err
	}
	if settings.Prefixes == nil {
		settings.Prefixes = []string{}
	}
	return &settings, nil
}
