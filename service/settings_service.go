package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"harvest/cache"
	"harvest/events"
	"harvest/models"

	log "github.com/sirupsen/logrus"
)

// MaxPrefixLength caps a single prefix, in characters
const MaxPrefixLength = 10

// settingsService implements the SettingsService interface
type settingsService struct {
	repo           SettingsRepository
	cache          cache.Store
	eventPublisher EventPublisher
	metrics        MetricsRecorder
	defaultPrefix  string
}

// NewSettingsService creates a new settings service
func NewSettingsService(repo SettingsRepository, store cache.Store, eventPublisher EventPublisher, metrics MetricsRecorder, defaultPrefix string) SettingsService {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &settingsService{
		repo:           repo,
		cache:          store,
		eventPublisher: eventPublisher,
		metrics:        metrics,
		defaultPrefix:  defaultPrefix,
	}
}

// Fetch returns cached settings, upserting the row on a miss
func (s *settingsService) Fetch(ctx context.Context, guildID int64) (*models.GuildSettings, error) {
	key := cache.SettingsKey(guildID)

	cached, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to read cached settings: %w", err)
	}
	if ok {
		var settings models.GuildSettings
		if err := json.Unmarshal([]byte(cached), &settings); err == nil {
			s.metrics.RecordCacheLookup(ctx, "settings", true)
			return &settings, nil
		}
		log.WithFields(log.Fields{
			"guildID": guildID,
		}).Warn("Discarding undecodable cached settings")
	}
	s.metrics.RecordCacheLookup(ctx, "settings", false)

	settings, err := s.repo.GetOrCreate(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get guild settings: %w", err)
	}

	if err := s.store(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// Update applies the non-nil fields of the update
func (s *settingsService) Update(ctx context.Context, guildID int64, update models.SettingsUpdate) (*models.GuildSettings, error) {
	if update.IsEmpty() {
		return s.Fetch(ctx, guildID)
	}

	prefixes := *update.Prefixes
	for _, prefix := range prefixes {
		if err := ValidatePrefix(prefix); err != nil {
			return nil, err
		}
	}

	settings, err := s.repo.SetPrefixes(ctx, guildID, prefixes)
	if err != nil {
		return nil, fmt.Errorf("failed to update prefixes: %w", err)
	}
	return s.changed(ctx, settings)
}

// AddPrefix appends a prefix the guild does not already use
func (s *settingsService) AddPrefix(ctx context.Context, guildID int64, prefix string) (*models.GuildSettings, error) {
	if err := ValidatePrefix(prefix); err != nil {
		return nil, err
	}

	// Make sure the row exists so a nil result can only mean a duplicate
	if _, err := s.repo.GetOrCreate(ctx, guildID); err != nil {
		return nil, fmt.Errorf("failed to get guild settings: %w", err)
	}

	settings, err := s.repo.AddPrefix(ctx, guildID, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to add prefix: %w", err)
	}
	if settings == nil {
		return nil, ErrPrefixInUse
	}
	return s.changed(ctx, settings)
}

// RemovePrefix removes a prefix the guild currently uses
func (s *settingsService) RemovePrefix(ctx context.Context, guildID int64, prefix string) (*models.GuildSettings, error) {
	settings, err := s.repo.RemovePrefix(ctx, guildID, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to remove prefix: %w", err)
	}
	if settings == nil {
		return nil, ErrPrefixNotFound
	}
	return s.changed(ctx, settings)
}

// ResetPrefixes clears the guild's list so only the default prefix applies
func (s *settingsService) ResetPrefixes(ctx context.Context, guildID int64) (*models.GuildSettings, error) {
	empty := []string{}
	return s.Update(ctx, guildID, models.SettingsUpdate{Prefixes: &empty})
}

// Prefixes returns the guild's prefixes, or the default when the list is empty
func (s *settingsService) Prefixes(ctx context.Context, guildID int64) ([]string, error) {
	settings, err := s.Fetch(ctx, guildID)
	if err != nil {
		return nil, err
	}
	return settings.EffectivePrefixes(s.defaultPrefix), nil
}

func (s *settingsService) changed(ctx context.Context, settings *models.GuildSettings) (*models.GuildSettings, error) {
	if err := s.store(ctx, settings); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"guildID":  settings.GuildID,
		"prefixes": settings.Prefixes,
	}).Info("Guild prefixes updated")

	if s.eventPublisher != nil {
		s.eventPublisher.Emit(ctx, events.PrefixesUpdatedEvent{
			GuildID:  settings.GuildID,
			Prefixes: settings.Prefixes,
		})
	}
	return settings, nil
}

func (s *settingsService) store(ctx context.Context, settings *models.GuildSettings) error {
	encoded, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := s.cache.Set(ctx, cache.SettingsKey(settings.GuildID), string(encoded)); err != nil {
		return fmt.Errorf("failed to cache settings: %w", err)
	}
	return nil
}

// ValidatePrefix rejects blank prefixes, prefixes containing whitespace and
// prefixes longer than MaxPrefixLength
func ValidatePrefix(prefix string) error {
	if strings.TrimSpace(prefix) == "" {
		return fmt.Errorf("%w: prefix cannot be blank", ErrInvalidPrefix)
	}
	if strings.ContainsAny(prefix, " \t\n") {
		return fmt.Errorf("%w: prefix cannot contain spaces", ErrInvalidPrefix)
	}
	if utf8.RuneCountInString(prefix) > MaxPrefixLength {
		return fmt.Errorf("%w: prefix must be at most %d characters", ErrInvalidPrefix, MaxPrefixLength)
	}
	return nil
}
