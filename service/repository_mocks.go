package service

import (
	"context"

	"harvest/events"
	"harvest/models"

	"github.com/stretchr/testify/mock"
)

// MockEconomyRepository is a mock implementation of EconomyRepository
type MockEconomyRepository struct {
	mock.Mock
}

func (m *MockEconomyRepository) GetAccount(ctx context.Context, userID int64) (*models.Account, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockEconomyRepository) GetWallet(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockEconomyRepository) UpsertWallet(ctx context.Context, userID int64, wallet int64) error {
	args := m.Called(ctx, userID, wallet)
	return args.Error(0)
}

func (m *MockEconomyRepository) OpenAccount(ctx context.Context, userID int64, cost int64) (*models.Account, error) {
	args := m.Called(ctx, userID, cost)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockEconomyRepository) GetRank(ctx context.Context, total int64) (int64, int64, error) {
	args := m.Called(ctx, total)
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}

func (m *MockEconomyRepository) GetLeaderboard(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LeaderboardEntry), args.Error(1)
}

// MockSettingsRepository is a mock implementation of SettingsRepository
type MockSettingsRepository struct {
	mock.Mock
}

func (m *MockSettingsRepository) GetOrCreate(ctx context.Context, guildID int64) (*models.GuildSettings, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GuildSettings), args.Error(1)
}

func (m *MockSettingsRepository) SetPrefixes(ctx context.Context, guildID int64, prefixes []string) (*models.GuildSettings, error) {
	args := m.Called(ctx, guildID, prefixes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GuildSettings), args.Error(1)
}

func (m *MockSettingsRepository) AddPrefix(ctx context.Context, guildID int64, prefix string) (*models.GuildSettings, error) {
	args := m.Called(ctx, guildID, prefix)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GuildSettings), args.Error(1)
}

func (m *MockSettingsRepository) RemovePrefix(ctx context.Context, guildID int64, prefix string) (*models.GuildSettings, error) {
	args := m.Called(ctx, guildID, prefix)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GuildSettings), args.Error(1)
}

// MockWriteBehind is a mock implementation of WriteBehind
type MockWriteBehind struct {
	mock.Mock
}

func (m *MockWriteBehind) Enqueue(userID int64, wallet int64) {
	m.Called(userID, wallet)
}

func (m *MockWriteBehind) Flush(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Emit(ctx context.Context, event events.Event) {
	m.Called(ctx, event)
}

// MockLedgerService is a mock implementation of LedgerService
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) GetWallet(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerService) ApplyDelta(ctx context.Context, userID int64, newWallet int64) error {
	args := m.Called(ctx, userID, newWallet)
	return args.Error(0)
}

func (m *MockLedgerService) OpenAccount(ctx context.Context, userID int64) (*models.Account, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockLedgerService) GetBalanceView(ctx context.Context, userID int64) (*models.BalanceView, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BalanceView), args.Error(1)
}

func (m *MockLedgerService) Leaderboard(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LeaderboardEntry), args.Error(1)
}

// MockBegService is a mock implementation of BegService
type MockBegService struct {
	mock.Mock
}

func (m *MockBegService) DrawOutcome() models.Outcome {
	args := m.Called()
	return args.Get(0).(models.Outcome)
}

func (m *MockBegService) Beg(ctx context.Context, userID int64) (*BegResult, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*BegResult), args.Error(1)
}

// MockSettingsService is a mock implementation of SettingsService
type MockSettingsService struct {
	mock.Mock
}

func (m *MockSettingsService) settingsResult(args mock.Arguments) (*models.GuildSettings, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GuildSettings), args.Error(1)
}

func (m *MockSettingsService) Fetch(ctx context.Context, guildID int64) (*models.GuildSettings, error) {
	return m.settingsResult(m.Called(ctx, guildID))
}

func (m *MockSettingsService) Update(ctx context.Context, guildID int64, update models.SettingsUpdate) (*models.GuildSettings, error) {
	return m.settingsResult(m.Called(ctx, guildID, update))
}

func (m *MockSettingsService) AddPrefix(ctx context.Context, guildID int64, prefix string) (*models.GuildSettings, error) {
	return m.settingsResult(m.Called(ctx, guildID, prefix))
}

func (m *MockSettingsService) RemovePrefix(ctx context.Context, guildID int64, prefix string) (*models.GuildSettings, error) {
	return m.settingsResult(m.Called(ctx, guildID, prefix))
}

func (m *MockSettingsService) ResetPrefixes(ctx context.Context, guildID int64) (*models.GuildSettings, error) {
	return m.settingsResult(m.Called(ctx, guildID))
}

func (m *MockSettingsService) Prefixes(ctx context.Context, guildID int64) ([]string, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}
