package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"harvest/cache"
	"harvest/events"
	"harvest/models"

	log "github.com/sirupsen/logrus"
)

// openAccountAttempts bounds retries when a concurrent write changes the row
// between the conditional update and the re-read
const openAccountAttempts = 3

// ledgerService implements the LedgerService interface
type ledgerService struct {
	repo           EconomyRepository
	cache          cache.Store
	writeBehind    WriteBehind
	eventPublisher EventPublisher
	metrics        MetricsRecorder
}

// NewLedgerService creates a new ledger service
func NewLedgerService(repo EconomyRepository, store cache.Store, writeBehind WriteBehind, eventPublisher EventPublisher, metrics MetricsRecorder) LedgerService {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &ledgerService{
		repo:           repo,
		cache:          store,
		writeBehind:    writeBehind,
		eventPublisher: eventPublisher,
		metrics:        metrics,
	}
}

// GetWallet returns the cached wallet, loading it from storage on a miss
func (s *ledgerService) GetWallet(ctx context.Context, userID int64) (int64, error) {
	key := cache.WalletKey(userID)

	cached, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("failed to read cached wallet: %w", err)
	}
	if ok {
		wallet, parseErr := strconv.ParseInt(cached, 10, 64)
		if parseErr == nil {
			s.metrics.RecordCacheLookup(ctx, "wallet", true)
			return wallet, nil
		}
		log.WithFields(log.Fields{
			"userID": userID,
			"value":  cached,
		}).Warn("Discarding unparseable cached wallet")
	}
	s.metrics.RecordCacheLookup(ctx, "wallet", false)

	wallet, err := s.repo.GetWallet(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to load wallet: %w", err)
	}

	if err := s.cache.Set(ctx, key, strconv.FormatInt(wallet, 10)); err != nil {
		return 0, fmt.Errorf("failed to cache wallet: %w", err)
	}

	return wallet, nil
}

// ApplyDelta overwrites the cached wallet and schedules the durable upsert
func (s *ledgerService) ApplyDelta(ctx context.Context, userID int64, newWallet int64) error {
	if err := s.cache.Set(ctx, cache.WalletKey(userID), strconv.FormatInt(newWallet, 10)); err != nil {
		return fmt.Errorf("failed to cache wallet: %w", err)
	}

	s.writeBehind.Enqueue(userID, newWallet)
	return nil
}

// OpenAccount moves models.OpenAccountCost from wallet to bank
func (s *ledgerService) OpenAccount(ctx context.Context, userID int64) (*models.Account, error) {
	// Pending wallet upserts must land first or they would overwrite the debit
	if err := s.writeBehind.Flush(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to flush pending wallet writes: %w", err)
	}

	for attempt := 0; attempt < openAccountAttempts; attempt++ {
		account, err := s.repo.OpenAccount(ctx, userID, models.OpenAccountCost)
		if err != nil {
			return nil, fmt.Errorf("failed to open account: %w", err)
		}

		if account != nil {
			if err := s.cache.Set(ctx, cache.WalletKey(userID), strconv.FormatInt(account.Wallet, 10)); err != nil {
				return nil, fmt.Errorf("failed to cache wallet: %w", err)
			}

			log.WithFields(log.Fields{
				"userID": userID,
				"wallet": account.Wallet,
				"bank":   account.Bank,
			}).Info("Bank account opened")

			if s.eventPublisher != nil {
				s.eventPublisher.Emit(ctx, events.AccountOpenedEvent{
					UserID: userID,
					Wallet: account.Wallet,
					Bank:   account.Bank,
				})
			}
			return account, nil
		}

		current, err := s.repo.GetAccount(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to read account: %w", err)
		}
		if current == nil {
			current = &models.Account{UserID: userID}
		}

		if current.HasBankAccount() {
			return nil, &AlreadyHasAccountError{Bank: current.Bank}
		}
		if current.Wallet < models.OpenAccountCost {
			return nil, &InsufficientFundsError{Shortfall: models.OpenAccountCost - current.Wallet}
		}
		// The wallet rose between the update and the read, try again
	}

	return nil, fmt.Errorf("failed to open account for user %d: row kept changing", userID)
}

// GetBalanceView reads balances from storage and ranks the total
func (s *ledgerService) GetBalanceView(ctx context.Context, userID int64) (*models.BalanceView, error) {
	if err := s.writeBehind.Flush(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to flush pending wallet writes: %w", err)
	}

	account, err := s.repo.GetAccount(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to read account: %w", err)
	}
	if account == nil {
		return nil, ErrNoAccount
	}

	total := account.Total()
	rank, players, err := s.repo.GetRank(ctx, total)
	if err != nil {
		return nil, fmt.Errorf("failed to rank account: %w", err)
	}

	return &models.BalanceView{
		UserID:       userID,
		Wallet:       account.Wallet,
		Bank:         account.Bank,
		Total:        total,
		Rank:         rank,
		TotalPlayers: players,
		Ordinal:      Ordinal(rank),
	}, nil
}

// Leaderboard returns the top accounts by total
func (s *ledgerService) Leaderboard(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error) {
	entries, err := s.repo.GetLeaderboard(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}
	return entries, nil
}

// IsDomainError reports whether err is an expected ledger outcome rather than a failure
func IsDomainError(err error) bool {
	var already *AlreadyHasAccountError
	var insufficient *InsufficientFundsError
	return errors.As(err, &already) || errors.As(err, &insufficient) || errors.Is(err, ErrNoAccount)
}
