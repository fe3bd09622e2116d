package service

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"harvest/events"
	"harvest/models"

	log "github.com/sirupsen/logrus"
)

const (
	// MinBegAmount and MaxBegAmount bound the size of a win or a loss
	MinBegAmount = 1
	MaxBegAmount = 50

	amountPlaceholder = "${amount}"
)

//go:embed data/beg_outcomes.json
var defaultOutcomesJSON []byte

var begCategories = []models.OutcomeCategory{
	models.OutcomeNothing,
	models.OutcomeLose,
	models.OutcomeWin,
}

// OutcomePools maps each category to its message templates
type OutcomePools map[models.OutcomeCategory][]string

// BegResult is the outcome of one beg along with the wallet it produced
type BegResult struct {
	Outcome   models.Outcome
	OldWallet int64
	NewWallet int64
}

// ParseOutcomePools decodes a JSON object keyed by category.
// Every category needs at least one template.
func ParseOutcomePools(data []byte) (OutcomePools, error) {
	var raw map[string][]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode beg outcomes: %w", err)
	}

	pools := make(OutcomePools, len(begCategories))
	for _, category := range begCategories {
		templates := raw[string(category)]
		if len(templates) == 0 {
			return nil, fmt.Errorf("beg outcomes missing templates for %q", category)
		}
		pools[category] = templates
	}
	return pools, nil
}

// DefaultOutcomePools returns the pools bundled with the binary
func DefaultOutcomePools() (OutcomePools, error) {
	return ParseOutcomePools(defaultOutcomesJSON)
}

// begService implements the BegService interface
type begService struct {
	ledger         LedgerService
	eventPublisher EventPublisher
	pools          OutcomePools

	mu  sync.Mutex // rand.Rand is not safe for concurrent use
	rng *rand.Rand
}

// NewBegService creates a beg service. A nil rng is seeded from the clock.
func NewBegService(ledger LedgerService, eventPublisher EventPublisher, pools OutcomePools, rng *rand.Rand) BegService {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &begService{
		ledger:         ledger,
		eventPublisher: eventPublisher,
		pools:          pools,
		rng:            rng,
	}
}

// DrawOutcome picks a category uniformly, then an amount and a template
func (s *begService) DrawOutcome() models.Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	category := begCategories[s.rng.Intn(len(begCategories))]
	templates := s.pools[category]
	template := templates[s.rng.Intn(len(templates))]

	if category == models.OutcomeNothing {
		return models.Outcome{Category: category, Message: template}
	}

	amount := int64(MinBegAmount + s.rng.Intn(MaxBegAmount-MinBegAmount+1))
	delta := amount
	if category == models.OutcomeLose {
		delta = -amount
	}

	return models.Outcome{
		Category: category,
		Delta:    delta,
		Message:  strings.ReplaceAll(template, amountPlaceholder, fmt.Sprintf("**$%d**", amount)),
	}
}

// Beg draws an outcome and writes the resulting wallet through the ledger.
// A "nothing" outcome still rewrites the unchanged wallet.
func (s *begService) Beg(ctx context.Context, userID int64) (*BegResult, error) {
	current, err := s.ledger.GetWallet(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	outcome := s.DrawOutcome()
	newWallet := current + outcome.Delta

	if err := s.ledger.ApplyDelta(ctx, userID, newWallet); err != nil {
		return nil, fmt.Errorf("failed to apply beg outcome: %w", err)
	}

	log.WithFields(log.Fields{
		"userID":   userID,
		"category": outcome.Category,
		"delta":    outcome.Delta,
		"wallet":   newWallet,
	}).Debug("Beg resolved")

	if s.eventPublisher != nil && outcome.Delta != 0 {
		s.eventPublisher.Emit(ctx, events.BalanceChangeEvent{
			UserID:    userID,
			OldWallet: current,
			NewWallet: newWallet,
			Reason:    "beg",
		})
	}

	return &BegResult{
		Outcome:   outcome,
		OldWallet: current,
		NewWallet: newWallet,
	}, nil
}
