package service

import (
	"context"
	"errors"
	"math/rand"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"harvest/events"
	"harvest/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var boldAmount = regexp.MustCompile(`\*\*\$(\d+)\*\*`)

func newTestBegService(t *testing.T, ledger LedgerService, publisher EventPublisher, seed int64) BegService {
	t.Helper()
	pools, err := DefaultOutcomePools()
	require.NoError(t, err)
	return NewBegService(ledger, publisher, pools, rand.New(rand.NewSource(seed)))
}

func TestDefaultOutcomePools(t *testing.T) {
	pools, err := DefaultOutcomePools()
	require.NoError(t, err)

	for _, category := range []models.OutcomeCategory{models.OutcomeNothing, models.OutcomeLose, models.OutcomeWin} {
		assert.NotEmpty(t, pools[category], "category %s", category)
	}
	for _, template := range pools[models.OutcomeLose] {
		assert.Contains(t, template, "${amount}")
	}
	for _, template := range pools[models.OutcomeWin] {
		assert.Contains(t, template, "${amount}")
	}
}

func TestParseOutcomePools_Errors(t *testing.T) {
	_, err := ParseOutcomePools([]byte(`not json`))
	assert.ErrorContains(t, err, "failed to decode beg outcomes")

	_, err = ParseOutcomePools([]byte(`{"nothing":["a"],"lose":["b ${amount}"]}`))
	assert.ErrorContains(t, err, `"win"`)
}

func TestBegService_DrawOutcomeDistribution(t *testing.T) {
	svc := newTestBegService(t, nil, nil, 42)

	const draws = 30000
	counts := map[models.OutcomeCategory]int{}

	for i := 0; i < draws; i++ {
		outcome := svc.DrawOutcome()
		counts[outcome.Category]++

		switch outcome.Category {
		case models.OutcomeNothing:
			assert.Zero(t, outcome.Delta)
		case models.OutcomeWin:
			assert.GreaterOrEqual(t, outcome.Delta, int64(MinBegAmount))
			assert.LessOrEqual(t, outcome.Delta, int64(MaxBegAmount))
		case models.OutcomeLose:
			assert.LessOrEqual(t, outcome.Delta, int64(-MinBegAmount))
			assert.GreaterOrEqual(t, outcome.Delta, int64(-MaxBegAmount))
		default:
			t.Fatalf("unexpected category %q", outcome.Category)
		}
	}

	for category, count := range counts {
		share := float64(count) / draws
		assert.InDelta(t, 1.0/3, share, 0.03, "category %s", category)
	}
	assert.Len(t, counts, 3)
}

func TestBegService_DrawOutcomeRendersAmount(t *testing.T) {
	svc := newTestBegService(t, nil, nil, 7)

	for i := 0; i < 500; i++ {
		outcome := svc.DrawOutcome()
		assert.NotContains(t, outcome.Message, "${amount}")

		if outcome.Category == models.OutcomeNothing {
			continue
		}

		match := boldAmount.FindStringSubmatch(outcome.Message)
		require.Len(t, match, 2, "message %q", outcome.Message)
		amount, err := strconv.ParseInt(match[1], 10, 64)
		require.NoError(t, err)

		if outcome.Category == models.OutcomeLose {
			assert.Equal(t, -amount, outcome.Delta)
		} else {
			assert.Equal(t, amount, outcome.Delta)
		}
	}
}

func TestBegService_Beg(t *testing.T) {
	ctx := context.Background()
	ledger := new(MockLedgerService)
	publisher := new(MockEventPublisher)

	svc := newTestBegService(t, ledger, publisher, 1)

	ledger.On("GetWallet", ctx, int64(99)).Return(int64(100), nil)
	ledger.On("ApplyDelta", ctx, int64(99), mock.AnythingOfType("int64")).Return(nil)
	publisher.On("Emit", ctx, mock.AnythingOfType("events.BalanceChangeEvent")).Maybe()

	result, err := svc.Beg(ctx, 99)
	require.NoError(t, err)

	assert.Equal(t, int64(100), result.OldWallet)
	assert.Equal(t, result.OldWallet+result.Outcome.Delta, result.NewWallet)
	ledger.AssertCalled(t, "ApplyDelta", ctx, int64(99), result.NewWallet)

	if result.Outcome.Delta != 0 {
		publisher.AssertCalled(t, "Emit", ctx, events.BalanceChangeEvent{
			UserID:    99,
			OldWallet: 100,
			NewWallet: result.NewWallet,
			Reason:    "beg",
		})
	} else {
		publisher.AssertNotCalled(t, "Emit", mock.Anything, mock.Anything)
	}
}

func TestBegService_BegErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("wallet read fails", func(t *testing.T) {
		ledger := new(MockLedgerService)
		ledger.On("GetWallet", ctx, int64(1)).Return(int64(0), errors.New("redis down"))

		svc := newTestBegService(t, ledger, nil, 1)
		_, err := svc.Beg(ctx, 1)
		assert.ErrorContains(t, err, "redis down")
		ledger.AssertNotCalled(t, "ApplyDelta", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("apply fails", func(t *testing.T) {
		ledger := new(MockLedgerService)
		ledger.On("GetWallet", ctx, int64(1)).Return(int64(5), nil)
		ledger.On("ApplyDelta", ctx, int64(1), mock.AnythingOfType("int64")).Return(errors.New("redis down"))

		svc := newTestBegService(t, ledger, nil, 1)
		_, err := svc.Beg(ctx, 1)
		assert.ErrorContains(t, err, "failed to apply beg outcome")
	})
}

func TestBegService_WalletMayGoNegative(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	pools := OutcomePools{
		models.OutcomeNothing: {"nothing"},
		models.OutcomeLose:    {"lost ${amount}"},
		models.OutcomeWin:     {"won ${amount}"},
	}
	svc := NewBegService(f.ledger, nil, pools, rand.New(rand.NewSource(time.Now().UnixNano())))

	var sawNegative bool
	for i := 0; i < 200 && !sawNegative; i++ {
		require.NoError(t, f.ledger.ApplyDelta(ctx, 1, 0))
		result, err := svc.Beg(ctx, 1)
		require.NoError(t, err)
		if strings.HasPrefix(result.Outcome.Message, "lost") && result.NewWallet < 0 {
			sawNegative = true
		}
	}
	assert.True(t, sawNegative, "a loss from an empty wallet should go below zero")
}
