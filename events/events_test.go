package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_DeliversToSubscribers(t *testing.T) {
	bus := NewBus()

	received := make(chan BalanceChangeEvent, 1)
	bus.Subscribe(EventTypeBalanceChange, func(ctx context.Context, event Event) {
		if e, ok := event.(BalanceChangeEvent); ok {
			received <- e
		}
	})

	testEvent := BalanceChangeEvent{UserID: 123456, OldWallet: 10, NewWallet: 35, Reason: "beg"}
	bus.Emit(context.Background(), testEvent)

	select {
	case got := <-received:
		assert.Equal(t, testEvent, got)
	case <-time.After(2 * time.Second):
		t.Fatal("Event was not received within timeout")
	}
}

func TestBus_OnlyMatchingTypeReceives(t *testing.T) {
	bus := NewBus()

	var mu sync.Mutex
	var got []EventType
	record := func(ctx context.Context, event Event) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, event.Type())
	}
	bus.Subscribe(EventTypeAccountOpened, record)
	bus.Subscribe(EventTypePrefixesUpdated, record)

	bus.Emit(context.Background(), AccountOpenedEvent{UserID: 1, Wallet: 100, Bank: 400})
	bus.Emit(context.Background(), BalanceChangeEvent{UserID: 1})
	bus.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []EventType{EventTypeAccountOpened}, got)
}

func TestBus_RecoversFromPanickingHandler(t *testing.T) {
	bus := NewBus()

	done := make(chan struct{}, 1)
	bus.Subscribe(EventTypePrefixesUpdated, func(ctx context.Context, event Event) {
		panic("boom")
	})
	bus.Subscribe(EventTypePrefixesUpdated, func(ctx context.Context, event Event) {
		done <- struct{}{}
	})

	require.NotPanics(t, func() {
		bus.Emit(context.Background(), PrefixesUpdatedEvent{GuildID: 9, Prefixes: []string{"!"}})
		bus.Wait()
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Second handler did not run")
	}
}

func TestBus_HandlerContextOutlivesEmitter(t *testing.T) {
	bus := NewBus()

	errs := make(chan error, 1)
	bus.Subscribe(EventTypeBalanceChange, func(ctx context.Context, event Event) {
		errs <- ctx.Err()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	bus.Emit(ctx, BalanceChangeEvent{UserID: 1})
	bus.Wait()

	assert.NoError(t, <-errs)
}
