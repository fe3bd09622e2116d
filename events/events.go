package events

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBalanceChange   EventType = "balance_change"
	EventTypeAccountOpened   EventType = "account_opened"
	EventTypePrefixesUpdated EventType = "prefixes_updated"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangeEvent is emitted whenever a wallet is overwritten through the ledger
type BalanceChangeEvent struct {
	UserID    int64  `json:"user_id"`
	OldWallet int64  `json:"old_wallet"`
	NewWallet int64  `json:"new_wallet"`
	Reason    string `json:"reason"`
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// AccountOpenedEvent is emitted after a successful open-account transfer
type AccountOpenedEvent struct {
	UserID int64 `json:"user_id"`
	Wallet int64 `json:"wallet"`
	Bank   int64 `json:"bank"`
}

func (e AccountOpenedEvent) Type() EventType {
	return EventTypeAccountOpened
}

// PrefixesUpdatedEvent is emitted when a guild's prefix list changes
type PrefixesUpdatedEvent struct {
	GuildID  int64    `json:"guild_id"`
	Prefixes []string `json:"prefixes"`
}

func (e PrefixesUpdatedEvent) Type() EventType {
	return EventTypePrefixesUpdated
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
	wg       sync.WaitGroup
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers.
// Handlers run on their own goroutines and a panicking handler is logged and dropped.
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	if len(handlers) == 0 {
		return
	}

	// Handlers outlive the command that emitted the event
	eventCtx := context.WithoutCancel(ctx)

	for i, handler := range handlers {
		b.wg.Add(1)
		go func(h Handler, handlerIndex int) {
			defer b.wg.Done()
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(eventCtx, event)
		}(handler, i)
	}
}

// Wait blocks until every handler started so far has returned
func (b *Bus) Wait() {
	b.wg.Wait()
}
