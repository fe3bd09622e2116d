package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"harvest/events"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// SubjectPrefix namespaces every forwarded event subject
const SubjectPrefix = "harvest"

// Publisher sends raw payloads to a subject
type Publisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// PublishRecorder counts forwarded events
type PublishRecorder interface {
	RecordEventPublished(ctx context.Context, eventType string)
}

// EventEnvelope is the JSON document published for each event
type EventEnvelope struct {
	ID         string           `json:"id"`
	Type       events.EventType `json:"type"`
	OccurredAt time.Time        `json:"occurred_at"`
	Payload    events.Event     `json:"payload"`
}

// NATSEventForwarder republishes in-process bus events to NATS
type NATSEventForwarder struct {
	publisher Publisher
	metrics   PublishRecorder
	now       func() time.Time
}

// NewNATSEventForwarder creates a forwarder. metrics may be nil.
func NewNATSEventForwarder(publisher Publisher, metrics PublishRecorder) *NATSEventForwarder {
	return &NATSEventForwarder{
		publisher: publisher,
		metrics:   metrics,
		now:       time.Now,
	}
}

// SubjectFor returns the subject an event type is published on
func SubjectFor(eventType events.EventType) string {
	return fmt.Sprintf("%s.%s", SubjectPrefix, eventType)
}

// Register subscribes the forwarder to every event type the bot emits
func (f *NATSEventForwarder) Register(bus *events.Bus) {
	for _, eventType := range []events.EventType{
		events.EventTypeBalanceChange,
		events.EventTypeAccountOpened,
		events.EventTypePrefixesUpdated,
	} {
		bus.Subscribe(eventType, f.handle)
	}
}

func (f *NATSEventForwarder) handle(ctx context.Context, event events.Event) {
	if err := f.Forward(ctx, event); err != nil {
		log.WithFields(log.Fields{
			"eventType": event.Type(),
			"error":     err,
		}).Error("Failed to forward event to NATS")
	}
}

// Forward wraps the event in an envelope and publishes it
func (f *NATSEventForwarder) Forward(ctx context.Context, event events.Event) error {
	envelope := EventEnvelope{
		ID:         uuid.New().String(),
		Type:       event.Type(),
		OccurredAt: f.now().UTC(),
		Payload:    event,
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", event.Type(), err)
	}

	if err := f.publisher.Publish(ctx, SubjectFor(event.Type()), data); err != nil {
		return err
	}

	if f.metrics != nil {
		f.metrics.RecordEventPublished(ctx, string(event.Type()))
	}
	return nil
}
