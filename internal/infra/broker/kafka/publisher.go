package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"carrental/internal/app/outbox"
	"carrental/internal/app/policies"
	"carrental/internal/domain/shared/events"
)

type MessageProducer interface {
	Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error
}

// EventPublisher wraps domain events in CloudEvents envelopes and sends them to
// "<prefix><aggregate>.events.v1", keyed by aggregate id.
type EventPublisher struct {
	Producer    MessageProducer
	TopicPrefix string
	Source      string
	Logger      *slog.Logger
}

func (p *EventPublisher) Publish(ctx context.Context, evts []events.DomainEvent) error {
	if p.Producer == nil {
		return errors.New("kafka: producer not configured")
	}
	encoder := outbox.JSONEventEncoder{}
	var errs []error
	for _, evt := range evts {
		rec, err := encoder.Encode(evt)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := p.Deliver(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Deliver sends one outbox record. The record id becomes the CloudEvents id, so
// a redelivery after a lost ack carries the same id.
func (p *EventPublisher) Deliver(ctx context.Context, rec outbox.EventRecord) error {
	if p.Producer == nil {
		return errors.New("kafka: producer not configured")
	}
	payload, headers, err := p.formatPayload(rec)
	if err != nil {
		return err
	}
	topic := p.topicFor(rec.Name)
	if err := p.Producer.Publish(ctx, topic, rec.Aggregate, payload, headers); err != nil {
		return fmt.Errorf("kafka: publish %s: %w", rec.Name, err)
	}
	if p.Logger != nil {
		p.Logger.Debug("event published", "topic", topic, "type", rec.Name, "key", rec.Aggregate, "event_id", rec.ID)
	}
	return nil
}

func (p *EventPublisher) formatPayload(rec outbox.EventRecord) ([]byte, map[string]string, error) {
	if !json.Valid(rec.Payload) {
		return nil, nil, fmt.Errorf("kafka: %s payload is not valid json", rec.Name)
	}
	id := rec.ID
	if id == "" {
		id = uuid.NewString()
	}
	envelope := map[string]any{
		"specversion":     "1.0",
		"id":              id,
		"type":            rec.Name + ".v1",
		"source":          p.source(),
		"subject":         rec.Aggregate,
		"time":            rec.OccurredAt.UTC(),
		"datacontenttype": "application/json",
		"data":            json.RawMessage(rec.Payload),
	}
	payload, err := json.Marshal(envelope)
	if err != nil {
		return nil, nil, err
	}
	headers := map[string]string{
		"content-type": "application/cloudevents+json",
	}
	for k, v := range rec.Headers {
		headers[k] = v
	}
	return payload, headers, nil
}

func (p *EventPublisher) topicFor(name string) string {
	return p.TopicPrefix + events.Stream(name) + ".events.v1"
}

func (p *EventPublisher) source() string {
	if p.Source != "" {
		return p.Source
	}
	return "app://carrental"
}

// LogPublisher records events in the log when no broker is configured.
type LogPublisher struct {
	Logger *slog.Logger
}

func (p LogPublisher) Publish(_ context.Context, evts []events.DomainEvent) error {
	if p.Logger == nil {
		return nil
	}
	for _, evt := range evts {
		p.Logger.Info("domain event", "type", evt.EventName(), "aggregate_id", evt.AggregateID(), "at", evt.OccurredAt())
	}
	return nil
}

var (
	_ policies.EventPublisher = (*EventPublisher)(nil)
	_ policies.EventPublisher = LogPublisher{}
	_ outbox.Sender           = (*EventPublisher)(nil)
	_ MessageProducer         = (*Producer)(nil)
)
