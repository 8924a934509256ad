// Package outbox buffers domain events in a store and relays them to the broker
// with retries.
package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"carrental/internal/app/policies"
	"carrental/internal/domain/shared/events"
)

type EventRecord struct {
	ID         string
	Name       string
	Aggregate  string
	Payload    []byte
	OccurredAt time.Time
	Headers    map[string]string
	Attempts   int
}

// Store persists pending records. Claim returns nil, nil when nothing is due.
type Store interface {
	Add(ctx context.Context, record EventRecord) error
	Claim(ctx context.Context, workerID string) (*EventRecord, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error
}

type EventEncoder interface {
	Encode(ev events.DomainEvent) (EventRecord, error)
}

type JSONEventEncoder struct {
	IDGenerator func() string
}

func (e JSONEventEncoder) Encode(ev events.DomainEvent) (EventRecord, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return EventRecord{}, fmt.Errorf("outbox: encode %s: %w", ev.EventName(), err)
	}
	idGen := e.IDGenerator
	if idGen == nil {
		idGen = uuid.NewString
	}
	return EventRecord{
		ID:         idGen(),
		Name:       ev.EventName(),
		Aggregate:  ev.AggregateID(),
		Payload:    payload,
		OccurredAt: ev.OccurredAt().UTC(),
		Headers:    map[string]string{},
	}, nil
}

// Recorder is the EventPublisher handed to the rental service. It only writes
// to the store; Relay does the delivery.
type Recorder struct {
	Store   Store
	Encoder EventEncoder
}

func (r Recorder) Publish(ctx context.Context, evts []events.DomainEvent) error {
	if r.Store == nil || len(evts) == 0 {
		return nil
	}
	encoder := r.Encoder
	if encoder == nil {
		encoder = JSONEventEncoder{}
	}
	for _, ev := range evts {
		rec, err := encoder.Encode(ev)
		if err != nil {
			return err
		}
		if err := r.Store.Add(ctx, rec); err != nil {
			return fmt.Errorf("outbox: add %s: %w", rec.Name, err)
		}
	}
	return nil
}

// Sender delivers one record to the broker.
type Sender interface {
	Deliver(ctx context.Context, record EventRecord) error
}

var ErrRelayNotConfigured = errors.New("outbox: relay missing dependencies")

// Relay polls the store and hands due records to the sender. Failed deliveries
// are rescheduled using Backoff, indexed by attempt count; the last entry
// repeats.
type Relay struct {
	Store    Store
	Sender   Sender
	Interval time.Duration
	Backoff  []time.Duration
	ID       string
	Logger   *slog.Logger
	Now      func() time.Time
}

func (r *Relay) Run(ctx context.Context) error {
	if r.Store == nil || r.Sender == nil {
		return ErrRelayNotConfigured
	}
	ticker := time.NewTicker(r.interval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := r.Drain(ctx); err != nil && r.Logger != nil {
				r.Logger.Error("outbox drain failed", "error", err)
			}
		}
	}
}

// Drain delivers every record that is currently due and reports how many were sent.
func (r *Relay) Drain(ctx context.Context) (int, error) {
	if r.Store == nil || r.Sender == nil {
		return 0, ErrRelayNotConfigured
	}
	sent := 0
	workerID := r.workerID()
	for {
		if err := ctx.Err(); err != nil {
			return sent, err
		}
		rec, err := r.Store.Claim(ctx, workerID)
		if err != nil {
			return sent, fmt.Errorf("outbox: claim: %w", err)
		}
		if rec == nil {
			return sent, nil
		}
		if err := r.Sender.Deliver(ctx, *rec); err != nil {
			next := r.nextRetry(rec.Attempts)
			if r.Logger != nil {
				r.Logger.Warn("event delivery failed", "event_id", rec.ID, "type", rec.Name, "attempt", rec.Attempts+1, "retry_at", next, "error", err)
			}
			if err := r.Store.MarkFailed(ctx, rec.ID, next, err.Error()); err != nil {
				return sent, fmt.Errorf("outbox: mark failed: %w", err)
			}
			continue
		}
		if err := r.Store.MarkSent(ctx, rec.ID); err != nil {
			return sent, fmt.Errorf("outbox: mark sent: %w", err)
		}
		sent++
	}
}

func (r *Relay) workerID() string {
	if r.ID != "" {
		return r.ID
	}
	r.ID = uuid.NewString()
	return r.ID
}

func (r *Relay) interval() time.Duration {
	if r.Interval <= 0 {
		return 500 * time.Millisecond
	}
	return r.Interval
}

func (r *Relay) now() time.Time {
	if r.Now != nil {
		return r.Now().UTC()
	}
	return time.Now().UTC()
}

func (r *Relay) nextRetry(attempts int) time.Time {
	delay := 5 * time.Second
	switch {
	case attempts < len(r.Backoff):
		delay = r.Backoff[attempts]
	case len(r.Backoff) > 0:
		delay = r.Backoff[len(r.Backoff)-1]
	}
	// Non-positive delays fall back to the poll interval.
	if delay <= 0 {
		delay = r.interval()
	}
	return r.now().Add(delay)
}

var _ policies.EventPublisher = Recorder{}
