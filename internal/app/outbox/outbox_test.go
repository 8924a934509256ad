package outbox_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carrental/internal/app/outbox"
	domainbooking "carrental/internal/domain/booking"
	"carrental/internal/domain/shared/events"
	"carrental/internal/infra/storage/memory"
)

type flakySender struct {
	failures  int
	delivered []outbox.EventRecord
}

func (s *flakySender) Deliver(_ context.Context, rec outbox.EventRecord) error {
	if s.failures > 0 {
		s.failures--
		return errors.New("broker unavailable")
	}
	s.delivered = append(s.delivered, rec)
	return nil
}

type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

var at = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func record(t *testing.T, store outbox.Store, evts ...events.DomainEvent) {
	t.Helper()
	require.NoError(t, outbox.Recorder{Store: store}.Publish(context.Background(), evts))
}

func TestRecorderEncodesEvents(t *testing.T) {
	store := memory.NewOutbox()
	ids := []string{"evt-1", "evt-2"}
	rec := outbox.Recorder{Store: store, Encoder: outbox.JSONEventEncoder{IDGenerator: func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}}}

	err := rec.Publish(context.Background(), []events.DomainEvent{
		domainbooking.BookingCancelled{BookingID: "b-1", VehicleID: "veh-1", At: at},
		domainbooking.BookingCompleted{BookingID: "b-2", At: at},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, store.Pending())

	claimed, err := store.Claim(context.Background(), "w")
	require.NoError(t, err)
	require.NotNil(t, claimed)
	assert.Equal(t, "booking.cancelled", claimed.Name)
	assert.Equal(t, "b-1", claimed.Aggregate)
	assert.Contains(t, string(claimed.Payload), `"vehicle_id":"veh-1"`)

	assert.NoError(t, outbox.Recorder{}.Publish(context.Background(), nil))
}

func TestRelayDrain(t *testing.T) {
	testCases := []struct {
		name        string
		failures    int
		advance     time.Duration
		wantSent    int
		wantPending int
		wantAttempt int
	}{
		{name: "delivers", failures: 0, wantSent: 1, wantPending: 0},
		{name: "failure_waits_for_backoff", failures: 1, wantSent: 0, wantPending: 1},
		{name: "retries_after_backoff", failures: 1, advance: time.Second, wantSent: 1, wantPending: 0, wantAttempt: 1},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			clk := &clock{t: at}
			store := memory.NewOutbox()
			store.Now = clk.Now
			sender := &flakySender{failures: tc.failures}
			relay := &outbox.Relay{
				Store:   store,
				Sender:  sender,
				Backoff: []time.Duration{time.Second, 5 * time.Second},
				Now:     clk.Now,
			}
			record(t, store, domainbooking.BookingCompleted{BookingID: "b-1", At: at})

			sent, err := relay.Drain(context.Background())
			require.NoError(t, err)
			if tc.advance > 0 {
				clk.t = clk.t.Add(tc.advance)
				more, err := relay.Drain(context.Background())
				require.NoError(t, err)
				sent += more
			}

			assert.Equal(t, tc.wantSent, sent)
			assert.Equal(t, tc.wantPending, store.Pending())
			if tc.wantSent > 0 {
				assert.Equal(t, tc.wantAttempt, sender.delivered[0].Attempts)
			}
		})
	}
}

func TestRelayRequiresDependencies(t *testing.T) {
	_, err := (&outbox.Relay{}).Drain(context.Background())
	assert.ErrorIs(t, err, outbox.ErrRelayNotConfigured)
	assert.ErrorIs(t, (&outbox.Relay{}).Run(context.Background()), outbox.ErrRelayNotConfigured)
}

func TestRelayRunStopsWithContext(t *testing.T) {
	store := memory.NewOutbox()
	sender := &flakySender{}
	relay := &outbox.Relay{Store: store, Sender: sender, Interval: 10 * time.Millisecond}
	record(t, store, domainbooking.BookingCompleted{BookingID: "b-1", At: at})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- relay.Run(ctx) }()

	require.Eventually(t, func() bool { return store.Pending() == 0 }, time.Second, 10*time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	require.Len(t, sender.delivered, 1)
}
