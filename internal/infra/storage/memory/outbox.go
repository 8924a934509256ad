package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"carrental/internal/app/outbox"
)

const (
	outboxNew     = "NEW"
	outboxClaimed = "CLAIMED"
	outboxFailed  = "FAILED"
)

type outboxEntry struct {
	record    outbox.EventRecord
	state     string
	next      time.Time
	claimedBy string
	lastError string
	createdAt time.Time
}

// Outbox keeps pending events in process memory. Records are lost on restart.
type Outbox struct {
	mu    sync.Mutex
	items map[string]*outboxEntry
	Now   func() time.Time
}

func NewOutbox() *Outbox {
	return &Outbox{items: make(map[string]*outboxEntry)}
}

func (o *Outbox) Add(ctx context.Context, record outbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, exists := o.items[record.ID]; exists {
		return fmt.Errorf("memory outbox: duplicate record %s", record.ID)
	}
	now := o.now()
	o.items[record.ID] = &outboxEntry{record: record, state: outboxNew, next: now, createdAt: now}
	return nil
}

// Claim hands out the oldest due record.
func (o *Outbox) Claim(ctx context.Context, workerID string) (*outbox.EventRecord, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	now := o.now()
	var due []*outboxEntry
	for _, e := range o.items {
		if (e.state == outboxNew || e.state == outboxFailed) && !e.next.After(now) {
			due = append(due, e)
		}
	}
	if len(due) == 0 {
		return nil, nil
	}
	sort.Slice(due, func(i, j int) bool {
		return due[i].createdAt.Before(due[j].createdAt) ||
			(due[i].createdAt.Equal(due[j].createdAt) && due[i].record.ID < due[j].record.ID)
	})
	e := due[0]
	e.state = outboxClaimed
	e.claimedBy = workerID
	rec := e.record
	return &rec, nil
}

func (o *Outbox) MarkSent(ctx context.Context, id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.items[id]; !ok {
		return fmt.Errorf("memory outbox: unknown record %s", id)
	}
	// Delivered records are not kept around.
	delete(o.items, id)
	return nil
}

func (o *Outbox) MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	e, ok := o.items[id]
	if !ok {
		return fmt.Errorf("memory outbox: unknown record %s", id)
	}
	e.state = outboxFailed
	e.next = next
	e.lastError = errMsg
	e.record.Attempts++
	return nil
}

// Pending counts records not yet delivered.
func (o *Outbox) Pending() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.items)
}

func (o *Outbox) now() time.Time {
	if o.Now != nil {
		return o.Now().UTC()
	}
	return time.Now().UTC()
}

var _ outbox.Store = (*Outbox)(nil)
