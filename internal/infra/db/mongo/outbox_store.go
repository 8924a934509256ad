package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"carrental/internal/app/outbox"
)

const (
	outboxStateNew     = "NEW"
	outboxStateClaimed = "CLAIMED"
	outboxStateSent    = "SENT"
	outboxStateFailed  = "FAILED"
)

// A CLAIMED record whose worker has not reported back within this window is
// handed out again.
const defaultClaimLease = time.Minute

// OutboxStore keeps pending domain events next to the bookings that raised them.
type OutboxStore struct {
	col   *mongo.Collection
	now   func() time.Time
	lease time.Duration
}

func NewOutboxStore(db *mongo.Database) *OutboxStore {
	return &OutboxStore{col: db.Collection(outboxCollection), now: time.Now, lease: defaultClaimLease}
}

type outboxDocument struct {
	ID          string            `bson:"_id"`
	Name        string            `bson:"name"`
	Aggregate   string            `bson:"aggregate"`
	Payload     []byte            `bson:"payload"`
	OccurredAt  time.Time         `bson:"occurred_at"`
	Headers     map[string]string `bson:"headers"`
	State       string            `bson:"state"`
	Attempts    int               `bson:"attempts"`
	NextAttempt time.Time         `bson:"next_attempt_at"`
	ClaimedBy   string            `bson:"claimed_by,omitempty"`
	ClaimedAt   time.Time         `bson:"claimed_at,omitempty"`
	SentAt      time.Time         `bson:"sent_at,omitempty"`
	LastError   string            `bson:"last_error,omitempty"`
	CreatedAt   time.Time         `bson:"created_at"`
}

func outboxDocumentFrom(rec outbox.EventRecord, now time.Time) outboxDocument {
	headers := rec.Headers
	if headers == nil {
		headers = map[string]string{}
	}
	return outboxDocument{
		ID:          rec.ID,
		Name:        rec.Name,
		Aggregate:   rec.Aggregate,
		Payload:     rec.Payload,
		OccurredAt:  rec.OccurredAt.UTC(),
		Headers:     headers,
		State:       outboxStateNew,
		NextAttempt: now,
		CreatedAt:   now,
	}
}

func (d outboxDocument) record() outbox.EventRecord {
	return outbox.EventRecord{
		ID:         d.ID,
		Name:       d.Name,
		Aggregate:  d.Aggregate,
		Payload:    d.Payload,
		OccurredAt: d.OccurredAt.UTC(),
		Headers:    d.Headers,
		Attempts:   d.Attempts,
	}
}

func (s *OutboxStore) Add(ctx context.Context, rec outbox.EventRecord) error {
	_, err := s.col.InsertOne(ctx, outboxDocumentFrom(rec, s.now().UTC()))
	return err
}

// Claim atomically moves the oldest due record to CLAIMED. Records stuck in
// CLAIMED past the lease count as due, so a relay that died mid-delivery does
// not strand them.
func (s *OutboxStore) Claim(ctx context.Context, workerID string) (*outbox.EventRecord, error) {
	now := s.now().UTC()
	filter := claimFilter(now, s.lease)
	update := bson.M{"$set": bson.M{"state": outboxStateClaimed, "claimed_by": workerID, "claimed_at": now}}
	opts := options.FindOneAndUpdate().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetReturnDocument(options.After)
	var doc outboxDocument
	if err := s.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	rec := doc.record()
	return &rec, nil
}

func claimFilter(now time.Time, lease time.Duration) bson.M {
	if lease <= 0 {
		lease = defaultClaimLease
	}
	return bson.M{"$or": bson.A{
		bson.M{
			"state":           bson.M{"$in": []string{outboxStateNew, outboxStateFailed}},
			"next_attempt_at": bson.M{"$lte": now},
		},
		bson.M{
			"state":      outboxStateClaimed,
			"claimed_at": bson.M{"$lte": now.Add(-lease)},
		},
	}}
}

func (s *OutboxStore) MarkSent(ctx context.Context, id string) error {
	_, err := s.col.UpdateByID(ctx, id, bson.M{"$set": bson.M{"state": outboxStateSent, "sent_at": s.now().UTC()}})
	return err
}

func (s *OutboxStore) MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error {
	update := bson.M{
		"$set": bson.M{
			"state":           outboxStateFailed,
			"next_attempt_at": next.UTC(),
			"last_error":      errMsg,
		},
		"$inc": bson.M{"attempts": 1},
	}
	_, err := s.col.UpdateByID(ctx, id, update)
	return err
}

var _ outbox.Store = (*OutboxStore)(nil)
