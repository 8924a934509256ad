package mongo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"carrental/internal/app/outbox"
	domainbooking "carrental/internal/domain/booking"
	"carrental/internal/domain/shared/daterange"
	domainvehicle "carrental/internal/domain/vehicle"
)

func TestVehicleFilter(t *testing.T) {
	minPrice, maxPrice := 20.0, 80.0
	testCases := []struct {
		name    string
		filters domainvehicle.Filters
		want    bson.M
	}{
		{name: "empty", filters: domainvehicle.Filters{}, want: bson.M{}},
		{
			name:    "available_category",
			filters: domainvehicle.Filters{OnlyAvailable: true, Category: "SUV"},
			want: bson.M{
				"available": true,
				"category":  bson.M{"$regex": "^SUV$", "$options": "i"},
			},
		},
		{
			name:    "price_bounds",
			filters: domainvehicle.Filters{MinPrice: &minPrice, MaxPrice: &maxPrice},
			want:    bson.M{"price_per_day": bson.M{"$gte": 20.0, "$lte": 80.0}},
		},
		{
			name:    "escapes_pattern",
			filters: domainvehicle.Filters{Transmission: "a.t"},
			want:    bson.M{"transmission": bson.M{"$regex": `^a\.t$`, "$options": "i"}},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, vehicleFilter(tc.filters))
		})
	}
}

func TestDocumentsKeepAggregateFields(t *testing.T) {
	created := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	v := &domainvehicle.Vehicle{
		ID: "v-1", Make: "Toyota", Model: "Corolla", Year: 2022, Category: "Sedan",
		Transmission: "Automatic", FuelType: "Hybrid", Seats: 5, PricePerDay: 45,
		Available: true, CreatedAt: created, UpdatedAt: created,
	}
	assert.Equal(t, v, newVehicleDocument(v).toAggregate())

	b := &domainbooking.Booking{
		ID: "b-1", UserID: "u-1", VehicleID: "v-1",
		Range:       daterange.DateRange{Start: time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC), End: time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)},
		TotalAmount: 135, Status: domainbooking.StatusConfirmed, PaymentIntentID: "demo_intent_id",
		CustomerName: "Ana", CustomerEmail: "ana@example.com", CreatedAt: created, UpdatedAt: created,
	}
	doc := newBookingDocument(b)
	assert.Equal(t, "2024-05-03", doc.StartDate)
	back, err := doc.toAggregate()
	require.NoError(t, err)
	assert.Equal(t, b, back)

	doc.EndDate = "not-a-date"
	_, err = doc.toAggregate()
	assert.Error(t, err)
}

func TestOutboxDocumentStartsDue(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	rec := outbox.EventRecord{
		ID:         "evt-1",
		Name:       "booking.payment_confirmed",
		Aggregate:  "b-1",
		Payload:    []byte(`{"booking_id":"b-1"}`),
		OccurredAt: now.Add(-time.Minute),
	}

	doc := outboxDocumentFrom(rec, now)
	assert.Equal(t, outboxStateNew, doc.State)
	assert.Equal(t, now, doc.NextAttempt)
	assert.NotNil(t, doc.Headers)

	doc.Attempts = 2
	back := doc.record()
	assert.Equal(t, "booking.payment_confirmed", back.Name)
	assert.Equal(t, "b-1", back.Aggregate)
	assert.Equal(t, 2, back.Attempts)
	assert.JSONEq(t, `{"booking_id":"b-1"}`, string(back.Payload))
}

func TestClaimFilterReclaimsExpiredLease(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	filter := claimFilter(now, 2*time.Minute)
	branches, ok := filter["$or"].(bson.A)
	require.True(t, ok)
	require.Len(t, branches, 2)

	due := branches[0].(bson.M)
	assert.Equal(t, bson.M{"$in": []string{outboxStateNew, outboxStateFailed}}, due["state"])
	assert.Equal(t, bson.M{"$lte": now}, due["next_attempt_at"])

	stale := branches[1].(bson.M)
	assert.Equal(t, outboxStateClaimed, stale["state"])
	assert.Equal(t, bson.M{"$lte": now.Add(-2 * time.Minute)}, stale["claimed_at"])

	fallback := claimFilter(now, 0)["$or"].(bson.A)[1].(bson.M)
	assert.Equal(t, bson.M{"$lte": now.Add(-defaultClaimLease)}, fallback["claimed_at"])
}
