package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carrental/internal/domain/shared/daterange"
	"carrental/internal/domain/vehicle"
)

var now = time.Date(2024, 5, 1, 15, 0, 0, 0, time.UTC)

func day(offset int) time.Time {
	return time.Date(2024, 5, 1+offset, 0, 0, 0, 0, time.UTC)
}

func rng(from, to int) daterange.DateRange {
	return daterange.DateRange{Start: day(from), End: day(to)}
}

func testVehicle() *vehicle.Vehicle {
	return &vehicle.Vehicle{ID: "veh-1", Make: "Toyota", Model: "Corolla", PricePerDay: 100, Available: true}
}

func TestNewBooking(t *testing.T) {
	unavailable := testVehicle()
	unavailable.Available = false
	cancelled := &Booking{Range: rng(3, 6), Status: StatusCancelled}
	pending := &Booking{Range: rng(5, 8), Status: StatusPending}

	testCases := []struct {
		name          string
		params        CreateParams
		expectedError error
		expectedTotal float64
	}{
		{
			name:          "happy_case",
			params:        CreateParams{ID: "b-1", UserID: "u-1", Vehicle: testVehicle(), Range: rng(2, 5), Now: now},
			expectedTotal: 300,
		},
		{
			name:          "starts_today",
			params:        CreateParams{ID: "b-1", UserID: "u-1", Vehicle: testVehicle(), Range: rng(0, 1), Now: now},
			expectedTotal: 100,
		},
		{
			name:          "ignores_cancelled_overlap",
			params:        CreateParams{ID: "b-1", UserID: "u-1", Vehicle: testVehicle(), Range: rng(2, 5), Existing: []*Booking{cancelled}, Now: now},
			expectedTotal: 300,
		},
		{
			name:          "back_to_back_allowed",
			params:        CreateParams{ID: "b-1", UserID: "u-1", Vehicle: testVehicle(), Range: rng(2, 5), Existing: []*Booking{pending}, Now: now},
			expectedTotal: 300,
		},
		{
			name:          "missing_user",
			params:        CreateParams{ID: "b-1", Vehicle: testVehicle(), Range: rng(2, 5), Now: now},
			expectedError: ErrUserRequired,
		},
		{
			name:          "missing_vehicle",
			params:        CreateParams{ID: "b-1", UserID: "u-1", Range: rng(2, 5), Now: now},
			expectedError: vehicle.ErrNotFound,
		},
		{
			name:          "end_before_start",
			params:        CreateParams{ID: "b-1", UserID: "u-1", Vehicle: testVehicle(), Range: rng(5, 2), Now: now},
			expectedError: daterange.ErrInvalidRange,
		},
		{
			name:          "start_in_past",
			params:        CreateParams{ID: "b-1", UserID: "u-1", Vehicle: testVehicle(), Range: rng(-1, 2), Now: now},
			expectedError: ErrStartInPast,
		},
		{
			name:          "vehicle_unavailable",
			params:        CreateParams{ID: "b-1", UserID: "u-1", Vehicle: unavailable, Range: rng(2, 5), Now: now},
			expectedError: vehicle.ErrUnavailable,
		},
		{
			name:          "overlap",
			params:        CreateParams{ID: "b-1", UserID: "u-1", Vehicle: testVehicle(), Range: rng(4, 6), Existing: []*Booking{pending}, Now: now},
			expectedError: ErrDatesConflict,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			b, err := NewBooking(tc.params)
			if tc.expectedError != nil {
				assert.ErrorIs(t, err, tc.expectedError)
				assert.Nil(t, b)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, StatusPending, b.Status)
			assert.Equal(t, tc.expectedTotal, b.TotalAmount)
			assert.Equal(t, "Customer", b.CustomerName)
			evs := b.Pending()
			require.Len(t, evs, 1)
			assert.Equal(t, "booking.created", evs[0].EventName())
			assert.Equal(t, "b-1", evs[0].AggregateID())
		})
	}
}

func TestCancel(t *testing.T) {
	testCases := []struct {
		name          string
		booking       *Booking
		expectedError error
	}{
		{name: "pending_future", booking: &Booking{Range: rng(2, 4), Status: StatusPending}},
		{name: "confirmed_future", booking: &Booking{Range: rng(1, 4), Status: StatusConfirmed}},
		{name: "already_cancelled", booking: &Booking{Range: rng(2, 4), Status: StatusCancelled}, expectedError: ErrAlreadyCancelled},
		{name: "starts_today", booking: &Booking{Range: rng(0, 4), Status: StatusConfirmed}, expectedError: ErrCancelStarted},
		{name: "completed", booking: &Booking{Range: rng(-5, -2), Status: StatusCompleted}, expectedError: ErrNotCancellable},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.booking.Cancel(now)
			if tc.expectedError != nil {
				assert.ErrorIs(t, err, tc.expectedError)
				assert.Empty(t, tc.booking.Pending())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, StatusCancelled, tc.booking.Status)
			assert.False(t, tc.booking.Active())
			require.Len(t, tc.booking.Pending(), 1)
			assert.Equal(t, "booking.cancelled", tc.booking.Pending()[0].EventName())
		})
	}
}

func TestHolding(t *testing.T) {
	testCases := []struct {
		status  Status
		holding bool
		active  bool
	}{
		{status: StatusPending, holding: true, active: true},
		{status: StatusConfirmed, holding: true, active: true},
		{status: StatusCompleted, holding: false, active: true},
		{status: StatusCancelled, holding: false, active: false},
	}
	for _, tc := range testCases {
		t.Run(string(tc.status), func(t *testing.T) {
			b := &Booking{Status: tc.status}
			assert.Equal(t, tc.holding, b.Holding())
			assert.Equal(t, tc.active, b.Active())
		})
	}
}

func TestConfirmPayment(t *testing.T) {
	b := &Booking{ID: "b-1", Range: rng(2, 4), Status: StatusPending, TotalAmount: 200}

	assert.ErrorIs(t, b.ConfirmPayment("  ", now), ErrPaymentIntentEmpty)
	require.NoError(t, b.ConfirmPayment("demo_intent_id", now))
	assert.Equal(t, StatusConfirmed, b.Status)
	assert.Equal(t, "demo_intent_id", b.PaymentIntentID)
	assert.ErrorIs(t, b.ConfirmPayment("demo_intent_id", now), ErrInvalidState)

	cancelled := &Booking{Range: rng(2, 4), Status: StatusCancelled}
	assert.ErrorIs(t, cancelled.ConfirmPayment("pi_1", now), ErrInvalidState)
}

func TestComplete(t *testing.T) {
	finished := &Booking{Range: rng(-4, 0), Status: StatusConfirmed}
	require.NoError(t, finished.Complete(now))
	assert.Equal(t, StatusCompleted, finished.Status)

	ongoing := &Booking{Range: rng(-1, 1), Status: StatusConfirmed}
	assert.ErrorIs(t, ongoing.Complete(now), ErrInvalidState)

	unpaid := &Booking{Range: rng(-4, -1), Status: StatusPending}
	assert.ErrorIs(t, unpaid.Complete(now), ErrInvalidState)
}
