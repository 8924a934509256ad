package booking

import (
	"time"

	"carrental/internal/domain/shared/daterange"
	"carrental/internal/domain/vehicle"
)

type BookingCreated struct {
	BookingID   ID                  `json:"booking_id"`
	VehicleID   vehicle.ID          `json:"vehicle_id"`
	UserID      string              `json:"user_id"`
	Range       daterange.DateRange `json:"range"`
	TotalAmount float64             `json:"total_amount"`
	At          time.Time           `json:"at"`
}

func (e BookingCreated) EventName() string     { return "booking.created" }
func (e BookingCreated) AggregateID() string   { return string(e.BookingID) }
func (e BookingCreated) OccurredAt() time.Time { return e.At }

type BookingCancelled struct {
	BookingID ID         `json:"booking_id"`
	VehicleID vehicle.ID `json:"vehicle_id"`
	At        time.Time  `json:"at"`
}

func (e BookingCancelled) EventName() string     { return "booking.cancelled" }
func (e BookingCancelled) AggregateID() string   { return string(e.BookingID) }
func (e BookingCancelled) OccurredAt() time.Time { return e.At }

type PaymentConfirmed struct {
	BookingID       ID        `json:"booking_id"`
	PaymentIntentID string    `json:"payment_intent_id"`
	TotalAmount     float64   `json:"total_amount"`
	At              time.Time `json:"at"`
}

func (e PaymentConfirmed) EventName() string     { return "booking.payment_confirmed" }
func (e PaymentConfirmed) AggregateID() string   { return string(e.BookingID) }
func (e PaymentConfirmed) OccurredAt() time.Time { return e.At }

type BookingCompleted struct {
	BookingID ID        `json:"booking_id"`
	At        time.Time `json:"at"`
}

func (e BookingCompleted) EventName() string     { return "booking.completed" }
func (e BookingCompleted) AggregateID() string   { return string(e.BookingID) }
func (e BookingCompleted) OccurredAt() time.Time { return e.At }
