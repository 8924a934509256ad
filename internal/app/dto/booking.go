package dto

import (
	"time"

	domainbooking "carrental/internal/domain/booking"
	"carrental/internal/domain/pricing"
	domainvehicle "carrental/internal/domain/vehicle"
)

type Booking struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	VehicleID       string          `json:"vehicle_id"`
	StartDate       string          `json:"start_date"`
	EndDate         string          `json:"end_date"`
	TotalAmount     float64         `json:"total_amount"`
	Status          string          `json:"status"`
	PaymentIntentID string          `json:"payment_intent_id,omitempty"`
	CustomerName    string          `json:"customer_name"`
	CustomerEmail   string          `json:"customer_email"`
	CreatedAt       time.Time       `json:"created_at"`
	Vehicle         *BookingVehicle `json:"vehicle,omitempty"`
}

// BookingVehicle is the vehicle summary joined into the admin booking list.
type BookingVehicle struct {
	Make     string `json:"make"`
	Model    string `json:"model"`
	Category string `json:"category"`
}

type BookingEnvelope struct {
	Booking Booking `json:"booking"`
	Status  string  `json:"status"`
}

type BookingList struct {
	Bookings []Booking `json:"bookings"`
	Status   string    `json:"status"`
}

type CreateBookingRequest struct {
	VehicleID string `json:"vehicle_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type ConfirmPaymentRequest struct {
	PaymentIntentID string `json:"payment_intent_id"`
}

func MapBooking(b *domainbooking.Booking, v *domainvehicle.Vehicle) Booking {
	if b == nil {
		return Booking{}
	}
	out := Booking{
		ID:              string(b.ID),
		UserID:          b.UserID,
		VehicleID:       string(b.VehicleID),
		StartDate:       pricing.FormatDate(b.Range.Start),
		EndDate:         pricing.FormatDate(b.Range.End),
		TotalAmount:     b.TotalAmount,
		Status:          string(b.Status),
		PaymentIntentID: b.PaymentIntentID,
		CustomerName:    b.CustomerName,
		CustomerEmail:   b.CustomerEmail,
		CreatedAt:       b.CreatedAt,
	}
	if v != nil {
		out.Vehicle = &BookingVehicle{Make: v.Make, Model: v.Model, Category: v.Category}
	}
	return out
}
