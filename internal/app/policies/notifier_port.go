package policies

import "context"

// Email templates the rental service sends to customers. Notifiers render them
// from a dto.Booking.
const (
	TemplateBookingCreated   = "booking_created"
	TemplateBookingCancelled = "booking_cancelled"
	TemplatePaymentConfirmed = "payment_confirmed"
)

// Notifier delivers a rendered template to one recipient. Delivery is
// best-effort from the caller's point of view.
type Notifier interface {
	Send(ctx context.Context, to string, template string, data any) error
}
