package policies

import "context"

// PaymentVerifier confirms that a payment intent settled the given booking and
// amount. An intent paid for one booking must not confirm another.
type PaymentVerifier interface {
	VerifyPayment(ctx context.Context, bookingID, intentID string, amount float64) error
}
