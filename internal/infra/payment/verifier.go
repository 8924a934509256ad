package payment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"

	"carrental/internal/app/policies"
)

var ErrIntentRejected = errors.New("payment: intent rejected")

// DemoVerifier accepts the intents produced by Simulator.
type DemoVerifier struct{}

func (DemoVerifier) VerifyPayment(_ context.Context, _ string, intentID string, _ float64) error {
	if !strings.HasPrefix(strings.TrimSpace(intentID), "demo_") {
		return fmt.Errorf("%w: %q is not a demo intent", ErrIntentRejected, intentID)
	}
	return nil
}

type intentGetter interface {
	Get(id string, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

// BookingMetadataKey is the PaymentIntent metadata entry naming the booking it pays for.
const BookingMetadataKey = "booking_id"

// StripeVerifier requires a succeeded PaymentIntent created for the booking
// (metadata booking_id) whose amount covers the booking total, compared in
// minor units.
type StripeVerifier struct {
	intents  intentGetter
	currency string
}

func NewStripeVerifier(secretKey, currency string) (*StripeVerifier, error) {
	if strings.TrimSpace(secretKey) == "" {
		return nil, errors.New("payment: stripe secret key is required")
	}
	if currency == "" {
		currency = "usd"
	}
	return &StripeVerifier{
		intents:  &paymentintent.Client{B: stripe.GetBackend(stripe.APIBackend), Key: secretKey},
		currency: strings.ToLower(currency),
	}, nil
}

func (v *StripeVerifier) VerifyPayment(ctx context.Context, bookingID, intentID string, amount float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	intent, err := v.intents.Get(intentID, nil)
	if err != nil {
		return fmt.Errorf("payment: fetch intent %s: %w", intentID, err)
	}
	if intent.Status != stripe.PaymentIntentStatusSucceeded {
		return fmt.Errorf("%w: status %s", ErrIntentRejected, intent.Status)
	}
	if got := intent.Metadata[BookingMetadataKey]; got == "" || got != bookingID {
		return fmt.Errorf("%w: intent belongs to booking %q, not %q", ErrIntentRejected, got, bookingID)
	}
	if !strings.EqualFold(string(intent.Currency), v.currency) {
		return fmt.Errorf("%w: currency %s", ErrIntentRejected, intent.Currency)
	}
	want := int64(math.Round(amount * 100))
	if intent.AmountReceived < want {
		return fmt.Errorf("%w: received %d, expected %d", ErrIntentRejected, intent.AmountReceived, want)
	}
	return nil
}

var (
	_ policies.PaymentVerifier = DemoVerifier{}
	_ policies.PaymentVerifier = (*StripeVerifier)(nil)
)
