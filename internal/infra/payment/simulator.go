package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
)

const (
	// DemoIntentID is the payment intent id every successful simulated charge returns.
	DemoIntentID = "demo_intent_id"
	// DeclinedCardNumber always fails, mirroring the usual gateway test card.
	DeclinedCardNumber = "4000000000000002"
	DefaultDelay       = 1500 * time.Millisecond
)

var (
	ErrInvalidCard  = errors.New("payment: invalid card details")
	ErrCardDeclined = errors.New("payment: card was declined")
	ErrInvalidTotal = errors.New("payment: amount must be positive")
)

// Card is the payment form as the customer typed it.
type Card struct {
	Number string
	Expiry string
	CVC    string
	Name   string
}

// DemoCard is pre-filled into the payment form.
var DemoCard = Card{Number: "4242 4242 4242 4242", Expiry: "12/34", CVC: "123"}

// Simulator stands in for a payment gateway: it validates the form, waits a
// fixed delay and hands back DemoIntentID. No money moves.
type Simulator struct {
	Delay time.Duration
	Now   func() time.Time
}

func (s Simulator) Charge(ctx context.Context, card Card, amount float64) (string, error) {
	if !(amount > 0) {
		return "", ErrInvalidTotal
	}
	if err := s.validate(card); err != nil {
		return "", err
	}
	delay := s.Delay
	if delay < 0 {
		delay = 0
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-timer.C:
	}
	if digitsOnly(card.Number) == DeclinedCardNumber {
		return "", ErrCardDeclined
	}
	return DemoIntentID, nil
}

func (s Simulator) validate(card Card) error {
	number := digitsOnly(card.Number)
	if len(number) < 12 || len(number) > 19 || strings.TrimSpace(card.Number) == "" {
		return fmt.Errorf("%w: card number", ErrInvalidCard)
	}
	for _, r := range card.Number {
		if !unicode.IsDigit(r) && r != ' ' && r != '-' {
			return fmt.Errorf("%w: card number", ErrInvalidCard)
		}
	}
	cvc := strings.TrimSpace(card.CVC)
	if len(cvc) < 3 || len(cvc) > 4 || digitsOnly(cvc) != cvc {
		return fmt.Errorf("%w: cvc", ErrInvalidCard)
	}
	month, year, err := parseExpiry(card.Expiry)
	if err != nil {
		return err
	}
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	// Valid through the last day of the expiry month.
	expires := time.Date(year, time.Month(month)+1, 1, 0, 0, 0, 0, time.UTC)
	if !now.Before(expires) {
		return fmt.Errorf("%w: card expired", ErrInvalidCard)
	}
	return nil
}

func parseExpiry(raw string) (int, int, error) {
	var month, year int
	if _, err := fmt.Sscanf(strings.TrimSpace(raw), "%d/%d", &month, &year); err != nil {
		return 0, 0, fmt.Errorf("%w: expiry must be MM/YY", ErrInvalidCard)
	}
	if month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("%w: expiry month", ErrInvalidCard)
	}
	if year < 100 {
		year += 2000
	}
	return month, year, nil
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
