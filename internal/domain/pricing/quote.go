package pricing

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// DateLayout is the calendar-date format used on the wire.
const DateLayout = "2006-01-02"

var ErrInvalidDate = errors.New("pricing: invalid date")

// Quote is a client-side estimate of a rental. The backend stays authoritative.
type Quote struct {
	DurationDays int
	TotalPrice   float64
}

// Calculate derives the rental duration and total for a date range and a daily rate.
// A zero start or end means the selection is incomplete and yields an empty quote.
// Non-positive durations are priced at zero instead of being rejected.
func Calculate(start, end time.Time, ratePerDay float64) Quote {
	if start.IsZero() || end.IsZero() {
		return Quote{}
	}
	from := Midnight(start)
	to := Midnight(end)
	days := int(math.Ceil(to.Sub(from).Hours() / 24))

	q := Quote{DurationDays: days}
	if days <= 0 || math.IsNaN(ratePerDay) || ratePerDay < 0 {
		return q
	}
	q.TotalPrice = float64(days) * ratePerDay
	return q
}

// Display formats the total with two decimals.
func (q Quote) Display() string {
	return fmt.Sprintf("%.2f", q.TotalPrice)
}

// Midnight keeps the calendar date of t and drops the time of day.
func Midnight(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate accepts YYYY-MM-DD or RFC3339. Blank input is an absent date.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(DateLayout, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return Midnight(t), nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
}

// FormatDate renders t as YYYY-MM-DD, or "" for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}
