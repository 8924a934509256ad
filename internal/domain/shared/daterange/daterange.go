package daterange

import (
	"errors"
	"time"

	"carrental/internal/domain/pricing"
)

var (
	ErrInvalidRange = errors.New("daterange: end date must be after start date")
)

// DateRange represents a half-open interval [start, end) of calendar days.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// New normalizes both bounds to midnight and validates the range.
func New(start, end time.Time) (DateRange, error) {
	dr := DateRange{Start: pricing.Midnight(start), End: pricing.Midnight(end)}
	if err := dr.Validate(); err != nil {
		return DateRange{}, err
	}
	return dr, nil
}

func (dr DateRange) Validate() error {
	if dr.Start.IsZero() || dr.End.IsZero() {
		return ErrInvalidRange
	}
	if !dr.End.After(dr.Start) {
		return ErrInvalidRange
	}
	return nil
}

func (dr DateRange) Days() int {
	return int(dr.End.Sub(dr.Start).Hours() / 24)
}

func (dr DateRange) Overlaps(other DateRange) bool {
	return dr.Start.Before(other.End) && other.Start.Before(dr.End)
}

func (dr DateRange) ContainsDate(t time.Time) bool {
	t = pricing.Midnight(t)
	return (t.Equal(dr.Start) || t.After(dr.Start)) && t.Before(dr.End)
}

// EndedBy reports whether the last rented day is before the given day.
func (dr DateRange) EndedBy(day time.Time) bool {
	day = pricing.Midnight(day)
	return !dr.End.After(day)
}
