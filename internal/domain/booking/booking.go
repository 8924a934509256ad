package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"carrental/internal/domain/pricing"
	"carrental/internal/domain/shared/daterange"
	"carrental/internal/domain/shared/events"
	"carrental/internal/domain/vehicle"
)

var (
	ErrNotFound           = errors.New("booking: not found")
	ErrInvalidState       = errors.New("booking: invalid state transition")
	ErrStartInPast        = errors.New("booking: start date cannot be in the past")
	ErrDatesConflict      = errors.New("booking: vehicle is already booked for the selected dates")
	ErrAlreadyCancelled   = errors.New("booking: already cancelled")
	ErrCancelStarted      = errors.New("booking: cannot cancel past or ongoing bookings")
	ErrNotCancellable     = errors.New("booking: only pending or confirmed bookings can be cancelled")
	ErrPaymentIntentEmpty = errors.New("booking: payment intent id is required")
	ErrUserRequired       = errors.New("booking: user id is required")
)

type ID string

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

type Booking struct {
	ID              ID
	UserID          string
	VehicleID       vehicle.ID
	Range           daterange.DateRange
	TotalAmount     float64
	Status          Status
	PaymentIntentID string
	CustomerName    string
	CustomerEmail   string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	events.Recorder
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*Booking, error)
	Save(ctx context.Context, b *Booking) error
	ListByUser(ctx context.Context, userID string) ([]*Booking, error)
	ListByVehicle(ctx context.Context, vehicleID vehicle.ID) ([]*Booking, error)
	ListAll(ctx context.Context) ([]*Booking, error)
}

type CreateParams struct {
	ID            ID
	UserID        string
	CustomerName  string
	CustomerEmail string
	Vehicle       *vehicle.Vehicle
	Range         daterange.DateRange
	// Existing bookings of the same vehicle; cancelled ones are ignored.
	Existing []*Booking
	Now      time.Time
}

func NewBooking(params CreateParams) (*Booking, error) {
	if strings.TrimSpace(params.UserID) == "" {
		return nil, ErrUserRequired
	}
	if err := CheckDates(params.Range, params.Now); err != nil {
		return nil, err
	}
	if params.Vehicle == nil {
		return nil, vehicle.ErrNotFound
	}
	if !params.Vehicle.Available {
		return nil, vehicle.ErrUnavailable
	}
	for _, other := range params.Existing {
		if other == nil || !other.Active() {
			continue
		}
		if other.Range.Overlaps(params.Range) {
			return nil, ErrDatesConflict
		}
	}

	quote := pricing.Calculate(params.Range.Start, params.Range.End, params.Vehicle.PricePerDay)
	now := params.Now.UTC()
	b := &Booking{
		ID:            params.ID,
		UserID:        params.UserID,
		VehicleID:     params.Vehicle.ID,
		Range:         params.Range,
		TotalAmount:   quote.TotalPrice,
		Status:        StatusPending,
		CustomerName:  customerName(params.CustomerName),
		CustomerEmail: strings.TrimSpace(params.CustomerEmail),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	b.Record(BookingCreated{
		BookingID:   b.ID,
		VehicleID:   b.VehicleID,
		UserID:      b.UserID,
		Range:       b.Range,
		TotalAmount: b.TotalAmount,
		At:          now,
	})
	return b, nil
}

// CheckDates rejects empty or inverted ranges and ranges starting before today.
func CheckDates(r daterange.DateRange, now time.Time) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if r.Start.Before(pricing.Midnight(now)) {
		return ErrStartInPast
	}
	return nil
}

// Active reports whether the booking still occupies its dates.
func (b *Booking) Active() bool {
	return b.Status != StatusCancelled
}

// Holding reports whether the booking is still open: awaiting payment or paid
// and not yet returned.
func (b *Booking) Holding() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

func (b *Booking) Cancel(now time.Time) error {
	switch b.Status {
	case StatusCancelled:
		return ErrAlreadyCancelled
	case StatusPending, StatusConfirmed:
	default:
		return ErrNotCancellable
	}
	if !b.Range.Start.After(pricing.Midnight(now)) {
		return ErrCancelStarted
	}
	b.Status = StatusCancelled
	b.UpdatedAt = now.UTC()
	b.Record(BookingCancelled{BookingID: b.ID, VehicleID: b.VehicleID, At: b.UpdatedAt})
	return nil
}

func (b *Booking) ConfirmPayment(intentID string, now time.Time) error {
	if b.Status != StatusPending {
		return ErrInvalidState
	}
	intentID = strings.TrimSpace(intentID)
	if intentID == "" {
		return ErrPaymentIntentEmpty
	}
	b.PaymentIntentID = intentID
	b.Status = StatusConfirmed
	b.UpdatedAt = now.UTC()
	b.Record(PaymentConfirmed{BookingID: b.ID, PaymentIntentID: intentID, TotalAmount: b.TotalAmount, At: b.UpdatedAt})
	return nil
}

// Complete closes a confirmed booking once its return date has passed.
func (b *Booking) Complete(now time.Time) error {
	if b.Status != StatusConfirmed || !b.Range.EndedBy(now) {
		return ErrInvalidState
	}
	b.Status = StatusCompleted
	b.UpdatedAt = now.UTC()
	b.Record(BookingCompleted{BookingID: b.ID, At: b.UpdatedAt})
	return nil
}

func customerName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Customer"
	}
	return name
}
