package vehicle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	ErrNotFound       = errors.New("vehicle: not found")
	ErrNoFields       = errors.New("vehicle: no valid fields to update")
	ErrHasBookings    = errors.New("vehicle: cannot delete vehicle with active bookings")
	ErrUnavailable    = errors.New("vehicle: not available")
	ErrInvalidVehicle = errors.New("vehicle: invalid attributes")
)

type ID string

type Vehicle struct {
	ID           ID
	Make         string
	Model        string
	Year         int
	Category     string
	Transmission string
	FuelType     string
	Seats        int
	PricePerDay  float64
	ImageURL     string
	Available    bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*Vehicle, error)
	List(ctx context.Context, filters Filters) ([]*Vehicle, error)
	Save(ctx context.Context, v *Vehicle) error
	Delete(ctx context.Context, id ID) error
}

type CreateParams struct {
	ID           ID      `validate:"required"`
	Make         string  `validate:"required,max=64"`
	Model        string  `validate:"required,max=64"`
	Year         int     `validate:"gte=1900,lte=2100"`
	Category     string  `validate:"required,max=32"`
	Transmission string  `validate:"required,max=32"`
	FuelType     string  `validate:"required,max=32"`
	Seats        int     `validate:"gte=1,lte=60"`
	PricePerDay  float64 `validate:"gte=0"`
	ImageURL     string  `validate:"omitempty,url"`
	Available    bool
	Now          time.Time
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func New(params CreateParams) (*Vehicle, error) {
	params.Make = strings.TrimSpace(params.Make)
	params.Model = strings.TrimSpace(params.Model)
	params.Category = strings.TrimSpace(params.Category)
	params.Transmission = strings.TrimSpace(params.Transmission)
	params.FuelType = strings.TrimSpace(params.FuelType)
	params.ImageURL = strings.TrimSpace(params.ImageURL)
	if err := validate.Struct(params); err != nil {
		return nil, describe(err)
	}
	now := params.Now.UTC()
	return &Vehicle{
		ID:           params.ID,
		Make:         params.Make,
		Model:        params.Model,
		Year:         params.Year,
		Category:     params.Category,
		Transmission: params.Transmission,
		FuelType:     params.FuelType,
		Seats:        params.Seats,
		PricePerDay:  params.PricePerDay,
		ImageURL:     params.ImageURL,
		Available:    params.Available,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Patch carries the fields an admin update may change; nil fields are left alone.
type Patch struct {
	Make         *string
	Model        *string
	Year         *int
	Category     *string
	Transmission *string
	FuelType     *string
	Seats        *int
	PricePerDay  *float64
	ImageURL     *string
	Available    *bool
}

func (p Patch) Empty() bool {
	return p.Make == nil && p.Model == nil && p.Year == nil && p.Category == nil &&
		p.Transmission == nil && p.FuelType == nil && p.Seats == nil &&
		p.PricePerDay == nil && p.ImageURL == nil && p.Available == nil
}

// Apply validates the patched vehicle before mutating the receiver.
func (v *Vehicle) Apply(p Patch, now time.Time) error {
	if p.Empty() {
		return ErrNoFields
	}
	next := CreateParams{
		ID:           v.ID,
		Make:         pick(p.Make, v.Make),
		Model:        pick(p.Model, v.Model),
		Year:         pick(p.Year, v.Year),
		Category:     pick(p.Category, v.Category),
		Transmission: pick(p.Transmission, v.Transmission),
		FuelType:     pick(p.FuelType, v.FuelType),
		Seats:        pick(p.Seats, v.Seats),
		PricePerDay:  pick(p.PricePerDay, v.PricePerDay),
		ImageURL:     pick(p.ImageURL, v.ImageURL),
		Available:    pick(p.Available, v.Available),
		Now:          v.CreatedAt,
	}
	updated, err := New(next)
	if err != nil {
		return err
	}
	updated.CreatedAt = v.CreatedAt
	updated.UpdatedAt = now.UTC()
	*v = *updated
	return nil
}

func (v *Vehicle) SetImage(url string, now time.Time) {
	v.ImageURL = url
	v.UpdatedAt = now.UTC()
}

func (v *Vehicle) DisplayName() string {
	return strings.TrimSpace(v.Make + " " + v.Model)
}

func pick[T any](value *T, fallback T) T {
	if value == nil {
		return fallback
	}
	return *value
}

func describe(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%w: %v", ErrInvalidVehicle, err)
	}
	fe := verrs[0]
	field := fieldNames[fe.Field()]
	if field == "" {
		field = strings.ToLower(fe.Field())
	}
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%w: %s is required", ErrInvalidVehicle, field)
	case "url":
		return fmt.Errorf("%w: %s must be a valid URL", ErrInvalidVehicle, field)
	default:
		return fmt.Errorf("%w: %s fails %s=%s", ErrInvalidVehicle, field, fe.Tag(), fe.Param())
	}
}

var fieldNames = map[string]string{
	"ID":           "id",
	"Make":         "make",
	"Model":        "model",
	"Year":         "year",
	"Category":     "category",
	"Transmission": "transmission",
	"FuelType":     "fuel_type",
	"Seats":        "seats",
	"PricePerDay":  "price_per_day",
	"ImageURL":     "image_url",
}
