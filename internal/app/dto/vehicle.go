package dto

import (
	"time"

	domainvehicle "carrental/internal/domain/vehicle"
)

type Vehicle struct {
	ID           string    `json:"id"`
	Make         string    `json:"make"`
	Model        string    `json:"model"`
	Year         int       `json:"year"`
	Category     string    `json:"category"`
	Transmission string    `json:"transmission"`
	FuelType     string    `json:"fuel_type"`
	Seats        int       `json:"seats"`
	PricePerDay  float64   `json:"price_per_day"`
	ImageURL     string    `json:"image_url"`
	Available    bool      `json:"available"`
	CreatedAt    time.Time `json:"created_at"`
}

type VehicleList struct {
	Vehicles []Vehicle `json:"vehicles"`
	Status   string    `json:"status"`
}

type VehicleEnvelope struct {
	Vehicle Vehicle `json:"vehicle"`
	Status  string  `json:"status"`
}

// VehicleInput is the admin create/update payload. Absent fields stay nil so an
// update only touches what the caller sent.
type VehicleInput struct {
	Make         *string  `json:"make,omitempty"`
	Model        *string  `json:"model,omitempty"`
	Year         *int     `json:"year,omitempty"`
	Category     *string  `json:"category,omitempty"`
	Transmission *string  `json:"transmission,omitempty"`
	FuelType     *string  `json:"fuel_type,omitempty"`
	Seats        *int     `json:"seats,omitempty"`
	PricePerDay  *float64 `json:"price_per_day,omitempty"`
	ImageURL     *string  `json:"image_url,omitempty"`
	Available    *bool    `json:"available,omitempty"`
}

// MissingField returns the first required create field absent from the input,
// checked in the order the admin form lists them.
func (in VehicleInput) MissingField() string {
	switch {
	case in.Make == nil:
		return "make"
	case in.Model == nil:
		return "model"
	case in.Year == nil:
		return "year"
	case in.Category == nil:
		return "category"
	case in.Transmission == nil:
		return "transmission"
	case in.FuelType == nil:
		return "fuel_type"
	case in.Seats == nil:
		return "seats"
	case in.PricePerDay == nil:
		return "price_per_day"
	}
	return ""
}

func (in VehicleInput) Patch() domainvehicle.Patch {
	return domainvehicle.Patch{
		Make:         in.Make,
		Model:        in.Model,
		Year:         in.Year,
		Category:     in.Category,
		Transmission: in.Transmission,
		FuelType:     in.FuelType,
		Seats:        in.Seats,
		PricePerDay:  in.PricePerDay,
		ImageURL:     in.ImageURL,
		Available:    in.Available,
	}
}

func MapVehicle(v *domainvehicle.Vehicle) Vehicle {
	if v == nil {
		return Vehicle{}
	}
	return Vehicle{
		ID:           string(v.ID),
		Make:         v.Make,
		Model:        v.Model,
		Year:         v.Year,
		Category:     v.Category,
		Transmission: v.Transmission,
		FuelType:     v.FuelType,
		Seats:        v.Seats,
		PricePerDay:  v.PricePerDay,
		ImageURL:     v.ImageURL,
		Available:    v.Available,
		CreatedAt:    v.CreatedAt,
	}
}

func MapVehicles(items []*domainvehicle.Vehicle) []Vehicle {
	out := make([]Vehicle, 0, len(items))
	for _, v := range items {
		out = append(out, MapVehicle(v))
	}
	return out
}

// Ptr is a small helper for building VehicleInput literals.
func Ptr[T any](v T) *T {
	return &v
}
