package vehicle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validParams() CreateParams {
	return CreateParams{
		ID:           "veh-1",
		Make:         " Toyota ",
		Model:        "Corolla",
		Year:         2022,
		Category:     "Sedan",
		Transmission: "Automatic",
		FuelType:     "Petrol",
		Seats:        5,
		PricePerDay:  45.5,
		Available:    true,
		Now:          time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestNew(t *testing.T) {
	testCases := []struct {
		name          string
		mutate        func(p *CreateParams)
		expectedError string
	}{
		{name: "happy_case", mutate: func(p *CreateParams) {}},
		{name: "missing_make", mutate: func(p *CreateParams) { p.Make = "  " }, expectedError: "make is required"},
		{name: "missing_fuel_type", mutate: func(p *CreateParams) { p.FuelType = "" }, expectedError: "fuel_type is required"},
		{name: "year_too_old", mutate: func(p *CreateParams) { p.Year = 1850 }, expectedError: "year fails gte=1900"},
		{name: "no_seats", mutate: func(p *CreateParams) { p.Seats = 0 }, expectedError: "seats fails gte=1"},
		{name: "negative_price", mutate: func(p *CreateParams) { p.PricePerDay = -1 }, expectedError: "price_per_day fails gte=0"},
		{name: "bad_image_url", mutate: func(p *CreateParams) { p.ImageURL = "not a url" }, expectedError: "image_url must be a valid URL"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			params := validParams()
			tc.mutate(&params)
			v, err := New(params)
			if tc.expectedError == "" {
				require.NoError(t, err)
				assert.Equal(t, "Toyota", v.Make)
				assert.Equal(t, "Toyota Corolla", v.DisplayName())
				assert.Equal(t, params.Now, v.CreatedAt)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidVehicle)
			assert.Contains(t, err.Error(), tc.expectedError)
			assert.Nil(t, v)
		})
	}
}

func TestApply(t *testing.T) {
	v, err := New(validParams())
	require.NoError(t, err)
	created := v.CreatedAt
	later := created.Add(time.Hour)

	err = v.Apply(Patch{}, later)
	assert.ErrorIs(t, err, ErrNoFields)

	price := 60.0
	available := false
	require.NoError(t, v.Apply(Patch{PricePerDay: &price, Available: &available}, later))
	assert.Equal(t, 60.0, v.PricePerDay)
	assert.False(t, v.Available)
	assert.Equal(t, "Corolla", v.Model)
	assert.Equal(t, created, v.CreatedAt)
	assert.Equal(t, later, v.UpdatedAt)

	seats := 0
	err = v.Apply(Patch{Seats: &seats}, later)
	assert.ErrorIs(t, err, ErrInvalidVehicle)
	assert.Equal(t, 5, v.Seats)
}

func TestFiltersMatch(t *testing.T) {
	v, err := New(validParams())
	require.NoError(t, err)
	low, high := 40.0, 50.0
	tooHigh := 46.0

	testCases := []struct {
		name     string
		filters  Filters
		expected bool
	}{
		{name: "no_filters", filters: Filters{}, expected: true},
		{name: "category_case_insensitive", filters: Filters{Category: "sedan"}, expected: true},
		{name: "other_category", filters: Filters{Category: "SUV"}, expected: false},
		{name: "transmission", filters: Filters{Transmission: "Manual"}, expected: false},
		{name: "price_window", filters: Filters{MinPrice: &low, MaxPrice: &high}, expected: true},
		{name: "below_min", filters: Filters{MinPrice: &tooHigh}, expected: false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.filters.Match(v))
		})
	}

	v.Available = false
	assert.False(t, Filters{OnlyAvailable: true}.Match(v))
	assert.False(t, Filters{}.Match(nil))
}
