package pricing

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(t *testing.T, raw string) time.Time {
	t.Helper()
	d, err := ParseDate(raw)
	require.NoError(t, err)
	return d
}

func TestCalculate(t *testing.T) {
	testCases := []struct {
		name         string
		start        string
		end          string
		rate         float64
		expectedDays int
		expectedPaid float64
	}{
		{name: "three_days", start: "2024-05-01", end: "2024-05-04", rate: 100, expectedDays: 3, expectedPaid: 300},
		{name: "missing_start", start: "", end: "2024-05-04", rate: 100, expectedDays: 0, expectedPaid: 0},
		{name: "missing_end", start: "2024-05-01", end: "", rate: 100, expectedDays: 0, expectedPaid: 0},
		{name: "same_day", start: "2024-05-01", end: "2024-05-01", rate: 100, expectedDays: 0, expectedPaid: 0},
		{name: "end_before_start", start: "2024-05-04", end: "2024-05-01", rate: 100, expectedDays: -3, expectedPaid: 0},
		{name: "fractional_rate", start: "2024-05-01", end: "2024-05-03", rate: 49.99, expectedDays: 2, expectedPaid: 99.98},
		{name: "zero_rate", start: "2024-05-01", end: "2024-05-03", rate: 0, expectedDays: 2, expectedPaid: 0},
		{name: "negative_rate", start: "2024-05-01", end: "2024-05-03", rate: -10, expectedDays: 2, expectedPaid: 0},
		{name: "across_month", start: "2024-02-27", end: "2024-03-02", rate: 10, expectedDays: 4, expectedPaid: 40},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			q := Calculate(date(t, tc.start), date(t, tc.end), tc.rate)
			assert.Equal(t, tc.expectedDays, q.DurationDays)
			assert.InDelta(t, tc.expectedPaid, q.TotalPrice, 1e-9)
		})
	}
}

func TestCalculateIgnoresTimeOfDay(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	start := time.Date(2024, 5, 1, 23, 30, 0, 0, loc)
	end := time.Date(2024, 5, 4, 0, 15, 0, 0, time.UTC)

	q := Calculate(start, end, 100)
	assert.Equal(t, 3, q.DurationDays)
	assert.Equal(t, 300.0, q.TotalPrice)
}

func TestCalculateNaNRate(t *testing.T) {
	q := Calculate(date(t, "2024-05-01"), date(t, "2024-05-02"), math.NaN())
	assert.Equal(t, 1, q.DurationDays)
	assert.Equal(t, 0.0, q.TotalPrice)
}

func TestQuoteDisplay(t *testing.T) {
	assert.Equal(t, "300.00", Quote{DurationDays: 3, TotalPrice: 300}.Display())
	assert.Equal(t, "99.98", Quote{DurationDays: 2, TotalPrice: 99.98}.Display())
	assert.Equal(t, "0.00", Quote{}.Display())
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-05-01T18:45:00Z")
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01", FormatDate(d))

	d, err = ParseDate("  ")
	require.NoError(t, err)
	assert.True(t, d.IsZero())
	assert.Equal(t, "", FormatDate(d))

	_, err = ParseDate("05/01/2024")
	assert.ErrorIs(t, err, ErrInvalidDate)
}
