package postgres

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	domainbooking "carrental/internal/domain/booking"
	domainvehicle "carrental/internal/domain/vehicle"
)

func TestListVehiclesQuery(t *testing.T) {
	minPrice := 30.0
	testCases := []struct {
		name      string
		filters   domainvehicle.Filters
		wantWhere string
		wantArgs  []any
	}{
		{name: "no_filters", filters: domainvehicle.Filters{}},
		{
			name:      "available_only",
			filters:   domainvehicle.Filters{OnlyAvailable: true},
			wantWhere: " WHERE available ",
		},
		{
			name:      "all_filters",
			filters:   domainvehicle.Filters{OnlyAvailable: true, Category: "SUV", Transmission: "Manual", MinPrice: &minPrice},
			wantWhere: " WHERE available AND lower(category) = lower($1) AND lower(transmission) = lower($2) AND price_per_day >= $3 ",
			wantArgs:  []any{"SUV", "Manual", 30.0},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			query, args := listVehiclesQuery(tc.filters)
			assert.True(t, strings.HasSuffix(query, "ORDER BY created_at ASC, id ASC"))
			if tc.wantWhere == "" {
				assert.NotContains(t, query, "WHERE")
			} else {
				assert.Contains(t, query, tc.wantWhere)
			}
			assert.Equal(t, tc.wantArgs, args)
		})
	}
}

func TestTranslate(t *testing.T) {
	referenced := &pgconn.PgError{
		Code:   pgerrcode.ForeignKeyViolation,
		Detail: `Key (id)=(v-1) is still referenced from table "bookings".`,
	}
	missing := &pgconn.PgError{
		Code:   pgerrcode.ForeignKeyViolation,
		Detail: `Key (vehicle_id)=(v-9) is not present in table "vehicles".`,
	}
	overlap := &pgconn.PgError{
		Code:           pgerrcode.ExclusionViolation,
		ConstraintName: "bookings_no_overlap",
	}
	other := &pgconn.PgError{Code: pgerrcode.UniqueViolation}
	plain := errors.New("boom")

	assert.ErrorIs(t, translate(fmt.Errorf("exec: %w", referenced)), domainvehicle.ErrHasBookings)
	assert.ErrorIs(t, translate(missing), domainvehicle.ErrNotFound)
	assert.ErrorIs(t, translate(overlap), domainbooking.ErrDatesConflict)
	assert.Equal(t, other, translate(other))
	assert.Equal(t, plain, translate(plain))
}

func TestNullable(t *testing.T) {
	assert.Nil(t, nullable(""))
	assert.Equal(t, "v-1", *nullable("v-1"))
}
