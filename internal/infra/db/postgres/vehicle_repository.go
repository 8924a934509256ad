package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	domainbooking "carrental/internal/domain/booking"
	domainvehicle "carrental/internal/domain/vehicle"
)

const vehicleColumns = `id, make, model, year, category, transmission, fuel_type, seats, price_per_day, image_url, available, created_at, updated_at`

type VehicleRepository struct {
	db DBTX
}

func NewVehicleRepository(db DBTX) *VehicleRepository {
	return &VehicleRepository{db: db}
}

func (r *VehicleRepository) ByID(ctx context.Context, id domainvehicle.ID) (*domainvehicle.Vehicle, error) {
	row := r.db.QueryRow(ctx, `SELECT `+vehicleColumns+` FROM vehicles WHERE id = $1`, string(id))
	v, err := scanVehicle(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domainvehicle.ErrNotFound
	}
	return v, err
}

func (r *VehicleRepository) List(ctx context.Context, filters domainvehicle.Filters) ([]*domainvehicle.Vehicle, error) {
	query, args := listVehiclesQuery(filters)
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]*domainvehicle.Vehicle, 0)
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *VehicleRepository) Save(ctx context.Context, v *domainvehicle.Vehicle) error {
	_, err := r.db.Exec(ctx, `
INSERT INTO vehicles (`+vehicleColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
ON CONFLICT (id) DO UPDATE SET
    make = EXCLUDED.make,
    model = EXCLUDED.model,
    year = EXCLUDED.year,
    category = EXCLUDED.category,
    transmission = EXCLUDED.transmission,
    fuel_type = EXCLUDED.fuel_type,
    seats = EXCLUDED.seats,
    price_per_day = EXCLUDED.price_per_day,
    image_url = EXCLUDED.image_url,
    available = EXCLUDED.available,
    updated_at = EXCLUDED.updated_at`,
		string(v.ID), v.Make, v.Model, v.Year, v.Category, v.Transmission, v.FuelType,
		v.Seats, v.PricePerDay, v.ImageURL, v.Available, v.CreatedAt, v.UpdatedAt)
	return err
}

// Delete detaches finished bookings from the vehicle and removes it. A booking
// that is still active keeps the foreign key and aborts the delete.
func (r *VehicleRepository) Delete(ctx context.Context, id domainvehicle.ID) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`UPDATE bookings SET vehicle_id = NULL WHERE vehicle_id = $1 AND status IN ($2, $3)`,
			string(id), string(domainbooking.StatusCancelled), string(domainbooking.StatusCompleted)); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM vehicles WHERE id = $1`, string(id))
		if err != nil {
			return translate(err)
		}
		if tag.RowsAffected() == 0 {
			return domainvehicle.ErrNotFound
		}
		return nil
	})
}

func listVehiclesQuery(f domainvehicle.Filters) (string, []any) {
	var (
		where []string
		args  []any
	)
	add := func(clause string, arg any) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}
	if f.OnlyAvailable {
		where = append(where, "available")
	}
	if f.Category != "" {
		add("lower(category) = lower($%d)", f.Category)
	}
	if f.Transmission != "" {
		add("lower(transmission) = lower($%d)", f.Transmission)
	}
	if f.MinPrice != nil {
		add("price_per_day >= $%d", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		add("price_per_day <= $%d", *f.MaxPrice)
	}
	query := `SELECT ` + vehicleColumns + ` FROM vehicles`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	return query + ` ORDER BY created_at ASC, id ASC`, args
}

func scanVehicle(row pgx.Row) (*domainvehicle.Vehicle, error) {
	var (
		v  domainvehicle.Vehicle
		id string
	)
	if err := row.Scan(&id, &v.Make, &v.Model, &v.Year, &v.Category, &v.Transmission, &v.FuelType,
		&v.Seats, &v.PricePerDay, &v.ImageURL, &v.Available, &v.CreatedAt, &v.UpdatedAt); err != nil {
		return nil, err
	}
	v.ID = domainvehicle.ID(id)
	v.CreatedAt = v.CreatedAt.UTC()
	v.UpdatedAt = v.UpdatedAt.UTC()
	return &v, nil
}

func translate(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgerrcode.ForeignKeyViolation:
		// Inserting a booking for a missing vehicle vs. deleting a referenced one.
		if strings.Contains(pgErr.Detail, "is not present") {
			return domainvehicle.ErrNotFound
		}
		return domainvehicle.ErrHasBookings
	case pgerrcode.ExclusionViolation:
		return domainbooking.ErrDatesConflict
	default:
		return err
	}
}

var _ domainvehicle.Repository = (*VehicleRepository)(nil)
