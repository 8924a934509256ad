package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	domainbooking "carrental/internal/domain/booking"
	"carrental/internal/domain/shared/daterange"
	domainvehicle "carrental/internal/domain/vehicle"
)

const bookingColumns = `id, user_id, vehicle_id, start_date, end_date, total_amount, status, payment_intent_id, customer_name, customer_email, created_at, updated_at`

type BookingRepository struct {
	db DBTX
}

func NewBookingRepository(db DBTX) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.ID) (*domainbooking.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, string(id))
	b, err := scanBooking(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domainbooking.ErrNotFound
	}
	return b, err
}

func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	_, err := r.db.Exec(ctx, `
INSERT INTO bookings (`+bookingColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
ON CONFLICT (id) DO UPDATE SET
    status = EXCLUDED.status,
    payment_intent_id = EXCLUDED.payment_intent_id,
    updated_at = EXCLUDED.updated_at`,
		string(b.ID), b.UserID, nullable(string(b.VehicleID)), b.Range.Start, b.Range.End, b.TotalAmount,
		string(b.Status), b.PaymentIntentID, b.CustomerName, b.CustomerEmail, b.CreatedAt, b.UpdatedAt)
	if err != nil {
		return translate(err)
	}
	return nil
}

func (r *BookingRepository) ListByUser(ctx context.Context, userID string) ([]*domainbooking.Booking, error) {
	return r.list(ctx, `WHERE user_id = $1`, userID)
}

func (r *BookingRepository) ListByVehicle(ctx context.Context, vehicleID domainvehicle.ID) ([]*domainbooking.Booking, error) {
	return r.list(ctx, `WHERE vehicle_id = $1`, string(vehicleID))
}

func (r *BookingRepository) ListAll(ctx context.Context) ([]*domainbooking.Booking, error) {
	return r.list(ctx, ``)
}

func (r *BookingRepository) list(ctx context.Context, where string, args ...any) ([]*domainbooking.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings `+where+` ORDER BY created_at DESC, id DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]*domainbooking.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func scanBooking(row pgx.Row) (*domainbooking.Booking, error) {
	var (
		b         domainbooking.Booking
		id        string
		vehicleID *string
		status    string
		dates     daterange.DateRange
	)
	if err := row.Scan(&id, &b.UserID, &vehicleID, &dates.Start, &dates.End, &b.TotalAmount, &status,
		&b.PaymentIntentID, &b.CustomerName, &b.CustomerEmail, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	b.ID = domainbooking.ID(id)
	if vehicleID != nil {
		b.VehicleID = domainvehicle.ID(*vehicleID)
	}
	b.Status = domainbooking.Status(status)
	b.Range = daterange.DateRange{Start: dates.Start.UTC(), End: dates.End.UTC()}
	b.CreatedAt = b.CreatedAt.UTC()
	b.UpdatedAt = b.UpdatedAt.UTC()
	return &b, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

var _ domainbooking.Repository = (*BookingRepository)(nil)
