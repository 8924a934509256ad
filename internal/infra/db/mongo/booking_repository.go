package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "carrental/internal/domain/booking"
	"carrental/internal/domain/pricing"
	"carrental/internal/domain/shared/daterange"
	domainvehicle "carrental/internal/domain/vehicle"
)

type BookingRepository struct {
	col *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	return &BookingRepository{col: db.Collection(bookingsCollection)}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.ID) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainbooking.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate()
}

func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	doc := newBookingDocument(b)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	return err
}

func (r *BookingRepository) ListByUser(ctx context.Context, userID string) ([]*domainbooking.Booking, error) {
	return r.find(ctx, bson.M{"user_id": userID})
}

func (r *BookingRepository) ListByVehicle(ctx context.Context, vehicleID domainvehicle.ID) ([]*domainbooking.Booking, error) {
	return r.find(ctx, bson.M{"vehicle_id": string(vehicleID)})
}

func (r *BookingRepository) ListAll(ctx context.Context) ([]*domainbooking.Booking, error) {
	return r.find(ctx, bson.M{})
}

func (r *BookingRepository) find(ctx context.Context, filter bson.M) ([]*domainbooking.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var docs []bookingDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*domainbooking.Booking, 0, len(docs))
	for _, doc := range docs {
		b, err := doc.toAggregate()
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

// Dates are stored as YYYY-MM-DD strings so a booking never shifts across time zones.
type bookingDocument struct {
	ID              string  `bson:"_id"`
	UserID          string  `bson:"user_id"`
	VehicleID       string  `bson:"vehicle_id"`
	StartDate       string  `bson:"start_date"`
	EndDate         string  `bson:"end_date"`
	TotalAmount     float64 `bson:"total_amount"`
	Status          string  `bson:"status"`
	PaymentIntentID string  `bson:"payment_intent_id,omitempty"`
	CustomerName    string  `bson:"customer_name"`
	CustomerEmail   string  `bson:"customer_email"`
	CreatedAt       int64   `bson:"created_at"`
	UpdatedAt       int64   `bson:"updated_at"`
}

func newBookingDocument(b *domainbooking.Booking) bookingDocument {
	return bookingDocument{
		ID:              string(b.ID),
		UserID:          b.UserID,
		VehicleID:       string(b.VehicleID),
		StartDate:       pricing.FormatDate(b.Range.Start),
		EndDate:         pricing.FormatDate(b.Range.End),
		TotalAmount:     b.TotalAmount,
		Status:          string(b.Status),
		PaymentIntentID: b.PaymentIntentID,
		CustomerName:    b.CustomerName,
		CustomerEmail:   b.CustomerEmail,
		CreatedAt:       b.CreatedAt.UnixMilli(),
		UpdatedAt:       b.UpdatedAt.UnixMilli(),
	}
}

func (d bookingDocument) toAggregate() (*domainbooking.Booking, error) {
	start, err := pricing.ParseDate(d.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := pricing.ParseDate(d.EndDate)
	if err != nil {
		return nil, err
	}
	return &domainbooking.Booking{
		ID:              domainbooking.ID(d.ID),
		UserID:          d.UserID,
		VehicleID:       domainvehicle.ID(d.VehicleID),
		Range:           daterange.DateRange{Start: start, End: end},
		TotalAmount:     d.TotalAmount,
		Status:          domainbooking.Status(d.Status),
		PaymentIntentID: d.PaymentIntentID,
		CustomerName:    d.CustomerName,
		CustomerEmail:   d.CustomerEmail,
		CreatedAt:       timestampToTime(d.CreatedAt),
		UpdatedAt:       timestampToTime(d.UpdatedAt),
	}, nil
}

var _ domainbooking.Repository = (*BookingRepository)(nil)
