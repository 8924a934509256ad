package mongo

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainvehicle "carrental/internal/domain/vehicle"
)

type VehicleRepository struct {
	col *mongo.Collection
}

func NewVehicleRepository(db *mongo.Database) *VehicleRepository {
	return &VehicleRepository{col: db.Collection(vehiclesCollection)}
}

func (r *VehicleRepository) ByID(ctx context.Context, id domainvehicle.ID) (*domainvehicle.Vehicle, error) {
	var doc vehicleDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainvehicle.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *VehicleRepository) List(ctx context.Context, filters domainvehicle.Filters) ([]*domainvehicle.Vehicle, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.col.Find(ctx, vehicleFilter(filters), opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var docs []vehicleDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*domainvehicle.Vehicle, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.toAggregate())
	}
	return out, nil
}

func (r *VehicleRepository) Save(ctx context.Context, v *domainvehicle.Vehicle) error {
	doc := newVehicleDocument(v)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	return err
}

func (r *VehicleRepository) Delete(ctx context.Context, id domainvehicle.ID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainvehicle.ErrNotFound
	}
	return nil
}

func vehicleFilter(f domainvehicle.Filters) bson.M {
	filter := bson.M{}
	if f.OnlyAvailable {
		filter["available"] = true
	}
	if f.Category != "" {
		filter["category"] = equalFold(f.Category)
	}
	if f.Transmission != "" {
		filter["transmission"] = equalFold(f.Transmission)
	}
	price := bson.M{}
	if f.MinPrice != nil {
		price["$gte"] = *f.MinPrice
	}
	if f.MaxPrice != nil {
		price["$lte"] = *f.MaxPrice
	}
	if len(price) > 0 {
		filter["price_per_day"] = price
	}
	return filter
}

func equalFold(value string) bson.M {
	return bson.M{"$regex": "^" + regexp.QuoteMeta(value) + "$", "$options": "i"}
}

type vehicleDocument struct {
	ID           string  `bson:"_id"`
	Make         string  `bson:"make"`
	Model        string  `bson:"model"`
	Year         int     `bson:"year"`
	Category     string  `bson:"category"`
	Transmission string  `bson:"transmission"`
	FuelType     string  `bson:"fuel_type"`
	Seats        int     `bson:"seats"`
	PricePerDay  float64 `bson:"price_per_day"`
	ImageURL     string  `bson:"image_url,omitempty"`
	Available    bool    `bson:"available"`
	CreatedAt    int64   `bson:"created_at"`
	UpdatedAt    int64   `bson:"updated_at"`
}

func newVehicleDocument(v *domainvehicle.Vehicle) vehicleDocument {
	return vehicleDocument{
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
		CreatedAt:    v.CreatedAt.UnixMilli(),
		UpdatedAt:    v.UpdatedAt.UnixMilli(),
	}
}

func (d vehicleDocument) toAggregate() *domainvehicle.Vehicle {
	return &domainvehicle.Vehicle{
		ID:           domainvehicle.ID(d.ID),
		Make:         d.Make,
		Model:        d.Model,
		Year:         d.Year,
		Category:     d.Category,
		Transmission: d.Transmission,
		FuelType:     d.FuelType,
		Seats:        d.Seats,
		PricePerDay:  d.PricePerDay,
		ImageURL:     d.ImageURL,
		Available:    d.Available,
		CreatedAt:    timestampToTime(d.CreatedAt),
		UpdatedAt:    timestampToTime(d.UpdatedAt),
	}
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

var _ domainvehicle.Repository = (*VehicleRepository)(nil)
