package memory

import (
	"context"
	"sort"
	"sync"

	domainbooking "carrental/internal/domain/booking"
	"carrental/internal/domain/shared/events"
	domainvehicle "carrental/internal/domain/vehicle"
)

// VehicleRepository is an in-memory implementation for demo purposes.
type VehicleRepository struct {
	mu    sync.RWMutex
	items map[domainvehicle.ID]domainvehicle.Vehicle
}

// NewVehicleRepository builds an empty repository.
func NewVehicleRepository() *VehicleRepository {
	return &VehicleRepository{
		items: make(map[domainvehicle.ID]domainvehicle.Vehicle),
	}
}

// ByID returns a copy of the vehicle or domainvehicle.ErrNotFound.
func (r *VehicleRepository) ByID(ctx context.Context, id domainvehicle.ID) (*domainvehicle.Vehicle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.items[id]
	if !ok {
		return nil, domainvehicle.ErrNotFound
	}
	return &v, nil
}

// List returns matching vehicles, oldest first.
func (r *VehicleRepository) List(ctx context.Context, filters domainvehicle.Filters) ([]*domainvehicle.Vehicle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainvehicle.Vehicle, 0, len(r.items))
	for _, v := range r.items {
		v := v
		if filters.Match(&v) {
			out = append(out, &v)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *VehicleRepository) Save(ctx context.Context, v *domainvehicle.Vehicle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[v.ID] = *v
	return nil
}

func (r *VehicleRepository) Delete(ctx context.Context, id domainvehicle.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domainvehicle.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

// BookingRepository keeps bookings in memory. Pending events are not stored.
type BookingRepository struct {
	mu    sync.RWMutex
	items map[domainbooking.ID]domainbooking.Booking
}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{
		items: make(map[domainbooking.ID]domainbooking.Booking),
	}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.ID) (*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.items[id]
	if !ok {
		return nil, domainbooking.ErrNotFound
	}
	return &b, nil
}

func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *b
	stored.Recorder = events.Recorder{}
	r.items[b.ID] = stored
	return nil
}

func (r *BookingRepository) ListByUser(ctx context.Context, userID string) ([]*domainbooking.Booking, error) {
	return r.filter(func(b domainbooking.Booking) bool { return b.UserID == userID }), nil
}

func (r *BookingRepository) ListByVehicle(ctx context.Context, vehicleID domainvehicle.ID) ([]*domainbooking.Booking, error) {
	return r.filter(func(b domainbooking.Booking) bool { return b.VehicleID == vehicleID }), nil
}

func (r *BookingRepository) ListAll(ctx context.Context) ([]*domainbooking.Booking, error) {
	return r.filter(func(domainbooking.Booking) bool { return true }), nil
}

func (r *BookingRepository) filter(keep func(domainbooking.Booking) bool) []*domainbooking.Booking {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainbooking.Booking, 0)
	for _, b := range r.items {
		if keep(b) {
			b := b
			out = append(out, &b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

var (
	_ domainvehicle.Repository = (*VehicleRepository)(nil)
	_ domainbooking.Repository = (*BookingRepository)(nil)
)
