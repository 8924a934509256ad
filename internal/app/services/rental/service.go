package rental

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"carrental/internal/app/dto"
	"carrental/internal/app/policies"
	domainbooking "carrental/internal/domain/booking"
	"carrental/internal/domain/pricing"
	"carrental/internal/domain/shared/daterange"
	domainvehicle "carrental/internal/domain/vehicle"
)

var (
	ErrMissingBookingFields = errors.New("rental: missing required booking fields")
	ErrPaymentRejected      = errors.New("rental: payment was not accepted")
	ErrImagesUnavailable    = errors.New("rental: image storage is not configured")
	ErrImageRequired        = errors.New("rental: image is required")
	ErrNotConfigured        = errors.New("rental: service missing dependencies")
)

// MissingFieldError reports the first required vehicle field absent from a create request.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return "rental: missing required field: " + e.Field
}

// Customer is the authenticated caller creating or managing bookings.
type Customer struct {
	ID    string
	Email string
	Name  string
}

type Service struct {
	Vehicles domainvehicle.Repository
	Bookings domainbooking.Repository
	Payments policies.PaymentVerifier
	Events   policies.EventPublisher
	Notifier policies.Notifier
	Images   policies.ImageStore
	Now      func() time.Time
	NewID    func() string
	Logger   *slog.Logger

	// vehicle id -> *sync.Mutex, held from the overlap check until the save.
	vehicleLocks sync.Map
}

// ListVehicles returns the public catalog; unavailable vehicles are never listed.
func (s *Service) ListVehicles(ctx context.Context, filters domainvehicle.Filters) ([]dto.Vehicle, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	filters.OnlyAvailable = true
	items, err := s.Vehicles.List(ctx, filters)
	if err != nil {
		return nil, err
	}
	return dto.MapVehicles(items), nil
}

func (s *Service) GetVehicle(ctx context.Context, id string) (dto.Vehicle, error) {
	if err := s.ensureDependencies(); err != nil {
		return dto.Vehicle{}, err
	}
	v, err := s.Vehicles.ByID(ctx, domainvehicle.ID(id))
	if err != nil {
		return dto.Vehicle{}, err
	}
	return dto.MapVehicle(v), nil
}

func (s *Service) CreateBooking(ctx context.Context, customer Customer, req dto.CreateBookingRequest) (dto.Booking, error) {
	if err := s.ensureDependencies(); err != nil {
		return dto.Booking{}, err
	}
	vehicleID := strings.TrimSpace(req.VehicleID)
	if vehicleID == "" || strings.TrimSpace(req.StartDate) == "" || strings.TrimSpace(req.EndDate) == "" {
		return dto.Booking{}, ErrMissingBookingFields
	}
	start, err := pricing.ParseDate(req.StartDate)
	if err != nil {
		return dto.Booking{}, err
	}
	end, err := pricing.ParseDate(req.EndDate)
	if err != nil {
		return dto.Booking{}, err
	}
	now := s.now()
	dr := daterange.DateRange{Start: pricing.Midnight(start), End: pricing.Midnight(end)}
	if err := domainbooking.CheckDates(dr, now); err != nil {
		return dto.Booking{}, err
	}

	unlock := s.lockVehicle(domainvehicle.ID(vehicleID))
	defer unlock()
	v, err := s.Vehicles.ByID(ctx, domainvehicle.ID(vehicleID))
	if err != nil {
		return dto.Booking{}, err
	}
	existing, err := s.Bookings.ListByVehicle(ctx, v.ID)
	if err != nil {
		return dto.Booking{}, fmt.Errorf("rental: load vehicle bookings: %w", err)
	}
	b, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:            domainbooking.ID(s.newID()),
		UserID:        customer.ID,
		CustomerName:  customer.Name,
		CustomerEmail: customer.Email,
		Vehicle:       v,
		Range:         dr,
		Existing:      existing,
		Now:           now,
	})
	if err != nil {
		return dto.Booking{}, err
	}
	if err := s.Bookings.Save(ctx, b); err != nil {
		return dto.Booking{}, err
	}
	s.publish(ctx, b)
	out := dto.MapBooking(b, v)
	s.notify(ctx, b.CustomerEmail, policies.TemplateBookingCreated, out)
	if s.Logger != nil {
		s.Logger.Info("booking created", "booking_id", b.ID, "vehicle_id", b.VehicleID, "total", b.TotalAmount)
	}
	return out, nil
}

// ListMyBookings returns the caller's bookings, newest first.
func (s *Service) ListMyBookings(ctx context.Context, userID string) ([]dto.Booking, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	items, err := s.Bookings.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.mapWithVehicles(ctx, items), nil
}

// CancelBooking cancels one of the caller's bookings. Bookings owned by someone
// else are reported as not found.
func (s *Service) CancelBooking(ctx context.Context, userID, bookingID string) (dto.Booking, error) {
	if err := s.ensureDependencies(); err != nil {
		return dto.Booking{}, err
	}
	b, err := s.ownedBooking(ctx, userID, bookingID)
	if err != nil {
		return dto.Booking{}, err
	}
	if err := b.Cancel(s.now()); err != nil {
		return dto.Booking{}, err
	}
	if err := s.Bookings.Save(ctx, b); err != nil {
		return dto.Booking{}, err
	}
	s.publish(ctx, b)
	out := dto.MapBooking(b, nil)
	s.notify(ctx, b.CustomerEmail, policies.TemplateBookingCancelled, out)
	return out, nil
}

func (s *Service) ConfirmPayment(ctx context.Context, userID, bookingID, intentID string) (dto.Booking, error) {
	if err := s.ensureDependencies(); err != nil {
		return dto.Booking{}, err
	}
	intentID = strings.TrimSpace(intentID)
	if intentID == "" {
		return dto.Booking{}, domainbooking.ErrPaymentIntentEmpty
	}
	b, err := s.ownedBooking(ctx, userID, bookingID)
	if err != nil {
		return dto.Booking{}, err
	}
	if b.Status != domainbooking.StatusPending {
		return dto.Booking{}, domainbooking.ErrInvalidState
	}
	if s.Payments != nil {
		if err := s.Payments.VerifyPayment(ctx, string(b.ID), intentID, b.TotalAmount); err != nil {
			if s.Logger != nil {
				s.Logger.Warn("payment verification failed", "booking_id", b.ID, "intent_id", intentID, "error", err)
			}
			return dto.Booking{}, fmt.Errorf("%w: %v", ErrPaymentRejected, err)
		}
	}
	if err := b.ConfirmPayment(intentID, s.now()); err != nil {
		return dto.Booking{}, err
	}
	if err := s.Bookings.Save(ctx, b); err != nil {
		return dto.Booking{}, err
	}
	s.publish(ctx, b)
	out := dto.MapBooking(b, nil)
	s.notify(ctx, b.CustomerEmail, policies.TemplatePaymentConfirmed, out)
	return out, nil
}

func (s *Service) AddVehicle(ctx context.Context, in dto.VehicleInput) (dto.Vehicle, error) {
	if err := s.ensureDependencies(); err != nil {
		return dto.Vehicle{}, err
	}
	if field := in.MissingField(); field != "" {
		return dto.Vehicle{}, &MissingFieldError{Field: field}
	}
	available := true
	if in.Available != nil {
		available = *in.Available
	}
	imageURL := ""
	if in.ImageURL != nil {
		imageURL = *in.ImageURL
	}
	v, err := domainvehicle.New(domainvehicle.CreateParams{
		ID:           domainvehicle.ID(s.newID()),
		Make:         *in.Make,
		Model:        *in.Model,
		Year:         *in.Year,
		Category:     *in.Category,
		Transmission: *in.Transmission,
		FuelType:     *in.FuelType,
		Seats:        *in.Seats,
		PricePerDay:  *in.PricePerDay,
		ImageURL:     imageURL,
		Available:    available,
		Now:          s.now(),
	})
	if err != nil {
		return dto.Vehicle{}, err
	}
	if err := s.Vehicles.Save(ctx, v); err != nil {
		return dto.Vehicle{}, err
	}
	if s.Logger != nil {
		s.Logger.Info("vehicle added", "vehicle_id", v.ID, "name", v.DisplayName())
	}
	return dto.MapVehicle(v), nil
}

func (s *Service) UpdateVehicle(ctx context.Context, id string, in dto.VehicleInput) (dto.Vehicle, error) {
	if err := s.ensureDependencies(); err != nil {
		return dto.Vehicle{}, err
	}
	patch := in.Patch()
	if patch.Empty() {
		return dto.Vehicle{}, domainvehicle.ErrNoFields
	}
	v, err := s.Vehicles.ByID(ctx, domainvehicle.ID(id))
	if err != nil {
		return dto.Vehicle{}, err
	}
	if err := v.Apply(patch, s.now()); err != nil {
		return dto.Vehicle{}, err
	}
	if err := s.Vehicles.Save(ctx, v); err != nil {
		return dto.Vehicle{}, err
	}
	return dto.MapVehicle(v), nil
}

// DeleteVehicle removes a vehicle that holds no pending or confirmed bookings.
func (s *Service) DeleteVehicle(ctx context.Context, id string) error {
	if err := s.ensureDependencies(); err != nil {
		return err
	}
	vehicleID := domainvehicle.ID(id)
	unlock := s.lockVehicle(vehicleID)
	defer unlock()
	bookings, err := s.Bookings.ListByVehicle(ctx, vehicleID)
	if err != nil {
		return err
	}
	for _, b := range bookings {
		if b.Holding() {
			return domainvehicle.ErrHasBookings
		}
	}
	if err := s.Vehicles.Delete(ctx, vehicleID); err != nil {
		return err
	}
	if s.Logger != nil {
		s.Logger.Info("vehicle deleted", "vehicle_id", vehicleID)
	}
	return nil
}

// ListAllBookings returns every booking, newest first, with a vehicle summary.
func (s *Service) ListAllBookings(ctx context.Context) ([]dto.Booking, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	items, err := s.Bookings.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.mapWithVehicles(ctx, items), nil
}

func (s *Service) ownedBooking(ctx context.Context, userID, bookingID string) (*domainbooking.Booking, error) {
	b, err := s.Bookings.ByID(ctx, domainbooking.ID(bookingID))
	if err != nil {
		return nil, err
	}
	if b.UserID != userID {
		return nil, domainbooking.ErrNotFound
	}
	return b, nil
}

func (s *Service) mapWithVehicles(ctx context.Context, items []*domainbooking.Booking) []dto.Booking {
	sortNewestFirst(items)
	cache := make(map[domainvehicle.ID]*domainvehicle.Vehicle)
	out := make([]dto.Booking, 0, len(items))
	for _, b := range items {
		v, seen := cache[b.VehicleID]
		if !seen {
			found, err := s.Vehicles.ByID(ctx, b.VehicleID)
			if err != nil && !errors.Is(err, domainvehicle.ErrNotFound) && s.Logger != nil {
				s.Logger.Warn("vehicle lookup failed", "vehicle_id", b.VehicleID, "error", err)
			}
			v = found
			cache[b.VehicleID] = found
		}
		out = append(out, dto.MapBooking(b, v))
	}
	return out
}

func (s *Service) publish(ctx context.Context, b *domainbooking.Booking) {
	pending := b.Drain()
	if s.Events == nil || len(pending) == 0 {
		return
	}
	if err := s.Events.Publish(ctx, pending); err != nil && s.Logger != nil {
		s.Logger.Error("publish booking events failed", "booking_id", b.ID, "error", err)
	}
}

func (s *Service) notify(ctx context.Context, to, template string, data any) {
	if s.Notifier == nil || strings.TrimSpace(to) == "" {
		return
	}
	if err := s.Notifier.Send(ctx, to, template, data); err != nil && s.Logger != nil {
		s.Logger.Error("notification failed", "template", template, "error", err)
	}
}

func (s *Service) lockVehicle(id domainvehicle.ID) func() {
	m, _ := s.vehicleLocks.LoadOrStore(id, &sync.Mutex{})
	mu := m.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (s *Service) ensureDependencies() error {
	if s == nil || s.Vehicles == nil || s.Bookings == nil {
		return ErrNotConfigured
	}
	return nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *Service) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}
