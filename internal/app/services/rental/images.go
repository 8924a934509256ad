package rental

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"carrental/internal/app/dto"
	domainvehicle "carrental/internal/domain/vehicle"
)

// AttachVehicleImage uploads a photo and stores its public URL on the vehicle.
func (s *Service) AttachVehicleImage(ctx context.Context, id, filename, contentType string, content io.Reader) (dto.Vehicle, error) {
	if err := s.ensureDependencies(); err != nil {
		return dto.Vehicle{}, err
	}
	if content == nil {
		return dto.Vehicle{}, ErrImageRequired
	}
	if s.Images == nil {
		return dto.Vehicle{}, ErrImagesUnavailable
	}
	v, err := s.Vehicles.ByID(ctx, domainvehicle.ID(id))
	if err != nil {
		return dto.Vehicle{}, err
	}
	key := fmt.Sprintf("vehicles/%s/%s%s", v.ID, s.newID(), strings.ToLower(path.Ext(filename)))
	url, err := s.Images.Upload(ctx, key, content, contentType)
	if err != nil {
		return dto.Vehicle{}, fmt.Errorf("rental: upload image: %w", err)
	}
	v.SetImage(url, s.now())
	if err := s.Vehicles.Save(ctx, v); err != nil {
		return dto.Vehicle{}, err
	}
	return dto.MapVehicle(v), nil
}
