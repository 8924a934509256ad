package main

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	domainvehicle "carrental/internal/domain/vehicle"
)

//go:embed fixtures/vehicles.json
var defaultVehicleFixtures []byte

type vehicleFixture struct {
	ID           string  `json:"id"`
	Make         string  `json:"make"`
	Model        string  `json:"model"`
	Year         int     `json:"year"`
	Category     string  `json:"category"`
	Transmission string  `json:"transmission"`
	FuelType     string  `json:"fuel_type"`
	Seats        int     `json:"seats"`
	PricePerDay  float64 `json:"price_per_day"`
	ImageURL     string  `json:"image_url"`
	Available    bool    `json:"available"`
}

// loadVehicleFixtures seeds an empty catalog. An empty path uses the bundled fixtures.
func loadVehicleFixtures(ctx context.Context, repo domainvehicle.Repository, path string, now time.Time, logger *slog.Logger) (int, error) {
	existing, err := repo.List(ctx, domainvehicle.Filters{})
	if err != nil {
		return 0, fmt.Errorf("list vehicles: %w", err)
	}
	if len(existing) > 0 {
		logger.Info("catalog not empty, skipping fixtures", "vehicles", len(existing))
		return 0, nil
	}
	data := defaultVehicleFixtures
	if path != "" {
		data, err = os.ReadFile(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				logger.Info("vehicle fixtures file not found, skipping", "path", path)
				return 0, nil
			}
			return 0, fmt.Errorf("read fixtures: %w", err)
		}
	}
	var fixtures []vehicleFixture
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return 0, fmt.Errorf("decode fixtures: %w", err)
	}
	imported := 0
	for i, fx := range fixtures {
		v, err := domainvehicle.New(domainvehicle.CreateParams{
			ID:           domainvehicle.ID(fx.ID),
			Make:         fx.Make,
			Model:        fx.Model,
			Year:         fx.Year,
			Category:     fx.Category,
			Transmission: fx.Transmission,
			FuelType:     fx.FuelType,
			Seats:        fx.Seats,
			PricePerDay:  fx.PricePerDay,
			ImageURL:     fx.ImageURL,
			Available:    fx.Available,
			// Keeps the catalog in file order.
			Now: now.Add(time.Duration(i) * time.Second),
		})
		if err != nil {
			logger.Error("fixture invalid", "vehicle_id", fx.ID, "error", err)
			continue
		}
		if err := repo.Save(ctx, v); err != nil {
			return imported, fmt.Errorf("save fixture %s: %w", fx.ID, err)
		}
		imported++
	}
	logger.Info("vehicle fixtures imported", "count", imported)
	return imported, nil
}
