package ginserver

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	gin "github.com/gin-gonic/gin"

	"carrental/internal/app/dto"
	domainvehicle "carrental/internal/domain/vehicle"
)

type VehicleService interface {
	ListVehicles(ctx context.Context, filters domainvehicle.Filters) ([]dto.Vehicle, error)
	GetVehicle(ctx context.Context, id string) (dto.Vehicle, error)
}

type VehicleHandler struct {
	Service VehicleService
	Logger  *slog.Logger
}

// List serves the public catalog. The "type" parameter filters by category.
func (h VehicleHandler) List(c *gin.Context) {
	filters := domainvehicle.Filters{
		Category:     strings.TrimSpace(c.Query("type")),
		Transmission: strings.TrimSpace(c.Query("transmission")),
	}
	for _, bound := range []struct {
		param  string
		target **float64
	}{
		{"min_price", &filters.MinPrice},
		{"max_price", &filters.MaxPrice},
	} {
		raw := strings.TrimSpace(c.Query(bound.param))
		if raw == "" {
			continue
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			respondError(c, http.StatusBadRequest, "Invalid "+bound.param)
			return
		}
		*bound.target = &value
	}
	vehicles, err := h.Service.ListVehicles(c.Request.Context(), filters)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.VehicleList{Vehicles: vehicles, Status: dto.StatusSuccess})
}

func (h VehicleHandler) Get(c *gin.Context) {
	vehicle, err := h.Service.GetVehicle(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.VehicleEnvelope{Vehicle: vehicle, Status: dto.StatusSuccess})
}

var _ VehicleHTTP = VehicleHandler{}
