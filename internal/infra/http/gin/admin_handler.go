package ginserver

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"carrental/internal/app/dto"
	"carrental/internal/app/services/rental"
)

// MaxImageSize caps vehicle photo uploads.
const MaxImageSize = 5 << 20

type AdminService interface {
	AddVehicle(ctx context.Context, in dto.VehicleInput) (dto.Vehicle, error)
	UpdateVehicle(ctx context.Context, id string, in dto.VehicleInput) (dto.Vehicle, error)
	DeleteVehicle(ctx context.Context, id string) error
	AttachVehicleImage(ctx context.Context, id, filename, contentType string, content io.Reader) (dto.Vehicle, error)
	ListAllBookings(ctx context.Context) ([]dto.Booking, error)
}

type AdminHandler struct {
	Service AdminService
	Logger  *slog.Logger
}

func (h AdminHandler) AddVehicle(c *gin.Context) {
	var in dto.VehicleInput
	if err := c.ShouldBindJSON(&in); err != nil && !errors.Is(err, io.EOF) {
		respondError(c, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	vehicle, err := h.Service.AddVehicle(c.Request.Context(), in)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, dto.VehicleEnvelope{Vehicle: vehicle, Status: dto.StatusSuccess})
}

func (h AdminHandler) UpdateVehicle(c *gin.Context) {
	var in dto.VehicleInput
	if err := c.ShouldBindJSON(&in); err != nil && !errors.Is(err, io.EOF) {
		respondError(c, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	vehicle, err := h.Service.UpdateVehicle(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.VehicleEnvelope{Vehicle: vehicle, Status: dto.StatusSuccess})
}

func (h AdminHandler) DeleteVehicle(c *gin.Context) {
	if err := h.Service.DeleteVehicle(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.Message{Message: "Vehicle deleted successfully", Status: dto.StatusSuccess})
}

// UploadImage accepts a multipart form with the photo in the "image" field.
func (h AdminHandler) UploadImage(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxImageSize+1<<20)
	header, err := c.FormFile("image")
	if err != nil {
		writeError(c, h.Logger, rental.ErrImageRequired)
		return
	}
	if header.Size > MaxImageSize {
		respondError(c, http.StatusRequestEntityTooLarge, "Image exceeds 5 MB")
		return
	}
	file, err := header.Open()
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	defer file.Close()
	vehicle, err := h.Service.AttachVehicleImage(c.Request.Context(), c.Param("id"), header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.VehicleEnvelope{Vehicle: vehicle, Status: dto.StatusSuccess})
}

func (h AdminHandler) ListBookings(c *gin.Context) {
	bookings, err := h.Service.ListAllBookings(c.Request.Context())
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.BookingList{Bookings: bookings, Status: dto.StatusSuccess})
}

var _ AdminHTTP = AdminHandler{}
