package ginserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"carrental/internal/app/dto"
	"carrental/internal/app/services/rental"
	domainbooking "carrental/internal/domain/booking"
	"carrental/internal/domain/pricing"
	"carrental/internal/domain/shared/daterange"
	domainvehicle "carrental/internal/domain/vehicle"
	"carrental/internal/infra/storage/s3"
)

type errorMapping struct {
	target  error
	status  int
	message string
}

var errorMappings = []errorMapping{
	{rental.ErrMissingBookingFields, http.StatusBadRequest, "Missing required fields"},
	{pricing.ErrInvalidDate, http.StatusBadRequest, "Invalid date format, expected YYYY-MM-DD"},
	{daterange.ErrInvalidRange, http.StatusBadRequest, "End date must be after start date"},
	{domainbooking.ErrStartInPast, http.StatusBadRequest, "Start date cannot be in the past"},
	{domainvehicle.ErrNotFound, http.StatusNotFound, "Vehicle not found"},
	{domainvehicle.ErrUnavailable, http.StatusBadRequest, "Vehicle is not available"},
	{domainbooking.ErrDatesConflict, http.StatusBadRequest, "Vehicle is already booked for the selected dates"},
	{domainbooking.ErrNotFound, http.StatusNotFound, "Booking not found"},
	{domainbooking.ErrAlreadyCancelled, http.StatusBadRequest, "Booking is already cancelled"},
	{domainbooking.ErrCancelStarted, http.StatusBadRequest, "Cannot cancel past or ongoing bookings"},
	{domainbooking.ErrNotCancellable, http.StatusBadRequest, "Only pending or confirmed bookings can be cancelled"},
	{domainbooking.ErrPaymentIntentEmpty, http.StatusBadRequest, "Payment intent ID is required"},
	{domainbooking.ErrInvalidState, http.StatusBadRequest, "Booking is not awaiting payment"},
	{rental.ErrPaymentRejected, http.StatusPaymentRequired, "Payment could not be verified"},
	{domainvehicle.ErrNoFields, http.StatusBadRequest, "No valid fields to update"},
	{domainvehicle.ErrHasBookings, http.StatusBadRequest, "Cannot delete vehicle with active bookings"},
	{rental.ErrImageRequired, http.StatusBadRequest, "Image file is required"},
	{s3.ErrUnsupportedContent, http.StatusBadRequest, "Unsupported image type"},
	{rental.ErrImagesUnavailable, http.StatusServiceUnavailable, "Image storage is not configured"},
	{s3.ErrNotConfigured, http.StatusServiceUnavailable, "Image storage is not configured"},
}

const invalidVehiclePrefix = "vehicle: invalid attributes: "

// writeError maps service errors to the API's status codes and messages.
func writeError(c *gin.Context, logger *slog.Logger, err error) {
	var missing *rental.MissingFieldError
	if errors.As(err, &missing) {
		respondError(c, http.StatusBadRequest, "Missing required field: "+missing.Field)
		return
	}
	if errors.Is(err, domainvehicle.ErrInvalidVehicle) {
		msg := err.Error()
		if idx := strings.Index(msg, invalidVehiclePrefix); idx >= 0 {
			msg = msg[idx+len(invalidVehiclePrefix):]
		}
		respondError(c, http.StatusBadRequest, "Invalid vehicle: "+msg)
		return
	}
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			respondError(c, m.status, m.message)
			return
		}
	}
	if logger != nil {
		logger.Error("request failed", "route", c.FullPath(), "error", err)
	}
	respondError(c, http.StatusInternalServerError, "Internal server error")
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, dto.ErrorBody{Error: message, Status: dto.StatusError})
}

func abortError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, dto.ErrorBody{Error: message, Status: dto.StatusError})
}
