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

type BookingService interface {
	CreateBooking(ctx context.Context, customer rental.Customer, req dto.CreateBookingRequest) (dto.Booking, error)
	ListMyBookings(ctx context.Context, userID string) ([]dto.Booking, error)
	CancelBooking(ctx context.Context, userID, bookingID string) (dto.Booking, error)
	ConfirmPayment(ctx context.Context, userID, bookingID, intentID string) (dto.Booking, error)
}

type BookingHandler struct {
	Service BookingService
	Logger  *slog.Logger
}

func (h BookingHandler) Create(c *gin.Context) {
	user, ok := currentPrincipal(c)
	if !ok {
		abortError(c, http.StatusUnauthorized, "No authorization token provided")
		return
	}
	var req dto.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(c, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	booking, err := h.Service.CreateBooking(c.Request.Context(), rental.Customer{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
	}, req)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, dto.BookingEnvelope{Booking: booking, Status: dto.StatusSuccess})
}

// ListMine responds with a bare array, which the storefront expects.
func (h BookingHandler) ListMine(c *gin.Context) {
	user, ok := currentPrincipal(c)
	if !ok {
		abortError(c, http.StatusUnauthorized, "No authorization token provided")
		return
	}
	bookings, err := h.Service.ListMyBookings(c.Request.Context(), user.ID)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Error("list bookings failed", "user_id", user.ID, "error", err)
		}
		respondError(c, http.StatusInternalServerError, "Failed to fetch bookings")
		return
	}
	if bookings == nil {
		bookings = []dto.Booking{}
	}
	c.JSON(http.StatusOK, bookings)
}

func (h BookingHandler) Cancel(c *gin.Context) {
	user, ok := currentPrincipal(c)
	if !ok {
		abortError(c, http.StatusUnauthorized, "No authorization token provided")
		return
	}
	booking, err := h.Service.CancelBooking(c.Request.Context(), user.ID, c.Param("id"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.BookingEnvelope{Booking: booking, Status: dto.StatusSuccess})
}

func (h BookingHandler) ConfirmPayment(c *gin.Context) {
	user, ok := currentPrincipal(c)
	if !ok {
		abortError(c, http.StatusUnauthorized, "No authorization token provided")
		return
	}
	var req dto.ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(c, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	booking, err := h.Service.ConfirmPayment(c.Request.Context(), user.ID, c.Param("id"), req.PaymentIntentID)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.BookingEnvelope{Booking: booking, Status: dto.StatusSuccess})
}

var _ BookingHTTP = BookingHandler{}
