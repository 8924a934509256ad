package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"carrental/internal/app/dto"
)

// VehicleFilters maps the catalog filter form onto query parameters. Blank
// strings and nil bounds mean "no filter".
type VehicleFilters struct {
	Type         string
	Transmission string
	MinPrice     *float64
	MaxPrice     *float64
}

func (f VehicleFilters) Query() Query {
	return Query{
		"type":         f.Type,
		"transmission": f.Transmission,
		"min_price":    f.MinPrice,
		"max_price":    f.MaxPrice,
	}
}

func (c *Client) ListVehicles(ctx context.Context, filters VehicleFilters) ([]dto.Vehicle, error) {
	const path = "/api/vehicles"
	raw, err := c.Request(ctx, path, RequestOptions{Query: filters.Query()})
	if err != nil {
		return nil, err
	}
	out, err := decode[dto.VehicleList](raw, http.MethodGet, path)
	return out.Vehicles, err
}

func (c *Client) GetVehicle(ctx context.Context, id string) (dto.Vehicle, error) {
	path, err := resourcePath(http.MethodGet, "/api/vehicles/%s", id)
	if err != nil {
		return dto.Vehicle{}, err
	}
	raw, err := c.Request(ctx, path, RequestOptions{})
	if err != nil {
		return dto.Vehicle{}, err
	}
	out, err := decode[dto.VehicleEnvelope](raw, http.MethodGet, path)
	return out.Vehicle, err
}

func (c *Client) CreateBooking(ctx context.Context, token string, req dto.CreateBookingRequest) (dto.Booking, error) {
	const path = "/api/bookings"
	raw, err := c.Request(ctx, path, RequestOptions{Method: http.MethodPost, Body: req, AuthToken: token})
	if err != nil {
		return dto.Booking{}, err
	}
	out, err := decode[dto.BookingEnvelope](raw, http.MethodPost, path)
	return out.Booking, err
}

func (c *Client) ListMyBookings(ctx context.Context, token string) ([]dto.Booking, error) {
	const path = "/api/my-bookings"
	raw, err := c.Request(ctx, path, RequestOptions{AuthToken: token})
	if err != nil {
		return nil, err
	}
	return decode[[]dto.Booking](raw, http.MethodGet, path)
}

func (c *Client) CancelBooking(ctx context.Context, token, id string) (dto.Booking, error) {
	path, err := resourcePath(http.MethodPatch, "/api/bookings/%s/cancel", id)
	if err != nil {
		return dto.Booking{}, err
	}
	raw, err := c.Request(ctx, path, RequestOptions{Method: http.MethodPatch, AuthToken: token})
	if err != nil {
		return dto.Booking{}, err
	}
	out, err := decode[dto.BookingEnvelope](raw, http.MethodPatch, path)
	return out.Booking, err
}

func (c *Client) ConfirmPayment(ctx context.Context, token, id, intentID string) (dto.Booking, error) {
	path, err := resourcePath(http.MethodPost, "/api/bookings/%s/confirm_payment", id)
	if err != nil {
		return dto.Booking{}, err
	}
	body := dto.ConfirmPaymentRequest{PaymentIntentID: intentID}
	raw, err := c.Request(ctx, path, RequestOptions{Method: http.MethodPost, Body: body, AuthToken: token})
	if err != nil {
		return dto.Booking{}, err
	}
	out, err := decode[dto.BookingEnvelope](raw, http.MethodPost, path)
	return out.Booking, err
}

func (c *Client) AddVehicle(ctx context.Context, token string, in dto.VehicleInput) (dto.Vehicle, error) {
	const path = "/api/admin/vehicles"
	raw, err := c.Request(ctx, path, RequestOptions{Method: http.MethodPost, Body: in, AuthToken: token})
	if err != nil {
		return dto.Vehicle{}, err
	}
	out, err := decode[dto.VehicleEnvelope](raw, http.MethodPost, path)
	return out.Vehicle, err
}

func (c *Client) UpdateVehicle(ctx context.Context, token, id string, in dto.VehicleInput) (dto.Vehicle, error) {
	path, err := resourcePath(http.MethodPut, "/api/admin/vehicles/%s", id)
	if err != nil {
		return dto.Vehicle{}, err
	}
	raw, err := c.Request(ctx, path, RequestOptions{Method: http.MethodPut, Body: in, AuthToken: token})
	if err != nil {
		return dto.Vehicle{}, err
	}
	out, err := decode[dto.VehicleEnvelope](raw, http.MethodPut, path)
	return out.Vehicle, err
}

// DeleteVehicle returns the backend's confirmation message.
func (c *Client) DeleteVehicle(ctx context.Context, token, id string) (string, error) {
	path, err := resourcePath(http.MethodDelete, "/api/admin/vehicles/%s", id)
	if err != nil {
		return "", err
	}
	raw, err := c.Request(ctx, path, RequestOptions{Method: http.MethodDelete, AuthToken: token})
	if err != nil {
		return "", err
	}
	if raw == nil {
		return "", nil
	}
	out, err := decode[dto.Message](raw, http.MethodDelete, path)
	return out.Message, err
}

func (c *Client) ListAllBookings(ctx context.Context, token string) ([]dto.Booking, error) {
	const path = "/api/admin/bookings"
	raw, err := c.Request(ctx, path, RequestOptions{AuthToken: token})
	if err != nil {
		return nil, err
	}
	out, err := decode[dto.BookingList](raw, http.MethodGet, path)
	return out.Bookings, err
}

func resourcePath(method, template, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", invalidRequest(method, template, "invalid request: id is required")
	}
	return strings.Replace(template, "%s", url.PathEscape(id), 1), nil
}

func decode[T any](raw json.RawMessage, method, path string) (T, error) {
	var out T
	if raw == nil {
		return out, &Error{Kind: KindDecode, Method: method, Path: path, Message: "unexpected empty response from the rental API"}
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, &Error{Kind: KindDecode, Method: method, Path: path, Message: "unexpected response from the rental API", Body: raw, Err: err}
	}
	return out, nil
}
