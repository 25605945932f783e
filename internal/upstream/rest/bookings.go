package rest

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/medibook/booking-gateway/internal/model"
)

func (c *Client) CreateBooking(ctx context.Context, token string, req model.CreateBookingRequest) (*model.Booking, error) {
	var booking model.Booking
	if _, err := c.do(ctx, "bookings.create", http.MethodPost, "/bookings", nil, token, req, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

func (c *Client) ListBookings(ctx context.Context, token string, filters model.BookingFilters) ([]model.Booking, *model.Pagination, error) {
	filters.Normalize()
	query := url.Values{}
	query.Set("page", strconv.Itoa(filters.Page))
	query.Set("limit", strconv.Itoa(filters.Limit))
	if filters.Status != "" {
		query.Set("status", filters.Status)
	}
	if filters.HCS != "" {
		query.Set("hcs", filters.HCS)
	}
	if filters.User != "" {
		query.Set("user", filters.User)
	}

	var bookings []model.Booking
	pagination, err := c.do(ctx, "bookings.list", http.MethodGet, "/bookings", query, token, nil, &bookings)
	if err != nil {
		return nil, nil, err
	}
	return bookings, pagination, nil
}

func (c *Client) GetBooking(ctx context.Context, token, id string) (*model.Booking, error) {
	var booking model.Booking
	if _, err := c.do(ctx, "bookings.get", http.MethodGet, "/bookings/"+url.PathEscape(id), nil, token, nil, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

func (c *Client) UpdateBookingStatus(ctx context.Context, token, id string, status model.BookingStatus) (*model.Booking, error) {
	var booking model.Booking
	body := map[string]model.BookingStatus{"status": status}
	if _, err := c.do(ctx, "bookings.update_status", http.MethodPut, "/bookings/"+url.PathEscape(id), nil, token, body, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}
