package rest

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/medibook/booking-gateway/internal/model"
)

func (c *Client) ListCenters(ctx context.Context, token string, params model.ListParams) ([]model.HealthcareCenter, *model.Pagination, error) {
	params.Normalize()
	query := url.Values{}
	query.Set("page", strconv.Itoa(params.Page))
	query.Set("limit", strconv.Itoa(params.Limit))
	if params.Search != "" {
		query.Set("search", params.Search)
	}

	var centers []model.HealthcareCenter
	pagination, err := c.do(ctx, "hcs.list", http.MethodGet, "/hcs", query, token, nil, &centers)
	if err != nil {
		return nil, nil, err
	}
	return centers, pagination, nil
}

func (c *Client) CenterAvailability(ctx context.Context, token, hcsID string, date time.Time) (*model.Availability, error) {
	query := url.Values{}
	query.Set("date", model.DateOnly(date))

	var availability model.Availability
	path := "/hcs/" + url.PathEscape(hcsID) + "/availability"
	if _, err := c.do(ctx, "hcs.availability", http.MethodGet, path, query, token, nil, &availability); err != nil {
		return nil, err
	}
	return &availability, nil
}

func (c *Client) GlobalAvailability(ctx context.Context, token, testID string, date time.Time) (*model.Availability, error) {
	query := url.Values{}
	query.Set("date", model.DateOnly(date))
	if testID != "" {
		query.Set("test", testID)
	}

	var availability model.Availability
	if _, err := c.do(ctx, "hcs.global_availability", http.MethodGet, "/hcs/availability", query, token, nil, &availability); err != nil {
		return nil, err
	}
	return &availability, nil
}
