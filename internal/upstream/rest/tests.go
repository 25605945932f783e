package rest

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/medibook/booking-gateway/internal/model"
)

func (c *Client) ListTests(ctx context.Context, token string, params model.TestListParams) ([]model.Test, *model.Pagination, error) {
	params.Normalize()
	query := url.Values{}
	query.Set("page", strconv.Itoa(params.Page))
	query.Set("limit", strconv.Itoa(params.Limit))
	if params.Search != "" {
		query.Set("search", params.Search)
	}
	if params.Type != "" {
		query.Set("type", params.Type)
	}
	if params.HCS != "" {
		query.Set("hcs", params.HCS)
	}

	var tests []model.Test
	pagination, err := c.do(ctx, "tests.list", http.MethodGet, "/tests", query, token, nil, &tests)
	if err != nil {
		return nil, nil, err
	}
	return tests, pagination, nil
}

func (c *Client) GetTest(ctx context.Context, token, id string) (*model.Test, error) {
	var test model.Test
	if _, err := c.do(ctx, "tests.get", http.MethodGet, "/tests/"+url.PathEscape(id), nil, token, nil, &test); err != nil {
		return nil, err
	}
	return &test, nil
}
