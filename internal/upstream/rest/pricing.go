package rest

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/medibook/booking-gateway/internal/model"
)

func (c *Client) ListAssignmentRequests(ctx context.Context, token string, params model.ListParams) ([]model.AssignmentRequest, *model.Pagination, error) {
	params.Normalize()
	query := url.Values{}
	query.Set("page", strconv.Itoa(params.Page))
	query.Set("limit", strconv.Itoa(params.Limit))
	query.Set("status", string(model.PricingPending))
	if params.Search != "" {
		query.Set("search", params.Search)
	}

	var requests []model.AssignmentRequest
	pagination, err := c.do(ctx, "pricing.list_requests", http.MethodGet, "/hcs/assignment-requests", query, token, nil, &requests)
	if err != nil {
		return nil, nil, err
	}
	return requests, pagination, nil
}

func (c *Client) ReviewAssignmentRequest(ctx context.Context, token, testID, hcsID string, status model.PricingStatus) (*model.AssignmentRequest, error) {
	var request model.AssignmentRequest
	path := "/tests/" + url.PathEscape(testID) + "/pricing/" + url.PathEscape(hcsID)
	body := map[string]model.PricingStatus{"status": status}
	if _, err := c.do(ctx, "pricing.review", http.MethodPut, path, nil, token, body, &request); err != nil {
		return nil, err
	}
	return &request, nil
}
