package catalog

import (
	"context"

	"github.com/medibook/booking-gateway/internal/model"
	"github.com/medibook/booking-gateway/internal/upstream"
)

// Service fetches the backend catalog page and applies the client-side
// filter engine on top of it. The backend narrows by search/type/hcs too,
// but the derived view (effective prices, ordering) is computed here.
type Service struct {
	testAPI upstream.TestAPI
}

func NewService(testAPI upstream.TestAPI) *Service {
	return &Service{testAPI: testAPI}
}

func (s *Service) Browse(ctx context.Context, token string, params model.TestListParams, f Filter) ([]Item, *model.Pagination, error) {
	if f.typeActive() {
		params.Type = f.Type
	}
	if f.centerActive() {
		params.HCS = f.Center
	}
	params.Search = f.Search

	tests, pagination, err := s.testAPI.ListTests(ctx, token, params)
	if err != nil {
		return nil, nil, err
	}
	return Apply(tests, f), pagination, nil
}
