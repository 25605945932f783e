package availability

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/medibook/booking-gateway/internal/model"
	"github.com/medibook/booking-gateway/internal/upstream"
	apperrors "github.com/medibook/booking-gateway/pkg/errors"
)

// ErrSuperseded is returned when a newer query for the same key was issued
// while this one was in flight. The stale result must be discarded, never
// applied.
var ErrSuperseded = errors.New("availability query superseded by a newer request")

// Shape identifies which backend query a selection resolves to.
type Shape string

const (
	ShapeGlobal     Shape = "global"
	ShapeCenter     Shape = "center"
	ShapeTest       Shape = "test"
	ShapeCenterTest Shape = "center_test"
)

// Query is a (center, test, date) selection; center and test are optional.
type Query struct {
	CenterID string
	TestID   string
	Date     time.Time
}

func (q Query) Shape() Shape {
	switch {
	case q.CenterID != "" && q.TestID != "":
		return ShapeCenterTest
	case q.CenterID != "":
		return ShapeCenter
	case q.TestID != "":
		return ShapeTest
	default:
		return ShapeGlobal
	}
}

// Result is the normalized availability merged with whichever of center and
// test were supplied.
type Result struct {
	model.Availability
	CenterID string `json:"center,omitempty"`
	TestID   string `json:"test,omitempty"`
	Shape    Shape  `json:"shape"`
	// Approximate is set for the center+test shape: the backend endpoint is
	// center-scoped and does not narrow the counts to the selected test, so
	// the figures cover all bookings at that center on that date.
	Approximate bool `json:"approximate,omitempty"`
}

// Service resolves slot availability queries against the backend. Each
// logical query key carries a monotonic sequence number so that out-of-order
// responses cannot overwrite newer ones: the last request issued wins.
type Service struct {
	hcsAPI upstream.HCSAPI

	mu  sync.Mutex
	seq map[string]uint64
}

func NewService(hcsAPI upstream.HCSAPI) *Service {
	return &Service{
		hcsAPI: hcsAPI,
		seq:    map[string]uint64{},
	}
}

func (s *Service) begin(key string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq[key]++
	return s.seq[key]
}

func (s *Service) superseded(key string, seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq[key] != seq
}

// Resolve issues exactly one backend GET, selected by which of center/test
// are present, and returns the normalized result. Errors invalidate any
// previously displayed result for the key; there is no retry.
func (s *Service) Resolve(ctx context.Context, token, key string, q Query) (*Result, error) {
	if q.Date.IsZero() {
		return nil, apperrors.Validation("a date is required")
	}

	seq := s.begin(key)
	shape := q.Shape()

	var (
		avail *model.Availability
		err   error
	)
	switch shape {
	case ShapeCenter, ShapeCenterTest:
		avail, err = s.hcsAPI.CenterAvailability(ctx, token, q.CenterID, q.Date)
	case ShapeTest:
		avail, err = s.hcsAPI.GlobalAvailability(ctx, token, q.TestID, q.Date)
	default:
		avail, err = s.hcsAPI.GlobalAvailability(ctx, token, "", q.Date)
	}

	if s.superseded(key, seq) {
		return nil, ErrSuperseded
	}
	if err != nil {
		log.Warn().Err(err).Str("key", key).Str("shape", string(shape)).Msg("availability query failed")
		return nil, err
	}

	if err := avail.Normalize(); err != nil {
		return nil, apperrors.Upstream(fmt.Sprintf("availability payload rejected: %v", err), err)
	}
	if avail.Date == "" {
		avail.Date = model.DateOnly(q.Date)
	}

	return &Result{
		Availability: *avail,
		CenterID:     q.CenterID,
		TestID:       q.TestID,
		Shape:        shape,
		Approximate:  shape == ShapeCenterTest,
	}, nil
}
