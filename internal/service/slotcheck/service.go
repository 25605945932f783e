package slotcheck

import (
	"context"
	"errors"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/medibook/booking-gateway/internal/model"
	"github.com/medibook/booking-gateway/internal/service/availability"
	apperrors "github.com/medibook/booking-gateway/pkg/errors"
)

// Summary is the 3-metric display projection plus the booked-percentage
// bar. A zero-capacity scope is reported as an explicit empty state rather
// than a NaN percentage.
type Summary struct {
	model.Availability
	Shape         availability.Shape `json:"shape"`
	BookedPercent float64            `json:"booked_percent"`
	NoCapacity    bool               `json:"no_capacity"`
	Approximate   bool               `json:"approximate,omitempty"`
}

// State is one operator's checker: two optional selection axes (center,
// test) and a mandatory date defaulting to today.
type State struct {
	CenterID string   `json:"center,omitempty"`
	TestID   string   `json:"test,omitempty"`
	Date     string   `json:"date"`
	Result   *Summary `json:"result,omitempty"`
}

// Selection is a partial update; nil fields are left unchanged and empty
// strings clear the axis.
type Selection struct {
	Center *string `json:"center"`
	Test   *string `json:"test"`
	Date   *string `json:"date"`
}

// Service keeps per-session checker state. On every selection change the
// prior result is nulled before the new query runs, so mismatched data is
// never shown.
type Service struct {
	resolver *availability.Service

	mu     sync.Mutex
	states *gocache.Cache
}

func NewService(resolver *availability.Service, ttl time.Duration) *Service {
	return &Service{
		resolver: resolver,
		states:   gocache.New(ttl, 10*time.Minute),
	}
}

func defaultState() *State {
	return &State{Date: model.DateOnly(time.Now())}
}

func (s *Service) stateFor(sessionID string) *State {
	if v, ok := s.states.Get(sessionID); ok {
		return v.(*State)
	}
	st := defaultState()
	s.states.Set(sessionID, st, gocache.DefaultExpiration)
	return st
}

// Get returns the current checker state without issuing a request.
func (s *Service) Get(sessionID string) *State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot(s.stateFor(sessionID))
}

// Select applies a selection change and resolves the new query. The stale
// result is cleared first; if the query fails the state keeps no result and
// the error is surfaced.
func (s *Service) Select(ctx context.Context, token, sessionID string, sel Selection) (*State, error) {
	s.mu.Lock()
	st := s.stateFor(sessionID)
	if sel.Center != nil {
		st.CenterID = *sel.Center
	}
	if sel.Test != nil {
		st.TestID = *sel.Test
	}
	if sel.Date != nil {
		st.Date = *sel.Date
	}
	st.Result = nil
	date, err := time.ParseInLocation(time.DateOnly, st.Date, time.Local)
	query := availability.Query{CenterID: st.CenterID, TestID: st.TestID, Date: date}
	s.mu.Unlock()

	if err != nil {
		return s.snapshotLocked(sessionID), apperrors.Validation("invalid date, expected YYYY-MM-DD")
	}

	result, err := s.resolver.Resolve(ctx, token, "slotcheck:"+sessionID, query)
	if err != nil {
		if errors.Is(err, availability.ErrSuperseded) {
			return s.snapshotLocked(sessionID), nil
		}
		return s.snapshotLocked(sessionID), err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	st = s.stateFor(sessionID)
	st.Result = summarize(result)
	return s.snapshot(st), nil
}

// Reset restores the default mode and clears results without a request.
func (s *Service) Reset(sessionID string) *State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := defaultState()
	s.states.Set(sessionID, st, gocache.DefaultExpiration)
	return s.snapshot(st)
}

func summarize(r *availability.Result) *Summary {
	sum := &Summary{
		Availability: r.Availability,
		Shape:        r.Shape,
		Approximate:  r.Approximate,
	}
	if r.Total == 0 {
		sum.NoCapacity = true
		return sum
	}
	sum.BookedPercent = float64(r.Booked) / float64(r.Total) * 100
	return sum
}

func (s *Service) snapshot(st *State) *State {
	out := *st
	if st.Result != nil {
		res := *st.Result
		out.Result = &res
	}
	return &out
}

func (s *Service) snapshotLocked(sessionID string) *State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot(s.stateFor(sessionID))
}
