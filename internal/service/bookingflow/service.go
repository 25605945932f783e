package bookingflow

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"

	"github.com/medibook/booking-gateway/internal/model"
	"github.com/medibook/booking-gateway/internal/service/availability"
	"github.com/medibook/booking-gateway/internal/service/notification"
	"github.com/medibook/booking-gateway/internal/upstream"
	apperrors "github.com/medibook/booking-gateway/pkg/errors"
	"github.com/medibook/booking-gateway/pkg/metrics"
)

// State is the wizard's position in the strictly ordered confirmation flow.
type State string

const (
	StateTestSelected  State = "test_selected"
	StateSelectingDate State = "selecting_date"
	StateReadyToBook   State = "ready_to_book"
)

// Wizard is one in-progress booking confirmation. It lives in the session
// store namespace and is discarded on success, cancel or session expiry.
type Wizard struct {
	ID          string              `json:"id"`
	SessionID   string              `json:"-"`
	State       State               `json:"state"`
	Test        model.Test          `json:"test"`
	Centers     []model.HcsPricing  `json:"centers"`
	CenterID    string              `json:"center,omitempty"`
	ScheduledAt *time.Time          `json:"scheduled_at,omitempty"`
	Phone       string              `json:"phone"`
	Slots       *model.Availability `json:"slots,omitempty"`

	inFlight bool
}

// CanConfirm reports whether the confirm action is enabled: center and
// schedule chosen, schedule in the future and the last-fetched availability
// not exhausted.
func (w *Wizard) CanConfirm(now time.Time) bool {
	if w.Phone == "" || w.CenterID == "" || w.ScheduledAt == nil {
		return false
	}
	if !w.ScheduledAt.After(now) {
		return false
	}
	if w.Slots != nil && !w.Slots.HasCapacity() {
		return false
	}
	return true
}

// Service drives the booking confirmation workflow.
type Service struct {
	testAPI    upstream.TestAPI
	bookingAPI upstream.BookingAPI
	authAPI    upstream.AuthAPI
	resolver   *availability.Service
	notifier   *notification.Service
	metrics    *metrics.Metrics

	mu      sync.Mutex
	wizards *gocache.Cache

	now func() time.Time
}

func NewService(
	testAPI upstream.TestAPI,
	bookingAPI upstream.BookingAPI,
	authAPI upstream.AuthAPI,
	resolver *availability.Service,
	notifier *notification.Service,
	ttl time.Duration,
	m *metrics.Metrics,
) *Service {
	return &Service{
		testAPI:    testAPI,
		bookingAPI: bookingAPI,
		authAPI:    authAPI,
		resolver:   resolver,
		notifier:   notifier,
		metrics:    m,
		wizards:    gocache.New(ttl, 10*time.Minute),
		now:        time.Now,
	}
}

// defaultSchedule seeds tomorrow at 09:00 local.
func defaultSchedule(now time.Time) time.Time {
	t := now.AddDate(0, 0, 1)
	return time.Date(t.Year(), t.Month(), t.Day(), 9, 0, 0, 0, now.Location())
}

// Open starts a wizard for a test: snapshots the test and its approved
// centers, seeds the default schedule and pre-fills the user's phone.
func (s *Service) Open(ctx context.Context, sess *model.Session, testID string) (*Wizard, error) {
	test, err := s.testAPI.GetTest(ctx, sess.Token, testID)
	if err != nil {
		return nil, err
	}

	phone := sess.User.Phone
	if profile, err := s.authAPI.Profile(ctx, sess.Token); err == nil && profile.Phone != "" {
		phone = profile.Phone
	}

	seed := defaultSchedule(s.now())
	w := &Wizard{
		ID:          uuid.NewString(),
		SessionID:   sess.ID,
		State:       StateTestSelected,
		Test:        *test,
		Centers:     test.ApprovedCenters(),
		ScheduledAt: &seed,
		Phone:       phone,
	}

	s.mu.Lock()
	s.wizards.Set(w.ID, w, gocache.DefaultExpiration)
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.WizardsOpened.Inc()
	}
	return w, nil
}

func (s *Service) get(sessionID, wizardID string) (*Wizard, error) {
	v, ok := s.wizards.Get(wizardID)
	if !ok {
		return nil, apperrors.NotFound("booking wizard", nil)
	}
	w := v.(*Wizard)
	if w.SessionID != sessionID {
		return nil, apperrors.Forbidden("wizard belongs to another session")
	}
	return w, nil
}

// Get returns the wizard for display.
func (s *Service) Get(sess *model.Session, wizardID string) (*Wizard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(sess.ID, wizardID)
}

// SelectCenter constrains the choice to centers with an approved pricing
// entry on the test, then resets the schedule and clears availability.
func (s *Service) SelectCenter(sess *model.Session, wizardID, centerID string) (*Wizard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, err := s.get(sess.ID, wizardID)
	if err != nil {
		return nil, err
	}
	if !w.Test.BookableAt(centerID) {
		return nil, apperrors.Validation("selected center does not offer this test")
	}

	w.CenterID = centerID
	w.ScheduledAt = nil
	w.Slots = nil
	w.State = StateSelectingDate
	return w, nil
}

// SetSchedule records the chosen date/time and re-checks availability for
// the (center, date) pair. The schedule picker is unusable until a center
// is chosen.
func (s *Service) SetSchedule(ctx context.Context, sess *model.Session, wizardID string, at time.Time) (*Wizard, error) {
	s.mu.Lock()
	w, err := s.get(sess.ID, wizardID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if w.CenterID == "" {
		s.mu.Unlock()
		return nil, apperrors.Validation("select a healthcare center first")
	}
	w.ScheduledAt = &at
	w.Slots = nil
	centerID, testID := w.CenterID, w.Test.ID
	s.mu.Unlock()

	result, err := s.resolver.Resolve(ctx, sess.Token, "wizard:"+wizardID,
		availability.Query{CenterID: centerID, TestID: testID, Date: at})
	if err != nil {
		if errors.Is(err, availability.ErrSuperseded) {
			return s.Get(sess, wizardID)
		}
		s.notifier.Push(sess.ID, model.NotificationError, "Could not check slot availability: "+userMessage(err))
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	w, err = s.get(sess.ID, wizardID)
	if err != nil {
		return nil, err
	}
	w.Slots = &result.Availability
	w.State = StateReadyToBook
	return w, nil
}

// SetPhone overrides the pre-filled contact phone.
func (s *Service) SetPhone(sess *model.Session, wizardID, phone string) (*Wizard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, err := s.get(sess.ID, wizardID)
	if err != nil {
		return nil, err
	}
	w.Phone = phone
	return w, nil
}

// Confirm validates and submits the booking. Validation failures never
// reach the backend; upstream failures leave the wizard intact so the user
// can retry. A second confirm while one is in flight is rejected.
func (s *Service) Confirm(ctx context.Context, sess *model.Session, wizardID string) (*model.Booking, error) {
	s.mu.Lock()
	w, err := s.get(sess.ID, wizardID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if w.inFlight {
		s.mu.Unlock()
		return nil, apperrors.Conflict("booking confirmation already in progress")
	}

	if err := s.validate(w); err != nil {
		s.mu.Unlock()
		s.countConfirm("rejected")
		return nil, err
	}

	w.inFlight = true
	req := model.CreateBookingRequest{
		TestID:      w.Test.ID,
		HCSID:       w.CenterID,
		ScheduledAt: w.ScheduledAt.UTC(),
		Phone:       w.Phone,
	}
	s.mu.Unlock()

	booking, err := s.bookingAPI.CreateBooking(ctx, sess.Token, req)

	s.mu.Lock()
	w.inFlight = false
	if err != nil {
		s.mu.Unlock()
		s.countConfirm("failure")
		log.Warn().Err(err).Str("wizard", wizardID).Msg("booking creation failed")
		s.notifier.Push(sess.ID, model.NotificationError, "Booking failed: "+userMessage(err))
		return nil, err
	}
	s.wizards.Delete(wizardID)
	s.mu.Unlock()

	s.countConfirm("success")
	s.notifier.Push(sess.ID, model.NotificationSuccess, "Booking created for "+w.Test.Title)
	return booking, nil
}

// validate applies the confirm checks in their fixed order; the first
// failure short-circuits.
func (s *Service) validate(w *Wizard) error {
	if w.Phone == "" {
		return apperrors.Validation("phone number is required")
	}
	if w.CenterID == "" {
		return apperrors.Validation("select a healthcare center")
	}
	if w.ScheduledAt == nil {
		return apperrors.Validation("select a date and time")
	}
	if !w.ScheduledAt.After(s.now()) {
		return apperrors.Validation("scheduled time must be in the future")
	}
	if w.Slots != nil && !w.Slots.HasCapacity() {
		return apperrors.Validation("no slots available at this center on the selected date")
	}
	return nil
}

// Cancel abandons the wizard without booking.
func (s *Service) Cancel(sess *model.Session, wizardID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.get(sess.ID, wizardID); err != nil {
		return err
	}
	s.wizards.Delete(wizardID)
	return nil
}

func (s *Service) countConfirm(outcome string) {
	if s.metrics != nil {
		s.metrics.WizardConfirms.WithLabelValues(outcome).Inc()
	}
}

func userMessage(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "something went wrong, please try again"
}
