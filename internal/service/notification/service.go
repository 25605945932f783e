package notification

import (
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/medibook/booking-gateway/internal/model"
	"github.com/medibook/booking-gateway/pkg/metrics"
)

const maxQueued = 50

// queue holds the pending notifications for one session. The id counter is
// monotonic and owned by the queue, not shared process-wide.
type queue struct {
	nextID int64
	items  []model.Notification
}

// Service is the polled notification queue. Sessions enqueue outcomes
// (booking confirmed, availability errors) and dashboards poll and dismiss
// them; queues expire with their session.
type Service struct {
	mu      sync.Mutex
	queues  *gocache.Cache
	metrics *metrics.Metrics
}

func NewService(ttl time.Duration, m *metrics.Metrics) *Service {
	return &Service{
		queues:  gocache.New(ttl, 10*time.Minute),
		metrics: m,
	}
}

func (s *Service) queueFor(sessionID string) *queue {
	if v, ok := s.queues.Get(sessionID); ok {
		return v.(*queue)
	}
	q := &queue{}
	s.queues.Set(sessionID, q, gocache.DefaultExpiration)
	return q
}

// Push enqueues a notification and returns it with its assigned id.
func (s *Service) Push(sessionID string, level model.NotificationLevel, message string) model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := s.queueFor(sessionID)
	q.nextID++
	n := model.Notification{
		ID:        q.nextID,
		Level:     level,
		Message:   message,
		CreatedAt: time.Now(),
	}
	q.items = append(q.items, n)
	if len(q.items) > maxQueued {
		q.items = q.items[len(q.items)-maxQueued:]
	}

	if s.metrics != nil {
		s.metrics.NotificationsQueued.Inc()
	}
	return n
}

// List returns the pending notifications in enqueue order.
func (s *Service) List(sessionID string) []model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := s.queueFor(sessionID)
	out := make([]model.Notification, len(q.items))
	copy(out, q.items)
	return out
}

// Dismiss removes one notification; it reports whether the id was present.
func (s *Service) Dismiss(sessionID string, id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := s.queueFor(sessionID)
	for i, n := range q.items {
		if n.ID == id {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return true
		}
	}
	return false
}

// Clear drops every pending notification for the session.
func (s *Service) Clear(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queues.Delete(sessionID)
}
