package model

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingCanceled  BookingStatus = "canceled"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCompleted, BookingCanceled:
		return true
	}
	return false
}

// Booking is a customer reservation of a test at a center.
type Booking struct {
	ID          string        `json:"id"`
	UserID      string        `json:"user"`
	TestID      string        `json:"test"`
	HCSID       string        `json:"hcs"`
	ScheduledAt time.Time     `json:"scheduledAt"`
	Status      BookingStatus `json:"status"`
	Phone       string        `json:"phone"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// CreateBookingRequest is the payload sent to the backend booking endpoint.
type CreateBookingRequest struct {
	TestID      string    `json:"test"`
	HCSID       string    `json:"hcs"`
	ScheduledAt time.Time `json:"scheduledAt"`
	Phone       string    `json:"phone"`
}

// BookingFilters scopes booking list queries.
type BookingFilters struct {
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
	Status string `form:"status"`
	HCS    string `form:"hcs"`
	User   string `form:"user"`
}

func (f *BookingFilters) Normalize() {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 {
		f.Limit = 20
	}
}

// statusTransitions lists the admin-driven lifecycle moves. Customers may
// only cancel and only while the booking is still pending.
var statusTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:   {BookingConfirmed, BookingCanceled},
	BookingConfirmed: {BookingCompleted, BookingCanceled},
}

// CanTransition reports whether the actor role may move a booking from its
// current status to the target status.
func (b *Booking) CanTransition(to BookingStatus, role Role) bool {
	if role == RoleCustomer {
		return to == BookingCanceled && b.Status == BookingPending
	}
	for _, allowed := range statusTransitions[b.Status] {
		if allowed == to {
			return true
		}
	}
	return false
}
