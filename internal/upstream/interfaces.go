package upstream

import (
	"context"
	"time"

	"github.com/medibook/booking-gateway/internal/model"
)

// The gateway owns no data. Every interface here is backed by the external
// booking platform API and returns transient view models.

type AuthAPI interface {
	Login(ctx context.Context, email, password string) (token string, user *model.User, err error)
	Profile(ctx context.Context, token string) (*model.User, error)
	UpdateProfile(ctx context.Context, token string, user *model.User) (*model.User, error)
}

type TestAPI interface {
	ListTests(ctx context.Context, token string, params model.TestListParams) ([]model.Test, *model.Pagination, error)
	GetTest(ctx context.Context, token, id string) (*model.Test, error)
}

type HCSAPI interface {
	ListCenters(ctx context.Context, token string, params model.ListParams) ([]model.HealthcareCenter, *model.Pagination, error)
	// CenterAvailability queries GET /hcs/{id}/availability for one date.
	CenterAvailability(ctx context.Context, token, hcsID string, date time.Time) (*model.Availability, error)
	// GlobalAvailability queries GET /hcs/availability; testID narrows the
	// aggregate to one test across centers and may be empty.
	GlobalAvailability(ctx context.Context, token, testID string, date time.Time) (*model.Availability, error)
}

type BookingAPI interface {
	CreateBooking(ctx context.Context, token string, req model.CreateBookingRequest) (*model.Booking, error)
	ListBookings(ctx context.Context, token string, filters model.BookingFilters) ([]model.Booking, *model.Pagination, error)
	GetBooking(ctx context.Context, token, id string) (*model.Booking, error)
	UpdateBookingStatus(ctx context.Context, token, id string, status model.BookingStatus) (*model.Booking, error)
}

type PricingAPI interface {
	ListAssignmentRequests(ctx context.Context, token string, params model.ListParams) ([]model.AssignmentRequest, *model.Pagination, error)
	ReviewAssignmentRequest(ctx context.Context, token, testID, hcsID string, status model.PricingStatus) (*model.AssignmentRequest, error)
}
