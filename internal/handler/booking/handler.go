package booking

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/medibook/booking-gateway/internal/middleware"
	"github.com/medibook/booking-gateway/internal/model"
	"github.com/medibook/booking-gateway/internal/service/bookingflow"
	"github.com/medibook/booking-gateway/internal/upstream"
	apperrors "github.com/medibook/booking-gateway/pkg/errors"
	"github.com/medibook/booking-gateway/pkg/httputil"
)

type Handler struct {
	flow       *bookingflow.Service
	bookingAPI upstream.BookingAPI
}

func NewHandler(flow *bookingflow.Service, bookingAPI upstream.BookingAPI) *Handler {
	return &Handler{flow: flow, bookingAPI: bookingAPI}
}

type openWizardRequest struct {
	TestID string `json:"test" binding:"required"`
}

func (h *Handler) OpenWizard(c *gin.Context) {
	sess := middleware.SessionFrom(c)

	var req openWizardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("test is required", err))
		return
	}

	wizard, err := h.flow.Open(c.Request.Context(), sess, req.TestID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, wizard)
}

func (h *Handler) GetWizard(c *gin.Context) {
	sess := middleware.SessionFrom(c)
	wizard, err := h.flow.Get(sess, c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, wizard)
}

type selectCenterRequest struct {
	HCSID string `json:"hcs" binding:"required"`
}

func (h *Handler) SelectCenter(c *gin.Context) {
	sess := middleware.SessionFrom(c)

	var req selectCenterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("hcs is required", err))
		return
	}

	wizard, err := h.flow.SelectCenter(sess, c.Param("id"), req.HCSID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, wizard)
}

type scheduleRequest struct {
	ScheduledAt time.Time `json:"scheduled_at" binding:"required"`
}

func (h *Handler) SetSchedule(c *gin.Context) {
	sess := middleware.SessionFrom(c)

	var req scheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("scheduled_at is required", err))
		return
	}

	wizard, err := h.flow.SetSchedule(c.Request.Context(), sess, c.Param("id"), req.ScheduledAt)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, wizard)
}

type phoneRequest struct {
	Phone string `json:"phone" binding:"required,phone"`
}

func (h *Handler) SetPhone(c *gin.Context) {
	sess := middleware.SessionFrom(c)

	var req phoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("phone is required", err))
		return
	}

	wizard, err := h.flow.SetPhone(sess, c.Param("id"), req.Phone)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, wizard)
}

func (h *Handler) Confirm(c *gin.Context) {
	sess := middleware.SessionFrom(c)

	booking, err := h.flow.Confirm(c.Request.Context(), sess, c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, booking)
}

func (h *Handler) CancelWizard(c *gin.Context) {
	sess := middleware.SessionFrom(c)

	if err := h.flow.Cancel(sess, c.Param("id")); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"canceled": true})
}

// ListBookings scopes the upstream query to the caller's role: customers
// see their own bookings, center admins their center's.
func (h *Handler) ListBookings(c *gin.Context) {
	sess := middleware.SessionFrom(c)

	var filters model.BookingFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid list parameters", err))
		return
	}

	switch sess.User.Role {
	case model.RoleCustomer:
		filters.User = sess.User.ID
	case model.RoleHCSAdmin:
		filters.HCS = sess.User.HCSID
	}

	bookings, pagination, err := h.bookingAPI.ListBookings(c.Request.Context(), sess.Token, filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	filters.Normalize()
	total := len(bookings)
	if pagination != nil {
		total = pagination.Total
	}
	httputil.RespondWithPagination(c, bookings, filters.Page, filters.Limit, total)
}

func (h *Handler) GetBooking(c *gin.Context) {
	sess := middleware.SessionFrom(c)

	booking, err := h.bookingAPI.GetBooking(c.Request.Context(), sess.Token, c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	if err := h.authorize(sess, booking); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, booking)
}

// authorize rejects access to bookings outside the caller's scope.
func (h *Handler) authorize(sess *model.Session, booking *model.Booking) error {
	switch sess.User.Role {
	case model.RoleCustomer:
		if booking.UserID != sess.User.ID {
			return apperrors.Forbidden("not your booking")
		}
	case model.RoleHCSAdmin:
		if booking.HCSID != sess.User.HCSID {
			return apperrors.Forbidden("booking belongs to another center")
		}
	}
	return nil
}

type statusRequest struct {
	Status model.BookingStatus `json:"status" binding:"required"`
}

// UpdateStatus validates the lifecycle transition for the caller's role
// before proxying it upstream.
func (h *Handler) UpdateStatus(c *gin.Context) {
	sess := middleware.SessionFrom(c)
	id := c.Param("id")

	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("status is required", err))
		return
	}
	if !req.Status.Valid() {
		httputil.RespondWithError(c, apperrors.Validation("unknown booking status"))
		return
	}

	booking, err := h.bookingAPI.GetBooking(c.Request.Context(), sess.Token, id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	if err := h.authorize(sess, booking); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	if !booking.CanTransition(req.Status, sess.User.Role) {
		httputil.RespondWithError(c, apperrors.Conflict("status transition not allowed"))
		return
	}

	updated, err := h.bookingAPI.UpdateBookingStatus(c.Request.Context(), sess.Token, id, req.Status)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, updated)
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	bookings := r.Group("/bookings")
	{
		bookings.GET("", h.ListBookings)
		bookings.GET("/:id", h.GetBooking)
		bookings.PUT("/:id/status", h.UpdateStatus)
	}
}

// RegisterWizardRoutes mounts the customer-only confirmation workflow. The
// wizard lives under its own prefix so its id segment cannot collide with
// booking ids.
func (h *Handler) RegisterWizardRoutes(r *gin.RouterGroup) {
	wizard := r.Group("/booking-wizard")
	{
		wizard.POST("", h.OpenWizard)
		wizard.GET("/:id", h.GetWizard)
		wizard.PUT("/:id/center", h.SelectCenter)
		wizard.PUT("/:id/schedule", h.SetSchedule)
		wizard.PUT("/:id/phone", h.SetPhone)
		wizard.POST("/:id/confirm", h.Confirm)
		wizard.DELETE("/:id", h.CancelWizard)
	}
}
