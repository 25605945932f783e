package notification

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/medibook/booking-gateway/internal/middleware"
	"github.com/medibook/booking-gateway/internal/service/notification"
	apperrors "github.com/medibook/booking-gateway/pkg/errors"
	"github.com/medibook/booking-gateway/pkg/httputil"
)

type Handler struct {
	service *notification.Service
}

func NewHandler(service *notification.Service) *Handler {
	return &Handler{service: service}
}

// List serves the poll endpoint; there is no push channel.
func (h *Handler) List(c *gin.Context) {
	sess := middleware.SessionFrom(c)
	httputil.RespondWithSuccess(c, h.service.List(sess.ID))
}

func (h *Handler) Dismiss(c *gin.Context) {
	sess := middleware.SessionFrom(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid notification id", err))
		return
	}
	if !h.service.Dismiss(sess.ID, id) {
		httputil.RespondWithError(c, apperrors.NotFound("notification", nil))
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"dismissed": true})
}

func (h *Handler) Clear(c *gin.Context) {
	sess := middleware.SessionFrom(c)
	h.service.Clear(sess.ID)
	httputil.RespondWithSuccess(c, gin.H{"cleared": true})
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	notifications := r.Group("/notifications")
	{
		notifications.GET("", h.List)
		notifications.DELETE("/:id", h.Dismiss)
		notifications.DELETE("", h.Clear)
	}
}
