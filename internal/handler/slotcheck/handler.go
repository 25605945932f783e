package slotcheck

import (
	"github.com/gin-gonic/gin"

	"github.com/medibook/booking-gateway/internal/middleware"
	"github.com/medibook/booking-gateway/internal/service/slotcheck"
	apperrors "github.com/medibook/booking-gateway/pkg/errors"
	"github.com/medibook/booking-gateway/pkg/httputil"
)

type Handler struct {
	service *slotcheck.Service
}

func NewHandler(service *slotcheck.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Get(c *gin.Context) {
	sess := middleware.SessionFrom(c)
	httputil.RespondWithSuccess(c, h.service.Get(sess.ID))
}

func (h *Handler) Select(c *gin.Context) {
	sess := middleware.SessionFrom(c)

	var sel slotcheck.Selection
	if err := c.ShouldBindJSON(&sel); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid selection payload", err))
		return
	}

	state, err := h.service.Select(c.Request.Context(), sess.Token, sess.ID, sel)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, state)
}

func (h *Handler) Reset(c *gin.Context) {
	sess := middleware.SessionFrom(c)
	httputil.RespondWithSuccess(c, h.service.Reset(sess.ID))
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	checker := r.Group("/slot-check")
	{
		checker.GET("", h.Get)
		checker.PUT("", h.Select)
		checker.POST("/reset", h.Reset)
	}
}
