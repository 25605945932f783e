package catalog

import (
	"github.com/gin-gonic/gin"

	"github.com/medibook/booking-gateway/internal/middleware"
	"github.com/medibook/booking-gateway/internal/model"
	"github.com/medibook/booking-gateway/internal/service/catalog"
	apperrors "github.com/medibook/booking-gateway/pkg/errors"
	"github.com/medibook/booking-gateway/pkg/httputil"
)

type Handler struct {
	service *catalog.Service
}

func NewHandler(service *catalog.Service) *Handler {
	return &Handler{service: service}
}

// ListTests serves the filtered, sorted catalog view.
func (h *Handler) ListTests(c *gin.Context) {
	sess := middleware.SessionFrom(c)

	var params model.TestListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid list parameters", err))
		return
	}
	var filter catalog.Filter
	if err := c.ShouldBindQuery(&filter); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid filter parameters", err))
		return
	}

	items, pagination, err := h.service.Browse(c.Request.Context(), sess.Token, params, filter)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	params.Normalize()
	total := len(items)
	if pagination != nil {
		total = pagination.Total
	}
	httputil.RespondWithPagination(c, items, params.Page, params.Limit, total)
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/tests", h.ListTests)
}
