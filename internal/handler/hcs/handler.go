package hcs

import (
	"github.com/gin-gonic/gin"

	"github.com/medibook/booking-gateway/internal/middleware"
	"github.com/medibook/booking-gateway/internal/model"
	"github.com/medibook/booking-gateway/internal/upstream"
	apperrors "github.com/medibook/booking-gateway/pkg/errors"
	"github.com/medibook/booking-gateway/pkg/httputil"
)

type Handler struct {
	hcsAPI     upstream.HCSAPI
	pricingAPI upstream.PricingAPI
}

func NewHandler(hcsAPI upstream.HCSAPI, pricingAPI upstream.PricingAPI) *Handler {
	return &Handler{hcsAPI: hcsAPI, pricingAPI: pricingAPI}
}

func (h *Handler) ListCenters(c *gin.Context) {
	sess := middleware.SessionFrom(c)

	var params model.ListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid list parameters", err))
		return
	}

	centers, pagination, err := h.hcsAPI.ListCenters(c.Request.Context(), sess.Token, params)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	params.Normalize()
	total := len(centers)
	if pagination != nil {
		total = pagination.Total
	}
	httputil.RespondWithPagination(c, centers, params.Page, params.Limit, total)
}

func (h *Handler) ListAssignmentRequests(c *gin.Context) {
	sess := middleware.SessionFrom(c)

	var params model.ListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid list parameters", err))
		return
	}

	requests, pagination, err := h.pricingAPI.ListAssignmentRequests(c.Request.Context(), sess.Token, params)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	params.Normalize()
	total := len(requests)
	if pagination != nil {
		total = pagination.Total
	}
	httputil.RespondWithPagination(c, requests, params.Page, params.Limit, total)
}

type reviewRequest struct {
	Status model.PricingStatus `json:"status" binding:"required"`
}

// ReviewAssignmentRequest approves or rejects a center's proposal to offer
// a test.
func (h *Handler) ReviewAssignmentRequest(c *gin.Context) {
	sess := middleware.SessionFrom(c)

	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("status is required", err))
		return
	}
	if req.Status != model.PricingApproved && req.Status != model.PricingRejected {
		httputil.RespondWithError(c, apperrors.Validation("status must be approved or rejected"))
		return
	}

	result, err := h.pricingAPI.ReviewAssignmentRequest(
		c.Request.Context(), sess.Token, c.Param("test"), c.Param("hcs"), req.Status)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, result)
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/hcs", h.ListCenters)
}

// RegisterReviewRoutes mounts the superadmin-only assignment review.
func (h *Handler) RegisterReviewRoutes(r *gin.RouterGroup) {
	review := r.Group("/hcs/assignment-requests")
	{
		review.GET("", h.ListAssignmentRequests)
		review.PUT("/:test/:hcs", h.ReviewAssignmentRequest)
	}
}
