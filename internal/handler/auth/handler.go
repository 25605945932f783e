package auth

import (
	"github.com/gin-gonic/gin"

	"github.com/medibook/booking-gateway/internal/middleware"
	"github.com/medibook/booking-gateway/internal/model"
	"github.com/medibook/booking-gateway/internal/service/session"
	"github.com/medibook/booking-gateway/internal/upstream"
	apperrors "github.com/medibook/booking-gateway/pkg/errors"
	"github.com/medibook/booking-gateway/pkg/httputil"
)

type Handler struct {
	sessions *session.Service
	authAPI  upstream.AuthAPI
}

func NewHandler(sessions *session.Service, authAPI upstream.AuthAPI) *Handler {
	return &Handler{sessions: sessions, authAPI: authAPI}
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("email and password are required", err))
		return
	}

	sess, err := h.sessions.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, model.LoginResponse{
		SessionID: sess.ID,
		User:      sess.User,
	})
}

func (h *Handler) Logout(c *gin.Context) {
	sess := middleware.SessionFrom(c)
	if err := h.sessions.Logout(c.Request.Context(), sess.ID); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"logged_out": true})
}

func (h *Handler) Session(c *gin.Context) {
	sess := middleware.SessionFrom(c)
	httputil.RespondWithSuccess(c, sess.User)
}

type updateProfileRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone" binding:"omitempty,phone"`
}

// UpdateProfile proxies the edit upstream and applies the response as the
// new session snapshot; no follow-up refetch.
func (h *Handler) UpdateProfile(c *gin.Context) {
	sess := middleware.SessionFrom(c)

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid profile payload", err))
		return
	}

	user := sess.User
	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Phone != "" {
		user.Phone = req.Phone
	}

	updated, err := h.authAPI.UpdateProfile(c.Request.Context(), sess.Token, &user)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	if err := h.sessions.UpdateUser(c.Request.Context(), sess, updated); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, updated)
}

func (h *Handler) RegisterPublicRoutes(r *gin.RouterGroup) {
	r.POST("/auth/login", h.Login)
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	auth := r.Group("/auth")
	{
		auth.POST("/logout", h.Logout)
		auth.GET("/session", h.Session)
		auth.PUT("/profile", h.UpdateProfile)
	}
}
