package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/medibook/booking-gateway/internal/model"
	"github.com/medibook/booking-gateway/internal/service/session"
	apperrors "github.com/medibook/booking-gateway/pkg/errors"
	"github.com/medibook/booking-gateway/pkg/httputil"
)

const ContextSession = "session"

type AuthMiddleware struct {
	sessions *session.Service
}

func NewAuthMiddleware(sessions *session.Service) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions}
}

// Authenticate hydrates the session referenced by the bearer token and
// stores it on the request context.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			httputil.RespondWithError(c, apperrors.Unauthorized(nil))
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			httputil.RespondWithError(c, apperrors.Unauthorized(nil))
			c.Abort()
			return
		}

		sess, err := m.sessions.Hydrate(c.Request.Context(), parts[1])
		if err != nil {
			httputil.RespondWithError(c, err)
			c.Abort()
			return
		}

		c.Set(ContextSession, sess)
		c.Next()
	}
}

// RequireRole gates a route group to the given roles.
func (m *AuthMiddleware) RequireRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := SessionFrom(c)
		if sess == nil {
			httputil.RespondWithError(c, apperrors.Unauthorized(nil))
			c.Abort()
			return
		}
		for _, role := range roles {
			if sess.User.Role == role {
				c.Next()
				return
			}
		}
		httputil.RespondWithError(c, apperrors.Forbidden("insufficient role"))
		c.Abort()
	}
}

// SessionFrom returns the hydrated session, or nil outside Authenticate.
func SessionFrom(c *gin.Context) *model.Session {
	if v, exists := c.Get(ContextSession); exists {
		if sess, ok := v.(*model.Session); ok {
			return sess
		}
	}
	return nil
}
