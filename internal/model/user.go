package model

import "time"

type Role string

const (
	RoleCustomer   Role = "customer"
	RoleHCSAdmin   Role = "hcs_admin"
	RoleSuperadmin Role = "superadmin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleHCSAdmin, RoleSuperadmin:
		return true
	}
	return false
}

// User is the authenticated account snapshot returned by the backend at
// login. The gateway never stores credentials, only this projection.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Role  Role   `json:"role"`
	// HCSID is set for hcs_admin accounts and scopes their dashboard.
	HCSID string `json:"hcs,omitempty"`
}

// Session is the gateway-side analogue of the browser's persisted auth
// state: the backend bearer token plus the user snapshot, hydrated on every
// request and torn down on logout.
type Session struct {
	ID        string    `json:"id"`
	Token     string    `json:"token"`
	User      User      `json:"user"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	SessionID string `json:"session_id"`
	User      User   `json:"user"`
}
