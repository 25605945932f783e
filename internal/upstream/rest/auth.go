package rest

import (
	"context"
	"net/http"

	"github.com/medibook/booking-gateway/internal/model"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResult struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

func (c *Client) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	var result loginResult
	_, err := c.do(ctx, "auth.login", http.MethodPost, "/auth/login", nil, "",
		loginRequest{Email: email, Password: password}, &result)
	if err != nil {
		return "", nil, err
	}
	return result.Token, &result.User, nil
}

func (c *Client) Profile(ctx context.Context, token string) (*model.User, error) {
	var user model.User
	if _, err := c.do(ctx, "auth.profile", http.MethodGet, "/auth/me", nil, token, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile applies the mutation response directly as the new canonical
// user; there is no follow-up refetch.
func (c *Client) UpdateProfile(ctx context.Context, token string, user *model.User) (*model.User, error) {
	var updated model.User
	if _, err := c.do(ctx, "auth.update_profile", http.MethodPut, "/auth/me", nil, token, user, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}
