package api

import (
	"context"
	"fmt"
)

// Credentials are what the login form collects.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}

// NewAccount is the body of account registration.
type NewAccount struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}

// Login checks credentials. On success the backend sets the session
// cookie on the client's jar as a side effect; the cookie may not be
// usable by the very next request.
func (c *Client) Login(ctx context.Context, creds Credentials) (*LoginResponse, error) {
	var resp LoginResponse
	if err := c.postJSON(ctx, "/auth/login", creds, &resp); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if resp.User == nil {
		return nil, fmt.Errorf("login: backend returned no user")
	}
	return &resp, nil
}

// Register creates an account and logs it in.
func (c *Client) Register(ctx context.Context, acct NewAccount) (*LoginResponse, error) {
	var resp LoginResponse
	if err := c.postJSON(ctx, "/auth/register", acct, &resp); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	if resp.User == nil {
		return nil, fmt.Errorf("register: backend returned no user")
	}
	return &resp, nil
}

// CheckSession asks the backend whether the current cookie identifies a
// user. An unrecognized cookie is not an error: the result has a nil User.
func (c *Client) CheckSession(ctx context.Context) (*SessionCheck, error) {
	var check SessionCheck
	if err := c.getJSON(ctx, "/auth/check", &check); err != nil {
		if IsUnauthorized(err) {
			return &SessionCheck{}, nil
		}
		return nil, err
	}
	return &check, nil
}

// Logout asks the backend to clear the session cookie.
func (c *Client) Logout(ctx context.Context) error {
	return c.postJSON(ctx, "/auth/logout", nil, nil)
}
