package api

import (
	"context"
	"errors"
	"net/http"

	"plantblog/pkg/blog"
)

var ErrMissingToken = errors.New("login response without token")

type LoginForm struct {
	Identifier string `json:"loginIdentifier"`
	Password   string `json:"password"`
}

type LoginResult struct {
	Token string     `json:"token"`
	User  *blog.User `json:"userData"`
}

type availabilityRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

type availabilityResponse struct {
	Available bool `json:"available"`
}

func (c *Client) SignUp(ctx context.Context, u blog.NewUser) error {
	_, err := c.do(ctx, "signup", http.MethodPost, "/api/signup", "", u, nil)
	return err
}

// Login only accepts a 200 answer; any other status, success class or
// not, is reported as a StatusError.
func (c *Client) Login(ctx context.Context, identifier, password string) (*LoginResult, error) {
	res := &LoginResult{}
	status, err := c.do(ctx, "login", http.MethodPost, "/api/login", "", LoginForm{Identifier: identifier, Password: password}, res)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, &StatusError{Op: "login", StatusCode: status}
	}
	if res.Token == "" || res.User == nil {
		return nil, &TransportError{Op: "login", Err: ErrMissingToken}
	}
	return res, nil
}

func (c *Client) CheckAvailability(ctx context.Context, field, value string) (bool, error) {
	resp := availabilityResponse{}
	req := availabilityRequest{Field: field, Value: value}
	if _, err := c.do(ctx, "check availability", http.MethodPost, "/api/check-availability", "", req, &resp); err != nil {
		return false, err
	}
	return resp.Available, nil
}
