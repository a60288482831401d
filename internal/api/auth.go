package api

import (
	"context"
	"fmt"
	"strings"
)

// Login exchanges credentials for a bearer token. The caller persists the
// session; the client never writes the token itself.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", ErrInvalidInput)
	}

	var res LoginResult
	body := map[string]string{"username": username, "password": password}
	if err := c.post(ctx, "/login", body, &res); err != nil {
		return nil, err
	}
	if res.AccessToken == "" {
		return nil, fmt.Errorf("%w: login response has no access_token", ErrMalformedResponse)
	}
	return &res, nil
}

// Register creates an account and returns the server's confirmation text.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (string, error) {
	var res messageResult
	if err := c.post(ctx, "/register", req, &res); err != nil {
		return "", err
	}
	return res.Message, nil
}

// Profile fetches the current user's profile.
func (c *Client) Profile(ctx context.Context) (*Profile, error) {
	var p Profile
	if err := c.get(ctx, "/profile", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProfile applies a partial profile update.
func (c *Client) UpdateProfile(ctx context.Context, upd ProfileUpdate) (*Profile, error) {
	var p Profile
	if err := c.put(ctx, "/profile", upd, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// DeleteAccount removes the account after password confirmation.
func (c *Client) DeleteAccount(ctx context.Context, password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("%w: password is required", ErrInvalidInput)
	}
	var res messageResult
	if err := c.delete(ctx, "/profile", map[string]string{"password": password}, &res); err != nil {
		return "", err
	}
	return res.Message, nil
}
