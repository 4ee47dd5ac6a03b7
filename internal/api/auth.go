package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

// Login exchanges credentials for tokens. A 401 is reported as
// ErrUnauthorized.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResponse, error) {
	var resp LoginResponse
	body := map[string]string{"email": email, "password": password}
	err := c.getJSON(ctx, call{op: "login", method: http.MethodPost, path: []string{c.endpoints.Login}, body: body}, &resp)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			return LoginResponse{}, fmt.Errorf("login: %w", ErrUnauthorized)
		}
		return LoginResponse{}, err
	}
	return resp, nil
}

// SignUp registers a new account. An existing email is reported as
// ErrUserAlreadyExists.
func (c *Client) SignUp(ctx context.Context, email, displayName, password string) error {
	body := map[string]string{"email": email, "displayName": displayName, "password": password}
	_, err := c.do(ctx, call{op: "sign up", method: http.MethodPost, path: []string{c.endpoints.SignUp}, body: body})
	return err
}

// RefreshAccessToken trades a refresh token for a new access token.
func (c *Client) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	body := map[string]string{"token": refreshToken}
	data, err := c.do(ctx, call{op: "refresh access token", method: http.MethodPost, path: []string{c.endpoints.Refresh}, body: body})
	if err != nil {
		return "", err
	}
	token, err := stringOrField(data, "accessToken")
	if err != nil {
		return "", fmt.Errorf("refresh access token: decode response: %w", err)
	}
	if token == "" {
		return "", errors.New("refresh access token: empty token")
	}
	return token, nil
}

// Logout revokes the refresh token of userID.
func (c *Client) Logout(ctx context.Context, userID string) error {
	_, err := c.do(ctx, call{op: "logout", method: http.MethodGet, path: []string{c.endpoints.Logout, url.PathEscape(userID)}})
	return err
}
