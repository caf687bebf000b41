package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Tiliavir/lma/internal/model"
)

// Login exchanges credentials for a token pair.
func (c *Client) Login(ctx context.Context, creds model.Credentials) (model.TokenPair, error) {
	var out model.TokenPair
	if err := c.do(ctx, http.MethodPost, EndpointAuthLogin, creds, &out, false); err != nil {
		return model.TokenPair{}, err
	}
	if out.Access == "" {
		return model.TokenPair{}, fmt.Errorf("login response did not include an access token")
	}
	return out, nil
}

// Register creates an account and returns the token pair issued for it.
// Servers that do not log the new user in return an empty pair.
func (c *Client) Register(ctx context.Context, reg model.Registration) (model.TokenPair, error) {
	var out model.TokenPair
	err := c.do(ctx, http.MethodPost, EndpointAuthRegister, reg, &out, false)
	return out, err
}

// Refresh exchanges a refresh token for a new access token. The returned
// pair carries a new refresh token only when the server rotates it.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (model.TokenPair, error) {
	var out model.TokenPair
	in := struct {
		Refresh string `json:"refresh"`
	}{refreshToken}
	if err := c.do(ctx, http.MethodPost, EndpointAuthRefresh, in, &out, false); err != nil {
		return model.TokenPair{}, err
	}
	if out.Access == "" {
		return model.TokenPair{}, fmt.Errorf("refresh response did not include an access token")
	}
	return out, nil
}

// Me returns the authenticated user.
func (c *Client) Me(ctx context.Context) (model.User, error) {
	var out model.User
	err := c.do(ctx, http.MethodGet, EndpointAuthMe, nil, &out, true)
	return out, err
}
